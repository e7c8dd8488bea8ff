package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/five82/tabula/internal/logging"
	"github.com/five82/tabula/internal/paging"
	"github.com/five82/tabula/internal/resource"
)

// EnvAPIURL overrides every other source for the collection URL.
const EnvAPIURL = "API_URL"

// Config is the resolved client configuration.
type Config struct {
	APIURL         string
	PageSize       int
	RequestTimeout time.Duration
	LogFile        string
	LogLevel       string
	MetricsAddr    string
	UserAgent      string
}

// Overrides carry command-line values. Zero fields leave the file value.
type Overrides struct {
	APIURL   string
	PageSize int
}

const (
	defaultConfigPath = "~/.config/tabula/config.toml"
	defaultLogFile    = "~/.local/state/tabula/tabula.log"
	defaultLogLevel   = "info"
	defaultUserAgent  = "tabula"
)

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		APIURL:    resource.DefaultURL,
		PageSize:  paging.DefaultSize,
		LogFile:   mustExpand(defaultLogFile),
		LogLevel:  defaultLogLevel,
		UserAgent: defaultUserAgent,
	}
}

// Load reads the config file at path (the default location when empty),
// then applies o, then the API_URL environment variable.
func Load(path string, o Overrides) (Config, error) {
	cfg, err := loadFile(path)
	if err != nil {
		return Config{}, err
	}

	if v := strings.TrimSpace(o.APIURL); v != "" {
		cfg.APIURL = v
	}
	if o.PageSize != 0 {
		cfg.PageSize = o.PageSize
	}
	if v, ok := os.LookupEnv(EnvAPIURL); ok && strings.TrimSpace(v) != "" {
		cfg.APIURL = strings.TrimSpace(v)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects values the client cannot run with.
func (c Config) Validate() error {
	if strings.TrimSpace(c.APIURL) == "" {
		return errors.New("api_url is empty")
	}
	if c.PageSize <= 0 {
		return fmt.Errorf("page_size must be positive, got %d", c.PageSize)
	}
	if c.RequestTimeout < 0 {
		return fmt.Errorf("request_timeout must not be negative, got %s", c.RequestTimeout)
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

func loadFile(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw struct {
		APIURL         string `toml:"api_url"`
		PageSize       int    `toml:"page_size"`
		RequestTimeout string `toml:"request_timeout"`
		LogFile        string `toml:"log_file"`
		LogLevel       string `toml:"log_level"`
		MetricsAddr    string `toml:"metrics_addr"`
		UserAgent      string `toml:"user_agent"`
	}
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if v := strings.TrimSpace(raw.APIURL); v != "" {
		cfg.APIURL = v
	}
	if raw.PageSize != 0 {
		cfg.PageSize = raw.PageSize
	}
	if v := strings.TrimSpace(raw.RequestTimeout); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("parse request_timeout: %w", err)
		}
		cfg.RequestTimeout = d
	}
	if v := strings.TrimSpace(raw.LogFile); v != "" {
		cfg.LogFile = mustExpand(v)
	}
	if v := strings.TrimSpace(raw.LogLevel); v != "" {
		cfg.LogLevel = v
	}
	cfg.MetricsAddr = strings.TrimSpace(raw.MetricsAddr)
	if v := strings.TrimSpace(raw.UserAgent); v != "" {
		cfg.UserAgent = v
	}

	return cfg, nil
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
