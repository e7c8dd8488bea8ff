package app

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/five82/tabula/internal/config"
	"github.com/five82/tabula/internal/logging"
	"github.com/five82/tabula/internal/metrics"
	"github.com/five82/tabula/internal/prefs"
	"github.com/five82/tabula/internal/resource"
	"github.com/five82/tabula/internal/ui"
)

// Options configure the tabula application.
type Options struct {
	ConfigPath string
	PrefsPath  string // empty uses default ~/.config/tabula/prefs.toml
	APIURL     string // overrides api_url from the config file
	PageSize   int    // zero keeps the configured size
}

// Run boots the tabula TUI until the user quits or the context is cancelled.
func Run(ctx context.Context, opts Options) error {
	cfg, err := config.Load(opts.ConfigPath, config.Overrides{
		APIURL:   opts.APIURL,
		PageSize: opts.PageSize,
	})
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, closer, err := logging.Setup(logging.Config{Level: cfg.LogLevel, File: cfg.LogFile})
	if err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	defer func() { _ = closer.Close() }()

	userPrefs, err := prefs.Load(opts.PrefsPath)
	if err != nil {
		logger.Warn().Err(err).Msg("using default preferences")
	}

	client, err := resource.NewClient(cfg.APIURL,
		resource.WithTimeout(cfg.RequestTimeout),
		resource.WithUserAgent(cfg.UserAgent),
		resource.WithLogger(logger),
	)
	if err != nil {
		return fmt.Errorf("init rest client: %w", err)
	}

	logger.Info().
		Str("api_url", client.BaseURL()).
		Int("page_size", cfg.PageSize).
		Dur("request_timeout", cfg.RequestTimeout).
		Msg("starting tabula")

	// Leaving the UI stops everything else in the group.
	ctx, stop := context.WithCancel(ctx)
	defer stop()
	g, gctx := errgroup.WithContext(ctx)

	if cfg.MetricsAddr != "" {
		ln, err := listenMetrics(cfg.MetricsAddr)
		if err != nil {
			return err
		}
		g.Go(func() error {
			return serveMetrics(gctx, ln, metrics.Handler(), logging.Component(logger, "metrics"))
		})
	}

	g.Go(func() error {
		defer stop()
		return ui.Run(ui.Options{
			Context:   gctx,
			Backend:   client,
			BaseURL:   client.BaseURL(),
			PageSize:  cfg.PageSize,
			ThemeName: userPrefs.Theme,
			ShowBody:  userPrefs.ShowBody,
			PrefsPath: opts.PrefsPath,
			LogFile:   cfg.LogFile,
			Logger:    logger,
		})
	})

	err = g.Wait()
	logger.Info().Err(err).Msg("tabula stopped")
	return err
}
