package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/tabula/internal/config"
)

func TestRun_InvalidConfigFailsBeforeUI(t *testing.T) {
	t.Setenv(config.EnvAPIURL, "")
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("page_size = -1\n"), 0o644))

	err := Run(context.Background(), Options{ConfigPath: path})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load config")
}

func TestRun_BadAPIURLFailsBeforeUI(t *testing.T) {
	t.Setenv(config.EnvAPIURL, "")
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("log_file = \""+filepath.Join(dir, "tabula.log")+"\"\n"), 0o644))

	err := Run(context.Background(), Options{ConfigPath: path, APIURL: "http://"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "init rest client")
}
