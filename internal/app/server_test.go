package app

import (
	"context"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/tabula/internal/metrics"
)

func TestServeMetrics_ServesUntilCancelled(t *testing.T) {
	ln, err := listenMetrics("127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- serveMetrics(ctx, ln, metrics.Handler(), zerolog.Nop()) }()

	base := "http://" + ln.Addr().String()

	resp, err := http.Get(base + "/metrics")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "go_goroutines")

	resp, err = http.Get(base + "/healthz")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("metrics server did not stop after cancellation")
	}

	_, err = http.Get(base + "/metrics")
	assert.Error(t, err)
}

func TestListenMetrics_RejectsBadAddress(t *testing.T) {
	_, err := listenMetrics("not-an-address")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "metrics address")
}
