package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/riskibarqy/league-sync/internal/config"
	"github.com/riskibarqy/league-sync/internal/platform/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() config.Config {
	return config.Config{
		AppEnv:             config.EnvDev,
		HTTPAddr:           ":0",
		ReadTimeout:        time.Second,
		WriteTimeout:       time.Second,
		CacheTTL:           time.Minute,
		SleeperBaseURL:     "http://127.0.0.1:1",
		SleeperTimeout:     time.Second,
		SleeperRateBurst:   1,
		SyncSport:          "nfl",
		SyncSeasons:        []string{"2025"},
		SyncMaxConcurrency: 2,
	}
}

func TestNew_InMemoryWiring(t *testing.T) {
	a, err := New(context.Background(), testConfig(), logging.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	assert.False(t, a.Scheduler.Enabled())
	assert.Equal(t, ":0", a.Server.Addr)

	for _, path := range []string{"/healthz", "/metrics"} {
		rec := httptest.NewRecorder()
		a.Server.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}
}

func TestNew_RequiresAddr(t *testing.T) {
	cfg := testConfig()
	cfg.HTTPAddr = ""

	_, err := New(context.Background(), cfg, logging.NewNop())
	require.Error(t, err)
}

func TestNew_SchedulerEnabledWithInterval(t *testing.T) {
	cfg := testConfig()
	cfg.SyncInterval = time.Hour

	a, err := New(context.Background(), cfg, logging.NewNop())
	require.NoError(t, err)
	assert.True(t, a.Scheduler.Enabled())
}
