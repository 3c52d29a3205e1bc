package config

import (
	"testing"
	"time"

	"github.com/riskibarqy/league-sync/internal/platform/logging"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.HTTPAddr != ":8080" {
		t.Fatalf("unexpected HTTPAddr: %q", cfg.HTTPAddr)
	}
	if cfg.SleeperBaseURL != "https://api.sleeper.app/v1" {
		t.Fatalf("unexpected SleeperBaseURL: %q", cfg.SleeperBaseURL)
	}
	if cfg.SyncSport != "nfl" || cfg.SyncMaxConcurrency != 5 {
		t.Fatalf("unexpected sync defaults: sport=%q concurrency=%d", cfg.SyncSport, cfg.SyncMaxConcurrency)
	}
	if cfg.SyncInterval != 0 {
		t.Fatalf("expected scheduled sync disabled by default, got %s", cfg.SyncInterval)
	}
	if !cfg.SleeperCircuitEnabled || cfg.SleeperCircuitFailureCount != 5 || cfg.SleeperCircuitOpenTimeout != 30*time.Second {
		t.Fatalf("unexpected circuit defaults: %+v", cfg)
	}
	if cfg.LogLevel != logging.LevelInfo {
		t.Fatalf("unexpected log level: %v", cfg.LogLevel)
	}
}

func TestLoad_AppEnvValidation(t *testing.T) {
	t.Setenv("APP_ENV", "invalid")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for invalid APP_ENV")
	}
}

func TestLoad_SyncSettings(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("SYNC_SPORT", "NFL")
	t.Setenv("SYNC_SEASONS", "2025, 2024")
	t.Setenv("SYNC_MAX_CONCURRENCY", "8")
	t.Setenv("SYNC_INTERVAL", "30m")
	t.Setenv("SLEEPER_BASE_URL", "http://localhost:9000/v1/")
	t.Setenv("APP_LOG_LEVEL", "debug")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.SyncSport != "nfl" {
		t.Fatalf("unexpected SyncSport: %q", cfg.SyncSport)
	}
	if len(cfg.SyncSeasons) != 2 || cfg.SyncSeasons[0] != "2025" || cfg.SyncSeasons[1] != "2024" {
		t.Fatalf("unexpected SyncSeasons: %v", cfg.SyncSeasons)
	}
	if cfg.SyncMaxConcurrency != 8 || cfg.SyncInterval != 30*time.Minute {
		t.Fatalf("unexpected sync config: %+v", cfg)
	}
	if cfg.SleeperBaseURL != "http://localhost:9000/v1" {
		t.Fatalf("expected trailing slash trimmed, got %q", cfg.SleeperBaseURL)
	}
	if cfg.LogLevel != logging.LevelDebug {
		t.Fatalf("unexpected log level: %v", cfg.LogLevel)
	}
}

func TestLoad_RejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{name: "season not a year", key: "SYNC_SEASONS", val: "2025,last"},
		{name: "zero concurrency", key: "SYNC_MAX_CONCURRENCY", val: "0"},
		{name: "negative interval", key: "SYNC_INTERVAL", val: "-1m"},
		{name: "zero timeout", key: "SLEEPER_TIMEOUT", val: "0s"},
		{name: "negative rate", key: "SLEEPER_RATE_PER_SEC", val: "-2"},
		{name: "bad bool", key: "SLEEPER_CIRCUIT_ENABLED", val: "maybe"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("APP_ENV", EnvDev)
			t.Setenv(tt.key, tt.val)
			if _, err := Load(); err == nil {
				t.Fatalf("expected error for %s=%s", tt.key, tt.val)
			}
		})
	}
}

func TestLoad_RequiresDependenciesOutsideDev(t *testing.T) {
	t.Setenv("APP_ENV", EnvProd)
	t.Setenv("DB_URL", "")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error when DB_URL is empty in prod")
	}

	t.Setenv("DB_URL", "postgres://localhost:5432/league_sync")
	t.Setenv("INTERNAL_JOB_TOKEN", "")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error when INTERNAL_JOB_TOKEN is empty in prod")
	}
}

func TestLoad_UptraceRequiresDSNWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "true")
	t.Setenv("UPTRACE_DSN", "")
	t.Setenv("OTEL_EXPORTER_OTLP_HEADERS", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when UPTRACE_ENABLED=true without UPTRACE_DSN")
	}

	t.Setenv("OTEL_EXPORTER_OTLP_HEADERS", `uptrace-dsn="https://token@api.uptrace.dev?grpc=4317"`)
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.UptraceDSN != "https://token@api.uptrace.dev?grpc=4317" {
		t.Fatalf("unexpected UptraceDSN: %q", cfg.UptraceDSN)
	}
}
