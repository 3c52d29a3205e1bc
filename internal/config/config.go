package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/riskibarqy/league-sync/internal/platform/logging"
)

// Config stores runtime configuration for the service.
type Config struct {
	AppEnv                  string
	ServiceName             string
	ServiceVersion          string
	HTTPAddr                string
	ReadTimeout             time.Duration
	WriteTimeout            time.Duration
	LogLevel                logging.Level
	DBURL                   string
	DBDisablePreparedBinary bool
	CacheTTL                time.Duration
	CORSAllowedOrigins      []string
	InternalJobToken        string

	SleeperBaseURL             string
	SleeperTimeout             time.Duration
	SleeperRatePerSec          float64
	SleeperRateBurst           int
	SleeperCircuitEnabled      bool
	SleeperCircuitFailureCount int
	SleeperCircuitOpenTimeout  time.Duration
	SleeperCircuitHalfOpenReq  int

	SyncSport          string
	SyncSeasons        []string
	SyncMaxConcurrency int
	SyncInterval       time.Duration

	PprofEnabled           bool
	PprofAddr              string
	UptraceEnabled         bool
	UptraceDSN             string
	UptraceLogsEnabled     bool
	PyroscopeEnabled       bool
	PyroscopeServerAddress string
	PyroscopeAppName       string
	PyroscopeAuthToken     string
	PyroscopeUploadRate    time.Duration
}

func Load() (Config, error) {
	appEnv, err := parseAppEnv(getEnv("APP_ENV", EnvDev))
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		AppEnv:             appEnv,
		ServiceName:        getEnv("APP_SERVICE_NAME", "league-sync-api"),
		ServiceVersion:     getEnv("APP_SERVICE_VERSION", "dev"),
		HTTPAddr:           getEnv("APP_HTTP_ADDR", ":8080"),
		LogLevel:           parseLogLevel(getEnv("APP_LOG_LEVEL", "info")),
		DBURL:              strings.TrimSpace(getEnv("DB_URL", "")),
		CORSAllowedOrigins: splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		InternalJobToken:   strings.TrimSpace(getEnv("INTERNAL_JOB_TOKEN", "")),
		SleeperBaseURL:     strings.TrimRight(strings.TrimSpace(getEnv("SLEEPER_BASE_URL", "https://api.sleeper.app/v1")), "/"),
		SyncSport:          strings.ToLower(strings.TrimSpace(getEnv("SYNC_SPORT", "nfl"))),
		SyncSeasons:        splitCSV(getEnv("SYNC_SEASONS", "")),
		PprofAddr:          strings.TrimSpace(getEnv("PPROF_ADDR", ":6060")),
		UptraceDSN:         strings.TrimSpace(getEnv("UPTRACE_DSN", "")),

		PyroscopeServerAddress: strings.TrimSpace(getEnv("PYROSCOPE_SERVER_ADDRESS", "")),
		PyroscopeAppName:       strings.TrimSpace(getEnv("PYROSCOPE_APP_NAME", "league-sync-api")),
		PyroscopeAuthToken:     strings.TrimSpace(getEnv("PYROSCOPE_AUTH_TOKEN", "")),
	}
	if cfg.UptraceDSN == "" {
		cfg.UptraceDSN = parseUptraceDSNFromOTLPHeaders(getEnv("OTEL_EXPORTER_OTLP_HEADERS", ""))
	}

	durations := []struct {
		key      string
		fallback string
		dst      *time.Duration
		allowOff bool
	}{
		{key: "APP_READ_TIMEOUT", fallback: "10s", dst: &cfg.ReadTimeout},
		{key: "APP_WRITE_TIMEOUT", fallback: "120s", dst: &cfg.WriteTimeout},
		{key: "CACHE_TTL", fallback: "1m", dst: &cfg.CacheTTL},
		{key: "SLEEPER_TIMEOUT", fallback: "15s", dst: &cfg.SleeperTimeout},
		{key: "SLEEPER_CIRCUIT_OPEN_TIMEOUT", fallback: "30s", dst: &cfg.SleeperCircuitOpenTimeout},
		{key: "SYNC_INTERVAL", fallback: "0s", dst: &cfg.SyncInterval, allowOff: true},
		{key: "PYROSCOPE_UPLOAD_RATE", fallback: "15s", dst: &cfg.PyroscopeUploadRate},
	}
	for _, d := range durations {
		value, err := time.ParseDuration(getEnv(d.key, d.fallback))
		if err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", d.key, err)
		}
		if value < 0 || (value == 0 && !d.allowOff) {
			return Config{}, fmt.Errorf("%s must be > 0", d.key)
		}
		*d.dst = value
	}

	bools := []struct {
		key      string
		fallback string
		dst      *bool
	}{
		{key: "DB_DISABLE_PREPARED_BINARY_RESULT", fallback: "false", dst: &cfg.DBDisablePreparedBinary},
		{key: "SLEEPER_CIRCUIT_ENABLED", fallback: "true", dst: &cfg.SleeperCircuitEnabled},
		{key: "PPROF_ENABLED", fallback: "false", dst: &cfg.PprofEnabled},
		{key: "UPTRACE_ENABLED", fallback: "false", dst: &cfg.UptraceEnabled},
		{key: "UPTRACE_LOGS_ENABLED", fallback: "true", dst: &cfg.UptraceLogsEnabled},
		{key: "PYROSCOPE_ENABLED", fallback: "false", dst: &cfg.PyroscopeEnabled},
	}
	for _, b := range bools {
		value, err := strconv.ParseBool(getEnv(b.key, b.fallback))
		if err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", b.key, err)
		}
		*b.dst = value
	}

	ints := []struct {
		key      string
		fallback int
		dst      *int
	}{
		{key: "SLEEPER_RATE_BURST", fallback: 5, dst: &cfg.SleeperRateBurst},
		{key: "SLEEPER_CIRCUIT_FAILURE_COUNT", fallback: 5, dst: &cfg.SleeperCircuitFailureCount},
		{key: "SLEEPER_CIRCUIT_HALF_OPEN_MAX_REQ", fallback: 1, dst: &cfg.SleeperCircuitHalfOpenReq},
		{key: "SYNC_MAX_CONCURRENCY", fallback: 5, dst: &cfg.SyncMaxConcurrency},
	}
	for _, i := range ints {
		value, err := getEnvAsInt(i.key, i.fallback)
		if err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", i.key, err)
		}
		if value <= 0 {
			return Config{}, fmt.Errorf("%s must be > 0", i.key)
		}
		*i.dst = value
	}

	cfg.SleeperRatePerSec, err = strconv.ParseFloat(getEnv("SLEEPER_RATE_PER_SEC", "10"), 64)
	if err != nil {
		return Config{}, fmt.Errorf("parse SLEEPER_RATE_PER_SEC: %w", err)
	}
	if cfg.SleeperRatePerSec < 0 {
		return Config{}, fmt.Errorf("SLEEPER_RATE_PER_SEC must be >= 0")
	}

	for _, season := range cfg.SyncSeasons {
		if _, err := strconv.Atoi(season); err != nil || len(season) != 4 {
			return Config{}, fmt.Errorf("invalid SYNC_SEASONS item %q, expected 4-digit year", season)
		}
	}

	if cfg.SleeperBaseURL == "" {
		return Config{}, fmt.Errorf("SLEEPER_BASE_URL is required")
	}
	if cfg.UptraceEnabled && cfg.UptraceDSN == "" {
		return Config{}, fmt.Errorf("UPTRACE_DSN is required when UPTRACE_ENABLED=true")
	}
	if cfg.PyroscopeEnabled && cfg.PyroscopeServerAddress == "" {
		return Config{}, fmt.Errorf("PYROSCOPE_SERVER_ADDRESS is required when PYROSCOPE_ENABLED=true")
	}
	if cfg.PprofEnabled && cfg.PprofAddr == "" {
		return Config{}, fmt.Errorf("PPROF_ADDR is required when PPROF_ENABLED=true")
	}
	if appEnv != EnvDev && cfg.DBURL == "" {
		return Config{}, fmt.Errorf("DB_URL is required when APP_ENV=%s", appEnv)
	}
	if appEnv == EnvProd && cfg.InternalJobToken == "" {
		return Config{}, fmt.Errorf("INTERNAL_JOB_TOKEN is required when APP_ENV=prod")
	}

	return cfg, nil
}

func parseLogLevel(v string) logging.Level {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "debug":
		return logging.LevelDebug
	case "warn", "warning":
		return logging.LevelWarn
	case "error":
		return logging.LevelError
	default:
		return logging.LevelInfo
	}
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}

func getEnvAsInt(key string, fallback int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}
	return strconv.Atoi(value)
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		item := strings.TrimSpace(part)
		if item == "" {
			continue
		}
		out = append(out, item)
	}
	return out
}

// parseUptraceDSNFromOTLPHeaders reads "uptrace-dsn=..." out of OTEL_EXPORTER_OTLP_HEADERS.
func parseUptraceDSNFromOTLPHeaders(raw string) string {
	for _, item := range strings.Split(raw, ",") {
		key, value, ok := strings.Cut(strings.TrimSpace(item), "=")
		if !ok {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(key), "uptrace-dsn") {
			return strings.Trim(strings.TrimSpace(value), "\"'")
		}
	}
	return ""
}

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"
)

func parseAppEnv(v string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(v))
	switch value {
	case EnvDev, EnvStage, EnvProd:
		return value, nil
	default:
		return "", fmt.Errorf("invalid APP_ENV %q: valid values are %s, %s, %s", v, EnvDev, EnvStage, EnvProd)
	}
}
