package observability

import (
	"context"

	"github.com/riskibarqy/league-sync/internal/config"
	"github.com/riskibarqy/league-sync/internal/platform/logging"
	"github.com/uptrace/uptrace-go/uptrace"
	"go.uber.org/zap/zapcore"
)

// Telemetry holds what InitUptrace configured. LogCore is nil unless log export is on.
type Telemetry struct {
	LogCore  zapcore.Core
	Shutdown func(context.Context) error
}

// InitUptrace configures the global OpenTelemetry providers for Uptrace.
func InitUptrace(cfg config.Config, logger *logging.Logger) Telemetry {
	if logger == nil {
		logger = logging.Default()
	}
	noop := Telemetry{Shutdown: func(context.Context) error { return nil }}

	if !cfg.UptraceEnabled {
		logger.Info("uptrace disabled", "reason", "UPTRACE_ENABLED=false")
		return noop
	}
	if cfg.UptraceDSN == "" {
		logger.Info("uptrace disabled", "reason", "UPTRACE_DSN empty")
		return noop
	}

	uptrace.ConfigureOpentelemetry(
		uptrace.WithDSN(cfg.UptraceDSN),
		uptrace.WithServiceName(cfg.ServiceName),
		uptrace.WithServiceVersion(cfg.ServiceVersion),
		uptrace.WithDeploymentEnvironment(cfg.AppEnv),
		uptrace.WithLoggingEnabled(cfg.UptraceLogsEnabled),
	)

	out := Telemetry{Shutdown: uptrace.Shutdown}
	if cfg.UptraceLogsEnabled {
		out.LogCore = NewUptraceLogCore(cfg.ServiceVersion, cfg.LogLevel)
	}

	logger.Info("uptrace enabled",
		"service_name", cfg.ServiceName,
		"service_version", cfg.ServiceVersion,
		"environment", cfg.AppEnv,
		"logs_enabled", cfg.UptraceLogsEnabled,
	)
	return out
}
