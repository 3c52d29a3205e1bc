package observability

import (
	"context"
	"testing"

	"github.com/riskibarqy/league-sync/internal/config"
	"github.com/riskibarqy/league-sync/internal/platform/logging"
)

func TestInitUptrace_Disabled(t *testing.T) {
	t.Parallel()

	cfg := config.Config{
		UptraceEnabled: false,
		ServiceName:    "league-sync-api",
		ServiceVersion: "dev",
		AppEnv:         config.EnvDev,
	}

	telemetry := InitUptrace(cfg, logging.NewNop())
	if telemetry.LogCore != nil {
		t.Fatalf("expected no log core when uptrace is disabled")
	}
	if err := telemetry.Shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown uptrace: %v", err)
	}
}

func TestInitPyroscope_Disabled(t *testing.T) {
	t.Parallel()

	stop, err := InitPyroscope(config.Config{PyroscopeEnabled: false}, nil)
	if err != nil {
		t.Fatalf("init pyroscope: %v", err)
	}
	if err := stop(); err != nil {
		t.Fatalf("stop pyroscope: %v", err)
	}
}

func TestStartPprofServer_Disabled(t *testing.T) {
	t.Parallel()

	if srv := StartPprofServer(config.Config{PprofEnabled: false}, nil); srv != nil {
		t.Fatalf("expected nil server when pprof is disabled")
	}
	if err := StopPprofServer(context.Background(), nil); err != nil {
		t.Fatalf("stop nil server: %v", err)
	}
}
