package httpapi

import (
	"net/http"

	"github.com/riskibarqy/league-sync/internal/platform/logging"
)

type RouterConfig struct {
	CORSAllowedOrigins []string
	InternalJobToken   string
	Metrics            http.Handler
}

func NewRouter(handler *Handler, cfg RouterConfig, logger *logging.Logger) http.Handler {
	if logger == nil {
		logger = logging.Default()
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", handler.Healthz)
	if cfg.Metrics != nil {
		mux.Handle("GET /metrics", cfg.Metrics)
	}

	mux.HandleFunc("GET /v1/profiles/{profileID}/leagues", handler.ListProfileLeagues)
	mux.HandleFunc("GET /v1/leagues/{leagueID}/brackets", handler.ListLeagueBrackets)
	mux.HandleFunc("GET /v1/players/{sport}/trending/{direction}", handler.ListTrendingPlayers)

	internal := func(next http.HandlerFunc) http.Handler {
		return RequireInternalJobToken(cfg.InternalJobToken, next)
	}
	mux.Handle("POST /v1/sync", internal(handler.Sync))
	mux.Handle("POST /v1/internal/jobs/sync-all", internal(handler.SyncAll))

	return RequestTracing(RequestLogging(logger, CORS(cfg.CORSAllowedOrigins, recoverPanic(logger, mux))))
}
