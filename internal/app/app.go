package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/riskibarqy/league-sync/external/sleeper"
	"github.com/riskibarqy/league-sync/internal/config"
	"github.com/riskibarqy/league-sync/internal/domain/bracket"
	"github.com/riskibarqy/league-sync/internal/domain/league"
	"github.com/riskibarqy/league-sync/internal/domain/platformuser"
	"github.com/riskibarqy/league-sync/internal/infrastructure/repository/cache"
	"github.com/riskibarqy/league-sync/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/league-sync/internal/infrastructure/repository/postgres"
	"github.com/riskibarqy/league-sync/internal/interfaces/httpapi"
	"github.com/riskibarqy/league-sync/internal/observability"
	basecache "github.com/riskibarqy/league-sync/internal/platform/cache"
	"github.com/riskibarqy/league-sync/internal/platform/dburl"
	"github.com/riskibarqy/league-sync/internal/platform/logging"
	"github.com/riskibarqy/league-sync/internal/platform/resilience"
	"github.com/riskibarqy/league-sync/internal/usecase"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"
)

const dbPingTimeout = 5 * time.Second

// App holds the HTTP server and the background sync scheduler built from one Config.
type App struct {
	Server    *http.Server
	Scheduler *usecase.SyncScheduler
	Metrics   *observability.Metrics

	db *sqlx.DB
}

type repositories struct {
	users    platformuser.Repository
	leagues  league.Repository
	brackets bracket.Repository
}

func New(ctx context.Context, cfg config.Config, logger *logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.HTTPAddr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	metrics := observability.NewMetrics()

	repos, db, err := buildRepositories(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	remote := sleeper.NewClient(sleeper.ClientConfig{
		BaseURL:    cfg.SleeperBaseURL,
		Timeout:    cfg.SleeperTimeout,
		RatePerSec: cfg.SleeperRatePerSec,
		RateBurst:  cfg.SleeperRateBurst,
		CircuitBreaker: resilience.BreakerConfig{
			Enabled:          cfg.SleeperCircuitEnabled,
			FailureThreshold: cfg.SleeperCircuitFailureCount,
			OpenTimeout:      cfg.SleeperCircuitOpenTimeout,
			HalfOpenProbes:   cfg.SleeperCircuitHalfOpenReq,
		},
		Logger:  logger,
		Metrics: metrics,
	})

	reconciler := usecase.NewLeagueReconciler(remote, repos.leagues, repos.brackets, logger)
	coordinator := usecase.NewSyncCoordinator(remote, repos.users, reconciler, usecase.SyncConfig{
		Sport:          cfg.SyncSport,
		Seasons:        cfg.SyncSeasons,
		MaxConcurrency: cfg.SyncMaxConcurrency,
	}, logger, metrics)
	trending := usecase.NewTrendingService(remote, basecache.NewStore[[]usecase.TrendingPlayer](cfg.CacheTTL))
	queries := usecase.NewLeagueQueryService(repos.users, repos.leagues, repos.brackets)

	handler := httpapi.NewHandler(coordinator, queries, trending, logger)
	router := httpapi.NewRouter(handler, httpapi.RouterConfig{
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		InternalJobToken:   cfg.InternalJobToken,
		Metrics:            metrics.Handler(),
	}, logger)

	return &App{
		Server: &http.Server{
			Addr:         cfg.HTTPAddr,
			Handler:      router,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
		},
		Scheduler: usecase.NewSyncScheduler(coordinator, cfg.SyncInterval, logger),
		Metrics:   metrics,
		db:        db,
	}, nil
}

// Close releases the database pool, if one was opened.
func (a *App) Close() error {
	if a == nil || a.db == nil {
		return nil
	}
	return a.db.Close()
}

func buildRepositories(ctx context.Context, cfg config.Config, logger *logging.Logger) (repositories, *sqlx.DB, error) {
	if cfg.DBURL == "" {
		logger.Warn("DB_URL not set, using in-memory repositories")
		return repositories{
			users:    memory.NewPlatformUserRepository(),
			leagues:  memory.NewLeagueRepository(),
			brackets: memory.NewBracketRepository(),
		}, nil, nil
	}

	db, err := openDB(ctx, cfg)
	if err != nil {
		return repositories{}, nil, err
	}

	return repositories{
		users:    postgres.NewPlatformUserRepository(db),
		leagues:  cache.NewLeagueRepository(postgres.NewLeagueRepository(db), cfg.CacheTTL),
		brackets: cache.NewBracketRepository(postgres.NewBracketRepository(db), cfg.CacheTTL),
	}, db, nil
}

func openDB(ctx context.Context, cfg config.Config) (*sqlx.DB, error) {
	dsn := dburl.Normalize(cfg.DBURL, cfg.DBDisablePreparedBinary)
	opts := []otelsql.Option{
		otelsql.WithDBSystem("postgresql"),
		otelsql.WithQueryFormatter(formatDBQueryForTrace),
	}
	if name := dburl.Name(dsn); name != "" {
		opts = append(opts, otelsql.WithDBName(name))
	}

	db, err := otelsqlx.Open("postgres", dsn, opts...)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	otelsql.ReportDBStatsMetrics(db.DB, opts...)

	pingCtx, cancel := context.WithTimeout(ctx, dbPingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return db, nil
}
