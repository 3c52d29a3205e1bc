package usecase

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"
	"github.com/riskibarqy/league-sync/internal/domain/league"
	"github.com/riskibarqy/league-sync/internal/domain/platformuser"
	"github.com/riskibarqy/league-sync/internal/platform/logging"
	"go.opentelemetry.io/otel/attribute"
)

const (
	DefaultSyncSport          = "nfl"
	DefaultSyncMaxConcurrency = 5
	MaxSyncConcurrency        = 32
)

// Sync stages reported by SyncFatalError.
const (
	StageValidate    = "validate"
	StageResolveUser = "resolve_user"
	StageLinkAccount = "link_account"
	StageDispatch    = "dispatch"
)

// LeagueStatus is the per-league outcome of one sync pass.
type LeagueStatus string

const (
	LeagueStatusSynced             LeagueStatus = "synced"
	LeagueStatusIdentityUnresolved LeagueStatus = "identity_unresolved"
	LeagueStatusFailed             LeagueStatus = "failed"
)

type LeagueOutcome struct {
	LeagueID               string       `json:"league_id"`
	LeagueName             string       `json:"league_name"`
	Season                 string       `json:"season"`
	Status                 LeagueStatus `json:"status"`
	LocalLeagueID          int64        `json:"local_league_id,omitempty"`
	Rank                   int          `json:"rank"`
	TeamName               string       `json:"team_name,omitempty"`
	BracketEntriesInserted int          `json:"bracket_entries_inserted"`
	Retryable              bool         `json:"retryable,omitempty"`
	Message                string       `json:"message,omitempty"`
	DurationMs             int64        `json:"duration_ms"`
}

// SyncResult supports "synced N of M leagues" reporting. Identity-unresolved leagues are
// persisted with placeholder standings and count as synced.
type SyncResult struct {
	RunID          string            `json:"run_id"`
	LocalUserID    string            `json:"local_user_id"`
	RemoteUsername string            `json:"remote_username"`
	RemoteUserID   string            `json:"remote_user_id"`
	TotalCount     int               `json:"total_count"`
	SyncedCount    int               `json:"synced_count"`
	DegradedCount  int               `json:"degraded_count"`
	WorkerCount    int               `json:"worker_count"`
	Leagues        []LeagueOutcome   `json:"leagues"`
	Errors         []LeagueSyncError `json:"errors"`
	StartedAt      time.Time         `json:"started_at"`
	FinishedAt     time.Time         `json:"finished_at"`
}

// SyncObserver receives run and league level outcomes; a nil observer is ignored.
type SyncObserver interface {
	ObserveSync(outcome string, elapsed time.Duration)
	ObserveLeague(status string)
}

type SyncConfig struct {
	Sport          string
	Seasons        []string
	MaxConcurrency int
}

type SyncCoordinator struct {
	remote     RemoteSportsProvider
	users      platformuser.Repository
	reconciler *LeagueReconciler
	cfg        SyncConfig
	logger     *logging.Logger
	metrics    SyncObserver
	now        func() time.Time
	newRunID   func() string
}

func NewSyncCoordinator(
	remote RemoteSportsProvider,
	users platformuser.Repository,
	reconciler *LeagueReconciler,
	cfg SyncConfig,
	logger *logging.Logger,
	metrics SyncObserver,
) *SyncCoordinator {
	if logger == nil {
		logger = logging.Default()
	}
	return &SyncCoordinator{
		remote:     remote,
		users:      users,
		reconciler: reconciler,
		cfg:        normalizeSyncConfig(cfg, time.Now()),
		logger:     logger.Named("sync"),
		metrics:    metrics,
		now:        time.Now,
		newRunID:   uuid.NewString,
	}
}

func normalizeSyncConfig(cfg SyncConfig, now time.Time) SyncConfig {
	cfg.Sport = strings.ToLower(strings.TrimSpace(cfg.Sport))
	if cfg.Sport == "" {
		cfg.Sport = DefaultSyncSport
	}

	seasons := make([]string, 0, len(cfg.Seasons))
	seen := make(map[string]struct{}, len(cfg.Seasons))
	for _, season := range cfg.Seasons {
		season = strings.TrimSpace(season)
		if season == "" {
			continue
		}
		if _, ok := seen[season]; ok {
			continue
		}
		seen[season] = struct{}{}
		seasons = append(seasons, season)
	}
	if len(seasons) == 0 {
		seasons = DefaultSeasons(now)
	}
	cfg.Seasons = seasons

	cfg.MaxConcurrency = clampConcurrency(cfg.MaxConcurrency)
	return cfg
}

// DefaultSeasons returns the current and the previous calendar year.
func DefaultSeasons(now time.Time) []string {
	year := now.Year()
	return []string{strconv.Itoa(year), strconv.Itoa(year - 1)}
}

func clampConcurrency(v int) int {
	switch {
	case v <= 0:
		return DefaultSyncMaxConcurrency
	case v > MaxSyncConcurrency:
		return MaxSyncConcurrency
	default:
		return v
	}
}

// Sync mirrors every league of remoteUsername for localUserID. A non-nil error is a
// *SyncFatalError and means no league was attempted. Per-league failures are reported in
// SyncResult.Errors and never abort the remaining leagues.
func (c *SyncCoordinator) Sync(ctx context.Context, localUserID, remoteUsername string) (SyncResult, error) {
	localUserID = strings.TrimSpace(localUserID)
	remoteUsername = strings.TrimSpace(remoteUsername)

	ctx, span := startUsecaseSpan(ctx, "usecase.SyncCoordinator.Sync",
		attribute.String("sync.profile_id", localUserID),
		attribute.String("sync.username", remoteUsername),
	)
	defer span.End()

	started := c.now()
	result := SyncResult{
		RunID:          c.newRunID(),
		LocalUserID:    localUserID,
		RemoteUsername: remoteUsername,
		StartedAt:      started,
		Leagues:        []LeagueOutcome{},
		Errors:         []LeagueSyncError{},
	}
	logger := c.logger.With("run_id", result.RunID, "profile_id", localUserID)

	fatal := func(stage string, err error) (SyncResult, error) {
		recordSpanError(span, err)
		c.observeSync("fatal", started)
		logger.WarnContext(ctx, "sync aborted", "stage", stage, "username", remoteUsername, "error", err)
		return SyncResult{}, &SyncFatalError{
			LocalUserID:    localUserID,
			RemoteUsername: remoteUsername,
			Stage:          stage,
			Err:            err,
		}
	}

	if localUserID == "" || remoteUsername == "" {
		return fatal(StageValidate, fmt.Errorf("%w: profile id and username are required", ErrInvalidInput))
	}

	participant, err := c.remote.GetParticipant(ctx, remoteUsername)
	if err != nil {
		return fatal(StageResolveUser, crerr.Wrapf(err, "resolve remote user %q", remoteUsername))
	}
	result.RemoteUserID = participant.RemoteUserID

	linkage, err := c.linkAccount(ctx, localUserID, remoteUsername, participant)
	if err != nil {
		return fatal(StageLinkAccount, err)
	}

	leagues := c.listLeagues(ctx, participant.RemoteUserID, &result)
	result.TotalCount = len(leagues)

	outcomes, workers, err := c.reconcileAll(ctx, leagues, linkage)
	if err != nil {
		return fatal(StageDispatch, err)
	}
	result.WorkerCount = workers

	for _, item := range outcomes {
		result.Leagues = append(result.Leagues, item.outcome)
		if item.err != nil {
			result.Errors = append(result.Errors, *item.err)
		}
		switch item.outcome.Status {
		case LeagueStatusSynced:
			result.SyncedCount++
		case LeagueStatusIdentityUnresolved:
			result.SyncedCount++
			result.DegradedCount++
		}
		if c.metrics != nil {
			c.metrics.ObserveLeague(string(item.outcome.Status))
		}
	}
	sortOutcomes(result.Leagues)

	result.FinishedAt = c.now()
	runOutcome := "ok"
	if len(result.Errors) > 0 {
		runOutcome = "partial"
	}
	c.observeSync(runOutcome, started)

	logger.InfoContext(ctx, "sync finished",
		"remote_user_id", result.RemoteUserID,
		"total", result.TotalCount,
		"synced", result.SyncedCount,
		"degraded", result.DegradedCount,
		"errors", len(result.Errors),
		"duration_ms", result.FinishedAt.Sub(started).Milliseconds(),
	)
	return result, nil
}

func (c *SyncCoordinator) linkAccount(
	ctx context.Context,
	localUserID, remoteUsername string,
	participant RemoteParticipant,
) (platformuser.Linkage, error) {
	linkage := platformuser.Linkage{
		ProfileID:   localUserID,
		Username:    remoteUsername,
		DisplayName: participant.DisplayName,
		AvatarID:    participant.AvatarID,
		Season:      c.cfg.Seasons[0],
	}
	if err := c.users.Upsert(ctx, linkage); err != nil {
		return platformuser.Linkage{}, persistenceErr(err, "upsert platform user profile=%s", localUserID)
	}

	stored, exists, err := c.users.GetByProfileID(ctx, localUserID)
	if err != nil {
		return platformuser.Linkage{}, persistenceErr(err, "load platform user profile=%s", localUserID)
	}
	if !exists || stored.ID <= 0 {
		return platformuser.Linkage{}, crerr.Mark(crerr.Newf("platform user profile=%s missing after upsert", localUserID), ErrPersistenceFailure)
	}
	return stored, nil
}

// listLeagues concatenates every configured season. The first occurrence of a remote league
// id wins; a failing season is recorded and the others continue.
func (c *SyncCoordinator) listLeagues(ctx context.Context, remoteUserID string, result *SyncResult) []league.Snapshot {
	seen := make(map[string]struct{})
	out := make([]league.Snapshot, 0, 16)
	for _, season := range c.cfg.Seasons {
		items, err := c.remote.ListLeagues(ctx, remoteUserID, c.cfg.Sport, season)
		if err != nil {
			syncErr := newLeagueSyncError("", "", season, crerr.Wrapf(err, "list leagues season=%s", season))
			result.Errors = append(result.Errors, *syncErr)
			c.logger.WarnContext(ctx, "list leagues failed", "season", season, "error", err)
			continue
		}
		for _, item := range items {
			if _, ok := seen[item.RemoteLeagueID]; ok {
				continue
			}
			seen[item.RemoteLeagueID] = struct{}{}
			out = append(out, item)
		}
	}
	return out
}

type leagueRun struct {
	outcome LeagueOutcome
	err     *LeagueSyncError
}

func (c *SyncCoordinator) reconcileAll(
	ctx context.Context,
	leagues []league.Snapshot,
	linkage platformuser.Linkage,
) ([]leagueRun, int, error) {
	if len(leagues) == 0 {
		return nil, 0, nil
	}

	workerCount := min(c.cfg.MaxConcurrency, len(leagues))
	pool, err := ants.NewPool(workerCount)
	if err != nil {
		return nil, 0, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	runs := make([]leagueRun, len(leagues))
	var inFlight, peak atomic.Int32
	var workers sync.WaitGroup
	for idx, item := range leagues {
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()
			raiseToMax(&peak, inFlight.Add(1))
			defer inFlight.Add(-1)
			runs[idx] = c.reconcileOne(ctx, item, linkage)
		}); err != nil {
			workers.Done()
			runs[idx] = leagueRun{
				outcome: LeagueOutcome{LeagueID: item.RemoteLeagueID, LeagueName: item.Name, Season: item.Season, Status: LeagueStatusFailed, Message: err.Error()},
				err:     newLeagueSyncError(item.RemoteLeagueID, item.Name, item.Season, fmt.Errorf("submit league to worker pool: %w", err)),
			}
		}
	}
	workers.Wait()

	c.logger.DebugContext(ctx, "league fan-out done", "leagues", len(leagues), "workers", workerCount, "peak_in_flight", int(peak.Load()))
	return runs, workerCount, nil
}

// raiseToMax stores n in peak unless a larger value is already there.
func raiseToMax(peak *atomic.Int32, n int32) {
	for {
		current := peak.Load()
		if n <= current || peak.CompareAndSwap(current, n) {
			return
		}
	}
}

func (c *SyncCoordinator) reconcileOne(ctx context.Context, snapshot league.Snapshot, linkage platformuser.Linkage) leagueRun {
	start := time.Now()
	outcome := LeagueOutcome{
		LeagueID:   snapshot.RemoteLeagueID,
		LeagueName: snapshot.Name,
		Season:     snapshot.Season,
	}

	res, err := c.reconciler.Reconcile(ctx, snapshot, linkage, linkage.ID)
	outcome.DurationMs = time.Since(start).Milliseconds()
	outcome.LocalLeagueID = res.LocalLeagueID
	outcome.Rank = res.Rank
	outcome.TeamName = res.TeamName
	outcome.BracketEntriesInserted = res.BracketEntriesInserted

	if err != nil {
		var syncErr *LeagueSyncError
		if !crerr.As(err, &syncErr) {
			syncErr = newLeagueSyncError(snapshot.RemoteLeagueID, snapshot.Name, snapshot.Season, err)
		}
		outcome.Status = LeagueStatusFailed
		outcome.Retryable = syncErr.Retryable()
		outcome.Message = syncErr.Message
		c.logger.WarnContext(ctx, "league sync failed",
			"league_id", snapshot.RemoteLeagueID,
			"season", snapshot.Season,
			"kind", string(syncErr.Kind),
			"error", syncErr.Err,
		)
		return leagueRun{outcome: outcome, err: syncErr}
	}

	outcome.Status = LeagueStatusSynced
	if !res.IdentityResolved {
		outcome.Status = LeagueStatusIdentityUnresolved
	}
	return leagueRun{outcome: outcome}
}

func (c *SyncCoordinator) observeSync(outcome string, started time.Time) {
	if c.metrics == nil {
		return
	}
	c.metrics.ObserveSync(outcome, c.now().Sub(started))
}

func sortOutcomes(items []LeagueOutcome) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Season != items[j].Season {
			return items[i].Season > items[j].Season
		}
		return items[i].LeagueID < items[j].LeagueID
	})
}
