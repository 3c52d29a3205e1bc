package usecase

import (
	"context"
	"maps"

	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/league-sync/internal/domain/bracket"
	"github.com/riskibarqy/league-sync/internal/domain/league"
	"github.com/riskibarqy/league-sync/internal/domain/platformuser"
	"github.com/riskibarqy/league-sync/internal/domain/standings"
	"github.com/riskibarqy/league-sync/internal/platform/logging"
	"github.com/sourcegraph/conc/pool"
	"go.opentelemetry.io/otel/attribute"
)

// ReconcileResult describes what one league reconciliation wrote.
type ReconcileResult struct {
	LocalLeagueID          int64          `json:"local_league_id"`
	IdentityResolved       bool           `json:"identity_resolved"`
	Rank                   int            `json:"rank"`
	TeamName               string         `json:"team_name"`
	BracketEntriesInserted int            `json:"bracket_entries_inserted"`
	BracketTypesSkipped    []bracket.Type `json:"bracket_types_skipped,omitempty"`
}

type LeagueReconciler struct {
	remote   RemoteSportsProvider
	leagues  league.Repository
	brackets bracket.Repository
	resolver IdentityResolver
	logger   *logging.Logger
}

func NewLeagueReconciler(
	remote RemoteSportsProvider,
	leagues league.Repository,
	brackets bracket.Repository,
	logger *logging.Logger,
) *LeagueReconciler {
	if logger == nil {
		logger = logging.Default()
	}
	return &LeagueReconciler{
		remote:   remote,
		leagues:  leagues,
		brackets: brackets,
		logger:   logger.Named("reconciler"),
	}
}

// Reconcile mirrors one remote league for one linked account. Any returned error is a
// *LeagueSyncError. When LocalLeagueID is set on the result the league row was committed
// even if a later bracket step failed.
func (r *LeagueReconciler) Reconcile(
	ctx context.Context,
	snapshot league.Snapshot,
	linkage platformuser.Linkage,
	platformUserID int64,
) (result ReconcileResult, err error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LeagueReconciler.Reconcile",
		attribute.String("league.remote_id", snapshot.RemoteLeagueID),
		attribute.String("league.season", snapshot.Season),
	)
	defer span.End()

	fail := func(cause error) (ReconcileResult, error) {
		recordSpanError(span, cause)
		return result, newLeagueSyncError(snapshot.RemoteLeagueID, snapshot.Name, snapshot.Season, cause)
	}

	if err := snapshot.Validate(); err != nil {
		return fail(crerr.Mark(err, ErrRemoteMalformed))
	}
	if err := ctx.Err(); err != nil {
		return fail(err)
	}

	participants, rosters, err := r.fetchLeagueState(ctx, snapshot.RemoteLeagueID)
	if err != nil {
		return fail(err)
	}

	participant, found := r.resolver.Resolve(participants, linkage)
	var (
		row      standings.Row
		rank     int
		teamName = linkage.Username
	)
	if found {
		// A participant without a roster is unresolved too and keeps the username placeholder.
		if roster, ok := rosterOwnedBy(rosters, participant.RemoteUserID); ok {
			teamName = participantTeamName(participant)
			rank = standings.Rank(rosters)[roster.RosterID]
			row = standings.Summarize(roster)
		} else {
			found = false
		}
	}
	if !found {
		r.logger.InfoContext(ctx, "identity unresolved, storing placeholder standings",
			"league_id", snapshot.RemoteLeagueID,
			"username", linkage.Username,
			"reason", ErrIdentityUnresolved,
		)
	}

	enhanced := snapshot.Settings.Clone()
	maps.Copy(enhanced, row.Document())
	enhanced[league.KeyTeamName] = teamName
	enhanced[league.KeyRank] = rank

	// Last point where cancellation leaves nothing behind.
	if err := ctx.Err(); err != nil {
		return fail(err)
	}

	localID, err := r.leagues.Upsert(ctx, league.LinkedLeague{
		PlatformUserID:   platformUserID,
		Snapshot:         snapshot,
		EnhancedSettings: enhanced,
	})
	if err != nil {
		return fail(persistenceErr(err, "upsert league %s", snapshot.RemoteLeagueID))
	}

	result = ReconcileResult{
		LocalLeagueID:    localID,
		IdentityResolved: found,
		Rank:             rank,
		TeamName:         teamName,
	}

	if snapshot.Status.HasPlayoffs() {
		inserted, skipped, err := r.syncBrackets(ctx, snapshot.RemoteLeagueID, localID)
		result.BracketEntriesInserted = inserted
		result.BracketTypesSkipped = skipped
		if err != nil {
			return fail(err)
		}
	}

	r.logger.DebugContext(ctx, "league reconciled",
		"league_id", snapshot.RemoteLeagueID,
		"local_league_id", localID,
		"identity_resolved", found,
		"rank", rank,
		"bracket_entries", result.BracketEntriesInserted,
	)
	return result, nil
}

// fetchLeagueState loads users and rosters concurrently; the first failure cancels the other.
func (r *LeagueReconciler) fetchLeagueState(ctx context.Context, leagueID string) ([]RemoteParticipant, []RemoteRoster, error) {
	var (
		participants []RemoteParticipant
		rosters      []RemoteRoster
	)

	p := pool.New().WithContext(ctx).WithCancelOnError().WithFirstError()
	p.Go(func(ctx context.Context) error {
		items, err := r.remote.GetLeagueParticipants(ctx, leagueID)
		if err != nil {
			return crerr.Wrapf(err, "fetch users league=%s", leagueID)
		}
		participants = items
		return nil
	})
	p.Go(func(ctx context.Context) error {
		items, err := r.remote.GetRosters(ctx, leagueID)
		if err != nil {
			return crerr.Wrapf(err, "fetch rosters league=%s", leagueID)
		}
		rosters = items
		return nil
	})
	if err := p.Wait(); err != nil {
		return nil, nil, err
	}
	return participants, rosters, nil
}

// syncBrackets inserts bracket rows once per league. A bracket type the remote does not have is
// skipped; cancellation, transient remote failures and store failures are returned before any insert.
func (r *LeagueReconciler) syncBrackets(ctx context.Context, remoteLeagueID string, localID int64) (int, []bracket.Type, error) {
	exists, err := r.brackets.ExistsByLeague(ctx, localID)
	if err != nil {
		return 0, nil, persistenceErr(err, "check brackets league_id=%d", localID)
	}
	if exists {
		return 0, nil, nil
	}

	var (
		entries []bracket.Entry
		skipped []bracket.Type
	)
	for _, bracketType := range bracket.Types() {
		matches, err := r.remote.GetBracket(ctx, remoteLeagueID, bracketType)
		if err != nil {
			if !bracketSkippable(ctx, err) {
				// Nothing is inserted so a later pass still sees no brackets and retries both types.
				return 0, nil, crerr.Wrapf(err, "fetch %s bracket league=%s", bracketType, remoteLeagueID)
			}
			r.logger.WarnContext(ctx, "bracket fetch failed, skipping type",
				"league_id", remoteLeagueID,
				"bracket_type", string(bracketType),
				"error", err,
			)
			skipped = append(skipped, bracketType)
			continue
		}
		for _, match := range matches {
			entry := bracket.Entry{
				LeagueID:       localID,
				Type:           bracketType,
				Round:          match.Round,
				MatchID:        match.MatchID,
				Team1RosterID:  match.Team1RosterID,
				Team2RosterID:  match.Team2RosterID,
				WinnerRosterID: match.WinnerRosterID,
				LoserRosterID:  match.LoserRosterID,
				Position:       match.Position,
			}
			if err := entry.Validate(); err != nil {
				r.logger.WarnContext(ctx, "dropping invalid bracket entry", "league_id", remoteLeagueID, "error", err)
				continue
			}
			entries = append(entries, entry)
		}
	}
	if len(entries) == 0 {
		return 0, skipped, nil
	}

	inserted, err := r.brackets.InsertMany(ctx, entries)
	if err != nil {
		return 0, skipped, persistenceErr(err, "insert brackets league_id=%d", localID)
	}
	return inserted, skipped, nil
}

// bracketSkippable reports whether a bracket fetch failure is a permanent "no bracket" answer.
func bracketSkippable(ctx context.Context, err error) bool {
	if ctx.Err() != nil || crerr.Is(err, context.Canceled) || crerr.Is(err, context.DeadlineExceeded) {
		return false
	}
	return crerr.Is(err, ErrRemoteNotFound) || crerr.Is(err, ErrRemoteMalformed)
}

func participantTeamName(p RemoteParticipant) string {
	switch {
	case p.TeamName != "":
		return p.TeamName
	case p.DisplayName != "":
		return p.DisplayName
	default:
		return p.Username
	}
}

func rosterOwnedBy(rosters []RemoteRoster, remoteUserID string) (RemoteRoster, bool) {
	if remoteUserID == "" {
		return RemoteRoster{}, false
	}
	for _, item := range rosters {
		if item.OwnerRemoteUserID == remoteUserID {
			return item, true
		}
	}
	return RemoteRoster{}, false
}
