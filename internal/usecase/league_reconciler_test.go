package usecase

import (
	"context"
	"testing"

	crerr "github.com/cockroachdb/errors"
	"github.com/google/go-cmp/cmp"
	"github.com/riskibarqy/league-sync/internal/domain/bracket"
	"github.com/riskibarqy/league-sync/internal/domain/league"
	"github.com/riskibarqy/league-sync/internal/domain/platformuser"
	"github.com/riskibarqy/league-sync/internal/infrastructure/repository/memory"
	bracketmock "github.com/riskibarqy/league-sync/internal/mocks/domain/bracket"
	leaguemock "github.com/riskibarqy/league-sync/internal/mocks/domain/league"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type reconcilerFixture struct {
	remote     *fakeRemote
	leagues    *memory.LeagueRepository
	brackets   *memory.BracketRepository
	reconciler *LeagueReconciler
}

func newReconcilerFixture() reconcilerFixture {
	remote := newFakeRemote()
	leagues := memory.NewLeagueRepository()
	brackets := memory.NewBracketRepository()
	return reconcilerFixture{
		remote:     remote,
		leagues:    leagues,
		brackets:   brackets,
		reconciler: NewLeagueReconciler(remote, leagues, brackets, testLogger()),
	}
}

func requireLeagueSyncError(t *testing.T, err error, kind ErrorKind) *LeagueSyncError {
	t.Helper()
	require.Error(t, err)
	var syncErr *LeagueSyncError
	require.True(t, crerr.As(err, &syncErr), "expected *LeagueSyncError, got %T: %v", err, err)
	assert.Equal(t, kind, syncErr.Kind)
	return syncErr
}

func TestLeagueReconciler_ResolvedUserScenario(t *testing.T) {
	t.Parallel()

	fx := newReconcilerFixture()
	snapshot := seedScenarioLeague(fx.remote, "L1", league.StatusComplete)
	fx.remote.brackets["L1/winners"] = []RemoteBracketMatch{
		{Round: 1, MatchID: 1, Team1RosterID: intPtr(1), Team2RosterID: intPtr(2), WinnerRosterID: intPtr(1), LoserRosterID: intPtr(2), Position: intPtr(1)},
	}
	fx.remote.bracketErr["L1/losers"] = remoteNotFound("status=404")

	linkage := platformuser.Linkage{ID: 9, ProfileID: "p1", Username: "U1"}
	res, err := fx.reconciler.Reconcile(context.Background(), snapshot, linkage, 9)
	require.NoError(t, err)

	assert.True(t, res.IdentityResolved)
	assert.Equal(t, 1, res.Rank)
	assert.Equal(t, "U1", res.TeamName)
	assert.Equal(t, 1, res.BracketEntriesInserted)
	assert.Equal(t, []bracket.Type{bracket.TypeLosers}, res.BracketTypesSkipped)

	stored, ok, err := fx.leagues.GetByID(context.Background(), res.LocalLeagueID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, int64(9), stored.PlatformUserID)

	want := league.Document{
		"playoff_teams":        2,
		"team_name":            "U1",
		"rank":                 1,
		"wins":                 10,
		"losses":               3,
		"ties":                 0,
		"fpts":                 1450,
		"fpts_decimal":         20,
		"fpts_against":         0,
		"fpts_against_decimal": 0,
	}
	if diff := cmp.Diff(want, stored.EnhancedSettings); diff != "" {
		t.Fatalf("enhanced settings mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, 77, stored.Snapshot.Settings["rank"], "raw settings stay untouched")
}

func TestLeagueReconciler_InterruptedBracketFetchRetriesNextPass(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      error
		wantKind ErrorKind
	}{
		{name: "canceled", err: context.Canceled, wantKind: KindCanceled},
		{name: "deadline", err: context.DeadlineExceeded, wantKind: KindCanceled},
		{name: "remote unavailable", err: remoteUnavailable("status=503"), wantKind: KindRemoteUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ctx := context.Background()
			fx := newReconcilerFixture()
			snapshot := seedScenarioLeague(fx.remote, "L1", league.StatusComplete)
			fx.remote.brackets["L1/winners"] = []RemoteBracketMatch{{Round: 1, MatchID: 1, Team1RosterID: intPtr(1), Team2RosterID: intPtr(2)}}
			fx.remote.brackets["L1/losers"] = []RemoteBracketMatch{{Round: 1, MatchID: 2, Team1RosterID: intPtr(2), Team2RosterID: intPtr(1)}}
			fx.remote.bracketErr["L1/losers"] = tt.err
			linkage := platformuser.Linkage{ID: 9, ProfileID: "p1", Username: "U1"}

			first, err := fx.reconciler.Reconcile(ctx, snapshot, linkage, 9)
			requireLeagueSyncError(t, err, tt.wantKind)
			require.NotZero(t, first.LocalLeagueID, "league row is committed before brackets")
			exists, err := fx.brackets.ExistsByLeague(ctx, first.LocalLeagueID)
			require.NoError(t, err)
			assert.False(t, exists, "no bracket type may be stored after an interrupted fetch")

			fx.remote.mu.Lock()
			delete(fx.remote.bracketErr, "L1/losers")
			fx.remote.mu.Unlock()

			second, err := fx.reconciler.Reconcile(ctx, snapshot, linkage, 9)
			require.NoError(t, err)
			assert.Equal(t, 2, second.BracketEntriesInserted)
			assert.Empty(t, second.BracketTypesSkipped)

			rows, err := fx.brackets.ListByLeague(ctx, second.LocalLeagueID)
			require.NoError(t, err)
			require.Len(t, rows, 2)
			assert.Equal(t, bracket.TypeWinners, rows[0].Type)
			assert.Equal(t, bracket.TypeLosers, rows[1].Type)
		})
	}
}

func TestLeagueReconciler_ParticipantWithoutRosterUsesPlaceholder(t *testing.T) {
	t.Parallel()

	fx := newReconcilerFixture()
	snapshot := seedScenarioLeague(fx.remote, "L1", league.StatusInSeason)
	fx.remote.users["L1"] = append(fx.remote.users["L1"], RemoteParticipant{RemoteUserID: "U4", DisplayName: "U4", TeamName: "Benchwarmers"})

	res, err := fx.reconciler.Reconcile(context.Background(), snapshot, platformuser.Linkage{ID: 4, ProfileID: "p4", Username: "U4"}, 4)
	require.NoError(t, err)
	assert.False(t, res.IdentityResolved)
	assert.Zero(t, res.Rank)
	assert.Equal(t, "U4", res.TeamName)

	stored, ok, err := fx.leagues.GetByID(context.Background(), res.LocalLeagueID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "U4", stored.EnhancedSettings["team_name"])
	assert.Equal(t, 0, stored.EnhancedSettings["wins"])
}

func TestLeagueReconciler_UsesMetadataTeamName(t *testing.T) {
	t.Parallel()

	fx := newReconcilerFixture()
	snapshot := seedScenarioLeague(fx.remote, "L1", league.StatusInSeason)

	res, err := fx.reconciler.Reconcile(context.Background(), snapshot, platformuser.Linkage{ID: 1, ProfileID: "p2", Username: "U2"}, 1)
	require.NoError(t, err)
	assert.Equal(t, "Second Place", res.TeamName)
	assert.Equal(t, 2, res.Rank)
}

func TestLeagueReconciler_UnresolvedIdentityStoresPlaceholder(t *testing.T) {
	t.Parallel()

	fx := newReconcilerFixture()
	snapshot := seedScenarioLeague(fx.remote, "L1", league.StatusComplete)

	res, err := fx.reconciler.Reconcile(context.Background(), snapshot, platformuser.Linkage{ID: 3, ProfileID: "p3", Username: "U3"}, 3)
	require.NoError(t, err)
	assert.False(t, res.IdentityResolved)
	assert.Zero(t, res.Rank)
	assert.Equal(t, "U3", res.TeamName)

	stored, ok, err := fx.leagues.GetByID(context.Background(), res.LocalLeagueID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "U3", stored.EnhancedSettings["team_name"])
	assert.Equal(t, 0, stored.EnhancedSettings["rank"])
	assert.Equal(t, 0, stored.EnhancedSettings["wins"])
	assert.Equal(t, 0, stored.EnhancedSettings["losses"])
	assert.Equal(t, 0, stored.EnhancedSettings["fpts"])
}

func TestLeagueReconciler_ResolvedParticipantWithoutRosterIsPlaceholder(t *testing.T) {
	t.Parallel()

	fx := newReconcilerFixture()
	snapshot := seedScenarioLeague(fx.remote, "L1", league.StatusPreDraft)
	fx.remote.rosters["L1"] = fx.remote.rosters["L1"][1:]

	res, err := fx.reconciler.Reconcile(context.Background(), snapshot, platformuser.Linkage{ID: 1, ProfileID: "p1", Username: "U1"}, 1)
	require.NoError(t, err)
	assert.False(t, res.IdentityResolved)
	assert.Zero(t, res.Rank)
	assert.Equal(t, "U1", res.TeamName)
}

func TestLeagueReconciler_IsIdempotent(t *testing.T) {
	t.Parallel()

	fx := newReconcilerFixture()
	snapshot := seedScenarioLeague(fx.remote, "L1", league.StatusComplete)
	fx.remote.brackets["L1/winners"] = []RemoteBracketMatch{{Round: 1, MatchID: 1}, {Round: 2, MatchID: 2}}
	fx.remote.brackets["L1/losers"] = []RemoteBracketMatch{{Round: 1, MatchID: 1}}
	linkage := platformuser.Linkage{ID: 4, ProfileID: "p1", Username: "U1"}
	ctx := context.Background()

	first, err := fx.reconciler.Reconcile(ctx, snapshot, linkage, 4)
	require.NoError(t, err)
	assert.Equal(t, 3, first.BracketEntriesInserted)
	rowAfterFirst, _, _ := fx.leagues.GetByID(ctx, first.LocalLeagueID)
	bracketsAfterFirst, _ := fx.brackets.ListByLeague(ctx, first.LocalLeagueID)

	second, err := fx.reconciler.Reconcile(ctx, snapshot, linkage, 4)
	require.NoError(t, err)
	assert.Equal(t, first.LocalLeagueID, second.LocalLeagueID)
	assert.Zero(t, second.BracketEntriesInserted)

	rowAfterSecond, _, _ := fx.leagues.GetByID(ctx, second.LocalLeagueID)
	if diff := cmp.Diff(rowAfterFirst, rowAfterSecond); diff != "" {
		t.Fatalf("row drifted between passes (-first +second):\n%s", diff)
	}
	bracketsAfterSecond, _ := fx.brackets.ListByLeague(ctx, second.LocalLeagueID)
	if diff := cmp.Diff(bracketsAfterFirst, bracketsAfterSecond); diff != "" {
		t.Fatalf("brackets changed between passes (-first +second):\n%s", diff)
	}

	assert.Equal(t, 1, fx.leagues.Len())
	assert.Equal(t, 1, fx.remote.callCount("bracket:L1/winners"), "brackets are fetched once per league")
}

func TestLeagueReconciler_BracketsGatedOnStatus(t *testing.T) {
	t.Parallel()

	for _, status := range []league.Status{league.StatusPreDraft, league.StatusDrafting, league.StatusUnknown} {
		t.Run(string(status), func(t *testing.T) {
			fx := newReconcilerFixture()
			snapshot := seedScenarioLeague(fx.remote, "L1", status)
			fx.remote.brackets["L1/winners"] = []RemoteBracketMatch{{Round: 1, MatchID: 1}}

			res, err := fx.reconciler.Reconcile(context.Background(), snapshot, platformuser.Linkage{ID: 1, ProfileID: "p1", Username: "U1"}, 1)
			require.NoError(t, err)
			assert.Zero(t, res.BracketEntriesInserted)
			assert.Zero(t, fx.remote.callCount("bracket:L1/winners"))

			exists, err := fx.brackets.ExistsByLeague(context.Background(), res.LocalLeagueID)
			require.NoError(t, err)
			assert.False(t, exists)
		})
	}
}

func TestLeagueReconciler_RemoteFailuresAbortOnlyThisLeague(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		inject func(*fakeRemote)
		kind   ErrorKind
	}{
		{
			name:   "users unavailable",
			inject: func(f *fakeRemote) { f.usersErr["L1"] = remoteUnavailable("status=503") },
			kind:   KindRemoteUnavailable,
		},
		{
			name:   "rosters malformed",
			inject: func(f *fakeRemote) { f.rostersErr["L1"] = remoteMalformed("decode rosters") },
			kind:   KindRemoteMalformed,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			fx := newReconcilerFixture()
			snapshot := seedScenarioLeague(fx.remote, "L1", league.StatusComplete)
			tc.inject(fx.remote)

			res, err := fx.reconciler.Reconcile(context.Background(), snapshot, platformuser.Linkage{ID: 1, ProfileID: "p1", Username: "U1"}, 1)
			syncErr := requireLeagueSyncError(t, err, tc.kind)
			assert.Equal(t, "L1", syncErr.LeagueID)
			assert.Equal(t, "2025", syncErr.Season)
			assert.Zero(t, res.LocalLeagueID)
			assert.Zero(t, fx.leagues.Len())
		})
	}
}

func TestLeagueReconciler_CanceledBeforeUpsertWritesNothing(t *testing.T) {
	t.Parallel()

	fx := newReconcilerFixture()
	snapshot := seedScenarioLeague(fx.remote, "L1", league.StatusComplete)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := fx.reconciler.Reconcile(ctx, snapshot, platformuser.Linkage{ID: 1, ProfileID: "p1", Username: "U1"}, 1)
	syncErr := requireLeagueSyncError(t, err, KindCanceled)
	assert.True(t, syncErr.Retryable())
	assert.True(t, crerr.Is(err, context.Canceled))
	assert.Zero(t, fx.leagues.Len())
}

func TestLeagueReconciler_InvalidSnapshot(t *testing.T) {
	t.Parallel()

	fx := newReconcilerFixture()
	_, err := fx.reconciler.Reconcile(context.Background(), league.Snapshot{RemoteLeagueID: "L1", Season: "25"}, platformuser.Linkage{Username: "U1"}, 1)
	requireLeagueSyncError(t, err, KindRemoteMalformed)
	assert.Zero(t, fx.remote.callCount("users:L1"))
}

func TestLeagueReconciler_UpsertFailureIsPersistenceFailure(t *testing.T) {
	t.Parallel()

	remote := newFakeRemote()
	snapshot := seedScenarioLeague(remote, "L1", league.StatusComplete)
	leagueRepo := leaguemock.NewRepository(t)
	bracketRepo := bracketmock.NewRepository(t)
	leagueRepo.
		On("Upsert", mock.Anything, mock.MatchedBy(func(item league.LinkedLeague) bool {
			return item.Snapshot.RemoteLeagueID == "L1" && item.PlatformUserID == 5
		})).
		Return(int64(0), crerr.New("connection reset")).
		Once()

	reconciler := NewLeagueReconciler(remote, leagueRepo, bracketRepo, testLogger())
	_, err := reconciler.Reconcile(context.Background(), snapshot, platformuser.Linkage{ID: 5, Username: "U1"}, 5)
	syncErr := requireLeagueSyncError(t, err, KindPersistenceFailure)
	assert.True(t, crerr.Is(syncErr, ErrPersistenceFailure))
	bracketRepo.AssertNotCalled(t, "ExistsByLeague", mock.Anything, mock.Anything)
}

func TestLeagueReconciler_BracketStoreFailureSurfacesAfterCommit(t *testing.T) {
	t.Parallel()

	remote := newFakeRemote()
	snapshot := seedScenarioLeague(remote, "L1", league.StatusComplete)
	leagues := memory.NewLeagueRepository()
	bracketRepo := bracketmock.NewRepository(t)
	bracketRepo.
		On("ExistsByLeague", mock.Anything, int64(1)).
		Return(false, crerr.New("pool exhausted")).
		Once()

	reconciler := NewLeagueReconciler(remote, leagues, bracketRepo, testLogger())
	res, err := reconciler.Reconcile(context.Background(), snapshot, platformuser.Linkage{ID: 5, Username: "U1"}, 5)
	requireLeagueSyncError(t, err, KindPersistenceFailure)
	assert.Equal(t, int64(1), res.LocalLeagueID, "league row stays committed")
	assert.Equal(t, 1, leagues.Len())
}
