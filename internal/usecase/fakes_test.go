package usecase

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/league-sync/internal/domain/bracket"
	"github.com/riskibarqy/league-sync/internal/domain/league"
	"github.com/riskibarqy/league-sync/internal/platform/logging"
)

// fakeRemote is an in-memory RemoteSportsProvider with per-call fault injection.
type fakeRemote struct {
	mu sync.Mutex

	participants map[string]RemoteParticipant
	leagues      map[string][]league.Snapshot
	listErr      map[string]error
	users        map[string][]RemoteParticipant
	usersErr     map[string]error
	rosters      map[string][]RemoteRoster
	rostersErr   map[string]error
	brackets     map[string][]RemoteBracketMatch
	bracketErr   map[string]error
	trending     []TrendingPlayer

	delay        time.Duration
	onListLeague func(season string)

	calls    map[string]int
	inFlight atomic.Int32
	peak     atomic.Int32
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{
		participants: make(map[string]RemoteParticipant),
		leagues:      make(map[string][]league.Snapshot),
		listErr:      make(map[string]error),
		users:        make(map[string][]RemoteParticipant),
		usersErr:     make(map[string]error),
		rosters:      make(map[string][]RemoteRoster),
		rostersErr:   make(map[string]error),
		brackets:     make(map[string][]RemoteBracketMatch),
		bracketErr:   make(map[string]error),
		calls:        make(map[string]int),
	}
}

func (f *fakeRemote) record(call string) {
	f.mu.Lock()
	f.calls[call]++
	f.mu.Unlock()
}

func (f *fakeRemote) callCount(call string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[call]
}

func (f *fakeRemote) enter() func() {
	raiseToMax(&f.peak, f.inFlight.Add(1))
	return func() { f.inFlight.Add(-1) }
}

func (f *fakeRemote) wait(ctx context.Context) error {
	if f.delay <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(f.delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (f *fakeRemote) GetParticipant(ctx context.Context, usernameOrID string) (RemoteParticipant, error) {
	f.record("user:" + usernameOrID)
	if err := ctx.Err(); err != nil {
		return RemoteParticipant{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	item, ok := f.participants[usernameOrID]
	if !ok {
		return RemoteParticipant{}, crerr.Mark(crerr.Newf("user %q not found", usernameOrID), ErrRemoteNotFound)
	}
	return item, nil
}

func (f *fakeRemote) ListLeagues(ctx context.Context, _, _, season string) ([]league.Snapshot, error) {
	f.record("leagues:" + season)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	items, err, hook := f.leagues[season], f.listErr[season], f.onListLeague
	f.mu.Unlock()
	if hook != nil {
		hook(season)
	}
	if err != nil {
		return nil, err
	}
	return append([]league.Snapshot(nil), items...), nil
}

func (f *fakeRemote) GetLeagueParticipants(ctx context.Context, leagueID string) ([]RemoteParticipant, error) {
	defer f.enter()()
	f.record("users:" + leagueID)
	if err := f.wait(ctx); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.usersErr[leagueID]; err != nil {
		return nil, err
	}
	return append([]RemoteParticipant(nil), f.users[leagueID]...), nil
}

func (f *fakeRemote) GetRosters(ctx context.Context, leagueID string) ([]RemoteRoster, error) {
	defer f.enter()()
	f.record("rosters:" + leagueID)
	if err := f.wait(ctx); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.rostersErr[leagueID]; err != nil {
		return nil, err
	}
	return append([]RemoteRoster(nil), f.rosters[leagueID]...), nil
}

func (f *fakeRemote) GetBracket(ctx context.Context, leagueID string, bracketType bracket.Type) ([]RemoteBracketMatch, error) {
	key := leagueID + "/" + string(bracketType)
	f.record("bracket:" + key)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.bracketErr[key]; err != nil {
		return nil, err
	}
	return append([]RemoteBracketMatch(nil), f.brackets[key]...), nil
}

func (f *fakeRemote) GetTrendingPlayers(ctx context.Context, sport string, direction TrendDirection, _, _ int) ([]TrendingPlayer, error) {
	f.record("trending:" + sport + ":" + string(direction))
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]TrendingPlayer(nil), f.trending...), nil
}

func remoteUnavailable(msg string) error {
	return crerr.Mark(crerr.New(msg), ErrRemoteUnavailable)
}

func remoteNotFound(msg string) error {
	return crerr.Mark(remoteUnavailable(msg), ErrRemoteNotFound)
}

func remoteMalformed(msg string) error {
	return crerr.Mark(crerr.New(msg), ErrRemoteMalformed)
}

func intPtr(v int) *int {
	return &v
}

// seedScenarioLeague sets up league L1 with users U1/U2 and the two reference rosters.
func seedScenarioLeague(remote *fakeRemote, leagueID string, status league.Status) league.Snapshot {
	snapshot := league.Snapshot{
		RemoteLeagueID: leagueID,
		Name:           "League " + leagueID,
		Season:         "2025",
		Sport:          "nfl",
		TotalRosters:   2,
		Status:         status,
		Settings:       league.Document{"playoff_teams": 2, "rank": 77},
	}
	remote.users[leagueID] = []RemoteParticipant{
		{RemoteUserID: "U1", Username: "u1", DisplayName: "U1"},
		{RemoteUserID: "U2", Username: "u2", DisplayName: "U2", TeamName: "Second Place"},
	}
	remote.rosters[leagueID] = []RemoteRoster{
		{RosterID: 1, OwnerRemoteUserID: "U1", Wins: 10, Losses: 3, Fpts: 1450, FptsDecimal: 20},
		{RosterID: 2, OwnerRemoteUserID: "U2", Wins: 8, Losses: 5, Fpts: 1390, FptsDecimal: 5},
	}
	return snapshot
}

func testLogger() *logging.Logger {
	return logging.NewNop()
}
