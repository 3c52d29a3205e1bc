package usecase

import (
	"context"

	"github.com/riskibarqy/league-sync/internal/domain/bracket"
	"github.com/riskibarqy/league-sync/internal/domain/league"
	"github.com/riskibarqy/league-sync/internal/domain/standings"
)

// RemoteParticipant is a remote platform user as seen in a league. Empty strings mean absent.
type RemoteParticipant struct {
	RemoteUserID string `json:"remote_user_id"`
	Username     string `json:"username"`
	DisplayName  string `json:"display_name,omitempty"`
	AvatarID     string `json:"avatar_id,omitempty"`
	TeamName     string `json:"team_name,omitempty"`
}

type RemoteRoster = standings.Roster

// RemoteBracketMatch is one bracket node as the remote platform reports it.
// Nil slots are still undecided or refer to "winner of match N".
type RemoteBracketMatch struct {
	Round          int
	MatchID        int
	Team1RosterID  *int
	Team2RosterID  *int
	WinnerRosterID *int
	LoserRosterID  *int
	Position       *int
}

type TrendDirection string

const (
	TrendAdd  TrendDirection = "add"
	TrendDrop TrendDirection = "drop"
)

func (d TrendDirection) Valid() bool {
	return d == TrendAdd || d == TrendDrop
}

type TrendingPlayer struct {
	PlayerID string `json:"player_id"`
	Count    int    `json:"count"`
}

// RemoteSportsProvider is the read-only remote fantasy platform. Each call is a single GET;
// failures are marked ErrRemoteUnavailable, ErrRemoteMalformed or ErrRemoteNotFound.
type RemoteSportsProvider interface {
	GetParticipant(ctx context.Context, usernameOrID string) (RemoteParticipant, error)
	ListLeagues(ctx context.Context, remoteUserID, sport, season string) ([]league.Snapshot, error)
	GetLeagueParticipants(ctx context.Context, leagueID string) ([]RemoteParticipant, error)
	GetRosters(ctx context.Context, leagueID string) ([]RemoteRoster, error)
	GetBracket(ctx context.Context, leagueID string, bracketType bracket.Type) ([]RemoteBracketMatch, error)
	GetTrendingPlayers(ctx context.Context, sport string, direction TrendDirection, lookbackHours, limit int) ([]TrendingPlayer, error)
}
