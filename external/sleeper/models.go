package sleeper

import (
	"strings"

	"github.com/riskibarqy/league-sync/internal/domain/league"
	"github.com/riskibarqy/league-sync/internal/usecase"
)

type userPayload struct {
	UserID      string  `json:"user_id"`
	Username    string  `json:"username"`
	DisplayName string  `json:"display_name"`
	Avatar      *string `json:"avatar"`
}

type leaguePayload struct {
	LeagueID         string         `json:"league_id"`
	Name             string         `json:"name"`
	Season           string         `json:"season"`
	Sport            string         `json:"sport"`
	Status           string         `json:"status"`
	TotalRosters     int            `json:"total_rosters"`
	PreviousLeagueID *string        `json:"previous_league_id"`
	Avatar           *string        `json:"avatar"`
	DraftID          *string        `json:"draft_id"`
	Settings         map[string]any `json:"settings"`
	ScoringSettings  map[string]any `json:"scoring_settings"`
	RosterPositions  []string       `json:"roster_positions"`
}

type leagueUserPayload struct {
	UserID      string         `json:"user_id"`
	Username    string         `json:"username"`
	DisplayName string         `json:"display_name"`
	Avatar      *string        `json:"avatar"`
	Metadata    map[string]any `json:"metadata"`
}

type rosterPayload struct {
	RosterID int      `json:"roster_id"`
	OwnerID  *string  `json:"owner_id"`
	Players  []string `json:"players"`
	Settings struct {
		Wins               int `json:"wins"`
		Losses             int `json:"losses"`
		Ties               int `json:"ties"`
		Fpts               int `json:"fpts"`
		FptsDecimal        int `json:"fpts_decimal"`
		FptsAgainst        int `json:"fpts_against"`
		FptsAgainstDecimal int `json:"fpts_against_decimal"`
	} `json:"settings"`
}

type bracketMatchPayload struct {
	Round    int  `json:"r"`
	MatchID  int  `json:"m"`
	Team1    *int `json:"t1"`
	Team2    *int `json:"t2"`
	Winner   *int `json:"w"`
	Loser    *int `json:"l"`
	Position *int `json:"p"`
}

type trendingPayload struct {
	PlayerID string `json:"player_id"`
	Count    int    `json:"count"`
}

func (p userPayload) toParticipant() usecase.RemoteParticipant {
	return usecase.RemoteParticipant{
		RemoteUserID: p.UserID,
		Username:     p.Username,
		DisplayName:  p.DisplayName,
		AvatarID:     deref(p.Avatar),
	}
}

func (p leaguePayload) toSnapshot() league.Snapshot {
	previous := deref(p.PreviousLeagueID)
	if previous == "0" {
		previous = ""
	}
	return league.Snapshot{
		RemoteLeagueID:   p.LeagueID,
		Name:             p.Name,
		Season:           p.Season,
		Sport:            p.Sport,
		TotalRosters:     p.TotalRosters,
		Status:           league.ParseStatus(p.Status),
		PreviousLeagueID: previous,
		Avatar:           deref(p.Avatar),
		DraftID:          deref(p.DraftID),
		Settings:         league.Document(p.Settings),
		ScoringSettings:  league.Document(p.ScoringSettings),
		RosterPositions:  p.RosterPositions,
	}
}

func (p leagueUserPayload) toParticipant() usecase.RemoteParticipant {
	out := usecase.RemoteParticipant{
		RemoteUserID: p.UserID,
		Username:     p.Username,
		DisplayName:  p.DisplayName,
		AvatarID:     deref(p.Avatar),
	}
	if name, ok := p.Metadata["team_name"].(string); ok {
		out.TeamName = strings.TrimSpace(name)
	}
	return out
}

func (p rosterPayload) toRoster() usecase.RemoteRoster {
	return usecase.RemoteRoster{
		RosterID:           p.RosterID,
		OwnerRemoteUserID:  deref(p.OwnerID),
		Players:            p.Players,
		Wins:               p.Settings.Wins,
		Losses:             p.Settings.Losses,
		Ties:               p.Settings.Ties,
		Fpts:               p.Settings.Fpts,
		FptsDecimal:        p.Settings.FptsDecimal,
		FptsAgainst:        p.Settings.FptsAgainst,
		FptsAgainstDecimal: p.Settings.FptsAgainstDecimal,
	}
}

func (p bracketMatchPayload) toMatch() usecase.RemoteBracketMatch {
	return usecase.RemoteBracketMatch{
		Round:          p.Round,
		MatchID:        p.MatchID,
		Team1RosterID:  p.Team1,
		Team2RosterID:  p.Team2,
		WinnerRosterID: p.Winner,
		LoserRosterID:  p.Loser,
		Position:       p.Position,
	}
}

func deref(v *string) string {
	if v == nil {
		return ""
	}
	return strings.TrimSpace(*v)
}
