package httpapi

import (
	"github.com/riskibarqy/league-sync/internal/domain/bracket"
	"github.com/riskibarqy/league-sync/internal/domain/league"
	"github.com/riskibarqy/league-sync/internal/domain/platformuser"
	"github.com/riskibarqy/league-sync/internal/usecase"
)

type syncRequest struct {
	ProfileID string `json:"profile_id" validate:"required,max=128"`
	Username  string `json:"username" validate:"required,max=64"`
}

type linkageDTO struct {
	ProfileID   string `json:"profile_id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name,omitempty"`
	AvatarID    string `json:"avatar_id,omitempty"`
	Season      string `json:"season,omitempty"`
}

type leagueDTO struct {
	ID               int64          `json:"id"`
	RemoteLeagueID   string         `json:"remote_league_id"`
	Name             string         `json:"name"`
	Season           string         `json:"season"`
	Sport            string         `json:"sport"`
	Status           string         `json:"status"`
	TotalRosters     int            `json:"total_rosters"`
	PreviousLeagueID string         `json:"previous_league_id,omitempty"`
	Avatar           string         `json:"avatar,omitempty"`
	DraftID          string         `json:"draft_id,omitempty"`
	Settings         map[string]any `json:"settings"`
	ScoringSettings  map[string]any `json:"scoring_settings"`
	RosterPositions  []string       `json:"roster_positions"`
	EnhancedSettings map[string]any `json:"enhanced_settings"`
}

type profileLeaguesDTO struct {
	Linkage linkageDTO  `json:"linkage"`
	Leagues []leagueDTO `json:"leagues"`
}

type bracketEntryDTO struct {
	Type           string `json:"bracket_type"`
	Round          int    `json:"round"`
	MatchID        int    `json:"match_id"`
	Team1RosterID  *int   `json:"team1_roster_id"`
	Team2RosterID  *int   `json:"team2_roster_id"`
	WinnerRosterID *int   `json:"winner_roster_id"`
	LoserRosterID  *int   `json:"loser_roster_id"`
	Position       *int   `json:"position"`
}

type trendingPlayerDTO struct {
	PlayerID string `json:"player_id"`
	Count    int    `json:"count"`
}

func linkageToDTO(item platformuser.Linkage) linkageDTO {
	return linkageDTO{
		ProfileID:   item.ProfileID,
		Username:    item.Username,
		DisplayName: item.DisplayName,
		AvatarID:    item.AvatarID,
		Season:      item.Season,
	}
}

func leagueToDTO(item league.LinkedLeague) leagueDTO {
	s := item.Snapshot
	positions := s.RosterPositions
	if positions == nil {
		positions = []string{}
	}
	return leagueDTO{
		ID:               item.ID,
		RemoteLeagueID:   s.RemoteLeagueID,
		Name:             s.Name,
		Season:           s.Season,
		Sport:            s.Sport,
		Status:           string(s.Status),
		TotalRosters:     s.TotalRosters,
		PreviousLeagueID: s.PreviousLeagueID,
		Avatar:           s.Avatar,
		DraftID:          s.DraftID,
		Settings:         s.Settings.Clone(),
		ScoringSettings:  s.ScoringSettings.Clone(),
		RosterPositions:  positions,
		EnhancedSettings: item.EnhancedSettings.Clone(),
	}
}

func profileLeaguesToDTO(item usecase.ProfileLeagues) profileLeaguesDTO {
	out := profileLeaguesDTO{
		Linkage: linkageToDTO(item.Linkage),
		Leagues: make([]leagueDTO, 0, len(item.Leagues)),
	}
	for _, l := range item.Leagues {
		out.Leagues = append(out.Leagues, leagueToDTO(l))
	}
	return out
}

func bracketEntriesToDTO(items []bracket.Entry) []bracketEntryDTO {
	out := make([]bracketEntryDTO, 0, len(items))
	for _, item := range items {
		out = append(out, bracketEntryDTO{
			Type:           string(item.Type),
			Round:          item.Round,
			MatchID:        item.MatchID,
			Team1RosterID:  item.Team1RosterID,
			Team2RosterID:  item.Team2RosterID,
			WinnerRosterID: item.WinnerRosterID,
			LoserRosterID:  item.LoserRosterID,
			Position:       item.Position,
		})
	}
	return out
}

func trendingToDTO(items []usecase.TrendingPlayer) []trendingPlayerDTO {
	out := make([]trendingPlayerDTO, 0, len(items))
	for _, item := range items {
		out = append(out, trendingPlayerDTO{PlayerID: item.PlayerID, Count: item.Count})
	}
	return out
}
