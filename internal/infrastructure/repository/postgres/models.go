package postgres

import (
	"database/sql"
	"time"

	"github.com/riskibarqy/league-sync/internal/domain/bracket"
	"github.com/riskibarqy/league-sync/internal/domain/league"
	"github.com/riskibarqy/league-sync/internal/domain/platformuser"
)

type platformUserTableModel struct {
	ID          int64     `db:"id,readonly"`
	ProfileID   string    `db:"profile_id"`
	Username    string    `db:"username"`
	DisplayName string    `db:"display_name"`
	AvatarID    string    `db:"avatar_id"`
	Season      string    `db:"season"`
	CreatedAt   time.Time `db:"created_at,readonly"`
	UpdatedAt   time.Time `db:"updated_at,readonly"`
}

func platformUserModelFrom(item platformuser.Linkage) platformUserTableModel {
	return platformUserTableModel{
		ProfileID:   item.ProfileID,
		Username:    item.Username,
		DisplayName: item.DisplayName,
		AvatarID:    item.AvatarID,
		Season:      item.Season,
	}
}

func (m platformUserTableModel) toDomain() platformuser.Linkage {
	return platformuser.Linkage{
		ID:          m.ID,
		ProfileID:   m.ProfileID,
		Username:    m.Username,
		DisplayName: m.DisplayName,
		AvatarID:    m.AvatarID,
		Season:      m.Season,
	}
}

type leagueTableModel struct {
	ID               int64        `db:"id,readonly"`
	RemoteLeagueID   string       `db:"remote_league_id"`
	PlatformUserID   int64        `db:"platform_user_id"`
	Name             string       `db:"name"`
	Season           string       `db:"season"`
	Sport            string       `db:"sport"`
	TotalRosters     int          `db:"total_rosters"`
	Status           string       `db:"status"`
	PreviousLeagueID string       `db:"previous_league_id"`
	Avatar           string       `db:"avatar"`
	DraftID          string       `db:"draft_id"`
	Settings         jsonDocument `db:"settings"`
	ScoringSettings  jsonDocument `db:"scoring_settings"`
	RosterPositions  jsonStrings  `db:"roster_positions"`
	EnhancedSettings jsonDocument `db:"enhanced_settings"`
	CreatedAt        time.Time    `db:"created_at,readonly"`
	UpdatedAt        time.Time    `db:"updated_at,readonly"`
}

// leagueUpsertColumns are replaced wholesale when the row already exists.
var leagueUpsertColumns = []string{
	"name", "season", "sport", "total_rosters", "status", "previous_league_id", "avatar", "draft_id",
	"settings", "scoring_settings", "roster_positions", "enhanced_settings",
}

func leagueModelFrom(item league.LinkedLeague) leagueTableModel {
	s := item.Snapshot
	return leagueTableModel{
		RemoteLeagueID:   s.RemoteLeagueID,
		PlatformUserID:   item.PlatformUserID,
		Name:             s.Name,
		Season:           s.Season,
		Sport:            s.Sport,
		TotalRosters:     s.TotalRosters,
		Status:           string(s.Status),
		PreviousLeagueID: s.PreviousLeagueID,
		Avatar:           s.Avatar,
		DraftID:          s.DraftID,
		Settings:         jsonDocument(s.Settings),
		ScoringSettings:  jsonDocument(s.ScoringSettings),
		RosterPositions:  jsonStrings(s.RosterPositions),
		EnhancedSettings: jsonDocument(item.EnhancedSettings),
	}
}

func (m leagueTableModel) toDomain() league.LinkedLeague {
	return league.LinkedLeague{
		ID:             m.ID,
		PlatformUserID: m.PlatformUserID,
		Snapshot: league.Snapshot{
			RemoteLeagueID:   m.RemoteLeagueID,
			Name:             m.Name,
			Season:           m.Season,
			Sport:            m.Sport,
			TotalRosters:     m.TotalRosters,
			Status:           league.ParseStatus(m.Status),
			PreviousLeagueID: m.PreviousLeagueID,
			Avatar:           m.Avatar,
			DraftID:          m.DraftID,
			Settings:         league.Document(m.Settings),
			ScoringSettings:  league.Document(m.ScoringSettings),
			RosterPositions:  []string(m.RosterPositions),
		},
		EnhancedSettings: league.Document(m.EnhancedSettings),
	}
}

type bracketTableModel struct {
	ID             int64         `db:"id,readonly"`
	LeagueID       int64         `db:"league_id"`
	BracketType    string        `db:"bracket_type"`
	Round          int           `db:"round"`
	MatchID        int           `db:"match_id"`
	Team1RosterID  sql.NullInt64 `db:"team1_roster_id"`
	Team2RosterID  sql.NullInt64 `db:"team2_roster_id"`
	WinnerRosterID sql.NullInt64 `db:"winner_roster_id"`
	LoserRosterID  sql.NullInt64 `db:"loser_roster_id"`
	Position       sql.NullInt64 `db:"position"`
	CreatedAt      time.Time     `db:"created_at,readonly"`
}

func bracketModelFrom(item bracket.Entry) bracketTableModel {
	return bracketTableModel{
		LeagueID:       item.LeagueID,
		BracketType:    string(item.Type),
		Round:          item.Round,
		MatchID:        item.MatchID,
		Team1RosterID:  nullIntFromPtr(item.Team1RosterID),
		Team2RosterID:  nullIntFromPtr(item.Team2RosterID),
		WinnerRosterID: nullIntFromPtr(item.WinnerRosterID),
		LoserRosterID:  nullIntFromPtr(item.LoserRosterID),
		Position:       nullIntFromPtr(item.Position),
	}
}

func (m bracketTableModel) toDomain() bracket.Entry {
	return bracket.Entry{
		LeagueID:       m.LeagueID,
		Type:           bracket.Type(m.BracketType),
		Round:          m.Round,
		MatchID:        m.MatchID,
		Team1RosterID:  nullIntToPtr(m.Team1RosterID),
		Team2RosterID:  nullIntToPtr(m.Team2RosterID),
		WinnerRosterID: nullIntToPtr(m.WinnerRosterID),
		LoserRosterID:  nullIntToPtr(m.LoserRosterID),
		Position:       nullIntToPtr(m.Position),
	}
}
