package league

import (
	"fmt"
	"maps"
	"strings"
)

// Status is the remote league lifecycle state.
type Status string

const (
	StatusPreDraft Status = "pre_draft"
	StatusDrafting Status = "drafting"
	StatusInSeason Status = "in_season"
	StatusComplete Status = "complete"
	StatusUnknown  Status = "unknown"
)

func ParseStatus(raw string) Status {
	switch Status(strings.ToLower(strings.TrimSpace(raw))) {
	case StatusPreDraft:
		return StatusPreDraft
	case StatusDrafting:
		return StatusDrafting
	case StatusInSeason:
		return StatusInSeason
	case StatusComplete:
		return StatusComplete
	default:
		return StatusUnknown
	}
}

// HasPlayoffs reports whether bracket data may exist for the league.
func (s Status) HasPlayoffs() bool {
	return s == StatusInSeason || s == StatusComplete
}

// Document is an opaque JSON object stored and forwarded without interpretation.
type Document map[string]any

// Clone returns a shallow copy; nil stays an empty document.
func (d Document) Clone() Document {
	out := make(Document, len(d))
	maps.Copy(out, d)
	return out
}

// Snapshot holds the season-level facts of a remote league.
type Snapshot struct {
	RemoteLeagueID   string
	Name             string
	Season           string
	Sport            string
	TotalRosters     int
	Status           Status
	PreviousLeagueID string
	Avatar           string
	DraftID          string
	Settings         Document
	ScoringSettings  Document
	RosterPositions  []string
}

func (s Snapshot) Validate() error {
	if strings.TrimSpace(s.RemoteLeagueID) == "" {
		return fmt.Errorf("remote league id is required")
	}
	if len(s.Season) != 4 {
		return fmt.Errorf("league %s season must be a 4-digit year, got %q", s.RemoteLeagueID, s.Season)
	}
	return nil
}

// Enhanced settings keys computed during reconciliation.
const (
	KeyTeamName           = "team_name"
	KeyRank               = "rank"
	KeyWins               = "wins"
	KeyLosses             = "losses"
	KeyTies               = "ties"
	KeyFpts               = "fpts"
	KeyFptsDecimal        = "fpts_decimal"
	KeyFptsAgainst        = "fpts_against"
	KeyFptsAgainstDecimal = "fpts_against_decimal"
)

// LinkedLeague is the locally owned row: one per (remote league, linked account).
type LinkedLeague struct {
	ID               int64
	PlatformUserID   int64
	Snapshot         Snapshot
	EnhancedSettings Document
}
