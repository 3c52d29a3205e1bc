package bracket

import "fmt"

type Type string

const (
	TypeWinners Type = "winners"
	TypeLosers  Type = "losers"
)

// Types lists the bracket sides in fetch order.
func Types() []Type {
	return []Type{TypeWinners, TypeLosers}
}

func (t Type) Valid() bool {
	return t == TypeWinners || t == TypeLosers
}

// Entry is one match node of a single-elimination bracket. A nil team slot is filled by the
// outcome of an earlier match.
type Entry struct {
	LeagueID       int64
	Type           Type
	Round          int
	MatchID        int
	Team1RosterID  *int
	Team2RosterID  *int
	WinnerRosterID *int
	LoserRosterID  *int
	Position       *int
}

func (e Entry) Validate() error {
	if e.LeagueID <= 0 {
		return fmt.Errorf("bracket entry league id must be > 0")
	}
	if !e.Type.Valid() {
		return fmt.Errorf("invalid bracket type %q", e.Type)
	}
	if e.MatchID <= 0 {
		return fmt.Errorf("bracket entry match id must be > 0")
	}
	return nil
}
