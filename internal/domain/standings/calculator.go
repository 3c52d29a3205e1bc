package standings

import (
	"sort"

	"github.com/riskibarqy/league-sync/internal/domain/league"
)

// Roster is one team's state within a league. Points are split into whole points and
// hundredths so totals never go through floating point.
type Roster struct {
	RosterID           int
	OwnerRemoteUserID  string
	Players            []string
	Wins               int
	Losses             int
	Ties               int
	Fpts               int
	FptsDecimal        int
	FptsAgainst        int
	FptsAgainstDecimal int
}

// TotalHundredths is fpts + fpts_decimal/100 scaled by 100.
func (r Roster) TotalHundredths() int64 {
	return int64(nonNegative(r.Fpts))*100 + int64(nonNegative(r.FptsDecimal))
}

// Row is the per-user record and points summary stored in enhanced settings.
type Row struct {
	Wins               int
	Losses             int
	Ties               int
	Fpts               int
	FptsDecimal        int
	FptsAgainst        int
	FptsAgainstDecimal int
}

func (r Row) Document() league.Document {
	return league.Document{
		league.KeyWins:               r.Wins,
		league.KeyLosses:             r.Losses,
		league.KeyTies:               r.Ties,
		league.KeyFpts:               r.Fpts,
		league.KeyFptsDecimal:        r.FptsDecimal,
		league.KeyFptsAgainst:        r.FptsAgainst,
		league.KeyFptsAgainstDecimal: r.FptsAgainstDecimal,
	}
}

// Rank orders rosters by total points descending, lower roster id first on equal points,
// and returns the 1-based position per roster id. A repeated roster id keeps its first entry.
func Rank(rosters []Roster) map[int]int {
	seen := make(map[int]struct{}, len(rosters))
	ordered := make([]Roster, 0, len(rosters))
	for _, item := range rosters {
		if _, ok := seen[item.RosterID]; ok {
			continue
		}
		seen[item.RosterID] = struct{}{}
		ordered = append(ordered, item)
	}

	sort.SliceStable(ordered, func(i, j int) bool {
		left, right := ordered[i].TotalHundredths(), ordered[j].TotalHundredths()
		if left != right {
			return left > right
		}
		return ordered[i].RosterID < ordered[j].RosterID
	})

	out := make(map[int]int, len(ordered))
	for idx, item := range ordered {
		out[item.RosterID] = idx + 1
	}
	return out
}

// Summarize copies the roster's record and points, defaulting anything missing or negative to zero.
func Summarize(roster Roster) Row {
	return Row{
		Wins:               nonNegative(roster.Wins),
		Losses:             nonNegative(roster.Losses),
		Ties:               nonNegative(roster.Ties),
		Fpts:               nonNegative(roster.Fpts),
		FptsDecimal:        nonNegative(roster.FptsDecimal),
		FptsAgainst:        nonNegative(roster.FptsAgainst),
		FptsAgainstDecimal: nonNegative(roster.FptsAgainstDecimal),
	}
}

func nonNegative(v int) int {
	if v < 0 {
		return 0
	}
	return v
}
