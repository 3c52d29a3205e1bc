package bracket

import "context"

// Repository is insert-only: rows are written once per league and never updated.
type Repository interface {
	ExistsByLeague(ctx context.Context, leagueID int64) (bool, error)
	// InsertMany ignores entries that already exist for (league, type, match).
	InsertMany(ctx context.Context, items []Entry) (int, error)
	ListByLeague(ctx context.Context, leagueID int64) ([]Entry, error)
}
