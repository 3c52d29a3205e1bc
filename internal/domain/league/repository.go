package league

import "context"

// Repository describes linked league persistence needs from use cases.
type Repository interface {
	// Upsert inserts or fully replaces the row keyed by (remote league id, platform user id)
	// and returns the local id.
	Upsert(ctx context.Context, item LinkedLeague) (int64, error)
	ListByPlatformUser(ctx context.Context, platformUserID int64) ([]LinkedLeague, error)
	GetByID(ctx context.Context, id int64) (LinkedLeague, bool, error)
}
