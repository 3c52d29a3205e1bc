package platformuser

import "context"

type Repository interface {
	// Upsert conflicts on profile id: at most one linkage per local account.
	Upsert(ctx context.Context, item Linkage) error
	GetByProfileID(ctx context.Context, profileID string) (Linkage, bool, error)
	List(ctx context.Context) ([]Linkage, error)
}
