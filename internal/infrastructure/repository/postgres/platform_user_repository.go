package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/league-sync/internal/domain/platformuser"
	qb "github.com/riskibarqy/league-sync/internal/platform/querybuilder"
)

const platformUsersTable = "platform_users"

type PlatformUserRepository struct {
	db *sqlx.DB
}

func NewPlatformUserRepository(db *sqlx.DB) *PlatformUserRepository {
	return &PlatformUserRepository{db: db}
}

func (r *PlatformUserRepository) Upsert(ctx context.Context, item platformuser.Linkage) error {
	if err := item.Validate(); err != nil {
		return fmt.Errorf("invalid linkage: %w", err)
	}

	suffix := qb.ConflictUpdate([]string{"profile_id"}, "username", "display_name", "avatar_id", "season") +
		", updated_at = NOW()"
	query, args, err := qb.InsertModel(platformUsersTable, platformUserModelFrom(item), suffix)
	if err != nil {
		return fmt.Errorf("build upsert platform user query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert platform user profile_id=%s: %w", item.ProfileID, err)
	}
	return nil
}

func (r *PlatformUserRepository) GetByProfileID(ctx context.Context, profileID string) (platformuser.Linkage, bool, error) {
	query, args, err := qb.Select("*").From(platformUsersTable).
		Where(qb.Eq("profile_id", profileID)).
		ToSQL()
	if err != nil {
		return platformuser.Linkage{}, false, fmt.Errorf("build get platform user query: %w", err)
	}

	var row platformUserTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return platformuser.Linkage{}, false, nil
		}
		return platformuser.Linkage{}, false, fmt.Errorf("get platform user profile_id=%s: %w", profileID, err)
	}
	return row.toDomain(), true, nil
}

func (r *PlatformUserRepository) List(ctx context.Context) ([]platformuser.Linkage, error) {
	query, args, err := qb.Select("*").From(platformUsersTable).OrderBy("id").ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list platform users query: %w", err)
	}

	var rows []platformUserTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list platform users: %w", err)
	}

	out := make([]platformuser.Linkage, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}
