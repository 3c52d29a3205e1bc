package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/league-sync/internal/domain/league"
	qb "github.com/riskibarqy/league-sync/internal/platform/querybuilder"
)

const leaguesTable = "leagues"

type LeagueRepository struct {
	db *sqlx.DB
}

func NewLeagueRepository(db *sqlx.DB) *LeagueRepository {
	return &LeagueRepository{db: db}
}

func (r *LeagueRepository) Upsert(ctx context.Context, item league.LinkedLeague) (int64, error) {
	suffix := qb.ConflictUpdate([]string{"remote_league_id", "platform_user_id"}, leagueUpsertColumns...) +
		", updated_at = NOW() RETURNING id"
	query, args, err := qb.InsertModel(leaguesTable, leagueModelFrom(item), suffix)
	if err != nil {
		return 0, fmt.Errorf("build upsert league query: %w", err)
	}

	var id int64
	if err := r.db.QueryRowxContext(ctx, query, args...).Scan(&id); err != nil {
		return 0, fmt.Errorf("upsert league remote_id=%s platform_user_id=%d: %w", item.Snapshot.RemoteLeagueID, item.PlatformUserID, err)
	}
	return id, nil
}

func (r *LeagueRepository) ListByPlatformUser(ctx context.Context, platformUserID int64) ([]league.LinkedLeague, error) {
	query, args, err := qb.Select("*").From(leaguesTable).
		Where(qb.Eq("platform_user_id", platformUserID)).
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list leagues by platform user query: %w", err)
	}

	var rows []leagueTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list leagues platform_user_id=%d: %w", platformUserID, err)
	}

	out := make([]league.LinkedLeague, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *LeagueRepository) GetByID(ctx context.Context, id int64) (league.LinkedLeague, bool, error) {
	query, args, err := qb.Select("*").From(leaguesTable).
		Where(qb.Eq("id", id)).
		ToSQL()
	if err != nil {
		return league.LinkedLeague{}, false, fmt.Errorf("build get league by id query: %w", err)
	}

	var row leagueTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return league.LinkedLeague{}, false, nil
		}
		return league.LinkedLeague{}, false, fmt.Errorf("get league id=%d: %w", id, err)
	}
	return row.toDomain(), true, nil
}
