package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/league-sync/internal/domain/bracket"
	qb "github.com/riskibarqy/league-sync/internal/platform/querybuilder"
)

const bracketsTable = "playoff_brackets"

type BracketRepository struct {
	db *sqlx.DB
}

func NewBracketRepository(db *sqlx.DB) *BracketRepository {
	return &BracketRepository{db: db}
}

func (r *BracketRepository) ExistsByLeague(ctx context.Context, leagueID int64) (bool, error) {
	query, args, err := qb.Select("1").From(bracketsTable).
		Where(qb.Eq("league_id", leagueID)).
		Limit(1).
		ToSQL()
	if err != nil {
		return false, fmt.Errorf("build bracket exists query: %w", err)
	}

	var one int
	if err := r.db.GetContext(ctx, &one, query, args...); err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("check brackets league_id=%d: %w", leagueID, err)
	}
	return true, nil
}

func (r *BracketRepository) InsertMany(ctx context.Context, items []bracket.Entry) (int, error) {
	if len(items) == 0 {
		return 0, nil
	}

	models := make([]bracketTableModel, 0, len(items))
	for _, item := range items {
		if err := item.Validate(); err != nil {
			return 0, fmt.Errorf("invalid bracket entry: %w", err)
		}
		models = append(models, bracketModelFrom(item))
	}

	query, args, err := qb.InsertModels(bracketsTable, models, qb.ConflictIgnore("league_id", "bracket_type", "match_id"))
	if err != nil {
		return 0, fmt.Errorf("build insert brackets query: %w", err)
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx insert brackets: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("insert brackets league_id=%d: %w", items[0].LeagueID, err)
	}
	inserted, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("count inserted brackets: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit insert brackets tx: %w", err)
	}
	return int(inserted), nil
}

func (r *BracketRepository) ListByLeague(ctx context.Context, leagueID int64) ([]bracket.Entry, error) {
	query, args, err := qb.Select("*").From(bracketsTable).
		Where(qb.Eq("league_id", leagueID)).
		OrderBy("CASE bracket_type WHEN 'winners' THEN 0 ELSE 1 END", "round", "match_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list brackets query: %w", err)
	}

	var rows []bracketTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list brackets league_id=%d: %w", leagueID, err)
	}

	out := make([]bracket.Entry, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}
