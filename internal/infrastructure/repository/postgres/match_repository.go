package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/pronostic-tracker/internal/domain/match"
	qb "github.com/riskibarqy/pronostic-tracker/internal/platform/querybuilder"
)

const upsertMatchSuffix = `ON CONFLICT (event_id) DO UPDATE SET
    discipline = EXCLUDED.discipline,
    home_team = EXCLUDED.home_team,
    away_team = EXCLUDED.away_team,
    kickoff_at = EXCLUDED.kickoff_at,
    league = EXCLUDED.league,
    venue = EXCLUDED.venue,
    home_score = EXCLUDED.home_score,
    away_score = EXCLUDED.away_score,
    status = EXCLUDED.status,
    updated_at = NOW()
RETURNING *, (xmax = 0) AS created`

type MatchRepository struct {
	db *sqlx.DB
}

func NewMatchRepository(db *sqlx.DB) *MatchRepository {
	return &MatchRepository{db: db}
}

func (r *MatchRepository) GetByID(ctx context.Context, id int64) (match.Match, bool, error) {
	return r.getOne(ctx, qb.Eq("id", id), "get match by id")
}

func (r *MatchRepository) GetByEventID(ctx context.Context, eventID int64) (match.Match, bool, error) {
	return r.getOne(ctx, qb.Eq("event_id", eventID), "get match by event id")
}

func (r *MatchRepository) getOne(ctx context.Context, cond qb.Condition, op string) (match.Match, bool, error) {
	query, args, err := qb.Select("*").From("matches").Where(cond).ToSQL()
	if err != nil {
		return match.Match{}, false, fmt.Errorf("build %s query: %w", op, err)
	}

	var row matchTableModel
	err = withStatementRetry(ctx, func(ctx context.Context) error {
		return r.db.GetContext(ctx, &row, query, args...)
	})
	if err != nil {
		if isNotFound(err) {
			return match.Match{}, false, nil
		}
		return match.Match{}, false, fmt.Errorf("%s: %w", op, err)
	}

	return row.toDomain(), true, nil
}

func (r *MatchRepository) UpsertByEventID(ctx context.Context, item match.Match) (match.Match, bool, error) {
	query, args, err := qb.InsertModel("matches", newMatchUpsertModel(item), upsertMatchSuffix)
	if err != nil {
		return match.Match{}, false, fmt.Errorf("build upsert match query: %w", err)
	}

	var row upsertedMatchRow
	err = withStatementRetry(ctx, func(ctx context.Context) error {
		return r.db.GetContext(ctx, &row, query, args...)
	})
	if err != nil {
		return match.Match{}, false, fmt.Errorf("upsert match event_id=%d: %w", item.EventID, err)
	}

	return row.toDomain(), row.Created, nil
}

func (r *MatchRepository) UpdateResult(ctx context.Context, id int64, result match.Result) error {
	query, args, err := qb.Update("matches").
		Set("home_score", result.HomeScore).
		Set("away_score", result.AwayScore).
		Set("status", result.Status).
		SetExpr("updated_at", "NOW()").
		Where(qb.Eq("id", id)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update match result query: %w", err)
	}

	matched, err := execOne(ctx, r.db, query, args)
	if err != nil {
		return fmt.Errorf("update match result id=%d: %w", id, err)
	}
	if !matched {
		return fmt.Errorf("%w: id=%d", match.ErrNotFound, id)
	}

	return nil
}
