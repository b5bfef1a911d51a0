package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/pronostic-tracker/internal/domain/prediction"
	qb "github.com/riskibarqy/pronostic-tracker/internal/platform/querybuilder"
)

type PredictionRepository struct {
	db *sqlx.DB
}

func NewPredictionRepository(db *sqlx.DB) *PredictionRepository {
	return &PredictionRepository{db: db}
}

func (r *PredictionRepository) Create(ctx context.Context, item prediction.Prediction) (prediction.Prediction, error) {
	query, args, err := qb.InsertModel("predictions", newPredictionInsertModel(item), "RETURNING *")
	if err != nil {
		return prediction.Prediction{}, fmt.Errorf("build insert prediction query: %w", err)
	}

	var row predictionTableModel
	err = withStatementRetry(ctx, func(ctx context.Context) error {
		return r.db.GetContext(ctx, &row, query, args...)
	})
	if err != nil {
		return prediction.Prediction{}, fmt.Errorf("insert prediction: %w", err)
	}

	return row.toDomain()
}

func (r *PredictionRepository) GetByID(ctx context.Context, id int64) (prediction.Prediction, bool, error) {
	query, args, err := qb.Select("*").From("predictions").
		Where(qb.Eq("id", id)).
		ToSQL()
	if err != nil {
		return prediction.Prediction{}, false, fmt.Errorf("build get prediction by id query: %w", err)
	}

	var row predictionTableModel
	err = withStatementRetry(ctx, func(ctx context.Context) error {
		return r.db.GetContext(ctx, &row, query, args...)
	})
	if err != nil {
		if isNotFound(err) {
			return prediction.Prediction{}, false, nil
		}
		return prediction.Prediction{}, false, fmt.Errorf("get prediction by id: %w", err)
	}

	item, err := row.toDomain()
	if err != nil {
		return prediction.Prediction{}, false, err
	}
	return item, true, nil
}

func (r *PredictionRepository) ListPendingDue(ctx context.Context, cutoff time.Time) ([]prediction.Prediction, error) {
	query, args, err := qb.Select("p.*").From("predictions p").
		LeftJoin("matches m", "m.id = p.match_id").
		Where(
			qb.Eq("p.outcome", string(prediction.OutcomePending)),
			qb.Or(qb.Lte("m.kickoff_at", cutoff.UTC()), qb.IsNull("p.match_id")),
		).
		OrderBy("m.kickoff_at", "p.id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list pending predictions query: %w", err)
	}

	return r.selectPredictions(ctx, query, args, "list pending predictions")
}

func (r *PredictionRepository) ListByUser(ctx context.Context, userID string) ([]prediction.Prediction, error) {
	query, args, err := qb.Select("*").From("predictions").
		Where(qb.Eq("user_id", userID)).
		OrderBy("created_at", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list predictions by user query: %w", err)
	}

	return r.selectPredictions(ctx, query, args, "list predictions by user")
}

func (r *PredictionRepository) selectPredictions(ctx context.Context, query string, args []any, op string) ([]prediction.Prediction, error) {
	var rows []predictionTableModel
	err := withStatementRetry(ctx, func(ctx context.Context) error {
		rows = rows[:0]
		return r.db.SelectContext(ctx, &rows, query, args...)
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	out := make([]prediction.Prediction, 0, len(rows))
	for _, row := range rows {
		item, err := row.toDomain()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		out = append(out, item)
	}

	return out, nil
}

func (r *PredictionRepository) UpdateOutcome(ctx context.Context, id int64, outcome prediction.Outcome) error {
	query, args, err := qb.Update("predictions").
		Set("outcome", string(outcome)).
		SetExpr("updated_at", "NOW()").
		Where(qb.Eq("id", id)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update prediction outcome query: %w", err)
	}

	matched, err := execOne(ctx, r.db, query, args)
	if err != nil {
		return fmt.Errorf("update prediction outcome id=%d: %w", id, err)
	}
	if !matched {
		return fmt.Errorf("%w: id=%d", prediction.ErrNotFound, id)
	}

	return nil
}
