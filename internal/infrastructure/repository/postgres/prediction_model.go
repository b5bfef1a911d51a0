package postgres

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/riskibarqy/pronostic-tracker/internal/domain/prediction"
)

type predictionTableModel struct {
	ID         int64           `db:"id"`
	UserID     string          `db:"user_id"`
	MatchID    sql.NullInt64   `db:"match_id"`
	Discipline string          `db:"discipline"`
	BetType    string          `db:"bet_type"`
	Details    string          `db:"details"`
	Stake      sql.NullFloat64 `db:"stake"`
	Odds       sql.NullFloat64 `db:"odds"`
	Outcome    string          `db:"outcome"`
	CreatedAt  time.Time       `db:"created_at"`
	UpdatedAt  time.Time       `db:"updated_at"`
}

type predictionInsertModel struct {
	UserID     string          `db:"user_id"`
	MatchID    sql.NullInt64   `db:"match_id"`
	Discipline string          `db:"discipline"`
	BetType    string          `db:"bet_type"`
	Details    string          `db:"details"`
	Stake      sql.NullFloat64 `db:"stake"`
	Odds       sql.NullFloat64 `db:"odds"`
	Outcome    string          `db:"outcome"`
}

// toDomain rejects rows whose bet type or outcome fell outside the known sets.
func (row predictionTableModel) toDomain() (prediction.Prediction, error) {
	betType, err := prediction.ParseBetType(row.BetType)
	if err != nil {
		return prediction.Prediction{}, fmt.Errorf("prediction id=%d: %w", row.ID, err)
	}
	outcome := prediction.Outcome(row.Outcome)
	if !outcome.Valid() {
		return prediction.Prediction{}, fmt.Errorf("prediction id=%d: unknown outcome %q", row.ID, row.Outcome)
	}

	return prediction.Prediction{
		ID:         row.ID,
		UserID:     row.UserID,
		MatchID:    nullInt64Ptr(row.MatchID),
		Discipline: row.Discipline,
		BetType:    betType,
		Details:    row.Details,
		Stake:      nullFloat64Ptr(row.Stake),
		Odds:       nullFloat64Ptr(row.Odds),
		Outcome:    outcome,
		CreatedAt:  row.CreatedAt,
		UpdatedAt:  row.UpdatedAt,
	}, nil
}

func newPredictionInsertModel(item prediction.Prediction) predictionInsertModel {
	outcome := item.Outcome
	if outcome == "" {
		outcome = prediction.OutcomePending
	}
	return predictionInsertModel{
		UserID:     item.UserID,
		MatchID:    nullableInt64(item.MatchID),
		Discipline: item.Discipline,
		BetType:    string(item.BetType),
		Details:    item.Details,
		Stake:      nullableFloat64(item.Stake),
		Odds:       nullableFloat64(item.Odds),
		Outcome:    string(outcome),
	}
}
