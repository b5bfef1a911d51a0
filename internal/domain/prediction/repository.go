package prediction

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("prediction not found")

type Repository interface {
	Create(ctx context.Context, item Prediction) (Prediction, error)
	GetByID(ctx context.Context, id int64) (Prediction, bool, error)
	// ListPendingDue returns pending predictions whose match kicks off at or
	// before the cutoff, earliest kickoff first. Pending predictions without a
	// match come last so the caller can count them.
	ListPendingDue(ctx context.Context, cutoff time.Time) ([]Prediction, error)
	ListByUser(ctx context.Context, userID string) ([]Prediction, error)
	// UpdateOutcome returns ErrNotFound when no prediction has the id.
	UpdateOutcome(ctx context.Context, id int64, outcome Outcome) error
}
