package match

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("match not found")

// Repository persists matches keyed by provider event id.
type Repository interface {
	GetByID(ctx context.Context, id int64) (Match, bool, error)
	GetByEventID(ctx context.Context, eventID int64) (Match, bool, error)
	// UpsertByEventID overwrites every provider-derived field and reports
	// whether the row was created.
	UpsertByEventID(ctx context.Context, item Match) (Match, bool, error)
	// UpdateResult returns ErrNotFound when no match has the id.
	UpdateResult(ctx context.Context, id int64, result Result) error
}
