package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/riskibarqy/pronostic-tracker/internal/domain/prediction"
)

// PredictionRepository joins against a MatchRepository for kickoff times.
type PredictionRepository struct {
	mu      sync.RWMutex
	nextID  int64
	items   map[int64]prediction.Prediction
	matches *MatchRepository
	now     func() time.Time
}

func NewPredictionRepository(matches *MatchRepository) *PredictionRepository {
	return &PredictionRepository{
		items:   make(map[int64]prediction.Prediction),
		matches: matches,
		now:     time.Now,
	}
}

func (r *PredictionRepository) Create(_ context.Context, item prediction.Prediction) (prediction.Prediction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now().UTC()
	r.nextID++
	item.ID = r.nextID
	if item.Outcome == "" {
		item.Outcome = prediction.OutcomePending
	}
	item.CreatedAt = now
	item.UpdatedAt = now
	r.items[item.ID] = item
	return item, nil
}

func (r *PredictionRepository) GetByID(_ context.Context, id int64) (prediction.Prediction, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[id]
	return item, ok, nil
}

func (r *PredictionRepository) ListPendingDue(_ context.Context, cutoff time.Time) ([]prediction.Prediction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	type pending struct {
		item    prediction.Prediction
		kickoff time.Time
		linked  bool
	}
	rows := make([]pending, 0)
	for _, item := range r.items {
		if item.Outcome != prediction.OutcomePending {
			continue
		}
		if item.MatchID == nil {
			rows = append(rows, pending{item: item})
			continue
		}
		kickoff, ok := r.matches.kickoffOf(*item.MatchID)
		if !ok || kickoff.After(cutoff) {
			continue
		}
		rows = append(rows, pending{item: item, kickoff: kickoff, linked: true})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].linked != rows[j].linked {
			return rows[i].linked
		}
		if !rows[i].kickoff.Equal(rows[j].kickoff) {
			return rows[i].kickoff.Before(rows[j].kickoff)
		}
		return rows[i].item.ID < rows[j].item.ID
	})

	out := make([]prediction.Prediction, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.item)
	}
	return out, nil
}

func (r *PredictionRepository) ListByUser(_ context.Context, userID string) ([]prediction.Prediction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]prediction.Prediction, 0)
	for _, item := range r.items {
		if item.UserID == userID {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *PredictionRepository) UpdateOutcome(_ context.Context, id int64, outcome prediction.Outcome) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.items[id]
	if !ok {
		return fmt.Errorf("%w: id=%d", prediction.ErrNotFound, id)
	}
	item.Outcome = outcome
	item.UpdatedAt = r.now().UTC()
	r.items[id] = item
	return nil
}
