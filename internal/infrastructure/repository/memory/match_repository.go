package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/riskibarqy/pronostic-tracker/internal/domain/match"
)

type MatchRepository struct {
	mu      sync.RWMutex
	nextID  int64
	byID    map[int64]match.Match
	byEvent map[int64]int64
	now     func() time.Time
}

func NewMatchRepository() *MatchRepository {
	return &MatchRepository{
		byID:    make(map[int64]match.Match),
		byEvent: make(map[int64]int64),
		now:     time.Now,
	}
}

func (r *MatchRepository) GetByID(_ context.Context, id int64) (match.Match, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.byID[id]
	return item, ok, nil
}

func (r *MatchRepository) GetByEventID(_ context.Context, eventID int64) (match.Match, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEvent[eventID]
	if !ok {
		return match.Match{}, false, nil
	}
	return r.byID[id], true, nil
}

func (r *MatchRepository) UpsertByEventID(_ context.Context, item match.Match) (match.Match, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now().UTC()
	item = item.WithScores(item.HomeScore, item.AwayScore)

	if id, ok := r.byEvent[item.EventID]; ok {
		existing := r.byID[id]
		item.ID = existing.ID
		item.CreatedAt = existing.CreatedAt
		item.UpdatedAt = now
		r.byID[id] = item
		return item, false, nil
	}

	r.nextID++
	item.ID = r.nextID
	item.CreatedAt = now
	item.UpdatedAt = now
	r.byID[item.ID] = item
	r.byEvent[item.EventID] = item.ID
	return item, true, nil
}

func (r *MatchRepository) UpdateResult(_ context.Context, id int64, result match.Result) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.byID[id]
	if !ok {
		return fmt.Errorf("%w: id=%d", match.ErrNotFound, id)
	}
	home, away := result.HomeScore, result.AwayScore
	item = item.WithScores(&home, &away)
	item.Status = result.Status
	item.UpdatedAt = r.now().UTC()
	r.byID[id] = item
	return nil
}

func (r *MatchRepository) kickoffOf(id int64) (time.Time, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.byID[id]
	return item.KickoffAt, ok
}
