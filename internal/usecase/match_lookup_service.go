package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/riskibarqy/pronostic-tracker/internal/domain/match"
)

// MatchLookupService fetches a single fixture on demand and stores it.
type MatchLookupService struct {
	provider   SportDataProvider
	normalizer *FixtureNormalizer
	matchRepo  match.Repository
}

func NewMatchLookupService(provider SportDataProvider, normalizer *FixtureNormalizer, matchRepo match.Repository) *MatchLookupService {
	return &MatchLookupService{
		provider:   provider,
		normalizer: normalizer,
		matchRepo:  matchRepo,
	}
}

// FetchAndStore reports whether the match was created by this call.
func (s *MatchLookupService) FetchAndStore(ctx context.Context, eventID int64) (match.Match, bool, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchLookupService.FetchAndStore")
	defer span.End()

	if eventID <= 0 {
		return match.Match{}, false, fmt.Errorf("%w: event id must be greater than zero", ErrInvalidInput)
	}

	fixture, err := s.provider.FetchFixture(ctx, eventID)
	if err != nil {
		if errors.Is(err, ErrCredentialMissing) {
			return match.Match{}, false, err
		}
		return match.Match{}, false, fmt.Errorf("%w: %v", ErrDependencyUnavailable, err)
	}
	if fixture == nil {
		return match.Match{}, false, fmt.Errorf("%w: fixture event_id=%d", ErrNotFound, eventID)
	}

	return storeFixture(ctx, s.normalizer, s.matchRepo, *fixture)
}

// GetStored returns the stored copy of a fixture without calling the provider.
func (s *MatchLookupService) GetStored(ctx context.Context, eventID int64) (match.Match, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchLookupService.GetStored")
	defer span.End()

	if eventID <= 0 {
		return match.Match{}, fmt.Errorf("%w: event id must be greater than zero", ErrInvalidInput)
	}

	item, exists, err := s.matchRepo.GetByEventID(ctx, eventID)
	if err != nil {
		return match.Match{}, fmt.Errorf("get match event_id=%d: %w", eventID, err)
	}
	if !exists {
		return match.Match{}, fmt.Errorf("%w: match event_id=%d", ErrNotFound, eventID)
	}
	return item, nil
}
