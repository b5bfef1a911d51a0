package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/riskibarqy/pronostic-tracker/external/sportmonks"
	"github.com/riskibarqy/pronostic-tracker/internal/domain/match"
	matchmock "github.com/riskibarqy/pronostic-tracker/internal/mocks/domain/match"
	"github.com/riskibarqy/pronostic-tracker/internal/platform/logging"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestLookupService(provider SportDataProvider, repo match.Repository) *MatchLookupService {
	normalizer := NewFixtureNormalizer(provider, time.UTC, time.Hour, logging.NewNop())
	return NewMatchLookupService(provider, normalizer, repo)
}

func TestMatchLookupService_FetchAndStore(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	provider := newStubSportData()
	provider.fixtures[100] = finishedFixture(100, "Lyon vs Marseille", 2, 2)
	provider.leagues[301] = "Ligue 1"

	repo := matchmock.NewRepository(t)
	repo.
		On("UpsertByEventID", ctx, mock.MatchedBy(func(item match.Match) bool {
			return item.EventID == 100 && item.Discipline == match.DisciplineFootball && item.AwayTeam == "Marseille"
		})).
		Return(func(_ context.Context, item match.Match) (match.Match, bool, error) {
			item.ID = 10
			return item, true, nil
		}).
		Once()

	got, created, err := newTestLookupService(provider, repo).FetchAndStore(ctx, 100)
	require.NoError(t, err)
	require.True(t, created)
	require.Equal(t, int64(10), got.ID)
	require.Equal(t, "Ligue 1", got.LeagueLabel())
	require.Equal(t, "N/A", got.VenueLabel())
}

func TestMatchLookupService_FetchAndStore_Errors(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	provider := newStubSportData()
	provider.fixtureErr[200] = sportmonks.ErrTimeout
	provider.fixtureErr[300] = sportmonks.ErrMissingCredentials
	service := newTestLookupService(provider, matchmock.NewRepository(t))

	_, _, err := service.FetchAndStore(ctx, 0)
	require.ErrorIs(t, err, ErrInvalidInput)

	_, _, err = service.FetchAndStore(ctx, 100)
	require.ErrorIs(t, err, ErrNotFound)

	_, _, err = service.FetchAndStore(ctx, 200)
	require.ErrorIs(t, err, ErrDependencyUnavailable)

	_, _, err = service.FetchAndStore(ctx, 300)
	if !errors.Is(err, ErrCredentialMissing) {
		t.Fatalf("expected ErrCredentialMissing, got %v", err)
	}
}

func TestMatchLookupService_GetStored(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := matchmock.NewRepository(t)
	repo.On("GetByEventID", ctx, int64(100)).Return(match.Match{ID: 10, EventID: 100, HomeTeam: "Lyon"}, true, nil).Once()
	repo.On("GetByEventID", ctx, int64(200)).Return(match.Match{}, false, nil).Once()
	service := newTestLookupService(newStubSportData(), repo)

	got, err := service.GetStored(ctx, 100)
	require.NoError(t, err)
	require.Equal(t, "Lyon", got.HomeTeam)

	_, err = service.GetStored(ctx, 200)
	require.ErrorIs(t, err, ErrNotFound)

	_, err = service.GetStored(ctx, -1)
	require.ErrorIs(t, err, ErrInvalidInput)
}
