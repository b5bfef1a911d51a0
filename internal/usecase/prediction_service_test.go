package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/riskibarqy/pronostic-tracker/internal/domain/match"
	"github.com/riskibarqy/pronostic-tracker/internal/domain/prediction"
	matchmock "github.com/riskibarqy/pronostic-tracker/internal/mocks/domain/match"
	predictionmock "github.com/riskibarqy/pronostic-tracker/internal/mocks/domain/prediction"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestPredictionService_Create(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	matchRepo := matchmock.NewRepository(t)
	predictionRepo := predictionmock.NewRepository(t)
	matchRepo.On("GetByID", ctx, int64(10)).Return(match.Match{ID: 10, Discipline: match.DisciplineFootball}, true, nil).Once()
	predictionRepo.
		On("Create", ctx, mock.MatchedBy(func(item prediction.Prediction) bool {
			return item.UserID == "user-1" &&
				item.BetType == prediction.BetOverUnder &&
				item.Details == "Over 2.5" &&
				item.Outcome == prediction.OutcomePending &&
				item.Discipline == match.DisciplineFootball
		})).
		Return(func(_ context.Context, item prediction.Prediction) (prediction.Prediction, error) {
			item.ID = 1
			return item, nil
		}).
		Once()

	got, err := NewPredictionService(matchRepo, predictionRepo).Create(ctx, CreatePredictionInput{
		UserID:  " user-1 ",
		MatchID: int64Ptr(10),
		BetType: "over_under",
		Details: " Over 2.5 ",
		Stake:   float64Ptr(10),
		Odds:    float64Ptr(1.9),
	})
	require.NoError(t, err)
	require.Equal(t, int64(1), got.ID)
	require.Equal(t, prediction.OutcomePending, got.Outcome)
}

func TestPredictionService_Create_RejectsBadInput(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	service := NewPredictionService(matchmock.NewRepository(t), predictionmock.NewRepository(t))

	tests := []struct {
		name  string
		input CreatePredictionInput
	}{
		{name: "missing user", input: CreatePredictionInput{BetType: "MATCH_RESULT", Details: "1"}},
		{name: "unknown bet type", input: CreatePredictionInput{UserID: "u", BetType: "ACCUMULATOR", Details: "1"}},
		{name: "missing details", input: CreatePredictionInput{UserID: "u", BetType: "MATCH_RESULT", Details: "  "}},
		{name: "zero stake", input: CreatePredictionInput{UserID: "u", BetType: "MATCH_RESULT", Details: "1", Stake: float64Ptr(0)}},
		{name: "odds below one", input: CreatePredictionInput{UserID: "u", BetType: "MATCH_RESULT", Details: "1", Odds: float64Ptr(0.5)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := service.Create(ctx, tt.input); !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestPredictionService_Create_UnknownMatch(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	matchRepo := matchmock.NewRepository(t)
	matchRepo.On("GetByID", ctx, int64(99)).Return(match.Match{}, false, nil).Once()

	_, err := NewPredictionService(matchRepo, predictionmock.NewRepository(t)).Create(ctx, CreatePredictionInput{
		UserID:  "u",
		MatchID: int64Ptr(99),
		BetType: "DOUBLE_CHANCE",
		Details: "1N",
	})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPredictionService_Get(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	predictionRepo := predictionmock.NewRepository(t)
	predictionRepo.On("GetByID", ctx, int64(5)).Return(prediction.Prediction{ID: 5, Outcome: prediction.OutcomeLost}, true, nil).Once()
	predictionRepo.On("GetByID", ctx, int64(6)).Return(prediction.Prediction{}, false, nil).Once()
	service := NewPredictionService(matchmock.NewRepository(t), predictionRepo)

	got, err := service.Get(ctx, 5)
	require.NoError(t, err)
	require.Equal(t, prediction.OutcomeLost, got.Outcome)

	_, err = service.Get(ctx, 6)
	require.ErrorIs(t, err, ErrNotFound)

	_, err = service.Get(ctx, 0)
	require.ErrorIs(t, err, ErrInvalidInput)
}
