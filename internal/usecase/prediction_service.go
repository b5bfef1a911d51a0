package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/riskibarqy/pronostic-tracker/internal/domain/match"
	"github.com/riskibarqy/pronostic-tracker/internal/domain/prediction"
)

type CreatePredictionInput struct {
	UserID  string
	MatchID *int64
	BetType string
	Details string
	Stake   *float64
	Odds    *float64
}

// PredictionService records new predictions. They always start PENDING;
// only settlement moves them on.
type PredictionService struct {
	matchRepo      match.Repository
	predictionRepo prediction.Repository
}

func NewPredictionService(matchRepo match.Repository, predictionRepo prediction.Repository) *PredictionService {
	return &PredictionService{
		matchRepo:      matchRepo,
		predictionRepo: predictionRepo,
	}
}

func (s *PredictionService) Create(ctx context.Context, input CreatePredictionInput) (prediction.Prediction, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PredictionService.Create")
	defer span.End()

	userID := strings.TrimSpace(input.UserID)
	if userID == "" {
		return prediction.Prediction{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	betType, err := prediction.ParseBetType(input.BetType)
	if err != nil {
		return prediction.Prediction{}, fmt.Errorf("%w: %v, expected one of %v", ErrInvalidInput, err, prediction.BetTypes())
	}
	details := strings.TrimSpace(input.Details)
	if details == "" {
		return prediction.Prediction{}, fmt.Errorf("%w: bet details are required", ErrInvalidInput)
	}
	if input.Stake != nil && *input.Stake <= 0 {
		return prediction.Prediction{}, fmt.Errorf("%w: stake must be greater than zero", ErrInvalidInput)
	}
	if input.Odds != nil && *input.Odds < 1 {
		return prediction.Prediction{}, fmt.Errorf("%w: odds must be at least 1", ErrInvalidInput)
	}

	discipline := match.DisciplineFootball
	if input.MatchID != nil {
		linked, exists, err := s.matchRepo.GetByID(ctx, *input.MatchID)
		if err != nil {
			return prediction.Prediction{}, fmt.Errorf("get match id=%d: %w", *input.MatchID, err)
		}
		if !exists {
			return prediction.Prediction{}, fmt.Errorf("%w: match id=%d", ErrNotFound, *input.MatchID)
		}
		if linked.Discipline != "" {
			discipline = linked.Discipline
		}
	}

	created, err := s.predictionRepo.Create(ctx, prediction.Prediction{
		UserID:     userID,
		MatchID:    input.MatchID,
		Discipline: discipline,
		BetType:    betType,
		Details:    details,
		Stake:      input.Stake,
		Odds:       input.Odds,
		Outcome:    prediction.OutcomePending,
	})
	if err != nil {
		return prediction.Prediction{}, fmt.Errorf("create prediction user_id=%s: %w", userID, err)
	}
	return created, nil
}

func (s *PredictionService) Get(ctx context.Context, id int64) (prediction.Prediction, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PredictionService.Get")
	defer span.End()

	if id <= 0 {
		return prediction.Prediction{}, fmt.Errorf("%w: prediction id must be greater than zero", ErrInvalidInput)
	}

	item, exists, err := s.predictionRepo.GetByID(ctx, id)
	if err != nil {
		return prediction.Prediction{}, fmt.Errorf("get prediction id=%d: %w", id, err)
	}
	if !exists {
		return prediction.Prediction{}, fmt.Errorf("%w: prediction id=%d", ErrNotFound, id)
	}
	return item, nil
}
