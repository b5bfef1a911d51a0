package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/riskibarqy/pronostic-tracker/internal/domain/match"
	"github.com/riskibarqy/pronostic-tracker/internal/domain/prediction"
	"github.com/riskibarqy/pronostic-tracker/internal/platform/logging"
	"github.com/riskibarqy/pronostic-tracker/internal/usecase"
)

type Handler struct {
	ingestionService  *usecase.MatchIngestionService
	settlementService *usecase.SettlementService
	lookupService     *usecase.MatchLookupService
	statsService      *usecase.StatsService
	predictionService *usecase.PredictionService
	metricsHandler    http.Handler
	defaultDaysAhead  int
	logger            *logging.Logger
	validator         *validator.Validate
}

func NewHandler(
	ingestionService *usecase.MatchIngestionService,
	settlementService *usecase.SettlementService,
	lookupService *usecase.MatchLookupService,
	statsService *usecase.StatsService,
	predictionService *usecase.PredictionService,
	metricsHandler http.Handler,
	defaultDaysAhead int,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	if metricsHandler == nil {
		metricsHandler = http.NotFoundHandler()
	}

	return &Handler{
		ingestionService:  ingestionService,
		settlementService: settlementService,
		lookupService:     lookupService,
		statsService:      statsService,
		predictionService: predictionService,
		metricsHandler:    metricsHandler,
		defaultDaysAhead:  defaultDaysAhead,
		logger:            logger,
		validator:         validator.New(),
	}
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.validateRequest")
	defer span.End()

	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}

type ingestMatchesRequest struct {
	DaysAhead  *int   `json:"days_ahead" validate:"omitempty,min=0,max=60"`
	DispatchID string `json:"dispatch_id" validate:"omitempty,max=128"`
}

type settlePredictionsRequest struct {
	DispatchID string `json:"dispatch_id" validate:"omitempty,max=128"`
}

type userStatsRequest struct {
	UserID string `validate:"required,max=64"`
}

type createPredictionRequest struct {
	UserID  string   `json:"user_id" validate:"required,max=64"`
	MatchID *int64   `json:"match_id" validate:"omitempty,gt=0"`
	BetType string   `json:"bet_type" validate:"required,max=32"`
	Details string   `json:"details" validate:"required,max=255"`
	Stake   *float64 `json:"stake" validate:"omitempty,gt=0"`
	Odds    *float64 `json:"odds" validate:"omitempty,gte=1"`
}

type predictionDTO struct {
	ID         int64    `json:"id"`
	UserID     string   `json:"user_id"`
	MatchID    *int64   `json:"match_id"`
	Discipline string   `json:"discipline"`
	BetType    string   `json:"bet_type"`
	Details    string   `json:"details"`
	Stake      *float64 `json:"stake"`
	Odds       *float64 `json:"odds"`
	Outcome    string   `json:"outcome"`
	Profit     float64  `json:"profit"`
	CreatedAt  string   `json:"created_at"`
}

func predictionToDTO(item prediction.Prediction) predictionDTO {
	return predictionDTO{
		ID:         item.ID,
		UserID:     item.UserID,
		MatchID:    item.MatchID,
		Discipline: item.Discipline,
		BetType:    string(item.BetType),
		Details:    item.Details,
		Stake:      item.Stake,
		Odds:       item.Odds,
		Outcome:    string(item.Outcome),
		Profit:     item.Profit(),
		CreatedAt:  item.CreatedAt.UTC().Format(time.RFC3339),
	}
}

type matchDTO struct {
	ID         int64  `json:"id"`
	EventID    int64  `json:"event_id"`
	Discipline string `json:"discipline"`
	HomeTeam   string `json:"home_team"`
	AwayTeam   string `json:"away_team"`
	KickoffAt  string `json:"kickoff_at"`
	League     string `json:"league"`
	Venue      string `json:"venue"`
	HomeScore  *int   `json:"home_score"`
	AwayScore  *int   `json:"away_score"`
	Status     string `json:"status"`
}

type matchSyncDTO struct {
	Match   matchDTO `json:"match"`
	Created bool     `json:"created"`
}

func matchToDTO(item match.Match) matchDTO {
	return matchDTO{
		ID:         item.ID,
		EventID:    item.EventID,
		Discipline: item.Discipline,
		HomeTeam:   item.HomeTeam,
		AwayTeam:   item.AwayTeamLabel(),
		KickoffAt:  item.KickoffAt.UTC().Format(time.RFC3339),
		League:     item.LeagueLabel(),
		Venue:      item.VenueLabel(),
		HomeScore:  item.HomeScore,
		AwayScore:  item.AwayScore,
		Status:     item.Status,
	}
}
