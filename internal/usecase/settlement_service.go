package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/riskibarqy/pronostic-tracker/internal/domain/match"
	"github.com/riskibarqy/pronostic-tracker/internal/domain/prediction"
	"github.com/riskibarqy/pronostic-tracker/internal/domain/settlement"
	"github.com/riskibarqy/pronostic-tracker/internal/platform/logging"
	"github.com/riskibarqy/pronostic-tracker/internal/platform/metrics"
	"github.com/sourcegraph/conc/panics"
)

const (
	predictionOutcomeSettled = "settled"
	predictionOutcomeSkipped = "skipped"
	predictionOutcomeErrored = "errored"
)

type SettlementRunResult struct {
	Cutoff  time.Time `json:"cutoff"`
	Pending int       `json:"pending"`
	Settled int       `json:"settled"`
	Skipped int       `json:"skipped"`
	Errored int       `json:"errored"`
}

type SettlementService struct {
	provider       SportDataProvider
	matchRepo      match.Repository
	predictionRepo prediction.Repository
	metrics        *metrics.Recorder
	logger         *logging.Logger
	lookahead      time.Duration
	now            func() time.Time
}

func NewSettlementService(
	provider SportDataProvider,
	matchRepo match.Repository,
	predictionRepo prediction.Repository,
	recorder *metrics.Recorder,
	lookahead time.Duration,
	logger *logging.Logger,
) *SettlementService {
	if logger == nil {
		logger = logging.Default()
	}
	return &SettlementService{
		provider:       provider,
		matchRepo:      matchRepo,
		predictionRepo: predictionRepo,
		metrics:        recorder,
		logger:         logger.Named("settlement"),
		lookahead:      lookahead,
		now:            time.Now,
	}
}

// Settle refreshes the linked match from the provider and moves the prediction
// to its decided outcome. It reports whether the outcome changed. Fixtures
// that are not decidable yet are a quiet false; only storage failures and a
// missing token come back as errors.
func (s *SettlementService) Settle(ctx context.Context, item *prediction.Prediction) (bool, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SettlementService.Settle")
	defer span.End()

	if item == nil {
		return false, fmt.Errorf("%w: prediction is required", ErrInvalidInput)
	}
	if item.MatchID == nil {
		s.logger.WarnContext(ctx, "prediction has no match, skipping", "prediction_id", item.ID)
		return false, nil
	}

	linked, exists, err := s.matchRepo.GetByID(ctx, *item.MatchID)
	if err != nil {
		return false, fmt.Errorf("get match id=%d: %w", *item.MatchID, err)
	}
	if !exists || linked.EventID <= 0 {
		s.logger.WarnContext(ctx, "prediction match has no provider event, skipping", "prediction_id", item.ID, "match_id", *item.MatchID)
		return false, nil
	}

	fixture, err := s.provider.FetchFixture(ctx, linked.EventID)
	if err != nil {
		if errors.Is(err, ErrCredentialMissing) {
			return false, err
		}
		s.logger.WarnContext(ctx, "fixture unavailable, leaving prediction pending", "prediction_id", item.ID, "event_id", linked.EventID, "error", err)
		return false, nil
	}
	if fixture == nil {
		s.logger.WarnContext(ctx, "no provider data for fixture", "prediction_id", item.ID, "event_id", linked.EventID)
		return false, nil
	}

	state := settlement.Classify(settlement.Input{
		Finished:  fixture.IsFinished(),
		StateID:   fixture.StateID,
		HomeScore: fixture.Scores.Home,
		AwayScore: fixture.Scores.Away,
	})
	if state == settlement.StateUndecided {
		s.logger.InfoContext(ctx, "fixture not decidable yet", "event_id", linked.EventID, "state_id", fixture.StateID)
		return false, nil
	}
	if fixture.Scores.Home == nil || fixture.Scores.Away == nil {
		s.logger.WarnContext(ctx, "final scores not published yet", "event_id", linked.EventID, "state", state.String())
		return false, nil
	}
	home, away := *fixture.Scores.Home, *fixture.Scores.Away

	// The match is refreshed even when the prediction ends up unchanged.
	if err := s.matchRepo.UpdateResult(ctx, linked.ID, match.Result{
		HomeScore: home,
		AwayScore: away,
		Status:    fixture.StatusLabel(),
	}); err != nil {
		return false, fmt.Errorf("update match result id=%d: %w", linked.ID, err)
	}

	next, err := settlement.Resolve(state, settlement.Bet{
		Type:    item.BetType,
		Details: item.Details,
		Teams:   settlement.Teams{Home: linked.HomeTeam, Away: linked.AwayTeam},
	}, home, away)
	if err != nil {
		if errors.Is(err, settlement.ErrManualSettlement) {
			s.logger.InfoContext(ctx, "prediction needs manual settlement", "prediction_id", item.ID, "bet_type", string(item.BetType))
		} else {
			s.logger.WarnContext(ctx, "bet text could not be settled, leaving unchanged", "prediction_id", item.ID, "bet_type", string(item.BetType), "details", item.Details, "error", err)
		}
		return false, nil
	}

	if !shouldApplyOutcome(item.Outcome, next) {
		return false, nil
	}
	if err := s.predictionRepo.UpdateOutcome(ctx, item.ID, next); err != nil {
		return false, fmt.Errorf("update prediction outcome id=%d: %w", item.ID, err)
	}

	s.logger.InfoContext(ctx, "prediction settled", "prediction_id", item.ID, "from", string(item.Outcome), "to", string(next), "score", fmt.Sprintf("%d-%d", home, away))
	item.Outcome = next
	return true, nil
}

// shouldApplyOutcome keeps a decided WON or LOST unless the match was
// cancelled afterwards.
func shouldApplyOutcome(current, next prediction.Outcome) bool {
	if current == next {
		return false
	}
	switch current {
	case prediction.OutcomeWon, prediction.OutcomeLost:
		return next == prediction.OutcomeVoid
	default:
		return true
	}
}

// SettlePending settles every pending prediction whose match kicks off at or
// before now plus the lookahead, one at a time, earliest kickoff first.
// Pending predictions that lost their match are listed too and count as
// skipped.
func (s *SettlementService) SettlePending(ctx context.Context) (SettlementRunResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SettlementService.SettlePending")
	defer span.End()

	result := SettlementRunResult{Cutoff: s.now().Add(s.lookahead)}
	pending, err := s.predictionRepo.ListPendingDue(ctx, result.Cutoff)
	if err != nil {
		return result, fmt.Errorf("list pending predictions: %w", err)
	}
	result.Pending = len(pending)

	for idx := range pending {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		outcome, err := s.settleOne(ctx, &pending[idx])
		if errors.Is(err, ErrCredentialMissing) {
			return result, err
		}
		s.metrics.PredictionHandled(outcome)
		switch outcome {
		case predictionOutcomeSettled:
			result.Settled++
		case predictionOutcomeSkipped:
			result.Skipped++
		default:
			result.Errored++
		}
	}

	s.metrics.JobCompleted("settle")
	s.logger.InfoContext(ctx, "settlement finished",
		"pending", result.Pending,
		"settled", result.Settled,
		"skipped", result.Skipped,
		"errored", result.Errored,
	)
	return result, nil
}

func (s *SettlementService) settleOne(ctx context.Context, item *prediction.Prediction) (outcome string, err error) {
	var catcher panics.Catcher
	catcher.Try(func() {
		var changed bool
		changed, err = s.Settle(ctx, item)
		switch {
		case err != nil:
			outcome = predictionOutcomeErrored
		case changed:
			outcome = predictionOutcomeSettled
		default:
			outcome = predictionOutcomeSkipped
		}
	})
	if recovered := catcher.Recovered(); recovered != nil {
		s.logger.ErrorContext(ctx, "prediction settlement panicked", "prediction_id", item.ID, "error", recovered.AsError())
		return predictionOutcomeErrored, nil
	}
	if err != nil && !errors.Is(err, ErrCredentialMissing) {
		s.logger.ErrorContext(ctx, "prediction settlement failed", "prediction_id", item.ID, "error", err)
	}
	return outcome, err
}
