package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/riskibarqy/pronostic-tracker/external/sportmonks"
	"github.com/riskibarqy/pronostic-tracker/internal/domain/match"
	"github.com/riskibarqy/pronostic-tracker/internal/domain/prediction"
	matchmock "github.com/riskibarqy/pronostic-tracker/internal/mocks/domain/match"
	predictionmock "github.com/riskibarqy/pronostic-tracker/internal/mocks/domain/prediction"
	"github.com/riskibarqy/pronostic-tracker/internal/platform/logging"
	"github.com/stretchr/testify/mock"
)

var lyonMarseilleMatch = match.Match{ID: 10, EventID: 100, HomeTeam: "Lyon", AwayTeam: "Marseille"}

func pendingPrediction(id int64, betType prediction.BetType, details string) prediction.Prediction {
	return prediction.Prediction{
		ID:      id,
		UserID:  "user-1",
		MatchID: int64Ptr(lyonMarseilleMatch.ID),
		BetType: betType,
		Details: details,
		Outcome: prediction.OutcomePending,
	}
}

func newTestSettlementService(provider SportDataProvider, matchRepo match.Repository, predictionRepo prediction.Repository) *SettlementService {
	service := NewSettlementService(provider, matchRepo, predictionRepo, nil, 2*time.Hour, logging.NewNop())
	service.now = func() time.Time { return time.Date(2026, 10, 18, 21, 0, 0, 0, time.UTC) }
	return service
}

func TestSettlementService_Settle_MatchResultIsIdempotent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	provider := newStubSportData()
	provider.fixtures[100] = finishedFixture(100, "Lyon vs Marseille", 2, 1)

	matchRepo := matchmock.NewRepository(t)
	predictionRepo := predictionmock.NewRepository(t)
	matchRepo.On("GetByID", ctx, int64(10)).Return(lyonMarseilleMatch, true, nil).Twice()
	matchRepo.On("UpdateResult", ctx, int64(10), match.Result{HomeScore: 2, AwayScore: 1, Status: "5"}).Return(nil).Twice()
	predictionRepo.On("UpdateOutcome", ctx, int64(1), prediction.OutcomeWon).Return(nil).Once()

	service := newTestSettlementService(provider, matchRepo, predictionRepo)
	item := pendingPrediction(1, prediction.BetMatchResult, "Victoire 1")

	changed, err := service.Settle(ctx, &item)
	if err != nil {
		t.Fatalf("settle: %v", err)
	}
	if !changed || item.Outcome != prediction.OutcomeWon {
		t.Fatalf("expected WON, got changed=%v outcome=%s", changed, item.Outcome)
	}

	changed, err = service.Settle(ctx, &item)
	if err != nil {
		t.Fatalf("settle again: %v", err)
	}
	if changed {
		t.Fatalf("second settle with unchanged data must report no change")
	}
}

func TestSettlementService_Settle_CancelledVoidsDecidedPrediction(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	fixture := finishedFixture(100, "Lyon vs Marseille", 0, 0)
	fixture.StateID = 7
	fixture.State.Data.Name = "Cancelled"
	fixture.State.Set = true
	provider := newStubSportData()
	provider.fixtures[100] = fixture

	matchRepo := matchmock.NewRepository(t)
	predictionRepo := predictionmock.NewRepository(t)
	matchRepo.On("GetByID", ctx, int64(10)).Return(lyonMarseilleMatch, true, nil).Once()
	matchRepo.On("UpdateResult", ctx, int64(10), match.Result{HomeScore: 0, AwayScore: 0, Status: "Cancelled"}).Return(nil).Once()
	predictionRepo.On("UpdateOutcome", ctx, int64(2), prediction.OutcomeVoid).Return(nil).Once()

	item := pendingPrediction(2, prediction.BetScorer, "Lacazette")
	item.Outcome = prediction.OutcomeWon

	changed, err := newTestSettlementService(provider, matchRepo, predictionRepo).Settle(ctx, &item)
	if err != nil {
		t.Fatalf("settle: %v", err)
	}
	if !changed || item.Outcome != prediction.OutcomeVoid {
		t.Fatalf("expected VOID, got changed=%v outcome=%s", changed, item.Outcome)
	}
}

func TestSettlementService_Settle_KeepsDecidedOutcome(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	provider := newStubSportData()
	provider.fixtures[100] = finishedFixture(100, "Lyon vs Marseille", 0, 3)

	matchRepo := matchmock.NewRepository(t)
	predictionRepo := predictionmock.NewRepository(t)
	matchRepo.On("GetByID", ctx, int64(10)).Return(lyonMarseilleMatch, true, nil).Once()
	matchRepo.On("UpdateResult", ctx, int64(10), mock.Anything).Return(nil).Once()

	item := pendingPrediction(3, prediction.BetMatchResult, "1")
	item.Outcome = prediction.OutcomeWon

	changed, err := newTestSettlementService(provider, matchRepo, predictionRepo).Settle(ctx, &item)
	if err != nil {
		t.Fatalf("settle: %v", err)
	}
	if changed || item.Outcome != prediction.OutcomeWon {
		t.Fatalf("a decided prediction must not flip back, got changed=%v outcome=%s", changed, item.Outcome)
	}
}

func TestSettlementService_Settle_LeavesPendingWhenNotDecidable(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("fixture still scheduled", func(t *testing.T) {
		provider := newStubSportData()
		provider.fixtures[100] = scheduledFixture(100, "Lyon vs Marseille")
		matchRepo := matchmock.NewRepository(t)
		matchRepo.On("GetByID", ctx, int64(10)).Return(lyonMarseilleMatch, true, nil).Once()

		item := pendingPrediction(4, prediction.BetMatchResult, "1")
		changed, err := newTestSettlementService(provider, matchRepo, predictionmock.NewRepository(t)).Settle(ctx, &item)
		if err != nil || changed {
			t.Fatalf("expected quiet no-op, got changed=%v err=%v", changed, err)
		}
	})

	t.Run("finished without scores", func(t *testing.T) {
		fixture := finishedFixture(100, "Lyon vs Marseille", 0, 0)
		fixture.Scores = sportmonks.Scores{}
		provider := newStubSportData()
		provider.fixtures[100] = fixture
		matchRepo := matchmock.NewRepository(t)
		matchRepo.On("GetByID", ctx, int64(10)).Return(lyonMarseilleMatch, true, nil).Once()

		item := pendingPrediction(5, prediction.BetMatchResult, "1")
		changed, err := newTestSettlementService(provider, matchRepo, predictionmock.NewRepository(t)).Settle(ctx, &item)
		if err != nil || changed {
			t.Fatalf("expected quiet no-op, got changed=%v err=%v", changed, err)
		}
	})

	t.Run("provider unavailable", func(t *testing.T) {
		provider := newStubSportData()
		provider.fixtureErr[100] = sportmonks.ErrConnection
		matchRepo := matchmock.NewRepository(t)
		matchRepo.On("GetByID", ctx, int64(10)).Return(lyonMarseilleMatch, true, nil).Once()

		item := pendingPrediction(6, prediction.BetMatchResult, "1")
		changed, err := newTestSettlementService(provider, matchRepo, predictionmock.NewRepository(t)).Settle(ctx, &item)
		if err != nil || changed {
			t.Fatalf("expected quiet no-op, got changed=%v err=%v", changed, err)
		}
	})

	t.Run("prediction without match", func(t *testing.T) {
		item := pendingPrediction(7, prediction.BetMatchResult, "1")
		item.MatchID = nil
		changed, err := newTestSettlementService(newStubSportData(), matchmock.NewRepository(t), predictionmock.NewRepository(t)).Settle(ctx, &item)
		if err != nil || changed {
			t.Fatalf("expected quiet no-op, got changed=%v err=%v", changed, err)
		}
	})

	t.Run("match without event id", func(t *testing.T) {
		matchRepo := matchmock.NewRepository(t)
		matchRepo.On("GetByID", ctx, int64(10)).Return(match.Match{ID: 10}, true, nil).Once()

		item := pendingPrediction(8, prediction.BetMatchResult, "1")
		changed, err := newTestSettlementService(newStubSportData(), matchRepo, predictionmock.NewRepository(t)).Settle(ctx, &item)
		if err != nil || changed {
			t.Fatalf("expected quiet no-op, got changed=%v err=%v", changed, err)
		}
	})
}

func TestSettlementService_Settle_MalformedTextStillRefreshesMatch(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	provider := newStubSportData()
	provider.fixtures[100] = finishedFixture(100, "Lyon vs Marseille", 2, 1)

	matchRepo := matchmock.NewRepository(t)
	matchRepo.On("GetByID", ctx, int64(10)).Return(lyonMarseilleMatch, true, nil).Once()
	matchRepo.On("UpdateResult", ctx, int64(10), match.Result{HomeScore: 2, AwayScore: 1, Status: "5"}).Return(nil).Once()

	item := pendingPrediction(9, prediction.BetOverUnder, "OVER")
	changed, err := newTestSettlementService(provider, matchRepo, predictionmock.NewRepository(t)).Settle(ctx, &item)
	if err != nil {
		t.Fatalf("settle: %v", err)
	}
	if changed || item.Outcome != prediction.OutcomePending {
		t.Fatalf("malformed text must leave the prediction pending, got changed=%v outcome=%s", changed, item.Outcome)
	}
}

func TestSettlementService_Settle_ReturnsStorageFailure(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	provider := newStubSportData()
	provider.fixtures[100] = finishedFixture(100, "Lyon vs Marseille", 3, 0)

	matchRepo := matchmock.NewRepository(t)
	predictionRepo := predictionmock.NewRepository(t)
	matchRepo.On("GetByID", ctx, int64(10)).Return(lyonMarseilleMatch, true, nil).Once()
	matchRepo.On("UpdateResult", ctx, int64(10), mock.Anything).Return(nil).Once()
	predictionRepo.On("UpdateOutcome", ctx, int64(11), prediction.OutcomeWon).Return(errors.New("deadlock detected")).Once()

	item := pendingPrediction(11, prediction.BetHandicap, "Handicap Lyon -1.5")
	changed, err := newTestSettlementService(provider, matchRepo, predictionRepo).Settle(ctx, &item)
	if err == nil || changed {
		t.Fatalf("expected storage error, got changed=%v err=%v", changed, err)
	}
	if item.Outcome != prediction.OutcomePending {
		t.Fatalf("outcome must not change in memory when the write failed, got %s", item.Outcome)
	}
}

func TestSettlementService_Settle_MissingPredictionRowIsNotAChange(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	provider := newStubSportData()
	provider.fixtures[100] = finishedFixture(100, "Lyon vs Marseille", 2, 0)

	matchRepo := matchmock.NewRepository(t)
	predictionRepo := predictionmock.NewRepository(t)
	matchRepo.On("GetByID", ctx, int64(10)).Return(lyonMarseilleMatch, true, nil).Once()
	matchRepo.On("UpdateResult", ctx, int64(10), mock.Anything).Return(nil).Once()
	predictionRepo.On("UpdateOutcome", ctx, int64(12), prediction.OutcomeWon).Return(prediction.ErrNotFound).Once()

	item := pendingPrediction(12, prediction.BetMatchResult, "1")
	changed, err := newTestSettlementService(provider, matchRepo, predictionRepo).Settle(ctx, &item)
	if !errors.Is(err, prediction.ErrNotFound) || changed {
		t.Fatalf("expected prediction.ErrNotFound without a change, got changed=%v err=%v", changed, err)
	}
	if item.Outcome != prediction.OutcomePending {
		t.Fatalf("outcome must stay pending when no row was written, got %s", item.Outcome)
	}
}

func TestSettlementService_SettlePending_CountsPerPrediction(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	provider := newStubSportData()
	provider.fixtures[100] = finishedFixture(100, "Lyon vs Marseille", 1, 1)
	provider.fixtures[200] = scheduledFixture(200, "Nice vs Monaco")

	otherMatch := match.Match{ID: 20, EventID: 200, HomeTeam: "Nice", AwayTeam: "Monaco"}
	broken := pendingPrediction(3, prediction.BetMatchResult, "N")
	broken.MatchID = int64Ptr(30)
	later := pendingPrediction(2, prediction.BetMatchResult, "1")
	later.MatchID = int64Ptr(otherMatch.ID)
	unlinked := pendingPrediction(4, prediction.BetMatchResult, "2")
	unlinked.MatchID = nil

	matchRepo := matchmock.NewRepository(t)
	predictionRepo := predictionmock.NewRepository(t)
	predictionRepo.
		On("ListPendingDue", ctx, time.Date(2026, 10, 18, 23, 0, 0, 0, time.UTC)).
		Return([]prediction.Prediction{pendingPrediction(1, prediction.BetDoubleChance, "1N"), later, broken, unlinked}, nil).
		Once()
	matchRepo.On("GetByID", ctx, int64(10)).Return(lyonMarseilleMatch, true, nil).Once()
	matchRepo.On("GetByID", ctx, int64(20)).Return(otherMatch, true, nil).Once()
	matchRepo.On("GetByID", ctx, int64(30)).Return(match.Match{}, false, errors.New("connection refused")).Once()
	matchRepo.On("UpdateResult", ctx, int64(10), mock.Anything).Return(nil).Once()
	predictionRepo.On("UpdateOutcome", ctx, int64(1), prediction.OutcomeWon).Return(nil).Once()

	result, err := newTestSettlementService(provider, matchRepo, predictionRepo).SettlePending(ctx)
	if err != nil {
		t.Fatalf("settle pending: %v", err)
	}
	if result.Pending != 4 || result.Settled != 1 || result.Skipped != 2 || result.Errored != 1 {
		t.Fatalf("unexpected result %+v", result)
	}
}

func TestSettlementService_SettlePending_MissingTokenAborts(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	provider := newStubSportData()
	provider.fixtureErr[100] = sportmonks.ErrMissingCredentials

	matchRepo := matchmock.NewRepository(t)
	predictionRepo := predictionmock.NewRepository(t)
	predictionRepo.
		On("ListPendingDue", ctx, mock.Anything).
		Return([]prediction.Prediction{pendingPrediction(1, prediction.BetMatchResult, "1"), pendingPrediction(2, prediction.BetMatchResult, "2")}, nil).
		Once()
	matchRepo.On("GetByID", ctx, int64(10)).Return(lyonMarseilleMatch, true, nil).Once()

	_, err := newTestSettlementService(provider, matchRepo, predictionRepo).SettlePending(ctx)
	if !errors.Is(err, ErrCredentialMissing) {
		t.Fatalf("expected ErrCredentialMissing, got %v", err)
	}
}
