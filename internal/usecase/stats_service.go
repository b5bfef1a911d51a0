package usecase

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/riskibarqy/pronostic-tracker/internal/domain/prediction"
)

type UserStats struct {
	UserID  string  `json:"user_id"`
	Total   int     `json:"total"`
	Won     int     `json:"won"`
	Lost    int     `json:"lost"`
	Pending int     `json:"pending"`
	Void    int     `json:"void"`
	WinRate float64 `json:"win_rate"`
	Profit  float64 `json:"profit"`
}

type StatsService struct {
	predictionRepo prediction.Repository
}

func NewStatsService(predictionRepo prediction.Repository) *StatsService {
	return &StatsService{predictionRepo: predictionRepo}
}

// UserStats aggregates a user's predictions. Win rate only counts decided
// bets; void and pending ones are left out.
func (s *StatsService) UserStats(ctx context.Context, userID string) (UserStats, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.StatsService.UserStats")
	defer span.End()

	userID = strings.TrimSpace(userID)
	if userID == "" {
		return UserStats{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}

	items, err := s.predictionRepo.ListByUser(ctx, userID)
	if err != nil {
		return UserStats{}, fmt.Errorf("list predictions user_id=%s: %w", userID, err)
	}

	out := UserStats{UserID: userID, Total: len(items)}
	profit := 0.0
	for _, item := range items {
		switch item.Outcome {
		case prediction.OutcomeWon:
			out.Won++
		case prediction.OutcomeLost:
			out.Lost++
		case prediction.OutcomeVoid:
			out.Void++
		default:
			out.Pending++
		}
		profit += item.Profit()
	}

	if decided := out.Won + out.Lost; decided > 0 {
		out.WinRate = roundCents(float64(out.Won) / float64(decided) * 100)
	}
	out.Profit = roundCents(profit)
	return out, nil
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
