package postgres

import (
	"database/sql"
	"testing"
	"time"

	"github.com/riskibarqy/pronostic-tracker/internal/domain/match"
	"github.com/riskibarqy/pronostic-tracker/internal/domain/prediction"
)

func TestNewMatchUpsertModel_DropsHalfResult(t *testing.T) {
	home := 2
	league := "Ligue 1"
	kickoff := time.Date(2026, 10, 18, 21, 0, 0, 0, time.FixedZone("CEST", 2*60*60))

	got := newMatchUpsertModel(match.Match{
		EventID:   42,
		KickoffAt: kickoff,
		League:    &league,
		HomeScore: &home,
	})

	if got.HomeScore.Valid || got.AwayScore.Valid {
		t.Fatalf("expected both scores null, got %+v %+v", got.HomeScore, got.AwayScore)
	}
	if !got.League.Valid || got.League.String != league {
		t.Fatalf("unexpected league %+v", got.League)
	}
	if got.Venue.Valid {
		t.Fatalf("expected null venue")
	}
	if got.KickoffAt.Location() != time.UTC || !got.KickoffAt.Equal(kickoff) {
		t.Fatalf("expected kickoff stored in UTC, got %v", got.KickoffAt)
	}
}

func TestMatchTableModel_ToDomain(t *testing.T) {
	row := matchTableModel{
		ID:        7,
		EventID:   42,
		HomeTeam:  "Lyon",
		AwayTeam:  "Marseille",
		HomeScore: sql.NullInt64{Int64: 1, Valid: true},
		AwayScore: sql.NullInt64{Int64: 0, Valid: true},
		Status:    "Full Time",
	}

	got := row.toDomain()
	home, away, ok := got.Scores()
	if !ok || home != 1 || away != 0 {
		t.Fatalf("expected 1-0, got %d-%d ok=%v", home, away, ok)
	}
	if got.LeagueLabel() != match.Unknown {
		t.Fatalf("expected unknown league, got %q", got.LeagueLabel())
	}
}

func TestNewPredictionInsertModel_DefaultsToPending(t *testing.T) {
	matchID := int64(7)
	stake := 10.0

	got := newPredictionInsertModel(prediction.Prediction{
		UserID:  "user-1",
		MatchID: &matchID,
		BetType: prediction.BetOverUnder,
		Details: "Over 2.5",
		Stake:   &stake,
	})

	if got.Outcome != string(prediction.OutcomePending) {
		t.Fatalf("expected PENDING, got %q", got.Outcome)
	}
	if !got.MatchID.Valid || got.MatchID.Int64 != 7 {
		t.Fatalf("unexpected match id %+v", got.MatchID)
	}
	if got.Odds.Valid {
		t.Fatalf("expected null odds")
	}
}

func TestPredictionTableModel_ToDomain(t *testing.T) {
	row := predictionTableModel{
		ID:      3,
		UserID:  "user-1",
		MatchID: sql.NullInt64{Int64: 7, Valid: true},
		BetType: "DOUBLE_CHANCE",
		Details: "1N",
		Odds:    sql.NullFloat64{Float64: 1.4, Valid: true},
		Outcome: "WON",
	}

	got, err := row.toDomain()
	if err != nil {
		t.Fatalf("to domain: %v", err)
	}
	if got.BetType != prediction.BetDoubleChance || got.Outcome != prediction.OutcomeWon {
		t.Fatalf("unexpected bet type/outcome %q/%q", got.BetType, got.Outcome)
	}
	if got.MatchID == nil || *got.MatchID != 7 || got.Stake != nil {
		t.Fatalf("unexpected nullable fields %+v", got)
	}

	badBet := row
	badBet.BetType = "ACCUMULATOR"
	if _, err := badBet.toDomain(); err == nil {
		t.Fatalf("expected unknown bet type to be rejected")
	}

	badOutcome := row
	badOutcome.Outcome = "CASHED_OUT"
	if _, err := badOutcome.toDomain(); err == nil {
		t.Fatalf("expected unknown outcome to be rejected")
	}
}
