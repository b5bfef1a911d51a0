package prediction

import (
	"fmt"
	"strings"
	"time"
)

// BetType is the closed set of bet encodings a prediction can carry.
type BetType string

const (
	BetMatchResult  BetType = "MATCH_RESULT"
	BetOverUnder    BetType = "OVER_UNDER"
	BetHandicap     BetType = "HANDICAP"
	BetScorer       BetType = "SCORER"
	BetDoubleChance BetType = "DOUBLE_CHANCE"
	BetHalfFullTime BetType = "HALF_FULL_TIME"
	BetExactScore   BetType = "EXACT_SCORE"
	BetOther        BetType = "OTHER"
)

var betTypes = []BetType{
	BetMatchResult,
	BetOverUnder,
	BetHandicap,
	BetScorer,
	BetDoubleChance,
	BetHalfFullTime,
	BetExactScore,
	BetOther,
}

func BetTypes() []BetType {
	return append([]BetType(nil), betTypes...)
}

func ParseBetType(v string) (BetType, error) {
	candidate := BetType(strings.ToUpper(strings.TrimSpace(v)))
	for _, item := range betTypes {
		if item == candidate {
			return item, nil
		}
	}
	return "", fmt.Errorf("unknown bet type %q", v)
}

// Outcome is the settlement state of a prediction.
type Outcome string

const (
	OutcomePending Outcome = "PENDING"
	OutcomeWon     Outcome = "WON"
	OutcomeLost    Outcome = "LOST"
	OutcomeVoid    Outcome = "VOID"
)

func (o Outcome) Valid() bool {
	switch o {
	case OutcomePending, OutcomeWon, OutcomeLost, OutcomeVoid:
		return true
	default:
		return false
	}
}

// Prediction is a user's bet on one match.
type Prediction struct {
	ID         int64
	UserID     string
	MatchID    *int64
	Discipline string
	BetType    BetType
	Details    string
	Stake      *float64
	Odds       *float64
	Outcome    Outcome
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Profit is the net gain of a settled bet. Unsettled, void and stake-less
// predictions yield zero.
func (p Prediction) Profit() float64 {
	if p.Stake == nil {
		return 0
	}
	switch p.Outcome {
	case OutcomeWon:
		if p.Odds == nil {
			return 0
		}
		return *p.Stake * (*p.Odds - 1)
	case OutcomeLost:
		return -*p.Stake
	default:
		return 0
	}
}
