package settlement

import (
	"errors"
	"fmt"
	"strings"

	"github.com/riskibarqy/pronostic-tracker/internal/domain/prediction"
)

// ErrManualSettlement marks bet types that are never decided automatically.
var ErrManualSettlement = errors.New("bet type requires manual settlement")

// State is how far a fixture has progressed from settlement's point of view.
type State int

const (
	StateUndecided State = iota
	StateFinished
	StateCancelled
)

func (s State) String() string {
	switch s {
	case StateFinished:
		return "FINISHED"
	case StateCancelled:
		return "CANCELLED"
	default:
		return "UNDECIDED"
	}
}

// Provider state ids for cancelled, postponed, abandoned and similar fixtures.
var cancelledStateIDs = map[int64]struct{}{6: {}, 7: {}, 8: {}, 9: {}, 10: {}}

// Input is the fixture data settlement needs. It is derived on every run and
// never stored.
type Input struct {
	Finished  bool
	StateID   int64
	HomeScore *int
	AwayScore *int
}

// Classify puts a cancelled state ahead of the finished flag.
func Classify(in Input) State {
	if isCancelledState(in.StateID) {
		return StateCancelled
	}
	if in.Finished {
		return StateFinished
	}
	return StateUndecided
}

// isCancelledState reports the provider states that void a match.
func isCancelledState(stateID int64) bool {
	_, ok := cancelledStateIDs[stateID]
	return ok
}

type Teams struct {
	Home string
	Away string
}

// Bet is the part of a prediction the decision reads.
type Bet struct {
	Type    prediction.BetType
	Details string
	Teams   Teams
}

// Resolve returns the outcome a prediction moves to for a decided fixture.
// Any error means the prediction stays as it is.
func Resolve(state State, bet Bet, home, away int) (prediction.Outcome, error) {
	switch state {
	case StateCancelled:
		return prediction.OutcomeVoid, nil
	case StateFinished:
		return Decide(bet, home, away)
	default:
		return "", fmt.Errorf("fixture state %s is not decidable", state)
	}
}

// Decide settles a bet against a final score.
func Decide(bet Bet, home, away int) (prediction.Outcome, error) {
	switch bet.Type {
	case prediction.BetMatchResult:
		return outcome(strings.Contains(strings.ToUpper(bet.Details), MatchResultCode(home, away))), nil
	case prediction.BetOverUnder:
		parsed, err := ParseOverUnder(bet.Details)
		if err != nil {
			return "", err
		}
		return outcome(parsed.Wins(home + away)), nil
	case prediction.BetHandicap:
		parsed, err := ParseHandicap(bet.Details, bet.Teams)
		if err != nil {
			return "", err
		}
		return outcome(parsed.Wins(home, away)), nil
	case prediction.BetDoubleChance:
		parsed, err := ParseDoubleChance(bet.Details)
		if err != nil {
			return "", err
		}
		return outcome(parsed.Wins(home, away)), nil
	case prediction.BetScorer, prediction.BetHalfFullTime, prediction.BetExactScore, prediction.BetOther:
		return "", fmt.Errorf("%w: %s", ErrManualSettlement, bet.Type)
	default:
		return "", fmt.Errorf("%w: unknown bet type %q", ErrManualSettlement, bet.Type)
	}
}

// MatchResultCode is the 1/N/2 code of a final score.
func MatchResultCode(home, away int) string {
	switch {
	case home > away:
		return "1"
	case away > home:
		return "2"
	default:
		return "N"
	}
}

func outcome(won bool) prediction.Outcome {
	if won {
		return prediction.OutcomeWon
	}
	return prediction.OutcomeLost
}
