package settlement

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	// ErrMalformedBetText means the free text does not encode a bet of its
	// declared type. The prediction is left for manual review.
	ErrMalformedBetText = errors.New("malformed bet text")
	// ErrAmbiguousBetText is a malformed text that matches more than one reading.
	ErrAmbiguousBetText = fmt.Errorf("%w: ambiguous", ErrMalformedBetText)
)

type Direction string

const (
	DirectionOver  Direction = "OVER"
	DirectionUnder Direction = "UNDER"
)

// OverUnderBet is "<OVER|UNDER> <line>", e.g. "OVER 2.5".
type OverUnderBet struct {
	Direction Direction
	Line      float64
}

func ParseOverUnder(text string) (OverUnderBet, error) {
	parts := strings.Fields(text)
	if len(parts) < 2 {
		return OverUnderBet{}, fmt.Errorf("%w: over/under needs a direction and a line: %q", ErrMalformedBetText, text)
	}

	direction := Direction(strings.ToUpper(parts[0]))
	if direction != DirectionOver && direction != DirectionUnder {
		return OverUnderBet{}, fmt.Errorf("%w: unknown over/under direction %q", ErrMalformedBetText, parts[0])
	}

	line, err := parseNumber(parts[1])
	if err != nil {
		return OverUnderBet{}, fmt.Errorf("%w: over/under line %q: %v", ErrMalformedBetText, parts[1], err)
	}

	return OverUnderBet{Direction: direction, Line: line}, nil
}

func (b OverUnderBet) Wins(totalGoals int) bool {
	total := float64(totalGoals)
	if b.Direction == DirectionOver {
		return total > b.Line
	}
	return total < b.Line
}

type Side string

const (
	SideHome Side = "HOME"
	SideAway Side = "AWAY"
)

// HandicapBet adds Value (signed) to one side's goals.
type HandicapBet struct {
	Side  Side
	Value float64
}

var handicapValueRegex = regexp.MustCompile(`([+-])\s*(\d+(?:\.\d+)?)`)

// ParseHandicap reads texts like "Handicap Lyon -1.5". The team is the one
// whose name ends right before the signed value; otherwise the only team
// named anywhere in the text.
func ParseHandicap(text string, teams Teams) (HandicapBet, error) {
	lower := strings.ToLower(text)
	if !strings.Contains(lower, "handicap") {
		return HandicapBet{}, fmt.Errorf("%w: handicap text must mention handicap: %q", ErrMalformedBetText, text)
	}

	loc := handicapValueRegex.FindStringSubmatchIndex(text)
	if loc == nil {
		return HandicapBet{}, fmt.Errorf("%w: handicap text has no signed value: %q", ErrMalformedBetText, text)
	}

	value, err := parseNumber(text[loc[4]:loc[5]])
	if err != nil {
		return HandicapBet{}, fmt.Errorf("%w: handicap value: %v", ErrMalformedBetText, err)
	}
	if text[loc[2]:loc[3]] == "-" {
		value = -value
	}

	side, err := handicapSide(strings.ToLower(strings.TrimSpace(text[:loc[0]])), lower, teams)
	if err != nil {
		return HandicapBet{}, fmt.Errorf("%w: %q", err, text)
	}

	return HandicapBet{Side: side, Value: value}, nil
}

func handicapSide(prefix, lower string, teams Teams) (Side, error) {
	home := strings.ToLower(strings.TrimSpace(teams.Home))
	away := strings.ToLower(strings.TrimSpace(teams.Away))

	homeAdjacent := home != "" && strings.HasSuffix(prefix, home)
	awayAdjacent := away != "" && strings.HasSuffix(prefix, away)
	switch {
	case homeAdjacent && awayAdjacent:
		// One name is a suffix of the other; the longer one is the real match.
		if len(home) > len(away) {
			return SideHome, nil
		}
		if len(away) > len(home) {
			return SideAway, nil
		}
		return "", ErrAmbiguousBetText
	case homeAdjacent:
		return SideHome, nil
	case awayAdjacent:
		return SideAway, nil
	}

	homeNamed := home != "" && strings.Contains(lower, home)
	awayNamed := away != "" && strings.Contains(lower, away)
	switch {
	case homeNamed && awayNamed:
		return "", ErrAmbiguousBetText
	case homeNamed:
		return SideHome, nil
	case awayNamed:
		return SideAway, nil
	default:
		return "", fmt.Errorf("%w: handicap text names neither team", ErrMalformedBetText)
	}
}

func (b HandicapBet) Wins(home, away int) bool {
	if b.Side == SideHome {
		return float64(home)+b.Value > float64(away)
	}
	return float64(away)+b.Value > float64(home)
}

// DoubleChanceBet covers two of the three 1/N/2 outcomes.
type DoubleChanceBet string

const (
	DoubleChanceHomeOrDraw DoubleChanceBet = "1N"
	DoubleChanceHomeOrAway DoubleChanceBet = "12"
	DoubleChanceDrawOrAway DoubleChanceBet = "N2"
)

// ParseDoubleChance requires exactly one of the three tokens. Text carrying
// several of them, "1N2" included, is ambiguous.
func ParseDoubleChance(text string) (DoubleChanceBet, error) {
	upper := strings.ToUpper(text)

	var found []DoubleChanceBet
	for _, token := range []DoubleChanceBet{DoubleChanceHomeOrDraw, DoubleChanceHomeOrAway, DoubleChanceDrawOrAway} {
		if strings.Contains(upper, string(token)) {
			found = append(found, token)
		}
	}

	switch len(found) {
	case 0:
		return "", fmt.Errorf("%w: no double chance token in %q", ErrMalformedBetText, text)
	case 1:
		return found[0], nil
	default:
		return "", fmt.Errorf("%w: double chance tokens %v in %q", ErrAmbiguousBetText, found, text)
	}
}

func (b DoubleChanceBet) Wins(home, away int) bool {
	switch b {
	case DoubleChanceHomeOrDraw:
		return home >= away
	case DoubleChanceHomeOrAway:
		return home != away
	default:
		return away >= home
	}
}

func parseNumber(raw string) (float64, error) {
	value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, fmt.Errorf("not a finite number: %q", raw)
	}
	return value, nil
}
