package match

import (
	"strings"
	"time"
)

const DisciplineFootball = "FOOTBALL"

// Unknown renders a missing league, venue or team name.
const Unknown = "N/A"

// Match is the stored copy of one provider fixture. It is the single source of
// truth for scores and status; predictions only reference it.
type Match struct {
	ID         int64
	EventID    int64
	Discipline string
	HomeTeam   string
	AwayTeam   string
	KickoffAt  time.Time
	League     *string
	Venue      *string
	HomeScore  *int
	AwayScore  *int
	Status     string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Scores returns the final score when both sides are known.
func (m Match) Scores() (home, away int, ok bool) {
	if m.HomeScore == nil || m.AwayScore == nil {
		return 0, 0, false
	}
	return *m.HomeScore, *m.AwayScore, true
}

// WithScores sets both scores together so a match never stores half a result.
func (m Match) WithScores(home, away *int) Match {
	if home == nil || away == nil {
		m.HomeScore, m.AwayScore = nil, nil
		return m
	}
	h, a := *home, *away
	m.HomeScore, m.AwayScore = &h, &a
	return m
}

func (m Match) LeagueLabel() string { return Label(m.League) }

func (m Match) VenueLabel() string { return Label(m.Venue) }

func (m Match) AwayTeamLabel() string {
	if strings.TrimSpace(m.AwayTeam) == "" {
		return Unknown
	}
	return m.AwayTeam
}

// Label renders an optional name for display.
func Label(v *string) string {
	if v == nil || strings.TrimSpace(*v) == "" {
		return Unknown
	}
	return *v
}

// Result carries the fields settlement writes back onto a match.
type Result struct {
	HomeScore int
	AwayScore int
	Status    string
}
