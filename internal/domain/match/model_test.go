package match

import "testing"

func TestMatch_WithScoresKeepsPairing(t *testing.T) {
	home, away := 2, 1

	m := Match{}.WithScores(&home, &away)
	h, a, ok := m.Scores()
	if !ok || h != 2 || a != 1 {
		t.Fatalf("expected 2-1, got %d-%d ok=%v", h, a, ok)
	}

	home = 5
	if *m.HomeScore != 2 {
		t.Fatalf("scores must be copied, got %d", *m.HomeScore)
	}

	m = m.WithScores(&home, nil)
	if m.HomeScore != nil || m.AwayScore != nil {
		t.Fatalf("a half result must clear both scores")
	}
	if _, _, ok := m.Scores(); ok {
		t.Fatalf("expected no scores")
	}
}

func TestLabel(t *testing.T) {
	name := "Stade Vélodrome"
	blank := "  "

	if got := Label(&name); got != name {
		t.Fatalf("unexpected label %q", got)
	}
	if got := Label(nil); got != Unknown {
		t.Fatalf("expected %q for nil, got %q", Unknown, got)
	}
	if got := Label(&blank); got != Unknown {
		t.Fatalf("expected %q for blank, got %q", Unknown, got)
	}
	if got := (Match{}).AwayTeamLabel(); got != Unknown {
		t.Fatalf("expected %q for unresolved away team, got %q", Unknown, got)
	}
}
