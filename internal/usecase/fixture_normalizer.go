package usecase

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/riskibarqy/pronostic-tracker/external/sportmonks"
	"github.com/riskibarqy/pronostic-tracker/internal/domain/match"
	"github.com/riskibarqy/pronostic-tracker/internal/platform/cache"
	"github.com/riskibarqy/pronostic-tracker/internal/platform/logging"
)

const (
	fixtureNameSeparator = " vs "
	providerDateTime     = "2006-01-02 15:04:05"
	naiveISODateTime     = "2006-01-02T15:04:05"
)

// FixtureNormalizer turns a provider fixture into match fields. It never
// writes to storage.
type FixtureNormalizer struct {
	provider SportDataProvider
	location *time.Location
	names    *cache.Store[*string]
	logger   *logging.Logger
}

// NewFixtureNormalizer caches league and venue names for nameTTL; a zero ttl
// keeps them for the life of the process.
func NewFixtureNormalizer(provider SportDataProvider, location *time.Location, nameTTL time.Duration, logger *logging.Logger) *FixtureNormalizer {
	if location == nil {
		location = time.UTC
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &FixtureNormalizer{
		provider: provider,
		location: location,
		names:    cache.NewStore[*string](nameTTL),
		logger:   logger,
	}
}

func (n *FixtureNormalizer) Normalize(ctx context.Context, fixture sportmonks.Fixture) (match.Match, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.FixtureNormalizer.Normalize")
	defer span.End()

	if fixture.ID <= 0 {
		return match.Match{}, fmt.Errorf("%w: fixture id is required", ErrMalformedPayload)
	}

	kickoffAt, err := ParseKickoff(fixture.StartingAt, n.location)
	if err != nil {
		return match.Match{}, fmt.Errorf("fixture event_id=%d: %w", fixture.ID, err)
	}

	home, away, ok := SplitFixtureName(fixture.Name)
	if !ok {
		n.logger.WarnContext(ctx, "unexpected fixture name format", "event_id", fixture.ID, "name", fixture.Name)
	}

	item := match.Match{
		EventID:   fixture.ID,
		HomeTeam:  home,
		AwayTeam:  away,
		KickoffAt: kickoffAt,
		League:    n.lookupName(ctx, "league", fixture.LeagueID, n.provider.FetchLeagueName),
		Venue:     n.lookupName(ctx, "venue", fixture.VenueID, n.provider.FetchVenueName),
		Status:    fixture.StatusLabel(),
	}
	// Live scores are not final; only a finished fixture carries a result.
	if !fixture.IsFinished() {
		return item, nil
	}
	return item.WithScores(fixture.Scores.Home, fixture.Scores.Away), nil
}

// lookupName is best effort: a failed lookup yields nil and is not cached,
// so the next fixture referencing the same id tries again.
func (n *FixtureNormalizer) lookupName(
	ctx context.Context,
	kind string,
	id int64,
	fetch func(context.Context, int64) (*string, error),
) *string {
	if id <= 0 {
		return nil
	}

	name, err := n.names.GetOrLoad(ctx, kind+":"+strconv.FormatInt(id, 10), func(ctx context.Context) (*string, error) {
		return fetch(ctx, id)
	})
	if err != nil {
		n.logger.WarnContext(ctx, "provider name lookup failed", "kind", kind, "id", id, "error", err)
		return nil
	}
	return name
}

// SplitFixtureName splits "Home vs Away". Any other shape keeps the whole
// name as the home team, leaves away empty and reports false.
func SplitFixtureName(name string) (home, away string, ok bool) {
	parts := strings.Split(name, fixtureNameSeparator)
	if len(parts) == 2 {
		return strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1]), true
	}
	return strings.TrimSpace(name), "", false
}

// ParseKickoff reads the provider's naive "YYYY-MM-DD HH:MM:SS" in loc, then
// falls back to ISO 8601. An ISO value without offset is also read in loc.
func ParseKickoff(raw string, loc *time.Location) (time.Time, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return time.Time{}, fmt.Errorf("%w: empty starting_at", ErrUnparseableTimestamp)
	}
	if loc == nil {
		loc = time.UTC
	}

	if parsed, err := time.ParseInLocation(providerDateTime, value, loc); err == nil {
		return parsed, nil
	}
	if strings.HasSuffix(value, "Z") {
		value = strings.TrimSuffix(value, "Z") + "+00:00"
	}
	if parsed, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return parsed, nil
	}
	if parsed, err := time.ParseInLocation(naiveISODateTime, value, loc); err == nil {
		return parsed, nil
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrUnparseableTimestamp, raw)
}
