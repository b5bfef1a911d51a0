package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/riskibarqy/pronostic-tracker/external/sportmonks"
	"github.com/riskibarqy/pronostic-tracker/internal/domain/match"
	"github.com/riskibarqy/pronostic-tracker/internal/platform/logging"
	"github.com/riskibarqy/pronostic-tracker/internal/platform/metrics"
	"github.com/sourcegraph/conc/panics"
)

const (
	fixtureOutcomeAdded   = "added"
	fixtureOutcomeUpdated = "updated"
	fixtureOutcomeSkipped = "skipped"
	fixtureOutcomeErrored = "errored"
)

type IngestionResult struct {
	From    time.Time `json:"from"`
	To      time.Time `json:"to"`
	Pages   int       `json:"pages"`
	Added   int       `json:"added"`
	Updated int       `json:"updated"`
	Skipped int       `json:"skipped"`
	Errored int       `json:"errored"`
}

type MatchIngestionService struct {
	provider   SportDataProvider
	normalizer *FixtureNormalizer
	matchRepo  match.Repository
	metrics    *metrics.Recorder
	logger     *logging.Logger
	location   *time.Location
	now        func() time.Time
}

func NewMatchIngestionService(
	provider SportDataProvider,
	normalizer *FixtureNormalizer,
	matchRepo match.Repository,
	recorder *metrics.Recorder,
	location *time.Location,
	logger *logging.Logger,
) *MatchIngestionService {
	if location == nil {
		location = time.UTC
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &MatchIngestionService{
		provider:   provider,
		normalizer: normalizer,
		matchRepo:  matchRepo,
		metrics:    recorder,
		logger:     logger.Named("ingestion"),
		location:   location,
		now:        time.Now,
	}
}

// IngestUpcoming upserts every fixture kicking off in [today, today+daysAhead].
// Per-fixture failures are counted, never returned; the error is reserved for
// a missing token and for a cancelled context.
func (s *MatchIngestionService) IngestUpcoming(ctx context.Context, daysAhead int) (IngestionResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchIngestionService.IngestUpcoming")
	defer span.End()

	if daysAhead < 0 {
		return IngestionResult{}, fmt.Errorf("%w: days ahead must not be negative", ErrInvalidInput)
	}

	now := s.now().In(s.location)
	from := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.location)
	result := IngestionResult{From: from, To: from.AddDate(0, 0, daysAhead)}
	s.logger.InfoContext(ctx, "ingest upcoming fixtures", "from", result.From.Format(time.DateOnly), "to", result.To.Format(time.DateOnly))

	for page := 1; ; page++ {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		listed, err := s.provider.FetchFixturesBetween(ctx, result.From, result.To, page)
		if err != nil {
			if errors.Is(err, ErrCredentialMissing) || ctx.Err() != nil {
				return result, err
			}
			s.logger.WarnContext(ctx, "fixture listing failed, stopping pagination", "page", page, "error", err)
			break
		}
		result.Pages++

		if len(listed.Fixtures) == 0 {
			s.logger.InfoContext(ctx, "fixture listing page is empty", "page", page)
			break
		}

		for _, item := range listed.Fixtures {
			outcome, err := s.ingestListed(ctx, item)
			if errors.Is(err, ErrCredentialMissing) {
				return result, err
			}
			s.metrics.FixtureHandled(outcome)
			switch outcome {
			case fixtureOutcomeAdded:
				result.Added++
			case fixtureOutcomeUpdated:
				result.Updated++
			case fixtureOutcomeSkipped:
				result.Skipped++
			default:
				result.Errored++
			}
		}

		if !listed.HasNext() {
			break
		}
	}

	s.metrics.JobCompleted("ingest")
	s.logger.InfoContext(ctx, "ingestion finished",
		"pages", result.Pages,
		"added", result.Added,
		"updated", result.Updated,
		"skipped", result.Skipped,
		"errored", result.Errored,
	)
	return result, nil
}

// ingestListed recovers a panic from one fixture so the rest of the page
// still runs.
func (s *MatchIngestionService) ingestListed(ctx context.Context, item sportmonks.ListedFixture) (outcome string, err error) {
	var catcher panics.Catcher
	catcher.Try(func() {
		outcome, err = s.ingestOne(ctx, item)
	})
	if recovered := catcher.Recovered(); recovered != nil {
		s.logger.ErrorContext(ctx, "fixture ingestion panicked", "event_id", item.ID, "error", recovered.AsError())
		return fixtureOutcomeErrored, nil
	}
	return outcome, err
}

func (s *MatchIngestionService) ingestOne(ctx context.Context, item sportmonks.ListedFixture) (string, error) {
	if item.ID <= 0 {
		s.logger.WarnContext(ctx, "listed fixture has no id, skipping", "name", item.Name)
		return fixtureOutcomeSkipped, nil
	}

	detail, err := s.provider.FetchFixture(ctx, item.ID)
	if err != nil {
		if errors.Is(err, ErrCredentialMissing) {
			return fixtureOutcomeErrored, err
		}
		s.logger.WarnContext(ctx, "fixture detail unavailable, skipping", "event_id", item.ID, "error", err)
		return fixtureOutcomeSkipped, nil
	}
	if detail == nil {
		s.logger.WarnContext(ctx, "fixture detail is empty, skipping", "event_id", item.ID)
		return fixtureOutcomeSkipped, nil
	}

	stored, created, err := storeFixture(ctx, s.normalizer, s.matchRepo, *detail)
	if err != nil {
		s.logger.ErrorContext(ctx, "fixture ingestion failed", "event_id", item.ID, "error", err)
		return fixtureOutcomeErrored, nil
	}

	if created {
		s.logger.InfoContext(ctx, "match added", "event_id", stored.EventID, "home", stored.HomeTeam, "away", stored.AwayTeamLabel(), "league", stored.LeagueLabel())
		return fixtureOutcomeAdded, nil
	}
	s.logger.InfoContext(ctx, "match updated", "event_id", stored.EventID, "home", stored.HomeTeam, "away", stored.AwayTeamLabel(), "league", stored.LeagueLabel())
	return fixtureOutcomeUpdated, nil
}

// storeFixture normalizes a provider fixture and upserts it by event id.
// Every match fed by the provider is football.
func storeFixture(ctx context.Context, normalizer *FixtureNormalizer, repo match.Repository, fixture sportmonks.Fixture) (match.Match, bool, error) {
	item, err := normalizer.Normalize(ctx, fixture)
	if err != nil {
		return match.Match{}, false, err
	}
	item.Discipline = match.DisciplineFootball

	stored, created, err := repo.UpsertByEventID(ctx, item)
	if err != nil {
		return match.Match{}, false, fmt.Errorf("upsert match event_id=%d: %w", item.EventID, err)
	}
	return stored, created, nil
}
