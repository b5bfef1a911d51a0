package usecase

import (
	"context"
	"time"

	"github.com/riskibarqy/pronostic-tracker/external/sportmonks"
)

// SportDataProvider is the remote fixture source. *sportmonks.Client
// satisfies it.
type SportDataProvider interface {
	FetchFixture(ctx context.Context, eventID int64) (*sportmonks.Fixture, error)
	FetchLeagueName(ctx context.Context, leagueID int64) (*string, error)
	FetchVenueName(ctx context.Context, venueID int64) (*string, error)
	FetchFixturesBetween(ctx context.Context, from, to time.Time, page int) (sportmonks.FixturePage, error)
}

var _ SportDataProvider = (*sportmonks.Client)(nil)
