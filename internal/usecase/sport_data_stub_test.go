package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/riskibarqy/pronostic-tracker/external/sportmonks"
)

type stubSportData struct {
	mu sync.Mutex

	fixtures   map[int64]*sportmonks.Fixture
	fixtureErr map[int64]error
	panicOn    int64
	leagues    map[int64]string
	venues     map[int64]string
	leagueErr  error
	pages      []sportmonks.FixturePage
	listErr    map[int]error

	listCalls    []int
	fixtureCalls int
	leagueCalls  int
	venueCalls   int
}

func newStubSportData() *stubSportData {
	return &stubSportData{
		fixtures:   make(map[int64]*sportmonks.Fixture),
		fixtureErr: make(map[int64]error),
		leagues:    make(map[int64]string),
		venues:     make(map[int64]string),
		listErr:    make(map[int]error),
	}
}

func (s *stubSportData) FetchFixture(_ context.Context, eventID int64) (*sportmonks.Fixture, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.fixtureCalls++
	if s.panicOn != 0 && eventID == s.panicOn {
		panic(fmt.Sprintf("boom on fixture %d", eventID))
	}
	if err := s.fixtureErr[eventID]; err != nil {
		return nil, err
	}
	fixture, ok := s.fixtures[eventID]
	if !ok {
		return nil, nil
	}
	copied := *fixture
	return &copied, nil
}

func (s *stubSportData) FetchLeagueName(_ context.Context, leagueID int64) (*string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.leagueCalls++
	if s.leagueErr != nil {
		return nil, s.leagueErr
	}
	name, ok := s.leagues[leagueID]
	if !ok {
		return nil, nil
	}
	return &name, nil
}

func (s *stubSportData) FetchVenueName(_ context.Context, venueID int64) (*string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.venueCalls++
	name, ok := s.venues[venueID]
	if !ok {
		return nil, nil
	}
	return &name, nil
}

func (s *stubSportData) FetchFixturesBetween(_ context.Context, _, _ time.Time, page int) (sportmonks.FixturePage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.listCalls = append(s.listCalls, page)
	if err := s.listErr[page]; err != nil {
		return sportmonks.FixturePage{}, err
	}
	if page < 1 || page > len(s.pages) {
		return sportmonks.FixturePage{}, nil
	}
	return s.pages[page-1], nil
}

func finishedFixture(eventID int64, name string, home, away int) *sportmonks.Fixture {
	finished := true
	return &sportmonks.Fixture{
		ID:         eventID,
		Name:       name,
		StartingAt: "2026-10-18 19:45:00",
		LeagueID:   301,
		VenueID:    1703,
		StateID:    5,
		Finished:   &finished,
		Scores:     sportmonks.Scores{Home: &home, Away: &away},
	}
}

func scheduledFixture(eventID int64, name string) *sportmonks.Fixture {
	finished := false
	return &sportmonks.Fixture{
		ID:         eventID,
		Name:       name,
		StartingAt: "2026-10-20 21:00:00",
		LeagueID:   301,
		VenueID:    1703,
		StateID:    1,
		Finished:   &finished,
	}
}

func intPtr(v int) *int { return &v }

func int64Ptr(v int64) *int64 { return &v }

func float64Ptr(v float64) *float64 { return &v }
