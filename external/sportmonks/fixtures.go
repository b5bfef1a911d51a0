package sportmonks

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
)

// Fixture is the detail record of one match. Only the fields the normalizer
// and the settlement engine read are decoded.
type Fixture struct {
	ID         int64           `json:"id"`
	Name       string          `json:"name"`
	StartingAt string          `json:"starting_at"`
	LeagueID   int64           `json:"league_id"`
	VenueID    int64           `json:"venue_id"`
	StateID    int64           `json:"state_id"`
	Finished   *bool           `json:"finished"`
	State      relation[State] `json:"state"`
	Scores     Scores          `json:"scores"`
}

type State struct {
	ID            int64  `json:"id"`
	State         string `json:"state"`
	Name          string `json:"name"`
	ShortName     string `json:"short_name"`
	DeveloperName string `json:"developer_name"`
}

// StatusLabel prefers the readable state name and falls back to the id.
func (f Fixture) StatusLabel() string {
	if f.State.Set {
		if name := strings.TrimSpace(f.State.Data.Name); name != "" {
			return name
		}
	}
	return strconv.FormatInt(f.StateID, 10)
}

// IsFinished uses the explicit flag when the provider sends it. v3 payloads
// drop the flag, so state 5 (full time) stands in for it there.
func (f Fixture) IsFinished() bool {
	if f.Finished != nil {
		return *f.Finished
	}
	return f.StateID == stateFullTime
}

const stateFullTime = 5

// Scores holds the full time result when the provider published both sides.
type Scores struct {
	Home *int
	Away *int
}

// UnmarshalJSON accepts the nested {"fulltime": {"home", "away"}} shape and
// the v3 list of score items keyed by description and participant side.
func (s *Scores) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*s = Scores{}
		return nil
	}

	if trimmed[0] == '[' {
		var items []scoreItem
		if err := sonic.Unmarshal(trimmed, &items); err != nil {
			return fmt.Errorf("decode score items: %w", err)
		}
		*s = scoresFromItems(items)
		return nil
	}

	var nested struct {
		Fulltime *struct {
			Home *int `json:"home"`
			Away *int `json:"away"`
		} `json:"fulltime"`
	}
	if err := sonic.Unmarshal(trimmed, &nested); err != nil {
		return fmt.Errorf("decode scores: %w", err)
	}
	*s = Scores{}
	if nested.Fulltime != nil && nested.Fulltime.Home != nil && nested.Fulltime.Away != nil {
		s.Home = nested.Fulltime.Home
		s.Away = nested.Fulltime.Away
	}
	return nil
}

type scoreItem struct {
	ParticipantID int64  `json:"participant_id"`
	Description   string `json:"description"`
	Score         struct {
		Goals       *int   `json:"goals"`
		Participant string `json:"participant"`
	} `json:"score"`
}

func scoresFromItems(items []scoreItem) Scores {
	var out Scores
	homeWeight, awayWeight := 0, 0
	for _, item := range items {
		if item.Score.Goals == nil {
			continue
		}
		weight := scoreDescriptionWeight(item.Description)
		goals := *item.Score.Goals
		switch strings.ToLower(strings.TrimSpace(item.Score.Participant)) {
		case "home":
			if weight > homeWeight {
				out.Home, homeWeight = &goals, weight
			}
		case "away":
			if weight > awayWeight {
				out.Away, awayWeight = &goals, weight
			}
		}
	}
	if out.Home == nil || out.Away == nil {
		return Scores{}
	}
	return out
}

func scoreDescriptionWeight(raw string) int {
	value := strings.ToLower(strings.TrimSpace(raw))
	switch {
	case value == "current":
		return 6
	case strings.Contains(value, "normal_time"), strings.Contains(value, "90"):
		return 5
	case strings.Contains(value, "extra_time"):
		return 4
	case strings.Contains(value, "penalt"):
		return 3
	case value == "1st_half", value == "2nd_half":
		return 2
	default:
		return 1
	}
}

// ListedFixture is one row of the date-ranged listing. The listing does not
// support includes, so callers fetch the detail record per id.
type ListedFixture struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type FixturePage struct {
	Fixtures   []ListedFixture
	Pagination *Pagination
}

// HasNext reports whether another page exists. Missing metadata ends the
// walk; last_page wins over has_more when both are present.
func (p FixturePage) HasNext() bool {
	if p.Pagination == nil || len(p.Fixtures) == 0 {
		return false
	}
	if p.Pagination.LastPage != nil {
		return p.Pagination.CurrentPage < *p.Pagination.LastPage
	}
	if p.Pagination.HasMore != nil {
		return *p.Pagination.HasMore
	}
	return false
}

// FetchFixture returns nil without error when the provider has no data for
// the id.
func (c *Client) FetchFixture(ctx context.Context, eventID int64) (*Fixture, error) {
	if eventID <= 0 {
		return nil, fmt.Errorf("event id must be greater than zero")
	}

	envelope, err := c.Request(ctx, fmt.Sprintf("fixtures/%d", eventID), map[string]string{"include": "state;scores"})
	if err != nil {
		return nil, fmt.Errorf("fetch fixture event_id=%d: %w", eventID, err)
	}
	if !envelope.HasData() {
		return nil, nil
	}

	var fixture Fixture
	if err := envelope.DecodeData(&fixture); err != nil {
		return nil, fmt.Errorf("fetch fixture event_id=%d: %w", eventID, err)
	}
	return &fixture, nil
}

func (c *Client) FetchLeagueName(ctx context.Context, leagueID int64) (*string, error) {
	return c.fetchName(ctx, "leagues", leagueID)
}

func (c *Client) FetchVenueName(ctx context.Context, venueID int64) (*string, error) {
	return c.fetchName(ctx, "venues", venueID)
}

// fetchName returns nil for unknown ids and blank names; both render as
// "N/A" further up.
func (c *Client) fetchName(ctx context.Context, resource string, id int64) (*string, error) {
	if id <= 0 {
		return nil, nil
	}

	envelope, err := c.Request(ctx, fmt.Sprintf("%s/%d", resource, id), nil)
	if err != nil {
		return nil, fmt.Errorf("fetch %s id=%d: %w", resource, id, err)
	}
	if !envelope.HasData() {
		return nil, nil
	}

	var named struct {
		Name string `json:"name"`
	}
	if err := envelope.DecodeData(&named); err != nil {
		return nil, fmt.Errorf("fetch %s id=%d: %w", resource, id, err)
	}
	name := strings.TrimSpace(named.Name)
	if name == "" {
		return nil, nil
	}
	return &name, nil
}

// FetchFixturesBetween lists one page of fixtures kicking off between two
// dates, both inclusive.
func (c *Client) FetchFixturesBetween(ctx context.Context, from, to time.Time, page int) (FixturePage, error) {
	if page < 1 {
		page = 1
	}
	if to.Before(from) {
		return FixturePage{}, fmt.Errorf("fixture window end %s is before start %s", to.Format(time.DateOnly), from.Format(time.DateOnly))
	}

	endpoint := fmt.Sprintf("fixtures/between/%s/%s", from.Format(time.DateOnly), to.Format(time.DateOnly))
	envelope, err := c.Request(ctx, endpoint, map[string]string{"page": strconv.Itoa(page)})
	if err != nil {
		return FixturePage{}, fmt.Errorf("list fixtures page=%d: %w", page, err)
	}

	out := FixturePage{Pagination: envelope.PageInfo()}
	if !envelope.HasData() {
		return out, nil
	}
	if err := envelope.DecodeData(&out.Fixtures); err != nil {
		return FixturePage{}, fmt.Errorf("list fixtures page=%d: %w", page, err)
	}
	return out, nil
}
