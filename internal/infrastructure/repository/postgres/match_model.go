package postgres

import (
	"database/sql"
	"time"

	"github.com/riskibarqy/pronostic-tracker/internal/domain/match"
)

type matchTableModel struct {
	ID         int64          `db:"id"`
	EventID    int64          `db:"event_id"`
	Discipline string         `db:"discipline"`
	HomeTeam   string         `db:"home_team"`
	AwayTeam   string         `db:"away_team"`
	KickoffAt  time.Time      `db:"kickoff_at"`
	League     sql.NullString `db:"league"`
	Venue      sql.NullString `db:"venue"`
	HomeScore  sql.NullInt64  `db:"home_score"`
	AwayScore  sql.NullInt64  `db:"away_score"`
	Status     string         `db:"status"`
	CreatedAt  time.Time      `db:"created_at"`
	UpdatedAt  time.Time      `db:"updated_at"`
}

type matchUpsertModel struct {
	EventID    int64          `db:"event_id"`
	Discipline string         `db:"discipline"`
	HomeTeam   string         `db:"home_team"`
	AwayTeam   string         `db:"away_team"`
	KickoffAt  time.Time      `db:"kickoff_at"`
	League     sql.NullString `db:"league"`
	Venue      sql.NullString `db:"venue"`
	HomeScore  sql.NullInt64  `db:"home_score"`
	AwayScore  sql.NullInt64  `db:"away_score"`
	Status     string         `db:"status"`
}

type upsertedMatchRow struct {
	matchTableModel
	Created bool `db:"created"`
}

func (row matchTableModel) toDomain() match.Match {
	return match.Match{
		ID:         row.ID,
		EventID:    row.EventID,
		Discipline: row.Discipline,
		HomeTeam:   row.HomeTeam,
		AwayTeam:   row.AwayTeam,
		KickoffAt:  row.KickoffAt,
		League:     nullStringPtr(row.League),
		Venue:      nullStringPtr(row.Venue),
		HomeScore:  nullInt64ToIntPtr(row.HomeScore),
		AwayScore:  nullInt64ToIntPtr(row.AwayScore),
		Status:     row.Status,
		CreatedAt:  row.CreatedAt,
		UpdatedAt:  row.UpdatedAt,
	}
}

func newMatchUpsertModel(item match.Match) matchUpsertModel {
	item = item.WithScores(item.HomeScore, item.AwayScore)
	return matchUpsertModel{
		EventID:    item.EventID,
		Discipline: item.Discipline,
		HomeTeam:   item.HomeTeam,
		AwayTeam:   item.AwayTeam,
		KickoffAt:  item.KickoffAt.UTC(),
		League:     nullableString(item.League),
		Venue:      nullableString(item.Venue),
		HomeScore:  nullableInt(item.HomeScore),
		AwayScore:  nullableInt(item.AwayScore),
		Status:     item.Status,
	}
}
