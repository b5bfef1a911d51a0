package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"
)

func isNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

// Transaction-mode poolers can hand the unnamed statement of one session to
// another, which surfaces as one of the two errors below.
func isBindParameterMismatch(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "bind message supplies") && strings.Contains(msg, "prepared statement")
}

func isUnnamedPreparedStatementMissing(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "unnamed prepared statement does not exist") {
		return true
	}
	return strings.Contains(msg, "prepared statement") && strings.Contains(msg, "26000")
}

// withStatementRetry runs fn a second time when the first attempt hit a
// pooler statement mix-up. Any other error is returned as is.
func withStatementRetry(ctx context.Context, fn func(context.Context) error) error {
	err := fn(ctx)
	if err == nil || ctx.Err() != nil {
		return err
	}
	if isBindParameterMismatch(err) || isUnnamedPreparedStatementMissing(err) {
		return fn(ctx)
	}
	return err
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// execOne runs a single-row write and reports whether any row matched.
func execOne(ctx context.Context, db execer, query string, args []any) (bool, error) {
	var affected int64
	err := withStatementRetry(ctx, func(ctx context.Context) error {
		res, err := db.ExecContext(ctx, query, args...)
		if err != nil {
			return err
		}
		affected, err = res.RowsAffected()
		return err
	})
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func nullStringPtr(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	out := v.String
	return &out
}

func nullInt64ToIntPtr(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	out := int(v.Int64)
	return &out
}

func nullInt64Ptr(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	out := v.Int64
	return &out
}

func nullFloat64Ptr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	out := v.Float64
	return &out
}

func nullableString(v *string) sql.NullString {
	if v == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *v, Valid: true}
}

func nullableInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func nullableInt64(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}

func nullableFloat64(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}
