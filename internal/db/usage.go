package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// WeeklyUsage returns the generation count for the given user and week.
// A missing row counts as zero.
func (db *DB) WeeklyUsage(ctx context.Context, userID uuid.UUID, weekStart time.Time) (int, error) {
	var count int
	err := db.pool.QueryRow(ctx,
		`SELECT count FROM generation_usage WHERE user_id = $1 AND week_start = $2`,
		userID, weekStart,
	).Scan(&count)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to read weekly usage: %w", err)
	}
	return count, nil
}

// IncrementUsage bumps the generation count for the given week, creating
// the row on first use. Returns the new count.
func (db *DB) IncrementUsage(ctx context.Context, userID uuid.UUID, weekStart time.Time) (int, error) {
	return incrementUsage(ctx, db.pool, userID, weekStart)
}

// querier covers both pool and transaction execution.
type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func incrementUsage(ctx context.Context, q querier, userID uuid.UUID, weekStart time.Time) (int, error) {
	var count int
	err := q.QueryRow(ctx,
		`INSERT INTO generation_usage (user_id, week_start, count)
		 VALUES ($1, $2, 1)
		 ON CONFLICT (user_id, week_start) DO UPDATE SET count = generation_usage.count + 1
		 RETURNING count`,
		userID, weekStart,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to increment usage: %w", err)
	}
	return count, nil
}
