// Package quota enforces per-plan weekly generation limits.
package quota

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Weekly generation limits per plan.
var planLimits = map[string]int{
	"free": 5,
	"pro":  30,
}

// LimitFor returns the weekly limit for a plan. Unknown plans get the free
// limit.
func LimitFor(plan string) int {
	if limit, ok := planLimits[plan]; ok {
		return limit
	}
	return planLimits["free"]
}

// WeekStart returns the Monday of t's ISO week, truncated to midnight UTC.
// All usage counters are keyed on this date.
func WeekStart(t time.Time) time.Time {
	t = t.UTC()
	weekday := int(t.Weekday())
	if weekday == 0 { // Sunday
		weekday = 7
	}
	monday := t.AddDate(0, 0, -(weekday - 1))
	return time.Date(monday.Year(), monday.Month(), monday.Day(), 0, 0, 0, 0, time.UTC)
}

// ExceededError reports a quota rejection with the numbers behind it.
type ExceededError struct {
	Used  int
	Limit int
	Hint  string
}

func (e *ExceededError) Error() string {
	return fmt.Sprintf("weekly limit reached: %d/%d generations used. %s", e.Used, e.Limit, e.Hint)
}

// UsageReader reads the current week's counter.
type UsageReader interface {
	WeeklyUsage(ctx context.Context, userID uuid.UUID, weekStart time.Time) (int, error)
}

// Gate checks usage against plan limits.
type Gate struct {
	usage UsageReader
	now   func() time.Time
}

// NewGate creates a Gate reading counters from the given store.
func NewGate(usage UsageReader) *Gate {
	return &Gate{usage: usage, now: time.Now}
}

// Check returns the current usage and limit, or ExceededError when the user
// has no generations left this week.
func (g *Gate) Check(ctx context.Context, userID uuid.UUID, plan string) (used, limit int, err error) {
	limit = LimitFor(plan)
	used, err = g.usage.WeeklyUsage(ctx, userID, WeekStart(g.now()))
	if err != nil {
		return 0, limit, fmt.Errorf("failed to check quota: %w", err)
	}
	if used >= limit {
		return used, limit, &ExceededError{Used: used, Limit: limit, Hint: hintFor(plan)}
	}
	return used, limit, nil
}

func hintFor(plan string) string {
	if plan == "pro" {
		return "Limit resets every Monday."
	}
	return "Upgrade to Pro for 30 generations/week."
}
