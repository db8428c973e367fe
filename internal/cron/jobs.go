package cron

import (
	"context"
	"log/slog"

	"github.com/flemzord/ghinline/internal/github"
)

// BudgetSource exposes the shared GitHub rate budget.
type BudgetSource interface {
	Snapshot() github.BudgetSnapshot
}

// GaugeSink receives the observed budget. *metrics.Metrics satisfies it.
type GaugeSink interface {
	SetRateBudget(remaining, limit int)
}

// RateBudgetJob logs a warning when the remaining GitHub budget drops below
// WarnBelow. It only observes: lookups are never blocked by it.
type RateBudgetJob struct {
	Budget       BudgetSource
	Gauges       GaugeSink // optional
	WarnBelow    int
	Logger       *slog.Logger
	ScheduleExpr string // empty = default "@every 60s"
}

// Compile-time interface check.
var _ Job = (*RateBudgetJob)(nil)

// Name implements Job.
func (j *RateBudgetJob) Name() string {
	return "github_rate_budget"
}

// Schedule implements Job.
func (j *RateBudgetJob) Schedule() string {
	if j.ScheduleExpr != "" {
		return j.ScheduleExpr
	}
	return "@every 60s"
}

// Run checks the budget once.
func (j *RateBudgetJob) Run(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	snap := j.Budget.Snapshot()
	if j.Gauges != nil {
		j.Gauges.SetRateBudget(snap.Remaining, snap.Limit)
	}
	if snap.Remaining < j.WarnBelow {
		j.Logger.Warn("cron: GitHub rate budget low",
			"remaining", snap.Remaining,
			"limit", snap.Limit,
			"reset_at", snap.ResetAt,
		)
	}
	return nil
}
