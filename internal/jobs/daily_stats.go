package jobs

import (
	"context"
	"log/slog"
	"time"

	"complaintdesk/internal/services"
)

// DailyStatsJob logs a system stats snapshot once a day for operational
// visibility. Read-only: it goes through the same safe projection layer the
// AI context uses.
type DailyStatsJob struct {
	safeData *services.SafeDataService
}

// NewDailyStatsJob creates a new daily stats job
func NewDailyStatsJob(safeData *services.SafeDataService) *DailyStatsJob {
	return &DailyStatsJob{safeData: safeData}
}

// Run computes and logs the snapshot.
func (j *DailyStatsJob) Run(ctx context.Context) error {
	stats, err := j.safeData.ComputeStats(ctx, time.Now())
	if err != nil {
		return err
	}

	slog.Info("daily complaint stats",
		"total", stats.Total,
		"resolved", stats.Resolved,
		"pending", stats.Pending,
		"new_today", stats.NewToday,
		"new_last_7_days", stats.NewLast7Days,
		"new_this_month", stats.NewThisMonth,
	)
	return nil
}

// GetNextRunTime returns the next 00:05 local time.
func (j *DailyStatsJob) GetNextRunTime() time.Time {
	now := time.Now()
	next := time.Date(now.Year(), now.Month(), now.Day(), 0, 5, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}
