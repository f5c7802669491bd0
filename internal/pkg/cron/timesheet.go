package cron

import (
	"context"
	"log/slog"
	"time"

	"github.com/sitecrew/timesheet-backend/internal/domain/timesheet"
)

// TimesheetJobs contains timesheet-related cron jobs
type TimesheetJobs struct {
	timesheetService timesheet.TimesheetService
	interval         time.Duration
	now              func() time.Time
}

// NewTimesheetJobs creates timesheet cron jobs
func NewTimesheetJobs(timesheetService timesheet.TimesheetService, interval time.Duration) *TimesheetJobs {
	return &TimesheetJobs{
		timesheetService: timesheetService,
		interval:         interval,
		now:              time.Now,
	}
}

// RegisterJobs registers all timesheet-related cron jobs
func (j *TimesheetJobs) RegisterJobs(scheduler *Scheduler) {
	scheduler.AddJob("auto_validate_stale_timesheets", j.interval, j.AutoValidateStale)
}

// AutoValidateStale transmits drafts nobody sent once their grace period
// has run out.
func (j *TimesheetJobs) AutoValidateStale(ctx context.Context) error {
	n, err := j.timesheetService.AutoValidateStale(ctx, j.now())
	if err != nil {
		return err
	}
	if n > 0 {
		slog.Info("Cron: stale timesheets auto-validated", "count", n)
	}
	return nil
}
