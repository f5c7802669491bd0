package timesheet

import (
	"context"
	"time"

	"github.com/sitecrew/timesheet-backend/internal/domain/worker"
)

// Actor is the authenticated worker performing an edit.
type Actor struct {
	WorkerID string
	Role     worker.SystemRole
}

// CanOverrideOwnership reports roles that edit any worker-day regardless
// of day ownership.
func (a Actor) CanOverrideOwnership() bool {
	return a.Role == worker.SystemRoleHR || a.Role == worker.SystemRoleAdmin || a.Role == worker.SystemRoleSupervisor
}

// TimesheetService defines the timesheet lifecycle.
type TimesheetService interface {
	CreateTimesheet(ctx context.Context, companyID string, req CreateTimesheetRequest) (TimesheetResponse, error)
	GetTimesheet(ctx context.Context, companyID string, id string) (TimesheetResponse, error)

	// UpsertDailyEntry writes one day. Fails with ErrPeriodClosed on a closed
	// timesheet and ErrNotDayOwner when the actor does not own the day.
	UpsertDailyEntry(ctx context.Context, companyID string, actor Actor, req UpsertDailyEntryRequest) (DailyEntryResponse, error)

	// SendToHR transmits a draft and injects approved leave into it.
	SendToHR(ctx context.Context, companyID string, id string) (TimesheetResponse, error)

	// InjectLeave re-runs leave injection; safe to call repeatedly.
	InjectLeave(ctx context.Context, companyID string, id string) (InjectionResult, error)

	// AutoValidateStale validates drafts whose week ended more than
	// the configured grace period before now.
	AutoValidateStale(ctx context.Context, now time.Time) (int, error)
}
