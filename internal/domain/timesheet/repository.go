package timesheet

import (
	"context"
	"time"
)

// ListFilter selects timesheets for consolidation. Weeks are matched on
// their Monday.
type ListFilter struct {
	WeekFrom time.Time
	WeekTo   time.Time
	Statuses []Status
	SiteID   *string
	WorkerID *string
}

// TimesheetRepository defines data access methods for timesheets.
// All methods include companyID parameter to prevent cross-company data access.
type TimesheetRepository interface {
	Create(ctx context.Context, ts Timesheet) (Timesheet, error)
	GetByID(ctx context.Context, id string, companyID string) (Timesheet, error)

	// GetByIDForUpdate locks the timesheet row for the rest of the
	// surrounding transaction. Closing a period locks the same rows, which
	// serializes edits against the status flip.
	GetByIDForUpdate(ctx context.Context, id string, companyID string) (Timesheet, error)

	UpdateStatus(ctx context.Context, id string, companyID string, status Status, at time.Time) error
	List(ctx context.Context, companyID string, filter ListFilter) ([]Timesheet, error)

	// ListStaleDrafts returns drafts of every company whose week started on
	// or before weekStartBefore.
	ListStaleDrafts(ctx context.Context, weekStartBefore time.Time) ([]Timesheet, error)

	// LockWeeks locks every timesheet whose Monday lies in [weekFrom, weekTo].
	LockWeeks(ctx context.Context, companyID string, weekFrom, weekTo time.Time) error

	// CloseWeeks flips every timesheet whose Monday lies in [weekFrom, weekTo]
	// to closed and returns how many rows changed.
	CloseWeeks(ctx context.Context, companyID string, weekFrom, weekTo time.Time, at time.Time) (int64, error)
}

// DailyEntryRepository defines data access methods for daily entries.
type DailyEntryRepository interface {
	ListByTimesheet(ctx context.Context, timesheetID string) ([]DailyEntry, error)
	ListByTimesheets(ctx context.Context, timesheetIDs []string) ([]DailyEntry, error)

	// Upsert inserts the entry or replaces the one with the same
	// (timesheet, date).
	Upsert(ctx context.Context, entry DailyEntry) (DailyEntry, error)
}
