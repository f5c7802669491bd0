package leave

import (
	"context"

	"github.com/sitecrew/timesheet-backend/internal/domain/timesheet"
)

// Injector writes approved leave into a timesheet's daily entries without
// touching days already worked. Running it twice yields the same state.
type Injector interface {
	InjectWeek(ctx context.Context, companyID string, timesheetID string) (timesheet.InjectionResult, error)
}
