package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/sitecrew/timesheet-backend/internal/domain/auth"
	"github.com/sitecrew/timesheet-backend/internal/domain/consolidation"
	"github.com/sitecrew/timesheet-backend/internal/domain/leave"
	"github.com/sitecrew/timesheet-backend/internal/domain/ownership"
	"github.com/sitecrew/timesheet-backend/internal/domain/timesheet"
	"github.com/sitecrew/timesheet-backend/internal/domain/worker"
	"github.com/sitecrew/timesheet-backend/internal/pkg/validator"
	"github.com/sitecrew/timesheet-backend/internal/pkg/workweek"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	// The typed ownership conflict names the lead holding the day
	var owned *ownership.DayAlreadyOwnedError
	if errors.As(err, &owned) {
		ConflictWithDetails(w, "Day already owned by another lead", map[string]string{
			"worker_id":     owned.WorkerID,
			"date":          owned.Date.Format(workweek.DateLayout),
			"owner_lead_id": owned.OwnerLeadID,
		})
		return
	}

	switch {
	// Auth errors
	case errors.Is(err, auth.ErrInvalidToken):
		Unauthorized(w, err.Error())
	case errors.Is(err, auth.ErrCompanyIDRequired), errors.Is(err, auth.ErrWorkerIDRequired):
		Forbidden(w, err.Error())
	case errors.Is(err, auth.ErrInsufficientRole):
		Forbidden(w, err.Error())

	// Directory errors
	case errors.Is(err, worker.ErrWorkerNotFound):
		NotFound(w, "Worker not found")
	case errors.Is(err, worker.ErrSiteNotFound):
		NotFound(w, "Site not found")

	// Ownership errors
	case errors.Is(err, ownership.ErrDayAlreadyOwned):
		Conflict(w, "Day already owned by another lead")
	case errors.Is(err, ownership.ErrInvalidDateRange), errors.Is(err, leave.ErrInvalidDateRange):
		ValidationError(w, map[string]string{"to": err.Error()})

	// Timesheet errors
	case errors.Is(err, timesheet.ErrTimesheetNotFound):
		NotFound(w, "Timesheet not found")
	case errors.Is(err, timesheet.ErrTimesheetExists):
		Conflict(w, "Timesheet already exists for this worker, week and site")
	case errors.Is(err, timesheet.ErrPeriodClosed):
		Conflict(w, "Period is closed")
	case errors.Is(err, timesheet.ErrInvalidStatusChange):
		Conflict(w, err.Error())
	case errors.Is(err, timesheet.ErrNotDayOwner):
		Forbidden(w, err.Error())
	case errors.Is(err, timesheet.ErrDateOutsideWeek), errors.Is(err, timesheet.ErrWeekStartNotMonday):
		ValidationError(w, map[string]string{"date": err.Error()})

	// Consolidation errors
	case errors.Is(err, consolidation.ErrPeriodAlreadyClosed):
		Conflict(w, "Period is already closed")
	case errors.Is(err, consolidation.ErrClosedPeriodNotFound):
		NotFound(w, "Closed period not found")
	case errors.Is(err, consolidation.ErrUnsupportedFormat):
		BadRequest(w, err.Error(), nil)

	// Default
	default:
		slog.Error("Unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}
