package timesheet

import "errors"

var (
	ErrTimesheetNotFound   = errors.New("timesheet not found")
	ErrTimesheetExists     = errors.New("timesheet already exists for this worker, week and site")
	ErrWeekStartNotMonday  = errors.New("week start must be a Monday")
	ErrDateOutsideWeek     = errors.New("date is outside the timesheet week")
	ErrPeriodClosed        = errors.New("period is closed, daily entries can no longer be edited")
	ErrInvalidStatusChange = errors.New("timesheet status does not allow this transition")
	ErrNotDayOwner         = errors.New("lead is not authorized to report hours for this worker on this day")
	ErrInvalidAbsenceType  = errors.New("invalid absence type")
	ErrInvalidTravelCode   = errors.New("invalid travel code")
	ErrInvalidMealKind     = errors.New("invalid meal allowance")
)
