package consolidation

import "errors"

var (
	ErrMissingWorkerReference = errors.New("timesheet references a worker missing from the directory")
	ErrPeriodAlreadyClosed    = errors.New("period is already closed")
	ErrClosedPeriodNotFound   = errors.New("closed period not found")
	ErrUnsupportedFormat      = errors.New("unsupported export format")
)
