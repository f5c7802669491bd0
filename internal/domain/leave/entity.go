package leave

import (
	"time"

	"github.com/sitecrew/timesheet-backend/internal/pkg/workweek"
)

type RequestStatus string

const (
	RequestStatusPending           RequestStatus = "pending"
	RequestStatusApprovedByManager RequestStatus = "approved_manager"
	RequestStatusApprovedByHR      RequestStatus = "approved_hr"
	RequestStatusRejected          RequestStatus = "rejected"
	RequestStatusCancelled         RequestStatus = "cancelled"
)

// Request is a leave request as exposed by the approval workflow.
// Only requests approved by HR are injected into timesheets.
type Request struct {
	ID         string
	CompanyID  string
	WorkerID   string
	StartDate  time.Time
	EndDate    time.Time
	LeaveType  string
	Status     RequestStatus
	ApprovedAt *time.Time
	CreatedAt  time.Time
}

func (r Request) Eligible() bool {
	return r.Status == RequestStatusApprovedByHR
}

// Covers reports whether the civil date d lies inside the request. Bounds
// are compared as civil dates whatever location they arrive in.
func (r Request) Covers(d time.Time) bool {
	day := workweek.Day(d)
	return !day.Before(workweek.Day(r.StartDate)) && !day.After(workweek.Day(r.EndDate))
}
