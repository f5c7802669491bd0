package ownership

import (
	"time"

	"github.com/sitecrew/timesheet-backend/internal/pkg/validator"
	"github.com/sitecrew/timesheet-backend/internal/pkg/workweek"
)

type AuthorizeRequest struct {
	WorkerID string  `json:"worker_id"`
	Date     string  `json:"date"`
	LeadID   string  `json:"lead_id"`
	SiteID   *string `json:"site_id,omitempty"`
}

func (r *AuthorizeRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.WorkerID) {
		errs = append(errs, validator.ValidationError{Field: "worker_id", Message: "worker_id is required"})
	}
	if validator.IsEmpty(r.LeadID) {
		errs = append(errs, validator.ValidationError{Field: "lead_id", Message: "lead_id is required"})
	}
	if _, ok := validator.IsValidDate(r.Date); !ok {
		errs = append(errs, validator.ValidationError{Field: "date", Message: "date must be in YYYY-MM-DD format"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type AuthorizeDaysRequest struct {
	WorkerID  string   `json:"worker_id"`
	WeekStart string   `json:"week_start"`
	Weekdays  []string `json:"weekdays"`
	LeadID    string   `json:"lead_id"`
	SiteID    *string  `json:"site_id,omitempty"`
}

var weekdayNames = map[string]time.Weekday{
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
}

func (r *AuthorizeDaysRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.WorkerID) {
		errs = append(errs, validator.ValidationError{Field: "worker_id", Message: "worker_id is required"})
	}
	if validator.IsEmpty(r.LeadID) {
		errs = append(errs, validator.ValidationError{Field: "lead_id", Message: "lead_id is required"})
	}
	if weekStart, ok := validator.IsValidDate(r.WeekStart); !ok {
		errs = append(errs, validator.ValidationError{Field: "week_start", Message: "week_start must be in YYYY-MM-DD format"})
	} else if !workweek.IsMonday(weekStart) {
		errs = append(errs, validator.ValidationError{Field: "week_start", Message: "week_start must be a Monday"})
	}
	if len(r.Weekdays) == 0 {
		errs = append(errs, validator.ValidationError{Field: "weekdays", Message: ErrNoWeekdays.Error()})
	}
	for _, d := range r.Weekdays {
		if _, ok := weekdayNames[d]; !ok {
			errs = append(errs, validator.ValidationError{Field: "weekdays", Message: "unknown weekday " + d})
			break
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Dates returns the requested dates, deduplicated, in week order.
func (r *AuthorizeDaysRequest) Dates() []time.Time {
	weekStart, _ := time.Parse(workweek.DateLayout, r.WeekStart)
	wanted := make(map[time.Weekday]bool, len(r.Weekdays))
	for _, d := range r.Weekdays {
		wanted[weekdayNames[d]] = true
	}
	var dates []time.Time
	for _, day := range workweek.Weekdays(weekStart) {
		if wanted[day.Weekday()] {
			dates = append(dates, day)
		}
	}
	return dates
}

type ReleaseRequest struct {
	WorkerID string  `json:"worker_id"`
	From     string  `json:"from"`
	To       string  `json:"to"`
	LeadID   *string `json:"lead_id,omitempty"`
}

func (r *ReleaseRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.WorkerID) {
		errs = append(errs, validator.ValidationError{Field: "worker_id", Message: "worker_id is required"})
	}
	_, fromOK := validator.IsValidDate(r.From)
	if !fromOK {
		errs = append(errs, validator.ValidationError{Field: "from", Message: "from must be in YYYY-MM-DD format"})
	}
	_, toOK := validator.IsValidDate(r.To)
	if !toOK {
		errs = append(errs, validator.ValidationError{Field: "to", Message: "to must be in YYYY-MM-DD format"})
	}

	if len(errs) > 0 {
		return errs
	}
	if !validator.IsValidDateRange(r.From, r.To) {
		return ErrInvalidDateRange
	}
	return nil
}

type RecordResponse struct {
	ID       string  `json:"id"`
	WorkerID string  `json:"worker_id"`
	Date     string  `json:"date"`
	LeadID   string  `json:"lead_id"`
	SiteID   *string `json:"site_id,omitempty"`
}

func NewRecordResponse(r Record) RecordResponse {
	return RecordResponse{
		ID:       r.ID,
		WorkerID: r.WorkerID,
		Date:     r.Date.Format(workweek.DateLayout),
		LeadID:   r.LeadID,
		SiteID:   r.SiteID,
	}
}

type DayAvailability struct {
	Date        string   `json:"date"`
	State       DayState `json:"state"`
	OwnerLeadID *string  `json:"owner_lead_id,omitempty"`
}

type AvailabilityResponse struct {
	WorkerID      string            `json:"worker_id"`
	WeekStart     string            `json:"week_start"`
	AvailableDays int               `json:"available_days"`
	Days          []DayAvailability `json:"days"`
}

type ReleaseResponse struct {
	Released int64 `json:"released"`
}
