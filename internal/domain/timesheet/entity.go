package timesheet

import (
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusDraft         Status = "draft"
	StatusSentToHR      Status = "sent_to_hr"
	StatusAutoValidated Status = "auto_validated"
	StatusClosed        Status = "closed"
)

// IsTransmitted reports statuses HR consolidates by default.
func (s Status) IsTransmitted() bool {
	return s == StatusSentToHR || s == StatusAutoValidated
}

// Timesheet is one worker's reported time for one week, optionally bound
// to one site. Site-less timesheets belong to finishing-trade workers whose
// days are dispatched through daily affectations.
type Timesheet struct {
	ID         string
	CompanyID  string
	WorkerID   string
	WeekStart  time.Time
	SiteID     *string
	ReportedBy string
	Status     Status
	SentAt     *time.Time
	ClosedAt   *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time

	Entries []DailyEntry
}

func (t Timesheet) HasSite() bool {
	return t.SiteID != nil && *t.SiteID != ""
}

// DailyEntry holds one calendar day's figures inside a timesheet.
type DailyEntry struct {
	ID            string
	TimesheetID   string
	Date          time.Time
	WorkedHours   decimal.Decimal
	DowntimeHours decimal.Decimal
	Absent        bool
	AbsenceType   *AbsenceType
	Meal          MealKind
	TravelCode    *TravelCode
	SiteCode      *string
	SiteCity      *string
	Note          *string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// IsPresent reports a day with worked or downtime hours.
func (e DailyEntry) IsPresent() bool {
	return e.WorkedHours.IsPositive() || e.DowntimeHours.IsPositive()
}

// Normalize derives the absent flag from the hours and drops an absence
// type on a day that was actually worked.
func (e *DailyEntry) Normalize() {
	e.Absent = !e.IsPresent()
	if !e.Absent {
		e.AbsenceType = nil
	}
	if e.Meal == "" {
		e.Meal = MealNone
	}
}
