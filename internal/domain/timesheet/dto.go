package timesheet

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/sitecrew/timesheet-backend/internal/pkg/validator"
	"github.com/sitecrew/timesheet-backend/internal/pkg/workweek"
)

type CreateTimesheetRequest struct {
	WorkerID   string  `json:"worker_id"`
	WeekStart  string  `json:"week_start"`
	SiteID     *string `json:"site_id,omitempty"`
	ReportedBy string  `json:"-"`
}

func (r *CreateTimesheetRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.WorkerID) {
		errs = append(errs, validator.ValidationError{
			Field:   "worker_id",
			Message: "worker_id is required",
		})
	}

	if weekStart, ok := validator.IsValidDate(r.WeekStart); !ok {
		errs = append(errs, validator.ValidationError{
			Field:   "week_start",
			Message: "week_start must be in YYYY-MM-DD format",
		})
	} else if !workweek.IsMonday(weekStart) {
		errs = append(errs, validator.ValidationError{
			Field:   "week_start",
			Message: "week_start must be a Monday",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type UpsertDailyEntryRequest struct {
	TimesheetID   string          `json:"-"`
	Date          string          `json:"date"`
	WorkedHours   decimal.Decimal `json:"worked_hours"`
	DowntimeHours decimal.Decimal `json:"downtime_hours"`
	AbsenceType   *string         `json:"absence_type,omitempty"`
	Meal          string          `json:"meal"`
	TravelCode    *string         `json:"travel_code,omitempty"`
	SiteCode      *string         `json:"site_code,omitempty"`
	SiteCity      *string         `json:"site_city,omitempty"`
	Note          *string         `json:"note,omitempty"`
}

func (r *UpsertDailyEntryRequest) Validate() error {
	var errs validator.ValidationErrors

	if _, ok := validator.IsValidDate(r.Date); !ok {
		errs = append(errs, validator.ValidationError{
			Field:   "date",
			Message: "date must be in YYYY-MM-DD format",
		})
	}

	if !validator.IsValidHours(r.WorkedHours) {
		errs = append(errs, validator.ValidationError{
			Field:   "worked_hours",
			Message: "worked_hours must be between 0 and 24",
		})
	}

	if !validator.IsValidHours(r.DowntimeHours) {
		errs = append(errs, validator.ValidationError{
			Field:   "downtime_hours",
			Message: "downtime_hours must be between 0 and 24",
		})
	}

	if r.WorkedHours.Add(r.DowntimeHours).GreaterThan(decimal.NewFromInt(24)) {
		errs = append(errs, validator.ValidationError{
			Field:   "downtime_hours",
			Message: "worked and downtime hours cannot exceed 24 for one day",
		})
	}

	if r.AbsenceType != nil && !AbsenceType(*r.AbsenceType).Valid() {
		errs = append(errs, validator.ValidationError{
			Field:   "absence_type",
			Message: ErrInvalidAbsenceType.Error(),
		})
	}

	if r.Meal != "" && !MealKind(r.Meal).Valid() {
		errs = append(errs, validator.ValidationError{
			Field:   "meal",
			Message: ErrInvalidMealKind.Error(),
		})
	}

	if r.TravelCode != nil && !TravelCode(*r.TravelCode).Valid() {
		errs = append(errs, validator.ValidationError{
			Field:   "travel_code",
			Message: ErrInvalidTravelCode.Error(),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ToEntry builds the normalized entry. Validate must have passed.
func (r *UpsertDailyEntryRequest) ToEntry() DailyEntry {
	date, _ := time.Parse(workweek.DateLayout, r.Date)
	entry := DailyEntry{
		TimesheetID:   r.TimesheetID,
		Date:          workweek.Day(date),
		WorkedHours:   r.WorkedHours,
		DowntimeHours: r.DowntimeHours,
		Meal:          MealKind(r.Meal),
		SiteCode:      r.SiteCode,
		SiteCity:      r.SiteCity,
		Note:          r.Note,
	}
	if r.AbsenceType != nil {
		a := AbsenceType(*r.AbsenceType)
		entry.AbsenceType = &a
	}
	if r.TravelCode != nil {
		t := TravelCode(*r.TravelCode)
		entry.TravelCode = &t
	}
	entry.Normalize()
	return entry
}

type DailyEntryResponse struct {
	ID            string          `json:"id"`
	Date          string          `json:"date"`
	WorkedHours   decimal.Decimal `json:"worked_hours"`
	DowntimeHours decimal.Decimal `json:"downtime_hours"`
	Absent        bool            `json:"absent"`
	AbsenceType   *string         `json:"absence_type,omitempty"`
	Meal          string          `json:"meal"`
	TravelCode    *string         `json:"travel_code,omitempty"`
	SiteCode      *string         `json:"site_code,omitempty"`
	SiteCity      *string         `json:"site_city,omitempty"`
	Note          *string         `json:"note,omitempty"`
}

type TimesheetResponse struct {
	ID         string               `json:"id"`
	WorkerID   string               `json:"worker_id"`
	WeekStart  string               `json:"week_start"`
	SiteID     *string              `json:"site_id,omitempty"`
	ReportedBy string               `json:"reported_by"`
	Status     string               `json:"status"`
	Entries    []DailyEntryResponse `json:"entries"`
}

func NewDailyEntryResponse(e DailyEntry) DailyEntryResponse {
	resp := DailyEntryResponse{
		ID:            e.ID,
		Date:          e.Date.Format(workweek.DateLayout),
		WorkedHours:   e.WorkedHours,
		DowntimeHours: e.DowntimeHours,
		Absent:        e.Absent,
		Meal:          string(e.Meal),
		SiteCode:      e.SiteCode,
		SiteCity:      e.SiteCity,
		Note:          e.Note,
	}
	if e.AbsenceType != nil {
		s := string(*e.AbsenceType)
		resp.AbsenceType = &s
	}
	if e.TravelCode != nil {
		s := string(*e.TravelCode)
		resp.TravelCode = &s
	}
	return resp
}

func NewTimesheetResponse(t Timesheet) TimesheetResponse {
	entries := make([]DailyEntryResponse, 0, len(t.Entries))
	for _, e := range t.Entries {
		entries = append(entries, NewDailyEntryResponse(e))
	}
	return TimesheetResponse{
		ID:         t.ID,
		WorkerID:   t.WorkerID,
		WeekStart:  t.WeekStart.Format(workweek.DateLayout),
		SiteID:     t.SiteID,
		ReportedBy: t.ReportedBy,
		Status:     string(t.Status),
		Entries:    entries,
	}
}

type InjectionResult struct {
	Created   int `json:"created"`
	Updated   int `json:"updated"`
	Unchanged int `json:"unchanged"`
}
