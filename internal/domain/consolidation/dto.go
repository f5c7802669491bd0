package consolidation

import (
	"net/url"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sitecrew/timesheet-backend/internal/domain/timesheet"
	"github.com/sitecrew/timesheet-backend/internal/domain/worker"
	"github.com/sitecrew/timesheet-backend/internal/pkg/validator"
	"github.com/sitecrew/timesheet-backend/internal/pkg/workweek"
)

// Filter narrows a consolidation run. Year and Month are required.
type Filter struct {
	Year          int
	Month         int
	WeekStart     *time.Time
	SupervisorID  *string
	SiteID        *string
	LeadID        *string
	WorkerID      *string
	Category      *worker.Category
	IncludeClosed bool
}

func (f Filter) Period() (int, time.Month) {
	return f.Year, time.Month(f.Month)
}

func (f *Filter) Validate() error {
	var errs validator.ValidationErrors

	if f.Year < 2000 || f.Year > 2100 {
		errs = append(errs, validator.ValidationError{Field: "year", Message: "year is required"})
	}
	if !validator.IsValidMonth(f.Month) {
		errs = append(errs, validator.ValidationError{Field: "month", Message: "month must be between 1 and 12"})
	}
	if f.WeekStart != nil {
		if !workweek.IsMonday(*f.WeekStart) {
			errs = append(errs, validator.ValidationError{Field: "week_start", Message: "week_start must be a Monday"})
		} else if validator.IsValidMonth(f.Month) && !workweek.InMonth(*f.WeekStart, f.Year, time.Month(f.Month)) {
			errs = append(errs, validator.ValidationError{Field: "week_start", Message: "week_start must fall in the requested month"})
		}
	}
	if f.Category != nil && !f.Category.Valid() {
		errs = append(errs, validator.ValidationError{Field: "category", Message: "unknown worker category"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ParseFilter reads a filter from query parameters.
func ParseFilter(q url.Values) (Filter, error) {
	var errs validator.ValidationErrors
	var f Filter

	year, err := strconv.Atoi(q.Get("year"))
	if err != nil {
		errs = append(errs, validator.ValidationError{Field: "year", Message: "year must be a number"})
	}
	month, err := strconv.Atoi(q.Get("month"))
	if err != nil {
		errs = append(errs, validator.ValidationError{Field: "month", Message: "month must be a number"})
	}
	f.Year, f.Month = year, month

	if v := q.Get("week_start"); v != "" {
		d, ok := validator.IsValidDate(v)
		if !ok {
			errs = append(errs, validator.ValidationError{Field: "week_start", Message: "week_start must be in YYYY-MM-DD format"})
		} else {
			f.WeekStart = &d
		}
	}
	f.SupervisorID = optional(q, "supervisor_id")
	f.SiteID = optional(q, "site_id")
	f.LeadID = optional(q, "lead_id")
	f.WorkerID = optional(q, "worker_id")
	if v := q.Get("category"); v != "" {
		c := worker.Category(v)
		f.Category = &c
	}
	f.IncludeClosed = q.Get("include_closed") == "true"

	if len(errs) > 0 {
		return Filter{}, errs
	}
	return f, f.Validate()
}

func optional(q url.Values, key string) *string {
	v := q.Get(key)
	if v == "" {
		return nil
	}
	return &v
}

type DayDetailResponse struct {
	Date            string          `json:"date"`
	SiteCode        *string         `json:"site_code,omitempty"`
	SiteCity        *string         `json:"site_city,omitempty"`
	WorkedHours     decimal.Decimal `json:"worked_hours"`
	DowntimeHours   decimal.Decimal `json:"downtime_hours"`
	Absent          bool            `json:"absent"`
	AbsenceType     *string         `json:"absence_type,omitempty"`
	Meal            string          `json:"meal"`
	TravelCode      *string         `json:"travel_code,omitempty"`
	WorkedElsewhere bool            `json:"worked_elsewhere"`
	Note            *string         `json:"note,omitempty"`
}

type WeekTotalsResponse struct {
	WeekStart string          `json:"week_start"`
	Total     decimal.Decimal `json:"total_hours"`
	Regular   decimal.Decimal `json:"regular_hours"`
	Tier1     decimal.Decimal `json:"tier1_hours"`
	Tier2     decimal.Decimal `json:"tier2_hours"`
}

type EmployeeRowResponse struct {
	WorkerID      string               `json:"worker_id"`
	FullName      string               `json:"full_name"`
	Category      string               `json:"category"`
	TempAgency    *string              `json:"temp_agency,omitempty"`
	RegularHours  decimal.Decimal      `json:"regular_hours"`
	Tier1Hours    decimal.Decimal      `json:"tier1_hours"`
	Tier2Hours    decimal.Decimal      `json:"tier2_hours"`
	TotalHours    decimal.Decimal      `json:"total_hours"`
	DowntimeHours decimal.Decimal      `json:"downtime_hours"`
	Absences      int                  `json:"absences"`
	MealCount     int                  `json:"meal_count"`
	TravelCounts  map[string]int       `json:"travel_counts"`
	Status        string               `json:"status"`
	Weeks         []WeekTotalsResponse `json:"weeks"`
	Days          []DayDetailResponse  `json:"days"`
}

type AnomalyResponse struct {
	Kind        string  `json:"kind"`
	WorkerID    string  `json:"worker_id,omitempty"`
	TimesheetID string  `json:"timesheet_id,omitempty"`
	Date        *string `json:"date,omitempty"`
	Message     string  `json:"message"`
}

type ConsolidationResponse struct {
	Year      int                   `json:"year"`
	Month     int                   `json:"month"`
	Rows      []EmployeeRowResponse `json:"rows"`
	Anomalies []AnomalyResponse     `json:"anomalies"`
}

type ExportRowResponse struct {
	EmployeeRowResponse
	Grade        *string          `json:"grade,omitempty"`
	PayScale     *string          `json:"pay_scale,omitempty"`
	ContractType *string          `json:"contract_type,omitempty"`
	Schedule     *string          `json:"schedule,omitempty"`
	Salary       *decimal.Decimal `json:"salary,omitempty"`
}

func travelCountsMap(counts map[timesheet.TravelCode]int) map[string]int {
	out := make(map[string]int, len(counts))
	for code, n := range counts {
		out[string(code)] = n
	}
	return out
}

func NewEmployeeRowResponse(r EmployeeRow) EmployeeRowResponse {
	weeks := make([]WeekTotalsResponse, 0, len(r.Weeks))
	for _, w := range r.Weeks {
		weeks = append(weeks, WeekTotalsResponse{
			WeekStart: w.WeekStart.Format(workweek.DateLayout),
			Total:     w.Total,
			Regular:   w.Regular,
			Tier1:     w.Tier1,
			Tier2:     w.Tier2,
		})
	}
	days := make([]DayDetailResponse, 0, len(r.Days))
	for _, d := range r.Days {
		day := DayDetailResponse{
			Date:            d.Date.Format(workweek.DateLayout),
			SiteCode:        d.SiteCode,
			SiteCity:        d.SiteCity,
			WorkedHours:     d.WorkedHours,
			DowntimeHours:   d.DowntimeHours,
			Absent:          d.Absent,
			Meal:            string(d.Meal),
			WorkedElsewhere: d.WorkedElsewhere,
			Note:            d.Note,
		}
		if d.AbsenceType != nil {
			s := string(*d.AbsenceType)
			day.AbsenceType = &s
		}
		if d.TravelCode != nil {
			s := string(*d.TravelCode)
			day.TravelCode = &s
		}
		days = append(days, day)
	}
	return EmployeeRowResponse{
		WorkerID:      r.WorkerID,
		FullName:      r.FullName,
		Category:      string(r.Category),
		TempAgency:    r.TempAgency,
		RegularHours:  r.RegularHours,
		Tier1Hours:    r.Tier1Hours,
		Tier2Hours:    r.Tier2Hours,
		TotalHours:    r.TotalHours(),
		DowntimeHours: r.DowntimeHours,
		Absences:      r.Absences,
		MealCount:     r.MealCount,
		TravelCounts:  travelCountsMap(r.TravelCounts),
		Status:        string(r.Status),
		Weeks:         weeks,
		Days:          days,
	}
}

func NewAnomalyResponse(a Anomaly) AnomalyResponse {
	resp := AnomalyResponse{
		Kind:        string(a.Kind),
		WorkerID:    a.WorkerID,
		TimesheetID: a.TimesheetID,
		Message:     a.Message,
	}
	if a.Date != nil {
		s := a.Date.Format(workweek.DateLayout)
		resp.Date = &s
	}
	return resp
}

func NewConsolidationResponse(f Filter, res Result) ConsolidationResponse {
	rows := make([]EmployeeRowResponse, 0, len(res.Rows))
	for _, r := range res.Rows {
		rows = append(rows, NewEmployeeRowResponse(r))
	}
	anomalies := make([]AnomalyResponse, 0, len(res.Anomalies))
	for _, a := range res.Anomalies {
		anomalies = append(anomalies, NewAnomalyResponse(a))
	}
	return ConsolidationResponse{Year: f.Year, Month: f.Month, Rows: rows, Anomalies: anomalies}
}

func NewExportRowResponse(r ExportRow) ExportRowResponse {
	return ExportRowResponse{
		EmployeeRowResponse: NewEmployeeRowResponse(r.EmployeeRow),
		Grade:               r.Grade,
		PayScale:            r.PayScale,
		ContractType:        r.ContractType,
		Schedule:            r.Schedule,
		Salary:              r.Salary,
	}
}

type ClosePeriodRequest struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}

func (r *ClosePeriodRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.Year < 2000 || r.Year > 2100 {
		errs = append(errs, validator.ValidationError{Field: "year", Message: "year is required"})
	}
	if !validator.IsValidMonth(r.Month) {
		errs = append(errs, validator.ValidationError{Field: "month", Message: "month must be between 1 and 12"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type ClosedPeriodResponse struct {
	ID            string          `json:"id"`
	Year          int             `json:"year"`
	Month         int             `json:"month"`
	SalaryCount   int             `json:"salary_count"`
	RegularHours  decimal.Decimal `json:"regular_hours"`
	Tier1Hours    decimal.Decimal `json:"tier1_hours"`
	Tier2Hours    decimal.Decimal `json:"tier2_hours"`
	DowntimeHours decimal.Decimal `json:"downtime_hours"`
	Absences      int             `json:"absences"`
	MealCount     int             `json:"meal_count"`
	TravelCounts  map[string]int  `json:"travel_counts"`
	ClosedBy      string          `json:"closed_by"`
	ClosedAt      time.Time       `json:"closed_at"`
	ClosedSheets  int64           `json:"closed_timesheets,omitempty"`
	AutoValidated int             `json:"auto_validated_timesheets,omitempty"`
}

func NewClosedPeriodResponse(p ClosedPeriod) ClosedPeriodResponse {
	return ClosedPeriodResponse{
		ID:            p.ID,
		Year:          p.Year,
		Month:         p.Month,
		SalaryCount:   p.SalaryCount,
		RegularHours:  p.RegularHours,
		Tier1Hours:    p.Tier1Hours,
		Tier2Hours:    p.Tier2Hours,
		DowntimeHours: p.DowntimeHours,
		Absences:      p.Absences,
		MealCount:     p.MealCount,
		TravelCounts:  travelCountsMap(p.TravelCounts),
		ClosedBy:      p.ClosedBy,
		ClosedAt:      p.ClosedAt,
	}
}
