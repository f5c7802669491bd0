package consolidation

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/sitecrew/timesheet-backend/internal/domain/ownership"
	"github.com/sitecrew/timesheet-backend/internal/domain/timesheet"
	"github.com/sitecrew/timesheet-backend/internal/domain/worker"
)

// Snapshot is everything one consolidation run reads, captured at a single
// point in time.
type Snapshot struct {
	Timesheets   []timesheet.Timesheet // entries attached
	Workers      map[string]worker.Worker
	Sites        map[string]worker.Site
	Affectations []worker.Affectation
	Ownerships   []ownership.Record

	// LeadsOfRecord is keyed by worker id then week start (YYYY-MM-DD).
	LeadsOfRecord map[string]map[string]string
}

type RowStatus string

const (
	RowStatusValidated RowStatus = "validated"
	RowStatusPartial   RowStatus = "partial"
)

// DayDetail is one consolidated calendar day of a worker.
type DayDetail struct {
	Date            time.Time
	SiteID          *string
	SiteCode        *string
	SiteCity        *string
	WorkedHours     decimal.Decimal
	DowntimeHours   decimal.Decimal
	Absent          bool
	AbsenceType     *timesheet.AbsenceType
	Meal            timesheet.MealKind
	TravelCode      *timesheet.TravelCode
	WorkedElsewhere bool
	Note            *string
}

// WeekTotals is the overtime breakdown of one attributed week.
type WeekTotals struct {
	WeekStart time.Time
	Total     decimal.Decimal
	Regular   decimal.Decimal
	Tier1     decimal.Decimal
	Tier2     decimal.Decimal
}

// EmployeeRow is the consolidated figure of one worker for one month.
type EmployeeRow struct {
	WorkerID      string
	FullName      string
	Category      worker.Category
	TempAgency    *string
	RegularHours  decimal.Decimal
	Tier1Hours    decimal.Decimal
	Tier2Hours    decimal.Decimal
	DowntimeHours decimal.Decimal
	Absences      int
	MealCount     int
	TravelCounts  map[timesheet.TravelCode]int
	Status        RowStatus
	Weeks         []WeekTotals
	Days          []DayDetail
}

// TotalHours is regular plus both overtime tiers.
func (r EmployeeRow) TotalHours() decimal.Decimal {
	return r.RegularHours.Add(r.Tier1Hours).Add(r.Tier2Hours)
}

// IsEmpty reports a row with nothing to pay.
func (r EmployeeRow) IsEmpty() bool {
	if !r.TotalHours().IsZero() || !r.DowntimeHours.IsZero() || r.Absences > 0 || r.MealCount > 0 {
		return false
	}
	for _, n := range r.TravelCounts {
		if n > 0 {
			return false
		}
	}
	return true
}

type AnomalyKind string

const (
	AnomalyMissingWorker AnomalyKind = "missing_worker_reference"
	AnomalyMalformedRow  AnomalyKind = "malformed_row"
)

// Anomaly is a data-integrity problem skipped during consolidation.
type Anomaly struct {
	Kind        AnomalyKind
	WorkerID    string
	TimesheetID string
	Date        *time.Time
	Message     string
}

type Result struct {
	Rows      []EmployeeRow
	Anomalies []Anomaly
}

// ExportRow enriches a consolidated row with contractual fields.
type ExportRow struct {
	EmployeeRow
	Grade        *string
	PayScale     *string
	ContractType *string
	Schedule     *string
	Salary       *decimal.Decimal
}

// ClosedPeriod is the immutable snapshot persisted when a month is closed.
type ClosedPeriod struct {
	ID            string
	CompanyID     string
	Year          int
	Month         int
	SalaryCount   int
	RegularHours  decimal.Decimal
	Tier1Hours    decimal.Decimal
	Tier2Hours    decimal.Decimal
	DowntimeHours decimal.Decimal
	Absences      int
	MealCount     int
	TravelCounts  map[timesheet.TravelCode]int
	ClosedBy      string
	ClosedAt      time.Time
}
