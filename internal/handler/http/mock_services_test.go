package http

import (
	"context"
	"time"

	"github.com/sitecrew/timesheet-backend/internal/domain/consolidation"
	"github.com/sitecrew/timesheet-backend/internal/domain/ownership"
	"github.com/sitecrew/timesheet-backend/internal/domain/timesheet"
)

// ── Mock ownership.Registry ──

type mockRegistry struct {
	lastCompany   string
	lastAuthorize ownership.AuthorizeRequest
	lastRelease   ownership.ReleaseRequest
	authorizeErr  error
}

func (m *mockRegistry) Authorize(_ context.Context, companyID string, req ownership.AuthorizeRequest) (ownership.RecordResponse, error) {
	m.lastCompany = companyID
	m.lastAuthorize = req
	if m.authorizeErr != nil {
		return ownership.RecordResponse{}, m.authorizeErr
	}
	return ownership.RecordResponse{ID: "rec-1", WorkerID: req.WorkerID, Date: req.Date, LeadID: req.LeadID}, nil
}

func (m *mockRegistry) AuthorizeDays(_ context.Context, _ string, req ownership.AuthorizeDaysRequest) ([]ownership.RecordResponse, error) {
	return []ownership.RecordResponse{{ID: "rec-1", WorkerID: req.WorkerID, LeadID: req.LeadID}}, nil
}

func (m *mockRegistry) Release(_ context.Context, _ string, req ownership.ReleaseRequest) (ownership.ReleaseResponse, error) {
	m.lastRelease = req
	return ownership.ReleaseResponse{Released: 2}, nil
}

func (m *mockRegistry) IsAuthorized(_ context.Context, _ string, _ string, _ time.Time, _ string) (bool, error) {
	return true, nil
}

func (m *mockRegistry) Availability(_ context.Context, _ string, workerID string, weekStart time.Time, _ string) (ownership.AvailabilityResponse, error) {
	return ownership.AvailabilityResponse{WorkerID: workerID, WeekStart: weekStart.Format("2006-01-02"), AvailableDays: 5}, nil
}

func (m *mockRegistry) LegacyMode() bool { return true }

// ── Mock timesheet.TimesheetService ──

type mockTimesheetService struct {
	lastActor timesheet.Actor
	lastEntry timesheet.UpsertDailyEntryRequest
	upsertErr error
}

func (m *mockTimesheetService) CreateTimesheet(_ context.Context, _ string, req timesheet.CreateTimesheetRequest) (timesheet.TimesheetResponse, error) {
	return timesheet.TimesheetResponse{ID: "ts-1", WorkerID: req.WorkerID, WeekStart: req.WeekStart, ReportedBy: req.ReportedBy, Status: "draft"}, nil
}

func (m *mockTimesheetService) GetTimesheet(_ context.Context, _ string, id string) (timesheet.TimesheetResponse, error) {
	if id != "ts-1" {
		return timesheet.TimesheetResponse{}, timesheet.ErrTimesheetNotFound
	}
	return timesheet.TimesheetResponse{ID: id, Status: "draft"}, nil
}

func (m *mockTimesheetService) UpsertDailyEntry(_ context.Context, _ string, actor timesheet.Actor, req timesheet.UpsertDailyEntryRequest) (timesheet.DailyEntryResponse, error) {
	m.lastActor = actor
	m.lastEntry = req
	if m.upsertErr != nil {
		return timesheet.DailyEntryResponse{}, m.upsertErr
	}
	return timesheet.DailyEntryResponse{ID: "e-1", Date: req.Date, WorkedHours: req.WorkedHours}, nil
}

func (m *mockTimesheetService) SendToHR(_ context.Context, _ string, id string) (timesheet.TimesheetResponse, error) {
	return timesheet.TimesheetResponse{ID: id, Status: "sent_to_hr"}, nil
}

func (m *mockTimesheetService) InjectLeave(_ context.Context, _ string, _ string) (timesheet.InjectionResult, error) {
	return timesheet.InjectionResult{Created: 2}, nil
}

func (m *mockTimesheetService) AutoValidateStale(_ context.Context, _ time.Time) (int, error) {
	return 0, nil
}

// ── Mock consolidation services ──

type mockConsolidationService struct {
	result consolidation.Result
	rows   []consolidation.ExportRow
}

func (m *mockConsolidationService) Consolidate(_ context.Context, _ string, filter consolidation.Filter) (consolidation.Result, error) {
	if err := filter.Validate(); err != nil {
		return consolidation.Result{}, err
	}
	return m.result, nil
}

func (m *mockConsolidationService) Export(_ context.Context, _ string, _ consolidation.Filter) ([]consolidation.ExportRow, []consolidation.Anomaly, error) {
	return m.rows, m.result.Anomalies, nil
}

type mockPeriodService struct {
	closed   map[int]bool
	closedBy string
}

func (m *mockPeriodService) ClosePeriod(_ context.Context, _ string, closedBy string, req consolidation.ClosePeriodRequest) (consolidation.ClosedPeriodResponse, error) {
	if err := req.Validate(); err != nil {
		return consolidation.ClosedPeriodResponse{}, err
	}
	if m.closed[req.Month] {
		return consolidation.ClosedPeriodResponse{}, consolidation.ErrPeriodAlreadyClosed
	}
	m.closed[req.Month] = true
	m.closedBy = closedBy
	return consolidation.ClosedPeriodResponse{ID: "period-1", Year: req.Year, Month: req.Month, ClosedBy: closedBy}, nil
}

func (m *mockPeriodService) GetClosedPeriod(_ context.Context, _ string, year, month int) (consolidation.ClosedPeriodResponse, error) {
	if !m.closed[month] {
		return consolidation.ClosedPeriodResponse{}, consolidation.ErrClosedPeriodNotFound
	}
	return consolidation.ClosedPeriodResponse{ID: "period-1", Year: year, Month: month}, nil
}
