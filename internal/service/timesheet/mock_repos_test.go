package timesheet

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/sitecrew/timesheet-backend/internal/domain/consolidation"
	"github.com/sitecrew/timesheet-backend/internal/domain/ownership"
	"github.com/sitecrew/timesheet-backend/internal/domain/timesheet"
	"github.com/sitecrew/timesheet-backend/internal/domain/worker"
)

type mockTransactor struct{}

func (mockTransactor) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (mockTransactor) WithinSnapshot(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// ── Mock TimesheetRepository ──

type mockTimesheetRepo struct {
	sheets map[string]timesheet.Timesheet
	nextID int
}

func newMockTimesheetRepo(sheets ...timesheet.Timesheet) *mockTimesheetRepo {
	m := &mockTimesheetRepo{sheets: make(map[string]timesheet.Timesheet)}
	for _, ts := range sheets {
		m.sheets[ts.ID] = ts
	}
	return m
}

func (m *mockTimesheetRepo) Create(_ context.Context, ts timesheet.Timesheet) (timesheet.Timesheet, error) {
	for _, existing := range m.sheets {
		if existing.WorkerID == ts.WorkerID && existing.WeekStart.Equal(ts.WeekStart) && sameSite(existing.SiteID, ts.SiteID) {
			return timesheet.Timesheet{}, timesheet.ErrTimesheetExists
		}
	}
	m.nextID++
	ts.ID = "ts-new-" + string(rune('0'+m.nextID))
	m.sheets[ts.ID] = ts
	return ts, nil
}

func sameSite(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func (m *mockTimesheetRepo) GetByID(_ context.Context, id string, _ string) (timesheet.Timesheet, error) {
	if ts, ok := m.sheets[id]; ok {
		return ts, nil
	}
	return timesheet.Timesheet{}, timesheet.ErrTimesheetNotFound
}

func (m *mockTimesheetRepo) GetByIDForUpdate(ctx context.Context, id string, companyID string) (timesheet.Timesheet, error) {
	return m.GetByID(ctx, id, companyID)
}

func (m *mockTimesheetRepo) UpdateStatus(_ context.Context, id string, _ string, status timesheet.Status, at time.Time) error {
	ts, ok := m.sheets[id]
	if !ok {
		return timesheet.ErrTimesheetNotFound
	}
	ts.Status = status
	ts.SentAt = &at
	m.sheets[id] = ts
	return nil
}

func (m *mockTimesheetRepo) List(_ context.Context, _ string, _ timesheet.ListFilter) ([]timesheet.Timesheet, error) {
	return nil, nil
}

func (m *mockTimesheetRepo) ListStaleDrafts(_ context.Context, weekStartBefore time.Time) ([]timesheet.Timesheet, error) {
	var out []timesheet.Timesheet
	for _, ts := range m.sheets {
		if ts.Status == timesheet.StatusDraft && !ts.WeekStart.After(weekStartBefore) {
			out = append(out, ts)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *mockTimesheetRepo) LockWeeks(_ context.Context, _ string, _, _ time.Time) error {
	return nil
}

func (m *mockTimesheetRepo) CloseWeeks(_ context.Context, _ string, _, _ time.Time, _ time.Time) (int64, error) {
	return 0, nil
}

// ── Mock DailyEntryRepository ──

type mockEntryRepo struct {
	entries []timesheet.DailyEntry
}

func (m *mockEntryRepo) ListByTimesheet(_ context.Context, timesheetID string) ([]timesheet.DailyEntry, error) {
	var out []timesheet.DailyEntry
	for _, e := range m.entries {
		if e.TimesheetID == timesheetID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *mockEntryRepo) ListByTimesheets(ctx context.Context, ids []string) ([]timesheet.DailyEntry, error) {
	var out []timesheet.DailyEntry
	for _, id := range ids {
		es, _ := m.ListByTimesheet(ctx, id)
		out = append(out, es...)
	}
	return out, nil
}

func (m *mockEntryRepo) Upsert(_ context.Context, e timesheet.DailyEntry) (timesheet.DailyEntry, error) {
	for i, existing := range m.entries {
		if existing.TimesheetID == e.TimesheetID && existing.Date.Equal(e.Date) {
			e.ID = existing.ID
			m.entries[i] = e
			return e, nil
		}
	}
	e.ID = "entry-" + e.Date.Format("0102")
	m.entries = append(m.entries, e)
	return e, nil
}

// ── Mock WorkerRepository / SiteRepository ──

type mockWorkerRepo struct {
	workers map[string]worker.Worker
}

func (m *mockWorkerRepo) GetByID(_ context.Context, id string, _ string) (worker.Worker, error) {
	if w, ok := m.workers[id]; ok {
		return w, nil
	}
	return worker.Worker{}, worker.ErrWorkerNotFound
}

func (m *mockWorkerRepo) ListByIDs(_ context.Context, ids []string, _ string) (map[string]worker.Worker, error) {
	out := make(map[string]worker.Worker)
	for _, id := range ids {
		if w, ok := m.workers[id]; ok {
			out[id] = w
		}
	}
	return out, nil
}

type mockSiteRepo struct {
	sites map[string]worker.Site
}

func (m *mockSiteRepo) GetByID(_ context.Context, id string, _ string) (worker.Site, error) {
	if s, ok := m.sites[id]; ok {
		return s, nil
	}
	return worker.Site{}, worker.ErrSiteNotFound
}

func (m *mockSiteRepo) ListByCompany(_ context.Context, _ string) (map[string]worker.Site, error) {
	return m.sites, nil
}

// ── Mock ClosedPeriodRepository ──

type mockClosedRepo struct {
	closed []consolidation.ClosedPeriod
}

func (m *mockClosedRepo) Create(_ context.Context, p consolidation.ClosedPeriod) (consolidation.ClosedPeriod, error) {
	m.closed = append(m.closed, p)
	return p, nil
}

func (m *mockClosedRepo) Get(_ context.Context, _ string, year, month int) (consolidation.ClosedPeriod, error) {
	for _, p := range m.closed {
		if p.Year == year && p.Month == month {
			return p, nil
		}
	}
	return consolidation.ClosedPeriod{}, consolidation.ErrClosedPeriodNotFound
}

func (m *mockClosedRepo) AnyClosedBetween(_ context.Context, _ string, from, to time.Time) (bool, error) {
	for _, p := range m.closed {
		first := time.Date(p.Year, time.Month(p.Month), 1, 0, 0, 0, 0, time.UTC)
		last := first.AddDate(0, 1, -1)
		if !to.Before(first) && !from.After(last) {
			return true, nil
		}
	}
	return false, nil
}

// ── Mock Registry ──

type mockRegistry struct {
	owners map[string]string // date → lead
	calls  int
}

func (m *mockRegistry) Authorize(_ context.Context, _ string, _ ownership.AuthorizeRequest) (ownership.RecordResponse, error) {
	return ownership.RecordResponse{}, errors.New("not implemented")
}

func (m *mockRegistry) AuthorizeDays(_ context.Context, _ string, _ ownership.AuthorizeDaysRequest) ([]ownership.RecordResponse, error) {
	return nil, errors.New("not implemented")
}

func (m *mockRegistry) Release(_ context.Context, _ string, _ ownership.ReleaseRequest) (ownership.ReleaseResponse, error) {
	return ownership.ReleaseResponse{}, errors.New("not implemented")
}

func (m *mockRegistry) IsAuthorized(_ context.Context, _ string, _ string, date time.Time, leadID string) (bool, error) {
	m.calls++
	return m.owners[date.Format("2006-01-02")] == leadID, nil
}

func (m *mockRegistry) Availability(_ context.Context, _ string, _ string, _ time.Time, _ string) (ownership.AvailabilityResponse, error) {
	return ownership.AvailabilityResponse{}, errors.New("not implemented")
}

func (m *mockRegistry) LegacyMode() bool { return false }

// ── Mock Injector ──

type mockInjector struct {
	injected []string
	failFor  map[string]error
}

func (m *mockInjector) InjectWeek(_ context.Context, _ string, timesheetID string) (timesheet.InjectionResult, error) {
	if err := m.failFor[timesheetID]; err != nil {
		return timesheet.InjectionResult{}, err
	}
	m.injected = append(m.injected, timesheetID)
	return timesheet.InjectionResult{Created: 1}, nil
}
