package consolidation

import (
	"context"
	"time"

	"github.com/sitecrew/timesheet-backend/internal/domain/consolidation"
	"github.com/sitecrew/timesheet-backend/internal/domain/ownership"
	"github.com/sitecrew/timesheet-backend/internal/domain/timesheet"
	"github.com/sitecrew/timesheet-backend/internal/domain/worker"
)

// ── Mock Transactor ──

type mockTransactor struct {
	txCalls       int
	snapshotCalls int
}

func (m *mockTransactor) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	m.txCalls++
	return fn(ctx)
}

func (m *mockTransactor) WithinSnapshot(ctx context.Context, fn func(ctx context.Context) error) error {
	m.snapshotCalls++
	return fn(ctx)
}

// ── Mock TimesheetRepository ──

type mockTimesheetRepo struct {
	sheets   map[string]timesheet.Timesheet
	locked   [][2]time.Time
	closedAt *time.Time
}

func newMockTimesheetRepo(sheets ...timesheet.Timesheet) *mockTimesheetRepo {
	m := &mockTimesheetRepo{sheets: make(map[string]timesheet.Timesheet)}
	for _, ts := range sheets {
		m.sheets[ts.ID] = ts
	}
	return m
}

func (m *mockTimesheetRepo) Create(_ context.Context, ts timesheet.Timesheet) (timesheet.Timesheet, error) {
	m.sheets[ts.ID] = ts
	return ts, nil
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

func (m *mockTimesheetRepo) UpdateStatus(_ context.Context, id string, _ string, status timesheet.Status, _ time.Time) error {
	ts, ok := m.sheets[id]
	if !ok {
		return timesheet.ErrTimesheetNotFound
	}
	ts.Status = status
	m.sheets[id] = ts
	return nil
}

func (m *mockTimesheetRepo) List(_ context.Context, _ string, filter timesheet.ListFilter) ([]timesheet.Timesheet, error) {
	var out []timesheet.Timesheet
	for _, ts := range m.sheets {
		if ts.WeekStart.Before(filter.WeekFrom) || ts.WeekStart.After(filter.WeekTo) {
			continue
		}
		if filter.WorkerID != nil && ts.WorkerID != *filter.WorkerID {
			continue
		}
		match := len(filter.Statuses) == 0
		for _, s := range filter.Statuses {
			match = match || s == ts.Status
		}
		if match {
			ts.Entries = nil
			out = append(out, ts)
		}
	}
	return out, nil
}

func (m *mockTimesheetRepo) ListStaleDrafts(_ context.Context, _ time.Time) ([]timesheet.Timesheet, error) {
	return nil, nil
}

func (m *mockTimesheetRepo) LockWeeks(_ context.Context, _ string, weekFrom, weekTo time.Time) error {
	m.locked = append(m.locked, [2]time.Time{weekFrom, weekTo})
	return nil
}

func (m *mockTimesheetRepo) CloseWeeks(_ context.Context, _ string, weekFrom, weekTo time.Time, at time.Time) (int64, error) {
	var n int64
	for id, ts := range m.sheets {
		if ts.WeekStart.Before(weekFrom) || ts.WeekStart.After(weekTo) || ts.Status == timesheet.StatusClosed {
			continue
		}
		ts.Status = timesheet.StatusClosed
		ts.ClosedAt = &at
		m.sheets[id] = ts
		n++
	}
	m.closedAt = &at
	return n, nil
}

// ── Mock Injector ──

type mockInjector struct {
	sheets   *mockTimesheetRepo
	injected []string
}

func (m *mockInjector) InjectWeek(_ context.Context, _ string, timesheetID string) (timesheet.InjectionResult, error) {
	ts, ok := m.sheets.sheets[timesheetID]
	if !ok {
		return timesheet.InjectionResult{}, timesheet.ErrTimesheetNotFound
	}
	if ts.Status == timesheet.StatusClosed {
		return timesheet.InjectionResult{}, timesheet.ErrPeriodClosed
	}
	m.injected = append(m.injected, timesheetID)
	return timesheet.InjectionResult{}, nil
}

// ── Mock DailyEntryRepository ──

type mockEntryRepo struct {
	sheets *mockTimesheetRepo
}

func (m *mockEntryRepo) ListByTimesheet(_ context.Context, timesheetID string) ([]timesheet.DailyEntry, error) {
	return m.sheets.sheets[timesheetID].Entries, nil
}

func (m *mockEntryRepo) ListByTimesheets(_ context.Context, timesheetIDs []string) ([]timesheet.DailyEntry, error) {
	var out []timesheet.DailyEntry
	for _, id := range timesheetIDs {
		out = append(out, m.sheets.sheets[id].Entries...)
	}
	return out, nil
}

func (m *mockEntryRepo) Upsert(_ context.Context, e timesheet.DailyEntry) (timesheet.DailyEntry, error) {
	return e, nil
}

// ── Mock directories ──

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

type mockCrewRepo struct{}

func (mockCrewRepo) LeadOfRecord(_ context.Context, _ string, _ string, _ time.Time) (*string, error) {
	return nil, nil
}

func (mockCrewRepo) LeadsOfRecord(_ context.Context, _ string, _ []string, _, _ time.Time) (map[string]map[string]string, error) {
	return map[string]map[string]string{}, nil
}

type mockAffectationRepo struct {
	affectations []worker.Affectation
}

func (m *mockAffectationRepo) ListBetween(_ context.Context, _ string, _, _ time.Time) ([]worker.Affectation, error) {
	return m.affectations, nil
}

type mockOwnershipRepo struct{}

func (mockOwnershipRepo) GetActiveForUpdate(_ context.Context, _ string, _ string, _ time.Time) (*ownership.Record, error) {
	return nil, nil
}

func (mockOwnershipRepo) Create(_ context.Context, r ownership.Record) (ownership.Record, error) {
	return r, nil
}

func (mockOwnershipRepo) Withdraw(_ context.Context, _ string, _ string, _, _ time.Time, _ *string, _ time.Time) (int64, error) {
	return 0, nil
}

func (mockOwnershipRepo) ListActive(_ context.Context, _ string, _ []string, _, _ time.Time) ([]ownership.Record, error) {
	return nil, nil
}

// ── Mock ClosedPeriodRepository ──

type mockClosedPeriodRepo struct {
	periods map[[2]int]consolidation.ClosedPeriod
}

func newMockClosedPeriodRepo() *mockClosedPeriodRepo {
	return &mockClosedPeriodRepo{periods: make(map[[2]int]consolidation.ClosedPeriod)}
}

func (m *mockClosedPeriodRepo) Create(_ context.Context, p consolidation.ClosedPeriod) (consolidation.ClosedPeriod, error) {
	key := [2]int{p.Year, p.Month}
	if _, ok := m.periods[key]; ok {
		return consolidation.ClosedPeriod{}, consolidation.ErrPeriodAlreadyClosed
	}
	p.ID = "period-1"
	m.periods[key] = p
	return p, nil
}

func (m *mockClosedPeriodRepo) Get(_ context.Context, _ string, year, month int) (consolidation.ClosedPeriod, error) {
	if p, ok := m.periods[[2]int{year, month}]; ok {
		return p, nil
	}
	return consolidation.ClosedPeriod{}, consolidation.ErrClosedPeriodNotFound
}

func (m *mockClosedPeriodRepo) AnyClosedBetween(_ context.Context, _ string, _, _ time.Time) (bool, error) {
	return len(m.periods) > 0, nil
}
