package leave

import (
	"context"
	"sort"
	"time"

	"github.com/sitecrew/timesheet-backend/internal/domain/leave"
	"github.com/sitecrew/timesheet-backend/internal/domain/timesheet"
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

func (m *mockTimesheetRepo) UpdateStatus(_ context.Context, _ string, _ string, _ timesheet.Status, _ time.Time) error {
	return nil
}

func (m *mockTimesheetRepo) List(_ context.Context, _ string, _ timesheet.ListFilter) ([]timesheet.Timesheet, error) {
	return nil, nil
}

func (m *mockTimesheetRepo) ListStaleDrafts(_ context.Context, _ time.Time) ([]timesheet.Timesheet, error) {
	return nil, nil
}

func (m *mockTimesheetRepo) LockWeeks(_ context.Context, _ string, _, _ time.Time) error {
	return nil
}

func (m *mockTimesheetRepo) CloseWeeks(_ context.Context, _ string, _, _ time.Time, _ time.Time) (int64, error) {
	return 0, nil
}

// ── Mock DailyEntryRepository ──

type entryKey struct {
	timesheetID string
	date        time.Time
}

type mockEntryRepo struct {
	entries map[entryKey]timesheet.DailyEntry
	writes  int
}

func newMockEntryRepo(entries ...timesheet.DailyEntry) *mockEntryRepo {
	m := &mockEntryRepo{entries: make(map[entryKey]timesheet.DailyEntry)}
	for _, e := range entries {
		m.entries[entryKey{e.TimesheetID, e.Date}] = e
	}
	return m
}

func (m *mockEntryRepo) ListByTimesheet(_ context.Context, timesheetID string) ([]timesheet.DailyEntry, error) {
	var out []timesheet.DailyEntry
	for k, e := range m.entries {
		if k.timesheetID == timesheetID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
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
	m.writes++
	m.entries[entryKey{e.TimesheetID, e.Date}] = e
	return e, nil
}

// ── Mock RequestRepository ──

type mockRequestRepo struct {
	requests []leave.Request
}

func (m *mockRequestRepo) ListApproved(_ context.Context, _ string, workerID string, from, to time.Time) ([]leave.Request, error) {
	var out []leave.Request
	for _, r := range m.requests {
		if r.WorkerID == workerID && r.Eligible() && !r.EndDate.Before(from) && !r.StartDate.After(to) {
			out = append(out, r)
		}
	}
	return out, nil
}
