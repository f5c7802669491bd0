package ownership

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sitecrew/timesheet-backend/internal/domain/ownership"
	"github.com/sitecrew/timesheet-backend/internal/domain/worker"
)

// ── Mock OwnershipRepository ──

// mockOwnershipRepo keeps records in memory and enforces the one-active-
// record-per-worker-day rule like the partial unique index does.
type mockOwnershipRepo struct {
	records []ownership.Record
	seq     int
	// uncommittedWinner hides active records from the locked read, as a
	// competing insert not yet committed would be.
	uncommittedWinner bool
}

func (m *mockOwnershipRepo) active(workerID string, date time.Time) *ownership.Record {
	for i := range m.records {
		r := &m.records[i]
		if r.WorkerID == workerID && r.Date.Equal(date) && r.Active() {
			return r
		}
	}
	return nil
}

func (m *mockOwnershipRepo) GetActiveForUpdate(_ context.Context, _ string, workerID string, date time.Time) (*ownership.Record, error) {
	if m.uncommittedWinner {
		return nil, nil
	}
	if r := m.active(workerID, date); r != nil {
		cp := *r
		return &cp, nil
	}
	return nil, nil
}

func (m *mockOwnershipRepo) Create(_ context.Context, r ownership.Record) (ownership.Record, error) {
	if m.active(r.WorkerID, r.Date) != nil {
		return ownership.Record{}, ownership.ErrDayAlreadyOwned
	}
	m.seq++
	r.ID = fmt.Sprintf("own-%d", m.seq)
	m.records = append(m.records, r)
	return r, nil
}

func (m *mockOwnershipRepo) Withdraw(_ context.Context, _ string, workerID string, from, to time.Time, leadID *string, at time.Time) (int64, error) {
	var n int64
	for i := range m.records {
		r := &m.records[i]
		if r.WorkerID != workerID || !r.Active() || r.Date.Before(from) || r.Date.After(to) {
			continue
		}
		if leadID != nil && r.LeadID != *leadID {
			continue
		}
		r.WithdrawnAt = &at
		n++
	}
	return n, nil
}

func (m *mockOwnershipRepo) ListActive(_ context.Context, _ string, workerIDs []string, from, to time.Time) ([]ownership.Record, error) {
	var out []ownership.Record
	for _, r := range m.records {
		if !r.Active() || r.Date.Before(from) || r.Date.After(to) {
			continue
		}
		for _, id := range workerIDs {
			if r.WorkerID == id {
				out = append(out, r)
			}
		}
	}
	return out, nil
}

// ── Mock Transactor ──

// mockTransactor serializes units of work and restores the repository on
// error, standing in for row locks and rollback.
type mockTransactor struct {
	mu   sync.Mutex
	repo *mockOwnershipRepo
}

func (m *mockTransactor) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	saved := append([]ownership.Record(nil), m.repo.records...)
	if err := fn(ctx); err != nil {
		m.repo.records = saved
		return err
	}
	return nil
}

func (m *mockTransactor) WithinSnapshot(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.WithinTx(ctx, fn)
}

// ── Mock directories ──

type mockWorkerRepo struct{}

func (mockWorkerRepo) GetByID(_ context.Context, id string, companyID string) (worker.Worker, error) {
	if id == "w-missing" {
		return worker.Worker{}, worker.ErrWorkerNotFound
	}
	return worker.Worker{ID: id, CompanyID: companyID, Category: worker.CategoryMason}, nil
}

func (mockWorkerRepo) ListByIDs(_ context.Context, _ []string, _ string) (map[string]worker.Worker, error) {
	return map[string]worker.Worker{}, nil
}

type mockCrewRepo struct {
	leads map[string]string
}

func (m mockCrewRepo) LeadOfRecord(_ context.Context, _ string, workerID string, _ time.Time) (*string, error) {
	if lead, ok := m.leads[workerID]; ok {
		return &lead, nil
	}
	return nil, nil
}

func (m mockCrewRepo) LeadsOfRecord(_ context.Context, _ string, _ []string, _, _ time.Time) (map[string]map[string]string, error) {
	return map[string]map[string]string{}, nil
}
