package postgresql

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/sitecrew/timesheet-backend/internal/domain/worker"
	"github.com/sitecrew/timesheet-backend/internal/pkg/database"
	"github.com/sitecrew/timesheet-backend/internal/pkg/workweek"
)

type workerRepositoryImpl struct {
	db *database.DB
}

func NewWorkerRepository(db *database.DB) worker.WorkerRepository {
	return &workerRepositoryImpl{db: db}
}

const workerColumns = `id, company_id, full_name, category, system_role, temp_agency, grade, pay_scale,
	contract_type, work_schedule, salary, lead_of_record`

func scanWorker(row pgx.Row) (worker.Worker, error) {
	var w worker.Worker
	var category, role string
	err := row.Scan(
		&w.ID,
		&w.CompanyID,
		&w.FullName,
		&category,
		&role,
		&w.TempAgency,
		&w.Grade,
		&w.PayScale,
		&w.ContractType,
		&w.Schedule,
		&w.Salary,
		&w.LeadOfRecord,
	)
	w.Category = worker.Category(category)
	w.SystemRole = worker.SystemRole(role)
	return w, err
}

// GetByID implements worker.WorkerRepository.
func (r *workerRepositoryImpl) GetByID(ctx context.Context, id string, companyID string) (worker.Worker, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + workerColumns + ` FROM workers WHERE id = $1 AND company_id = $2`
	w, err := scanWorker(q.QueryRow(ctx, query, id, companyID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return worker.Worker{}, worker.ErrWorkerNotFound
		}
		return worker.Worker{}, err
	}
	return w, nil
}

// ListByIDs implements worker.WorkerRepository.
func (r *workerRepositoryImpl) ListByIDs(ctx context.Context, ids []string, companyID string) (map[string]worker.Worker, error) {
	workers := make(map[string]worker.Worker, len(ids))
	if len(ids) == 0 {
		return workers, nil
	}
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + workerColumns + ` FROM workers WHERE company_id = $1 AND id = ANY($2)`
	rows, err := q.Query(ctx, query, companyID, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		w, err := scanWorker(rows)
		if err != nil {
			return nil, err
		}
		workers[w.ID] = w
	}
	return workers, rows.Err()
}

type siteRepositoryImpl struct {
	db *database.DB
}

func NewSiteRepository(db *database.DB) worker.SiteRepository {
	return &siteRepositoryImpl{db: db}
}

const siteColumns = `id, company_id, code, name, city, supervisor_id`

func scanSite(row pgx.Row) (worker.Site, error) {
	var s worker.Site
	err := row.Scan(&s.ID, &s.CompanyID, &s.Code, &s.Name, &s.City, &s.SupervisorID)
	return s, err
}

// GetByID implements worker.SiteRepository.
func (r *siteRepositoryImpl) GetByID(ctx context.Context, id string, companyID string) (worker.Site, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + siteColumns + ` FROM sites WHERE id = $1 AND company_id = $2`
	s, err := scanSite(q.QueryRow(ctx, query, id, companyID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return worker.Site{}, worker.ErrSiteNotFound
		}
		return worker.Site{}, err
	}
	return s, nil
}

// ListByCompany implements worker.SiteRepository.
func (r *siteRepositoryImpl) ListByCompany(ctx context.Context, companyID string) (map[string]worker.Site, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `SELECT `+siteColumns+` FROM sites WHERE company_id = $1`, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sites := make(map[string]worker.Site)
	for rows.Next() {
		s, err := scanSite(rows)
		if err != nil {
			return nil, err
		}
		sites[s.ID] = s
	}
	return sites, rows.Err()
}

type crewRepositoryImpl struct {
	db *database.DB
}

func NewCrewRepository(db *database.DB) worker.CrewRepository {
	return &crewRepositoryImpl{db: db}
}

// LeadOfRecord implements worker.CrewRepository. A weekly crew membership
// takes precedence over the worker's standing lead.
func (r *crewRepositoryImpl) LeadOfRecord(ctx context.Context, companyID string, workerID string, weekStart time.Time) (*string, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT COALESCE(
			(SELECT cm.lead_id FROM crew_memberships cm
			 WHERE cm.company_id = w.company_id AND cm.worker_id = w.id AND cm.week_start = $3),
			w.lead_of_record
		)
		FROM workers w
		WHERE w.id = $1 AND w.company_id = $2
	`
	var lead *string
	err := q.QueryRow(ctx, query, workerID, companyID, weekStart).Scan(&lead)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return lead, nil
}

// LeadsOfRecord implements worker.CrewRepository.
func (r *crewRepositoryImpl) LeadsOfRecord(ctx context.Context, companyID string, workerIDs []string, from, to time.Time) (map[string]map[string]string, error) {
	leads := make(map[string]map[string]string)
	if len(workerIDs) == 0 {
		return leads, nil
	}
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT worker_id, week_start, lead_id
		FROM crew_memberships
		WHERE company_id = $1 AND worker_id = ANY($2) AND week_start BETWEEN $3 AND $4
	`
	rows, err := q.Query(ctx, query, companyID, workerIDs, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var workerID, leadID string
		var weekStart time.Time
		if err := rows.Scan(&workerID, &weekStart, &leadID); err != nil {
			return nil, err
		}
		if leads[workerID] == nil {
			leads[workerID] = make(map[string]string)
		}
		leads[workerID][weekStart.Format(workweek.DateLayout)] = leadID
	}
	return leads, rows.Err()
}

type affectationRepositoryImpl struct {
	db *database.DB
}

func NewAffectationRepository(db *database.DB) worker.AffectationRepository {
	return &affectationRepositoryImpl{db: db}
}

// ListBetween implements worker.AffectationRepository.
func (r *affectationRepositoryImpl) ListBetween(ctx context.Context, companyID string, from, to time.Time) ([]worker.Affectation, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT worker_id, date, supervisor_id
		FROM daily_affectations
		WHERE company_id = $1 AND date BETWEEN $2 AND $3
		ORDER BY worker_id, date
	`
	rows, err := q.Query(ctx, query, companyID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var affectations []worker.Affectation
	for rows.Next() {
		var a worker.Affectation
		if err := rows.Scan(&a.WorkerID, &a.Date, &a.SupervisorID); err != nil {
			return nil, err
		}
		affectations = append(affectations, a)
	}
	return affectations, rows.Err()
}
