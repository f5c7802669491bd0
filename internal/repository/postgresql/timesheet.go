package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/sitecrew/timesheet-backend/internal/domain/timesheet"
	"github.com/sitecrew/timesheet-backend/internal/pkg/database"
)

type timesheetRepositoryImpl struct {
	db *database.DB
}

func NewTimesheetRepository(db *database.DB) timesheet.TimesheetRepository {
	return &timesheetRepositoryImpl{db: db}
}

const timesheetColumns = `id, company_id, worker_id, week_start, site_id, reported_by, status, sent_at, closed_at, created_at, updated_at`

func scanTimesheet(row pgx.Row) (timesheet.Timesheet, error) {
	var ts timesheet.Timesheet
	var status string
	err := row.Scan(
		&ts.ID,
		&ts.CompanyID,
		&ts.WorkerID,
		&ts.WeekStart,
		&ts.SiteID,
		&ts.ReportedBy,
		&status,
		&ts.SentAt,
		&ts.ClosedAt,
		&ts.CreatedAt,
		&ts.UpdatedAt,
	)
	ts.Status = timesheet.Status(status)
	return ts, err
}

func collectTimesheets(rows pgx.Rows) ([]timesheet.Timesheet, error) {
	defer rows.Close()
	var sheets []timesheet.Timesheet
	for rows.Next() {
		ts, err := scanTimesheet(rows)
		if err != nil {
			return nil, err
		}
		sheets = append(sheets, ts)
	}
	return sheets, rows.Err()
}

// Create implements timesheet.TimesheetRepository.
func (r *timesheetRepositoryImpl) Create(ctx context.Context, ts timesheet.Timesheet) (timesheet.Timesheet, error) {
	q := GetQuerier(ctx, r.db)

	id, err := newID()
	if err != nil {
		return timesheet.Timesheet{}, err
	}

	query := `
		INSERT INTO timesheets (id, company_id, worker_id, week_start, site_id, reported_by, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		RETURNING ` + timesheetColumns

	created, err := scanTimesheet(q.QueryRow(ctx, query,
		id, ts.CompanyID, ts.WorkerID, ts.WeekStart, ts.SiteID, ts.ReportedBy, string(ts.Status),
	))
	if err != nil {
		if isUniqueViolation(err) {
			return timesheet.Timesheet{}, timesheet.ErrTimesheetExists
		}
		return timesheet.Timesheet{}, fmt.Errorf("failed to insert timesheet: %w", err)
	}
	return created, nil
}

// GetByID implements timesheet.TimesheetRepository.
func (r *timesheetRepositoryImpl) GetByID(ctx context.Context, id string, companyID string) (timesheet.Timesheet, error) {
	return r.get(ctx, id, companyID, "")
}

// GetByIDForUpdate implements timesheet.TimesheetRepository.
func (r *timesheetRepositoryImpl) GetByIDForUpdate(ctx context.Context, id string, companyID string) (timesheet.Timesheet, error) {
	return r.get(ctx, id, companyID, " FOR UPDATE")
}

func (r *timesheetRepositoryImpl) get(ctx context.Context, id, companyID, lock string) (timesheet.Timesheet, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + timesheetColumns + ` FROM timesheets WHERE id = $1 AND company_id = $2` + lock

	ts, err := scanTimesheet(q.QueryRow(ctx, query, id, companyID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return timesheet.Timesheet{}, timesheet.ErrTimesheetNotFound
		}
		return timesheet.Timesheet{}, err
	}
	return ts, nil
}

// UpdateStatus implements timesheet.TimesheetRepository.
func (r *timesheetRepositoryImpl) UpdateStatus(ctx context.Context, id string, companyID string, status timesheet.Status, at time.Time) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE timesheets
		SET status = $1,
			sent_at = CASE WHEN $1 IN ('sent_to_hr', 'auto_validated') THEN $2 ELSE sent_at END,
			closed_at = CASE WHEN $1 = 'closed' THEN $2 ELSE closed_at END,
			updated_at = NOW()
		WHERE id = $3 AND company_id = $4
	`
	tag, err := q.Exec(ctx, query, string(status), at, id, companyID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return timesheet.ErrTimesheetNotFound
	}
	return nil
}

// List implements timesheet.TimesheetRepository.
func (r *timesheetRepositoryImpl) List(ctx context.Context, companyID string, filter timesheet.ListFilter) ([]timesheet.Timesheet, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + timesheetColumns + ` FROM timesheets WHERE company_id = $1 AND week_start BETWEEN $2 AND $3`
	args := []interface{}{companyID, filter.WeekFrom, filter.WeekTo}
	argIndex := 4

	if len(filter.Statuses) > 0 {
		statuses := make([]string, 0, len(filter.Statuses))
		for _, s := range filter.Statuses {
			statuses = append(statuses, string(s))
		}
		query += fmt.Sprintf(" AND status = ANY($%d)", argIndex)
		args = append(args, statuses)
		argIndex++
	}
	if filter.SiteID != nil {
		query += fmt.Sprintf(" AND site_id = $%d", argIndex)
		args = append(args, *filter.SiteID)
		argIndex++
	}
	if filter.WorkerID != nil {
		query += fmt.Sprintf(" AND worker_id = $%d", argIndex)
		args = append(args, *filter.WorkerID)
	}
	query += " ORDER BY worker_id, week_start, id"

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return collectTimesheets(rows)
}

// ListStaleDrafts implements timesheet.TimesheetRepository.
func (r *timesheetRepositoryImpl) ListStaleDrafts(ctx context.Context, weekStartBefore time.Time) ([]timesheet.Timesheet, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + timesheetColumns + ` FROM timesheets WHERE status = 'draft' AND week_start <= $1 ORDER BY week_start, id`

	rows, err := q.Query(ctx, query, weekStartBefore)
	if err != nil {
		return nil, err
	}
	return collectTimesheets(rows)
}

// LockWeeks implements timesheet.TimesheetRepository.
func (r *timesheetRepositoryImpl) LockWeeks(ctx context.Context, companyID string, weekFrom, weekTo time.Time) error {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `
		SELECT id FROM timesheets
		WHERE company_id = $1 AND week_start BETWEEN $2 AND $3
		ORDER BY id
		FOR UPDATE
	`, companyID, weekFrom, weekTo)
	if err != nil {
		return fmt.Errorf("failed to lock timesheets: %w", err)
	}
	rows.Close()
	return rows.Err()
}

// CloseWeeks implements timesheet.TimesheetRepository.
func (r *timesheetRepositoryImpl) CloseWeeks(ctx context.Context, companyID string, weekFrom, weekTo time.Time, at time.Time) (int64, error) {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `
		UPDATE timesheets
		SET status = 'closed', closed_at = $4, updated_at = NOW()
		WHERE company_id = $1 AND week_start BETWEEN $2 AND $3 AND status <> 'closed'
	`, companyID, weekFrom, weekTo, at)
	if err != nil {
		return 0, fmt.Errorf("failed to close timesheets: %w", err)
	}
	return tag.RowsAffected(), nil
}
