package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/sitecrew/timesheet-backend/internal/domain/ownership"
	"github.com/sitecrew/timesheet-backend/internal/pkg/database"
)

type ownershipRepositoryImpl struct {
	db *database.DB
}

func NewOwnershipRepository(db *database.DB) ownership.OwnershipRepository {
	return &ownershipRepositoryImpl{db: db}
}

const ownershipColumns = `id, company_id, worker_id, date, lead_id, site_id, created_at, withdrawn_at`

func scanOwnership(row pgx.Row) (ownership.Record, error) {
	var rec ownership.Record
	err := row.Scan(
		&rec.ID,
		&rec.CompanyID,
		&rec.WorkerID,
		&rec.Date,
		&rec.LeadID,
		&rec.SiteID,
		&rec.CreatedAt,
		&rec.WithdrawnAt,
	)
	return rec, err
}

// GetActiveForUpdate implements ownership.OwnershipRepository.
func (r *ownershipRepositoryImpl) GetActiveForUpdate(ctx context.Context, companyID string, workerID string, date time.Time) (*ownership.Record, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + ownershipColumns + `
		FROM day_ownerships
		WHERE company_id = $1 AND worker_id = $2 AND date = $3 AND withdrawn_at IS NULL
		FOR UPDATE
	`
	rec, err := scanOwnership(q.QueryRow(ctx, query, companyID, workerID, date))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &rec, nil
}

// Create implements ownership.OwnershipRepository. The partial unique index
// on active records turns a lost race into ErrDayAlreadyOwned.
func (r *ownershipRepositoryImpl) Create(ctx context.Context, rec ownership.Record) (ownership.Record, error) {
	q := GetQuerier(ctx, r.db)

	id, err := newID()
	if err != nil {
		return ownership.Record{}, err
	}

	query := `
		INSERT INTO day_ownerships (id, company_id, worker_id, date, lead_id, site_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		RETURNING ` + ownershipColumns

	created, err := scanOwnership(q.QueryRow(ctx, query,
		id, rec.CompanyID, rec.WorkerID, rec.Date, rec.LeadID, rec.SiteID,
	))
	if err != nil {
		if isUniqueViolation(err) {
			return ownership.Record{}, ownership.ErrDayAlreadyOwned
		}
		return ownership.Record{}, fmt.Errorf("failed to insert ownership record: %w", err)
	}
	return created, nil
}

// Withdraw implements ownership.OwnershipRepository.
func (r *ownershipRepositoryImpl) Withdraw(ctx context.Context, companyID string, workerID string, from, to time.Time, leadID *string, at time.Time) (int64, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE day_ownerships
		SET withdrawn_at = $1
		WHERE company_id = $2 AND worker_id = $3 AND date BETWEEN $4 AND $5 AND withdrawn_at IS NULL
	`
	args := []interface{}{at, companyID, workerID, from, to}
	if leadID != nil {
		query += " AND lead_id = $6"
		args = append(args, *leadID)
	}

	tag, err := q.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to withdraw ownership records: %w", err)
	}
	return tag.RowsAffected(), nil
}

// ListActive implements ownership.OwnershipRepository.
func (r *ownershipRepositoryImpl) ListActive(ctx context.Context, companyID string, workerIDs []string, from, to time.Time) ([]ownership.Record, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + ownershipColumns + `
		FROM day_ownerships
		WHERE company_id = $1 AND date BETWEEN $2 AND $3 AND withdrawn_at IS NULL
	`
	args := []interface{}{companyID, from, to}
	if len(workerIDs) > 0 {
		query += " AND worker_id = ANY($4)"
		args = append(args, workerIDs)
	}
	query += " ORDER BY worker_id, date"

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []ownership.Record
	for rows.Next() {
		rec, err := scanOwnership(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
