package postgresql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/sitecrew/timesheet-backend/internal/domain/consolidation"
	"github.com/sitecrew/timesheet-backend/internal/domain/timesheet"
	"github.com/sitecrew/timesheet-backend/internal/pkg/database"
)

type closedPeriodRepositoryImpl struct {
	db *database.DB
}

func NewClosedPeriodRepository(db *database.DB) consolidation.ClosedPeriodRepository {
	return &closedPeriodRepositoryImpl{db: db}
}

const closedPeriodColumns = `id, company_id, period_year, period_month, salary_count, regular_hours, tier1_hours,
	tier2_hours, downtime_hours, absences, meal_count, travel_counts, closed_by, closed_at`

func scanClosedPeriod(row pgx.Row) (consolidation.ClosedPeriod, error) {
	var p consolidation.ClosedPeriod
	var travelJSON []byte
	err := row.Scan(
		&p.ID,
		&p.CompanyID,
		&p.Year,
		&p.Month,
		&p.SalaryCount,
		&p.RegularHours,
		&p.Tier1Hours,
		&p.Tier2Hours,
		&p.DowntimeHours,
		&p.Absences,
		&p.MealCount,
		&travelJSON,
		&p.ClosedBy,
		&p.ClosedAt,
	)
	if err != nil {
		return consolidation.ClosedPeriod{}, err
	}

	var counts map[string]int
	if err := json.Unmarshal(travelJSON, &counts); err != nil {
		return consolidation.ClosedPeriod{}, fmt.Errorf("failed to decode travel counts: %w", err)
	}
	p.TravelCounts = make(map[timesheet.TravelCode]int, len(counts))
	for code, n := range counts {
		p.TravelCounts[timesheet.TravelCode(code)] = n
	}
	return p, nil
}

// Create implements consolidation.ClosedPeriodRepository.
func (r *closedPeriodRepositoryImpl) Create(ctx context.Context, p consolidation.ClosedPeriod) (consolidation.ClosedPeriod, error) {
	q := GetQuerier(ctx, r.db)

	id, err := newID()
	if err != nil {
		return consolidation.ClosedPeriod{}, err
	}

	counts := make(map[string]int, len(p.TravelCounts))
	for code, n := range p.TravelCounts {
		counts[string(code)] = n
	}
	travelJSON, err := json.Marshal(counts)
	if err != nil {
		return consolidation.ClosedPeriod{}, fmt.Errorf("failed to encode travel counts: %w", err)
	}

	query := `
		INSERT INTO closed_periods (
			id, company_id, period_year, period_month, salary_count, regular_hours, tier1_hours,
			tier2_hours, downtime_hours, absences, meal_count, travel_counts, closed_by, closed_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING ` + closedPeriodColumns

	created, err := scanClosedPeriod(q.QueryRow(ctx, query,
		id, p.CompanyID, p.Year, p.Month, p.SalaryCount, p.RegularHours, p.Tier1Hours,
		p.Tier2Hours, p.DowntimeHours, p.Absences, p.MealCount, travelJSON, p.ClosedBy, p.ClosedAt,
	))
	if err != nil {
		if isUniqueViolation(err) {
			return consolidation.ClosedPeriod{}, consolidation.ErrPeriodAlreadyClosed
		}
		return consolidation.ClosedPeriod{}, fmt.Errorf("failed to insert closed period: %w", err)
	}
	return created, nil
}

// Get implements consolidation.ClosedPeriodRepository.
func (r *closedPeriodRepositoryImpl) Get(ctx context.Context, companyID string, year, month int) (consolidation.ClosedPeriod, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + closedPeriodColumns + ` FROM closed_periods WHERE company_id = $1 AND period_year = $2 AND period_month = $3`
	p, err := scanClosedPeriod(q.QueryRow(ctx, query, companyID, year, month))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return consolidation.ClosedPeriod{}, consolidation.ErrClosedPeriodNotFound
		}
		return consolidation.ClosedPeriod{}, err
	}
	return p, nil
}

// AnyClosedBetween implements consolidation.ClosedPeriodRepository.
func (r *closedPeriodRepositoryImpl) AnyClosedBetween(ctx context.Context, companyID string, from, to time.Time) (bool, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT EXISTS (
			SELECT 1 FROM closed_periods
			WHERE company_id = $1
				AND make_date(period_year, period_month, 1) <= $3::date
				AND (make_date(period_year, period_month, 1) + INTERVAL '1 month' - INTERVAL '1 day')::date >= $2::date
		)
	`
	var closed bool
	if err := q.QueryRow(ctx, query, companyID, from, to).Scan(&closed); err != nil {
		return false, err
	}
	return closed, nil
}
