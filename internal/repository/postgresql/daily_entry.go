package postgresql

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/sitecrew/timesheet-backend/internal/domain/timesheet"
	"github.com/sitecrew/timesheet-backend/internal/pkg/database"
)

type dailyEntryRepositoryImpl struct {
	db *database.DB
}

func NewDailyEntryRepository(db *database.DB) timesheet.DailyEntryRepository {
	return &dailyEntryRepositoryImpl{db: db}
}

const dailyEntryColumns = `id, timesheet_id, date, worked_hours, downtime_hours, absent, absence_type, meal,
	travel_code, site_code, site_city, note, created_at, updated_at`

func scanDailyEntry(row pgx.Row) (timesheet.DailyEntry, error) {
	var e timesheet.DailyEntry
	var absenceType, travelCode *string
	var meal string
	err := row.Scan(
		&e.ID,
		&e.TimesheetID,
		&e.Date,
		&e.WorkedHours,
		&e.DowntimeHours,
		&e.Absent,
		&absenceType,
		&meal,
		&travelCode,
		&e.SiteCode,
		&e.SiteCity,
		&e.Note,
		&e.CreatedAt,
		&e.UpdatedAt,
	)
	if err != nil {
		return timesheet.DailyEntry{}, err
	}
	e.Meal = timesheet.MealKind(meal)
	if absenceType != nil {
		a := timesheet.AbsenceType(*absenceType)
		e.AbsenceType = &a
	}
	if travelCode != nil {
		t := timesheet.TravelCode(*travelCode)
		e.TravelCode = &t
	}
	return e, nil
}

// ListByTimesheet implements timesheet.DailyEntryRepository.
func (r *dailyEntryRepositoryImpl) ListByTimesheet(ctx context.Context, timesheetID string) ([]timesheet.DailyEntry, error) {
	return r.ListByTimesheets(ctx, []string{timesheetID})
}

// ListByTimesheets implements timesheet.DailyEntryRepository.
func (r *dailyEntryRepositoryImpl) ListByTimesheets(ctx context.Context, timesheetIDs []string) ([]timesheet.DailyEntry, error) {
	if len(timesheetIDs) == 0 {
		return nil, nil
	}
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + dailyEntryColumns + ` FROM daily_entries WHERE timesheet_id = ANY($1) ORDER BY timesheet_id, date`
	rows, err := q.Query(ctx, query, timesheetIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []timesheet.DailyEntry
	for rows.Next() {
		e, err := scanDailyEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Upsert implements timesheet.DailyEntryRepository.
func (r *dailyEntryRepositoryImpl) Upsert(ctx context.Context, e timesheet.DailyEntry) (timesheet.DailyEntry, error) {
	q := GetQuerier(ctx, r.db)

	id, err := newID()
	if err != nil {
		return timesheet.DailyEntry{}, err
	}

	var absenceType, travelCode *string
	if e.AbsenceType != nil {
		s := string(*e.AbsenceType)
		absenceType = &s
	}
	if e.TravelCode != nil {
		s := string(*e.TravelCode)
		travelCode = &s
	}

	query := `
		INSERT INTO daily_entries (
			id, timesheet_id, date, worked_hours, downtime_hours, absent, absence_type, meal,
			travel_code, site_code, site_city, note, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NOW(), NOW())
		ON CONFLICT (timesheet_id, date) DO UPDATE SET
			worked_hours = EXCLUDED.worked_hours,
			downtime_hours = EXCLUDED.downtime_hours,
			absent = EXCLUDED.absent,
			absence_type = EXCLUDED.absence_type,
			meal = EXCLUDED.meal,
			travel_code = EXCLUDED.travel_code,
			site_code = EXCLUDED.site_code,
			site_city = EXCLUDED.site_city,
			note = EXCLUDED.note,
			updated_at = NOW()
		RETURNING ` + dailyEntryColumns

	saved, err := scanDailyEntry(q.QueryRow(ctx, query,
		id, e.TimesheetID, e.Date, e.WorkedHours, e.DowntimeHours, e.Absent, absenceType, string(e.Meal),
		travelCode, e.SiteCode, e.SiteCity, e.Note,
	))
	if err != nil {
		return timesheet.DailyEntry{}, fmt.Errorf("failed to upsert daily entry: %w", err)
	}
	return saved, nil
}
