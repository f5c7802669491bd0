package leave

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sitecrew/timesheet-backend/internal/domain/leave"
	"github.com/sitecrew/timesheet-backend/internal/domain/timesheet"
	"github.com/sitecrew/timesheet-backend/internal/pkg/database"
	"github.com/sitecrew/timesheet-backend/internal/pkg/workweek"
)

type InjectorImpl struct {
	db            database.Transactor
	timesheetRepo timesheet.TimesheetRepository
	entryRepo     timesheet.DailyEntryRepository
	requestRepo   leave.RequestRepository
}

func NewInjector(
	db database.Transactor,
	timesheetRepo timesheet.TimesheetRepository,
	entryRepo timesheet.DailyEntryRepository,
	requestRepo leave.RequestRepository,
) leave.Injector {
	return &InjectorImpl{
		db:            db,
		timesheetRepo: timesheetRepo,
		entryRepo:     entryRepo,
		requestRepo:   requestRepo,
	}
}

// InjectWeek implements leave.Injector. The timesheet row stays locked
// while its entries are rewritten; called from inside another unit of work
// it joins that one.
func (s *InjectorImpl) InjectWeek(ctx context.Context, companyID string, timesheetID string) (timesheet.InjectionResult, error) {
	var result timesheet.InjectionResult
	err := s.db.WithinTx(ctx, func(ctx context.Context) error {
		ts, err := s.timesheetRepo.GetByIDForUpdate(ctx, timesheetID, companyID)
		if err != nil {
			return err
		}
		if ts.Status == timesheet.StatusClosed {
			return timesheet.ErrPeriodClosed
		}

		monday := workweek.Day(ts.WeekStart)
		friday := monday.AddDate(0, 0, 4)
		requests, err := s.requestRepo.ListApproved(ctx, companyID, ts.WorkerID, monday, friday)
		if err != nil {
			return fmt.Errorf("failed to list approved leave: %w", err)
		}
		existing, err := s.entryRepo.ListByTimesheet(ctx, ts.ID)
		if err != nil {
			return fmt.Errorf("failed to list daily entries: %w", err)
		}

		var changes []timesheet.DailyEntry
		changes, result = PlanInjection(ts, existing, validRequests(requests))
		for _, e := range changes {
			if _, err := s.entryRepo.Upsert(ctx, e); err != nil {
				return fmt.Errorf("failed to write leave into daily entry: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return timesheet.InjectionResult{}, err
	}

	if result.Created > 0 || result.Updated > 0 {
		slog.Info("Leave injected",
			"company_id", companyID,
			"timesheet_id", timesheetID,
			"created", result.Created,
			"updated", result.Updated,
		)
	}
	return result, nil
}

// validRequests drops requests that end before they start.
func validRequests(requests []leave.Request) []leave.Request {
	valid := make([]leave.Request, 0, len(requests))
	for _, r := range requests {
		if r.EndDate.Before(r.StartDate) {
			slog.Warn("Skipping leave request with invalid range",
				"request_id", r.ID,
				"error", leave.ErrInvalidDateRange,
			)
			continue
		}
		valid = append(valid, r)
	}
	return valid
}

// PlanInjection computes which entries of a week must be created or
// updated so that every weekday covered by approved leave carries its
// absence code.
//
// A day with worked or downtime hours is never touched. When requests
// overlap, the most recently approved one decides the day. An existing
// absence code is only replaced by a strictly more specific one, which
// makes a second run a no-op.
func PlanInjection(ts timesheet.Timesheet, existing []timesheet.DailyEntry, requests []leave.Request) ([]timesheet.DailyEntry, timesheet.InjectionResult) {
	var result timesheet.InjectionResult

	eligible := make([]leave.Request, 0, len(requests))
	for _, r := range requests {
		if r.Eligible() {
			eligible = append(eligible, r)
		}
	}
	sort.SliceStable(eligible, func(i, j int) bool {
		return approvedAt(eligible[i]).Before(approvedAt(eligible[j]))
	})

	byDate := make(map[time.Time]timesheet.DailyEntry, len(existing))
	for _, e := range existing {
		byDate[workweek.Day(e.Date)] = e
	}

	var changes []timesheet.DailyEntry
	for _, day := range workweek.Weekdays(ts.WeekStart) {
		var mapped *timesheet.AbsenceType
		for _, r := range eligible {
			if r.Covers(day) {
				a := timesheet.AbsenceForLeaveType(r.LeaveType)
				mapped = &a
			}
		}
		if mapped == nil {
			continue
		}

		e, ok := byDate[day]
		switch {
		case !ok:
			created := timesheet.DailyEntry{
				TimesheetID:   ts.ID,
				Date:          day,
				WorkedHours:   decimal.Zero,
				DowntimeHours: decimal.Zero,
				AbsenceType:   mapped,
				Meal:          timesheet.MealNone,
			}
			created.Normalize()
			changes = append(changes, created)
			result.Created++
		case e.IsPresent():
			result.Unchanged++
		case timesheet.Specificity(mapped) > timesheet.Specificity(e.AbsenceType):
			e.AbsenceType = mapped
			e.Normalize()
			changes = append(changes, e)
			result.Updated++
		default:
			result.Unchanged++
		}
	}
	return changes, result
}

func approvedAt(r leave.Request) time.Time {
	if r.ApprovedAt != nil {
		return *r.ApprovedAt
	}
	return r.CreatedAt
}
