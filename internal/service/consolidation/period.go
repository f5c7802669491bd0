package consolidation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sitecrew/timesheet-backend/internal/domain/consolidation"
	"github.com/sitecrew/timesheet-backend/internal/domain/leave"
	"github.com/sitecrew/timesheet-backend/internal/domain/timesheet"
	"github.com/sitecrew/timesheet-backend/internal/pkg/database"
	"github.com/sitecrew/timesheet-backend/internal/pkg/workweek"
)

type PeriodServiceImpl struct {
	db            database.Transactor
	timesheetRepo timesheet.TimesheetRepository
	closedRepo    consolidation.ClosedPeriodRepository
	consolidation consolidation.ConsolidationService
	injector      leave.Injector
	now           func() time.Time
}

func NewPeriodService(
	db database.Transactor,
	timesheetRepo timesheet.TimesheetRepository,
	closedRepo consolidation.ClosedPeriodRepository,
	consolidationService consolidation.ConsolidationService,
	injector leave.Injector,
) consolidation.PeriodService {
	return &PeriodServiceImpl{
		db:            db,
		timesheetRepo: timesheetRepo,
		closedRepo:    closedRepo,
		consolidation: consolidationService,
		injector:      injector,
		now:           time.Now,
	}
}

// ClosePeriod implements consolidation.PeriodService.
//
// The timesheets of every week overlapping the month are locked first, so
// concurrent entry edits either commit before the snapshot is taken or fail
// afterwards with ErrPeriodClosed. Drafts still open in those weeks are
// auto-validated before the snapshot, so the stored totals cover exactly the
// timesheets that end up closed. Readers already holding a snapshot keep
// seeing the pre-close state.
func (s *PeriodServiceImpl) ClosePeriod(ctx context.Context, companyID string, closedBy string, req consolidation.ClosePeriodRequest) (consolidation.ClosedPeriodResponse, error) {
	if err := req.Validate(); err != nil {
		return consolidation.ClosedPeriodResponse{}, err
	}

	first, last := workweek.MonthBounds(req.Year, time.Month(req.Month))
	weekFrom := workweek.MondayOf(first)

	var resp consolidation.ClosedPeriodResponse
	err := s.db.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := s.closedRepo.Get(ctx, companyID, req.Year, req.Month); err == nil {
			return consolidation.ErrPeriodAlreadyClosed
		} else if !errors.Is(err, consolidation.ErrClosedPeriodNotFound) {
			return fmt.Errorf("failed to check closed period: %w", err)
		}

		if err := s.timesheetRepo.LockWeeks(ctx, companyID, weekFrom, last); err != nil {
			return fmt.Errorf("failed to lock timesheets: %w", err)
		}

		now := s.now()
		validated, err := s.validateDrafts(ctx, companyID, weekFrom, last, now)
		if err != nil {
			return err
		}

		result, err := s.consolidation.Consolidate(ctx, companyID, consolidation.Filter{
			Year:          req.Year,
			Month:         req.Month,
			IncludeClosed: true,
		})
		if err != nil {
			return err
		}

		period := Summarize(result.Rows)
		period.CompanyID = companyID
		period.Year = req.Year
		period.Month = req.Month
		period.ClosedBy = closedBy
		period.ClosedAt = now

		created, err := s.closedRepo.Create(ctx, period)
		if err != nil {
			return err
		}

		closed, err := s.timesheetRepo.CloseWeeks(ctx, companyID, weekFrom, last, now)
		if err != nil {
			return fmt.Errorf("failed to close timesheets: %w", err)
		}

		resp = consolidation.NewClosedPeriodResponse(created)
		resp.ClosedSheets = closed
		resp.AutoValidated = validated
		return nil
	})
	if err != nil {
		return consolidation.ClosedPeriodResponse{}, err
	}

	slog.Info("Period closed",
		"company_id", companyID,
		"year", req.Year,
		"month", req.Month,
		"salary_count", resp.SalaryCount,
		"closed_timesheets", resp.ClosedSheets,
		"auto_validated", resp.AutoValidated,
	)
	return resp, nil
}

// validateDrafts injects approved leave into every draft of the weeks being
// closed and marks it auto_validated. It must run inside the close
// transaction, after the weeks are locked.
func (s *PeriodServiceImpl) validateDrafts(ctx context.Context, companyID string, weekFrom, weekTo, at time.Time) (int, error) {
	drafts, err := s.timesheetRepo.List(ctx, companyID, timesheet.ListFilter{
		WeekFrom: weekFrom,
		WeekTo:   weekTo,
		Statuses: []timesheet.Status{timesheet.StatusDraft},
	})
	if err != nil {
		return 0, fmt.Errorf("failed to list draft timesheets: %w", err)
	}

	for _, d := range drafts {
		if _, err := s.injector.InjectWeek(ctx, companyID, d.ID); err != nil {
			return 0, fmt.Errorf("failed to inject leave into timesheet %s: %w", d.ID, err)
		}
		if err := s.timesheetRepo.UpdateStatus(ctx, d.ID, companyID, timesheet.StatusAutoValidated, at); err != nil {
			return 0, fmt.Errorf("failed to auto-validate timesheet %s: %w", d.ID, err)
		}
	}
	return len(drafts), nil
}

// GetClosedPeriod implements consolidation.PeriodService.
func (s *PeriodServiceImpl) GetClosedPeriod(ctx context.Context, companyID string, year, month int) (consolidation.ClosedPeriodResponse, error) {
	p, err := s.closedRepo.Get(ctx, companyID, year, month)
	if err != nil {
		return consolidation.ClosedPeriodResponse{}, err
	}
	return consolidation.NewClosedPeriodResponse(p), nil
}

// Summarize totals consolidated rows into a closed-period snapshot.
func Summarize(rows []consolidation.EmployeeRow) consolidation.ClosedPeriod {
	p := consolidation.ClosedPeriod{
		SalaryCount:   len(rows),
		RegularHours:  decimal.Zero,
		Tier1Hours:    decimal.Zero,
		Tier2Hours:    decimal.Zero,
		DowntimeHours: decimal.Zero,
		TravelCounts:  make(map[timesheet.TravelCode]int),
	}
	for _, r := range rows {
		p.RegularHours = p.RegularHours.Add(r.RegularHours)
		p.Tier1Hours = p.Tier1Hours.Add(r.Tier1Hours)
		p.Tier2Hours = p.Tier2Hours.Add(r.Tier2Hours)
		p.DowntimeHours = p.DowntimeHours.Add(r.DowntimeHours)
		p.Absences += r.Absences
		p.MealCount += r.MealCount
		for code, n := range r.TravelCounts {
			p.TravelCounts[code] += n
		}
	}
	return p
}
