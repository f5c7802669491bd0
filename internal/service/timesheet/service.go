package timesheet

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sitecrew/timesheet-backend/internal/domain/consolidation"
	"github.com/sitecrew/timesheet-backend/internal/domain/leave"
	"github.com/sitecrew/timesheet-backend/internal/domain/ownership"
	"github.com/sitecrew/timesheet-backend/internal/domain/timesheet"
	"github.com/sitecrew/timesheet-backend/internal/domain/worker"
	"github.com/sitecrew/timesheet-backend/internal/pkg/database"
	"github.com/sitecrew/timesheet-backend/internal/pkg/validator"
	"github.com/sitecrew/timesheet-backend/internal/pkg/workweek"
)

type TimesheetServiceImpl struct {
	db                database.Transactor
	timesheetRepo     timesheet.TimesheetRepository
	entryRepo         timesheet.DailyEntryRepository
	workerRepo        worker.WorkerRepository
	siteRepo          worker.SiteRepository
	closedRepo        consolidation.ClosedPeriodRepository
	registry          ownership.Registry
	injector          leave.Injector
	autoValidateAfter int
	now               func() time.Time
}

func NewTimesheetService(
	db database.Transactor,
	timesheetRepo timesheet.TimesheetRepository,
	entryRepo timesheet.DailyEntryRepository,
	workerRepo worker.WorkerRepository,
	siteRepo worker.SiteRepository,
	closedRepo consolidation.ClosedPeriodRepository,
	registry ownership.Registry,
	injector leave.Injector,
	autoValidateAfterDays int,
) timesheet.TimesheetService {
	return &TimesheetServiceImpl{
		db:                db,
		timesheetRepo:     timesheetRepo,
		entryRepo:         entryRepo,
		workerRepo:        workerRepo,
		siteRepo:          siteRepo,
		closedRepo:        closedRepo,
		registry:          registry,
		injector:          injector,
		autoValidateAfter: autoValidateAfterDays,
		now:               time.Now,
	}
}

// CreateTimesheet implements timesheet.TimesheetService.
func (s *TimesheetServiceImpl) CreateTimesheet(ctx context.Context, companyID string, req timesheet.CreateTimesheetRequest) (timesheet.TimesheetResponse, error) {
	if err := req.Validate(); err != nil {
		return timesheet.TimesheetResponse{}, err
	}
	weekStart, _ := validator.IsValidDate(req.WeekStart)

	if _, err := s.workerRepo.GetByID(ctx, req.WorkerID, companyID); err != nil {
		if errors.Is(err, worker.ErrWorkerNotFound) {
			return timesheet.TimesheetResponse{}, err
		}
		return timesheet.TimesheetResponse{}, fmt.Errorf("failed to get worker: %w", err)
	}
	if req.SiteID != nil {
		if _, err := s.siteRepo.GetByID(ctx, *req.SiteID, companyID); err != nil {
			if errors.Is(err, worker.ErrSiteNotFound) {
				return timesheet.TimesheetResponse{}, err
			}
			return timesheet.TimesheetResponse{}, fmt.Errorf("failed to get site: %w", err)
		}
	}

	closed, err := s.closedRepo.AnyClosedBetween(ctx, companyID, weekStart, weekStart.AddDate(0, 0, 6))
	if err != nil {
		return timesheet.TimesheetResponse{}, fmt.Errorf("failed to check closed periods: %w", err)
	}
	if closed {
		return timesheet.TimesheetResponse{}, timesheet.ErrPeriodClosed
	}

	created, err := s.timesheetRepo.Create(ctx, timesheet.Timesheet{
		CompanyID:  companyID,
		WorkerID:   req.WorkerID,
		WeekStart:  weekStart,
		SiteID:     req.SiteID,
		ReportedBy: req.ReportedBy,
		Status:     timesheet.StatusDraft,
	})
	if err != nil {
		if errors.Is(err, timesheet.ErrTimesheetExists) {
			return timesheet.TimesheetResponse{}, err
		}
		return timesheet.TimesheetResponse{}, fmt.Errorf("failed to create timesheet: %w", err)
	}
	return timesheet.NewTimesheetResponse(created), nil
}

// GetTimesheet implements timesheet.TimesheetService.
func (s *TimesheetServiceImpl) GetTimesheet(ctx context.Context, companyID string, id string) (timesheet.TimesheetResponse, error) {
	ts, err := s.timesheetRepo.GetByID(ctx, id, companyID)
	if err != nil {
		return timesheet.TimesheetResponse{}, err
	}
	ts.Entries, err = s.entryRepo.ListByTimesheet(ctx, ts.ID)
	if err != nil {
		return timesheet.TimesheetResponse{}, fmt.Errorf("failed to list daily entries: %w", err)
	}
	return timesheet.NewTimesheetResponse(ts), nil
}

// UpsertDailyEntry implements timesheet.TimesheetService.
//
// The timesheet row is locked for the duration of the write, the same lock
// ClosePeriod takes, so an edit never lands after its period is closed.
func (s *TimesheetServiceImpl) UpsertDailyEntry(ctx context.Context, companyID string, actor timesheet.Actor, req timesheet.UpsertDailyEntryRequest) (timesheet.DailyEntryResponse, error) {
	if err := req.Validate(); err != nil {
		return timesheet.DailyEntryResponse{}, err
	}

	var saved timesheet.DailyEntry
	err := s.db.WithinTx(ctx, func(ctx context.Context) error {
		ts, err := s.timesheetRepo.GetByIDForUpdate(ctx, req.TimesheetID, companyID)
		if err != nil {
			return err
		}
		switch {
		case ts.Status == timesheet.StatusClosed:
			return timesheet.ErrPeriodClosed
		case ts.Status.IsTransmitted() && !actor.CanOverrideOwnership():
			return timesheet.ErrInvalidStatusChange
		}

		entry := req.ToEntry()
		if !workweek.MondayOf(entry.Date).Equal(workweek.Day(ts.WeekStart)) {
			return timesheet.ErrDateOutsideWeek
		}

		if !actor.CanOverrideOwnership() && actor.WorkerID != ts.WorkerID {
			ok, err := s.registry.IsAuthorized(ctx, companyID, ts.WorkerID, entry.Date, actor.WorkerID)
			if err != nil {
				return err
			}
			if !ok {
				return timesheet.ErrNotDayOwner
			}
		}

		saved, err = s.entryRepo.Upsert(ctx, entry)
		if err != nil {
			return fmt.Errorf("failed to save daily entry: %w", err)
		}
		return nil
	})
	if err != nil {
		return timesheet.DailyEntryResponse{}, err
	}
	return timesheet.NewDailyEntryResponse(saved), nil
}

// SendToHR implements timesheet.TimesheetService.
func (s *TimesheetServiceImpl) SendToHR(ctx context.Context, companyID string, id string) (timesheet.TimesheetResponse, error) {
	var ts timesheet.Timesheet
	err := s.db.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		ts, err = s.transmit(ctx, companyID, id, timesheet.StatusSentToHR)
		return err
	})
	if err != nil {
		return timesheet.TimesheetResponse{}, err
	}

	slog.Info("Timesheet sent to HR", "company_id", companyID, "timesheet_id", id)
	return timesheet.NewTimesheetResponse(ts), nil
}

// transmit injects approved leave into a draft and moves it to status.
// It must run inside a unit of work.
func (s *TimesheetServiceImpl) transmit(ctx context.Context, companyID, id string, status timesheet.Status) (timesheet.Timesheet, error) {
	ts, err := s.timesheetRepo.GetByIDForUpdate(ctx, id, companyID)
	if err != nil {
		return timesheet.Timesheet{}, err
	}
	switch ts.Status {
	case timesheet.StatusDraft:
	case timesheet.StatusClosed:
		return timesheet.Timesheet{}, timesheet.ErrPeriodClosed
	default:
		return timesheet.Timesheet{}, timesheet.ErrInvalidStatusChange
	}

	if _, err := s.injector.InjectWeek(ctx, companyID, id); err != nil {
		return timesheet.Timesheet{}, fmt.Errorf("failed to inject leave: %w", err)
	}

	now := s.now()
	if err := s.timesheetRepo.UpdateStatus(ctx, id, companyID, status, now); err != nil {
		return timesheet.Timesheet{}, fmt.Errorf("failed to update timesheet status: %w", err)
	}
	ts.Status = status
	ts.SentAt = &now

	ts.Entries, err = s.entryRepo.ListByTimesheet(ctx, id)
	if err != nil {
		return timesheet.Timesheet{}, fmt.Errorf("failed to list daily entries: %w", err)
	}
	return ts, nil
}

// InjectLeave implements timesheet.TimesheetService.
func (s *TimesheetServiceImpl) InjectLeave(ctx context.Context, companyID string, id string) (timesheet.InjectionResult, error) {
	return s.injector.InjectWeek(ctx, companyID, id)
}

// AutoValidateStale implements timesheet.TimesheetService. A draft is stale
// once the grace period has fully elapsed after its Sunday: with a 7 day
// grace the week of Monday 3 March is picked up from Sunday 16 March. Failures
// are logged per timesheet so one bad sheet does not block the others.
func (s *TimesheetServiceImpl) AutoValidateStale(ctx context.Context, now time.Time) (int, error) {
	cutoff := workweek.Day(now).AddDate(0, 0, -(s.autoValidateAfter + 6))
	drafts, err := s.timesheetRepo.ListStaleDrafts(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to list stale drafts: %w", err)
	}

	validated := 0
	for _, d := range drafts {
		if err := ctx.Err(); err != nil {
			return validated, err
		}
		err := s.db.WithinTx(ctx, func(ctx context.Context) error {
			_, err := s.transmit(ctx, d.CompanyID, d.ID, timesheet.StatusAutoValidated)
			return err
		})
		if err != nil {
			slog.Error("Failed to auto-validate timesheet",
				"company_id", d.CompanyID,
				"timesheet_id", d.ID,
				"error", err,
			)
			continue
		}
		validated++
	}
	return validated, nil
}
