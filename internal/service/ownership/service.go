package ownership

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sitecrew/timesheet-backend/internal/domain/ownership"
	"github.com/sitecrew/timesheet-backend/internal/domain/worker"
	"github.com/sitecrew/timesheet-backend/internal/pkg/database"
	"github.com/sitecrew/timesheet-backend/internal/pkg/validator"
	"github.com/sitecrew/timesheet-backend/internal/pkg/workweek"
)

type RegistryImpl struct {
	db            database.Transactor
	ownershipRepo ownership.OwnershipRepository
	workerRepo    worker.WorkerRepository
	crewRepo      worker.CrewRepository
	legacyMode    bool
	now           func() time.Time
}

func NewRegistry(
	db database.Transactor,
	ownershipRepo ownership.OwnershipRepository,
	workerRepo worker.WorkerRepository,
	crewRepo worker.CrewRepository,
	legacyMode bool,
) ownership.Registry {
	return &RegistryImpl{
		db:            db,
		ownershipRepo: ownershipRepo,
		workerRepo:    workerRepo,
		crewRepo:      crewRepo,
		legacyMode:    legacyMode,
		now:           time.Now,
	}
}

// LegacyMode implements ownership.Registry.
func (s *RegistryImpl) LegacyMode() bool {
	return s.legacyMode
}

// Authorize implements ownership.Registry.
func (s *RegistryImpl) Authorize(ctx context.Context, companyID string, req ownership.AuthorizeRequest) (ownership.RecordResponse, error) {
	if err := req.Validate(); err != nil {
		return ownership.RecordResponse{}, err
	}
	date, _ := validator.IsValidDate(req.Date)

	if err := s.ensureWorker(ctx, companyID, req.WorkerID); err != nil {
		return ownership.RecordResponse{}, err
	}

	var record ownership.Record
	err := s.db.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		record, err = s.claim(ctx, companyID, req.WorkerID, date, req.LeadID, req.SiteID)
		return err
	})
	if err != nil {
		err = s.resolveOwner(ctx, companyID, err)
		var owned *ownership.DayAlreadyOwnedError
		if errors.As(err, &owned) && owned.OwnerLeadID == req.LeadID {
			// Lost a race against the same claim.
			return s.activeResponse(ctx, companyID, req.WorkerID, date, err)
		}
		return ownership.RecordResponse{}, err
	}
	return ownership.NewRecordResponse(record), nil
}

// AuthorizeDays implements ownership.Registry. Only the requested weekdays
// are claimed; the first conflict rolls back the whole batch.
func (s *RegistryImpl) AuthorizeDays(ctx context.Context, companyID string, req ownership.AuthorizeDaysRequest) ([]ownership.RecordResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if err := s.ensureWorker(ctx, companyID, req.WorkerID); err != nil {
		return nil, err
	}

	dates := req.Dates()
	records := make([]ownership.RecordResponse, 0, len(dates))
	err := s.db.WithinTx(ctx, func(ctx context.Context) error {
		for _, date := range dates {
			record, err := s.claim(ctx, companyID, req.WorkerID, date, req.LeadID, req.SiteID)
			if err != nil {
				return err
			}
			records = append(records, ownership.NewRecordResponse(record))
		}
		return nil
	})
	if err != nil {
		return nil, s.resolveOwner(ctx, companyID, err)
	}
	return records, nil
}

// claim must run inside a transaction: the active record is locked before
// the insert, and the unique index settles a race between two inserts.
func (s *RegistryImpl) claim(ctx context.Context, companyID, workerID string, date time.Time, leadID string, siteID *string) (ownership.Record, error) {
	active, err := s.ownershipRepo.GetActiveForUpdate(ctx, companyID, workerID, date)
	if err != nil {
		return ownership.Record{}, fmt.Errorf("failed to read day ownership: %w", err)
	}
	if active != nil {
		if active.LeadID == leadID {
			return *active, nil
		}
		return ownership.Record{}, &ownership.DayAlreadyOwnedError{
			WorkerID:    workerID,
			Date:        date,
			OwnerLeadID: active.LeadID,
		}
	}

	record, err := s.ownershipRepo.Create(ctx, ownership.Record{
		CompanyID: companyID,
		WorkerID:  workerID,
		Date:      date,
		LeadID:    leadID,
		SiteID:    siteID,
	})
	if err != nil {
		if errors.Is(err, ownership.ErrDayAlreadyOwned) {
			// A concurrent insert won; its owner is read after rollback.
			return ownership.Record{}, &ownership.DayAlreadyOwnedError{WorkerID: workerID, Date: date}
		}
		return ownership.Record{}, fmt.Errorf("failed to create day ownership: %w", err)
	}
	return record, nil
}

// resolveOwner fills in the owning lead of a claim lost to a concurrent
// insert. It must run after the losing transaction rolled back, when the
// winner's record is visible. Any other error is returned unchanged.
func (s *RegistryImpl) resolveOwner(ctx context.Context, companyID string, err error) error {
	var owned *ownership.DayAlreadyOwnedError
	if !errors.As(err, &owned) || owned.OwnerLeadID != "" {
		return err
	}

	records, lookupErr := s.ownershipRepo.ListActive(ctx, companyID, []string{owned.WorkerID}, owned.Date, owned.Date)
	if lookupErr != nil || len(records) == 0 {
		slog.Warn("Could not resolve owner of contested day",
			"company_id", companyID,
			"worker_id", owned.WorkerID,
			"date", owned.Date.Format(workweek.DateLayout),
			"error", lookupErr,
		)
		return err
	}
	return &ownership.DayAlreadyOwnedError{
		WorkerID:    owned.WorkerID,
		Date:        owned.Date,
		OwnerLeadID: records[0].LeadID,
	}
}

func (s *RegistryImpl) activeResponse(ctx context.Context, companyID, workerID string, date time.Time, fallback error) (ownership.RecordResponse, error) {
	records, err := s.ownershipRepo.ListActive(ctx, companyID, []string{workerID}, date, date)
	if err != nil || len(records) == 0 {
		return ownership.RecordResponse{}, fallback
	}
	return ownership.NewRecordResponse(records[0]), nil
}

// Release implements ownership.Registry.
func (s *RegistryImpl) Release(ctx context.Context, companyID string, req ownership.ReleaseRequest) (ownership.ReleaseResponse, error) {
	if err := req.Validate(); err != nil {
		return ownership.ReleaseResponse{}, err
	}
	from, _ := validator.IsValidDate(req.From)
	to, _ := validator.IsValidDate(req.To)

	n, err := s.ownershipRepo.Withdraw(ctx, companyID, req.WorkerID, from, to, req.LeadID, s.now())
	if err != nil {
		return ownership.ReleaseResponse{}, fmt.Errorf("failed to release day ownership: %w", err)
	}

	slog.Info("Day ownership released",
		"company_id", companyID,
		"worker_id", req.WorkerID,
		"from", req.From,
		"to", req.To,
		"released", n,
	)
	return ownership.ReleaseResponse{Released: n}, nil
}

// IsAuthorized implements ownership.Registry.
func (s *RegistryImpl) IsAuthorized(ctx context.Context, companyID string, workerID string, date time.Time, leadID string) (bool, error) {
	date = workweek.Day(date)

	leadOfRecord, err := s.crewRepo.LeadOfRecord(ctx, companyID, workerID, workweek.MondayOf(date))
	if err != nil {
		return false, fmt.Errorf("failed to get lead of record: %w", err)
	}

	records, err := s.ownershipRepo.ListActive(ctx, companyID, []string{workerID}, date, date)
	if err != nil {
		return false, fmt.Errorf("failed to list day ownership: %w", err)
	}
	var active *ownership.Record
	if len(records) > 0 {
		active = &records[0]
	}

	return ownership.Decide(active, leadOfRecord, s.legacyMode, leadID), nil
}

// Availability implements ownership.Registry. AvailableDays counts the
// weekdays nobody owns yet.
func (s *RegistryImpl) Availability(ctx context.Context, companyID string, workerID string, weekStart time.Time, leadID string) (ownership.AvailabilityResponse, error) {
	weekStart = workweek.Day(weekStart)
	if !workweek.IsMonday(weekStart) {
		return ownership.AvailabilityResponse{}, validator.ValidationErrors{
			{Field: "week_start", Message: "week_start must be a Monday"},
		}
	}

	days := workweek.Weekdays(weekStart)
	records, err := s.ownershipRepo.ListActive(ctx, companyID, []string{workerID}, days[0], days[len(days)-1])
	if err != nil {
		return ownership.AvailabilityResponse{}, fmt.Errorf("failed to list day ownership: %w", err)
	}
	byDate := make(map[time.Time]ownership.Record, len(records))
	for _, r := range records {
		byDate[workweek.Day(r.Date)] = r
	}

	resp := ownership.AvailabilityResponse{
		WorkerID:  workerID,
		WeekStart: weekStart.Format(workweek.DateLayout),
		Days:      make([]ownership.DayAvailability, 0, len(days)),
	}
	for _, d := range days {
		day := ownership.DayAvailability{Date: d.Format(workweek.DateLayout), State: ownership.DayAvailable}
		if r, ok := byDate[d]; ok {
			owner := r.LeadID
			day.OwnerLeadID = &owner
			day.State = ownership.DayOwnedByOther
			if r.LeadID == leadID {
				day.State = ownership.DayOwnedByYou
			}
		} else {
			resp.AvailableDays++
		}
		resp.Days = append(resp.Days, day)
	}
	return resp, nil
}

func (s *RegistryImpl) ensureWorker(ctx context.Context, companyID, workerID string) error {
	if _, err := s.workerRepo.GetByID(ctx, workerID, companyID); err != nil {
		if errors.Is(err, worker.ErrWorkerNotFound) {
			return err
		}
		return fmt.Errorf("failed to get worker: %w", err)
	}
	return nil
}
