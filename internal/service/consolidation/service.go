package consolidation

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/sitecrew/timesheet-backend/internal/domain/consolidation"
	"github.com/sitecrew/timesheet-backend/internal/domain/ownership"
	"github.com/sitecrew/timesheet-backend/internal/domain/timesheet"
	"github.com/sitecrew/timesheet-backend/internal/domain/worker"
	"github.com/sitecrew/timesheet-backend/internal/pkg/database"
)

type ConsolidationServiceImpl struct {
	db              database.Transactor
	timesheetRepo   timesheet.TimesheetRepository
	entryRepo       timesheet.DailyEntryRepository
	workerRepo      worker.WorkerRepository
	siteRepo        worker.SiteRepository
	crewRepo        worker.CrewRepository
	affectationRepo worker.AffectationRepository
	ownershipRepo   ownership.OwnershipRepository
	legacyMode      bool
}

func NewConsolidationService(
	db database.Transactor,
	timesheetRepo timesheet.TimesheetRepository,
	entryRepo timesheet.DailyEntryRepository,
	workerRepo worker.WorkerRepository,
	siteRepo worker.SiteRepository,
	crewRepo worker.CrewRepository,
	affectationRepo worker.AffectationRepository,
	ownershipRepo ownership.OwnershipRepository,
	legacyMode bool,
) consolidation.ConsolidationService {
	return &ConsolidationServiceImpl{
		db:              db,
		timesheetRepo:   timesheetRepo,
		entryRepo:       entryRepo,
		workerRepo:      workerRepo,
		siteRepo:        siteRepo,
		crewRepo:        crewRepo,
		affectationRepo: affectationRepo,
		ownershipRepo:   ownershipRepo,
		legacyMode:      legacyMode,
	}
}

// Consolidate implements consolidation.ConsolidationService.
func (s *ConsolidationServiceImpl) Consolidate(ctx context.Context, companyID string, filter consolidation.Filter) (consolidation.Result, error) {
	if err := filter.Validate(); err != nil {
		return consolidation.Result{}, err
	}

	var snap consolidation.Snapshot
	err := s.db.WithinSnapshot(ctx, func(ctx context.Context) error {
		var err error
		snap, err = s.loadSnapshot(ctx, companyID, filter)
		return err
	})
	if err != nil {
		return consolidation.Result{}, fmt.Errorf("failed to load consolidation snapshot: %w", err)
	}

	result, err := Build(ctx, snap, filter, s.legacyMode)
	if err != nil {
		return consolidation.Result{}, err
	}

	for _, a := range result.Anomalies {
		slog.Warn("Consolidation anomaly skipped",
			"company_id", companyID,
			"kind", a.Kind,
			"worker_id", a.WorkerID,
			"timesheet_id", a.TimesheetID,
			"message", a.Message,
		)
	}
	return result, nil
}

// Export implements consolidation.ConsolidationService. Figures come from
// Consolidate unchanged; only contractual fields are added.
func (s *ConsolidationServiceImpl) Export(ctx context.Context, companyID string, filter consolidation.Filter) ([]consolidation.ExportRow, []consolidation.Anomaly, error) {
	result, err := s.Consolidate(ctx, companyID, filter)
	if err != nil {
		return nil, nil, err
	}

	ids := make([]string, 0, len(result.Rows))
	for _, r := range result.Rows {
		ids = append(ids, r.WorkerID)
	}
	workers := map[string]worker.Worker{}
	if len(ids) > 0 {
		workers, err = s.workerRepo.ListByIDs(ctx, ids, companyID)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to load contractual fields: %w", err)
		}
	}

	rows := make([]consolidation.ExportRow, 0, len(result.Rows))
	for _, r := range result.Rows {
		row := consolidation.ExportRow{EmployeeRow: r}
		if w, ok := workers[r.WorkerID]; ok {
			row.Grade = w.Grade
			row.PayScale = w.PayScale
			row.ContractType = w.ContractType
			row.Schedule = w.Schedule
			row.Salary = w.Salary
		}
		rows = append(rows, row)
	}
	return rows, result.Anomalies, nil
}

func (s *ConsolidationServiceImpl) loadSnapshot(ctx context.Context, companyID string, filter consolidation.Filter) (consolidation.Snapshot, error) {
	window := WeekWindow(filter)
	weekFrom, weekTo := window[0], window[len(window)-1]
	lastDay := weekTo.AddDate(0, 0, 6)

	statuses := []timesheet.Status{timesheet.StatusSentToHR, timesheet.StatusAutoValidated}
	if filter.IncludeClosed {
		statuses = append(statuses, timesheet.StatusClosed)
	}
	sheets, err := s.timesheetRepo.List(ctx, companyID, timesheet.ListFilter{
		WeekFrom: weekFrom,
		WeekTo:   weekTo,
		Statuses: statuses,
		WorkerID: filter.WorkerID,
	})
	if err != nil {
		return consolidation.Snapshot{}, fmt.Errorf("list timesheets: %w", err)
	}
	if len(sheets) == 0 {
		return consolidation.Snapshot{}, nil
	}

	sheetIDs := make([]string, 0, len(sheets))
	workerSet := make(map[string]struct{})
	for _, ts := range sheets {
		sheetIDs = append(sheetIDs, ts.ID)
		workerSet[ts.WorkerID] = struct{}{}
	}
	workerIDs := make([]string, 0, len(workerSet))
	for id := range workerSet {
		workerIDs = append(workerIDs, id)
	}
	sort.Strings(workerIDs)

	entries, err := s.entryRepo.ListByTimesheets(ctx, sheetIDs)
	if err != nil {
		return consolidation.Snapshot{}, fmt.Errorf("list daily entries: %w", err)
	}
	bySheet := make(map[string][]timesheet.DailyEntry, len(sheets))
	for _, e := range entries {
		bySheet[e.TimesheetID] = append(bySheet[e.TimesheetID], e)
	}
	for i := range sheets {
		sheets[i].Entries = bySheet[sheets[i].ID]
	}

	workers, err := s.workerRepo.ListByIDs(ctx, workerIDs, companyID)
	if err != nil {
		return consolidation.Snapshot{}, fmt.Errorf("list workers: %w", err)
	}
	sites, err := s.siteRepo.ListByCompany(ctx, companyID)
	if err != nil {
		return consolidation.Snapshot{}, fmt.Errorf("list sites: %w", err)
	}
	affectations, err := s.affectationRepo.ListBetween(ctx, companyID, weekFrom, lastDay)
	if err != nil {
		return consolidation.Snapshot{}, fmt.Errorf("list affectations: %w", err)
	}
	ownerships, err := s.ownershipRepo.ListActive(ctx, companyID, workerIDs, weekFrom, lastDay)
	if err != nil {
		return consolidation.Snapshot{}, fmt.Errorf("list ownerships: %w", err)
	}
	leads, err := s.crewRepo.LeadsOfRecord(ctx, companyID, workerIDs, weekFrom, weekTo)
	if err != nil {
		return consolidation.Snapshot{}, fmt.Errorf("list leads of record: %w", err)
	}

	return consolidation.Snapshot{
		Timesheets:    sheets,
		Workers:       workers,
		Sites:         sites,
		Affectations:  affectations,
		Ownerships:    ownerships,
		LeadsOfRecord: leads,
	}, nil
}
