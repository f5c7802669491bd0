package consolidation

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sitecrew/timesheet-backend/internal/domain/consolidation"
	"github.com/sitecrew/timesheet-backend/internal/domain/ownership"
	"github.com/sitecrew/timesheet-backend/internal/domain/timesheet"
	"github.com/sitecrew/timesheet-backend/internal/domain/worker"
	"github.com/sitecrew/timesheet-backend/internal/pkg/validator"
	"github.com/sitecrew/timesheet-backend/internal/pkg/workweek"
	"golang.org/x/sync/errgroup"
)

// buildConcurrency bounds how many worker rows are computed at once.
const buildConcurrency = 8

type ownerKey struct {
	workerID string
	date     time.Time
}

// snapshotIndex is the read-only lookup view of a snapshot. It is shared by
// every row builder goroutine and never written after construction.
type snapshotIndex struct {
	workers      map[string]worker.Worker
	sites        map[string]worker.Site
	owners       map[ownerKey]*ownership.Record
	leads        map[string]map[string]string
	affectations map[string]map[time.Time]string
	legacy       bool
}

func newSnapshotIndex(snap consolidation.Snapshot, legacy bool) *snapshotIndex {
	ix := &snapshotIndex{
		workers:      snap.Workers,
		sites:        snap.Sites,
		owners:       make(map[ownerKey]*ownership.Record, len(snap.Ownerships)),
		leads:        snap.LeadsOfRecord,
		affectations: make(map[string]map[time.Time]string),
		legacy:       legacy,
	}
	for i := range snap.Ownerships {
		r := &snap.Ownerships[i]
		if !r.Active() {
			continue
		}
		ix.owners[ownerKey{r.WorkerID, workweek.Day(r.Date)}] = r
	}
	for _, a := range snap.Affectations {
		days, ok := ix.affectations[a.WorkerID]
		if !ok {
			days = make(map[time.Time]string)
			ix.affectations[a.WorkerID] = days
		}
		days[workweek.Day(a.Date)] = a.SupervisorID
	}
	return ix
}

// Build turns a snapshot into consolidated rows. It is a pure function of
// its inputs: the same snapshot and filter always give the same result.
// Workers are computed concurrently; cancelling ctx stops the run.
func Build(ctx context.Context, snap consolidation.Snapshot, filter consolidation.Filter, legacy bool) (consolidation.Result, error) {
	window := WeekWindow(filter)
	inWindow := make(map[time.Time]bool, len(window))
	for _, m := range window {
		inWindow[m] = true
	}

	byWorker := make(map[string][]timesheet.Timesheet)
	for _, ts := range snap.Timesheets {
		if !eligible(ts.Status, filter.IncludeClosed) || !inWindow[workweek.Day(ts.WeekStart)] {
			continue
		}
		byWorker[ts.WorkerID] = append(byWorker[ts.WorkerID], ts)
	}
	workerIDs := make([]string, 0, len(byWorker))
	for id := range byWorker {
		workerIDs = append(workerIDs, id)
	}
	sort.Strings(workerIDs)

	ix := newSnapshotIndex(snap, legacy)
	rows := make([]*consolidation.EmployeeRow, len(workerIDs))
	anomalies := make([][]consolidation.Anomaly, len(workerIDs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(buildConcurrency)
	for i, id := range workerIDs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			rows[i], anomalies[i] = ix.buildRow(id, byWorker[id], filter, window)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return consolidation.Result{}, err
	}

	result := consolidation.Result{
		Rows:      make([]consolidation.EmployeeRow, 0, len(rows)),
		Anomalies: []consolidation.Anomaly{},
	}
	for i := range workerIDs {
		if rows[i] != nil {
			result.Rows = append(result.Rows, *rows[i])
		}
		result.Anomalies = append(result.Anomalies, anomalies[i]...)
	}
	sort.SliceStable(result.Rows, func(i, j int) bool {
		a, b := result.Rows[i], result.Rows[j]
		if a.Category.Rank() != b.Category.Rank() {
			return a.Category.Rank() < b.Category.Rank()
		}
		if a.FullName != b.FullName {
			return a.FullName < b.FullName
		}
		return a.WorkerID < b.WorkerID
	})
	return result, nil
}

func eligible(s timesheet.Status, includeClosed bool) bool {
	return s.IsTransmitted() || (includeClosed && s == timesheet.StatusClosed)
}

func (ix *snapshotIndex) buildRow(workerID string, sheets []timesheet.Timesheet, filter consolidation.Filter, window []time.Time) (*consolidation.EmployeeRow, []consolidation.Anomaly) {
	w, ok := ix.workers[workerID]
	if !ok {
		anomalies := make([]consolidation.Anomaly, 0, len(sheets))
		for _, ts := range sheets {
			anomalies = append(anomalies, consolidation.Anomaly{
				Kind:        consolidation.AnomalyMissingWorker,
				WorkerID:    workerID,
				TimesheetID: ts.ID,
				Message:     consolidation.ErrMissingWorkerReference.Error(),
			})
		}
		return nil, anomalies
	}
	if w.SystemRole.IsSalariedStaff() {
		return nil, nil
	}
	if filter.Category != nil && w.Category != *filter.Category {
		return nil, nil
	}
	if filter.WorkerID != nil && w.ID != *filter.WorkerID {
		return nil, nil
	}

	isLead := w.Category == worker.CategoryTeamLead
	scoped := ix.scopeSheets(w, sheets, filter, true)
	if len(scoped) == 0 {
		return nil, nil
	}
	if isLead && filter.SiteID != nil {
		// Every site of the lead is needed to tell "worked elsewhere" from
		// an absence on the filtered site.
		scoped = ix.scopeSheets(w, sheets, filter, false)
	}

	entries, anomalies := ix.collectEntries(w, scoped, filter)

	var days []consolidation.DayDetail
	if isLead {
		days = MergeLeadDays(entries, filter.SiteID, ix.sites)
	} else {
		// One entry per date is left after dedupe, so merging only converts.
		days = MergeLeadDays(DedupeDays(entries, ix.authorizer(w)), nil, ix.sites)
	}

	row := newRow(w)
	year, month := filter.Period()
	inWindow := make(map[time.Time]bool, len(window))
	for _, m := range window {
		inWindow[m] = true
	}
	for _, b := range AttributeToMonth(days, year, month) {
		if !inWindow[b.Monday] {
			continue
		}
		addWeek(&row, b)
	}

	row.Status = consolidation.RowStatusValidated
	covered := make(map[time.Time]bool, len(scoped))
	for _, ts := range scoped {
		covered[workweek.Day(ts.WeekStart)] = true
	}
	for _, m := range window {
		if !covered[m] {
			row.Status = consolidation.RowStatusPartial
			break
		}
	}

	if row.IsEmpty() {
		return nil, anomalies
	}
	return &row, anomalies
}

func newRow(w worker.Worker) consolidation.EmployeeRow {
	return consolidation.EmployeeRow{
		WorkerID:      w.ID,
		FullName:      w.FullName,
		Category:      w.Category,
		TempAgency:    w.TempAgency,
		RegularHours:  decimal.Zero,
		Tier1Hours:    decimal.Zero,
		Tier2Hours:    decimal.Zero,
		DowntimeHours: decimal.Zero,
		TravelCounts:  make(map[timesheet.TravelCode]int),
		Weeks:         []consolidation.WeekTotals{},
		Days:          []consolidation.DayDetail{},
	}
}

// addWeek folds one attributed week into the row. Overtime is computed and
// rounded per week before summing.
func addWeek(row *consolidation.EmployeeRow, b WeekBucket) {
	wt := WeeklyOvertime(b.Monday, b.Days)
	row.Weeks = append(row.Weeks, wt)
	row.RegularHours = row.RegularHours.Add(wt.Regular)
	row.Tier1Hours = row.Tier1Hours.Add(wt.Tier1)
	row.Tier2Hours = row.Tier2Hours.Add(wt.Tier2)

	for _, d := range b.Days {
		row.Days = append(row.Days, d)
		if !validator.IsWeekday(d.Date) {
			continue
		}
		row.DowntimeHours = row.DowntimeHours.Add(d.DowntimeHours)
		if d.Absent && !d.WorkedElsewhere {
			row.Absences++
		}
		if d.Meal.Granted() {
			row.MealCount++
		}
		if d.TravelCode != nil {
			row.TravelCounts[*d.TravelCode]++
		}
	}
}

// scopeSheets keeps the timesheets matching the lead, supervisor and,
// when withSite is set, site filters.
func (ix *snapshotIndex) scopeSheets(w worker.Worker, sheets []timesheet.Timesheet, filter consolidation.Filter, withSite bool) []timesheet.Timesheet {
	var scoped []timesheet.Timesheet
	for _, ts := range sheets {
		if filter.LeadID != nil && ts.ReportedBy != *filter.LeadID && ts.WorkerID != *filter.LeadID {
			continue
		}
		if withSite && filter.SiteID != nil && (!ts.HasSite() || *ts.SiteID != *filter.SiteID) {
			continue
		}
		if filter.SupervisorID != nil && !ix.supervisedBy(w, ts, *filter.SupervisorID) {
			continue
		}
		scoped = append(scoped, ts)
	}
	sort.Slice(scoped, func(i, j int) bool { return scoped[i].ID < scoped[j].ID })
	return scoped
}

func (ix *snapshotIndex) supervisedBy(w worker.Worker, ts timesheet.Timesheet, supervisorID string) bool {
	if ts.HasSite() {
		site, ok := ix.sites[*ts.SiteID]
		return ok && site.SupervisorID != nil && *site.SupervisorID == supervisorID
	}
	for _, sup := range ix.affectations[w.ID] {
		if sup == supervisorID {
			return true
		}
	}
	return false
}

// collectEntries flattens the entries of the scoped timesheets, skipping
// malformed rows and restricting site-less timesheets to affectation days.
func (ix *snapshotIndex) collectEntries(w worker.Worker, sheets []timesheet.Timesheet, filter consolidation.Filter) ([]SourcedEntry, []consolidation.Anomaly) {
	var entries []SourcedEntry
	var anomalies []consolidation.Anomaly

	affectations, hasAffectations := ix.affectations[w.ID]
	for _, ts := range sheets {
		monday := workweek.Day(ts.WeekStart)
		for _, e := range ts.Entries {
			e.Date = workweek.Day(e.Date)
			if msg := malformed(e, monday); msg != "" {
				date := e.Date
				anomalies = append(anomalies, consolidation.Anomaly{
					Kind:        consolidation.AnomalyMalformedRow,
					WorkerID:    w.ID,
					TimesheetID: ts.ID,
					Date:        &date,
					Message:     msg,
				})
				continue
			}
			if !ts.HasSite() && hasAffectations {
				sup, assigned := affectations[e.Date]
				if !assigned {
					continue
				}
				if filter.SupervisorID != nil && sup != *filter.SupervisorID {
					continue
				}
			}
			entries = append(entries, SourcedEntry{
				Entry:       e,
				TimesheetID: ts.ID,
				SiteID:      ts.SiteID,
				ReportedBy:  ts.ReportedBy,
			})
		}
	}
	return entries, anomalies
}

func malformed(e timesheet.DailyEntry, monday time.Time) string {
	switch {
	case !workweek.MondayOf(e.Date).Equal(monday):
		return fmt.Sprintf("entry dated %s is outside the week of %s", e.Date.Format(workweek.DateLayout), monday.Format(workweek.DateLayout))
	case !validator.IsValidHours(e.WorkedHours):
		return fmt.Sprintf("worked hours %s out of range", e.WorkedHours)
	case !validator.IsValidHours(e.DowntimeHours):
		return fmt.Sprintf("downtime hours %s out of range", e.DowntimeHours)
	}
	return ""
}

// authorizer applies the ownership rule to the reporter of each entry. A
// worker reporting their own timesheet is always authorized.
func (ix *snapshotIndex) authorizer(w worker.Worker) func(reportedBy string, date time.Time) bool {
	return func(reportedBy string, date time.Time) bool {
		if reportedBy == w.ID {
			return true
		}
		return ownership.Decide(ix.owners[ownerKey{w.ID, date}], ix.leadOfRecord(w, date), ix.legacy, reportedBy)
	}
}

func (ix *snapshotIndex) leadOfRecord(w worker.Worker, date time.Time) *string {
	if weeks, ok := ix.leads[w.ID]; ok {
		if lead, ok := weeks[workweek.MondayOf(date).Format(workweek.DateLayout)]; ok {
			return &lead
		}
	}
	return w.LeadOfRecord
}
