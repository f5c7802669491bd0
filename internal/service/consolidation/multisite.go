package consolidation

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sitecrew/timesheet-backend/internal/domain/consolidation"
	"github.com/sitecrew/timesheet-backend/internal/domain/timesheet"
	"github.com/sitecrew/timesheet-backend/internal/domain/worker"
)

// SourcedEntry is a daily entry together with the timesheet it came from.
type SourcedEntry struct {
	Entry       timesheet.DailyEntry
	TimesheetID string
	SiteID      *string
	ReportedBy  string
}

// MergeLeadDays folds a lead's entries from every site timesheet of the
// same week into one figure per date.
//
// Without a site filter, hours and downtime are summed, allowances are
// OR-ed and a concrete travel code wins over a placeholder. With a site
// filter only that site's entries contribute; a date where the lead was
// present on another site only is flagged WorkedElsewhere with zero hours
// and is not an absence.
func MergeLeadDays(entries []SourcedEntry, siteFilter *string, sites map[string]worker.Site) []consolidation.DayDetail {
	byDate := groupByDate(entries)

	dates := make([]time.Time, 0, len(byDate))
	for d := range byDate {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	days := make([]consolidation.DayDetail, 0, len(dates))
	for _, d := range dates {
		days = append(days, mergeDay(d, byDate[d], siteFilter, sites))
	}
	return days
}

func groupByDate(entries []SourcedEntry) map[time.Time][]SourcedEntry {
	byDate := make(map[time.Time][]SourcedEntry)
	for _, e := range entries {
		byDate[e.Entry.Date] = append(byDate[e.Entry.Date], e)
	}
	for d := range byDate {
		rows := byDate[d]
		sort.SliceStable(rows, func(i, j int) bool { return rows[i].TimesheetID < rows[j].TimesheetID })
	}
	return byDate
}

func onSite(e SourcedEntry, siteID string) bool {
	return e.SiteID != nil && *e.SiteID == siteID
}

func mergeDay(date time.Time, rows []SourcedEntry, siteFilter *string, sites map[string]worker.Site) consolidation.DayDetail {
	scoped := rows
	if siteFilter != nil {
		scoped = nil
		presentElsewhere := false
		presentHere := false
		for _, r := range rows {
			switch {
			case onSite(r, *siteFilter):
				scoped = append(scoped, r)
				presentHere = presentHere || r.Entry.IsPresent()
			case r.Entry.IsPresent():
				presentElsewhere = true
			}
		}
		if !presentHere && presentElsewhere {
			day := consolidation.DayDetail{
				Date:            date,
				SiteID:          siteFilter,
				WorkedHours:     decimal.Zero,
				DowntimeHours:   decimal.Zero,
				Meal:            timesheet.MealNone,
				WorkedElsewhere: true,
			}
			if s, ok := sites[*siteFilter]; ok {
				day.SiteCode = &s.Code
				day.SiteCity = s.City
			}
			return day
		}
		// Nothing recorded on the filtered site and no presence anywhere:
		// the absence itself still applies.
		if len(scoped) == 0 {
			scoped = rows
		}
	}

	day := consolidation.DayDetail{
		Date:          date,
		WorkedHours:   decimal.Zero,
		DowntimeHours: decimal.Zero,
		Meal:          timesheet.MealNone,
	}
	var siteSource *SourcedEntry
	for i := range scoped {
		r := scoped[i]
		e := r.Entry

		day.WorkedHours = day.WorkedHours.Add(e.WorkedHours)
		day.DowntimeHours = day.DowntimeHours.Add(e.DowntimeHours)

		if !day.Meal.Granted() && e.Meal.Granted() {
			day.Meal = e.Meal
		}
		day.TravelCode = preferTravel(day.TravelCode, e.TravelCode)
		if timesheet.Specificity(e.AbsenceType) > timesheet.Specificity(day.AbsenceType) {
			day.AbsenceType = e.AbsenceType
		}
		if day.Note == nil && e.Note != nil {
			day.Note = e.Note
		}
		if siteSource == nil || (!siteSource.Entry.IsPresent() && e.IsPresent()) {
			siteSource = &scoped[i]
		}
	}

	day.Absent = !day.WorkedHours.IsPositive() && !day.DowntimeHours.IsPositive()
	if !day.Absent {
		day.AbsenceType = nil
	}
	if siteSource != nil {
		day.SiteID, day.SiteCode, day.SiteCity = siteOf(*siteSource, sites)
	}
	return day
}

// preferTravel keeps the first code seen unless a concrete code replaces a
// placeholder.
func preferTravel(current, next *timesheet.TravelCode) *timesheet.TravelCode {
	if next == nil {
		return current
	}
	if current == nil || (current.IsPlaceholder() && !next.IsPlaceholder()) {
		return next
	}
	return current
}

// siteOf resolves the site shown for a day: the code typed on the entry
// wins over the timesheet's site.
func siteOf(r SourcedEntry, sites map[string]worker.Site) (*string, *string, *string) {
	code, city := r.Entry.SiteCode, r.Entry.SiteCity
	if r.SiteID != nil {
		if s, ok := sites[*r.SiteID]; ok {
			if code == nil {
				c := s.Code
				code = &c
			}
			if city == nil {
				city = s.City
			}
		}
	}
	return r.SiteID, code, city
}

// DedupeDays keeps one entry per date for a worker reported on several
// timesheets. An entry from a reporter authorized for the day wins; among
// the remaining candidates the one with more worked hours wins, then the
// lower timesheet id.
func DedupeDays(entries []SourcedEntry, authorized func(reportedBy string, date time.Time) bool) []SourcedEntry {
	byDate := groupByDate(entries)

	kept := make([]SourcedEntry, 0, len(byDate))
	for date, rows := range byDate {
		if len(rows) == 1 {
			kept = append(kept, rows[0])
			continue
		}

		candidates := make([]SourcedEntry, 0, len(rows))
		for _, r := range rows {
			if authorized(r.ReportedBy, date) {
				candidates = append(candidates, r)
			}
		}
		if len(candidates) == 0 {
			candidates = rows
		}

		best := candidates[0]
		for _, c := range candidates[1:] {
			if c.Entry.WorkedHours.GreaterThan(best.Entry.WorkedHours) {
				best = c
			}
		}
		kept = append(kept, best)
	}

	sort.Slice(kept, func(i, j int) bool { return kept[i].Entry.Date.Before(kept[j].Entry.Date) })
	return kept
}
