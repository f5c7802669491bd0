package consolidation

import (
	"sort"
	"time"

	"github.com/sitecrew/timesheet-backend/internal/domain/consolidation"
	"github.com/sitecrew/timesheet-backend/internal/pkg/workweek"
)

// WeekBucket is the set of days of one week attributed to a month.
type WeekBucket struct {
	Monday time.Time
	Days   []consolidation.DayDetail
}

// AttributeToMonth groups days by the Monday of their week and keeps the
// weeks whose Monday falls in year/month. A week belongs wholly to the
// month of its Monday, including its days spilling into the next month,
// and a week starting in the previous month contributes nothing.
func AttributeToMonth(days []consolidation.DayDetail, year int, month time.Month) []WeekBucket {
	byMonday := make(map[time.Time][]consolidation.DayDetail)
	for _, d := range days {
		monday := workweek.MondayOf(d.Date)
		if !workweek.InMonth(monday, year, month) {
			continue
		}
		byMonday[monday] = append(byMonday[monday], d)
	}

	buckets := make([]WeekBucket, 0, len(byMonday))
	for monday, ds := range byMonday {
		sort.Slice(ds, func(i, j int) bool { return ds[i].Date.Before(ds[j].Date) })
		buckets = append(buckets, WeekBucket{Monday: monday, Days: ds})
	}
	sort.Slice(buckets, func(i, j int) bool { return buckets[i].Monday.Before(buckets[j].Monday) })
	return buckets
}

// WeekWindow returns the Mondays a run covers: every Monday of the month,
// or the single filtered week.
func WeekWindow(filter consolidation.Filter) []time.Time {
	if filter.WeekStart != nil {
		return []time.Time{workweek.Day(*filter.WeekStart)}
	}
	year, month := filter.Period()
	return workweek.MondaysInMonth(year, month)
}
