package consolidation

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sitecrew/timesheet-backend/internal/domain/timesheet"
	"github.com/sitecrew/timesheet-backend/internal/domain/worker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T {
	return &v
}

func entry(d time.Time, worked string) timesheet.DailyEntry {
	e := timesheet.DailyEntry{
		Date:          d,
		WorkedHours:   dec(worked),
		DowntimeHours: decimal.Zero,
		Meal:          timesheet.MealNone,
	}
	e.Normalize()
	return e
}

func sourced(tsID, siteID string, e timesheet.DailyEntry) SourcedEntry {
	return SourcedEntry{Entry: e, TimesheetID: tsID, SiteID: ptr(siteID), ReportedBy: "lead-1"}
}

var testSites = map[string]worker.Site{
	"site-x": {ID: "site-x", Code: "X01", City: ptr("Lyon")},
	"site-y": {ID: "site-y", Code: "Y02", City: ptr("Vienne")},
}

func TestMergeLeadDays_SumsSitesOnSameDate(t *testing.T) {
	monday := date(2025, 3, 3)
	entries := []SourcedEntry{
		sourced("ts-x", "site-x", entry(monday, "4")),
		sourced("ts-y", "site-y", entry(monday, "4")),
	}

	days := MergeLeadDays(entries, nil, testSites)
	require.Len(t, days, 1)
	assertHours(t, "8", days[0].WorkedHours)
	assert.False(t, days[0].Absent)
	assert.False(t, days[0].WorkedElsewhere)
	assert.Equal(t, "X01", *days[0].SiteCode)
}

func TestMergeLeadDays_SiteFilterFlagsWorkedElsewhere(t *testing.T) {
	monday := date(2025, 3, 3)
	tuesday := monday.AddDate(0, 0, 1)
	entries := []SourcedEntry{
		sourced("ts-x", "site-x", entry(monday, "4")),
		sourced("ts-y", "site-y", entry(monday, "4")),
		sourced("ts-x", "site-x", entry(tuesday, "0")),
		sourced("ts-y", "site-y", entry(tuesday, "8")),
	}

	days := MergeLeadDays(entries, ptr("site-x"), testSites)
	require.Len(t, days, 2)

	assertHours(t, "4", days[0].WorkedHours)
	assert.False(t, days[0].WorkedElsewhere)

	assert.True(t, days[1].WorkedElsewhere)
	assert.False(t, days[1].Absent)
	assert.True(t, days[1].WorkedHours.IsZero())
	assert.Equal(t, "X01", *days[1].SiteCode)
}

func TestMergeLeadDays_SiteFilterOnlySiteZeroHoursElsewhere(t *testing.T) {
	monday := date(2025, 3, 3)
	entries := []SourcedEntry{sourced("ts-y", "site-y", entry(monday, "8"))}

	days := MergeLeadDays(entries, ptr("site-x"), testSites)
	require.Len(t, days, 1)
	assert.True(t, days[0].WorkedElsewhere)
	assert.True(t, days[0].WorkedHours.IsZero())
}

func TestMergeLeadDays_AbsenceKeptUnderSiteFilter(t *testing.T) {
	monday := date(2025, 3, 3)
	sick := entry(monday, "0")
	sick.AbsenceType = ptr(timesheet.AbsenceSick)
	entries := []SourcedEntry{sourced("ts-y", "site-y", sick)}

	days := MergeLeadDays(entries, ptr("site-x"), testSites)
	require.Len(t, days, 1)
	assert.True(t, days[0].Absent)
	assert.False(t, days[0].WorkedElsewhere)
	assert.Equal(t, timesheet.AbsenceSick, *days[0].AbsenceType)
}

func TestMergeLeadDays_AllowancesAndTravel(t *testing.T) {
	monday := date(2025, 3, 3)
	a := entry(monday, "4")
	a.TravelCode = ptr(timesheet.TravelToComplete)
	b := entry(monday, "4")
	b.Meal = timesheet.MealBasket
	b.TravelCode = ptr(timesheet.TravelZone3)

	days := MergeLeadDays([]SourcedEntry{sourced("ts-a", "site-x", a), sourced("ts-b", "site-y", b)}, nil, testSites)
	require.Len(t, days, 1)
	assert.Equal(t, timesheet.MealBasket, days[0].Meal)
	assert.Equal(t, timesheet.TravelZone3, *days[0].TravelCode)

	c := entry(monday, "4")
	c.TravelCode = ptr(timesheet.TravelZone1)
	days = MergeLeadDays([]SourcedEntry{sourced("ts-a", "site-x", c), sourced("ts-b", "site-y", b)}, nil, testSites)
	assert.Equal(t, timesheet.TravelZone1, *days[0].TravelCode, "first concrete code is kept")
}

func TestPreferTravel(t *testing.T) {
	placeholder := ptr(timesheet.TravelToComplete)
	zone := ptr(timesheet.TravelZone2)

	assert.Nil(t, preferTravel(nil, nil))
	assert.Equal(t, placeholder, preferTravel(nil, placeholder))
	assert.Equal(t, zone, preferTravel(placeholder, zone))
	assert.Equal(t, zone, preferTravel(zone, placeholder))
}

func TestDedupeDays(t *testing.T) {
	monday := date(2025, 3, 3)
	fromA := SourcedEntry{Entry: entry(monday, "8"), TimesheetID: "ts-a", ReportedBy: "lead-a"}
	fromB := SourcedEntry{Entry: entry(monday, "6"), TimesheetID: "ts-b", ReportedBy: "lead-b"}
	tuesday := SourcedEntry{Entry: entry(monday.AddDate(0, 0, 1), "7"), TimesheetID: "ts-a", ReportedBy: "lead-a"}
	entries := []SourcedEntry{fromA, fromB, tuesday}

	t.Run("authorized reporter wins", func(t *testing.T) {
		onlyB := func(reportedBy string, _ time.Time) bool { return reportedBy == "lead-b" }
		kept := DedupeDays(entries, onlyB)
		require.Len(t, kept, 2)
		assert.Equal(t, "ts-b", kept[0].TimesheetID)
		assert.Equal(t, "ts-a", kept[1].TimesheetID)
	})

	t.Run("more hours wins when both are authorized", func(t *testing.T) {
		all := func(string, time.Time) bool { return true }
		kept := DedupeDays(entries, all)
		require.Len(t, kept, 2)
		assert.Equal(t, "ts-a", kept[0].TimesheetID)
		assertHours(t, "8", kept[0].Entry.WorkedHours)
	})

	t.Run("lower timesheet id breaks a tie", func(t *testing.T) {
		tieB := fromB
		tieB.Entry = entry(monday, "8")
		kept := DedupeDays([]SourcedEntry{tieB, fromA}, func(string, time.Time) bool { return false })
		require.Len(t, kept, 1)
		assert.Equal(t, "ts-a", kept[0].TimesheetID)
	})
}
