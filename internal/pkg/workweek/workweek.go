// Package workweek holds the calendar arithmetic shared by timesheets,
// ownership and consolidation. All dates are civil dates normalised to
// midnight UTC so they compare and key maps safely.
package workweek

import "time"

const DateLayout = "2006-01-02"

// Day truncates t to its civil date at midnight UTC.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// MondayOf returns the Monday that starts the ISO week containing t.
// This is the single source of truth for week bucketing.
func MondayOf(t time.Time) time.Time {
	d := Day(t)
	daysSinceMonday := (int(d.Weekday()) - int(time.Monday) + 7) % 7
	return d.AddDate(0, 0, -daysSinceMonday)
}

// IsMonday reports whether t is a Monday.
func IsMonday(t time.Time) bool {
	return t.Weekday() == time.Monday
}

// Weekdays returns Monday..Friday of the week starting at monday.
func Weekdays(monday time.Time) []time.Time {
	monday = Day(monday)
	days := make([]time.Time, 0, 5)
	for i := 0; i < 5; i++ {
		days = append(days, monday.AddDate(0, 0, i))
	}
	return days
}

// MonthBounds returns the first and last day of the month.
func MonthBounds(year int, month time.Month) (time.Time, time.Time) {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return first, first.AddDate(0, 1, -1)
}

// InMonth reports whether t falls inside year/month.
func InMonth(t time.Time, year int, month time.Month) bool {
	return t.Year() == year && t.Month() == month
}

// MondaysInMonth lists the Mondays falling in year/month, i.e. the weeks
// the month owns.
func MondaysInMonth(year int, month time.Month) []time.Time {
	first, last := MonthBounds(year, month)
	monday := MondayOf(first)
	if monday.Before(first) {
		monday = monday.AddDate(0, 0, 7)
	}
	var mondays []time.Time
	for ; !monday.After(last); monday = monday.AddDate(0, 0, 7) {
		mondays = append(mondays, monday)
	}
	return mondays
}
