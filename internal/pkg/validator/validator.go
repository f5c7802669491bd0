package validator

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type ValidationError struct {
	Field   string
	Message string
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	var msgs []string
	for _, err := range v {
		msgs = append(msgs, err.Field+": "+err.Message)
	}
	return strings.Join(msgs, "; ")
}

func (v ValidationErrors) ToMap() map[string]string {
	result := make(map[string]string)
	for _, err := range v {
		result[err.Field] = err.Message
	}
	return result
}

// IsEmpty checks if a string is empty after trimming whitespace.
func IsEmpty(s string) bool {
	return strings.TrimSpace(s) == ""
}

// Date validation
func IsValidDate(dateStr string) (time.Time, bool) {
	date, err := time.Parse("2006-01-02", dateStr)
	return date, err == nil
}

// IsValidDateRange reports whether both dates parse and end is not before start.
func IsValidDateRange(startStr, endStr string) bool {
	start, ok := IsValidDate(startStr)
	if !ok {
		return false
	}
	end, ok := IsValidDate(endStr)
	if !ok {
		return false
	}
	return !end.Before(start)
}

// IsWeekday reports whether t falls Monday through Friday.
func IsWeekday(t time.Time) bool {
	wd := t.Weekday()
	return wd != time.Saturday && wd != time.Sunday
}

// IsValidHours accepts a day's hour figure between 0 and 24 inclusive.
func IsValidHours(h decimal.Decimal) bool {
	return !h.IsNegative() && h.LessThanOrEqual(decimal.NewFromInt(24))
}

// IsValidMonth checks a calendar month number.
func IsValidMonth(month int) bool {
	return month >= 1 && month <= 12
}
