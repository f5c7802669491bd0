package consolidation

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/sitecrew/timesheet-backend/internal/domain/consolidation"
	"github.com/sitecrew/timesheet-backend/internal/pkg/validator"
)

var (
	// WeeklyBase is the contractual weekly base; hours past it are overtime.
	WeeklyBase = decimal.NewFromInt(35)

	// Tier1Band is how many overtime hours are paid at the first premium
	// before the second premium applies.
	Tier1Band = decimal.NewFromInt(8)
)

// WeeklyOvertime splits one week's worked hours into regular and tiered
// overtime. Only weekday days that are not absences count. Each figure is
// rounded to two decimals here, once per week.
func WeeklyOvertime(monday time.Time, days []consolidation.DayDetail) consolidation.WeekTotals {
	total := decimal.Zero
	for _, d := range days {
		if !validator.IsWeekday(d.Date) || d.Absent {
			continue
		}
		total = total.Add(d.WorkedHours)
	}

	tier1, tier2 := SplitOvertime(total)
	regular := decimal.Min(total, WeeklyBase)

	return consolidation.WeekTotals{
		WeekStart: monday,
		Total:     total.Round(2),
		Regular:   regular.Round(2),
		Tier1:     tier1.Round(2),
		Tier2:     tier2.Round(2),
	}
}

// SplitOvertime returns the tier-1 and tier-2 hours of a weekly total.
func SplitOvertime(total decimal.Decimal) (decimal.Decimal, decimal.Decimal) {
	excess := total.Sub(WeeklyBase)
	if !excess.IsPositive() {
		return decimal.Zero, decimal.Zero
	}
	if excess.LessThanOrEqual(Tier1Band) {
		return excess, decimal.Zero
	}
	return Tier1Band, excess.Sub(Tier1Band)
}
