package ownership

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrDayAlreadyOwned  = errors.New("day already owned by another lead")
	ErrInvalidDateRange = errors.New("end date is before start date")
	ErrNoWeekdays       = errors.New("at least one weekday is required")
)

// DayAlreadyOwnedError reports which lead holds the contested worker-day.
type DayAlreadyOwnedError struct {
	WorkerID    string
	Date        time.Time
	OwnerLeadID string
}

func (e *DayAlreadyOwnedError) Error() string {
	return fmt.Sprintf("%s: worker %s on %s is owned by lead %s",
		ErrDayAlreadyOwned, e.WorkerID, e.Date.Format("2006-01-02"), e.OwnerLeadID)
}

func (e *DayAlreadyOwnedError) Is(target error) bool {
	return target == ErrDayAlreadyOwned
}
