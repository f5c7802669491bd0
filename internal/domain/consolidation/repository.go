package consolidation

import (
	"context"
	"time"
)

// ClosedPeriodRepository stores closed-period snapshots.
type ClosedPeriodRepository interface {
	// Create fails with ErrPeriodAlreadyClosed when the month already has one.
	Create(ctx context.Context, period ClosedPeriod) (ClosedPeriod, error)
	Get(ctx context.Context, companyID string, year, month int) (ClosedPeriod, error)

	// AnyClosedBetween reports whether a month touching [from, to] is closed.
	AnyClosedBetween(ctx context.Context, companyID string, from, to time.Time) (bool, error)
}
