package ownership

import (
	"context"
	"time"
)

// OwnershipRepository defines data access methods for day ownership records.
type OwnershipRepository interface {
	// GetActiveForUpdate returns the active record of a worker-day, locking
	// it for the surrounding transaction, or nil when none exists.
	GetActiveForUpdate(ctx context.Context, companyID string, workerID string, date time.Time) (*Record, error)

	// Create inserts an active record. A concurrent insert for the same
	// worker-day surfaces as ErrDayAlreadyOwned.
	Create(ctx context.Context, record Record) (Record, error)

	// Withdraw marks active records in [from, to] as withdrawn; leadID
	// narrows it to one lead's records when set.
	Withdraw(ctx context.Context, companyID string, workerID string, from, to time.Time, leadID *string, at time.Time) (int64, error)

	// ListActive returns active records of the given workers in [from, to].
	// An empty workerIDs means every worker.
	ListActive(ctx context.Context, companyID string, workerIDs []string, from, to time.Time) ([]Record, error)
}
