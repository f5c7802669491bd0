package ownership

import (
	"context"
	"time"
)

// Registry is the day ownership registry.
type Registry interface {
	// Authorize claims one worker-day for a lead. Repeating the call as the
	// current owner succeeds; any other lead gets *DayAlreadyOwnedError.
	Authorize(ctx context.Context, companyID string, req AuthorizeRequest) (RecordResponse, error)

	// AuthorizeDays claims exactly the requested weekdays of one week,
	// all or nothing.
	AuthorizeDays(ctx context.Context, companyID string, req AuthorizeDaysRequest) ([]RecordResponse, error)

	Release(ctx context.Context, companyID string, req ReleaseRequest) (ReleaseResponse, error)
	IsAuthorized(ctx context.Context, companyID string, workerID string, date time.Time, leadID string) (bool, error)
	Availability(ctx context.Context, companyID string, workerID string, weekStart time.Time, leadID string) (AvailabilityResponse, error)

	// LegacyMode reports whether unowned days are open to every lead.
	LegacyMode() bool
}
