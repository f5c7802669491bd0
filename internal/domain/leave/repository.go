package leave

import (
	"context"
	"time"
)

// RequestRepository reads leave requests owned by the approval workflow.
type RequestRepository interface {
	// ListApproved returns HR-approved requests of a worker overlapping
	// [from, to].
	ListApproved(ctx context.Context, companyID string, workerID string, from, to time.Time) ([]Request, error)
}
