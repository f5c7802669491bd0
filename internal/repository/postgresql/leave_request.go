package postgresql

import (
	"context"
	"time"

	"github.com/sitecrew/timesheet-backend/internal/domain/leave"
	"github.com/sitecrew/timesheet-backend/internal/pkg/database"
)

type leaveRequestRepositoryImpl struct {
	db *database.DB
}

func NewLeaveRequestRepository(db *database.DB) leave.RequestRepository {
	return &leaveRequestRepositoryImpl{db: db}
}

// ListApproved implements leave.RequestRepository.
func (r *leaveRequestRepositoryImpl) ListApproved(ctx context.Context, companyID string, workerID string, from, to time.Time) ([]leave.Request, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, company_id, worker_id, start_date, end_date, leave_type, status, approved_at, created_at
		FROM leave_requests
		WHERE company_id = $1 AND worker_id = $2 AND status = $3
			AND start_date <= $5 AND end_date >= $4
		ORDER BY approved_at NULLS FIRST, created_at, id
	`
	rows, err := q.Query(ctx, query, companyID, workerID, string(leave.RequestStatusApprovedByHR), from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var requests []leave.Request
	for rows.Next() {
		var lr leave.Request
		var status string
		err := rows.Scan(
			&lr.ID,
			&lr.CompanyID,
			&lr.WorkerID,
			&lr.StartDate,
			&lr.EndDate,
			&lr.LeaveType,
			&status,
			&lr.ApprovedAt,
			&lr.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		lr.Status = leave.RequestStatus(status)
		requests = append(requests, lr)
	}
	return requests, rows.Err()
}
