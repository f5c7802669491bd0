package worker

import "errors"

var (
	ErrWorkerNotFound = errors.New("worker not found")
	ErrSiteNotFound   = errors.New("site not found")
)
