package auth

import "errors"

var (
	ErrInvalidToken      = errors.New("invalid or expired token")
	ErrCompanyIDRequired = errors.New("token carries no company")
	ErrWorkerIDRequired  = errors.New("token carries no worker")
	ErrInsufficientRole  = errors.New("role is not allowed to perform this action")
)
