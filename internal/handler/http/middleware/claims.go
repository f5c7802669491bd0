package middleware

import (
	"context"

	"github.com/go-chi/jwtauth/v5"
	"github.com/sitecrew/timesheet-backend/internal/domain/auth"
	"github.com/sitecrew/timesheet-backend/internal/domain/worker"
)

// Claims is the caller identity carried by the bearer token.
type Claims struct {
	WorkerID  string
	CompanyID string
	Role      worker.SystemRole
}

// ClaimsFromContext returns the caller resolved by AuthRequired. Outside
// that middleware it falls back to the verified token itself.
func ClaimsFromContext(ctx context.Context) (Claims, error) {
	if claims, ok := ctx.Value(claimsCtxKey{}).(Claims); ok {
		return claims, nil
	}

	_, raw, err := jwtauth.FromContext(ctx)
	if err != nil {
		return Claims{}, auth.ErrInvalidToken
	}
	return claimsFromMap(raw)
}

// Every call in this service is scoped to one company, so a token without
// one is rejected.
func claimsFromMap(raw map[string]interface{}) (Claims, error) {
	companyID, ok := raw["company_id"].(string)
	if !ok || companyID == "" {
		return Claims{}, auth.ErrCompanyIDRequired
	}
	workerID, ok := raw["worker_id"].(string)
	if !ok || workerID == "" {
		return Claims{}, auth.ErrWorkerIDRequired
	}
	role, _ := raw["role"].(string)

	return Claims{
		WorkerID:  workerID,
		CompanyID: companyID,
		Role:      worker.SystemRole(role),
	}, nil
}
