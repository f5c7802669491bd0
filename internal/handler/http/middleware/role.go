package middleware

import (
	"fmt"
	"net/http"

	"github.com/sitecrew/timesheet-backend/internal/domain/auth"
	"github.com/sitecrew/timesheet-backend/internal/domain/worker"
	"github.com/sitecrew/timesheet-backend/internal/handler/http/response"
)

// RequireRole lets through callers holding one of roles.
func RequireRole(roles ...worker.SystemRole) func(http.Handler) http.Handler {
	allowed := make(map[worker.SystemRole]bool, len(roles))
	for _, role := range roles {
		allowed[role] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := ClaimsFromContext(r.Context())
			if err != nil {
				response.HandleError(w, err)
				return
			}

			if !allowed[claims.Role] {
				response.HandleError(w, fmt.Errorf("%w: %q", auth.ErrInsufficientRole, claims.Role))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireHR allows payroll staff.
func RequireHR(next http.Handler) http.Handler {
	return RequireRole(worker.SystemRoleHR, worker.SystemRoleAdmin)(next)
}

// RequireFieldStaff allows anyone who reports or supervises hours.
func RequireFieldStaff(next http.Handler) http.Handler {
	return RequireRole(
		worker.SystemRoleTeamLead,
		worker.SystemRoleSupervisor,
		worker.SystemRoleHR,
		worker.SystemRoleAdmin,
	)(next)
}
