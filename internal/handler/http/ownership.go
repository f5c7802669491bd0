package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/sitecrew/timesheet-backend/internal/domain/ownership"
	"github.com/sitecrew/timesheet-backend/internal/domain/worker"
	"github.com/sitecrew/timesheet-backend/internal/handler/http/middleware"
	"github.com/sitecrew/timesheet-backend/internal/handler/http/response"
	"github.com/sitecrew/timesheet-backend/internal/pkg/validator"
)

type OwnershipHandler interface {
	Authorize(w http.ResponseWriter, r *http.Request)
	AuthorizeDays(w http.ResponseWriter, r *http.Request)
	Release(w http.ResponseWriter, r *http.Request)
	Availability(w http.ResponseWriter, r *http.Request)
}

type OwnershipHandlerImpl struct {
	registry ownership.Registry
}

func NewOwnershipHandler(registry ownership.Registry) OwnershipHandler {
	return &OwnershipHandlerImpl{registry: registry}
}

// actingLead resolves the lead a request acts for. A team lead always acts
// for themself; supervisors and HR may act for any lead.
func actingLead(claims middleware.Claims, requested string) string {
	if claims.Role == worker.SystemRoleTeamLead || requested == "" {
		return claims.WorkerID
	}
	return requested
}

// Authorize implements OwnershipHandler.
func (h *OwnershipHandlerImpl) Authorize(w http.ResponseWriter, r *http.Request) {
	claims, err := middleware.ClaimsFromContext(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	var req ownership.AuthorizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Authorize decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.LeadID = actingLead(claims, req.LeadID)

	record, err := h.registry.Authorize(r.Context(), claims.CompanyID, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Day authorized successfully", record)
}

// AuthorizeDays implements OwnershipHandler.
func (h *OwnershipHandlerImpl) AuthorizeDays(w http.ResponseWriter, r *http.Request) {
	claims, err := middleware.ClaimsFromContext(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	var req ownership.AuthorizeDaysRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("AuthorizeDays decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.LeadID = actingLead(claims, req.LeadID)

	records, err := h.registry.AuthorizeDays(r.Context(), claims.CompanyID, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Days authorized successfully", records)
}

// Release implements OwnershipHandler.
func (h *OwnershipHandlerImpl) Release(w http.ResponseWriter, r *http.Request) {
	claims, err := middleware.ClaimsFromContext(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	var req ownership.ReleaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Release decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	if claims.Role == worker.SystemRoleTeamLead {
		req.LeadID = &claims.WorkerID
	}

	resp, err := h.registry.Release(r.Context(), claims.CompanyID, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Days released successfully", resp)
}

// Availability implements OwnershipHandler.
func (h *OwnershipHandlerImpl) Availability(w http.ResponseWriter, r *http.Request) {
	claims, err := middleware.ClaimsFromContext(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	q := r.URL.Query()
	workerID := q.Get("worker_id")
	if workerID == "" {
		response.BadRequest(w, "worker_id is required", nil)
		return
	}
	weekStart, ok := validator.IsValidDate(q.Get("week_start"))
	if !ok {
		response.ValidationError(w, map[string]string{"week_start": "week_start must be in YYYY-MM-DD format"})
		return
	}

	resp, err := h.registry.Availability(r.Context(), claims.CompanyID, workerID, weekStart, actingLead(claims, q.Get("lead_id")))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, resp)
}
