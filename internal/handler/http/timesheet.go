package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sitecrew/timesheet-backend/internal/domain/timesheet"
	"github.com/sitecrew/timesheet-backend/internal/handler/http/middleware"
	"github.com/sitecrew/timesheet-backend/internal/handler/http/response"
)

type TimesheetHandler interface {
	Create(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	UpsertEntry(w http.ResponseWriter, r *http.Request)
	SendToHR(w http.ResponseWriter, r *http.Request)
	InjectLeave(w http.ResponseWriter, r *http.Request)
}

type TimesheetHandlerImpl struct {
	timesheetService timesheet.TimesheetService
}

func NewTimesheetHandler(timesheetService timesheet.TimesheetService) TimesheetHandler {
	return &TimesheetHandlerImpl{timesheetService: timesheetService}
}

// Create implements TimesheetHandler.
func (h *TimesheetHandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	claims, err := middleware.ClaimsFromContext(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	var req timesheet.CreateTimesheetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("CreateTimesheet decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.ReportedBy = claims.WorkerID

	ts, err := h.timesheetService.CreateTimesheet(r.Context(), claims.CompanyID, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Timesheet created successfully", ts)
}

// Get implements TimesheetHandler.
func (h *TimesheetHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	claims, err := middleware.ClaimsFromContext(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	ts, err := h.timesheetService.GetTimesheet(r.Context(), claims.CompanyID, chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, ts)
}

// UpsertEntry implements TimesheetHandler.
func (h *TimesheetHandlerImpl) UpsertEntry(w http.ResponseWriter, r *http.Request) {
	claims, err := middleware.ClaimsFromContext(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	var req timesheet.UpsertDailyEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("UpsertDailyEntry decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.TimesheetID = chi.URLParam(r, "id")

	actor := timesheet.Actor{WorkerID: claims.WorkerID, Role: claims.Role}
	entry, err := h.timesheetService.UpsertDailyEntry(r.Context(), claims.CompanyID, actor, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Daily entry saved successfully", entry)
}

// SendToHR implements TimesheetHandler.
func (h *TimesheetHandlerImpl) SendToHR(w http.ResponseWriter, r *http.Request) {
	claims, err := middleware.ClaimsFromContext(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	ts, err := h.timesheetService.SendToHR(r.Context(), claims.CompanyID, chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Timesheet sent to HR", ts)
}

// InjectLeave implements TimesheetHandler.
func (h *TimesheetHandlerImpl) InjectLeave(w http.ResponseWriter, r *http.Request) {
	claims, err := middleware.ClaimsFromContext(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	res, err := h.timesheetService.InjectLeave(r.Context(), claims.CompanyID, chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, res)
}
