package http

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/sitecrew/timesheet-backend/internal/domain/consolidation"
	"github.com/sitecrew/timesheet-backend/internal/handler/http/middleware"
	"github.com/sitecrew/timesheet-backend/internal/handler/http/response"
	consolidationService "github.com/sitecrew/timesheet-backend/internal/service/consolidation"
)

const (
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	contentTypeCSV  = "text/csv; charset=utf-8"
)

type ConsolidationHandler interface {
	Consolidate(w http.ResponseWriter, r *http.Request)
	Export(w http.ResponseWriter, r *http.Request)
	ClosePeriod(w http.ResponseWriter, r *http.Request)
	GetClosedPeriod(w http.ResponseWriter, r *http.Request)
}

type ConsolidationHandlerImpl struct {
	consolidationService consolidation.ConsolidationService
	periodService        consolidation.PeriodService
}

func NewConsolidationHandler(consolidationService consolidation.ConsolidationService, periodService consolidation.PeriodService) ConsolidationHandler {
	return &ConsolidationHandlerImpl{
		consolidationService: consolidationService,
		periodService:        periodService,
	}
}

// Consolidate implements ConsolidationHandler.
func (h *ConsolidationHandlerImpl) Consolidate(w http.ResponseWriter, r *http.Request) {
	claims, err := middleware.ClaimsFromContext(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	filter, err := consolidation.ParseFilter(r.URL.Query())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	res, err := h.consolidationService.Consolidate(r.Context(), claims.CompanyID, filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, consolidation.NewConsolidationResponse(filter, res), &response.Meta{
		Period:       fmt.Sprintf("%04d-%02d", filter.Year, filter.Month),
		TotalItems:   int64(len(res.Rows)),
		AnomalyCount: len(res.Anomalies),
	})
}

// Export implements ConsolidationHandler.
func (h *ConsolidationHandlerImpl) Export(w http.ResponseWriter, r *http.Request) {
	claims, err := middleware.ClaimsFromContext(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	filter, err := consolidation.ParseFilter(r.URL.Query())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	format := r.URL.Query().Get("format")
	if format == "" {
		format = "json"
	}
	if format != "json" && format != "xlsx" && format != "csv" {
		response.HandleError(w, consolidation.ErrUnsupportedFormat)
		return
	}

	rows, anomalies, err := h.consolidationService.Export(r.Context(), claims.CompanyID, filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	filename := fmt.Sprintf("payroll-%04d-%02d.%s", filter.Year, filter.Month, format)
	switch format {
	case "xlsx":
		buf, err := consolidationService.RenderXLSX(rows)
		if err != nil {
			response.HandleError(w, err)
			return
		}
		response.File(w, contentTypeXLSX, filename, buf.Bytes())
	case "csv":
		body, err := consolidationService.RenderCSV(rows)
		if err != nil {
			response.HandleError(w, err)
			return
		}
		response.File(w, contentTypeCSV, filename, body)
	default:
		out := make([]consolidation.ExportRowResponse, 0, len(rows))
		for _, row := range rows {
			out = append(out, consolidation.NewExportRowResponse(row))
		}
		anomalyOut := make([]consolidation.AnomalyResponse, 0, len(anomalies))
		for _, a := range anomalies {
			anomalyOut = append(anomalyOut, consolidation.NewAnomalyResponse(a))
		}
		response.Success(w, map[string]interface{}{
			"year":      filter.Year,
			"month":     filter.Month,
			"rows":      out,
			"anomalies": anomalyOut,
		})
	}
}

// ClosePeriod implements ConsolidationHandler.
func (h *ConsolidationHandlerImpl) ClosePeriod(w http.ResponseWriter, r *http.Request) {
	claims, err := middleware.ClaimsFromContext(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	var req consolidation.ClosePeriodRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("ClosePeriod decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	period, err := h.periodService.ClosePeriod(r.Context(), claims.CompanyID, claims.WorkerID, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Period closed successfully", period)
}

// GetClosedPeriod implements ConsolidationHandler.
func (h *ConsolidationHandlerImpl) GetClosedPeriod(w http.ResponseWriter, r *http.Request) {
	claims, err := middleware.ClaimsFromContext(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	year, yearErr := strconv.Atoi(chi.URLParam(r, "year"))
	month, monthErr := strconv.Atoi(chi.URLParam(r, "month"))
	if yearErr != nil || monthErr != nil {
		response.BadRequest(w, "year and month must be numbers", nil)
		return
	}

	period, err := h.periodService.GetClosedPeriod(r.Context(), claims.CompanyID, year, month)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, period)
}
