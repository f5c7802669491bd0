package consolidation

import "context"

// ConsolidationService builds the monthly payroll feed. The screen summary
// and the export go through the same Consolidate call.
type ConsolidationService interface {
	Consolidate(ctx context.Context, companyID string, filter Filter) (Result, error)
	Export(ctx context.Context, companyID string, filter Filter) ([]ExportRow, []Anomaly, error)
}

// PeriodService closes months.
type PeriodService interface {
	ClosePeriod(ctx context.Context, companyID string, closedBy string, req ClosePeriodRequest) (ClosedPeriodResponse, error)
	GetClosedPeriod(ctx context.Context, companyID string, year, month int) (ClosedPeriodResponse, error)
}
