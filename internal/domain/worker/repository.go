package worker

import (
	"context"
	"time"
)

// WorkerRepository is the worker directory.
type WorkerRepository interface {
	GetByID(ctx context.Context, id string, companyID string) (Worker, error)

	// ListByIDs returns the workers found; missing ids are simply absent
	// from the map.
	ListByIDs(ctx context.Context, ids []string, companyID string) (map[string]Worker, error)
}

// SiteRepository is the site directory.
type SiteRepository interface {
	GetByID(ctx context.Context, id string, companyID string) (Site, error)
	ListByCompany(ctx context.Context, companyID string) (map[string]Site, error)
}

// CrewRepository exposes crew membership owned by the crew management screens.
type CrewRepository interface {
	// LeadOfRecord returns the lead whose crew the worker belongs to for the
	// week, or nil when the worker has none.
	LeadOfRecord(ctx context.Context, companyID string, workerID string, weekStart time.Time) (*string, error)

	// LeadsOfRecord resolves lead-of-record for many workers and weeks at once,
	// keyed by worker id then week start (YYYY-MM-DD).
	LeadsOfRecord(ctx context.Context, companyID string, workerIDs []string, from, to time.Time) (map[string]map[string]string, error)
}

// AffectationRepository exposes the daily-affectation join for site-less workers.
type AffectationRepository interface {
	ListBetween(ctx context.Context, companyID string, from, to time.Time) ([]Affectation, error)
}
