package worker

import (
	"time"

	"github.com/shopspring/decimal"
)

// Category is the trade a worker is consolidated under.
type Category string

const (
	CategoryTeamLead       Category = "team_lead"
	CategoryMason          Category = "mason"
	CategoryCraneOperator  Category = "crane_operator"
	CategoryTempWorker     Category = "temp_worker"
	CategoryFinishingTrade Category = "finishing_trade"
)

var categoryRank = map[Category]int{
	CategoryTeamLead:       0,
	CategoryMason:          1,
	CategoryCraneOperator:  2,
	CategoryTempWorker:     3,
	CategoryFinishingTrade: 4,
}

func (c Category) Valid() bool {
	_, ok := categoryRank[c]
	return ok
}

// Rank orders categories for payroll listings; unknown categories sort last.
func (c Category) Rank() int {
	if r, ok := categoryRank[c]; ok {
		return r
	}
	return len(categoryRank)
}

// SystemRole is the access role of the worker's account.
type SystemRole string

const (
	SystemRoleWorker     SystemRole = "worker"
	SystemRoleTeamLead   SystemRole = "team_lead"
	SystemRoleSupervisor SystemRole = "supervisor"
	SystemRoleHR         SystemRole = "hr"
	SystemRoleAdmin      SystemRole = "admin"
)

// IsSalariedStaff reports roles excluded from hourly consolidation.
func (r SystemRole) IsSalariedStaff() bool {
	return r == SystemRoleSupervisor || r == SystemRoleHR
}

type Worker struct {
	ID           string
	CompanyID    string
	FullName     string
	Category     Category
	SystemRole   SystemRole
	TempAgency   *string
	Grade        *string
	PayScale     *string
	ContractType *string
	Schedule     *string
	Salary       *decimal.Decimal
	LeadOfRecord *string
}

// IsSiteless reports finishing-trade workers, who have no fixed site and
// are dispatched day by day to a supervisor.
func (w Worker) IsSiteless() bool {
	return w.Category == CategoryFinishingTrade
}

type Site struct {
	ID           string
	CompanyID    string
	Code         string
	Name         string
	City         *string
	SupervisorID *string
}

// Affectation assigns a site-less worker to a supervisor for one date.
type Affectation struct {
	WorkerID     string
	Date         time.Time
	SupervisorID string
}
