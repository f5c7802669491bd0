package ownership

import "time"

// Record grants one lead the exclusive right to report a worker's hours on
// one date. Records are withdrawn, never deleted.
type Record struct {
	ID          string
	CompanyID   string
	WorkerID    string
	Date        time.Time
	LeadID      string
	SiteID      *string
	CreatedAt   time.Time
	WithdrawnAt *time.Time
}

func (r Record) Active() bool {
	return r.WithdrawnAt == nil
}

// DayState is a weekday's availability as seen by one lead.
type DayState string

const (
	DayAvailable    DayState = "available"
	DayOwnedByYou   DayState = "owned_by_you"
	DayOwnedByOther DayState = "owned_by_other"
)

// Decide applies the authorization rule for one worker-day. active is the
// active record for the day, if any.
//
// The lead of record is always authorized. Otherwise an explicit owner is
// authorized, and a day nobody owns is authorized only in legacy mode,
// which covers periods recorded before day-level ownership existed.
func Decide(active *Record, leadOfRecord *string, legacy bool, leadID string) bool {
	if leadOfRecord != nil && *leadOfRecord == leadID {
		return true
	}
	if active == nil {
		return legacy
	}
	return active.LeadID == leadID
}
