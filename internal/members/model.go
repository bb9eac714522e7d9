package members

import "time"

// Status values for a membership.
const (
	StatusOpened = "OPENED"
	StatusClosed = "CLOSED"
)

// Closure reasons. Empty means the member is still open.
const (
	ReasonRetirement = "RETIREMENT"
	ReasonDeath      = "DEATH"
	ReasonDoubling   = "DOUBLING"
	ReasonExpelled   = "EXPELLED"
)

// Member represents an enrolled member of the welfare fund. UnitID is the
// current unit; historical unit affiliation is reconstructed from the
// transfer log, never stored per period.
type Member struct {
	ID                    int64      `json:"id"`
	Code                  string     `json:"code"`
	Name                  string     `json:"name"`
	Rank                  string     `json:"rank"`
	ServiceNo             string     `json:"service_no"`
	UnitID                int64      `json:"unit_id"`
	AllotmentDate         time.Time  `json:"allotment_date"`
	SubscriptionStartDate time.Time  `json:"subscription_start_date"`
	DischargeDate         *time.Time `json:"discharge_date,omitempty"`
	Status                string     `json:"status"`
	CloseReason           string     `json:"close_reason,omitempty"`
	CreatedAt             time.Time  `json:"created_at"`
	UpdatedAt             time.Time  `json:"updated_at"`
}

// ListFilters narrows member listings.
type ListFilters struct {
	Page    int
	Limit   int
	Search  string
	UnitID  int64
	Status  string
	SortBy  string
	SortDir string
}

// ValidReason reports whether the closure reason is one of the known values.
func ValidReason(reason string) bool {
	switch reason {
	case ReasonRetirement, ReasonDeath, ReasonDoubling, ReasonExpelled:
		return true
	}
	return false
}
