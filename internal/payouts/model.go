package payouts

import "time"

// Payout reasons mirror the closure reasons that trigger a payout.
const (
	ReasonRetirement = "RETIREMENT"
	ReasonDeath      = "DEATH"
)

// Payout is a settlement paid to a retired member or a deceased member's
// nominee. Amounts are clerk-entered; nothing here is derived from the
// subscription ledger.
type Payout struct {
	ID          int64     `json:"id"`
	MemberID    int64     `json:"member_id"`
	Reference   string    `json:"reference"`
	Reason      string    `json:"reason"`
	GrossAmount float64   `json:"gross_amount"`
	Deductions  float64   `json:"deductions"`
	NetAmount   float64   `json:"net_amount"`
	PayoutDate  time.Time `json:"payout_date"`
	Notes       string    `json:"notes,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// ListFilters narrows payout listings.
type ListFilters struct {
	Page     int
	Limit    int
	MemberID int64
	Reason   string
}
