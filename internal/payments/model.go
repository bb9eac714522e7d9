package payments

import "time"

// Payment is an immutable subscription payment. A single payment may cover
// several subscription months (bulk payment). Months are stored canonicalized
// to the 15th day UTC so date-only comparisons survive timezone shifts.
type Payment struct {
	ID          int64       `json:"id"`
	MemberID    int64       `json:"member_id"`
	Amount      float64     `json:"amount"`
	Months      []time.Time `json:"months"`
	PaymentDate time.Time   `json:"payment_date"`
	CreatedAt   time.Time   `json:"created_at"`
}

// ListFilters narrows payment listings.
type ListFilters struct {
	Page     int
	Limit    int
	MemberID int64
	From     time.Time
	To       time.Time
}

// CanonicalMonth returns the stored representation of a subscription month.
func CanonicalMonth(year int, month time.Month) time.Time {
	return time.Date(year, month, 15, 0, 0, 0, 0, time.UTC)
}
