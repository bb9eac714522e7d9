package transfers

import "time"

// Transfer is an immutable movement of a member between units. The unit
// implied by the most recent transfer before a date, or the member's stored
// unit if none precede it, is that member's unit as of that date.
type Transfer struct {
	ID           int64     `json:"id"`
	MemberID     int64     `json:"member_id"`
	FromUnitID   int64     `json:"from_unit_id"`
	ToUnitID     int64     `json:"to_unit_id"`
	TransferDate time.Time `json:"transfer_date"`
	CreatedAt    time.Time `json:"created_at"`
}

// ListFilters narrows transfer listings.
type ListFilters struct {
	Page     int
	Limit    int
	MemberID int64
	UnitID   int64
	From     time.Time
	To       time.Time
}
