package members

import "time"

// CreateMemberRequest is the registration payload.
type CreateMemberRequest struct {
	Code                  string `json:"code" validate:"required,max=32"`
	Name                  string `json:"name" validate:"required,max=128"`
	Rank                  string `json:"rank" validate:"max=64"`
	ServiceNo             string `json:"service_no" validate:"required,max=32"`
	UnitID                int64  `json:"unit_id" validate:"required,gt=0"`
	AllotmentDate         string `json:"allotment_date" validate:"required,datetime=2006-01-02"`
	SubscriptionStartDate string `json:"subscription_start_date" validate:"required,datetime=2006-01-02"`
}

// UpdateMemberRequest carries editable identity fields. Unit changes go
// through the transfer log, not through an update.
type UpdateMemberRequest struct {
	Name      string `json:"name" validate:"required,max=128"`
	Rank      string `json:"rank" validate:"max=64"`
	ServiceNo string `json:"service_no" validate:"required,max=32"`
}

// CloseMemberRequest closes a membership with a reason.
type CloseMemberRequest struct {
	Reason        string `json:"reason" validate:"required,oneof=RETIREMENT DEATH DOUBLING EXPELLED"`
	DischargeDate string `json:"discharge_date" validate:"required,datetime=2006-01-02"`
}

func parseDate(value string) (time.Time, error) {
	return time.Parse("2006-01-02", value)
}
