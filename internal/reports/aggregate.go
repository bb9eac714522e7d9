package reports

import (
	"github.com/benfund/benfund/internal/members"
	"github.com/benfund/benfund/internal/payments"
	"github.com/benfund/benfund/internal/units"
)

// UnitMovementRow is one unit's membership movement and financial rollup for
// a period.
type UnitMovementRow struct {
	UnitID   int64  `json:"unit_id"`
	UnitCode string `json:"unit_code"`
	UnitName string `json:"unit_name"`

	PreviousMembers      int `json:"previous_members"`
	NewMembers           int `json:"new_members"`
	TransferredIn        int `json:"transferred_in"`
	TransferredOut       int `json:"transferred_out"`
	ClosedExpiredRetired int `json:"closed_expired_retired"`
	ClosedDoubling       int `json:"closed_doubling"`
	TotalIn              int `json:"total_in"`
	TotalOut             int `json:"total_out"`
	ActualMembers        int `json:"actual_members"`

	SubscriptionDue float64 `json:"subscription_due"`
	Arrears         float64 `json:"arrears"`
	TotalPayable    float64 `json:"total_payable"`
	Received        float64 `json:"received"`
	Balance         float64 `json:"balance"`
}

// AggregateUnit computes one unit's movement row. paysByMember is the
// pre-grouped payment index from Snapshot.PaymentsByMember.
func AggregateUnit(u units.Unit, snap *Snapshot, res *Resolver, paysByMember map[int64][]payments.Payment, period Period) UnitMovementRow {
	row := UnitMovementRow{UnitID: u.ID, UnitCode: u.Code, UnitName: u.Name}

	periodStart := period.From.Start()
	periodEnd := period.To.End()

	for _, m := range snap.Members {
		if res.UnitAt(m.ID, periodStart) == u.ID &&
			m.AllotmentDate.Before(periodStart) &&
			(m.DischargeDate == nil || !m.DischargeDate.Before(periodStart)) {
			row.PreviousMembers++
		}

		if m.UnitID == u.ID && period.ContainsDate(m.AllotmentDate) {
			row.NewMembers++
		}

		if m.DischargeDate != nil && period.ContainsDate(*m.DischargeDate) &&
			res.UnitAt(m.ID, *m.DischargeDate) == u.ID {
			if m.CloseReason == members.ReasonDoubling {
				row.ClosedDoubling++
			} else {
				row.ClosedExpiredRetired++
			}
		}

		if m.Status == members.StatusOpened && res.UnitAt(m.ID, periodEnd) == u.ID {
			mp := ComputeMemberPeriod(m, paysByMember[m.ID], snap.Rate, period)
			row.SubscriptionDue += mp.SubscriptionDue
			row.Arrears += mp.Arrears
			row.TotalPayable += mp.TotalPayable
			row.Received += mp.Received
			row.Balance += mp.Balance
		}
	}

	for _, t := range snap.Transfers {
		if !period.ContainsDate(t.TransferDate) {
			continue
		}
		if t.ToUnitID == u.ID {
			row.TransferredIn++
		}
		if t.FromUnitID == u.ID {
			row.TransferredOut++
		}
	}

	row.TotalIn = row.PreviousMembers + row.NewMembers + row.TransferredIn
	row.TotalOut = row.TransferredOut + row.ClosedExpiredRetired + row.ClosedDoubling
	row.ActualMembers = row.TotalIn - row.TotalOut
	return row
}
