package reports

import (
	"fmt"
	"sort"
	"time"

	"github.com/benfund/benfund/internal/members"
	"github.com/benfund/benfund/internal/settings"
)

// Meta carries presentation metadata shared by every report dataset.
type Meta struct {
	From        string                  `json:"from"`
	To          string                  `json:"to"`
	Label       string                  `json:"label"`
	Rate        float64                 `json:"rate"`
	GeneratedAt time.Time               `json:"generated_at"`
	Signature   settings.SignatureBlock `json:"signature"`
	Warnings    []string                `json:"warnings,omitempty"`
}

// MovementTotals are column sums over the movement rows.
type MovementTotals struct {
	PreviousMembers      int     `json:"previous_members"`
	NewMembers           int     `json:"new_members"`
	TransferredIn        int     `json:"transferred_in"`
	TransferredOut       int     `json:"transferred_out"`
	ClosedExpiredRetired int     `json:"closed_expired_retired"`
	ClosedDoubling       int     `json:"closed_doubling"`
	TotalIn              int     `json:"total_in"`
	TotalOut             int     `json:"total_out"`
	ActualMembers        int     `json:"actual_members"`
	SubscriptionDue      float64 `json:"subscription_due"`
	Arrears              float64 `json:"arrears"`
	TotalPayable         float64 `json:"total_payable"`
	Received             float64 `json:"received"`
	Balance              float64 `json:"balance"`
}

// MovementReport is the per-unit membership movement statement.
type MovementReport struct {
	Meta   Meta              `json:"meta"`
	Rows   []UnitMovementRow `json:"rows"`
	Totals MovementTotals    `json:"totals"`
}

// DuesRow is one member's line on the dues and arrears statement.
type DuesRow struct {
	MemberID   int64  `json:"member_id"`
	MemberCode string `json:"member_code"`
	Name       string `json:"name"`
	Rank       string `json:"rank,omitempty"`
	UnitID     int64  `json:"unit_id"`
	UnitName   string `json:"unit_name"`
	MemberPeriod
}

// DuesTotals are column sums over the dues rows.
type DuesTotals struct {
	SubscriptionDue float64 `json:"subscription_due"`
	Arrears         float64 `json:"arrears"`
	TotalPayable    float64 `json:"total_payable"`
	Received        float64 `json:"received"`
	Balance         float64 `json:"balance"`
}

// DuesReport is the per-member dues and arrears statement.
type DuesReport struct {
	Meta   Meta       `json:"meta"`
	UnitID int64      `json:"unit_id,omitempty"`
	Rows   []DuesRow  `json:"rows"`
	Totals DuesTotals `json:"totals"`
}

// CollectionRow is one unit's line on the collection statement.
type CollectionRow struct {
	UnitID        int64   `json:"unit_id"`
	UnitCode      string  `json:"unit_code"`
	UnitName      string  `json:"unit_name"`
	Payments      int     `json:"payments"`
	MonthsCovered int     `json:"months_covered"`
	Received      float64 `json:"received"`
}

// CollectionTotals are column sums over the collection rows.
type CollectionTotals struct {
	Payments      int     `json:"payments"`
	MonthsCovered int     `json:"months_covered"`
	Received      float64 `json:"received"`
}

// CollectionsReport is the per-unit subscription collection statement.
type CollectionsReport struct {
	Meta   Meta             `json:"meta"`
	Rows   []CollectionRow  `json:"rows"`
	Totals CollectionTotals `json:"totals"`
}

func newMeta(period Period, rate float64, sig settings.SignatureBlock, warnings []string) Meta {
	return Meta{
		From:        period.From.String(),
		To:          period.To.String(),
		Label:       period.Label(),
		Rate:        rate,
		GeneratedAt: time.Now().UTC(),
		Signature:   sig,
		Warnings:    warnings,
	}
}

// BuildMovement assembles the movement statement for every unit.
func BuildMovement(snap *Snapshot, period Period, sig settings.SignatureBlock, warnings []string) MovementReport {
	res := NewResolver(snap.Members, snap.Transfers)
	pays := snap.PaymentsByMember()

	// Closures without a recognized reason still count as expired/retired, but
	// the statement flags them so the record can be corrected.
	for _, m := range snap.Members {
		if m.DischargeDate != nil && period.ContainsDate(*m.DischargeDate) && !members.ValidReason(m.CloseReason) {
			warnings = append(warnings, fmt.Sprintf("member %s closed with unrecognized reason %q; counted as expired/retired", m.Code, m.CloseReason))
		}
	}

	rows := make([]UnitMovementRow, 0, len(snap.Units))
	var totals MovementTotals
	for _, u := range snap.Units {
		row := AggregateUnit(u, snap, res, pays, period)
		rows = append(rows, row)

		totals.PreviousMembers += row.PreviousMembers
		totals.NewMembers += row.NewMembers
		totals.TransferredIn += row.TransferredIn
		totals.TransferredOut += row.TransferredOut
		totals.ClosedExpiredRetired += row.ClosedExpiredRetired
		totals.ClosedDoubling += row.ClosedDoubling
		totals.TotalIn += row.TotalIn
		totals.TotalOut += row.TotalOut
		totals.ActualMembers += row.ActualMembers
		totals.SubscriptionDue += row.SubscriptionDue
		totals.Arrears += row.Arrears
		totals.TotalPayable += row.TotalPayable
		totals.Received += row.Received
		totals.Balance += row.Balance
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].UnitName < rows[j].UnitName })

	return MovementReport{
		Meta:   newMeta(period, snap.Rate, sig, warnings),
		Rows:   rows,
		Totals: totals,
	}
}

// BuildDues assembles the dues statement. unitID filters to one unit when
// positive; members resolve to units as of the period end.
func BuildDues(snap *Snapshot, period Period, unitID int64, sig settings.SignatureBlock, warnings []string) DuesReport {
	res := NewResolver(snap.Members, snap.Transfers)
	pays := snap.PaymentsByMember()
	unitNames := make(map[int64]string, len(snap.Units))
	for _, u := range snap.Units {
		unitNames[u.ID] = u.Name
	}

	periodEnd := period.To.End()
	var rows []DuesRow
	var totals DuesTotals
	for _, m := range snap.Members {
		if m.Status != members.StatusOpened {
			continue
		}
		resolved := res.UnitAt(m.ID, periodEnd)
		if resolved == UnitUnknown {
			continue
		}
		if unitID > 0 && resolved != unitID {
			continue
		}
		mp := ComputeMemberPeriod(m, pays[m.ID], snap.Rate, period)
		rows = append(rows, DuesRow{
			MemberID:     m.ID,
			MemberCode:   m.Code,
			Name:         m.Name,
			Rank:         m.Rank,
			UnitID:       resolved,
			UnitName:     unitNames[resolved],
			MemberPeriod: mp,
		})
		totals.SubscriptionDue += mp.SubscriptionDue
		totals.Arrears += mp.Arrears
		totals.TotalPayable += mp.TotalPayable
		totals.Received += mp.Received
		totals.Balance += mp.Balance
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].UnitName != rows[j].UnitName {
			return rows[i].UnitName < rows[j].UnitName
		}
		return rows[i].MemberCode < rows[j].MemberCode
	})

	return DuesReport{
		Meta:   newMeta(period, snap.Rate, sig, warnings),
		UnitID: unitID,
		Rows:   rows,
		Totals: totals,
	}
}

// BuildCollections assembles the collection statement: payments received in
// the period, attributed to the payer's unit as of the payment date.
func BuildCollections(snap *Snapshot, period Period, sig settings.SignatureBlock, warnings []string) CollectionsReport {
	res := NewResolver(snap.Members, snap.Transfers)

	byUnit := make(map[int64]*CollectionRow, len(snap.Units))
	order := make([]int64, 0, len(snap.Units))
	for _, u := range snap.Units {
		byUnit[u.ID] = &CollectionRow{UnitID: u.ID, UnitCode: u.Code, UnitName: u.Name}
		order = append(order, u.ID)
	}

	var totals CollectionTotals
	for _, p := range snap.Payments {
		if !period.ContainsDate(p.PaymentDate) {
			continue
		}
		unit := res.UnitAt(p.MemberID, p.PaymentDate)
		row, ok := byUnit[unit]
		if !ok {
			// Resolves to an unknown or deleted unit; the amount still counts
			// toward the grand total so the statement reconciles with the
			// ledger.
			totals.Payments++
			totals.Received += p.Amount
			continue
		}
		covered, warning := PaymentMonths(p)
		if warning != "" {
			warnings = append(warnings, warning)
		}
		row.Payments++
		row.MonthsCovered += covered
		row.Received += p.Amount
		totals.Payments++
		totals.MonthsCovered += covered
		totals.Received += p.Amount
	}

	rows := make([]CollectionRow, 0, len(order))
	for _, id := range order {
		rows = append(rows, *byUnit[id])
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].UnitName < rows[j].UnitName })

	return CollectionsReport{
		Meta:   newMeta(period, snap.Rate, sig, warnings),
		Rows:   rows,
		Totals: totals,
	}
}
