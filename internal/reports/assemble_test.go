package reports

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benfund/benfund/internal/members"
	"github.com/benfund/benfund/internal/payments"
	"github.com/benfund/benfund/internal/settings"
	"github.com/benfund/benfund/internal/transfers"
	"github.com/benfund/benfund/internal/units"
)

func TestBuildMovementTotalsMatchRows(t *testing.T) {
	snap := movementFixture()
	march := Month{Year: 2024, Month: time.March}
	period := mustPeriod(t, march, march)

	report := BuildMovement(snap, period, settings.SignatureBlock{Left: "Treasurer", Right: "Commandant"}, nil)

	require.Len(t, report.Rows, 2)
	assert.Equal(t, "East", report.Rows[0].UnitName, "rows sorted by unit name")
	assert.Equal(t, "Headquarters", report.Rows[1].UnitName)

	var wantActual int
	var wantBalance float64
	for _, row := range report.Rows {
		wantActual += row.ActualMembers
		wantBalance += row.Balance
	}
	assert.Equal(t, wantActual, report.Totals.ActualMembers)
	assert.Equal(t, wantBalance, report.Totals.Balance)

	assert.Equal(t, "2024-03", report.Meta.From)
	assert.Equal(t, "2024-03", report.Meta.To)
	assert.Equal(t, "March 2024", report.Meta.Label)
	assert.Equal(t, 100.0, report.Meta.Rate)
	assert.Equal(t, "Treasurer", report.Meta.Signature.Left)
	assert.False(t, report.Meta.GeneratedAt.IsZero())
}

func TestBuildDuesFiltersAndSorts(t *testing.T) {
	snap := &Snapshot{
		Rate: 100,
		Members: []members.Member{
			{ID: 1, Code: "B-2", Name: "Mole", UnitID: 1, SubscriptionStartDate: date(2024, 1, 15), Status: members.StatusOpened},
			{ID: 2, Code: "A-1", Name: "Badger", UnitID: 1, SubscriptionStartDate: date(2024, 1, 15), Status: members.StatusOpened},
			{ID: 3, Code: "C-3", Name: "Otter", UnitID: 2, SubscriptionStartDate: date(2024, 1, 15), Status: members.StatusOpened},
			// Closed members never appear on the dues statement.
			{ID: 4, Code: "D-4", Name: "Toad", UnitID: 1, SubscriptionStartDate: date(2024, 1, 15), Status: members.StatusClosed},
		},
		Units: []units.Unit{{ID: 1, Code: "HQ", Name: "Headquarters"}, {ID: 2, Code: "E", Name: "East"}},
	}
	march := Month{Year: 2024, Month: time.March}
	period := mustPeriod(t, march, march)

	report := BuildDues(snap, period, 0, settings.SignatureBlock{}, nil)
	require.Len(t, report.Rows, 3)
	assert.Equal(t, "C-3", report.Rows[0].MemberCode, "East before Headquarters")
	assert.Equal(t, "A-1", report.Rows[1].MemberCode, "member code order inside a unit")
	assert.Equal(t, "B-2", report.Rows[2].MemberCode)
	assert.Equal(t, 900.0, report.Totals.TotalPayable)

	filtered := BuildDues(snap, period, 1, settings.SignatureBlock{}, nil)
	require.Len(t, filtered.Rows, 2)
	for _, row := range filtered.Rows {
		assert.Equal(t, int64(1), row.UnitID)
	}
	assert.Equal(t, 600.0, filtered.Totals.TotalPayable)
}

func TestBuildDuesUsesPeriodEndUnit(t *testing.T) {
	snap := &Snapshot{
		Rate: 100,
		Members: []members.Member{
			{ID: 1, Code: "A-1", Name: "Badger", UnitID: 2, SubscriptionStartDate: date(2024, 1, 15), Status: members.StatusOpened},
		},
		Units: []units.Unit{{ID: 1, Code: "HQ", Name: "Headquarters"}, {ID: 2, Code: "E", Name: "East"}},
		Transfers: []transfers.Transfer{
			{ID: 1, MemberID: 1, FromUnitID: 1, ToUnitID: 2, TransferDate: date(2024, 3, 10)},
		},
	}
	march := Month{Year: 2024, Month: time.March}
	period := mustPeriod(t, march, march)

	report := BuildDues(snap, period, 0, settings.SignatureBlock{}, nil)
	require.Len(t, report.Rows, 1)
	assert.Equal(t, int64(2), report.Rows[0].UnitID, "mid-period transfer lands the member in the destination unit")
	assert.Equal(t, "East", report.Rows[0].UnitName)
}

func TestBuildCollectionsAttributesByPaymentDate(t *testing.T) {
	snap := &Snapshot{
		Rate: 100,
		Members: []members.Member{
			{ID: 1, UnitID: 2, SubscriptionStartDate: date(2024, 1, 15), Status: members.StatusOpened},
		},
		Units: []units.Unit{{ID: 1, Code: "HQ", Name: "Headquarters"}, {ID: 2, Code: "E", Name: "East"}},
		Transfers: []transfers.Transfer{
			{ID: 1, MemberID: 1, FromUnitID: 1, ToUnitID: 2, TransferDate: date(2024, 3, 15)},
		},
		Payments: []payments.Payment{
			// Paid while still in Headquarters.
			{ID: 4, MemberID: 1, Amount: 100, Months: []time.Time{payments.CanonicalMonth(2024, time.March)}, PaymentDate: date(2024, 3, 5)},
			// Paid after the transfer.
			{ID: 5, MemberID: 1, Amount: 200, Months: []time.Time{payments.CanonicalMonth(2024, time.April), payments.CanonicalMonth(2024, time.May)}, PaymentDate: date(2024, 3, 20)},
			// Outside the period, ignored entirely.
			{ID: 6, MemberID: 1, Amount: 500, PaymentDate: date(2024, 2, 20)},
		},
	}
	march := Month{Year: 2024, Month: time.March}
	period := mustPeriod(t, march, march)

	report := BuildCollections(snap, period, settings.SignatureBlock{}, nil)
	require.Len(t, report.Rows, 2)

	byName := map[string]CollectionRow{}
	for _, row := range report.Rows {
		byName[row.UnitName] = row
	}
	assert.Equal(t, 100.0, byName["Headquarters"].Received)
	assert.Equal(t, 1, byName["Headquarters"].MonthsCovered)
	assert.Equal(t, 200.0, byName["East"].Received)
	assert.Equal(t, 2, byName["East"].MonthsCovered)

	assert.Equal(t, 2, report.Totals.Payments)
	assert.Equal(t, 300.0, report.Totals.Received)
}

func TestBuildCollectionsUnknownUnitStillTotals(t *testing.T) {
	snap := &Snapshot{
		Rate: 100,
		Members: []members.Member{
			// Stored unit no longer exists.
			{ID: 1, UnitID: 77, SubscriptionStartDate: date(2024, 1, 15), Status: members.StatusOpened},
		},
		Units: []units.Unit{{ID: 1, Code: "HQ", Name: "Headquarters"}},
		Payments: []payments.Payment{
			{ID: 1, MemberID: 1, Amount: 100, PaymentDate: date(2024, 3, 5)},
		},
	}
	march := Month{Year: 2024, Month: time.March}
	period := mustPeriod(t, march, march)

	report := BuildCollections(snap, period, settings.SignatureBlock{}, nil)
	require.Len(t, report.Rows, 1)
	assert.Equal(t, 0.0, report.Rows[0].Received)
	assert.Equal(t, 100.0, report.Totals.Received, "amount kept in the grand total so the statement reconciles")
}

func TestBuildMovementFirstTransferInPeriod(t *testing.T) {
	// Recording a transfer rewrites the member's stored unit, so a member
	// whose only transfer falls inside the period must still count as a
	// previous member of the origin unit, not the destination.
	snap := &Snapshot{
		Rate: 100,
		Members: []members.Member{
			{ID: 1, Code: "M-001", UnitID: 2, Status: members.StatusOpened,
				AllotmentDate: date(2023, 6, 1), SubscriptionStartDate: date(2023, 6, 1)},
		},
		Units: []units.Unit{{ID: 1, Code: "A", Name: "Alpha"}, {ID: 2, Code: "B", Name: "Bravo"}},
		Transfers: []transfers.Transfer{
			{ID: 1, MemberID: 1, FromUnitID: 1, ToUnitID: 2, TransferDate: date(2024, 3, 20)},
		},
	}
	march := Month{Year: 2024, Month: time.March}
	period := mustPeriod(t, march, march)

	report := BuildMovement(snap, period, settings.SignatureBlock{}, nil)
	require.Len(t, report.Rows, 2)

	alpha, bravo := report.Rows[0], report.Rows[1]
	require.Equal(t, "Alpha", alpha.UnitName)
	require.Equal(t, "Bravo", bravo.UnitName)

	assert.Equal(t, 1, alpha.PreviousMembers)
	assert.Equal(t, 1, alpha.TransferredOut)
	assert.Equal(t, 0, alpha.ActualMembers)

	assert.Equal(t, 0, bravo.PreviousMembers)
	assert.Equal(t, 1, bravo.TransferredIn)
	assert.Equal(t, 1, bravo.ActualMembers)

	// Derived counts agree with a direct period-end head count.
	res := NewResolver(snap.Members, snap.Transfers)
	headCount := map[int64]int{}
	for _, m := range snap.Members {
		headCount[res.UnitAt(m.ID, period.To.End())]++
	}
	assert.Equal(t, headCount[1], alpha.ActualMembers)
	assert.Equal(t, headCount[2], bravo.ActualMembers)
}

func TestBuildMovementWarnsOnUnrecognizedCloseReason(t *testing.T) {
	discharge := date(2024, 3, 12)
	snap := &Snapshot{
		Rate: 100,
		Members: []members.Member{
			{ID: 1, Code: "M-010", UnitID: 1, Status: members.StatusClosed, CloseReason: "",
				AllotmentDate: date(2023, 1, 1), SubscriptionStartDate: date(2023, 1, 1), DischargeDate: &discharge},
		},
		Units: []units.Unit{{ID: 1, Code: "HQ", Name: "Headquarters"}},
	}
	march := Month{Year: 2024, Month: time.March}
	period := mustPeriod(t, march, march)

	report := BuildMovement(snap, period, settings.SignatureBlock{}, nil)
	require.Len(t, report.Rows, 1)
	assert.Equal(t, 1, report.Rows[0].ClosedExpiredRetired, "reasonless closures still counted")
	require.Len(t, report.Meta.Warnings, 1)
	assert.Contains(t, report.Meta.Warnings[0], "M-010")
	assert.Contains(t, report.Meta.Warnings[0], "unrecognized reason")
}
