package reports

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benfund/benfund/internal/members"
	"github.com/benfund/benfund/internal/transfers"
	"github.com/benfund/benfund/internal/units"
)

// movementFixture builds one unit's March 2024 picture: five members present
// at the start, one enrolment, two transfers in, one transfer out and one
// retirement during the month.
func movementFixture() *Snapshot {
	open := func(id int64, unitID int64, allotment, subStart time.Time) members.Member {
		return members.Member{
			ID:                    id,
			UnitID:                unitID,
			AllotmentDate:         allotment,
			SubscriptionStartDate: subStart,
			Status:                members.StatusOpened,
		}
	}
	discharge := date(2024, 3, 25)

	ms := []members.Member{
		open(1, 1, date(2023, 6, 1), date(2024, 1, 15)),
		open(2, 1, date(2023, 6, 1), date(2024, 1, 15)),
		open(3, 1, date(2023, 6, 1), date(2024, 1, 15)),
		// Retires during March.
		{
			ID: 4, UnitID: 1,
			AllotmentDate:         date(2023, 6, 1),
			SubscriptionStartDate: date(2024, 1, 15),
			DischargeDate:         &discharge,
			Status:                members.StatusClosed,
			CloseReason:           members.ReasonRetirement,
		},
		// Transfers out to unit 2 on March 20.
		open(5, 2, date(2023, 6, 1), date(2024, 1, 15)),
		// Enrols on March 5.
		open(6, 1, date(2024, 3, 5), date(2024, 3, 5)),
		// Transfer in from unit 2 during March.
		open(7, 1, date(2023, 2, 1), date(2024, 1, 15)),
		open(8, 1, date(2023, 2, 1), date(2024, 1, 15)),
	}
	ts := []transfers.Transfer{
		{ID: 1, MemberID: 5, FromUnitID: 3, ToUnitID: 1, TransferDate: date(2023, 8, 1)},
		{ID: 2, MemberID: 7, FromUnitID: 9, ToUnitID: 2, TransferDate: date(2023, 3, 1)},
		{ID: 3, MemberID: 8, FromUnitID: 9, ToUnitID: 2, TransferDate: date(2023, 3, 1)},
		{ID: 4, MemberID: 7, FromUnitID: 2, ToUnitID: 1, TransferDate: date(2024, 3, 10)},
		{ID: 5, MemberID: 8, FromUnitID: 2, ToUnitID: 1, TransferDate: date(2024, 3, 12)},
		{ID: 6, MemberID: 5, FromUnitID: 1, ToUnitID: 2, TransferDate: date(2024, 3, 20)},
	}
	return &Snapshot{
		Rate:      100,
		Members:   ms,
		Units:     []units.Unit{{ID: 1, Code: "HQ", Name: "Headquarters"}, {ID: 2, Code: "E", Name: "East"}},
		Transfers: ts,
	}
}

func TestAggregateUnitMovementCounts(t *testing.T) {
	snap := movementFixture()
	res := NewResolver(snap.Members, snap.Transfers)
	march := Month{Year: 2024, Month: time.March}
	period := mustPeriod(t, march, march)

	row := AggregateUnit(snap.Units[0], snap, res, snap.PaymentsByMember(), period)

	assert.Equal(t, 5, row.PreviousMembers)
	assert.Equal(t, 1, row.NewMembers)
	assert.Equal(t, 2, row.TransferredIn)
	assert.Equal(t, 1, row.TransferredOut)
	assert.Equal(t, 1, row.ClosedExpiredRetired)
	assert.Equal(t, 0, row.ClosedDoubling)
	assert.Equal(t, 8, row.TotalIn)
	assert.Equal(t, 2, row.TotalOut)
	assert.Equal(t, 6, row.ActualMembers)

	require.Equal(t, row.ActualMembers,
		row.PreviousMembers+row.NewMembers+row.TransferredIn-
			row.TransferredOut-row.ClosedExpiredRetired-row.ClosedDoubling)
}

func TestAggregateUnitFinancials(t *testing.T) {
	snap := movementFixture()
	res := NewResolver(snap.Members, snap.Transfers)
	march := Month{Year: 2024, Month: time.March}
	period := mustPeriod(t, march, march)

	row := AggregateUnit(snap.Units[0], snap, res, snap.PaymentsByMember(), period)

	// Six open members resolve to the unit at period end. Five subscribed
	// since January owe two months of arrears each; the March enrolment
	// owes the current month only.
	assert.Equal(t, 600.0, row.SubscriptionDue)
	assert.Equal(t, 1000.0, row.Arrears)
	assert.Equal(t, 1600.0, row.TotalPayable)
	assert.Equal(t, 0.0, row.Received)
	assert.Equal(t, 1600.0, row.Balance)
}

func TestAggregateUnitDoublingClosuresSeparated(t *testing.T) {
	discharge := date(2024, 3, 10)
	snap := &Snapshot{
		Rate: 100,
		Members: []members.Member{{
			ID: 1, UnitID: 1,
			AllotmentDate:         date(2023, 1, 1),
			SubscriptionStartDate: date(2023, 1, 1),
			DischargeDate:         &discharge,
			Status:                members.StatusClosed,
			CloseReason:           members.ReasonDoubling,
		}},
		Units: []units.Unit{{ID: 1, Code: "HQ", Name: "Headquarters"}},
	}
	res := NewResolver(snap.Members, snap.Transfers)
	march := Month{Year: 2024, Month: time.March}
	period := mustPeriod(t, march, march)

	row := AggregateUnit(snap.Units[0], snap, res, snap.PaymentsByMember(), period)

	assert.Equal(t, 0, row.ClosedExpiredRetired)
	assert.Equal(t, 1, row.ClosedDoubling)
}

func TestAggregateUnitIdempotent(t *testing.T) {
	snap := movementFixture()
	res := NewResolver(snap.Members, snap.Transfers)
	march := Month{Year: 2024, Month: time.March}
	period := mustPeriod(t, march, march)
	pays := snap.PaymentsByMember()

	first := AggregateUnit(snap.Units[0], snap, res, pays, period)
	second := AggregateUnit(snap.Units[0], snap, res, pays, period)

	assert.Equal(t, first, second)
}
