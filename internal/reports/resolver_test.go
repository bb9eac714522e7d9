package reports

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/benfund/benfund/internal/members"
	"github.com/benfund/benfund/internal/transfers"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestResolverNoTransfers(t *testing.T) {
	res := NewResolver([]members.Member{{ID: 1, UnitID: 10}}, nil)

	assert.Equal(t, int64(10), res.UnitAt(1, date(2024, 6, 1)))
	assert.Equal(t, UnitUnknown, res.UnitAt(99, date(2024, 6, 1)), "unknown member")
}

func TestResolverLatestTransferBeforeDateWins(t *testing.T) {
	ms := []members.Member{{ID: 1, UnitID: 30}}
	ts := []transfers.Transfer{
		{ID: 1, MemberID: 1, FromUnitID: 10, ToUnitID: 20, TransferDate: date(2024, 2, 10)},
		{ID: 2, MemberID: 1, FromUnitID: 20, ToUnitID: 30, TransferDate: date(2024, 5, 10)},
	}
	res := NewResolver(ms, ts)

	assert.Equal(t, int64(10), res.UnitAt(1, date(2024, 1, 1)), "before any transfer: origin of the first one")
	assert.Equal(t, int64(20), res.UnitAt(1, date(2024, 3, 1)))
	assert.Equal(t, int64(30), res.UnitAt(1, date(2024, 6, 1)))
}

func TestResolverBeforeFirstTransferUsesItsOrigin(t *testing.T) {
	// Recording a transfer moves the member's stored unit to the destination,
	// so the stored unit must not answer queries that predate the transfer.
	ms := []members.Member{{ID: 4, UnitID: 2}}
	ts := []transfers.Transfer{
		{ID: 1, MemberID: 4, FromUnitID: 1, ToUnitID: 2, TransferDate: date(2024, 2, 15)},
	}
	res := NewResolver(ms, ts)

	assert.Equal(t, int64(1), res.UnitAt(4, date(2024, 2, 10)))
	assert.Equal(t, int64(1), res.UnitAt(4, date(2024, 2, 15)), "transfer date itself is still the origin")
	assert.Equal(t, int64(2), res.UnitAt(4, date(2024, 2, 16)))
}

func TestResolverBoundaryIsExclusive(t *testing.T) {
	ms := []members.Member{{ID: 1, UnitID: 30}}
	ts := []transfers.Transfer{
		{ID: 1, MemberID: 1, FromUnitID: 10, ToUnitID: 20, TransferDate: date(2024, 2, 1)},
		{ID: 2, MemberID: 1, FromUnitID: 20, ToUnitID: 30, TransferDate: date(2024, 3, 15)},
	}
	res := NewResolver(ms, ts)

	// On the transfer date itself the member still counts against the
	// origin unit; only strictly later dates see the destination.
	assert.Equal(t, int64(20), res.UnitAt(1, date(2024, 3, 15)))
	assert.Equal(t, int64(30), res.UnitAt(1, date(2024, 3, 16)))
}

func TestResolverSameDayTieBreaksOnID(t *testing.T) {
	ms := []members.Member{{ID: 1, UnitID: 10}}
	ts := []transfers.Transfer{
		{ID: 7, MemberID: 1, FromUnitID: 20, ToUnitID: 30, TransferDate: date(2024, 4, 1)},
		{ID: 3, MemberID: 1, FromUnitID: 10, ToUnitID: 20, TransferDate: date(2024, 4, 1)},
	}
	res := NewResolver(ms, ts)

	assert.Equal(t, int64(30), res.UnitAt(1, date(2024, 4, 2)), "higher id wins on equal dates")
}

func TestResolverInsertionOrderIrrelevant(t *testing.T) {
	ms := []members.Member{{ID: 1, UnitID: 10}}
	forward := []transfers.Transfer{
		{ID: 1, MemberID: 1, FromUnitID: 10, ToUnitID: 20, TransferDate: date(2024, 1, 5)},
		{ID: 2, MemberID: 1, FromUnitID: 20, ToUnitID: 30, TransferDate: date(2024, 2, 5)},
	}
	backward := []transfers.Transfer{forward[1], forward[0]}

	asOf := date(2024, 3, 1)
	assert.Equal(t,
		NewResolver(ms, forward).UnitAt(1, asOf),
		NewResolver(ms, backward).UnitAt(1, asOf),
	)
}
