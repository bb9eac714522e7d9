package reports

import (
	"sort"
	"time"

	"github.com/benfund/benfund/internal/members"
	"github.com/benfund/benfund/internal/transfers"
)

// UnitUnknown is returned for members absent from the snapshot. Aggregation
// excludes it from every unit rollup.
const UnitUnknown int64 = 0

// Resolver answers point-in-time unit membership questions from the transfer
// log. It is built once per report run and then queried per member per date.
type Resolver struct {
	baseUnit map[int64]int64
	byMember map[int64][]transfers.Transfer
}

// NewResolver indexes the snapshot for point-in-time lookups. Each member's
// transfers are ordered by transfer date, then id, so that two transfers on
// the same date resolve deterministically: the higher id wins.
func NewResolver(ms []members.Member, ts []transfers.Transfer) *Resolver {
	r := &Resolver{
		baseUnit: make(map[int64]int64, len(ms)),
		byMember: make(map[int64][]transfers.Transfer),
	}
	for _, m := range ms {
		r.baseUnit[m.ID] = m.UnitID
	}
	for _, t := range ts {
		r.byMember[t.MemberID] = append(r.byMember[t.MemberID], t)
	}
	for id := range r.byMember {
		list := r.byMember[id]
		sort.Slice(list, func(i, j int) bool {
			if !list[i].TransferDate.Equal(list[j].TransferDate) {
				return list[i].TransferDate.Before(list[j].TransferDate)
			}
			return list[i].ID < list[j].ID
		})
	}
	return r
}

// UnitAt returns the unit the member belonged to as of asOf: the destination
// of the latest transfer strictly before asOf. When asOf precedes every
// transfer, the origin of the earliest transfer applies; the member's stored
// unit is used only for members with no transfer history, since the stored
// unit already reflects the latest transfer's destination. Unknown members
// resolve to UnitUnknown.
func (r *Resolver) UnitAt(memberID int64, asOf time.Time) int64 {
	base, ok := r.baseUnit[memberID]
	if !ok {
		return UnitUnknown
	}
	list := r.byMember[memberID]
	for i := len(list) - 1; i >= 0; i-- {
		if list[i].TransferDate.Before(asOf) {
			return list[i].ToUnitID
		}
	}
	if len(list) > 0 {
		return list[0].FromUnitID
	}
	return base
}
