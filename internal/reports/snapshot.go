package reports

import (
	"github.com/benfund/benfund/internal/members"
	"github.com/benfund/benfund/internal/payments"
	"github.com/benfund/benfund/internal/transfers"
	"github.com/benfund/benfund/internal/units"
)

// Snapshot is the immutable in-memory dataset a report run computes over.
// The engine never reads the database or the settings store itself; every
// invocation takes a snapshot and returns a fresh result.
type Snapshot struct {
	Rate      float64
	Members   []members.Member
	Units     []units.Unit
	Transfers []transfers.Transfer
	Payments  []payments.Payment
}

// PaymentsByMember groups the snapshot's payments per member.
func (s *Snapshot) PaymentsByMember() map[int64][]payments.Payment {
	grouped := make(map[int64][]payments.Payment)
	for _, p := range s.Payments {
		grouped[p.MemberID] = append(grouped[p.MemberID], p)
	}
	return grouped
}
