package reports

import (
	"fmt"

	"github.com/benfund/benfund/internal/members"
	"github.com/benfund/benfund/internal/payments"
)

// MemberPeriod is the per-member financial picture for a reporting period.
type MemberPeriod struct {
	// PayableMonths is the count of period months on or after the member's
	// subscription start month.
	PayableMonths   int     `json:"payable_months"`
	SubscriptionDue float64 `json:"subscription_due"`
	Arrears         float64 `json:"arrears"`
	Received        float64 `json:"received"`
	TotalPayable    float64 `json:"total_payable"`
	Balance         float64 `json:"balance"`
}

// ComputeMemberPeriod derives dues, arrears and balance for one member over
// a period. The rate is passed explicitly; the current rate applies to all
// months, past ones included, matching the fund's long-standing accounting
// practice.
//
//	SubscriptionDue = rate x period months on/after the start month
//	Arrears         = max(0, rate x months before the period - paid before)
//	Received        = paid within the period
//	TotalPayable    = SubscriptionDue + Arrears
//	Balance         = TotalPayable - Received (negative means overpaid)
func ComputeMemberPeriod(m members.Member, pays []payments.Payment, rate float64, period Period) MemberPeriod {
	startMonth := MonthOf(m.SubscriptionStartDate)

	payableMonths := 0
	if !startMonth.After(period.To) {
		effectiveFrom := period.From
		if startMonth.After(effectiveFrom) {
			effectiveFrom = startMonth
		}
		payableMonths = MonthsBetween(effectiveFrom, period.To) + 1
	}

	expectedBefore := rate * float64(MonthsBetween(startMonth, period.From))

	var receivedBefore, received float64
	periodStart := period.From.Start()
	for _, p := range pays {
		switch {
		case p.PaymentDate.Before(periodStart):
			receivedBefore += p.Amount
		case period.ContainsDate(p.PaymentDate):
			received += p.Amount
		}
	}

	arrears := expectedBefore - receivedBefore
	if arrears < 0 {
		// Overpayment before the period is not carried as a credit.
		arrears = 0
	}

	due := rate * float64(payableMonths)
	payable := due + arrears
	return MemberPeriod{
		PayableMonths:   payableMonths,
		SubscriptionDue: due,
		Arrears:         arrears,
		Received:        received,
		TotalPayable:    payable,
		Balance:         payable - received,
	}
}

// PaymentMonths counts the valid subscription months covered by a payment.
// Zero-value month stamps come from malformed historical data; the payment
// still counts by amount, it just covers no identifiable month. The returned
// warning is empty when the record is clean.
func PaymentMonths(p payments.Payment) (int, string) {
	valid := 0
	for _, m := range p.Months {
		if !m.IsZero() {
			valid++
		}
	}
	if valid < len(p.Months) {
		return valid, fmt.Sprintf("payment %d for member %d has %d unreadable month entries", p.ID, p.MemberID, len(p.Months)-valid)
	}
	return valid, ""
}
