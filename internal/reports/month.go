package reports

import (
	"fmt"
	"time"
)

// Month is a calendar month without a day or time component. Reports compare
// and count months, never instants, so carrying a full timestamp around only
// invites timezone drift.
type Month struct {
	Year  int
	Month time.Month
}

// MonthOf returns the month containing t.
func MonthOf(t time.Time) Month {
	return Month{Year: t.Year(), Month: t.Month()}
}

// ParseMonth parses the 2006-01 form.
func ParseMonth(value string) (Month, error) {
	t, err := time.Parse("2006-01", value)
	if err != nil {
		return Month{}, fmt.Errorf("reports: parse month %q: %w", value, err)
	}
	return MonthOf(t), nil
}

// IsZero reports whether m is the zero value.
func (m Month) IsZero() bool {
	return m.Year == 0 && m.Month == 0
}

func (m Month) index() int {
	return m.Year*12 + int(m.Month) - 1
}

// Before reports whether m precedes other.
func (m Month) Before(other Month) bool {
	return m.index() < other.index()
}

// After reports whether m follows other.
func (m Month) After(other Month) bool {
	return m.index() > other.index()
}

// Add returns the month n months after m.
func (m Month) Add(n int) Month {
	idx := m.index() + n
	year := idx / 12
	mon := idx%12 + 1
	if mon <= 0 {
		mon += 12
		year--
	}
	return Month{Year: year, Month: time.Month(mon)}
}

// Start returns midnight UTC on the first day of the month.
func (m Month) Start() time.Time {
	return time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC)
}

// End returns midnight UTC on the last day of the month.
func (m Month) End() time.Time {
	return m.Add(1).Start().AddDate(0, 0, -1)
}

// Time returns the canonical stored representation, the 15th day UTC. The
// mid-month day keeps date-only values in the same month under any timezone
// interpretation.
func (m Month) Time() time.Time {
	return time.Date(m.Year, m.Month, 15, 0, 0, 0, 0, time.UTC)
}

// String renders the 2006-01 form.
func (m Month) String() string {
	return m.Start().Format("2006-01")
}

// Label renders a display name such as "January 2024".
func (m Month) Label() string {
	return m.Start().Format("January 2006")
}

// MonthsBetween counts whole months from a up to, but excluding, b. It is
// zero when a does not precede b.
func MonthsBetween(a, b Month) int {
	n := b.index() - a.index()
	if n < 0 {
		return 0
	}
	return n
}

// Period is an inclusive month range.
type Period struct {
	From Month
	To   Month
}

// NewPeriod validates the range ordering.
func NewPeriod(from, to Month) (Period, error) {
	if to.Before(from) {
		return Period{}, fmt.Errorf("reports: period %s to %s runs backwards", from, to)
	}
	return Period{From: from, To: to}, nil
}

// Months returns the number of whole months in the period.
func (p Period) Months() int {
	return MonthsBetween(p.From, p.To) + 1
}

// Contains reports whether m falls inside the period.
func (p Period) Contains(m Month) bool {
	return !m.Before(p.From) && !m.After(p.To)
}

// ContainsDate reports whether the date falls inside the period.
func (p Period) ContainsDate(t time.Time) bool {
	return !t.Before(p.From.Start()) && !t.After(p.To.End().Add(24*time.Hour-time.Nanosecond))
}

// Label renders a display range such as "January 2024 to March 2024".
func (p Period) Label() string {
	if p.From == p.To {
		return p.From.Label()
	}
	return p.From.Label() + " to " + p.To.Label()
}
