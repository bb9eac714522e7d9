package reports

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMonth(t *testing.T) {
	m, err := ParseMonth("2024-03")
	require.NoError(t, err)
	assert.Equal(t, 2024, m.Year)
	assert.Equal(t, time.March, m.Month)

	_, err = ParseMonth("2024-13")
	assert.Error(t, err)

	_, err = ParseMonth("март 2024")
	assert.Error(t, err)
}

func TestMonthArithmetic(t *testing.T) {
	jan := Month{Year: 2024, Month: time.January}

	assert.Equal(t, Month{Year: 2024, Month: time.December}, jan.Add(11))
	assert.Equal(t, Month{Year: 2025, Month: time.February}, jan.Add(13))
	assert.Equal(t, Month{Year: 2023, Month: time.November}, jan.Add(-2))

	assert.True(t, jan.Before(jan.Add(1)))
	assert.True(t, jan.Add(1).After(jan))
	assert.False(t, jan.Before(jan))
}

func TestMonthsBetween(t *testing.T) {
	jan := Month{Year: 2024, Month: time.January}
	mar := Month{Year: 2024, Month: time.March}

	assert.Equal(t, 2, MonthsBetween(jan, mar))
	assert.Equal(t, 0, MonthsBetween(mar, jan), "reversed span clamps to zero")
	assert.Equal(t, 0, MonthsBetween(jan, jan))
	assert.Equal(t, 12, MonthsBetween(jan, Month{Year: 2025, Month: time.January}))
}

func TestMonthBoundaries(t *testing.T) {
	feb := Month{Year: 2024, Month: time.February}

	assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), feb.Start())
	// 2024 is a leap year.
	assert.Equal(t, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), feb.End())
	assert.Equal(t, time.Date(2024, 2, 15, 0, 0, 0, 0, time.UTC), feb.Time())
	assert.Equal(t, "2024-02", feb.String())
	assert.Equal(t, "February 2024", feb.Label())
}

func TestNewPeriod(t *testing.T) {
	jan := Month{Year: 2024, Month: time.January}
	mar := Month{Year: 2024, Month: time.March}

	p, err := NewPeriod(jan, mar)
	require.NoError(t, err)
	assert.Equal(t, 3, p.Months())
	assert.Equal(t, "January 2024 to March 2024", p.Label())

	_, err = NewPeriod(mar, jan)
	assert.Error(t, err)

	single, err := NewPeriod(mar, mar)
	require.NoError(t, err)
	assert.Equal(t, 1, single.Months())
	assert.Equal(t, "March 2024", single.Label())
}

func TestPeriodContainsDate(t *testing.T) {
	p, err := NewPeriod(Month{Year: 2024, Month: time.January}, Month{Year: 2024, Month: time.March})
	require.NoError(t, err)

	assert.True(t, p.ContainsDate(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)))
	assert.True(t, p.ContainsDate(time.Date(2024, 3, 31, 23, 0, 0, 0, time.UTC)))
	assert.False(t, p.ContainsDate(time.Date(2023, 12, 31, 23, 59, 59, 0, time.UTC)))
	assert.False(t, p.ContainsDate(time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)))
}
