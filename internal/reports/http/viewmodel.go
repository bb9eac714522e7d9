package http

import (
	"strconv"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// moneyPrinter renders amounts with grouping separators for the CSV exports,
// e.g. 1234567.5 -> "1,234,567.50".
var moneyPrinter = message.NewPrinter(language.English)

func formatAmount(v float64) string {
	return moneyPrinter.Sprintf("%.2f", v)
}

func formatCount(v int) string {
	return strconv.Itoa(v)
}
