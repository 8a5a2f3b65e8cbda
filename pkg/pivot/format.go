package pivot

import (
	"strconv"

	"github.com/shopspring/decimal"
)

// FormatAmerican renders American odds with an explicit sign for positive prices
func FormatAmerican(odds int) string {
	if odds > 0 {
		return "+" + strconv.Itoa(odds)
	}
	return strconv.Itoa(odds)
}

// FormatOdds renders optional odds, blank when the side is missing
func FormatOdds(odds *int) string {
	if odds == nil {
		return ""
	}
	return FormatAmerican(*odds)
}

// FormatLine keeps the decimal places the line was written with ("10.5", "10.0", "10")
func FormatLine(line decimal.Decimal) string {
	if exp := line.Exponent(); exp < 0 {
		return line.StringFixed(-exp)
	}
	return line.String()
}
