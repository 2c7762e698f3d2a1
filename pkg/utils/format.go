// Package utils provides common formatting helpers for GlobeTrends.
package utils

import (
	"fmt"
	"math"
)

// FormatLargeNumber formats a value with a magnitude suffix:
// 1.23T, 456.78B, 9.10M, 1.50K. Values below a thousand are printed
// plain. NaN renders as "N/A".
func FormatLargeNumber(value float64, precision int) string {
	if math.IsNaN(value) {
		return "N/A"
	}
	sign := ""
	abs := value
	if value < 0 {
		sign = "-"
		abs = -value
	}

	switch {
	case abs >= 1e12:
		return fmt.Sprintf("%s%.*fT", sign, precision, abs/1e12)
	case abs >= 1e9:
		return fmt.Sprintf("%s%.*fB", sign, precision, abs/1e9)
	case abs >= 1e6:
		return fmt.Sprintf("%s%.*fM", sign, precision, abs/1e6)
	case abs >= 1e3:
		return fmt.Sprintf("%s%.*fK", sign, precision, abs/1e3)
	default:
		return fmt.Sprintf("%s%.*f", sign, precision, abs)
	}
}

// FormatPercent formats a percentage value, e.g. 3.456 → "3.46%".
func FormatPercent(value float64, precision int) string {
	if math.IsNaN(value) {
		return "N/A"
	}
	return fmt.Sprintf("%.*f%%", precision, value)
}

// FormatSignedPercent formats a percentage with an explicit sign,
// e.g. 5 → "+5.00%", -8 → "-8.00%".
func FormatSignedPercent(value float64, precision int) string {
	if math.IsNaN(value) {
		return "N/A"
	}
	return fmt.Sprintf("%+.*f%%", precision, value)
}
