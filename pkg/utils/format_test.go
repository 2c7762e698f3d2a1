package utils

import (
	"math"
	"testing"
)

func TestFormatLargeNumber(t *testing.T) {
	tests := []struct {
		value float64
		want  string
	}{
		{1.23e12, "1.23T"},
		{456.78e9, "456.78B"},
		{9.1e6, "9.10M"},
		{1500, "1.50K"},
		{999, "999.00"},
		{-2.5e9, "-2.50B"},
		{0, "0.00"},
	}
	for _, tt := range tests {
		if got := FormatLargeNumber(tt.value, 2); got != tt.want {
			t.Errorf("FormatLargeNumber(%v) = %q, want %q", tt.value, got, tt.want)
		}
	}
}

func TestFormatLargeNumberNaN(t *testing.T) {
	if got := FormatLargeNumber(math.NaN(), 2); got != "N/A" {
		t.Errorf("expected N/A for NaN, got %q", got)
	}
}

func TestFormatPercent(t *testing.T) {
	if got := FormatPercent(3.456, 2); got != "3.46%" {
		t.Errorf("FormatPercent = %q", got)
	}
}

func TestFormatSignedPercent(t *testing.T) {
	if got := FormatSignedPercent(5, 2); got != "+5.00%" {
		t.Errorf("positive: got %q", got)
	}
	if got := FormatSignedPercent(-8, 2); got != "-8.00%" {
		t.Errorf("negative: got %q", got)
	}
}
