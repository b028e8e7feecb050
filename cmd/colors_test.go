package cmd

import (
	"testing"

	"github.com/fatih/color"

	"github.com/khanhnv2901/insec/internal/domain/scan"
)

func disableColor(t *testing.T) {
	t.Helper()
	original := color.NoColor
	color.NoColor = true
	t.Cleanup(func() {
		color.NoColor = original
	})
}

func TestFormatStatusWithColor(t *testing.T) {
	disableColor(t)

	tests := []struct {
		name   string
		status string
		want   string
	}{
		{name: "ok", status: "ok", want: "ok"},
		{name: "grade", status: "A+", want: "A+"},
		{name: "threat", status: "threat", want: "threat"},
		{name: "unknown", status: "unknown", want: "unknown"},
		{name: "other", status: "pending", want: "pending"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatStatusWithColor(tt.status); got != tt.want {
				t.Fatalf("formatStatusWithColor(%q) = %q, want %q", tt.status, got, tt.want)
			}
		})
	}
}

func TestFormatRiskWithColor(t *testing.T) {
	disableColor(t)

	for level, want := range map[scan.RiskLevel]string{
		scan.RiskLow:    "LOW",
		scan.RiskMedium: "MEDIUM",
		scan.RiskHigh:   "HIGH",
	} {
		if got := formatRiskWithColor(level); got != want {
			t.Fatalf("formatRiskWithColor(%s) = %q, want %q", level, got, want)
		}
	}
}
