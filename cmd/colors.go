package cmd

import (
	"strings"

	"github.com/fatih/color"

	"github.com/khanhnv2901/insec/internal/domain/scan"
)

var (
	colorSuccess = color.New(color.FgGreen).SprintFunc()
	colorInfo    = color.New(color.FgCyan).SprintFunc()
	colorWarn    = color.New(color.FgYellow).SprintFunc()
	colorError   = color.New(color.FgRed).SprintFunc()
	colorBold    = color.New(color.Bold).SprintFunc()
)

func formatRiskWithColor(level scan.RiskLevel) string {
	label := strings.ToUpper(string(level))
	switch level {
	case scan.RiskLow:
		return colorSuccess(label)
	case scan.RiskMedium:
		return colorWarn(label)
	case scan.RiskHigh:
		return colorError(label)
	default:
		return label
	}
}

func formatStatusWithColor(status string) string {
	switch strings.ToLower(status) {
	case "ok", "enabled", "available", "a", "a+":
		return colorSuccess(status)
	case "threat", "error", "disabled", "unavailable":
		return colorError(status)
	case "unknown", "none":
		return colorWarn(status)
	default:
		return status
	}
}
