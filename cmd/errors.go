package cmd

import (
	"errors"
	"fmt"

	"github.com/khanhnv2901/insec/internal/domain/scan"
	sharedErrors "github.com/khanhnv2901/insec/internal/shared/errors"
)

// Process exit codes.
const (
	exitFailure     = 1
	exitInvalidHost = 2
	exitRiskTooHigh = 3
)

// RiskThresholdError signals that a scan met or exceeded the --fail-on level.
type RiskThresholdError struct {
	Host      string
	Level     scan.RiskLevel
	Threshold scan.RiskLevel
}

func (e *RiskThresholdError) Error() string {
	return fmt.Sprintf("%s risk level %s meets --fail-on threshold %s", e.Host, e.Level, e.Threshold)
}

func exitCode(err error) int {
	var riskErr *RiskThresholdError
	switch {
	case errors.As(err, &riskErr):
		return exitRiskTooHigh
	case errors.Is(err, sharedErrors.ErrInvalidHost):
		return exitInvalidHost
	}
	return exitFailure
}
