package cmd

import (
	"errors"
	"fmt"
	"testing"

	"github.com/khanhnv2901/insec/internal/domain/scan"
	sharedErrors "github.com/khanhnv2901/insec/internal/shared/errors"
)

func TestRiskThresholdError(t *testing.T) {
	err := &RiskThresholdError{Host: "example.com", Level: scan.RiskHigh, Threshold: scan.RiskMedium}
	want := "example.com risk level high meets --fail-on threshold medium"
	if err.Error() != want {
		t.Fatalf("expected %s, got %s", want, err.Error())
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "risk", err: fmt.Errorf("scan: %w", &RiskThresholdError{Level: scan.RiskHigh}), want: exitRiskTooHigh},
		{name: "invalid host", err: fmt.Errorf("cannot scan: %w", sharedErrors.ErrInvalidHost), want: exitInvalidHost},
		{name: "other", err: errors.New("boom"), want: exitFailure},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := exitCode(tt.err); got != tt.want {
				t.Fatalf("exitCode() = %d, want %d", got, tt.want)
			}
		})
	}
}
