package checker

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/khanhnv2901/insec/internal/domain/scan"
	"github.com/khanhnv2901/insec/internal/infrastructure/upstream"
	consts "github.com/khanhnv2901/insec/internal/shared/constants"
	sharedErrors "github.com/khanhnv2901/insec/internal/shared/errors"
)

// hstsTestName is the Observatory test covering Strict-Transport-Security.
const hstsTestName = "strict-transport-security"

// HSTSSignals is the normalized HSTS status.
type HSTSSignals struct {
	Enabled       bool
	MaxAgeSeconds *int
}

// HSTSProbe triggers a header assessment, polls until it finishes, and
// reads the HSTS test.
type HSTSProbe struct {
	Assessor     HeaderAssessor
	Timeout      time.Duration
	PollInterval time.Duration
}

// NewHSTSProbe creates an HSTS probe with default timeout and poll interval.
func NewHSTSProbe(a HeaderAssessor) *HSTSProbe {
	return &HSTSProbe{
		Assessor:     a,
		Timeout:      consts.HSTSProbeTimeout,
		PollInterval: consts.DefaultHSTSPollInterval,
	}
}

// Name returns the name of this probe
func (p *HSTSProbe) Name() string {
	return ProbeHSTS
}

// Run triggers, polls and reads results. A scan that is not finished when
// the probe's budget runs out is reported unavailable.
func (p *HSTSProbe) Run(ctx context.Context, target scan.Target) Result[HSTSSignals] {
	ctx, cancel := withTimeout(ctx, p.Timeout)
	defer cancel()

	state, err := p.Assessor.Trigger(ctx, target.Host())
	if err != nil {
		return Unavailable[HSTSSignals](p.Name(), err)
	}
	if state.Refused() {
		// Rescans inside the cool-down window are refused; read the latest scan.
		state, err = p.Assessor.State(ctx, target.Host())
		if err != nil {
			return Unavailable[HSTSSignals](p.Name(), err)
		}
	}

	state, err = p.awaitFinished(ctx, target.Host(), state)
	if err != nil {
		return Unavailable[HSTSSignals](p.Name(), err)
	}

	results, err := p.Assessor.Results(ctx, state.ScanID)
	if err != nil {
		return Unavailable[HSTSSignals](p.Name(), err)
	}

	return Success(p.Name(), EvaluateHSTS(results))
}

func (p *HSTSProbe) awaitFinished(ctx context.Context, host string, state *upstream.ObservatoryScan) (*upstream.ObservatoryScan, error) {
	interval := p.PollInterval
	if interval <= 0 {
		interval = consts.DefaultHSTSPollInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if state.Failed() {
			reason := state.Error
			if reason == "" {
				reason = strings.ToLower(state.State)
			}
			return nil, fmt.Errorf("%w: %s", sharedErrors.ErrAssessmentFailed, reason)
		}
		if state.Finished() {
			return state, nil
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: scan not yet complete (%s)", sharedErrors.ErrAssessmentPending, strings.ToLower(state.State))
		case <-ticker.C:
		}

		next, err := p.Assessor.State(ctx, host)
		if err != nil {
			return nil, err
		}
		state = next
	}
}

// EvaluateHSTS applies the enabled rule to finished results: the HSTS test
// must be present with a non-negative score modifier, and either pass or
// describe the header as present. A missing test means HSTS is not enabled.
func EvaluateHSTS(results upstream.ObservatoryResults) HSTSSignals {
	test, ok := results[hstsTestName]
	if !ok {
		return HSTSSignals{}
	}

	enabled := test.ScoreModifier >= 0 &&
		(test.Pass || strings.Contains(test.ScoreDescription, "present"))

	var maxAge *int
	if v := test.Output.MaxAgeSeconds(); v != nil {
		age := *v
		maxAge = &age
	}
	return HSTSSignals{Enabled: enabled, MaxAgeSeconds: maxAge}
}
