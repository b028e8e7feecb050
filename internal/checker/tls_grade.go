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

// TLSSignals is the normalized transport assessment.
type TLSSignals struct {
	Status    string
	Grade     *string
	Protocols []string
}

// TLSGradeProbe reads the cached assessment from an external TLS grader.
type TLSGradeProbe struct {
	Assessor TLSAssessor
	Timeout  time.Duration
}

// NewTLSGradeProbe creates a TLS probe with the default timeout.
func NewTLSGradeProbe(a TLSAssessor) *TLSGradeProbe {
	return &TLSGradeProbe{Assessor: a, Timeout: consts.TLSProbeTimeout}
}

// Name returns the name of this probe
func (p *TLSGradeProbe) Name() string {
	return ProbeTLS
}

// Run queries the assessment. Only a READY assessment counts as success; an
// assessment still running upstream is reported unavailable for this scan.
func (p *TLSGradeProbe) Run(ctx context.Context, target scan.Target) Result[TLSSignals] {
	ctx, cancel := withTimeout(ctx, p.Timeout)
	defer cancel()

	a, err := p.Assessor.Analyze(ctx, target.Host())
	if err != nil {
		return Unavailable[TLSSignals](p.Name(), err)
	}

	switch a.Status {
	case upstream.SSLLabsStatusReady:
	case upstream.SSLLabsStatusError:
		msg := a.StatusMessage
		if msg == "" {
			msg = "no reason given"
		}
		return Unavailable[TLSSignals](p.Name(), fmt.Errorf("%w: %s", sharedErrors.ErrAssessmentFailed, msg))
	default:
		status := a.Status
		if status == "" {
			status = "no cached assessment"
		}
		return Unavailable[TLSSignals](p.Name(), fmt.Errorf("%w: %s", sharedErrors.ErrAssessmentPending, strings.ToLower(status)))
	}

	signals := TLSSignals{Status: a.Status, Protocols: []string{}}
	if len(a.Endpoints) == 0 {
		return Success(p.Name(), signals)
	}

	ep := a.Endpoints[0]
	if ep.Grade != "" {
		grade := ep.Grade
		signals.Grade = &grade
	}
	if ep.Details != nil {
		for _, proto := range ep.Details.Protocols {
			signals.Protocols = append(signals.Protocols, strings.TrimSpace(proto.Name+" "+proto.Version))
		}
	}
	return Success(p.Name(), signals)
}
