package checker

import (
	"context"
	"errors"
	"time"

	"github.com/khanhnv2901/insec/internal/domain/scan"
	consts "github.com/khanhnv2901/insec/internal/shared/constants"
	sharedErrors "github.com/khanhnv2901/insec/internal/shared/errors"
)

// ReputationSignal is the threat-list verdict for the target URL.
type ReputationSignal struct {
	Verdict     scan.Reputation
	ThreatTypes []string
}

// ReputationProbe queries a threat list, but only when a credential exists.
type ReputationProbe struct {
	Lister  ThreatLister
	Timeout time.Duration
}

// NewReputationProbe creates a reputation probe. A nil lister means no
// credential was configured.
func NewReputationProbe(l ThreatLister) *ReputationProbe {
	return &ReputationProbe{Lister: l, Timeout: consts.ReputationProbeTimeout}
}

// Name returns the name of this probe
func (p *ReputationProbe) Name() string {
	return ProbeReputation
}

// Run looks the target URL up. Without a credential the result is
// unavailable with ErrMissingCredential, which reports map to "unknown".
func (p *ReputationProbe) Run(ctx context.Context, target scan.Target) Result[ReputationSignal] {
	if !p.configured() {
		return Unavailable[ReputationSignal](p.Name(), sharedErrors.ErrMissingCredential)
	}

	ctx, cancel := withTimeout(ctx, p.Timeout)
	defer cancel()

	matches, err := p.Lister.Lookup(ctx, target.URL())
	if err != nil {
		return Unavailable[ReputationSignal](p.Name(), err)
	}
	if len(matches) == 0 {
		return Success(p.Name(), ReputationSignal{Verdict: scan.ReputationOK, ThreatTypes: []string{}})
	}

	types := make([]string, 0, len(matches))
	seen := make(map[string]bool, len(matches))
	for _, m := range matches {
		if m.ThreatType != "" && !seen[m.ThreatType] {
			seen[m.ThreatType] = true
			types = append(types, m.ThreatType)
		}
	}
	return Success(p.Name(), ReputationSignal{Verdict: scan.ReputationThreat, ThreatTypes: types})
}

// configured also honours listers that know whether they hold a key.
func (p *ReputationProbe) configured() bool {
	if p.Lister == nil {
		return false
	}
	if c, ok := p.Lister.(interface{ Configured() bool }); ok {
		return c.Configured()
	}
	return true
}

// ReputationVerdict maps a settled reputation result onto the report enum.
func ReputationVerdict(r Result[ReputationSignal]) scan.Reputation {
	if r.OK() {
		return r.Value.Verdict
	}
	if r.Err != nil && errors.Is(r.Err, sharedErrors.ErrMissingCredential) {
		return scan.ReputationUnknown
	}
	return scan.ReputationError
}
