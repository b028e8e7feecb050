package checker

import (
	"context"
	"strings"
	"time"

	"github.com/khanhnv2901/insec/internal/domain/scan"
	consts "github.com/khanhnv2901/insec/internal/shared/constants"
)

// HeaderSignals is what the header probe learns from one GET.
type HeaderSignals struct {
	StatusCode      int
	Server          string
	Provider        string
	RateLimited     bool
	TechnologyHints []string
}

// HeaderProbe fetches the target over HTTPS and fingerprints its response headers.
type HeaderProbe struct {
	Fetcher Fetcher
	Timeout time.Duration
}

// NewHeaderProbe creates a header probe with the default timeout.
func NewHeaderProbe(f Fetcher) *HeaderProbe {
	return &HeaderProbe{Fetcher: f, Timeout: consts.HeaderProbeTimeout}
}

// Name returns the name of this probe
func (p *HeaderProbe) Name() string {
	return ProbeHeaders
}

// Run performs one GET against the target. Any status code is accepted.
func (p *HeaderProbe) Run(ctx context.Context, target scan.Target) Result[HeaderSignals] {
	ctx, cancel := withTimeout(ctx, p.Timeout)
	defer cancel()

	resp, err := p.Fetcher.Fetch(ctx, target.URL(), 0)
	if err != nil {
		return Unavailable[HeaderSignals](p.Name(), err)
	}

	server := strings.TrimSpace(resp.Header.Get("Server"))
	if server == "" {
		server = strings.TrimSpace(resp.Header.Get("Via"))
	}

	return Success(p.Name(), HeaderSignals{
		StatusCode:      resp.StatusCode,
		Server:          server,
		Provider:        ClassifyEdge(resp.Header, resp.Cookies),
		RateLimited:     HasRateLimit(resp.Header),
		TechnologyHints: TechnologyHints(resp.Header),
	})
}
