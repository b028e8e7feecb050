package checker

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/khanhnv2901/insec/internal/domain/scan"
	"github.com/khanhnv2901/insec/internal/infrastructure/upstream"
	sharedErrors "github.com/khanhnv2901/insec/internal/shared/errors"
)

// Probe names as they appear in reports and logs.
const (
	ProbeHeaders    = "headers"
	ProbeTLS        = "tls"
	ProbeHSTS       = "hsts"
	ProbeTitle      = "title"
	ProbeReputation = "reputation"
)

// Probe is the interface every signal probe implements. Run must return
// within the probe's own timeout and must never panic; failures come back
// as an Unavailable result.
type Probe[T any] interface {
	// Run queries one signal source for target.
	Run(ctx context.Context, target scan.Target) Result[T]

	// Name returns the probe name used in reports and logs (e.g. "headers", "tls").
	Name() string
}

// Result is the settled outcome of a probe: a payload, or the reason the
// source was unavailable.
type Result[T any] struct {
	Probe string
	Value T
	Err   *UnavailableError
}

// Success wraps a payload.
func Success[T any](probe string, value T) Result[T] {
	return Result[T]{Probe: probe, Value: value}
}

// Unavailable wraps a failure. The zero payload is kept so callers never
// read half-filled data.
func Unavailable[T any](probe string, cause error) Result[T] {
	return Result[T]{Probe: probe, Err: NewUnavailableError(probe, cause)}
}

// OK reports whether the probe produced a payload.
func (r Result[T]) OK() bool {
	return r.Err == nil
}

// Reason returns the unavailability reason, or "" on success.
func (r Result[T]) Reason() string {
	if r.Err == nil {
		return ""
	}
	return r.Err.Reason
}

// UnavailableError describes why a probe could not produce data.
type UnavailableError struct {
	Probe  string
	Reason string
	Cause  error
}

// NewUnavailableError classifies cause into a short reason.
func NewUnavailableError(probe string, cause error) *UnavailableError {
	return &UnavailableError{Probe: probe, Reason: reasonFor(cause), Cause: cause}
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("probe %s unavailable: %s", e.Probe, e.Reason)
}

// Unwrap exposes both ErrProbeUnavailable and the underlying cause to errors.Is.
func (e *UnavailableError) Unwrap() []error {
	if e.Cause == nil {
		return []error{sharedErrors.ErrProbeUnavailable}
	}
	return []error{sharedErrors.ErrProbeUnavailable, e.Cause}
}

func reasonFor(err error) string {
	if err == nil {
		return "unknown failure"
	}

	var dnsErr *net.DNSError
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "cancelled"
	case errors.As(err, &dnsErr):
		return "dns lookup failed: " + dnsErr.Name
	}
	return err.Error()
}

// Fetcher retrieves a URL with headers and at most limit bytes of body.
type Fetcher interface {
	Fetch(ctx context.Context, url string, limit int64) (*upstream.FetchResponse, error)
}

// TLSAssessor returns the cached TLS assessment for a host.
type TLSAssessor interface {
	Analyze(ctx context.Context, host string) (*upstream.SSLLabsAssessment, error)
}

// HeaderAssessor triggers and reads header-security assessments.
type HeaderAssessor interface {
	Trigger(ctx context.Context, host string) (*upstream.ObservatoryScan, error)
	State(ctx context.Context, host string) (*upstream.ObservatoryScan, error)
	Results(ctx context.Context, scanID int) (upstream.ObservatoryResults, error)
}

// ThreatLister looks a URL up in a threat list.
type ThreatLister interface {
	Lookup(ctx context.Context, url string) ([]upstream.ThreatMatch, error)
}

// withTimeout derives the probe's own deadline. A zero timeout keeps the parent's.
func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}
