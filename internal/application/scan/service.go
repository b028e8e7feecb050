package scan

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/khanhnv2901/insec/internal/checker"
	"github.com/khanhnv2901/insec/internal/domain/scan"
	"github.com/khanhnv2901/insec/internal/infrastructure/cache"
	"github.com/khanhnv2901/insec/internal/similarity"
	sharedErrors "github.com/khanhnv2901/insec/internal/shared/errors"
)

// BrandMatcher scores a host against the reference brand list.
type BrandMatcher interface {
	Match(host string) similarity.Match
}

// Probes is the fixed set of signal sources a scan fans out to. A nil probe
// is reported unavailable.
type Probes struct {
	Headers    checker.Probe[checker.HeaderSignals]
	TLS        checker.Probe[checker.TLSSignals]
	HSTS       checker.Probe[checker.HSTSSignals]
	Title      checker.Probe[checker.TitleSignal]
	Reputation checker.Probe[checker.ReputationSignal]
}

// Service runs the probes for one target and merges them into a report.
type Service struct {
	probes  Probes
	matcher BrandMatcher
	cache   *cache.ReportCache
	logger  *zap.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger. Nil keeps the no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithCache enables report reuse across scans of the same host.
func WithCache(c *cache.ReportCache) Option {
	return func(s *Service) {
		s.cache = c
	}
}

// NewService creates a scan service. A nil matcher uses the default brand list.
func NewService(probes Probes, matcher BrandMatcher, opts ...Option) *Service {
	if matcher == nil {
		matcher = similarity.NewMatcher(nil, similarity.DefaultMaxDistance)
	}
	s := &Service{
		probes:  probes,
		matcher: matcher,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Cache returns the report cache, or nil when none is configured.
func (s *Service) Cache() *cache.ReportCache {
	return s.cache
}

// Scan normalizes rawInput, runs every probe concurrently and returns the
// merged report. The only errors are InvalidHost and context cancellation;
// probe failures are folded into the report.
func (s *Service) Scan(ctx context.Context, rawInput string) (scan.Report, error) {
	target, err := checker.NormalizeHost(rawInput)
	if err != nil {
		return scan.Report{}, err
	}
	if err := ctx.Err(); err != nil {
		return scan.Report{}, err
	}

	if cached, ok := s.cache.Get(target.Host()); ok {
		s.logger.Debug("serving cached report", zap.String("host", target.Host()))
		return cached, nil
	}

	scanID := uuid.NewString()
	logger := s.logger.With(zap.String("scan_id", scanID), zap.String("host", target.Host()))
	start := time.Now()

	var (
		headers    checker.Result[checker.HeaderSignals]
		tls        checker.Result[checker.TLSSignals]
		hsts       checker.Result[checker.HSTSSignals]
		title      checker.Result[checker.TitleSignal]
		reputation checker.Result[checker.ReputationSignal]
	)

	// Each goroutine owns one result variable, so merge order is irrelevant.
	var g errgroup.Group
	g.Go(func() error {
		headers = runProbe(ctx, logger, checker.ProbeHeaders, s.probes.Headers, target)
		return nil
	})
	g.Go(func() error {
		tls = runProbe(ctx, logger, checker.ProbeTLS, s.probes.TLS, target)
		return nil
	})
	g.Go(func() error {
		hsts = runProbe(ctx, logger, checker.ProbeHSTS, s.probes.HSTS, target)
		return nil
	})
	g.Go(func() error {
		title = runProbe(ctx, logger, checker.ProbeTitle, s.probes.Title, target)
		return nil
	})
	g.Go(func() error {
		reputation = runProbe(ctx, logger, checker.ProbeReputation, s.probes.Reputation, target)
		return nil
	})
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		logger.Info("scan cancelled", zap.Duration("duration", time.Since(start)), zap.Error(err))
		return scan.Report{}, err
	}

	report := BuildReport(target, headers, tls, hsts, title, reputation, s.matcher.Match(target.Host()))
	report = report.WithRisk(scan.Assess(report))
	s.cache.Put(report)

	logger.Info("scan completed",
		zap.String("risk_level", string(report.RiskLevel)),
		zap.Int("risk_score", report.RiskScore),
		zap.Duration("duration", time.Since(start)),
	)
	return report, nil
}

// runProbe runs one probe and turns a missing probe or a panic into an
// Unavailable result.
func runProbe[T any](ctx context.Context, logger *zap.Logger, name string, p checker.Probe[T], target scan.Target) (res checker.Result[T]) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			res = checker.Unavailable[T](name, fmt.Errorf("%w: panic: %v", sharedErrors.ErrProbeUnavailable, r))
		}
		if res.OK() {
			logger.Debug("probe succeeded", zap.String("probe", name), zap.Duration("duration", time.Since(start)))
			return
		}
		logger.Debug("probe unavailable",
			zap.String("probe", name),
			zap.Duration("duration", time.Since(start)),
			zap.String("reason", res.Reason()),
		)
	}()

	if p == nil {
		return checker.Unavailable[T](name, fmt.Errorf("%w: not configured", sharedErrors.ErrProbeUnavailable))
	}
	res = p.Run(ctx, target)
	res.Probe = name
	return res
}

// BuildReport merges settled probe results and the similarity match into a
// report. Failed probes leave their sentinel values in place. Risk is not
// assessed here.
func BuildReport(
	target scan.Target,
	headers checker.Result[checker.HeaderSignals],
	tls checker.Result[checker.TLSSignals],
	hsts checker.Result[checker.HSTSSignals],
	title checker.Result[checker.TitleSignal],
	reputation checker.Result[checker.ReputationSignal],
	match similarity.Match,
) scan.Report {
	report := scan.NewReport(target.Host())

	if headers.OK() {
		report.Server = headers.Value.Server
		report.EdgeProvider = scan.EdgeProvider{
			Name:        headers.Value.Provider,
			RateLimited: headers.Value.RateLimited,
		}
		report.TechnologyHints = normalizeHints(headers.Value.TechnologyHints)
	}

	if tls.OK() {
		report.Transport = scan.Transport{
			Grade:     tls.Value.Grade,
			Protocols: append([]string{}, tls.Value.Protocols...),
			Status:    tls.Value.Status,
		}
	}

	if hsts.OK() {
		report.HSTS = scan.HSTS{
			Enabled:       hsts.Value.Enabled,
			MaxAgeSeconds: hsts.Value.MaxAgeSeconds,
		}
	}

	if title.OK() {
		report.PageTitle = scan.StringPtr(title.Value.Title)
	}

	report.Reputation = checker.ReputationVerdict(reputation)

	if match.Suspicious {
		report.BrandSimilarity = scan.BrandSimilarity{
			Suspicious:   true,
			MatchedBrand: scan.StringPtr(match.Brand),
			Distance:     scan.IntPtr(match.Distance),
		}
	}

	report.Probes = []scan.ProbeStatus{
		probeStatus(checker.ProbeHeaders, headers),
		probeStatus(checker.ProbeTLS, tls),
		probeStatus(checker.ProbeHSTS, hsts),
		probeStatus(checker.ProbeTitle, title),
		probeStatus(checker.ProbeReputation, reputation),
	}
	return report
}

func probeStatus[T any](name string, r checker.Result[T]) scan.ProbeStatus {
	return scan.ProbeStatus{Name: name, Available: r.OK(), Reason: r.Reason()}
}

// normalizeHints sorts and de-duplicates hints; the result is never nil.
func normalizeHints(hints []string) []string {
	out := make([]string, 0, len(hints))
	for _, h := range hints {
		if h != "" {
			out = append(out, h)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}
