package application

import (
	"fmt"
	"net/url"
	"time"

	"go.uber.org/zap"

	scanapp "github.com/khanhnv2901/insec/internal/application/scan"
	"github.com/khanhnv2901/insec/internal/checker"
	"github.com/khanhnv2901/insec/internal/infrastructure/cache"
	"github.com/khanhnv2901/insec/internal/infrastructure/upstream"
	"github.com/khanhnv2901/insec/internal/similarity"
	consts "github.com/khanhnv2901/insec/internal/shared/constants"
)

// Timeouts bounds each probe. Zero values fall back to the package defaults.
type Timeouts struct {
	Headers    time.Duration
	TLS        time.Duration
	HSTS       time.Duration
	Title      time.Duration
	Reputation time.Duration
}

// Config is everything needed to assemble a scan service.
type Config struct {
	Timeouts          Timeouts
	UpstreamRateLimit int
	SSLLabsURL        string
	ObservatoryURL    string
	SafeBrowsingURL   string
	SafeBrowsingKey   string
	ClientVersion     string
	HSTSPollInterval  time.Duration
	CacheTTL          time.Duration
}

// DefaultConfig returns the configuration used when nothing is overridden.
func DefaultConfig() Config {
	return Config{
		Timeouts: Timeouts{
			Headers:    consts.HeaderProbeTimeout,
			TLS:        consts.TLSProbeTimeout,
			HSTS:       consts.HSTSProbeTimeout,
			Title:      consts.TitleProbeTimeout,
			Reputation: consts.ReputationProbeTimeout,
		},
		UpstreamRateLimit: consts.DefaultUpstreamRateLimit,
		SSLLabsURL:        upstream.DefaultSSLLabsURL,
		ObservatoryURL:    upstream.DefaultObservatoryURL,
		SafeBrowsingURL:   upstream.DefaultSafeBrowsingURL,
		HSTSPollInterval:  consts.DefaultHSTSPollInterval,
	}
}

// Container holds the wired clients, probes and services.
// This is a simple dependency injection container
type Container struct {
	// Upstream clients
	Fetcher      *upstream.HTTPFetcher
	SSLLabs      *upstream.SSLLabsClient
	Observatory  *upstream.ObservatoryClient
	SafeBrowsing *upstream.SafeBrowsingClient

	// Services
	Matcher     *similarity.Matcher
	ReportCache *cache.ReportCache
	ScanService *scanapp.Service
}

// NewContainer creates a new application service container
func NewContainer(cfg Config, logger *zap.Logger) (*Container, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	for name, raw := range map[string]string{
		"ssllabs_url":      cfg.SSLLabsURL,
		"observatory_url":  cfg.ObservatoryURL,
		"safebrowsing_url": cfg.SafeBrowsingURL,
	} {
		if err := validateBaseURL(raw); err != nil {
			return nil, fmt.Errorf("invalid upstream.%s: %w", name, err)
		}
	}

	opts := []upstream.Option{upstream.WithRateLimit(cfg.UpstreamRateLimit)}
	fetcher := upstream.NewHTTPFetcher(nil)
	sslLabs := upstream.NewSSLLabsClient(cfg.SSLLabsURL, opts...)
	observatory := upstream.NewObservatoryClient(cfg.ObservatoryURL, opts...)
	safeBrowsing := upstream.NewSafeBrowsingClient(cfg.SafeBrowsingURL, cfg.SafeBrowsingKey, cfg.ClientVersion, opts...)

	headers := checker.NewHeaderProbe(fetcher)
	tls := checker.NewTLSGradeProbe(sslLabs)
	hsts := checker.NewHSTSProbe(observatory)
	title := checker.NewTitleProbe(fetcher)
	reputation := checker.NewReputationProbe(safeBrowsing)

	applyTimeout(&headers.Timeout, cfg.Timeouts.Headers)
	applyTimeout(&tls.Timeout, cfg.Timeouts.TLS)
	applyTimeout(&hsts.Timeout, cfg.Timeouts.HSTS)
	applyTimeout(&title.Timeout, cfg.Timeouts.Title)
	applyTimeout(&reputation.Timeout, cfg.Timeouts.Reputation)
	applyTimeout(&hsts.PollInterval, cfg.HSTSPollInterval)

	if !safeBrowsing.Configured() {
		logger.Info("reputation lookups disabled: no Safe Browsing key configured")
	}

	matcher := similarity.NewMatcher(similarity.DefaultBrands, similarity.DefaultMaxDistance)
	reportCache := cache.NewReportCache(cfg.CacheTTL)

	service := scanapp.NewService(scanapp.Probes{
		Headers:    headers,
		TLS:        tls,
		HSTS:       hsts,
		Title:      title,
		Reputation: reputation,
	}, matcher,
		scanapp.WithLogger(logger),
		scanapp.WithCache(reportCache),
	)

	return &Container{
		Fetcher:      fetcher,
		SSLLabs:      sslLabs,
		Observatory:  observatory,
		SafeBrowsing: safeBrowsing,
		Matcher:      matcher,
		ReportCache:  reportCache,
		ScanService:  service,
	}, nil
}

func applyTimeout(dst *time.Duration, value time.Duration) {
	if value > 0 {
		*dst = value
	}
}

// validateBaseURL accepts an empty value (client default) or an absolute http(s) URL.
func validateBaseURL(raw string) error {
	if raw == "" {
		return nil
	}
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%q is not an absolute http(s) URL", raw)
	}
	return nil
}
