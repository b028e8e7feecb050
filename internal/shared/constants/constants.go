package constants

import "time"

const (
	// HeaderProbeTimeout bounds the header fetch against the target.
	HeaderProbeTimeout = 8 * time.Second
	// TitleProbeTimeout bounds the page body fetch used for title extraction.
	TitleProbeTimeout = 8 * time.Second
	// TLSProbeTimeout bounds a single SSL Labs assessment lookup.
	TLSProbeTimeout = 15 * time.Second
	// HSTSProbeTimeout bounds trigger + poll + results against the HTTP Observatory.
	HSTSProbeTimeout = 15 * time.Second
	// ReputationProbeTimeout bounds the Safe Browsing lookup.
	ReputationProbeTimeout = 8 * time.Second
)

const (
	// MaxRedirects caps redirects followed by the target fetcher.
	MaxRedirects = 5
	// TitleBodyLimitBytes caps how much of the page we read when looking for <title>.
	TitleBodyLimitBytes = 200000
	// HeaderBodyLimitBytes caps the body drained by the header probe.
	HeaderBodyLimitBytes = 4096
	// UpstreamBodyLimitBytes caps JSON bodies read from assessment APIs.
	UpstreamBodyLimitBytes = 4 << 20
	// MaxTitleRunes is the longest page title kept in a report.
	MaxTitleRunes = 120
)

const (
	// DefaultUpstreamRateLimit is requests/second allowed per assessment API client.
	DefaultUpstreamRateLimit = 2
	// DefaultHSTSPollInterval is the delay between Observatory state polls.
	DefaultHSTSPollInterval = 2 * time.Second
	// UserAgent identifies scanner traffic to targets and upstream APIs.
	UserAgent = "insec/1.0 (+passive security signal scanner)"
)
