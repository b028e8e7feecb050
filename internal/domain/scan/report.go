package scan

// Reputation is the normalized verdict of the threat-list lookup.
type Reputation string

const (
	ReputationOK      Reputation = "ok"
	ReputationThreat  Reputation = "threat"
	ReputationUnknown Reputation = "unknown"
	ReputationError   Reputation = "error"
)

// RiskLevel is the bounded classification derived from a report.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

const (
	// ProviderNone means the target answered but no edge fingerprint matched.
	ProviderNone = "none"
	// ProviderUnknown means the target could not be fetched.
	ProviderUnknown = "unknown"
)

const (
	// TransportUnavailable is the transport status used when the TLS probe failed.
	TransportUnavailable = "unavailable"
)

// Transport summarizes the TLS assessment.
type Transport struct {
	Grade     *string  `json:"grade"`
	Protocols []string `json:"protocols"`
	Status    string   `json:"status"`
}

// HSTS summarizes Strict-Transport-Security as seen by the header assessment.
type HSTS struct {
	Enabled       bool `json:"enabled"`
	MaxAgeSeconds *int `json:"max_age_seconds"`
}

// EdgeProvider is the WAF/CDN fronting the target.
type EdgeProvider struct {
	Name        string `json:"name"`
	RateLimited bool   `json:"rate_limited"`
}

// BrandSimilarity reports lookalike suspicion against the reference brands.
type BrandSimilarity struct {
	Suspicious   bool    `json:"suspicious"`
	MatchedBrand *string `json:"matched_brand"`
	Distance     *int    `json:"distance"`
}

// ProbeStatus records whether a probe produced data for this report.
type ProbeStatus struct {
	Name      string `json:"name"`
	Available bool   `json:"available"`
	Reason    string `json:"reason,omitempty"`
}

// Report is the aggregate of every normalized probe output. All fields are
// populated even when the underlying probe failed; failures show up as
// sentinel values and in Probes.
type Report struct {
	Host            string          `json:"host"`
	Transport       Transport       `json:"transport"`
	HSTS            HSTS            `json:"hsts"`
	EdgeProvider    EdgeProvider    `json:"edge_provider"`
	Server          string          `json:"server"`
	TechnologyHints []string        `json:"technology_hints"`
	Reputation      Reputation      `json:"reputation"`
	BrandSimilarity BrandSimilarity `json:"brand_similarity"`
	PageTitle       *string         `json:"page_title"`
	RiskLevel       RiskLevel       `json:"risk_level"`
	RiskScore       int             `json:"risk_score"`
	RiskFactors     []string        `json:"risk_factors"`
	Probes          []ProbeStatus   `json:"probes"`
}

// NewReport returns a report for host with every field set to its
// "nothing known" sentinel.
func NewReport(host string) Report {
	return Report{
		Host: host,
		Transport: Transport{
			Protocols: []string{},
			Status:    TransportUnavailable,
		},
		EdgeProvider:    EdgeProvider{Name: ProviderUnknown},
		TechnologyHints: []string{},
		Reputation:      ReputationUnknown,
		RiskFactors:     []string{},
		Probes:          []ProbeStatus{},
	}
}

// WithRisk returns a copy of r carrying the assessment's level, score and factors.
func (r Report) WithRisk(a RiskAssessment) Report {
	r.RiskLevel = a.Level
	r.RiskScore = a.Score
	r.RiskFactors = append([]string{}, a.Factors...)
	return r
}

// StringPtr is a small helper for optional string fields.
func StringPtr(s string) *string {
	return &s
}

// IntPtr is a small helper for optional int fields.
func IntPtr(i int) *int {
	return &i
}
