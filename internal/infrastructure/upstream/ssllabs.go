package upstream

import (
	"context"
	"net/http"
	"net/url"
)

// DefaultSSLLabsURL is the public SSL Labs v3 API.
const DefaultSSLLabsURL = "https://api.ssllabs.com/api/v3"

// SSL Labs assessment states.
const (
	SSLLabsStatusDNS        = "DNS"
	SSLLabsStatusInProgress = "IN_PROGRESS"
	SSLLabsStatusReady      = "READY"
	SSLLabsStatusError      = "ERROR"
)

// SSLLabsAssessment is the subset of the analyze response we consume.
type SSLLabsAssessment struct {
	Host          string            `json:"host"`
	Status        string            `json:"status"`
	StatusMessage string            `json:"statusMessage"`
	Endpoints     []SSLLabsEndpoint `json:"endpoints"`
}

// SSLLabsEndpoint is one IP endpoint of an assessment.
type SSLLabsEndpoint struct {
	IPAddress string                  `json:"ipAddress"`
	Grade     string                  `json:"grade"`
	Details   *SSLLabsEndpointDetails `json:"details"`
}

// SSLLabsEndpointDetails carries the negotiated protocol list.
type SSLLabsEndpointDetails struct {
	Protocols []SSLLabsProtocol `json:"protocols"`
}

// SSLLabsProtocol is a protocol name/version pair, e.g. TLS 1.3.
type SSLLabsProtocol struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// SSLLabsClient queries cached SSL Labs assessments.
type SSLLabsClient struct {
	apiClient
}

// NewSSLLabsClient creates a client. An empty baseURL uses DefaultSSLLabsURL.
func NewSSLLabsClient(baseURL string, opts ...Option) *SSLLabsClient {
	if baseURL == "" {
		baseURL = DefaultSSLLabsURL
	}
	return &SSLLabsClient{apiClient: newAPIClient(baseURL, opts...)}
}

// Analyze asks for the cached assessment of host without publishing results.
// The call does not wait for an in-progress assessment to finish.
func (c *SSLLabsClient) Analyze(ctx context.Context, host string) (*SSLLabsAssessment, error) {
	q := url.Values{}
	q.Set("host", host)
	q.Set("publish", "off")
	q.Set("all", "done")
	q.Set("fromCache", "on")

	var out SSLLabsAssessment
	if err := c.doJSON(ctx, http.MethodGet, c.baseURL+"/analyze?"+q.Encode(), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
