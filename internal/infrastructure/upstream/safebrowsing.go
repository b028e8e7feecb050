package upstream

import (
	"context"
	"net/http"

	sharedErrors "github.com/khanhnv2901/insec/internal/shared/errors"
)

// DefaultSafeBrowsingURL is the Google Safe Browsing v4 API.
const DefaultSafeBrowsingURL = "https://safebrowsing.googleapis.com/v4"

// Threat types queried on every lookup.
var safeBrowsingThreatTypes = []string{
	"MALWARE",
	"SOCIAL_ENGINEERING",
	"UNWANTED_SOFTWARE",
	"POTENTIALLY_HARMFUL_APPLICATION",
}

type sbClientInfo struct {
	ClientID      string `json:"clientId"`
	ClientVersion string `json:"clientVersion"`
}

type sbThreatEntry struct {
	URL string `json:"url"`
}

type sbThreatInfo struct {
	ThreatTypes      []string        `json:"threatTypes"`
	PlatformTypes    []string        `json:"platformTypes"`
	ThreatEntryTypes []string        `json:"threatEntryTypes"`
	ThreatEntries    []sbThreatEntry `json:"threatEntries"`
}

type sbFindRequest struct {
	Client     sbClientInfo `json:"client"`
	ThreatInfo sbThreatInfo `json:"threatInfo"`
}

// ThreatMatch is one listing returned by threatMatches:find.
type ThreatMatch struct {
	ThreatType   string        `json:"threatType"`
	PlatformType string        `json:"platformType"`
	Threat       sbThreatEntry `json:"threat"`
}

type sbFindResponse struct {
	Matches []ThreatMatch `json:"matches"`
}

// SafeBrowsingClient looks URLs up in the Safe Browsing threat lists.
type SafeBrowsingClient struct {
	apiClient
	apiKey        string
	clientID      string
	clientVersion string
}

// NewSafeBrowsingClient creates a client. An empty baseURL uses DefaultSafeBrowsingURL.
func NewSafeBrowsingClient(baseURL, apiKey, clientVersion string, opts ...Option) *SafeBrowsingClient {
	if baseURL == "" {
		baseURL = DefaultSafeBrowsingURL
	}
	if clientVersion == "" {
		clientVersion = "1.0"
	}
	c := &SafeBrowsingClient{
		apiClient:     newAPIClient(baseURL, opts...),
		apiKey:        apiKey,
		clientID:      "insec",
		clientVersion: clientVersion,
	}
	if apiKey != "" {
		c.header.Set("X-Goog-Api-Key", apiKey)
	}
	return c
}

// Configured reports whether an API key is present.
func (c *SafeBrowsingClient) Configured() bool {
	return c != nil && c.apiKey != ""
}

// Lookup returns the threat matches for target. An empty slice means the URL
// is not listed.
func (c *SafeBrowsingClient) Lookup(ctx context.Context, target string) ([]ThreatMatch, error) {
	if !c.Configured() {
		return nil, sharedErrors.ErrMissingCredential
	}

	body := sbFindRequest{
		Client: sbClientInfo{ClientID: c.clientID, ClientVersion: c.clientVersion},
		ThreatInfo: sbThreatInfo{
			ThreatTypes:      safeBrowsingThreatTypes,
			PlatformTypes:    []string{"ANY_PLATFORM"},
			ThreatEntryTypes: []string{"URL"},
			ThreatEntries:    []sbThreatEntry{{URL: target}},
		},
	}

	var out sbFindResponse
	if err := c.doJSON(ctx, http.MethodPost, c.baseURL+"/threatMatches:find", body, &out); err != nil {
		return nil, err
	}
	return out.Matches, nil
}
