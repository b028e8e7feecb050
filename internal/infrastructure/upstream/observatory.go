package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	sharedErrors "github.com/khanhnv2901/insec/internal/shared/errors"
)

// DefaultObservatoryURL is the public Mozilla HTTP Observatory v1 API.
const DefaultObservatoryURL = "https://http-observatory.security.mozilla.org/api/v1"

// Observatory scan states.
const (
	ObservatoryStateAborted  = "ABORTED"
	ObservatoryStateFailed   = "FAILED"
	ObservatoryStateFinished = "FINISHED"
	ObservatoryStatePending  = "PENDING"
	ObservatoryStateRunning  = "RUNNING"
	ObservatoryStateStarting = "STARTING"
)

// ObservatoryScan is the scan summary returned by the analyze endpoint.
type ObservatoryScan struct {
	ScanID int    `json:"scan_id"`
	State  string `json:"state"`
	Grade  string `json:"grade"`
	Error  string `json:"error"`
}

// Finished reports whether results are available for this scan.
func (s ObservatoryScan) Finished() bool {
	return s.State == ObservatoryStateFinished
}

// Failed reports whether the scan ended without results.
func (s ObservatoryScan) Failed() bool {
	return s.State == ObservatoryStateFailed || s.State == ObservatoryStateAborted || s.Error != ""
}

// Refused reports whether a trigger was turned down without a failed scan,
// e.g. "rescan-attempt-too-soon". The latest scan is still readable.
func (s ObservatoryScan) Refused() bool {
	return s.Error != "" && s.State != ObservatoryStateFailed && s.State != ObservatoryStateAborted
}

// ObservatoryTest is one test result inside getScanResults.
type ObservatoryTest struct {
	Name             string            `json:"name"`
	Pass             bool              `json:"pass"`
	Result           string            `json:"result"`
	ScoreModifier    int               `json:"score_modifier"`
	ScoreDescription string            `json:"score_description"`
	Output           ObservatoryOutput `json:"output"`
}

// ObservatoryOutput holds per-test details; only the HSTS fields are modelled.
type ObservatoryOutput struct {
	MaxAge    *int `json:"max-age"`
	MaxAgeAlt *int `json:"max_age"`
}

// MaxAgeSeconds returns whichever max-age spelling the upstream used.
func (o ObservatoryOutput) MaxAgeSeconds() *int {
	if o.MaxAge != nil {
		return o.MaxAge
	}
	return o.MaxAgeAlt
}

// ObservatoryResults maps test name to result.
type ObservatoryResults map[string]ObservatoryTest

// UnmarshalJSON accepts both the keyed object the API documents and a bare
// list of tests.
func (r *ObservatoryResults) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	out := ObservatoryResults{}
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var list []ObservatoryTest
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return err
		}
		for _, t := range list {
			out[t.Name] = t
		}
		*r = out
		return nil
	}

	var keyed map[string]ObservatoryTest
	if err := json.Unmarshal(trimmed, &keyed); err != nil {
		return err
	}
	for name, t := range keyed {
		if t.Name == "" {
			t.Name = name
		}
		out[name] = t
	}
	*r = out
	return nil
}

// ObservatoryClient triggers and reads HTTP Observatory scans.
type ObservatoryClient struct {
	apiClient
}

// NewObservatoryClient creates a client. An empty baseURL uses DefaultObservatoryURL.
func NewObservatoryClient(baseURL string, opts ...Option) *ObservatoryClient {
	if baseURL == "" {
		baseURL = DefaultObservatoryURL
	}
	return &ObservatoryClient{apiClient: newAPIClient(baseURL, opts...)}
}

// Trigger requests a (re)scan of host and returns its current state.
func (c *ObservatoryClient) Trigger(ctx context.Context, host string) (*ObservatoryScan, error) {
	q := url.Values{}
	q.Set("host", host)
	q.Set("rescan", "true")

	var out ObservatoryScan
	if err := c.doJSON(ctx, http.MethodPost, c.baseURL+"/analyze?"+q.Encode(), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// State polls the latest scan state for host.
func (c *ObservatoryClient) State(ctx context.Context, host string) (*ObservatoryScan, error) {
	q := url.Values{}
	q.Set("host", host)

	var out ObservatoryScan
	if err := c.doJSON(ctx, http.MethodGet, c.baseURL+"/analyze?"+q.Encode(), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Results fetches the per-test results of a finished scan.
func (c *ObservatoryClient) Results(ctx context.Context, scanID int) (ObservatoryResults, error) {
	if scanID <= 0 {
		return nil, fmt.Errorf("%w: missing scan id", sharedErrors.ErrAssessmentFailed)
	}
	q := url.Values{}
	q.Set("scan", strconv.Itoa(scanID))

	var out ObservatoryResults
	if err := c.doJSON(ctx, http.MethodGet, c.baseURL+"/getScanResults?"+q.Encode(), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
