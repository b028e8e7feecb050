// Package upstream holds the HTTP clients for the external services the
// probes consume: the target itself, SSL Labs, the HTTP Observatory and the
// Safe Browsing threat-list API.
//
// Every assessment client shares the same shape: a base URL, an *http.Client,
// and a rate.Limiter that keeps us polite toward public APIs. Waiting on the
// limiter honours the caller's context so a probe timeout also bounds the wait.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	consts "github.com/khanhnv2901/insec/internal/shared/constants"
	sharedErrors "github.com/khanhnv2901/insec/internal/shared/errors"
)

// Option configures an API client.
type Option func(*apiClient)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(a *apiClient) {
		if c != nil {
			a.httpClient = c
		}
	}
}

// WithRateLimit sets the requests/second budget for the client. Zero or less disables limiting.
func WithRateLimit(rps int) Option {
	return func(a *apiClient) {
		if rps <= 0 {
			a.limiter = nil
			return
		}
		a.limiter = rate.NewLimiter(rate.Limit(rps), rps)
	}
}

// apiClient is the shared JSON-over-HTTP plumbing for assessment APIs.
type apiClient struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	// header is added to every request; used for credentials so they stay out of URLs.
	header http.Header
}

func newAPIClient(baseURL string, opts ...Option) apiClient {
	a := apiClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 4,
				IdleConnTimeout:     30 * time.Second,
			},
		},
		limiter: rate.NewLimiter(rate.Limit(consts.DefaultUpstreamRateLimit), consts.DefaultUpstreamRateLimit),
		header:  http.Header{},
	}
	for _, opt := range opts {
		opt(&a)
	}
	return a
}

// doJSON sends a request and decodes a 2xx JSON response into out. out may be nil.
func (a *apiClient) doJSON(ctx context.Context, method, url string, body any, out any) error {
	if a.limiter != nil {
		if err := a.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter: %w", err)
		}
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", consts.UserAgent)
	for k, v := range a.header {
		req.Header[k] = v
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain a little so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("%w: %s %s returned %d", sharedErrors.ErrUnexpectedStatus, method, req.URL.Path, resp.StatusCode)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, consts.UpstreamBodyLimitBytes+1))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if len(data) > consts.UpstreamBodyLimitBytes {
		return sharedErrors.ErrResponseTooLarge
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: %v", sharedErrors.ErrDeserializationFailed, err)
	}
	return nil
}
