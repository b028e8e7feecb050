package upstream

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	consts "github.com/khanhnv2901/insec/internal/shared/constants"
)

// FetchResponse is what a probe gets back from fetching the target.
type FetchResponse struct {
	StatusCode int
	Header     http.Header
	Cookies    []*http.Cookie
	Body       []byte
	// Truncated is set when the body was longer than the requested limit.
	Truncated bool
}

// HTTPFetcher performs plain GETs against targets, following a bounded
// number of redirects. It never validates the status code; callers decide.
type HTTPFetcher struct {
	client *http.Client
}

// NewHTTPFetcher creates a fetcher. A nil client gets a default with
// certificate verification on and a redirect cap.
func NewHTTPFetcher(client *http.Client) *HTTPFetcher {
	if client == nil {
		client = &http.Client{
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				TLSClientConfig:     &tls.Config{MinVersion: tls.VersionTLS10},
				TLSHandshakeTimeout: 5 * time.Second,
				MaxIdleConns:        20,
				IdleConnTimeout:     30 * time.Second,
			},
		}
	}
	if client.CheckRedirect == nil {
		client.CheckRedirect = limitRedirects(consts.MaxRedirects)
	}
	return &HTTPFetcher{client: client}
}

func limitRedirects(limit int) func(*http.Request, []*http.Request) error {
	return func(req *http.Request, via []*http.Request) error {
		if len(via) > limit {
			return fmt.Errorf("stopped after %d redirects", limit)
		}
		return nil
	}
}

// Fetch GETs url and reads at most limit bytes of the body. A limit of zero
// or less discards the body. The deadline comes from ctx.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string, limit int64) (*FetchResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", consts.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	out := &FetchResponse{
		StatusCode: resp.StatusCode,
		Header:     resp.Header.Clone(),
		Cookies:    resp.Cookies(),
	}

	if limit <= 0 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, consts.HeaderBodyLimitBytes))
		return out, nil
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if int64(len(body)) > limit {
		out.Truncated = true
		body = body[:limit]
	}
	out.Body = body
	return out, nil
}
