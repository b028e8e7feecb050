package checker

import (
	"net/http"
	"strings"

	"github.com/khanhnv2901/insec/internal/domain/scan"
)

// EdgeRule maps a header/cookie fingerprint to an edge provider.
type EdgeRule struct {
	Provider string
	Matches  func(h http.Header, cookies []*http.Cookie) bool
}

// edgeRules is evaluated in order and the first match wins.
var edgeRules = []EdgeRule{
	{Provider: "Cloudflare", Matches: anyOf(hasHeader("Cf-Ray", "Cf-Cache-Status"), hasCookiePrefix("__cf_bm", "__cfduid", "cf_clearance"))},
	{Provider: "Akamai", Matches: hasHeader("X-Akamai-Transformed", "X-Akamai-Request-Id")},
	{Provider: "Sucuri", Matches: hasHeader("X-Sucuri-Id", "X-Sucuri-Cache")},
	{Provider: "Imperva", Matches: anyOf(hasHeader("X-Iinfo"), hasCookiePrefix("incap_ses_", "visid_incap_"))},
	{Provider: "Fastly", Matches: anyOf(serverContains("fastly"), hasHeader("X-Fastly-Request-Id"))},
	{Provider: "AWS CloudFront", Matches: hasHeader("X-Amz-Cf-Id", "X-Amz-Cf-Pop")},
	{Provider: "Google Front End", Matches: serverContains("google frontend", "gws")},
	{Provider: "Netlify Edge", Matches: anyOf(serverContains("netlify"), hasHeader("X-Nf-Request-Id"))},
}

// EdgeRules returns a copy of the ordered fingerprint table.
func EdgeRules() []EdgeRule {
	return append([]EdgeRule(nil), edgeRules...)
}

// ClassifyEdge returns the first provider whose fingerprint matches, or
// scan.ProviderNone.
func ClassifyEdge(h http.Header, cookies []*http.Cookie) string {
	for _, rule := range edgeRules {
		if rule.Matches(h, cookies) {
			return rule.Provider
		}
	}
	return scan.ProviderNone
}

func hasHeader(names ...string) func(http.Header, []*http.Cookie) bool {
	return func(h http.Header, _ []*http.Cookie) bool {
		for _, name := range names {
			if h.Get(name) != "" {
				return true
			}
		}
		return false
	}
}

func serverContains(subs ...string) func(http.Header, []*http.Cookie) bool {
	return func(h http.Header, _ []*http.Cookie) bool {
		server := strings.ToLower(h.Get("Server"))
		if server == "" {
			return false
		}
		for _, sub := range subs {
			if strings.Contains(server, sub) {
				return true
			}
		}
		return false
	}
}

func hasCookiePrefix(prefixes ...string) func(http.Header, []*http.Cookie) bool {
	return func(_ http.Header, cookies []*http.Cookie) bool {
		for _, c := range cookies {
			for _, p := range prefixes {
				if strings.HasPrefix(c.Name, p) {
					return true
				}
			}
		}
		return false
	}
}

func anyOf(preds ...func(http.Header, []*http.Cookie) bool) func(http.Header, []*http.Cookie) bool {
	return func(h http.Header, cookies []*http.Cookie) bool {
		for _, p := range preds {
			if p(h, cookies) {
				return true
			}
		}
		return false
	}
}

// rateLimitHeaders signal that the target advertises request throttling.
var rateLimitHeaders = []string{"X-Ratelimit-Limit", "Ratelimit-Limit", "X-Rate-Limit-Limit"}

// HasRateLimit reports whether any rate-limit header is present.
func HasRateLimit(h http.Header) bool {
	return hasHeader(rateLimitHeaders...)(h, nil)
}

// techHeader turns an exposed header into a technology hint.
type techHeader struct {
	Header string
	Prefix string
}

var techHeaders = []techHeader{
	{Header: "X-Powered-By"},
	{Header: "Server", Prefix: "server:"},
	{Header: "X-AspNet-Version", Prefix: "asp.net:"},
	{Header: "X-Generator", Prefix: "generator:"},
}

// TechnologyHints extracts hint strings from exposed headers in table order.
func TechnologyHints(h http.Header) []string {
	hints := make([]string, 0, len(techHeaders))
	for _, th := range techHeaders {
		if v := strings.TrimSpace(h.Get(th.Header)); v != "" {
			hints = append(hints, th.Prefix+v)
		}
	}
	return hints
}
