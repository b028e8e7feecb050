package checker

import (
	"fmt"
	"net"
	"net/url"
	"regexp"
	"strings"

	"github.com/khanhnv2901/insec/internal/domain/scan"
	sharedErrors "github.com/khanhnv2901/insec/internal/shared/errors"
)

// InvalidHostError is returned when input cannot be turned into a hostname.
type InvalidHostError struct {
	Input  string
	Reason string
}

func (e *InvalidHostError) Error() string {
	return fmt.Sprintf("invalid host %q: %s", e.Input, e.Reason)
}

// Unwrap lets callers match with errors.Is(err, ErrInvalidHost).
func (e *InvalidHostError) Unwrap() error {
	return sharedErrors.ErrInvalidHost
}

var schemeOnlyPattern = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9+.-]*:/*$`)

// NormalizeHost parses free-form input into a scan target.
// This handles various input formats:
//   - example.com
//   - https://Example.com/path?q=1#frag
//   - example.com:8080/path
//   - //example.com
//
// The input is first parsed as an absolute URL; if that yields no scheme or
// host and the input carries no "://", it is parsed again with https://
// prepended. The host is lower-cased
// and stripped of port, path, query and fragment.
func NormalizeHost(raw string) (scan.Target, error) {
	input := strings.TrimSpace(raw)
	if input == "" {
		return scan.Target{}, &InvalidHostError{Input: raw, Reason: "empty input"}
	}
	if schemeOnlyPattern.MatchString(input) {
		return scan.Target{}, &InvalidHostError{Input: raw, Reason: "scheme without host"}
	}

	host, ok := hostFromURL(input)
	if !ok && !strings.Contains(input, "://") {
		prefix := "https://"
		if strings.HasPrefix(input, "//") {
			prefix = "https:"
		}
		host, ok = hostFromURL(prefix + input)
	}
	if !ok {
		return scan.Target{}, &InvalidHostError{Input: raw, Reason: "no parseable hostname"}
	}

	return scan.NewTarget(raw, host)
}

func hostFromURL(s string) (string, bool) {
	u, err := url.Parse(s)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", false
	}
	host := strings.ToLower(u.Hostname())
	if ip := net.ParseIP(host); ip != nil && ip.To4() == nil && !strings.HasPrefix(u.Host, "[") {
		// IPv6 literals must be bracketed.
		return "", false
	}
	if !validHostname(host) {
		return "", false
	}
	return host, true
}

// validHostname accepts IP literals and DNS names made of [a-z0-9_-] labels.
func validHostname(host string) bool {
	if host == "" || len(host) > 253 {
		return false
	}
	if net.ParseIP(host) != nil {
		return true
	}

	for _, label := range strings.Split(strings.TrimSuffix(host, "."), ".") {
		if label == "" || len(label) > 63 {
			return false
		}
		for _, c := range label {
			switch {
			case c >= 'a' && c <= 'z', c >= '0' && c <= '9', c == '-', c == '_':
			default:
				return false
			}
		}
	}
	return true
}
