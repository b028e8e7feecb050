// Package similarity flags hostnames that look like well-known brand domains.
//
// The base domain is approximated as the last two DNS labels. That is wrong
// for multi-label public suffixes (sub.example.co.uk yields co.uk), and the
// limitation is kept on purpose: callers relying on the result should treat
// it as a heuristic.
package similarity

import (
	"strings"
)

// DefaultMaxDistance is the largest edit distance still considered a lookalike.
const DefaultMaxDistance = 2

// Brand is a high-value reference domain.
type Brand struct {
	Name   string
	Domain string
}

// DefaultBrands is the reference list in its fixed iteration order. Ties on
// distance resolve to the earliest entry.
var DefaultBrands = []Brand{
	{Name: "google", Domain: "google.com"},
	{Name: "facebook", Domain: "facebook.com"},
	{Name: "microsoft", Domain: "microsoft.com"},
	{Name: "apple", Domain: "apple.com"},
	{Name: "paypal", Domain: "paypal.com"},
	{Name: "gov.br", Domain: "gov.br"},
	{Name: "itau", Domain: "itau.com.br"},
	{Name: "nubank", Domain: "nubank.com.br"},
}

// Match is the outcome of comparing one hostname against the brand list.
type Match struct {
	BaseDomain string
	Suspicious bool
	Brand      string
	Distance   int
}

// Matcher compares hostnames against an ordered brand list.
type Matcher struct {
	brands      []Brand
	maxDistance int
}

// NewMatcher builds a matcher over brands. A nil or empty list uses DefaultBrands.
func NewMatcher(brands []Brand, maxDistance int) *Matcher {
	if len(brands) == 0 {
		brands = DefaultBrands
	}
	if maxDistance <= 0 {
		maxDistance = DefaultMaxDistance
	}
	return &Matcher{
		brands:      append([]Brand(nil), brands...),
		maxDistance: maxDistance,
	}
}

// BaseDomain returns the last two labels of host.
func BaseDomain(host string) string {
	host = strings.TrimSuffix(strings.ToLower(host), ".")
	labels := strings.Split(host, ".")
	if len(labels) <= 2 {
		return host
	}
	return strings.Join(labels[len(labels)-2:], ".")
}

// Match finds the closest brand to host's base domain. The result is
// suspicious only when that distance is within the threshold and the base
// domain is not the brand itself.
func (m *Matcher) Match(host string) Match {
	base := BaseDomain(host)
	result := Match{BaseDomain: base}
	if base == "" || len(m.brands) == 0 {
		return result
	}

	best := -1
	bestDistance := 0
	for i, b := range m.brands {
		d := Distance(base, b.Domain)
		if best == -1 || d < bestDistance {
			best, bestDistance = i, d
		}
	}

	brand := m.brands[best]
	if bestDistance <= m.maxDistance && base != brand.Domain {
		result.Suspicious = true
		result.Brand = brand.Domain
		result.Distance = bestDistance
	}
	return result
}
