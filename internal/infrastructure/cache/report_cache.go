// Package cache keeps recently completed reports in memory so repeated
// scans of the same host within a short window skip the upstream calls.
package cache

import (
	"strings"
	"sync"
	"time"

	"github.com/khanhnv2901/insec/internal/domain/scan"
)

type entry struct {
	report   scan.Report
	storedAt time.Time
}

// ReportCache is a TTL map from canonical host to report. It is safe for
// concurrent use. A TTL of zero or less disables caching entirely.
type ReportCache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]entry
	now     func() time.Time
}

// NewReportCache creates a cache with the given TTL.
func NewReportCache(ttl time.Duration) *ReportCache {
	return &ReportCache{
		ttl:     ttl,
		entries: make(map[string]entry),
		now:     time.Now,
	}
}

// Enabled reports whether the cache stores anything.
func (c *ReportCache) Enabled() bool {
	return c != nil && c.ttl > 0
}

// Get returns a copy of the cached report for host if it has not expired.
func (c *ReportCache) Get(host string) (scan.Report, bool) {
	if !c.Enabled() {
		return scan.Report{}, false
	}
	key := cacheKey(host)

	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return scan.Report{}, false
	}

	if c.now().Sub(e.storedAt) >= c.ttl {
		c.mu.Lock()
		// Another writer may have refreshed the entry in between.
		if cur, ok := c.entries[key]; ok && cur.storedAt.Equal(e.storedAt) {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		return scan.Report{}, false
	}
	return cloneReport(e.report), true
}

// Put stores report under its host.
func (c *ReportCache) Put(report scan.Report) {
	if !c.Enabled() {
		return
	}
	c.mu.Lock()
	c.entries[cacheKey(report.Host)] = entry{report: cloneReport(report), storedAt: c.now()}
	c.mu.Unlock()
}

// Invalidate drops the entry for host and reports whether one existed.
func (c *ReportCache) Invalidate(host string) bool {
	if !c.Enabled() {
		return false
	}
	key := cacheKey(host)

	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[key]
	delete(c.entries, key)
	return ok
}

// Purge removes every entry.
func (c *ReportCache) Purge() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.entries = make(map[string]entry)
	c.mu.Unlock()
}

// Len returns the number of stored entries, expired ones included.
func (c *ReportCache) Len() int {
	if c == nil {
		return 0
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func cacheKey(host string) string {
	return strings.TrimSuffix(strings.ToLower(strings.TrimSpace(host)), ".")
}

// cloneReport copies slices and pointed-to values so callers cannot mutate
// cached state.
func cloneReport(r scan.Report) scan.Report {
	r.Transport.Grade = clonePtr(r.Transport.Grade)
	r.Transport.Protocols = append([]string{}, r.Transport.Protocols...)
	r.HSTS.MaxAgeSeconds = clonePtr(r.HSTS.MaxAgeSeconds)
	r.TechnologyHints = append([]string{}, r.TechnologyHints...)
	r.BrandSimilarity.MatchedBrand = clonePtr(r.BrandSimilarity.MatchedBrand)
	r.BrandSimilarity.Distance = clonePtr(r.BrandSimilarity.Distance)
	r.PageTitle = clonePtr(r.PageTitle)
	r.RiskFactors = append([]string{}, r.RiskFactors...)
	r.Probes = append([]scan.ProbeStatus{}, r.Probes...)
	return r
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
