package cache

import (
	"sync"
	"testing"
	"time"

	"github.com/khanhnv2901/insec/internal/domain/scan"
)

func newTestCache(ttl time.Duration) (*ReportCache, *time.Time) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	c := NewReportCache(ttl)
	c.now = func() time.Time { return now }
	return c, &now
}

func TestReportCache_PutGet(t *testing.T) {
	c, _ := newTestCache(time.Minute)
	report := scan.NewReport("example.com")
	report.TechnologyHints = []string{"server:nginx"}
	c.Put(report)

	got, ok := c.Get("EXAMPLE.com.")
	if !ok {
		t.Fatal("expected cache hit")
	}
	if got.Host != "example.com" || len(got.TechnologyHints) != 1 {
		t.Fatalf("unexpected report %+v", got)
	}

	got.TechnologyHints[0] = "mutated"
	again, _ := c.Get("example.com")
	if again.TechnologyHints[0] != "server:nginx" {
		t.Fatal("cached report must not share slices with callers")
	}
}

func TestReportCache_DoesNotSharePointers(t *testing.T) {
	c, _ := newTestCache(time.Minute)
	report := scan.NewReport("paypa1.com")
	report.Transport.Grade = scan.StringPtr("A")
	report.HSTS.MaxAgeSeconds = scan.IntPtr(31536000)
	report.PageTitle = scan.StringPtr("PayPal")
	report.BrandSimilarity = scan.BrandSimilarity{
		Suspicious:   true,
		MatchedBrand: scan.StringPtr("paypal.com"),
		Distance:     scan.IntPtr(1),
	}
	c.Put(report)

	// The stored copy must not follow the caller's original.
	*report.PageTitle = "changed before read"

	got, ok := c.Get("paypa1.com")
	if !ok {
		t.Fatal("expected cache hit")
	}
	if *got.PageTitle != "PayPal" {
		t.Fatalf("Put must copy pointed-to values, got title %q", *got.PageTitle)
	}

	*got.Transport.Grade = "F"
	*got.HSTS.MaxAgeSeconds = 0
	*got.PageTitle = "mutated"
	*got.BrandSimilarity.MatchedBrand = "mutated"
	*got.BrandSimilarity.Distance = 9

	again, _ := c.Get("paypa1.com")
	if *again.Transport.Grade != "A" || *again.HSTS.MaxAgeSeconds != 31536000 || *again.PageTitle != "PayPal" {
		t.Fatalf("cached report changed through caller pointers: %+v", again)
	}
	if *again.BrandSimilarity.MatchedBrand != "paypal.com" || *again.BrandSimilarity.Distance != 1 {
		t.Fatalf("cached brand similarity changed through caller pointers: %+v", again.BrandSimilarity)
	}
}

func TestReportCache_Expires(t *testing.T) {
	c, now := newTestCache(time.Minute)
	c.Put(scan.NewReport("example.com"))

	*now = now.Add(59 * time.Second)
	if _, ok := c.Get("example.com"); !ok {
		t.Fatal("expected hit before TTL")
	}

	*now = now.Add(time.Second)
	if _, ok := c.Get("example.com"); ok {
		t.Fatal("expected miss at TTL")
	}
	if c.Len() != 0 {
		t.Fatalf("expected expired entry to be evicted, len=%d", c.Len())
	}
}

func TestReportCache_Disabled(t *testing.T) {
	c := NewReportCache(0)
	c.Put(scan.NewReport("example.com"))
	if _, ok := c.Get("example.com"); ok {
		t.Fatal("disabled cache must never hit")
	}
	if c.Enabled() {
		t.Fatal("zero TTL should disable the cache")
	}

	var nilCache *ReportCache
	if nilCache.Enabled() || nilCache.Invalidate("x") || nilCache.Len() != 0 {
		t.Fatal("nil cache should behave as disabled")
	}
	nilCache.Purge()
}

func TestReportCache_InvalidateAndPurge(t *testing.T) {
	c, _ := newTestCache(time.Hour)
	c.Put(scan.NewReport("a.example"))
	c.Put(scan.NewReport("b.example"))

	if !c.Invalidate("a.example") {
		t.Fatal("expected invalidate to report an existing entry")
	}
	if c.Invalidate("a.example") {
		t.Fatal("second invalidate should find nothing")
	}
	if _, ok := c.Get("b.example"); !ok {
		t.Fatal("unrelated entry should survive")
	}

	c.Purge()
	if c.Len() != 0 {
		t.Fatalf("expected empty cache after purge, got %d", c.Len())
	}
}

func TestReportCache_Concurrent(t *testing.T) {
	c := NewReportCache(time.Hour)
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Put(scan.NewReport("example.com"))
			c.Get("example.com")
			c.Invalidate("example.com")
		}()
	}
	wg.Wait()
}
