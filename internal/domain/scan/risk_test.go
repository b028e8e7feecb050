package scan

import (
	"testing"
)

func safeReport() Report {
	r := NewReport("example.com")
	r.Transport.Grade = StringPtr("A+")
	r.Transport.Status = "READY"
	r.HSTS.Enabled = true
	r.EdgeProvider.Name = "Cloudflare"
	r.Reputation = ReputationOK
	return r
}

func TestAssess_AllClear(t *testing.T) {
	a := Assess(safeReport())
	if a.Score != 0 {
		t.Fatalf("expected score 0, got %d (%v)", a.Score, a.Factors)
	}
	if a.Level != RiskLow {
		t.Fatalf("expected low, got %s", a.Level)
	}
	if len(a.Factors) != 0 {
		t.Fatalf("expected no factors, got %v", a.Factors)
	}
}

func TestAssess_ThreatAndLookalike(t *testing.T) {
	r := safeReport()
	r.Host = "paypa1-secure.com"
	r.Reputation = ReputationThreat
	r.BrandSimilarity = BrandSimilarity{Suspicious: true, MatchedBrand: StringPtr("paypal.com"), Distance: IntPtr(1)}

	a := Assess(r)
	if a.Score < 3 {
		t.Fatalf("expected score >= 3, got %d", a.Score)
	}
	if a.Level != RiskHigh {
		t.Fatalf("expected high, got %s", a.Level)
	}
}

func TestAssess_UnknownGradeCounts(t *testing.T) {
	r := safeReport()
	r.Transport.Grade = nil
	a := Assess(r)
	if a.Score != 1 || a.Factors[0] != "transport_grade" {
		t.Fatalf("expected transport_grade only, got %d %v", a.Score, a.Factors)
	}
}

func TestAssess_UnknownProviderDoesNotCount(t *testing.T) {
	r := safeReport()
	r.EdgeProvider.Name = ProviderUnknown
	if a := Assess(r); a.Score != 0 {
		t.Fatalf("unknown provider should not add risk, got %d", a.Score)
	}
	r.EdgeProvider.Name = ProviderNone
	if a := Assess(r); a.Score != 1 {
		t.Fatalf("provider none should add 1, got %d", a.Score)
	}
}

func TestAssess_FactorsFollowRuleOrder(t *testing.T) {
	r := NewReport("worst.example")
	r.EdgeProvider.Name = ProviderNone
	r.Reputation = ReputationThreat
	r.BrandSimilarity.Suspicious = true

	a := Assess(r)
	want := []string{"transport_grade", "hsts_disabled", "no_edge_provider", "threat_reputation", "brand_lookalike"}
	if len(a.Factors) != len(want) {
		t.Fatalf("expected %d factors, got %v", len(want), a.Factors)
	}
	for i := range want {
		if a.Factors[i] != want[i] {
			t.Fatalf("factor %d = %s, want %s", i, a.Factors[i], want[i])
		}
	}
	if a.Score != 6 {
		t.Fatalf("expected score 6, got %d", a.Score)
	}
}

func TestLevelForScore(t *testing.T) {
	tests := []struct {
		score int
		want  RiskLevel
	}{
		{0, RiskLow},
		{1, RiskLow},
		{2, RiskMedium},
		{3, RiskHigh},
		{6, RiskHigh},
	}
	for _, tt := range tests {
		if got := LevelForScore(tt.score); got != tt.want {
			t.Errorf("LevelForScore(%d) = %s, want %s", tt.score, got, tt.want)
		}
	}
}

func TestAssess_Monotonic(t *testing.T) {
	degrade := []func(*Report){
		func(r *Report) { r.Transport.Grade = StringPtr("C") },
		func(r *Report) { r.HSTS.Enabled = false },
		func(r *Report) { r.EdgeProvider.Name = ProviderNone },
		func(r *Report) { r.Reputation = ReputationThreat },
		func(r *Report) { r.BrandSimilarity.Suspicious = true },
	}

	// Walk every subset of signals and check that adding one more never lowers the level.
	for mask := 0; mask < 1<<len(degrade); mask++ {
		base := safeReport()
		for i, fn := range degrade {
			if mask&(1<<i) != 0 {
				fn(&base)
			}
		}
		baseLevel := Assess(base).Level

		for i, fn := range degrade {
			if mask&(1<<i) != 0 {
				continue
			}
			worse := base
			fn(&worse)
			if got := Assess(worse).Level; !got.AtLeast(baseLevel) {
				t.Fatalf("mask %05b + signal %d lowered risk from %s to %s", mask, i, baseLevel, got)
			}
		}
	}
}

func TestWithRiskCopiesFactors(t *testing.T) {
	a := RiskAssessment{Level: RiskMedium, Score: 2, Factors: []string{"hsts_disabled", "no_edge_provider"}}
	r := NewReport("example.com").WithRisk(a)
	a.Factors[0] = "mutated"
	if r.RiskFactors[0] != "hsts_disabled" {
		t.Fatalf("report factors should not alias assessment, got %v", r.RiskFactors)
	}
	if r.RiskLevel != RiskMedium || r.RiskScore != 2 {
		t.Fatalf("unexpected risk fields: %s %d", r.RiskLevel, r.RiskScore)
	}
}
