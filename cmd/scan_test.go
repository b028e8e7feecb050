package cmd

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/spf13/viper"

	"github.com/khanhnv2901/insec/internal/domain/scan"
	sharedErrors "github.com/khanhnv2901/insec/internal/shared/errors"
)

func TestParseRiskLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    scan.RiskLevel
		wantErr bool
	}{
		{in: "", want: ""},
		{in: "low", want: scan.RiskLow},
		{in: " HIGH ", want: scan.RiskHigh},
		{in: "critical", wantErr: true},
	}
	for _, tt := range tests {
		got, err := parseRiskLevel(tt.in)
		if (err != nil) != tt.wantErr {
			t.Fatalf("parseRiskLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Fatalf("parseRiskLevel(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRenderReport(t *testing.T) {
	disableColor(t)

	report := scan.NewReport("paypa1.com")
	report.Transport = scan.Transport{Grade: scan.StringPtr("B"), Protocols: []string{"TLS 1.2"}, Status: "READY"}
	report.HSTS = scan.HSTS{Enabled: true, MaxAgeSeconds: scan.IntPtr(300)}
	report.EdgeProvider = scan.EdgeProvider{Name: scan.ProviderNone}
	report.Server = "nginx"
	report.TechnologyHints = []string{"PHP/8.2", "server:nginx"}
	report.Reputation = scan.ReputationThreat
	report.BrandSimilarity = scan.BrandSimilarity{Suspicious: true, MatchedBrand: scan.StringPtr("paypal.com"), Distance: scan.IntPtr(1)}
	report.PageTitle = scan.StringPtr("PayPal Login")
	report.Probes = []scan.ProbeStatus{
		{Name: "headers", Available: true},
		{Name: "hsts", Available: false, Reason: "timeout"},
	}
	report = report.WithRisk(scan.Assess(report))

	var buf bytes.Buffer
	renderReport(&buf, report)
	out := buf.String()

	for _, want := range []string{
		"Security signals for paypa1.com",
		"Risk:             HIGH (score 5)",
		"transport_grade, no_edge_provider, threat_reputation, brand_lookalike",
		"grade B (TLS 1.2)",
		"enabled (max-age 300)",
		"Edge provider:    none",
		"Technology hints: PHP/8.2, server:nginx",
		"Reputation:       threat",
		"resembles paypal.com (edit distance 1)",
		"Page title:       PayPal Login",
		"hsts        unavailable (timeout)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q\n%s", want, out)
		}
	}
}

func TestRenderReport_Unavailable(t *testing.T) {
	disableColor(t)

	var buf bytes.Buffer
	renderReport(&buf, scan.NewReport("example.com"))
	out := buf.String()

	for _, want := range []string{"Transport:        unavailable", "HSTS:             disabled", "Edge provider:    unknown", "Brand lookalike:  no"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q\n%s", want, out)
		}
	}
	if strings.Contains(out, "Page title") {
		t.Error("missing title should not be printed")
	}
}

func TestScanCommandRejectsInvalidHost(t *testing.T) {
	t.Cleanup(func() {
		viper.Reset()
		rootCmd.SetArgs(nil)
	})
	t.Setenv("HOME", t.TempDir())

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs([]string{"scan", "https://"})

	err := rootCmd.Execute()
	if !errors.Is(err, sharedErrors.ErrInvalidHost) {
		t.Fatalf("expected ErrInvalidHost, got %v", err)
	}
	if exitCode(err) != exitInvalidHost {
		t.Fatalf("expected exit code %d, got %d", exitInvalidHost, exitCode(err))
	}
}

func TestScanCommandRejectsBadFailOn(t *testing.T) {
	t.Cleanup(func() {
		viper.Reset()
		rootCmd.SetArgs(nil)
		_ = scanCmd.Flags().Set("fail-on", "")
	})
	t.Setenv("HOME", t.TempDir())

	rootCmd.SetOut(&bytes.Buffer{})
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs([]string{"scan", "example.com", "--fail-on", "severe"})

	err := rootCmd.Execute()
	if err == nil || !strings.Contains(err.Error(), "invalid --fail-on") {
		t.Fatalf("expected fail-on validation error, got %v", err)
	}
}
