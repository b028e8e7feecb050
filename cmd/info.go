package cmd

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/spf13/cobra"

	"github.com/khanhnv2901/insec/internal/domain/scan"
	"github.com/khanhnv2901/insec/internal/similarity"
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show effective configuration, reference brands and risk rules",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := cliConfig.Scan
		out := cmd.OutOrStdout()

		reputation := colorWarn("disabled (set GOOGLE_SAFE_BROWSING_KEY or reputation.api_key)")
		if cfg.APIKey != "" {
			reputation = colorSuccess("enabled")
		}
		cache := "disabled"
		if cfg.CacheTTL > 0 {
			cache = cfg.CacheTTL.String()
		}

		fmt.Fprintln(out, "insec configuration")
		fmt.Fprintln(out, "===================")
		fmt.Fprintln(out)
		fmt.Fprintf(out, "Platform:            %s/%s\n", runtime.GOOS, runtime.GOARCH)
		fmt.Fprintf(out, "Configuration:       %s\n", describeConfigSource())
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Upstream services:")
		fmt.Fprintf(out, "  TLS grading:       %s\n", cfg.SSLLabsURL)
		fmt.Fprintf(out, "  Header analysis:   %s\n", cfg.ObservatoryURL)
		fmt.Fprintf(out, "  Threat lists:      %s\n", cfg.SafeBrowsingURL)
		fmt.Fprintf(out, "  Rate limit:        %d req/s per service\n", cfg.UpstreamRateLimit)
		fmt.Fprintf(out, "  Reputation lookup: %s\n", reputation)
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Probe timeouts (seconds):")
		fmt.Fprintf(out, "  headers=%d tls=%d hsts=%d title=%d reputation=%d\n",
			cfg.Timeouts.Headers, cfg.Timeouts.TLS, cfg.Timeouts.HSTS, cfg.Timeouts.Title, cfg.Timeouts.Reputation)
		fmt.Fprintf(out, "  hsts poll interval: %s\n", cfg.HSTSPollInterval)
		fmt.Fprintf(out, "Report cache:        %s\n", cache)
		fmt.Fprintln(out)

		brands := make([]string, 0, len(similarity.DefaultBrands))
		for _, b := range similarity.DefaultBrands {
			brands = append(brands, b.Domain)
		}
		fmt.Fprintf(out, "Reference brands (max distance %d):\n  %s\n", similarity.DefaultMaxDistance, strings.Join(brands, ", "))
		fmt.Fprintln(out)

		fmt.Fprintln(out, "Risk rules:")
		for _, rule := range scan.RiskRules() {
			fmt.Fprintf(out, "  +%d %s\n", rule.Weight, rule.Name)
		}
		fmt.Fprintln(out, "  score <= 1 low, 2 medium, >= 3 high")
		return nil
	},
}
