package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/khanhnv2901/insec/internal/application"
	"github.com/khanhnv2901/insec/internal/domain/scan"
	"github.com/khanhnv2901/insec/internal/security"
)

var scanCmd = &cobra.Command{
	Use:   "scan <url-or-host>",
	Short: "Collect passive security signals for a website",
	Long: `Scan queries public assessment services and the site itself, then prints
a report with a heuristic risk level. Nothing intrusive is sent to the target:
one or two ordinary GET requests.

The risk level is a heuristic, not a security guarantee.`,
	Example: `  insec scan example.com
  insec scan https://example.com/login --json
  insec scan example.com --output-dir ./reports
  insec scan paypa1.com --fail-on medium`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		jsonOut, _ := cmd.Flags().GetBool("json")
		failOn, _ := cmd.Flags().GetString("fail-on")
		outputDir, _ := cmd.Flags().GetString("output-dir")

		threshold, err := parseRiskLevel(failOn)
		if err != nil {
			return err
		}

		container, err := application.NewContainer(cliConfig.Scan.containerConfig(), zapLogger())
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		report, err := container.ScanService.Scan(ctx, args[0])
		if err != nil {
			return fmt.Errorf("cannot scan %q: %w", args[0], err)
		}

		out := cmd.OutOrStdout()
		if jsonOut {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			if err := enc.Encode(report); err != nil {
				return fmt.Errorf("failed to encode report: %w", err)
			}
		} else {
			renderReport(out, report)
		}

		if outputDir != "" {
			path, err := security.WriteJSONReport(outputDir, report.Host, report)
			if err != nil {
				return fmt.Errorf("failed to save report: %w", err)
			}
			zapLogger().Sugar().Infow("report saved", "path", path)
		}

		if threshold != "" && report.RiskLevel.AtLeast(threshold) {
			return &RiskThresholdError{Host: report.Host, Level: report.RiskLevel, Threshold: threshold}
		}
		return nil
	},
}

func init() {
	scanCmd.Flags().Bool("json", false, "print the report as JSON")
	scanCmd.Flags().String("output-dir", "", "also write the JSON report to <dir>/<host>.json")
	scanCmd.Flags().String("fail-on", "", "exit with status 3 when risk is at least this level (low, medium, high)")
}

func parseRiskLevel(s string) (scan.RiskLevel, error) {
	switch level := scan.RiskLevel(strings.ToLower(strings.TrimSpace(s))); level {
	case "":
		return "", nil
	case scan.RiskLow, scan.RiskMedium, scan.RiskHigh:
		return level, nil
	default:
		return "", fmt.Errorf("invalid --fail-on value %q (want low, medium or high)", s)
	}
}

// renderReport prints a human-readable report.
func renderReport(w io.Writer, r scan.Report) {
	fmt.Fprintf(w, "%s %s\n", colorBold("Security signals for"), colorInfo(r.Host))
	fmt.Fprintln(w, strings.Repeat("=", 21+len(r.Host)))
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Risk:             %s (score %d)\n", formatRiskWithColor(r.RiskLevel), r.RiskScore)
	if len(r.RiskFactors) > 0 {
		fmt.Fprintf(w, "Risk factors:     %s\n", strings.Join(r.RiskFactors, ", "))
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "Transport:        %s\n", describeTransport(r.Transport))
	fmt.Fprintf(w, "HSTS:             %s\n", describeHSTS(r.HSTS))
	fmt.Fprintf(w, "Edge provider:    %s\n", describeEdge(r.EdgeProvider))
	if r.Server != "" {
		fmt.Fprintf(w, "Server:           %s\n", r.Server)
	}
	if len(r.TechnologyHints) > 0 {
		fmt.Fprintf(w, "Technology hints: %s\n", strings.Join(r.TechnologyHints, ", "))
	}
	fmt.Fprintf(w, "Reputation:       %s\n", formatStatusWithColor(string(r.Reputation)))
	fmt.Fprintf(w, "Brand lookalike:  %s\n", describeBrand(r.BrandSimilarity))
	if r.PageTitle != nil {
		fmt.Fprintf(w, "Page title:       %s\n", *r.PageTitle)
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Probes:")
	for _, p := range r.Probes {
		if p.Available {
			fmt.Fprintf(w, "  %-11s %s\n", p.Name, formatStatusWithColor("ok"))
			continue
		}
		fmt.Fprintf(w, "  %-11s %s (%s)\n", p.Name, formatStatusWithColor("unavailable"), p.Reason)
	}
}

func describeTransport(t scan.Transport) string {
	if t.Status == scan.TransportUnavailable {
		return formatStatusWithColor("unavailable")
	}
	grade := "no grade"
	if t.Grade != nil {
		grade = "grade " + formatStatusWithColor(*t.Grade)
	}
	if len(t.Protocols) == 0 {
		return grade
	}
	return fmt.Sprintf("%s (%s)", grade, strings.Join(t.Protocols, ", "))
}

func describeHSTS(h scan.HSTS) string {
	if !h.Enabled {
		return formatStatusWithColor("disabled")
	}
	if h.MaxAgeSeconds == nil {
		return formatStatusWithColor("enabled")
	}
	return fmt.Sprintf("%s (max-age %s)", formatStatusWithColor("enabled"), strconv.Itoa(*h.MaxAgeSeconds))
}

func describeEdge(e scan.EdgeProvider) string {
	name := e.Name
	if name == scan.ProviderNone || name == scan.ProviderUnknown {
		name = formatStatusWithColor(name)
	}
	if e.RateLimited {
		return name + ", rate limited"
	}
	return name
}

func describeBrand(b scan.BrandSimilarity) string {
	if !b.Suspicious || b.MatchedBrand == nil {
		return "no"
	}
	distance := "?"
	if b.Distance != nil {
		distance = strconv.Itoa(*b.Distance)
	}
	return colorError(fmt.Sprintf("resembles %s (edit distance %s)", *b.MatchedBrand, distance))
}
