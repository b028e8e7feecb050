package cmd

import (
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

func TestApplyIntDefault(t *testing.T) {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Int("rate-limit", 0, "")

	var applied int
	applyIntDefault(flags, "rate-limit", 15, func(v int) {
		applied = v
	})
	if applied != 15 {
		t.Fatalf("expected setter to receive 15, got %d", applied)
	}

	// When flag already set, setter should not run.
	if err := flags.Set("rate-limit", "7"); err != nil {
		t.Fatalf("failed to set flag: %v", err)
	}
	applied = 0
	applyIntDefault(flags, "rate-limit", 20, func(v int) {
		applied = v
	})
	if applied != 0 {
		t.Fatalf("setter should not run when flag overridden, got %d", applied)
	}
}

func TestApplyDurationDefault(t *testing.T) {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Duration("cache-ttl", 0, "")

	var applied time.Duration
	applyDurationDefault(flags, "cache-ttl", time.Minute, func(v time.Duration) {
		applied = v
	})
	if applied != time.Minute {
		t.Fatalf("expected 1m, got %s", applied)
	}

	if err := flags.Set("cache-ttl", "5s"); err != nil {
		t.Fatalf("failed to set flag: %v", err)
	}
	applied = 0
	applyDurationDefault(flags, "cache-ttl", time.Hour, func(v time.Duration) {
		applied = v
	})
	if applied != 0 {
		t.Fatalf("setter should not run when flag overridden, got %s", applied)
	}
}

func TestSetStringFlagIfUnset(t *testing.T) {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("addr", "", "")

	setStringFlagIfUnset(flags, "addr", ":9000")
	if got := flags.Lookup("addr").Value.String(); got != ":9000" {
		t.Fatalf("expected addr to be default, got %s", got)
	}

	if err := flags.Set("addr", "127.0.0.1:7000"); err != nil {
		t.Fatalf("failed to set addr: %v", err)
	}
	setStringFlagIfUnset(flags, "addr", ":9001")
	if got := flags.Lookup("addr").Value.String(); got != "127.0.0.1:7000" {
		t.Fatalf("expected addr to remain user-provided, got %s", got)
	}
}

func TestNewCLIConfigDefaults(t *testing.T) {
	cfg := newCLIConfig()
	if cfg.Scan.Timeouts.Headers != 8 || cfg.Scan.Timeouts.TLS != 15 || cfg.Scan.Timeouts.HSTS != 15 {
		t.Fatalf("unexpected timeout defaults: %+v", cfg.Scan.Timeouts)
	}
	if cfg.Scan.Timeouts.Title != 8 || cfg.Scan.Timeouts.Reputation != 8 {
		t.Fatalf("unexpected timeout defaults: %+v", cfg.Scan.Timeouts)
	}
	if cfg.Scan.CacheTTL != 0 {
		t.Fatalf("cache must be disabled by default, got %s", cfg.Scan.CacheTTL)
	}
	if cfg.Scan.APIKey != "" {
		t.Fatal("no API key by default")
	}
	if cfg.Serve.Addr != defaultServeAddr || cfg.Serve.RateLimit != defaultServeRateLimit {
		t.Fatalf("unexpected serve defaults: %+v", cfg.Serve)
	}
}

func TestContainerConfig(t *testing.T) {
	cfg := newCLIConfig().Scan
	cfg.Timeouts.TLS = 30
	cfg.APIKey = "k"

	got := cfg.containerConfig()
	if got.Timeouts.TLS != 30*time.Second || got.Timeouts.Headers != 8*time.Second {
		t.Fatalf("unexpected timeouts %+v", got.Timeouts)
	}
	if got.SafeBrowsingKey != "k" || got.ClientVersion != Version {
		t.Fatalf("unexpected credential wiring %+v", got)
	}
}

func TestApplyConfigDefaults(t *testing.T) {
	t.Cleanup(func() {
		viper.Reset()
		*cliConfig = *newCLIConfig()
	})
	*cliConfig = *newCLIConfig()

	viper.Set("timeouts.tls", 25)
	viper.Set("upstream.rate_limit", 5)
	viper.Set("upstream.observatory_url", "http://observatory.internal/api/v1")
	viper.Set("reputation.api_key", "cfg-key")
	viper.Set("hsts.poll_interval", "500ms")
	viper.Set("cache.ttl", "10m")
	viper.Set("serve.addr", "0.0.0.0:8081")
	viper.Set("serve.rate_limit", 3)
	viper.Set("serve.cors_origins", []string{"https://app.example"})
	viper.Set("serve.trust_proxy", true)

	testCmd := &cobra.Command{Use: "serve"}
	testCmd.Flags().String("addr", defaultServeAddr, "")
	testCmd.Flags().Int("rate-limit", defaultServeRateLimit, "")
	if err := testCmd.Flags().Set("rate-limit", "50"); err != nil {
		t.Fatal(err)
	}

	applyConfigDefaults(testCmd)

	scanCfg := cliConfig.Scan
	if scanCfg.Timeouts.TLS != 25 || scanCfg.Timeouts.Headers != 8 {
		t.Fatalf("unexpected timeouts %+v", scanCfg.Timeouts)
	}
	if scanCfg.UpstreamRateLimit != 5 {
		t.Fatalf("expected upstream rate limit 5, got %d", scanCfg.UpstreamRateLimit)
	}
	if scanCfg.ObservatoryURL != "http://observatory.internal/api/v1" {
		t.Fatalf("unexpected observatory URL %s", scanCfg.ObservatoryURL)
	}
	if scanCfg.APIKey != "cfg-key" {
		t.Fatalf("expected api key from config")
	}
	if scanCfg.HSTSPollInterval != 500*time.Millisecond || scanCfg.CacheTTL != 10*time.Minute {
		t.Fatalf("unexpected durations poll=%s ttl=%s", scanCfg.HSTSPollInterval, scanCfg.CacheTTL)
	}

	if got := testCmd.Flags().Lookup("addr").Value.String(); got != "0.0.0.0:8081" {
		t.Fatalf("expected addr from config, got %s", got)
	}
	if cliConfig.Serve.RateLimit != defaultServeRateLimit {
		t.Fatalf("explicit --rate-limit must win over config, got %d", cliConfig.Serve.RateLimit)
	}
	if len(cliConfig.Serve.CORSOrigins) != 1 {
		t.Fatalf("expected CORS origins from config, got %v", cliConfig.Serve.CORSOrigins)
	}
	if !cliConfig.Serve.TrustProxy {
		t.Fatal("expected trust_proxy from config")
	}
}

func TestApplyConfigDefaults_PortEnv(t *testing.T) {
	t.Cleanup(func() {
		viper.Reset()
		*cliConfig = *newCLIConfig()
	})
	viper.Set("serve.addr", "0.0.0.0:8081")
	viper.Set("serve.port", 3000)

	testCmd := &cobra.Command{Use: "serve"}
	testCmd.Flags().String("addr", defaultServeAddr, "")

	applyConfigDefaults(testCmd)

	if got := testCmd.Flags().Lookup("addr").Value.String(); got != ":3000" {
		t.Fatalf("expected PORT to win, got %s", got)
	}
}
