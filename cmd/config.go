package cmd

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/khanhnv2901/insec/internal/application"
)

const (
	defaultServeAddr        = "127.0.0.1:8080"
	defaultServeRateLimit   = 10
	defaultServeRateBurst   = 20
	defaultShutdownTimeout  = 30 * time.Second
	defaultServeScanTimeout = 60 * time.Second
)

// CLIConfig captures runtime configuration shared across commands.
type CLIConfig struct {
	Scan  ScanConfig
	Serve ServeConfig
}

// ScanConfig holds engine settings; values come from defaults, the config
// file and flags, in that order of precedence (lowest first).
type ScanConfig struct {
	Timeouts          TimeoutConfig
	UpstreamRateLimit int
	SSLLabsURL        string
	ObservatoryURL    string
	SafeBrowsingURL   string
	APIKey            string
	HSTSPollInterval  time.Duration
	CacheTTL          time.Duration
}

// TimeoutConfig is the per-probe budget in seconds.
type TimeoutConfig struct {
	Headers    int
	TLS        int
	HSTS       int
	Title      int
	Reputation int
}

// ServeConfig groups API server options.
type ServeConfig struct {
	Addr            string
	CORSOrigins     []string
	RateLimit       int
	RateBurst       int
	TrustProxy      bool
	ShutdownTimeout time.Duration
	ScanTimeout     time.Duration
}

var cliConfig = newCLIConfig()

func newCLIConfig() *CLIConfig {
	d := application.DefaultConfig()
	return &CLIConfig{
		Scan: ScanConfig{
			Timeouts: TimeoutConfig{
				Headers:    int(d.Timeouts.Headers / time.Second),
				TLS:        int(d.Timeouts.TLS / time.Second),
				HSTS:       int(d.Timeouts.HSTS / time.Second),
				Title:      int(d.Timeouts.Title / time.Second),
				Reputation: int(d.Timeouts.Reputation / time.Second),
			},
			UpstreamRateLimit: d.UpstreamRateLimit,
			SSLLabsURL:        d.SSLLabsURL,
			ObservatoryURL:    d.ObservatoryURL,
			SafeBrowsingURL:   d.SafeBrowsingURL,
			HSTSPollInterval:  d.HSTSPollInterval,
		},
		Serve: ServeConfig{
			Addr:            defaultServeAddr,
			CORSOrigins:     []string{},
			RateLimit:       defaultServeRateLimit,
			RateBurst:       defaultServeRateBurst,
			ShutdownTimeout: defaultShutdownTimeout,
			ScanTimeout:     defaultServeScanTimeout,
		},
	}
}

// containerConfig converts CLI settings into the application wiring config.
func (c ScanConfig) containerConfig() application.Config {
	return application.Config{
		Timeouts: application.Timeouts{
			Headers:    seconds(c.Timeouts.Headers),
			TLS:        seconds(c.Timeouts.TLS),
			HSTS:       seconds(c.Timeouts.HSTS),
			Title:      seconds(c.Timeouts.Title),
			Reputation: seconds(c.Timeouts.Reputation),
		},
		UpstreamRateLimit: c.UpstreamRateLimit,
		SSLLabsURL:        c.SSLLabsURL,
		ObservatoryURL:    c.ObservatoryURL,
		SafeBrowsingURL:   c.SafeBrowsingURL,
		SafeBrowsingKey:   c.APIKey,
		ClientVersion:     Version,
		HSTSPollInterval:  c.HSTSPollInterval,
		CacheTTL:          c.CacheTTL,
	}
}

func seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}

// applyConfigDefaults merges config file values into the runtime config when
// the user did not explicitly override the corresponding flag.
func applyConfigDefaults(cmd *cobra.Command) {
	scanCfg := &cliConfig.Scan
	serveCfg := &cliConfig.Serve

	setIntFromConfig("timeouts.headers", &scanCfg.Timeouts.Headers)
	setIntFromConfig("timeouts.tls", &scanCfg.Timeouts.TLS)
	setIntFromConfig("timeouts.hsts", &scanCfg.Timeouts.HSTS)
	setIntFromConfig("timeouts.title", &scanCfg.Timeouts.Title)
	setIntFromConfig("timeouts.reputation", &scanCfg.Timeouts.Reputation)

	setStringFromConfig("upstream.ssllabs_url", &scanCfg.SSLLabsURL)
	setStringFromConfig("upstream.observatory_url", &scanCfg.ObservatoryURL)
	setStringFromConfig("upstream.safebrowsing_url", &scanCfg.SafeBrowsingURL)
	setStringFromConfig("reputation.api_key", &scanCfg.APIKey)

	if viper.IsSet("hsts.poll_interval") {
		scanCfg.HSTSPollInterval = viper.GetDuration("hsts.poll_interval")
	}

	flags := cmd.Flags()

	if viper.IsSet("upstream.rate_limit") {
		applyIntDefault(flags, "upstream-rate-limit", viper.GetInt("upstream.rate_limit"), func(v int) {
			scanCfg.UpstreamRateLimit = v
		})
	}
	if viper.IsSet("cache.ttl") {
		applyDurationDefault(flags, "cache-ttl", viper.GetDuration("cache.ttl"), func(v time.Duration) {
			scanCfg.CacheTTL = v
		})
	}

	if viper.IsSet("serve.addr") {
		setStringFlagIfUnset(flags, "addr", viper.GetString("serve.addr"))
	}
	// PORT is how container platforms assign the listener, so it beats serve.addr.
	if port := viper.GetInt("serve.port"); port > 0 {
		setStringFlagIfUnset(flags, "addr", ":"+strconv.Itoa(port))
	}
	if viper.IsSet("serve.cors_origins") && !flags.Changed("cors-origins") {
		serveCfg.CORSOrigins = viper.GetStringSlice("serve.cors_origins")
	}
	if viper.IsSet("serve.rate_limit") {
		applyIntDefault(flags, "rate-limit", viper.GetInt("serve.rate_limit"), func(v int) {
			serveCfg.RateLimit = v
		})
	}
	if viper.IsSet("serve.rate_burst") {
		applyIntDefault(flags, "rate-burst", viper.GetInt("serve.rate_burst"), func(v int) {
			serveCfg.RateBurst = v
		})
	}
	if viper.IsSet("serve.trust_proxy") && !flags.Changed("trust-proxy") {
		serveCfg.TrustProxy = viper.GetBool("serve.trust_proxy")
	}
	if viper.IsSet("serve.scan_timeout") {
		applyDurationDefault(flags, "scan-timeout", viper.GetDuration("serve.scan_timeout"), func(v time.Duration) {
			serveCfg.ScanTimeout = v
		})
	}
}

func setIntFromConfig(key string, dst *int) {
	if viper.IsSet(key) {
		*dst = viper.GetInt(key)
	}
}

func setStringFromConfig(key string, dst *string) {
	if viper.IsSet(key) {
		*dst = viper.GetString(key)
	}
}

func applyIntDefault(flags *pflag.FlagSet, name string, value int, setter func(int)) {
	if flags == nil || setter == nil {
		return
	}
	flag := flags.Lookup(name)
	if flag != nil && flag.Changed {
		return
	}
	setter(value)
}

func applyDurationDefault(flags *pflag.FlagSet, name string, value time.Duration, setter func(time.Duration)) {
	if flags == nil || setter == nil {
		return
	}
	flag := flags.Lookup(name)
	if flag != nil && flag.Changed {
		return
	}
	setter(value)
}

func setStringFlagIfUnset(flags *pflag.FlagSet, name, value string) {
	if flags == nil {
		return
	}
	flag := flags.Lookup(name)
	if flag == nil || flag.Changed {
		return
	}
	_ = flag.Value.Set(value)
}

// describeConfigSource names where the effective configuration came from.
func describeConfigSource() string {
	if used := viper.ConfigFileUsed(); used != "" {
		return used
	}
	return fmt.Sprintf("defaults (no %s found)", "$HOME/.insec.yaml")
}
