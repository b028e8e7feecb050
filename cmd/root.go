package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var cfgFile string
var debug bool
var logger *zap.SugaredLogger

var rootCmd = &cobra.Command{
	Use:          "insec",
	Short:        "Passive security signal scanner for public websites",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := initConfig(); err != nil {
			return err
		}

		l, err := newLogger(debug)
		if err != nil {
			return fmt.Errorf("failed to create logger: %w", err)
		}
		logger = l.Sugar()

		applyConfigDefaults(cmd)
		logger.Debugw("configuration loaded", "config_file", viper.ConfigFileUsed())
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

// initConfig wires viper to the config file and environment. A missing
// default config file is fine; an explicit --config that cannot be read is not.
func initConfig() error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath("$HOME")
		viper.SetConfigName(".insec")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("INSEC")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	_ = viper.BindEnv("reputation.api_key", "INSEC_REPUTATION_API_KEY", "GOOGLE_SAFE_BROWSING_KEY")
	_ = viper.BindEnv("serve.port", "INSEC_SERVE_PORT", "PORT")

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config: %w", err)
		}
	}
	return nil
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// zapLogger returns the structured logger for services, or a no-op before
// PersistentPreRunE has run.
func zapLogger() *zap.Logger {
	if logger == nil {
		return zap.NewNop()
	}
	return logger.Desugar()
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCode(err))
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.insec.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().IntVar(&cliConfig.Scan.UpstreamRateLimit, "upstream-rate-limit", cliConfig.Scan.UpstreamRateLimit, "requests/second per assessment API (0 = unlimited)")

	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(versionCmd)
}
