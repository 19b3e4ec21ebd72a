// Package config provides configuration management for escopy using Viper.
package config

import (
	"context"
	"os"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/dataops-tools/escopy/errors"
	"github.com/dataops-tools/escopy/log"
)

// Load initializes Viper and returns the decoded Config with defaults applied.
func Load(cmd *cobra.Command) (*Config, error) {
	viper.SetEnvPrefix("ESCOPY")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if cmd.PersistentFlags() != nil {
		_ = viper.BindPFlags(cmd.PersistentFlags())
	}

	if cmd.Flags() != nil {
		_ = viper.BindPFlags(cmd.Flags())
	}

	bindEnvVars()

	var cfg Config

	err := viper.Unmarshal(&cfg, viper.DecodeHook(
		mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	))
	if err != nil {
		return nil, errors.Wrap(err, "unmarshal config")
	}

	if cfg.BatchSize == 0 {
		cfg.BatchSize = DefaultBatchSize
	}

	if cfg.ScrollKeepAlive == 0 {
		cfg.ScrollKeepAlive = DefaultScrollKeepAlive
	}

	if cfg.Parallel == 0 {
		cfg.Parallel = 1
	}

	return &cfg, nil
}

// WarnDeprecatedEnvVars logs warnings for any legacy environment variables that
// are set. The legacy names are still honored via bindEnvVars.
// Expects the logger to be initialized.
func WarnDeprecatedEnvVars(ctx context.Context) {
	deprecated := map[string]string{
		"SOURCE_HOST":     "ESCOPY_SOURCE_URL",
		"DEST_HOST":       "ESCOPY_TARGET_URL",
		"SOURCE_USERNAME": "ESCOPY_SOURCE_USERNAME",
		"SOURCE_PASSWORD": "ESCOPY_SOURCE_PASSWORD",
		"DEST_USERNAME":   "ESCOPY_TARGET_USERNAME",
		"DEST_PASSWORD":   "ESCOPY_TARGET_PASSWORD",
		"INDICES":         "ESCOPY_INDICES",
		"BATCH_SIZE":      "ESCOPY_BATCH_SIZE",
	}

	for old, replacement := range deprecated {
		if _, ok := os.LookupEnv(old); ok {
			log.Ctx(ctx).Warnf(
				"Environment variable %s is deprecated; use %s instead",
				old, replacement,
			)
		}
	}
}

func bindEnvVars() {
	_ = viper.BindEnv("source-url", "ESCOPY_SOURCE_URL", "SOURCE_HOST")
	_ = viper.BindEnv("source-username", "ESCOPY_SOURCE_USERNAME", "SOURCE_USERNAME")
	_ = viper.BindEnv("source-password", "ESCOPY_SOURCE_PASSWORD", "SOURCE_PASSWORD")

	_ = viper.BindEnv("target-url", "ESCOPY_TARGET_URL", "DEST_HOST")
	_ = viper.BindEnv("target-username", "ESCOPY_TARGET_USERNAME", "DEST_USERNAME")
	_ = viper.BindEnv("target-password", "ESCOPY_TARGET_PASSWORD", "DEST_PASSWORD")

	_ = viper.BindEnv("indices", "ESCOPY_INDICES", "INDICES")
	_ = viper.BindEnv("batch-size", "ESCOPY_BATCH_SIZE", "BATCH_SIZE")
	_ = viper.BindEnv("total-fields-limit", "ESCOPY_TOTAL_FIELDS_LIMIT", "TOTAL_FIELDS_LIMIT")
	_ = viper.BindEnv("scroll-keep-alive", "ESCOPY_SCROLL_KEEP_ALIVE")
	_ = viper.BindEnv("parallel", "ESCOPY_PARALLEL")
	_ = viper.BindEnv("metrics-port", "ESCOPY_METRICS_PORT")

	_ = viper.BindEnv("log-level", "ESCOPY_LOG_LEVEL")
	_ = viper.BindEnv("log-json", "ESCOPY_LOG_JSON")
	_ = viper.BindEnv("log-no-color", "ESCOPY_LOG_NO_COLOR")
}
