package config

import (
	"github.com/dataops-tools/escopy/errors"
	"github.com/dataops-tools/escopy/validate"
)

// Validate validates the Config for required fields and value ranges.
func Validate(cfg *Config) error {
	err := validate.Struct(cfg)
	if err != nil {
		return err //nolint:wrapcheck
	}

	if cfg.MetricsPort != 0 && (cfg.MetricsPort < 1024 || cfg.MetricsPort > 65535) {
		return errors.New("metrics-port value is outside the supported range [1024 - 65535]")
	}

	return nil
}
