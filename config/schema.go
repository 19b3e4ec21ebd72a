package config

import (
	"time"
)

// Config holds all escopy configuration.
type Config struct {
	// SourceURL is the base URL of the source Elasticsearch cluster.
	SourceURL      string `mapstructure:"source-url"      validate:"required,url"`
	SourceUsername string `mapstructure:"source-username"`
	SourcePassword string `mapstructure:"source-password"`

	// TargetURL is the base URL of the destination Elasticsearch cluster.
	TargetURL      string `mapstructure:"target-url"      validate:"required,url"`
	TargetUsername string `mapstructure:"target-username"`
	TargetPassword string `mapstructure:"target-password"`

	// Indices is the comma-separated "source:target" work list.
	Indices string `mapstructure:"indices" validate:"required"`

	// BatchSize is the number of documents per scroll page and per bulk request.
	BatchSize int `mapstructure:"batch-size" validate:"gte=1,lte=10000"`

	// TotalFieldsLimit controls the destination index.mapping.total_fields.limit
	// setting: -1 copies the source's limit, a positive value is applied as-is,
	// 0 omits the setting.
	TotalFieldsLimit int `mapstructure:"total-fields-limit" validate:"gte=-1"`

	// ScrollKeepAlive is the scroll cursor lease duration, renewed on each page fetch.
	ScrollKeepAlive time.Duration `mapstructure:"scroll-keep-alive" validate:"mindur=10s,maxdur=1h"`

	// Parallel is the number of index pairs replicated concurrently.
	// 1 (the default) preserves strictly sequential processing.
	Parallel int `mapstructure:"parallel" validate:"gte=0,lte=32"`

	// MetricsPort exposes a Prometheus /metrics listener while the run is active.
	// 0 disables the listener.
	MetricsPort int `mapstructure:"metrics-port"`

	Log LogConfig `mapstructure:",squash"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level   string `mapstructure:"log-level"`
	JSON    bool   `mapstructure:"log-json"`
	NoColor bool   `mapstructure:"log-no-color"`
}
