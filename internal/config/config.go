// Package config defines the PELE process configuration and its loading hooks.
//
// Values are layered: defaults from New, an optional YAML file named by
// PELE_CONFIG, then PELE_ prefixed environment variables.
package config

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects text or json log output.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// Input is the match record file scored by serve and score.
	Input string `koanf:"input"`

	// InputFormat is canonical, fbref or json.
	InputFormat string `koanf:"input_format"`

	// GroupBy lists the key fields added to player_id.
	GroupBy []string `koanf:"group_by"`

	// Standardize enables the pele_100 column.
	Standardize bool `koanf:"standardize"`

	// MinutesPower is the exponent of the minutes multiplier.
	MinutesPower float64 `koanf:"minutes_power"`

	// Workers bounds parallel aggregation. 1 runs serially.
	Workers int `koanf:"workers"`

	// RefreshIntervalSec re-reads Input and recomputes while serving. 0 disables it.
	RefreshIntervalSec int `koanf:"refresh_interval_sec"`

	// Weights overrides individual coefficients by name, e.g. w_g.
	Weights map[string]float64 `koanf:"weights"`

	// MaxLimit caps ?limit on list endpoints.
	MaxLimit int `koanf:"max_limit"`

	// RoundDigits is the precision of exported values.
	RoundDigits int `koanf:"round_digits"`

	CORSAllowOrigins   []string `koanf:"cors_allow_origins"`
	RateLimitEnabled   bool     `koanf:"rate_limit_enabled"`
	RateLimitRequests  int      `koanf:"rate_limit_requests"`
	RateLimitWindowSec int      `koanf:"rate_limit_window_sec"`

	// MaxBodyBytes caps POST /api/v1/score payloads.
	MaxBodyBytes int64 `koanf:"max_body_bytes"`

	// WebDir is served under /app when set, typically the export web directory.
	WebDir string `koanf:"web_dir"`

	// Metrics settings shape the Prometheus collectors behind /metrics.
	MetricsEnabled    bool              `koanf:"metrics_enabled"`
	MetricsNamespace  string            `koanf:"metrics_namespace"`
	MetricsSubsystem  string            `koanf:"metrics_subsystem"`
	MetricsLabels     map[string]string `koanf:"metrics_labels"`
	MetricsBuckets    []float64         `koanf:"metrics_buckets"`
	MetricsRunBuckets []float64         `koanf:"metrics_run_buckets"`
}

// New creates a Config holding the defaults.
func New() *Config {
	return &Config{
		LogLevel:           "info",
		LogFormat:          "text",
		Addr:               ":8080",
		InputFormat:        "canonical",
		GroupBy:            []string{"season"},
		Standardize:        true,
		MinutesPower:       2,
		Workers:            1,
		Weights:            map[string]float64{},
		MaxLimit:           500,
		RoundDigits:        3,
		CORSAllowOrigins:   []string{"*"},
		RateLimitEnabled:   false,
		RateLimitRequests:  100,
		RateLimitWindowSec: 1,
		MaxBodyBytes:       8 << 20,
		MetricsEnabled:     true,
		MetricsNamespace:   "pele",
		MetricsSubsystem:   "engine",
		MetricsLabels:      map[string]string{},
	}
}
