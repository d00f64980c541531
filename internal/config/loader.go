package config

import (
	"context"
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/okian/pele/internal/adapters/importer"
	"github.com/okian/pele/internal/domain/model"
	"github.com/okian/pele/internal/domain/pele"
)

// Environment keys.
const (
	EnvPrefix = "PELE_"
	EnvFile   = "PELE_CONFIG"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if PELE_CONFIG is set
//  3. env (prefix PELE_)
func Load(_ context.Context) (*Config, error) {
	k := koanf.New(".")

	if path := os.Getenv(EnvFile); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
		}
	}

	if err := k.Load(env.ProviderWithValue(EnvPrefix, ".", envValue), nil); err != nil {
		return nil, fmt.Errorf("%w: env: %w", ErrLoadConfig, err)
	}

	cfg := New()
	// Lists replace the defaults rather than merging index by index.
	if k.Exists("group_by") {
		cfg.GroupBy = nil
	}
	if k.Exists("cors_allow_origins") {
		cfg.CORSAllowOrigins = nil
	}
	if k.Exists("metrics_buckets") {
		cfg.MetricsBuckets = nil
	}
	if k.Exists("metrics_run_buckets") {
		cfg.MetricsRunBuckets = nil
	}
	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// listKeys are read from comma separated env values.
var listKeys = map[string]bool{
	"group_by":            true,
	"cors_allow_origins":  true,
	"metrics_buckets":     true,
	"metrics_run_buckets": true,
}

// envValue maps PELE_MAX_LIMIT to max_limit and PELE_WEIGHTS__W_G to
// weights.w_g. List keys become slices: PELE_GROUP_BY="team_id, season".
func envValue(name, value string) (string, any) {
	key := strings.ToLower(strings.TrimPrefix(name, EnvPrefix))
	key = strings.ReplaceAll(key, "__", ".")
	if !listKeys[key] {
		return key, value
	}
	items := []string{}
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return key, items
}

// Validate reports the first invalid setting wrapped in ErrInvalidConfig.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	if _, err := importer.ParseFormat(c.InputFormat); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if _, err := model.ParseKeySpec(c.GroupBy...); err != nil {
		return fmt.Errorf("%w: group_by: %w", ErrInvalidConfig, err)
	}
	if _, err := pele.DefaultWeights().Override(c.Weights); err != nil {
		return fmt.Errorf("%w: weights: %w", ErrInvalidConfig, err)
	}
	if c.MinutesPower <= 0 || math.IsNaN(c.MinutesPower) || math.IsInf(c.MinutesPower, 0) {
		return fmt.Errorf("%w: minutes_power must be positive", ErrInvalidConfig)
	}
	if c.MaxLimit <= 0 {
		return fmt.Errorf("%w: max_limit must be positive", ErrInvalidConfig)
	}
	if c.RefreshIntervalSec < 0 {
		return fmt.Errorf("%w: refresh_interval_sec must not be negative", ErrInvalidConfig)
	}
	if c.RoundDigits < 0 {
		return fmt.Errorf("%w: round_digits must not be negative", ErrInvalidConfig)
	}
	if c.RateLimitEnabled && (c.RateLimitRequests <= 0 || c.RateLimitWindowSec <= 0) {
		return fmt.Errorf("%w: rate limit needs positive requests and window", ErrInvalidConfig)
	}
	if c.MetricsEnabled && c.MetricsNamespace == "" {
		return fmt.Errorf("%w: metrics_namespace must not be empty", ErrInvalidConfig)
	}
	for name, buckets := range map[string][]float64{
		"metrics_buckets":     c.MetricsBuckets,
		"metrics_run_buckets": c.MetricsRunBuckets,
	} {
		for _, b := range buckets {
			if b <= 0 || math.IsNaN(b) || math.IsInf(b, 0) {
				return fmt.Errorf("%w: %s must hold positive finite bounds", ErrInvalidConfig, name)
			}
		}
	}
	return nil
}
