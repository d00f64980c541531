// Command pele scores football players from match records.
//
// Usage:
//
//	pele score --input matches.csv --group-by season --output pele.csv
//	pele score --input fbref.csv --format fbref --weight w_g=1.5 --top 20
//	pele import fbref fbref_export.csv --output matches.csv
//	pele export web --input matches.csv --dir web/public/data
//	pele sample --players 200 --matches 30 --seed 7 --output matches.csv
//	pele serve --input matches.csv
package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/okian/pele/internal/adapters/importer"
	"github.com/okian/pele/internal/config"
	"github.com/okian/pele/internal/domain/pele"
	"github.com/okian/pele/pkg/logger"
	"github.com/okian/pele/pkg/metrics"
)

func main() {
	// Load .env if present
	_ = godotenv.Load(".env")

	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// app carries the loaded configuration to subcommands.
type app struct {
	cfg *config.Config
	log logger.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "pele",
		Short:         "PELE player scoring engine",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd.Context())
		},
	}

	root.AddCommand(scoreCmd(a))
	root.AddCommand(importCmd(a))
	root.AddCommand(exportCmd(a))
	root.AddCommand(sampleCmd(a))
	root.AddCommand(serveCmd(a))
	return root
}

// setup loads configuration (defaults -> optional file -> env) and the
// global logger. Logs go to stderr so command output stays clean.
func (a *app) setup(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := config.Load(ctx)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := logger.Init(logger.WithFormat(cfg.LogFormat), logger.WithOutput(os.Stderr)); err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	log := logger.Named("cli")
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}
	metrics.Configure(metricsOptions(cfg)...)
	a.cfg, a.log = cfg, log
	return nil
}

func metricsOptions(cfg *config.Config) []metrics.Option {
	return []metrics.Option{
		metrics.WithMetricsEnabled(cfg.MetricsEnabled),
		metrics.WithNamespace(cfg.MetricsNamespace),
		metrics.WithSubsystem(cfg.MetricsSubsystem),
		metrics.WithCustomLabels(cfg.MetricsLabels),
		metrics.WithHistogramBuckets(cfg.MetricsBuckets),
		metrics.WithRunBuckets(cfg.MetricsRunBuckets),
	}
}

// engineFlags are the scoring settings shared by score, export and serve.
type engineFlags struct {
	input        string
	format       string
	groupBy      []string
	standardize  bool
	weights      []string
	workers      int
	minutesPower float64
}

func (f *engineFlags) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVarP(&f.input, "input", "i", "", "match records file (default: config input)")
	fl.StringVarP(&f.format, "format", "f", "", "input format: canonical, fbref or json (default: config input_format)")
	fl.StringSliceVarP(&f.groupBy, "group-by", "g", nil, "grouping fields added to player_id: season, team_id, match_id")
	fl.BoolVar(&f.standardize, "standardize", true, "emit pele_100")
	fl.StringArrayVarP(&f.weights, "weight", "w", nil, "override a coefficient, e.g. w_g=1.5 (repeatable)")
	fl.IntVar(&f.workers, "workers", 0, "aggregation partitions (default: config workers)")
	fl.Float64Var(&f.minutesPower, "minutes-power", 0, "minutes multiplier exponent (default: config minutes_power)")
}

// apply layers changed flags over the configuration.
func (f *engineFlags) apply(cmd *cobra.Command, cfg *config.Config) error {
	fl := cmd.Flags()
	if fl.Changed("input") {
		cfg.Input = f.input
	}
	if fl.Changed("format") {
		cfg.InputFormat = f.format
	}
	if fl.Changed("group-by") {
		cfg.GroupBy = f.groupBy
	}
	if fl.Changed("standardize") {
		cfg.Standardize = f.standardize
	}
	if fl.Changed("workers") {
		cfg.Workers = f.workers
	}
	if fl.Changed("minutes-power") {
		cfg.MinutesPower = f.minutesPower
	}
	overrides, err := parseWeights(f.weights)
	if err != nil {
		return err
	}
	weights := make(map[string]float64, len(cfg.Weights)+len(overrides))
	for k, v := range cfg.Weights {
		weights[k] = v
	}
	for k, v := range overrides {
		weights[k] = v
	}
	cfg.Weights = weights
	return cfg.Validate()
}

// parseWeights reads name=value pairs.
func parseWeights(pairs []string) (map[string]float64, error) {
	out := make(map[string]float64, len(pairs))
	for _, p := range pairs {
		name, value, ok := strings.Cut(p, "=")
		name = strings.ToLower(strings.TrimSpace(name))
		if !ok || name == "" {
			return nil, fmt.Errorf("weight %q: want name=value", p)
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return nil, fmt.Errorf("weight %q: %w", p, err)
		}
		out[name] = v
	}
	return out, nil
}

// engineOptions translates configuration into engine options.
func engineOptions(cfg *config.Config) []pele.Option {
	return []pele.Option{
		pele.WithGroupBy(cfg.GroupBy...),
		pele.WithStandardize(cfg.Standardize),
		pele.WithWorkers(cfg.Workers),
		pele.WithMinutesPower(cfg.MinutesPower),
		pele.WithWeightOverrides(cfg.Weights),
	}
}

// fileSource builds the configured input source.
func fileSource(cfg *config.Config) (importer.FileSource, error) {
	if cfg.Input == "" {
		return importer.FileSource{}, fmt.Errorf("%w: pass --input or set PELE_INPUT", config.ErrNoInput)
	}
	format, err := importer.ParseFormat(cfg.InputFormat)
	if err != nil {
		return importer.FileSource{}, err
	}
	return importer.FileSource{Path: cfg.Input, Format: format}, nil
}
