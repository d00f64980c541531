// Package service wires the record source, the scoring engine and the
// results store, and implements the dependencies of the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/pele/internal/adapters/repository"
	"github.com/okian/pele/internal/domain/model"
	"github.com/okian/pele/internal/domain/pele"
	"github.com/okian/pele/pkg/logger"
	"github.com/okian/pele/pkg/metrics"
)

// Run outcomes as recorded in metrics.
const (
	outcomeSuccess     = "success"
	outcomeLoadError   = "load_error"
	outcomeSchemaError = "schema_error"
	outcomeError       = "error"
)

// Source supplies the match records of a run.
type Source interface {
	Load(ctx context.Context) ([]model.MatchRecord, error)
	Name() string
}

// RunInfo describes a completed scoring run.
type RunInfo struct {
	RunID        string         `json:"run_id"`
	Source       string         `json:"source"`
	StartedAt    time.Time      `json:"started_at"`
	FinishedAt   time.Time      `json:"finished_at"`
	DurationMS   float64        `json:"duration_ms"`
	Records      int            `json:"records"`
	Groups       int            `json:"groups"`
	GroupBy      []string       `json:"group_by"`
	Standardized bool           `json:"standardized"`
	AvgMinutes   float64        `json:"avg_minutes"`
	Mean         float64        `json:"pele_raw_mean"`
	StdDev       float64        `json:"pele_raw_std"`
	Warnings     []pele.Warning `json:"warnings"`
}

// ScoreOptions adjusts an ad-hoc scoring request. Zero values keep the
// service configuration.
type ScoreOptions struct {
	GroupBy     []string
	Standardize *bool
	Weights     map[string]float64
}

// Service runs the scoring pipeline and keeps the latest output.
type Service struct {
	mu    sync.RWMutex
	runMu sync.Mutex

	store      repository.Store
	source     Source
	engineOpts []pele.Option
	engine     *pele.Engine
	refresh    time.Duration

	started bool
	lastRun *RunInfo
	stopCh  chan struct{}

	logger logger.Logger
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{}
	for _, opt := range opts {
		opt(s)
	}
	if s.store == nil {
		s.store = repository.NewSnapshotStore()
	}
	return s
}

// Start builds the engine and runs the first scoring pass when a source is
// configured.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}
	engine, err := pele.New(s.engineOpts...)
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("build engine: %w", err)
	}
	s.engine = engine
	s.started = true
	stop := make(chan struct{})
	s.stopCh = stop
	s.mu.Unlock()

	s.logger.Info(ctx, "starting scoring service",
		logger.Any("group_by", engine.GroupBy().Strings()),
		logger.Bool("standardize", engine.Standardized()),
	)

	if s.source == nil {
		return nil
	}
	if _, err := s.Recompute(ctx); err != nil {
		s.Stop()
		return err
	}
	if s.refresh > 0 {
		go s.refreshLoop(ctx, stop)
	}
	return nil
}

// Stop ends the refresh loop. Stored output stays readable.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	close(s.stopCh)
	s.started = false
	s.logger.Info(context.Background(), "scoring service stopped")
}

func (s *Service) refreshLoop(ctx context.Context, stop <-chan struct{}) {
	ticker := time.NewTicker(s.refresh)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-stop:
			return
		case <-ticker.C:
			if _, err := s.Recompute(ctx); err != nil {
				s.logger.Warn(ctx, "scheduled recompute failed; keeping previous output", logger.Error(err))
			}
		}
	}
}

func (s *Service) current() (*pele.Engine, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return nil, ErrNotStarted
	}
	return s.engine, nil
}

// Recompute loads records from the source, scores them and replaces the
// stored output. On failure the previous output stays in place.
func (s *Service) Recompute(ctx context.Context) (RunInfo, error) {
	engine, err := s.current()
	if err != nil {
		return RunInfo{}, err
	}
	if s.source == nil {
		return RunInfo{}, ErrNoSource
	}

	s.runMu.Lock()
	defer s.runMu.Unlock()

	info := RunInfo{
		RunID:        uuid.NewString(),
		Source:       s.source.Name(),
		StartedAt:    time.Now().UTC(),
		GroupBy:      engine.GroupBy().Strings(),
		Standardized: engine.Standardized(),
	}
	log := s.logger.Named("run")

	records, err := s.source.Load(ctx)
	if err != nil {
		s.fail(ctx, &info, outcomeLoadError, err)
		return info, fmt.Errorf("load records: %w", err)
	}
	info.Records = len(records)
	metrics.RecordRecordsIngested(len(records))

	res, err := engine.Run(records)
	if err != nil {
		outcome := outcomeError
		var se *pele.SchemaError
		if errors.As(err, &se) {
			outcome = outcomeSchemaError
			metrics.RecordSchemaError(se.Field)
		}
		s.fail(ctx, &info, outcome, err)
		return info, err
	}
	if err := ctx.Err(); err != nil {
		s.fail(ctx, &info, outcomeError, err)
		return info, err
	}

	for _, w := range res.Warnings {
		metrics.RecordWarning(string(w.Kind))
		log.Warn(ctx, w.Message,
			logger.String("run_id", info.RunID),
			logger.String("kind", string(w.Kind)),
			logger.String("key", w.Key),
		)
	}

	if err := s.store.Replace(ctx, res.Players); err != nil {
		s.fail(ctx, &info, outcomeError, err)
		return info, fmt.Errorf("replace results: %w", err)
	}

	info.FinishedAt = time.Now().UTC()
	info.DurationMS = float64(info.FinishedAt.Sub(info.StartedAt).Microseconds()) / 1000
	info.Groups = len(res.Players)
	info.AvgMinutes = res.AvgMinutes
	info.Mean = res.Mean
	info.StdDev = res.StdDev
	info.Warnings = res.Warnings
	if info.Warnings == nil {
		info.Warnings = []pele.Warning{}
	}

	metrics.RecordPipelineRun(outcomeSuccess, info.FinishedAt.Sub(info.StartedAt).Seconds())
	metrics.UpdateGroupsScored(info.Groups)
	metrics.UpdateLastRun(info.FinishedAt)

	s.mu.Lock()
	s.lastRun = &info
	s.mu.Unlock()

	log.Info(ctx, "scoring run finished",
		logger.String("run_id", info.RunID),
		logger.String("source", info.Source),
		logger.Int("records", info.Records),
		logger.Int("groups", info.Groups),
		logger.Int("warnings", len(info.Warnings)),
		logger.Duration("duration", info.FinishedAt.Sub(info.StartedAt)),
	)
	return info, nil
}

func (s *Service) fail(ctx context.Context, info *RunInfo, outcome string, err error) {
	info.FinishedAt = time.Now().UTC()
	metrics.RecordPipelineRun(outcome, info.FinishedAt.Sub(info.StartedAt).Seconds())
	metrics.RecordError("app", outcome)
	s.logger.Error(ctx, "scoring run failed",
		logger.String("run_id", info.RunID),
		logger.String("outcome", outcome),
		logger.Error(err),
	)
}

// Score runs the engine over records without touching the stored output.
func (s *Service) Score(ctx context.Context, records []model.MatchRecord, o ScoreOptions) (*pele.Result, error) {
	if _, err := s.current(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	opts := append([]pele.Option(nil), s.engineOpts...)
	if o.GroupBy != nil {
		opts = append(opts, pele.WithGroupBy(o.GroupBy...))
	}
	if o.Standardize != nil {
		opts = append(opts, pele.WithStandardize(*o.Standardize))
	}
	if len(o.Weights) > 0 {
		opts = append(opts, pele.WithWeightOverrides(o.Weights))
	}
	engine, err := pele.New(opts...)
	if err != nil {
		return nil, err
	}

	res, err := engine.Run(records)
	if err != nil {
		var se *pele.SchemaError
		if errors.As(err, &se) {
			metrics.RecordSchemaError(se.Field)
		}
		return nil, err
	}
	metrics.RecordRecordsIngested(len(records))
	for _, w := range res.Warnings {
		metrics.RecordWarning(string(w.Kind))
	}
	s.logger.Debug(ctx, "scored ad-hoc payload",
		logger.Int("records", len(records)),
		logger.Int("groups", len(res.Players)),
	)
	return res, nil
}

// Store returns the results store read by the API.
func (s *Service) Store() repository.Store { return s.store }

// LastRun returns the latest successful run, if any.
func (s *Service) LastRun() (RunInfo, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.lastRun == nil {
		return RunInfo{}, false
	}
	return *s.lastRun, true
}

// Weights returns the effective coefficients, or the defaults before Start.
func (s *Service) Weights() pele.Weights {
	engine, err := s.current()
	if err != nil {
		return pele.DefaultWeights()
	}
	return engine.Weights()
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":       s.started,
		"storedPlayers": s.store.Count(context.Background()),
	}
	if s.source != nil {
		stats["source"] = s.source.Name()
	}
	if s.lastRun != nil {
		stats["lastRunID"] = s.lastRun.RunID
		stats["lastRunAt"] = s.lastRun.FinishedAt
	}
	return stats
}
