// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	corslib "github.com/rs/cors"

	"github.com/okian/pele/internal/adapters/http/site"
	"github.com/okian/pele/internal/adapters/http/swagger"
	"github.com/okian/pele/internal/adapters/repository"
	service "github.com/okian/pele/internal/app"
	"github.com/okian/pele/internal/domain/model"
	"github.com/okian/pele/internal/domain/pele"
	"github.com/okian/pele/pkg/metrics"
)

const (
	defaultMaxBodyBytes = 8 << 20
	compressLevel       = 5
)

// Scorer is the engine side of the service used by the API.
type Scorer interface {
	// Score runs an ad-hoc payload without touching stored output.
	Score(ctx context.Context, records []model.MatchRecord, o service.ScoreOptions) (*pele.Result, error)
	Weights() pele.Weights
	LastRun() (service.RunInfo, bool)
}

// Server wires HTTP routes for the display API.
type Server struct {
	healthHandler  *HealthHandler
	statsHandler   *StatsHandler
	playersHandler *PlayersHandler
	runHandler     *RunHandler
	scoreHandler   *ScoreHandler

	corsOrigins  []string
	rateRequests int
	rateWindow   time.Duration
	maxBodyBytes int64
	webDir       string
}

// NewServer creates a new API server with all handlers.
func NewServer(scorer Scorer, store repository.Store, stats StatsProvider, opts ...Option) *Server {
	s := &Server{
		corsOrigins:  []string{"*"},
		maxBodyBytes: defaultMaxBodyBytes,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.healthHandler = NewHealthHandler(store, scorer)
	s.statsHandler = NewStatsHandler(stats, store)
	s.playersHandler = NewPlayersHandler(store)
	s.runHandler = NewRunHandler(scorer)
	s.scoreHandler = NewScoreHandler(scorer, s.maxBodyBytes)
	return s
}

// Router builds the chi router with middleware and all routes.
func (s *Server) Router(ctx context.Context) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(TimingMiddleware)
	r.Use(MetricsMiddleware)
	r.Use(middleware.Compress(compressLevel))

	c := corslib.New(corslib.Options{
		AllowedOrigins: s.corsOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodHead, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Accept-Encoding", "Content-Type"},
		ExposedHeaders: []string{"X-Process-Time", "X-Request-Id"},
	})
	r.Use(c.Handler)

	if s.rateRequests > 0 && s.rateWindow > 0 {
		r.Use(RateLimitMiddleware(s.rateRequests, s.rateWindow))
	}

	r.Get("/healthz", s.healthHandler.HandleHealth)
	r.Get("/stats", s.statsHandler.HandleStats)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}))
	swagger.Register(ctx, r)
	site.Register(ctx, r, s.webDir)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/players", s.playersHandler.HandleList)
		r.Get("/players/top", s.playersHandler.HandleTop)
		r.Get("/players/{playerID}", s.playersHandler.HandleGet)
		r.Get("/compare", s.playersHandler.HandleCompare)
		r.Get("/filters", s.playersHandler.HandleFilters)
		r.Get("/run", s.runHandler.HandleRun)
		r.Get("/weights", s.runHandler.HandleWeights)
		r.Post("/score", s.scoreHandler.HandleScore)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not_found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
	})
	return r
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// writeJSON encodes v before committing status, so a value that cannot be
// encoded still yields a well-formed 500 body.
func writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		metrics.RecordError("api", "encode")
		status = http.StatusInternalServerError
		body, _ = json.Marshal(errorResponse{Code: "internal_error", Message: "response could not be encoded"})
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(append(body, '\n'))
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeFailure maps domain and store errors to a status and code.
func writeFailure(w http.ResponseWriter, err error) {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.Is(err, pele.ErrSchema):
		writeError(w, http.StatusUnprocessableEntity, "schema_error", err)
	case errors.As(err, &tooLarge):
		writeError(w, http.StatusRequestEntityTooLarge, "body_too_large", err)
	case errors.Is(err, ErrBadRequest),
		errors.Is(err, pele.ErrUnknownWeight),
		errors.Is(err, pele.ErrInvalidOption),
		errors.Is(err, model.ErrInvalidGroupKey),
		errors.Is(err, repository.ErrInvalidLimit),
		errors.Is(err, repository.ErrInvalidSort):
		writeError(w, http.StatusBadRequest, "bad_request", err)
	case errors.Is(err, repository.ErrNotFound), errors.Is(err, ErrNoRun):
		writeError(w, http.StatusNotFound, "not_found", err)
	case errors.Is(err, service.ErrNotStarted):
		writeError(w, http.StatusServiceUnavailable, "unavailable", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	}
}
