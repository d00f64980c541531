package service

import (
	"time"

	"github.com/okian/pele/internal/adapters/repository"
	"github.com/okian/pele/internal/domain/pele"
	"github.com/okian/pele/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithSource sets where Recompute loads match records from.
func WithSource(src Source) Option {
	return func(s *Service) {
		s.source = src
	}
}

// WithEngineOptions configures the scoring engine built on Start.
func WithEngineOptions(opts ...pele.Option) Option {
	return func(s *Service) {
		s.engineOpts = append(s.engineOpts, opts...)
	}
}

// WithStore replaces the default in-memory results store.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithRefreshInterval recomputes from the source every d. Zero disables it.
func WithRefreshInterval(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.refresh = d
		}
	}
}
