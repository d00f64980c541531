package api

import "time"

// Option applies a configuration option to the Server.
type Option func(*Server)

// WithCORSOrigins sets the allowed CORS origins.
func WithCORSOrigins(origins []string) Option {
	return func(s *Server) {
		if len(origins) > 0 {
			s.corsOrigins = origins
		}
	}
}

// WithRateLimit limits each client IP to requests per window.
func WithRateLimit(requests int, window time.Duration) Option {
	return func(s *Server) {
		s.rateRequests = requests
		s.rateWindow = window
	}
}

// WithMaxBodyBytes caps request bodies of POST /api/v1/score.
func WithMaxBodyBytes(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxBodyBytes = n
		}
	}
}

// WithWebDir serves an exported web app directory under /app.
func WithWebDir(dir string) Option {
	return func(s *Server) {
		s.webDir = dir
	}
}
