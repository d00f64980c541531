package service

import "errors"

// Sentinel errors returned by the service.
var (
	ErrNotStarted = errors.New("service not started")
	ErrNoSource   = errors.New("no record source configured")
)
