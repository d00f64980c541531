package config

import "errors"

// Sentinel kinds for configuration errors.
var (
	ErrInvalidConfig = errors.New("invalid config")
	ErrLoadConfig    = errors.New("load config failed")
	// ErrNoInput is returned by commands that need an input file when none is set.
	ErrNoInput = errors.New("no input configured")
)
