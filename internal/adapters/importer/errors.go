package importer

import "errors"

// Sentinel kinds for import errors.
var (
	ErrEmptyInput    = errors.New("input has no header")
	ErrMissingHeader = errors.New("missing header row")
	ErrUnknownFormat = errors.New("unknown input format")
)
