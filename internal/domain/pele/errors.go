package pele

import (
	"errors"
	"fmt"
)

// Sentinel kinds for pipeline errors.
var (
	ErrSchema        = errors.New("schema violation")
	ErrUnknownWeight = errors.New("unknown weight")
	ErrInvalidOption = errors.New("invalid engine option")
)

// SchemaError reports input that violates the record schema. It aborts the run.
type SchemaError struct {
	Field  string
	Row    int // input index, -1 when the error concerns a group
	Key    string
	Reason string
}

func (e *SchemaError) Error() string {
	if e.Row >= 0 {
		return fmt.Sprintf("schema violation: row %d (%s): field %s: %s", e.Row, e.Key, e.Field, e.Reason)
	}
	return fmt.Sprintf("schema violation: group %s: field %s: %s", e.Key, e.Field, e.Reason)
}

func (e *SchemaError) Unwrap() error { return ErrSchema }

// WarningKind classifies a degenerate but non-fatal condition.
type WarningKind string

// Warning kinds.
const (
	WarnZeroMinutes        WarningKind = "zero_minutes"
	WarnZeroAverageMinutes WarningKind = "zero_average_minutes"
	WarnZeroVariance       WarningKind = "zero_variance"
)

// Warning is attached to a result when a degenerate case was handled.
type Warning struct {
	Kind    WarningKind `json:"kind"`
	Key     string      `json:"key,omitempty"`
	Message string      `json:"message"`
}
