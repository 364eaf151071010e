package ir

import (
	"errors"
	"fmt"
)

// Loader and typed-value errors.
var (
	ErrIO               = errors.New("graph files could not be opened")
	ErrParse            = errors.New("malformed descriptor token")
	ErrSchemaMismatch   = errors.New("attribute payload size does not match its declared shape")
	ErrMissingOperand   = errors.New("operand not found")
	ErrDuplicateOperand = errors.New("operand already declared")
	ErrParameterType    = errors.New("parameter has a different type")
	ErrUnsupportedType  = errors.New("unsupported element type")
)

// LoadWarning describes a non-fatal problem found while loading a descriptor.
// The loader records it on the graph and keeps going.
type LoadWarning struct {
	Line     int    // 1-based descriptor line
	Operator string // Operator name, if known
	Key      string // Offending operand name or key=value key
	Err      error  // One of the Err* sentinels, possibly wrapped
}

// Error implements the error interface.
func (w *LoadWarning) Error() string {
	switch {
	case w.Operator != "" && w.Key != "":
		return fmt.Sprintf("line %d: operator %q: %q: %v", w.Line, w.Operator, w.Key, w.Err)
	case w.Operator != "":
		return fmt.Sprintf("line %d: operator %q: %v", w.Line, w.Operator, w.Err)
	default:
		return fmt.Sprintf("line %d: %v", w.Line, w.Err)
	}
}

// Unwrap returns the underlying error.
func (w *LoadWarning) Unwrap() error {
	return w.Err
}
