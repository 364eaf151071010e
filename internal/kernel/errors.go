package kernel

import (
	"errors"
	"fmt"
)

// Dispatch errors.
var (
	ErrKernelNotFound    = errors.New("kernel not found")
	ErrAlreadyRegistered = errors.New("kernel already registered")
	ErrNilOperator       = errors.New("operator is nil")
	ErrParameterMissing  = errors.New("parameter missing or of wrong type")
	ErrAttributeMissing  = errors.New("attribute missing or malformed")
)

// Forward errors. A Forward call returning one of these has not written
// any output slot.
var (
	ErrInputsEmpty       = errors.New("input tensor array is empty")
	ErrOutputsEmpty      = errors.New("output tensor array is empty")
	ErrArraySizeMismatch = errors.New("input and output tensor array sizes do not match")
	ErrParameterError    = errors.New("parameter value is out of range")
	ErrShapeMismatch     = errors.New("tensor shape mismatch")
)

// ParameterError reports a missing or wrongly typed operator parameter or
// attribute found while building a kernel.
type ParameterError struct {
	Kernel string // Operator type, e.g. "torch.cat"
	Name   string // Parameter or attribute name
	Reason string // Additional details
	Err    error  // ErrParameterMissing or ErrAttributeMissing
}

// Error implements the error interface.
func (e *ParameterError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("%s: %q: %v: %s", e.Kernel, e.Name, e.Err, e.Reason)
	}
	return fmt.Sprintf("%s: %q: %v", e.Kernel, e.Name, e.Err)
}

// Unwrap returns the sentinel.
func (e *ParameterError) Unwrap() error {
	return e.Err
}
