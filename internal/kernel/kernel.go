package kernel

import (
	"fmt"
	"slices"

	"github.com/xinyi61/KuiperInfer/internal/ir"
	"github.com/xinyi61/KuiperInfer/internal/parallel"
	"github.com/xinyi61/KuiperInfer/internal/tensor"
)

// Built-in operator types.
const (
	TypeConcat      = "torch.cat"
	TypeHardSigmoid = "nn.Hardsigmoid"
	TypeReLU        = "nn.ReLU"
	TypeSigmoid     = "nn.Sigmoid"
	TypeLinear      = "nn.Linear"
)

// Kernel computes one operator type.
//
// Forward reads inputs and writes outputs. Output slots that are nil or
// empty are allocated with the shape the kernel infers and written back
// into the caller's slice. Kernels keep no state between calls.
type Kernel interface {
	Type() string
	Forward(inputs, outputs []*tensor.Tensor) error
}

// Factory builds a kernel from an operator's parameters and attributes.
// A nil ctx means DefaultContext.
type Factory func(ctx *Context, op *ir.Operator) (Kernel, error)

// Context carries what factories need besides the operator.
type Context struct {
	Parallel parallel.Config
}

// DefaultContext returns a context sized to the machine.
func DefaultContext() *Context {
	return &Context{
		Parallel: parallel.DefaultConfig(),
	}
}

// checkArrays enforces the preconditions shared by every kernel.
func checkArrays(kernel string, inputs, outputs []*tensor.Tensor) error {
	if len(inputs) == 0 {
		return fmt.Errorf("%s: %w", kernel, ErrInputsEmpty)
	}
	if len(outputs) == 0 {
		return fmt.Errorf("%s: %w", kernel, ErrOutputsEmpty)
	}
	return nil
}

// checkPaired enforces 1:1 input/output pairing and non-empty inputs.
func checkPaired(kernel string, inputs, outputs []*tensor.Tensor) error {
	if err := checkArrays(kernel, inputs, outputs); err != nil {
		return err
	}
	if len(inputs) != len(outputs) {
		return fmt.Errorf("%s: %w: %d inputs, %d outputs", kernel, ErrArraySizeMismatch, len(inputs), len(outputs))
	}
	for i, in := range inputs {
		if in.Empty() {
			return fmt.Errorf("%s: %w: input %d is empty", kernel, ErrInputsEmpty, i)
		}
	}
	return nil
}

func requireParams(op *ir.Operator) error {
	if op == nil {
		return ErrNilOperator
	}
	if len(op.Params) == 0 {
		return &ParameterError{Kernel: op.Type, Name: "*", Reason: "operator has no parameters", Err: ErrParameterMissing}
	}
	return nil
}

func paramInt(op *ir.Operator, name string) (int, error) {
	p, ok := op.Param(name)
	if !ok {
		return 0, &ParameterError{Kernel: op.Type, Name: name, Err: ErrParameterMissing}
	}
	v, err := p.AsInt()
	if err != nil {
		return 0, &ParameterError{Kernel: op.Type, Name: name, Reason: err.Error(), Err: ErrParameterMissing}
	}
	return v, nil
}

func paramBool(op *ir.Operator, name string, defaultVal bool) (bool, error) {
	p, ok := op.Param(name)
	if !ok {
		return defaultVal, nil
	}
	v, err := p.AsBool()
	if err != nil {
		return false, &ParameterError{Kernel: op.Type, Name: name, Reason: err.Error(), Err: ErrParameterMissing}
	}
	return v, nil
}

// attrFloat32s materializes a weight attribute, checking its shape.
func attrFloat32s(op *ir.Operator, name string, shape ...int) ([]float32, error) {
	a, ok := op.Attr(name)
	if !ok {
		return nil, &ParameterError{Kernel: op.Type, Name: "@" + name, Err: ErrAttributeMissing}
	}
	if !slices.Equal(a.Shape, shape) {
		return nil, &ParameterError{
			Kernel: op.Type, Name: "@" + name,
			Reason: fmt.Sprintf("shape %v, want %v", a.Shape, shape),
			Err:    ErrAttributeMissing,
		}
	}
	values, err := a.Float32s()
	if err != nil {
		return nil, &ParameterError{Kernel: op.Type, Name: "@" + name, Reason: err.Error(), Err: ErrAttributeMissing}
	}
	return values, nil
}

func contextOrDefault(ctx *Context) *Context {
	if ctx == nil {
		return DefaultContext()
	}
	return ctx
}

func shapeMismatch(kernel string, slot int, got, want tensor.Shape) error {
	return fmt.Errorf("%s: %w: output %d has shape %v, want %v", kernel, ErrShapeMismatch, slot, []int(got), []int(want))
}
