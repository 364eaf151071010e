package kernel

import (
	"fmt"
	"slices"
	"sync"

	"github.com/xinyi61/KuiperInfer/internal/ir"
)

// Registry maps operator types to kernel factories.
//
// A Registry is not safe for concurrent registration. Populate it before
// sharing it; lookups may then run from any goroutine.
type Registry struct {
	factories map[string]Factory
}

// NewRegistry creates a registry with all built-in kernels.
func NewRegistry() *Registry {
	r := NewEmptyRegistry()

	r.registerActivations()
	r.registerShapeOps()
	r.registerLinear()

	return r
}

// NewEmptyRegistry creates a registry with no kernels.
func NewEmptyRegistry() *Registry {
	return &Registry{
		factories: make(map[string]Factory),
	}
}

// Default returns the process-wide registry holding the built-in kernels.
var Default = sync.OnceValue(NewRegistry)

// Register adds a factory for an operator type.
// An existing factory for the same type is kept and ErrAlreadyRegistered
// is returned.
func (r *Registry) Register(opType string, factory Factory) error {
	if _, ok := r.factories[opType]; ok {
		return fmt.Errorf("%w: %s", ErrAlreadyRegistered, opType)
	}
	r.factories[opType] = factory
	return nil
}

// RegisterIfAbsent adds a factory unless one exists, reporting whether it
// was added.
func (r *Registry) RegisterIfAbsent(opType string, factory Factory) bool {
	return r.Register(opType, factory) == nil
}

// Resolve returns the factory for an operator type.
func (r *Registry) Resolve(opType string) (Factory, error) {
	f, ok := r.factories[opType]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrKernelNotFound, opType)
	}
	return f, nil
}

// Create builds the kernel for op. A nil ctx uses DefaultContext.
func (r *Registry) Create(ctx *Context, op *ir.Operator) (Kernel, error) {
	if op == nil {
		return nil, ErrNilOperator
	}
	f, err := r.Resolve(op.Type)
	if err != nil {
		return nil, err
	}
	k, err := f(contextOrDefault(ctx), op)
	if err != nil {
		return nil, fmt.Errorf("create %s %q: %w", op.Type, op.Name, err)
	}
	return k, nil
}

// SupportedTypes returns the registered operator types in sorted order.
func (r *Registry) SupportedTypes() []string {
	types := make([]string, 0, len(r.factories))
	for t := range r.factories {
		types = append(types, t)
	}
	slices.Sort(types)
	return types
}
