// Package engine runs a loaded graph: it resolves a kernel for every
// operator once and then threads batches of tensors along operand edges
// in topological order.
package engine

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/xinyi61/KuiperInfer/internal/ir"
	"github.com/xinyi61/KuiperInfer/internal/kernel"
	"github.com/xinyi61/KuiperInfer/internal/parallel"
	"github.com/xinyi61/KuiperInfer/internal/tensor"
)

// Boundary operator types. They mark graph inputs and outputs and are
// never dispatched.
const (
	TypeInput  = "pnnx.Input"
	TypeOutput = "pnnx.Output"
)

// Engine errors.
var (
	ErrMissingInput      = errors.New("missing graph input")
	ErrBatchMismatch     = errors.New("graph inputs have different batch sizes")
	ErrUnresolvedOperand = errors.New("operand has no value")
)

// Options configures engine construction.
type Options struct {
	Logger          *slog.Logger
	Parallel        parallel.Config
	SkipUnsupported bool // Skip operators without a kernel instead of failing.
}

// DefaultOptions returns default engine options.
func DefaultOptions() Options {
	return Options{
		Logger:   slog.Default(),
		Parallel: parallel.DefaultConfig(),
	}
}

type step struct {
	op     *ir.Operator
	kernel kernel.Kernel
}

// Engine executes a graph. Forward may be called repeatedly; an Engine
// is safe for concurrent Forward calls as long as the graph is not
// modified.
type Engine struct {
	graph   *ir.Graph
	steps   []step
	inputs  []*ir.Operand
	outputs []*ir.Operand
	logger  *slog.Logger
}

// New resolves kernels for every operator of g. A nil reg uses
// kernel.Default.
func New(g *ir.Graph, reg *kernel.Registry, opts ...Options) (*Engine, error) {
	opt := DefaultOptions()
	if len(opts) > 0 {
		opt = opts[0]
	}
	if opt.Logger == nil {
		opt.Logger = slog.Default()
	}
	if reg == nil {
		reg = kernel.Default()
	}

	e := &Engine{graph: g, logger: opt.Logger}
	ctx := &kernel.Context{Parallel: opt.Parallel}

	for _, op := range g.TopologicalOrder() {
		switch op.Type {
		case TypeInput:
			e.inputs = append(e.inputs, g.OutputOperands(op)...)
			continue
		case TypeOutput:
			e.outputs = append(e.outputs, g.InputOperands(op)...)
			continue
		}

		k, err := reg.Create(ctx, op)
		if err != nil {
			if opt.SkipUnsupported && errors.Is(err, kernel.ErrKernelNotFound) {
				e.logger.Warn("skipping operator without kernel", "operator", op.Name, "type", op.Type)
				continue
			}
			return nil, fmt.Errorf("engine: %w", err)
		}
		e.steps = append(e.steps, step{op: op, kernel: k})
	}

	if len(e.inputs) == 0 {
		e.inputs = sourceOperands(g)
	}
	if len(e.outputs) == 0 {
		e.outputs = sinkOperands(g)
	}
	return e, nil
}

// sourceOperands returns operands nothing produces.
func sourceOperands(g *ir.Graph) []*ir.Operand {
	var result []*ir.Operand
	for _, r := range g.Operands() {
		if r.Producer == ir.NoOperator {
			result = append(result, r)
		}
	}
	return result
}

// sinkOperands returns produced operands nothing consumes.
func sinkOperands(g *ir.Graph) []*ir.Operand {
	var result []*ir.Operand
	for _, r := range g.Operands() {
		if r.Producer != ir.NoOperator && len(r.Consumers) == 0 {
			result = append(result, r)
		}
	}
	return result
}

// Graph returns the graph the engine runs.
func (e *Engine) Graph() *ir.Graph {
	return e.graph
}

// InputNames returns the names of the graph inputs.
func (e *Engine) InputNames() []string {
	return operandNames(e.inputs)
}

// OutputNames returns the names of the graph outputs.
func (e *Engine) OutputNames() []string {
	return operandNames(e.outputs)
}

// Kernels returns the operator types in execution order.
func (e *Engine) Kernels() []string {
	types := make([]string, len(e.steps))
	for i, s := range e.steps {
		types[i] = s.kernel.Type()
	}
	return types
}

func operandNames(operands []*ir.Operand) []string {
	names := make([]string, len(operands))
	for i, r := range operands {
		names[i] = r.Name
	}
	return names
}

// Forward runs the graph on a batch. Every graph input maps to one tensor
// per batch lane; all inputs must share the batch size. The result maps
// each graph output to its batch.
func (e *Engine) Forward(inputs map[string][]*tensor.Tensor) (map[string][]*tensor.Tensor, error) {
	values := make(map[ir.OperandID][]*tensor.Tensor, len(e.graph.Operands()))

	batch := -1
	for _, r := range e.inputs {
		lanes, ok := inputs[r.Name]
		if !ok || len(lanes) == 0 {
			return nil, fmt.Errorf("%w: %s", ErrMissingInput, r.Name)
		}
		if batch >= 0 && len(lanes) != batch {
			return nil, fmt.Errorf("%w: %s has %d lanes, want %d", ErrBatchMismatch, r.Name, len(lanes), batch)
		}
		batch = len(lanes)
		values[r.ID] = lanes
	}
	if batch < 0 {
		batch = 1
	}

	for _, s := range e.steps {
		if err := e.run(s, batch, values); err != nil {
			return nil, err
		}
	}

	result := make(map[string][]*tensor.Tensor, len(e.outputs))
	for _, r := range e.outputs {
		lanes, ok := values[r.ID]
		if !ok {
			return nil, fmt.Errorf("%w: output %s", ErrUnresolvedOperand, r.Name)
		}
		result[r.Name] = lanes
	}
	return result, nil
}

// run dispatches one operator. Kernel inputs are the operand batches laid
// end to end in operand order; outputs are split back the same way.
func (e *Engine) run(s step, batch int, values map[ir.OperandID][]*tensor.Tensor) error {
	var in []*tensor.Tensor
	for _, id := range s.op.Inputs {
		lanes, ok := values[id]
		if !ok {
			return fmt.Errorf("%w: %s, input of %s", ErrUnresolvedOperand, e.graph.Operand(id).Name, s.op.Name)
		}
		in = append(in, lanes...)
	}
	out := make([]*tensor.Tensor, batch*len(s.op.Outputs))

	e.logger.Debug("dispatch", "operator", s.op.Name, "type", s.op.Type, "inputs", len(in), "outputs", len(out))
	if err := s.kernel.Forward(in, out); err != nil {
		return fmt.Errorf("operator %s (%s): %w", s.op.Name, s.op.Type, err)
	}

	for i, id := range s.op.Outputs {
		values[id] = out[i*batch : (i+1)*batch : (i+1)*batch]
	}
	return nil
}
