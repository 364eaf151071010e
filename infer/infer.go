// Package infer loads pnnx-style graphs and runs them on the CPU.
//
// A model is a text descriptor (model.param) listing operators and the
// operands that connect them, plus a zip archive (model.bin) holding each
// operator's weights under "<operator>.<attribute>".
//
// # Example Usage
//
//	model, err := infer.Load("model.param", "model.bin")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	input, _ := infer.FromFloat32(infer.Shape{3, 224, 224}, pixels)
//	output, err := model.Forward(input)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// # Supported Operators
//
// torch.cat, nn.Hardsigmoid, nn.ReLU, nn.Sigmoid and nn.Linear. Use
// [ListSupportedOps] for the complete list and LoadOptions.CustomKernels
// to add more.
package infer

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/xinyi61/KuiperInfer/internal/blob"
	"github.com/xinyi61/KuiperInfer/internal/engine"
	"github.com/xinyi61/KuiperInfer/internal/ir"
	"github.com/xinyi61/KuiperInfer/internal/kernel"
	"github.com/xinyi61/KuiperInfer/internal/parallel"
	"github.com/xinyi61/KuiperInfer/internal/tensor"
)

// Tensor is a dense float32 channels × rows × cols tensor.
type Tensor = tensor.Tensor

// Shape is a tensor shape of rank 1 to 3.
type Shape = tensor.Shape

// Graph is a loaded operator graph.
type Graph = ir.Graph

// Operand is a named tensor slot of a Graph.
type Operand = ir.Operand

// Kernel computes one operator type.
type Kernel = kernel.Kernel

// KernelFactory builds a kernel for a graph operator.
type KernelFactory = kernel.Factory

// ParallelConfig controls how kernels fan out over batch lanes.
type ParallelConfig = parallel.Config

// LoadOptions configures model loading.
type LoadOptions struct {
	// Logger receives loader warnings and dispatch traces.
	Logger *slog.Logger

	// Strict fails on loader warnings and on operators without a kernel.
	// Otherwise both are logged and skipped.
	Strict bool

	// Parallel controls kernel parallelism.
	Parallel ParallelConfig

	// CustomKernels adds kernels for operator types. Built-in types
	// cannot be replaced.
	CustomKernels map[string]KernelFactory
}

// DefaultLoadOptions returns the default options for loading models.
//
// Default configuration:
//   - Strict mode: disabled (unsupported operators are skipped)
//   - Parallel: one worker per logical core
func DefaultLoadOptions() LoadOptions {
	return LoadOptions{
		Logger:   slog.Default(),
		Parallel: parallel.DefaultConfig(),
	}
}

// Load loads a model from a descriptor file and a weight archive.
//
// For custom loading options, pass LoadOptions:
//
//	opts := infer.DefaultLoadOptions()
//	opts.Strict = true
//	model, err := infer.Load("model.param", "model.bin", opts)
func Load(paramPath, binPath string, opts ...LoadOptions) (Model, error) {
	opt := resolveOptions(opts)
	g, err := ir.Load(paramPath, binPath, opt.graphOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to load graph: %w", err)
	}
	return compile(g, opt)
}

// LoadFrom loads a model from a descriptor stream and in-memory weights
// keyed by "<operator>.<attribute>".
func LoadFrom(descriptor io.Reader, weights map[string][]byte, opts ...LoadOptions) (Model, error) {
	opt := resolveOptions(opts)
	g := ir.NewGraph()
	if err := g.LoadFrom(descriptor, blob.NewMemStore(weights), opt.graphOptions()); err != nil {
		return nil, fmt.Errorf("failed to load graph: %w", err)
	}
	return compile(g, opt)
}

// ListSupportedOps returns the built-in operator types in sorted order.
func ListSupportedOps() []string {
	return kernel.Default().SupportedTypes()
}

// NewTensor allocates a zero-filled channels × rows × cols tensor.
func NewTensor(channels, rows, cols int) *Tensor {
	return tensor.New(channels, rows, cols)
}

// FromFloat32 creates a tensor holding a copy of data.
func FromFloat32(shape Shape, data []float32) (*Tensor, error) {
	return tensor.FromFloat32(shape, data)
}

func resolveOptions(opts []LoadOptions) LoadOptions {
	opt := DefaultLoadOptions()
	if len(opts) > 0 {
		opt = opts[0]
	}
	if opt.Logger == nil {
		opt.Logger = slog.Default()
	}
	return opt
}

func (o LoadOptions) graphOptions() ir.LoadOptions {
	return ir.LoadOptions{Logger: o.Logger, Strict: o.Strict}
}

func compile(g *ir.Graph, opt LoadOptions) (Model, error) {
	reg := kernel.Default()
	if len(opt.CustomKernels) > 0 {
		reg = kernel.NewRegistry()
		for opType, factory := range opt.CustomKernels {
			if err := reg.Register(opType, factory); err != nil {
				return nil, err
			}
		}
	}

	e, err := engine.New(g, reg, engine.Options{
		Logger:          opt.Logger,
		Parallel:        opt.Parallel,
		SkipUnsupported: !opt.Strict,
	})
	if err != nil {
		return nil, err
	}
	return &model{engine: e}, nil
}

type model struct {
	engine *engine.Engine
}

func (m *model) Forward(input *Tensor) (*Tensor, error) {
	inputs, outputs := m.engine.InputNames(), m.engine.OutputNames()
	if len(inputs) != 1 {
		return nil, fmt.Errorf("model has %d inputs, use ForwardBatch", len(inputs))
	}
	if len(outputs) != 1 {
		return nil, fmt.Errorf("model has %d outputs, use ForwardBatch", len(outputs))
	}

	result, err := m.engine.Forward(map[string][]*Tensor{inputs[0]: {input}})
	if err != nil {
		return nil, err
	}
	return result[outputs[0]][0], nil
}

func (m *model) ForwardBatch(inputs map[string][]*Tensor) (map[string][]*Tensor, error) {
	return m.engine.Forward(inputs)
}

func (m *model) InputNames() []string {
	return m.engine.InputNames()
}

func (m *model) OutputNames() []string {
	return m.engine.OutputNames()
}

func (m *model) Graph() *Graph {
	return m.engine.Graph()
}

func (m *model) Warnings() []error {
	return m.engine.Graph().Warnings()
}
