package kernel

import (
	"math"

	"github.com/xinyi61/KuiperInfer/internal/ir"
	"github.com/xinyi61/KuiperInfer/internal/parallel"
	"github.com/xinyi61/KuiperInfer/internal/tensor"
)

// registerActivations registers elementwise activation kernels.
func (r *Registry) registerActivations() {
	r.RegisterIfAbsent(TypeHardSigmoid, activationFactory(NewHardSigmoid))
	r.RegisterIfAbsent(TypeReLU, activationFactory(NewReLU))
	r.RegisterIfAbsent(TypeSigmoid, activationFactory(NewSigmoid))
}

// activationFactory adapts a parameterless constructor.
func activationFactory(newKernel func(parallel.Config) Kernel) Factory {
	return func(ctx *Context, op *ir.Operator) (Kernel, error) {
		if op == nil {
			return nil, ErrNilOperator
		}
		return newKernel(contextOrDefault(ctx).Parallel), nil
	}
}

// NewHardSigmoid returns the nn.Hardsigmoid kernel:
// 0 for x <= -3, 1 for x >= 3 and x/6 + 0.5 in between.
func NewHardSigmoid(cfg parallel.Config) Kernel {
	return &elementwise{opType: TypeHardSigmoid, fn: hardSigmoid, cfg: cfg}
}

// NewReLU returns the nn.ReLU kernel.
func NewReLU(cfg parallel.Config) Kernel {
	return &elementwise{opType: TypeReLU, fn: relu, cfg: cfg}
}

// NewSigmoid returns the nn.Sigmoid kernel.
func NewSigmoid(cfg parallel.Config) Kernel {
	return &elementwise{opType: TypeSigmoid, fn: sigmoid, cfg: cfg}
}

func hardSigmoid(x float32) float32 {
	switch {
	case x <= -3:
		return 0
	case x >= 3:
		return 1
	default:
		return x/6 + 0.5
	}
}

func relu(x float32) float32 {
	if x > 0 {
		return x
	}
	return 0
}

func sigmoid(x float32) float32 {
	return float32(1 / (1 + math.Exp(-float64(x))))
}

// elementwise applies fn to every element, pairing inputs[i] with outputs[i].
type elementwise struct {
	opType string
	fn     func(float32) float32
	cfg    parallel.Config
}

func (k *elementwise) Type() string {
	return k.opType
}

func (k *elementwise) Forward(inputs, outputs []*tensor.Tensor) error {
	if err := checkPaired(k.opType, inputs, outputs); err != nil {
		return err
	}
	for i, out := range outputs {
		if !out.Empty() && !out.Shape().Equal(inputs[i].Shape()) {
			return shapeMismatch(k.opType, i, out.Shape(), inputs[i].Shape())
		}
	}

	parallel.ForEach(len(inputs), k.cfg, func(i int) {
		in, out := inputs[i], outputs[i]
		if out.Empty() {
			out = tensor.ZerosLike(in)
			outputs[i] = out
		}
		src, dst := in.Float32(), out.Float32()
		for j, v := range src {
			dst[j] = k.fn(v)
		}
	})
	return nil
}
