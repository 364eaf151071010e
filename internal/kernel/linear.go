package kernel

import (
	"fmt"

	"github.com/xinyi61/KuiperInfer/internal/ir"
	"github.com/xinyi61/KuiperInfer/internal/parallel"
	"github.com/xinyi61/KuiperInfer/internal/tensor"
)

func (r *Registry) registerLinear() {
	r.RegisterIfAbsent(TypeLinear, newLinearFromOperator)
}

// Linear is the nn.Linear kernel: y = x·Wᵀ + b over the last axis.
type Linear struct {
	in, out int
	weight  []float32 // out × in, row-major
	bias    []float32 // nil when the layer has no bias
	cfg     parallel.Config
}

// NewLinear creates a Linear kernel. weight is out × in row-major; bias
// is nil or has out elements.
func NewLinear(in, out int, weight, bias []float32, cfg parallel.Config) (*Linear, error) {
	if in <= 0 || out <= 0 {
		return nil, fmt.Errorf("%s: %w: in_features=%d out_features=%d", TypeLinear, ErrParameterError, in, out)
	}
	if len(weight) != in*out {
		return nil, fmt.Errorf("%s: %w: weight has %d elements, want %d", TypeLinear, ErrShapeMismatch, len(weight), in*out)
	}
	if bias != nil && len(bias) != out {
		return nil, fmt.Errorf("%s: %w: bias has %d elements, want %d", TypeLinear, ErrShapeMismatch, len(bias), out)
	}
	return &Linear{in: in, out: out, weight: weight, bias: bias, cfg: cfg}, nil
}

func newLinearFromOperator(ctx *Context, op *ir.Operator) (Kernel, error) {
	if err := requireParams(op); err != nil {
		return nil, err
	}
	in, err := paramInt(op, "in_features")
	if err != nil {
		return nil, err
	}
	out, err := paramInt(op, "out_features")
	if err != nil {
		return nil, err
	}
	hasBias, err := paramBool(op, "bias", false)
	if err != nil {
		return nil, err
	}

	weight, err := attrFloat32s(op, "weight", out, in)
	if err != nil {
		return nil, err
	}
	var bias []float32
	if hasBias {
		if bias, err = attrFloat32s(op, "bias", out); err != nil {
			return nil, err
		}
	}
	return NewLinear(in, out, weight, bias, contextOrDefault(ctx).Parallel)
}

// Type returns "nn.Linear".
func (k *Linear) Type() string {
	return TypeLinear
}

// Forward maps each input's last axis from in to out features.
func (k *Linear) Forward(inputs, outputs []*tensor.Tensor) error {
	if err := checkPaired(TypeLinear, inputs, outputs); err != nil {
		return err
	}
	shapes := make([]tensor.Shape, len(inputs))
	for i, in := range inputs {
		if in.Cols() != k.in {
			return fmt.Errorf("%s: %w: input %d has %d features, want %d",
				TypeLinear, ErrShapeMismatch, i, in.Cols(), k.in)
		}
		shape := in.Shape().Clone()
		shape[len(shape)-1] = k.out
		shapes[i] = shape

		if out := outputs[i]; !out.Empty() && !out.Shape().Equal(shape) {
			return shapeMismatch(TypeLinear, i, out.Shape(), shape)
		}
	}

	results := make([]*tensor.Tensor, len(outputs))
	for i, out := range outputs {
		if out.Empty() {
			var err error
			if out, err = tensor.NewWithShape(shapes[i]); err != nil {
				return fmt.Errorf("%s: output %d: %w", TypeLinear, i, err)
			}
		}
		results[i] = out
	}

	// A single lane splits its rows instead.
	rowConfig := parallel.Sequential()
	if len(inputs) == 1 {
		rowConfig = k.cfg
	}
	parallel.ForEach(len(inputs), k.cfg, func(i int) {
		k.apply(inputs[i].Float32(), results[i].Float32(), rowConfig)
	})
	copy(outputs, results)
	return nil
}

func (k *Linear) apply(src, dst []float32, cfg parallel.Config) {
	parallel.For(len(src)/k.in, func(r int) {
		x := src[r*k.in : (r+1)*k.in]
		y := dst[r*k.out : (r+1)*k.out]
		for o := range k.out {
			w := k.weight[o*k.in : (o+1)*k.in]
			var sum float32
			for j, v := range x {
				sum += v * w[j]
			}
			if k.bias != nil {
				sum += k.bias[o]
			}
			y[o] = sum
		}
	}, cfg)
}
