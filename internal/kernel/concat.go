package kernel

import (
	"fmt"

	"github.com/xinyi61/KuiperInfer/internal/ir"
	"github.com/xinyi61/KuiperInfer/internal/parallel"
	"github.com/xinyi61/KuiperInfer/internal/tensor"
)

// registerShapeOps registers kernels that rearrange data.
func (r *Registry) registerShapeOps() {
	r.RegisterIfAbsent(TypeConcat, newConcatFromOperator)
}

// Concat is the torch.cat kernel, joining tensors along the channel axis.
//
// With n outputs, inputs are read as interleaved groups: output i joins
// inputs i, i+n, i+2n and so on, in that order. For a batch of n lanes
// fed operand by operand this joins lane i of every operand.
type Concat struct {
	dim int
	cfg parallel.Config
}

// NewConcat creates a Concat kernel. Only dim 1 and -3 (channels) are
// supported; other values fail at Forward.
func NewConcat(dim int, cfg parallel.Config) *Concat {
	return &Concat{dim: dim, cfg: cfg}
}

func newConcatFromOperator(ctx *Context, op *ir.Operator) (Kernel, error) {
	if err := requireParams(op); err != nil {
		return nil, err
	}
	dim, err := paramInt(op, "dim")
	if err != nil {
		return nil, err
	}
	return NewConcat(dim, contextOrDefault(ctx).Parallel), nil
}

// Type returns "torch.cat".
func (k *Concat) Type() string {
	return TypeConcat
}

// Dim returns the concatenation axis.
func (k *Concat) Dim() int {
	return k.dim
}

// Forward concatenates each input group into its output.
func (k *Concat) Forward(inputs, outputs []*tensor.Tensor) error {
	if err := checkArrays(TypeConcat, inputs, outputs); err != nil {
		return err
	}
	if k.dim != 1 && k.dim != -3 {
		return fmt.Errorf("%s: %w: dim %d, only the channel axis (1 or -3) is supported",
			TypeConcat, ErrParameterError, k.dim)
	}
	groups := len(outputs)
	if len(inputs)%groups != 0 {
		return fmt.Errorf("%s: %w: %d inputs cannot be split into %d groups",
			TypeConcat, ErrArraySizeMismatch, len(inputs), groups)
	}

	shapes := make([]tensor.Shape, groups)
	for i := range groups {
		first := inputs[i]
		channels := 0
		for j := i; j < len(inputs); j += groups {
			in := inputs[j]
			if in.Empty() {
				return fmt.Errorf("%s: %w: input %d is empty", TypeConcat, ErrInputsEmpty, j)
			}
			if in.Rows() != first.Rows() || in.Cols() != first.Cols() {
				return fmt.Errorf("%s: %w: input %d is %dx%d, group %d expects %dx%d",
					TypeConcat, ErrShapeMismatch, j, in.Rows(), in.Cols(), i, first.Rows(), first.Cols())
			}
			channels += in.Channels()
		}
		shapes[i] = tensor.Shape{channels, first.Rows(), first.Cols()}

		out := outputs[i]
		if !out.Empty() && (out.Channels() != channels || out.Rows() != first.Rows() || out.Cols() != first.Cols()) {
			return shapeMismatch(TypeConcat, i, out.Shape(), shapes[i])
		}
	}

	parallel.ForEach(groups, k.cfg, func(i int) {
		out := outputs[i]
		if out.Empty() {
			out = tensor.New(shapes[i][0], shapes[i][1], shapes[i][2])
			outputs[i] = out
		}
		dst := out.Float32()
		offset := 0
		for j := i; j < len(inputs); j += groups {
			offset += copy(dst[offset:], inputs[j].Float32())
		}
	})
	return nil
}
