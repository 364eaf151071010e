package kernel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xinyi61/KuiperInfer/internal/parallel"
	"github.com/xinyi61/KuiperInfer/internal/tensor"
)

func TestHardSigmoid_Values(t *testing.T) {
	tests := []struct {
		x, want float32
	}{
		{-5, 0},
		{-3, 0},
		{-1.5, 0.25},
		{0, 0.5},
		{1.5, 0.75},
		{3, 1},
		{5, 1},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, hardSigmoid(tt.x), 1e-6, "hardsigmoid(%v)", tt.x)
	}
}

func TestHardSigmoid_Forward(t *testing.T) {
	for name, cfg := range configs {
		t.Run(name, func(t *testing.T) {
			k := NewHardSigmoid(cfg)
			assert.Equal(t, "nn.Hardsigmoid", k.Type())

			inputs := []*tensor.Tensor{
				fromValues(t, tensor.Shape{1, 2, 3}, -5, -3, 0, 1.5, 3, 5),
				filled(2, 4, 4, 0),
				fromValues(t, tensor.Shape{4}, -6, -1.5, 6, 0),
			}
			outputs := make([]*tensor.Tensor, len(inputs))
			require.NoError(t, k.Forward(inputs, outputs))

			assert.Equal(t, []float32{0, 0, 0.5, 0.75, 1, 1}, outputs[0].Float32())
			for _, v := range outputs[1].Float32() {
				assert.InDelta(t, 0.5, v, 1e-6)
			}
			assert.Equal(t, tensor.Shape{4}, outputs[2].Shape())
			assert.Equal(t, []float32{0, 0.25, 1, 0.5}, outputs[2].Float32())

			// Inputs are untouched.
			assert.Equal(t, float32(-5), inputs[0].Index(0))
		})
	}
}

func TestHardSigmoid_PreallocatedOutput(t *testing.T) {
	k := NewHardSigmoid(parallel.Sequential())
	in := fromValues(t, tensor.Shape{1, 1, 2}, 0, 3)
	out := filled(1, 1, 2, 9)

	outputs := []*tensor.Tensor{out}
	require.NoError(t, k.Forward([]*tensor.Tensor{in}, outputs))
	assert.Same(t, out, outputs[0])
	assert.Equal(t, []float32{0.5, 1}, out.Float32())

	// In place.
	require.NoError(t, k.Forward([]*tensor.Tensor{in}, []*tensor.Tensor{in}))
	assert.Equal(t, []float32{0.5, 1}, in.Float32())
}

func TestElementwise_Errors(t *testing.T) {
	k := NewHardSigmoid(parallel.Sequential())
	x := filled(1, 2, 2, 1)

	err := k.Forward(nil, []*tensor.Tensor{nil})
	assert.ErrorIs(t, err, ErrInputsEmpty)

	err = k.Forward([]*tensor.Tensor{x}, nil)
	assert.ErrorIs(t, err, ErrOutputsEmpty)

	outputs := []*tensor.Tensor{nil}
	err = k.Forward([]*tensor.Tensor{x, x}, outputs)
	assert.ErrorIs(t, err, ErrArraySizeMismatch)
	assert.Nil(t, outputs[0])

	outputs = []*tensor.Tensor{nil, nil}
	err = k.Forward([]*tensor.Tensor{x, {}}, outputs)
	assert.ErrorIs(t, err, ErrInputsEmpty)
	assert.Nil(t, outputs[0], "no output is written when a later input is invalid")

	outputs = []*tensor.Tensor{nil, filled(1, 2, 3, 0)}
	err = k.Forward([]*tensor.Tensor{x, x}, outputs)
	assert.ErrorIs(t, err, ErrShapeMismatch)
	assert.Nil(t, outputs[0])
}

func TestReLUAndSigmoid(t *testing.T) {
	in := fromValues(t, tensor.Shape{1, 1, 3}, -2, 0, 2)

	outputs := []*tensor.Tensor{nil}
	relu := NewReLU(parallel.Sequential())
	require.NoError(t, relu.Forward([]*tensor.Tensor{in}, outputs))
	assert.Equal(t, "nn.ReLU", relu.Type())
	assert.Equal(t, []float32{0, 0, 2}, outputs[0].Float32())

	outputs = []*tensor.Tensor{nil}
	sigmoid := NewSigmoid(parallel.Sequential())
	require.NoError(t, sigmoid.Forward([]*tensor.Tensor{in}, outputs))
	got := outputs[0].Float32()
	assert.InDelta(t, 0.1192029, got[0], 1e-6)
	assert.InDelta(t, 0.5, got[1], 1e-6)
	assert.InDelta(t, 0.8807971, got[2], 1e-6)
}
