package kernel

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xinyi61/KuiperInfer/internal/parallel"
	"github.com/xinyi61/KuiperInfer/internal/tensor"
)

// configs runs every kernel test sequentially and with a worker pool.
var configs = map[string]parallel.Config{
	"sequential": parallel.Sequential(),
	"parallel":   {Enabled: true, NumWorkers: 4, MinChunkSize: 1},
}

func fromValues(t *testing.T, shape tensor.Shape, values ...float32) *tensor.Tensor {
	t.Helper()
	x, err := tensor.FromFloat32(shape, values)
	require.NoError(t, err)
	return x
}

func filled(c, r, cols int, v float32) *tensor.Tensor {
	x := tensor.New(c, r, cols)
	for i := range x.Float32() {
		x.SetIndex(i, v)
	}
	return x
}
