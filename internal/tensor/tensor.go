// Package tensor provides the float32 tensor handle consumed by kernels.
//
// A Tensor is a dense, row-major channels × rows × cols block. Kernels only
// rely on its shape, flat element index and raw byte view; batches are
// carried as []*Tensor, one handle per batch lane.
package tensor

import (
	"fmt"
	"unsafe"
)

// Tensor is a dense float32 tensor.
// The zero value and a nil *Tensor are both empty.
type Tensor struct {
	shape  Shape
	stride []int
	data   []float32
}

// New allocates a zero-filled channels × rows × cols tensor.
func New(channels, rows, cols int) *Tensor {
	t, err := NewWithShape(Shape{channels, rows, cols})
	if err != nil {
		panic(fmt.Sprintf("tensor.New: %v", err))
	}
	return t
}

// NewWithShape allocates a zero-filled tensor with the given shape.
func NewWithShape(shape Shape) (*Tensor, error) {
	if err := shape.Validate(); err != nil {
		return nil, fmt.Errorf("invalid shape: %w", err)
	}
	return &Tensor{
		shape:  shape.Clone(),
		stride: shape.ComputeStrides(),
		data:   make([]float32, shape.NumElements()),
	}, nil
}

// FromFloat32 creates a tensor from a Go slice.
// The slice is copied into the tensor's memory.
func FromFloat32(shape Shape, data []float32) (*Tensor, error) {
	if shape.NumElements() != len(data) {
		return nil, fmt.Errorf("shape %v requires %d elements, but got %d", shape, shape.NumElements(), len(data))
	}
	t, err := NewWithShape(shape)
	if err != nil {
		return nil, err
	}
	copy(t.data, data)
	return t, nil
}

// ZerosLike allocates a zero-filled tensor with t's shape.
func ZerosLike(t *Tensor) *Tensor {
	return &Tensor{
		shape:  t.shape.Clone(),
		stride: t.shape.ComputeStrides(),
		data:   make([]float32, len(t.data)),
	}
}

// Empty reports whether the tensor holds no elements.
func (t *Tensor) Empty() bool {
	return t == nil || len(t.data) == 0
}

// Shape returns the tensor's shape.
func (t *Tensor) Shape() Shape {
	return t.shape
}

// Strides returns the tensor's memory strides.
func (t *Tensor) Strides() []int {
	return t.stride
}

// Channels returns the channel count.
func (t *Tensor) Channels() int {
	return t.shape.Channels()
}

// Rows returns the row count.
func (t *Tensor) Rows() int {
	return t.shape.Rows()
}

// Cols returns the column count.
func (t *Tensor) Cols() int {
	return t.shape.Cols()
}

// Size returns the total number of elements.
func (t *Tensor) Size() int {
	if t == nil {
		return 0
	}
	return len(t.data)
}

// PlaneSize returns rows × cols.
func (t *Tensor) PlaneSize() int {
	return t.Rows() * t.Cols()
}

// Index returns the element at flat position i.
func (t *Tensor) Index(i int) float32 {
	return t.data[i]
}

// SetIndex stores v at flat position i.
func (t *Tensor) SetIndex(i int, v float32) {
	t.data[i] = v
}

// At returns the element at (channel, row, col).
func (t *Tensor) At(c, r, col int) float32 {
	return t.data[(c*t.Rows()+r)*t.Cols()+col]
}

// Float32 returns the backing slice.
// Writes through the slice modify the tensor.
func (t *Tensor) Float32() []float32 {
	return t.data
}

// Channel returns the backing slice of one channel plane.
func (t *Tensor) Channel(c int) []float32 {
	plane := t.PlaneSize()
	return t.data[c*plane : (c+1)*plane]
}

// Data returns the raw little-endian byte view of the tensor.
// WARNING: Direct access to underlying memory. Use with caution.
func (t *Tensor) Data() []byte {
	if t.Empty() {
		return nil
	}
	//nolint:gosec // unsafe.Slice for zero-copy access, bounds fixed by len(data)
	return unsafe.Slice((*byte)(unsafe.Pointer(&t.data[0])), len(t.data)*4)
}

// Clone returns a deep copy.
func (t *Tensor) Clone() *Tensor {
	if t == nil {
		return nil
	}
	return &Tensor{
		shape:  t.shape.Clone(),
		stride: append([]int(nil), t.stride...),
		data:   append([]float32(nil), t.data...),
	}
}

// String returns a short description of the tensor.
func (t *Tensor) String() string {
	if t.Empty() {
		return "Tensor(empty)"
	}
	return fmt.Sprintf("Tensor(%v)", []int(t.shape))
}
