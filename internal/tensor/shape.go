package tensor

import (
	"fmt"
	"slices"
)

// Shape represents the dimensions of a tensor.
//
// Kernels address tensors as channels × rows × cols. Shapes with fewer than
// three dimensions are read with the missing leading dimensions set to 1.
type Shape []int

// NumElements returns the total number of elements in the tensor.
func (s Shape) NumElements() int {
	if len(s) == 0 {
		return 0
	}
	n := 1
	for _, dim := range s {
		n *= dim
	}
	return n
}

// Validate checks if the shape is valid (1 to 3 dimensions, all > 0).
func (s Shape) Validate() error {
	if len(s) == 0 || len(s) > 3 {
		return fmt.Errorf("invalid rank %d (must be 1, 2 or 3)", len(s))
	}
	for i, dim := range s {
		if dim <= 0 {
			return fmt.Errorf("invalid dimension at index %d: %d (must be > 0)", i, dim)
		}
	}
	return nil
}

// Equal checks if two shapes are equal.
func (s Shape) Equal(other Shape) bool {
	return slices.Equal(s, other)
}

// Clone returns a copy of the shape.
func (s Shape) Clone() Shape {
	clone := make(Shape, len(s))
	copy(clone, s)
	return clone
}

// Channels returns the channel dimension.
func (s Shape) Channels() int {
	return s.dim(3)
}

// Rows returns the row dimension.
func (s Shape) Rows() int {
	return s.dim(2)
}

// Cols returns the column dimension.
func (s Shape) Cols() int {
	return s.dim(1)
}

// dim returns the n-th dimension counted from the end, or 1 if the shape is shorter.
func (s Shape) dim(fromEnd int) int {
	if len(s) < fromEnd {
		if len(s) == 0 {
			return 0
		}
		return 1
	}
	return s[len(s)-fromEnd]
}

// ComputeStrides calculates row-major strides for the shape.
// Strides define memory layout: stride[i] = product of all dimensions after i.
func (s Shape) ComputeStrides() []int {
	strides := make([]int, len(s))
	if len(s) == 0 {
		return strides
	}

	strides[len(s)-1] = 1
	for i := len(s) - 2; i >= 0; i-- {
		strides[i] = strides[i+1] * s[i+1]
	}
	return strides
}
