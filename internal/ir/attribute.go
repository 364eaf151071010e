package ir

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"log/slog"
	"math"
	"slices"

	"github.com/x448/float16"
)

// Attribute is a typed, shaped weight blob attached to an operator.
//
// Once Shape is non-empty, len(Data) == product(Shape) * Type.Size().
// Data is little-endian.
type Attribute struct {
	Type  DataType
	Shape []int
	Data  []byte
}

// NewFloat32Attribute builds an f32 attribute from values.
// values must hold at least product(shape) elements.
func NewFloat32Attribute(shape []int, values []float32) Attribute {
	attr := Attribute{Type: TypeF32, Shape: slices.Clone(shape)}
	n := attr.NumElements()
	if n <= 0 {
		return attr
	}
	attr.Data = make([]byte, n*TypeF32.Size())
	for i := 0; i < n; i++ {
		binary.LittleEndian.PutUint32(attr.Data[i*4:], math.Float32bits(values[i]))
	}
	return attr
}

// MaxAttributeBytes bounds the payload of a single attribute.
const MaxAttributeBytes = 1 << 34

// NumElements returns product(Shape), or 0 for an empty shape.
// It returns -1 when the payload would exceed MaxAttributeBytes.
func (a Attribute) NumElements() int {
	n, _ := a.sizes()
	return n
}

// ByteSize returns the payload size implied by Shape and Type, or -1 when
// it exceeds MaxAttributeBytes.
func (a Attribute) ByteSize() int {
	_, size := a.sizes()
	return size
}

func (a Attribute) sizes() (elems, size int) {
	if len(a.Shape) == 0 {
		return 0, 0
	}
	if slices.Contains(a.Shape, 0) {
		return 0, 0
	}
	limit := MaxAttributeBytes / max(a.Type.Size(), 1)
	elems = 1
	for _, d := range a.Shape {
		if d < 0 || elems > limit/d {
			return -1, -1
		}
		elems *= d
	}
	return elems, elems * a.Type.Size()
}

// Empty reports whether the attribute is untyped.
func (a Attribute) Empty() bool {
	return a.Type == TypeNone
}

// Equal reports whether a and b have the same type, shape and bytes.
func (a Attribute) Equal(b Attribute) bool {
	if a.Type != b.Type {
		return false
	}
	if a.Type == TypeNone {
		return true
	}
	return slices.Equal(a.Shape, b.Shape) && bytes.Equal(a.Data, b.Data)
}

// ConcatAttributes joins a and b along the leading dimension.
//
// Both must share type, rank and every trailing dimension. On mismatch the
// error is logged and an empty Attribute is returned.
func ConcatAttributes(a, b Attribute) Attribute {
	c, err := concatAttributes(a, b)
	if err != nil {
		slog.Error("concat attribute", "error", err)
		return Attribute{}
	}
	return c
}

func concatAttributes(a, b Attribute) (Attribute, error) {
	if a.Type != b.Type {
		return Attribute{}, fmt.Errorf("type mismatch: %s vs %s", a.Type, b.Type)
	}
	if len(a.Shape) != len(b.Shape) {
		return Attribute{}, fmt.Errorf("rank mismatch: %d vs %d", len(a.Shape), len(b.Shape))
	}
	for i := 1; i < len(a.Shape); i++ {
		if a.Shape[i] != b.Shape[i] {
			return Attribute{}, fmt.Errorf("shape mismatch at dim %d: %v vs %v", i, a.Shape, b.Shape)
		}
	}

	c := Attribute{Type: a.Type, Shape: slices.Clone(a.Shape)}
	if len(c.Shape) > 0 {
		c.Shape[0] += b.Shape[0]
	}
	c.Data = make([]byte, 0, len(a.Data)+len(b.Data))
	c.Data = append(c.Data, a.Data...)
	c.Data = append(c.Data, b.Data...)
	return c, nil
}

// Float32s decodes the payload as float32 values.
// f32, f64 and f16 payloads are supported.
func (a Attribute) Float32s() ([]float32, error) {
	n := a.NumElements()
	if n < 0 {
		return nil, fmt.Errorf("%w: shape %v exceeds %d bytes", ErrSchemaMismatch, a.Shape, MaxAttributeBytes)
	}
	if len(a.Data) < a.ByteSize() {
		return nil, fmt.Errorf("%w: have %d bytes, want %d", ErrSchemaMismatch, len(a.Data), a.ByteSize())
	}

	out := make([]float32, n)
	switch a.Type {
	case TypeF32:
		for i := range out {
			out[i] = math.Float32frombits(binary.LittleEndian.Uint32(a.Data[i*4:]))
		}
	case TypeF64:
		for i := range out {
			out[i] = float32(math.Float64frombits(binary.LittleEndian.Uint64(a.Data[i*8:])))
		}
	case TypeF16:
		for i := range out {
			out[i] = float16.Frombits(binary.LittleEndian.Uint16(a.Data[i*2:])).Float32()
		}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, a.Type)
	}
	return out, nil
}
