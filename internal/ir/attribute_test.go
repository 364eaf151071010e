package ir

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/x448/float16"
)

func TestDataType(t *testing.T) {
	sizes := map[string]int{
		"f32": 4, "f64": 8, "f16": 2, "i32": 4, "i64": 8, "i16": 2,
		"i8": 1, "u8": 1, "bool": 1, "cp64": 8, "cp128": 16, "cp32": 4,
	}
	for code, size := range sizes {
		dt := ParseDataType(code)
		require.NotEqual(t, TypeNone, dt, code)
		assert.Equal(t, size, dt.Size(), code)
		assert.Equal(t, code, dt.String())
	}

	assert.Equal(t, TypeNone, ParseDataType("f8"))
	assert.Equal(t, 0, TypeNone.Size())
	assert.Equal(t, "none", TypeNone.String())
	assert.Equal(t, 0, DataType(99).Size())
}

func TestConcatAttributes(t *testing.T) {
	a := NewFloat32Attribute([]int{2, 3}, []float32{1, 2, 3, 4, 5, 6})
	b := NewFloat32Attribute([]int{1, 3}, []float32{7, 8, 9})

	c := ConcatAttributes(a, b)
	assert.Equal(t, TypeF32, c.Type)
	assert.Equal(t, []int{3, 3}, c.Shape)
	assert.Len(t, c.Data, len(a.Data)+len(b.Data))

	values, err := c.Float32s()
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 2, 3, 4, 5, 6, 7, 8, 9}, values)

	// Inputs are untouched.
	assert.Equal(t, []int{2, 3}, a.Shape)
}

func TestConcatAttributes_Mismatch(t *testing.T) {
	f32 := NewFloat32Attribute([]int{1, 2}, []float32{1, 2})

	tests := []struct {
		name string
		b    Attribute
	}{
		{"type", Attribute{Type: TypeI32, Shape: []int{1, 2}, Data: make([]byte, 8)}},
		{"rank", NewFloat32Attribute([]int{2}, []float32{1, 2})},
		{"trailing dim", NewFloat32Attribute([]int{1, 3}, []float32{1, 2, 3})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := ConcatAttributes(f32, tt.b)
			assert.True(t, c.Empty())
			assert.Empty(t, c.Shape)
			assert.Empty(t, c.Data)
		})
	}
}

func TestAttributeEqual(t *testing.T) {
	a := NewFloat32Attribute([]int{2}, []float32{1, 2})
	same := NewFloat32Attribute([]int{2}, []float32{1, 2})
	otherData := NewFloat32Attribute([]int{2}, []float32{1, 3})
	otherShape := NewFloat32Attribute([]int{1, 2}, []float32{1, 2})
	otherType := Attribute{Type: TypeI32, Shape: []int{2}, Data: a.Data}

	assert.True(t, a.Equal(a))
	assert.True(t, a.Equal(same))
	assert.True(t, same.Equal(a))
	assert.False(t, a.Equal(otherData))
	assert.False(t, a.Equal(otherShape))
	assert.False(t, a.Equal(otherType))
	assert.False(t, otherType.Equal(a))
	assert.True(t, Attribute{}.Equal(Attribute{Shape: []int{3}}), "untyped attributes compare equal")
}

func TestAttributeFloat32s(t *testing.T) {
	t.Run("f16", func(t *testing.T) {
		data := make([]byte, 4)
		binary.LittleEndian.PutUint16(data[0:], float16.Fromfloat32(1.5).Bits())
		binary.LittleEndian.PutUint16(data[2:], float16.Fromfloat32(-0.25).Bits())
		attr := Attribute{Type: TypeF16, Shape: []int{2}, Data: data}

		values, err := attr.Float32s()
		require.NoError(t, err)
		assert.Equal(t, []float32{1.5, -0.25}, values)
	})

	t.Run("f64", func(t *testing.T) {
		data := make([]byte, 8)
		binary.LittleEndian.PutUint64(data, math.Float64bits(3.25))
		attr := Attribute{Type: TypeF64, Shape: []int{1}, Data: data}

		values, err := attr.Float32s()
		require.NoError(t, err)
		assert.Equal(t, []float32{3.25}, values)
	})

	t.Run("unsupported", func(t *testing.T) {
		attr := Attribute{Type: TypeI8, Shape: []int{1}, Data: []byte{1}}
		_, err := attr.Float32s()
		assert.ErrorIs(t, err, ErrUnsupportedType)
	})

	t.Run("short payload", func(t *testing.T) {
		attr := Attribute{Type: TypeF32, Shape: []int{2}, Data: make([]byte, 4)}
		_, err := attr.Float32s()
		assert.ErrorIs(t, err, ErrSchemaMismatch)
	})
}

func TestAttributeSizeOutOfRange(t *testing.T) {
	overflow := Attribute{Type: TypeF32, Shape: []int{2305843009213693952, 1}}
	assert.Equal(t, -1, overflow.NumElements())
	assert.Equal(t, -1, overflow.ByteSize())
	_, err := overflow.Float32s()
	assert.ErrorIs(t, err, ErrSchemaMismatch)

	tooLarge := Attribute{Type: TypeF32, Shape: []int{MaxAttributeBytes/4 + 1}}
	assert.Equal(t, -1, tooLarge.ByteSize())

	atLimit := Attribute{Type: TypeF32, Shape: []int{MaxAttributeBytes / 4}}
	assert.Equal(t, MaxAttributeBytes, atLimit.ByteSize())

	zero := Attribute{Type: TypeF32, Shape: []int{2305843009213693952, 0}}
	assert.Equal(t, 0, zero.ByteSize())
}
