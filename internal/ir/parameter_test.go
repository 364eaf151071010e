package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseParameter(t *testing.T) {
	tests := []struct {
		in   string
		want Parameter
	}{
		{"None", Parameter{}},
		{"()", Parameter{}},
		{"[]", Parameter{}},
		{"True", BoolParam(true)},
		{"False", BoolParam(false)},
		{"1", IntParam(1)},
		{"-3", IntParam(-3)},
		{"0.5", FloatParam(0.5)},
		{"1e-05", FloatParam(1e-5)},
		{"-2.5", FloatParam(-2.5)},
		{"zeros", StringParam("zeros")},
		{"-foo", StringParam("-foo")},
		{"-", StringParam("-")},
		{"inf", StringParam("inf")},
		{"(1,1)", IntsParam(1, 1)},
		{"[3,-3]", IntsParam(3, -3)},
		{"(0.5,1.0e+00)", FloatsParam(0.5, 1)},
		{"(nearest,bilinear)", StringsParam("nearest", "bilinear")},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseParameter(tt.in)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "want %+v, got %+v", tt.want, got)
		})
	}
}

func TestParseParameter_Malformed(t *testing.T) {
	for _, in := range []string{
		"",
		"1abc",
		"1.2.3",
		"99999999999999999999",
		"(1,",
		"(1,,2)",
		"(1,)",
		"(1,2.5)",   // mixed int and float
		"(1,relu)",  // mixed int and string
		"[1,2)",     // mismatched bracket
		"(a,b,1e3)", // mixed string and float
	} {
		t.Run(in, func(t *testing.T) {
			_, err := ParseParameter(in)
			assert.ErrorIs(t, err, ErrParse)
		})
	}
}

func TestParameterEqual(t *testing.T) {
	params := []Parameter{
		{},
		BoolParam(true),
		IntParam(1),
		FloatParam(1),
		StringParam("1"),
		IntsParam(1),
		FloatsParam(1),
		StringsParam("1"),
	}

	for i, p := range params {
		assert.True(t, p.Equal(p), "reflexive %s", p.Type)
		for j, q := range params {
			assert.Equal(t, p.Equal(q), q.Equal(p), "symmetric %s/%s", p.Type, q.Type)
			if i != j {
				assert.False(t, p.Equal(q), "%s must differ from %s", p.Type, q.Type)
			}
		}
	}

	assert.False(t, IntsParam(1, 2).Equal(IntsParam(2, 1)))
	assert.False(t, IntParam(1).Equal(IntParam(2)))
	assert.True(t, StringsParam("a", "b").Equal(StringsParam("a", "b")))
}

func TestParameterAccessors(t *testing.T) {
	i, err := IntParam(4).AsInt()
	require.NoError(t, err)
	assert.Equal(t, 4, i)

	_, err = StringParam("4").AsInt()
	assert.ErrorIs(t, err, ErrParameterType)

	f, err := IntParam(2).AsFloat()
	require.NoError(t, err)
	assert.Equal(t, float32(2), f)

	b, err := BoolParam(true).AsBool()
	require.NoError(t, err)
	assert.True(t, b)

	_, err = Parameter{}.AsBool()
	assert.ErrorIs(t, err, ErrParameterType)

	ints, err := IntsParam(1, 2).AsInts()
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, ints)

	_, err = FloatsParam(1).AsInts()
	assert.ErrorIs(t, err, ErrParameterType)
}

func TestParameterString(t *testing.T) {
	for _, p := range []Parameter{
		{},
		BoolParam(false),
		IntParam(-7),
		FloatParam(2),
		FloatParam(0.25),
		StringParam("replicate"),
		IntsParam(1, 2, 3),
		FloatsParam(0.5, 3),
		StringsParam("a", "b"),
	} {
		back, err := ParseParameter(p.String())
		require.NoError(t, err, p.String())
		assert.True(t, p.Equal(back), "%s", p.String())
	}
}
