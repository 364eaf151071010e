package ir

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// ParamType tags the payload held by a Parameter.
type ParamType int

// Parameter kinds.
const (
	ParamNone ParamType = iota
	ParamBool
	ParamInt
	ParamFloat
	ParamString
	ParamIntArray
	ParamFloatArray
	ParamStringArray
)

// String returns a human-readable name for the parameter kind.
func (pt ParamType) String() string {
	switch pt {
	case ParamNone:
		return "none"
	case ParamBool:
		return "bool"
	case ParamInt:
		return "int"
	case ParamFloat:
		return "float"
	case ParamString:
		return "string"
	case ParamIntArray:
		return "int[]"
	case ParamFloatArray:
		return "float[]"
	case ParamStringArray:
		return "string[]"
	default:
		return "unknown"
	}
}

// Parameter is a small tagged configuration value attached to an operator.
// Only the field matching Type is meaningful.
type Parameter struct {
	Type    ParamType
	B       bool
	I       int
	F       float32
	S       string
	Ints    []int
	Floats  []float32
	Strings []string
}

// BoolParam returns a bool parameter.
func BoolParam(b bool) Parameter { return Parameter{Type: ParamBool, B: b} }

// IntParam returns an int parameter.
func IntParam(i int) Parameter { return Parameter{Type: ParamInt, I: i} }

// FloatParam returns a float parameter.
func FloatParam(f float32) Parameter { return Parameter{Type: ParamFloat, F: f} }

// StringParam returns a string parameter.
func StringParam(s string) Parameter { return Parameter{Type: ParamString, S: s} }

// IntsParam returns an int-array parameter.
func IntsParam(v ...int) Parameter { return Parameter{Type: ParamIntArray, Ints: v} }

// FloatsParam returns a float-array parameter.
func FloatsParam(v ...float32) Parameter { return Parameter{Type: ParamFloatArray, Floats: v} }

// StringsParam returns a string-array parameter.
func StringsParam(v ...string) Parameter { return Parameter{Type: ParamStringArray, Strings: v} }

// Equal reports whether p and q have the same tag and payload.
func (p Parameter) Equal(q Parameter) bool {
	if p.Type != q.Type {
		return false
	}
	switch p.Type {
	case ParamNone:
		return true
	case ParamBool:
		return p.B == q.B
	case ParamInt:
		return p.I == q.I
	case ParamFloat:
		return p.F == q.F
	case ParamString:
		return p.S == q.S
	case ParamIntArray:
		return slices.Equal(p.Ints, q.Ints)
	case ParamFloatArray:
		return slices.Equal(p.Floats, q.Floats)
	case ParamStringArray:
		return slices.Equal(p.Strings, q.Strings)
	default:
		return false
	}
}

func (p Parameter) expect(t ParamType) error {
	if p.Type != t {
		return fmt.Errorf("%w: want %s, got %s", ErrParameterType, t, p.Type)
	}
	return nil
}

// AsBool returns the bool payload.
func (p Parameter) AsBool() (bool, error) {
	return p.B, p.expect(ParamBool)
}

// AsInt returns the int payload.
func (p Parameter) AsInt() (int, error) {
	return p.I, p.expect(ParamInt)
}

// AsFloat returns the float payload. Int parameters are widened.
func (p Parameter) AsFloat() (float32, error) {
	if p.Type == ParamInt {
		return float32(p.I), nil
	}
	return p.F, p.expect(ParamFloat)
}

// AsString returns the string payload.
func (p Parameter) AsString() (string, error) {
	return p.S, p.expect(ParamString)
}

// AsInts returns the int-array payload.
func (p Parameter) AsInts() ([]int, error) {
	return p.Ints, p.expect(ParamIntArray)
}

// AsFloats returns the float-array payload.
func (p Parameter) AsFloats() ([]float32, error) {
	return p.Floats, p.expect(ParamFloatArray)
}

// AsStrings returns the string-array payload.
func (p Parameter) AsStrings() ([]string, error) {
	return p.Strings, p.expect(ParamStringArray)
}

// String renders the parameter in descriptor syntax.
func (p Parameter) String() string {
	switch p.Type {
	case ParamBool:
		if p.B {
			return "True"
		}
		return "False"
	case ParamInt:
		return strconv.Itoa(p.I)
	case ParamFloat:
		return formatFloat(p.F)
	case ParamString:
		return p.S
	case ParamIntArray:
		return joinList(p.Ints, strconv.Itoa)
	case ParamFloatArray:
		return joinList(p.Floats, formatFloat)
	case ParamStringArray:
		return joinList(p.Strings, func(s string) string { return s })
	default:
		return "None"
	}
}

func formatFloat(f float32) string {
	s := strconv.FormatFloat(float64(f), 'g', -1, 32)
	// Keep the token classified as a float when read back.
	if !strings.ContainsAny(s, ".e") {
		s += ".0"
	}
	return s
}

func joinList[T any](v []T, format func(T) string) string {
	parts := make([]string, len(v))
	for i, x := range v {
		parts[i] = format(x)
	}
	return "(" + strings.Join(parts, ",") + ")"
}

// scalarKind classifies a single token: string, float or int.
type scalarKind int

const (
	kindString scalarKind = iota
	kindFloat
	kindInt
)

func classify(token string) scalarKind {
	digits := strings.TrimPrefix(token, "-")
	if digits == "" || digits[0] < '0' || digits[0] > '9' {
		return kindString
	}
	if strings.ContainsAny(digits, ".e") {
		return kindFloat
	}
	return kindInt
}

func parseFloat32(token string) (float32, error) {
	f, err := strconv.ParseFloat(token, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: float %q", ErrParse, token)
	}
	return float32(f), nil
}

func parseInt(token string) (int, error) {
	i, err := strconv.Atoi(token)
	if err != nil {
		return 0, fmt.Errorf("%w: integer %q", ErrParse, token)
	}
	return i, nil
}

// ParseParameter parses a descriptor value into a Parameter.
//
// Precedence: "None", "()" and "[]" are none; "True"/"False" are bool;
// a leading '(' or '[' starts a list whose elements must all be of one kind;
// a token whose first character (after an optional '-') is not a digit is a
// string; a token containing '.' or 'e' is a float; anything else is an int.
func ParseParameter(value string) (Parameter, error) {
	switch value {
	case "None", "()", "[]":
		return Parameter{}, nil
	case "True", "False":
		return BoolParam(value == "True"), nil
	case "":
		return Parameter{}, fmt.Errorf("%w: empty value", ErrParse)
	}

	if value[0] == '(' || value[0] == '[' {
		return parseList(value)
	}

	switch classify(value) {
	case kindString:
		return StringParam(value), nil
	case kindFloat:
		f, err := parseFloat32(value)
		if err != nil {
			return Parameter{}, err
		}
		return FloatParam(f), nil
	default:
		i, err := parseInt(value)
		if err != nil {
			return Parameter{}, err
		}
		return IntParam(i), nil
	}
}

func parseList(value string) (Parameter, error) {
	closing := byte(')')
	if value[0] == '[' {
		closing = ']'
	}
	if len(value) < 2 || value[len(value)-1] != closing {
		return Parameter{}, fmt.Errorf("%w: unterminated list %q", ErrParse, value)
	}

	elems := strings.Split(value[1:len(value)-1], ",")
	kind := classify(elems[0])

	var p Parameter
	for _, elem := range elems {
		if elem == "" {
			return Parameter{}, fmt.Errorf("%w: empty element in %q", ErrParse, value)
		}
		if classify(elem) != kind {
			return Parameter{}, fmt.Errorf("%w: mixed element kinds in %q", ErrParse, value)
		}
		switch kind {
		case kindString:
			p.Strings = append(p.Strings, elem)
		case kindFloat:
			f, err := parseFloat32(elem)
			if err != nil {
				return Parameter{}, err
			}
			p.Floats = append(p.Floats, f)
		default:
			i, err := parseInt(elem)
			if err != nil {
				return Parameter{}, err
			}
			p.Ints = append(p.Ints, i)
		}
	}

	switch kind {
	case kindString:
		p.Type = ParamStringArray
	case kindFloat:
		p.Type = ParamFloatArray
	default:
		p.Type = ParamIntArray
	}
	return p, nil
}
