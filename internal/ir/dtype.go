package ir

// DataType is the element kind of an operand or attribute.
// The numbering follows the descriptor format.
type DataType int

// Element kinds.
const (
	TypeNone DataType = iota
	TypeF32
	TypeF64
	TypeF16
	TypeI32
	TypeI64
	TypeI16
	TypeI8
	TypeU8
	TypeBool
	TypeComplex64
	TypeComplex128
	TypeComplex32
)

var elementSizes = [...]int{
	TypeNone:       0,
	TypeF32:        4,
	TypeF64:        8,
	TypeF16:        2,
	TypeI32:        4,
	TypeI64:        8,
	TypeI16:        2,
	TypeI8:         1,
	TypeU8:         1,
	TypeBool:       1,
	TypeComplex64:  8,
	TypeComplex128: 16,
	TypeComplex32:  4,
}

var typeCodes = [...]string{
	TypeNone:       "",
	TypeF32:        "f32",
	TypeF64:        "f64",
	TypeF16:        "f16",
	TypeI32:        "i32",
	TypeI64:        "i64",
	TypeI16:        "i16",
	TypeI8:         "i8",
	TypeU8:         "u8",
	TypeBool:       "bool",
	TypeComplex64:  "cp64",
	TypeComplex128: "cp128",
	TypeComplex32:  "cp32",
}

// Size returns the byte size of one element. TypeNone and unknown kinds are 0.
func (dt DataType) Size() int {
	if dt < 0 || int(dt) >= len(elementSizes) {
		return 0
	}
	return elementSizes[dt]
}

// String returns the descriptor typecode ("f32", "cp64", ...), or "none".
func (dt DataType) String() string {
	if dt <= TypeNone || int(dt) >= len(typeCodes) {
		return "none"
	}
	return typeCodes[dt]
}

// ParseDataType maps a descriptor typecode to its DataType.
// Unknown codes map to TypeNone.
func ParseDataType(code string) DataType {
	for i := TypeF32; int(i) < len(typeCodes); i++ {
		if typeCodes[i] == code {
			return i
		}
	}
	return TypeNone
}
