package sql

import (
	"math"
	"strconv"
	"strings"
)

// ValueType identifies the variant held by a Value.
type ValueType byte

const (
	// NullType is the type of the Null value.
	NullType ValueType = iota
	// IntegerType is a 64-bit signed integer.
	IntegerType
	// FloatType is a 64-bit floating point number.
	FloatType
	// StringType is a UTF-8 string.
	StringType
	// BooleanType is a boolean.
	BooleanType
)

// String implements the fmt.Stringer interface.
func (t ValueType) String() string {
	switch t {
	case NullType:
		return "NULL"
	case IntegerType:
		return "INTEGER"
	case FloatType:
		return "FLOAT"
	case StringType:
		return "STRING"
	case BooleanType:
		return "BOOLEAN"
	}
	return "INVALID"
}

// Value is a single cell value. It is a closed variant over null, integer,
// float, string and boolean; exactly one of the payload fields is meaningful,
// selected by Type. The zero Value is Null.
type Value struct {
	Type  ValueType
	Int   int64
	Float float64
	Str   string
	Bool  bool
}

// Null is the null value.
var Null = Value{Type: NullType}

// NewInteger creates an integer Value.
func NewInteger(i int64) Value {
	return Value{Type: IntegerType, Int: i}
}

// NewFloat creates a float Value.
func NewFloat(f float64) Value {
	return Value{Type: FloatType, Float: f}
}

// NewString creates a string Value.
func NewString(s string) Value {
	return Value{Type: StringType, Str: s}
}

// NewBoolean creates a boolean Value.
func NewBoolean(b bool) Value {
	return Value{Type: BooleanType, Bool: b}
}

// ParseValue parses raw text, as read from a delimited file, into a Value.
// It tries integer, float and boolean (true/false, yes/no, case-insensitive)
// in that order before falling back to string. The empty string parses to
// Null. The numeric boolean spellings 1/0 are subsumed by the integer parse.
func ParseValue(s string) Value {
	if s == "" {
		return Null
	}

	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return NewInteger(i)
	}

	if f, err := strconv.ParseFloat(s, 64); err == nil {
		if !math.IsNaN(f) && !math.IsInf(f, 0) {
			return NewFloat(f)
		}
	}

	switch strings.ToLower(s) {
	case "true", "yes":
		return NewBoolean(true)
	case "false", "no":
		return NewBoolean(false)
	}

	return NewString(s)
}

// IsNull reports whether the value is Null.
func (v Value) IsNull() bool {
	return v.Type == NullType
}

// IsNumber reports whether the value is an integer or a float.
func (v Value) IsNumber() bool {
	return v.Type == IntegerType || v.Type == FloatType
}

// Num returns the numeric payload promoted to float64. It is only
// meaningful when IsNumber is true.
func (v Value) Num() float64 {
	if v.Type == IntegerType {
		return float64(v.Int)
	}
	return v.Float
}

// rank is the position of the value's type in the total order
// Null < Boolean < Number < String.
func (v Value) rank() int {
	switch v.Type {
	case NullType:
		return 0
	case BooleanType:
		return 1
	case IntegerType, FloatType:
		return 2
	default:
		return 3
	}
}

// Compare returns -1, 0 or 1 comparing v to o under the total order
// Null < Boolean < Number < String. Integers and floats compare
// numerically, promoting the integer when the types differ; booleans
// order false before true; strings order by code point.
func (v Value) Compare(o Value) int {
	vr, or := v.rank(), o.rank()
	if vr != or {
		if vr < or {
			return -1
		}
		return 1
	}

	switch v.Type {
	case NullType:
		return 0
	case BooleanType:
		if v.Bool == o.Bool {
			return 0
		}
		if !v.Bool {
			return -1
		}
		return 1
	case IntegerType, FloatType:
		if v.Type == IntegerType && o.Type == IntegerType {
			if v.Int == o.Int {
				return 0
			}
			if v.Int < o.Int {
				return -1
			}
			return 1
		}
		a, b := v.Num(), o.Num()
		if a == b {
			return 0
		}
		if a < b {
			return -1
		}
		return 1
	default:
		return strings.Compare(v.Str, o.Str)
	}
}

// Equals reports whether v equals o. Null equals Null, numbers compare
// after integer promotion, and any other cross-type pair is not equal.
func (v Value) Equals(o Value) bool {
	if v.Type == NullType || o.Type == NullType {
		return v.Type == o.Type
	}
	if v.IsNumber() && o.IsNumber() {
		return v.Num() == o.Num()
	}
	if v.Type != o.Type {
		return false
	}
	switch v.Type {
	case BooleanType:
		return v.Bool == o.Bool
	default:
		return v.Str == o.Str
	}
}

// String implements the fmt.Stringer interface. It renders the display
// form of the value: NULL for Null, the shortest round-trippable decimal
// for floats, true/false for booleans.
func (v Value) String() string {
	switch v.Type {
	case NullType:
		return "NULL"
	case IntegerType:
		return strconv.FormatInt(v.Int, 10)
	case FloatType:
		return strconv.FormatFloat(v.Float, 'f', -1, 64)
	case BooleanType:
		return strconv.FormatBool(v.Bool)
	default:
		return v.Str
	}
}
