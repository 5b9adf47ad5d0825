package sql

import (
	"fmt"
	"strings"

	"github.com/spf13/cast"
)

// ColumnType is the advisory type declared for a column of a created
// table. It is used to coerce values inserted after creation; it never
// validates or rewrites cells already loaded.
type ColumnType interface {
	// Name returns the SQL name of the type.
	Name() string
	// Convert coerces a value to this type. Null converts to Null.
	Convert(Value) (Value, error)
}

var (
	// Integer is a 64-bit signed integer column type.
	Integer ColumnType = integerType{}
	// Float is a 64-bit floating point column type.
	Float ColumnType = floatType{}
	// Text is a string column type.
	Text ColumnType = textType{}
	// Boolean is a boolean column type.
	Boolean ColumnType = booleanType{}
)

// ParseColumnType resolves a declared SQL type name to a column type. The
// second return is false when the name is unknown, in which case Text is
// returned as the fallback.
func ParseColumnType(name string) (ColumnType, bool) {
	switch strings.ToUpper(name) {
	case "INTEGER", "INT", "BIGINT":
		return Integer, true
	case "REAL", "FLOAT", "DOUBLE":
		return Float, true
	case "TEXT", "VARCHAR", "CHAR", "STRING":
		return Text, true
	case "BOOLEAN", "BOOL":
		return Boolean, true
	}
	return Text, false
}

// payload returns the native Go payload of the value, for cast coercion.
func payload(v Value) interface{} {
	switch v.Type {
	case IntegerType:
		return v.Int
	case FloatType:
		return v.Float
	case BooleanType:
		return v.Bool
	default:
		return v.Str
	}
}

// reparse narrows string values before a numeric or boolean coercion, so
// that a textual "1.5" or "yes" converts the same way the file loader
// would have parsed it.
func reparse(v Value) Value {
	if v.Type == StringType {
		return ParseValue(v.Str)
	}
	return v
}

type integerType struct{}

func (integerType) Name() string { return "INTEGER" }

func (integerType) Convert(v Value) (Value, error) {
	if v.IsNull() {
		return Null, nil
	}
	v = reparse(v)
	i, err := cast.ToInt64E(payload(v))
	if err != nil {
		return Null, ErrTypeMismatch.New(fmt.Sprintf("cannot convert %v to INTEGER", v))
	}
	return NewInteger(i), nil
}

type floatType struct{}

func (floatType) Name() string { return "REAL" }

func (floatType) Convert(v Value) (Value, error) {
	if v.IsNull() {
		return Null, nil
	}
	v = reparse(v)
	f, err := cast.ToFloat64E(payload(v))
	if err != nil {
		return Null, ErrTypeMismatch.New(fmt.Sprintf("cannot convert %v to REAL", v))
	}
	return NewFloat(f), nil
}

type textType struct{}

func (textType) Name() string { return "TEXT" }

func (textType) Convert(v Value) (Value, error) {
	if v.IsNull() {
		return Null, nil
	}
	s, err := cast.ToStringE(payload(v))
	if err != nil {
		return Null, ErrTypeMismatch.New(fmt.Sprintf("cannot convert %v to TEXT", v))
	}
	return NewString(s), nil
}

type booleanType struct{}

func (booleanType) Name() string { return "BOOLEAN" }

func (booleanType) Convert(v Value) (Value, error) {
	if v.IsNull() {
		return Null, nil
	}
	v = reparse(v)
	switch v.Type {
	case BooleanType:
		return v, nil
	case IntegerType:
		return NewBoolean(v.Int != 0), nil
	}
	b, err := cast.ToBoolE(payload(v))
	if err != nil {
		return Null, ErrTypeMismatch.New(fmt.Sprintf("cannot convert %v to BOOLEAN", v))
	}
	return NewBoolean(b), nil
}
