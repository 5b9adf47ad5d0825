package sql

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseColumnType(t *testing.T) {
	testCases := []struct {
		decl     string
		expected ColumnType
		known    bool
	}{
		{"INTEGER", Integer, true},
		{"int", Integer, true},
		{"BIGINT", Integer, true},
		{"REAL", Float, true},
		{"double", Float, true},
		{"TEXT", Text, true},
		{"VarChar", Text, true},
		{"STRING", Text, true},
		{"BOOLEAN", Boolean, true},
		{"bool", Boolean, true},
		{"GEOMETRY", Text, false},
	}

	for _, tt := range testCases {
		t.Run(tt.decl, func(t *testing.T) {
			typ, known := ParseColumnType(tt.decl)
			require.Equal(t, tt.expected, typ)
			require.Equal(t, tt.known, known)
		})
	}
}

func TestColumnTypeConvert(t *testing.T) {
	testCases := []struct {
		typ      ColumnType
		in       Value
		expected Value
		err      bool
	}{
		{Integer, NewInteger(5), NewInteger(5), false},
		{Integer, NewString("5"), NewInteger(5), false},
		{Integer, NewFloat(1.9), NewInteger(1), false},
		{Integer, NewBoolean(true), NewInteger(1), false},
		{Integer, Null, Null, false},
		{Integer, NewString("five"), Null, true},
		{Float, NewString("1.5"), NewFloat(1.5), false},
		{Float, NewInteger(2), NewFloat(2), false},
		{Float, NewString("nope"), Null, true},
		{Text, NewInteger(42), NewString("42"), false},
		{Text, NewBoolean(false), NewString("false"), false},
		{Text, NewString("x"), NewString("x"), false},
		{Boolean, NewString("yes"), NewBoolean(true), false},
		{Boolean, NewString("false"), NewBoolean(false), false},
		{Boolean, NewInteger(0), NewBoolean(false), false},
		{Boolean, NewInteger(3), NewBoolean(true), false},
		{Boolean, NewString("maybe"), Null, true},
	}

	for _, tt := range testCases {
		t.Run(tt.typ.Name()+"/"+tt.in.String(), func(t *testing.T) {
			got, err := tt.typ.Convert(tt.in)
			if tt.err {
				require.Error(t, err)
				require.True(t, ErrTypeMismatch.Is(err))
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.expected, got)
		})
	}
}
