package expression

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/delimsql/delimsql/sql"
)

func TestArithmetic(t *testing.T) {
	testCases := []struct {
		name     string
		expr     sql.Expression
		expected sql.Value
	}{
		{"int plus int", NewPlus(lit(sql.NewInteger(2)), lit(sql.NewInteger(3))), sql.NewInteger(5)},
		{"int minus int", NewMinus(lit(sql.NewInteger(2)), lit(sql.NewInteger(3))), sql.NewInteger(-1)},
		{"int mult int", NewMult(lit(sql.NewInteger(4)), lit(sql.NewInteger(3))), sql.NewInteger(12)},
		{"int div int truncates", NewDiv(lit(sql.NewInteger(7)), lit(sql.NewInteger(2))), sql.NewInteger(3)},
		{"int plus float promotes", NewPlus(lit(sql.NewInteger(2)), lit(sql.NewFloat(0.5))), sql.NewFloat(2.5)},
		{"float div int", NewDiv(lit(sql.NewFloat(7)), lit(sql.NewInteger(2))), sql.NewFloat(3.5)},
		{"float mult float", NewMult(lit(sql.NewFloat(1.5)), lit(sql.NewFloat(2))), sql.NewFloat(3)},
		{"negate int", NewUnaryMinus(lit(sql.NewInteger(3))), sql.NewInteger(-3)},
		{"negate float", NewUnaryMinus(lit(sql.NewFloat(1.5))), sql.NewFloat(-1.5)},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, eval(t, tt.expr, nil))
		})
	}
}

func TestArithmeticErrors(t *testing.T) {
	testCases := []struct {
		name string
		expr sql.Expression
		kind func(error) bool
	}{
		{"string operand", NewPlus(lit(sql.NewString("a")), lit(sql.NewInteger(1))), sql.ErrTypeMismatch.Is},
		{"boolean operand", NewMult(lit(sql.NewBoolean(true)), lit(sql.NewInteger(2))), sql.ErrTypeMismatch.Is},
		{"null operand", NewMinus(lit(sql.Null), lit(sql.NewInteger(1))), sql.ErrTypeMismatch.Is},
		{"int division by zero", NewDiv(lit(sql.NewInteger(1)), lit(sql.NewInteger(0))), sql.ErrDivisionByZero.Is},
		{"float division by zero", NewDiv(lit(sql.NewFloat(1)), lit(sql.NewFloat(0))), sql.ErrDivisionByZero.Is},
		{"mixed division by zero", NewDiv(lit(sql.NewFloat(1)), lit(sql.NewInteger(0))), sql.ErrDivisionByZero.Is},
		{"negate string", NewUnaryMinus(lit(sql.NewString("x"))), sql.ErrTypeMismatch.Is},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.expr.Eval(sql.NewEmptyContext(), nil)
			require.Error(t, err)
			require.True(t, tt.kind(err))
		})
	}
}
