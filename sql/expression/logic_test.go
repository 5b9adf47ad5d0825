package expression

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/delimsql/delimsql/sql"
)

var (
	vTrue  = sql.NewBoolean(true)
	vFalse = sql.NewBoolean(false)
)

func TestAndTruthTable(t *testing.T) {
	testCases := []struct {
		name     string
		l, r     sql.Value
		expected sql.Value
	}{
		{"true and true", vTrue, vTrue, vTrue},
		{"true and false", vTrue, vFalse, vFalse},
		{"false and true", vFalse, vTrue, vFalse},
		{"false and false", vFalse, vFalse, vFalse},
		{"null and false", sql.Null, vFalse, vFalse},
		{"false and null", vFalse, sql.Null, vFalse},
		{"null and true", sql.Null, vTrue, sql.Null},
		{"true and null", vTrue, sql.Null, sql.Null},
		{"null and null", sql.Null, sql.Null, sql.Null},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, eval(t, NewAnd(lit(tt.l), lit(tt.r)), nil))
		})
	}
}

func TestOrTruthTable(t *testing.T) {
	testCases := []struct {
		name     string
		l, r     sql.Value
		expected sql.Value
	}{
		{"true or true", vTrue, vTrue, vTrue},
		{"true or false", vTrue, vFalse, vTrue},
		{"false or true", vFalse, vTrue, vTrue},
		{"false or false", vFalse, vFalse, vFalse},
		{"null or true", sql.Null, vTrue, vTrue},
		{"true or null", vTrue, sql.Null, vTrue},
		{"null or false", sql.Null, vFalse, sql.Null},
		{"false or null", vFalse, sql.Null, sql.Null},
		{"null or null", sql.Null, sql.Null, sql.Null},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, eval(t, NewOr(lit(tt.l), lit(tt.r)), nil))
		})
	}
}

func TestNot(t *testing.T) {
	require := require.New(t)

	require.Equal(vFalse, eval(t, NewNot(lit(vTrue)), nil))
	require.Equal(vTrue, eval(t, NewNot(lit(vFalse)), nil))
	require.Equal(sql.Null, eval(t, NewNot(lit(sql.Null)), nil))

	_, err := NewNot(lit(sql.NewInteger(1))).Eval(sql.NewEmptyContext(), nil)
	require.Error(err)
	require.True(sql.ErrTypeMismatch.Is(err))
}

func TestLogicTypeErrors(t *testing.T) {
	require := require.New(t)

	_, err := NewAnd(lit(sql.NewInteger(1)), lit(vTrue)).Eval(sql.NewEmptyContext(), nil)
	require.Error(err)
	require.True(sql.ErrTypeMismatch.Is(err))

	_, err = NewOr(lit(vFalse), lit(sql.NewString("x"))).Eval(sql.NewEmptyContext(), nil)
	require.Error(err)
	require.True(sql.ErrTypeMismatch.Is(err))
}

func TestIsNull(t *testing.T) {
	require := require.New(t)

	require.Equal(vTrue, eval(t, NewIsNull(lit(sql.Null)), nil))
	require.Equal(vFalse, eval(t, NewIsNull(lit(sql.NewInteger(0))), nil))

	// IS NOT NULL is expressed as NOT (x IS NULL).
	require.Equal(vFalse, eval(t, NewNot(NewIsNull(lit(sql.Null))), nil))
	require.Equal(vTrue, eval(t, NewNot(NewIsNull(lit(sql.NewString("")))), nil))
}
