package sql_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/delimsql/delimsql/sql"
	"github.com/delimsql/delimsql/sql/expression"
)

func TestFunctionRegistryFunction1(t *testing.T) {
	require := require.New(t)

	r := sql.NewFunctionRegistry()
	var expected sql.Expression = expression.NewStar()
	r.RegisterFunction(sql.Function1{
		Name: "func",
		Fn:   func(e sql.Expression) sql.Expression { return expected },
	})

	f, err := r.Function("func")
	require.NoError(err)

	e, err := f.Call()
	require.Error(err)
	require.True(sql.ErrInvalidArgumentNumber.Is(err))
	require.Nil(e)

	e, err = f.Call(expression.NewStar())
	require.NoError(err)
	require.Equal(expected, e)

	e, err = f.Call(expression.NewStar(), expression.NewStar())
	require.Error(err)
	require.True(sql.ErrInvalidArgumentNumber.Is(err))
	require.Nil(e)
}

func TestFunctionRegistryFunctionN(t *testing.T) {
	require := require.New(t)

	r := sql.NewFunctionRegistry()
	var expected sql.Expression = expression.NewStar()
	r.RegisterFunction(sql.FunctionN{
		Name: "func",
		Fn: func(args ...sql.Expression) (sql.Expression, error) {
			if len(args) == 0 {
				return nil, sql.ErrInvalidArgumentNumber.New("func", "1 or more", 0)
			}
			return expected, nil
		},
	})

	f, err := r.Function("func")
	require.NoError(err)

	e, err := f.Call()
	require.Error(err)
	require.Nil(e)

	e, err = f.Call(expression.NewStar())
	require.NoError(err)
	require.Equal(expected, e)

	e, err = f.Call(expression.NewStar(), expression.NewStar())
	require.NoError(err)
	require.Equal(expected, e)
}

func TestFunctionRegistryCaseInsensitive(t *testing.T) {
	require := require.New(t)

	r := sql.NewFunctionRegistry()
	r.RegisterFunction(sql.Function1{
		Name: "UPPER",
		Fn:   func(e sql.Expression) sql.Expression { return e },
	})

	f, err := r.Function("upper")
	require.NoError(err)
	require.Equal("UPPER", f.FunctionName())

	f, err = r.Function("Upper")
	require.NoError(err)
	require.Equal("UPPER", f.FunctionName())
}

func TestFunctionRegistryFunctionNotFound(t *testing.T) {
	require := require.New(t)

	r := sql.NewFunctionRegistry()
	f, err := r.Function("func")
	require.Error(err)
	require.True(sql.ErrFunctionNotFound.Is(err))
	require.Nil(f)
}

func TestFunctionRegistryFunctionSuggestion(t *testing.T) {
	require := require.New(t)

	r := sql.NewFunctionRegistry()
	r.RegisterFunction(sql.Function1{
		Name: "upper",
		Fn:   func(e sql.Expression) sql.Expression { return e },
	})

	_, err := r.Function("uper")
	require.Error(err)
	require.True(sql.ErrFunctionNotFound.Is(err))
	require.EqualError(err, "function not found: uper, maybe you mean upper?")
}
