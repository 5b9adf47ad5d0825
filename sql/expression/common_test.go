package expression

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/delimsql/delimsql/sql"
)

func eval(t *testing.T, e sql.Expression, row sql.Row) sql.Value {
	t.Helper()
	v, err := e.Eval(sql.NewEmptyContext(), row)
	require.NoError(t, err)
	return v
}

func lit(v sql.Value) sql.Expression {
	return NewLiteral(v)
}
