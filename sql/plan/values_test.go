package plan

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/delimsql/delimsql/sql"
	"github.com/delimsql/delimsql/sql/expression"
)

func TestValues(t *testing.T) {
	require := require.New(t)
	ctx := sql.NewEmptyContext()

	v := NewValues([][]sql.Expression{
		{
			expression.NewLiteral(sql.NewInteger(1)),
			expression.NewLiteral(sql.NewString("one")),
		},
		{
			expression.NewPlus(
				expression.NewLiteral(sql.NewInteger(1)),
				expression.NewLiteral(sql.NewInteger(1)),
			),
			expression.NewLiteral(sql.Null),
		},
	})

	require.True(v.Resolved())
	require.Nil(v.Children())

	rows, err := sql.NodeToRows(ctx, v)
	require.NoError(err)
	require.Equal([]sql.Row{
		{sql.NewInteger(1), sql.NewString("one")},
		{sql.NewInteger(2), sql.Null},
	}, rows)
}
