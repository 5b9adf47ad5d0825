package plan

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/delimsql/delimsql/sql"
	"github.com/delimsql/delimsql/sql/expression"
	"github.com/delimsql/delimsql/sql/expression/function/aggregation"
)

func TestProject(t *testing.T) {
	require := require.New(t)
	ctx := sql.NewEmptyContext()

	p := NewProject(
		[]sql.Expression{expression.NewGetFieldWithTable(1, "people", "name")},
		NewResolvedTable(newPeopleTable(t)),
	)

	require.Equal(1, len(p.Children()))
	require.Equal(sql.Schema{{Name: "name", Source: "people"}}, p.Schema())

	rows, err := sql.NodeToRows(ctx, p)
	require.NoError(err)
	require.Equal([]sql.Row{
		{sql.NewString("alice")},
		{sql.NewString("bob")},
		{sql.NewString("carol")},
		{sql.NewString("dan")},
	}, rows)
}

func TestProjectSchemaNaming(t *testing.T) {
	require := require.New(t)

	p := NewProject(
		[]sql.Expression{
			expression.NewAlias(expression.NewGetField(2, "age"), "years"),
			expression.NewGetFieldWithTable(0, "people", "id"),
			aggregation.NewFirst(expression.NewGetFieldWithTable(1, "people", "name")),
			expression.NewPlus(
				expression.NewGetField(0, "id"),
				expression.NewLiteral(sql.NewInteger(1)),
			),
		},
		NewResolvedTable(newPeopleTable(t)),
	)

	require.Equal(sql.Schema{
		{Name: "years"},
		{Name: "id", Source: "people"},
		{Name: "name", Source: "people"},
		{Name: "id + 1"},
	}, p.Schema())
}

func TestProjectExpressionError(t *testing.T) {
	require := require.New(t)
	ctx := sql.NewEmptyContext()

	p := NewProject(
		[]sql.Expression{
			expression.NewPlus(
				expression.NewGetField(1, "name"),
				expression.NewLiteral(sql.NewInteger(1)),
			),
		},
		NewResolvedTable(newPeopleTable(t)),
	)

	_, err := sql.NodeToRows(ctx, p)
	require.Error(err)
	require.True(sql.ErrTypeMismatch.Is(err))
}

func TestTableAlias(t *testing.T) {
	require := require.New(t)
	ctx := sql.NewEmptyContext()

	alias := NewTableAlias("p", NewResolvedTable(newPeopleTable(t)))
	require.Equal("p", alias.Name())

	for _, col := range alias.Schema() {
		require.Equal("p", col.Source)
	}

	rows, err := sql.NodeToRows(ctx, alias)
	require.NoError(err)
	require.Len(rows, 4)
}
