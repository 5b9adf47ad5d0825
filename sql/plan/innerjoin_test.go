package plan

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/delimsql/delimsql/filetable"
	"github.com/delimsql/delimsql/sql"
	"github.com/delimsql/delimsql/sql/expression"
)

func TestInnerJoin(t *testing.T) {
	require := require.New(t)
	ctx := sql.NewEmptyContext()

	j := NewInnerJoin(
		NewResolvedTable(newPeopleTable(t)),
		NewResolvedTable(newPetsTable(t)),
		expression.NewEquals(
			expression.NewGetFieldWithTable(0, "people", "id"),
			expression.NewGetFieldWithTable(3, "pets", "owner_id"),
		),
	)

	require.Equal(1, len(j.Expressions()))

	rows, err := sql.NodeToRows(ctx, j)
	require.NoError(err)
	require.Equal([]sql.Row{
		sql.NewRow(sql.NewInteger(1), sql.NewString("alice"), sql.NewInteger(34),
			sql.NewInteger(1), sql.NewString("cat")),
		sql.NewRow(sql.NewInteger(1), sql.NewString("alice"), sql.NewInteger(34),
			sql.NewInteger(1), sql.NewString("dog")),
		sql.NewRow(sql.NewInteger(3), sql.NewString("carol"), sql.Null,
			sql.NewInteger(3), sql.NewString("fish")),
	}, rows)
}

func TestInnerJoinEmptyRightSide(t *testing.T) {
	require := require.New(t)
	ctx := sql.NewEmptyContext()

	empty, err := filetable.NewTable("empty", sql.Schema{{Name: "owner_id"}})
	require.NoError(err)

	j := NewInnerJoin(
		NewResolvedTable(newPeopleTable(t)),
		NewResolvedTable(empty),
		expression.NewEquals(
			expression.NewGetFieldWithTable(0, "people", "id"),
			expression.NewGetFieldWithTable(3, "empty", "owner_id"),
		),
	)

	rows, err := sql.NodeToRows(ctx, j)
	require.NoError(err)
	require.Len(rows, 0)
}

func TestInnerJoinNullConditionDropsPair(t *testing.T) {
	require := require.New(t)
	ctx := sql.NewEmptyContext()

	// age > owner_id is NULL for carol's pairs, so none of them joins.
	j := NewInnerJoin(
		NewResolvedTable(newPeopleTable(t)),
		NewResolvedTable(newPetsTable(t)),
		expression.NewGreaterThan(
			expression.NewGetFieldWithTable(2, "people", "age"),
			expression.NewGetFieldWithTable(3, "pets", "owner_id"),
		),
	)

	rows, err := sql.NodeToRows(ctx, j)
	require.NoError(err)
	require.Len(rows, 9)
	for _, row := range rows {
		require.NotEqual(sql.NewString("carol"), row[1])
	}
}
