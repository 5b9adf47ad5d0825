package plan

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/delimsql/delimsql/filetable"
	"github.com/delimsql/delimsql/sql"
)

func newPeopleTable(t *testing.T) *filetable.Table {
	t.Helper()

	table, err := filetable.NewTable("people", sql.Schema{
		{Name: "id"},
		{Name: "name"},
		{Name: "age"},
	})
	require.NoError(t, err)

	for _, row := range []sql.Row{
		sql.NewRow(sql.NewInteger(1), sql.NewString("alice"), sql.NewInteger(34)),
		sql.NewRow(sql.NewInteger(2), sql.NewString("bob"), sql.NewInteger(25)),
		sql.NewRow(sql.NewInteger(3), sql.NewString("carol"), sql.Null),
		sql.NewRow(sql.NewInteger(4), sql.NewString("dan"), sql.NewInteger(25)),
	} {
		require.NoError(t, table.AppendRow(row))
	}

	return table
}

func newPetsTable(t *testing.T) *filetable.Table {
	t.Helper()

	table, err := filetable.NewTable("pets", sql.Schema{
		{Name: "owner_id"},
		{Name: "pet"},
	})
	require.NoError(t, err)

	for _, row := range []sql.Row{
		sql.NewRow(sql.NewInteger(1), sql.NewString("cat")),
		sql.NewRow(sql.NewInteger(1), sql.NewString("dog")),
		sql.NewRow(sql.NewInteger(3), sql.NewString("fish")),
	} {
		require.NoError(t, table.AppendRow(row))
	}

	return table
}

// fixedTable is a table without mutation support, to exercise the
// not-supported paths of the mutation nodes.
type fixedTable struct {
	name   string
	schema sql.Schema
	rows   []sql.Row
}

func (t *fixedTable) Name() string       { return t.name }
func (t *fixedTable) Schema() sql.Schema { return t.schema }

func (t *fixedTable) RowIter(ctx *sql.Context) (sql.RowIter, error) {
	return sql.RowsToRowIter(t.rows...), nil
}
