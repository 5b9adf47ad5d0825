package delimsql_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	errors "gopkg.in/src-d/go-errors.v1"

	"github.com/delimsql/delimsql"
	"github.com/delimsql/delimsql/filetable"
	"github.com/delimsql/delimsql/sql"
	"github.com/delimsql/delimsql/sql/analyzer"
	"github.com/delimsql/delimsql/sql/parse"
	"github.com/delimsql/delimsql/test"
)

var queries = []struct {
	query    string
	expected []sql.Row
}{
	{
		"SELECT * FROM people;",
		[]sql.Row{
			{sql.NewInteger(1), sql.NewString("alice"), sql.NewInteger(34)},
			{sql.NewInteger(2), sql.NewString("bob"), sql.NewInteger(25)},
			{sql.NewInteger(3), sql.NewString("carol"), sql.Null},
		},
	},
	{
		"SELECT name FROM people;",
		[]sql.Row{
			{sql.NewString("alice")},
			{sql.NewString("bob")},
			{sql.NewString("carol")},
		},
	},
	{
		"SELECT people.* FROM people WHERE id = 3;",
		[]sql.Row{
			{sql.NewInteger(3), sql.NewString("carol"), sql.Null},
		},
	},
	{
		"SELECT name, age FROM people WHERE age > 30;",
		[]sql.Row{
			{sql.NewString("alice"), sql.NewInteger(34)},
		},
	},
	{
		"SELECT name FROM people WHERE age IS NULL;",
		[]sql.Row{
			{sql.NewString("carol")},
		},
	},
	{
		"SELECT name FROM people WHERE age IS NOT NULL ORDER BY age;",
		[]sql.Row{
			{sql.NewString("bob")},
			{sql.NewString("alice")},
		},
	},
	{
		"SELECT name FROM people WHERE NOT (age > 30);",
		[]sql.Row{
			{sql.NewString("bob")},
		},
	},
	{
		"SELECT name FROM people WHERE age > 20 AND age < 30;",
		[]sql.Row{
			{sql.NewString("bob")},
		},
	},
	{
		// carol's NULL age makes the condition NULL, which excludes her.
		"SELECT name FROM people WHERE age > 20 AND name = 'carol';",
		nil,
	},
	{
		"SELECT name FROM people WHERE age < 30 OR age IS NULL;",
		[]sql.Row{
			{sql.NewString("bob")},
			{sql.NewString("carol")},
		},
	},
	{
		"SELECT name FROM people WHERE name > 'alice';",
		[]sql.Row{
			{sql.NewString("bob")},
			{sql.NewString("carol")},
		},
	},
	{
		"SELECT name FROM people WHERE age = 25.0;",
		[]sql.Row{
			{sql.NewString("bob")},
		},
	},
	{
		"SELECT x + 1 FROM items;",
		[]sql.Row{
			{sql.NewInteger(11)},
			{sql.NewInteger(31)},
			{sql.NewInteger(21)},
		},
	},
	{
		"SELECT x * 2.5 FROM items;",
		[]sql.Row{
			{sql.NewFloat(25)},
			{sql.NewFloat(75)},
			{sql.NewFloat(50)},
		},
	},
	{
		"SELECT x / 4 FROM items;",
		[]sql.Row{
			{sql.NewInteger(2)},
			{sql.NewInteger(7)},
			{sql.NewInteger(5)},
		},
	},
	{
		"SELECT UPPER(name) FROM people;",
		[]sql.Row{
			{sql.NewString("ALICE")},
			{sql.NewString("BOB")},
			{sql.NewString("CAROL")},
		},
	},
	{
		"SELECT SUBSTRING(name, 1, 3) FROM people;",
		[]sql.Row{
			{sql.NewString("ali")},
			{sql.NewString("bob")},
			{sql.NewString("car")},
		},
	},
	{
		"SELECT COUNT(*) FROM people;",
		[]sql.Row{
			{sql.NewInteger(3)},
		},
	},
	{
		"SELECT COUNT(age) FROM people;",
		[]sql.Row{
			{sql.NewInteger(2)},
		},
	},
	{
		"SELECT MIN(age), MAX(age) FROM people;",
		[]sql.Row{
			{sql.NewInteger(25), sql.NewInteger(34)},
		},
	},
	{
		"SELECT AVG(age) FROM people;",
		[]sql.Row{
			{sql.NewFloat(29.5)},
		},
	},
	{
		"SELECT SUM(total) FROM orders;",
		[]sql.Row{
			{sql.NewFloat(32.25)},
		},
	},
	{
		"SELECT SUM(amount) FROM sales;",
		[]sql.Row{
			{sql.NewInteger(77)},
		},
	},
	{
		"SELECT x FROM items ORDER BY x;",
		[]sql.Row{
			{sql.NewInteger(10)},
			{sql.NewInteger(20)},
			{sql.NewInteger(30)},
		},
	},
	{
		"SELECT x FROM items ORDER BY x DESC LIMIT 2 OFFSET 1;",
		[]sql.Row{
			{sql.NewInteger(20)},
			{sql.NewInteger(10)},
		},
	},
	{
		"SELECT x FROM items LIMIT 0;",
		([]sql.Row)(nil),
	},
	{
		"SELECT region, product FROM sales ORDER BY region, product;",
		[]sql.Row{
			{sql.NewString("east"), sql.NewString("a")},
			{sql.NewString("east"), sql.NewString("a")},
			{sql.NewString("east"), sql.NewString("b")},
			{sql.NewString("north"), sql.NewString("c")},
			{sql.NewString("west"), sql.NewString("a")},
			{sql.NewString("west"), sql.NewString("a")},
		},
	},
	{
		"SELECT p.name, o.total FROM people p JOIN orders o ON p.id = o.person_id;",
		[]sql.Row{
			{sql.NewString("alice"), sql.NewFloat(19.5)},
			{sql.NewString("alice"), sql.NewFloat(5.5)},
			{sql.NewString("bob"), sql.NewFloat(7.25)},
		},
	},
	{
		"SELECT people.name, orders.total FROM people, orders WHERE people.id = orders.person_id;",
		[]sql.Row{
			{sql.NewString("alice"), sql.NewFloat(19.5)},
			{sql.NewString("alice"), sql.NewFloat(5.5)},
			{sql.NewString("bob"), sql.NewFloat(7.25)},
		},
	},
	{
		"SELECT COUNT(*) FROM people, orders;",
		[]sql.Row{
			{sql.NewInteger(9)},
		},
	},
	{
		"SELECT p.name, SUM(o.total) FROM people p JOIN orders o ON p.id = o.person_id GROUP BY p.name;",
		[]sql.Row{
			{sql.NewString("alice"), sql.NewFloat(25)},
			{sql.NewString("bob"), sql.NewFloat(7.25)},
		},
	},
	{
		"SELECT region, COUNT(*) FROM sales GROUP BY region;",
		[]sql.Row{
			{sql.NewString("east"), sql.NewInteger(3)},
			{sql.NewString("west"), sql.NewInteger(2)},
			{sql.NewString("north"), sql.NewInteger(1)},
		},
	},
	{
		"SELECT region, SUM(amount) FROM sales GROUP BY region;",
		[]sql.Row{
			{sql.NewString("east"), sql.NewInteger(60)},
			{sql.NewString("west"), sql.NewInteger(10)},
			{sql.NewString("north"), sql.NewInteger(7)},
		},
	},
	{
		"SELECT region, COUNT(DISTINCT product) FROM sales GROUP BY region;",
		[]sql.Row{
			{sql.NewString("east"), sql.NewInteger(2)},
			{sql.NewString("west"), sql.NewInteger(1)},
			{sql.NewString("north"), sql.NewInteger(1)},
		},
	},
	{
		"SELECT age, COUNT(*) FROM people GROUP BY age;",
		[]sql.Row{
			{sql.NewInteger(34), sql.NewInteger(1)},
			{sql.NewInteger(25), sql.NewInteger(1)},
			{sql.Null, sql.NewInteger(1)},
		},
	},
	{
		"SELECT region FROM sales GROUP BY region HAVING COUNT(*) > 1;",
		[]sql.Row{
			{sql.NewString("east")},
			{sql.NewString("west")},
		},
	},
	{
		"SELECT region, SUM(amount) FROM sales GROUP BY region HAVING SUM(amount) > 9 ORDER BY SUM(amount) DESC;",
		[]sql.Row{
			{sql.NewString("east"), sql.NewInteger(60)},
			{sql.NewString("west"), sql.NewInteger(10)},
		},
	},
	{
		"SELECT COUNT(*) FROM sales HAVING COUNT(*) > 10;",
		([]sql.Row)(nil),
	},
	{
		"SELECT product, COUNT(*) FROM sales GROUP BY product ORDER BY COUNT(*) DESC;",
		[]sql.Row{
			{sql.NewString("a"), sql.NewInteger(4)},
			{sql.NewString("b"), sql.NewInteger(1)},
			{sql.NewString("c"), sql.NewInteger(1)},
		},
	},
	{
		"SELECT DISTINCT region FROM sales;",
		[]sql.Row{
			{sql.NewString("east")},
			{sql.NewString("west")},
			{sql.NewString("north")},
		},
	},
	{
		"SELECT DISTINCT region, product FROM sales;",
		[]sql.Row{
			{sql.NewString("east"), sql.NewString("a")},
			{sql.NewString("east"), sql.NewString("b")},
			{sql.NewString("west"), sql.NewString("a")},
			{sql.NewString("north"), sql.NewString("c")},
		},
	},
	{
		"SELECT name AS who FROM people WHERE id = 1;",
		[]sql.Row{
			{sql.NewString("alice")},
		},
	},
	{
		"SELECT name, age * 2 AS doubled FROM people WHERE age IS NOT NULL ORDER BY doubled;",
		[]sql.Row{
			{sql.NewString("bob"), sql.NewInteger(50)},
			{sql.NewString("alice"), sql.NewInteger(68)},
		},
	},
	{
		// The ordering column does not have to be selected.
		"SELECT name FROM people ORDER BY people.id DESC;",
		[]sql.Row{
			{sql.NewString("carol")},
			{sql.NewString("bob")},
			{sql.NewString("alice")},
		},
	},
	{
		"SELECT name AS who FROM people WHERE age IS NOT NULL ORDER BY age DESC;",
		[]sql.Row{
			{sql.NewString("alice")},
			{sql.NewString("bob")},
		},
	},
}

func TestQueries(t *testing.T) {
	e := newEngine(t)

	for _, tt := range queries {
		testQuery(t, e, tt.query, tt.expected)
	}
}

var errorQueries = []struct {
	query string
	kind  *errors.Kind
}{
	{"SELECT * FROM missing", sql.ErrTableNotFound},
	{"SELECT nope FROM people", sql.ErrColumnNotFound},
	{"SELECT people.nope FROM people", analyzer.ErrColumnTableNotFound},
	{"SELECT id FROM people, orders", sql.ErrAmbiguousColumnName},
	{"SELECT region, amount FROM sales GROUP BY region", sql.ErrGroupingViolation},
	{"SELECT x FROM items LIMIT -1", sql.ErrValidation},
	{"SELECT x FROM items LIMIT 2 OFFSET -1", sql.ErrValidation},
	{"SELECT NOPE(x) FROM items", sql.ErrFunctionNotFound},
	{"SELECT x FROM items ORDER BY COUNT(*)", analyzer.ErrOrderByAggregate},
	{"SELECT name FROM people ORDER BY zzz", sql.ErrColumnNotFound},
	{"INSERT INTO people (id, name) VALUES (5, 'eve')", sql.ErrColumnCountMismatch},
	{"SELECT * FROM people LEFT JOIN orders ON people.id = orders.person_id", parse.ErrUnsupportedFeature},
}

func TestQueryErrors(t *testing.T) {
	e := newEngine(t)

	for _, tt := range errorQueries {
		t.Run(tt.query, func(t *testing.T) {
			require := require.New(t)

			_, iter, err := e.Query(newCtx(), tt.query)
			if err == nil {
				_, err = sql.RowIterToRows(iter)
			}
			require.Error(err)
			require.True(tt.kind.Is(err), "unexpected error: %s", err)
		})
	}
}

func TestDivisionByZero(t *testing.T) {
	require := require.New(t)
	e := newEngine(t)

	_, iter, err := e.Query(newCtx(), "SELECT x / 0 FROM items")
	require.NoError(err)

	_, err = sql.RowIterToRows(iter)
	require.Error(err)
	require.True(sql.ErrDivisionByZero.Is(err))
}

func TestInsertInto(t *testing.T) {
	e := newEngine(t)
	testQuery(t, e,
		"INSERT INTO people (id, name, age) VALUES (4, 'dan', 41);",
		[]sql.Row{{sql.NewInteger(1)}},
	)
	testQuery(t, e,
		"SELECT COUNT(*) FROM people;",
		[]sql.Row{{sql.NewInteger(4)}},
	)
}

func TestInsertColumnList(t *testing.T) {
	e := newEngine(t)

	// The column list may reorder the columns as long as it names every
	// one of them; naming only some is rejected before any row lands.
	testQuery(t, e,
		"INSERT INTO people (age, id, name) VALUES (41, 4, 'dan');",
		[]sql.Row{{sql.NewInteger(1)}},
	)
	testQuery(t, e,
		"SELECT name, age FROM people WHERE id = 4;",
		[]sql.Row{{sql.NewString("dan"), sql.NewInteger(41)}},
	)

	require := require.New(t)
	_, iter, err := e.Query(newCtx(), "INSERT INTO people (id, name) VALUES (5, 'eve')")
	if err == nil {
		_, err = sql.RowIterToRows(iter)
	}
	require.Error(err)
	require.True(sql.ErrColumnCountMismatch.Is(err))

	testQuery(t, e,
		"SELECT COUNT(*) FROM people;",
		[]sql.Row{{sql.NewInteger(4)}},
	)
}

func TestInsertSelect(t *testing.T) {
	e := newEngine(t)
	testQuery(t, e,
		"INSERT INTO items (x) SELECT amount FROM sales WHERE amount > 15;",
		[]sql.Row{{sql.NewInteger(2)}},
	)
	testQuery(t, e,
		"SELECT x FROM items ORDER BY x DESC;",
		[]sql.Row{
			{sql.NewInteger(30)},
			{sql.NewInteger(30)},
			{sql.NewInteger(20)},
			{sql.NewInteger(20)},
			{sql.NewInteger(10)},
		},
	)
}

func TestUpdate(t *testing.T) {
	e := newEngine(t)
	testQuery(t, e,
		"UPDATE people SET age = 26 WHERE name = 'bob';",
		[]sql.Row{{sql.NewInteger(1)}},
	)
	testQuery(t, e,
		"SELECT age FROM people WHERE name = 'bob';",
		[]sql.Row{{sql.NewInteger(26)}},
	)
}

func TestUpdateSetOrder(t *testing.T) {
	e := newEngine(t)

	// Assignments apply left to right, so the second one reads the age
	// the first one just wrote.
	testQuery(t, e,
		"UPDATE people SET age = age + 1, id = age * 10 WHERE name = 'bob';",
		[]sql.Row{{sql.NewInteger(1)}},
	)
	testQuery(t, e,
		"SELECT id, age FROM people WHERE name = 'bob';",
		[]sql.Row{{sql.NewInteger(260), sql.NewInteger(26)}},
	)
}

func TestDelete(t *testing.T) {
	e := newEngine(t)
	testQuery(t, e,
		"DELETE FROM orders WHERE total < 6;",
		[]sql.Row{{sql.NewInteger(1)}},
	)
	testQuery(t, e,
		"SELECT COUNT(*) FROM orders;",
		[]sql.Row{{sql.NewInteger(2)}},
	)
}

func TestDDL(t *testing.T) {
	require := require.New(t)

	e := newEngine(t)
	testQuery(t, e,
		"CREATE TABLE t1(a INTEGER, b TEXT)",
		[]sql.Row{{sql.NewInteger(0)}},
	)

	db, err := e.Catalog.Database("files")
	require.NoError(err)

	table, ok := db.Tables()["t1"]
	require.True(ok)

	s := sql.Schema{
		{Name: "a", Source: "t1", Type: sql.Integer},
		{Name: "b", Source: "t1", Type: sql.Text},
	}
	require.Equal(s, table.Schema())
}

func TestTracing(t *testing.T) {
	require := require.New(t)
	e := newEngine(t)

	tracer := new(test.MemTracer)

	ctx := sql.NewContext(context.TODO(), sql.WithTracer(tracer))

	_, iter, err := e.Query(ctx, `SELECT DISTINCT name
		FROM people
		WHERE age IS NOT NULL
		ORDER BY name DESC
		LIMIT 1`)
	require.NoError(err)

	rows, err := sql.RowIterToRows(iter)
	require.Len(rows, 1)
	require.NoError(err)

	spans := tracer.Spans
	var expectedSpans = []string{
		"plan.Limit",
		"plan.Sort",
		"plan.Distinct",
		"plan.Project",
		"plan.Filter",
		"plan.ResolvedTable",
	}

	var spanOperations []string
	for _, s := range spans {
		// only check the ones inside the execution tree
		if strings.HasPrefix(s, "plan.") ||
			strings.HasPrefix(s, "expression.") ||
			strings.HasPrefix(s, "function.") ||
			strings.HasPrefix(s, "aggregation.") {
			spanOperations = append(spanOperations, s)
		}
	}

	require.Equal(expectedSpans, spanOperations)
}

const expectedTree = `Limit(5)
 └─ Offset(2)
     └─ Project(t.foo, bar.baz)
         └─ Filter(foo > qux)
             └─ InnerJoin(foo = baz)
                 ├─ TableAlias(t)
                 │   └─ UnresolvedTable(tbl)
                 └─ UnresolvedTable(bar)
`

func TestPrintTree(t *testing.T) {
	require := require.New(t)
	node, err := parse.Parse(newCtx(), `
		SELECT t.foo, bar.baz
		FROM tbl t
		INNER JOIN bar
			ON foo = baz
		WHERE foo > qux
		LIMIT 5
		OFFSET 2`)
	require.NoError(err)
	require.Equal(expectedTree, node.String())
}

func testQuery(t *testing.T, e *delimsql.Engine, q string, expected []sql.Row) {
	t.Run(q, func(t *testing.T) {
		require := require.New(t)

		_, iter, err := e.Query(newCtx(), q)
		require.NoError(err)

		rows, err := sql.RowIterToRows(iter)
		require.NoError(err)

		require.Equal(expected, rows)
	})
}

func newEngine(t *testing.T) *delimsql.Engine {
	t.Helper()

	people, err := filetable.NewTable("people", sql.Schema{
		{Name: "id"},
		{Name: "name"},
		{Name: "age"},
	})
	require.NoError(t, err)
	insertRows(t, people,
		sql.NewRow(sql.NewInteger(1), sql.NewString("alice"), sql.NewInteger(34)),
		sql.NewRow(sql.NewInteger(2), sql.NewString("bob"), sql.NewInteger(25)),
		sql.NewRow(sql.NewInteger(3), sql.NewString("carol"), sql.Null),
	)

	orders, err := filetable.NewTable("orders", sql.Schema{
		{Name: "id"},
		{Name: "person_id"},
		{Name: "total"},
	})
	require.NoError(t, err)
	insertRows(t, orders,
		sql.NewRow(sql.NewInteger(1), sql.NewInteger(1), sql.NewFloat(19.5)),
		sql.NewRow(sql.NewInteger(2), sql.NewInteger(1), sql.NewFloat(5.5)),
		sql.NewRow(sql.NewInteger(3), sql.NewInteger(2), sql.NewFloat(7.25)),
	)

	items, err := filetable.NewTable("items", sql.Schema{
		{Name: "x"},
	})
	require.NoError(t, err)
	insertRows(t, items,
		sql.NewRow(sql.NewInteger(10)),
		sql.NewRow(sql.NewInteger(30)),
		sql.NewRow(sql.NewInteger(20)),
	)

	sales, err := filetable.NewTable("sales", sql.Schema{
		{Name: "region"},
		{Name: "product"},
		{Name: "amount"},
	})
	require.NoError(t, err)
	insertRows(t, sales,
		sql.NewRow(sql.NewString("east"), sql.NewString("a"), sql.NewInteger(10)),
		sql.NewRow(sql.NewString("east"), sql.NewString("b"), sql.NewInteger(20)),
		sql.NewRow(sql.NewString("west"), sql.NewString("a"), sql.NewInteger(5)),
		sql.NewRow(sql.NewString("east"), sql.NewString("a"), sql.NewInteger(30)),
		sql.NewRow(sql.NewString("west"), sql.NewString("a"), sql.NewInteger(5)),
		sql.NewRow(sql.NewString("north"), sql.NewString("c"), sql.NewInteger(7)),
	)

	db := filetable.NewDatabase("files")
	for _, table := range []*filetable.Table{people, orders, items, sales} {
		require.NoError(t, db.AddTable(table))
	}

	e := delimsql.New()
	e.AddDatabase(db)
	return e
}

func insertRows(t *testing.T, table *filetable.Table, rows ...sql.Row) {
	t.Helper()

	for _, r := range rows {
		require.NoError(t, table.AppendRow(r))
	}
}

func newCtx() *sql.Context {
	return sql.NewContext(context.Background())
}
