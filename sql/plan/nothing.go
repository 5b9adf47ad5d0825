package plan

import "github.com/delimsql/delimsql/sql"

// Nothing is a node that produces no rows. It is the plan of a statement
// that became empty, such as one holding only comments.
var Nothing nothing

type nothing struct{}

func (nothing) String() string       { return "NOTHING" }
func (nothing) Resolved() bool       { return true }
func (nothing) Schema() sql.Schema   { return nil }
func (nothing) Children() []sql.Node { return nil }

func (nothing) RowIter(*sql.Context) (sql.RowIter, error) {
	return sql.RowsToRowIter(), nil
}

func (nothing) TransformUp(f sql.TransformNodeFunc) (sql.Node, error) {
	return f(Nothing)
}

func (nothing) TransformExpressionsUp(sql.TransformExprFunc) (sql.Node, error) {
	return Nothing, nil
}
