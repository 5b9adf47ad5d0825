package plan

import (
	"fmt"

	opentracing "github.com/opentracing/opentracing-go"

	"github.com/delimsql/delimsql/sql"
)

// ResolvedTable is a plan node wrapping a table already found in the
// catalog.
type ResolvedTable struct {
	sql.Table
}

// NewResolvedTable creates a new instance of ResolvedTable.
func NewResolvedTable(table sql.Table) *ResolvedTable {
	return &ResolvedTable{table}
}

// Resolved implements the Resolvable interface.
func (*ResolvedTable) Resolved() bool {
	return true
}

// Children implements the Node interface.
func (*ResolvedTable) Children() []sql.Node {
	return nil
}

// RowIter implements the Node interface.
func (t *ResolvedTable) RowIter(ctx *sql.Context) (sql.RowIter, error) {
	span, ctx := ctx.Span("plan.ResolvedTable", opentracing.Tag{Key: "table", Value: t.Name()})

	it, err := t.Table.RowIter(ctx)
	if err != nil {
		span.Finish()
		return nil, err
	}

	return sql.NewSpanIter(span, it), nil
}

// TransformUp implements the Transformable interface.
func (t *ResolvedTable) TransformUp(f sql.TransformNodeFunc) (sql.Node, error) {
	return f(NewResolvedTable(t.Table))
}

// TransformExpressionsUp implements the Transformable interface.
func (t *ResolvedTable) TransformExpressionsUp(f sql.TransformExprFunc) (sql.Node, error) {
	return t, nil
}

func (t ResolvedTable) String() string {
	return fmt.Sprintf("Table(%s)", t.Name())
}
