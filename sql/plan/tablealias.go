package plan

import (
	"github.com/delimsql/delimsql/sql"
)

// TableAlias is a node that acts as a table with a given name.
type TableAlias struct {
	UnaryNode
	name string
}

// NewTableAlias returns a new TableAlias node.
func NewTableAlias(name string, node sql.Node) *TableAlias {
	return &TableAlias{UnaryNode{Child: node}, name}
}

// Name implements the Nameable interface.
func (t *TableAlias) Name() string {
	return t.name
}

// Schema implements the Node interface. In the case of TableAlias, the
// schema is the child's schema with the source renamed to the alias.
func (t *TableAlias) Schema() sql.Schema {
	childSchema := t.Child.Schema()
	schema := make(sql.Schema, len(childSchema))
	for i, col := range childSchema {
		col.Source = t.name
		schema[i] = col
	}
	return schema
}

// RowIter implements the Node interface.
func (t *TableAlias) RowIter(ctx *sql.Context) (sql.RowIter, error) {
	span, ctx := ctx.Span("plan.TableAlias")

	iter, err := t.Child.RowIter(ctx)
	if err != nil {
		span.Finish()
		return nil, err
	}

	return sql.NewSpanIter(span, iter), nil
}

// TransformUp implements the Transformable interface.
func (t *TableAlias) TransformUp(f sql.TransformNodeFunc) (sql.Node, error) {
	child, err := t.Child.TransformUp(f)
	if err != nil {
		return nil, err
	}
	return f(NewTableAlias(t.name, child))
}

// TransformExpressionsUp implements the Transformable interface.
func (t *TableAlias) TransformExpressionsUp(f sql.TransformExprFunc) (sql.Node, error) {
	child, err := t.Child.TransformExpressionsUp(f)
	if err != nil {
		return nil, err
	}
	return NewTableAlias(t.name, child), nil
}

func (t TableAlias) String() string {
	pr := sql.NewTreePrinter()
	_ = pr.WriteNode("TableAlias(%s)", t.name)
	_ = pr.WriteChildren(t.Child.String())
	return pr.String()
}
