package plan

import (
	"io"

	opentracing "github.com/opentracing/opentracing-go"

	"github.com/delimsql/delimsql/sql"
)

// Limit is a node that caps how many rows flow out of its child.
type Limit struct {
	UnaryNode
	Limit int64
}

// NewLimit creates a new Limit node.
func NewLimit(size int64, child sql.Node) *Limit {
	return &Limit{
		UnaryNode: UnaryNode{Child: child},
		Limit:     size,
	}
}

// Resolved implements the Resolvable interface.
func (l *Limit) Resolved() bool {
	return l.UnaryNode.Child.Resolved()
}

// RowIter implements the Node interface.
func (l *Limit) RowIter(ctx *sql.Context) (sql.RowIter, error) {
	span, ctx := ctx.Span("plan.Limit", opentracing.Tag{Key: "limit", Value: l.Limit})

	it, err := l.Child.RowIter(ctx)
	if err != nil {
		span.Finish()
		return nil, err
	}
	return sql.NewSpanIter(span, &limitIter{l.Limit, it}), nil
}

// TransformUp implements the Transformable interface.
func (l *Limit) TransformUp(f sql.TransformNodeFunc) (sql.Node, error) {
	child, err := l.Child.TransformUp(f)
	if err != nil {
		return nil, err
	}
	return f(NewLimit(l.Limit, child))
}

// TransformExpressionsUp implements the Transformable interface.
func (l *Limit) TransformExpressionsUp(f sql.TransformExprFunc) (sql.Node, error) {
	child, err := l.Child.TransformExpressionsUp(f)
	if err != nil {
		return nil, err
	}
	return NewLimit(l.Limit, child), nil
}

func (l *Limit) String() string {
	pr := sql.NewTreePrinter()
	_ = pr.WriteNode("Limit(%d)", l.Limit)
	_ = pr.WriteChildren(l.Child.String())
	return pr.String()
}

type limitIter struct {
	remaining int64
	childIter sql.RowIter
}

func (i *limitIter) Next() (sql.Row, error) {
	if i.remaining <= 0 {
		return nil, io.EOF
	}

	row, err := i.childIter.Next()
	if err != nil {
		return nil, err
	}

	i.remaining--
	return row, nil
}

func (i *limitIter) Close() error {
	return i.childIter.Close()
}
