package plan

import (
	"github.com/delimsql/delimsql/sql"
)

// Filter skips rows that don't match a certain expression.
type Filter struct {
	UnaryNode
	Expression sql.Expression
}

// NewFilter creates a new filter node.
func NewFilter(expression sql.Expression, child sql.Node) *Filter {
	return &Filter{
		UnaryNode:  UnaryNode{Child: child},
		Expression: expression,
	}
}

// Resolved implements the Resolvable interface.
func (p *Filter) Resolved() bool {
	return p.UnaryNode.Child.Resolved() && p.Expression.Resolved()
}

// RowIter implements the Node interface.
func (p *Filter) RowIter(ctx *sql.Context) (sql.RowIter, error) {
	span, ctx := ctx.Span("plan.Filter")

	i, err := p.Child.RowIter(ctx)
	if err != nil {
		span.Finish()
		return nil, err
	}

	return sql.NewSpanIter(span, &filterIter{p.Expression, i, ctx}), nil
}

// TransformUp implements the Transformable interface.
func (p *Filter) TransformUp(f sql.TransformNodeFunc) (sql.Node, error) {
	child, err := p.Child.TransformUp(f)
	if err != nil {
		return nil, err
	}
	return f(NewFilter(p.Expression, child))
}

// TransformExpressionsUp implements the Transformable interface.
func (p *Filter) TransformExpressionsUp(f sql.TransformExprFunc) (sql.Node, error) {
	expr, err := p.Expression.TransformUp(f)
	if err != nil {
		return nil, err
	}

	child, err := p.Child.TransformExpressionsUp(f)
	if err != nil {
		return nil, err
	}

	return NewFilter(expr, child), nil
}

// Expressions implements the Expressioner interface.
func (p *Filter) Expressions() []sql.Expression {
	return []sql.Expression{p.Expression}
}

// TransformExpressions implements the Expressioner interface.
func (p *Filter) TransformExpressions(f sql.TransformExprFunc) (sql.Node, error) {
	expr, err := p.Expression.TransformUp(f)
	if err != nil {
		return nil, err
	}
	return NewFilter(expr, p.Child), nil
}

func (p *Filter) String() string {
	pr := sql.NewTreePrinter()
	_ = pr.WriteNode("Filter(%s)", p.Expression)
	_ = pr.WriteChildren(p.Child.String())
	return pr.String()
}

type filterIter struct {
	cond      sql.Expression
	childIter sql.RowIter
	ctx       *sql.Context
}

func (i *filterIter) Next() (sql.Row, error) {
	for {
		row, err := i.childIter.Next()
		if err != nil {
			return nil, err
		}

		ok, err := conditionIsTrue(i.ctx, i.cond, row)
		if err != nil {
			return nil, err
		}

		if ok {
			return row, nil
		}
	}
}

func (i *filterIter) Close() error {
	return i.childIter.Close()
}

// conditionIsTrue evaluates a filter condition against a row. NULL and
// false both discard the row; a non-boolean result is a type error.
func conditionIsTrue(ctx *sql.Context, cond sql.Expression, row sql.Row) (bool, error) {
	v, err := cond.Eval(ctx, row)
	if err != nil {
		return false, err
	}

	switch v.Type {
	case sql.BooleanType:
		return v.Bool, nil
	case sql.NullType:
		return false, nil
	default:
		return false, sql.ErrTypeMismatch.New("condition must be a BOOLEAN, not " + v.Type.String())
	}
}
