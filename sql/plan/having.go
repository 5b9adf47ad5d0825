package plan

import "github.com/delimsql/delimsql/sql"

// Having is a filter on the rows produced by a GroupBy, evaluated after
// the aggregations are computed.
type Having struct {
	UnaryNode
	Cond sql.Expression
}

// NewHaving creates a new having node.
func NewHaving(cond sql.Expression, child sql.Node) *Having {
	return &Having{UnaryNode{Child: child}, cond}
}

// Resolved implements the Resolvable interface.
func (h *Having) Resolved() bool {
	return h.Cond.Resolved() && h.Child.Resolved()
}

// RowIter implements the Node interface.
func (h *Having) RowIter(ctx *sql.Context) (sql.RowIter, error) {
	span, ctx := ctx.Span("plan.Having")

	iter, err := h.Child.RowIter(ctx)
	if err != nil {
		span.Finish()
		return nil, err
	}

	return sql.NewSpanIter(span, &filterIter{h.Cond, iter, ctx}), nil
}

// TransformUp implements the Transformable interface.
func (h *Having) TransformUp(f sql.TransformNodeFunc) (sql.Node, error) {
	child, err := h.Child.TransformUp(f)
	if err != nil {
		return nil, err
	}
	return f(NewHaving(h.Cond, child))
}

// TransformExpressionsUp implements the Transformable interface.
func (h *Having) TransformExpressionsUp(f sql.TransformExprFunc) (sql.Node, error) {
	cond, err := h.Cond.TransformUp(f)
	if err != nil {
		return nil, err
	}

	child, err := h.Child.TransformExpressionsUp(f)
	if err != nil {
		return nil, err
	}

	return NewHaving(cond, child), nil
}

// Expressions implements the Expressioner interface.
func (h *Having) Expressions() []sql.Expression {
	return []sql.Expression{h.Cond}
}

// TransformExpressions implements the Expressioner interface.
func (h *Having) TransformExpressions(f sql.TransformExprFunc) (sql.Node, error) {
	cond, err := h.Cond.TransformUp(f)
	if err != nil {
		return nil, err
	}
	return NewHaving(cond, h.Child), nil
}

func (h *Having) String() string {
	pr := sql.NewTreePrinter()
	_ = pr.WriteNode("Having(%s)", h.Cond)
	_ = pr.WriteChildren(h.Child.String())
	return pr.String()
}
