package plan

import (
	"strings"

	"github.com/delimsql/delimsql/sql"
)

// Values represents a set of tuples of expressions, the literal rows of
// an INSERT.
type Values struct {
	ExpressionTuples [][]sql.Expression
}

// NewValues creates a Values node with the given tuples.
func NewValues(tuples [][]sql.Expression) *Values {
	return &Values{tuples}
}

// Schema implements the Node interface.
func (p *Values) Schema() sql.Schema {
	return nil
}

// Children implements the Node interface.
func (p *Values) Children() []sql.Node {
	return nil
}

// Resolved implements the Resolvable interface.
func (p *Values) Resolved() bool {
	for _, et := range p.ExpressionTuples {
		if !expressionsResolved(et...) {
			return false
		}
	}
	return true
}

// RowIter implements the Node interface.
func (p *Values) RowIter(ctx *sql.Context) (sql.RowIter, error) {
	rows := make([]sql.Row, len(p.ExpressionTuples))
	for i, et := range p.ExpressionTuples {
		vals := make(sql.Row, len(et))
		for j, e := range et {
			var err error
			vals[j], err = e.Eval(ctx, nil)
			if err != nil {
				return nil, err
			}
		}

		rows[i] = vals
	}

	return sql.RowsToRowIter(rows...), nil
}

// TransformUp implements the Transformable interface.
func (p *Values) TransformUp(f sql.TransformNodeFunc) (sql.Node, error) {
	return f(NewValues(p.ExpressionTuples))
}

// TransformExpressionsUp implements the Transformable interface.
func (p *Values) TransformExpressionsUp(f sql.TransformExprFunc) (sql.Node, error) {
	var tuples = make([][]sql.Expression, len(p.ExpressionTuples))
	for i, et := range p.ExpressionTuples {
		exprs, err := transformExpressionsUp(f, et)
		if err != nil {
			return nil, err
		}
		tuples[i] = exprs
	}

	return NewValues(tuples), nil
}

func (p *Values) String() string {
	var tuples = make([]string, len(p.ExpressionTuples))
	for i, et := range p.ExpressionTuples {
		var exprs = make([]string, len(et))
		for j, e := range et {
			exprs[j] = e.String()
		}
		tuples[i] = "(" + strings.Join(exprs, ", ") + ")"
	}
	return "Values(" + strings.Join(tuples, ", ") + ")"
}
