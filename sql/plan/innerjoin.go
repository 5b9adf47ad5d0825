package plan

import (
	"io"

	opentracing "github.com/opentracing/opentracing-go"
	"github.com/sirupsen/logrus"

	"github.com/delimsql/delimsql/sql"
)

// InnerJoin is an inner join between two tables.
type InnerJoin struct {
	BinaryNode
	Cond sql.Expression
}

// NewInnerJoin creates a new inner join node from two tables.
func NewInnerJoin(left, right sql.Node, cond sql.Expression) *InnerJoin {
	return &InnerJoin{
		BinaryNode: BinaryNode{
			Left:  left,
			Right: right,
		},
		Cond: cond,
	}
}

// Schema implements the Node interface.
func (j *InnerJoin) Schema() sql.Schema {
	return append(j.Left.Schema(), j.Right.Schema()...)
}

// Resolved implements the Resolvable interface.
func (j *InnerJoin) Resolved() bool {
	return j.Left.Resolved() && j.Right.Resolved() && j.Cond.Resolved()
}

// RowIter implements the Node interface.
func (j *InnerJoin) RowIter(ctx *sql.Context) (sql.RowIter, error) {
	span, ctx := ctx.Span("plan.InnerJoin", opentracing.Tags{
		"left":  nodeName(j.Left),
		"right": nodeName(j.Right),
	})

	l, err := j.Left.RowIter(ctx)
	if err != nil {
		span.Finish()
		return nil, err
	}

	return sql.NewSpanIter(span, &innerJoinIter{
		l:    l,
		rp:   j.Right,
		ctx:  ctx,
		cond: j.Cond,
	}), nil
}

// TransformUp implements the Transformable interface.
func (j *InnerJoin) TransformUp(f sql.TransformNodeFunc) (sql.Node, error) {
	left, err := j.Left.TransformUp(f)
	if err != nil {
		return nil, err
	}

	right, err := j.Right.TransformUp(f)
	if err != nil {
		return nil, err
	}

	return f(NewInnerJoin(left, right, j.Cond))
}

// TransformExpressionsUp implements the Transformable interface.
func (j *InnerJoin) TransformExpressionsUp(f sql.TransformExprFunc) (sql.Node, error) {
	left, err := j.Left.TransformExpressionsUp(f)
	if err != nil {
		return nil, err
	}

	right, err := j.Right.TransformExpressionsUp(f)
	if err != nil {
		return nil, err
	}

	cond, err := j.Cond.TransformUp(f)
	if err != nil {
		return nil, err
	}

	return NewInnerJoin(left, right, cond), nil
}

// Expressions implements the Expressioner interface.
func (j *InnerJoin) Expressions() []sql.Expression {
	return []sql.Expression{j.Cond}
}

// TransformExpressions implements the Expressioner interface.
func (j *InnerJoin) TransformExpressions(f sql.TransformExprFunc) (sql.Node, error) {
	cond, err := j.Cond.TransformUp(f)
	if err != nil {
		return nil, err
	}
	return NewInnerJoin(j.Left, j.Right, cond), nil
}

func (j *InnerJoin) String() string {
	pr := sql.NewTreePrinter()
	_ = pr.WriteNode("InnerJoin(%s)", j.Cond)
	_ = pr.WriteChildren(j.Left.String(), j.Right.String())
	return pr.String()
}

// innerJoinIter iterates the left side once, with the right side
// materialized in memory and replayed for every left row.
type innerJoinIter struct {
	l    sql.RowIter
	rp   rowIterProvider
	ctx  *sql.Context
	cond sql.Expression

	leftRow sql.Row
	right   []sql.Row
	loaded  bool
	pos     int
}

func (i *innerJoinIter) loadRight() error {
	if i.loaded {
		return nil
	}

	iter, err := i.rp.RowIter(i.ctx)
	if err != nil {
		return err
	}

	i.right, err = sql.RowIterToRows(iter)
	if err != nil {
		return err
	}

	logrus.WithField("rows", len(i.right)).
		Debug("right side of inner join materialized")

	i.loaded = true
	return nil
}

func (i *innerJoinIter) Next() (sql.Row, error) {
	if err := i.loadRight(); err != nil {
		return nil, err
	}

	for {
		if i.leftRow == nil {
			r, err := i.l.Next()
			if err != nil {
				return nil, err
			}

			i.leftRow = r
			i.pos = 0
		}

		if i.pos >= len(i.right) {
			i.leftRow = nil
			if len(i.right) == 0 {
				return nil, io.EOF
			}
			continue
		}

		rightRow := i.right[i.pos]
		i.pos++

		var row = make(sql.Row, len(i.leftRow)+len(rightRow))
		copy(row, i.leftRow)
		copy(row[len(i.leftRow):], rightRow)

		ok, err := conditionIsTrue(i.ctx, i.cond, row)
		if err != nil {
			return nil, err
		}

		if ok {
			return row, nil
		}
	}
}

func (i *innerJoinIter) Close() error {
	i.right = nil
	return i.l.Close()
}
