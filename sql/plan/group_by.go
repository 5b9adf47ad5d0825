package plan

import (
	"io"
	"strings"

	"github.com/mitchellh/hashstructure"
	opentracing "github.com/opentracing/opentracing-go"
	errors "gopkg.in/src-d/go-errors.v1"

	"github.com/delimsql/delimsql/sql"
	"github.com/delimsql/delimsql/sql/expression"
)

// ErrGroupBy is returned when a selected expression of a grouped query
// cannot be aggregated.
var ErrGroupBy = errors.NewKind("group by aggregation %q not supported")

// GroupBy groups the rows of the child node by the grouping expressions
// and aggregates the selected expressions over each group. Groups are
// emitted in first-seen order.
type GroupBy struct {
	UnaryNode
	Aggregate []sql.Expression
	Grouping  []sql.Expression
}

// NewGroupBy creates a new GroupBy node.
func NewGroupBy(aggregate, grouping []sql.Expression, child sql.Node) *GroupBy {
	return &GroupBy{
		UnaryNode: UnaryNode{Child: child},
		Aggregate: aggregate,
		Grouping:  grouping,
	}
}

// Resolved implements the Resolvable interface.
func (p *GroupBy) Resolved() bool {
	return p.UnaryNode.Child.Resolved() &&
		expressionsResolved(p.Aggregate...) &&
		expressionsResolved(p.Grouping...)
}

// Schema implements the Node interface.
func (p *GroupBy) Schema() sql.Schema {
	return schemaOf(p.Aggregate)
}

// RowIter implements the Node interface.
func (p *GroupBy) RowIter(ctx *sql.Context) (sql.RowIter, error) {
	span, ctx := ctx.Span("plan.GroupBy", opentracing.Tags{
		"groupings":  len(p.Grouping),
		"aggregates": len(p.Aggregate),
	})

	i, err := p.Child.RowIter(ctx)
	if err != nil {
		span.Finish()
		return nil, err
	}

	return sql.NewSpanIter(span, &groupByIter{
		aggregate: p.Aggregate,
		grouping:  p.Grouping,
		child:     i,
		ctx:       ctx,
	}), nil
}

// TransformUp implements the Transformable interface.
func (p *GroupBy) TransformUp(f sql.TransformNodeFunc) (sql.Node, error) {
	child, err := p.Child.TransformUp(f)
	if err != nil {
		return nil, err
	}
	return f(NewGroupBy(p.Aggregate, p.Grouping, child))
}

// TransformExpressionsUp implements the Transformable interface.
func (p *GroupBy) TransformExpressionsUp(f sql.TransformExprFunc) (sql.Node, error) {
	aggregate, err := transformExpressionsUp(f, p.Aggregate)
	if err != nil {
		return nil, err
	}

	grouping, err := transformExpressionsUp(f, p.Grouping)
	if err != nil {
		return nil, err
	}

	child, err := p.Child.TransformExpressionsUp(f)
	if err != nil {
		return nil, err
	}

	return NewGroupBy(aggregate, grouping, child), nil
}

// Expressions implements the Expressioner interface.
func (p *GroupBy) Expressions() []sql.Expression {
	return append(append([]sql.Expression{}, p.Aggregate...), p.Grouping...)
}

// TransformExpressions implements the Expressioner interface.
func (p *GroupBy) TransformExpressions(f sql.TransformExprFunc) (sql.Node, error) {
	aggregate, err := transformExpressionsUp(f, p.Aggregate)
	if err != nil {
		return nil, err
	}

	grouping, err := transformExpressionsUp(f, p.Grouping)
	if err != nil {
		return nil, err
	}

	return NewGroupBy(aggregate, grouping, p.Child), nil
}

func (p *GroupBy) String() string {
	pr := sql.NewTreePrinter()
	var aggregate = make([]string, len(p.Aggregate))
	for i, agg := range p.Aggregate {
		aggregate[i] = agg.String()
	}

	var grouping = make([]string, len(p.Grouping))
	for i, g := range p.Grouping {
		grouping[i] = g.String()
	}

	_ = pr.WriteNode("GroupBy")
	_ = pr.WriteChildren(
		"Aggregate("+strings.Join(aggregate, ", ")+")",
		"Grouping("+strings.Join(grouping, ", ")+")",
		p.Child.String(),
	)
	return pr.String()
}

type groupByIter struct {
	aggregate []sql.Expression
	grouping  []sql.Expression
	child     sql.RowIter
	ctx       *sql.Context
	rows      []sql.Row
	pos       int
	computed  bool
}

func (i *groupByIter) Next() (sql.Row, error) {
	if !i.computed {
		if err := i.compute(); err != nil {
			return nil, err
		}
		i.computed = true
	}

	if i.pos >= len(i.rows) {
		return nil, io.EOF
	}

	row := i.rows[i.pos]
	i.pos++
	return row, nil
}

func (i *groupByIter) compute() error {
	var keys []uint64
	var buffers = make(map[uint64][]sql.AggregationBuffer)

	for {
		row, err := i.child.Next()
		if err == io.EOF {
			break
		}

		if err != nil {
			return err
		}

		key, err := groupKey(i.ctx, i.grouping, row)
		if err != nil {
			return err
		}

		group, ok := buffers[key]
		if !ok {
			group, err = newBuffers(i.aggregate)
			if err != nil {
				return err
			}

			buffers[key] = group
			keys = append(keys, key)
		}

		for _, buf := range group {
			if err := buf.Update(i.ctx, row); err != nil {
				return err
			}
		}
	}

	// An aggregation without grouping expressions always produces exactly
	// one group, even over no rows.
	if len(keys) == 0 && len(i.grouping) == 0 {
		group, err := newBuffers(i.aggregate)
		if err != nil {
			return err
		}

		buffers[0] = group
		keys = append(keys, 0)
	}

	i.rows = make([]sql.Row, 0, len(keys))
	for _, key := range keys {
		row := make(sql.Row, len(i.aggregate))
		for j, buf := range buffers[key] {
			v, err := buf.Eval(i.ctx)
			if err != nil {
				return err
			}
			row[j] = v
		}

		i.rows = append(i.rows, row)
	}

	return nil
}

func (i *groupByIter) Close() error {
	i.rows = nil
	return i.child.Close()
}

func newBuffers(aggregate []sql.Expression) ([]sql.AggregationBuffer, error) {
	var bufs = make([]sql.AggregationBuffer, len(aggregate))
	for i, a := range aggregate {
		agg, err := aggregationOf(a)
		if err != nil {
			return nil, err
		}
		bufs[i] = agg.NewBuffer()
	}
	return bufs, nil
}

func aggregationOf(e sql.Expression) (sql.Aggregation, error) {
	switch e := e.(type) {
	case sql.Aggregation:
		return e, nil
	case *expression.Alias:
		return aggregationOf(e.Child)
	default:
		return nil, ErrGroupBy.New(e.String())
	}
}

// groupKey hashes the tuple of grouping values of a row. Values are
// hashed structurally, so NULLs in the same position fall into the same
// group and the integer 1 does not share a group with the float 1.0.
func groupKey(ctx *sql.Context, grouping []sql.Expression, row sql.Row) (uint64, error) {
	vals := make(sql.Row, len(grouping))
	for i, g := range grouping {
		v, err := g.Eval(ctx, row)
		if err != nil {
			return 0, err
		}
		vals[i] = v
	}
	return hashstructure.Hash(vals, nil)
}
