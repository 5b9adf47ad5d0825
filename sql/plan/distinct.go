package plan

import (
	"fmt"

	"github.com/mitchellh/hashstructure"

	"github.com/delimsql/delimsql/sql"
)

// Distinct is a node that ensures all rows that come from it are unique.
// Rows are compared structurally, so the integer 1 and the float 1.0 are
// two distinct rows.
type Distinct struct {
	UnaryNode
}

// NewDistinct creates a new Distinct node.
func NewDistinct(child sql.Node) *Distinct {
	return &Distinct{
		UnaryNode: UnaryNode{Child: child},
	}
}

// Resolved implements the Resolvable interface.
func (d *Distinct) Resolved() bool {
	return d.UnaryNode.Child.Resolved()
}

// RowIter implements the Node interface.
func (d *Distinct) RowIter(ctx *sql.Context) (sql.RowIter, error) {
	span, ctx := ctx.Span("plan.Distinct")

	it, err := d.Child.RowIter(ctx)
	if err != nil {
		span.Finish()
		return nil, err
	}

	return sql.NewSpanIter(span, newDistinctIter(it)), nil
}

// TransformUp implements the Transformable interface.
func (d *Distinct) TransformUp(f sql.TransformNodeFunc) (sql.Node, error) {
	child, err := d.Child.TransformUp(f)
	if err != nil {
		return nil, err
	}
	return f(NewDistinct(child))
}

// TransformExpressionsUp implements the Transformable interface.
func (d *Distinct) TransformExpressionsUp(f sql.TransformExprFunc) (sql.Node, error) {
	child, err := d.Child.TransformExpressionsUp(f)
	if err != nil {
		return nil, err
	}
	return NewDistinct(child), nil
}

func (d Distinct) String() string {
	p := sql.NewTreePrinter()
	_ = p.WriteNode("Distinct")
	_ = p.WriteChildren(d.Child.String())
	return p.String()
}

// distinctIter keeps track of the hashes of all rows that have been
// emitted. It does not emit any rows whose hashes have been seen already.
type distinctIter struct {
	childIter sql.RowIter
	seen      map[uint64]struct{}
}

func newDistinctIter(child sql.RowIter) *distinctIter {
	return &distinctIter{
		childIter: child,
		seen:      make(map[uint64]struct{}),
	}
}

func (di *distinctIter) Next() (sql.Row, error) {
	for {
		row, err := di.childIter.Next()
		if err != nil {
			return nil, err
		}

		hash, err := hashstructure.Hash(row, nil)
		if err != nil {
			return nil, fmt.Errorf("unable to hash row: %s", err)
		}

		if _, ok := di.seen[hash]; ok {
			continue
		}

		di.seen[hash] = struct{}{}
		return row, nil
	}
}

func (di *distinctIter) Close() error {
	di.seen = nil
	return di.childIter.Close()
}
