package plan

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/delimsql/delimsql/sql"
)

// Sort is the sort node.
type Sort struct {
	UnaryNode
	SortFields []SortField
}

// SortOrder represents the order of the sort (ascending or descending).
type SortOrder byte

const (
	// Ascending order.
	Ascending SortOrder = 1
	// Descending order.
	Descending SortOrder = 2
)

func (s SortOrder) String() string {
	switch s {
	case Ascending:
		return "ASC"
	case Descending:
		return "DESC"
	default:
		return "invalid SortOrder"
	}
}

// SortField is a field by which the query will be sorted. NULLs always
// come first under the total value ordering, last when descending.
type SortField struct {
	// Column to order by.
	Column sql.Expression
	// Order type.
	Order SortOrder
}

// NewSort creates a new Sort node.
func NewSort(sortFields []SortField, child sql.Node) *Sort {
	return &Sort{
		UnaryNode:  UnaryNode{Child: child},
		SortFields: sortFields,
	}
}

// Resolved implements the Resolvable interface.
func (s *Sort) Resolved() bool {
	for _, f := range s.SortFields {
		if !f.Column.Resolved() {
			return false
		}
	}
	return s.Child.Resolved()
}

// RowIter implements the Node interface.
func (s *Sort) RowIter(ctx *sql.Context) (sql.RowIter, error) {
	span, ctx := ctx.Span("plan.Sort")

	i, err := s.Child.RowIter(ctx)
	if err != nil {
		span.Finish()
		return nil, err
	}

	return sql.NewSpanIter(span, &sortIter{
		s:         s,
		childIter: i,
		ctx:       ctx,
	}), nil
}

// TransformUp implements the Transformable interface.
func (s *Sort) TransformUp(f sql.TransformNodeFunc) (sql.Node, error) {
	child, err := s.Child.TransformUp(f)
	if err != nil {
		return nil, err
	}
	return f(NewSort(s.SortFields, child))
}

// TransformExpressionsUp implements the Transformable interface.
func (s *Sort) TransformExpressionsUp(f sql.TransformExprFunc) (sql.Node, error) {
	var fields = make([]SortField, len(s.SortFields))
	for i, field := range s.SortFields {
		col, err := field.Column.TransformUp(f)
		if err != nil {
			return nil, err
		}
		fields[i] = SortField{Column: col, Order: field.Order}
	}

	child, err := s.Child.TransformExpressionsUp(f)
	if err != nil {
		return nil, err
	}

	return NewSort(fields, child), nil
}

// Expressions implements the Expressioner interface.
func (s *Sort) Expressions() []sql.Expression {
	var exprs = make([]sql.Expression, len(s.SortFields))
	for i, f := range s.SortFields {
		exprs[i] = f.Column
	}
	return exprs
}

// TransformExpressions implements the Expressioner interface.
func (s *Sort) TransformExpressions(f sql.TransformExprFunc) (sql.Node, error) {
	var fields = make([]SortField, len(s.SortFields))
	for i, field := range s.SortFields {
		col, err := field.Column.TransformUp(f)
		if err != nil {
			return nil, err
		}
		fields[i] = SortField{Column: col, Order: field.Order}
	}
	return NewSort(fields, s.Child), nil
}

func (s *Sort) String() string {
	pr := sql.NewTreePrinter()
	var fields = make([]string, len(s.SortFields))
	for i, f := range s.SortFields {
		fields[i] = fmt.Sprintf("%s %s", f.Column, f.Order)
	}
	_ = pr.WriteNode("Sort(%s)", strings.Join(fields, ", "))
	_ = pr.WriteChildren(s.Child.String())
	return pr.String()
}

type sortIter struct {
	s          *Sort
	childIter  sql.RowIter
	ctx        *sql.Context
	sortedRows []sql.Row
	idx        int
	computed   bool
}

func (i *sortIter) Next() (sql.Row, error) {
	if !i.computed {
		if err := i.computeSortedRows(); err != nil {
			return nil, err
		}
		i.computed = true
	}

	if i.idx >= len(i.sortedRows) {
		return nil, io.EOF
	}

	row := i.sortedRows[i.idx]
	i.idx++
	return row, nil
}

func (i *sortIter) Close() error {
	i.sortedRows = nil
	return i.childIter.Close()
}

func (i *sortIter) computeSortedRows() error {
	var rows []sql.Row
	for {
		childRow, err := i.childIter.Next()
		if err == io.EOF {
			break
		}

		if err != nil {
			return err
		}

		rows = append(rows, childRow)
	}

	sorter := &sorter{
		sortFields: i.s.SortFields,
		rows:       rows,
		ctx:        i.ctx,
	}
	sort.Stable(sorter)
	if sorter.lastError != nil {
		return sorter.lastError
	}

	i.sortedRows = rows
	return nil
}

type sorter struct {
	sortFields []SortField
	rows       []sql.Row
	lastError  error
	ctx        *sql.Context
}

func (s *sorter) Len() int {
	return len(s.rows)
}

func (s *sorter) Swap(i, j int) {
	s.rows[i], s.rows[j] = s.rows[j], s.rows[i]
}

func (s *sorter) Less(i, j int) bool {
	if s.lastError != nil {
		return false
	}

	a := s.rows[i]
	b := s.rows[j]
	for _, sf := range s.sortFields {
		av, err := sf.Column.Eval(s.ctx, a)
		if err != nil {
			s.lastError = err
			return false
		}

		bv, err := sf.Column.Eval(s.ctx, b)
		if err != nil {
			s.lastError = err
			return false
		}

		if sf.Order == Descending {
			av, bv = bv, av
		}

		switch av.Compare(bv) {
		case -1:
			return true
		case 1:
			return false
		}
	}

	return false
}
