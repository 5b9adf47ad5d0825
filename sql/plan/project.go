package plan

import (
	"strings"

	"github.com/delimsql/delimsql/sql"
	"github.com/delimsql/delimsql/sql/expression"
	"github.com/delimsql/delimsql/sql/expression/function/aggregation"
)

// Project is a projection of certain expressions from the children node.
type Project struct {
	UnaryNode
	// Projections are the expressions projected.
	Projections []sql.Expression
}

// NewProject creates a new projection.
func NewProject(expressions []sql.Expression, child sql.Node) *Project {
	return &Project{
		UnaryNode:   UnaryNode{Child: child},
		Projections: expressions,
	}
}

// Schema implements the Node interface.
func (p *Project) Schema() sql.Schema {
	return schemaOf(p.Projections)
}

// Resolved implements the Resolvable interface.
func (p *Project) Resolved() bool {
	return p.UnaryNode.Child.Resolved() &&
		expressionsResolved(p.Projections...)
}

// RowIter implements the Node interface.
func (p *Project) RowIter(ctx *sql.Context) (sql.RowIter, error) {
	span, ctx := ctx.Span("plan.Project")

	i, err := p.Child.RowIter(ctx)
	if err != nil {
		span.Finish()
		return nil, err
	}

	return sql.NewSpanIter(span, &projectIter{p.Projections, i, ctx}), nil
}

// TransformUp implements the Transformable interface.
func (p *Project) TransformUp(f sql.TransformNodeFunc) (sql.Node, error) {
	child, err := p.Child.TransformUp(f)
	if err != nil {
		return nil, err
	}
	return f(NewProject(p.Projections, child))
}

// TransformExpressionsUp implements the Transformable interface.
func (p *Project) TransformExpressionsUp(f sql.TransformExprFunc) (sql.Node, error) {
	exprs, err := transformExpressionsUp(f, p.Projections)
	if err != nil {
		return nil, err
	}

	child, err := p.Child.TransformExpressionsUp(f)
	if err != nil {
		return nil, err
	}

	return NewProject(exprs, child), nil
}

// Expressions implements the Expressioner interface.
func (p *Project) Expressions() []sql.Expression {
	return p.Projections
}

// TransformExpressions implements the Expressioner interface.
func (p *Project) TransformExpressions(f sql.TransformExprFunc) (sql.Node, error) {
	exprs, err := transformExpressionsUp(f, p.Projections)
	if err != nil {
		return nil, err
	}
	return NewProject(exprs, p.Child), nil
}

func (p *Project) String() string {
	pr := sql.NewTreePrinter()
	var exprs = make([]string, len(p.Projections))
	for i, expr := range p.Projections {
		exprs[i] = expr.String()
	}
	_ = pr.WriteNode("Project(%s)", strings.Join(exprs, ", "))
	_ = pr.WriteChildren(p.Child.String())
	return pr.String()
}

type projectIter struct {
	projections []sql.Expression
	childIter   sql.RowIter
	ctx         *sql.Context
}

func (i *projectIter) Next() (sql.Row, error) {
	childRow, err := i.childIter.Next()
	if err != nil {
		return nil, err
	}

	return projectRow(i.ctx, i.projections, childRow)
}

func (i *projectIter) Close() error {
	return i.childIter.Close()
}

func projectRow(ctx *sql.Context, expressions []sql.Expression, row sql.Row) (sql.Row, error) {
	var fields = make(sql.Row, len(expressions))
	for i, expr := range expressions {
		f, err := expr.Eval(ctx, row)
		if err != nil {
			return nil, err
		}
		fields[i] = f
	}
	return fields, nil
}

// schemaOf derives the output schema of a list of projected expressions.
// Plain column references keep their name and source, aliases rename, and
// anything else is named after its text.
func schemaOf(exprs []sql.Expression) sql.Schema {
	var s = make(sql.Schema, len(exprs))
	for i, e := range exprs {
		name, source := nameOf(e)
		s[i] = sql.Column{Name: name, Source: source}
	}
	return s
}

func nameOf(e sql.Expression) (name, source string) {
	switch e := e.(type) {
	case *expression.Alias:
		return e.Name(), ""
	case *expression.GetField:
		return e.Name(), e.Table()
	case *aggregation.First:
		return nameOf(e.Child)
	default:
		return e.String(), ""
	}
}
