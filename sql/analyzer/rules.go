package analyzer

import (
	"strings"

	errors "gopkg.in/src-d/go-errors.v1"

	"github.com/delimsql/delimsql/internal/similartext"
	"github.com/delimsql/delimsql/sql"
	"github.com/delimsql/delimsql/sql/expression"
	"github.com/delimsql/delimsql/sql/expression/function/aggregation"
	"github.com/delimsql/delimsql/sql/plan"
)

// DefaultRules to apply when analyzing nodes.
var DefaultRules = []Rule{
	{"resolve_tables", resolveTables},
	{"qualify_columns", qualifyColumns},
	{"resolve_columns", resolveColumns},
	{"expand_stars", expandStars},
	{"resolve_functions", resolveFunctions},
	{"resolve_grouping", resolveGrouping},
	{"resolve_order_aliases", resolveOrderAliases},
	{"pushdown_sort", pushdownSort},
}

// ErrColumnTableNotFound is returned when a column qualified with a table
// name does not exist in that table.
var ErrColumnTableNotFound = errors.NewKind("table %q does not have column %q")

// column is the set of methods common to all column expressions that are
// pending resolution.
type column interface {
	sql.Nameable
	sql.Expression
	// Table returns the name of the table the column is qualified with,
	// or the empty string.
	Table() string
}

// maybeAlias is a column that was not found in the scope of its node.
// It may name an alias introduced by a projection that is not built
// yet, or a column a sort pushdown will expose, so its resolution is
// deferred for one more pass before it fails.
type maybeAlias struct {
	*expression.UnresolvedColumn
}

// TransformUp implements the Expression interface.
func (e *maybeAlias) TransformUp(fn sql.TransformExprFunc) (sql.Expression, error) {
	return fn(e)
}

func resolveTables(ctx *sql.Context, a *Analyzer, n sql.Node) (sql.Node, error) {
	span, ctx := ctx.Span("resolve_tables")
	defer span.Finish()

	a.Log("resolve tables, node of type: %T", n)
	return n.TransformUp(func(n sql.Node) (sql.Node, error) {
		if n.Resolved() {
			return n, nil
		}

		switch n := n.(type) {
		case *plan.UnresolvedTable:
			t, err := a.Catalog.Table(a.CurrentDatabase, n.Name())
			if err != nil {
				return nil, err
			}

			a.Log("table %q resolved", t.Name())
			return plan.NewResolvedTable(t), nil
		case *plan.CreateTable:
			db, err := a.Catalog.Database(a.CurrentDatabase)
			if err != nil {
				return nil, err
			}

			return n.WithDatabase(db), nil
		default:
			return n, nil
		}
	})
}

func qualifyColumns(ctx *sql.Context, a *Analyzer, n sql.Node) (sql.Node, error) {
	span, ctx := ctx.Span("qualify_columns")
	defer span.Finish()

	a.Log("qualify columns, node of type: %T", n)
	tables := map[string]sql.Node{}
	colIndex := map[string][]string{}

	indexCols := func(table string, schema sql.Schema) {
		for _, col := range schema {
			colIndex[col.Name] = append(colIndex[col.Name], table)
		}
	}

	plan.Inspect(n, func(n sql.Node) bool {
		switch n := n.(type) {
		case *plan.TableAlias:
			// The alias hides the real table name for the rest of the
			// statement.
			tables[n.Name()] = n
			indexCols(n.Name(), n.Schema())
			return false
		case *plan.ResolvedTable:
			tables[n.Name()] = n
			indexCols(n.Name(), n.Schema())
		}
		return true
	})

	return n.TransformExpressionsUp(func(e sql.Expression) (sql.Expression, error) {
		switch e := e.(type) {
		case *expression.UnresolvedColumn:
			if e.Table() != "" {
				if _, ok := tables[e.Table()]; !ok {
					return nil, sql.ErrTableNotFound.New(e.Table())
				}
				return e, nil
			}

			sources := dedupStrings(colIndex[e.Name()])
			switch len(sources) {
			case 0:
				// It may be an alias, so defer the decision to the
				// resolve_columns rule.
			case 1:
				return expression.NewUnresolvedQualifiedColumn(sources[0], e.Name()), nil
			default:
				return nil, sql.ErrAmbiguousColumnName.New(e.Name(), strings.Join(sources, ", "))
			}
		case *expression.Star:
			if e.Table != "" {
				if _, ok := tables[e.Table]; !ok {
					return nil, sql.ErrTableNotFound.New(e.Table)
				}
			}
		}
		return e, nil
	})
}

func resolveColumns(ctx *sql.Context, a *Analyzer, n sql.Node) (sql.Node, error) {
	span, ctx := ctx.Span("resolve_columns")
	defer span.Finish()

	a.Log("resolve columns, node of type: %T", n)
	return n.TransformUp(func(n sql.Node) (sql.Node, error) {
		if n.Resolved() {
			return n, nil
		}

		expressioner, ok := n.(sql.Expressioner)
		if !ok {
			return n, nil
		}

		// We need to wait for the child nodes of the expressioner to be
		// resolved to know the schema the columns resolve against.
		var schema sql.Schema
		for _, child := range n.Children() {
			if !child.Resolved() {
				return n, nil
			}
			schema = append(schema, child.Schema()...)
		}

		return expressioner.TransformExpressions(func(e sql.Expression) (sql.Expression, error) {
			uc, ok := e.(column)
			if !ok || e.Resolved() {
				return e, nil
			}

			idx := schema.IndexOf(uc.Name(), uc.Table())
			if idx < 0 {
				switch uc := uc.(type) {
				case *expression.UnresolvedColumn:
					a.Log("deferring resolution of column %q", uc.Name())
					return &maybeAlias{uc}, nil
				default:
					if uc.Table() != "" {
						return nil, ErrColumnTableNotFound.New(uc.Table(), uc.Name())
					}

					return nil, sql.ErrColumnNotFound.New(
						uc.Name() + similartext.Find(schema.ColumnNames(), uc.Name()),
					)
				}
			}

			col := schema[idx]
			a.Log("column %q resolved to field %d of %q", col.Name, idx, col.Source)
			if col.Source == "" {
				return expression.NewGetField(idx, col.Name), nil
			}
			return expression.NewGetFieldWithTable(idx, col.Source, col.Name), nil
		})
	})
}

func expandStars(ctx *sql.Context, a *Analyzer, n sql.Node) (sql.Node, error) {
	span, ctx := ctx.Span("expand_stars")
	defer span.Finish()

	a.Log("expand stars, node of type: %T", n)
	return n.TransformUp(func(n sql.Node) (sql.Node, error) {
		if n.Resolved() {
			return n, nil
		}

		switch n := n.(type) {
		case *plan.Project:
			if !n.Child.Resolved() {
				return n, nil
			}

			expanded, err := expandStarsForExpressions(n.Projections, n.Child.Schema())
			if err != nil {
				return nil, err
			}
			return plan.NewProject(expanded, n.Child), nil
		case *plan.GroupBy:
			if !n.Child.Resolved() {
				return n, nil
			}

			expanded, err := expandStarsForExpressions(n.Aggregate, n.Child.Schema())
			if err != nil {
				return nil, err
			}
			return plan.NewGroupBy(expanded, n.Grouping, n.Child), nil
		default:
			return n, nil
		}
	})
}

func expandStarsForExpressions(exprs []sql.Expression, schema sql.Schema) ([]sql.Expression, error) {
	var expanded []sql.Expression
	for _, e := range exprs {
		star, ok := e.(*expression.Star)
		if !ok {
			expanded = append(expanded, e)
			continue
		}

		var fields []sql.Expression
		for i, col := range schema {
			if star.Table == "" || star.Table == col.Source {
				fields = append(fields, expression.NewGetFieldWithTable(i, col.Source, col.Name))
			}
		}

		if len(fields) == 0 && star.Table != "" {
			return nil, sql.ErrTableNotFound.New(star.Table)
		}

		expanded = append(expanded, fields...)
	}

	return expanded, nil
}

func resolveFunctions(ctx *sql.Context, a *Analyzer, n sql.Node) (sql.Node, error) {
	span, ctx := ctx.Span("resolve_functions")
	defer span.Finish()

	a.Log("resolve functions, node of type: %T", n)
	return n.TransformExpressionsUp(func(e sql.Expression) (sql.Expression, error) {
		uf, ok := e.(*expression.UnresolvedFunction)
		if !ok {
			return e, nil
		}

		f, err := a.Catalog.Function(uf.Name())
		if err != nil {
			return nil, err
		}

		fn, err := f.Call(uf.Arguments...)
		if err != nil {
			return nil, err
		}

		if uf.Distinct {
			fn, err = distinctAggregation(fn)
			if err != nil {
				return nil, err
			}
		}

		a.Log("function %q resolved", uf.Name())
		return fn, nil
	})
}

// distinctAggregation swaps a resolved aggregation for its DISTINCT
// variant.
func distinctAggregation(e sql.Expression) (sql.Expression, error) {
	switch agg := e.(type) {
	case *aggregation.Count:
		return aggregation.NewCountDistinct(agg.Child), nil
	case *aggregation.Sum:
		return aggregation.NewSumDistinct(agg.Child), nil
	case *aggregation.Avg:
		return aggregation.NewAvgDistinct(agg.Child), nil
	case *aggregation.Min:
		return aggregation.NewMinDistinct(agg.Child), nil
	case *aggregation.Max:
		return aggregation.NewMaxDistinct(agg.Child), nil
	default:
		return nil, sql.ErrValidation.New("DISTINCT is only supported on aggregation functions")
	}
}

func dedupStrings(in []string) []string {
	var seen = make(map[string]struct{})
	var result []string
	for _, s := range in {
		if _, ok := seen[s]; !ok {
			seen[s] = struct{}{}
			result = append(result, s)
		}
	}
	return result
}
