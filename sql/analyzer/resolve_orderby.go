package analyzer

import (
	errors "gopkg.in/src-d/go-errors.v1"

	"github.com/delimsql/delimsql/sql"
	"github.com/delimsql/delimsql/sql/expression"
	"github.com/delimsql/delimsql/sql/plan"
)

// ErrOrderByAggregate is returned when an ORDER BY expression computes
// an aggregation the select list does not.
var ErrOrderByAggregate = errors.NewKind("aggregation in ORDER BY must also appear in the select list: %s")

// resolveOrderAliases rewrites aggregations used in ORDER BY into plain
// column references. Sort runs over the projected rows, so the
// aggregation must match a column of the select list to be usable; an
// aggregation the select list does not compute fails here rather than
// at evaluation time.
func resolveOrderAliases(ctx *sql.Context, a *Analyzer, n sql.Node) (sql.Node, error) {
	span, ctx := ctx.Span("resolve_order_aliases")
	defer span.Finish()

	a.Log("resolve order aliases, node of type: %T", n)
	return n.TransformUp(func(n sql.Node) (sql.Node, error) {
		sort, ok := n.(*plan.Sort)
		if !ok || !sort.Child.Resolved() {
			return n, nil
		}

		schema := sort.Child.Schema()
		var fields = make([]plan.SortField, len(sort.SortFields))
		var changed bool
		for i, f := range sort.SortFields {
			if !containsAggregation(f.Column) {
				fields[i] = f
				continue
			}

			name := f.Column.String()
			if schema.IndexOf(name, "") < 0 {
				return nil, ErrOrderByAggregate.New(name)
			}

			a.Log("order by aggregation %q resolved to a select list column", name)
			changed = true
			fields[i] = plan.SortField{
				Column: expression.NewUnresolvedColumn(name),
				Order:  f.Order,
			}
		}

		if !changed {
			return n, nil
		}

		return plan.NewSort(fields, sort.Child), nil
	})
}

// pushdownSort moves a Sort below its projection when it orders by
// columns the projection drops. The sort then sees the projection input,
// extended with the missing columns, and a projection on top restores
// the selected columns. Sorts over GROUP BY or DISTINCT output are left
// alone: there the sort columns must come from the output itself.
func pushdownSort(ctx *sql.Context, a *Analyzer, n sql.Node) (sql.Node, error) {
	span, ctx := ctx.Span("pushdown_sort")
	defer span.Finish()

	a.Log("pushdown sort, node of type: %T", n)
	return n.TransformUp(func(n sql.Node) (sql.Node, error) {
		sort, ok := n.(*plan.Sort)
		if !ok || !sort.Child.Resolved() {
			return n, nil
		}

		project, ok := sort.Child.(*plan.Project)
		if !ok {
			return n, nil
		}

		missing := missingSortColumns(sort)
		if len(missing) == 0 {
			return n, nil
		}

		// The projection below the sort keeps its own expressions and
		// additionally exposes the missing columns, which resolve
		// against the projection input on the next pass. Sort fields
		// already resolved against the projected schema stay valid:
		// the added columns only append to it.
		inner := make([]sql.Expression, len(project.Projections), len(project.Projections)+len(missing))
		copy(inner, project.Projections)
		for _, col := range missing {
			a.Log("sort column %q pushed below the projection", col.Name())
			inner = append(inner, expression.NewUnresolvedQualifiedColumn(col.Table(), col.Name()))
		}

		schema := project.Schema()
		outer := make([]sql.Expression, len(schema))
		for i, col := range schema {
			if col.Source == "" {
				outer[i] = expression.NewGetField(i, col.Name)
			} else {
				outer[i] = expression.NewGetFieldWithTable(i, col.Source, col.Name)
			}
		}

		return plan.NewProject(
			outer,
			plan.NewSort(
				sort.SortFields,
				plan.NewProject(inner, project.Child),
			),
		), nil
	})
}

// missingSortColumns collects the column references of the sort fields
// that did not resolve against the schema below the sort.
func missingSortColumns(sort *plan.Sort) []column {
	var (
		missing []column
		seen    = make(map[string]struct{})
	)
	for _, f := range sort.SortFields {
		expression.Inspect(f.Column, func(e sql.Expression) bool {
			if e == nil || e.Resolved() {
				return true
			}

			uc, ok := e.(column)
			if !ok {
				return true
			}

			key := uc.Table() + "." + uc.Name()
			if _, ok := seen[key]; !ok {
				seen[key] = struct{}{}
				missing = append(missing, uc)
			}
			return false
		})
	}
	return missing
}
