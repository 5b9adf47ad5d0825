package analyzer

import (
	"github.com/delimsql/delimsql/sql"
	"github.com/delimsql/delimsql/sql/expression"
	"github.com/delimsql/delimsql/sql/expression/function/aggregation"
	"github.com/delimsql/delimsql/sql/plan"
)

// resolveGrouping prepares GroupBy nodes for execution. Aggregations
// used by a HAVING condition are moved into the group so the condition
// can read their results from the group output row, selected columns
// outside an aggregation are checked against the grouping columns, and
// the ones that pass are wrapped so the accumulator keeps their value
// from the first row of each group.
func resolveGrouping(ctx *sql.Context, a *Analyzer, n sql.Node) (sql.Node, error) {
	span, ctx := ctx.Span("resolve_grouping")
	defer span.Finish()

	a.Log("resolve grouping, node of type: %T", n)
	n, err := pushHavingAggregations(a, n)
	if err != nil {
		return nil, err
	}

	return wrapGroupedColumns(a, n)
}

// pushHavingAggregations replaces every aggregation inside a HAVING
// condition with a reference to the matching column of the group below
// it. Aggregations the select list does not compute are appended to the
// group and hidden again by a projection above the filter.
func pushHavingAggregations(a *Analyzer, n sql.Node) (sql.Node, error) {
	return n.TransformUp(func(n sql.Node) (sql.Node, error) {
		having, ok := n.(*plan.Having)
		if !ok || !containsAggregation(having.Cond) {
			return n, nil
		}

		group, ok := having.Child.(*plan.GroupBy)
		if !ok || !group.Resolved() {
			return n, nil
		}

		schema := group.Schema()
		aggregate := make([]sql.Expression, len(group.Aggregate))
		copy(aggregate, group.Aggregate)

		var appended bool
		cond, err := having.Cond.TransformUp(func(e sql.Expression) (sql.Expression, error) {
			agg, ok := e.(sql.Aggregation)
			if !ok {
				return e, nil
			}

			str := agg.String()
			for i, entry := range aggregate {
				if unaliased(entry).String() != str {
					continue
				}

				if i < len(schema) {
					return expression.NewGetField(i, schema[i].Name), nil
				}
				return expression.NewGetField(i, str), nil
			}

			// The aggregation was resolved against the group output, but it
			// will be evaluated against the rows entering the group, so its
			// fields have to be resolved again.
			fixed, err := fixFieldIndexes(group.Child.Schema(), agg)
			if err != nil {
				return nil, err
			}

			a.Log("aggregation %q appended to the group for HAVING", str)
			aggregate = append(aggregate, fixed)
			appended = true
			return expression.NewGetField(len(aggregate)-1, str), nil
		})
		if err != nil {
			return nil, err
		}

		result := plan.NewHaving(cond, plan.NewGroupBy(aggregate, group.Grouping, group.Child))
		if !appended {
			return result, nil
		}

		// Project the original select list back, hiding the helper
		// columns the condition introduced.
		var projections = make([]sql.Expression, len(schema))
		for i, col := range schema {
			if col.Source == "" {
				projections[i] = expression.NewGetField(i, col.Name)
			} else {
				projections[i] = expression.NewGetFieldWithTable(i, col.Source, col.Name)
			}
		}

		return plan.NewProject(projections, result), nil
	})
}

// wrapGroupedColumns validates that every selected expression of a group
// is either an aggregation or covered by the grouping columns, and wraps
// the covered ones so the accumulator carries their first value.
func wrapGroupedColumns(a *Analyzer, n sql.Node) (sql.Node, error) {
	return n.TransformUp(func(n sql.Node) (sql.Node, error) {
		group, ok := n.(*plan.GroupBy)
		if !ok || !group.Resolved() {
			return n, nil
		}

		grouped := make(map[string]struct{}, len(group.Grouping))
		for _, g := range group.Grouping {
			grouped[g.String()] = struct{}{}
		}

		var aggregate = make([]sql.Expression, len(group.Aggregate))
		var changed bool
		for i, e := range group.Aggregate {
			if isAggregation(e) {
				aggregate[i] = e
				continue
			}

			if containsAggregation(e) {
				// The accumulators compute one aggregation per column, so
				// an aggregation buried in a larger expression has nothing
				// to evaluate it.
				return nil, plan.ErrGroupBy.New(e.String())
			}

			if err := checkGrouped(e, grouped); err != nil {
				return nil, err
			}

			changed = true
			if alias, ok := e.(*expression.Alias); ok {
				aggregate[i] = expression.NewAlias(aggregation.NewFirst(alias.Child), alias.Name())
			} else {
				aggregate[i] = aggregation.NewFirst(e)
			}
		}

		if !changed {
			return n, nil
		}

		return plan.NewGroupBy(aggregate, group.Grouping, group.Child), nil
	})
}

// fixFieldIndexes re-resolves every field of the expression against the
// given schema, keeping table and column names but replacing the index.
func fixFieldIndexes(schema sql.Schema, e sql.Expression) (sql.Expression, error) {
	return e.TransformUp(func(e sql.Expression) (sql.Expression, error) {
		gf, ok := e.(*expression.GetField)
		if !ok {
			return e, nil
		}

		idx := schema.IndexOf(gf.Name(), gf.Table())
		if idx < 0 {
			if gf.Table() == "" {
				return nil, sql.ErrColumnNotFound.New(gf.Name())
			}
			return nil, ErrColumnTableNotFound.New(gf.Table(), gf.Name())
		}

		return expression.NewGetFieldWithTable(idx, gf.Table(), gf.Name()), nil
	})
}

// checkGrouped walks the expression and fails on the first field that is
// not covered by a grouping column. Subtrees that match a grouping
// column textually are covered as a whole.
func checkGrouped(e sql.Expression, grouped map[string]struct{}) error {
	var err error
	expression.Inspect(e, func(e sql.Expression) bool {
		if err != nil || e == nil {
			return false
		}

		if _, ok := grouped[e.String()]; ok {
			return false
		}

		if gf, ok := e.(*expression.GetField); ok {
			err = sql.ErrGroupingViolation.New(gf.String())
			return false
		}

		return true
	})
	return err
}

// containsAggregation reports whether the expression has an aggregation
// function at any depth.
func containsAggregation(e sql.Expression) bool {
	var found bool
	expression.Inspect(e, func(e sql.Expression) bool {
		if _, ok := e.(sql.Aggregation); ok {
			found = true
			return false
		}
		return true
	})
	return found
}

// isAggregation reports whether the expression, once unaliased, is an
// aggregation function.
func isAggregation(e sql.Expression) bool {
	_, ok := unaliased(e).(sql.Aggregation)
	return ok
}

// unaliased strips the alias from an expression, if any.
func unaliased(e sql.Expression) sql.Expression {
	if alias, ok := e.(*expression.Alias); ok {
		return alias.Child
	}
	return e
}
