package analyzer

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/delimsql/delimsql/sql"
	"github.com/delimsql/delimsql/sql/expression"
	"github.com/delimsql/delimsql/sql/expression/function/aggregation"
	"github.com/delimsql/delimsql/sql/plan"
)

func TestResolveTables(t *testing.T) {
	require := require.New(t)
	a := newAnalyzer(t)
	ctx := sql.NewEmptyContext()

	node, err := resolveTables(ctx, a, plan.NewUnresolvedTable("people"))
	require.NoError(err)

	rt, ok := node.(*plan.ResolvedTable)
	require.True(ok)
	require.Equal("people", rt.Name())

	_, err = resolveTables(ctx, a, plan.NewUnresolvedTable("missing"))
	require.Error(err)
	require.True(sql.ErrTableNotFound.Is(err))
}

func TestResolveTablesCreateTable(t *testing.T) {
	require := require.New(t)
	a := newAnalyzer(t)
	ctx := sql.NewEmptyContext()

	ct := plan.NewCreateTable(
		sql.UnresolvedDatabase(""),
		"cities",
		sql.Schema{{Name: "name"}},
		sql.CreateTableOptions{},
	)
	require.False(ct.Resolved())

	node, err := resolveTables(ctx, a, ct)
	require.NoError(err)
	require.True(node.Resolved())

	resolved, ok := node.(*plan.CreateTable)
	require.True(ok)
	require.Equal("main", resolved.Database().Name())
}

func TestQualifyColumns(t *testing.T) {
	require := require.New(t)
	a := newAnalyzer(t)
	ctx := sql.NewEmptyContext()

	table, err := a.Catalog.Table("main", "people")
	require.NoError(err)

	node := plan.NewProject(
		[]sql.Expression{expression.NewUnresolvedColumn("age")},
		plan.NewResolvedTable(table),
	)

	result, err := qualifyColumns(ctx, a, node)
	require.NoError(err)
	require.Equal(
		[]sql.Expression{expression.NewUnresolvedQualifiedColumn("people", "age")},
		result.(*plan.Project).Projections,
	)
}

func TestQualifyColumnsUnknownTable(t *testing.T) {
	require := require.New(t)
	a := newAnalyzer(t)
	ctx := sql.NewEmptyContext()

	table, err := a.Catalog.Table("main", "people")
	require.NoError(err)

	node := plan.NewProject(
		[]sql.Expression{expression.NewUnresolvedQualifiedColumn("zzz", "age")},
		plan.NewResolvedTable(table),
	)

	_, err = qualifyColumns(ctx, a, node)
	require.Error(err)
	require.True(sql.ErrTableNotFound.Is(err))
}

func TestQualifyColumnsTableAlias(t *testing.T) {
	require := require.New(t)
	a := newAnalyzer(t)
	ctx := sql.NewEmptyContext()

	table, err := a.Catalog.Table("main", "people")
	require.NoError(err)

	node := plan.NewProject(
		[]sql.Expression{expression.NewUnresolvedColumn("age")},
		plan.NewTableAlias("p", plan.NewResolvedTable(table)),
	)

	result, err := qualifyColumns(ctx, a, node)
	require.NoError(err)
	require.Equal(
		[]sql.Expression{expression.NewUnresolvedQualifiedColumn("p", "age")},
		result.(*plan.Project).Projections,
	)

	// The real table name is hidden behind the alias.
	node = plan.NewProject(
		[]sql.Expression{expression.NewUnresolvedQualifiedColumn("people", "age")},
		plan.NewTableAlias("p", plan.NewResolvedTable(table)),
	)

	_, err = qualifyColumns(ctx, a, node)
	require.Error(err)
	require.True(sql.ErrTableNotFound.Is(err))
}

func TestResolveColumns(t *testing.T) {
	require := require.New(t)
	a := newAnalyzer(t)
	ctx := sql.NewEmptyContext()

	table, err := a.Catalog.Table("main", "people")
	require.NoError(err)

	node := plan.NewProject(
		[]sql.Expression{expression.NewUnresolvedQualifiedColumn("people", "age")},
		plan.NewResolvedTable(table),
	)

	result, err := resolveColumns(ctx, a, node)
	require.NoError(err)
	require.Equal(
		[]sql.Expression{expression.NewGetFieldWithTable(2, "people", "age")},
		result.(*plan.Project).Projections,
	)
}

func TestResolveColumnsQualifiedMiss(t *testing.T) {
	require := require.New(t)
	a := newAnalyzer(t)
	ctx := sql.NewEmptyContext()

	table, err := a.Catalog.Table("main", "people")
	require.NoError(err)

	node := plan.NewProject(
		[]sql.Expression{expression.NewUnresolvedQualifiedColumn("people", "zzz")},
		plan.NewResolvedTable(table),
	)

	// The first pass defers the column in case a later rule exposes it,
	// the second gives up on it.
	deferred, err := resolveColumns(ctx, a, node)
	require.NoError(err)
	require.False(deferred.Resolved())

	_, err = resolveColumns(ctx, a, deferred)
	require.Error(err)
	require.True(ErrColumnTableNotFound.Is(err))
}

func TestResolveColumnsDefersUnqualifiedMiss(t *testing.T) {
	require := require.New(t)
	a := newAnalyzer(t)
	ctx := sql.NewEmptyContext()

	table, err := a.Catalog.Table("main", "people")
	require.NoError(err)

	node := plan.NewProject(
		[]sql.Expression{expression.NewUnresolvedColumn("zzz")},
		plan.NewResolvedTable(table),
	)

	// The first pass defers the column, the second gives up on it.
	deferred, err := resolveColumns(ctx, a, node)
	require.NoError(err)
	require.False(deferred.Resolved())

	_, err = resolveColumns(ctx, a, deferred)
	require.Error(err)
	require.True(sql.ErrColumnNotFound.Is(err))
}

func TestExpandStars(t *testing.T) {
	require := require.New(t)
	a := newAnalyzer(t)
	ctx := sql.NewEmptyContext()

	table, err := a.Catalog.Table("main", "people")
	require.NoError(err)

	node := plan.NewProject(
		[]sql.Expression{expression.NewStar()},
		plan.NewResolvedTable(table),
	)

	result, err := expandStars(ctx, a, node)
	require.NoError(err)
	require.Equal(
		[]sql.Expression{
			expression.NewGetFieldWithTable(0, "people", "id"),
			expression.NewGetFieldWithTable(1, "people", "name"),
			expression.NewGetFieldWithTable(2, "people", "age"),
		},
		result.(*plan.Project).Projections,
	)
}

func TestExpandQualifiedStar(t *testing.T) {
	require := require.New(t)
	a := newAnalyzer(t)
	ctx := sql.NewEmptyContext()

	people, err := a.Catalog.Table("main", "people")
	require.NoError(err)
	pets, err := a.Catalog.Table("main", "pets")
	require.NoError(err)

	node := plan.NewProject(
		[]sql.Expression{expression.NewQualifiedStar("pets")},
		plan.NewCrossJoin(
			plan.NewResolvedTable(people),
			plan.NewResolvedTable(pets),
		),
	)

	result, err := expandStars(ctx, a, node)
	require.NoError(err)
	require.Equal(
		[]sql.Expression{
			expression.NewGetFieldWithTable(3, "pets", "owner_id"),
			expression.NewGetFieldWithTable(4, "pets", "name"),
		},
		result.(*plan.Project).Projections,
	)
}

func TestResolveFunctions(t *testing.T) {
	require := require.New(t)
	a := newAnalyzer(t)
	ctx := sql.NewEmptyContext()

	node := plan.NewProject(
		[]sql.Expression{
			expression.NewUnresolvedFunction("count", false, expression.NewStar()),
		},
		plan.NewUnresolvedTable("people"),
	)

	result, err := resolveFunctions(ctx, a, node)
	require.NoError(err)
	require.IsType(&aggregation.Count{}, result.(*plan.Project).Projections[0])

	node = plan.NewProject(
		[]sql.Expression{
			expression.NewUnresolvedFunction("nope", false, expression.NewStar()),
		},
		plan.NewUnresolvedTable("people"),
	)

	_, err = resolveFunctions(ctx, a, node)
	require.Error(err)
	require.True(sql.ErrFunctionNotFound.Is(err))
}

func TestResolveFunctionsDistinct(t *testing.T) {
	require := require.New(t)
	a := newAnalyzer(t)
	ctx := sql.NewEmptyContext()

	for name, expected := range map[string]string{
		"count": "COUNT(DISTINCT x)",
		"sum":   "SUM(DISTINCT x)",
		"avg":   "AVG(DISTINCT x)",
		"min":   "MIN(DISTINCT x)",
		"max":   "MAX(DISTINCT x)",
	} {
		node := plan.NewProject(
			[]sql.Expression{
				expression.NewUnresolvedFunction(name, true, expression.NewGetField(0, "x")),
			},
			plan.NewUnresolvedTable("people"),
		)

		result, err := resolveFunctions(ctx, a, node)
		require.NoError(err)
		require.Equal(expected, result.(*plan.Project).Projections[0].String())
	}

	// DISTINCT makes no sense on a scalar function.
	node := plan.NewProject(
		[]sql.Expression{
			expression.NewUnresolvedFunction("upper", true, expression.NewGetField(0, "x")),
		},
		plan.NewUnresolvedTable("people"),
	)

	_, err := resolveFunctions(ctx, a, node)
	require.Error(err)
	require.True(sql.ErrValidation.Is(err))
}

func TestWrapGroupedColumns(t *testing.T) {
	require := require.New(t)
	a := newAnalyzer(t)
	ctx := sql.NewEmptyContext()

	table, err := a.Catalog.Table("main", "people")
	require.NoError(err)

	node := plan.NewGroupBy(
		[]sql.Expression{
			expression.NewGetFieldWithTable(2, "people", "age"),
			aggregation.NewCount(expression.NewStar()),
		},
		[]sql.Expression{expression.NewGetFieldWithTable(2, "people", "age")},
		plan.NewResolvedTable(table),
	)

	result, err := resolveGrouping(ctx, a, node)
	require.NoError(err)

	group, ok := result.(*plan.GroupBy)
	require.True(ok)
	require.IsType(&aggregation.First{}, group.Aggregate[0])
	require.IsType(&aggregation.Count{}, group.Aggregate[1])

	// A second application leaves the group untouched.
	again, err := resolveGrouping(ctx, a, result)
	require.NoError(err)
	require.Equal(result, again)
}

func TestWrapGroupedColumnsMixedAggregation(t *testing.T) {
	require := require.New(t)
	a := newAnalyzer(t)
	ctx := sql.NewEmptyContext()

	table, err := a.Catalog.Table("main", "people")
	require.NoError(err)

	node := plan.NewGroupBy(
		[]sql.Expression{
			expression.NewPlus(
				aggregation.NewCount(expression.NewStar()),
				expression.NewLiteral(sql.NewInteger(1)),
			),
		},
		nil,
		plan.NewResolvedTable(table),
	)

	_, err = resolveGrouping(ctx, a, node)
	require.Error(err)
	require.True(plan.ErrGroupBy.Is(err))
}

func TestPushHavingAggregations(t *testing.T) {
	require := require.New(t)
	a := newAnalyzer(t)
	ctx := sql.NewEmptyContext()

	table, err := a.Catalog.Table("main", "people")
	require.NoError(err)

	node := plan.NewHaving(
		expression.NewGreaterThan(
			aggregation.NewCount(expression.NewStar()),
			expression.NewLiteral(sql.NewInteger(1)),
		),
		plan.NewGroupBy(
			[]sql.Expression{
				expression.NewGetFieldWithTable(2, "people", "age"),
				expression.NewAlias(aggregation.NewCount(expression.NewStar()), "total"),
			},
			[]sql.Expression{expression.NewGetFieldWithTable(2, "people", "age")},
			plan.NewResolvedTable(table),
		),
	)

	result, err := resolveGrouping(ctx, a, node)
	require.NoError(err)

	having, ok := result.(*plan.Having)
	require.True(ok)

	// The aggregation in the condition now reads the matching column of
	// the group output.
	cond, ok := having.Cond.(*expression.GreaterThan)
	require.True(ok)
	require.Equal(expression.NewGetField(1, "total"), cond.Left)
}

func TestResolveOrderAliases(t *testing.T) {
	require := require.New(t)
	a := newAnalyzer(t)
	ctx := sql.NewEmptyContext()

	table, err := a.Catalog.Table("main", "people")
	require.NoError(err)

	group := plan.NewGroupBy(
		[]sql.Expression{
			aggregation.NewFirst(expression.NewGetFieldWithTable(2, "people", "age")),
			aggregation.NewCount(expression.NewStar()),
		},
		[]sql.Expression{expression.NewGetFieldWithTable(2, "people", "age")},
		plan.NewResolvedTable(table),
	)

	node := plan.NewSort(
		[]plan.SortField{{
			Column: aggregation.NewCount(expression.NewStar()),
			Order:  plan.Ascending,
		}},
		group,
	)

	result, err := resolveOrderAliases(ctx, a, node)
	require.NoError(err)
	require.Equal(
		expression.NewUnresolvedColumn("COUNT(*)"),
		result.(*plan.Sort).SortFields[0].Column,
	)

	// An aggregation the select list does not compute cannot be sorted
	// on.
	node = plan.NewSort(
		[]plan.SortField{{
			Column: aggregation.NewSum(expression.NewGetFieldWithTable(2, "people", "age")),
			Order:  plan.Ascending,
		}},
		group,
	)

	_, err = resolveOrderAliases(ctx, a, node)
	require.Error(err)
	require.True(ErrOrderByAggregate.Is(err))
}

func TestPushdownSort(t *testing.T) {
	require := require.New(t)
	a := newAnalyzer(t)
	ctx := sql.NewEmptyContext()

	table, err := a.Catalog.Table("main", "people")
	require.NoError(err)

	// Ordering by a column the projection drops moves the sort below an
	// extended projection and restores the selected columns on top.
	node := plan.NewSort(
		[]plan.SortField{{
			Column: &maybeAlias{expression.NewUnresolvedQualifiedColumn("people", "age")},
			Order:  plan.Ascending,
		}},
		plan.NewProject(
			[]sql.Expression{expression.NewGetFieldWithTable(1, "people", "name")},
			plan.NewResolvedTable(table),
		),
	)

	result, err := pushdownSort(ctx, a, node)
	require.NoError(err)

	outer, ok := result.(*plan.Project)
	require.True(ok)
	require.Equal(
		[]sql.Expression{expression.NewGetFieldWithTable(0, "people", "name")},
		outer.Projections,
	)

	sort, ok := outer.Child.(*plan.Sort)
	require.True(ok)

	inner, ok := sort.Child.(*plan.Project)
	require.True(ok)
	require.Equal(
		[]sql.Expression{
			expression.NewGetFieldWithTable(1, "people", "name"),
			expression.NewUnresolvedQualifiedColumn("people", "age"),
		},
		inner.Projections,
	)

	// A sort whose columns all come from the projection stays put.
	node = plan.NewSort(
		[]plan.SortField{{
			Column: expression.NewGetFieldWithTable(0, "people", "name"),
			Order:  plan.Ascending,
		}},
		plan.NewProject(
			[]sql.Expression{expression.NewGetFieldWithTable(1, "people", "name")},
			plan.NewResolvedTable(table),
		),
	)

	result, err = pushdownSort(ctx, a, node)
	require.NoError(err)
	require.Equal(node, result)
}

func TestValidateLimits(t *testing.T) {
	require := require.New(t)
	a := newAnalyzer(t)
	ctx := sql.NewEmptyContext()

	table, err := a.Catalog.Table("main", "people")
	require.NoError(err)

	node := plan.NewLimit(2, plan.NewOffset(1, plan.NewResolvedTable(table)))
	result, err := validateLimits(ctx, a, node)
	require.NoError(err)
	require.Equal(node, result)

	_, err = validateLimits(ctx, a, plan.NewLimit(-1, plan.NewResolvedTable(table)))
	require.Error(err)
	require.True(sql.ErrValidation.Is(err))

	_, err = validateLimits(ctx, a, plan.NewOffset(-3, plan.NewResolvedTable(table)))
	require.Error(err)
	require.True(sql.ErrValidation.Is(err))
}

func TestValidateIsResolved(t *testing.T) {
	require := require.New(t)
	a := newAnalyzer(t)
	ctx := sql.NewEmptyContext()

	_, err := validateIsResolved(ctx, a, plan.NewUnresolvedTable("people"))
	require.Error(err)
	require.True(ErrValidationResolved.Is(err))
}
