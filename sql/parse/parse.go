// Package parse converts SQL text into unresolved plan trees using the
// vitess sqlparser.
package parse

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	opentracing "github.com/opentracing/opentracing-go"
	"github.com/sirupsen/logrus"
	errors "gopkg.in/src-d/go-errors.v1"
	"gopkg.in/src-d/go-vitess.v1/vt/sqlparser"

	"github.com/delimsql/delimsql/sql"
	"github.com/delimsql/delimsql/sql/expression"
	"github.com/delimsql/delimsql/sql/plan"
)

var (
	// ErrUnsupportedSyntax is returned when a statement form has no plan
	// node to translate to.
	ErrUnsupportedSyntax = errors.NewKind("unsupported syntax: %#v")

	// ErrUnsupportedFeature is returned when a recognized feature is not
	// supported by the engine.
	ErrUnsupportedFeature = errors.NewKind("unsupported feature: %s")

	// ErrInvalidSQLValType is returned when a SQLVal type is not valid.
	ErrInvalidSQLValType = errors.NewKind("invalid SQLVal of type: %d")
)

var createTableRegex = regexp.MustCompile(`^create\s+table\s+`)

// aggregateNames are the function names that force the grouped execution
// path when they appear in a select list.
var aggregateNames = map[string]struct{}{
	"count": {},
	"sum":   {},
	"avg":   {},
	"min":   {},
	"max":   {},
}

// Parse parses the given SQL sentence and returns the corresponding node.
func Parse(ctx *sql.Context, query string) (sql.Node, error) {
	span, ctx := ctx.Span("parse", opentracing.Tag{Key: "query", Value: query})
	defer span.Finish()

	s := strings.TrimSpace(removeComments(query))
	if strings.HasSuffix(s, ";") {
		s = strings.TrimSpace(s[:len(s)-1])
	}

	if s == "" {
		logrus.WithField("query", query).
			Debugf("query became empty after removing comments, it will be ignored")
		return plan.Nothing, nil
	}

	if createTableRegex.MatchString(strings.ToLower(s)) {
		return parseCreateTable(s)
	}

	stmt, err := sqlparser.Parse(s)
	if err != nil {
		return nil, err
	}

	return convert(ctx, stmt)
}

func convert(ctx *sql.Context, stmt sqlparser.Statement) (sql.Node, error) {
	switch n := stmt.(type) {
	default:
		return nil, ErrUnsupportedSyntax.New(n)
	case *sqlparser.Select:
		return convertSelect(ctx, n)
	case *sqlparser.Insert:
		return convertInsert(ctx, n)
	case *sqlparser.Update:
		return convertUpdate(n)
	case *sqlparser.Delete:
		return convertDelete(n)
	}
}

func convertSelect(ctx *sql.Context, s *sqlparser.Select) (sql.Node, error) {
	node, err := tableExprsToTable(ctx, s.From)
	if err != nil {
		return nil, err
	}

	if s.Where != nil {
		node, err = whereToFilter(s.Where, node)
		if err != nil {
			return nil, err
		}
	}

	node, err = selectToProjectOrGroupBy(s.SelectExprs, s.GroupBy, s.Having != nil, node)
	if err != nil {
		return nil, err
	}

	if s.Having != nil {
		cond, err := exprToExpression(s.Having.Expr)
		if err != nil {
			return nil, err
		}

		node = plan.NewHaving(cond, node)
	}

	if s.Distinct != "" {
		node = plan.NewDistinct(node)
	}

	if len(s.OrderBy) != 0 {
		node, err = orderByToSort(s.OrderBy, node)
		if err != nil {
			return nil, err
		}
	}

	// The offset is applied under the limit so rows are skipped before
	// they are counted.
	if s.Limit != nil && s.Limit.Offset != nil {
		node, err = offsetToOffset(s.Limit.Offset, node)
		if err != nil {
			return nil, err
		}
	}

	if s.Limit != nil {
		node, err = limitToLimit(s.Limit.Rowcount, node)
		if err != nil {
			return nil, err
		}
	}

	return node, nil
}

func convertInsert(ctx *sql.Context, i *sqlparser.Insert) (sql.Node, error) {
	if len(i.OnDup) > 0 {
		return nil, ErrUnsupportedFeature.New("ON DUPLICATE KEY")
	}

	if len(i.Ignore) > 0 {
		return nil, ErrUnsupportedSyntax.New(i)
	}

	if !i.Table.Qualifier.IsEmpty() {
		return nil, ErrUnsupportedFeature.New("qualified table names")
	}

	src, err := insertRowsToNode(ctx, i.Rows)
	if err != nil {
		return nil, err
	}

	return plan.NewInsertInto(
		plan.NewUnresolvedTable(i.Table.Name.String()),
		src,
		columnsToStrings(i.Columns),
	), nil
}

func convertUpdate(u *sqlparser.Update) (sql.Node, error) {
	if len(u.OrderBy) != 0 {
		return nil, ErrUnsupportedFeature.New("ORDER BY in UPDATE")
	}

	if u.Limit != nil {
		return nil, ErrUnsupportedFeature.New("LIMIT in UPDATE")
	}

	table, err := mutationTable(u.TableExprs)
	if err != nil {
		return nil, err
	}

	exprs := make([]plan.UpdateExpr, len(u.Exprs))
	for i, ue := range u.Exprs {
		col, err := exprToExpression(ue.Name)
		if err != nil {
			return nil, err
		}

		val, err := exprToExpression(ue.Expr)
		if err != nil {
			return nil, err
		}

		exprs[i] = plan.UpdateExpr{Column: col, Value: val}
	}

	where, err := whereToExpression(u.Where)
	if err != nil {
		return nil, err
	}

	return plan.NewUpdate(table, exprs, where), nil
}

func convertDelete(d *sqlparser.Delete) (sql.Node, error) {
	if len(d.OrderBy) != 0 {
		return nil, ErrUnsupportedFeature.New("ORDER BY in DELETE")
	}

	if d.Limit != nil {
		return nil, ErrUnsupportedFeature.New("LIMIT in DELETE")
	}

	table, err := mutationTable(d.TableExprs)
	if err != nil {
		return nil, err
	}

	where, err := whereToExpression(d.Where)
	if err != nil {
		return nil, err
	}

	return plan.NewDeleteFrom(table, where), nil
}

// mutationTable extracts the single target table of an UPDATE or DELETE.
func mutationTable(te sqlparser.TableExprs) (sql.Node, error) {
	if len(te) != 1 {
		return nil, ErrUnsupportedFeature.New("mutation of more than one table")
	}

	aliased, ok := te[0].(*sqlparser.AliasedTableExpr)
	if !ok {
		return nil, ErrUnsupportedSyntax.New(te[0])
	}

	name, ok := aliased.Expr.(sqlparser.TableName)
	if !ok {
		return nil, ErrUnsupportedSyntax.New(aliased.Expr)
	}

	if !name.Qualifier.IsEmpty() {
		return nil, ErrUnsupportedFeature.New("qualified table names")
	}

	return plan.NewUnresolvedTable(name.Name.String()), nil
}

func columnsToStrings(cols sqlparser.Columns) []string {
	res := make([]string, len(cols))
	for i, c := range cols {
		res[i] = c.String()
	}

	return res
}

func insertRowsToNode(ctx *sql.Context, ir sqlparser.InsertRows) (sql.Node, error) {
	switch v := ir.(type) {
	case *sqlparser.Select:
		return convertSelect(ctx, v)
	case *sqlparser.Union:
		return nil, ErrUnsupportedFeature.New("UNION")
	case sqlparser.Values:
		return valuesToValues(v)
	default:
		return nil, ErrUnsupportedSyntax.New(ir)
	}
}

func valuesToValues(v sqlparser.Values) (sql.Node, error) {
	exprTuples := make([][]sql.Expression, len(v))
	for i, vt := range v {
		exprs := make([]sql.Expression, len(vt))
		exprTuples[i] = exprs
		for j, e := range vt {
			expr, err := exprToExpression(e)
			if err != nil {
				return nil, err
			}

			exprs[j] = expr
		}
	}

	return plan.NewValues(exprTuples), nil
}

func tableExprsToTable(
	ctx *sql.Context,
	te sqlparser.TableExprs,
) (sql.Node, error) {
	if len(te) == 0 {
		return nil, ErrUnsupportedFeature.New("zero tables in FROM")
	}

	var nodes []sql.Node
	for _, t := range te {
		n, err := tableExprToTable(ctx, t)
		if err != nil {
			return nil, err
		}

		nodes = append(nodes, n)
	}

	if len(nodes) == 1 {
		return nodes[0], nil
	}

	join := plan.NewCrossJoin(nodes[0], nodes[1])
	for i := 2; i < len(nodes); i++ {
		join = plan.NewCrossJoin(join, nodes[i])
	}

	return join, nil
}

func tableExprToTable(
	ctx *sql.Context,
	te sqlparser.TableExpr,
) (sql.Node, error) {
	switch t := (te).(type) {
	default:
		return nil, ErrUnsupportedSyntax.New(te)
	case *sqlparser.AliasedTableExpr:
		switch e := t.Expr.(type) {
		case sqlparser.TableName:
			if !e.Qualifier.IsEmpty() {
				return nil, ErrUnsupportedFeature.New("qualified table names")
			}

			// The parser supplies the dual placeholder when the query
			// has no FROM clause.
			if strings.ToLower(e.Name.String()) == "dual" {
				return nil, ErrUnsupportedFeature.New("SELECT without FROM")
			}

			node := plan.NewUnresolvedTable(e.Name.String())
			if !t.As.IsEmpty() {
				return plan.NewTableAlias(t.As.String(), node), nil
			}

			return node, nil
		case *sqlparser.Subquery:
			return nil, ErrUnsupportedFeature.New("subqueries")
		default:
			return nil, ErrUnsupportedSyntax.New(te)
		}
	case *sqlparser.ParenTableExpr:
		return tableExprsToTable(ctx, t.Exprs)
	case *sqlparser.JoinTableExpr:
		if t.Join != sqlparser.JoinStr {
			return nil, ErrUnsupportedFeature.New(t.Join)
		}

		if len(t.Condition.Using) > 0 {
			return nil, ErrUnsupportedFeature.New("USING clause on join")
		}

		left, err := tableExprToTable(ctx, t.LeftExpr)
		if err != nil {
			return nil, err
		}

		right, err := tableExprToTable(ctx, t.RightExpr)
		if err != nil {
			return nil, err
		}

		// A join without an ON condition is a plain cross join.
		if t.Condition.On == nil {
			return plan.NewCrossJoin(left, right), nil
		}

		cond, err := exprToExpression(t.Condition.On)
		if err != nil {
			return nil, err
		}

		return plan.NewInnerJoin(left, right, cond), nil
	}
}

func whereToFilter(w *sqlparser.Where, child sql.Node) (*plan.Filter, error) {
	c, err := exprToExpression(w.Expr)
	if err != nil {
		return nil, err
	}

	return plan.NewFilter(c, child), nil
}

func whereToExpression(w *sqlparser.Where) (sql.Expression, error) {
	if w == nil {
		return nil, nil
	}
	return exprToExpression(w.Expr)
}

func orderByToSort(ob sqlparser.OrderBy, child sql.Node) (*plan.Sort, error) {
	var sortFields []plan.SortField
	for _, o := range ob {
		e, err := exprToExpression(o.Expr)
		if err != nil {
			return nil, err
		}

		var so plan.SortOrder
		switch o.Direction {
		default:
			return nil, ErrUnsupportedFeature.New(fmt.Sprintf("sort order %q", o.Direction))
		case sqlparser.AscScr:
			so = plan.Ascending
		case sqlparser.DescScr:
			so = plan.Descending
		}

		sortFields = append(sortFields, plan.SortField{Column: e, Order: so})
	}

	return plan.NewSort(sortFields, child), nil
}

func limitToLimit(limit sqlparser.Expr, child sql.Node) (*plan.Limit, error) {
	n, err := integerLiteral(limit, "LIMIT")
	if err != nil {
		return nil, err
	}

	return plan.NewLimit(n, child), nil
}

func offsetToOffset(offset sqlparser.Expr, child sql.Node) (*plan.Offset, error) {
	n, err := integerLiteral(offset, "OFFSET")
	if err != nil {
		return nil, err
	}

	return plan.NewOffset(n, child), nil
}

// integerLiteral evaluates a LIMIT or OFFSET argument. A negative literal
// parses fine; the analyzer rejects it during validation.
func integerLiteral(e sqlparser.Expr, clause string) (int64, error) {
	expr, err := exprToExpression(e)
	if err != nil {
		return 0, err
	}

	lit, ok := expr.(*expression.Literal)
	if !ok || lit.Value().Type != sql.IntegerType {
		return 0, ErrUnsupportedFeature.New(fmt.Sprintf("%s with a non-integer argument", clause))
	}

	return lit.Value().Int, nil
}

// isAggregate reports whether the expression contains a call to an
// aggregation function.
func isAggregate(e sql.Expression) bool {
	var agg bool
	expression.Inspect(e, func(e sql.Expression) bool {
		if fn, ok := e.(*expression.UnresolvedFunction); ok {
			if _, ok := aggregateNames[fn.Name()]; ok {
				agg = true
			}
		}

		return true
	})
	return agg
}

// selectToProjectOrGroupBy builds the projection of the select list. The
// grouped path is taken when there is a GROUP BY clause, when the select
// list aggregates, or when a HAVING clause is present: HAVING evaluates
// over group output even without GROUP BY, using the single implicit
// whole-table group.
func selectToProjectOrGroupBy(
	se sqlparser.SelectExprs,
	g sqlparser.GroupBy,
	having bool,
	child sql.Node,
) (sql.Node, error) {
	selectExprs, err := selectExprsToExpressions(se)
	if err != nil {
		return nil, err
	}

	isAgg := len(g) > 0 || having
	if !isAgg {
		for _, e := range selectExprs {
			if isAggregate(e) {
				isAgg = true
				break
			}
		}
	}

	if isAgg {
		groupingExprs, err := groupByToExpressions(g)
		if err != nil {
			return nil, err
		}

		return plan.NewGroupBy(selectExprs, groupingExprs, child), nil
	}

	return plan.NewProject(selectExprs, child), nil
}

func groupByToExpressions(g sqlparser.GroupBy) ([]sql.Expression, error) {
	es := make([]sql.Expression, len(g))
	for i, ve := range g {
		e, err := exprToExpression(ve)
		if err != nil {
			return nil, err
		}

		es[i] = e
	}

	return es, nil
}

func selectExprsToExpressions(se sqlparser.SelectExprs) ([]sql.Expression, error) {
	var exprs []sql.Expression
	for _, e := range se {
		pe, err := selectExprToExpression(e)
		if err != nil {
			return nil, err
		}

		exprs = append(exprs, pe)
	}

	return exprs, nil
}

func selectExprToExpression(se sqlparser.SelectExpr) (sql.Expression, error) {
	switch e := se.(type) {
	default:
		return nil, ErrUnsupportedSyntax.New(e)
	case *sqlparser.StarExpr:
		if e.TableName.IsEmpty() {
			return expression.NewStar(), nil
		}
		return expression.NewQualifiedStar(e.TableName.Name.String()), nil
	case *sqlparser.AliasedExpr:
		expr, err := exprToExpression(e.Expr)
		if err != nil {
			return nil, err
		}

		if e.As.String() == "" {
			return expr, nil
		}

		return expression.NewAlias(expr, e.As.String()), nil
	}
}

func exprToExpression(e sqlparser.Expr) (sql.Expression, error) {
	switch v := e.(type) {
	default:
		return nil, ErrUnsupportedSyntax.New(e)
	case *sqlparser.ComparisonExpr:
		return comparisonExprToExpression(v)
	case *sqlparser.IsExpr:
		return isExprToExpression(v)
	case *sqlparser.NotExpr:
		c, err := exprToExpression(v.Expr)
		if err != nil {
			return nil, err
		}

		return expression.NewNot(c), nil
	case *sqlparser.SQLVal:
		return convertVal(v)
	case sqlparser.BoolVal:
		return expression.NewLiteral(sql.NewBoolean(bool(v))), nil
	case *sqlparser.NullVal:
		return expression.NewLiteral(sql.Null), nil
	case *sqlparser.ColName:
		if !v.Qualifier.IsEmpty() {
			return expression.NewUnresolvedQualifiedColumn(
				v.Qualifier.Name.String(),
				v.Name.String(),
			), nil
		}
		return expression.NewUnresolvedColumn(v.Name.String()), nil
	case *sqlparser.FuncExpr:
		exprs, err := selectExprsToExpressions(v.Exprs)
		if err != nil {
			return nil, err
		}

		return expression.NewUnresolvedFunction(v.Name.Lowered(), v.Distinct, exprs...), nil
	case *sqlparser.SubstrExpr:
		// The parser only builds this node for the FROM ... FOR form;
		// the comma forms arrive as a regular substr FuncExpr. The
		// subject is either a column or a string literal.
		var subject sql.Expression
		var err error
		if v.Name != nil {
			subject, err = exprToExpression(v.Name)
		} else {
			subject, err = convertVal(v.StrVal)
		}
		if err != nil {
			return nil, err
		}

		from, err := exprToExpression(v.From)
		if err != nil {
			return nil, err
		}

		args := []sql.Expression{subject, from}
		if v.To != nil {
			to, err := exprToExpression(v.To)
			if err != nil {
				return nil, err
			}
			args = append(args, to)
		}

		return expression.NewUnresolvedFunction("substr", false, args...), nil
	case *sqlparser.ParenExpr:
		return exprToExpression(v.Expr)
	case *sqlparser.AndExpr:
		lhs, err := exprToExpression(v.Left)
		if err != nil {
			return nil, err
		}

		rhs, err := exprToExpression(v.Right)
		if err != nil {
			return nil, err
		}

		return expression.NewAnd(lhs, rhs), nil
	case *sqlparser.OrExpr:
		lhs, err := exprToExpression(v.Left)
		if err != nil {
			return nil, err
		}

		rhs, err := exprToExpression(v.Right)
		if err != nil {
			return nil, err
		}

		return expression.NewOr(lhs, rhs), nil
	case *sqlparser.RangeCond:
		return nil, ErrUnsupportedFeature.New("BETWEEN")
	case *sqlparser.UnaryExpr:
		return unaryExprToExpression(v)
	case *sqlparser.BinaryExpr:
		return binaryExprToExpression(v)
	}
}

func convertVal(v *sqlparser.SQLVal) (sql.Expression, error) {
	switch v.Type {
	case sqlparser.StrVal:
		return expression.NewLiteral(sql.NewString(string(v.Val))), nil
	case sqlparser.IntVal:
		val, err := strconv.ParseInt(string(v.Val), 10, 64)
		if err != nil {
			return nil, err
		}
		return expression.NewLiteral(sql.NewInteger(val)), nil
	case sqlparser.FloatVal:
		val, err := strconv.ParseFloat(string(v.Val), 64)
		if err != nil {
			return nil, err
		}
		return expression.NewLiteral(sql.NewFloat(val)), nil
	}

	return nil, ErrInvalidSQLValType.New(v.Type)
}

func isExprToExpression(c *sqlparser.IsExpr) (sql.Expression, error) {
	e, err := exprToExpression(c.Expr)
	if err != nil {
		return nil, err
	}

	switch c.Operator {
	case sqlparser.IsNullStr:
		return expression.NewIsNull(e), nil
	case sqlparser.IsNotNullStr:
		return expression.NewNot(expression.NewIsNull(e)), nil
	default:
		return nil, ErrUnsupportedSyntax.New(c)
	}
}

func comparisonExprToExpression(c *sqlparser.ComparisonExpr) (sql.Expression, error) {
	left, err := exprToExpression(c.Left)
	if err != nil {
		return nil, err
	}

	right, err := exprToExpression(c.Right)
	if err != nil {
		return nil, err
	}

	switch c.Operator {
	default:
		return nil, ErrUnsupportedFeature.New(c.Operator)
	case sqlparser.EqualStr:
		return expression.NewEquals(left, right), nil
	case sqlparser.NotEqualStr:
		return expression.NewNotEquals(left, right), nil
	case sqlparser.LessThanStr:
		return expression.NewLessThan(left, right), nil
	case sqlparser.LessEqualStr:
		return expression.NewLessThanOrEqual(left, right), nil
	case sqlparser.GreaterThanStr:
		return expression.NewGreaterThan(left, right), nil
	case sqlparser.GreaterEqualStr:
		return expression.NewGreaterThanOrEqual(left, right), nil
	}
}

func unaryExprToExpression(e *sqlparser.UnaryExpr) (sql.Expression, error) {
	child, err := exprToExpression(e.Expr)
	if err != nil {
		return nil, err
	}

	switch e.Operator {
	case sqlparser.UPlusStr:
		return child, nil
	case sqlparser.UMinusStr:
		return expression.NewUnaryMinus(child), nil
	default:
		return nil, ErrUnsupportedFeature.New(e.Operator)
	}
}

func binaryExprToExpression(be *sqlparser.BinaryExpr) (sql.Expression, error) {
	switch be.Operator {
	case sqlparser.PlusStr,
		sqlparser.MinusStr,
		sqlparser.MultStr,
		sqlparser.DivStr:

		l, err := exprToExpression(be.Left)
		if err != nil {
			return nil, err
		}

		r, err := exprToExpression(be.Right)
		if err != nil {
			return nil, err
		}

		return expression.NewArithmetic(l, r, be.Operator), nil

	default:
		return nil, ErrUnsupportedFeature.New(be.Operator)
	}
}

func removeComments(s string) string {
	r := bufio.NewReader(strings.NewReader(s))
	var result []rune
	for {
		ru, _, err := r.ReadRune()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue
		}
		switch ru {
		case '\'', '"':
			result = append(result, ru)
			result = append(result, readQuotedRunes(r, ru == '\'')...)
		case '-':
			peeked, err := r.Peek(2)
			if err == nil &&
				len(peeked) == 2 &&
				rune(peeked[0]) == '-' &&
				rune(peeked[1]) == ' ' {
				discardUntilEOL(r)
			} else {
				result = append(result, ru)
			}
		case '/':
			peeked, err := r.Peek(1)
			if err == nil &&
				len(peeked) == 1 &&
				rune(peeked[0]) == '*' {
				// consume the peeked star
				_, _, _ = r.ReadRune()
				discardMultilineComment(r)
			} else {
				result = append(result, ru)
			}
		default:
			result = append(result, ru)
		}
	}
	return string(result)
}

func discardUntilEOL(r *bufio.Reader) {
	for {
		ru, _, err := r.ReadRune()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue
		}
		if ru == '\n' {
			break
		}
	}
}

func discardMultilineComment(r *bufio.Reader) {
	for {
		ru, _, err := r.ReadRune()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue
		}
		if ru == '*' {
			peeked, err := r.Peek(1)
			if err == nil && len(peeked) == 1 && rune(peeked[0]) == '/' {
				// consume the peeked slash
				_, _, _ = r.ReadRune()
				break
			}
		}
	}
}

// readQuotedRunes reads up to and including the closing quote, so comment
// markers inside string literals are not stripped.
func readQuotedRunes(r *bufio.Reader, single bool) []rune {
	var result []rune
	var escaped bool
	for {
		ru, _, err := r.ReadRune()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue
		}
		result = append(result, ru)
		if (!single && ru == '"' && !escaped) ||
			(single && ru == '\'' && !escaped) {
			break
		}
		escaped = false
		if ru == '\\' {
			escaped = true
		}
	}
	return result
}
