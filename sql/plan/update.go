package plan

import (
	"fmt"
	"io"
	"strings"

	errors "gopkg.in/src-d/go-errors.v1"

	"github.com/delimsql/delimsql/sql"
	"github.com/delimsql/delimsql/sql/expression"
)

// ErrUpdateNotSupported is returned when the table can't be updated.
var ErrUpdateNotSupported = errors.NewKind("table %s does not support updates")

// ErrUpdateTarget is returned when a SET target does not resolve to a
// column of the updated table.
var ErrUpdateTarget = errors.NewKind("cannot update %s, it is not a column of the table")

// UpdateExpr is one SET assignment of an UPDATE statement.
type UpdateExpr struct {
	// Column is the assignment target, resolved to a field of the table.
	Column sql.Expression
	// Value is the expression the column is set to.
	Value sql.Expression
}

// Update is a node describing the update of the rows of a table that
// match the condition. Assignments are applied left to right, and later
// assignments of the same statement observe earlier ones.
type Update struct {
	UnaryNode
	UpdateExprs []UpdateExpr
	// Where is the condition selecting the rows to update. Nil updates
	// every row.
	Where sql.Expression
}

// NewUpdate creates a new Update node.
func NewUpdate(child sql.Node, exprs []UpdateExpr, where sql.Expression) *Update {
	return &Update{
		UnaryNode:   UnaryNode{Child: child},
		UpdateExprs: exprs,
		Where:       where,
	}
}

// Resolved implements the Resolvable interface.
func (u *Update) Resolved() bool {
	if !u.Child.Resolved() {
		return false
	}

	for _, ue := range u.UpdateExprs {
		if !ue.Column.Resolved() || !ue.Value.Resolved() {
			return false
		}
	}

	return u.Where == nil || u.Where.Resolved()
}

// Schema implements the Node interface.
func (u *Update) Schema() sql.Schema {
	return sql.Schema{{Name: "updated", Type: sql.Integer}}
}

// Execute updates the matching rows and returns how many rows actually
// changed. A row rewritten with its current values does not count.
func (u *Update) Execute(ctx *sql.Context) (int, error) {
	rt, err := resolvedTable(u.Child)
	if err != nil {
		return 0, err
	}

	updater, ok := rt.Table.(sql.Updater)
	if !ok {
		return 0, ErrUpdateNotSupported.New(rt.Name())
	}

	targets := make([]int, len(u.UpdateExprs))
	for i, ue := range u.UpdateExprs {
		gf, ok := ue.Column.(*expression.GetField)
		if !ok {
			return 0, ErrUpdateTarget.New(ue.Column)
		}
		targets[i] = gf.Index()
	}

	indices, rows, err := u.matchRows(ctx, rt)
	if err != nil {
		return 0, err
	}

	affected := 0
	for i, rowIdx := range indices {
		working := rows[i].Copy()
		for j, ue := range u.UpdateExprs {
			v, err := ue.Value.Eval(ctx, working)
			if err != nil {
				return affected, err
			}
			working[targets[j]] = v
		}

		if !rowChanged(rows[i], working) {
			continue
		}

		if err := updater.SetRow(rowIdx, working); err != nil {
			return affected, err
		}
		affected++
	}

	if affected > 0 {
		markDirty(rt.Table)
	}

	return affected, nil
}

// matchRows snapshots the positions and values of the rows selected by
// the condition before any of them is rewritten.
func (u *Update) matchRows(ctx *sql.Context, rt *ResolvedTable) ([]int, []sql.Row, error) {
	iter, err := rt.Table.RowIter(ctx)
	if err != nil {
		return nil, nil, err
	}

	var indices []int
	var rows []sql.Row
	for idx := 0; ; idx++ {
		row, err := iter.Next()
		if err == io.EOF {
			break
		}

		if err != nil {
			_ = iter.Close()
			return nil, nil, err
		}

		match := true
		if u.Where != nil {
			match, err = conditionIsTrue(ctx, u.Where, row)
			if err != nil {
				_ = iter.Close()
				return nil, nil, err
			}
		}

		if match {
			indices = append(indices, idx)
			rows = append(rows, row)
		}
	}

	return indices, rows, iter.Close()
}

// rowChanged compares two rows structurally: writing the float 1.0 over
// the integer 1 counts as a change.
func rowChanged(old, updated sql.Row) bool {
	for i := range old {
		if old[i] != updated[i] {
			return true
		}
	}
	return false
}

// RowIter implements the Node interface.
func (u *Update) RowIter(ctx *sql.Context) (sql.RowIter, error) {
	updated, err := u.Execute(ctx)
	if err != nil {
		return nil, err
	}

	return sql.RowsToRowIter(sql.NewRow(sql.NewInteger(int64(updated)))), nil
}

// TransformUp implements the Transformable interface.
func (u *Update) TransformUp(f sql.TransformNodeFunc) (sql.Node, error) {
	child, err := u.Child.TransformUp(f)
	if err != nil {
		return nil, err
	}
	return f(NewUpdate(child, u.UpdateExprs, u.Where))
}

// TransformExpressionsUp implements the Transformable interface.
func (u *Update) TransformExpressionsUp(f sql.TransformExprFunc) (sql.Node, error) {
	var exprs = make([]UpdateExpr, len(u.UpdateExprs))
	for i, ue := range u.UpdateExprs {
		col, err := ue.Column.TransformUp(f)
		if err != nil {
			return nil, err
		}

		val, err := ue.Value.TransformUp(f)
		if err != nil {
			return nil, err
		}

		exprs[i] = UpdateExpr{Column: col, Value: val}
	}

	where := u.Where
	if where != nil {
		var err error
		where, err = where.TransformUp(f)
		if err != nil {
			return nil, err
		}
	}

	child, err := u.Child.TransformExpressionsUp(f)
	if err != nil {
		return nil, err
	}

	return NewUpdate(child, exprs, where), nil
}

// Expressions implements the Expressioner interface.
func (u *Update) Expressions() []sql.Expression {
	var exprs []sql.Expression
	for _, ue := range u.UpdateExprs {
		exprs = append(exprs, ue.Column, ue.Value)
	}
	if u.Where != nil {
		exprs = append(exprs, u.Where)
	}
	return exprs
}

// TransformExpressions implements the Expressioner interface.
func (u *Update) TransformExpressions(f sql.TransformExprFunc) (sql.Node, error) {
	var exprs = make([]UpdateExpr, len(u.UpdateExprs))
	for i, ue := range u.UpdateExprs {
		col, err := ue.Column.TransformUp(f)
		if err != nil {
			return nil, err
		}

		val, err := ue.Value.TransformUp(f)
		if err != nil {
			return nil, err
		}

		exprs[i] = UpdateExpr{Column: col, Value: val}
	}

	where := u.Where
	if where != nil {
		var err error
		where, err = where.TransformUp(f)
		if err != nil {
			return nil, err
		}
	}

	return NewUpdate(u.Child, exprs, where), nil
}

func (u *Update) String() string {
	pr := sql.NewTreePrinter()
	var sets = make([]string, len(u.UpdateExprs))
	for i, ue := range u.UpdateExprs {
		sets[i] = fmt.Sprintf("%s = %s", ue.Column, ue.Value)
	}

	node := fmt.Sprintf("Update(%s)", strings.Join(sets, ", "))
	if u.Where != nil {
		node += fmt.Sprintf(" where %s", u.Where)
	}

	_ = pr.WriteNode("%s", node)
	_ = pr.WriteChildren(u.Child.String())
	return pr.String()
}
