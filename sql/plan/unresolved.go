package plan

import (
	"fmt"

	errors "gopkg.in/src-d/go-errors.v1"

	"github.com/delimsql/delimsql/sql"
)

// ErrUnresolvedTable is returned when a table is still unresolved at
// execution time.
var ErrUnresolvedTable = errors.NewKind("unresolved table %s")

// UnresolvedTable is a table that has not been resolved yet but whose
// name is known.
type UnresolvedTable struct {
	name string
}

// NewUnresolvedTable creates a new instance of UnresolvedTable.
func NewUnresolvedTable(name string) *UnresolvedTable {
	return &UnresolvedTable{name}
}

// Name implements the Nameable interface.
func (t *UnresolvedTable) Name() string {
	return t.name
}

// Resolved implements the Resolvable interface.
func (*UnresolvedTable) Resolved() bool {
	return false
}

// Children implements the Node interface.
func (*UnresolvedTable) Children() []sql.Node {
	return nil
}

// Schema implements the Node interface.
func (*UnresolvedTable) Schema() sql.Schema {
	return nil
}

// RowIter implements the Node interface.
func (t *UnresolvedTable) RowIter(ctx *sql.Context) (sql.RowIter, error) {
	return nil, ErrUnresolvedTable.New(t.name)
}

// TransformUp implements the Transformable interface.
func (t *UnresolvedTable) TransformUp(f sql.TransformNodeFunc) (sql.Node, error) {
	return f(NewUnresolvedTable(t.name))
}

// TransformExpressionsUp implements the Transformable interface.
func (t *UnresolvedTable) TransformExpressionsUp(f sql.TransformExprFunc) (sql.Node, error) {
	return t, nil
}

func (t UnresolvedTable) String() string {
	return fmt.Sprintf("UnresolvedTable(%s)", t.name)
}
