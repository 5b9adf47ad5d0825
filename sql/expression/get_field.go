package expression

import (
	"fmt"

	"gopkg.in/src-d/go-errors.v1"

	"github.com/delimsql/delimsql/sql"
)

// ErrIndexOutOfBounds is returned when the field index is out of the row
// bounds.
var ErrIndexOutOfBounds = errors.NewKind("unable to find field with index %d in row of %d columns")

// GetField is an expression to get the value of a field of a row.
type GetField struct {
	fieldIndex int
	table      string
	name       string
}

// NewGetField creates a GetField expression for an unqualified field.
func NewGetField(index int, name string) *GetField {
	return NewGetFieldWithTable(index, "", name)
}

// NewGetFieldWithTable creates a GetField expression for a field qualified
// by its table.
func NewGetFieldWithTable(index int, table, name string) *GetField {
	return &GetField{
		fieldIndex: index,
		table:      table,
		name:       name,
	}
}

// Index returns the index of the field in the row.
func (p *GetField) Index() int { return p.fieldIndex }

// Name returns the name of the field.
func (p *GetField) Name() string { return p.name }

// Table returns the name of the table the field belongs to, if any.
func (p *GetField) Table() string { return p.table }

// Resolved implements the Expression interface.
func (p *GetField) Resolved() bool { return true }

// Children implements the Expression interface.
func (p *GetField) Children() []sql.Expression { return nil }

// Eval implements the Expression interface.
func (p *GetField) Eval(ctx *sql.Context, row sql.Row) (sql.Value, error) {
	if p.fieldIndex < 0 || p.fieldIndex >= len(row) {
		return sql.Null, ErrIndexOutOfBounds.New(p.fieldIndex, len(row))
	}
	return row[p.fieldIndex], nil
}

// TransformUp implements the Expression interface.
func (p *GetField) TransformUp(fn sql.TransformExprFunc) (sql.Expression, error) {
	nc := *p
	return fn(&nc)
}

// String implements the fmt.Stringer interface.
func (p *GetField) String() string {
	if p.table == "" {
		return p.name
	}
	return fmt.Sprintf("%s.%s", p.table, p.name)
}
