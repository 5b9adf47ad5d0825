package plan

import (
	"fmt"
	"strings"

	errors "gopkg.in/src-d/go-errors.v1"

	"github.com/delimsql/delimsql/sql"
)

// ErrCreateTableNotSupported is returned when the database can't create
// tables.
var ErrCreateTableNotSupported = errors.NewKind("tables cannot be created on database %s")

// CreateTable is a node describing the creation of an empty table. The
// new table starts clean: it is not marked dirty until a mutation
// touches it.
type CreateTable struct {
	db     sql.Database
	name   string
	schema sql.Schema
	opts   sql.CreateTableOptions
}

// NewCreateTable creates a new CreateTable node.
func NewCreateTable(db sql.Database, name string, schema sql.Schema, opts sql.CreateTableOptions) *CreateTable {
	return &CreateTable{db: db, name: name, schema: schema, opts: opts}
}

// Database returns the database the table will be created on.
func (c *CreateTable) Database() sql.Database {
	return c.db
}

// Name returns the name of the table to create.
func (c *CreateTable) Name() string {
	return c.name
}

// WithDatabase returns a copy of the node targeting the given database.
func (c *CreateTable) WithDatabase(db sql.Database) *CreateTable {
	return NewCreateTable(db, c.name, c.schema, c.opts)
}

// Resolved implements the Resolvable interface.
func (c *CreateTable) Resolved() bool {
	_, unresolved := c.db.(sql.UnresolvedDatabase)
	return !unresolved
}

// Children implements the Node interface.
func (c *CreateTable) Children() []sql.Node {
	return nil
}

// Schema implements the Node interface.
func (c *CreateTable) Schema() sql.Schema {
	return nil
}

// Execute registers the new table and returns zero affected rows.
func (c *CreateTable) Execute(ctx *sql.Context) (int, error) {
	creator, ok := c.db.(sql.TableCreator)
	if !ok {
		return 0, ErrCreateTableNotSupported.New(c.db.Name())
	}

	if err := creator.CreateTable(c.name, c.schema, c.opts); err != nil {
		return 0, err
	}

	return 0, nil
}

// RowIter implements the Node interface.
func (c *CreateTable) RowIter(ctx *sql.Context) (sql.RowIter, error) {
	updated, err := c.Execute(ctx)
	if err != nil {
		return nil, err
	}

	return sql.RowsToRowIter(sql.NewRow(sql.NewInteger(int64(updated)))), nil
}

// TransformUp implements the Transformable interface.
func (c *CreateTable) TransformUp(f sql.TransformNodeFunc) (sql.Node, error) {
	return f(NewCreateTable(c.db, c.name, c.schema, c.opts))
}

// TransformExpressionsUp implements the Transformable interface.
func (c *CreateTable) TransformExpressionsUp(f sql.TransformExprFunc) (sql.Node, error) {
	return c, nil
}

func (c *CreateTable) String() string {
	var cols = make([]string, len(c.schema))
	for i, col := range c.schema {
		cols[i] = fmt.Sprintf("%s %s", col.Name, col.Type.Name())
	}
	return fmt.Sprintf("CreateTable(%s, [%s])", c.name, strings.Join(cols, ", "))
}
