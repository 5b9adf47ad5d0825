package filetable

import (
	"sort"

	"github.com/delimsql/delimsql/internal/similartext"
	"github.com/delimsql/delimsql/sql"
)

var (
	_ sql.Database     = (*Database)(nil)
	_ sql.TableCreator = (*Database)(nil)
)

// Database is the collection of tables loaded into one session.
type Database struct {
	name   string
	tables map[string]*Table
}

// NewDatabase creates a new database with the given name.
func NewDatabase(name string) *Database {
	return &Database{
		name:   name,
		tables: map[string]*Table{},
	}
}

// Name implements the Nameable interface.
func (d *Database) Name() string {
	return d.name
}

// Tables implements the sql.Database interface.
func (d *Database) Tables() map[string]sql.Table {
	tables := make(map[string]sql.Table, len(d.tables))
	for name, t := range d.tables {
		tables[name] = t
	}
	return tables
}

// AddTable adds a new table to the database. A table with the same name
// must not already exist.
func (d *Database) AddTable(t *Table) error {
	if _, ok := d.tables[t.Name()]; ok {
		return sql.ErrTableAlreadyExists.New(t.Name())
	}

	d.tables[t.Name()] = t
	return nil
}

// Table returns the table with the given name. Unknown names fail with
// a suggestion of the closest existing table.
func (d *Database) Table(name string) (*Table, error) {
	if t, ok := d.tables[name]; ok {
		return t, nil
	}

	similar := similartext.FindFromMap(d.tables, name)
	return nil, sql.ErrTableNotFound.New(name + similar)
}

// RemoveTable drops the table with the given name.
func (d *Database) RemoveTable(name string) error {
	if _, ok := d.tables[name]; !ok {
		return sql.ErrTableNotFound.New(name)
	}

	delete(d.tables, name)
	return nil
}

// TableNames returns the names of all tables, sorted.
func (d *Database) TableNames() []string {
	names := make([]string, 0, len(d.tables))
	for name := range d.tables {
		names = append(names, name)
	}

	sort.Strings(names)
	return names
}

// DirtyTables returns the tables modified since load or last save,
// sorted by name.
func (d *Database) DirtyTables() []*Table {
	var dirty []*Table
	for _, name := range d.TableNames() {
		if t := d.tables[name]; t.IsDirty() {
			dirty = append(dirty, t)
		}
	}
	return dirty
}

// CreateTable implements the sql.TableCreator interface. The new table
// is empty and clean; its origin records the declared location and
// delimiter so a later save knows where to write it.
func (d *Database) CreateTable(name string, schema sql.Schema, opts sql.CreateTableOptions) error {
	if _, ok := d.tables[name]; ok {
		return sql.ErrTableAlreadyExists.New(name)
	}

	t, err := NewTable(name, schema)
	if err != nil {
		return err
	}

	delimiter := opts.Delimiter
	if delimiter == 0 {
		delimiter = ','
	}

	t.SetOrigin(Origin{
		Path:      opts.Location,
		Delimiter: delimiter,
		Header:    true,
	})

	return d.AddTable(t)
}
