package sql

import (
	"strings"

	"github.com/delimsql/delimsql/internal/similartext"
)

// Catalog holds the databases and the functions available to the engine.
type Catalog struct {
	FunctionRegistry
	dbs Databases
}

// NewCatalog returns a new empty Catalog.
func NewCatalog() *Catalog {
	return &Catalog{
		FunctionRegistry: NewFunctionRegistry(),
	}
}

// AllDatabases returns all databases in the catalog.
func (c *Catalog) AllDatabases() Databases {
	return c.dbs
}

// AddDatabase adds a new database to the catalog.
func (c *Catalog) AddDatabase(db Database) {
	c.dbs = append(c.dbs, db)
}

// Database returns the database with the given name.
func (c *Catalog) Database(name string) (Database, error) {
	return c.dbs.Database(name)
}

// Table returns the table with the given name in the named database.
func (c *Catalog) Table(dbName, tableName string) (Table, error) {
	return c.dbs.Table(dbName, tableName)
}

// Databases is a collection of databases.
type Databases []Database

// Database returns the database with the given name, case-insensitively.
func (d Databases) Database(name string) (Database, error) {
	if len(d) == 0 {
		return nil, ErrDatabaseNotFound.New(name)
	}

	name = strings.ToLower(name)
	var names []string
	for _, db := range d {
		if strings.ToLower(db.Name()) == name {
			return db, nil
		}
		names = append(names, db.Name())
	}

	return nil, ErrDatabaseNotFound.New(name + similartext.Find(names, name))
}

// Table returns the table with the given name in the database with the
// given name.
func (d Databases) Table(dbName, tableName string) (Table, error) {
	db, err := d.Database(dbName)
	if err != nil {
		return nil, err
	}

	tables := db.Tables()
	if t, ok := tables[tableName]; ok {
		return t, nil
	}

	return nil, ErrTableNotFound.New(tableName + similartext.FindFromMap(tables, tableName))
}
