package sql

// Column is the definition of one column of a table or of the output of a
// node.
type Column struct {
	// Name is the name of the column.
	Name string
	// Source is the name of the table the column comes from, or empty for
	// derived columns such as aliases and aggregation results.
	Source string
	// Type is the advisory declared type of the column, if the table was
	// created with an explicit schema. It is nil for columns whose values
	// are typed per cell.
	Type ColumnType
}

// Schema is the definition of the output of a node or the columns of a
// table.
type Schema []Column

// IndexOf returns the position of the column with the given name, or -1 if
// there is none. An empty source matches columns from any source;
// otherwise the column source must match exactly.
func (s Schema) IndexOf(name, source string) int {
	for i, c := range s {
		if c.Name == name && (source == "" || c.Source == source) {
			return i
		}
	}
	return -1
}

// Contains reports whether the schema has a column with the given name and
// source.
func (s Schema) Contains(name, source string) bool {
	return s.IndexOf(name, source) != -1
}

// Sources returns the source of every column matching the given name, in
// schema order. More than one result means an unqualified reference to the
// name is ambiguous.
func (s Schema) Sources(name string) []string {
	var sources []string
	for _, c := range s {
		if c.Name == name {
			sources = append(sources, c.Source)
		}
	}
	return sources
}

// ColumnNames returns the names of all columns in order.
func (s Schema) ColumnNames() []string {
	names := make([]string, len(s))
	for i, c := range s {
		names[i] = c.Name
	}
	return names
}
