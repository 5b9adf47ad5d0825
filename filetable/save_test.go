package filetable

import (
	"io/ioutil"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/delimsql/delimsql/sql"
)

func TestSaveRoundTrip(t *testing.T) {
	require := require.New(t)

	dir := testDir(t)
	path := writeTestFile(t, dir, "people.csv", "id,name\n1,alice\n2,bob\n")

	table, err := LoadFile("people", path, LoadOptions{})
	require.NoError(err)

	require.NoError(table.AppendRow(sql.NewRow(sql.NewInteger(3), sql.NewString("carol"))))
	require.NoError(table.SetRow(1, sql.NewRow(sql.NewInteger(2), sql.NewString("bobby"))))
	table.MarkDirty()

	require.NoError(Save(table))
	require.False(table.IsDirty())

	content, err := ioutil.ReadFile(path)
	require.NoError(err)
	require.Equal("id,name\n1,alice\n2,bobby\n3,carol\n", string(content))

	reloaded, err := LoadFile("people", path, LoadOptions{})
	require.NoError(err)
	require.Equal(tableRows(t, table), tableRows(t, reloaded))
}

func TestSaveKeepsDelimiter(t *testing.T) {
	require := require.New(t)

	dir := testDir(t)
	path := writeTestFile(t, dir, "scores", "name:score\nalice:10\n")

	table, err := LoadFile("scores", path, LoadOptions{Separator: ':'})
	require.NoError(err)

	require.NoError(table.AppendRow(sql.NewRow(sql.NewString("bob"), sql.NewInteger(20))))
	require.NoError(Save(table))

	content, err := ioutil.ReadFile(path)
	require.NoError(err)
	require.Equal("name:score\nalice:10\nbob:20\n", string(content))
}

func TestSaveHeaderlessStaysHeaderless(t *testing.T) {
	require := require.New(t)

	dir := testDir(t)
	path := writeTestFile(t, dir, "ids.csv", "1,alice\n2,bob\n")

	table, err := LoadFile("ids", path, LoadOptions{})
	require.NoError(err)
	require.False(table.Origin().Header)

	require.NoError(table.AppendRow(sql.NewRow(sql.NewInteger(3), sql.NewString("carol"))))
	require.NoError(Save(table))

	content, err := ioutil.ReadFile(path)
	require.NoError(err)
	require.Equal("1,alice\n2,bob\n3,carol\n", string(content))
}

func TestSaveNullAsEmptyField(t *testing.T) {
	require := require.New(t)

	dir := testDir(t)
	path := writeTestFile(t, dir, "people.csv", "id,name\n1,alice\n")

	table, err := LoadFile("people", path, LoadOptions{})
	require.NoError(err)

	require.NoError(table.AppendRow(sql.NewRow(sql.NewInteger(2), sql.Null)))
	require.NoError(Save(table))

	content, err := ioutil.ReadFile(path)
	require.NoError(err)
	require.Equal("id,name\n1,alice\n2,\n", string(content))

	reloaded, err := LoadFile("people", path, LoadOptions{})
	require.NoError(err)
	require.Equal(sql.Null, tableRows(t, reloaded)[1][1])
}

func TestSaveQuotesFieldsHoldingTheDelimiter(t *testing.T) {
	require := require.New(t)

	dir := testDir(t)
	path := writeTestFile(t, dir, "notes.csv", "id,note\n1,plain\n")

	table, err := LoadFile("notes", path, LoadOptions{})
	require.NoError(err)

	require.NoError(table.AppendRow(sql.NewRow(sql.NewInteger(2), sql.NewString("hello, world"))))
	require.NoError(Save(table))

	content, err := ioutil.ReadFile(path)
	require.NoError(err)
	require.Equal("id,note\n1,plain\n2,\"hello, world\"\n", string(content))
}

func TestSaveWithoutOrigin(t *testing.T) {
	require := require.New(t)

	table, err := NewTable("scratch", sql.Schema{{Name: "a"}})
	require.NoError(err)

	err = Save(table)
	require.Error(err)
	require.True(ErrNoOrigin.Is(err))
}

func TestSaveDirtyOnlyRewritesDirtyTables(t *testing.T) {
	require := require.New(t)

	dir := testDir(t)
	dirtyPath := writeTestFile(t, dir, "dirty.csv", "id\n1\n")
	cleanPath := writeTestFile(t, dir, "clean.csv", "id\n1\n")

	db := NewDatabase("files")
	for name, path := range map[string]string{"dirty": dirtyPath, "clean": cleanPath} {
		table, err := LoadFile(name, path, LoadOptions{})
		require.NoError(err)
		require.NoError(db.AddTable(table))
	}

	dirty, err := db.Table("dirty")
	require.NoError(err)
	require.NoError(dirty.AppendRow(sql.NewRow(sql.NewInteger(2))))
	dirty.MarkDirty()

	// A sentinel shows whether the clean file gets rewritten.
	writeTestFile(t, dir, "clean.csv", "sentinel\n")

	saved, err := SaveDirty(db)
	require.NoError(err)
	require.Equal([]string{"dirty"}, saved)

	content, err := ioutil.ReadFile(cleanPath)
	require.NoError(err)
	require.Equal("sentinel\n", string(content))

	content, err = ioutil.ReadFile(dirtyPath)
	require.NoError(err)
	require.Equal("id\n1\n2\n", string(content))
	require.False(dirty.IsDirty())
}

func TestSaveCreatedTable(t *testing.T) {
	require := require.New(t)

	dir := testDir(t)
	location := dir + "/users.psv"

	db := NewDatabase("files")
	err := db.CreateTable("users", sql.Schema{
		{Name: "id", Type: sql.Integer},
		{Name: "name", Type: sql.Text},
	}, sql.CreateTableOptions{Location: location, Delimiter: '|'})
	require.NoError(err)

	table, err := db.Table("users")
	require.NoError(err)
	require.NoError(table.AppendRow(sql.NewRow(sql.NewInteger(1), sql.NewString("alice"))))
	table.MarkDirty()

	saved, err := SaveDirty(db)
	require.NoError(err)
	require.Equal([]string{"users"}, saved)

	content, err := ioutil.ReadFile(location)
	require.NoError(err)
	require.Equal("id|name\n1|alice\n", string(content))
}
