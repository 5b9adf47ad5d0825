package main

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseTableDef(t *testing.T) {
	testCases := []struct {
		def     string
		name    string
		columns []string
		err     bool
	}{
		{"people:id,name,age", "people", []string{"id", "name", "age"}, false},
		{"t:a", "t", []string{"a"}, false},
		{"people:id, name", "people", []string{"id", "name"}, false},
		{"people", "", nil, true},
		{":id,name", "", nil, true},
		{"people:", "", nil, true},
		{"people:id,,name", "", nil, true},
	}

	for _, tt := range testCases {
		t.Run(tt.def, func(t *testing.T) {
			require := require.New(t)

			name, columns, err := parseTableDef(tt.def)
			if tt.err {
				require.Error(err)
				require.True(ErrInvalidTableDef.Is(err))
				return
			}

			require.NoError(err)
			require.Equal(tt.name, name)
			require.Equal(tt.columns, columns)
		})
	}
}

func TestLoadConfig(t *testing.T) {
	require := require.New(t)

	dir, err := ioutil.TempDir("", "delimsql")
	require.NoError(err)
	t.Cleanup(func() {
		_ = os.RemoveAll(dir)
	})

	path := filepath.Join(dir, "config.yml")
	content := `separator: "\t"
verbose: true
write: false
tables:
  people:
    - id
    - name
`
	require.NoError(ioutil.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(err)
	require.Equal("\t", cfg.Separator)
	require.True(cfg.Verbose)
	require.NotNil(cfg.Write)
	require.False(*cfg.Write)
	require.Equal([]string{"id", "name"}, cfg.Tables["people"])
}

func TestLoadConfigMissing(t *testing.T) {
	_, err := LoadConfig("does-not-exist.yml")
	require.Error(t, err)
}

func TestLoadConfigInvalid(t *testing.T) {
	require := require.New(t)

	dir, err := ioutil.TempDir("", "delimsql")
	require.NoError(err)
	t.Cleanup(func() {
		_ = os.RemoveAll(dir)
	})

	path := filepath.Join(dir, "config.yml")
	require.NoError(ioutil.WriteFile(path, []byte("tables: ["), 0644))

	_, err = LoadConfig(path)
	require.Error(err)
	require.True(ErrInvalidConfig.Is(err))
}
