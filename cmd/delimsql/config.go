package main

import (
	"io/ioutil"
	"strings"

	errors "gopkg.in/src-d/go-errors.v1"
	yaml "gopkg.in/yaml.v2"
)

// defaultConfigFile is read when no --config flag is given and the file
// exists in the working directory.
const defaultConfigFile = ".delimsql.yml"

var (
	// ErrInvalidConfig is returned when a configuration file cannot be
	// parsed.
	ErrInvalidConfig = errors.NewKind("invalid configuration file %s")

	// ErrInvalidTableDef is returned when a --tabledef value is not of
	// the form table:col1,col2.
	ErrInvalidTableDef = errors.NewKind("invalid table definition %q, want table:col1,col2")
)

// Config mirrors the YAML configuration file. Every field is optional;
// command line flags override anything set here.
type Config struct {
	// Tables maps a table name to its column names, overriding file
	// headers the way --tabledef does.
	Tables map[string][]string `yaml:"tables"`
	// Separator is the field separator for delimited files, \t accepted
	// for tab.
	Separator string `yaml:"separator"`
	// Write controls whether changes are written back to files.
	Write *bool `yaml:"write"`
	// Verbose enables debug logging.
	Verbose bool `yaml:"verbose"`
}

// LoadConfig reads the YAML configuration file at path.
func LoadConfig(path string) (*Config, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, ErrInvalidConfig.Wrap(err, path)
	}

	return &cfg, nil
}

// parseTableDef parses a table:col1,col2 definition into the table name
// and its column names.
func parseTableDef(def string) (string, []string, error) {
	i := strings.IndexByte(def, ':')
	if i <= 0 || i == len(def)-1 {
		return "", nil, ErrInvalidTableDef.New(def)
	}

	columns := strings.Split(def[i+1:], ",")
	for j, col := range columns {
		columns[j] = strings.TrimSpace(col)
		if columns[j] == "" {
			return "", nil, ErrInvalidTableDef.New(def)
		}
	}

	return def[:i], columns, nil
}
