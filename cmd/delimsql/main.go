// delimsql runs SQL against delimited text files. Files named on the
// command line load as in-memory tables, the statements given with -s
// run against them in order, and tables modified by those statements are
// written back to their files.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/delimsql/delimsql"
	"github.com/delimsql/delimsql/filetable"
	"github.com/delimsql/delimsql/sql"
)

const version = "0.1.0"

// stringList collects the values of a repeatable flag.
type stringList []string

func (l *stringList) String() string {
	return strings.Join(*l, ",")
}

func (l *stringList) Set(value string) error {
	*l = append(*l, value)
	return nil
}

// options is the parsed command line. The set map records which flags
// were given explicitly, so they can override configuration file values.
type options struct {
	statements  stringList
	tabledefs   stringList
	separator   string
	configPath  string
	verbose     bool
	dryRun      bool
	interactive bool
	showVersion bool
	files       []string
	set         map[string]bool
}

func (o *options) isSet(names ...string) bool {
	for _, name := range names {
		if o.set[name] {
			return true
		}
	}
	return false
}

func parseArgs(name string, args []string, errw io.Writer) (*options, error) {
	opts := &options{set: map[string]bool{}}

	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(errw)
	fs.Usage = func() {
		fmt.Fprintf(errw, "usage: %s [flags] [-s statement]... [table=]file...\n", name)
		fs.PrintDefaults()
	}

	fs.Var(&opts.statements, "s", "SQL statement to execute, repeatable")
	fs.Var(&opts.statements, "sql", "SQL statement to execute, repeatable")
	fs.StringVar(&opts.separator, "F", "", "field separator for delimited files (\\t for tab)")
	fs.StringVar(&opts.separator, "field-separator", "", "field separator for delimited files (\\t for tab)")
	fs.Var(&opts.tabledefs, "tabledef", "column names for a table as table:col1,col2, repeatable")
	fs.BoolVar(&opts.verbose, "v", false, "enable verbose output")
	fs.BoolVar(&opts.verbose, "verbose", false, "enable verbose output")
	fs.BoolVar(&opts.dryRun, "dry-run", false, "do not write changes back to files")
	fs.BoolVar(&opts.interactive, "i", false, "start an interactive shell")
	fs.BoolVar(&opts.interactive, "interactive", false, "start an interactive shell")
	fs.StringVar(&opts.configPath, "config", "", "path of the YAML configuration file")
	fs.BoolVar(&opts.showVersion, "version", false, "print the version and exit")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	fs.Visit(func(f *flag.Flag) {
		opts.set[f.Name] = true
	})
	opts.files = fs.Args()

	return opts, nil
}

// settings is the effective configuration once the config file and the
// command line are merged. Flags win over file values.
type settings struct {
	separator rune
	tables    map[string][]string
	verbose   bool
	// write reflects the config file's write mode, nil when it says
	// nothing. Batch runs default to writing, the shell to not.
	write *bool
}

func resolveSettings(opts *options) (*settings, error) {
	cfg := &settings{tables: map[string][]string{}}

	file, err := loadConfigFile(opts.configPath)
	if err != nil {
		return nil, err
	}

	if file != nil {
		for name, columns := range file.Tables {
			cfg.tables[name] = columns
		}

		if file.Separator != "" {
			sep, err := filetable.ParseDelimiter(file.Separator)
			if err != nil {
				return nil, err
			}
			cfg.separator = sep
		}

		cfg.write = file.Write
		cfg.verbose = file.Verbose
	}

	if opts.isSet("F", "field-separator") {
		sep, err := filetable.ParseDelimiter(opts.separator)
		if err != nil {
			return nil, err
		}
		cfg.separator = sep
	}

	if opts.isSet("v", "verbose") {
		cfg.verbose = opts.verbose
	}

	for _, def := range opts.tabledefs {
		name, columns, err := parseTableDef(def)
		if err != nil {
			return nil, err
		}
		cfg.tables[name] = columns
	}

	return cfg, nil
}

// loadConfigFile reads the configuration at the given path, or the
// default file when no path was given and the default exists.
func loadConfigFile(path string) (*Config, error) {
	if path != "" {
		return LoadConfig(path)
	}

	if _, err := os.Stat(defaultConfigFile); err != nil {
		return nil, nil
	}

	return LoadConfig(defaultConfigFile)
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, in io.Reader, out, errw io.Writer) int {
	opts, err := parseArgs("delimsql", args, errw)
	if err == flag.ErrHelp {
		return 0
	}
	if err != nil {
		return 2
	}

	if opts.showVersion {
		fmt.Fprintf(out, "delimsql version %s\n", version)
		return 0
	}

	cfg, err := resolveSettings(opts)
	if err != nil {
		fmt.Fprintf(errw, "delimsql: %s\n", err)
		return 2
	}

	if cfg.verbose {
		delimsql.SetLogLevel(logrus.DebugLevel)
	} else {
		delimsql.SetLogLevel(logrus.WarnLevel)
	}

	if !opts.interactive && len(opts.statements) == 0 {
		fmt.Fprintln(errw, "delimsql: no SQL statements given, use -s or -i")
		return 2
	}

	session := delimsql.NewSession()
	for _, arg := range opts.files {
		spec, err := filetable.ParseFileSpec(arg)
		if err != nil {
			fmt.Fprintf(errw, "delimsql: %s\n", err)
			return 1
		}

		loadOpts := filetable.LoadOptions{
			Separator: cfg.separator,
			Columns:   cfg.tables[spec.Table],
		}
		if _, err := session.Load(spec.Table, spec.Path, loadOpts); err != nil {
			fmt.Fprintf(errw, "delimsql: cannot load %s: %s\n", spec.Path, err)
			return 1
		}
	}

	if opts.interactive {
		return runRepl(session, cfg, opts.dryRun, in, out, errw)
	}

	for _, statement := range opts.statements {
		logrus.WithField("query", statement).Info("executing statement")

		res, err := session.Execute(statement)
		if err != nil {
			fmt.Fprintf(errw, "delimsql: %s\n", err)
			return 1
		}

		if q, ok := res.(*delimsql.QueryResult); ok {
			printResult(out, q)
		}
	}

	if opts.dryRun || (cfg.write != nil && !*cfg.write) {
		return 0
	}

	if _, err := session.SaveDirty(); err != nil {
		fmt.Fprintf(errw, "delimsql: %s\n", err)
		return 1
	}

	return 0
}

// printResult writes a query result as a header line followed by one
// comma separated line per row.
func printResult(out io.Writer, res *delimsql.QueryResult) {
	if len(res.Columns) == 0 && len(res.Rows) == 0 {
		return
	}

	fmt.Fprintln(out, strings.Join(res.Columns, ","))
	for _, row := range res.Rows {
		fmt.Fprintln(out, formatRow(row))
	}
}

// formatRow renders a result row with one field per column. Unlike the
// file writer, NULL prints as the word NULL so it stays visible.
func formatRow(row sql.Row) string {
	fields := make([]string, len(row))
	for i, v := range row {
		fields[i] = v.String()
	}
	return strings.Join(fields, ",")
}
