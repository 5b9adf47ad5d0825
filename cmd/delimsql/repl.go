package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/delimsql/delimsql"
	"github.com/delimsql/delimsql/filetable"
	"github.com/delimsql/delimsql/internal/history"
)

// historyFile is the bolt database the shell records statements into.
const historyFile = ".delimsql_history"

// repl is the interactive shell. It reads lines, executes SQL statements
// against the session and handles the dot commands. Modified tables are
// written back on exit when write mode is on.
type repl struct {
	session *delimsql.Session
	scanner *bufio.Scanner
	out     io.Writer
	errw    io.Writer
	history *history.History

	separator rune
	defs      map[string][]string

	write   bool
	changes bool
	stats   bool

	running  bool
	exitCode int
}

func runRepl(session *delimsql.Session, cfg *settings, dryRun bool, in io.Reader, out, errw io.Writer) int {
	hist, err := history.Open(historyFile)
	if err != nil {
		logrus.Warnf("history disabled: %s", err)
		hist = nil
	}

	r := &repl{
		session:   session,
		scanner:   bufio.NewScanner(in),
		out:       out,
		errw:      errw,
		history:   hist,
		separator: cfg.separator,
		defs:      cfg.tables,
		write:     cfg.write != nil && *cfg.write && !dryRun,
		running:   true,
	}

	return r.run()
}

func (r *repl) run() int {
	fmt.Fprintln(r.out, "Welcome to delimsql interactive mode!")
	fmt.Fprintln(r.out, "Type .help for available commands.")

	for r.running {
		fmt.Fprint(r.out, "delimsql> ")
		if !r.scanner.Scan() {
			fmt.Fprintln(r.out)
			break
		}

		line := strings.TrimSpace(r.scanner.Text())
		if line == "" {
			continue
		}

		if r.history != nil {
			if err := r.history.Add(line); err != nil {
				logrus.Warnf("cannot record history: %s", err)
			}
		}

		if strings.HasPrefix(line, ".") {
			r.command(line)
		} else {
			r.execute(line)
		}
	}

	return r.finish()
}

// finish saves modified tables when write mode is on, or points at them
// when it is off, and releases the history store.
func (r *repl) finish() int {
	if r.history != nil {
		defer func() {
			_ = r.history.Close()
		}()
	}

	if r.write {
		saved, err := r.session.SaveDirty()
		if err != nil {
			fmt.Fprintf(r.errw, "Error: %s\n", err)
			if r.exitCode == 0 {
				r.exitCode = 1
			}
		}
		if len(saved) > 0 {
			fmt.Fprintf(r.out, "Changes saved to %d tables\n", len(saved))
		}
		return r.exitCode
	}

	if len(r.session.DirtyTables()) > 0 {
		fmt.Fprintln(r.out, "Changes not saved: use .write on to save changes to files")
	}

	return r.exitCode
}

func (r *repl) execute(query string) {
	var start time.Time
	if r.stats {
		start = time.Now()
	}

	res, err := r.session.Execute(query)
	if err != nil {
		fmt.Fprintf(r.errw, "Error: %s\n", err)
		return
	}

	switch res := res.(type) {
	case *delimsql.QueryResult:
		if len(res.Rows) == 0 {
			fmt.Fprintln(r.out, "Query returned no rows")
		} else {
			fmt.Fprintf(r.out, "Query returned %d rows\n", len(res.Rows))
			fmt.Fprintln(r.out, strings.Join(res.Columns, ","))
			for _, row := range res.Rows {
				fmt.Fprintln(r.out, formatRow(row))
			}
		}
	case *delimsql.MutationSummary:
		if r.changes && res.Affected > 0 {
			fmt.Fprintf(r.out, "%d rows affected\n", res.Affected)
		}
	}

	if r.stats {
		fmt.Fprintf(r.out, "Run Time: %.3f ms\n", time.Since(start).Seconds()*1000)
	}
}

func (r *repl) command(line string) {
	name, arg := line[1:], ""
	if i := strings.IndexByte(name, ' '); i >= 0 {
		name, arg = name[:i], strings.TrimSpace(name[i+1:])
	}

	switch strings.ToLower(name) {
	case "help":
		r.help()
	case "exit":
		r.exit(arg)
	case "quit":
		r.exit("")
	case "tables":
		r.tables(arg)
	case "schema":
		r.schema(arg)
	case "load":
		r.load(arg)
	case "save":
		r.save(arg)
	case "write":
		r.toggleWrite(arg)
	case "changes":
		r.toggleChanges(arg)
	case "stats":
		r.toggleStats(arg)
	case "history":
		r.showHistory(arg)
	case "cd":
		r.chdir(arg)
	case "print":
		fmt.Fprintln(r.out, arg)
	case "show":
		r.show()
	case "version":
		r.version()
	default:
		fmt.Fprintf(r.errw, "Unknown command: .%s\n", name)
	}
}

func (r *repl) help() {
	fmt.Fprintln(r.out, "Available commands:")
	fmt.Fprintln(r.out, "  .cd DIRECTORY         Change the working directory to DIRECTORY")
	fmt.Fprintf(r.out, "  .changes [on|off]     Show number of rows changed by SQL (currently: %s)\n", onOff(r.changes))
	fmt.Fprintln(r.out, "  .exit [CODE]          Exit the shell with an optional exit code")
	fmt.Fprintln(r.out, "  .help                 Show this help message")
	fmt.Fprintln(r.out, "  .history [N]          Show the last N statements, or all of them")
	fmt.Fprintln(r.out, "  .load [TABLE=]FILE    Load FILE into TABLE")
	fmt.Fprintln(r.out, "  .print STRING...      Print literal STRING")
	fmt.Fprintln(r.out, "  .quit                 Exit the shell")
	fmt.Fprintln(r.out, "  .save [TABLE]         Save changes to all tables or a specific TABLE")
	fmt.Fprintln(r.out, "  .schema [TABLE]       Show schema for a specific table or all tables")
	fmt.Fprintln(r.out, "  .show                 Show current settings and status information")
	fmt.Fprintf(r.out, "  .stats [on|off]       Toggle statistics display (currently: %s)\n", onOff(r.stats))
	fmt.Fprintln(r.out, "  .tables [PATTERN]     List names of tables matching LIKE PATTERN")
	fmt.Fprintln(r.out, "  .version              Show version information")
	fmt.Fprintf(r.out, "  .write [on|off]       Toggle saving changes on exit (currently: %s)\n", onOff(r.write))
	fmt.Fprintln(r.out, "  SQL_STATEMENT         Execute SQL statement")
}

func (r *repl) exit(arg string) {
	r.running = false
	if arg == "" {
		return
	}

	code, err := strconv.Atoi(arg)
	if err != nil {
		fmt.Fprintf(r.errw, "Invalid exit code: %s\n", arg)
		return
	}
	r.exitCode = code
}

func (r *repl) tables(arg string) {
	names := r.session.Tables()
	if len(names) == 0 {
		fmt.Fprintln(r.out, "No tables loaded")
		return
	}

	pattern := arg
	if len(pattern) >= 5 && strings.EqualFold(pattern[:5], "like ") {
		pattern = strings.TrimSpace(pattern[5:])
	}

	fmt.Fprintln(r.out, "Tables:")
	matched := false
	for _, name := range names {
		if pattern != "" && !likeMatch(pattern, name) {
			continue
		}
		matched = true

		suffix := ""
		if t, err := r.session.Table(name); err == nil && t.IsDirty() {
			suffix = " (modified)"
		}
		fmt.Fprintf(r.out, "  %s%s\n", name, suffix)
	}

	if !matched {
		fmt.Fprintf(r.out, "  No tables match pattern: %s\n", pattern)
	}
}

func (r *repl) schema(arg string) {
	if arg != "" {
		t, err := r.session.Table(arg)
		if err != nil {
			fmt.Fprintf(r.errw, "No such table: %s\n", arg)
			return
		}
		r.printSchema(t)
		return
	}

	for _, name := range r.session.Tables() {
		if t, err := r.session.Table(name); err == nil {
			r.printSchema(t)
		}
	}
}

func (r *repl) printSchema(t *filetable.Table) {
	schema := t.Schema()
	fmt.Fprintf(r.out, "CREATE TABLE %s (\n", t.Name())
	for i, col := range schema {
		typ := "TEXT"
		if col.Type != nil {
			typ = col.Type.Name()
		}

		comma := ","
		if i == len(schema)-1 {
			comma = ""
		}
		fmt.Fprintf(r.out, "  %s %s%s\n", col.Name, typ, comma)
	}
	fmt.Fprintln(r.out, ");")
}

func (r *repl) load(arg string) {
	if arg == "" {
		fmt.Fprintln(r.errw, "File path required for .load")
		return
	}

	spec, err := filetable.ParseFileSpec(arg)
	if err != nil {
		fmt.Fprintf(r.errw, "Error: %s\n", err)
		return
	}

	opts := filetable.LoadOptions{
		Separator: r.separator,
		Columns:   r.defs[spec.Table],
	}
	if _, err := r.session.Load(spec.Table, spec.Path, opts); err != nil {
		fmt.Fprintf(r.errw, "Error: %s\n", err)
		return
	}

	fmt.Fprintf(r.out, "Loaded table '%s' from '%s'\n", spec.Table, spec.Path)
}

func (r *repl) save(arg string) {
	if arg == "" {
		if len(r.session.DirtyTables()) == 0 {
			fmt.Fprintln(r.out, "No modified tables to save")
			return
		}

		saved, err := r.session.SaveDirty()
		if err != nil {
			fmt.Fprintf(r.errw, "Error: %s\n", err)
			return
		}
		fmt.Fprintf(r.out, "Changes saved to %d tables\n", len(saved))
		return
	}

	t, err := r.session.Table(arg)
	if err != nil {
		fmt.Fprintf(r.errw, "Error: %s\n", err)
		return
	}

	if !t.IsDirty() {
		fmt.Fprintf(r.out, "Table '%s' has no changes to save\n", arg)
		return
	}

	if err := r.session.SaveTable(arg); err != nil {
		fmt.Fprintf(r.errw, "Error: %s\n", err)
		return
	}
	fmt.Fprintf(r.out, "Changes saved to table '%s'\n", arg)
}

func (r *repl) toggleWrite(arg string) {
	switch arg {
	case "on":
		r.write = true
		fmt.Fprintln(r.out, "Write mode enabled - changes will be saved on exit")
	case "off":
		r.write = false
		fmt.Fprintln(r.out, "Write mode disabled - changes will not be saved")
	default:
		r.write = !r.write
		if r.write {
			fmt.Fprintln(r.out, "Write mode enabled")
		} else {
			fmt.Fprintln(r.out, "Write mode disabled")
		}
	}
}

func (r *repl) toggleChanges(arg string) {
	switch arg {
	case "on":
		r.changes = true
	case "off":
		r.changes = false
	default:
		r.changes = !r.changes
	}

	if r.changes {
		fmt.Fprintln(r.out, "Changes display enabled")
	} else {
		fmt.Fprintln(r.out, "Changes display disabled")
	}
}

func (r *repl) toggleStats(arg string) {
	switch arg {
	case "on":
		r.stats = true
	case "off":
		r.stats = false
	case "":
		r.stats = !r.stats
	default:
		fmt.Fprintln(r.out, "Unknown option for .stats")
		fmt.Fprintln(r.out, "Usage: .stats [on|off]")
		return
	}

	if r.stats {
		fmt.Fprintln(r.out, "Statistics display enabled")
	} else {
		fmt.Fprintln(r.out, "Statistics display disabled")
	}
}

func (r *repl) showHistory(arg string) {
	if r.history == nil {
		fmt.Fprintln(r.errw, "History is not available")
		return
	}

	n := 0
	if arg != "" {
		var err error
		n, err = strconv.Atoi(arg)
		if err != nil || n < 0 {
			fmt.Fprintf(r.errw, "Invalid history count: %s\n", arg)
			return
		}
	}

	statements, err := r.history.Last(n)
	if err != nil {
		fmt.Fprintf(r.errw, "Error: %s\n", err)
		return
	}

	for _, statement := range statements {
		fmt.Fprintln(r.out, statement)
	}
}

func (r *repl) chdir(arg string) {
	if arg == "" {
		fmt.Fprintln(r.errw, "Directory path required for .cd")
		return
	}

	if err := os.Chdir(arg); err != nil {
		fmt.Fprintf(r.errw, "Failed to change directory: %s\n", err)
		return
	}
	fmt.Fprintf(r.out, "Changed directory to %s\n", arg)
}

func (r *repl) show() {
	separator := "default"
	if r.separator != 0 {
		separator = fmt.Sprintf("%q", string(r.separator))
	}

	fmt.Fprintln(r.out, "Settings:")
	fmt.Fprintf(r.out, "  Write Mode:      %s\n", onOff(r.write))
	fmt.Fprintf(r.out, "  Changes Display: %s\n", onOff(r.changes))
	fmt.Fprintf(r.out, "  Statistics:      %s\n", onOff(r.stats))
	fmt.Fprintf(r.out, "  Field Separator: %s\n", separator)
	fmt.Fprintf(r.out, "  Tables Loaded:   %d\n", len(r.session.Tables()))
	fmt.Fprintf(r.out, "  Modified Tables: %d\n", len(r.session.DirtyTables()))
}

func (r *repl) version() {
	fmt.Fprintf(r.out, "delimsql version %s\n", version)
	fmt.Fprintf(r.out, "Running on %s\n", runtime.Version())
}

func onOff(v bool) string {
	if v {
		return "ON"
	}
	return "OFF"
}

// likeMatch reports whether name matches a SQL LIKE pattern, where %
// matches any run of characters and _ matches exactly one.
func likeMatch(pattern, name string) bool {
	var b strings.Builder
	b.WriteByte('^')
	for _, ru := range pattern {
		switch ru {
		case '%':
			b.WriteString(".*")
		case '_':
			b.WriteByte('.')
		default:
			b.WriteString(regexp.QuoteMeta(string(ru)))
		}
	}
	b.WriteByte('$')

	re, err := regexp.Compile(b.String())
	if err != nil {
		return false
	}
	return re.MatchString(name)
}
