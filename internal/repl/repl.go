// Package repl is an interactive shell around a compiled manifest
// (internal/manifest): load a module, compile every declared expression
// and specification once, then let the user print the generated IR text
// of any of them by its position-derived name. Styled on the teacher's own
// internal/repl: liner-based line editing with history, a colored prompt,
// and ":"-prefixed command dispatch.
package repl

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/peterh/liner"

	"github.com/reftrace/stlc/internal/codegen"
	"github.com/reftrace/stlc/internal/ir"
	"github.com/reftrace/stlc/internal/manifest"
	"github.com/reftrace/stlc/internal/module"
	"github.com/reftrace/stlc/internal/rewrite"
	"github.com/reftrace/stlc/internal/typecalc"
)

var (
	green  = color.New(color.FgGreen).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()
	dim    = color.New(color.Faint).SprintFunc()
)

// Config holds REPL configuration.
type Config struct {
	Verbose bool
}

// REPL is a loaded, compiled manifest plus the interactive loop over it.
type REPL struct {
	config *Config

	path  string
	tbl   *module.Table
	order []string
	funcs map[string]*ir.Function

	history []string
	version string
}

// New creates an empty REPL with no manifest loaded yet.
func New() *REPL { return NewWithVersion("") }

// NewWithVersion creates a REPL, stamping version for the welcome banner.
func NewWithVersion(version string) *REPL {
	if version == "" {
		version = "dev"
	}
	return &REPL{
		config:  &Config{},
		funcs:   map[string]*ir.Function{},
		history: []string{},
		version: version,
	}
}

// EnableVerbose turns on extra diagnostic output.
func (r *REPL) EnableVerbose() { r.config.Verbose = true }

// LoadManifest loads, type-checks, rewrites, and compiles every expression
// a manifest declares, type-checks and compiles every specification without
// a rewrite pass, and indexes the resulting functions
// by their position-derived names (spec.md §4.5) for :print to look up.
func (r *REPL) LoadManifest(path string) error {
	m, err := manifest.Load(path)
	if err != nil {
		return err
	}
	tbl, b, err := manifest.Build(m)
	if err != nil {
		return err
	}

	funcs := map[string]*ir.Function{}
	var order []string

	c := typecalc.New(tbl)
	rw := rewrite.New(b)
	gen := codegen.New(tbl)

	for _, e := range tbl.GetExprs() {
		if _, err := c.Check(e); err != nil {
			return fmt.Errorf("typecalc: %w", err)
		}
		lowered, err := rw.Rewrite(e)
		if err != nil {
			return fmt.Errorf("rewrite: %w", err)
		}
		if _, err := c.Check(lowered); err != nil {
			return fmt.Errorf("typecalc (post-rewrite): %w", err)
		}
		fn, err := gen.CompileExpr(lowered)
		if err != nil {
			return fmt.Errorf("codegen: %w", err)
		}
		funcs[fn.Name] = fn
		order = append(order, fn.Name)
	}

	for _, s := range tbl.GetSpecs() {
		if err := c.CheckSpec(s); err != nil {
			return fmt.Errorf("typecalc: %w", err)
		}
		fn, err := gen.CompileSpec(s)
		if err != nil {
			return fmt.Errorf("codegen: %w", err)
		}
		funcs[fn.Name] = fn
		order = append(order, fn.Name)
	}

	r.path = path
	r.tbl = tbl
	r.funcs = funcs
	r.order = order
	return nil
}

func (r *REPL) getPrompt() string {
	if r.tbl == nil {
		return "stlc> "
	}
	return fmt.Sprintf("stlc[%s]> ", r.tbl.Name())
}

// Start runs the interactive loop against in/out until :quit or EOF.
func (r *REPL) Start(in io.Reader, out io.Writer) {
	line := liner.NewLiner()
	defer line.Close()

	historyFile := filepath.Join(os.TempDir(), ".stlc_history")
	if f, err := os.Open(historyFile); err == nil {
		_, _ = line.ReadHistory(f)
		f.Close()
	}
	line.SetMultiLineMode(false)

	fmt.Fprintf(out, "%s %s\n", bold("stlc"), bold(r.version))
	fmt.Fprintln(out, dim("Type :help for help, :quit to exit"))
	fmt.Fprintln(out)

	line.SetCompleter(func(input string) (c []string) {
		if strings.HasPrefix(input, ":") {
			for _, cmd := range []string{":help", ":quit", ":load", ":list", ":print", ":history", ":clear"} {
				if strings.HasPrefix(cmd, input) {
					c = append(c, cmd)
				}
			}
		}
		return
	})

	for {
		input, err := line.Prompt(r.getPrompt())
		if err == io.EOF {
			fmt.Fprintln(out, green("\nGoodbye!"))
			break
		}
		if err != nil {
			fmt.Fprintf(out, "%s: %v\n", red("Error"), err)
			continue
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}

		line.AppendHistory(input)
		r.history = append(r.history, input)

		if strings.HasPrefix(input, ":") {
			if strings.HasPrefix(input, ":quit") || strings.HasPrefix(input, ":q") || strings.HasPrefix(input, ":exit") {
				fmt.Fprintln(out, green("Goodbye!"))
				break
			}
			r.HandleCommand(input, out)
			continue
		}

		fmt.Fprintf(out, "%s: bare expressions are not supported outside a manifest; use :load and :print\n", yellow("Note"))
	}

	if f, err := os.Create(historyFile); err == nil {
		_, _ = line.WriteHistory(f)
		f.Close()
	}
}

// HandleCommand dispatches one ":"-prefixed command.
func (r *REPL) HandleCommand(input string, out io.Writer) {
	fields := strings.Fields(input)
	cmd := fields[0]
	args := fields[1:]

	switch cmd {
	case ":help":
		r.printHelp(out)
	case ":load":
		if len(args) != 1 {
			fmt.Fprintf(out, "%s: usage: :load <manifest.yaml>\n", red("Error"))
			return
		}
		if err := r.LoadManifest(args[0]); err != nil {
			fmt.Fprintf(out, "%s: %v\n", red("Error"), err)
			return
		}
		fmt.Fprintf(out, "%s loaded %s (%d function(s))\n", green("OK"), args[0], len(r.order))
	case ":list":
		r.printList(out)
	case ":print":
		if len(args) != 1 {
			fmt.Fprintf(out, "%s: usage: :print <name>\n", red("Error"))
			return
		}
		r.printFunc(args[0], out)
	case ":history":
		for i, h := range r.history {
			fmt.Fprintf(out, "%s %s\n", dim(fmt.Sprintf("%3d", i+1)), h)
		}
	case ":clear":
		r.history = nil
		fmt.Fprintln(out, green("history cleared"))
	default:
		fmt.Fprintf(out, "%s: unknown command %q (try :help)\n", red("Error"), cmd)
	}
}

func (r *REPL) printHelp(out io.Writer) {
	fmt.Fprintln(out, bold("Commands:"))
	fmt.Fprintln(out, "  :load <manifest.yaml>   load and compile a module manifest")
	fmt.Fprintln(out, "  :list                   list compiled function names")
	fmt.Fprintln(out, "  :print <name>           print a compiled function's IR text")
	fmt.Fprintln(out, "  :history                show input history")
	fmt.Fprintln(out, "  :clear                  clear input history")
	fmt.Fprintln(out, "  :quit, :q, :exit        leave the REPL")
}

func (r *REPL) printList(out io.Writer) {
	if r.tbl == nil {
		fmt.Fprintf(out, "%s: no manifest loaded (try :load)\n", yellow("Note"))
		return
	}
	names := append([]string(nil), r.order...)
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(out, "  %s\n", cyan(name))
	}
}

func (r *REPL) printFunc(name string, out io.Writer) {
	fn, ok := r.funcs[name]
	if !ok {
		fmt.Fprintf(out, "%s: no compiled function named %q (see :list)\n", red("Error"), name)
		return
	}
	fmt.Fprint(out, ir.Print(fn))
}
