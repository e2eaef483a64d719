// Command stlc compiles a declarative module manifest (internal/manifest)
// into IR text, or opens an interactive shell over one (internal/repl).
// Subcommands and colored diagnostics are styled on the teacher's own
// cmd/ailang/main.go, rebuilt on spf13/cobra for command-tree wiring.
package main

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/reftrace/stlc/internal/codegen"
	"github.com/reftrace/stlc/internal/ir"
	"github.com/reftrace/stlc/internal/manifest"
	"github.com/reftrace/stlc/internal/repl"
	"github.com/reftrace/stlc/internal/rewrite"
	"github.com/reftrace/stlc/internal/typecalc"
)

var (
	version = "dev"

	green = color.New(color.FgGreen).SprintFunc()
	red   = color.New(color.FgRed).SprintFunc()
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:     "stlc",
		Short:   "stlc compiles temporal-logic specifications over sampled signals",
		Version: version,
	}
	root.AddCommand(newCompileCmd(), newReplCmd())
	return root
}

func newCompileCmd() *cobra.Command {
	var file string
	var csvHeaders bool

	cmd := &cobra.Command{
		Use:   "compile",
		Short: "Compile a module manifest to IR text",
		RunE: func(cmd *cobra.Command, args []string) error {
			if file == "" {
				return fmt.Errorf("--file is required")
			}
			return runCompile(file, csvHeaders, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "path to a module manifest (YAML)")
	cmd.Flags().BoolVar(&csvHeaders, "csv-headers", false, "print the module's property names as a CSV header line instead of IR")
	return cmd
}

func runCompile(file string, csvHeaders bool, out io.Writer) error {
	m, err := manifest.Load(file)
	if err != nil {
		return err
	}
	tbl, b, err := manifest.Build(m)
	if err != nil {
		return err
	}

	if csvHeaders {
		fmt.Fprintln(out, strings.Join(tbl.GetPropNames(), ","))
		return nil
	}

	c := typecalc.New(tbl)
	rw := rewrite.New(b)
	gen := codegen.New(tbl)

	var names []string
	funcs := map[string]*ir.Function{}

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
		names = append(names, fn.Name)
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
		names = append(names, fn.Name)
	}

	sort.Strings(names)
	for _, name := range names {
		fmt.Fprint(out, ir.Print(funcs[name]))
	}
	return nil
}

func newReplCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "repl [manifest]",
		Short: "Start an interactive shell over a compiled manifest",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r := repl.NewWithVersion(version)
			if len(args) == 1 {
				if err := r.LoadManifest(args[0]); err != nil {
					fmt.Fprintf(os.Stderr, "%s: %v\n", red("Error"), err)
					os.Exit(1)
				}
				fmt.Fprintf(os.Stdout, "%s loaded %s\n", green("OK"), args[0])
			}
			r.Start(os.Stdin, os.Stdout)
			return nil
		},
	}
	return cmd
}
