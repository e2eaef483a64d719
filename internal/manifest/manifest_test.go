package manifest_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/reftrace/stlc/internal/codegen"
	"github.com/reftrace/stlc/internal/interp"
	"github.com/reftrace/stlc/internal/manifest"
	"github.com/reftrace/stlc/internal/rewrite"
	"github.com/reftrace/stlc/internal/sample"
	"github.com/reftrace/stlc/internal/typecalc"
)

func writeManifest(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "module.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write manifest: %v", err)
	}
	return path
}

func TestLoad_MissingModuleName(t *testing.T) {
	path := writeManifest(t, `properties:
  - name: a
    type: bool
`)
	if _, err := manifest.Load(path); err == nil {
		t.Error("Load with no module name: want error, got nil")
	}
}

func TestLoad_UnknownSpecKind(t *testing.T) {
	path := writeManifest(t, `module: m
properties:
  - name: a
    type: bool
specs:
  - kind: whenever
    body: "(G a)"
`)
	if _, err := manifest.Load(path); err == nil {
		t.Error("Load with unknown spec kind: want error, got nil")
	}
}

func TestLoad_BeforeMissingCond(t *testing.T) {
	path := writeManifest(t, `module: m
properties:
  - name: a
    type: bool
specs:
  - kind: before
    body: "(G a)"
`)
	if _, err := manifest.Load(path); err == nil {
		t.Error("Load of before-spec with no cond: want error, got nil")
	}
}

func TestLoad_Valid(t *testing.T) {
	path := writeManifest(t, `module: m
properties:
  - name: a
    type: bool
  - name: x
    type: int
configs:
  - name: limit
    type: int
exprs:
  - "(G a)"
  - "(> x limit)"
specs:
  - kind: before
    cond: a
    body: "(F a)"
`)
	m, err := manifest.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if m.Module != "m" {
		t.Errorf("Module = %q, want %q", m.Module, "m")
	}
	if len(m.Properties) != 2 || len(m.Exprs) != 2 || len(m.Specs) != 1 {
		t.Errorf("unexpected counts: %+v", m)
	}
}

// TestBuildCompileRun exercises the full pipeline a manifest feeds: Build
// populates the module table and AST, then TypeCalc/Rewrite/CodeGen compile
// one declared expression, checked against the reference interpreter —
// mirroring the black-box style of internal/interp's own tests.
func TestBuildCompileRun(t *testing.T) {
	m := &manifest.Manifest{
		Module: "m",
		Properties: []manifest.FieldDecl{
			{Name: "a", Type: "bool"},
		},
		Exprs: []string{
			"(G a)",
		},
	}
	tbl, b, err := manifest.Build(m)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	_ = b

	exprs := tbl.GetExprs()
	if len(exprs) != 1 {
		t.Fatalf("GetExprs() = %d entries, want 1", len(exprs))
	}

	c := typecalc.New(tbl)
	if _, err := c.Check(exprs[0]); err != nil {
		t.Fatalf("typecalc: %v", err)
	}
	rw, err := rewrite.New(b).Rewrite(exprs[0])
	if err != nil {
		t.Fatalf("rewrite: %v", err)
	}
	fn, err := codegen.New(tbl).CompileExpr(rw)
	if err != nil {
		t.Fatalf("codegen: %v", err)
	}

	tr := sample.Of(
		sample.New(0, true),
		sample.New(1, true),
		sample.New(2, false),
	)
	got, err := interp.Run(fn, tr.Frst(), tr.Last(), nil)
	if err != nil {
		t.Fatalf("interp: %v", err)
	}
	if got != false {
		t.Errorf("G(a) over a trace with a false sample = %v, want false", got)
	}
}

// TestBuildCompileRun_Spec exercises a manifest-declared specification
// scope end to end, the same way TestBlackBoxScope checks a hand-built one.
func TestBuildCompileRun_Spec(t *testing.T) {
	m := &manifest.Manifest{
		Module: "m",
		Properties: []manifest.FieldDecl{
			{Name: "cond", Type: "bool"},
			{Name: "a", Type: "bool"},
		},
		Specs: []manifest.SpecDecl{
			{Kind: "before", Cond: "cond", Body: "(G a)"},
		},
	}
	tbl, _, err := manifest.Build(m)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	specs := tbl.GetSpecs()
	if len(specs) != 1 {
		t.Fatalf("GetSpecs() = %d entries, want 1", len(specs))
	}

	c := typecalc.New(tbl)
	if err := c.CheckSpec(specs[0]); err != nil {
		t.Fatalf("typecalc: %v", err)
	}
	fn, err := codegen.New(tbl).CompileSpec(specs[0])
	if err != nil {
		t.Fatalf("codegen: %v", err)
	}

	tr := sample.Of(
		sample.New(0, false, true),
		sample.New(1, false, true),
		sample.New(2, true, true),
		sample.New(3, false, false),
	)
	got, err := interp.Run(fn, tr.Frst(), tr.Last(), nil)
	if err != nil {
		t.Fatalf("interp: %v", err)
	}
	if got != true {
		t.Errorf("before(cond, G(a)) = %v, want true", got)
	}
}
