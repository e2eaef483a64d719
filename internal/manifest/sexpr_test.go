package manifest

import (
	"testing"

	"github.com/reftrace/stlc/internal/ast"
)

func mustParse(t *testing.T, b *ast.Builder, src string) ast.Expr {
	t.Helper()
	e, err := parseSexprNamed(b, src, ast.Span{})
	if err != nil {
		t.Fatalf("parseSexprNamed(%q): %v", src, err)
	}
	return e
}

func TestParseLiterals(t *testing.T) {
	b := ast.NewBuilder()

	if e := mustParse(t, b, "true"); e.(*ast.BoolLit).Value != true {
		t.Errorf("true parsed as %v", e)
	}
	if e := mustParse(t, b, "42"); e.(*ast.IntLit).Value != 42 {
		t.Errorf("42 parsed as %v", e)
	}
	if e := mustParse(t, b, "1.5"); e.(*ast.FloatLit).Value != 1.5 {
		t.Errorf("1.5 parsed as %v", e)
	}
	if e := mustParse(t, b, `"hi"`); *e.(*ast.StringLit).Value != "hi" {
		t.Errorf(`"hi" parsed as %v`, e)
	}
	if e := mustParse(t, b, "speed"); e.(*ast.Data).Name != "speed" {
		t.Errorf("speed parsed as %v", e)
	}
	if e := mustParse(t, b, "@starting"); e.(*ast.Context).Name != "starting" {
		t.Errorf("@starting parsed as %v", e)
	}
}

func TestParseBinAndNeg(t *testing.T) {
	b := ast.NewBuilder()

	e := mustParse(t, b, "(+ 1 2)")
	bin, ok := e.(*ast.BinOp)
	if !ok || bin.Op != ast.OpAdd {
		t.Fatalf("(+ 1 2) parsed as %#v", e)
	}

	e = mustParse(t, b, "(- x)")
	neg, ok := e.(*ast.Neg)
	if !ok {
		t.Fatalf("(- x) parsed as %#v, want Neg", e)
	}
	if neg.Arg.(*ast.Data).Name != "x" {
		t.Errorf("neg arg = %#v", neg.Arg)
	}

	e = mustParse(t, b, "(- 3 1)")
	sub, ok := e.(*ast.BinOp)
	if !ok || sub.Op != ast.OpSub {
		t.Fatalf("(- 3 1) parsed as %#v, want Sub", e)
	}
}

func TestParseChoiceAndNot(t *testing.T) {
	b := ast.NewBuilder()

	e := mustParse(t, b, "(? cond a b)")
	ch, ok := e.(*ast.Choice)
	if !ok {
		t.Fatalf("(? cond a b) parsed as %#v", e)
	}
	if ch.Cond.(*ast.Data).Name != "cond" {
		t.Errorf("choice cond = %#v", ch.Cond)
	}

	e = mustParse(t, b, "(! p)")
	if _, ok := e.(*ast.Not); !ok {
		t.Fatalf("(! p) parsed as %#v, want Not", e)
	}
}

func TestParseTemporalUnboundedAndBounded(t *testing.T) {
	b := ast.NewBuilder()

	e := mustParse(t, b, "(G p)")
	g, ok := e.(*ast.TemporalUnary)
	if !ok || g.Op != ast.OpG || g.Time != nil {
		t.Fatalf("(G p) parsed as %#v", e)
	}

	e = mustParse(t, b, "(F p 0 15)")
	f, ok := e.(*ast.TemporalUnary)
	if !ok || f.Op != ast.OpF || f.Time == nil {
		t.Fatalf("(F p 0 15) parsed as %#v", e)
	}
	if f.Time.Lo.(*ast.IntLit).Value != 0 || f.Time.Hi.(*ast.IntLit).Value != 15 {
		t.Errorf("(F p 0 15) time bound = %#v", f.Time)
	}

	e = mustParse(t, b, "(G p _ 20)")
	g2 := e.(*ast.TemporalUnary)
	if g2.Time.Lo != nil {
		t.Errorf("(G p _ 20) Lo = %#v, want nil", g2.Time.Lo)
	}
	if g2.Time.Hi.(*ast.IntLit).Value != 20 {
		t.Errorf("(G p _ 20) Hi = %#v, want 20", g2.Time.Hi)
	}
}

func TestParseTemporalBinary(t *testing.T) {
	b := ast.NewBuilder()

	e := mustParse(t, b, "(Us a bb)")
	us, ok := e.(*ast.TemporalBinary)
	if !ok || us.Op != ast.OpUs {
		t.Fatalf("(Us a bb) parsed as %#v", e)
	}
	if us.LHS.(*ast.Data).Name != "a" || us.RHS.(*ast.Data).Name != "bb" {
		t.Errorf("(Us a bb) operands = %#v, %#v", us.LHS, us.RHS)
	}
}

func TestParseMemberIndexAt(t *testing.T) {
	b := ast.NewBuilder()

	e := mustParse(t, b, "(member s field)")
	mem, ok := e.(*ast.Member)
	if !ok || mem.Name != "field" {
		t.Fatalf("(member s field) parsed as %#v", e)
	}

	e = mustParse(t, b, "(index arr 0)")
	idx, ok := e.(*ast.Index)
	if !ok {
		t.Fatalf("(index arr 0) parsed as %#v", e)
	}
	if idx.I.(*ast.IntLit).Value != 0 {
		t.Errorf("(index arr 0) I = %#v", idx.I)
	}

	e = mustParse(t, b, "(at starting (G a))")
	at, ok := e.(*ast.At)
	if !ok || at.Name != "starting" {
		t.Fatalf("(at starting (G a)) parsed as %#v", e)
	}
}

func TestParseIntegration(t *testing.T) {
	b := ast.NewBuilder()

	e := mustParse(t, b, "(int p h)")
	ig, ok := e.(*ast.Integ)
	if !ok || ig.Time != nil {
		t.Fatalf("(int p h) parsed as %#v", e)
	}

	e = mustParse(t, b, "(int p h 0 10)")
	ig2 := e.(*ast.Integ)
	if ig2.Time == nil || ig2.Time.Lo.(*ast.IntLit).Value != 0 || ig2.Time.Hi.(*ast.IntLit).Value != 10 {
		t.Errorf("(int p h 0 10) time = %#v", ig2.Time)
	}
}

func TestParseErrors(t *testing.T) {
	b := ast.NewBuilder()

	cases := []string{
		"(+ 1)",          // binary op missing operand
		"(unknownop 1 2)", // unrecognized head
		"(G p",           // unterminated list
		`"unterminated`,  // unterminated string
		"",               // empty input
	}
	for _, src := range cases {
		if _, err := parseSexprNamed(b, src, ast.Span{}); err == nil {
			t.Errorf("parseSexprNamed(%q): want error, got nil", src)
		}
	}
}
