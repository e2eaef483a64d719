package rewrite

import (
	"testing"

	"github.com/reftrace/stlc/internal/ast"
)

func TestDoubleNegationElimination(t *testing.T) {
	b := ast.NewBuilder()
	r := New(b)

	p := b.Data(ast.Span{}, "p")
	e := b.Not(ast.Span{}, b.Not(ast.Span{}, p))

	got, err := r.Rewrite(e)
	if err != nil {
		t.Fatalf("unexpected: %v", err)
	}
	if got != ast.Expr(p) {
		t.Fatalf("expected !!p -> p, got %s", ast.Print(got))
	}
}

func TestDeMorganAnd(t *testing.T) {
	b := ast.NewBuilder()
	r := New(b)

	a := b.Data(ast.Span{}, "a")
	c := b.Data(ast.Span{}, "c")
	e := b.Not(ast.Span{}, b.Bin(ast.Span{}, ast.OpAnd, a, c))

	got, err := r.Rewrite(e)
	if err != nil {
		t.Fatalf("unexpected: %v", err)
	}
	bin, ok := got.(*ast.BinOp)
	if !ok || bin.Op != ast.OpOr {
		t.Fatalf("expected !(a&&c) -> !a||!c, got %s", ast.Print(got))
	}
	if _, ok := bin.LHS.(*ast.Not); !ok {
		t.Fatalf("expected negated lhs, got %s", ast.Print(bin.LHS))
	}
}

func TestDeMorganComparison(t *testing.T) {
	b := ast.NewBuilder()
	r := New(b)

	e := b.Not(ast.Span{}, b.Bin(ast.Span{}, ast.OpLt, b.Data(ast.Span{}, "a"), b.Int(ast.Span{}, 1)))
	got, err := r.Rewrite(e)
	if err != nil {
		t.Fatalf("unexpected: %v", err)
	}
	bin, ok := got.(*ast.BinOp)
	if !ok || bin.Op != ast.OpGe {
		t.Fatalf("expected !(a<1) -> a>=1, got %s", ast.Print(got))
	}
}

func TestTemporalDualNegation(t *testing.T) {
	b := ast.NewBuilder()
	r := New(b)

	a := b.Data(ast.Span{}, "a")
	g := b.TUnary(ast.Span{}, ast.OpG, nil, a)
	e := b.Not(ast.Span{}, g)

	got, err := r.Rewrite(e)
	if err != nil {
		t.Fatalf("unexpected: %v", err)
	}
	tu, ok := got.(*ast.TemporalUnary)
	if !ok || tu.Op != ast.OpF {
		t.Fatalf("expected !G(a) -> F(!a), got %s", ast.Print(got))
	}
	if _, ok := tu.Arg.(*ast.Not); !ok {
		t.Fatalf("expected negated inner arg, got %s", ast.Print(tu.Arg))
	}
}

func TestNegationOfIntegIsRejected(t *testing.T) {
	b := ast.NewBuilder()
	r := New(b)

	body := b.Bool(ast.Span{}, true)
	height := b.Data(ast.Span{}, "speed")
	e := b.Not(ast.Span{}, b.Integ(ast.Span{}, body, height, nil))

	_, err := r.Rewrite(e)
	if err == nil {
		t.Fatalf("expected negation of int(...) to fail")
	}
}

func TestParenElidedAroundAtom(t *testing.T) {
	b := ast.NewBuilder()
	r := New(b)

	p := b.Data(ast.Span{}, "p")
	e := b.Paren(ast.Span{}, p)

	got, err := r.Rewrite(e)
	if err != nil {
		t.Fatalf("unexpected: %v", err)
	}
	if got != ast.Expr(p) {
		t.Fatalf("expected paren around atom to be elided, got %s", ast.Print(got))
	}
}

func TestDoubleParenCollapses(t *testing.T) {
	b := ast.NewBuilder()
	r := New(b)

	a := b.Data(ast.Span{}, "a")
	c := b.Data(ast.Span{}, "c")
	inner := b.Paren(ast.Span{}, b.Bin(ast.Span{}, ast.OpAnd, a, c))
	outer := b.Paren(ast.Span{}, inner)

	got, err := r.Rewrite(outer)
	if err != nil {
		t.Fatalf("unexpected: %v", err)
	}
	p, ok := got.(*ast.Paren)
	if !ok {
		t.Fatalf("expected a single remaining paren, got %s", ast.Print(got))
	}
	if _, ok := p.Arg.(*ast.Paren); ok {
		t.Fatalf("expected no nested paren, got %s", ast.Print(got))
	}
}

func TestBoundedUntilLoweringProducesStartingBinder(t *testing.T) {
	b := ast.NewBuilder()
	r := New(b)

	lhs := b.Data(ast.Span{}, "a")
	rhs := b.Data(ast.Span{}, "c")
	time := b.Time(b.Int(ast.Span{}, 0), b.Int(ast.Span{}, 10))
	e := b.TBinary(ast.Span{}, ast.OpUs, &time, lhs, rhs)

	got, err := r.Rewrite(e)
	if err != nil {
		t.Fatalf("unexpected: %v", err)
	}
	at, ok := got.(*ast.At)
	if !ok || at.Name != "starting" {
		t.Fatalf("expected bounded Us to lower to At(starting, ...), got %s", ast.Print(got))
	}
	inner, ok := at.Arg.(*ast.TemporalBinary)
	if !ok || inner.Op != ast.OpUs || inner.Time != nil {
		t.Fatalf("expected untimed Us inside the starting binder, got %s", ast.Print(at.Arg))
	}
	if !Verify(got) {
		t.Fatalf("expected lowered form to satisfy post-rewrite invariants")
	}
}

func TestBoundedRsLowersViaUwDual(t *testing.T) {
	b := ast.NewBuilder()
	r := New(b)

	lhs := b.Data(ast.Span{}, "a")
	rhs := b.Data(ast.Span{}, "c")
	time := b.Time(b.Int(ast.Span{}, 0), b.Int(ast.Span{}, 10))
	e := b.TBinary(ast.Span{}, ast.OpRs, &time, lhs, rhs)

	got, err := r.Rewrite(e)
	if err != nil {
		t.Fatalf("unexpected: %v", err)
	}
	if !Verify(got) {
		t.Fatalf("expected lowered Rs to satisfy post-rewrite invariants, got %s", ast.Print(got))
	}
	at, ok := got.(*ast.At)
	if !ok {
		t.Fatalf("expected At(starting, ...) wrapper, got %s", ast.Print(got))
	}
	inner, ok := at.Arg.(*ast.TemporalBinary)
	if !ok || inner.Op != ast.OpRs {
		t.Fatalf("expected the dual-of-dual to resolve back to Rs, got %s", ast.Print(at.Arg))
	}
}

func TestUntimedTemporalBinaryUnchanged(t *testing.T) {
	b := ast.NewBuilder()
	r := New(b)

	e := b.TBinary(ast.Span{}, ast.OpRs, nil, b.Data(ast.Span{}, "a"), b.Data(ast.Span{}, "c"))
	got, err := r.Rewrite(e)
	if err != nil {
		t.Fatalf("unexpected: %v", err)
	}
	tb, ok := got.(*ast.TemporalBinary)
	if !ok || tb.Op != ast.OpRs || tb.Time != nil {
		t.Fatalf("expected untimed Rs to pass through unchanged, got %s", ast.Print(got))
	}
}
