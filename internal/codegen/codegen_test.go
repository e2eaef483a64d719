package codegen

import (
	"testing"

	"github.com/reftrace/stlc/internal/ast"
	"github.com/reftrace/stlc/internal/ir"
	"github.com/reftrace/stlc/internal/module"
	"github.com/reftrace/stlc/internal/typecalc"
)

func newTestModule(t *testing.T) *module.Table {
	t.Helper()
	m := module.New("m")
	if err := m.AddProp(ast.Span{}, "speed", ast.TNum{}); err != nil {
		t.Fatalf("unexpected: %v", err)
	}
	if err := m.AddProp(ast.Span{}, "armed", ast.TBool{}); err != nil {
		t.Fatalf("unexpected: %v", err)
	}
	if err := m.AddConf(ast.Span{}, "limit", ast.TInt{}); err != nil {
		t.Fatalf("unexpected: %v", err)
	}
	return m
}

func compileAndVerify(t *testing.T, mod *module.Table, e ast.Expr) *ir.Function {
	t.Helper()
	c := typecalc.New(mod)
	if _, err := c.Check(e); err != nil {
		t.Fatalf("typecalc: %v", err)
	}
	fn, err := New(mod).CompileExpr(e)
	if err != nil {
		t.Fatalf("codegen: %v", err)
	}
	return fn
}

func TestCompileComparisonWithPromotion(t *testing.T) {
	mod := newTestModule(t)
	b := ast.NewBuilder()
	e := b.Bin(ast.Span{}, ast.OpGt, b.Data(ast.Span{}, "speed"), b.Int(ast.Span{}, 10))
	compileAndVerify(t, mod, e)
}

func TestCompileImplication(t *testing.T) {
	mod := newTestModule(t)
	b := ast.NewBuilder()
	e := b.Bin(ast.Span{}, ast.OpImp, b.Data(ast.Span{}, "armed"), b.Bool(ast.Span{}, true))
	compileAndVerify(t, mod, e)
}

func TestCompileChoice(t *testing.T) {
	mod := newTestModule(t)
	b := ast.NewBuilder()
	choice := b.Choice(ast.Span{}, b.Data(ast.Span{}, "armed"), b.Int(ast.Span{}, 1), b.Float(ast.Span{}, 2.0))
	e := b.Bin(ast.Span{}, ast.OpGt, choice, b.Float(ast.Span{}, 0))
	compileAndVerify(t, mod, e)
}

func TestCompileUsOperator(t *testing.T) {
	mod := newTestModule(t)
	b := ast.NewBuilder()
	e := b.TBinary(ast.Span{}, ast.OpUs, nil, b.Data(ast.Span{}, "armed"), b.Bool(ast.Span{}, true))
	fn := compileAndVerify(t, mod, e)
	if len(fn.Blocks) < 3 {
		t.Fatalf("expected the UR loop to produce multiple blocks, got %d", len(fn.Blocks))
	}
}

func TestCompileRwOperator(t *testing.T) {
	mod := newTestModule(t)
	b := ast.NewBuilder()
	e := b.TBinary(ast.Span{}, ast.OpRw, nil, b.Data(ast.Span{}, "armed"), b.Bool(ast.Span{}, true))
	compileAndVerify(t, mod, e)
}

func TestCompilePastSwOperator(t *testing.T) {
	mod := newTestModule(t)
	b := ast.NewBuilder()
	e := b.TBinary(ast.Span{}, ast.OpSw, nil, b.Data(ast.Span{}, "armed"), b.Bool(ast.Span{}, true))
	compileAndVerify(t, mod, e)
}

func TestCompileXsOperator(t *testing.T) {
	mod := newTestModule(t)
	b := ast.NewBuilder()
	e := b.TUnary(ast.Span{}, ast.OpXs, nil, b.Data(ast.Span{}, "armed"))
	compileAndVerify(t, mod, e)
}

func TestCompileYwOperator(t *testing.T) {
	mod := newTestModule(t)
	b := ast.NewBuilder()
	e := b.TUnary(ast.Span{}, ast.OpYw, nil, b.Data(ast.Span{}, "armed"))
	compileAndVerify(t, mod, e)
}

func TestCompileGlobally(t *testing.T) {
	mod := newTestModule(t)
	b := ast.NewBuilder()
	e := b.TUnary(ast.Span{}, ast.OpG, nil, b.Data(ast.Span{}, "armed"))
	compileAndVerify(t, mod, e)
}

func TestCompileBoundedUnaryRetainsTimeAtCodegen(t *testing.T) {
	mod := newTestModule(t)
	b := ast.NewBuilder()
	time := b.Time(b.Int(ast.Span{}, 0), b.Int(ast.Span{}, 5))
	e := b.TUnary(ast.Span{}, ast.OpF, &time, b.Data(ast.Span{}, "armed"))
	compileAndVerify(t, mod, e)
}

func TestCompileIntegUnbounded(t *testing.T) {
	mod := newTestModule(t)
	b := ast.NewBuilder()
	integ := b.Integ(ast.Span{}, b.Data(ast.Span{}, "armed"), b.Data(ast.Span{}, "speed"), nil)
	e := b.Bin(ast.Span{}, ast.OpGe, integ, b.Float(ast.Span{}, 0))
	compileAndVerify(t, mod, e)
}

func TestCompileIntegBounded(t *testing.T) {
	mod := newTestModule(t)
	b := ast.NewBuilder()
	time := b.Time(b.Int(ast.Span{}, 0), b.Int(ast.Span{}, 100))
	integ := b.Integ(ast.Span{}, b.Data(ast.Span{}, "armed"), b.Data(ast.Span{}, "speed"), &time)
	e := b.Bin(ast.Span{}, ast.OpGe, integ, b.Float(ast.Span{}, 0))
	compileAndVerify(t, mod, e)
}

func compileSpec(t *testing.T, mod *module.Table, s *ast.Spec) *ir.Function {
	t.Helper()
	c := typecalc.New(mod)
	if err := c.CheckSpec(s); err != nil {
		t.Fatalf("typecalc: %v", err)
	}
	fn, err := New(mod).CompileSpec(s)
	if err != nil {
		t.Fatalf("codegen: %v", err)
	}
	return fn
}

func TestCompileSpecGlobally(t *testing.T) {
	mod := newTestModule(t)
	b := ast.NewBuilder()
	s := b.Spec(ast.Span{}, ast.SpecGlobally, nil, nil, nil, b.Data(ast.Span{}, "armed"))
	compileSpec(t, mod, s)
}

func TestCompileSpecBefore(t *testing.T) {
	mod := newTestModule(t)
	b := ast.NewBuilder()
	s := b.Spec(ast.Span{}, ast.SpecBefore, b.Data(ast.Span{}, "armed"), nil, nil, b.Data(ast.Span{}, "armed"))
	fn := compileSpec(t, mod, s)
	if len(fn.Blocks) < 5 {
		t.Fatalf("expected before()'s scan+scope blocks, got %d", len(fn.Blocks))
	}
}

func TestCompileSpecAfter(t *testing.T) {
	mod := newTestModule(t)
	b := ast.NewBuilder()
	s := b.Spec(ast.Span{}, ast.SpecAfter, b.Data(ast.Span{}, "armed"), nil, nil, b.Data(ast.Span{}, "armed"))
	compileSpec(t, mod, s)
}

func TestCompileSpecBetween(t *testing.T) {
	mod := newTestModule(t)
	b := ast.NewBuilder()
	notArmed := b.Not(ast.Span{}, b.Data(ast.Span{}, "armed"))
	s := b.Spec(ast.Span{}, ast.SpecBetween, nil, b.Data(ast.Span{}, "armed"), notArmed, b.Data(ast.Span{}, "armed"))
	compileSpec(t, mod, s)
}

func TestCompileSpecAfterUntil(t *testing.T) {
	mod := newTestModule(t)
	b := ast.NewBuilder()
	notArmed := b.Not(ast.Span{}, b.Data(ast.Span{}, "armed"))
	s := b.Spec(ast.Span{}, ast.SpecAfterUntil, nil, b.Data(ast.Span{}, "armed"), notArmed, b.Data(ast.Span{}, "armed"))
	compileSpec(t, mod, s)
}
