package typecalc

import (
	"testing"

	"github.com/reftrace/stlc/internal/ast"
	"github.com/reftrace/stlc/internal/errors"
	"github.com/reftrace/stlc/internal/module"
)

func newModule(t *testing.T) *module.Table {
	t.Helper()
	m := module.New("m")
	if err := m.AddProp(ast.Span{}, "speed", ast.TNum{}); err != nil {
		t.Fatalf("unexpected: %v", err)
	}
	if err := m.AddProp(ast.Span{}, "gear", ast.TEnum{Labels: []string{"P", "R", "N", "D"}}); err != nil {
		t.Fatalf("unexpected: %v", err)
	}
	if err := m.AddConf(ast.Span{}, "limit", ast.TInt{}); err != nil {
		t.Fatalf("unexpected: %v", err)
	}
	return m
}

func TestLiteralTypes(t *testing.T) {
	b := ast.NewBuilder()
	c := New(newModule(t))

	cases := []struct {
		e    ast.Expr
		want ast.Type
	}{
		{b.Bool(ast.Span{}, true), ast.TBool{}},
		{b.Int(ast.Span{}, 1), ast.TInt{}},
		{b.Float(ast.Span{}, 1.5), ast.TNum{}},
	}
	for _, tc := range cases {
		got, err := c.Check(tc.e)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !ast.SameType(got, tc.want) {
			t.Fatalf("expected %s, got %s", tc.want, got)
		}
	}
}

func TestDataResolvesPropOrConf(t *testing.T) {
	b := ast.NewBuilder()
	c := New(newModule(t))

	speed := b.Data(ast.Span{}, "speed")
	got, err := c.Check(speed)
	if err != nil {
		t.Fatalf("unexpected: %v", err)
	}
	if _, ok := got.(ast.TNum); !ok {
		t.Fatalf("expected num, got %s", got)
	}

	limit := b.Data(ast.Span{}, "limit")
	got, err = c.Check(limit)
	if err != nil {
		t.Fatalf("unexpected: %v", err)
	}
	if _, ok := got.(ast.TInt); !ok {
		t.Fatalf("expected int, got %s", got)
	}
}

func TestUnknownDataFails(t *testing.T) {
	b := ast.NewBuilder()
	c := New(newModule(t))

	_, err := c.Check(b.Data(ast.Span{}, "nope"))
	r, ok := errors.AsReport(err)
	if !ok || r.Code != errors.TYP001UnknownName {
		t.Fatalf("expected TYP001, got %v", err)
	}
}

func TestCurrContextIsSampleType(t *testing.T) {
	b := ast.NewBuilder()
	c := New(newModule(t))

	got, err := c.Check(b.Context(ast.Span{}, "__curr__"))
	if err != nil {
		t.Fatalf("unexpected: %v", err)
	}
	if _, ok := got.(ast.TSample); !ok {
		t.Fatalf("expected sample*, got %s", got)
	}
}

func TestArithmeticPromotesToNum(t *testing.T) {
	b := ast.NewBuilder()
	c := New(newModule(t))

	e := b.Bin(ast.Span{}, ast.OpAdd, b.Int(ast.Span{}, 1), b.Float(ast.Span{}, 2.0))
	got, err := c.Check(e)
	if err != nil {
		t.Fatalf("unexpected: %v", err)
	}
	if _, ok := got.(ast.TNum); !ok {
		t.Fatalf("expected int+num to promote to num, got %s", got)
	}
}

func TestArithmeticIntStaysInt(t *testing.T) {
	b := ast.NewBuilder()
	c := New(newModule(t))

	e := b.Bin(ast.Span{}, ast.OpAdd, b.Int(ast.Span{}, 1), b.Int(ast.Span{}, 2))
	got, err := c.Check(e)
	if err != nil {
		t.Fatalf("unexpected: %v", err)
	}
	if _, ok := got.(ast.TInt); !ok {
		t.Fatalf("expected int+int to stay int, got %s", got)
	}
}

func TestLogicalOperandsMustBeBoolean(t *testing.T) {
	b := ast.NewBuilder()
	c := New(newModule(t))

	e := b.Bin(ast.Span{}, ast.OpAnd, b.Int(ast.Span{}, 1), b.Bool(ast.Span{}, true))
	_, err := c.Check(e)
	r, ok := errors.AsReport(err)
	if !ok || r.Code != errors.TYP008NonBoolean {
		t.Fatalf("expected TYP008, got %v", err)
	}
}

func TestMemberAccessOnEnumYieldsBoolean(t *testing.T) {
	b := ast.NewBuilder()
	c := New(newModule(t))

	e := b.Member(ast.Span{}, b.Data(ast.Span{}, "gear"), "D")
	got, err := c.Check(e)
	if err != nil {
		t.Fatalf("unexpected: %v", err)
	}
	if _, ok := got.(ast.TBool); !ok {
		t.Fatalf("expected enum member test to yield bool, got %s", got)
	}
}

func TestIntegRequiresBooleanBodyAndNumericHeight(t *testing.T) {
	b := ast.NewBuilder()
	c := New(newModule(t))

	good := b.Integ(ast.Span{}, b.Bool(ast.Span{}, true), b.Data(ast.Span{}, "speed"), nil)
	got, err := c.Check(good)
	if err != nil {
		t.Fatalf("unexpected: %v", err)
	}
	if _, ok := got.(ast.TNum); !ok {
		t.Fatalf("expected int() to carry height's type, got %s", got)
	}

	bad := b.Integ(ast.Span{}, b.Data(ast.Span{}, "speed"), b.Data(ast.Span{}, "speed"), nil)
	_, err = c.Check(bad)
	r, ok := errors.AsReport(err)
	if !ok || r.Code != errors.TYP009IntegBadBody {
		t.Fatalf("expected TYP009, got %v", err)
	}
}

func TestTemporalOperandsMustBeBoolean(t *testing.T) {
	b := ast.NewBuilder()
	c := New(newModule(t))

	bad := b.TUnary(ast.Span{}, ast.OpG, nil, b.Data(ast.Span{}, "speed"))
	_, err := c.Check(bad)
	r, ok := errors.AsReport(err)
	if !ok || r.Code != errors.TYP008NonBoolean {
		t.Fatalf("expected TYP008, got %v", err)
	}
}

func TestChoiceUnifiesArmsWithPromotion(t *testing.T) {
	b := ast.NewBuilder()
	c := New(newModule(t))

	e := b.Choice(ast.Span{}, b.Bool(ast.Span{}, true), b.Int(ast.Span{}, 1), b.Float(ast.Span{}, 2.0))
	got, err := c.Check(e)
	if err != nil {
		t.Fatalf("unexpected: %v", err)
	}
	if _, ok := got.(ast.TNum); !ok {
		t.Fatalf("expected ternary to promote to num, got %s", got)
	}
}

func TestIsIdempotent(t *testing.T) {
	b := ast.NewBuilder()
	c := New(newModule(t))

	e := b.Bin(ast.Span{}, ast.OpAdd, b.Data(ast.Span{}, "speed"), b.Int(ast.Span{}, 1))
	first, err := c.Check(e)
	if err != nil {
		t.Fatalf("unexpected: %v", err)
	}
	second, err := c.Check(e)
	if err != nil {
		t.Fatalf("unexpected: %v", err)
	}
	if !ast.SameType(first, second) {
		t.Fatalf("expected idempotent result, got %s then %s", first, second)
	}
}
