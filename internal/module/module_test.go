package module

import (
	"testing"

	"github.com/reftrace/stlc/internal/ast"
	"github.com/reftrace/stlc/internal/errors"
)

func TestAddTypeDuplicateFails(t *testing.T) {
	m := New("m")
	if err := m.AddType(ast.Span{}, "Gear", ast.TEnum{Labels: []string{"P", "R", "N", "D"}}); err != nil {
		t.Fatalf("unexpected error on first add: %v", err)
	}
	err := m.AddType(ast.Span{}, "Gear", ast.TInt{})
	if err == nil {
		t.Fatalf("expected duplicate type to fail")
	}
	r, ok := errors.AsReport(err)
	if !ok || r.Code != errors.MOD001DuplicateType {
		t.Fatalf("expected MOD001, got %v", err)
	}
}

func TestNamespacesAreDisjoint(t *testing.T) {
	m := New("m")
	if err := m.AddType(ast.Span{}, "speed", ast.TNum{}); err != nil {
		t.Fatalf("unexpected: %v", err)
	}
	err := m.AddProp(ast.Span{}, "speed", ast.TNum{})
	if err == nil {
		t.Fatalf("expected namespace clash to fail")
	}
	r, ok := errors.AsReport(err)
	if !ok || r.Code != errors.MOD004NamespaceClash {
		t.Fatalf("expected MOD004, got %v", err)
	}
}

func TestInsertionOrderPreserved(t *testing.T) {
	m := New("m")
	names := []string{"c", "a", "b"}
	for _, n := range names {
		if err := m.AddProp(ast.Span{}, n, ast.TBool{}); err != nil {
			t.Fatalf("unexpected: %v", err)
		}
	}
	got := m.GetPropNames()
	for i, n := range names {
		if got[i] != n {
			t.Fatalf("expected insertion order %v, got %v", names, got)
		}
	}
}

func TestUnknownLookupsReportCodes(t *testing.T) {
	m := New("m")
	cases := []struct {
		call func() error
		code string
	}{
		{func() error { _, err := m.GetType(ast.Span{}, "x"); return err }, errors.MOD005UnknownType},
		{func() error { _, err := m.GetProp(ast.Span{}, "x"); return err }, errors.MOD006UnknownProp},
		{func() error { _, err := m.GetConf(ast.Span{}, "x"); return err }, errors.MOD007UnknownConf},
	}
	for _, c := range cases {
		err := c.call()
		r, ok := errors.AsReport(err)
		if !ok || r.Code != c.code {
			t.Fatalf("expected %s, got %v", c.code, err)
		}
	}
}

func TestContextStackResolvesInnermostFirst(t *testing.T) {
	m := New("m")
	m.PushContext("starting", ast.TStruct{Name: "prop_t"})
	m.PushContext("starting", ast.TBool{})

	typ, err := m.LookupContext(ast.Span{}, "starting")
	if err != nil {
		t.Fatalf("unexpected: %v", err)
	}
	if _, ok := typ.(ast.TBool); !ok {
		t.Fatalf("expected innermost binder to shadow, got %v", typ)
	}

	if err := m.PopContext(ast.Span{}); err != nil {
		t.Fatalf("unexpected: %v", err)
	}
	typ, err = m.LookupContext(ast.Span{}, "starting")
	if err != nil {
		t.Fatalf("unexpected: %v", err)
	}
	if _, ok := typ.(ast.TStruct); !ok {
		t.Fatalf("expected outer binder after pop, got %v", typ)
	}
}

func TestPopEmptyContextFails(t *testing.T) {
	m := New("m")
	err := m.PopContext(ast.Span{})
	if err == nil {
		t.Fatalf("expected pop of empty stack to fail")
	}
	r, ok := errors.AsReport(err)
	if !ok || r.Code != errors.MOD008UnknownContext {
		t.Fatalf("expected MOD008, got %v", err)
	}
}

func TestAddExprAndSpecRecordedInOrder(t *testing.T) {
	m := New("m")
	b := ast.NewBuilder()
	e1 := b.Bool(ast.Span{}, true)
	e2 := b.Bool(ast.Span{}, false)
	m.AddExpr(e1)
	m.AddExpr(e2)

	got := m.GetExprs()
	if len(got) != 2 || got[0] != ast.Expr(e1) || got[1] != ast.Expr(e2) {
		t.Fatalf("expected exprs recorded in insertion order, got %v", got)
	}
}
