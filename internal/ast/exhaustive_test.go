package ast

import "testing"

// allConstructors lists one instance of every Expr constructor.
// TestPrintHandlesEveryConstructor runs this list through Print's type
// switch and fails on its "<?>" fallback if a case is missing — the
// closest a closed Go interface gets to the reference
// compiler's "visitor does not implement any handler" compile-time check
// (spec.md §9).
func allConstructors() []Expr {
	s := "x"
	return []Expr{
		&BoolLit{},
		&IntLit{},
		&FloatLit{},
		&StringLit{Value: &s},
		&Data{},
		&Context{},
		&Member{Base: &BoolLit{}},
		&Index{Base: &BoolLit{}, I: &IntLit{}},
		&Neg{Arg: &BoolLit{}},
		&BinOp{LHS: &BoolLit{}, RHS: &BoolLit{}},
		&Not{Arg: &BoolLit{}},
		&Choice{Cond: &BoolLit{}, Then: &BoolLit{}, Else: &BoolLit{}},
		&Integ{Body: &BoolLit{}, Height: &IntLit{}},
		&TemporalUnary{Arg: &BoolLit{}},
		&TemporalBinary{LHS: &BoolLit{}, RHS: &BoolLit{}},
		&At{Arg: &BoolLit{}},
		&Paren{Arg: &BoolLit{}},
		&Spec{Body: &BoolLit{}},
	}
}

func TestPrintHandlesEveryConstructor(t *testing.T) {
	for _, e := range allConstructors() {
		if got := Print(e); got == "<?>" {
			t.Errorf("Print has no case for %T", e)
		}
	}
}
