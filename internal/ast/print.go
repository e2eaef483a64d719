package ast

import "fmt"

// Print renders an expression back to a compact textual form. It exists for
// diagnostics and tests (golden comparisons of rewrite output); it is not
// the inverse of any front-end grammar.
func Print(e Expr) string {
	switch x := e.(type) {
	case *BoolLit:
		return fmt.Sprintf("%v", x.Value)
	case *IntLit:
		return fmt.Sprintf("%d", x.Value)
	case *FloatLit:
		return fmt.Sprintf("%g", x.Value)
	case *StringLit:
		if x.Value == nil {
			return `""`
		}
		return fmt.Sprintf("%q", *x.Value)
	case *Data:
		return "data(" + x.Name + ")"
	case *Context:
		if x.Name == "__curr__" || x.Name == "__conf__" {
			return x.Name
		}
		return "@" + x.Name
	case *Member:
		return Print(x.Base) + "." + x.Name
	case *Index:
		return Print(x.Base) + "[" + Print(x.I) + "]"
	case *Neg:
		return "-" + Print(x.Arg)
	case *Not:
		return "!" + Print(x.Arg)
	case *BinOp:
		return "(" + Print(x.LHS) + " " + x.Op.String() + " " + Print(x.RHS) + ")"
	case *Choice:
		return "(" + Print(x.Cond) + " ? " + Print(x.Then) + " : " + Print(x.Else) + ")"
	case *Integ:
		s := "int(" + Print(x.Body) + ", " + Print(x.Height)
		if x.Time != nil {
			s += ", " + printTime(*x.Time)
		}
		return s + ")"
	case *TemporalUnary:
		s := x.Op.String()
		if x.Time != nil {
			s += printTime(*x.Time)
		}
		return s + "(" + Print(x.Arg) + ")"
	case *TemporalBinary:
		s := x.Op.String()
		if x.Time != nil {
			s += printTime(*x.Time)
		}
		return s + "(" + Print(x.LHS) + ", " + Print(x.RHS) + ")"
	case *At:
		return "@" + x.Name + "{" + Print(x.Arg) + "}"
	case *Paren:
		return "(" + Print(x.Arg) + ")"
	case *Spec:
		switch x.Kind {
		case SpecGlobally:
			return "globally(" + Print(x.Body) + ")"
		case SpecBefore:
			return "before(" + Print(x.Cond) + ", " + Print(x.Body) + ")"
		case SpecAfter:
			return "after(" + Print(x.Cond) + ", " + Print(x.Body) + ")"
		case SpecBetween:
			return "between(" + Print(x.LHS) + ", " + Print(x.RHS) + ", " + Print(x.Body) + ")"
		case SpecAfterUntil:
			return "after_until(" + Print(x.LHS) + ", " + Print(x.RHS) + ", " + Print(x.Body) + ")"
		}
	}
	return "<?>"
}

func printTime(t TimeInterval) string {
	lo, hi := "-inf", "+inf"
	if t.Lo != nil {
		lo = Print(t.Lo)
	}
	if t.Hi != nil {
		hi = Print(t.Hi)
	}
	return "[" + lo + "," + hi + "]"
}
