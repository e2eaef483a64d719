package rewrite

import "github.com/reftrace/stlc/internal/ast"

// Verify walks a rewritten tree and reports whether it satisfies the
// spec.md §3 post-rewrite invariants: no Paren wraps another Paren or an
// atom, and no binary temporal operator still carries a TimeInterval
// (unary bounded operators are exempt — see the package doc comment).
func Verify(e ast.Expr) bool {
	switch n := e.(type) {
	case *ast.BoolLit, *ast.IntLit, *ast.FloatLit, *ast.StringLit, *ast.Data, *ast.Context:
		return true
	case *ast.Member:
		return Verify(n.Base)
	case *ast.Index:
		return Verify(n.Base) && Verify(n.I)
	case *ast.Neg:
		return Verify(n.Arg)
	case *ast.BinOp:
		return Verify(n.LHS) && Verify(n.RHS)
	case *ast.Not:
		return Verify(n.Arg)
	case *ast.Choice:
		return Verify(n.Cond) && Verify(n.Then) && Verify(n.Else)
	case *ast.Integ:
		return Verify(n.Body) && Verify(n.Height)
	case *ast.TemporalUnary:
		return Verify(n.Arg)
	case *ast.TemporalBinary:
		return n.Time == nil && Verify(n.LHS) && Verify(n.RHS)
	case *ast.At:
		return Verify(n.Arg)
	case *ast.Paren:
		if _, ok := n.Arg.(*ast.Paren); ok {
			return false
		}
		return !isParenAtom(n.Arg) && Verify(n.Arg)
	default:
		return false
	}
}
