// Package typecalc implements the bottom-up type annotator (spec.md §4.3):
// a single pass over an expression tree that assigns every node a result
// type drawn from internal/ast's closed Type sum, or reports a TypeError
// naming the source position at which inference failed.
//
// The pass is idempotent — re-running it on an already-annotated tree
// recomputes the same types — which is what lets cmd/stlc and internal/repl
// call it again on the tree internal/rewrite returns (spec.md §4.3, last
// paragraph).
package typecalc

import (
	"github.com/reftrace/stlc/internal/ast"
	"github.com/reftrace/stlc/internal/errors"
	"github.com/reftrace/stlc/internal/module"
)

// Calculator annotates expressions against one module's declared names and
// binder stack.
type Calculator struct {
	mod *module.Table
}

// New returns a Calculator bound to mod.
func New(mod *module.Table) *Calculator {
	return &Calculator{mod: mod}
}

// Check annotates e and every descendant, returning the first TypeError
// encountered (depth-first, left to right).
func (c *Calculator) Check(e ast.Expr) (ast.Type, error) {
	if e == nil {
		return ast.TVoid{}, nil
	}
	typ, err := c.infer(e)
	if err != nil {
		return nil, err
	}
	e.SetType(typ)
	return typ, nil
}

// CheckSpec annotates every sub-expression used by a specification scope
// and the scope's own required Boolean shape.
func (c *Calculator) CheckSpec(s *ast.Spec) error {
	check := func(e ast.Expr, what string) error {
		if e == nil {
			return nil
		}
		typ, err := c.Check(e)
		if err != nil {
			return err
		}
		if _, ok := typ.(ast.TBool); !ok {
			return errors.New(errors.PhaseTypeCalc, errors.TYP008NonBoolean, e.Position(),
				"%s must be Boolean, got %s", what, typ)
		}
		return nil
	}

	switch s.Kind {
	case ast.SpecGlobally:
		return check(s.Body, "globally body")
	case ast.SpecBefore, ast.SpecAfter:
		if err := check(s.Cond, "scope condition"); err != nil {
			return err
		}
		return check(s.Body, "scope body")
	case ast.SpecBetween, ast.SpecAfterUntil:
		if err := check(s.LHS, "scope lower bound"); err != nil {
			return err
		}
		if err := check(s.RHS, "scope upper bound"); err != nil {
			return err
		}
		return check(s.Body, "scope body")
	default:
		return errors.New(errors.PhaseTypeCalc, errors.TYP008NonBoolean, s.Position(), "unknown specification kind")
	}
}

func (c *Calculator) infer(e ast.Expr) (ast.Type, error) {
	switch n := e.(type) {
	case *ast.BoolLit:
		return ast.TBool{}, nil
	case *ast.IntLit:
		return ast.TInt{}, nil
	case *ast.FloatLit:
		return ast.TNum{}, nil
	case *ast.StringLit:
		return ast.TString{}, nil

	case *ast.Data:
		if typ, err := c.mod.GetProp(n.Position(), n.Name); err == nil {
			return typ, nil
		}
		if typ, err := c.mod.GetConf(n.Position(), n.Name); err == nil {
			return typ, nil
		}
		return nil, errors.Unknown(errors.PhaseTypeCalc, errors.TYP001UnknownName, n.Position(), "data reference", n.Name)

	case *ast.Context:
		switch n.Name {
		case "__curr__", "__frst__", "__last__", "__next__", "__prev__":
			return ast.TSample{}, nil
		case "__conf__":
			return ast.TConf{}, nil
		default:
			typ, err := c.mod.LookupContext(n.Position(), n.Name)
			if err != nil {
				return nil, errors.Unknown(errors.PhaseTypeCalc, errors.TYP001UnknownName, n.Position(), "binder", n.Name)
			}
			return typ, nil
		}

	case *ast.Member:
		baseType, err := c.Check(n.Base)
		if err != nil {
			return nil, err
		}
		switch bt := baseType.(type) {
		case ast.TStruct:
			idx := bt.FieldIndex(n.Name)
			if idx < 0 {
				return nil, errors.Unknown(errors.PhaseTypeCalc, errors.TYP003UnknownField, n.Position(), "field", n.Name)
			}
			return bt.Fields[idx].Type, nil
		case ast.TEnum:
			if bt.Index(n.Name) < 0 {
				return nil, errors.Unknown(errors.PhaseTypeCalc, errors.TYP003UnknownField, n.Position(), "label", n.Name)
			}
			return ast.TBool{}, nil
		default:
			return nil, errors.New(errors.PhaseTypeCalc, errors.TYP002MemberOnNonStruct, n.Position(),
				"member access on non-struct/enum type %s", baseType)
		}

	case *ast.Index:
		baseType, err := c.Check(n.Base)
		if err != nil {
			return nil, err
		}
		arr, ok := baseType.(ast.TArray)
		if !ok {
			return nil, errors.New(errors.PhaseTypeCalc, errors.TYP004IndexOnNonArray, n.Position(),
				"index of non-array type %s", baseType)
		}
		idxType, err := c.Check(n.I)
		if err != nil {
			return nil, err
		}
		if _, ok := idxType.(ast.TInt); !ok {
			return nil, errors.New(errors.PhaseTypeCalc, errors.TYP005NonIntegerIndex, n.I.Position(),
				"array index must be integer, got %s", idxType)
		}
		return arr.Elem, nil

	case *ast.Neg:
		argType, err := c.Check(n.Arg)
		if err != nil {
			return nil, err
		}
		if !ast.IsNumeric(argType) {
			return nil, errors.New(errors.PhaseTypeCalc, errors.TYP006ArithmeticMismatch, n.Position(),
				"negation of non-numeric type %s", argType)
		}
		return argType, nil

	case *ast.BinOp:
		return c.inferBinOp(n)

	case *ast.Not:
		argType, err := c.Check(n.Arg)
		if err != nil {
			return nil, err
		}
		if _, ok := argType.(ast.TBool); !ok {
			return nil, errors.New(errors.PhaseTypeCalc, errors.TYP008NonBoolean, n.Position(),
				"operand of ! must be Boolean, got %s", argType)
		}
		return ast.TBool{}, nil

	case *ast.Choice:
		condType, err := c.Check(n.Cond)
		if err != nil {
			return nil, err
		}
		if _, ok := condType.(ast.TBool); !ok {
			return nil, errors.New(errors.PhaseTypeCalc, errors.TYP010ChoiceCondNotBool, n.Cond.Position(),
				"ternary condition must be Boolean, got %s", condType)
		}
		thenType, err := c.Check(n.Then)
		if err != nil {
			return nil, err
		}
		elseType, err := c.Check(n.Else)
		if err != nil {
			return nil, err
		}
		return unify(n.Position(), thenType, elseType)

	case *ast.Integ:
		bodyType, err := c.Check(n.Body)
		if err != nil {
			return nil, err
		}
		if _, ok := bodyType.(ast.TBool); !ok {
			return nil, errors.New(errors.PhaseTypeCalc, errors.TYP009IntegBadBody, n.Body.Position(),
				"int() body must be Boolean, got %s", bodyType)
		}
		heightType, err := c.Check(n.Height)
		if err != nil {
			return nil, err
		}
		if !ast.IsNumeric(heightType) {
			return nil, errors.New(errors.PhaseTypeCalc, errors.TYP009IntegBadBody, n.Height.Position(),
				"int() height must be numeric, got %s", heightType)
		}
		if err := c.checkTimeInterval(n.Time); err != nil {
			return nil, err
		}
		return heightType, nil

	case *ast.TemporalUnary:
		if err := c.checkBoolean(n.Arg, "temporal operand"); err != nil {
			return nil, err
		}
		if err := c.checkTimeInterval(n.Time); err != nil {
			return nil, err
		}
		return ast.TBool{}, nil

	case *ast.TemporalBinary:
		if err := c.checkBoolean(n.LHS, "temporal left operand"); err != nil {
			return nil, err
		}
		if err := c.checkBoolean(n.RHS, "temporal right operand"); err != nil {
			return nil, err
		}
		if err := c.checkTimeInterval(n.Time); err != nil {
			return nil, err
		}
		return ast.TBool{}, nil

	case *ast.At:
		return c.Check(n.Arg)

	case *ast.Paren:
		return c.Check(n.Arg)

	default:
		return nil, errors.New(errors.PhaseTypeCalc, errors.TYP001UnknownName, e.Position(), "unrecognized expression node")
	}
}

func (c *Calculator) checkBoolean(e ast.Expr, what string) error {
	typ, err := c.Check(e)
	if err != nil {
		return err
	}
	if _, ok := typ.(ast.TBool); !ok {
		return errors.New(errors.PhaseTypeCalc, errors.TYP008NonBoolean, e.Position(), "%s must be Boolean, got %s", what, typ)
	}
	return nil
}

func (c *Calculator) checkTimeInterval(t *ast.TimeInterval) error {
	if t == nil {
		return nil
	}
	if t.Lo != nil {
		if _, err := c.requireInt(t.Lo); err != nil {
			return err
		}
	}
	if t.Hi != nil {
		if _, err := c.requireInt(t.Hi); err != nil {
			return err
		}
	}
	return nil
}

func (c *Calculator) requireInt(e ast.Expr) (ast.Type, error) {
	typ, err := c.Check(e)
	if err != nil {
		return nil, err
	}
	if _, ok := typ.(ast.TInt); !ok {
		return nil, errors.New(errors.PhaseTypeCalc, errors.TYP005NonIntegerIndex, e.Position(),
			"time bound must be integer, got %s", typ)
	}
	return typ, nil
}

func (c *Calculator) inferBinOp(n *ast.BinOp) (ast.Type, error) {
	lhsType, err := c.Check(n.LHS)
	if err != nil {
		return nil, err
	}
	rhsType, err := c.Check(n.RHS)
	if err != nil {
		return nil, err
	}

	switch {
	case n.Op.IsArithmetic():
		if !ast.IsNumeric(lhsType) || !ast.IsNumeric(rhsType) {
			return nil, errors.New(errors.PhaseTypeCalc, errors.TYP006ArithmeticMismatch, n.Position(),
				"arithmetic operands must be numeric, got %s and %s", lhsType, rhsType)
		}
		return promote(lhsType, rhsType), nil

	case n.Op.IsComparison():
		if !ast.IsNumeric(lhsType) || !ast.IsNumeric(rhsType) {
			if !ast.SameType(lhsType, rhsType) {
				return nil, errors.New(errors.PhaseTypeCalc, errors.TYP007ComparisonMismatch, n.Position(),
					"comparison operands must match, got %s and %s", lhsType, rhsType)
			}
		}
		return ast.TBool{}, nil

	case n.Op == ast.OpEqu:
		if _, ok := lhsType.(ast.TBool); !ok {
			return nil, errors.New(errors.PhaseTypeCalc, errors.TYP011EquNotBoolean, n.LHS.Position(),
				"<=> operand must be Boolean, got %s", lhsType)
		}
		if _, ok := rhsType.(ast.TBool); !ok {
			return nil, errors.New(errors.PhaseTypeCalc, errors.TYP011EquNotBoolean, n.RHS.Position(),
				"<=> operand must be Boolean, got %s", rhsType)
		}
		return ast.TBool{}, nil

	case n.Op == ast.OpAnd, n.Op == ast.OpOr, n.Op == ast.OpXor, n.Op == ast.OpImp:
		if _, ok := lhsType.(ast.TBool); !ok {
			return nil, errors.New(errors.PhaseTypeCalc, errors.TYP008NonBoolean, n.LHS.Position(),
				"operand of %s must be Boolean, got %s", n.Op, lhsType)
		}
		if _, ok := rhsType.(ast.TBool); !ok {
			return nil, errors.New(errors.PhaseTypeCalc, errors.TYP008NonBoolean, n.RHS.Position(),
				"operand of %s must be Boolean, got %s", n.Op, rhsType)
		}
		return ast.TBool{}, nil

	default:
		return nil, errors.New(errors.PhaseTypeCalc, errors.TYP006ArithmeticMismatch, n.Position(), "unrecognized operator")
	}
}

// promote implements the int/num promotion rule (spec.md §4.3): int op int
// stays int; any num operand promotes the result to num.
func promote(a, b ast.Type) ast.Type {
	if _, ok := a.(ast.TNum); ok {
		return ast.TNum{}
	}
	if _, ok := b.(ast.TNum); ok {
		return ast.TNum{}
	}
	return ast.TInt{}
}

// unify resolves ternary arm types under int->num promotion, failing if the
// arms are neither both numeric nor structurally identical.
func unify(span ast.Span, a, b ast.Type) (ast.Type, error) {
	if ast.IsNumeric(a) && ast.IsNumeric(b) {
		return promote(a, b), nil
	}
	if ast.SameType(a, b) {
		return a, nil
	}
	return nil, errors.New(errors.PhaseTypeCalc, errors.TYP006ArithmeticMismatch, span,
		"ternary arms must unify, got %s and %s", a, b)
}
