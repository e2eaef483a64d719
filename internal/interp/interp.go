// Package interp is a test-only reference executor for internal/ir
// functions: it walks the emitted basic blocks directly, resolving φ-nodes
// by predecessor identity, against an internal/sample trace. Nothing in
// internal/codegen imports this package — it exists so spec.md §8's
// example traces and round-trip properties can be checked without a real
// JIT backend, mirroring the shape of the teacher's own tree-walking
// internal/eval (no bytecode, no compilation step of its own).
package interp

import (
	"fmt"

	"github.com/reftrace/stlc/internal/ast"
	"github.com/reftrace/stlc/internal/ir"
	"github.com/reftrace/stlc/internal/sample"
)

// Run evaluates fn against the window [frst,last] and the given
// configuration values (one per declared conf field, in BuildConfType
// order), returning the i1 result spec.md §4.5 commits every compiled
// function to producing.
func Run(fn *ir.Function, frst, last *sample.Cursor, conf []any) (bool, error) {
	env := map[ir.Value]any{}
	env[fn.Frst] = frst
	env[fn.Last] = last
	env[fn.Conf] = conf

	if len(fn.Blocks) == 0 {
		return false, fmt.Errorf("interp: function %q has no blocks", fn.Name)
	}

	cur := fn.Blocks[0]
	var prev *ir.Block

	for {
		if err := resolvePhis(cur, prev, env); err != nil {
			return false, err
		}
		for _, instr := range cur.Instrs {
			v, err := evalInstr(instr, env)
			if err != nil {
				return false, fmt.Errorf("interp: %s: %w", fn.Name, err)
			}
			env[instr] = v
		}
		if cur.Term == nil {
			return false, fmt.Errorf("interp: %s: block %q has no terminator", fn.Name, cur.Name)
		}
		switch cur.Term.Kind {
		case ir.TermRet:
			v := lookup(cur.Term.Value, env)
			b, ok := v.(bool)
			if !ok {
				return false, fmt.Errorf("interp: %s: return value is not bool (%T)", fn.Name, v)
			}
			return b, nil
		case ir.TermBr:
			prev, cur = cur, cur.Term.Targets[0]
		case ir.TermCondBr:
			cond, ok := lookup(cur.Term.Value, env).(bool)
			if !ok {
				return false, fmt.Errorf("interp: %s: branch condition is not bool", fn.Name)
			}
			prev = cur
			if cond {
				cur = cur.Term.Targets[0]
			} else {
				cur = cur.Term.Targets[1]
			}
		default:
			return false, fmt.Errorf("interp: %s: unknown terminator kind", fn.Name)
		}
	}
}

func resolvePhis(b, prev *ir.Block, env map[ir.Value]any) error {
	if len(b.Phis) == 0 {
		return nil
	}
	idx := -1
	for i, p := range b.Preds {
		if p == prev {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("block %q entered from a non-predecessor", b.Name)
	}
	for _, phi := range b.Phis {
		if idx >= len(phi.Incoming) {
			return fmt.Errorf("block %q: phi has %d incoming values, need index %d", b.Name, len(phi.Incoming), idx)
		}
		env[phi] = lookup(phi.Incoming[idx], env)
	}
	return nil
}

func lookup(v ir.Value, env map[ir.Value]any) any {
	if c, ok := v.(*ir.Const); ok {
		return constValue(c)
	}
	return env[v]
}

func constValue(c *ir.Const) any {
	switch c.Typ.(type) {
	case ast.TBool:
		return c.Bool
	case ast.TInt:
		return c.Int
	case ast.TNum:
		return c.Float
	case ast.TString:
		if c.Str == nil {
			return ""
		}
		return *c.Str
	default:
		return nil
	}
}

func evalInstr(i *ir.Instr, env map[ir.Value]any) (any, error) {
	args := make([]any, len(i.Args))
	for k, a := range i.Args {
		args[k] = lookup(a, env)
	}
	switch i.Op {
	case ir.OpAdd:
		return numBinOp(args[0], args[1], func(a, b int64) any { return a + b }, func(a, b float64) any { return a + b })
	case ir.OpSub:
		return numBinOp(args[0], args[1], func(a, b int64) any { return a - b }, func(a, b float64) any { return a - b })
	case ir.OpMul:
		return numBinOp(args[0], args[1], func(a, b int64) any { return a * b }, func(a, b float64) any { return a * b })
	case ir.OpDiv:
		return numBinOp(args[0], args[1], func(a, b int64) any { return a / b }, func(a, b float64) any { return a / b })
	case ir.OpRem:
		return args[0].(int64) % args[1].(int64), nil
	case ir.OpSIToFP:
		return float64(args[0].(int64)), nil
	case ir.OpNeg:
		if n, ok := args[0].(int64); ok {
			return -n, nil
		}
		return -args[0].(float64), nil
	case ir.OpAnd:
		return args[0].(bool) && args[1].(bool), nil
	case ir.OpOr:
		return args[0].(bool) || args[1].(bool), nil
	case ir.OpXor:
		return args[0].(bool) != args[1].(bool), nil
	case ir.OpNot:
		return !args[0].(bool), nil
	case ir.OpEq:
		return valuesEqual(args[0], args[1]), nil
	case ir.OpNe:
		return !valuesEqual(args[0], args[1]), nil
	case ir.OpLt:
		return cmp(args[0], args[1]) < 0, nil
	case ir.OpLe:
		return cmp(args[0], args[1]) <= 0, nil
	case ir.OpGt:
		return cmp(args[0], args[1]) > 0, nil
	case ir.OpGe:
		return cmp(args[0], args[1]) >= 0, nil
	case ir.OpLoad, ir.OpFieldAddr:
		return loadField(args[0], i.Index)
	case ir.OpElemAddr:
		elems, ok := args[0].([]any)
		if !ok {
			return nil, fmt.Errorf("elem_addr on non-array value")
		}
		return elems[args[1].(int64)], nil
	case ir.OpGetNext:
		return args[0].(*sample.Cursor).Next(), nil
	case ir.OpGetPrev:
		return args[0].(*sample.Cursor).Prev(), nil
	case ir.OpCall:
		return callBuiltin(i.Field, args)
	case ir.OpIntern:
		return args[0], nil
	default:
		return nil, fmt.Errorf("unhandled op %s", i.Op)
	}
}

// loadField is shared by OpLoad (prop_t/conf_t field access) and
// OpFieldAddr (user struct field access): this IR never threads a
// separate address-then-load step, so both resolve directly to the
// field's runtime value.
func loadField(base any, index int) (any, error) {
	switch b := base.(type) {
	case *sample.Cursor:
		if index == 0 {
			return b.Time(), nil
		}
		return b.Sample().Props[index-1], nil
	case []any:
		return b[index], nil
	default:
		return nil, fmt.Errorf("field access on unsupported base type %T", base)
	}
}

func callBuiltin(name string, args []any) (any, error) {
	switch name {
	case "imax64":
		a, b := args[0].(int64), args[1].(int64)
		if a > b {
			return a, nil
		}
		return b, nil
	case "imin64":
		a, b := args[0].(int64), args[1].(int64)
		if a < b {
			return a, nil
		}
		return b, nil
	default:
		return nil, fmt.Errorf("unknown builtin %q", name)
	}
}

func numBinOp(a, b any, intOp func(a, b int64) any, floatOp func(a, b float64) any) (any, error) {
	if ai, ok := a.(int64); ok {
		bi, ok := b.(int64)
		if !ok {
			return nil, fmt.Errorf("mixed int/float operand without promotion")
		}
		return intOp(ai, bi), nil
	}
	af, ok := a.(float64)
	if !ok {
		return nil, fmt.Errorf("operand is neither int64 nor float64 (%T)", a)
	}
	bf, ok := b.(float64)
	if !ok {
		return nil, fmt.Errorf("mixed float/int operand without promotion")
	}
	return floatOp(af, bf), nil
}

// cmp compares two runtime values for the ordered-comparison ops. Sample
// pointers compare by Index alone — a pure address comparison, the same
// one internal/codegen's withinWindow compiles to — so it never touches
// Trace.Samples and stays safe even for a cursor one step past the
// trace's end. Everything else falls through to numeric comparison.
func cmp(a, b any) int {
	if ca, ok := a.(*sample.Cursor); ok {
		cb := b.(*sample.Cursor)
		switch {
		case ca.Index < cb.Index:
			return -1
		case ca.Index > cb.Index:
			return 1
		default:
			return 0
		}
	}
	return numCmp(a, b)
}

func numCmp(a, b any) int {
	af, aIsF := a.(float64)
	bf, bIsF := b.(float64)
	if aIsF || bIsF {
		if !aIsF {
			af = float64(a.(int64))
		}
		if !bIsF {
			bf = float64(b.(int64))
		}
		switch {
		case af < bf:
			return -1
		case af > bf:
			return 1
		default:
			return 0
		}
	}
	ai, bi := a.(int64), b.(int64)
	switch {
	case ai < bi:
		return -1
	case ai > bi:
		return 1
	default:
		return 0
	}
}

func valuesEqual(a, b any) bool {
	if ca, ok := a.(*sample.Cursor); ok {
		cb, ok := b.(*sample.Cursor)
		return ok && ca.Equal(cb)
	}
	return a == b
}
