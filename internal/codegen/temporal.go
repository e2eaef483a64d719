package codegen

import (
	"github.com/reftrace/stlc/internal/ast"
	"github.com/reftrace/stlc/internal/errors"
	"github.com/reftrace/stlc/internal/ir"
)

// charConst is the {rhsV, lhsV, endV} characteristic-constant triple
// spec.md §4.5 gives for each binary temporal operator: rhsV is returned
// the instant RHS holds, lhsV gates whether continuing to step requires
// LHS to still hold, and endV is returned if the trace boundary (or a
// bounded bound) is reached before RHS ever holds.
type charConst struct {
	rhsV, lhsV, endV bool
}

var binaryCharConsts = map[ast.TemporalOp]charConst{
	ast.OpUs: {rhsV: true, lhsV: false, endV: false},
	ast.OpUw: {rhsV: true, lhsV: false, endV: true},
	ast.OpRs: {rhsV: false, lhsV: true, endV: false},
	ast.OpRw: {rhsV: false, lhsV: true, endV: true},
	ast.OpSs: {rhsV: true, lhsV: false, endV: false},
	ast.OpSw: {rhsV: true, lhsV: false, endV: true},
	ast.OpTs: {rhsV: false, lhsV: true, endV: false},
	ast.OpTw: {rhsV: false, lhsV: true, endV: true},
}

// emitTemporalUnary lowers G/F/Xs/Xw/H/O/Ys/Yw. Rewrite intentionally
// leaves these operators' TimeInterval in place (see DESIGN.md), so a
// bounded unary loop is compiled directly here: the step/iterate pattern
// stays the same as the unbounded case, just gated on an extra distance
// check against the window's lo/hi bound.
func (g *Generator) emitTemporalUnary(b *ir.Block, n *ast.TemporalUnary) (ir.Value, *ir.Block, error) {
	switch n.Op {
	case ast.OpG, ast.OpF, ast.OpH, ast.OpO:
		return g.emitForallExists(b, n)
	case ast.OpXs, ast.OpXw, ast.OpYs, ast.OpYw:
		return g.emitXY(b, n)
	default:
		return nil, nil, errors.New(errors.PhaseCodeGen, errors.GEN001UnsupportedShape, n.Position(),
			"unexpected unary temporal operator %s", n.Op)
	}
}

// emitForallExists compiles G (forall, future), H (forall, past), F
// (exists, future), O (exists, past). The loop walks from __curr__ to
// __last__ (future) or from __frst__ to __curr__ (past), visiting every
// sample of the walk with no early exit once the accumulator is settled,
// following the
// reference's while/outer/inner/body/next/tail basic-block skeleton. A
// non-nil Time narrows the walk further with a second, gated check: ptr's
// raw array bound is tested first (a pure pointer compare, safe even one
// step past the trace's end), and only once that passes is ptr's
// __time__ loaded and compared against the interval's absolute limit.
func (g *Generator) emitForallExists(b *ir.Block, n *ast.TemporalUnary) (ir.Value, *ir.Block, error) {
	isForall := n.Op == ast.OpG || n.Op == ast.OpH
	isFuture := n.Op == ast.OpG || n.Op == ast.OpF

	start := g.curSample()
	var windowBound ir.Value
	if isFuture {
		windowBound = g.effLast()
	} else {
		windowBound = g.effFrst()
	}

	timeBound, b, err := g.timeIntervalBound(b, start, n.Time, isFuture)
	if err != nil {
		return nil, nil, err
	}

	headB := g.fn.NewBlock("tloop.head")
	checkB := g.fn.NewBlock("tloop.timecheck")
	bodyB := g.fn.NewBlock("tloop.body")
	exitB := g.fn.NewBlock("tloop.exit")
	g.fn.SetBr(b, headB)

	ptr := g.fn.AddPhi(headB, ast.TSample{})
	ptr.AddIncoming(start)
	acc := g.fn.AddPhi(headB, ast.TBool{})
	acc.AddIncoming(ir.ConstBool(isForall)) // true for forall (vacuous), false for exists

	inRange := g.withinWindow(headB, ptr, windowBound, isFuture)
	g.fn.SetCondBr(headB, inRange, checkB, exitB)

	var timeOk ir.Value
	if timeBound != nil {
		timeOk = g.withinTimeBound(checkB, ptr, timeBound, isFuture)
	} else {
		timeOk = ir.ConstBool(true)
	}
	g.fn.SetCondBr(checkB, timeOk, bodyB, exitB)

	g.pushSample(ptr)
	bodyV, bodyTail, err := g.emit(bodyB, n.Arg)
	g.popSample()
	if err != nil {
		return nil, nil, err
	}
	var combined ir.Value
	if isForall {
		combined = g.fn.Emit(bodyTail, ir.OpAnd, ast.TBool{}, acc, bodyV)
	} else {
		combined = g.fn.Emit(bodyTail, ir.OpOr, ast.TBool{}, acc, bodyV)
	}
	var nextPtr ir.Value
	if isFuture {
		nextPtr = g.fn.Emit(bodyTail, ir.OpGetNext, ast.TSample{}, ptr)
	} else {
		nextPtr = g.fn.Emit(bodyTail, ir.OpGetPrev, ast.TSample{}, ptr)
	}
	ptr.AddIncoming(nextPtr)
	acc.AddIncoming(combined)
	g.fn.SetBr(bodyTail, headB)

	// exitB's predecessors, in wiring order: headB (array bound failed),
	// checkB (time bound failed). acc's phi is defined in headB, which
	// dominates both paths into exitB, so no exit-side phi is needed.
	return acc, exitB, nil
}

// withinWindow emits the "has ptr passed bound" test that keeps a temporal
// loop inside [frst,last]: a pure pointer comparison (ptr <= bound for
// future, ptr >= bound for past), matching the literal "iterate while
// next <= last" / "frst <= prev" phrasing of the reference's loop
// skeleton. This never dereferences ptr, so it stays safe to call even
// when ptr has stepped one sample past the trace's actual end.
func (g *Generator) withinWindow(b *ir.Block, ptr, bound ir.Value, isFuture bool) ir.Value {
	if isFuture {
		return g.fn.Emit(b, ir.OpLe, ast.TBool{}, ptr, bound)
	}
	return g.fn.Emit(b, ir.OpGe, ast.TBool{}, ptr, bound)
}

// withinTimeBound compares ptr's loaded __time__ against boundTime, an
// already-computed absolute time limit. Callers must only reach this once
// withinWindow has confirmed ptr lies in the trace's array bounds —
// otherwise the __time__ load below is an out-of-bounds dereference.
func (g *Generator) withinTimeBound(b *ir.Block, ptr, boundTime ir.Value, isFuture bool) ir.Value {
	ptrTime := g.fn.EmitField(b, ir.OpLoad, ast.TInt{}, "__time__", 0, ptr)
	if isFuture {
		return g.fn.Emit(b, ir.OpLe, ast.TBool{}, ptrTime, boundTime)
	}
	return g.fn.Emit(b, ir.OpGe, ast.TBool{}, ptrTime, boundTime)
}

// timeIntervalBound evaluates a TimeInterval's relevant component (Hi for
// future operators, Lo for past) and adds it to start's own __time__,
// returning an absolute time limit. Returns nil if time is nil or lacks
// that component, meaning no extra time constraint applies beyond the
// trace's own [frst,last] window.
func (g *Generator) timeIntervalBound(b *ir.Block, start ir.Value, time *ast.TimeInterval, isFuture bool) (ir.Value, *ir.Block, error) {
	if time == nil {
		return nil, b, nil
	}
	var timeExpr ast.Expr
	if isFuture {
		timeExpr = time.Hi
	} else {
		timeExpr = time.Lo
	}
	if timeExpr == nil {
		return nil, b, nil
	}
	v, tailB, err := g.emit(b, timeExpr)
	if err != nil {
		return nil, nil, err
	}
	b = tailB
	startTime := g.fn.EmitField(b, ir.OpLoad, ast.TInt{}, "__time__", 0, start)
	return g.fn.Emit(b, ir.OpAdd, ast.TInt{}, startTime, v), b, nil
}

// emitXY compiles Xs/Xw/Ys/Yw (spec.md §4.5's "XY emitter"): step __curr__
// one sample in the operator's direction; if the step leaves [frst,last]
// or a non-nil Time's bound, return the operator's end value (false for
// the strong Xs/Ys, true for the weak Xw/Yw); otherwise evaluate Arg at
// the stepped sample. As in emitForallExists, the array bound is checked
// by pure pointer comparison before the stepped sample's __time__ is ever
// loaded for the optional Time check.
func (g *Generator) emitXY(b *ir.Block, n *ast.TemporalUnary) (ir.Value, *ir.Block, error) {
	isFuture := n.Op == ast.OpXs || n.Op == ast.OpXw
	endV := n.Op == ast.OpXw || n.Op == ast.OpYw

	cur := g.curSample()
	timeBound, b, err := g.timeIntervalBound(b, cur, n.Time, isFuture)
	if err != nil {
		return nil, nil, err
	}

	var stepped ir.Value
	if isFuture {
		stepped = g.fn.Emit(b, ir.OpGetNext, ast.TSample{}, cur)
	} else {
		stepped = g.fn.Emit(b, ir.OpGetPrev, ast.TSample{}, cur)
	}

	var windowBound ir.Value
	if isFuture {
		windowBound = g.effLast()
	} else {
		windowBound = g.effFrst()
	}

	checkB := g.fn.NewBlock("xy.timecheck")
	inBoundsB := g.fn.NewBlock("xy.inbounds")
	joinB := g.fn.NewBlock("xy.join")

	inRange := g.withinWindow(b, stepped, windowBound, isFuture)
	g.fn.SetCondBr(b, inRange, checkB, joinB)

	var timeOk ir.Value
	if timeBound != nil {
		timeOk = g.withinTimeBound(checkB, stepped, timeBound, isFuture)
	} else {
		timeOk = ir.ConstBool(true)
	}
	g.fn.SetCondBr(checkB, timeOk, inBoundsB, joinB)

	g.pushSample(stepped)
	bodyV, bodyTail, err := g.emit(inBoundsB, n.Arg)
	g.popSample()
	if err != nil {
		return nil, nil, err
	}
	g.fn.SetBr(bodyTail, joinB)

	// joinB's predecessors, in wiring order: b (array bound failed), checkB
	// (time bound failed), bodyTail (body evaluated at the stepped sample).
	phi := g.fn.AddPhi(joinB, ast.TBool{})
	phi.AddIncoming(ir.ConstBool(endV))
	phi.AddIncoming(ir.ConstBool(endV))
	phi.AddIncoming(bodyV)
	return phi, joinB, nil
}

// emitTemporalBinary compiles Us/Uw/Rs/Rw/Ss/Sw/Ts/Tw via the shared
// UR/ST loop keyed by binaryCharConsts (spec.md §4.5). Time must be nil
// here: internal/rewrite always lowers a bounded binary temporal operator
// to an unbounded one guarded by explicit time-interval arithmetic before
// codegen ever sees it.
func (g *Generator) emitTemporalBinary(b *ir.Block, n *ast.TemporalBinary) (ir.Value, *ir.Block, error) {
	if n.Time != nil {
		return nil, nil, errors.New(errors.PhaseCodeGen, errors.GEN001UnsupportedShape, n.Position(),
			"binary temporal operator %s still carries a time bound at code generation", n.Op)
	}
	cc, ok := binaryCharConsts[n.Op]
	if !ok {
		return nil, nil, errors.New(errors.PhaseCodeGen, errors.GEN001UnsupportedShape, n.Position(),
			"unexpected binary temporal operator %s", n.Op)
	}
	isFuture := n.Op.IsFuture()

	start := g.curSample()
	var bound ir.Value
	if isFuture {
		bound = g.effLast()
	} else {
		bound = g.effFrst()
	}

	headB := g.fn.NewBlock("ur.head")
	bodyB := g.fn.NewBlock("ur.body")
	exitB := g.fn.NewBlock("ur.exit")
	g.fn.SetBr(b, headB)

	ptr := g.fn.AddPhi(headB, ast.TSample{})
	ptr.AddIncoming(start)

	withinBound := g.withinWindow(headB, ptr, bound, isFuture)
	g.fn.SetCondBr(headB, withinBound, bodyB, exitB)

	g.pushSample(ptr)
	rhsV, afterRHS, err := g.emit(bodyB, n.RHS)
	if err != nil {
		g.popSample()
		return nil, nil, err
	}

	rhsHitB := g.fn.NewBlock("ur.rhs_hit")
	checkLHSB := g.fn.NewBlock("ur.check_lhs")
	rhsHit := g.fn.Emit(afterRHS, ir.OpEq, ast.TBool{}, rhsV, ir.ConstBool(cc.rhsV))
	g.fn.SetCondBr(afterRHS, rhsHit, rhsHitB, checkLHSB)
	g.fn.SetBr(rhsHitB, exitB)

	lhsV, afterLHS, err := g.emit(checkLHSB, n.LHS)
	g.popSample()
	if err != nil {
		return nil, nil, err
	}

	lhsFailB := g.fn.NewBlock("ur.lhs_fail")
	advanceB := g.fn.NewBlock("ur.advance")
	lhsFail := g.fn.Emit(afterLHS, ir.OpEq, ast.TBool{}, lhsV, ir.ConstBool(cc.lhsV))
	g.fn.SetCondBr(afterLHS, lhsFail, lhsFailB, advanceB)
	g.fn.SetBr(lhsFailB, exitB)

	var nextPtr ir.Value
	if isFuture {
		nextPtr = g.fn.Emit(advanceB, ir.OpGetNext, ast.TSample{}, ptr)
	} else {
		nextPtr = g.fn.Emit(advanceB, ir.OpGetPrev, ast.TSample{}, ptr)
	}
	ptr.AddIncoming(nextPtr)
	g.fn.SetBr(advanceB, headB)

	// exitB's predecessors are wired in this order: headB (bound reached,
	// via the head's CondBr), rhsHitB, lhsFailB — phi incoming must match.
	result := g.fn.AddPhi(exitB, ast.TBool{})
	result.AddIncoming(ir.ConstBool(cc.endV))
	result.AddIncoming(ir.ConstBool(cc.rhsV))
	result.AddIncoming(ir.ConstBool(cc.lhsV))
	return result, exitB, nil
}
