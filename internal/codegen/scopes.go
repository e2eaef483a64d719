package codegen

import (
	"github.com/reftrace/stlc/internal/ast"
	"github.com/reftrace/stlc/internal/errors"
	"github.com/reftrace/stlc/internal/ir"
)

// windowFrame overrides the [frst,last] bound every temporal loop in
// temporal.go/integ.go tests against. Specification scopes (spec.md §4.5)
// compile their Body over a narrowed sub-window of the trace without
// touching what __frst__/__last__ resolve to (those always name the
// function's true trace bounds; only the internal loop-termination test
// is narrowed). The stack's bottom frame is always the full trace.
type windowFrame struct{ frst, last ir.Value }

func (g *Generator) pushWindow(frst, last ir.Value) {
	g.windows = append(g.windows, windowFrame{frst: frst, last: last})
}
func (g *Generator) popWindow() { g.windows = g.windows[:len(g.windows)-1] }
func (g *Generator) effFrst() ir.Value {
	return g.windows[len(g.windows)-1].frst
}
func (g *Generator) effLast() ir.Value {
	return g.windows[len(g.windows)-1].last
}

// CompileSpec lowers one of the five specification scope forms (spec.md
// §4.5) to a named function.
func (g *Generator) CompileSpec(s *ast.Spec) (*ir.Function, error) {
	g.fn = ir.NewFunction(s.Position().String())
	entry := g.fn.NewBlock("entry")
	g.samples = []ir.Value{g.fn.Frst}
	g.windows = []windowFrame{{frst: g.fn.Frst, last: g.fn.Last}}
	g.binders = nil

	var (
		v    ir.Value
		tail *ir.Block
		err  error
	)
	switch s.Kind {
	case ast.SpecGlobally:
		v, tail, err = g.emit(entry, s.Body)
	case ast.SpecBefore:
		v, tail, err = g.emitBefore(entry, s)
	case ast.SpecAfter:
		v, tail, err = g.emitAfter(entry, s)
	case ast.SpecBetween:
		v, tail, err = g.emitBetweenLike(entry, s, false)
	case ast.SpecAfterUntil:
		v, tail, err = g.emitBetweenLike(entry, s, true)
	default:
		return nil, errors.New(errors.PhaseCodeGen, errors.GEN001UnsupportedShape, s.Position(),
			"unrecognized specification scope")
	}
	if err != nil {
		return nil, err
	}
	g.fn.SetRet(tail, v)
	if err := ir.Verify(g.fn); err != nil {
		return nil, err
	}
	return g.fn, nil
}

// emitBefore compiles before(cond, expr): walk from frst+1; at the first
// curr where cond holds, compile expr over [frst,curr]; if cond never
// holds, the result is true.
func (g *Generator) emitBefore(b *ir.Block, s *ast.Spec) (ir.Value, *ir.Block, error) {
	frst := g.fn.Frst
	start := g.fn.Emit(b, ir.OpGetNext, ast.TSample{}, frst)

	headB := g.fn.NewBlock("before.head")
	checkB := g.fn.NewBlock("before.check")
	advanceB := g.fn.NewBlock("before.advance")
	foundB := g.fn.NewBlock("before.found")
	notFoundB := g.fn.NewBlock("before.notfound")
	exitB := g.fn.NewBlock("before.exit")
	g.fn.SetBr(b, headB)

	ptr := g.fn.AddPhi(headB, ast.TSample{})
	ptr.AddIncoming(start)

	withinLast := g.withinWindow(headB, ptr, g.fn.Last, true)
	g.fn.SetCondBr(headB, withinLast, checkB, notFoundB)

	g.pushSample(ptr)
	condV, condTail, err := g.emit(checkB, s.Cond)
	g.popSample()
	if err != nil {
		return nil, nil, err
	}
	g.fn.SetCondBr(condTail, condV, foundB, advanceB)

	next := g.fn.Emit(advanceB, ir.OpGetNext, ast.TSample{}, ptr)
	ptr.AddIncoming(next)
	g.fn.SetBr(advanceB, headB)

	g.pushWindow(frst, ptr)
	g.pushSample(ptr)
	bodyV, bodyTail, err := g.emit(foundB, s.Body)
	g.popSample()
	g.popWindow()
	if err != nil {
		return nil, nil, err
	}
	g.fn.SetBr(bodyTail, exitB)
	g.fn.SetBr(notFoundB, exitB)

	result := g.fn.AddPhi(exitB, ast.TBool{})
	result.AddIncoming(bodyV)
	result.AddIncoming(ir.ConstBool(true))
	return result, exitB, nil
}

// emitAfter compiles after(cond, expr): walk from frst; at the first curr
// where cond holds, compile expr over [curr-1,last]; if cond never holds,
// the result is true.
func (g *Generator) emitAfter(b *ir.Block, s *ast.Spec) (ir.Value, *ir.Block, error) {
	start := g.fn.Frst

	headB := g.fn.NewBlock("after.head")
	checkB := g.fn.NewBlock("after.check")
	advanceB := g.fn.NewBlock("after.advance")
	foundB := g.fn.NewBlock("after.found")
	notFoundB := g.fn.NewBlock("after.notfound")
	exitB := g.fn.NewBlock("after.exit")
	g.fn.SetBr(b, headB)

	ptr := g.fn.AddPhi(headB, ast.TSample{})
	ptr.AddIncoming(start)

	withinLast := g.withinWindow(headB, ptr, g.fn.Last, true)
	g.fn.SetCondBr(headB, withinLast, checkB, notFoundB)

	g.pushSample(ptr)
	condV, condTail, err := g.emit(checkB, s.Cond)
	g.popSample()
	if err != nil {
		return nil, nil, err
	}
	g.fn.SetCondBr(condTail, condV, foundB, advanceB)

	next := g.fn.Emit(advanceB, ir.OpGetNext, ast.TSample{}, ptr)
	ptr.AddIncoming(next)
	g.fn.SetBr(advanceB, headB)

	innerFrst := g.fn.Emit(foundB, ir.OpGetPrev, ast.TSample{}, ptr)
	g.pushWindow(innerFrst, g.fn.Last)
	g.pushSample(ptr)
	bodyV, bodyTail, err := g.emit(foundB, s.Body)
	g.popSample()
	g.popWindow()
	if err != nil {
		return nil, nil, err
	}
	g.fn.SetBr(bodyTail, exitB)
	g.fn.SetBr(notFoundB, exitB)

	result := g.fn.AddPhi(exitB, ast.TBool{})
	result.AddIncoming(bodyV)
	result.AddIncoming(ir.ConstBool(true))
	return result, exitB, nil
}

// emitBetweenLike compiles between(lhs,rhs,expr) and after_until(lhs,rhs,
// expr) with the shared two-state machine from spec.md §4.5: a running
// `inside` flag and `innerFrst` pointer, walked sample-by-sample from
// frst+1. Entering sets innerFrst := curr-1; leaving evaluates expr over
// [innerFrst,curr] and ANDs the result into a running accumulator.
// between additionally closes an unclosed region at [innerFrst,last];
// after_until treats an unclosed region as vacuously true.
func (g *Generator) emitBetweenLike(b *ir.Block, s *ast.Spec, afterUntil bool) (ir.Value, *ir.Block, error) {
	frst := g.fn.Frst
	start := g.fn.Emit(b, ir.OpGetNext, ast.TSample{}, frst)

	headB := g.fn.NewBlock("between.head")
	bodyB := g.fn.NewBlock("between.body")
	endB := g.fn.NewBlock("between.end")
	g.fn.SetBr(b, headB)

	ptr := g.fn.AddPhi(headB, ast.TSample{})
	ptr.AddIncoming(start)
	inside := g.fn.AddPhi(headB, ast.TBool{})
	inside.AddIncoming(ir.ConstBool(false))
	innerFrst := g.fn.AddPhi(headB, ast.TSample{})
	innerFrst.AddIncoming(start)
	ok := g.fn.AddPhi(headB, ast.TBool{})
	ok.AddIncoming(ir.ConstBool(true))

	withinLast := g.withinWindow(headB, ptr, g.fn.Last, true)
	g.fn.SetCondBr(headB, withinLast, bodyB, endB)

	g.pushSample(ptr)
	lhsV, afterLHS, err := g.emit(bodyB, s.LHS)
	if err != nil {
		g.popSample()
		return nil, nil, err
	}
	rhsV, afterRHS, err := g.emit(afterLHS, s.RHS)
	g.popSample()
	if err != nil {
		return nil, nil, err
	}

	insideB := g.fn.NewBlock("between.inside")
	outsideB := g.fn.NewBlock("between.outside")
	g.fn.SetCondBr(afterRHS, inside, insideB, outsideB)

	// inside: leave on rhs, otherwise stay.
	leaveB := g.fn.NewBlock("between.leave")
	stayInB := g.fn.NewBlock("between.stayin")
	g.fn.SetCondBr(insideB, rhsV, leaveB, stayInB)

	g.pushWindow(innerFrst, ptr)
	g.pushSample(ptr)
	closeV, leaveTail, err := g.emit(leaveB, s.Body)
	g.popSample()
	g.popWindow()
	if err != nil {
		return nil, nil, err
	}
	leaveOk := g.fn.Emit(leaveTail, ir.OpAnd, ast.TBool{}, ok, closeV)

	// outside: enter on lhs && !rhs, otherwise stay.
	notRHS := g.fn.Emit(outsideB, ir.OpNot, ast.TBool{}, rhsV)
	enterCond := g.fn.Emit(outsideB, ir.OpAnd, ast.TBool{}, lhsV, notRHS)
	enterB := g.fn.NewBlock("between.enter")
	stayOutB := g.fn.NewBlock("between.stayout")
	g.fn.SetCondBr(outsideB, enterCond, enterB, stayOutB)

	newInnerFrst := g.fn.Emit(enterB, ir.OpGetPrev, ast.TSample{}, ptr)

	mergeB := g.fn.NewBlock("between.merge")
	g.fn.SetBr(leaveTail, mergeB)
	g.fn.SetBr(stayInB, mergeB)
	g.fn.SetBr(enterB, mergeB)
	g.fn.SetBr(stayOutB, mergeB)

	// mergeB predecessors, in wiring order: leaveTail, stayInB, enterB, stayOutB.
	insideMerge := g.fn.AddPhi(mergeB, ast.TBool{})
	insideMerge.AddIncoming(ir.ConstBool(false)) // leave -> now outside
	insideMerge.AddIncoming(ir.ConstBool(true))  // stay in
	insideMerge.AddIncoming(ir.ConstBool(true))  // enter -> now inside
	insideMerge.AddIncoming(ir.ConstBool(false)) // stay out

	innerFrstMerge := g.fn.AddPhi(mergeB, ast.TSample{})
	innerFrstMerge.AddIncoming(innerFrst)
	innerFrstMerge.AddIncoming(innerFrst)
	innerFrstMerge.AddIncoming(newInnerFrst)
	innerFrstMerge.AddIncoming(innerFrst)

	okMerge := g.fn.AddPhi(mergeB, ast.TBool{})
	okMerge.AddIncoming(leaveOk)
	okMerge.AddIncoming(ok)
	okMerge.AddIncoming(ok)
	okMerge.AddIncoming(ok)

	next := g.fn.Emit(mergeB, ir.OpGetNext, ast.TSample{}, ptr)
	ptr.AddIncoming(next)
	inside.AddIncoming(insideMerge)
	innerFrst.AddIncoming(innerFrstMerge)
	ok.AddIncoming(okMerge)
	g.fn.SetBr(mergeB, headB)

	if afterUntil {
		return ok, endB, nil
	}

	// between: if still inside at end-of-trace, close the region at last.
	closeAtEndB := g.fn.NewBlock("between.close_end")
	doneB := g.fn.NewBlock("between.done")
	g.fn.SetCondBr(endB, inside, closeAtEndB, doneB)

	g.pushWindow(innerFrst, g.fn.Last)
	g.pushSample(g.fn.Last)
	finalCloseV, closeTail, err := g.emit(closeAtEndB, s.Body)
	g.popSample()
	g.popWindow()
	if err != nil {
		return nil, nil, err
	}
	finalOk := g.fn.Emit(closeTail, ir.OpAnd, ast.TBool{}, ok, finalCloseV)
	g.fn.SetBr(closeTail, doneB)

	// doneB's predecessors are wired in this order: endB (not inside,
	// via the CondBr's else edge), then closeTail.
	result := g.fn.AddPhi(doneB, ast.TBool{})
	result.AddIncoming(ok)
	result.AddIncoming(finalOk)
	return result, doneB, nil
}
