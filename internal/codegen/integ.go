package codegen

import (
	"github.com/reftrace/stlc/internal/ast"
	"github.com/reftrace/stlc/internal/ir"
)

// emitInteg compiles int(body, height[, time]) (spec.md §4.5): lo/hi are
// evaluated once against __curr__'s __time__ to get absolute bounds, then
// the outer loop walks consecutive sample pairs (curr,next) from __curr__
// up to, but not including, the pair ending at __last__; per pair it clips
// [curr.__time__, next.__time__] against those bounds, and if body holds at
// curr, accumulates height(curr) * clipped-width into a φ-accumulator.
// Width is floored at zero so a pair entirely outside [lo,hi] contributes
// nothing. The final pair (the one whose next is __last__) is excluded:
// integration covers the half-open intervals between samples, and __last__
// has no successor sample to pair with.
func (g *Generator) emitInteg(b *ir.Block, n *ast.Integ) (ir.Value, *ir.Block, error) {
	start := g.curSample()
	startTime := g.fn.EmitField(b, ir.OpLoad, ast.TInt{}, "__time__", 0, start)

	var loV, hiV ir.Value
	if n.Time != nil {
		if n.Time.Lo != nil {
			v, tailB, err := g.emit(b, n.Time.Lo)
			if err != nil {
				return nil, nil, err
			}
			b = tailB
			loV = g.fn.Emit(b, ir.OpAdd, ast.TInt{}, startTime, v)
		}
		if n.Time.Hi != nil {
			v, tailB, err := g.emit(b, n.Time.Hi)
			if err != nil {
				return nil, nil, err
			}
			b = tailB
			hiV = g.fn.Emit(b, ir.OpAdd, ast.TInt{}, startTime, v)
		}
	}

	headB := g.fn.NewBlock("int.head")
	bodyOkB := g.fn.NewBlock("int.body_ok")
	accumB := g.fn.NewBlock("int.accum")
	skipB := g.fn.NewBlock("int.skip")
	mergeB := g.fn.NewBlock("int.merge")
	exitB := g.fn.NewBlock("int.exit")
	g.fn.SetBr(b, headB)

	ptr := g.fn.AddPhi(headB, ast.TSample{})
	ptr.AddIncoming(start)
	sum := g.fn.AddPhi(headB, ast.TNum{})
	sum.AddIncoming(ir.ConstFloat(0))

	next := g.fn.Emit(headB, ir.OpGetNext, ast.TSample{}, ptr)
	// Strictly less than: the pair (ptr,next) is only included while next is
	// still before __last__, so the final pair ending exactly at __last__ is
	// dropped (spec.md §8 test 5).
	beforeLast := g.fn.Emit(headB, ir.OpLt, ast.TBool{}, next, g.effLast())
	g.fn.SetCondBr(headB, beforeLast, bodyOkB, exitB)

	g.pushSample(ptr)
	bodyV, bodyTail, err := g.emit(bodyOkB, n.Body)
	g.popSample()
	if err != nil {
		return nil, nil, err
	}
	g.fn.SetCondBr(bodyTail, bodyV, accumB, skipB)

	ptrTime := g.fn.EmitField(accumB, ir.OpLoad, ast.TInt{}, "__time__", 0, ptr)
	nextTime := g.fn.EmitField(accumB, ir.OpLoad, ast.TInt{}, "__time__", 0, next)
	loBound := ptrTime
	if loV != nil {
		loBound = g.fn.EmitField(accumB, ir.OpCall, ast.TInt{}, "imax64", 0, ptrTime, loV)
	}
	hiBound := nextTime
	if hiV != nil {
		hiBound = g.fn.EmitField(accumB, ir.OpCall, ast.TInt{}, "imin64", 0, nextTime, hiV)
	}
	widthInt := g.fn.Emit(accumB, ir.OpSub, ast.TInt{}, hiBound, loBound)
	widthInt = g.fn.EmitField(accumB, ir.OpCall, ast.TInt{}, "imax64", 0, widthInt, ir.ConstInt(0))
	width := g.fn.Emit(accumB, ir.OpSIToFP, ast.TNum{}, widthInt)

	g.pushSample(ptr)
	heightV, accumB2, err := g.emit(accumB, n.Height)
	g.popSample()
	if err != nil {
		return nil, nil, err
	}
	area := g.fn.Emit(accumB2, ir.OpMul, ast.TNum{}, heightV, width)
	accumSum := g.fn.Emit(accumB2, ir.OpAdd, ast.TNum{}, sum, area)
	g.fn.SetBr(accumB2, mergeB)

	g.fn.SetBr(skipB, mergeB)

	sumPhi := g.fn.AddPhi(mergeB, ast.TNum{})
	sumPhi.AddIncoming(accumSum)
	sumPhi.AddIncoming(sum)

	ptr.AddIncoming(next)
	sum.AddIncoming(sumPhi)
	g.fn.SetBr(mergeB, headB)

	return sum, exitB, nil
}
