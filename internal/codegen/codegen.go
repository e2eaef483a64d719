package codegen

import (
	"github.com/reftrace/stlc/internal/ast"
	"github.com/reftrace/stlc/internal/errors"
	"github.com/reftrace/stlc/internal/ir"
	"github.com/reftrace/stlc/internal/module"
)

// Generator lowers one module.Table's recorded expressions and
// specifications to an ir.Module. It holds the two pieces of state the
// reference's CompileExprImpl threads implicitly through recursion: the
// "current sample" stack (what __curr__/data()/member() resolve against,
// pushed by every temporal loop) and the named-binder
// stack (what a surface @name or a synthesized "starting" resolves to).
type Generator struct {
	mod      *module.Table
	propType ast.TStruct
	confType ast.TStruct
	propIdx  map[string]int
	confIdx  map[string]int

	fn      *ir.Function
	samples []ir.Value
	binders []genBinder
	windows []windowFrame
}

type genBinder struct {
	name string
	ptr  ir.Value
}

// New builds a Generator for mod, synthesizing its prop_t/conf_t layouts.
func New(mod *module.Table) *Generator {
	g := &Generator{
		mod:      mod,
		propType: BuildPropType(mod),
		confType: BuildConfType(mod),
		propIdx:  map[string]int{},
		confIdx:  map[string]int{},
	}
	for i, name := range mod.GetPropNames() {
		g.propIdx[name] = i + 1 // field 0 is __time__
	}
	for i, name := range mod.GetConfNames() {
		g.confIdx[name] = i
	}
	return g
}

// Compile lowers every top-level expression and specification recorded on
// the module table into one ir.Module (spec.md §4.5, §6).
func (g *Generator) Compile() (*ir.Module, error) {
	out := &ir.Module{
		Name:     g.mod.Name(),
		ConfType: g.confType,
		PropType: g.propType,
	}
	for _, e := range g.mod.GetExprs() {
		fn, err := g.CompileExpr(e)
		if err != nil {
			return nil, err
		}
		out.Funcs = append(out.Funcs, fn)
	}
	for _, s := range g.mod.GetSpecs() {
		fn, err := g.CompileSpec(s)
		if err != nil {
			return nil, err
		}
		out.Funcs = append(out.Funcs, fn)
	}
	return out, nil
}

// CompileExpr emits one standalone Boolean expression as a named function
// spanning its full trace (frst..last), per spec.md §4.5's span-derived
// naming convention.
func (g *Generator) CompileExpr(e ast.Expr) (*ir.Function, error) {
	g.fn = ir.NewFunction(e.Position().String())
	entry := g.fn.NewBlock("entry")
	g.samples = []ir.Value{g.fn.Frst}
	g.windows = []windowFrame{{frst: g.fn.Frst, last: g.fn.Last}}
	g.binders = nil

	v, tail, err := g.emit(entry, e)
	if err != nil {
		return nil, err
	}
	g.fn.SetRet(tail, v)
	if err := ir.Verify(g.fn); err != nil {
		return nil, err
	}
	return g.fn, nil
}

func (g *Generator) curSample() ir.Value {
	return g.samples[len(g.samples)-1]
}

func (g *Generator) pushSample(v ir.Value) { g.samples = append(g.samples, v) }
func (g *Generator) popSample()            { g.samples = g.samples[:len(g.samples)-1] }

func (g *Generator) pushBinder(name string, v ir.Value) {
	g.binders = append(g.binders, genBinder{name: name, ptr: v})
}
func (g *Generator) popBinder() { g.binders = g.binders[:len(g.binders)-1] }

func (g *Generator) lookupBinder(name string) (ir.Value, bool) {
	for i := len(g.binders) - 1; i >= 0; i-- {
		if g.binders[i].name == name {
			return g.binders[i].ptr, true
		}
	}
	return nil, false
}

// emit is the main recursive lowering dispatch. It returns the computed
// value and the block emission should continue from — temporal and choice
// nodes open new blocks internally and hand back the join block, exactly
// as the reference's block-threading CompileExprImpl does.
func (g *Generator) emit(b *ir.Block, e ast.Expr) (ir.Value, *ir.Block, error) {
	switch n := e.(type) {
	case *ast.BoolLit:
		return ir.ConstBool(n.Value), b, nil
	case *ast.IntLit:
		return ir.ConstInt(n.Value), b, nil
	case *ast.FloatLit:
		return ir.ConstFloat(n.Value), b, nil
	case *ast.StringLit:
		return g.fn.EmitField(b, ir.OpIntern, ast.TString{}, "", 0, ir.ConstStr(n.Value)), b, nil

	case *ast.Data:
		return g.emitData(b, n)
	case *ast.Context:
		return g.emitContext(b, n)
	case *ast.Member:
		return g.emitMember(b, n)
	case *ast.Index:
		return g.emitIndex(b, n)

	case *ast.Neg:
		v, b, err := g.emit(b, n.Arg)
		if err != nil {
			return nil, nil, err
		}
		return g.fn.Emit(b, ir.OpNeg, v.Type(), v), b, nil

	case *ast.Not:
		v, b, err := g.emit(b, n.Arg)
		if err != nil {
			return nil, nil, err
		}
		return g.fn.Emit(b, ir.OpNot, ast.TBool{}, v), b, nil

	case *ast.BinOp:
		return g.emitBinOp(b, n)

	case *ast.Choice:
		return g.emitChoice(b, n)

	case *ast.Integ:
		return g.emitInteg(b, n)

	case *ast.TemporalUnary:
		return g.emitTemporalUnary(b, n)
	case *ast.TemporalBinary:
		return g.emitTemporalBinary(b, n)

	case *ast.At:
		g.pushBinder(n.Name, g.curSample())
		v, b, err := g.emit(b, n.Arg)
		g.popBinder()
		return v, b, err

	case *ast.Paren:
		return g.emit(b, n.Arg)

	default:
		return nil, nil, errors.New(errors.PhaseCodeGen, errors.GEN001UnsupportedShape, e.Position(),
			"code generator has no lowering for this expression shape")
	}
}

func (g *Generator) emitData(b *ir.Block, n *ast.Data) (ir.Value, *ir.Block, error) {
	if idx, ok := g.propIdx[n.Name]; ok {
		typ := g.propType.Fields[idx].Type
		return g.fn.EmitField(b, ir.OpLoad, layoutType(typ), n.Name, idx, g.curSample()), b, nil
	}
	if idx, ok := g.confIdx[n.Name]; ok {
		typ := g.confType.Fields[idx].Type
		return g.fn.EmitField(b, ir.OpLoad, layoutType(typ), n.Name, idx, g.fn.Conf), b, nil
	}
	return nil, nil, errors.Unknown(errors.PhaseCodeGen, errors.GEN003UnknownBinder, n.Position(), "property or configuration", n.Name)
}

func (g *Generator) emitContext(b *ir.Block, n *ast.Context) (ir.Value, *ir.Block, error) {
	switch n.Name {
	case "__curr__":
		return g.curSample(), b, nil
	case "__frst__":
		return g.fn.Frst, b, nil
	case "__last__":
		return g.fn.Last, b, nil
	case "__conf__":
		return g.fn.Conf, b, nil
	}
	if v, ok := g.lookupBinder(n.Name); ok {
		return v, b, nil
	}
	return nil, nil, errors.Unknown(errors.PhaseCodeGen, errors.GEN003UnknownBinder, n.Position(), "binder", n.Name)
}

func (g *Generator) emitMember(b *ir.Block, n *ast.Member) (ir.Value, *ir.Block, error) {
	base, b, err := g.emit(b, n.Base)
	if err != nil {
		return nil, nil, err
	}
	switch bt := n.Base.Type().(type) {
	case ast.TEnum:
		return g.fn.Emit(b, ir.OpEq, ast.TBool{}, base, ir.ConstEnum(int8(bt.Index(n.Name)))), b, nil
	case ast.TStruct:
		idx := bt.FieldIndex(n.Name)
		return g.fn.EmitField(b, ir.OpFieldAddr, n.Type(), n.Name, idx, base), b, nil
	default:
		return nil, nil, errors.New(errors.PhaseCodeGen, errors.GEN001UnsupportedShape, n.Position(),
			"member access on non-struct, non-enum base")
	}
}

func (g *Generator) emitIndex(b *ir.Block, n *ast.Index) (ir.Value, *ir.Block, error) {
	base, b, err := g.emit(b, n.Base)
	if err != nil {
		return nil, nil, err
	}
	i, b, err := g.emit(b, n.I)
	if err != nil {
		return nil, nil, err
	}
	return g.fn.Emit(b, ir.OpElemAddr, n.Type(), base, i), b, nil
}

func (g *Generator) emitBinOp(b *ir.Block, n *ast.BinOp) (ir.Value, *ir.Block, error) {
	lhs, b, err := g.emit(b, n.LHS)
	if err != nil {
		return nil, nil, err
	}
	rhs, b, err := g.emit(b, n.RHS)
	if err != nil {
		return nil, nil, err
	}
	lhs, rhs = g.promote(b, lhs, rhs)

	switch n.Op {
	case ast.OpEqu:
		return g.fn.Emit(b, ir.OpEq, ast.TBool{}, lhs, rhs), b, nil
	case ast.OpImp:
		notLHS := g.fn.Emit(b, ir.OpNot, ast.TBool{}, lhs)
		return g.fn.Emit(b, ir.OpOr, ast.TBool{}, notLHS, rhs), b, nil
	}

	op, ok := binOpMap[n.Op]
	if !ok {
		return nil, nil, errors.New(errors.PhaseCodeGen, errors.GEN001UnsupportedShape, n.Position(),
			"operator %s has no direct lowering", n.Op)
	}
	return g.fn.Emit(b, op, n.Type(), lhs, rhs), b, nil
}

var binOpMap = map[ast.BinOpKind]ir.Op{
	ast.OpAdd: ir.OpAdd,
	ast.OpSub: ir.OpSub,
	ast.OpMul: ir.OpMul,
	ast.OpDiv: ir.OpDiv,
	ast.OpMod: ir.OpRem,
	ast.OpEq:  ir.OpEq,
	ast.OpNe:  ir.OpNe,
	ast.OpLt:  ir.OpLt,
	ast.OpLe:  ir.OpLe,
	ast.OpGt:  ir.OpGt,
	ast.OpGe:  ir.OpGe,
	ast.OpAnd: ir.OpAnd,
	ast.OpOr:  ir.OpOr,
	ast.OpXor: ir.OpXor,
	// OpEqu and OpImp are desugared in emitBinOp, not looked up directly.
}

// promote inserts OpSIToFP on whichever side is TInt when the other is
// TNum, matching internal/typecalc's int/num promotion (spec.md §4.3).
func (g *Generator) promote(b *ir.Block, lhs, rhs ir.Value) (ir.Value, ir.Value) {
	_, lIsInt := lhs.Type().(ast.TInt)
	_, rIsInt := rhs.Type().(ast.TInt)
	_, lIsNum := lhs.Type().(ast.TNum)
	_, rIsNum := rhs.Type().(ast.TNum)
	if lIsInt && rIsNum {
		lhs = g.fn.Emit(b, ir.OpSIToFP, ast.TNum{}, lhs)
	}
	if rIsInt && lIsNum {
		rhs = g.fn.Emit(b, ir.OpSIToFP, ast.TNum{}, rhs)
	}
	return lhs, rhs
}

func (g *Generator) emitChoice(b *ir.Block, n *ast.Choice) (ir.Value, *ir.Block, error) {
	cond, b, err := g.emit(b, n.Cond)
	if err != nil {
		return nil, nil, err
	}
	thenB := g.fn.NewBlock("choice.then")
	elseB := g.fn.NewBlock("choice.else")
	joinB := g.fn.NewBlock("choice.join")
	g.fn.SetCondBr(b, cond, thenB, elseB)

	thenV, thenTail, err := g.emit(thenB, n.Then)
	if err != nil {
		return nil, nil, err
	}
	g.fn.SetBr(thenTail, joinB)

	elseV, elseTail, err := g.emit(elseB, n.Else)
	if err != nil {
		return nil, nil, err
	}
	g.fn.SetBr(elseTail, joinB)

	// Arms of mixed int/num type are promoted to num in their own blocks,
	// matching the type TypeCalc assigned to the choice.
	if _, ok := n.Type().(ast.TNum); ok {
		if _, ok := thenV.Type().(ast.TInt); ok {
			thenV = g.fn.Emit(thenTail, ir.OpSIToFP, ast.TNum{}, thenV)
		}
		if _, ok := elseV.Type().(ast.TInt); ok {
			elseV = g.fn.Emit(elseTail, ir.OpSIToFP, ast.TNum{}, elseV)
		}
	}

	phi := g.fn.AddPhi(joinB, n.Type())
	phi.AddIncoming(thenV)
	phi.AddIncoming(elseV)
	return phi, joinB, nil
}
