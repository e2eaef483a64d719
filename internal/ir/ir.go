// Package ir is the minimal SSA intermediate representation the code
// generator emits into (spec.md §4.5): basic blocks of typed instructions,
// φ-nodes at block heads, and one function per compiled expression or
// specification with the fixed signature
// `(prop_t* frst, prop_t* last, conf_t* conf) -> i1`.
//
// No LLVM binding is used here: nothing in the retrieved example pack
// wires a real LLVM IR builder to working code (see DESIGN.md), so this
// package is a small, hand-rolled stand-in for the reference compiler's
// LLVM-backed ir::Builder, sized to what internal/codegen actually needs
// to emit and internal/interp needs to execute.
package ir

import (
	"fmt"

	"github.com/reftrace/stlc/internal/ast"
)

// Type is reused from internal/ast: the IR's value types are exactly the
// language's result types, plus ast.TSample/ast.TConf for the two pointer
// parameters every function receives.
type Type = ast.Type

// Value is anything an instruction can consume: a Const, a Param, or
// another instruction's own result.
type Value interface {
	Type() Type
	irValue()
}

// Const is a compile-time immediate.
type Const struct {
	Typ   Type
	Bool  bool
	Int   int64
	Float float64
	Str   *string // interned, for TString constants
}

func (c *Const) Type() Type { return c.Typ }
func (c *Const) irValue()   {}

func (c *Const) String() string {
	switch c.Typ.(type) {
	case ast.TBool:
		return fmt.Sprintf("%v", c.Bool)
	case ast.TInt:
		return fmt.Sprintf("%d", c.Int)
	case ast.TNum:
		return fmt.Sprintf("%g", c.Float)
	case ast.TString:
		if c.Str == nil {
			return `""`
		}
		return fmt.Sprintf("%q", *c.Str)
	default:
		return "<const>"
	}
}

func ConstBool(v bool) *Const      { return &Const{Typ: ast.TBool{}, Bool: v} }
func ConstInt(v int64) *Const      { return &Const{Typ: ast.TInt{}, Int: v} }
func ConstFloat(v float64) *Const  { return &Const{Typ: ast.TNum{}, Float: v} }
func ConstStr(v *string) *Const    { return &Const{Typ: ast.TString{}, Str: v} }
func ConstEnum(label int8) *Const  { return &Const{Typ: ast.TInt{}, Int: int64(label)} }

// Param is one of a Function's three fixed entry arguments.
type Param struct {
	Name string
	Typ  Type
}

func (p *Param) Type() Type     { return p.Typ }
func (p *Param) irValue()       {}
func (p *Param) String() string { return "%" + p.Name }

// Op identifies an instruction's operation.
type Op int

const (
	OpAdd Op = iota
	OpSub
	OpMul
	OpDiv
	OpRem
	OpSIToFP // promote a TInt value to TNum
	OpNeg
	OpAnd
	OpOr
	OpXor
	OpNot
	OpEq
	OpNe
	OpLt
	OpLe
	OpGt
	OpGe
	OpLoad      // dereference a pointer-typed value (property indirection)
	OpFieldAddr // struct field address: Args[0]=base, Field/Index identify the member
	OpElemAddr  // array element address: Args[0]=base, Args[1]=index
	OpGetNext   // advance a sample pointer by one (Args[0]=sample)
	OpGetPrev   // step a sample pointer back by one (Args[0]=sample)
	OpCall      // call a named external function (the imax64/imin64 integration helpers)
	OpIntern    // canonicalize a TString constant against the process-wide table
)

func (op Op) String() string {
	names := [...]string{
		"add", "sub", "mul", "div", "rem", "sitofp", "neg", "and", "or", "xor", "not",
		"eq", "ne", "lt", "le", "gt", "ge", "load", "field_addr", "elem_addr",
		"get_next", "get_prev", "call", "intern",
	}
	if int(op) < len(names) {
		return names[op]
	}
	return "op?"
}

// Instr is one non-terminator SSA instruction. It is itself a Value.
type Instr struct {
	id    int
	Op    Op
	Typ   Type
	Args  []Value
	Field string // field name for OpFieldAddr/OpLoad, callee name for OpCall
	Index int    // field ordinal for OpFieldAddr/OpLoad (OpElemAddr's index is Args[1])
}

func (i *Instr) Type() Type     { return i.Typ }
func (i *Instr) irValue()       {}
func (i *Instr) String() string { return fmt.Sprintf("%%t%d", i.id) }

// Phi is a basic-block-head φ-node: one incoming value per predecessor
// block, in the same order as Block.Preds.
type Phi struct {
	id       int
	Typ      Type
	Incoming []Value
}

func (p *Phi) Type() Type     { return p.Typ }
func (p *Phi) irValue()       {}
func (p *Phi) String() string { return fmt.Sprintf("%%phi%d", p.id) }

// AddIncoming appends one (value) to a phi in predecessor order; callers
// are responsible for keeping this aligned with Block.Preds.
func (p *Phi) AddIncoming(v Value) { p.Incoming = append(p.Incoming, v) }

// TermKind identifies which of the three terminator shapes a block ends with.
type TermKind int

const (
	TermRet TermKind = iota
	TermBr
	TermCondBr
)

// Term is a block's terminator. Exactly one must end every reachable block.
type Term struct {
	Kind    TermKind
	Value   Value // TermRet's i1 result, or TermCondBr's i1 condition
	Targets []*Block
}

// Block is a basic block: φ-nodes, then straight-line instructions, then
// exactly one terminator.
type Block struct {
	Name   string
	Phis   []*Phi
	Instrs []*Instr
	Term   *Term
	Preds  []*Block
}

// AddPred records pred as a predecessor of b; codegen calls this whenever
// it wires a Br/CondBr target so phi arity can be checked later.
func (b *Block) AddPred(pred *Block) { b.Preds = append(b.Preds, pred) }

// Function is one emitted top-level expression or specification
// (spec.md §4.5): `(prop_t* frst, prop_t* last, conf_t* conf) -> i1`.
type Function struct {
	Name             string
	Frst, Last, Conf *Param
	Blocks           []*Block
	nextID           int
}

// NewFunction creates an empty function with the fixed three-parameter
// signature every compiled expression/spec shares.
func NewFunction(name string) *Function {
	return &Function{
		Name: name,
		Frst: &Param{Name: "frst", Typ: ast.TSample{}},
		Last: &Param{Name: "last", Typ: ast.TSample{}},
		Conf: &Param{Name: "conf", Typ: ast.TConf{}},
	}
}

// NewBlock appends a fresh, empty block to f and returns it.
func (f *Function) NewBlock(name string) *Block {
	b := &Block{Name: name}
	f.Blocks = append(f.Blocks, b)
	return b
}

func (f *Function) nextInstrID() int {
	f.nextID++
	return f.nextID
}

// Emit appends a computing instruction of the given op/type/args to b and
// returns it as a usable Value.
func (f *Function) Emit(b *Block, op Op, typ Type, args ...Value) *Instr {
	i := &Instr{id: f.nextInstrID(), Op: op, Typ: typ, Args: args}
	b.Instrs = append(b.Instrs, i)
	return i
}

// EmitField is Emit specialized for ops that carry a name and ordinal:
// OpFieldAddr, OpLoad, OpCall and OpIntern.
func (f *Function) EmitField(b *Block, op Op, typ Type, name string, index int, args ...Value) *Instr {
	i := &Instr{id: f.nextInstrID(), Op: op, Typ: typ, Args: args, Field: name, Index: index}
	b.Instrs = append(b.Instrs, i)
	return i
}

// AddPhi appends a new, empty φ-node of type typ to b's head.
func (f *Function) AddPhi(b *Block, typ Type) *Phi {
	p := &Phi{id: f.nextInstrID(), Typ: typ}
	b.Phis = append(b.Phis, p)
	return p
}

// SetRet terminates b with `ret v`.
func (f *Function) SetRet(b *Block, v Value) {
	b.Term = &Term{Kind: TermRet, Value: v}
}

// SetBr terminates b with an unconditional branch to target, wiring the
// predecessor edge.
func (f *Function) SetBr(b *Block, target *Block) {
	b.Term = &Term{Kind: TermBr, Targets: []*Block{target}}
	target.AddPred(b)
}

// SetCondBr terminates b with a conditional branch on cond, wiring both
// predecessor edges.
func (f *Function) SetCondBr(b *Block, cond Value, thenB, elseB *Block) {
	b.Term = &Term{Kind: TermCondBr, Value: cond, Targets: []*Block{thenB, elseB}}
	thenB.AddPred(b)
	elseB.AddPred(b)
}

// Module is the full output of compiling one manifest (spec.md §4.5):
// synthesized conf_t/prop_t layouts, every user-declared struct type, and
// one Function per top-level expression/specification.
type Module struct {
	Name     string
	ConfType ast.TStruct
	PropType ast.TStruct
	Types    []ast.TStruct
	Funcs    []*Function
}
