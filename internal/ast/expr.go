package ast

// Expr is the base interface for every expression node (spec.md §3). The
// family is closed: the exprNode marker restricts implementers to this
// package, and every consumer (typecalc, rewrite, codegen) is expected to
// type-switch exhaustively over the constructors listed below.
type Expr interface {
	exprNode()
	Position() Span
	SetSpan(s Span)
	Type() Type
	SetType(t Type)
}

// Meta carries the two pieces of state attached to an expression node that
// are NOT part of its hash-consing identity: its source span (stamped by
// the position overload of factory.Create, spec.md §4.1) and its computed
// result type (set by internal/typecalc, spec.md §4.3). Both are mutated
// in place on the shared, hash-consed instance — matching the reference
// compiler, where `expr->where(pos)` and the type-calc visitor both write
// through the single canonical node.
type Meta struct {
	Span Span
	Typ  Type
}

func (m *Meta) exprNode() {}

// Position returns the stamped span, or the zero Span if none was set.
func (m *Meta) Position() Span { return m.Span }

// SetSpan stamps the source span; called once by the factory's position
// overload after hash-cons lookup (spec.md §4.1 — position is metadata,
// not identity).
func (m *Meta) SetSpan(s Span) { m.Span = s }

// Type returns the result type annotated by typecalc, or nil before
// typecalc has run.
func (m *Meta) Type() Type { return m.Typ }

// SetType stores the result type computed by internal/typecalc.
func (m *Meta) SetType(t Type) { m.Typ = t }

// --- Nullary literals ---------------------------------------------------

type BoolLit struct {
	Meta
	Value bool
}

type IntLit struct {
	Meta
	Value int64
}

type FloatLit struct {
	Meta
	Value float64
}

// StringLit holds an interned string; Value is the canonical, pointer-
// comparable instance produced by internal/intern.
type StringLit struct {
	Meta
	Value *string
}

// --- Variable references -------------------------------------------------

// Data references a declared property or configuration constant by name.
type Data struct {
	Meta
	Name string
}

// Context references the current sample binding: "__curr__", "__conf__",
// or a binder introduced by a spec scope or a bounded-lowering rewrite
// ("@name" surfaces here with its leading '@' stripped).
type Context struct {
	Meta
	Name string
}

// Member accesses a named field of a struct, or tests an enum discriminant
// for equality with a label (result type Boolean in the enum case).
type Member struct {
	Meta
	Base Expr
	Name string
}

// Index accesses element I of an array-typed Base.
type Index struct {
	Meta
	Base Expr
	I    Expr
}

// --- Arithmetic ------------------------------------------------------------

type Neg struct {
	Meta
	Arg Expr
}

// BinOp is the shared shape for every binary arithmetic/comparison/logical
// operator; Op distinguishes the concrete operator, mirroring the
// reference's SetOper<OP,...> template.
type BinOp struct {
	Meta
	Op  BinOpKind
	LHS Expr
	RHS Expr
}

type BinOpKind int

const (
	OpAdd BinOpKind = iota
	OpSub
	OpMul
	OpDiv
	OpMod
	OpEq
	OpNe
	OpLt
	OpLe
	OpGt
	OpGe
	OpEqu // <=>
	OpAnd
	OpOr
	OpXor
	OpImp // =>
)

func (k BinOpKind) String() string {
	switch k {
	case OpAdd:
		return "+"
	case OpSub:
		return "-"
	case OpMul:
		return "*"
	case OpDiv:
		return "/"
	case OpMod:
		return "%"
	case OpEq:
		return "=="
	case OpNe:
		return "!="
	case OpLt:
		return "<"
	case OpLe:
		return "<="
	case OpGt:
		return ">"
	case OpGe:
		return ">="
	case OpEqu:
		return "<=>"
	case OpAnd:
		return "&&"
	case OpOr:
		return "||"
	case OpXor:
		return "^"
	case OpImp:
		return "=>"
	default:
		return "?"
	}
}

// IsComparison reports whether k produces a Boolean from comparable scalars.
func (k BinOpKind) IsComparison() bool {
	switch k {
	case OpEq, OpNe, OpLt, OpLe, OpGt, OpGe:
		return true
	default:
		return false
	}
}

// IsArithmetic reports whether k is +,-,*,/,%.
func (k BinOpKind) IsArithmetic() bool {
	switch k {
	case OpAdd, OpSub, OpMul, OpDiv, OpMod:
		return true
	default:
		return false
	}
}

// --- Logical ----------------------------------------------------------------

type Not struct {
	Meta
	Arg Expr
}

// Choice is the ternary a ? b : c.
type Choice struct {
	Meta
	Cond Expr
	Then Expr
	Else Expr
}

// --- Integration --------------------------------------------------------

// Integ is int(body, height[, time]): area under height over sub-intervals
// of the (optionally time-bounded) window where body holds.
type Integ struct {
	Meta
	Body   Expr
	Height Expr
	Time   *TimeInterval
}

// --- Temporal -------------------------------------------------------------

// TemporalOp identifies one of the sixteen future/past temporal operators.
type TemporalOp int

const (
	OpG TemporalOp = iota
	OpF
	OpXs
	OpXw
	OpUs
	OpUw
	OpRs
	OpRw
	OpH
	OpO
	OpYs
	OpYw
	OpSs
	OpSw
	OpTs
	OpTw
)

func (op TemporalOp) String() string {
	names := [...]string{"G", "F", "Xs", "Xw", "Us", "Uw", "Rs", "Rw", "H", "O", "Ys", "Yw", "Ss", "Sw", "Ts", "Tw"}
	if int(op) < len(names) {
		return names[op]
	}
	return "?"
}

// IsFuture reports whether op advances via getNext (as opposed to getPrev).
func (op TemporalOp) IsFuture() bool {
	return op <= OpRw
}

// IsUnary reports whether op takes one operand (G,F,Xs,Xw,H,O,Ys,Yw) as
// opposed to two (Us,Uw,Rs,Rw,Ss,Sw,Ts,Tw).
func (op TemporalOp) IsUnary() bool {
	switch op {
	case OpG, OpF, OpXs, OpXw, OpH, OpO, OpYs, OpYw:
		return true
	default:
		return false
	}
}

// Dual returns the De Morgan dual of op used by negation fusion
// (spec.md §4.4): !Us -> Rw, !Uw -> Rs, !Rs -> Uw, !Rw -> Us, !Xs -> Xw,
// !Xw -> Xs, !G -> F, !F -> G, and symmetrically for past operators.
func (op TemporalOp) Dual() TemporalOp {
	switch op {
	case OpG:
		return OpF
	case OpF:
		return OpG
	case OpXs:
		return OpXw
	case OpXw:
		return OpXs
	case OpUs:
		return OpRw
	case OpUw:
		return OpRs
	case OpRs:
		return OpUw
	case OpRw:
		return OpUs
	case OpH:
		return OpO
	case OpO:
		return OpH
	case OpYs:
		return OpYw
	case OpYw:
		return OpYs
	case OpSs:
		return OpTw
	case OpSw:
		return OpTs
	case OpTs:
		return OpSw
	case OpTw:
		return OpSs
	default:
		return op
	}
}

// TemporalUnary is G/F/Xs/Xw/H/O/Ys/Yw, optionally time-bounded; rewrite
// keeps the bound and codegen applies it.
type TemporalUnary struct {
	Meta
	Op   TemporalOp
	Time *TimeInterval
	Arg  Expr
}

// TemporalBinary is Us/Uw/Rs/Rw/Ss/Sw/Ts/Tw, optionally time-bounded.
type TemporalBinary struct {
	Meta
	Op   TemporalOp
	Time *TimeInterval
	LHS  Expr
	RHS  Expr
}

// --- Binder & grouping ------------------------------------------------------

// At binds Name to the current sample pointer for the dynamic extent of
// Arg. The bounded-lowering rewrite (spec.md §4.4) synthesizes it to
// capture the "starting" sample, and the manifest reader builds one from
// an (at name expr) form.
type At struct {
	Meta
	Name string
	Arg  Expr
}

// Paren preserves source-level associativity; the rewriter removes it
// wherever it wraps an atom (spec.md §4.4) and otherwise keeps it as a
// semantic no-op.
type Paren struct {
	Meta
	Arg Expr
}

// --- Specification scopes -----------------------------------------------

// SpecKind identifies which of the five scope forms a Spec node is.
type SpecKind int

const (
	SpecGlobally SpecKind = iota
	SpecBefore
	SpecAfter
	SpecBetween
	SpecAfterUntil
)

func (k SpecKind) String() string {
	switch k {
	case SpecGlobally:
		return "globally"
	case SpecBefore:
		return "before"
	case SpecAfter:
		return "after"
	case SpecBetween:
		return "between"
	case SpecAfterUntil:
		return "after_until"
	default:
		return "?"
	}
}

// Spec is globally(expr) | before(cond,expr) | after(cond,expr) |
// between(lhs,rhs,expr) | after_until(lhs,rhs,expr). LHS/RHS/Cond are used
// according to Kind: Globally uses only Body; Before/After use Cond and
// Body; Between/AfterUntil use LHS, RHS and Body.
type Spec struct {
	Meta
	Kind SpecKind
	Cond Expr // Before, After
	LHS  Expr // Between, AfterUntil
	RHS  Expr // Between, AfterUntil
	Body Expr
}
