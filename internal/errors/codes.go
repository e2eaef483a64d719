// Package errors provides the structured, user-visible error reports for
// every failure kind spec.md §7 names: ParseError (raised externally, but
// representable here so the CLI can display one uniformly), DuplicateDeclaration,
// UnknownName, TypeError, RewriteError, and CodeGenError. Each is produced
// exactly once, at the layer that detects it, and carries a source position
// so nothing is reported without saying where.
package errors

// Error codes, grouped by the phase that raises them — following the
// teacher's own PAR###/TC###/... taxonomy (internal/errors/codes.go).
const (
	// Module table (MOD###)
	MOD001DuplicateType   = "MOD001" // addType on an already-declared name
	MOD002DuplicateProp   = "MOD002" // addProp on an already-declared name
	MOD003DuplicateConf   = "MOD003" // addConf on an already-declared name
	MOD004NamespaceClash  = "MOD004" // property/config name collides with a type name
	MOD005UnknownType     = "MOD005" // getType on an undeclared name
	MOD006UnknownProp     = "MOD006" // getProp on an undeclared name
	MOD007UnknownConf     = "MOD007" // getConf on an undeclared name
	MOD008UnknownContext  = "MOD008" // popContext with an empty stack, or hasContext mismatch

	// Type calculator (TYP###)
	TYP001UnknownName       = "TYP001" // data()/context() reference to an undeclared name or binder
	TYP002MemberOnNonStruct = "TYP002" // member() base is neither struct nor enum
	TYP003UnknownField      = "TYP003" // member() name not in struct/enum
	TYP004IndexOnNonArray   = "TYP004" // index() base is not an array
	TYP005NonIntegerIndex   = "TYP005" // index() subscript is not integer
	TYP006ArithmeticMismatch = "TYP006" // operands of +,-,*,/,% not both numeric
	TYP007ComparisonMismatch = "TYP007" // operands of comparison not same-typed after promotion
	TYP008NonBoolean         = "TYP008" // operand of &&,||,^,=>,<=>,!,temporal not Boolean
	TYP009IntegBadBody       = "TYP009" // int() body not Boolean, or height not numeric
	TYP010ChoiceCondNotBool  = "TYP010" // ternary condition not Boolean
	TYP011EquNotBoolean      = "TYP011" // <=> operand not Boolean

	// Rewriter (RWR###) — pipeline-internal invariant violations, not user-recoverable.
	RWR001NegationOfInteg     = "RWR001" // !int(...) reached the rewriter (TypeCalc should have rejected it)
	RWR002ResidualTimeInterval = "RWR002" // a temporal node still carries a TimeInterval after lowering
	RWR003ResidualNot          = "RWR003" // an ExprNot survived negation fusion

	// Code generator (GEN###)
	GEN001UnsupportedShape  = "GEN001" // AST shape the generator cannot handle (should be unreachable after TypeCalc+Rewrite)
	GEN002VerifyFailed      = "GEN002" // the emitted function failed IR verification
	GEN003UnknownBinder     = "GEN003" // context(@name) with no enclosing At in scope
)

// Phase names used in Report.Phase.
const (
	PhaseParser   = "parser"
	PhaseModule   = "module"
	PhaseTypeCalc = "typecalc"
	PhaseRewrite  = "rewrite"
	PhaseCodeGen  = "codegen"
)
