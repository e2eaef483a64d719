package ir

import (
	"github.com/reftrace/stlc/internal/ast"
	"github.com/reftrace/stlc/internal/errors"
)

// Verify checks the structural invariants internal/codegen must satisfy
// before a function is handed off: every block ends in exactly one
// terminator, Ret/CondBr conditions are Boolean, and every φ-node has one
// incoming value per predecessor. This is deliberately a shape check, not
// a full SSA dominance verifier — the reference's own verifier failure was
// a design gap this implementation closes by surfacing GEN002 instead of
// the original's swallowed failure (see DESIGN.md).
func Verify(f *Function) error {
	if len(f.Blocks) == 0 {
		return errors.New(errors.PhaseCodeGen, errors.GEN002VerifyFailed, ast.Span{},
			"function %q has no basic blocks", f.Name)
	}
	for _, b := range f.Blocks {
		if err := verifyBlock(f, b); err != nil {
			return err
		}
	}
	return nil
}

func verifyBlock(f *Function, b *Block) error {
	if b.Term == nil {
		return errors.New(errors.PhaseCodeGen, errors.GEN002VerifyFailed, ast.Span{},
			"function %q: block %q has no terminator", f.Name, b.Name)
	}
	switch b.Term.Kind {
	case TermRet:
		if b.Term.Value == nil {
			return errors.New(errors.PhaseCodeGen, errors.GEN002VerifyFailed, ast.Span{},
				"function %q: block %q returns no value", f.Name, b.Name)
		}
		if _, ok := b.Term.Value.Type().(ast.TBool); !ok {
			return errors.New(errors.PhaseCodeGen, errors.GEN002VerifyFailed, ast.Span{},
				"function %q: block %q returns non-Boolean %s", f.Name, b.Name, b.Term.Value.Type())
		}
	case TermBr:
		if len(b.Term.Targets) != 1 {
			return errors.New(errors.PhaseCodeGen, errors.GEN002VerifyFailed, ast.Span{},
				"function %q: block %q has a malformed unconditional branch", f.Name, b.Name)
		}
	case TermCondBr:
		if len(b.Term.Targets) != 2 {
			return errors.New(errors.PhaseCodeGen, errors.GEN002VerifyFailed, ast.Span{},
				"function %q: block %q has a malformed conditional branch", f.Name, b.Name)
		}
		if b.Term.Value == nil {
			return errors.New(errors.PhaseCodeGen, errors.GEN002VerifyFailed, ast.Span{},
				"function %q: block %q conditional branch has no condition", f.Name, b.Name)
		}
		if _, ok := b.Term.Value.Type().(ast.TBool); !ok {
			return errors.New(errors.PhaseCodeGen, errors.GEN002VerifyFailed, ast.Span{},
				"function %q: block %q branches on non-Boolean %s", f.Name, b.Name, b.Term.Value.Type())
		}
	default:
		return errors.New(errors.PhaseCodeGen, errors.GEN002VerifyFailed, ast.Span{},
			"function %q: block %q has an unrecognized terminator kind", f.Name, b.Name)
	}

	for _, p := range b.Phis {
		if len(p.Incoming) != len(b.Preds) {
			return errors.New(errors.PhaseCodeGen, errors.GEN002VerifyFailed, ast.Span{},
				"function %q: block %q phi has %d incoming values for %d predecessors",
				f.Name, b.Name, len(p.Incoming), len(b.Preds))
		}
	}
	return nil
}
