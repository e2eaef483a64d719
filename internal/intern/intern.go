// Package intern implements the process-wide string interner the code
// generator relies on: string equality in generated code is pointer
// equality after interning (spec.md §9 "Strings"). Input is normalized the
// same way the teacher's lexer normalizes source text, so that
// byte-distinct but Unicode-equivalent literals still collapse onto one
// canonical pointer.
package intern

import (
	"sync"

	"github.com/reftrace/stlc/internal/lexer"
)

// Table is a process-wide (or, for tests, per-instance) interner. The zero
// value is ready to use.
type Table struct {
	mu      sync.Mutex
	strings map[string]*string
}

var global = &Table{}

// Intern returns the canonical *string for s, normalizing first. Two calls
// with Unicode-equivalent input return the identical pointer.
func Intern(s string) *string { return global.Intern(s) }

// Intern is the Table method version, for tests that want isolation from
// the process-wide table.
func (t *Table) Intern(s string) *string {
	norm := normalize(s)

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.strings == nil {
		t.strings = make(map[string]*string)
	}
	if p, ok := t.strings[norm]; ok {
		return p
	}
	p := &norm
	t.strings[norm] = p
	return p
}

// Equal reports whether a and b are the same interned identity — the
// operation the code generator lowers ExprEq/ExprNe to for strings.
func Equal(a, b *string) bool { return a == b }

// normalize applies the same BOM-stripping, NFC normalization lexer.Normalize
// performs at a real lexer boundary — reused here at the interner boundary
// since this repository has no lexer of its own (spec.md §1: the front-end
// is out of scope).
func normalize(s string) string {
	return string(lexer.Normalize([]byte(s)))
}
