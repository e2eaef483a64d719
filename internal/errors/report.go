package errors

import (
	"encoding/json"
	"fmt"

	"github.com/reftrace/stlc/internal/ast"
)

// Report is the canonical structured error type for this compiler,
// following the teacher's ailang.error/v1 report shape (internal/errors/report.go)
// adapted to this pipeline's phases and codes.
type Report struct {
	Schema  string         `json:"schema"` // always "stlc.error/v1"
	Code    string         `json:"code"`
	Phase   string         `json:"phase"`
	Message string         `json:"message"`
	Span    *ast.Span      `json:"span,omitempty"`
	Data    map[string]any `json:"data,omitempty"`
}

// Error implements the error interface.
func (r *Report) Error() string {
	if r.Span != nil {
		return fmt.Sprintf("%s [%s] %s: %s", r.Span, r.Code, r.Phase, r.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", r.Code, r.Phase, r.Message)
}

// New builds a Report at the given phase/code/position.
func New(phase, code string, span ast.Span, message string, args ...any) *Report {
	return &Report{
		Schema:  "stlc.error/v1",
		Code:    code,
		Phase:   phase,
		Message: fmt.Sprintf(message, args...),
		Span:    &span,
	}
}

// WithData attaches structured key/value context to a report (e.g. the
// conflicting name for a DuplicateDeclaration) and returns it for chaining.
func (r *Report) WithData(key string, value any) *Report {
	if r.Data == nil {
		r.Data = map[string]any{}
	}
	r.Data[key] = value
	return r
}

// ToJSON renders the report as indented JSON, for CLI diagnostics.
func (r *Report) ToJSON() (string, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// AsReport extracts a *Report from an error, if that is what it is.
func AsReport(err error) (*Report, bool) {
	r, ok := err.(*Report)
	return r, ok
}

// Duplicate builds a MOD### DuplicateDeclaration report for namespace ns
// ("type", "property", "configuration") and the conflicting name.
func Duplicate(code string, span ast.Span, ns, name string) *Report {
	return New(PhaseModule, code, span, "duplicate %s declaration: %q", ns, name).WithData("name", name)
}

// Unknown builds an UnknownName-family report.
func Unknown(phase, code string, span ast.Span, kind, name string) *Report {
	return New(phase, code, span, "unknown %s: %q", kind, name).WithData("name", name)
}

// TypeMismatch builds a TYP### report describing a mismatch between got and want.
func TypeMismatch(code string, span ast.Span, context string, got, want fmt.Stringer) *Report {
	return New(PhaseTypeCalc, code, span, "%s: got %s, want %s", context, got, want)
}
