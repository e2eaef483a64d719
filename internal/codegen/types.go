// Package codegen lowers a rewritten, type-annotated AST (internal/ast,
// post internal/typecalc and internal/rewrite) to internal/ir functions,
// one per top-level expression or specification (spec.md §4.5).
//
// Grounded rule-for-rule on original_source/core/visitors/compile.cpp:
// the atomic lowerings, the UR/ST characteristic-constant table, and the
// XY single-step emitter all mirror that file's CompileExprImpl. Where
// compile.cpp left a node's body empty — ExprChoice, ExprConstString, and
// every past/bounded-past temporal operator it stubbed out — this package
// completes the implementation (see SPEC_FULL.md §4).
package codegen

import (
	"github.com/reftrace/stlc/internal/ast"
	"github.com/reftrace/stlc/internal/module"
)

// BuildPropType synthesizes prop_t: __time__ followed by one field per
// declared property, in declaration order (spec.md §3, §4.5).
func BuildPropType(mod *module.Table) ast.TStruct {
	fields := []ast.Field{{Name: "__time__", Type: ast.TInt{}}}
	for _, name := range mod.GetPropNames() {
		typ, err := mod.GetProp(ast.Span{}, name)
		if err != nil {
			continue
		}
		fields = append(fields, ast.Field{Name: name, Type: typ})
	}
	return ast.TStruct{Name: "prop_t", Fields: fields}
}

// BuildConfType synthesizes conf_t: one field per declared configuration
// constant, in declaration order.
func BuildConfType(mod *module.Table) ast.TStruct {
	var fields []ast.Field
	for _, name := range mod.GetConfNames() {
		typ, err := mod.GetConf(ast.Span{}, name)
		if err != nil {
			continue
		}
		fields = append(fields, ast.Field{Name: name, Type: typ})
	}
	return ast.TStruct{Name: "conf_t", Fields: fields}
}

// layoutType narrows a declared type to its generator encoding (spec.md
// §4.5): enums to i8 (modeled here as TInt, this IR has no sub-word int),
// strings stay process-interned pointers (TString), dynamic arrays to
// {len,ptr} (modeled as-is via TArray with N==0), fixed arrays unchanged.
func layoutType(t ast.Type) ast.Type {
	switch t.(type) {
	case ast.TEnum:
		return ast.TInt{}
	default:
		return t
	}
}

