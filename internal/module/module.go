// Package module implements the Module Table (spec.md §4.2): the three
// disjoint, insertion-ordered namespaces a compilation unit declares into
// (types, properties, configurations), the lexical binder stack used to
// resolve @name references, and the top-level list of expressions and
// specifications a front-end records.
//
// Grounded on the reference's Module class (original_source/core/module.hpp),
// generalized from its two namespaces (type/data) to the three the language
// now distinguishes (type/prop/conf).
package module

import (
	"github.com/reftrace/stlc/internal/ast"
	"github.com/reftrace/stlc/internal/errors"
)

// Table is one compilation unit's declared names, bindings, and top-level
// output. It is not safe for concurrent use.
type Table struct {
	name string

	typeNames []string
	types     map[string]ast.Type

	propNames []string
	props     map[string]ast.Type

	confNames []string
	confs     map[string]ast.Type

	context []binder

	exprs []ast.Expr
	specs []*ast.Spec
}

type binder struct {
	name string
	typ  ast.Type
}

// New creates an empty module table named name (used only for diagnostics).
func New(name string) *Table {
	return &Table{
		name:  name,
		types: map[string]ast.Type{},
		props: map[string]ast.Type{},
		confs: map[string]ast.Type{},
	}
}

// AddType declares a named type. Fails with MOD001 if name is already a
// type, or MOD004 if name already names a property/configuration.
func (t *Table) AddType(span ast.Span, name string, typ ast.Type) error {
	if _, ok := t.types[name]; ok {
		return errors.Duplicate(errors.MOD001DuplicateType, span, "type", name)
	}
	if t.clashesNamespace(name) {
		return errors.New(errors.PhaseModule, errors.MOD004NamespaceClash, span,
			"name %q already declared in another namespace", name).WithData("name", name)
	}
	t.typeNames = append(t.typeNames, name)
	t.types[name] = typ
	return nil
}

// AddProp declares a named trace property. Fails with MOD002 or MOD004.
func (t *Table) AddProp(span ast.Span, name string, typ ast.Type) error {
	if _, ok := t.props[name]; ok {
		return errors.Duplicate(errors.MOD002DuplicateProp, span, "property", name)
	}
	if t.clashesNamespace(name) {
		return errors.New(errors.PhaseModule, errors.MOD004NamespaceClash, span,
			"name %q already declared in another namespace", name).WithData("name", name)
	}
	t.propNames = append(t.propNames, name)
	t.props[name] = typ
	return nil
}

// AddConf declares a named configuration constant. Fails with MOD003 or MOD004.
func (t *Table) AddConf(span ast.Span, name string, typ ast.Type) error {
	if _, ok := t.confs[name]; ok {
		return errors.Duplicate(errors.MOD003DuplicateConf, span, "configuration", name)
	}
	if t.clashesNamespace(name) {
		return errors.New(errors.PhaseModule, errors.MOD004NamespaceClash, span,
			"name %q already declared in another namespace", name).WithData("name", name)
	}
	t.confNames = append(t.confNames, name)
	t.confs[name] = typ
	return nil
}

// clashesNamespace reports whether name is already used in a namespace
// other than the one about to be checked by the caller. Property and
// configuration namespaces are disjoint from types and from each other.
func (t *Table) clashesNamespace(name string) bool {
	_, inType := t.types[name]
	_, inProp := t.props[name]
	_, inConf := t.confs[name]
	return inType || inProp || inConf
}

// GetType, GetProp, GetConf look up a declared name, returning MOD005/006/007
// if it is unknown.
func (t *Table) GetType(span ast.Span, name string) (ast.Type, error) {
	if typ, ok := t.types[name]; ok {
		return typ, nil
	}
	return nil, errors.Unknown(errors.PhaseModule, errors.MOD005UnknownType, span, "type", name)
}

func (t *Table) GetProp(span ast.Span, name string) (ast.Type, error) {
	if typ, ok := t.props[name]; ok {
		return typ, nil
	}
	return nil, errors.Unknown(errors.PhaseModule, errors.MOD006UnknownProp, span, "property", name)
}

func (t *Table) GetConf(span ast.Span, name string) (ast.Type, error) {
	if typ, ok := t.confs[name]; ok {
		return typ, nil
	}
	return nil, errors.Unknown(errors.PhaseModule, errors.MOD007UnknownConf, span, "configuration", name)
}

func (t *Table) HasType(name string) bool {
	_, ok := t.types[name]
	return ok
}

func (t *Table) HasProp(name string) bool {
	_, ok := t.props[name]
	return ok
}

func (t *Table) HasConf(name string) bool {
	_, ok := t.confs[name]
	return ok
}

// GetTypeNames, GetPropNames, GetConfNames return declared names in the
// order they were added — the codegen type layout (spec.md §4.5) and CLI
// --csv-headers output both depend on this order being stable.
func (t *Table) GetTypeNames() []string { return append([]string(nil), t.typeNames...) }
func (t *Table) GetPropNames() []string { return append([]string(nil), t.propNames...) }
func (t *Table) GetConfNames() []string { return append([]string(nil), t.confNames...) }

// PushContext enters a new @name binder scope of the given type, shadowing
// any outer binder of the same name.
func (t *Table) PushContext(name string, typ ast.Type) {
	t.context = append(t.context, binder{name: name, typ: typ})
}

// PopContext leaves the innermost binder scope. Fails with MOD008 if the
// stack is already empty.
func (t *Table) PopContext(span ast.Span) error {
	if len(t.context) == 0 {
		return errors.New(errors.PhaseModule, errors.MOD008UnknownContext, span, "pop of empty context stack")
	}
	t.context = t.context[:len(t.context)-1]
	return nil
}

// HasContext reports whether name is bound in the current scope stack.
func (t *Table) HasContext(name string) bool {
	_, ok := t.lookupContext(name)
	return ok
}

// LookupContext resolves name to the innermost matching binder's type.
func (t *Table) LookupContext(span ast.Span, name string) (ast.Type, error) {
	if typ, ok := t.lookupContext(name); ok {
		return typ, nil
	}
	return nil, errors.Unknown(errors.PhaseModule, errors.MOD008UnknownContext, span, "binder", name)
}

func (t *Table) lookupContext(name string) (ast.Type, bool) {
	for i := len(t.context) - 1; i >= 0; i-- {
		if t.context[i].name == name {
			return t.context[i].typ, true
		}
	}
	return nil, false
}

// AddExpr and AddSpec record one top-level output unit (spec.md §4.2,
// "the top-level output of the front-end"); each becomes one emitted
// function (spec.md §4.5).
func (t *Table) AddExpr(e ast.Expr) { t.exprs = append(t.exprs, e) }
func (t *Table) AddSpec(s *ast.Spec) { t.specs = append(t.specs, s) }

func (t *Table) GetExprs() []ast.Expr { return append([]ast.Expr(nil), t.exprs...) }
func (t *Table) GetSpecs() []*ast.Spec { return append([]*ast.Spec(nil), t.specs...) }

// Name returns the module's diagnostic name.
func (t *Table) Name() string { return t.name }
