// Package manifest implements the declarative front-end named in spec.md §1
// as out of scope: since this repository has no lexer/parser of its own, a
// manifest is a small YAML file (gopkg.in/yaml.v3, the teacher's own
// eval-harness dependency) declaring a module's types, properties and
// configurations, plus textual s-expression bodies for its top-level
// expressions and specifications — fed through internal/manifest/sexpr.go
// into the same internal/ast.Builder and internal/module.Table operations
// a real front-end would call.
package manifest

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/reftrace/stlc/internal/ast"
	"github.com/reftrace/stlc/internal/module"
)

// Manifest is the on-disk shape of a module declaration.
type Manifest struct {
	Module     string      `yaml:"module"`
	Types      []TypeDecl  `yaml:"types"`
	Properties []FieldDecl `yaml:"properties"`
	Configs    []FieldDecl `yaml:"configs"`
	Exprs      []string    `yaml:"exprs"`
	Specs      []SpecDecl  `yaml:"specs"`
}

// TypeDecl declares one named struct, enum, or array type. Kind selects
// which of Labels, Fields, or Elem/N is read.
type TypeDecl struct {
	Name   string      `yaml:"name"`
	Kind   string      `yaml:"kind"` // "enum" | "struct" | "array"
	Labels []string    `yaml:"labels,omitempty"`
	Fields []FieldDecl `yaml:"fields,omitempty"`
	Elem   string      `yaml:"elem,omitempty"`
	N      int         `yaml:"n,omitempty"`
}

// FieldDecl names a property, configuration, or struct field and the
// (primitive or previously declared) type it references by name.
type FieldDecl struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
}

// SpecDecl declares one specification scope (spec.md §4.2's five forms).
// Which of Cond/LHS/RHS are read depends on Kind; Body is always required.
type SpecDecl struct {
	Kind string `yaml:"kind"` // globally | before | after | between | after_until
	Cond string `yaml:"cond,omitempty"`
	LHS  string `yaml:"lhs,omitempty"`
	RHS  string `yaml:"rhs,omitempty"`
	Body string `yaml:"body"`
}

// Load reads and validates a manifest file.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("manifest: failed to read %s: %w", path, err)
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("manifest: failed to parse YAML: %w", err)
	}

	if err := m.validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

func (m *Manifest) validate() error {
	if m.Module == "" {
		return fmt.Errorf("manifest: missing required field: module")
	}
	for i, t := range m.Types {
		if t.Name == "" {
			return fmt.Errorf("manifest: types[%d]: missing required field: name", i)
		}
		switch t.Kind {
		case "enum":
			if len(t.Labels) == 0 {
				return fmt.Errorf("manifest: types[%d] %q: enum requires labels", i, t.Name)
			}
		case "struct":
			if len(t.Fields) == 0 {
				return fmt.Errorf("manifest: types[%d] %q: struct requires fields", i, t.Name)
			}
		case "array":
			if t.Elem == "" {
				return fmt.Errorf("manifest: types[%d] %q: array requires elem", i, t.Name)
			}
		default:
			return fmt.Errorf("manifest: types[%d] %q: unknown kind %q", i, t.Name, t.Kind)
		}
	}
	for i, p := range m.Properties {
		if p.Name == "" || p.Type == "" {
			return fmt.Errorf("manifest: properties[%d]: name and type are required", i)
		}
	}
	for i, c := range m.Configs {
		if c.Name == "" || c.Type == "" {
			return fmt.Errorf("manifest: configs[%d]: name and type are required", i)
		}
	}
	for i, s := range m.Specs {
		if s.Body == "" {
			return fmt.Errorf("manifest: specs[%d]: missing required field: body", i)
		}
		switch s.Kind {
		case "globally":
		case "before", "after":
			if s.Cond == "" {
				return fmt.Errorf("manifest: specs[%d]: kind %q requires cond", i, s.Kind)
			}
		case "between", "after_until":
			if s.LHS == "" || s.RHS == "" {
				return fmt.Errorf("manifest: specs[%d]: kind %q requires lhs and rhs", i, s.Kind)
			}
		default:
			return fmt.Errorf("manifest: specs[%d]: unknown kind %q", i, s.Kind)
		}
	}
	return nil
}

// Build populates a fresh module.Table and ast.Builder from m: types then
// properties then configs (so later declarations may reference earlier
// ones by name, the same order a real front-end would enforce), followed
// by every expr and spec body, parsed by the s-expression reader.
//
// Each top-level expr/spec is stamped with a distinct position so the
// generated functions get the position-derived names spec.md §4.5
// describes, even though there is no real source file behind them.
func Build(m *Manifest) (*module.Table, *ast.Builder, error) {
	tbl := module.New(m.Module)
	b := ast.NewBuilder()
	types := map[string]ast.Type{}

	for i, td := range m.Types {
		typ, err := buildType(td, types)
		if err != nil {
			return nil, nil, fmt.Errorf("manifest: types[%d] %q: %w", i, td.Name, err)
		}
		if err := tbl.AddType(declSpan(i), td.Name, typ); err != nil {
			return nil, nil, err
		}
		types[td.Name] = typ
	}

	for i, p := range m.Properties {
		typ, err := resolveType(p.Type, types)
		if err != nil {
			return nil, nil, fmt.Errorf("manifest: properties[%d] %q: %w", i, p.Name, err)
		}
		if err := tbl.AddProp(declSpan(i), p.Name, typ); err != nil {
			return nil, nil, err
		}
	}

	for i, c := range m.Configs {
		typ, err := resolveType(c.Type, types)
		if err != nil {
			return nil, nil, fmt.Errorf("manifest: configs[%d] %q: %w", i, c.Name, err)
		}
		if err := tbl.AddConf(declSpan(i), c.Name, typ); err != nil {
			return nil, nil, err
		}
	}

	row := 1
	for i, src := range m.Exprs {
		e, err := parseSexprNamed(b, src, entrySpan(row))
		if err != nil {
			return nil, nil, fmt.Errorf("manifest: exprs[%d]: %w", i, err)
		}
		tbl.AddExpr(e)
		row++
	}

	for i, sd := range m.Specs {
		spec, err := buildSpec(b, sd, &row)
		if err != nil {
			return nil, nil, fmt.Errorf("manifest: specs[%d]: %w", i, err)
		}
		tbl.AddSpec(spec)
	}

	return tbl, b, nil
}

func buildSpec(b *ast.Builder, sd SpecDecl, row *int) (*ast.Spec, error) {
	parse := func(src string) (ast.Expr, error) {
		if src == "" {
			return nil, nil
		}
		e, err := parseSexprNamed(b, src, entrySpan(*row))
		*row++
		return e, err
	}

	cond, err := parse(sd.Cond)
	if err != nil {
		return nil, fmt.Errorf("cond: %w", err)
	}
	lhs, err := parse(sd.LHS)
	if err != nil {
		return nil, fmt.Errorf("lhs: %w", err)
	}
	rhs, err := parse(sd.RHS)
	if err != nil {
		return nil, fmt.Errorf("rhs: %w", err)
	}
	body, err := parse(sd.Body)
	if err != nil {
		return nil, fmt.Errorf("body: %w", err)
	}

	kind, err := specKind(sd.Kind)
	if err != nil {
		return nil, err
	}
	return b.Spec(entrySpan(*row), kind, cond, lhs, rhs, body), nil
}

func specKind(s string) (ast.SpecKind, error) {
	switch s {
	case "globally":
		return ast.SpecGlobally, nil
	case "before":
		return ast.SpecBefore, nil
	case "after":
		return ast.SpecAfter, nil
	case "between":
		return ast.SpecBetween, nil
	case "after_until":
		return ast.SpecAfterUntil, nil
	default:
		return 0, fmt.Errorf("unknown spec kind %q", s)
	}
}

func declSpan(i int) ast.Span {
	return ast.Span{Begin: ast.Pos{Row: i + 1}, End: ast.Pos{Row: i + 1}}
}

func entrySpan(row int) ast.Span {
	return ast.Span{Begin: ast.Pos{Row: row}, End: ast.Pos{Row: row}}
}

func buildType(td TypeDecl, known map[string]ast.Type) (ast.Type, error) {
	switch td.Kind {
	case "enum":
		return ast.TEnum{Labels: append([]string(nil), td.Labels...)}, nil
	case "struct":
		fields := make([]ast.Field, len(td.Fields))
		for i, f := range td.Fields {
			typ, err := resolveType(f.Type, known)
			if err != nil {
				return nil, fmt.Errorf("field %q: %w", f.Name, err)
			}
			fields[i] = ast.Field{Name: f.Name, Type: typ}
		}
		return ast.TStruct{Name: td.Name, Fields: fields}, nil
	case "array":
		elem, err := resolveType(td.Elem, known)
		if err != nil {
			return nil, fmt.Errorf("elem: %w", err)
		}
		return ast.TArray{Elem: elem, N: td.N}, nil
	default:
		return nil, fmt.Errorf("unknown kind %q", td.Kind)
	}
}

func resolveType(name string, known map[string]ast.Type) (ast.Type, error) {
	switch name {
	case "bool":
		return ast.TBool{}, nil
	case "int":
		return ast.TInt{}, nil
	case "num":
		return ast.TNum{}, nil
	case "string":
		return ast.TString{}, nil
	}
	if typ, ok := known[name]; ok {
		return typ, nil
	}
	return nil, fmt.Errorf("unknown type %q (not a primitive and not declared yet)", name)
}
