package ast

import "strings"

// Type is the closed sum of result types (spec.md §3 "Type node").
// Every Expr is annotated with one of these after TypeCalc.
type Type interface {
	typeNode()
	String() string
}

// TVoid is the absence of a result type (unchecked/unreachable nodes only).
type TVoid struct{}

func (TVoid) typeNode()     {}
func (TVoid) String() string { return "void" }

// TBool is the Boolean type.
type TBool struct{}

func (TBool) typeNode()     {}
func (TBool) String() string { return "bool" }

// TInt is the 64-bit signed integer type.
type TInt struct{}

func (TInt) typeNode()     {}
func (TInt) String() string { return "int" }

// TNum is the IEEE-754 double type.
type TNum struct{}

func (TNum) typeNode()     {}
func (TNum) String() string { return "num" }

// TString is the pointer-comparable interned string type.
type TString struct{}

func (TString) typeNode()     {}
func (TString) String() string { return "string" }

// TEnum is an ordered list of labels; the discriminant is narrowed to i8
// by the code generator (spec.md §4.5).
type TEnum struct {
	Labels []string
}

func (TEnum) typeNode() {}
func (t TEnum) String() string {
	return "enum{" + strings.Join(t.Labels, ",") + "}"
}

// Index returns the ordinal of label, or -1 if it is not a member.
func (t TEnum) Index(label string) int {
	for i, l := range t.Labels {
		if l == label {
			return i
		}
	}
	return -1
}

// Field is one named member of a TStruct.
type Field struct {
	Name string
	Type Type
}

// TStruct is an ordered list of named fields, resolved by name to index.
type TStruct struct {
	Name   string // declared type name, used for IR struct naming
	Fields []Field
}

func (TStruct) typeNode() {}
func (t TStruct) String() string {
	parts := make([]string, len(t.Fields))
	for i, f := range t.Fields {
		parts[i] = f.Name + ":" + f.Type.String()
	}
	return "struct " + t.Name + "{" + strings.Join(parts, ",") + "}"
}

// FieldIndex returns the index of name in Fields, or -1.
func (t TStruct) FieldIndex(name string) int {
	for i, f := range t.Fields {
		if f.Name == name {
			return i
		}
	}
	return -1
}

// TArray is a fixed (N>0) or dynamic (N==0) array of Elem.
type TArray struct {
	Elem Type
	N    int
}

func (TArray) typeNode() {}
func (t TArray) String() string {
	if t.N == 0 {
		return t.Elem.String() + "[]"
	}
	return t.Elem.String() + "[" + itoa(t.N) + "]"
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

// SameType reports structural equality, which is what the hash-consing
// factory and the type calculator both need (Type is not itself hash-consed
// in this implementation — it is small enough to compare structurally, and
// struct/enum types are keyed by declared name anyway).
func SameType(a, b Type) bool {
	switch x := a.(type) {
	case TVoid:
		_, ok := b.(TVoid)
		return ok
	case TBool:
		_, ok := b.(TBool)
		return ok
	case TInt:
		_, ok := b.(TInt)
		return ok
	case TNum:
		_, ok := b.(TNum)
		return ok
	case TString:
		_, ok := b.(TString)
		return ok
	case TEnum:
		y, ok := b.(TEnum)
		if !ok || len(x.Labels) != len(y.Labels) {
			return false
		}
		for i := range x.Labels {
			if x.Labels[i] != y.Labels[i] {
				return false
			}
		}
		return true
	case TStruct:
		y, ok := b.(TStruct)
		return ok && x.Name == y.Name
	case TArray:
		y, ok := b.(TArray)
		return ok && x.N == y.N && SameType(x.Elem, y.Elem)
	case TSample:
		_, ok := b.(TSample)
		return ok
	case TConf:
		_, ok := b.(TConf)
		return ok
	default:
		return false
	}
}

// TSample is the type of "__curr__", "__frst__", "__last__", "__next__",
// "__prev__" and other contexts that resolve to a pointer into the trace (prop_t* in the generator, spec.md §4.5).
type TSample struct{}

func (TSample) typeNode()      {}
func (TSample) String() string { return "sample*" }

// TConf is the type of "__conf__": a pointer to the configuration struct
// (conf_t* in the generator, spec.md §4.5).
type TConf struct{}

func (TConf) typeNode()      {}
func (TConf) String() string { return "conf*" }

// IsNumeric reports whether t is TInt or TNum.
func IsNumeric(t Type) bool {
	switch t.(type) {
	case TInt, TNum:
		return true
	default:
		return false
	}
}
