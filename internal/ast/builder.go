package ast

import "github.com/reftrace/stlc/internal/factory"

// Builder is the factory described in spec.md §4.1: one create(args...)
// operation per node kind, hash-consed on the constructor arguments, with
// source position stamped on the canonical result afterward so that two
// calls with equal arguments but different positions still share identity.
// A Builder belongs to exactly one compilation unit (spec.md §5); it is not
// safe to share across modules compiled in parallel, matching the
// reference's "per-module factory suffices" guidance.
type Builder struct {
	bools    *factory.Factory[boolKey, BoolLit]
	ints     *factory.Factory[intKey, IntLit]
	floats   *factory.Factory[floatKey, FloatLit]
	strings  *factory.Factory[strKey, StringLit]
	datas    *factory.Factory[dataKey, Data]
	contexts *factory.Factory[ctxKey, Context]
	members  *factory.Factory[memberKey, Member]
	indexes  *factory.Factory[indexKey, Index]
	negs     *factory.Factory[unaryKey, Neg]
	bins     *factory.Factory[binKey, BinOp]
	nots     *factory.Factory[unaryKey, Not]
	choices  *factory.Factory[choiceKey, Choice]
	integs   *factory.Factory[integKey, Integ]
	tunaries *factory.Factory[tunaryKey, TemporalUnary]
	tbinarys *factory.Factory[tbinaryKey, TemporalBinary]
	ats      *factory.Factory[atKey, At]
	parens   *factory.Factory[unaryKey, Paren]
	specs    *factory.Factory[specKey, Spec]
	times    *factory.Factory[TimeInterval, TimeInterval]
}

// NewBuilder creates a fresh, empty factory arena for one compilation unit.
func NewBuilder() *Builder {
	return &Builder{
		bools:    factory.New[boolKey, BoolLit](),
		ints:     factory.New[intKey, IntLit](),
		floats:   factory.New[floatKey, FloatLit](),
		strings:  factory.New[strKey, StringLit](),
		datas:    factory.New[dataKey, Data](),
		contexts: factory.New[ctxKey, Context](),
		members:  factory.New[memberKey, Member](),
		indexes:  factory.New[indexKey, Index](),
		negs:     factory.New[unaryKey, Neg](),
		bins:     factory.New[binKey, BinOp](),
		nots:     factory.New[unaryKey, Not](),
		choices:  factory.New[choiceKey, Choice](),
		integs:   factory.New[integKey, Integ](),
		tunaries: factory.New[tunaryKey, TemporalUnary](),
		tbinarys: factory.New[tbinaryKey, TemporalBinary](),
		ats:      factory.New[atKey, At](),
		parens:   factory.New[unaryKey, Paren](),
		specs:    factory.New[specKey, Spec](),
		times:    factory.New[TimeInterval, TimeInterval](),
	}
}

type boolKey struct{ v bool }
type intKey struct{ v int64 }
type floatKey struct{ v float64 }
type strKey struct{ v *string }
type dataKey struct{ name string }
type ctxKey struct{ name string }
type memberKey struct {
	base Expr
	name string
}
type indexKey struct{ base, i Expr }
type unaryKey struct{ arg Expr }
type binKey struct {
	op       BinOpKind
	lhs, rhs Expr
}
type choiceKey struct{ cond, then, els Expr }
type integKey struct {
	body, height Expr
	time         TimeInterval
	hasTime      bool
}
type tunaryKey struct {
	op      TemporalOp
	time    TimeInterval
	hasTime bool
	arg     Expr
}
type tbinaryKey struct {
	op       TemporalOp
	time     TimeInterval
	hasTime  bool
	lhs, rhs Expr
}
type atKey struct {
	name string
	arg  Expr
}
type specKey struct {
	kind          SpecKind
	cond, lhs, rhs, body Expr
}

func stamp[T Expr](n T, pos Span) T {
	n.SetSpan(pos)
	return n
}

func (b *Builder) Bool(pos Span, v bool) *BoolLit {
	n := b.bools.Create(boolKey{v}, func() *BoolLit { return &BoolLit{Value: v} })
	return stamp(n, pos)
}

func (b *Builder) Int(pos Span, v int64) *IntLit {
	n := b.ints.Create(intKey{v}, func() *IntLit { return &IntLit{Value: v} })
	return stamp(n, pos)
}

func (b *Builder) Float(pos Span, v float64) *FloatLit {
	n := b.floats.Create(floatKey{v}, func() *FloatLit { return &FloatLit{Value: v} })
	return stamp(n, pos)
}

// String hash-conses the literal node on the pointer v, which the caller
// has already interned; String itself does no interning.
func (b *Builder) String(pos Span, v *string) *StringLit {
	n := b.strings.Create(strKey{v}, func() *StringLit { return &StringLit{Value: v} })
	return stamp(n, pos)
}

func (b *Builder) Data(pos Span, name string) *Data {
	n := b.datas.Create(dataKey{name}, func() *Data { return &Data{Name: name} })
	return stamp(n, pos)
}

func (b *Builder) Context(pos Span, name string) *Context {
	n := b.contexts.Create(ctxKey{name}, func() *Context { return &Context{Name: name} })
	return stamp(n, pos)
}

func (b *Builder) Member(pos Span, base Expr, name string) *Member {
	n := b.members.Create(memberKey{base, name}, func() *Member { return &Member{Base: base, Name: name} })
	return stamp(n, pos)
}

func (b *Builder) Index(pos Span, base, i Expr) *Index {
	n := b.indexes.Create(indexKey{base, i}, func() *Index { return &Index{Base: base, I: i} })
	return stamp(n, pos)
}

func (b *Builder) Neg(pos Span, arg Expr) *Neg {
	n := b.negs.Create(unaryKey{arg}, func() *Neg { return &Neg{Arg: arg} })
	return stamp(n, pos)
}

func (b *Builder) Bin(pos Span, op BinOpKind, lhs, rhs Expr) *BinOp {
	n := b.bins.Create(binKey{op, lhs, rhs}, func() *BinOp { return &BinOp{Op: op, LHS: lhs, RHS: rhs} })
	return stamp(n, pos)
}

func (b *Builder) Not(pos Span, arg Expr) *Not {
	n := b.nots.Create(unaryKey{arg}, func() *Not { return &Not{Arg: arg} })
	return stamp(n, pos)
}

func (b *Builder) Choice(pos Span, cond, then, els Expr) *Choice {
	n := b.choices.Create(choiceKey{cond, then, els}, func() *Choice {
		return &Choice{Cond: cond, Then: then, Else: els}
	})
	return stamp(n, pos)
}

// Integ builds int(body,height[,time]). A nil time means the unbounded
// window [frst,last].
func (b *Builder) Integ(pos Span, body, height Expr, time *TimeInterval) *Integ {
	key := integKey{body: body, height: height}
	if time != nil {
		key.time = *time
		key.hasTime = true
	}
	n := b.integs.Create(key, func() *Integ {
		return &Integ{Body: body, Height: height, Time: time}
	})
	return stamp(n, pos)
}

func (b *Builder) TUnary(pos Span, op TemporalOp, time *TimeInterval, arg Expr) *TemporalUnary {
	key := tunaryKey{op: op, arg: arg}
	if time != nil {
		key.time = *time
		key.hasTime = true
	}
	n := b.tunaries.Create(key, func() *TemporalUnary {
		return &TemporalUnary{Op: op, Time: time, Arg: arg}
	})
	return stamp(n, pos)
}

func (b *Builder) TBinary(pos Span, op TemporalOp, time *TimeInterval, lhs, rhs Expr) *TemporalBinary {
	key := tbinaryKey{op: op, lhs: lhs, rhs: rhs}
	if time != nil {
		key.time = *time
		key.hasTime = true
	}
	n := b.tbinarys.Create(key, func() *TemporalBinary {
		return &TemporalBinary{Op: op, Time: time, LHS: lhs, RHS: rhs}
	})
	return stamp(n, pos)
}

func (b *Builder) At(pos Span, name string, arg Expr) *At {
	n := b.ats.Create(atKey{name, arg}, func() *At { return &At{Name: name, Arg: arg} })
	return stamp(n, pos)
}

func (b *Builder) Paren(pos Span, arg Expr) *Paren {
	n := b.parens.Create(unaryKey{arg}, func() *Paren { return &Paren{Arg: arg} })
	return stamp(n, pos)
}

func (b *Builder) Spec(pos Span, kind SpecKind, cond, lhs, rhs, body Expr) *Spec {
	key := specKey{kind: kind, cond: cond, lhs: lhs, rhs: rhs, body: body}
	n := b.specs.Create(key, func() *Spec {
		return &Spec{Kind: kind, Cond: cond, LHS: lhs, RHS: rhs, Body: body}
	})
	return stamp(n, pos)
}

// Time hash-conses a TimeInterval the same way expression nodes are
// hash-consed (spec.md §4.1).
func (b *Builder) Time(lo, hi Expr) TimeInterval {
	key := TimeInterval{Lo: lo, Hi: hi}
	return *b.times.Create(key, func() *TimeInterval { t := key; return &t })
}

// TimeLower and TimeUpper are the one-sided sugar forms (spec.md §4.1).
func (b *Builder) TimeLower(lo Expr) TimeInterval { return b.Time(lo, nil) }
func (b *Builder) TimeUpper(hi Expr) TimeInterval { return b.Time(nil, hi) }
