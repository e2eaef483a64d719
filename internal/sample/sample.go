// Package sample is the in-memory trace fixture internal/interp evaluates
// compiled predicates against (spec.md §3): a contiguous, strictly
// __time__-increasing run of samples, each an inline timestamp plus one
// value per declared property, addressed by frst/curr/last cursors that
// step with getNext/getPrev.
package sample

// Sample is one trace entry: the runtime shadow of prop_t. Props holds one
// value per declared property in module declaration order — the same
// order internal/codegen's BuildPropType lays prop_t's fields out in,
// offset by one to skip __time__.
type Sample struct {
	Time  int64
	Props []any
}

// New builds a Sample with the given timestamp and property values.
func New(t int64, props ...any) *Sample {
	return &Sample{Time: t, Props: props}
}

// Trace is a finite, contiguous run of Samples in strictly increasing
// __time__ order — the `[frst,last]` band a compiled predicate runs over.
type Trace struct {
	Samples []*Sample
}

// Of builds a Trace from samples already in strictly increasing __time__
// order; it does not re-sort or validate monotonicity, matching the
// reference's assumption that the runtime hands it a well-formed trace.
func Of(samples ...*Sample) *Trace {
	return &Trace{Samples: samples}
}

// Cursor is a pointer into a Trace (spec.md §3's prop_t*): frst, curr,
// last, and every @name binder resolve to one of these at runtime.
type Cursor struct {
	Trace *Trace
	Index int
}

// At returns a Cursor at the given index. Index may run one past the last
// sample or one before the first — getNext/getPrev never clamp, so a
// bounds check against Frst/Last is always needed before dereferencing.
func (t *Trace) At(i int) *Cursor { return &Cursor{Trace: t, Index: i} }

// Frst and Last are the trace's two boundary cursors.
func (t *Trace) Frst() *Cursor { return t.At(0) }
func (t *Trace) Last() *Cursor { return t.At(len(t.Samples) - 1) }

// Sample dereferences the cursor. It panics if Index is out of bounds —
// callers must only dereference a cursor known to lie within [frst,last].
func (c *Cursor) Sample() *Sample { return c.Trace.Samples[c.Index] }

// Time is the inline __time__ field. It dereferences the cursor through
// Sample, so it panics on the same out-of-bounds cursors.
func (c *Cursor) Time() int64 { return c.Sample().Time }

// Next and Prev step by exactly one sample (getNext/getPrev).
func (c *Cursor) Next() *Cursor { return &Cursor{Trace: c.Trace, Index: c.Index + 1} }
func (c *Cursor) Prev() *Cursor { return &Cursor{Trace: c.Trace, Index: c.Index - 1} }

// Equal compares cursor identity by trace and index.
func (c *Cursor) Equal(o *Cursor) bool { return c.Trace == o.Trace && c.Index == o.Index }

// InBounds reports whether c lies within [frst,last] of its own trace.
func (c *Cursor) InBounds() bool { return c.Index >= 0 && c.Index < len(c.Trace.Samples) }
