package ast

// TimeInterval is a closed, lower-only, or upper-only window measured in
// __time__ units relative to the current sample (spec.md §3). Lo/Hi are
// themselves integer-typed expressions, evaluated against the current
// sample at codegen time; a nil bound means unbounded on that side.
type TimeInterval struct {
	Lo Expr // nil => (-inf, hi]
	Hi Expr // nil => [lo, +inf)
}

// TimeLowerBound builds the sugar form [lo, +inf) (spec.md §4.1).
func TimeLowerBound(lo Expr) TimeInterval {
	return TimeInterval{Lo: lo, Hi: nil}
}

// TimeUpperBound builds the sugar form (-inf, hi] (spec.md §4.1).
func TimeUpperBound(hi Expr) TimeInterval {
	return TimeInterval{Lo: nil, Hi: hi}
}

// IsBounded reports whether both Lo and Hi are present, i.e. this is a
// genuine [lo,hi] window rather than one-sided sugar.
func (t TimeInterval) IsBounded() bool { return t.Lo != nil && t.Hi != nil }
