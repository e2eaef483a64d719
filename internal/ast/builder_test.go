package ast

import "testing"

// TestHashConsingIdentity is the factory invariant from spec.md §8: for any
// node kind and arguments, create(a) twice returns referentially equal
// results, and identity is independent of position.
func TestHashConsingIdentity(t *testing.T) {
	b := NewBuilder()

	d1 := b.Data(Span{Begin: Pos{1, 1}}, "speed")
	d2 := b.Data(Span{Begin: Pos{9, 9}}, "speed")

	if d1 != d2 {
		t.Fatalf("expected identical node for equal args across positions")
	}
	// Position is metadata only: the second stamp wins on the shared node.
	if d1.Position().Begin != (Pos{9, 9}) {
		t.Fatalf("expected last-stamped position to stick, got %v", d1.Position())
	}

	add1 := b.Bin(Span{}, OpAdd, d1, b.Int(Span{}, 1))
	add2 := b.Bin(Span{}, OpAdd, d2, b.Int(Span{}, 1))
	if add1 != add2 {
		t.Fatalf("expected hash-consed BinOp nodes to share identity")
	}

	sub := b.Bin(Span{}, OpSub, d1, b.Int(Span{}, 1))
	if Expr(sub) == Expr(add1) {
		t.Fatalf("expected different operator to produce a distinct node")
	}
}

func TestTimeIntervalHashConsing(t *testing.T) {
	b := NewBuilder()
	lo := b.Int(Span{}, 0)
	hi := b.Int(Span{}, 10)

	t1 := b.Time(lo, hi)
	t2 := b.Time(lo, hi)

	if t1.Lo != t2.Lo || t1.Hi != t2.Hi {
		t.Fatalf("expected time interval fields to match across calls")
	}
}
