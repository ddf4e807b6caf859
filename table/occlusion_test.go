package table

import "testing"

func TestIsBlockedByHigherZOrder(t *testing.T) {
	g := testGeometry()
	r := NewRegistry(g)
	a := at(0, g.HalfThickness, 0)
	b := at(0, 0, 0)
	r.Register("a", a)
	r.Register("b", b)
	b.pos.Y = r.RestHeight("b", 0, 0)

	if got := r.RestHeight("b", 0, 0); got != a.pos.Y+g.StackGap {
		t.Errorf("Expected b rest height %v, got %v", a.pos.Y+g.StackGap, got)
	}
	if !r.IsBlocked("a") {
		t.Error("Expected a to be blocked by b")
	}
	if r.IsBlocked("b") {
		t.Error("Expected b to be free")
	}
}

func TestBumpUncoversRegardlessOfHeight(t *testing.T) {
	g := testGeometry()
	r := NewRegistry(g)
	r.Register("a", at(0, g.HalfThickness, 0))
	r.Register("b", at(0.1, 0.5, 0.1))
	r.Register("c", at(-0.1, 0.9, 0))

	r.BumpZOrder("a")

	if r.IsBlocked("a") {
		t.Error("Expected bumped a to be on top")
	}
	if !r.IsBlocked("b") || !r.IsBlocked("c") {
		t.Error("Expected b and c to be covered by a")
	}
	if got := r.RestHeight("a", 0, 0); got != 0.9+g.StackGap {
		t.Errorf("Expected a to stack on the highest card below it, got %v", got)
	}
}

func TestIsBlockedIgnoresDistantCards(t *testing.T) {
	g := testGeometry()
	r := NewRegistry(g)
	r.Register("a", at(0, g.HalfThickness, 0))
	r.Register("b", at(2, g.HalfThickness, 0))

	if r.IsBlocked("a") || r.IsBlocked("b") {
		t.Error("Expected non-overlapping cards to be free")
	}
	if r.IsBlocked("unknown") {
		t.Error("Expected unknown card to be free")
	}
}
