package vmath

// Rect is an axis-aligned rectangle on the table plane, stored as centre and half extents
type Rect struct {
	CX, CZ       float64
	HalfW, HalfD float64
}

// RectAround builds a rectangle centred on (x, z) with the given half extents
func RectAround(x, z, halfW, halfD float64) Rect {
	return Rect{CX: x, CZ: z, HalfW: halfW, HalfD: halfD}
}

// Contains reports whether (x, z) lies strictly inside the rectangle
// Strict comparison keeps cards that merely touch edge-to-edge apart
func (r Rect) Contains(x, z float64) bool {
	dx := x - r.CX
	if dx < 0 {
		dx = -dx
	}
	dz := z - r.CZ
	if dz < 0 {
		dz = -dz
	}
	return dx < r.HalfW && dz < r.HalfD
}

// Expand grows both half extents by margin
func (r Rect) Expand(margin float64) Rect {
	r.HalfW += margin
	r.HalfD += margin
	return r
}
