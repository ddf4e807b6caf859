// Package table is the spatial state machine of the card table
// It tracks which card is on top, where a released card rests, whether a card is covered,
// and moves cards between simulated physics, a pinned drag pose and a scripted flip
package table

import (
	"iter"
	"slices"

	"github.com/lixenwraith/tabletop/config"
	"github.com/lixenwraith/tabletop/physics"
	"github.com/lixenwraith/tabletop/vmath"
)

// Handle is the physics-facing view of a table card, implemented by *physics.Body
type Handle interface {
	Mode() physics.Mode
	SetMode(physics.Mode)
	Position() vmath.Vec3F
	SetPosition(vmath.Vec3F)
	Rotation() physics.Rotation
	SetRotation(physics.Rotation)
	Velocity() vmath.Vec3F
	SetVelocity(vmath.Vec3F)
	SetAngularVelocity(physics.Rotation)
	ApplyImpulse(vmath.Vec3F)
}

// Geometry holds the card footprint and stacking constants
type Geometry struct {
	HalfWidth     float64
	HalfDepth     float64
	HalfThickness float64
	StackGap      float64
	// Margin widens footprints in overlap tests to absorb float noise
	Margin float64
}

// GeometryFrom derives the geometry from card dimensions
func GeometryFrom(c config.Card) Geometry {
	return Geometry{
		HalfWidth:     c.Width / 2,
		HalfDepth:     c.Depth / 2,
		HalfThickness: c.Thickness / 2,
		StackGap:      c.StackGap,
		Margin:        c.OverlapMargin,
	}
}

// Registry maps table cards to their physics handles and z-order
// Z-order is a recency rank: higher is more on top, independent of physical height
type Registry struct {
	geom    Geometry
	handles map[string]Handle
	zorder  map[string]int64
	next    int64
}

// NewRegistry creates an empty registry
func NewRegistry(geom Geometry) *Registry {
	return &Registry{
		geom:    geom,
		handles: make(map[string]Handle),
		zorder:  make(map[string]int64),
	}
}

// Register stores a handle; a z-order is assigned only if the id has none yet
func (r *Registry) Register(id string, h Handle) {
	r.handles[id] = h
	if _, ok := r.zorder[id]; !ok {
		r.zorder[id] = r.next
		r.next++
	}
}

// Unregister drops both the handle and the z-order
func (r *Registry) Unregister(id string) {
	delete(r.handles, id)
	delete(r.zorder, id)
}

// Lookup returns the handle for id
func (r *Registry) Lookup(id string) (Handle, bool) {
	h, ok := r.handles[id]
	return h, ok
}

// All iterates registered cards in unspecified order
func (r *Registry) All() iter.Seq2[string, Handle] {
	return func(yield func(string, Handle) bool) {
		for id, h := range r.handles {
			if !yield(id, h) {
				return
			}
		}
	}
}

// BumpZOrder moves a registered card above every other card
func (r *Registry) BumpZOrder(id string) {
	if _, ok := r.handles[id]; !ok {
		return
	}
	r.zorder[id] = r.next
	r.next++
}

// ZOrderOf returns the z-order of id, 0 if unknown
func (r *Registry) ZOrderOf(id string) int64 {
	return r.zorder[id]
}

// Len returns the number of registered cards
func (r *Registry) Len() int {
	return len(r.handles)
}

// Ordered returns the registered ids bottom to top
func (r *Registry) Ordered() []string {
	ids := make([]string, 0, len(r.handles))
	for id := range r.handles {
		ids = append(ids, id)
	}
	slices.SortFunc(ids, func(a, b string) int {
		za, zb := r.zorder[a], r.zorder[b]
		switch {
		case za < zb:
			return -1
		case za > zb:
			return 1
		}
		return 0
	})
	return ids
}

// TopAt returns the highest card whose footprint contains the table point (x, z)
func (r *Registry) TopAt(x, z float64) (string, bool) {
	var top string
	found := false
	var maxZ int64
	for id, h := range r.handles {
		p := h.Position()
		if !vmath.RectAround(p.X, p.Z, r.geom.HalfWidth, r.geom.HalfDepth).Contains(x, z) {
			continue
		}
		if zo := r.zorder[id]; !found || zo > maxZ {
			top, maxZ, found = id, zo, true
		}
	}
	return top, found
}

// overlaps reports whether a footprint centred at a, widened by the margin, contains b
func (r *Registry) overlaps(a, b vmath.Vec3F) bool {
	return vmath.RectAround(a.X, a.Z, r.geom.HalfWidth, r.geom.HalfDepth).
		Expand(r.geom.Margin).
		Contains(b.X, b.Z)
}
