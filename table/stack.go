package table

import "github.com/lixenwraith/tabletop/vmath"

// RestHeight returns the centre height a card should rest at when placed at (x, z)
// It is one stack gap above the highest overlapping card with lower z-order, or on the bare table
// Only z-order decides what is below, so chains resolve correctly while other cards are still settling
func (r *Registry) RestHeight(id string, x, z float64) float64 {
	myZ := r.zorder[id]
	at := vmath.Vec3F{X: x, Z: z}

	found := false
	maxY := 0.0
	for other, h := range r.handles {
		if other == id || r.zorder[other] >= myZ {
			continue
		}
		p := h.Position()
		if !r.overlaps(p, at) {
			continue
		}
		if !found || p.Y > maxY {
			maxY = p.Y
			found = true
		}
	}

	if !found {
		return r.geom.HalfThickness
	}
	return maxY + r.geom.StackGap
}
