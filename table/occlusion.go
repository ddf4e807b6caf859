package table

// IsBlocked reports whether another card with higher z-order overlaps id's footprint
// Unknown ids are never blocked
func (r *Registry) IsBlocked(id string) bool {
	h, ok := r.handles[id]
	if !ok {
		return false
	}
	myZ := r.zorder[id]
	me := h.Position()

	for other, oh := range r.handles {
		if other == id || r.zorder[other] <= myZ {
			continue
		}
		if r.overlaps(me, oh.Position()) {
			return true
		}
	}
	return false
}
