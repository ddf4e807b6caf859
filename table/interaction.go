package table

import (
	"fmt"
	"math"
	"time"

	"github.com/lixenwraith/tabletop/physics"
	"github.com/lixenwraith/tabletop/vmath"
	"go.uber.org/zap"
)

// Origin is where a dragged card came from
type Origin uint8

const (
	OriginTable Origin = iota
	OriginHand
)

func (o Origin) String() string {
	if o == OriginHand {
		return "hand"
	}
	return "table"
}

// Outcome reports what a pointer release did
type Outcome uint8

const (
	OutcomeNone     Outcome = iota // no release happened
	OutcomeHand                    // table card released over the hand zone, now in hand
	OutcomeFlicked                 // released with speed, handed to the physics world
	OutcomeDropped                 // released gently, pinned at its rest height
	OutcomePlayed                  // hand card released over the table, placed face down
	OutcomeReturned                // hand card released back over the hand zone
)

func (o Outcome) String() string {
	switch o {
	case OutcomeHand:
		return "hand"
	case OutcomeFlicked:
		return "flicked"
	case OutcomeDropped:
		return "dropped"
	case OutcomePlayed:
		return "played"
	case OutcomeReturned:
		return "returned"
	default:
		return "none"
	}
}

// sample is a timestamped pointer position on the table plane
type sample struct {
	x, z float64
	at   time.Time
}

// dragSession lives from pointer-down to pointer-up or cancel
type dragSession struct {
	cardID     string
	origin     Origin
	samples    []sample
	inHandZone bool
	world      vmath.Vec3F
	sx, sy     int
}

// push appends a sample and evicts the oldest beyond capacity
func (s *dragSession) push(smp sample, capacity int) {
	s.samples = append(s.samples, smp)
	if len(s.samples) > capacity {
		copy(s.samples, s.samples[1:])
		s.samples = s.samples[:capacity]
	}
}

// estimateVelocity is the oldest-to-newest displacement over elapsed time, clamped to maxSpeed
// Fewer than two samples or a window shorter than minSpan gives zero
func estimateVelocity(samples []sample, minSpan time.Duration, maxSpeed float64) (float64, float64) {
	if len(samples) < 2 {
		return 0, 0
	}
	first, last := samples[0], samples[len(samples)-1]
	span := last.at.Sub(first.at)
	if span < minSpan {
		return 0, 0
	}
	sec := span.Seconds()
	return vmath.ClampMagnitude2D((last.x-first.x)/sec, (last.z-first.z)/sec, maxSpeed)
}

// DragView is a read-only snapshot of the open drag for rendering
type DragView struct {
	CardID     string
	Origin     Origin
	InHandZone bool
	World      vmath.Vec3F
	ScreenX    int
	ScreenY    int
}

// Dragging returns the open drag, if any
func (c *Controller) Dragging() (DragView, bool) {
	s := c.drag
	if s == nil {
		return DragView{}, false
	}
	return DragView{
		CardID:     s.cardID,
		Origin:     s.origin,
		InHandZone: s.inHandZone,
		World:      s.world,
		ScreenX:    s.sx,
		ScreenY:    s.sy,
	}, true
}

// BeginDrag opens a drag on a table card
func (c *Controller) BeginDrag(id string, sx, sy int) error {
	h, ok := c.reg.Lookup(id)
	if !ok {
		return fmt.Errorf("drag %s: %w", id, ErrUnknownCard)
	}
	if _, ok := c.deps.Store.TableCard(id); !ok {
		return fmt.Errorf("drag %s: %w", id, ErrUnknownCard)
	}
	if c.reg.IsBlocked(id) {
		return c.rejectCovered("drag", id, msgCoveredInteract)
	}
	if c.drag != nil || c.busy(id) {
		return fmt.Errorf("drag %s: %w", id, ErrBusy)
	}

	h.SetMode(physics.ModePinned)
	h.SetVelocity(vmath.Vec3F{})
	h.SetAngularVelocity(physics.Rotation{})

	c.drag = &dragSession{
		cardID:  id,
		origin:  OriginTable,
		samples: make([]sample, 0, c.tune.samples+1),
		world:   h.Position(),
		sx:      sx,
		sy:      sy,
	}
	c.count(MetricDrags)
	c.log.Debug("drag begin", zap.String("card", id), zap.Stringer("origin", OriginTable))
	return nil
}

// BeginHandDrag opens a drag on a card held in the hand
func (c *Controller) BeginHandDrag(id string, sx, sy int) error {
	if _, _, ok := c.deps.Store.HandCard(id); !ok {
		return fmt.Errorf("drag %s: %w", id, ErrUnknownCard)
	}
	if c.drag != nil {
		return fmt.Errorf("drag %s: %w", id, ErrBusy)
	}

	c.drag = &dragSession{
		cardID:     id,
		origin:     OriginHand,
		samples:    make([]sample, 0, c.tune.samples+1),
		inHandZone: true,
		sx:         sx,
		sy:         sy,
	}
	c.count(MetricDrags)
	c.log.Debug("drag begin", zap.String("card", id), zap.Stringer("origin", OriginHand))
	return nil
}

// PointerMove follows the pointer while a drag is open
// Over the hand zone the card is off the table: no pose update and no sample
func (c *Controller) PointerMove(sx, sy int) {
	s := c.drag
	if s == nil {
		return
	}
	s.sx, s.sy = sx, sy
	s.inHandZone = c.deps.Projector.InHandZone(sx, sy)
	if s.inHandZone {
		return
	}

	w := c.deps.Projector.Project(sx, sy)
	s.world = w
	if s.origin == OriginTable {
		if h, ok := c.reg.Lookup(s.cardID); ok {
			h.SetPosition(vmath.V3FWithY(w, w.Y+c.tune.hoverHeight))
		}
	}
	s.push(sample{x: w.X, z: w.Z, at: c.deps.Clock.Now()}, c.tune.samples)
}

// PointerUp closes the open drag and commits the placement
func (c *Controller) PointerUp(sx, sy int) (Outcome, error) {
	s := c.drag
	if s == nil {
		return OutcomeNone, ErrNoSession
	}
	c.drag = nil
	s.sx, s.sy = sx, sy
	s.inHandZone = c.deps.Projector.InHandZone(sx, sy)

	var (
		out Outcome
		err error
	)
	if s.origin == OriginTable {
		out, err = c.releaseTable(s)
	} else {
		out, err = c.releaseHand(s)
	}
	if err == nil {
		c.log.Debug("drag end", zap.String("card", s.cardID), zap.Stringer("outcome", out))
	}
	return out, err
}

func (c *Controller) releaseTable(s *dragSession) (Outcome, error) {
	id := s.cardID
	h, ok := c.reg.Lookup(id)
	if !ok {
		return OutcomeNone, fmt.Errorf("release %s: %w", id, ErrUnknownCard)
	}

	if s.inHandZone {
		if err := c.deps.Store.MoveToHand(id); err != nil {
			c.rest(id, h)
			return OutcomeNone, fmt.Errorf("release %s to hand: %w", id, err)
		}
		c.count(MetricPicks)
		c.deps.Sounds.Pickup()
		return OutcomeHand, nil
	}

	c.reg.BumpZOrder(id)

	vx, vz := estimateVelocity(s.samples, c.tune.minSampleSpan, c.tune.flickMax)
	if math.Abs(vx) > c.tune.flickMin || math.Abs(vz) > c.tune.flickMin {
		h.SetMode(physics.ModeSimulated)
		h.ApplyImpulse(vmath.Vec3F{X: vx * c.tune.flickScale, Z: vz * c.tune.flickScale})
		c.count(MetricFlicks)
		c.deps.Sounds.Flick()
		return OutcomeFlicked, nil
	}

	c.rest(id, h)
	c.count(MetricDrops)
	c.deps.Sounds.Drop()
	return OutcomeDropped, nil
}

func (c *Controller) releaseHand(s *dragSession) (Outcome, error) {
	id := s.cardID
	if s.inHandZone {
		return OutcomeReturned, nil
	}

	drop := c.deps.Projector.Project(s.sx, s.sy)
	if err := c.deps.Store.MoveToTable(id, drop, false); err != nil {
		return OutcomeNone, fmt.Errorf("release %s to table: %w", id, err)
	}

	// The store event registered a fresh body; lift it above its stack and let it fall
	if h, ok := c.reg.Lookup(id); ok {
		c.reg.BumpZOrder(id)
		y := c.reg.RestHeight(id, drop.X, drop.Z) + c.tune.handDropLift
		h.SetPosition(vmath.Vec3F{X: drop.X, Y: y, Z: drop.Z})
		h.SetVelocity(vmath.Vec3F{})
		h.SetMode(physics.ModeSimulated)
	}
	c.count(MetricPlays)
	c.deps.Sounds.Drop()
	return OutcomePlayed, nil
}

// Cancel aborts the open drag without committing a placement
// A table card stays at its last (x, z) and is lowered to its rest height; its z-order is unchanged
func (c *Controller) Cancel() bool {
	s := c.drag
	if s == nil {
		return false
	}
	c.drag = nil
	if s.origin == OriginTable {
		if h, ok := c.reg.Lookup(s.cardID); ok {
			c.rest(s.cardID, h)
		}
	}
	c.log.Debug("drag cancelled", zap.String("card", s.cardID))
	return true
}

// PickUp moves a table card into the hand
func (c *Controller) PickUp(id string) error {
	if _, ok := c.reg.Lookup(id); !ok {
		return fmt.Errorf("pick up %s: %w", id, ErrUnknownCard)
	}
	if c.reg.IsBlocked(id) {
		return c.rejectCovered("pick up", id, msgCoveredPickUp)
	}
	if c.busy(id) {
		return fmt.Errorf("pick up %s: %w", id, ErrBusy)
	}
	if err := c.deps.Store.MoveToHand(id); err != nil {
		return fmt.Errorf("pick up %s: %w", id, err)
	}
	c.count(MetricPicks)
	c.deps.Sounds.Pickup()
	return nil
}

// rest pins a card at its resolved rest height at its current (x, z) and records the spot
func (c *Controller) rest(id string, h Handle) {
	p := h.Position()
	y := max(c.reg.RestHeight(id, p.X, p.Z), c.reg.geom.HalfThickness)
	p.Y = y
	h.SetMode(physics.ModePinned)
	h.SetPosition(p)
	h.SetVelocity(vmath.Vec3F{})
	h.SetAngularVelocity(physics.Rotation{})
	if err := c.deps.Store.MoveCardOnTable(id, p); err != nil {
		c.log.Warn("record rest position", zap.String("card", id), zap.Error(err))
	}
}
