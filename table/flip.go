package table

import (
	"fmt"
	"math"
	"time"

	"github.com/lixenwraith/tabletop/physics"
	"github.com/lixenwraith/tabletop/vmath"
	"go.uber.org/zap"
)

// Phase is a flip animation phase
type Phase uint8

const (
	PhaseIdle Phase = iota
	PhaseLift
	PhaseRotate
	PhaseLower
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseLift:
		return "lift"
	case PhaseRotate:
		return "rotate"
	case PhaseLower:
		return "lower"
	default:
		return "unknown"
	}
}

// flipSession animates one card: lift, rotate half a turn about the flip axis, lower
type flipSession struct {
	phase   Phase
	elapsed time.Duration

	startY, liftY        float64
	startAngle, endAngle float64
}

func newFlipSession(h Handle, lift float64) *flipSession {
	p := h.Position()
	rot := h.Rotation()
	return &flipSession{
		phase:      PhaseLift,
		startY:     p.Y,
		liftY:      p.Y + lift,
		startAngle: rot.Flip,
		endAngle:   rot.Flip + math.Pi,
	}
}

// advance moves the animation by dt and poses h; returns true once Lower has completed
// Leftover time at a phase boundary is dropped so each phase starts from t = 0
func (s *flipSession) advance(h Handle, dt, phaseDur time.Duration) bool {
	s.elapsed += dt
	t := vmath.Clamp(float64(s.elapsed)/float64(phaseDur), 0, 1)
	e := vmath.EaseInOutQuad(t)

	pos := h.Position()
	rot := h.Rotation()
	switch s.phase {
	case PhaseLift:
		pos.Y = vmath.Lerp(s.startY, s.liftY, e)
		rot.Flip = s.startAngle
	case PhaseRotate:
		pos.Y = s.liftY
		rot.Flip = vmath.Lerp(s.startAngle, s.endAngle, e)
	case PhaseLower:
		pos.Y = vmath.Lerp(s.liftY, s.startY, e)
		rot.Flip = s.endAngle
	}
	h.SetPosition(pos)
	h.SetRotation(rot)

	if t < 1 {
		return false
	}
	s.elapsed = 0
	switch s.phase {
	case PhaseLift:
		s.phase = PhaseRotate
	case PhaseRotate:
		s.phase = PhaseLower
	case PhaseLower:
		s.phase = PhaseIdle
		return true
	}
	return false
}

// finish leaves the card pinned and still with its flip angle normalised to [0, 2π)
func (s *flipSession) finish(h Handle) {
	rot := h.Rotation()
	rot.Flip = math.Mod(s.endAngle, 2*math.Pi)
	if rot.Flip < 0 {
		rot.Flip += 2 * math.Pi
	}
	h.SetRotation(rot)
	h.SetMode(physics.ModePinned)
	h.SetVelocity(vmath.Vec3F{})
	h.SetAngularVelocity(physics.Rotation{})
}

// FaceUp reports whether a flip angle shows the face side
// Face and back are fixed to the card's local sides, so only the angle decides what is visible
func FaceUp(flip float64) bool {
	return math.Cos(flip) < 0
}

// RequestFlip starts a flip animation on a table card
// A request while the card is flipping, dragged or still moving under physics is rejected
// with ErrBusy and changes nothing
func (c *Controller) RequestFlip(id string) error {
	h, ok := c.reg.Lookup(id)
	if !ok {
		return fmt.Errorf("flip %s: %w", id, ErrUnknownCard)
	}
	if c.reg.IsBlocked(id) {
		return c.rejectCovered("flip", id, msgCoveredFlip)
	}
	if c.busy(id) || h.Mode() == physics.ModeSimulated {
		return fmt.Errorf("flip %s: %w", id, ErrBusy)
	}

	s := newFlipSession(h, c.tune.flipLift)
	h.SetMode(physics.ModePinned)
	h.SetVelocity(vmath.Vec3F{})
	h.SetAngularVelocity(physics.Rotation{})
	c.flips[id] = s

	c.deps.Sounds.Flip()
	c.log.Debug("flip begin", zap.String("card", id), zap.Stringer("phase", s.phase))
	return nil
}

func (c *Controller) advanceFlips(dt time.Duration) {
	for id, s := range c.flips {
		h, ok := c.reg.Lookup(id)
		if !ok {
			delete(c.flips, id)
			continue
		}

		prev := s.phase
		done := s.advance(h, dt, c.tune.flipPhase)
		if s.phase != prev {
			c.log.Debug("flip phase", zap.String("card", id), zap.Stringer("phase", s.phase))
		}
		if !done {
			continue
		}

		s.finish(h)
		delete(c.flips, id)
		if err := c.deps.Store.FlipFaceFlag(id); err != nil {
			c.log.Warn("flip face flag", zap.String("card", id), zap.Error(err))
		}
		c.count(MetricFlips)
	}
}
