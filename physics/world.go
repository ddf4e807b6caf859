package physics

import (
	"math"
	"time"

	"github.com/lixenwraith/tabletop/config"
	"github.com/lixenwraith/tabletop/vmath"
)

// Params are the world constants, see config.Physics for the tunable source
type Params struct {
	Gravity        float64 // vertical acceleration, negative is down
	Mass           float64
	Restitution    float64
	Friction       float64
	LinearDamping  float64
	AngularDamping float64

	// RestHeight is the centre height of a body lying on the bare table (half card thickness)
	RestHeight float64

	// Bounds limits body centres on the table plane; zero extents disable the edges
	Bounds vmath.Rect
}

// ParamsFrom builds world constants from configuration
// Card centres are kept on the table so no card overhangs an edge
func ParamsFrom(cfg config.Config) Params {
	halfW := (cfg.Table.Width - cfg.Card.Width) / 2
	halfD := (cfg.Table.Depth - cfg.Card.Depth) / 2
	return Params{
		Gravity:        cfg.Physics.Gravity,
		Mass:           cfg.Physics.Mass,
		Restitution:    cfg.Physics.Restitution,
		Friction:       cfg.Physics.Friction,
		LinearDamping:  cfg.Physics.LinearDamping,
		AngularDamping: cfg.Physics.AngularDamping,
		RestHeight:     cfg.Card.Thickness / 2,
		Bounds:         vmath.RectAround(0, 0, halfW, halfD),
	}
}

// World owns bodies and integrates the simulated ones
// Cards collide only with the table, never with each other: stacking is resolved by the caller
type World struct {
	params Params
	bodies map[uint64]*Body
	nextID uint64
}

// NewWorld creates an empty world
func NewWorld(p Params) *World {
	return &World{
		params: p,
		bodies: make(map[uint64]*Body),
		nextID: 1,
	}
}

// Spawn creates a simulated body at rest at the given pose
func (w *World) Spawn(pos vmath.Vec3F, rot Rotation) *Body {
	b := &Body{
		id:   w.nextID,
		mode: ModeSimulated,
		pos:  pos,
		rot:  rot,
		mass: w.params.Mass,
	}
	w.nextID++
	w.bodies[b.id] = b
	return b
}

// Destroy removes a body; unknown bodies are ignored
func (w *World) Destroy(b *Body) {
	if b == nil {
		return
	}
	delete(w.bodies, b.id)
}

// Len returns the number of live bodies
func (w *World) Len() int {
	return len(w.bodies)
}

// Step advances every simulated body by dt
func (w *World) Step(dt time.Duration) {
	sec := dt.Seconds()
	if sec <= 0 {
		return
	}
	for _, b := range w.bodies {
		if b.mode != ModeSimulated {
			continue
		}
		w.integrate(b, sec)
	}
}

// integrate performs semi-implicit Euler: v = v + a*dt; p = p + v*dt, then resolves contacts
func (w *World) integrate(b *Body, dt float64) {
	p := &w.params

	b.vel.Y += p.Gravity * dt
	b.vel = vmath.V3FDampDt(b.vel, p.LinearDamping, dt)
	b.pos = vmath.V3FAdd(b.pos, vmath.V3FScale(b.vel, dt))

	b.angVel.Yaw *= math.Exp(-p.AngularDamping * dt)
	b.angVel.Flip *= math.Exp(-p.AngularDamping * dt)
	b.rot.Yaw += b.angVel.Yaw * dt
	b.rot.Flip += b.angVel.Flip * dt

	b.contact = false
	if b.pos.Y <= p.RestHeight {
		b.pos.Y = p.RestHeight
		if b.vel.Y < 0 {
			b.vel.Y = -b.vel.Y * p.Restitution
			// Bounce lower than one step of gravity is resting contact
			if b.vel.Y < math.Abs(p.Gravity)*dt {
				b.vel.Y = 0
			}
		}
		b.contact = true
		w.applyFriction(b, dt)
	}

	if p.Bounds.HalfW > 0 {
		reflectAxis(&b.pos.X, &b.vel.X, p.Bounds.CX-p.Bounds.HalfW, p.Bounds.CX+p.Bounds.HalfW, p.Restitution)
	}
	if p.Bounds.HalfD > 0 {
		reflectAxis(&b.pos.Z, &b.vel.Z, p.Bounds.CZ-p.Bounds.HalfD, p.Bounds.CZ+p.Bounds.HalfD, p.Restitution)
	}
}

// applyFriction decelerates horizontal motion by Coulomb friction, never reversing it
func (w *World) applyFriction(b *Body, dt float64) {
	speed := math.Hypot(b.vel.X, b.vel.Z)
	if speed == 0 {
		return
	}
	decel := w.params.Friction * math.Abs(w.params.Gravity) * dt
	if decel >= speed {
		b.vel.X, b.vel.Z = 0, 0
		return
	}
	scale := (speed - decel) / speed
	b.vel.X *= scale
	b.vel.Z *= scale
}

// reflectAxis clamps a position component and reflects its velocity on boundary
func reflectAxis(pos, vel *float64, lo, hi, restitution float64) bool {
	if *pos < lo {
		*pos = lo
		if *vel < 0 {
			*vel = -*vel * restitution
		}
		return true
	}
	if *pos > hi {
		*pos = hi
		if *vel > 0 {
			*vel = -*vel * restitution
		}
		return true
	}
	return false
}
