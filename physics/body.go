// Package physics is a minimal rigid-body world for flat cards on a table
// Simulated bodies fall under gravity onto the table surface, slide with friction and
// bounce off the table edges; pinned bodies are left exactly where a controller puts them
package physics

import (
	"github.com/lixenwraith/tabletop/vmath"
)

// Mode selects who drives a body's pose
type Mode uint8

const (
	// ModeSimulated bodies are integrated by the World every step
	ModeSimulated Mode = iota
	// ModePinned bodies are positioned explicitly and ignored by the integrator
	ModePinned
)

func (m Mode) String() string {
	switch m {
	case ModeSimulated:
		return "simulated"
	case ModePinned:
		return "pinned"
	default:
		return "unknown"
	}
}

// Rotation is a card orientation: Yaw about the table normal, Flip about the card's long axis
// Flip = 0 shows the back side up, Flip = π shows the face side up
type Rotation struct {
	Yaw, Flip float64
}

// Body is a single card's rigid body
type Body struct {
	id     uint64
	mode   Mode
	pos    vmath.Vec3F
	rot    Rotation
	vel    vmath.Vec3F
	angVel Rotation
	mass   float64

	// contact is set while the body rests on the table surface during the last step
	contact bool
}

func (b *Body) Mode() Mode            { return b.mode }
func (b *Body) SetMode(m Mode)        { b.mode = m }
func (b *Body) InContact() bool       { return b.contact }
func (b *Body) Position() vmath.Vec3F { return b.pos }

func (b *Body) SetPosition(p vmath.Vec3F) { b.pos = p }

func (b *Body) Rotation() Rotation     { return b.rot }
func (b *Body) SetRotation(r Rotation) { b.rot = r }

func (b *Body) Velocity() vmath.Vec3F     { return b.vel }
func (b *Body) SetVelocity(v vmath.Vec3F) { b.vel = v }

func (b *Body) SetAngularVelocity(w Rotation) { b.angVel = w }

// ApplyImpulse adds a momentum change: v += j / m
func (b *Body) ApplyImpulse(j vmath.Vec3F) {
	if b.mass <= 0 {
		return
	}
	b.vel = vmath.V3FAdd(b.vel, vmath.V3FScale(j, 1/b.mass))
}

// Speed returns the linear speed
func (b *Body) Speed() float64 {
	return vmath.V3FMag(b.vel)
}
