package table

import (
	"fmt"
	"math"
	"time"

	"github.com/lixenwraith/tabletop/clock"
	"github.com/lixenwraith/tabletop/config"
	"github.com/lixenwraith/tabletop/game"
	"github.com/lixenwraith/tabletop/physics"
	"github.com/lixenwraith/tabletop/status"
	"github.com/lixenwraith/tabletop/vmath"
	"go.uber.org/zap"
)

// Engine is the rigid-body capability, implemented by *physics.World
type Engine interface {
	Spawn(pos vmath.Vec3F, rot physics.Rotation) *physics.Body
	Destroy(b *physics.Body)
	Step(dt time.Duration)
}

// Store is the card-ownership collaborator, implemented by *game.Store
type Store interface {
	MoveToHand(id string) error
	MoveToTable(id string, pos vmath.Vec3F, faceUp bool) error
	FlipFaceFlag(id string) error
	MoveCardOnTable(id string, pos vmath.Vec3F) error
	TableCard(id string) (game.TableCard, bool)
	HandCard(id string) (game.Card, int, bool)
	Subscribe(fn func(game.TableEvent)) func()
}

// Projector maps terminal cells onto the table plane
type Projector interface {
	Project(sx, sy int) vmath.Vec3F
	InHandZone(sx, sy int) bool
}

// Notifier shows a message to the user
type Notifier interface {
	Notify(msg string)
}

// Sounds plays feedback cues
type Sounds interface {
	Flip()
	Drop()
	Flick()
	Blocked()
	Pickup()
}

type nopSounds struct{}

func (nopSounds) Flip()    {}
func (nopSounds) Drop()    {}
func (nopSounds) Flick()   {}
func (nopSounds) Blocked() {}
func (nopSounds) Pickup()  {}

type nopNotifier struct{}

func (nopNotifier) Notify(string) {}

// Deps are the collaborators a Controller drives; Engine, Store and Projector are required
type Deps struct {
	Engine    Engine
	Store     Store
	Projector Projector
	Notifier  Notifier
	Sounds    Sounds
	Clock     clock.Provider
	Metrics   *status.Registry
	Logger    *zap.Logger
}

// Metric keys
const (
	MetricDrags   = "table.drags"
	MetricFlicks  = "table.flicks"
	MetricDrops   = "table.drops"
	MetricPicks   = "table.picks"
	MetricPlays   = "table.plays"
	MetricFlips   = "table.flips"
	MetricBlocked = "table.blocked"
	MetricSettles = "table.settles"
	MetricCards   = "table.cards"
)

// tuning is the controller's slice of the configuration
type tuning struct {
	flipLift      float64
	flipPhase     time.Duration
	hoverHeight   float64
	handDropLift  float64
	samples       int
	flickScale    float64
	flickMax      float64
	flickMin      float64
	settleSpeed   float64
	minSampleSpan time.Duration
}

// Controller owns the registry, the open drag and the running flips
// All methods must be called from the main loop goroutine
type Controller struct {
	reg    *Registry
	deps   Deps
	tune   tuning
	log    *zap.Logger
	bodies map[string]*physics.Body

	drag  *dragSession
	flips map[string]*flipSession

	unsubscribe func()
}

// NewController wires a registry to its collaborators and subscribes to table events
func NewController(cfg config.Config, deps Deps) *Controller {
	if deps.Notifier == nil {
		deps.Notifier = nopNotifier{}
	}
	if deps.Sounds == nil {
		deps.Sounds = nopSounds{}
	}
	if deps.Clock == nil {
		deps.Clock = clock.NewMonotonic()
	}
	if deps.Metrics == nil {
		deps.Metrics = status.NewRegistry()
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}

	c := &Controller{
		reg:  NewRegistry(GeometryFrom(cfg.Card)),
		deps: deps,
		tune: tuning{
			flipLift:      cfg.Flip.LiftHeight,
			flipPhase:     cfg.FlipDuration() / 3,
			hoverHeight:   cfg.Drag.HoverHeight,
			handDropLift:  cfg.Drag.HandDropLift,
			samples:       cfg.Physics.VelocitySamples,
			flickScale:    cfg.Physics.FlickImpulseScale,
			flickMax:      cfg.Physics.FlickMaxSpeed,
			flickMin:      cfg.Physics.FlickThreshold,
			settleSpeed:   cfg.Physics.SettleSpeed,
			minSampleSpan: time.Millisecond,
		},
		log:    deps.Logger.Named("table"),
		bodies: make(map[string]*physics.Body),
		flips:  make(map[string]*flipSession),
	}
	c.unsubscribe = deps.Store.Subscribe(c.onTableEvent)
	return c
}

// Close stops listening to the store
func (c *Controller) Close() {
	if c.unsubscribe != nil {
		c.unsubscribe()
		c.unsubscribe = nil
	}
}

// Registry exposes the spatial registry for rendering and hit testing
func (c *Controller) Registry() *Registry {
	return c.reg
}

// Phase returns the flip phase of a card, PhaseIdle when not flipping
func (c *Controller) Phase(id string) Phase {
	if s, ok := c.flips[id]; ok {
		return s.phase
	}
	return PhaseIdle
}

// Tick advances one frame: flips, then the physics step, then settling
func (c *Controller) Tick(dt time.Duration) {
	if dt <= 0 {
		return
	}
	c.advanceFlips(dt)
	c.deps.Engine.Step(dt)
	c.settle()
}

// onTableEvent spawns a body for every card put on the table and destroys it when the card leaves
func (c *Controller) onTableEvent(ev game.TableEvent) {
	id := ev.Card.ID
	switch ev.Kind {
	case game.EventPlaced:
		rot := physics.Rotation{Yaw: ev.Card.Yaw}
		if ev.Card.FaceUp {
			rot.Flip = math.Pi
		}
		if old, ok := c.bodies[id]; ok {
			c.deps.Engine.Destroy(old)
		}
		b := c.deps.Engine.Spawn(ev.Card.Position, rot)
		c.bodies[id] = b
		c.reg.Register(id, b)
		c.log.Debug("card placed", zap.String("card", id), zap.Int64("z", c.reg.ZOrderOf(id)))

	case game.EventRemoved:
		if b, ok := c.bodies[id]; ok {
			c.deps.Engine.Destroy(b)
			delete(c.bodies, id)
		}
		c.reg.Unregister(id)
		delete(c.flips, id)
		if c.drag != nil && c.drag.cardID == id {
			c.drag = nil
		}
		c.log.Debug("card removed", zap.String("card", id))
	}
	c.deps.Metrics.Ints.Get(MetricCards).Store(int64(c.reg.Len()))
}

// rejectCovered notifies the user and counts a covered-card rejection
func (c *Controller) rejectCovered(op, id, msg string) error {
	c.deps.Notifier.Notify(msg)
	c.deps.Sounds.Blocked()
	c.count(MetricBlocked)
	c.log.Info("rejected covered card", zap.String("op", op), zap.String("card", id))
	return fmt.Errorf("%s %s: %w", op, id, ErrCovered)
}

func (c *Controller) count(key string) {
	c.deps.Metrics.Ints.Get(key).Add(1)
}

func (c *Controller) busy(id string) bool {
	if _, ok := c.flips[id]; ok {
		return true
	}
	return c.drag != nil && c.drag.cardID == id
}
