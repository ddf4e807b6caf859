package table

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/lixenwraith/tabletop/clock"
	"github.com/lixenwraith/tabletop/config"
	"github.com/lixenwraith/tabletop/game"
	"github.com/lixenwraith/tabletop/physics"
	"github.com/lixenwraith/tabletop/status"
	"github.com/lixenwraith/tabletop/vmath"
)

const frame = 16 * time.Millisecond

// gridProjector maps cell (sx, sy) to (sx/10, 0.05, sy/10); rows from 100 down are the hand zone
type gridProjector struct{}

func (gridProjector) Project(sx, sy int) vmath.Vec3F {
	return vmath.Vec3F{X: float64(sx) / 10, Y: 0.05, Z: float64(sy) / 10}
}

func (gridProjector) InHandZone(_, sy int) bool { return sy >= 100 }

type recorder struct{ msgs []string }

func (r *recorder) Notify(msg string) { r.msgs = append(r.msgs, msg) }

type harness struct {
	t       *testing.T
	cfg     config.Config
	ctl     *Controller
	store   *game.Store
	world   *physics.World
	clock   *clock.Mock
	notes   *recorder
	metrics *status.Registry
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	cfg := config.Default()
	h := &harness{
		t:       t,
		cfg:     cfg,
		store:   game.NewStore(game.Options{DrawOffset: cfg.Table.DrawOffset, DrawHeight: cfg.Card.Thickness * 2}, 1),
		world:   physics.NewWorld(physics.ParamsFrom(cfg)),
		clock:   clock.NewMock(time.Unix(1000, 0)),
		notes:   &recorder{},
		metrics: status.NewRegistry(),
	}
	h.ctl = NewController(cfg, Deps{
		Engine:    h.world,
		Store:     h.store,
		Projector: gridProjector{},
		Notifier:  h.notes,
		Clock:     h.clock,
		Metrics:   h.metrics,
	})
	t.Cleanup(h.ctl.Close)
	return h
}

// tick advances the controller and the clock together
func (h *harness) tick(n int) {
	for i := 0; i < n; i++ {
		h.clock.Advance(frame)
		h.ctl.Tick(frame)
	}
}

// handle returns the registered handle or fails the test
func (h *harness) handle(id string) Handle {
	h.t.Helper()
	hd, ok := h.ctl.Registry().Lookup(id)
	if !ok {
		h.t.Fatalf("card %s not registered", id)
	}
	return hd
}

// tickUntilPinned runs frames until id is pinned, failing after limit frames
func (h *harness) tickUntilPinned(id string, limit int) {
	h.t.Helper()
	for i := 0; i < limit; i++ {
		h.tick(1)
		if h.handle(id).Mode() == physics.ModePinned {
			return
		}
	}
	h.t.Fatalf("card %s did not settle within %d frames", id, limit)
}

// place puts a fresh card on the table at (x, z) and lets it settle
func (h *harness) place(id string, x, z float64) Handle {
	h.t.Helper()
	c := game.Card{ID: id, Suit: game.Spades, Rank: game.Ace}
	if err := h.store.PlaceOnTable(c, vmath.Vec3F{X: x, Y: h.cfg.Card.Thickness / 2, Z: z}, 0); err != nil {
		h.t.Fatalf("place %s: %v", id, err)
	}
	h.tickUntilPinned(id, 20)
	return h.handle(id)
}

func (h *harness) metric(key string) int64 {
	return h.metrics.Ints.Get(key).Load()
}

func TestPlacedCardsSettleIntoStack(t *testing.T) {
	h := newHarness(t)
	a := h.place("a", 0, 0)
	b := h.place("b", 0, 0)

	half := h.cfg.Card.Thickness / 2
	if a.Position().Y != half {
		t.Errorf("Expected a on the table at %v, got %v", half, a.Position().Y)
	}
	if b.Position().Y != a.Position().Y+h.cfg.Card.StackGap {
		t.Errorf("Expected b one gap above a, got %v", b.Position().Y)
	}
	if h.world.Len() != 2 || h.metric(MetricCards) != 2 {
		t.Errorf("Expected 2 bodies and cards gauge 2, got %d / %d", h.world.Len(), h.metric(MetricCards))
	}
	if h.metric(MetricSettles) != 2 {
		t.Errorf("Expected 2 settles, got %d", h.metric(MetricSettles))
	}
	if tc, _ := h.store.TableCard("b"); tc.Position != b.Position() {
		t.Errorf("Expected store to record rest position %+v, got %+v", b.Position(), tc.Position)
	}
}

func TestDragCoveredCardRejected(t *testing.T) {
	h := newHarness(t)
	h.place("a", 0, 0)
	h.place("b", 0.1, 0.1)

	err := h.ctl.BeginDrag("a", 0, 0)
	if !errors.Is(err, ErrCovered) {
		t.Fatalf("Expected ErrCovered, got %v", err)
	}
	if len(h.notes.msgs) != 1 || h.notes.msgs[0] != "Can't interact — card is covered by another card" {
		t.Errorf("Unexpected notifications %q", h.notes.msgs)
	}
	if _, ok := h.ctl.Dragging(); ok {
		t.Error("Expected no drag session")
	}
	if h.metric(MetricBlocked) != 1 {
		t.Errorf("Expected blocked count 1, got %d", h.metric(MetricBlocked))
	}

	if err := h.ctl.BeginDrag("ghost", 0, 0); !errors.Is(err, ErrUnknownCard) {
		t.Errorf("Expected ErrUnknownCard, got %v", err)
	}
	if _, err := h.ctl.PointerUp(0, 0); !errors.Is(err, ErrNoSession) {
		t.Errorf("Expected ErrNoSession, got %v", err)
	}
}

func TestGentleDropSnapsToRestHeight(t *testing.T) {
	h := newHarness(t)
	a := h.place("a", 0, 0)
	b := h.place("b", 2, 0)

	if err := h.ctl.BeginDrag("b", 20, 0); err != nil {
		t.Fatalf("BeginDrag: %v", err)
	}
	if b.Mode() != physics.ModePinned {
		t.Fatal("Expected dragged card pinned")
	}

	// Slow move onto a: 0.2 units over four seconds
	h.ctl.PointerMove(2, 0)
	if got := b.Position(); got.X != 0.2 || got.Y != 0.05+h.cfg.Drag.HoverHeight {
		t.Errorf("Expected hover pose at x=0.2 y=%v, got %+v", 0.05+h.cfg.Drag.HoverHeight, got)
	}
	h.clock.Advance(4 * time.Second)
	h.ctl.PointerMove(0, 0)

	out, err := h.ctl.PointerUp(0, 0)
	if err != nil || out != OutcomeDropped {
		t.Fatalf("Expected dropped, got %v %v", out, err)
	}
	if b.Mode() != physics.ModePinned {
		t.Error("Expected gentle drop to stay pinned")
	}
	if want := a.Position().Y + h.cfg.Card.StackGap; b.Position().Y != want {
		t.Errorf("Expected rest height %v, got %v", want, b.Position().Y)
	}
	if b.Velocity() != (vmath.Vec3F{}) {
		t.Errorf("Expected zero velocity, got %+v", b.Velocity())
	}
	reg := h.ctl.Registry()
	if reg.ZOrderOf("b") <= reg.ZOrderOf("a") || !reg.IsBlocked("a") {
		t.Error("Expected dropped card on top of a")
	}

	// Stays put through later frames
	y := b.Position().Y
	h.tick(10)
	if b.Position().Y != y {
		t.Errorf("Pinned card drifted to %v", b.Position().Y)
	}
}

func TestFlickHandsCardToPhysicsThenSettles(t *testing.T) {
	h := newHarness(t)
	a := h.place("a", 0, 0)

	if err := h.ctl.BeginDrag("a", 0, 0); err != nil {
		t.Fatalf("BeginDrag: %v", err)
	}
	for i := 0; i <= 6; i++ {
		h.ctl.PointerMove(i, 0)
		h.clock.Advance(frame)
	}

	out, err := h.ctl.PointerUp(6, 0)
	if err != nil || out != OutcomeFlicked {
		t.Fatalf("Expected flicked, got %v %v", out, err)
	}
	if a.Mode() != physics.ModeSimulated {
		t.Fatal("Expected flicked card to be simulated")
	}
	// Speed is clamped to 5; 5 * 0.002 impulse on 0.01 mass
	if vx := a.Velocity().X; math.Abs(vx-1) > 1e-9 {
		t.Errorf("Expected vx=1 after impulse, got %v", vx)
	}
	if a.Velocity().Z != 0 {
		t.Errorf("Expected no z velocity, got %v", a.Velocity().Z)
	}

	startX := a.Position().X
	h.tickUntilPinned("a", 300)
	if a.Position().X <= startX {
		t.Errorf("Expected card to slide past %v, got %v", startX, a.Position().X)
	}
	if a.Position().Y != h.cfg.Card.Thickness/2 {
		t.Errorf("Expected settle on the table, got %v", a.Position().Y)
	}
	if h.metric(MetricFlicks) != 1 {
		t.Errorf("Expected 1 flick, got %d", h.metric(MetricFlicks))
	}
}

func TestReleaseOverHandZoneMovesToHand(t *testing.T) {
	h := newHarness(t)
	h.place("a", 0, 0)

	if err := h.ctl.BeginDrag("a", 0, 0); err != nil {
		t.Fatalf("BeginDrag: %v", err)
	}
	h.ctl.PointerMove(5, 120)
	if v, ok := h.ctl.Dragging(); !ok || !v.InHandZone {
		t.Fatalf("Expected drag over hand zone, got %+v ok=%v", v, ok)
	}

	out, err := h.ctl.PointerUp(5, 120)
	if err != nil || out != OutcomeHand {
		t.Fatalf("Expected hand, got %v %v", out, err)
	}
	if _, ok := h.ctl.Registry().Lookup("a"); ok {
		t.Error("Expected card unregistered")
	}
	if _, ok := h.ctl.Registry().zorder["a"]; ok {
		t.Error("Expected z-order dropped")
	}
	if h.world.Len() != 0 {
		t.Errorf("Expected body destroyed, %d left", h.world.Len())
	}
	hand := h.store.Hand()
	if len(hand) != 1 || hand[0].ID != "a" || !hand[0].FaceUp {
		t.Errorf("Expected a face up in hand, got %+v", hand)
	}
}

func TestHandDragPlaysFaceDownOnTable(t *testing.T) {
	h := newHarness(t)
	if err := h.store.AddToHand(game.Card{ID: "h", Suit: game.Hearts, Rank: 5}); err != nil {
		t.Fatal(err)
	}

	if err := h.ctl.BeginHandDrag("h", 10, 120); err != nil {
		t.Fatalf("BeginHandDrag: %v", err)
	}
	h.ctl.PointerMove(10, 20)
	out, err := h.ctl.PointerUp(10, 20)
	if err != nil || out != OutcomePlayed {
		t.Fatalf("Expected played, got %v %v", out, err)
	}

	hd := h.handle("h")
	if hd.Mode() != physics.ModeSimulated {
		t.Error("Expected played card to start simulated")
	}
	half := h.cfg.Card.Thickness / 2
	if want := half + h.cfg.Drag.HandDropLift; hd.Position().Y != want {
		t.Errorf("Expected drop height %v, got %v", want, hd.Position().Y)
	}

	h.tickUntilPinned("h", 200)
	if hd.Position().Y != half {
		t.Errorf("Expected rest at %v, got %v", half, hd.Position().Y)
	}
	if p := hd.Position(); p.X != 1 || p.Z != 2 {
		t.Errorf("Expected rest at (1, 2), got %+v", p)
	}
	tc, ok := h.store.TableCard("h")
	if !ok || tc.FaceUp {
		t.Errorf("Expected face-down table card, got %+v ok=%v", tc, ok)
	}
	if FaceUp(hd.Rotation().Flip) {
		t.Error("Expected back side visible")
	}
	if len(h.store.Hand()) != 0 {
		t.Error("Expected empty hand")
	}
}

func TestHandDragReturnedToHand(t *testing.T) {
	h := newHarness(t)
	if err := h.store.AddToHand(game.Card{ID: "h"}); err != nil {
		t.Fatal(err)
	}
	if err := h.ctl.BeginHandDrag("h", 0, 110); err != nil {
		t.Fatal(err)
	}
	if err := h.ctl.BeginHandDrag("h", 0, 110); !errors.Is(err, ErrBusy) {
		t.Errorf("Expected ErrBusy for second session, got %v", err)
	}
	out, err := h.ctl.PointerUp(3, 130)
	if err != nil || out != OutcomeReturned {
		t.Fatalf("Expected returned, got %v %v", out, err)
	}
	if len(h.store.Hand()) != 1 || h.ctl.Registry().Len() != 0 {
		t.Error("Expected card to stay in hand")
	}
	if err := h.ctl.BeginHandDrag("nope", 0, 110); !errors.Is(err, ErrUnknownCard) {
		t.Errorf("Expected ErrUnknownCard, got %v", err)
	}
}

func TestFlipRunsPhasesInOrder(t *testing.T) {
	h := newHarness(t)
	a := h.place("a", 0, 0)
	startY := a.Position().Y

	if err := h.ctl.RequestFlip("a"); err != nil {
		t.Fatalf("RequestFlip: %v", err)
	}
	phases := []Phase{h.ctl.Phase("a")}
	maxY := startY
	for i := 0; i < 100 && h.ctl.Phase("a") != PhaseIdle; i++ {
		if err := h.ctl.RequestFlip("a"); !errors.Is(err, ErrBusy) {
			t.Fatalf("Expected ErrBusy during flip, got %v", err)
		}
		if err := h.ctl.BeginDrag("a", 0, 0); !errors.Is(err, ErrBusy) {
			t.Fatalf("Expected drag rejected during flip, got %v", err)
		}
		h.tick(1)
		if p := h.ctl.Phase("a"); p != phases[len(phases)-1] {
			phases = append(phases, p)
		}
		maxY = max(maxY, a.Position().Y)
	}

	want := []Phase{PhaseLift, PhaseRotate, PhaseLower, PhaseIdle}
	if len(phases) != len(want) {
		t.Fatalf("Expected phases %v, got %v", want, phases)
	}
	for i := range want {
		if phases[i] != want[i] {
			t.Fatalf("Expected phases %v, got %v", want, phases)
		}
	}

	if math.Abs(maxY-(startY+h.cfg.Flip.LiftHeight)) > 1e-9 {
		t.Errorf("Expected peak at %v, got %v", startY+h.cfg.Flip.LiftHeight, maxY)
	}
	if math.Abs(a.Position().Y-startY) > 1e-12 {
		t.Errorf("Expected lowered back to %v, got %v", startY, a.Position().Y)
	}
	if a.Mode() != physics.ModePinned {
		t.Error("Expected flipped card to stay pinned")
	}
	if !FaceUp(a.Rotation().Flip) {
		t.Errorf("Expected face side visible, flip angle %v", a.Rotation().Flip)
	}
	if tc, _ := h.store.TableCard("a"); !tc.FaceUp {
		t.Error("Expected store face-up flag toggled")
	}
	if h.metric(MetricFlips) != 1 {
		t.Errorf("Expected 1 flip, got %d", h.metric(MetricFlips))
	}

	// Flipping back shows the back again
	if err := h.ctl.RequestFlip("a"); err != nil {
		t.Fatal(err)
	}
	h.tick(40)
	if FaceUp(a.Rotation().Flip) {
		t.Error("Expected back side after second flip")
	}
}

func TestFlipCoveredRejected(t *testing.T) {
	h := newHarness(t)
	a := h.place("a", 0, 0)
	h.place("b", 0, 0)

	if err := h.ctl.RequestFlip("a"); !errors.Is(err, ErrCovered) {
		t.Fatalf("Expected ErrCovered, got %v", err)
	}
	if h.ctl.Phase("a") != PhaseIdle {
		t.Error("Expected no flip session")
	}
	if len(h.notes.msgs) != 1 || h.notes.msgs[0] != "Can't flip — card is covered by another card" {
		t.Errorf("Unexpected notifications %q", h.notes.msgs)
	}
	if a.Rotation().Flip != 0 {
		t.Error("Covered card rotated")
	}
	if err := h.ctl.RequestFlip("ghost"); !errors.Is(err, ErrUnknownCard) {
		t.Errorf("Expected ErrUnknownCard, got %v", err)
	}
	// The top card is free to flip
	if err := h.ctl.RequestFlip("b"); err != nil {
		t.Errorf("Expected top card flip accepted, got %v", err)
	}
}

func TestFlipRejectedWhileFalling(t *testing.T) {
	h := newHarness(t)
	if err := h.store.AddToHand(game.Card{ID: "h", Suit: game.Clubs, Rank: 9}); err != nil {
		t.Fatal(err)
	}
	if err := h.ctl.BeginHandDrag("h", 10, 120); err != nil {
		t.Fatalf("BeginHandDrag: %v", err)
	}
	h.ctl.PointerMove(10, 20)
	if out, err := h.ctl.PointerUp(10, 20); err != nil || out != OutcomePlayed {
		t.Fatalf("Expected played, got %v %v", out, err)
	}

	hd := h.handle("h")
	if err := h.ctl.RequestFlip("h"); !errors.Is(err, ErrBusy) {
		t.Fatalf("Expected ErrBusy for a falling card, got %v", err)
	}
	if h.ctl.Phase("h") != PhaseIdle || hd.Mode() != physics.ModeSimulated {
		t.Fatal("Rejected flip must leave the card falling")
	}

	h.tickUntilPinned("h", 200)
	if y := hd.Position().Y; y != h.cfg.Card.Thickness/2 {
		t.Errorf("Expected the card to land at rest height, got y=%v", y)
	}
	if err := h.ctl.RequestFlip("h"); err != nil {
		t.Errorf("Expected flip once settled, got %v", err)
	}
}

func TestFlipRejectedWhileDragging(t *testing.T) {
	h := newHarness(t)
	h.place("a", 0, 0)
	if err := h.ctl.BeginDrag("a", 0, 0); err != nil {
		t.Fatal(err)
	}
	if err := h.ctl.RequestFlip("a"); !errors.Is(err, ErrBusy) {
		t.Errorf("Expected ErrBusy, got %v", err)
	}
	if err := h.ctl.PickUp("a"); !errors.Is(err, ErrBusy) {
		t.Errorf("Expected ErrBusy for pickup, got %v", err)
	}
}

func TestCancelLowersInPlace(t *testing.T) {
	h := newHarness(t)
	a := h.place("a", 0, 0)
	z := h.ctl.Registry().ZOrderOf("a")

	if err := h.ctl.BeginDrag("a", 0, 0); err != nil {
		t.Fatal(err)
	}
	h.ctl.PointerMove(5, 5)
	if !h.ctl.Cancel() {
		t.Fatal("Expected an open drag to cancel")
	}
	if h.ctl.Cancel() {
		t.Error("Expected second cancel to be a no-op")
	}

	p := a.Position()
	if p.X != 0.5 || p.Z != 0.5 || p.Y != h.cfg.Card.Thickness/2 {
		t.Errorf("Expected card lowered at (0.5, 0.5), got %+v", p)
	}
	if a.Mode() != physics.ModePinned {
		t.Error("Expected cancelled card pinned")
	}
	if h.ctl.Registry().ZOrderOf("a") != z {
		t.Error("Cancel changed z-order")
	}
}

func TestPickUpGatedOnCover(t *testing.T) {
	h := newHarness(t)
	h.place("a", 0, 0)
	h.place("b", 0, 0)

	if err := h.ctl.PickUp("a"); !errors.Is(err, ErrCovered) {
		t.Fatalf("Expected ErrCovered, got %v", err)
	}
	if h.notes.msgs[0] != "Can't pick up — card is covered by another card" {
		t.Errorf("Unexpected notification %q", h.notes.msgs[0])
	}

	if err := h.ctl.PickUp("b"); err != nil {
		t.Fatalf("PickUp b: %v", err)
	}
	if h.ctl.Registry().Len() != 1 || h.world.Len() != 1 {
		t.Errorf("Expected one card left, registry=%d world=%d", h.ctl.Registry().Len(), h.world.Len())
	}
	if err := h.ctl.PickUp("a"); err != nil {
		t.Errorf("Expected uncovered a to be picked up, got %v", err)
	}
	if len(h.store.Hand()) != 2 || h.metric(MetricPicks) != 2 || h.metric(MetricCards) != 0 {
		t.Errorf("Expected 2 cards in hand, got hand=%d picks=%d", len(h.store.Hand()), h.metric(MetricPicks))
	}
	if err := h.ctl.PickUp("a"); !errors.Is(err, ErrUnknownCard) {
		t.Errorf("Expected ErrUnknownCard, got %v", err)
	}
}

func TestRemovedCardClosesSessions(t *testing.T) {
	h := newHarness(t)
	h.place("a", 0, 0)
	if err := h.ctl.BeginDrag("a", 0, 0); err != nil {
		t.Fatal(err)
	}
	if _, err := h.store.RemoveFromTable("a"); err != nil {
		t.Fatal(err)
	}
	if _, ok := h.ctl.Dragging(); ok {
		t.Error("Expected drag closed when its card left the table")
	}
	h.tick(1)
}

func TestEstimateVelocity(t *testing.T) {
	t0 := time.Unix(0, 0)
	cases := []struct {
		name    string
		samples []sample
		vx, vz  float64
	}{
		{"empty", nil, 0, 0},
		{"single", []sample{{x: 1, at: t0}}, 0, 0},
		{"zero span", []sample{{x: 0, at: t0}, {x: 1, at: t0}}, 0, 0},
		{"sub millisecond", []sample{{x: 0, at: t0}, {x: 1, at: t0.Add(500 * time.Microsecond)}}, 0, 0},
		{"steady", []sample{{x: 0, z: 0, at: t0}, {x: 0.5, z: 0.25, at: t0.Add(500 * time.Millisecond)}, {x: 1, z: 0.5, at: t0.Add(time.Second)}}, 1, 0.5},
		{"clamped", []sample{{x: 0, at: t0}, {x: 0, z: 10, at: t0.Add(time.Second)}}, 0, 5},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			vx, vz := estimateVelocity(tc.samples, time.Millisecond, 5)
			if math.Abs(vx-tc.vx) > 1e-12 || math.Abs(vz-tc.vz) > 1e-12 {
				t.Errorf("Expected (%v, %v), got (%v, %v)", tc.vx, tc.vz, vx, vz)
			}
		})
	}
}

func TestSampleBufferEvictsOldest(t *testing.T) {
	s := &dragSession{}
	for i := 0; i < 8; i++ {
		s.push(sample{x: float64(i)}, 5)
	}
	if len(s.samples) != 5 || s.samples[0].x != 3 || s.samples[4].x != 7 {
		t.Errorf("Expected samples 3..7, got %+v", s.samples)
	}
}
