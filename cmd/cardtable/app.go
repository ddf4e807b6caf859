package main

import (
	"errors"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/lixenwraith/tabletop/audio"
	"github.com/lixenwraith/tabletop/clock"
	"github.com/lixenwraith/tabletop/config"
	"github.com/lixenwraith/tabletop/game"
	"github.com/lixenwraith/tabletop/physics"
	"github.com/lixenwraith/tabletop/status"
	"github.com/lixenwraith/tabletop/table"
	"github.com/lixenwraith/tabletop/toast"
	"github.com/lixenwraith/tabletop/view"
	"github.com/lixenwraith/tabletop/vmath"
	"go.uber.org/zap"
)

// Deck spawn layout along the far edge of the table
const (
	deckInset   = 1.0
	deckSpacing = 1.5
)

// Metric keys owned by the program
const (
	MetricDecks   = "app.decks"
	MetricHand    = "app.hand"
	MetricLast    = "app.last"
	MetricFrameMs = "app.frame_ms"
)

// frameSmoothing weights the newest frame in the frame time average
const frameSmoothing = 0.1

// maxCatchUpFrames caps how much simulated time one late tick may advance
const maxCatchUpFrames = 4

// statusKeys are shown on the status line in this order
var statusKeys = []string{
	table.MetricCards,
	MetricHand,
	MetricDecks,
	table.MetricFlips,
	table.MetricFlicks,
	table.MetricBlocked,
	MetricLast,
	MetricFrameMs,
}

// app owns the table session and turns terminal events into controller calls
// All methods run on the main loop goroutine
type app struct {
	cfg     config.Config
	log     *zap.Logger
	clock   clock.Provider
	store   *game.Store
	world   *physics.World
	ctl     *table.Controller
	proj    *view.Projector
	rend    *view.Renderer
	toasts  *toast.Queue
	metrics *status.Registry
	sounds  *audio.SoundManager

	menu *view.Menu

	// pointer state between mouse events
	buttons     tcell.ButtonMask
	lastClickID string
	lastClickAt time.Time

	lastFrame time.Time
}

// newApp wires the store, physics world, controller and view for a screen
func newApp(cfg config.Config, screen tcell.Screen, sounds *audio.SoundManager, clk clock.Provider, seed uint64, log *zap.Logger) *app {
	w, h := screen.Size()
	a := &app{
		cfg:     cfg,
		log:     log,
		clock:   clk,
		store:   game.NewStore(game.Options{DrawOffset: cfg.Table.DrawOffset, DrawHeight: cfg.Card.Thickness * 2}, seed),
		world:   physics.NewWorld(physics.ParamsFrom(cfg)),
		proj:    view.NewProjector(cfg, w, h),
		toasts:  toast.NewQueue(cfg.ToastTTL(), clk),
		metrics: status.NewRegistry(),
		sounds:  sounds,
	}
	a.metrics.Strings.Get(MetricLast).Store("-")
	// Registered up front so the status line renders it as a float
	a.metrics.Floats.Get(MetricFrameMs)
	a.rend = view.NewRenderer(screen, a.proj)

	deps := table.Deps{
		Engine:    a.world,
		Store:     a.store,
		Projector: a.proj,
		Notifier:  a.toasts,
		Sounds:    sounds,
		Clock:     clk,
		Metrics:   a.metrics,
		Logger:    log,
	}
	a.ctl = table.NewController(cfg, deps)
	return a
}

func (a *app) close() {
	a.ctl.Close()
}

// frameDelta is the real time between ticks, capped at maxCatchUpFrames intervals
// The first tick, or a clock that went backwards, advances one interval
func frameDelta(last, now time.Time, interval time.Duration) time.Duration {
	if last.IsZero() {
		return interval
	}
	dt := now.Sub(last)
	if dt <= 0 {
		return interval
	}
	return min(dt, maxCatchUpFrames*interval)
}

// frame advances the simulation by dt and draws
func (a *app) frame(dt time.Duration) {
	now := a.clock.Now()
	if !a.lastFrame.IsZero() {
		ms := float64(now.Sub(a.lastFrame)) / float64(time.Millisecond)
		a.metrics.Floats.Get(MetricFrameMs).Smooth(ms, frameSmoothing)
	}
	a.lastFrame = now

	a.ctl.Tick(dt)
	a.toasts.Tick()
	a.metrics.Ints.Get(MetricHand).Store(int64(len(a.store.Hand())))
	a.metrics.Ints.Get(MetricDecks).Store(int64(len(a.store.Decks())))
	a.render()
}

func (a *app) render() {
	line := a.metrics.Summary(statusKeys...)
	if a.sounds.Muted() {
		line += " muted"
	}
	a.rend.Render(view.Frame{
		Table:  a.ctl,
		Cards:  a.store,
		Toasts: a.toasts.Active(),
		Status: line,
		Menu:   a.menu,
	})
}

// handleEvent dispatches one terminal event; false means quit
func (a *app) handleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		return a.handleKey(ev)
	case *tcell.EventMouse:
		a.handleMouse(ev)
	case *tcell.EventResize:
		w, h := ev.Size()
		a.proj.Resize(w, h)
		a.menu = nil
	}
	return true
}

func (a *app) handleKey(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyCtrlC:
		return false
	case tcell.KeyEscape:
		if a.menu != nil {
			a.menu = nil
			return true
		}
		a.ctl.Cancel()
		return true
	case tcell.KeyRune:
	default:
		return true
	}

	switch ev.Rune() {
	case 'q':
		return false
	case 'n':
		a.spawnDeck()
	case 'd':
		a.drawToTable()
	case 'h':
		a.drawToHand()
	case 's':
		a.shuffle()
	case 'm':
		a.sounds.SetMuted(!a.sounds.Muted())
	}
	return true
}

// --- Deck actions ---

func (a *app) spawnDeck() {
	i := len(a.store.Decks())
	x := -a.cfg.Table.Width/2 + deckInset + float64(i)*deckSpacing
	z := -a.cfg.Table.Depth/2 + deckInset
	if x > a.cfg.Table.Width/2-deckInset {
		a.toasts.Push("No room for another deck", toast.Info)
		return
	}
	id := a.store.SpawnDeck(vmath.Vec3F{X: x, Z: z})
	a.log.Debug("deck spawned", zap.String("deck", id))
}

// activeDeck is the most recently spawned deck
func (a *app) activeDeck() (string, bool) {
	decks := a.store.Decks()
	if len(decks) == 0 {
		a.toasts.Push("No deck on the table, press n", toast.Info)
		return "", false
	}
	return decks[len(decks)-1].ID, true
}

func (a *app) drawToTable() {
	if id, ok := a.activeDeck(); ok {
		a.drawFrom(id)
	}
}

func (a *app) drawFrom(deckID string) {
	if _, err := a.store.DrawToTable(deckID); err != nil {
		a.deckError(err)
	}
}

func (a *app) drawToHand() {
	id, ok := a.activeDeck()
	if !ok {
		return
	}
	if _, err := a.store.DrawToHand(id); err != nil {
		a.deckError(err)
		return
	}
	a.sounds.Pickup()
}

func (a *app) shuffle() {
	for _, d := range a.store.Decks() {
		if err := a.store.ShuffleDeck(d.ID); err != nil {
			a.log.Warn("shuffle failed", zap.String("deck", d.ID), zap.Error(err))
		}
	}
}

func (a *app) deckError(err error) {
	if errors.Is(err, game.ErrEmptyDeck) {
		a.toasts.Push("Deck is empty", toast.Info)
		return
	}
	a.log.Warn("deck action failed", zap.Error(err))
}

// --- Pointer ---

// handleMouse turns button state changes into press, drag and release
func (a *app) handleMouse(ev *tcell.EventMouse) {
	x, y := ev.Position()
	buttons := ev.Buttons()
	prev := a.buttons
	a.buttons = buttons

	pressed := buttons &^ prev
	released := prev &^ buttons

	switch {
	case pressed&tcell.Button1 != 0:
		a.primaryPress(x, y)
	case pressed&tcell.Button2 != 0:
		a.secondaryPress(x, y)
	case released&tcell.Button1 != 0:
		a.primaryRelease(x, y)
	case buttons&tcell.Button1 != 0:
		a.ctl.PointerMove(x, y)
	}
}

func (a *app) primaryPress(x, y int) {
	if a.menu != nil {
		action := a.menu.ActionAt(x, y)
		id := a.menu.CardID
		a.menu = nil
		a.runMenu(action, id)
		return
	}

	if a.proj.InHandZone(x, y) {
		hand := a.store.Hand()
		if i, ok := a.rend.HandCardAt(len(hand), x, y); ok {
			a.report("hand drag", a.ctl.BeginHandDrag(hand[i].ID, x, y))
		}
		return
	}

	if deckID, ok := a.rend.DeckAt(a.store.Decks(), x, y); ok {
		a.drawFrom(deckID)
		return
	}

	id, ok := a.rend.CardAt(a.ctl.Registry(), x, y)
	if !ok {
		return
	}
	now := a.clock.Now()
	if id == a.lastClickID && now.Sub(a.lastClickAt) <= a.cfg.DoubleClick() {
		a.lastClickID = ""
		a.report("flip", a.ctl.RequestFlip(id))
		return
	}
	a.lastClickID, a.lastClickAt = id, now
	a.report("drag", a.ctl.BeginDrag(id, x, y))
}

func (a *app) primaryRelease(x, y int) {
	drag, ok := a.ctl.Dragging()
	if !ok {
		return
	}
	out, err := a.ctl.PointerUp(x, y)
	if err != nil {
		a.report("release", err)
		return
	}
	a.metrics.Strings.Get(MetricLast).Store(out.String())
	if out == table.OutcomeReturned {
		a.reorderHand(drag.CardID, x)
	}
}

// reorderHand moves a hand card to the slot under the release
func (a *app) reorderHand(id string, x int) {
	_, from, ok := a.store.HandCard(id)
	if !ok {
		return
	}
	to := a.rend.HandSlot(len(a.store.Hand()), x)
	if from == to {
		return
	}
	if err := a.store.ReorderHand(from, to); err != nil {
		a.log.Warn("reorder failed", zap.Error(err))
	}
}

func (a *app) secondaryPress(x, y int) {
	a.menu = nil
	if a.proj.InHandZone(x, y) {
		return
	}
	id, ok := a.rend.CardAt(a.ctl.Registry(), x, y)
	if !ok {
		return
	}
	a.menu = view.OpenMenu(id, x, y, a.ctl.Registry().IsBlocked(id), a.proj)
}

func (a *app) runMenu(action view.MenuAction, id string) {
	switch action {
	case view.ActionFlip:
		a.report("flip", a.ctl.RequestFlip(id))
	case view.ActionPickUp:
		a.report("pick up", a.ctl.PickUp(id))
	}
}

// report records the action, or logs its rejection; covered rejections already reached the user as a toast
func (a *app) report(op string, err error) {
	if err == nil {
		a.metrics.Strings.Get(MetricLast).Store(op)
		return
	}
	if errors.Is(err, table.ErrCovered) {
		return
	}
	a.log.Debug("action rejected", zap.String("op", op), zap.Error(err))
}
