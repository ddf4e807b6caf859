package view

import (
	"fmt"
	"math"
	"strconv"

	"github.com/gdamore/tcell/v2"
	"github.com/lixenwraith/tabletop/game"
	"github.com/lixenwraith/tabletop/physics"
	"github.com/lixenwraith/tabletop/table"
	"github.com/lixenwraith/tabletop/toast"
)

// Hand row layout
const (
	handCardW   = 5
	handCardH   = 3
	handSpacing = 1
	handLeft    = 1
)

// deckCells is the deck footprint on screen
const deckCells = 4

const helpText = "n:deck d:draw h:hand s:shuffle m:mute esc:cancel q:quit"

// CardSource is the read side of the game store the renderer needs
type CardSource interface {
	TableCard(id string) (game.TableCard, bool)
	Hand() []game.Card
	Decks() []game.Deck
}

// Frame is everything drawn in one frame
type Frame struct {
	Table  *table.Controller
	Cards  CardSource
	Toasts []toast.Toast
	Status string
	Menu   *Menu
}

// cellRect is a card's screen rectangle
type cellRect struct {
	x, y, w, h int
}

func (r cellRect) contains(sx, sy int) bool {
	return sx >= r.x && sx < r.x+r.w && sy >= r.y && sy < r.y+r.h
}

// Renderer draws frames onto a tcell screen
type Renderer struct {
	screen tcell.Screen
	proj   *Projector
}

// NewRenderer creates a renderer
func NewRenderer(screen tcell.Screen, proj *Projector) *Renderer {
	return &Renderer{screen: screen, proj: proj}
}

// Render draws the entire frame
func (r *Renderer) Render(f Frame) {
	r.screen.Clear()
	defaultStyle := tcell.StyleDefault.Background(RgbBackground)

	drag, dragging := f.Table.Dragging()

	r.drawFelt()
	r.drawDecks(f.Cards.Decks())
	r.drawTableCards(f, drag, dragging)
	r.drawHand(f.Cards.Hand(), drag, dragging)
	if dragging && (drag.Origin == table.OriginHand || drag.InHandZone) {
		r.drawGhost(f, drag)
	}
	r.drawStatusBar(f.Status, defaultStyle)
	r.drawToasts(f.Toasts)
	r.drawMenu(f.Menu)

	r.screen.Show()
}

// drawFelt fills the table and hand zone backgrounds
func (r *Renderer) drawFelt() {
	w, h := r.proj.Size()
	felt := tcell.StyleDefault.Background(RgbFelt)
	edge := tcell.StyleDefault.Background(RgbFeltEdge)
	hand := tcell.StyleDefault.Background(RgbHandZone)
	handTop := r.proj.HandTop()

	for y := StatusRows; y < h; y++ {
		for x := 0; x < w; x++ {
			switch {
			case y >= handTop:
				r.screen.SetContent(x, y, ' ', nil, hand)
			case x == 0 || x == w-1 || y == handTop-1:
				r.screen.SetContent(x, y, ' ', nil, edge)
			default:
				r.screen.SetContent(x, y, ' ', nil, felt)
			}
		}
	}
	r.drawText(1, handTop, "hand", hand.Foreground(RgbMenuMuted))
}

func (r *Renderer) drawDecks(decks []game.Deck) {
	style := tcell.StyleDefault.Background(RgbDeck).Foreground(RgbCardFace)
	for _, d := range decks {
		rect := r.deckRect(d)
		r.fill(rect, '▒', style)
		r.drawText(rect.x, rect.y, strconv.Itoa(len(d.Cards)), style.Bold(true))
	}
}

func (r *Renderer) deckRect(d game.Deck) cellRect {
	cx, cy := r.proj.WorldToCell(d.Position.X, d.Position.Z)
	return cellRect{x: cx - deckCells/2, y: cy - 1, w: deckCells, h: 2}
}

// drawTableCards paints table cards in ascending z-order so later cards cover earlier ones
func (r *Renderer) drawTableCards(f Frame, drag table.DragView, dragging bool) {
	reg := f.Table.Registry()
	var lifted string
	for _, id := range reg.Ordered() {
		if dragging && drag.CardID == id {
			lifted = id
			continue
		}
		r.drawTableCard(f, id, false)
	}
	// The dragged card floats over everything unless it hovers the hand zone
	if lifted != "" && !drag.InHandZone {
		r.drawTableCard(f, lifted, true)
	}
}

func (r *Renderer) drawTableCard(f Frame, id string, dragged bool) {
	h, ok := f.Table.Registry().Lookup(id)
	if !ok {
		return
	}
	tc, ok := f.Cards.TableCard(id)
	if !ok {
		return
	}
	rect := r.tableRect(h)
	rot := h.Rotation()
	// Narrow the card as it turns edge-on
	if f.Table.Phase(id) == table.PhaseRotate {
		narrow := max(int(math.Round(float64(rect.w)*math.Abs(math.Cos(rot.Flip)))), 1)
		rect.x += (rect.w - narrow) / 2
		rect.w = narrow
	}
	if dragged || h.Mode() == physics.ModeSimulated || f.Table.Phase(id) != table.PhaseIdle {
		r.drawShadow(rect)
	}
	r.drawCard(rect, tc.Card, table.FaceUp(rot.Flip))
}

func (r *Renderer) tableRect(h table.Handle) cellRect {
	pos := h.Position()
	cx, cy := r.proj.WorldToCell(pos.X, pos.Z)
	w, hh := r.proj.CardCells()
	return cellRect{x: cx - w/2, y: cy - hh/2, w: w, h: hh}
}

func (r *Renderer) drawShadow(rect cellRect) {
	shadow := tcell.StyleDefault.Background(RgbFeltEdge)
	for x := rect.x + 1; x <= rect.x+rect.w; x++ {
		r.screen.SetContent(x, rect.y+rect.h, ' ', nil, shadow)
	}
	for y := rect.y + 1; y < rect.y+rect.h; y++ {
		r.screen.SetContent(rect.x+rect.w, y, ' ', nil, shadow)
	}
}

// drawCard paints a face or a back into rect
func (r *Renderer) drawCard(rect cellRect, c game.Card, faceUp bool) {
	if !faceUp {
		r.fill(rect, '░', tcell.StyleDefault.Background(RgbCardBack).Foreground(RgbCardBackFg))
		return
	}

	fg := RgbCardBlack
	if c.Suit.Red() {
		fg = RgbCardRed
	}
	style := tcell.StyleDefault.Background(RgbCardFace).Foreground(fg)
	r.fill(rect, ' ', style)

	label := []rune(c.Label())
	r.drawRunes(rect.x, rect.y, label, rect.w, style.Bold(true))
	if rect.h > 2 {
		r.drawRunes(rect.x+rect.w-len(label), rect.y+rect.h-1, label, rect.w, style)
		r.screen.SetContent(rect.x+rect.w/2, rect.y+rect.h/2, c.Suit.Symbol(), nil, style)
	}
}

// drawHand lays the hand out left to right; the card being dragged leaves a gap
func (r *Renderer) drawHand(hand []game.Card, drag table.DragView, dragging bool) {
	if dragging && drag.Origin == table.OriginTable && drag.InHandZone {
		w, _ := r.proj.Size()
		active := tcell.StyleDefault.Background(RgbHandActive)
		for y := r.proj.HandTop(); y < r.proj.HandTop()+r.proj.handRows; y++ {
			for x := 0; x < w; x++ {
				r.screen.SetContent(x, y, ' ', nil, active)
			}
		}
	}
	for i, c := range hand {
		if dragging && drag.Origin == table.OriginHand && drag.CardID == c.ID {
			continue
		}
		r.drawCard(r.handRect(i), c, c.FaceUp)
	}
}

func (r *Renderer) handRect(i int) cellRect {
	return cellRect{
		x: handLeft + i*(handCardW+handSpacing),
		y: r.proj.HandTop() + 1,
		w: handCardW,
		h: handCardH,
	}
}

// drawGhost shows the dragged card under the pointer when it is off the table plane
func (r *Renderer) drawGhost(f Frame, drag table.DragView) {
	var c game.Card
	if drag.Origin == table.OriginHand {
		for _, hc := range f.Cards.Hand() {
			if hc.ID == drag.CardID {
				c = hc
			}
		}
	} else if tc, ok := f.Cards.TableCard(drag.CardID); ok {
		c = tc.Card
		if h, ok := f.Table.Registry().Lookup(drag.CardID); ok {
			c.FaceUp = table.FaceUp(h.Rotation().Flip)
		}
	}
	if c.ID == "" {
		return
	}
	rect := cellRect{x: drag.ScreenX - handCardW/2, y: drag.ScreenY - handCardH/2, w: handCardW, h: handCardH}
	r.drawShadow(rect)
	r.drawCard(rect, c, c.FaceUp)
}

func (r *Renderer) drawStatusBar(status string, defaultStyle tcell.Style) {
	w, _ := r.proj.Size()
	style := defaultStyle.Background(RgbStatusBg).Foreground(RgbStatusText)
	for x := 0; x < w; x++ {
		r.screen.SetContent(x, 0, ' ', nil, style)
	}
	text := " tabletop │ " + status
	r.drawText(0, 0, text, style.Bold(true))
	if start := w - len(helpText) - 1; start > len([]rune(text))+1 {
		r.drawText(start, 0, helpText, style)
	}
}

// drawToasts stacks messages in the top-right corner, newest at the bottom
func (r *Renderer) drawToasts(toasts []toast.Toast) {
	w, _ := r.proj.Size()
	for i, t := range toasts {
		bg := RgbToastInfo
		if t.Severity == toast.Warning {
			bg = RgbToastWarn
		}
		style := tcell.StyleDefault.Background(bg).Foreground(RgbMenuText)
		text := fmt.Sprintf(" %c %s ", toast.Icons[t.Severity], t.Message)
		r.drawText(w-len([]rune(text))-1, StatusRows+1+i, text, style)
	}
}

func (r *Renderer) drawMenu(m *Menu) {
	if m == nil {
		return
	}
	fg := RgbMenuText
	if m.Covered {
		fg = RgbMenuMuted
	}
	style := tcell.StyleDefault.Background(RgbMenuBg).Foreground(fg)
	for i, a := range menuActions {
		r.drawText(m.X, m.Y+i, fmt.Sprintf(" %-*s", menuWidth-1, a), style)
	}
}

// --- Hit testing ---

// CardAt returns the topmost table card at a cell
// The cell is projected onto the table and resolved by footprint; cells on a card's
// drawn border outside its footprint fall back to the drawn rectangles, topmost first
func (r *Renderer) CardAt(reg *table.Registry, sx, sy int) (string, bool) {
	if sy < StatusRows || r.proj.InHandZone(sx, sy) {
		return "", false
	}
	p := r.proj.Project(sx, sy)
	if id, ok := reg.TopAt(p.X, p.Z); ok {
		return id, true
	}

	ids := reg.Ordered()
	for i := len(ids) - 1; i >= 0; i-- {
		h, ok := reg.Lookup(ids[i])
		if ok && r.tableRect(h).contains(sx, sy) {
			return ids[i], true
		}
	}
	return "", false
}

// HandCardAt returns the hand index drawn at a cell
func (r *Renderer) HandCardAt(handLen, sx, sy int) (int, bool) {
	for i := 0; i < handLen; i++ {
		if r.handRect(i).contains(sx, sy) {
			return i, true
		}
	}
	return 0, false
}

// HandSlot returns the insertion index for a release in the hand zone
func (r *Renderer) HandSlot(handLen, sx int) int {
	slot := (sx - handLeft) / (handCardW + handSpacing)
	return min(max(slot, 0), max(handLen-1, 0))
}

// DeckAt returns the deck drawn at a cell
func (r *Renderer) DeckAt(decks []game.Deck, sx, sy int) (string, bool) {
	for i := len(decks) - 1; i >= 0; i-- {
		if r.deckRect(decks[i]).contains(sx, sy) {
			return decks[i].ID, true
		}
	}
	return "", false
}

// --- Primitives ---

func (r *Renderer) fill(rect cellRect, ch rune, style tcell.Style) {
	for y := rect.y; y < rect.y+rect.h; y++ {
		for x := rect.x; x < rect.x+rect.w; x++ {
			r.screen.SetContent(x, y, ch, nil, style)
		}
	}
}

func (r *Renderer) drawText(x, y int, s string, style tcell.Style) {
	for i, ch := range []rune(s) {
		r.screen.SetContent(x+i, y, ch, nil, style)
	}
}

// drawRunes writes at most limit runes
func (r *Renderer) drawRunes(x, y int, rs []rune, limit int, style tcell.Style) {
	for i, ch := range rs {
		if i >= limit {
			return
		}
		r.screen.SetContent(x+i, y, ch, nil, style)
	}
}
