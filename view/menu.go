package view

// MenuAction is a context menu entry
type MenuAction uint8

const (
	ActionNone MenuAction = iota
	ActionFlip
	ActionPickUp
)

func (a MenuAction) String() string {
	switch a {
	case ActionFlip:
		return "Flip"
	case ActionPickUp:
		return "Pick Up to Hand"
	default:
		return ""
	}
}

// menuActions are listed top to bottom
var menuActions = [...]MenuAction{ActionFlip, ActionPickUp}

// menuWidth fits the longest label plus padding
const menuWidth = 18

// Menu is the right-click menu for one table card
// Covered marks the entries as unavailable; choosing one still goes through the controller so the rejection toast shows
type Menu struct {
	CardID  string
	X, Y    int
	Covered bool
}

// OpenMenu places a menu at the click, shifted to stay on screen
func OpenMenu(cardID string, x, y int, covered bool, p *Projector) *Menu {
	w, h := p.Size()
	x = min(x, w-menuWidth)
	y = min(y, h-len(menuActions))
	return &Menu{CardID: cardID, X: max(x, 0), Y: max(y, 0), Covered: covered}
}

// ActionAt returns the entry under a cell, ActionNone outside the menu
func (m *Menu) ActionAt(sx, sy int) MenuAction {
	if m == nil || sx < m.X || sx >= m.X+menuWidth {
		return ActionNone
	}
	row := sy - m.Y
	if row < 0 || row >= len(menuActions) {
		return ActionNone
	}
	return menuActions[row]
}
