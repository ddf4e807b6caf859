// Package view maps terminal cells onto the table and draws the scene with tcell
package view

import (
	"math"

	"github.com/lixenwraith/tabletop/config"
	"github.com/lixenwraith/tabletop/vmath"
)

// StatusRows is the status line at the top of the screen
const StatusRows = 1

// Projector is an orthographic mapping from terminal cells to the table plane
// Row 0 is the status line, the table fills the middle and the hand zone is the bottom HandZoneRows rows
type Projector struct {
	width    int
	height   int
	handRows int
	tableW   float64
	tableD   float64
	cardW    float64
	cardD    float64
	planeY   float64
}

// NewProjector creates a projector for a width x height terminal
func NewProjector(cfg config.Config, width, height int) *Projector {
	p := &Projector{
		handRows: cfg.UI.HandZoneRows,
		tableW:   cfg.Table.Width,
		tableD:   cfg.Table.Depth,
		cardW:    cfg.Card.Width,
		cardD:    cfg.Card.Depth,
		planeY:   cfg.Drag.PlaneHeight,
	}
	p.Resize(width, height)
	return p
}

// Resize updates the terminal dimensions
func (p *Projector) Resize(width, height int) {
	p.width = max(width, 1)
	p.height = max(height, StatusRows+p.handRows+1)
}

// Size returns the terminal dimensions in cells
func (p *Projector) Size() (int, int) {
	return p.width, p.height
}

// TableRows is the number of rows showing the table
func (p *Projector) TableRows() int {
	return p.height - StatusRows - p.handRows
}

// HandTop is the first row of the hand zone
func (p *Projector) HandTop() int {
	return p.height - p.handRows
}

// Project maps a cell centre to the drag plane; cells off the table clamp to its edge
func (p *Projector) Project(sx, sy int) vmath.Vec3F {
	rows := float64(p.TableRows())
	fx := (float64(sx)+0.5)/float64(p.width) - 0.5
	fz := (float64(sy-StatusRows)+0.5)/rows - 0.5

	return vmath.Vec3F{
		X: vmath.Clamp(fx, -0.5, 0.5) * p.tableW,
		Y: p.planeY,
		Z: vmath.Clamp(fz, -0.5, 0.5) * p.tableD,
	}
}

// InHandZone reports whether the cell lies in the bottom hand rows
func (p *Projector) InHandZone(sx, sy int) bool {
	return sy >= p.HandTop()
}

// WorldToCell maps a table point to the cell containing it
func (p *Projector) WorldToCell(x, z float64) (int, int) {
	sx := int(math.Floor((x/p.tableW + 0.5) * float64(p.width)))
	sy := StatusRows + int(math.Floor((z/p.tableD+0.5)*float64(p.TableRows())))
	return sx, sy
}

// CardCells is a card's on-screen footprint; at least wide enough for a label
func (p *Projector) CardCells() (int, int) {
	w := int(math.Round(p.cardW / p.tableW * float64(p.width)))
	h := int(math.Round(p.cardD / p.tableD * float64(p.TableRows())))
	return max(w, 5), max(h, 3)
}
