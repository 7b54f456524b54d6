package ui

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/emfield/field"
	"github.com/pthm-cable/emfield/shader"
)

// ProbeData describes the cell under the cursor.
type ProbeData struct {
	CellX, CellY int
	Snapshot     *field.Snapshot
	Color        shader.Color
}

// ProbePanel shows field components, materials and the shaded color of one
// grid cell.
type ProbePanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
}

// NewProbePanel creates a new probe panel.
func NewProbePanel(x, y, width int32) *ProbePanel {
	return &ProbePanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
	}
}

// SetPosition updates the panel position.
func (p *ProbePanel) SetPosition(x, y int32) {
	p.x = x
	p.y = y
}

// Draw renders the panel and returns the Y position below it.
func (p *ProbePanel) Draw(data ProbeData) int32 {
	if data.Snapshot == nil {
		return p.y
	}
	r := p.renderer
	padding := r.Theme.Padding
	lh := r.Theme.LineHeight
	panelHeight := lh*17 + padding*2

	r.DrawPanel(p.x, p.y, p.width, panelHeight)

	x := p.x + padding
	y := p.y + padding
	inner := p.width - padding*2

	rl.DrawText(fmt.Sprintf("Cell (%d, %d)", data.CellX, data.CellY), x, y, 14, rl.White)
	y += lh + 4

	s := data.Snapshot
	y = r.DrawSectionHeader(x, y, "Fields")
	for _, nf := range s.Fields()[:6] {
		y = r.DrawCenteredBar(x, y, nf.Name, nf.Field.At(data.CellX, data.CellY), 1, inner)
	}

	y = r.DrawSectionHeader(x, y, "Material")
	y = r.DrawLabelValue(x, y, field.NamePermittivity, fmt.Sprintf("%.3g", s.Permittivity.At(data.CellX, data.CellY)))
	y = r.DrawLabelValue(x, y, field.NamePermeability, fmt.Sprintf("%.3g", s.Permeability.At(data.CellX, data.CellY)))
	y = r.DrawLabelValue(x, y, field.NameConductivity, fmt.Sprintf("%.3g", s.Conductivity.At(data.CellX, data.CellY)))

	y = r.DrawSectionHeader(x, y, "Color")
	y = r.DrawChannelBar(x, y, "R", data.Color.R, r.Theme.ChannelR, inner)
	y = r.DrawChannelBar(x, y, "G", data.Color.G, r.Theme.ChannelG, inner)
	y = r.DrawChannelBar(x, y, "B", data.Color.B, r.Theme.ChannelB, inner)

	return y
}
