package ui

import (
	"fmt"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
)

// Slider ranges.
const (
	MinCellSize = 0.002
	MaxCellSize = 0.1
	MaxAngle    = 6.2832
)

// ControlsState is the viewer state the panel edits in place.
type ControlsState struct {
	Snapped         bool
	AllowContinuous bool
	CellSize        float32
	PulseAngle      float32
	Paused          bool
}

// ControlsAction reports which one-shot buttons were pressed this frame.
type ControlsAction struct {
	Changed    bool // any slider or toggle moved
	Regenerate bool
	SavePNG    bool
	Compare    bool
}

// ControlsPanel renders the right-side controls panel.
type ControlsPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
	visible  bool
}

// NewControlsPanel creates a new controls panel.
func NewControlsPanel(x, y, width int32) *ControlsPanel {
	return &ControlsPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
		visible:  true,
	}
}

// SetPosition updates the panel position.
func (c *ControlsPanel) SetPosition(x, y int32) {
	c.x = x
	c.y = y
}

// Toggle switches panel visibility.
func (c *ControlsPanel) Toggle() bool {
	c.visible = !c.visible
	return c.visible
}

// Draw renders the panel and applies slider changes to s.
func (c *ControlsPanel) Draw(s *ControlsState) ControlsAction {
	var act ControlsAction
	if !c.visible {
		return act
	}

	r := c.renderer
	padding := r.Theme.Padding
	panelHeight := int32(290)
	r.DrawPanel(c.x, c.y, c.width, panelHeight)

	x := float32(c.x + padding)
	y := float32(c.y + padding)
	inner := float32(c.width - padding*2)

	rl.DrawText("Controls", int32(x), int32(y), 16, rl.White)
	y += 26

	// Sampling mode
	label := "Mode: continuous"
	if s.Snapped {
		label = "Mode: snapped"
	}
	if s.AllowContinuous {
		if gui.Button(rl.Rectangle{X: x, Y: y, Width: inner, Height: 26}, label) {
			s.Snapped = !s.Snapped
			act.Changed = true
		}
	} else {
		rl.DrawText(label+" (indexed backend)", int32(x), int32(y+6), r.Theme.FontSize, r.Theme.LabelColor)
	}
	y += 36

	// Cell size
	rl.DrawText(fmt.Sprintf("Cell size: %.4f", s.CellSize), int32(x), int32(y), r.Theme.FontSize, r.Theme.LabelColor)
	y += 16
	cell := gui.SliderBar(rl.Rectangle{X: x, Y: y, Width: inner, Height: 18}, "", "", s.CellSize, MinCellSize, MaxCellSize)
	if cell != s.CellSize {
		s.CellSize = cell
		act.Changed = true
	}
	y += 30

	// Pulse direction
	rl.DrawText(fmt.Sprintf("Pulse angle: %.2f rad", s.PulseAngle), int32(x), int32(y), r.Theme.FontSize, r.Theme.LabelColor)
	y += 16
	angle := gui.SliderBar(rl.Rectangle{X: x, Y: y, Width: inner, Height: 18}, "", "", s.PulseAngle, 0, MaxAngle)
	if angle != s.PulseAngle {
		s.PulseAngle = angle
		act.Regenerate = true
	}
	y += 34

	half := (inner - 10) / 2
	if gui.Button(rl.Rectangle{X: x, Y: y, Width: half, Height: 28}, toggleText(s.Paused, "Resume", "Pause")) {
		s.Paused = !s.Paused
	}
	if gui.Button(rl.Rectangle{X: x + half + 10, Y: y, Width: half, Height: 28}, "Regenerate") {
		act.Regenerate = true
	}
	y += 38

	if gui.Button(rl.Rectangle{X: x, Y: y, Width: half, Height: 28}, "Save PNG") {
		act.SavePNG = true
	}
	if gui.Button(rl.Rectangle{X: x + half + 10, Y: y, Width: half, Height: 28}, "Compare") {
		act.Compare = true
	}

	return act
}

func toggleText(on bool, onText, offText string) string {
	if on {
		return onText
	}
	return offText
}
