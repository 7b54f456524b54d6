package ui

import (
	"fmt"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/emfield/telemetry"
)

// HUDData holds all the data needed to render the main HUD.
type HUDData struct {
	Title    string
	Mode     string
	Backend  string
	GridW    int
	GridH    int
	CellSize float64
	ViewW    int
	ViewH    int
	Frame    int
	FPS      int32
	Paused   bool
	Status   string
}

// HUD renders the main heads-up display.
type HUD struct {
	renderer *Renderer
}

// NewHUD creates a new HUD renderer.
func NewHUD() *HUD {
	return &HUD{
		renderer: NewRenderer(),
	}
}

// Draw renders the HUD.
func (h *HUD) Draw(data HUDData) {
	rl.DrawText(data.Title, 10, 10, 20, rl.White)

	rl.DrawText(
		fmt.Sprintf("Mode: %s | Backend: %s | Grid: %dx%d @ %.4g", data.Mode, data.Backend, data.GridW, data.GridH, data.CellSize),
		10, 35, 16, rl.LightGray,
	)

	rl.DrawText(
		fmt.Sprintf("View: %dx%d | Frame: %d | FPS: %d", data.ViewW, data.ViewH, data.Frame, data.FPS),
		10, 55, 16, rl.LightGray,
	)

	statusText := "Live"
	if data.Paused {
		statusText = "PAUSED"
	}
	if data.Status != "" {
		statusText += " | " + data.Status
	}
	rl.DrawText(statusText, 10, 75, 16, rl.Yellow)
}

// DrawControls renders the control legend at the bottom of the screen.
func (h *HUD) DrawControls(screenHeight int32, controls string) {
	rl.DrawText(controls, 10, screenHeight-25, 14, rl.Gray)
}

// PerfPanel renders renderer phase timings.
type PerfPanel struct {
	renderer *Renderer
	x, y     int32
}

// NewPerfPanel creates a new performance panel.
func NewPerfPanel(x, y int32) *PerfPanel {
	return &PerfPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
	}
}

// SetPosition updates the panel position.
func (p *PerfPanel) SetPosition(x, y int32) {
	p.x = x
	p.y = y
}

// Draw renders the performance panel.
func (p *PerfPanel) Draw(stats telemetry.PerfStats, workers int) {
	x := p.x
	y := p.y

	rl.DrawText("Frame Performance", x, y, 16, rl.White)
	y += 20

	rl.DrawText(fmt.Sprintf("Avg: %s  Max: %s  Workers: %d",
		stats.AvgFrameDuration.Round(time.Microsecond),
		stats.MaxFrameDuration.Round(time.Microsecond),
		workers), x, y, 14, rl.Yellow)
	y += 16

	for _, name := range []string{
		telemetry.PhaseScene,
		telemetry.PhaseValidate,
		telemetry.PhaseShade,
		telemetry.PhaseEncode,
		telemetry.PhaseUpload,
	} {
		avg, ok := stats.PhaseAvg[name]
		if !ok {
			continue
		}
		pct := stats.PhasePct[name]

		color := rl.LightGray
		if pct > 60 {
			color = rl.Red
		} else if pct > 30 {
			color = rl.Orange
		}

		rl.DrawText(
			fmt.Sprintf("%-10s %8s %5.1f%%", name, avg.Round(time.Microsecond), pct),
			x, y, 12, color,
		)
		y += 14
	}
}
