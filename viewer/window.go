package viewer

import (
	"context"
	"log/slog"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/emfield/config"
	"github.com/pthm-cable/emfield/renderer"
	"github.com/pthm-cable/emfield/shader"
	"github.com/pthm-cable/emfield/ui"
)

// Side panel layout.
const (
	panelWidth  = 280
	panelMargin = 10
)

const controlsHelp = "[SPACE] pause  [M] mode  [C] compare  [P] save png  [R] reset pulse  [TAB] panel  [F11] fullscreen"

// window holds the raylib-side state of an interactive viewer.
type window struct {
	texture   *renderer.FieldTexture
	hud       *ui.HUD
	perfPanel *ui.PerfPanel
	controls  *ui.ControlsPanel
	probe     *ui.ProbePanel

	controlState ui.ControlsState

	screenWidth, screenHeight float32
	preview                   rl.Rectangle

	hoverX, hoverY int
	hovering       bool
}

// WindowSize returns the initial window size for a config: the scaled
// preview plus the side panel.
func WindowSize(cfg *config.Config) (int32, int32) {
	scale := max(1, cfg.Screen.WindowScale)
	w := cfg.Screen.Width*scale + panelWidth + panelMargin*2
	h := max(cfg.Screen.Height*scale, 720)
	return int32(w), int32(h)
}

// EnableWindow creates GPU resources and panels. Must be called after the
// raylib window is created.
func (v *Viewer) EnableWindow() {
	if v.win != nil {
		return
	}
	w := &window{
		texture:   renderer.NewFieldTexture(),
		hud:       ui.NewHUD(),
		perfPanel: ui.NewPerfPanel(10, 100),
		controls:  ui.NewControlsPanel(0, panelMargin, panelWidth),
		probe:     ui.NewProbePanel(0, 0, panelWidth),
		controlState: ui.ControlsState{
			Snapped:         v.mode == shader.ModeSnapped,
			AllowContinuous: v.backend.SupportsFractionalSampling(),
			CellSize:        v.grid.CellSize,
			PulseAngle:      float32(v.pulse.Angle),
		},
	}
	w.texture.Init(v.raster.W, v.raster.H)
	v.win = w
	v.layout(float32(rl.GetScreenWidth()), float32(rl.GetScreenHeight()))
}

// layout fits the preview into the window left of the side panel, keeping
// the raster aspect ratio.
func (v *Viewer) layout(sw, sh float32) {
	w := v.win
	w.screenWidth, w.screenHeight = sw, sh

	availW := max(sw-panelWidth-panelMargin*2, 1)
	availH := max(sh, 1)
	aspect := float32(v.raster.W) / float32(v.raster.H)

	pw, ph := availW, availW/aspect
	if ph > availH {
		ph = availH
		pw = availH * aspect
	}
	w.preview = rl.Rectangle{X: 0, Y: (availH - ph) / 2, Width: pw, Height: ph}

	panelX := int32(pw) + panelMargin
	w.controls.SetPosition(panelX, panelMargin)
	w.probe.SetPosition(panelX, panelMargin+300)
	w.perfPanel.SetPosition(10, int32(sh)-140)
}

// Update handles input and renders the next frame.
func (v *Viewer) Update(ctx context.Context) error {
	v.handleInput()
	return v.Step(ctx, rl.GetFrameTime())
}

// Draw presents the current frame and the UI.
func (v *Viewer) Draw(ctx context.Context) {
	w := v.win
	v.perfCollector.RecordPresent()

	rl.BeginDrawing()
	rl.ClearBackground(rl.Black)

	w.texture.Draw(w.preview)

	w.hud.Draw(ui.HUDData{
		Title:    "EM Field",
		Mode:     v.mode.String(),
		Backend:  v.backend.String(),
		GridW:    v.grid.Width,
		GridH:    v.grid.Height,
		CellSize: float64(v.grid.CellSize),
		ViewW:    v.raster.W,
		ViewH:    v.raster.H,
		Frame:    v.frame,
		FPS:      rl.GetFPS(),
		Paused:   v.paused,
		Status:   v.status,
	})
	w.perfPanel.Draw(v.perfCollector.Stats(), v.renderer.Workers())

	w.controlState.Paused = v.paused
	act := w.controls.Draw(&w.controlState)
	v.applyControls(ctx, act)

	if w.hovering {
		w.probe.Draw(ui.ProbeData{
			CellX:    w.hoverX,
			CellY:    w.hoverY,
			Snapshot: v.snap,
			Color:    v.hoverColor(),
		})
	}

	w.hud.DrawControls(int32(w.screenHeight), controlsHelp)

	rl.EndDrawing()
}

// applyControls pushes panel edits into the viewer.
func (v *Viewer) applyControls(ctx context.Context, act ui.ControlsAction) {
	s := &v.win.controlState
	v.paused = s.Paused

	if act.Changed {
		want := shader.ModeContinuous
		if s.Snapped {
			want = shader.ModeSnapped
		}
		if err := v.SetMode(want); err != nil {
			slog.Warn("mode change rejected", "error", err)
			s.Snapped = v.mode == shader.ModeSnapped
		}
		if err := v.SetCellSize(s.CellSize); err != nil {
			slog.Warn("cell size rejected", "error", err)
			s.CellSize = v.grid.CellSize
		}
	}
	if act.Regenerate {
		v.pulse.Angle = float64(s.PulseAngle)
		v.Regenerate()
	}
	if act.SavePNG {
		if _, err := v.SaveFrame(""); err != nil {
			slog.Error("failed to save frame", "error", err)
		}
	}
	if act.Compare {
		if _, err := v.Compare(ctx); err != nil {
			slog.Error("comparison failed", "error", err)
		}
	}
}

// hoverColor returns the shaded color of the raster pixel under the cursor.
func (v *Viewer) hoverColor() shader.Color {
	w := v.win
	m := rl.GetMousePosition()
	px := int((m.X - w.preview.X) / w.preview.Width * float32(v.raster.W))
	py := int((m.Y - w.preview.Y) / w.preview.Height * float32(v.raster.H))
	return v.raster.At(px, py)
}

func (w *window) unload() {
	w.texture.Unload()
}
