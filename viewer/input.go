package viewer

import (
	"context"
	"log/slog"
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/emfield/shader"
)

// handleInput processes keyboard and mouse input.
func (v *Viewer) handleInput() {
	w := v.win

	// Window resize propagation
	if rl.IsWindowResized() {
		v.layout(float32(rl.GetScreenWidth()), float32(rl.GetScreenHeight()))
	}

	// Fullscreen toggle
	if rl.IsKeyPressed(rl.KeyF11) {
		rl.ToggleFullscreen()
	}

	if rl.IsKeyPressed(rl.KeySpace) {
		v.paused = !v.paused
	}

	if rl.IsKeyPressed(rl.KeyM) {
		if err := v.ToggleMode(); err != nil {
			slog.Warn("mode change rejected", "error", err)
			v.status = err.Error()
		}
		w.controlState.Snapped = v.mode == shader.ModeSnapped
	}

	if rl.IsKeyPressed(rl.KeyR) {
		v.Regenerate()
	}

	if rl.IsKeyPressed(rl.KeyP) {
		if _, err := v.SaveFrame(""); err != nil {
			slog.Error("failed to save frame", "error", err)
		}
	}

	if rl.IsKeyPressed(rl.KeyC) {
		if _, err := v.Compare(context.Background()); err != nil {
			slog.Error("comparison failed", "error", err)
		}
	}

	if rl.IsKeyPressed(rl.KeyTab) {
		w.controls.Toggle()
	}

	v.updateHover()
}

// updateHover finds the grid cell under the cursor, using the same sample
// coordinate the shader reads for that pixel.
func (v *Viewer) updateHover() {
	w := v.win
	w.hovering = false

	m := rl.GetMousePosition()
	if !rl.CheckCollisionPointRec(m, w.preview) {
		return
	}
	px := int((m.X - w.preview.X) / w.preview.Width * float32(v.raster.W))
	py := int((m.Y - w.preview.Y) / w.preview.Height * float32(v.raster.H))

	frame, err := shader.NewFrame(v.mode, v.snap, v.grid, v.raster.Viewport())
	if err != nil {
		return
	}
	gx, gy := frame.SampleCoord(px, py)
	cx, cy := int(math.Floor(float64(gx))), int(math.Floor(float64(gy)))
	if cx < 0 || cy < 0 || cx >= v.grid.Width || cy >= v.grid.Height {
		return
	}
	w.hoverX, w.hoverY = cx, cy
	w.hovering = true
}
