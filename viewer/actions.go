package viewer

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"path/filepath"

	"github.com/pthm-cable/emfield/render"
	"github.com/pthm-cable/emfield/scene"
	"github.com/pthm-cable/emfield/shader"
)

// SetMode switches the sampling variant. Continuous sampling needs a backend
// with fractional field reads.
func (v *Viewer) SetMode(m shader.Mode) error {
	if m == shader.ModeContinuous && !v.backend.SupportsFractionalSampling() {
		return fmt.Errorf("backend %s cannot sample continuously", v.backend)
	}
	if m != shader.ModeContinuous && m != shader.ModeSnapped {
		return fmt.Errorf("unknown sampling mode %d", int(m))
	}
	if m != v.mode {
		slog.Info("sampling mode changed", "from", v.mode.String(), "to", m.String())
		v.mode = m
	}
	return nil
}

// ToggleMode flips between continuous and snapped sampling.
func (v *Viewer) ToggleMode() error {
	if v.mode == shader.ModeSnapped {
		return v.SetMode(shader.ModeContinuous)
	}
	return v.SetMode(shader.ModeSnapped)
}

// SetCellSize changes the physical cell size used for brightness scaling.
func (v *Viewer) SetCellSize(c float32) error {
	if !(c > 0) || math.IsInf(float64(c), 0) {
		return fmt.Errorf("%w: %v", shader.ErrCellSize, c)
	}
	v.grid.CellSize = c
	return nil
}

// SetPaused stops or resumes the pulse animation.
func (v *Viewer) SetPaused(p bool) { v.paused = p }

// Paused reports whether the pulse animation is stopped.
func (v *Viewer) Paused() bool { return v.paused }

// SetPulseAngle re-aims the generated pulse. Loaded snapshots are left as is.
func (v *Viewer) SetPulseAngle(angle float64) {
	v.pulse.Angle = angle
	v.Regenerate()
}

// Regenerate rewrites the pulse at its configured starting position.
func (v *Viewer) Regenerate() {
	if !v.animated {
		v.status = "snapshot loaded from csv"
		return
	}
	v.pulse.X = v.cfg.Scene.Pulse.X
	v.pulse.Y = v.cfg.Scene.Pulse.Y
	scene.SetPulse(v.snap, v.pulse)
	v.status = "pulse reset"
}

// SaveFrame writes the current raster as a PNG, into the output directory
// when one is configured. It returns the file written.
func (v *Viewer) SaveFrame(name string) (string, error) {
	if name == "" {
		name = fmt.Sprintf("frame_%05d.png", v.frame)
	}
	path := name
	if v.outputManager != nil {
		if err := v.outputManager.WriteImage(name, v.raster, v.opts.Scale); err != nil {
			return "", err
		}
		path = filepath.Join(v.outputManager.Dir(), name)
	} else if err := v.raster.SavePNG(path, v.opts.Scale); err != nil {
		return "", err
	}
	slog.Info("frame saved", "path", path, "frame", v.frame, "mode", v.mode.String())
	v.status = "saved " + name
	return path, nil
}

// Compare renders both sampling variants of the current snapshot and logs
// how far apart they are.
func (v *Viewer) Compare(ctx context.Context) (render.Diff, error) {
	d, err := render.Compare(ctx, v.renderer, v.snap, v.grid, v.raster.Viewport())
	if err != nil {
		return d, err
	}
	slog.Info("sampling comparison",
		"frame", v.frame,
		"pixels", d.Pixels,
		"differing", d.Differing,
		"max_abs", d.MaxAbs,
		"mean_abs", d.MeanAbs,
	)
	v.status = fmt.Sprintf("diff %d/%d px, max %.3f", d.Differing, d.Pixels, d.MaxAbs)
	return d, nil
}
