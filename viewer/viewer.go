// Package viewer ties a field snapshot, the renderer and telemetry together
// into a frame loop that runs either headless or in a raylib window.
package viewer

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/pthm-cable/emfield/config"
	"github.com/pthm-cable/emfield/field"
	"github.com/pthm-cable/emfield/render"
	"github.com/pthm-cable/emfield/scene"
	"github.com/pthm-cable/emfield/shader"
	"github.com/pthm-cable/emfield/telemetry"
)

// Options configures a Viewer beyond the loaded config.
type Options struct {
	InputCSV  string // Snapshot to display instead of the generated scene
	OutputDir string // CSV logs, config copy and saved frames (empty = disabled)
	Scale     int    // Upscale factor for saved PNGs (0 = config window scale)
	LogFrames bool   // Log per-frame stats via slog
}

// Viewer holds the complete viewer state.
type Viewer struct {
	cfg  *config.Config
	opts Options

	snap     *field.Snapshot
	grid     shader.Grid
	pulse    config.PulseConfig
	animated bool // the snapshot came from the scene generator

	backend  render.Backend
	mode     shader.Mode
	renderer *render.Renderer
	raster   *render.Raster

	perfCollector *telemetry.PerfCollector
	outputManager *telemetry.OutputManager
	lastStats     telemetry.FrameStats

	frame  int
	paused bool
	status string

	// Window-only state, nil when headless
	win *window
}

// New builds a viewer from the config: it loads or generates the snapshot,
// resolves the sampling mode from the backend and opens telemetry output.
func New(cfg *config.Config, opts Options) (*Viewer, error) {
	backend, err := render.ParseBackend(cfg.Render.Backend)
	if err != nil {
		return nil, err
	}
	mode, err := render.SelectMode(backend, cfg.Render.Mode)
	if err != nil {
		return nil, err
	}

	v := &Viewer{
		cfg:           cfg,
		opts:          opts,
		pulse:         cfg.Scene.Pulse,
		backend:       backend,
		mode:          mode,
		perfCollector: telemetry.NewPerfCollector(cfg.Telemetry.PerfWindow),
	}
	if v.opts.Scale <= 0 {
		v.opts.Scale = cfg.Screen.WindowScale
	}

	if opts.InputCSV != "" {
		snap, err := scene.LoadCSV(opts.InputCSV)
		if err != nil {
			return nil, err
		}
		v.snap = snap
	} else {
		v.snap = scene.Generate(cfg.Scene, cfg.Grid.Width, cfg.Grid.Height)
		v.animated = true
	}

	w, h := v.snap.Shape()
	v.grid = shader.Grid{Width: w, Height: h, CellSize: cfg.Derived.CellSize32}
	v.raster = render.NewRaster(cfg.Screen.Width, cfg.Screen.Height)

	// Fail before any window or worker exists
	if err := shader.Validate(v.snap, v.grid, v.raster.Viewport()); err != nil {
		return nil, fmt.Errorf("initial frame: %w", err)
	}

	om, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		return nil, err
	}
	if err := om.WriteConfig(cfg); err != nil {
		om.Close()
		return nil, fmt.Errorf("writing config copy: %w", err)
	}
	v.outputManager = om

	v.renderer = render.New(render.OptionsFromConfig(cfg))

	slog.Info("viewer ready",
		"grid_w", w,
		"grid_h", h,
		"cell_size", cfg.Grid.CellSize,
		"view_w", v.raster.W,
		"view_h", v.raster.H,
		"backend", backend.String(),
		"mode", mode.String(),
		"workers", v.renderer.Workers(),
		"input", opts.InputCSV,
	)

	return v, nil
}

// Step advances the animated pulse by dt seconds and renders one frame.
func (v *Viewer) Step(ctx context.Context, dt float32) error {
	v.perfCollector.StartFrame()

	if v.animated && !v.paused && v.pulse.Speed != 0 {
		v.perfCollector.StartPhase(telemetry.PhaseScene)
		v.advancePulse(float64(dt))
		scene.SetPulse(v.snap, v.pulse)
	}

	v.perfCollector.StartPhase(telemetry.PhaseValidate)
	if err := shader.Validate(v.snap, v.grid, v.raster.Viewport()); err != nil {
		v.perfCollector.EndFrame()
		return err
	}

	v.perfCollector.StartPhase(telemetry.PhaseShade)
	if err := v.renderer.Render(ctx, v.snap, v.grid, v.raster, v.mode); err != nil {
		v.perfCollector.EndFrame()
		return err
	}

	v.perfCollector.StartPhase(telemetry.PhaseEncode)
	stats := v.frameStats()

	if v.win != nil {
		v.perfCollector.StartPhase(telemetry.PhaseUpload)
		v.win.texture.Update(v.raster)
	}

	v.perfCollector.EndFrame()
	v.frame++
	v.recordFrame(stats)
	return nil
}

// advancePulse moves the packet along its direction of travel, wrapping at
// the grid edges.
func (v *Viewer) advancePulse(dt float64) {
	d := v.pulse.Speed * dt
	v.pulse.X = wrapUnit(v.pulse.X + d*math.Cos(v.pulse.Angle))
	v.pulse.Y = wrapUnit(v.pulse.Y + d*math.Sin(v.pulse.Angle))
}

func wrapUnit(x float64) float64 {
	return x - math.Floor(x)
}

// frameStats summarizes the current raster with frame metadata.
func (v *Viewer) frameStats() telemetry.FrameStats {
	s := telemetry.ComputeFrameStats(v.raster)
	s.Frame = v.frame + 1
	s.Mode = v.mode.String()
	s.GridW, s.GridH = v.grid.Width, v.grid.Height
	s.CellSize = float64(v.grid.CellSize)
	return s
}

// Frame returns the number of frames rendered so far.
func (v *Viewer) Frame() int { return v.frame }

// Mode returns the active sampling mode.
func (v *Viewer) Mode() shader.Mode { return v.mode }

// Raster returns the most recent frame.
func (v *Viewer) Raster() *render.Raster { return v.raster }

// Snapshot returns the displayed snapshot.
func (v *Viewer) Snapshot() *field.Snapshot { return v.snap }

// Grid returns the current grid geometry.
func (v *Viewer) Grid() shader.Grid { return v.grid }

// LastStats returns the statistics of the most recent frame.
func (v *Viewer) LastStats() telemetry.FrameStats { return v.lastStats }

// Close flushes telemetry and releases workers and GPU resources.
func (v *Viewer) Close() error {
	if v.win != nil {
		v.win.unload()
		v.win = nil
	}
	v.renderer.Close()
	return v.outputManager.Close()
}
