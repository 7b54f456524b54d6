package viewer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/pthm-cable/emfield/config"
	"github.com/pthm-cable/emfield/scene"
	"github.com/pthm-cable/emfield/shader"
)

// testConfig returns the defaults shrunk to a quick 16x16 grid on a 32x32
// raster.
func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("loading defaults: %v", err)
	}
	cfg.Screen.Width, cfg.Screen.Height = 32, 32
	cfg.Grid.Width, cfg.Grid.Height = 16, 16
	cfg.Render.Workers = 2
	cfg.Derived.Workers = 2
	cfg.Telemetry.PerfWindow = 2
	return cfg
}

func TestHeadlessRunWritesOutput(t *testing.T) {
	cfg := testConfig(t)
	dir := filepath.Join(t.TempDir(), "out")

	v, err := New(cfg, Options{OutputDir: dir, Scale: 2})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := v.RunHeadless(context.Background(), 3, 0.1, "last.png"); err != nil {
		t.Fatalf("RunHeadless: %v", err)
	}
	if v.Frame() != 3 {
		t.Errorf("expected 3 frames, got %d", v.Frame())
	}

	frames, err := v.outputManager.ReadFrames()
	if err != nil {
		t.Fatalf("ReadFrames: %v", err)
	}
	if len(frames) != 3 {
		t.Fatalf("expected 3 frame records, got %d", len(frames))
	}
	last := frames[2]
	if last.Frame != 3 || last.Mode != "continuous" || last.GridW != 16 || last.ViewW != 32 {
		t.Errorf("unexpected frame record %+v", last)
	}
	if last.MaxG <= 0 {
		t.Error("expected the pulse to light up the green channel")
	}

	if err := v.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	for _, name := range []string{"config.yaml", "frames.csv", "perf.csv", "last.png"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("expected %s: %v", name, err)
		}
	}
}

func TestPulseAdvances(t *testing.T) {
	cfg := testConfig(t)
	cfg.Scene.Pulse.Speed = 0.5
	cfg.Scene.Pulse.Angle = 0

	v, err := New(cfg, Options{})
	if err != nil {
		t.Fatal(err)
	}
	defer v.Close()

	start := v.pulse.X
	if err := v.Step(context.Background(), 0.1); err != nil {
		t.Fatal(err)
	}
	if d := v.pulse.X - start; d < 0.049 || d > 0.051 {
		t.Errorf("expected pulse to move 0.05, moved %v", d)
	}

	v.SetPaused(true)
	x := v.pulse.X
	if err := v.Step(context.Background(), 0.1); err != nil {
		t.Fatal(err)
	}
	if v.pulse.X != x {
		t.Error("expected paused viewer to hold the pulse")
	}

	// Wraps back into [0, 1)
	v.SetPaused(false)
	if err := v.Step(context.Background(), 2); err != nil {
		t.Fatal(err)
	}
	if v.pulse.X < 0 || v.pulse.X >= 1 {
		t.Errorf("pulse x %v outside [0,1)", v.pulse.X)
	}

	v.Regenerate()
	if v.pulse.X != cfg.Scene.Pulse.X {
		t.Errorf("expected Regenerate to restore x=%v, got %v", cfg.Scene.Pulse.X, v.pulse.X)
	}
}

func TestModeSwitching(t *testing.T) {
	cfg := testConfig(t)
	v, err := New(cfg, Options{})
	if err != nil {
		t.Fatal(err)
	}
	defer v.Close()

	if v.Mode() != shader.ModeContinuous {
		t.Fatalf("scalar backend should start continuous, got %v", v.Mode())
	}
	if err := v.ToggleMode(); err != nil || v.Mode() != shader.ModeSnapped {
		t.Fatalf("ToggleMode: %v, mode %v", err, v.Mode())
	}

	cfg = testConfig(t)
	cfg.Render.Backend = "indexed"
	iv, err := New(cfg, Options{})
	if err != nil {
		t.Fatal(err)
	}
	defer iv.Close()

	if iv.Mode() != shader.ModeSnapped {
		t.Fatalf("indexed backend should start snapped, got %v", iv.Mode())
	}
	if err := iv.SetMode(shader.ModeContinuous); err == nil {
		t.Error("expected indexed backend to reject continuous sampling")
	}
	if iv.Mode() != shader.ModeSnapped {
		t.Error("rejected mode change must keep the current mode")
	}

	cfg = testConfig(t)
	cfg.Render.Backend = "indexed"
	cfg.Render.Mode = "continuous"
	if _, err := New(cfg, Options{}); err == nil {
		t.Error("expected New to reject continuous mode on indexed backend")
	}
}

func TestSetCellSize(t *testing.T) {
	v, err := New(testConfig(t), Options{})
	if err != nil {
		t.Fatal(err)
	}
	defer v.Close()

	if err := v.Step(context.Background(), 0); err != nil {
		t.Fatal(err)
	}
	bright := v.LastStats().MaxG

	if err := v.SetCellSize(0.04); err != nil {
		t.Fatalf("SetCellSize: %v", err)
	}
	if err := v.Step(context.Background(), 0); err != nil {
		t.Fatal(err)
	}
	// Energy scales with (0.02/cell)^2
	if dim := v.LastStats().MaxG; dim >= bright {
		t.Errorf("expected larger cells to dim the frame: %v -> %v", bright, dim)
	}

	for _, bad := range []float32{0, -1} {
		if err := v.SetCellSize(bad); !errors.Is(err, shader.ErrCellSize) {
			t.Errorf("SetCellSize(%v): expected ErrCellSize, got %v", bad, err)
		}
	}
	if v.Grid().CellSize != 0.04 {
		t.Errorf("rejected cell size must not apply, got %v", v.Grid().CellSize)
	}
}

func TestLoadSnapshotCSV(t *testing.T) {
	cfg := testConfig(t)
	snap := scene.Generate(cfg.Scene, 12, 10)
	path := filepath.Join(t.TempDir(), "snap.csv")
	if err := scene.SaveCSV(path, snap); err != nil {
		t.Fatal(err)
	}

	v, err := New(cfg, Options{InputCSV: path})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer v.Close()

	if g := v.Grid(); g.Width != 12 || g.Height != 10 {
		t.Errorf("grid should follow the snapshot, got %dx%d", g.Width, g.Height)
	}

	before := v.Snapshot().EZ.At(3, 5)
	if err := v.Step(context.Background(), 1); err != nil {
		t.Fatal(err)
	}
	v.Regenerate()
	if after := v.Snapshot().EZ.At(3, 5); after != before {
		t.Errorf("loaded snapshot must not be animated: %v -> %v", before, after)
	}

	d, err := v.Compare(context.Background())
	if err != nil {
		t.Fatalf("Compare: %v", err)
	}
	if d.Pixels != 32*32 {
		t.Errorf("expected %d compared pixels, got %d", 32*32, d.Pixels)
	}

	if _, err := New(cfg, Options{InputCSV: filepath.Join(t.TempDir(), "missing.csv")}); err == nil {
		t.Error("expected error for missing snapshot")
	}
}

func TestSaveFrameWithoutOutputDir(t *testing.T) {
	v, err := New(testConfig(t), Options{Scale: 1})
	if err != nil {
		t.Fatal(err)
	}
	defer v.Close()

	if err := v.Step(context.Background(), 0); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "direct.png")
	got, err := v.SaveFrame(path)
	if err != nil {
		t.Fatalf("SaveFrame: %v", err)
	}
	if got != path {
		t.Errorf("SaveFrame returned %q, want %q", got, path)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected png at %s: %v", path, err)
	}
}
