package main

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/emfield/config"
	"github.com/pthm-cable/emfield/render"
	"github.com/pthm-cable/emfield/telemetry"
)

func testSetup(t *testing.T) (*config.Config, *render.Renderer) {
	t.Helper()
	cfg, err := config.Load("")
	if err != nil {
		t.Fatal(err)
	}
	cfg.Grid.Width, cfg.Grid.Height = 32, 32
	cfg.Render.Workers = 2
	cfg.Derived.Workers = 2
	r := render.New(render.OptionsFromConfig(cfg))
	t.Cleanup(r.Close)
	return cfg, r
}

func TestParamVectorRoundTrip(t *testing.T) {
	cfg, _ := testSetup(t)
	pv := NewParamVector(cfg)

	raw := []float64{0.02, 250}
	back := pv.Denormalize(pv.Normalize(raw))
	for i := range raw {
		if math.Abs(back[i]-raw[i]) > 1e-9 {
			t.Errorf("param %s: got %v, want %v", pv.Specs[i].Name, back[i], raw[i])
		}
	}

	clamped := pv.Clamp([]float64{10, -5})
	if clamped[0] != pv.Specs[0].Max || clamped[1] != pv.Specs[1].Min {
		t.Errorf("Clamp = %v", clamped)
	}

	pv.ApplyToConfig(cfg, []float64{0.05, 10})
	if cfg.Grid.CellSize != 0.05 || cfg.Derived.CellSize32 != float32(0.05) {
		t.Errorf("cell size not applied: %v / %v", cfg.Grid.CellSize, cfg.Derived.CellSize32)
	}
	if cfg.Scene.ConductivityNoise.Amplitude != 10 {
		t.Errorf("amplitude = %v", cfg.Scene.ConductivityNoise.Amplitude)
	}
}

func TestSmallCellsSaturate(t *testing.T) {
	cfg, r := testSetup(t)
	pv := NewParamVector(cfg)
	e := NewExposureEvaluator(pv, cfg, r, 48, 48)

	e.Evaluate([]float64{0.002, 0})
	brightSat := e.LastStats().Saturated
	e.Evaluate([]float64{0.02, 0})
	dimSat := e.LastStats().Saturated

	if brightSat <= dimSat {
		t.Errorf("saturated pixels: cell 0.002 = %d, cell 0.02 = %d", brightSat, dimSat)
	}
	if got := e.LastStats().CellSize; got != 0.02 {
		t.Errorf("LastStats cell size = %v", got)
	}
}

func TestExposureLoss(t *testing.T) {
	tests := []struct {
		name   string
		p90    float64
		sat    int
		pixels int
		want   float64
	}{
		{"on target", 0.8, 0, 100, 0},
		{"under exposed", 0.3, 0, 100, 0.25},
		{"half saturated", 0.8, 50, 100, 1},
		{"empty", 0.8, 0, 0, math.Inf(1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := telemetry.FrameStats{PeakP90: tt.p90, Saturated: tt.sat}
			got := exposureLoss(s, tt.pixels, 0.8, 4)
			if math.Abs(got-tt.want) > 1e-9 && !(math.IsInf(got, 1) && math.IsInf(tt.want, 1)) {
				t.Errorf("exposureLoss = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCalibrateLogsEvaluations(t *testing.T) {
	cfg, r := testSetup(t)
	pv := NewParamVector(cfg)
	e := NewExposureEvaluator(pv, cfg, r, 24, 24)

	path := filepath.Join(t.TempDir(), "log.csv")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	res, _ := calibrate(e, pv, 8, 4, f)
	f.Close()

	if res.Evals == 0 {
		t.Fatal("no evaluations ran")
	}
	if len(res.Best) != pv.Dim() {
		t.Fatalf("best has %d params, want %d", len(res.Best), pv.Dim())
	}
	if res.BestLoss < 0 || math.IsInf(res.BestLoss, 0) {
		t.Errorf("best loss = %v", res.BestLoss)
	}

	var recs []EvalRecord
	if err := gocsv.UnmarshalFile(mustOpen(t, path), &recs); err != nil {
		t.Fatalf("reading log: %v", err)
	}
	if len(recs) != res.Evals {
		t.Errorf("logged %d rows, ran %d evaluations", len(recs), res.Evals)
	}
}

func mustOpen(t *testing.T, path string) *os.File {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { f.Close() })
	return f
}
