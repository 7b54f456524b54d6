package main

import (
	"context"
	"math"
	"sync"

	"github.com/pthm-cable/emfield/config"
	"github.com/pthm-cable/emfield/render"
	"github.com/pthm-cable/emfield/scene"
	"github.com/pthm-cable/emfield/shader"
	"github.com/pthm-cable/emfield/telemetry"
)

// ExposureEvaluator renders the scene for a parameter vector and scores how
// far the frame is from the target exposure.
type ExposureEvaluator struct {
	params     *ParamVector
	baseConfig *config.Config
	renderer   *render.Renderer
	raster     *render.Raster

	// TargetPeak is the wanted 90th percentile of each pixel's brightest
	// channel.
	TargetPeak float64
	// SaturationWeight penalizes the fraction of clipped pixels.
	SaturationWeight float64

	mu        sync.Mutex
	lastStats telemetry.FrameStats
}

// NewExposureEvaluator creates an evaluator rendering at width×height.
func NewExposureEvaluator(params *ParamVector, baseCfg *config.Config, r *render.Renderer, width, height int) *ExposureEvaluator {
	return &ExposureEvaluator{
		params:           params,
		baseConfig:       baseCfg,
		renderer:         r,
		raster:           render.NewRaster(width, height),
		TargetPeak:       0.8,
		SaturationWeight: 4,
	}
}

// LastStats returns the frame stats from the most recent evaluation.
func (e *ExposureEvaluator) LastStats() telemetry.FrameStats {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastStats
}

// Evaluate computes the loss for raw parameter values (lower = better).
func (e *ExposureEvaluator) Evaluate(raw []float64) float64 {
	e.mu.Lock()
	defer e.mu.Unlock()

	cfg := *e.baseConfig
	e.params.ApplyToConfig(&cfg, raw)

	snap := scene.Generate(cfg.Scene, cfg.Grid.Width, cfg.Grid.Height)
	grid := shader.Grid{Width: cfg.Grid.Width, Height: cfg.Grid.Height, CellSize: cfg.Derived.CellSize32}
	if err := e.renderer.Render(context.Background(), snap, grid, e.raster, shader.ModeContinuous); err != nil {
		return math.Inf(1)
	}

	stats := telemetry.ComputeFrameStats(e.raster)
	stats.GridW, stats.GridH = grid.Width, grid.Height
	stats.CellSize = cfg.Grid.CellSize
	stats.Mode = shader.ModeContinuous.String()
	e.lastStats = stats

	return exposureLoss(stats, len(e.raster.Pix), e.TargetPeak, e.SaturationWeight)
}

func exposureLoss(s telemetry.FrameStats, pixels int, target, satWeight float64) float64 {
	if pixels == 0 {
		return math.Inf(1)
	}
	d := s.PeakP90 - target
	sat := float64(s.Saturated) / float64(pixels)
	return d*d + satWeight*sat*sat
}
