package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/emfield/render"
)

// FrameStats summarizes one rendered frame.
type FrameStats struct {
	Frame    int     `csv:"frame"`
	Mode     string  `csv:"mode"`
	GridW    int     `csv:"grid_w"`
	GridH    int     `csv:"grid_h"`
	ViewW    int     `csv:"view_w"`
	ViewH    int     `csv:"view_h"`
	CellSize float64 `csv:"cell_size"`

	// Per-channel distribution over all pixels
	MeanR float64 `csv:"mean_r"`
	MeanG float64 `csv:"mean_g"`
	MeanB float64 `csv:"mean_b"`
	StdR  float64 `csv:"std_r"`
	StdG  float64 `csv:"std_g"`
	StdB  float64 `csv:"std_b"`
	MaxR  float64 `csv:"max_r"`
	MaxG  float64 `csv:"max_g"`
	MaxB  float64 `csv:"max_b"`

	// Per-pixel peak channel percentiles
	PeakP10 float64 `csv:"peak_p10"`
	PeakP50 float64 `csv:"peak_p50"`
	PeakP90 float64 `csv:"peak_p90"`

	// Pixels with a channel below 0 (shaded values are only clamped above)
	Negative int `csv:"negative"`
	// Pixels with a channel at the upper clamp
	Saturated int `csv:"saturated"`
}

// Percentile calculates the p-th percentile of a sorted slice.
// p should be in [0, 1]. Returns 0 if slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}

	// Linear interpolation
	idx := p * float64(n-1)
	lo := int(idx)
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}

	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// ComputeFrameStats gathers channel statistics for a raster. The caller fills
// in the frame metadata.
func ComputeFrameStats(r *render.Raster) FrameStats {
	var s FrameStats
	s.ViewW, s.ViewH = r.W, r.H
	n := len(r.Pix)
	if n == 0 {
		return s
	}

	rs := make([]float64, n)
	gs := make([]float64, n)
	bs := make([]float64, n)
	peak := make([]float64, n)
	for i, c := range r.Pix {
		rs[i], gs[i], bs[i] = float64(c.R), float64(c.G), float64(c.B)
		peak[i] = max(rs[i], gs[i], bs[i])
		if c.R < 0 || c.G < 0 || c.B < 0 {
			s.Negative++
		}
		if c.R >= 1 || c.G >= 1 || c.B >= 1 {
			s.Saturated++
		}
	}

	s.MeanR, s.StdR = stat.PopMeanStdDev(rs, nil)
	s.MeanG, s.StdG = stat.PopMeanStdDev(gs, nil)
	s.MeanB, s.StdB = stat.PopMeanStdDev(bs, nil)
	s.MaxR = floats.Max(rs)
	s.MaxG = floats.Max(gs)
	s.MaxB = floats.Max(bs)

	sort.Float64s(peak)
	s.PeakP10 = Percentile(peak, 0.10)
	s.PeakP50 = Percentile(peak, 0.50)
	s.PeakP90 = Percentile(peak, 0.90)

	return s
}

// LogValue implements slog.LogValuer for structured logging.
func (s FrameStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("frame", s.Frame),
		slog.String("mode", s.Mode),
		slog.Int("grid_w", s.GridW),
		slog.Int("grid_h", s.GridH),
		slog.Int("view_w", s.ViewW),
		slog.Int("view_h", s.ViewH),
		slog.Float64("cell_size", s.CellSize),
		slog.Float64("mean_r", s.MeanR),
		slog.Float64("mean_g", s.MeanG),
		slog.Float64("mean_b", s.MeanB),
		slog.Float64("max_r", s.MaxR),
		slog.Float64("max_g", s.MaxG),
		slog.Float64("max_b", s.MaxB),
		slog.Float64("peak_p50", s.PeakP50),
		slog.Float64("peak_p90", s.PeakP90),
		slog.Int("negative", s.Negative),
		slog.Int("saturated", s.Saturated),
	)
}
