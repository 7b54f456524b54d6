package render

import (
	"context"
	"math"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"

	"github.com/pthm-cable/emfield/field"
	"github.com/pthm-cable/emfield/shader"
)

// Diff summarizes how far the snapped variant strays from the continuous one.
type Diff struct {
	Pixels    int
	Differing int     // pixels where any channel differs
	MaxAbs    float64 // largest absolute channel difference
	MeanAbs   float64 // mean absolute channel difference over all channels
}

// Compare renders snap with both shading modes concurrently and reports
// their difference. Both frames use the same raster size vp.
func Compare(ctx context.Context, r *Renderer, snap *field.Snapshot, grid shader.Grid, vp shader.Viewport) (Diff, error) {
	cont := NewRaster(vp.Width, vp.Height)
	snapped := NewRaster(vp.Width, vp.Height)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return r.Render(gctx, snap, grid, cont, shader.ModeContinuous)
	})
	g.Go(func() error {
		return r.Render(gctx, snap, grid, snapped, shader.ModeSnapped)
	})
	if err := g.Wait(); err != nil {
		return Diff{}, err
	}

	return DiffRasters(cont, snapped), nil
}

// DiffRasters compares two rasters of equal size channel by channel.
func DiffRasters(a, b *Raster) Diff {
	n := min(len(a.Pix), len(b.Pix))
	if n == 0 {
		return Diff{}
	}
	av := make([]float64, 0, n*3)
	bv := make([]float64, 0, n*3)
	differing := 0
	for i := 0; i < n; i++ {
		ca, cb := a.Pix[i], b.Pix[i]
		if ca != cb {
			differing++
		}
		av = append(av, float64(ca.R), float64(ca.G), float64(ca.B))
		bv = append(bv, float64(cb.R), float64(cb.G), float64(cb.B))
	}
	return Diff{
		Pixels:    n,
		Differing: differing,
		MaxAbs:    floats.Distance(av, bv, math.Inf(1)),
		MeanAbs:   floats.Distance(av, bv, 1) / float64(len(av)),
	}
}

// AbsDiff returns a raster of per-channel absolute differences, for viewing
// where two frames disagree.
func AbsDiff(a, b *Raster) *Raster {
	w, h := min(a.W, b.W), min(a.H, b.H)
	out := NewRaster(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			ca, cb := a.At(x, y), b.At(x, y)
			out.Pix[y*w+x] = shader.Color{
				R: abs32(ca.R - cb.R),
				G: abs32(ca.G - cb.G),
				B: abs32(ca.B - cb.B),
			}
		}
	}
	return out
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
