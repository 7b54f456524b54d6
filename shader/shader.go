// Package shader computes the color of one output pixel from an
// electromagnetic field snapshot.
//
// The pipeline maps the pixel to grid space, accumulates electric and
// magnetic energy, maps permittivity and permeability through a logistic
// curve, overlays an interleaved circle tiling that marks material regions,
// and composites the result over a conductivity background. Every pixel is
// independent; a Frame holds only read-only per-frame constants and is safe
// for concurrent use.
package shader

import (
	"math"

	"github.com/pthm-cable/emfield/field"
)

const (
	// brightnessRef is the cell size at which energy is shown unscaled.
	brightnessRef = 0.02

	// materialThreshold is the mapped material value above which tile
	// circles are drawn filled instead of as a dark halo.
	materialThreshold = 0.1

	materialGain      = 0.8
	logisticSteepness = 0.5
	conductivityScale = 2000
)

var sqrtTwoPi = float32(math.Sqrt(2 * math.Pi))

// Color is one pixel's channel intensities. Channels are clamped above at 1
// but not below: strongly negative material terms can drive a channel under 0.
type Color struct {
	R, G, B float32
}

// Grid describes the simulation grid geometry.
type Grid struct {
	Width, Height int
	CellSize      float32
}

// Viewport is the output raster size in pixels.
type Viewport struct {
	Width, Height int
}

// Frame holds the per-frame constants of one render pass.
type Frame struct {
	mode Mode
	snap *field.Snapshot

	gx, gy float32
	vw, vh float32

	brightness2  float32
	tileX, tileY float32
}

// NewFrame validates the inputs and precomputes the per-frame constants.
func NewFrame(mode Mode, snap *field.Snapshot, grid Grid, vp Viewport) (*Frame, error) {
	if err := Validate(snap, grid, vp); err != nil {
		return nil, err
	}
	if err := mode.validate(); err != nil {
		return nil, err
	}
	b := Brightness(grid.CellSize)
	return &Frame{
		mode:        mode,
		snap:        snap,
		gx:          float32(grid.Width),
		gy:          float32(grid.Height),
		vw:          float32(vp.Width),
		vh:          float32(vp.Height),
		brightness2: b * b,
		tileX:       TileFactor(grid.Width, vp.Width),
		tileY:       TileFactor(grid.Height, vp.Height),
	}, nil
}

// Mode returns the coordinate resolution mode of the frame.
func (f *Frame) Mode() Mode { return f.mode }

// ShadePixel validates the inputs and shades a single pixel.
// Renderers shading many pixels should build one Frame and reuse it.
func ShadePixel(mode Mode, snap *field.Snapshot, grid Grid, vp Viewport, px, py int) (Color, error) {
	f, err := NewFrame(mode, snap, grid, vp)
	if err != nil {
		return Color{}, err
	}
	return f.Shade(px, py), nil
}

// gridCoord maps an output pixel to unrounded grid space.
// Raster row 0 is the top of the image; grid row 0 is the bottom.
func (f *Frame) gridCoord(px, py int) (float32, float32) {
	x := f.gx * float32(px) / f.vw
	y := f.gy * (1 - float32(py)/f.vh)
	return x, y
}

// SampleCoord returns the grid coordinate at which the electric and material
// fields are sampled for a pixel.
func (f *Frame) SampleCoord(px, py int) (float32, float32) {
	x, y := f.gridCoord(px, py)
	if f.mode == ModeSnapped {
		return round(x), round(y)
	}
	return x, y
}

// Shade computes the color of output pixel (px, py).
func (f *Frame) Shade(px, py int) Color {
	s := f.snap

	x, y := f.gridCoord(px, py)
	sx, sy := x, y
	// Magnetic samples sit half a cell off the electric ones.
	hx, hy := x-0.5, y-0.5
	if f.mode == ModeSnapped {
		sx, sy = round(x), round(y)
		hx, hy = sx, sy
	}

	ex := s.EX.Sample(sx, sy)
	ey := s.EY.Sample(sx, sy)
	ez := s.EZ.Sample(sx, sy)
	eEnergy := f.brightness2 * (ex*ex + ey*ey + ez*ez)

	mx := s.HX.Sample(hx, hy)
	my := s.HY.Sample(hx, hy)
	mz := s.HZ.Sample(hx, hy)
	mEnergy := f.brightness2 * (mx*mx + my*my + mz*mz)

	eps := MapMaterial(s.Permittivity.Sample(sx, sy))
	mu := MapMaterial(s.Permeability.Sample(sx, sy))

	// Tiles always use the unrounded coordinate so snapped frames do not band.
	tx := f.tileX * x
	ty := f.tileY * y
	bgEps := circle(tx, ty, eps)
	bgMu := circle(tx+0.5, ty+0.5, mu)

	background := s.Conductivity.Sample(sx, sy) / conductivityScale

	return Color{
		R: min(1, background+eEnergy+materialGain*bgEps*eps),
		G: min(1, background+eEnergy+mEnergy),
		B: min(1, background+mEnergy+materialGain*bgMu*mu),
	}
}

// circle returns the tile mask term at tile coordinate (tx, ty): a filled
// disc where the material is present, a faint dark halo elsewhere.
func circle(tx, ty, material float32) float32 {
	dx := fract(tx) - 0.5
	dy := fract(ty) - 0.5
	dist := (dx*dx + dy*dy) * sqrtTwoPi
	bg := -Smooth(dist)
	if material >= materialThreshold {
		return 1 + bg
	}
	return bg
}

// Smooth is the cubic Hermite step: 0 below 0, 1 above 1, 3t²−2t³ between.
func Smooth(t float32) float32 {
	if t <= 0 {
		return 0
	}
	if t >= 1 {
		return 1
	}
	return t * t * (3 - 2*t)
}

// MapMaterial maps a raw material value onto (−1, 1) with a logistic curve
// centred on 1, so vacuum maps to 0.
func MapMaterial(v float32) float32 {
	return 2/(1+float32(math.Exp(float64(-logisticSteepness*(v-1))))) - 1
}

// Brightness is the energy display scale for a cell size. Finer grids spread
// the same energy over more cells and are brightened to compensate.
func Brightness(cellSize float32) float32 {
	return brightnessRef * brightnessRef / (cellSize * cellSize)
}

// TileFactor scales grid coordinates so roughly one circle is drawn per two
// grid cells of output, never more than one tile per pixel block.
func TileFactor(cells, pixels int) float32 {
	r := round(2 * float32(cells) / float32(pixels))
	if r <= 0 {
		return 1
	}
	return min(1, 1/r)
}

func round(x float32) float32 {
	return float32(math.Round(float64(x)))
}

func fract(x float32) float32 {
	return x - float32(math.Floor(float64(x)))
}
