// Package scene builds field snapshots for rendering without a running
// simulator: a procedural demo scene, and CSV import/export of snapshots
// written by other tools.
package scene

import (
	"log/slog"
	"math"

	"github.com/ojrac/opensimplex-go"

	"github.com/pthm-cable/emfield/config"
	"github.com/pthm-cable/emfield/field"
)

// Vacuum material values.
const (
	vacuumPermittivity = 1
	vacuumPermeability = 1
)

// Generate builds a w×h demo snapshot: a Gaussian wave packet travelling
// through vacuum, circular material inclusions, and a simplex-noise
// conductivity texture.
func Generate(cfg config.SceneConfig, w, h int) *field.Snapshot {
	s := field.NewSnapshot(w, h)
	s.Permittivity.Fill(vacuumPermittivity)
	s.Permeability.Fill(vacuumPermeability)

	addConductivityNoise(s.Conductivity, cfg.ConductivityNoise, cfg.Seed)
	for _, d := range cfg.Disks {
		addDisk(s, d)
	}
	SetPulse(s, cfg.Pulse)

	slog.Debug("scene generated",
		"grid_w", w,
		"grid_h", h,
		"disks", len(cfg.Disks),
		"seed", cfg.Seed,
	)
	return s
}

// addDisk stamps a material disk. Cells whose centre lies inside the radius
// take the disk's values.
func addDisk(s *field.Snapshot, d config.DiskConfig) {
	w, h := s.Shape()
	cx := d.X * float64(w)
	cy := d.Y * float64(h)
	r := d.Radius * float64(w)
	r2 := r * r

	x0 := max(0, int(math.Floor(cx-r)))
	x1 := min(w-1, int(math.Ceil(cx+r)))
	y0 := max(0, int(math.Floor(cy-r)))
	y1 := min(h-1, int(math.Ceil(cy+r)))

	for y := y0; y <= y1; y++ {
		dy := float64(y) + 0.5 - cy
		for x := x0; x <= x1; x++ {
			dx := float64(x) + 0.5 - cx
			if dx*dx+dy*dy > r2 {
				continue
			}
			s.Permittivity.Set(x, y, float32(d.Permittivity))
			s.Permeability.Set(x, y, float32(d.Permeability))
			s.Conductivity.Set(x, y, s.Conductivity.At(x, y)+float32(d.Conductivity))
		}
	}
}

// SetPulse replaces the field components with a TMz wave packet: Ez on cell
// centres and the matching Hx, Hy on the staggered half-cell positions, in
// units where the wave impedance is 1. Materials are left untouched.
func SetPulse(s *field.Snapshot, p config.PulseConfig) {
	for _, f := range []*field.Field{s.EX, s.EY, s.EZ, s.HX, s.HY, s.HZ} {
		f.Fill(0)
	}
	if p.Amplitude == 0 || p.Sigma <= 0 {
		return
	}
	w, h := s.Shape()
	cx := p.X * float64(w)
	cy := p.Y * float64(h)
	kx, ky := math.Cos(p.Angle), math.Sin(p.Angle)
	k := 0.0
	if p.Wavelength > 0 {
		k = 2 * math.Pi / p.Wavelength
	}

	ez := func(x, y float64) float64 {
		dx, dy := x-cx, y-cy
		env := math.Exp(-(dx*dx + dy*dy) / (2 * p.Sigma * p.Sigma))
		return p.Amplitude * env * math.Cos(k*(dx*kx+dy*ky))
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			fx, fy := float64(x), float64(y)
			s.EZ.Set(x, y, float32(ez(fx, fy)))

			// H = k̂ × E for E along z
			hz := ez(fx+0.5, fy+0.5)
			s.HX.Set(x, y, float32(ky*hz))
			s.HY.Set(x, y, float32(-kx*hz))
		}
	}
}

// addConductivityNoise adds a sparse fractal simplex texture.
func addConductivityNoise(f *field.Field, n config.NoiseConfig, seed int64) {
	if n.Amplitude == 0 || n.Scale <= 0 {
		return
	}
	octaves := max(1, n.Octaves)
	noise := opensimplex.NewNormalized(seed)

	for y := 0; y < f.H; y++ {
		v := float64(y) / float64(f.W) * n.Scale
		for x := 0; x < f.W; x++ {
			u := float64(x) / float64(f.W) * n.Scale

			sum, amp, freq, norm := 0.0, 0.5, 1.0, 0.0
			for o := 0; o < octaves; o++ {
				sum += amp * noise.Eval2(u*freq, v*freq)
				norm += amp
				freq *= 2
				amp *= 0.5
			}
			// Keep only the upper half so the texture stays sparse
			t := math.Max(0, sum/norm-0.5) * 2
			f.Set(x, y, f.At(x, y)+float32(n.Amplitude*t*t))
		}
	}
}
