package render

import (
	"context"
	"errors"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/pthm-cable/emfield/field"
	"github.com/pthm-cable/emfield/shader"
)

// patternSnapshot fills every component with a deterministic, position
// dependent pattern.
func patternSnapshot(w, h int) *field.Snapshot {
	s := field.NewSnapshot(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			s.EX.Set(x, y, float32((x*7+y*3)%11)*0.03)
			s.EY.Set(x, y, float32((x+y)%5)*0.02)
			s.HZ.Set(x, y, float32((x*y)%13)*0.025)
			s.Permittivity.Set(x, y, float32(1+(x/4+y/4)%3*9))
			s.Permeability.Set(x, y, float32(1+(x/5)%2*6))
			s.Conductivity.Set(x, y, float32((x+2*y)%17)*15)
		}
	}
	return s
}

func TestRenderMatchesShade(t *testing.T) {
	const gw, gh = 24, 16
	s := patternSnapshot(gw, gh)
	grid := shader.Grid{Width: gw, Height: gh, CellSize: 0.02}

	cases := []struct {
		name string
		opts Options
	}{
		{"serial", Options{Workers: 4, ParallelThreshold: 1000}},
		{"parallel even split", Options{Workers: 4}},
		{"parallel small chunks", Options{Workers: 3, ChunkRows: 5}},
	}

	for _, c := range cases {
		r := New(c.opts)
		for _, mode := range []shader.Mode{shader.ModeContinuous, shader.ModeSnapped} {
			dst := NewRaster(37, 29)
			if err := r.Render(context.Background(), s, grid, dst, mode); err != nil {
				t.Fatalf("%s/%v: Render: %v", c.name, mode, err)
			}

			frame, err := shader.NewFrame(mode, s, grid, dst.Viewport())
			if err != nil {
				t.Fatal(err)
			}
			for py := 0; py < dst.H; py++ {
				for px := 0; px < dst.W; px++ {
					if got, want := dst.At(px, py), frame.Shade(px, py); got != want {
						t.Fatalf("%s/%v: pixel (%d,%d) = %+v, want %+v", c.name, mode, px, py, got, want)
					}
				}
			}
		}
		r.Close()
	}
}

func TestRenderValidatesBeforeWriting(t *testing.T) {
	s := patternSnapshot(8, 8)
	r := New(Options{Workers: 2})
	defer r.Close()

	sentinel := shader.Color{R: 0.25, G: 0.5, B: 0.75}
	dst := NewRaster(8, 8)
	for i := range dst.Pix {
		dst.Pix[i] = sentinel
	}

	err := r.Render(context.Background(), s, shader.Grid{Width: 8, Height: 8, CellSize: 0}, dst, shader.ModeContinuous)
	if !errors.Is(err, shader.ErrCellSize) {
		t.Fatalf("expected ErrCellSize, got %v", err)
	}

	err = r.Render(context.Background(), s, shader.Grid{Width: 9, Height: 8, CellSize: 0.02}, dst, shader.ModeSnapped)
	if !errors.Is(err, shader.ErrFieldShape) {
		t.Fatalf("expected ErrFieldShape, got %v", err)
	}

	for i, c := range dst.Pix {
		if c != sentinel {
			t.Fatalf("pixel %d written despite invalid input: %+v", i, c)
		}
	}

	empty := NewRaster(0, 4)
	err = r.Render(context.Background(), s, shader.Grid{Width: 8, Height: 8, CellSize: 0.02}, empty, shader.ModeSnapped)
	if !errors.Is(err, shader.ErrViewport) {
		t.Fatalf("expected ErrViewport for empty raster, got %v", err)
	}
}

func TestRenderCancelled(t *testing.T) {
	s := patternSnapshot(8, 8)
	grid := shader.Grid{Width: 8, Height: 8, CellSize: 0.02}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for _, opts := range []Options{{Workers: 1}, {Workers: 4, ChunkRows: 2}} {
		r := New(opts)
		err := r.Render(ctx, s, grid, NewRaster(64, 64), shader.ModeContinuous)
		if !errors.Is(err, context.Canceled) {
			t.Errorf("workers=%d: expected context.Canceled, got %v", opts.Workers, err)
		}
		r.Close()
	}
}

func TestRenderConcurrentFrames(t *testing.T) {
	s := patternSnapshot(16, 16)
	grid := shader.Grid{Width: 16, Height: 16, CellSize: 0.02}
	r := New(Options{Workers: 3, ChunkRows: 4})
	defer r.Close()

	ref := NewRaster(40, 40)
	if err := r.Render(context.Background(), s, grid, ref, shader.ModeContinuous); err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	results := make([]*Raster, 6)
	errs := make([]error, 6)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = NewRaster(40, 40)
			errs[i] = r.Render(context.Background(), s, grid, results[i], shader.ModeContinuous)
		}(i)
	}
	wg.Wait()

	for i, res := range results {
		if errs[i] != nil {
			t.Fatalf("frame %d: %v", i, errs[i])
		}
		for j := range ref.Pix {
			if res.Pix[j] != ref.Pix[j] {
				t.Fatalf("frame %d pixel %d differs from reference", i, j)
			}
		}
	}
}

func TestRenderAfterClose(t *testing.T) {
	s := patternSnapshot(8, 8)
	grid := shader.Grid{Width: 8, Height: 8, CellSize: 0.02}
	r := New(Options{Workers: 2})

	if err := r.Render(context.Background(), s, grid, NewRaster(8, 8), shader.ModeSnapped); err != nil {
		t.Fatal(err)
	}
	r.Close()
	r.Close() // idempotent

	if err := r.Render(context.Background(), s, grid, NewRaster(8, 8), shader.ModeSnapped); err != nil {
		t.Fatalf("render after Close: %v", err)
	}
	r.Close()
}

func TestSelectMode(t *testing.T) {
	cases := []struct {
		backend  Backend
		override string
		want     shader.Mode
		wantErr  bool
	}{
		{BackendScalar, "", shader.ModeContinuous, false},
		{BackendScalar, "auto", shader.ModeContinuous, false},
		{BackendIndexed, "auto", shader.ModeSnapped, false},
		{BackendScalar, "snapped", shader.ModeSnapped, false},
		{BackendIndexed, "snapped", shader.ModeSnapped, false},
		{BackendIndexed, "continuous", 0, true},
		{BackendScalar, "nearest", 0, true},
	}
	for _, c := range cases {
		got, err := SelectMode(c.backend, c.override)
		if c.wantErr {
			if err == nil {
				t.Errorf("SelectMode(%v, %q): expected error", c.backend, c.override)
			}
			continue
		}
		if err != nil || got != c.want {
			t.Errorf("SelectMode(%v, %q) = %v, %v; want %v", c.backend, c.override, got, err, c.want)
		}
	}

	if b, err := ParseBackend("Indexed"); err != nil || b != BackendIndexed {
		t.Errorf("ParseBackend(Indexed) = %v, %v", b, err)
	}
	if _, err := ParseBackend("opencl"); err == nil {
		t.Error("expected error for unknown backend")
	}
}

func TestRasterToImage(t *testing.T) {
	r := NewRaster(3, 1)
	r.Pix[0] = shader.Color{R: -0.5, G: 0, B: 1}
	r.Pix[1] = shader.Color{R: 0.5, G: 1, B: 0.2}
	r.Pix[2] = shader.Color{R: 1, G: 1, B: 1}

	img := r.ToImage()
	c0 := img.RGBAAt(0, 0)
	if c0.R != 0 || c0.G != 0 || c0.B != 255 || c0.A != 255 {
		t.Errorf("pixel 0 = %+v, want {0 0 255 255}", c0)
	}
	c1 := img.RGBAAt(1, 0)
	if c1.R != 128 || c1.G != 255 || c1.B != 51 {
		t.Errorf("pixel 1 = %+v, want {128 255 51}", c1)
	}
	if got := r.RGBA(2, 0); got.R != 255 || got.G != 255 || got.B != 255 {
		t.Errorf("RGBA(2,0) = %+v, want white", got)
	}
	if got := r.At(5, 5); got != (shader.Color{}) {
		t.Errorf("At outside raster = %+v, want black", got)
	}
}

func TestSavePNGUpscaled(t *testing.T) {
	r := NewRaster(4, 3)
	r.Pix[0] = shader.Color{R: 1}

	path := filepath.Join(t.TempDir(), "frame.png")
	if err := r.SavePNG(path, 3); err != nil {
		t.Fatalf("SavePNG: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decoding png: %v", err)
	}

	b := img.Bounds()
	if b.Dx() != 12 || b.Dy() != 9 {
		t.Fatalf("expected 12x9 image, got %dx%d", b.Dx(), b.Dy())
	}
	// The red source pixel covers a 3x3 block
	for y := 0; y < 3; y++ {
		for x := 0; x < 3; x++ {
			rr, gg, bb, _ := img.At(x, y).RGBA()
			if rr>>8 != 255 || gg != 0 || bb != 0 {
				t.Errorf("pixel (%d,%d) not red", x, y)
			}
		}
	}
	if rr, _, _, _ := img.At(3, 0).RGBA(); rr != 0 {
		t.Error("expected pixel (3,0) to be black")
	}
}

func TestCompare(t *testing.T) {
	r := New(Options{Workers: 2})
	defer r.Close()

	// Without a magnetic field both variants agree exactly at native resolution.
	s := patternSnapshot(16, 16)
	s.HZ.Fill(0)
	grid := shader.Grid{Width: 16, Height: 16, CellSize: 0.02}

	d, err := Compare(context.Background(), r, s, grid, shader.Viewport{Width: 16, Height: 16})
	if err != nil {
		t.Fatalf("Compare: %v", err)
	}
	if d.Pixels != 256 || d.Differing != 0 || d.MaxAbs != 0 {
		t.Errorf("native resolution diff = %+v, want identical", d)
	}

	// Off-grid resolutions make snapping visible.
	s = patternSnapshot(16, 16)
	d, err = Compare(context.Background(), r, s, grid, shader.Viewport{Width: 40, Height: 40})
	if err != nil {
		t.Fatalf("Compare: %v", err)
	}
	if d.Differing == 0 || d.MaxAbs <= 0 || d.MeanAbs <= 0 || d.MeanAbs > d.MaxAbs {
		t.Errorf("expected visible difference, got %+v", d)
	}

	if _, err := Compare(context.Background(), r, s, shader.Grid{Width: 16, Height: 16}, shader.Viewport{Width: 4, Height: 4}); !errors.Is(err, shader.ErrCellSize) {
		t.Errorf("expected ErrCellSize, got %v", err)
	}
}

func TestAbsDiff(t *testing.T) {
	a := NewRaster(2, 1)
	b := NewRaster(3, 1)
	a.Pix[0] = shader.Color{R: 0.25, G: -0.5, B: 1}
	b.Pix[0] = shader.Color{R: 0.75, G: 0.5, B: 1}

	d := AbsDiff(a, b)
	if d.W != 2 || d.H != 1 {
		t.Fatalf("expected 2x1 diff, got %dx%d", d.W, d.H)
	}
	if got := d.At(0, 0); got != (shader.Color{R: 0.5, G: 1, B: 0}) {
		t.Errorf("diff pixel = %+v", got)
	}
	if got := d.At(1, 0); got != (shader.Color{}) {
		t.Errorf("expected equal pixels to diff to black, got %+v", got)
	}
}

func BenchmarkRender(b *testing.B) {
	s := patternSnapshot(256, 256)
	grid := shader.Grid{Width: 256, Height: 256, CellSize: 0.02}
	r := New(Options{})
	defer r.Close()
	dst := NewRaster(512, 512)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := r.Render(context.Background(), s, grid, dst, shader.ModeContinuous); err != nil {
			b.Fatal(err)
		}
	}
}
