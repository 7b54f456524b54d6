package render

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"

	"golang.org/x/image/draw"

	"github.com/pthm-cable/emfield/shader"
)

// Raster is an output frame of shaded colors, row-major with row 0 at the top.
type Raster struct {
	W, H int
	Pix  []shader.Color
}

// NewRaster allocates a black raster.
func NewRaster(w, h int) *Raster {
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	return &Raster{W: w, H: h, Pix: make([]shader.Color, w*h)}
}

// Viewport returns the raster size as a shader viewport.
func (r *Raster) Viewport() shader.Viewport {
	return shader.Viewport{Width: r.W, Height: r.H}
}

// At returns the color at (x, y), or black outside the raster.
func (r *Raster) At(x, y int) shader.Color {
	if x < 0 || x >= r.W || y < 0 || y >= r.H {
		return shader.Color{}
	}
	return r.Pix[y*r.W+x]
}

// RGBA returns the 8-bit RGBA pixel for (x, y). Channels below 0 floor to 0
// here; the shaded value itself keeps its sign.
func (r *Raster) RGBA(x, y int) color.RGBA {
	c := r.At(x, y)
	return color.RGBA{R: to8(c.R), G: to8(c.G), B: to8(c.B), A: 255}
}

// ToImage converts the raster to an 8-bit RGBA image.
func (r *Raster) ToImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, r.W, r.H))
	for i, c := range r.Pix {
		o := i * 4
		img.Pix[o+0] = to8(c.R)
		img.Pix[o+1] = to8(c.G)
		img.Pix[o+2] = to8(c.B)
		img.Pix[o+3] = 255
	}
	return img
}

// SavePNG writes the raster to a PNG file, scaled up by factor with
// nearest-neighbour sampling when factor > 1.
func (r *Raster) SavePNG(path string, factor int) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer func() {
		_ = f.Close()
	}()

	var img image.Image = r.ToImage()
	if factor > 1 {
		img = Upscale(img, factor)
	}
	if err := png.Encode(f, img); err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	return nil
}

// Upscale enlarges img by an integer factor without smoothing, so each grid
// cell stays a crisp block.
func Upscale(img image.Image, factor int) *image.RGBA {
	if factor < 1 {
		factor = 1
	}
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx()*factor, b.Dy()*factor))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

func to8(v float32) uint8 {
	if !(v > 0) {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(v*255 + 0.5)
}
