// Package renderer puts CPU-shaded field frames on screen through raylib.
package renderer

import (
	"image/color"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/emfield/render"
)

// FieldTexture holds a shaded raster on the GPU and draws it stretched over a
// screen rectangle. Point filtering keeps each output pixel a crisp block.
type FieldTexture struct {
	tex        rl.Texture2D
	texW, texH int
	pixels     []color.RGBA

	initialized bool
}

// NewFieldTexture creates an empty field texture.
func NewFieldTexture() *FieldTexture {
	return &FieldTexture{}
}

// Init allocates the texture (must be called after raylib window is created).
func (t *FieldTexture) Init(w, h int) {
	if t.initialized && w == t.texW && h == t.texH {
		return
	}
	t.Unload()

	t.texW = w
	t.texH = h
	t.pixels = make([]color.RGBA, w*h)

	img := rl.GenImageColor(w, h, rl.Black)
	t.tex = rl.LoadTextureFromImage(img)
	rl.SetTextureFilter(t.tex, rl.FilterPoint)
	rl.SetTextureWrap(t.tex, rl.WrapClamp)
	rl.UnloadImage(img)

	t.initialized = true
}

// Update uploads a raster, reallocating the texture when its size changed.
func (t *FieldTexture) Update(r *render.Raster) {
	if r.W == 0 || r.H == 0 {
		return
	}
	t.Init(r.W, r.H)

	for y := 0; y < r.H; y++ {
		for x := 0; x < r.W; x++ {
			t.pixels[y*r.W+x] = r.RGBA(x, y)
		}
	}
	rl.UpdateTexture(t.tex, t.pixels)
}

// Size returns the texture dimensions in pixels.
func (t *FieldTexture) Size() (int, int) {
	return t.texW, t.texH
}

// Draw renders the texture into the destination rectangle.
func (t *FieldTexture) Draw(dst rl.Rectangle) {
	if !t.initialized {
		return
	}
	src := rl.Rectangle{X: 0, Y: 0, Width: float32(t.texW), Height: float32(t.texH)}
	rl.DrawTexturePro(t.tex, src, dst, rl.Vector2{}, 0, rl.White)
}

// Unload frees GPU resources.
func (t *FieldTexture) Unload() {
	if !t.initialized {
		return
	}
	rl.UnloadTexture(t.tex)
	t.initialized = false
}
