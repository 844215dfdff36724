package render

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/math/f64"
	"golang.org/x/image/math/fixed"
)

// Canvas is an in-memory RGBA Surface.
type Canvas struct {
	img *image.RGBA
}

func NewCanvas(width, height int) *Canvas {
	return &Canvas{img: image.NewRGBA(image.Rect(0, 0, clampDim(width), clampDim(height)))}
}

func clampDim(v int) int {
	if v < 0 {
		return 0
	}
	return v
}

func (c *Canvas) Size() (int, int) {
	b := c.img.Bounds()
	return b.Dx(), b.Dy()
}

// Resize always reallocates, matching how a raster canvas drops its pixels on resize.
func (c *Canvas) Resize(width, height int) {
	c.img = image.NewRGBA(image.Rect(0, 0, clampDim(width), clampDim(height)))
}

func (c *Canvas) Clear() {
	draw.Draw(c.img, c.img.Bounds(), image.Transparent, image.Point{}, draw.Src)
}

func (c *Canvas) Fill(col color.Color) {
	draw.Draw(c.img, c.img.Bounds(), image.NewUniform(col), image.Point{}, draw.Over)
}

func (c *Canvas) DrawText(text string, x, y int, col color.Color, face font.Face) {
	if text == "" || face == nil {
		return
	}
	drawer := &font.Drawer{
		Dst:  c.img,
		Src:  image.NewUniform(col),
		Face: face,
		Dot:  fixed.P(x, y),
	}
	drawer.DrawString(text)
}

// DrawTextRotated draws text rotated clockwise by degrees around its baseline origin (x, y).
func (c *Canvas) DrawTextRotated(text string, x, y int, degrees float64, col color.Color, face font.Face) {
	if text == "" || face == nil {
		return
	}
	bounds, _ := font.BoundString(face, text)
	minX, minY := bounds.Min.X.Floor(), bounds.Min.Y.Floor()
	w, h := bounds.Max.X.Ceil()-minX, bounds.Max.Y.Ceil()-minY
	if w <= 0 || h <= 0 {
		return
	}

	// Rasterise upright into a scratch image whose origin sits at (ox, oy).
	ox, oy := -minX, -minY
	scratch := image.NewRGBA(image.Rect(0, 0, w, h))
	drawer := &font.Drawer{
		Dst:  scratch,
		Src:  image.NewUniform(col),
		Face: face,
		Dot:  fixed.P(ox, oy),
	}
	drawer.DrawString(text)

	rad := degrees * math.Pi / 180
	cos, sin := math.Cos(rad), math.Sin(rad)
	fx, fy := float64(ox), float64(oy)
	m := f64.Aff3{
		cos, -sin, float64(x) - (cos*fx - sin*fy),
		sin, cos, float64(y) - (sin*fx + cos*fy),
	}
	xdraw.BiLinear.Transform(c.img, m, scratch, scratch.Bounds(), xdraw.Over, nil)
}

// Image exposes the backing image. Callers must not retain it across a Resize.
func (c *Canvas) Image() *image.RGBA { return c.img }

// Snapshot returns an opaque copy of the canvas composited over Background.
func (c *Canvas) Snapshot() *image.RGBA {
	out := image.NewRGBA(c.img.Bounds())
	draw.Draw(out, out.Bounds(), image.NewUniform(Background), image.Point{}, draw.Src)
	draw.Draw(out, out.Bounds(), c.img, c.img.Bounds().Min, draw.Over)
	return out
}
