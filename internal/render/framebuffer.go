package render

import (
	"image"
	"image/color"
	"image/draw"

	fb "github.com/gonutz/framebuffer"
	xdraw "golang.org/x/image/draw"
)

// DefaultFramebufferPath is the primary Linux framebuffer device.
const DefaultFramebufferPath = "/dev/fb0"

// Framebuffer presents frames on a Linux framebuffer device and doubles as the
// Container the canvas is sized to. The device size never changes while open,
// so subscribers are accepted but never called.
type Framebuffer struct {
	dev *fb.Device
}

func OpenFramebuffer(path string) (*Framebuffer, error) {
	if path == "" {
		path = DefaultFramebufferPath
	}
	dev, err := fb.Open(path)
	if err != nil {
		return nil, err
	}
	return &Framebuffer{dev: dev}, nil
}

func (f *Framebuffer) Size() (int, int) {
	b := f.dev.Bounds()
	return b.Dx(), b.Dy()
}

func (f *Framebuffer) Subscribe(fn func()) func() { return func() {} }

// Present copies frame to the device, scaling with nearest-neighbour sampling
// when the sizes differ.
func (f *Framebuffer) Present(frame *image.RGBA) error {
	if f.dev == nil || frame == nil {
		return nil
	}
	bounds := f.dev.Bounds()
	if frame.Bounds().Dx() == bounds.Dx() && frame.Bounds().Dy() == bounds.Dy() {
		blitOpaque(f.dev, bounds, frame)
		return nil
	}
	scaled := image.NewRGBA(bounds)
	xdraw.NearestNeighbor.Scale(scaled, bounds, frame, frame.Bounds(), xdraw.Src, nil)
	blitOpaque(f.dev, bounds, scaled)
	return nil
}

func (f *Framebuffer) Close() error {
	if f.dev == nil {
		return nil
	}
	f.dev.Close()
	f.dev = nil
	return nil
}

// blitOpaque writes every pixel with full alpha. The canvas keeps translucent
// pixels after a fade, and the device expects them composited over black.
func blitOpaque(dst draw.Image, bounds image.Rectangle, src *image.RGBA) {
	srcMin := src.Bounds().Min
	for y := 0; y < bounds.Dy(); y++ {
		for x := 0; x < bounds.Dx(); x++ {
			pixel := src.RGBAAt(srcMin.X+x, srcMin.Y+y)
			dst.Set(bounds.Min.X+x, bounds.Min.Y+y, color.RGBA{R: pixel.R, G: pixel.G, B: pixel.B, A: 0xFF})
		}
	}
}
