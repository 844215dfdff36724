package render

import (
	"image"
	"image/color"

	"golang.org/x/image/font"
)

// Surface is the raster target shared by the rain engine and the splash overlay.
// Coordinates are in surface pixels; text is anchored at its baseline origin.
type Surface interface {
	// Size returns the current surface size in pixels.
	Size() (width int, height int)

	// Resize discards the contents and reallocates the surface.
	Resize(width, height int)

	// Clear erases every pixel.
	Clear()

	// Fill composites c over the whole surface.
	Fill(c color.Color)

	DrawText(text string, x, y int, c color.Color, face font.Face)
	DrawTextRotated(text string, x, y int, degrees float64, c color.Color, face font.Face)
}

// Container is whatever the surface is sized to: a display, a window, a virtual
// viewport. Subscribe registers fn for resize notifications and returns a
// function that removes it.
type Container interface {
	Size() (width int, height int)
	Subscribe(fn func()) (cancel func())
}

// Presenter shows a finished frame somewhere outside the process.
type Presenter interface {
	Present(frame *image.RGBA) error
	Close() error
}

// NoopPresenter discards frames. The simulator reads frames over HTTP instead.
type NoopPresenter struct{}

func (NoopPresenter) Present(*image.RGBA) error { return nil }
func (NoopPresenter) Close() error              { return nil }

var (
	// Background is what a cleared surface looks like once presented.
	Background = color.RGBA{A: 0xFF}
)
