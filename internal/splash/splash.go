// Package splash flashes short texts over the rain at random spots and angles.
//
// The overlay never erases what it draws; the engine's per-tick fade covers it.
package splash

import (
	"image"
	"image/color"
	"time"

	"golang.org/x/image/font"

	"github.com/rook-computer/matrixrain/internal/rain"
	"github.com/rook-computer/matrixrain/internal/render"
	"github.com/rook-computer/matrixrain/internal/render/layout"
)

const (
	DefaultInterval = 200 * time.Millisecond
	DefaultSize     = 40
	DefaultMargin   = 200
)

// Engine is the part of the rain engine the overlay reads.
type Engine interface {
	IsRunning() bool
	Surface() render.Surface
	RandomColor() color.Color
	OverlayFace(size float64) (font.Face, error)
}

// Visibility reports whether the output is currently on screen.
type Visibility interface {
	Visible() bool
}

// StaticVisibility is a Visibility set by the host.
type StaticVisibility struct{ Hidden bool }

func (v *StaticVisibility) Visible() bool { return !v.Hidden }

type Logger interface {
	Infof(component string, format string, args ...interface{})
	Errorf(component string, format string, args ...interface{})
}

// Options configure the overlay. A negative Margin disables the edge inset.
type Options struct {
	Interval time.Duration
	// Enable makes the host start the timer together with its loop. Start
	// and Stop work regardless.
	Enable bool
	// Colors, when non-empty, replace the engine palette for splash text.
	// Leave empty to draw with Engine.RandomColor like the rain does.
	Colors     []color.RGBA
	Texts      []string
	Size       float64
	PixelRatio float64
	Margin     int
}

func (o Options) withDefaults() Options {
	out := o
	if out.Interval <= 0 {
		out.Interval = DefaultInterval
	}
	if out.Size <= 0 {
		out.Size = DefaultSize
	}
	if out.PixelRatio <= 0 {
		out.PixelRatio = 1
	}
	if out.Margin == 0 {
		out.Margin = DefaultMargin
	}
	return out
}

type Overlay struct {
	engine     Engine
	opts       Options
	visibility Visibility
	rnd        rain.Random
	Logger     Logger

	ticker  *time.Ticker
	visible bool
	drawn   uint64
}

// New builds an overlay. A nil visibility means always visible; a nil rnd uses
// the process-wide source.
func New(engine Engine, opts Options, visibility Visibility, rnd rain.Random) *Overlay {
	if visibility == nil {
		visibility = &StaticVisibility{}
	}
	if rnd == nil {
		rnd = rain.NewRandom()
	}
	return &Overlay{engine: engine, opts: opts.withDefaults(), visibility: visibility, rnd: rnd, visible: true}
}

func (o *Overlay) Options() Options { return o.opts }

func (o *Overlay) Running() bool { return o.ticker != nil }

// Visible is the visibility seen by the last Tick.
func (o *Overlay) Visible() bool { return o.visible }

// Drawn counts splashes actually drawn.
func (o *Overlay) Drawn() uint64 { return o.drawn }

// Start begins the interval timer. Calling it again while started does nothing.
func (o *Overlay) Start() {
	if o.ticker != nil {
		return
	}
	o.ticker = time.NewTicker(o.opts.Interval)
}

// Stop cancels the timer. Calling it again while stopped does nothing.
func (o *Overlay) Stop() {
	if o.ticker == nil {
		return
	}
	o.ticker.Stop()
	o.ticker = nil
}

// C delivers timer ticks; it is nil while stopped so a select on it blocks.
func (o *Overlay) C() <-chan time.Time {
	if o.ticker == nil {
		return nil
	}
	return o.ticker.C
}

// Tick refreshes visibility and draws one splash when the output is visible
// and the engine is running. It reports whether anything was drawn.
func (o *Overlay) Tick() bool {
	o.visible = o.visibility.Visible()
	if !o.visible {
		return false
	}
	if o.engine == nil || !o.engine.IsRunning() {
		return false
	}
	surface := o.engine.Surface()
	if surface == nil || len(o.opts.Texts) == 0 {
		return false
	}

	face, err := o.engine.OverlayFace(o.opts.Size / o.opts.PixelRatio)
	if err != nil {
		if o.Logger != nil {
			o.Logger.Errorf("splash", "face: %v", err)
		}
		return false
	}

	w, h := surface.Size()
	bounds := image.Rect(0, 0, w, h)
	area := layout.Inset(bounds, o.opts.Margin).Intersect(bounds)
	text := o.opts.Texts[rain.RandomInt(o.rnd, 0, len(o.opts.Texts)-1)]
	x := rain.RandomInt(o.rnd, area.Min.X, area.Max.X)
	y := rain.RandomInt(o.rnd, area.Min.Y, area.Max.Y)
	degrees := o.rnd.Float64() * 360

	surface.DrawTextRotated(text, x, y, degrees, o.color(), face)
	o.drawn++
	return true
}

func (o *Overlay) color() color.Color {
	if len(o.opts.Colors) > 0 {
		return o.opts.Colors[rain.RandomInt(o.rnd, 0, len(o.opts.Colors)-1)]
	}
	return o.engine.RandomColor()
}
