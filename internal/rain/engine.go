// Package rain implements the falling-glyph engine.
//
// The engine is a state machine with a single Tick transition. It never
// schedules itself: the host calls Tick once per display frame while
// IsRunning reports true, so Stop and Pause take effect on the very next
// frame. Engine is not safe for concurrent use; all calls, including resize
// notifications from the container, must come from the host's loop goroutine.
package rain

import (
	"context"
	"image/color"
	"math"

	"golang.org/x/image/font"

	"github.com/rook-computer/matrixrain/internal/fonts"
	"github.com/rook-computer/matrixrain/internal/render"
)

type State int

const (
	Stopped State = iota
	Running
	Paused
)

func (s State) String() string {
	switch s {
	case Running:
		return "running"
	case Paused:
		return "paused"
	default:
		return "stopped"
	}
}

const (
	// fadeAlpha is the per-tick black overlay, about 5% opacity.
	fadeAlpha = 13

	// A column restarts once its offset passes resetFloor + rand*resetSpread.
	resetFloor  = 100
	resetSpread = 10000

	// lineStep is how far a column advances per tick, in pixels.
	lineStep = 10

	// Fallback glyphs are drawn from [fallbackBase, fallbackBase+fallbackSpan).
	fallbackBase = 100
	fallbackSpan = 28
)

var fadeColor = color.NRGBA{A: fadeAlpha}

type Engine struct {
	container render.Container
	surface   render.Surface
	font      *fonts.Resource
	fontSize  float64
	palette   render.Palette
	symbols   SymbolSource
	rnd       Random
	logger    Logger

	state       State
	traces      []int
	pending     *DynamicOptions
	unsubscribe func()
	frames      uint64
}

// New creates an engine whose surface is sized to container and follows its resizes.
func New(container render.Container, opts Options) *Engine {
	opts = opts.withDefaults()
	e := &Engine{
		container: container,
		surface:   opts.Surface,
		font:      fonts.NewResource(opts.Font, opts.Loader),
		fontSize:  opts.Font.Size,
		symbols:   opts.Symbols,
		rnd:       opts.Random,
		logger:    opts.Logger,
	}

	e.palette = render.DefaultPalette()
	if len(opts.Font.Colors) > 0 {
		palette, err := render.ParsePalette(opts.Font.Colors)
		if err != nil {
			e.logger.Errorf("rain", "invalid font colors, using default palette: %v", err)
		} else {
			e.palette = palette
		}
	}

	e.setSize()
	e.subscribe()
	return e
}

func (e *Engine) IsRunning() bool { return e.state == Running }

func (e *Engine) State() State { return e.state }

func (e *Engine) Surface() render.Surface { return e.surface }

func (e *Engine) Font() *fonts.Resource { return e.font }

func (e *Engine) FontSize() float64 { return e.fontSize }

// OverlayFace returns a face of the engine font for drawing on top of the rain.
func (e *Engine) OverlayFace(size float64) (font.Face, error) { return e.font.OverlayFace(size) }

// Frames counts ticks that drew.
func (e *Engine) Frames() uint64 { return e.frames }

// TraceCount is the number of live columns.
func (e *Engine) TraceCount() int { return len(e.traces) }

// Traces returns a copy of the per-column offsets.
func (e *Engine) Traces() []int { return append([]int(nil), e.traces...) }

// Start loads the font if needed and enters the running state. It is a no-op
// while already running. A font failure is returned as *fonts.ResourceLoadError
// and leaves the state unchanged.
func (e *Engine) Start(ctx context.Context) error {
	if e.state == Running {
		return nil
	}
	if !e.font.Loaded() {
		if err := e.font.Load(ctx); err != nil {
			e.logger.Errorf("rain", "%v", err)
			return err
		}
		e.logger.Infof("rain", "font %q loaded (%s)", e.font.Family(), e.font.EmbeddedFamily())
	}
	if e.unsubscribe == nil {
		// The container may have changed size while we were detached.
		if w, h := e.container.Size(); !e.surfaceIs(w, h) {
			e.handleResize()
		}
		e.subscribe()
	}
	e.state = Running
	return nil
}

// Stop leaves the running state, detaches from the container and clears everything.
func (e *Engine) Stop() {
	e.state = Stopped
	if e.unsubscribe != nil {
		e.unsubscribe()
		e.unsubscribe = nil
	}
	e.Clear()
}

// Pause toggles between running and paused and returns the new state.
// A stopped engine stays stopped; use Start.
func (e *Engine) Pause() State {
	switch e.state {
	case Running:
		e.state = Paused
	case Paused:
		e.state = Running
	}
	return e.state
}

// Clear erases the surface and drops all traces without touching the state.
func (e *Engine) Clear() {
	if e.surface == nil {
		return
	}
	e.traces = nil
	e.surface.Clear()
}

// SetOptions queues a partial update; it is merged into the live state at the
// start of the next tick.
func (e *Engine) SetOptions(opts DynamicOptions) {
	if e.pending == nil {
		e.pending = &DynamicOptions{}
	}
	merged := e.pending.merge(opts)
	e.pending = &merged
}

// RandomColor picks a palette entry uniformly.
func (e *Engine) RandomColor() color.Color {
	if len(e.palette) == 0 {
		return color.RGBA{G: 0xFF, A: 0xFF}
	}
	return e.palette[RandomInt(e.rnd, 0, len(e.palette)-1)]
}

// Columns is the number of traces the current surface width calls for.
func (e *Engine) Columns() int {
	if e.fontSize <= 0 {
		return 0
	}
	w, _ := e.surface.Size()
	return int(math.Round(float64(w) / e.fontSize))
}

// Tick advances and draws one frame. It does nothing unless running.
func (e *Engine) Tick() {
	if e.surface == nil || e.state != Running {
		return
	}
	e.applyPending()

	if len(e.traces) != e.Columns() {
		e.initTraces()
	}

	face, err := e.font.Face(e.fontSize)
	if err != nil {
		e.logger.Errorf("rain", "glyph face: %v", err)
		return
	}

	e.surface.Fill(fadeColor)
	tickColor := e.RandomColor()

	for i, y := range e.traces {
		x := int(float64(i) * e.fontSize)
		e.surface.DrawText(e.glyph(), x, y, tickColor, face)

		if float64(y) > resetFloor+e.rnd.Float64()*resetSpread {
			e.traces[i] = 0
		} else {
			e.traces[i] = y + lineStep
		}
	}
	e.frames++
}

func (e *Engine) applyPending() {
	if e.pending == nil {
		return
	}
	p := *e.pending
	e.pending = nil
	if p.Symbols != nil {
		e.symbols = p.Symbols
	}
	if len(p.Palette) > 0 {
		e.palette = p.Palette
	}
}

func (e *Engine) initTraces() {
	count := e.Columns()
	_, h := e.surface.Size()
	e.traces = make([]int, count)
	for i := range e.traces {
		e.traces[i] = RandomInt(e.rnd, 0, h)
	}
}

// glyph asks the symbol source afresh for every glyph, so a dynamic source
// can change candidates within a frame.
func (e *Engine) glyph() string {
	var candidates []string
	if e.symbols != nil {
		candidates = e.symbols()
	}
	if len(candidates) > 0 {
		return candidates[RandomInt(e.rnd, 0, len(candidates)-1)]
	}
	return string(rune(fallbackBase + int(fallbackSpan*e.rnd.Float64())))
}

func (e *Engine) subscribe() {
	e.unsubscribe = e.container.Subscribe(e.handleResize)
}

func (e *Engine) handleResize() {
	e.setSize()
	e.Clear()
}

func (e *Engine) setSize() {
	w, h := e.container.Size()
	e.surface.Resize(w, h)
}

func (e *Engine) surfaceIs(w, h int) bool {
	sw, sh := e.surface.Size()
	return sw == w && sh == h
}
