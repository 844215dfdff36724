package splash

import (
	"errors"
	"image/color"
	"testing"
	"time"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"

	"github.com/rook-computer/matrixrain/internal/render"
)

type rotatedDraw struct {
	text    string
	x, y    int
	degrees float64
	color   color.Color
}

type fakeSurface struct {
	w, h  int
	draws []rotatedDraw
}

func (s *fakeSurface) Size() (int, int) { return s.w, s.h }
func (s *fakeSurface) Resize(w, h int)  { s.w, s.h = w, h }
func (s *fakeSurface) Clear()           {}
func (s *fakeSurface) Fill(color.Color) {}

func (s *fakeSurface) DrawText(string, int, int, color.Color, font.Face) {}

func (s *fakeSurface) DrawTextRotated(text string, x, y int, degrees float64, c color.Color, _ font.Face) {
	s.draws = append(s.draws, rotatedDraw{text: text, x: x, y: y, degrees: degrees, color: c})
}

type fakeEngine struct {
	running  bool
	surface  *fakeSurface
	faceErr  error
	faceSize float64
}

var engineGreen = color.RGBA{G: 0xFF, A: 0xFF}

func (e *fakeEngine) IsRunning() bool          { return e.running }
func (e *fakeEngine) Surface() render.Surface  { return e.surface }
func (e *fakeEngine) RandomColor() color.Color { return engineGreen }

func (e *fakeEngine) OverlayFace(size float64) (font.Face, error) {
	e.faceSize = size
	if e.faceErr != nil {
		return nil, e.faceErr
	}
	return basicfont.Face7x13, nil
}

// maxRandom always picks the top of every range.
type maxRandom struct{ float float64 }

func (r maxRandom) Float64() float64 { return r.float }
func (r maxRandom) IntN(n int) int   { return n - 1 }

func newTestOverlay(opts Options, vis Visibility) (*Overlay, *fakeEngine) {
	eng := &fakeEngine{running: true, surface: &fakeSurface{w: 800, h: 600}}
	return New(eng, opts, vis, maxRandom{float: 0.25}), eng
}

func TestTickDrawsInsideMargin(t *testing.T) {
	o, eng := newTestOverlay(Options{Texts: []string{"wake up", "neo"}, Size: 40}, nil)
	if !o.Tick() {
		t.Fatal("expected a splash")
	}
	d := eng.surface.draws[0]
	if d.text != "neo" {
		t.Errorf("text = %q", d.text)
	}
	if d.x != 600 || d.y != 400 {
		t.Errorf("position = (%d,%d), want (600,400)", d.x, d.y)
	}
	if d.degrees != 90 {
		t.Errorf("degrees = %v, want 90", d.degrees)
	}
	if d.color != engineGreen {
		t.Errorf("color = %v, want engine palette colour", d.color)
	}
	if eng.faceSize != 40 {
		t.Errorf("face size = %v, want 40", eng.faceSize)
	}
}

func TestTickUsesOverlayColorsAndPixelRatio(t *testing.T) {
	red := color.RGBA{R: 0xFF, A: 0xFF}
	o, eng := newTestOverlay(Options{Texts: []string{"x"}, Colors: []color.RGBA{red}, Size: 40, PixelRatio: 2}, nil)
	o.Tick()
	if eng.surface.draws[0].color != red {
		t.Errorf("color = %v, want %v", eng.surface.draws[0].color, red)
	}
	if eng.faceSize != 20 {
		t.Errorf("face size = %v, want 20", eng.faceSize)
	}
}

func TestTickSkipsWhenHidden(t *testing.T) {
	vis := &StaticVisibility{Hidden: true}
	o, eng := newTestOverlay(Options{Texts: []string{"x"}}, vis)
	for i := 0; i < 5; i++ {
		if o.Tick() {
			t.Fatal("drew while hidden")
		}
	}
	if len(eng.surface.draws) != 0 {
		t.Fatal("surface touched while hidden")
	}
	vis.Hidden = false
	if !o.Tick() {
		t.Fatal("expected a splash once visible again")
	}
}

func TestTickSkipsWhenEngineNotRunning(t *testing.T) {
	o, eng := newTestOverlay(Options{Texts: []string{"x"}}, nil)
	eng.running = false
	if o.Tick() || len(eng.surface.draws) != 0 {
		t.Fatal("drew while engine stopped")
	}
}

func TestTickSkipsWithoutTexts(t *testing.T) {
	o, eng := newTestOverlay(Options{}, nil)
	if o.Tick() || len(eng.surface.draws) != 0 {
		t.Fatal("drew with an empty text set")
	}
}

func TestTickSkipsOnFaceError(t *testing.T) {
	o, eng := newTestOverlay(Options{Texts: []string{"x"}}, nil)
	eng.faceErr = errors.New("not loaded")
	if o.Tick() {
		t.Fatal("drew without a face")
	}
}

func TestSmallSurfaceStaysInBounds(t *testing.T) {
	o, eng := newTestOverlay(Options{Texts: []string{"x"}}, nil)
	eng.surface.w, eng.surface.h = 300, 100
	o.Tick()
	d := eng.surface.draws[0]
	if d.x < 0 || d.x > 300 || d.y < 0 || d.y > 100 {
		t.Errorf("splash at (%d,%d) outside 300x100", d.x, d.y)
	}
}

func TestStartStopIdempotent(t *testing.T) {
	o, _ := newTestOverlay(Options{Interval: time.Hour}, nil)
	if o.C() != nil {
		t.Fatal("channel should be nil before Start")
	}
	o.Start()
	ch := o.C()
	o.Start()
	if o.C() != ch {
		t.Fatal("second Start replaced the timer")
	}
	o.Stop()
	o.Stop()
	if o.Running() || o.C() != nil {
		t.Fatal("overlay still running after Stop")
	}
}

func TestTimerFires(t *testing.T) {
	o, _ := newTestOverlay(Options{Interval: 5 * time.Millisecond, Texts: []string{"x"}}, nil)
	o.Start()
	defer o.Stop()
	select {
	case <-o.C():
	case <-time.After(time.Second):
		t.Fatal("timer never fired")
	}
}

func TestDefaults(t *testing.T) {
	opts := Options{}.withDefaults()
	if opts.Interval != DefaultInterval || opts.Size != DefaultSize || opts.Margin != DefaultMargin || opts.PixelRatio != 1 {
		t.Errorf("defaults = %+v", opts)
	}
}
