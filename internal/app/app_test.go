package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rook-computer/matrixrain/internal/buttons"
	"github.com/rook-computer/matrixrain/internal/config"
	"github.com/rook-computer/matrixrain/internal/fonts"
	"github.com/rook-computer/matrixrain/internal/rain"
	"github.com/rook-computer/matrixrain/internal/state"
)

type recordingLogger struct {
	mu     sync.Mutex
	errors []string
}

func (l *recordingLogger) Infof(component, format string, args ...interface{}) {}

func (l *recordingLogger) Errorf(component, format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.errors = append(l.errors, component+": "+fmt.Sprintf(format, args...))
}

func (l *recordingLogger) contains(s string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, e := range l.errors {
		if strings.Contains(e, s) {
			return true
		}
	}
	return false
}

// panicRandom panics while armed.
type panicRandom struct{ armed atomic.Bool }

func (r *panicRandom) Float64() float64 {
	if r.armed.Load() {
		panic("boom")
	}
	return 0.5
}

func (r *panicRandom) IntN(n int) int { return n / 2 }

type fakeButtons struct{ ch chan buttons.Event }

func (b *fakeButtons) Start(ctx context.Context) error { return nil }

func (b *fakeButtons) Stop() error { return nil }

func (b *fakeButtons) Events() <-chan buttons.Event { return b.ch }

type fixedContainer struct{}

func (fixedContainer) Size() (int, int) { return 64, 32 }

func (fixedContainer) Subscribe(fn func()) func() { return func() {} }

func testConfig() config.Config {
	cfg := config.Default()
	cfg.FPS = 240
	cfg.Display.Width = 200
	cfg.Display.Height = 100
	return cfg
}

type runner struct {
	app    *App
	cancel context.CancelFunc
	errCh  chan error
}

func startApp(t *testing.T, cfg config.Config, deps Deps) *runner {
	t.Helper()
	a, err := New(cfg, deps)
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	r := &runner{app: a, cancel: cancel, errCh: make(chan error, 1)}
	go func() { r.errCh <- a.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		select {
		case <-r.errCh:
		case <-time.After(2 * time.Second):
			t.Error("run loop did not exit")
		}
	})
	waitFor(t, "engine running", func() bool { return a.Status().Phase == state.RUNNING })
	return r
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestRunFailsOnFontError(t *testing.T) {
	cfg := testConfig()
	cfg.Font.File = "builtin:nope"
	a, err := New(cfg, Deps{})
	if err != nil {
		t.Fatal(err)
	}
	err = a.Run(context.Background())
	var rle *fonts.ResourceLoadError
	if !errors.As(err, &rle) {
		t.Fatalf("Run error = %v, want ResourceLoadError", err)
	}
	if s := a.Status(); s.Phase != state.ERROR || s.Err == "" {
		t.Errorf("status = %+v, want ERROR with message", s)
	}
	if err := a.Clear(context.Background()); !errors.Is(err, ErrNotRunning) {
		t.Errorf("Do after exit = %v, want ErrNotRunning", err)
	}
}

func TestDoBeforeRun(t *testing.T) {
	a, err := New(testConfig(), Deps{})
	if err != nil {
		t.Fatal(err)
	}
	if err := a.Do(context.Background(), func() {}); !errors.Is(err, ErrNotRunning) {
		t.Errorf("Do = %v, want ErrNotRunning", err)
	}
}

func TestLifecycleThroughController(t *testing.T) {
	r := startApp(t, testConfig(), Deps{})
	a, ctx := r.app, context.Background()

	waitFor(t, "frames", func() bool { return a.Status().Frames > 0 })
	if s := a.Status(); s.Surface.Width != 200 || s.Surface.Columns != 17 {
		t.Errorf("surface = %+v, want 200 wide with 17 columns", s.Surface)
	}
	if a.Status().Font != "Go Mono" {
		t.Errorf("font = %q", a.Status().Font)
	}

	got, err := a.Pause(ctx)
	if err != nil || got != rain.Paused {
		t.Fatalf("Pause = %v, %v", got, err)
	}
	frozen := a.Status().Frames
	time.Sleep(30 * time.Millisecond)
	if a.Status().Phase != state.PAUSED || a.Status().Frames != frozen {
		t.Errorf("paused engine kept ticking: %+v", a.Status())
	}
	if got, _ := a.Pause(ctx); got != rain.Running {
		t.Errorf("second Pause = %v, want running", got)
	}

	if err := a.Resize(ctx, 120, 60); err != nil {
		t.Fatal(err)
	}
	waitFor(t, "resize", func() bool {
		s := a.Status().Surface
		return s.Width == 120 && s.Height == 60 && s.Columns == 10
	})

	img, err := a.Frame(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 120 || b.Dy() != 60 {
		t.Errorf("frame bounds = %v", b)
	}

	if err := a.SetOptions(ctx, []string{"x"}, nil); err != nil {
		t.Fatal(err)
	}

	if err := a.Stop(ctx); err != nil {
		t.Fatal(err)
	}
	if s := a.Status(); s.Phase != state.STOPPED || s.Surface.Columns != 0 {
		t.Errorf("after stop = %+v", s)
	}
	if err := a.Start(ctx); err != nil {
		t.Fatal(err)
	}
	if a.Status().Phase != state.RUNNING {
		t.Errorf("restart phase = %v", a.Status().Phase)
	}
}

func TestResizeNeedsVirtualContainer(t *testing.T) {
	r := startApp(t, testConfig(), Deps{Container: fixedContainer{}})
	if err := r.app.Resize(context.Background(), 10, 10); !errors.Is(err, ErrNotResizable) {
		t.Errorf("Resize = %v, want ErrNotResizable", err)
	}
}

func TestSplashControlAndVisibility(t *testing.T) {
	cfg := testConfig()
	cfg.Splash.Interval = 5 * time.Millisecond
	cfg.Splash.Margin = -1
	r := startApp(t, cfg, Deps{})
	a, ctx := r.app, context.Background()

	if a.Status().Splash.Running {
		t.Fatal("splash should be off when not enabled")
	}
	if err := a.StartSplash(ctx); err != nil {
		t.Fatal(err)
	}
	waitFor(t, "splash drawn", func() bool { return a.Status().Splash.Drawn > 0 })

	if err := a.SetVisible(ctx, false); err != nil {
		t.Fatal(err)
	}
	waitFor(t, "hidden", func() bool { return !a.Status().Splash.Visible })
	drawn := a.Status().Splash.Drawn
	time.Sleep(30 * time.Millisecond)
	if a.Status().Splash.Drawn != drawn {
		t.Error("hidden overlay kept drawing")
	}

	if err := a.StopSplash(ctx); err != nil {
		t.Fatal(err)
	}
	if a.Status().Splash.Running {
		t.Error("splash still running after stop")
	}
}

func TestSplashEnabledStartsWithLoop(t *testing.T) {
	cfg := testConfig()
	cfg.Splash.Enable = true
	cfg.Splash.Interval = 5 * time.Millisecond
	cfg.Splash.Margin = -1
	r := startApp(t, cfg, Deps{})
	a := r.app

	waitFor(t, "splash running", func() bool { return a.Status().Splash.Running })
	waitFor(t, "splash drawn", func() bool { return a.Status().Splash.Drawn > 0 })

	if err := a.StopSplash(context.Background()); err != nil {
		t.Fatal(err)
	}
	if a.Status().Splash.Running {
		t.Error("splash still running after stop")
	}
}

func TestTickPanicIsRecovered(t *testing.T) {
	rnd := &panicRandom{}
	logger := &recordingLogger{}
	r := startApp(t, testConfig(), Deps{Random: rnd, Logger: logger})
	a := r.app

	rnd.armed.Store(true)
	waitFor(t, "panic logged", func() bool { return logger.contains("tick panic") })
	rnd.armed.Store(false)

	if err := a.Clear(context.Background()); err != nil {
		t.Fatalf("loop died after panic: %v", err)
	}
	before := a.Status().Frames
	waitFor(t, "frames resume", func() bool { return a.Status().Frames > before })
}

func TestButtonsDriveEngine(t *testing.T) {
	b := &fakeButtons{ch: make(chan buttons.Event)}
	r := startApp(t, testConfig(), Deps{Buttons: b})
	a := r.app

	b.ch <- buttons.Pause
	waitFor(t, "paused", func() bool { return a.Status().Phase == state.PAUSED })
	b.ch <- buttons.Toggle
	waitFor(t, "stopped", func() bool { return a.Status().Phase == state.STOPPED })
	b.ch <- buttons.Toggle
	waitFor(t, "running", func() bool { return a.Status().Phase == state.RUNNING })

	b.ch <- buttons.Exit
	select {
	case err := <-r.errCh:
		if err != nil {
			t.Errorf("Run after exit = %v, want nil", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("exit button did not stop the loop")
	}
	r.errCh <- nil
}
