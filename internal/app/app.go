package app

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/rook-computer/matrixrain/internal/buttons"
	"github.com/rook-computer/matrixrain/internal/config"
	"github.com/rook-computer/matrixrain/internal/fonts"
	"github.com/rook-computer/matrixrain/internal/rain"
	"github.com/rook-computer/matrixrain/internal/render"
	"github.com/rook-computer/matrixrain/internal/splash"
	"github.com/rook-computer/matrixrain/internal/state"
)

// ErrNotRunning is returned by Do once the loop has exited or before it started.
var ErrNotRunning = errors.New("app loop is not running")

// Deps are the host collaborators. Nil fields get headless defaults.
type Deps struct {
	Container  render.Container
	Presenter  render.Presenter
	Buttons    buttons.Buttons
	Visibility splash.Visibility
	Loader     fonts.Loader
	Random     rain.Random
	Logger     Logger
}

// App owns the engine and the overlay. Every call into them happens on the
// goroutine running Run; other goroutines go through Do.
type App struct {
	Store     *state.Store
	Engine    *rain.Engine
	Splash    *splash.Overlay
	Container render.Container
	Presenter render.Presenter
	Buttons   buttons.Buttons
	Logger    Logger
	Debug     bool

	canvas     *render.Canvas
	visibility splash.Visibility
	interval   time.Duration

	cmds     chan command
	done     chan struct{}
	running  atomic.Bool
	exitOnce atomic.Bool
	exitCh   chan error
}

type command struct {
	fn   func()
	done chan struct{}
}

func New(cfg config.Config, deps Deps) (*App, error) {
	if deps.Container == nil {
		deps.Container = render.NewVirtualContainer(cfg.Display.Width, cfg.Display.Height)
	}
	if deps.Presenter == nil {
		deps.Presenter = render.NoopPresenter{}
	}
	if deps.Buttons == nil {
		deps.Buttons = buttons.NewNoopButtons()
	}
	if deps.Visibility == nil {
		deps.Visibility = &splash.StaticVisibility{}
	}
	if deps.Logger == nil {
		deps.Logger = NoopLogger{}
	}

	splashColors, err := cfg.SplashPalette()
	if err != nil {
		return nil, fmt.Errorf("splash colors: %w", err)
	}

	canvas := render.NewCanvas(0, 0)
	engine := rain.New(deps.Container, rain.Options{
		Font:    cfg.Font,
		Symbols: symbolSource(cfg.Symbols),
		Surface: canvas,
		Loader:  deps.Loader,
		Random:  deps.Random,
		Logger:  deps.Logger,
	})
	overlay := splash.New(engine, splash.Options{
		Interval:   cfg.Splash.Interval,
		Enable:     cfg.Splash.Enable,
		Colors:     splashColors,
		Texts:      cfg.Splash.Texts,
		Size:       cfg.Splash.Size,
		PixelRatio: cfg.Splash.PixelRatio,
		Margin:     cfg.Splash.Margin,
	}, deps.Visibility, deps.Random)
	overlay.Logger = deps.Logger

	store := state.NewStore()
	store.SetFont(cfg.Font.Family)

	return &App{
		Store:      store,
		Engine:     engine,
		Splash:     overlay,
		Container:  deps.Container,
		Presenter:  deps.Presenter,
		Buttons:    deps.Buttons,
		Logger:     deps.Logger,
		canvas:     canvas,
		visibility: deps.Visibility,
		interval:   cfg.FrameInterval(),
		cmds:       make(chan command),
		done:       make(chan struct{}),
		exitCh:     make(chan error, 1),
	}, nil
}

// symbolSource maps an empty list to nil so the engine falls back to
// pseudo-random glyphs.
func symbolSource(symbols []string) rain.SymbolSource {
	if len(symbols) == 0 {
		return nil
	}
	return rain.StaticSymbols(symbols...)
}

// Exit requests the loop to stop with err.
func (app *App) Exit(err error) {
	if !app.exitOnce.CompareAndSwap(false, true) {
		return
	}
	select {
	case app.exitCh <- err:
	default:
	}
}

// Run starts the engine and drives it until ctx is cancelled or Exit is called.
// A font load failure on the initial start is returned immediately.
func (app *App) Run(ctx context.Context) error {
	if !app.running.CompareAndSwap(false, true) {
		return errors.New("app already running")
	}
	defer close(app.done)

	if err := app.startEngine(ctx); err != nil {
		return err
	}
	if app.Splash.Options().Enable {
		app.Splash.Start()
	}
	defer app.Splash.Stop()

	if err := app.Buttons.Start(ctx); err != nil {
		app.Logger.Errorf("buttons", "start failed: %v", err)
	}
	defer func() { _ = app.Buttons.Stop() }()

	ticker := time.NewTicker(app.interval)
	defer ticker.Stop()
	heartbeat := time.NewTicker(time.Second)
	defer heartbeat.Stop()

	app.Logger.Infof("app", "loop started at %v per frame", app.interval)
	var lastFrames uint64
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-app.exitCh:
			return err
		case <-ticker.C:
			app.frame()
		case <-app.Splash.C():
			app.splashTick()
		case cmd := <-app.cmds:
			cmd.fn()
			app.publish()
			close(cmd.done)
		case ev := <-app.Buttons.Events():
			app.handleButton(ctx, ev)
		case <-heartbeat.C:
			if app.Debug {
				frames := app.Engine.Frames()
				app.debugf("app", "heartbeat: state=%s fps=%d splashes=%d", app.Engine.State(), frames-lastFrames, app.Splash.Drawn())
				lastFrames = frames
			}
		}
	}
}

// Do runs fn on the loop goroutine between frames and waits for it.
func (app *App) Do(ctx context.Context, fn func()) error {
	if !app.running.Load() {
		return ErrNotRunning
	}
	cmd := command{fn: fn, done: make(chan struct{})}
	select {
	case app.cmds <- cmd:
	case <-app.done:
		return ErrNotRunning
	case <-ctx.Done():
		return ctx.Err()
	}
	// Once accepted the command always completes; waiting on ctx here would
	// let fn race with the caller's reads of its results.
	<-cmd.done
	return nil
}

type debugLogger interface {
	Debugf(component string, format string, args ...interface{})
}

func (app *App) debugf(component, format string, args ...interface{}) {
	if d, ok := app.Logger.(debugLogger); ok {
		d.Debugf(component, format, args...)
		return
	}
	app.Logger.Infof(component, format, args...)
}

func (app *App) frame() {
	if !app.Engine.IsRunning() {
		return
	}
	app.safeTick()
	if err := app.Presenter.Present(app.canvas.Image()); err != nil {
		app.Logger.Errorf("render", "present failed: %v", err)
	}
	app.publish()
}

func (app *App) safeTick() {
	defer func() {
		if r := recover(); r != nil {
			app.Logger.Errorf("rain", "tick panic: %v", r)
		}
	}()
	app.Engine.Tick()
}

func (app *App) splashTick() {
	defer func() {
		if r := recover(); r != nil {
			app.Logger.Errorf("splash", "tick panic: %v", r)
		}
	}()
	app.Splash.Tick()
}

func (app *App) handleButton(ctx context.Context, ev buttons.Event) {
	switch ev {
	case buttons.Pause:
		app.Logger.Infof("buttons", "pause -> %s", app.Engine.Pause())
	case buttons.Clear:
		app.Engine.Clear()
	case buttons.Toggle:
		if app.Engine.State() == rain.Stopped {
			if err := app.startEngine(ctx); err != nil {
				return
			}
		} else {
			app.stopEngine()
		}
	case buttons.Exit:
		app.Logger.Infof("buttons", "exit requested")
		app.Exit(nil)
		return
	}
	app.publish()
}

func (app *App) startEngine(ctx context.Context) error {
	if err := app.Engine.Start(ctx); err != nil {
		app.Logger.Errorf("app", "engine start failed: %v", err)
		app.Store.SetError(err)
		return err
	}
	app.Store.SetError(nil)
	if family := app.Engine.Font().EmbeddedFamily(); family != "" {
		app.Store.SetFont(family)
	}
	app.publish()
	return nil
}

func (app *App) stopEngine() {
	app.Engine.Stop()
	// Present the cleared canvas so the output does not freeze on the last frame.
	if err := app.Presenter.Present(app.canvas.Image()); err != nil {
		app.Logger.Errorf("render", "present failed: %v", err)
	}
}

func (app *App) publish() {
	w, h := app.canvas.Size()
	app.Store.UpdateFrame(app.Engine.Frames(), state.SurfaceInfo{Width: w, Height: h, Columns: app.Engine.TraceCount()})
	app.Store.UpdateSplash(state.SplashInfo{
		Running: app.Splash.Running(),
		Visible: app.Splash.Visible(),
		Drawn:   app.Splash.Drawn(),
	})
	if app.Store.Snapshot().Phase == state.ERROR && app.Engine.State() == rain.Stopped {
		return
	}
	app.Store.SetPhase(phaseOf(app.Engine.State()))
}

func phaseOf(s rain.State) state.Phase {
	switch s {
	case rain.Running:
		return state.RUNNING
	case rain.Paused:
		return state.PAUSED
	default:
		return state.STOPPED
	}
}
