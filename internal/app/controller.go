package app

import (
	"context"
	"errors"
	"image"

	"github.com/rook-computer/matrixrain/internal/rain"
	"github.com/rook-computer/matrixrain/internal/render"
	"github.com/rook-computer/matrixrain/internal/splash"
	"github.com/rook-computer/matrixrain/internal/state"
)

var (
	// ErrNotResizable is returned when the container has a fixed size.
	ErrNotResizable = errors.New("display size is fixed")

	// ErrVisibilityFixed is returned when visibility comes from the console.
	ErrVisibilityFixed = errors.New("visibility is controlled by the console")
)

// The methods below are the control surface used by the HTTP API. Each runs on
// the loop goroutine.

func (app *App) Status() state.State { return app.Store.Snapshot() }

// Start starts the engine, loading the font on first use.
func (app *App) Start(ctx context.Context) error {
	var err error
	if doErr := app.Do(ctx, func() { err = app.startEngine(ctx) }); doErr != nil {
		return doErr
	}
	return err
}

func (app *App) Stop(ctx context.Context) error {
	return app.Do(ctx, app.stopEngine)
}

// Pause toggles between running and paused and returns the new state.
func (app *App) Pause(ctx context.Context) (rain.State, error) {
	var s rain.State
	err := app.Do(ctx, func() { s = app.Engine.Pause() })
	return s, err
}

func (app *App) Clear(ctx context.Context) error {
	return app.Do(ctx, app.Engine.Clear)
}

// SetOptions queues a symbol and palette change for the next tick. A nil
// symbols slice leaves the symbols alone; an empty one selects random glyphs.
func (app *App) SetOptions(ctx context.Context, symbols []string, palette render.Palette) error {
	opts := rain.DynamicOptions{Palette: palette}
	if symbols != nil {
		if len(symbols) == 0 {
			opts.Symbols = func() []string { return nil }
		} else {
			opts.Symbols = rain.StaticSymbols(symbols...)
		}
	}
	return app.Do(ctx, func() { app.Engine.SetOptions(opts) })
}

// Resize changes the virtual container. The engine is notified synchronously.
func (app *App) Resize(ctx context.Context, width, height int) error {
	vc, ok := app.Container.(*render.VirtualContainer)
	if !ok {
		return ErrNotResizable
	}
	return app.Do(ctx, func() { vc.SetSize(width, height) })
}

// SetVisible toggles host-controlled visibility.
func (app *App) SetVisible(ctx context.Context, visible bool) error {
	sv, ok := app.visibility.(*splash.StaticVisibility)
	if !ok {
		return ErrVisibilityFixed
	}
	return app.Do(ctx, func() { sv.Hidden = !visible })
}

func (app *App) StartSplash(ctx context.Context) error {
	return app.Do(ctx, app.Splash.Start)
}

func (app *App) StopSplash(ctx context.Context) error {
	return app.Do(ctx, app.Splash.Stop)
}

// Frame returns an opaque copy of the current canvas.
func (app *App) Frame(ctx context.Context) (*image.RGBA, error) {
	var img *image.RGBA
	err := app.Do(ctx, func() { img = app.canvas.Snapshot() })
	return img, err
}
