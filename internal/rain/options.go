package rain

import (
	"github.com/rook-computer/matrixrain/internal/fonts"
	"github.com/rook-computer/matrixrain/internal/render"
)

// DefaultFontSize is used when the configured size is not positive.
const DefaultFontSize = 12

// SymbolSource returns the candidate glyphs for a tick. A nil or empty result
// falls back to a pseudo-random code point.
type SymbolSource func() []string

// StaticSymbols returns a SymbolSource that always yields symbols.
func StaticSymbols(symbols ...string) SymbolSource {
	list := append([]string(nil), symbols...)
	return func() []string { return list }
}

type Logger interface {
	Infof(component string, format string, args ...interface{})
	Errorf(component string, format string, args ...interface{})
}

type noopLogger struct{}

func (noopLogger) Infof(string, string, ...interface{})  {}
func (noopLogger) Errorf(string, string, ...interface{}) {}

// Options configure a new Engine. Zero-valued collaborators get defaults.
type Options struct {
	Font    fonts.Source
	Symbols SymbolSource

	Surface render.Surface
	Loader  fonts.Loader
	Random  Random
	Logger  Logger
}

func (o Options) withDefaults() Options {
	out := o
	if out.Font.Size <= 0 {
		out.Font.Size = DefaultFontSize
	}
	if out.Surface == nil {
		out.Surface = render.NewCanvas(0, 0)
	}
	if out.Loader == nil {
		out.Loader = fonts.NewDefaultLoader()
	}
	if out.Random == nil {
		out.Random = NewRandom()
	}
	if out.Logger == nil {
		out.Logger = noopLogger{}
	}
	return out
}

// DynamicOptions is a partial update applied at the start of the next tick.
// Nil fields leave the current value untouched.
type DynamicOptions struct {
	Symbols SymbolSource
	Palette render.Palette
}

func (d DynamicOptions) merge(next DynamicOptions) DynamicOptions {
	if next.Symbols != nil {
		d.Symbols = next.Symbols
	}
	if len(next.Palette) > 0 {
		d.Palette = next.Palette
	}
	return d
}
