// Package config provides YAML-based configuration loading for matrixrain.
package config

import (
	"fmt"
	"time"

	"github.com/rook-computer/matrixrain/internal/fonts"
	"github.com/rook-computer/matrixrain/internal/render"
)

// Config is the host configuration handed to the engine and the overlay.
type Config struct {
	FPS     int          `yaml:"fps"`
	Font    fonts.Source `yaml:"font"`
	Symbols []string     `yaml:"symbols"`
	Splash  SplashConfig `yaml:"splash"`
	Display Display      `yaml:"display"`
}

// SplashConfig configures the overlay.
type SplashConfig struct {
	Enable     bool          `yaml:"enable"`
	Interval   time.Duration `yaml:"interval"`
	Colors     []string      `yaml:"colors"`
	Texts      []string      `yaml:"texts"`
	Size       float64       `yaml:"size"`
	PixelRatio float64       `yaml:"pixel_ratio"`
	Margin     int           `yaml:"margin"`
}

// Display picks the output. Width and Height size the virtual container used by
// the simulator; the device binary takes its size from the framebuffer.
type Display struct {
	Framebuffer string `yaml:"framebuffer"`
	Width       int    `yaml:"width"`
	Height      int    `yaml:"height"`
}

// FrameInterval converts FPS to a ticker period.
func (c Config) FrameInterval() time.Duration {
	fps := c.FPS
	if fps <= 0 {
		fps = DefaultFPS
	}
	return time.Second / time.Duration(fps)
}

// SplashPalette parses the overlay colours. Empty means "use the rain palette".
func (c Config) SplashPalette() (render.Palette, error) {
	return render.ParsePalette(c.Splash.Colors)
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if c.FPS < 1 || c.FPS > 240 {
		return fmt.Errorf("fps out of range 1-240 (got %d)", c.FPS)
	}
	if c.Font.File == "" {
		return fmt.Errorf("font.file must be set")
	}
	if c.Font.Size <= 0 {
		return fmt.Errorf("font.size must be positive (got %v)", c.Font.Size)
	}
	if _, err := render.ParsePalette(c.Font.Colors); err != nil {
		return fmt.Errorf("font.colors: %w", err)
	}
	if _, err := c.SplashPalette(); err != nil {
		return fmt.Errorf("splash.colors: %w", err)
	}
	if c.Splash.Interval < 0 {
		return fmt.Errorf("splash.interval must not be negative (got %v)", c.Splash.Interval)
	}
	if c.Display.Width < 0 || c.Display.Height < 0 {
		return fmt.Errorf("display size must not be negative (got %dx%d)", c.Display.Width, c.Display.Height)
	}
	return nil
}
