package config

import (
	_ "embed"
	"time"

	"github.com/rook-computer/matrixrain/internal/fonts"
	"github.com/rook-computer/matrixrain/internal/render"
)

//go:embed defaults/config.yaml
var defaultConfigYAML []byte

const DefaultFPS = 60

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		FPS: DefaultFPS,
		Font: fonts.Source{
			Family:      "Go Mono",
			File:        "builtin:gomono",
			Size:        12,
			Descriptors: fonts.Descriptors{DPI: fonts.DefaultDPI, Hinting: "none"},
		},
		Splash: SplashConfig{
			Interval:   200 * time.Millisecond,
			Texts:      []string{"wake up", "follow the white rabbit", "knock, knock"},
			Size:       40,
			PixelRatio: 1,
			Margin:     200,
		},
		Display: Display{
			Framebuffer: render.DefaultFramebufferPath,
			Width:       1280,
			Height:      720,
		},
	}
}
