package render

import (
	"fmt"
	"image/color"

	"github.com/lucasb-eyer/go-colorful"
)

// DefaultPaletteHex is the rain palette used when none is configured.
var DefaultPaletteHex = []string{
	"#225400",
	"#66FF00",
	"#155400",
	"#395410",
	"#7FFF00",
	"#005400",
	"#2A5400",
	"#3FFF00",
	"#00FF00",
	"#ADFF2F",
}

// Palette is an ordered set of opaque colours.
type Palette []color.RGBA

// ParsePalette parses "#rrggbb" strings. An empty input yields an empty palette.
func ParsePalette(hex []string) (Palette, error) {
	out := make(Palette, 0, len(hex))
	for i, h := range hex {
		c, err := colorful.Hex(h)
		if err != nil {
			return nil, fmt.Errorf("palette[%d] %q: %w", i, h, err)
		}
		r, g, b := c.RGB255()
		out = append(out, color.RGBA{R: r, G: g, B: b, A: 0xFF})
	}
	return out, nil
}

// DefaultPalette returns a fresh copy of the default rain palette.
func DefaultPalette() Palette {
	p, err := ParsePalette(DefaultPaletteHex)
	if err != nil {
		panic(err)
	}
	return p
}
