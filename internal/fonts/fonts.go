// Package fonts loads the font used to draw rain glyphs and splashes.
//
// A Resource is declared up front and loaded on demand. Two parsed forms are
// kept: a freetype font for the per-tick glyph faces and an sfnt/opentype font
// for the overlay faces and metadata.
package fonts

import (
	"context"
	"fmt"
	"strings"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
)

// DefaultDPI matches CSS pixels, so a size in points renders as size*4/3 pixels.
const DefaultDPI = 96

// Descriptors tune how faces are rasterised.
type Descriptors struct {
	DPI     float64 `yaml:"dpi" json:"dpi,omitempty"`
	Hinting string  `yaml:"hinting" json:"hinting,omitempty"` // none | vertical | full
}

// Source declares a font: a family name, where to fetch it and its point size.
type Source struct {
	Family      string      `yaml:"family" json:"family"`
	File        string      `yaml:"file" json:"file"`
	Size        float64     `yaml:"size" json:"size"`
	Colors      []string    `yaml:"colors" json:"colors,omitempty"`
	Descriptors Descriptors `yaml:"descriptors" json:"descriptors"`
}

type faceKey struct {
	size    float64
	overlay bool
}

// Resource is a declared font that is loaded at most once.
// It is not safe for concurrent use.
type Resource struct {
	src    Source
	loader Loader

	loaded     bool
	ttFont     *truetype.Font
	otFont     *opentype.Font
	familyName string
	faces      map[faceKey]font.Face
}

func NewResource(src Source, loader Loader) *Resource {
	if loader == nil {
		loader = NewDefaultLoader()
	}
	return &Resource{src: src, loader: loader, faces: make(map[faceKey]font.Face)}
}

// Family returns the declared family name.
func (r *Resource) Family() string { return r.src.Family }

// EmbeddedFamily returns the family recorded in the font file, if loaded.
func (r *Resource) EmbeddedFamily() string { return r.familyName }

func (r *Resource) Size() float64 { return r.src.Size }

func (r *Resource) Source() Source { return r.src }

func (r *Resource) Loaded() bool { return r.loaded }

// Load fetches and parses the font. A loaded resource returns nil immediately.
// Any failure is reported as a *ResourceLoadError.
func (r *Resource) Load(ctx context.Context) error {
	if r.loaded {
		return nil
	}
	data, err := r.loader.Load(ctx, r.src.File)
	if err != nil {
		return r.loadError(err)
	}
	otf, err := opentype.Parse(data)
	if err != nil {
		return r.loadError(fmt.Errorf("parse: %w", err))
	}
	ttf, err := truetype.Parse(data)
	if err != nil {
		return r.loadError(fmt.Errorf("truetype parse: %w", err))
	}
	if name, nerr := otf.Name(nil, sfnt.NameIDFamily); nerr == nil {
		r.familyName = name
	}
	r.otFont = otf
	r.ttFont = ttf
	r.loaded = true
	return nil
}

func (r *Resource) loadError(err error) error {
	return &ResourceLoadError{Family: r.src.Family, Source: r.src.File, Err: err}
}

// Face returns the glyph face at size points, cached per size.
func (r *Resource) Face(size float64) (font.Face, error) {
	if !r.loaded {
		return nil, fmt.Errorf("font %q not loaded", r.src.Family)
	}
	key := faceKey{size: size}
	if face, ok := r.faces[key]; ok {
		return face, nil
	}
	face := truetype.NewFace(r.ttFont, &truetype.Options{
		Size:    size,
		DPI:     r.dpi(),
		Hinting: r.hinting(),
	})
	r.faces[key] = face
	return face, nil
}

// OverlayFace returns a face at size points built from the sfnt parse.
func (r *Resource) OverlayFace(size float64) (font.Face, error) {
	if !r.loaded {
		return nil, fmt.Errorf("font %q not loaded", r.src.Family)
	}
	key := faceKey{size: size, overlay: true}
	if face, ok := r.faces[key]; ok {
		return face, nil
	}
	face, err := opentype.NewFace(r.otFont, &opentype.FaceOptions{
		Size:    size,
		DPI:     r.dpi(),
		Hinting: r.hinting(),
	})
	if err != nil {
		return nil, fmt.Errorf("overlay face %.1fpt: %w", size, err)
	}
	r.faces[key] = face
	return face, nil
}

func (r *Resource) dpi() float64 {
	if r.src.Descriptors.DPI > 0 {
		return r.src.Descriptors.DPI
	}
	return DefaultDPI
}

func (r *Resource) hinting() font.Hinting {
	switch strings.ToLower(r.src.Descriptors.Hinting) {
	case "vertical":
		return font.HintingVertical
	case "full":
		return font.HintingFull
	default:
		return font.HintingNone
	}
}
