package assets

import (
	"embed"
	"io/fs"

	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"
)

//go:embed web
var webFS embed.FS

// WebUI is an embedded filesystem rooted at internal/assets/web.
// It contains the control page served at '/'.
var WebUI fs.FS

// builtinFonts maps the names accepted by "builtin:<name>" font locators to TTF bytes.
var builtinFonts = map[string][]byte{
	"gomono":    gomono.TTF,
	"goregular": goregular.TTF,
}

// BuiltinFont returns the embedded TTF registered under name.
func BuiltinFont(name string) ([]byte, bool) {
	data, ok := builtinFonts[name]
	return data, ok
}

func init() {
	// Embed paths include the leading directory; strip it for serving at '/'.
	sub, err := fs.Sub(webFS, "web")
	if err != nil {
		panic(err)
	}
	WebUI = sub
}
