package config

import (
	"net/url"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/adrg/xdg"
)

func TestEmbeddedDefaultsMatchHardcoded(t *testing.T) {
	cfg, err := Parse(defaultConfigYAML)
	if err != nil {
		t.Fatalf("embedded defaults invalid: %v", err)
	}
	want := Default()
	want.Symbols = []string{}
	if !reflect.DeepEqual(cfg, want) {
		t.Errorf("embedded defaults drifted:\n got %+v\nwant %+v", cfg, want)
	}
}

func TestParseOverridesDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`
font:
  family: Matrix
  file: matrix.regular.ttf
  size: 10
  colors: ["#00FF00"]
symbols: ["0", "1"]
splash:
  enable: true
  interval: 500ms
`))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Font.Family != "Matrix" || cfg.Font.Size != 10 {
		t.Errorf("font = %+v", cfg.Font)
	}
	if cfg.FPS != DefaultFPS {
		t.Errorf("fps = %d, want default %d", cfg.FPS, DefaultFPS)
	}
	if !cfg.Splash.Enable || cfg.Splash.Interval != 500*time.Millisecond {
		t.Errorf("splash = %+v", cfg.Splash)
	}
	if cfg.Splash.Size != 40 {
		t.Errorf("splash size should keep default, got %v", cfg.Splash.Size)
	}
	if !reflect.DeepEqual(cfg.Symbols, []string{"0", "1"}) {
		t.Errorf("symbols = %v", cfg.Symbols)
	}
	if cfg.FrameInterval() != time.Second/60 {
		t.Errorf("frame interval = %v", cfg.FrameInterval())
	}
}

func TestParseRejectsInvalid(t *testing.T) {
	tests := map[string]string{
		"fps":          "fps: 0",
		"font size":    "font: {size: -1}",
		"font file":    `font: {file: ""}`,
		"font colors":  `font: {colors: ["lime"]}`,
		"splash color": `splash: {colors: ["#12"]}`,
		"display":      "display: {width: -1}",
		"yaml":         "fps: [",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := Parse([]byte(doc)); err == nil {
				t.Errorf("expected error for %q", doc)
			}
		})
	}
}

func TestLoadSearchOrder(t *testing.T) {
	home := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", home)
	t.Setenv("XDG_CONFIG_DIRS", t.TempDir())
	xdg.Reload()
	defer xdg.Reload()

	// Nothing on disk: embedded default.
	cfg, path, err := Load("")
	if err != nil || path != "" {
		t.Fatalf("Load default: path=%q err=%v", path, err)
	}
	if cfg.Font.File != "builtin:gomono" {
		t.Errorf("default font = %q", cfg.Font.File)
	}

	// XDG user config wins over the default.
	userPath := filepath.Join(home, "matrixrain", "config.yaml")
	if err := os.MkdirAll(filepath.Dir(userPath), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(userPath, []byte("fps: 30\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, path, err = Load("")
	if err != nil {
		t.Fatal(err)
	}
	if path != userPath || cfg.FPS != 30 {
		t.Errorf("user config not used: path=%q fps=%d", path, cfg.FPS)
	}

	// An explicit path wins over everything.
	custom := filepath.Join(t.TempDir(), "custom.yaml")
	if err := os.WriteFile(custom, []byte("fps: 24\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, path, err = Load(custom)
	if err != nil || path != custom || cfg.FPS != 24 {
		t.Errorf("custom config: path=%q fps=%d err=%v", path, cfg.FPS, err)
	}

	if _, _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("missing custom path should fail")
	}
}

func TestSymbolsFromQuery(t *testing.T) {
	tests := []struct {
		query string
		want  []string
	}{
		{"symbols=0,1", []string{"0", "1"}},
		{"symbols=m,%20x%20,,t", []string{"m", "x", "t"}},
		{"symbols=", nil},
		{"other=1", nil},
	}
	for _, tt := range tests {
		q, err := url.ParseQuery(tt.query)
		if err != nil {
			t.Fatal(err)
		}
		if got := SymbolsFromQuery(q); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("SymbolsFromQuery(%q) = %v, want %v", tt.query, got, tt.want)
		}
	}
}
