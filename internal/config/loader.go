package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"
)

const (
	// UserConfigName is looked up in the XDG config directories.
	UserConfigName = "matrixrain/config.yaml"

	// LocalConfigPath is tried relative to the working directory.
	LocalConfigPath = "configs/matrixrain.yaml"
)

// Load reads the configuration.
// Search order: customPath -> $XDG_CONFIG_HOME/matrixrain/config.yaml (and
// XDG_CONFIG_DIRS) -> ./configs/matrixrain.yaml -> embedded default.
// Files are merged over the defaults, so they only need the keys they change.
// It also returns the path that was used, or "" for the embedded default.
func Load(customPath string) (Config, string, error) {
	if customPath != "" {
		cfg, err := loadFile(customPath)
		if err != nil {
			return cfg, customPath, err
		}
		return cfg, customPath, nil
	}

	if userPath, err := xdg.SearchConfigFile(UserConfigName); err == nil {
		cfg, err := loadFile(userPath)
		return cfg, userPath, err
	}

	if _, err := os.Stat(LocalConfigPath); err == nil {
		cfg, err := loadFile(LocalConfigPath)
		return cfg, LocalConfigPath, err
	}

	cfg, err := Parse(defaultConfigYAML)
	if err != nil {
		return Default(), "", nil // Fallback to hardcoded if embed fails
	}
	return cfg, "", nil
}

func loadFile(path string) (Config, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML over Default and validates the result.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// SymbolsFromQuery maps "?symbols=a,b,c" to a symbol list. A missing or blank
// parameter returns nil, which selects pseudo-random glyphs.
func SymbolsFromQuery(query url.Values) []string {
	raw, ok := query["symbols"]
	if !ok || len(raw) == 0 {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw[0], ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
