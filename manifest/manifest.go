// Package manifest handles render.toml run configuration.
package manifest

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Manifest describes one render run: which group image to load, which
// template to render, and the attributes and output settings to use.
type Manifest struct {
	Render     Render         `toml:"render"`
	Attributes map[string]any `toml:"attributes"`

	// Dir is the directory containing the render.toml file (set at load
	// time); relative paths resolve against it.
	Dir string `toml:"-"`
}

// Render configures the template and output.
type Render struct {
	Image     string `toml:"image"`
	Entry     string `toml:"entry"`
	Locale    string `toml:"locale"`
	LineWidth int    `toml:"line-width"`
	Debug     bool   `toml:"debug"`
}

// Load parses a render.toml file from the given directory.
func Load(dir string) (*Manifest, error) {
	path := filepath.Join(dir, "render.toml")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	var m Manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}
	if m.Render.Image == "" {
		return nil, fmt.Errorf("%s: render.image is required", path)
	}
	if m.Render.Entry == "" {
		return nil, fmt.Errorf("%s: render.entry is required", path)
	}
	m.Dir = dir
	return &m, nil
}

// ImagePath returns the group image path resolved against the manifest
// directory.
func (m *Manifest) ImagePath() string {
	if filepath.IsAbs(m.Render.Image) {
		return m.Render.Image
	}
	return filepath.Join(m.Dir, m.Render.Image)
}
