// Package style implements the style post-processing pipeline: the
// tailwind and autoprefixer passes, and in production a purge pass that
// drops rules whose class names never appear in the project templates.
package style

import (
	"fmt"

	"github.com/gobwas/glob"

	"github.com/shaharia-lab/wasmdev/internal/envmode"
)

// Plugin names, in pipeline order.
const (
	PluginTailwind     = "tailwindcss"
	PluginAutoprefixer = "autoprefixer"
	PluginPurge        = "purgecss"
)

// Config is the style section of the project file.
type Config struct {
	// Content lists the template globs scanned for class names.
	Content []string `yaml:"content"`
	// Whitelist names selectors that are always retained.
	Whitelist []string `yaml:"whitelist"`
	// Input is the stylesheet fed into the pipeline.
	Input string `yaml:"input"`
	// Commands maps an external plugin to the command that runs it. The
	// command reads CSS on stdin and writes CSS on stdout. Plugins without
	// a command pass their input through unchanged.
	Commands map[string][]string `yaml:"commands,omitempty"`
}

// DefaultConfig returns the configuration for a Rust/wasm project layout.
func DefaultConfig() Config {
	return Config{
		Content:   []string{"./src/*.rs", "./static/*.html"},
		Whitelist: []string{"html", "body"},
		Input:     "./styles/main.css",
	}
}

// Validate checks that every content glob compiles.
func (c Config) Validate() error {
	for _, pattern := range c.Content {
		if _, err := compileGlob(pattern); err != nil {
			return err
		}
	}
	return nil
}

// Plugins returns the plugin names active for mode. The purge pass only
// runs in production.
func Plugins(mode envmode.Mode) []string {
	plugins := []string{PluginTailwind, PluginAutoprefixer}
	if mode.IsProduction() {
		plugins = append(plugins, PluginPurge)
	}
	return plugins
}

func compileGlob(pattern string) (glob.Glob, error) {
	g, err := glob.Compile(normalizeGlob(pattern), '/')
	if err != nil {
		return nil, fmt.Errorf("invalid content pattern '%s': %w", pattern, err)
	}
	return g, nil
}
