// Package bundle describes how the compiled wasm module, the generated
// script and the static assets of a project are laid out in the output
// directory, and performs the asset copy.
package bundle

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/shaharia-lab/wasmdev/internal/envmode"
	"github.com/shaharia-lab/wasmdev/internal/style"
)

// DefaultDevPort is the dev-server port used unless the project file sets one.
const DefaultDevPort = 8000

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = errors.New("invalid bundle config")

// Config is the resolved project configuration.
type Config struct {
	// Root is the project directory every relative path is resolved against.
	Root string `yaml:"-"`
	// Mode is the environment mode the toggles were derived from.
	Mode envmode.Mode `yaml:"-"`

	Entry        string       `yaml:"entry"`
	Output       Output       `yaml:"output"`
	DevServer    DevServer    `yaml:"devServer"`
	Optimization Optimization `yaml:"optimization"`
	CSS          CSSOutput    `yaml:"css"`
	Copy         []CopyRule   `yaml:"copy"`
	WasmPack     WasmPack     `yaml:"wasmPack"`
	Watch        *bool        `yaml:"watch,omitempty"`
	Style        style.Config `yaml:"style"`
}

// Output names the generated artifacts.
type Output struct {
	Path               string `yaml:"path"`
	Filename           string `yaml:"filename"`
	WasmModuleFilename string `yaml:"webassemblyModuleFilename"`
}

// DevServer configures the development server.
type DevServer struct {
	// ContentBase defaults to the output path.
	ContentBase string `yaml:"contentBase"`
	Port        int    `yaml:"port"`
	Compress    *bool  `yaml:"compress,omitempty"`
}

// Optimization toggles minification of the generated assets.
type Optimization struct {
	Minimize *bool `yaml:"minimize,omitempty"`
}

// CSSOutput names the extracted stylesheet.
type CSSOutput struct {
	Filename string `yaml:"filename"`
}

// CopyRule copies a source directory into a destination directory.
type CopyRule struct {
	From string `yaml:"from"`
	To   string `yaml:"to"`
}

// WasmPack configures the external wasm compiler.
type WasmPack struct {
	CrateDirectory string `yaml:"crateDirectory"`
	ExtraArgs      string `yaml:"extraArgs"`
	OutDir         string `yaml:"outDir"`
	OutName        string `yaml:"outName"`
}

// Default returns the configuration for root in mode.
func Default(root string, mode envmode.Mode) *Config {
	c := &Config{
		Root:  root,
		Mode:  mode,
		Entry: "./bootstrap.js",
		Output: Output{
			Path:               "dist",
			Filename:           "app.js",
			WasmModuleFilename: "app.wasm",
		},
		DevServer: DevServer{Port: DefaultDevPort},
		CSS:       CSSOutput{Filename: "style.css"},
		Copy:      []CopyRule{{From: "./static", To: ""}},
		WasmPack: WasmPack{
			CrateDirectory: ".",
			ExtraArgs:      "--no-typescript",
			OutDir:         "pkg",
			OutName:        "app",
		},
		Style: style.DefaultConfig(),
	}
	c.applyModeDefaults()
	return c
}

// Load overlays the YAML project file at path onto the defaults. A missing
// file yields the defaults. Toggles the file leaves unset follow mode.
func Load(path, root string, mode envmode.Mode) (*Config, error) {
	c := Default(root, mode)
	c.DevServer.Compress = nil
	c.Optimization.Minimize = nil
	c.Watch = nil

	//nolint:gosec // project file path is supplied by the operator
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("reading project file: %w", err)
	default:
		if err := yaml.Unmarshal(data, c); err != nil {
			return nil, fmt.Errorf("parsing project file %s: %w", path, err)
		}
	}

	c.applyModeDefaults()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) applyModeDefaults() {
	prod := c.Mode.IsProduction()
	if c.DevServer.Compress == nil {
		c.DevServer.Compress = boolPtr(prod)
	}
	if c.Optimization.Minimize == nil {
		c.Optimization.Minimize = boolPtr(prod)
	}
	if c.Watch == nil {
		c.Watch = boolPtr(!prod)
	}
}

// Validate checks the fields the rest of the tool relies on.
func (c *Config) Validate() error {
	var problems []string
	if c.Output.Path == "" {
		problems = append(problems, "output.path is empty")
	}
	if c.Output.Filename == "" {
		problems = append(problems, "output.filename is empty")
	}
	if !strings.HasSuffix(c.Output.WasmModuleFilename, ".wasm") {
		problems = append(problems, fmt.Sprintf("output.webassemblyModuleFilename %q must end in .wasm", c.Output.WasmModuleFilename))
	}
	if c.CSS.Filename == "" {
		problems = append(problems, "css.filename is empty")
	}
	if c.DevServer.Port < 1 || c.DevServer.Port > 65535 {
		problems = append(problems, fmt.Sprintf("devServer.port %d out of range", c.DevServer.Port))
	}
	for i, r := range c.Copy {
		if r.From == "" {
			problems = append(problems, fmt.Sprintf("copy[%d].from is empty", i))
		}
	}
	if err := c.Style.Validate(); err != nil {
		problems = append(problems, err.Error())
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}

// OutputDir is the absolute output directory.
func (c *Config) OutputDir() string {
	return c.resolve(c.Output.Path)
}

// ContentBase is the directory the dev server serves.
func (c *Config) ContentBase() string {
	if c.DevServer.ContentBase == "" {
		return c.OutputDir()
	}
	return c.resolve(c.DevServer.ContentBase)
}

// StylesheetPath is where the style pipeline writes its result.
func (c *Config) StylesheetPath() string {
	return filepath.Join(c.OutputDir(), c.CSS.Filename)
}

// CompressEnabled reports whether the dev server gzips responses.
func (c *Config) CompressEnabled() bool { return deref(c.DevServer.Compress) }

// MinimizeEnabled reports whether generated assets are minified.
func (c *Config) MinimizeEnabled() bool { return deref(c.Optimization.Minimize) }

// WatchEnabled reports whether sources are watched for changes.
func (c *Config) WatchEnabled() bool { return deref(c.Watch) }

// CopySources returns the absolute source directory of every copy rule.
func (c *Config) CopySources() []string {
	dirs := make([]string, len(c.Copy))
	for i, r := range c.Copy {
		dirs[i] = c.resolve(r.From)
	}
	return dirs
}

// copyTarget resolves a rule's destination; an empty To means the output dir.
func (c *Config) copyTarget(r CopyRule) string {
	if r.To == "" {
		return c.OutputDir()
	}
	return c.resolve(r.To)
}

func (c *Config) resolve(p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(c.Root, p)
}

// YAML renders the resolved configuration.
func (c *Config) YAML() ([]byte, error) {
	out, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("encoding config: %w", err)
	}
	return out, nil
}

func boolPtr(b bool) *bool { return &b }

func deref(b *bool) bool { return b != nil && *b }
