package style

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/shaharia-lab/wasmdev/internal/envmode"
)

// Stage is one step of the style pipeline.
type Stage interface {
	Name() string
	Apply(ctx context.Context, css string) (string, error)
}

// CommandStage runs an external tool that filters CSS from stdin to
// stdout. With no command it passes its input through.
type CommandStage struct {
	name string
	argv []string
	dir  string
}

func (s *CommandStage) Name() string { return s.name }

// Apply runs the command, or returns css unchanged when none is set.
func (s *CommandStage) Apply(ctx context.Context, css string) (string, error) {
	if len(s.argv) == 0 {
		return css, nil
	}
	//nolint:gosec // command is taken from the project file
	cmd := exec.CommandContext(ctx, s.argv[0], s.argv[1:]...)
	cmd.Dir = s.dir
	cmd.Stdin = strings.NewReader(css)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("%s: %w: %s", s.name, err, strings.TrimSpace(stderr.String()))
	}
	return stdout.String(), nil
}

// PurgeStage scans the content globs and purges unused rules.
type PurgeStage struct {
	root string
	cfg  Config
}

func (s *PurgeStage) Name() string { return PluginPurge }

func (s *PurgeStage) Apply(ctx context.Context, css string) (string, error) {
	keep, err := ScanContent(ctx, s.root, s.cfg.Content, s.cfg.Whitelist)
	if err != nil {
		return "", fmt.Errorf("%s: scanning content: %w", PluginPurge, err)
	}
	out, err := Purge(css, keep)
	if err != nil {
		return "", fmt.Errorf("%s: %w", PluginPurge, err)
	}
	return out, nil
}

// StageMinify names the optional final stage that minifies the output.
const StageMinify = "minify"

// Pipeline applies the stages active for a mode, in order.
type Pipeline struct {
	root   string
	cfg    Config
	stages []Stage
	minify bool
}

// PipelineOption configures a Pipeline.
type PipelineOption func(*Pipeline)

// WithMinify appends the minify stage after the plugins when enabled.
func WithMinify(enabled bool) PipelineOption {
	return func(p *Pipeline) { p.minify = enabled }
}

// NewPipeline builds the pipeline for mode. root is the project root that
// content globs and the input path are resolved against.
func NewPipeline(cfg Config, root string, mode envmode.Mode, opts ...PipelineOption) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	p := &Pipeline{root: root, cfg: cfg}
	for _, opt := range opts {
		opt(p)
	}
	for _, name := range Plugins(mode) {
		switch name {
		case PluginPurge:
			p.stages = append(p.stages, &PurgeStage{root: root, cfg: cfg})
		default:
			p.stages = append(p.stages, &CommandStage{name: name, argv: cfg.Commands[name], dir: root})
		}
	}
	if p.minify {
		p.stages = append(p.stages, NewMinifyStage())
	}
	return p, nil
}

// Names lists the stage names in order.
func (p *Pipeline) Names() []string {
	names := make([]string, len(p.stages))
	for i, s := range p.stages {
		names[i] = s.Name()
	}
	return names
}

// Run feeds css through every stage.
func (p *Pipeline) Run(ctx context.Context, css string) (string, error) {
	for _, s := range p.stages {
		out, err := s.Apply(ctx, css)
		if err != nil {
			return "", err
		}
		css = out
	}
	return css, nil
}

// Build reads the configured input, runs the pipeline and writes the
// result to outPath, creating its directory.
func (p *Pipeline) Build(ctx context.Context, outPath string) error {
	in := p.cfg.Input
	if !filepath.IsAbs(in) {
		in = filepath.Join(p.root, in)
	}
	//nolint:gosec // input path comes from the project file
	src, err := os.ReadFile(in)
	if err != nil {
		return fmt.Errorf("reading stylesheet: %w", err)
	}
	out, err := p.Run(ctx, string(src))
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0750); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	if err := os.WriteFile(outPath, []byte(out), 0600); err != nil {
		return fmt.Errorf("writing stylesheet: %w", err)
	}
	return nil
}
