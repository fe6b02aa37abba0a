// Package devloop ties the bundle layout, the style pipeline and the
// watcher together: a full build on start, then incremental copies and
// stylesheet rebuilds as sources change.
package devloop

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"

	"github.com/shaharia-lab/wasmdev/internal/bundle"
	"github.com/shaharia-lab/wasmdev/internal/eventbus"
	"github.com/shaharia-lab/wasmdev/internal/metrics"
	"github.com/shaharia-lab/wasmdev/internal/style"
)

// Builder rebuilds the output directory of one project.
type Builder struct {
	cfg      *bundle.Config
	pipeline *style.Pipeline
	content  *style.ContentMatcher
	input    string
	bus      eventbus.EventBus
	logger   *slog.Logger
	metrics  *metrics.Metrics
	// compile runs wasm-pack; nil disables module compilation.
	compile func(ctx context.Context, cfg *bundle.Config) error
}

// Option configures a Builder.
type Option func(*Builder)

// WithWasmCompiler enables rebuilding the module with compile whenever a
// Rust source or the crate manifest changes.
func WithWasmCompiler(compile func(ctx context.Context, cfg *bundle.Config) error) Option {
	return func(b *Builder) { b.compile = compile }
}

// New creates a Builder. bus may be nil when no events are wanted.
func New(cfg *bundle.Config, bus eventbus.EventBus, logger *slog.Logger, m *metrics.Metrics, opts ...Option) (*Builder, error) {
	pipeline, err := style.NewPipeline(cfg.Style, cfg.Root, cfg.Mode, style.WithMinify(cfg.MinimizeEnabled()))
	if err != nil {
		return nil, fmt.Errorf("building style pipeline: %w", err)
	}
	content, err := style.NewContentMatcher(cfg.Root, cfg.Style.Content)
	if err != nil {
		return nil, err
	}
	input := cfg.Style.Input
	if !filepath.IsAbs(input) {
		input = filepath.Join(cfg.Root, input)
	}
	b := &Builder{
		cfg:      cfg,
		pipeline: pipeline,
		content:  content,
		input:    filepath.Clean(input),
		bus:      bus,
		logger:   logger,
		metrics:  m,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

// Plugins lists the active style stages.
func (b *Builder) Plugins() []string {
	return b.pipeline.Names()
}

// BuildAll copies every static asset and rebuilds the stylesheet.
func (b *Builder) BuildAll(ctx context.Context) (bundle.CopyReport, error) {
	if err := b.BuildWasm(ctx); err != nil {
		return bundle.CopyReport{}, err
	}
	report, err := bundle.CopyAssets(ctx, b.cfg)
	if err != nil {
		b.metrics.AssetCopies.WithLabelValues(metrics.Result(err)).Inc()
		return report, err
	}
	b.metrics.AssetCopies.WithLabelValues(metrics.Result(nil)).Add(float64(report.Files))
	if _, err := bundle.PublishEntry(b.cfg); err != nil {
		return report, err
	}
	b.logger.Info("assets copied",
		slog.Int("files", report.Files),
		slog.Int64("bytes", report.Bytes),
		slog.String("output", b.cfg.OutputDir()),
	)
	return report, b.BuildStyle(ctx)
}

// BuildWasm compiles the crate and publishes the generated script and
// module. It is a no-op without a compiler.
func (b *Builder) BuildWasm(ctx context.Context) error {
	if b.compile == nil {
		return nil
	}
	if err := b.compile(ctx, b.cfg); err != nil {
		return err
	}
	if err := bundle.PublishArtifacts(b.cfg); err != nil {
		return err
	}
	b.logger.Info("wasm module built",
		slog.String("module", filepath.Join(b.cfg.OutputDir(), b.cfg.Output.WasmModuleFilename)),
	)
	return nil
}

// BuildStyle runs the style pipeline into the output stylesheet.
func (b *Builder) BuildStyle(ctx context.Context) error {
	out := b.cfg.StylesheetPath()
	err := b.pipeline.Build(ctx, out)
	b.metrics.StyleBuilds.WithLabelValues(metrics.Result(err)).Inc()
	if err != nil {
		return fmt.Errorf("building stylesheet: %w", err)
	}
	b.logger.Info("stylesheet built",
		slog.String("output", out),
		slog.Any("plugins", b.pipeline.Names()),
	)
	b.publish(eventbus.StyleRebuilt, b.input, out)
	return nil
}

// WatchDirs returns every directory whose changes affect the output.
func (b *Builder) WatchDirs() []string {
	seen := make(map[string]struct{})
	add := func(dir string) { seen[filepath.Clean(dir)] = struct{}{} }

	for _, dir := range b.cfg.CopySources() {
		add(dir)
	}
	for _, dir := range b.content.Dirs() {
		add(dir)
	}
	if b.compile != nil {
		add(b.crateSources())
	}
	add(filepath.Dir(b.input))

	out := b.cfg.OutputDir()
	dirs := make([]string, 0, len(seen))
	for dir := range seen {
		if dir == out {
			continue
		}
		dirs = append(dirs, dir)
	}
	sort.Strings(dirs)
	return dirs
}

// Listener returns the event handler that applies source changes.
func (b *Builder) Listener(ctx context.Context) eventbus.Listener {
	return func(e eventbus.Event) {
		switch e.Kind {
		case eventbus.AssetChanged:
			b.copyChanged(e.Path)
		case eventbus.AssetRemoved:
			b.removeCopied(e.Path)
		default:
			return
		}
		if b.affectsWasm(e.Path) {
			if err := b.BuildWasm(ctx); err != nil {
				b.logger.Error("wasm rebuild failed", slog.String("error", err.Error()))
			}
		}
		if b.affectsStyle(e.Path) {
			if err := b.BuildStyle(ctx); err != nil {
				b.logger.Error("stylesheet rebuild failed", slog.String("error", err.Error()))
			}
		}
	}
}

func (b *Builder) copyChanged(path string) {
	dst, err := bundle.CopyPath(b.cfg, path)
	if errors.Is(err, bundle.ErrOutsideSources) {
		return
	}
	b.metrics.AssetCopies.WithLabelValues(metrics.Result(err)).Inc()
	if err != nil {
		b.logger.Error("asset copy failed", slog.String("path", path), slog.String("error", err.Error()))
		return
	}
	b.logger.Debug("asset copied", slog.String("path", path), slog.String("dest", dst))
	b.publish(eventbus.AssetCopied, path, dst)
}

func (b *Builder) removeCopied(path string) {
	dst, err := bundle.RemovePath(b.cfg, path)
	if errors.Is(err, bundle.ErrOutsideSources) {
		return
	}
	if err != nil {
		b.logger.Error("asset removal failed", slog.String("path", path), slog.String("error", err.Error()))
		return
	}
	b.logger.Debug("asset removed", slog.String("path", path), slog.String("dest", dst))
}

func (b *Builder) affectsStyle(path string) bool {
	return filepath.Clean(path) == b.input || b.content.Match(path)
}

func (b *Builder) affectsWasm(path string) bool {
	if b.compile == nil {
		return false
	}
	crate := filepath.Join(b.cfg.Root, b.cfg.WasmPack.CrateDirectory)
	if filepath.Clean(path) == filepath.Join(crate, "Cargo.toml") {
		return true
	}
	rel, err := filepath.Rel(b.crateSources(), path)
	return err == nil && !strings.HasPrefix(rel, "..") && filepath.Ext(path) == ".rs"
}

func (b *Builder) crateSources() string {
	return filepath.Join(b.cfg.Root, b.cfg.WasmPack.CrateDirectory, "src")
}

func (b *Builder) publish(kind eventbus.Kind, path, dest string) {
	if b.bus != nil {
		b.bus.Publish(kind, path, dest)
	}
}
