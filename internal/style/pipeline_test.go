package style

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shaharia-lab/wasmdev/internal/envmode"
)

func TestPlugins(t *testing.T) {
	assert.Equal(t, []string{PluginTailwind, PluginAutoprefixer}, Plugins(envmode.Development))
	assert.Equal(t, []string{PluginTailwind, PluginAutoprefixer}, Plugins(envmode.Mode("staging")))
	assert.Equal(t, []string{PluginTailwind, PluginAutoprefixer, PluginPurge}, Plugins(envmode.Production))
}

func TestNewPipeline_InvalidGlob(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Content = []string{"src/[.rs"}

	_, err := NewPipeline(cfg, t.TempDir(), envmode.Production)
	assert.Error(t, err)
}

func TestPipeline_Run(t *testing.T) {
	root := projectFixture(t)
	css := ".btn { color: red; }\n.never { color: blue; }\n"

	t.Run("development keeps everything", func(t *testing.T) {
		p, err := NewPipeline(DefaultConfig(), root, envmode.Development)
		require.NoError(t, err)
		assert.NotContains(t, p.Names(), PluginPurge)

		out, err := p.Run(context.Background(), css)
		require.NoError(t, err)
		assert.Equal(t, css, out)
	})

	t.Run("production purges", func(t *testing.T) {
		p, err := NewPipeline(DefaultConfig(), root, envmode.Production)
		require.NoError(t, err)
		assert.Contains(t, p.Names(), PluginPurge)

		out, err := p.Run(context.Background(), css)
		require.NoError(t, err)
		assert.Contains(t, out, ".btn")
		assert.NotContains(t, out, ".never")
	})
}

func TestPipeline_Minify(t *testing.T) {
	root := projectFixture(t)
	css := ".btn {\n  color: red;\n}\n\n/* gone */\n.never {\n  color: blue;\n}\n"

	p, err := NewPipeline(DefaultConfig(), root, envmode.Production, WithMinify(true))
	require.NoError(t, err)
	assert.Equal(t, []string{PluginTailwind, PluginAutoprefixer, PluginPurge, StageMinify}, p.Names())

	out, err := p.Run(context.Background(), css)
	require.NoError(t, err)
	assert.Equal(t, ".btn{color:red}", out)

	p, err = NewPipeline(DefaultConfig(), root, envmode.Development, WithMinify(false))
	require.NoError(t, err)
	assert.NotContains(t, p.Names(), StageMinify)
}

func TestMinifyStage(t *testing.T) {
	out, err := NewMinifyStage().Apply(context.Background(), "a {\n  margin: 0px;\n}\n\nb { color: #ff0000; }\n")
	require.NoError(t, err)
	assert.NotContains(t, out, "\n")
	assert.NotContains(t, out, "  ")
	assert.Contains(t, out, "a{margin:0}")
}

func TestCommandStage(t *testing.T) {
	if _, err := exec.LookPath("cat"); err != nil {
		t.Skip("cat not available")
	}
	s := &CommandStage{name: PluginTailwind, argv: []string{"cat"}}

	out, err := s.Apply(context.Background(), ".a { b: c; }")
	require.NoError(t, err)
	assert.Equal(t, ".a { b: c; }", out)
}

func TestCommandStage_Failure(t *testing.T) {
	s := &CommandStage{name: PluginAutoprefixer, argv: []string{"wasmdev-no-such-binary"}}

	_, err := s.Apply(context.Background(), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), PluginAutoprefixer)
}

func TestPipeline_Build(t *testing.T) {
	root := projectFixture(t)
	writeFile(t, filepath.Join(root, "styles", "main.css"), ".primary { color: red; }\n.zzz { color: blue; }\n")
	out := filepath.Join(root, "dist", "style.css")

	p, err := NewPipeline(DefaultConfig(), root, envmode.Production)
	require.NoError(t, err)
	require.NoError(t, p.Build(context.Background(), out))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), ".primary")
	assert.NotContains(t, string(data), ".zzz")
}

func TestPipeline_BuildMissingInput(t *testing.T) {
	p, err := NewPipeline(DefaultConfig(), t.TempDir(), envmode.Development)
	require.NoError(t, err)

	err = p.Build(context.Background(), filepath.Join(t.TempDir(), "style.css"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
