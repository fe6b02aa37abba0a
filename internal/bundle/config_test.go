package bundle

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shaharia-lab/wasmdev/internal/envmode"
)

func TestDefault(t *testing.T) {
	c := Default("/proj", envmode.Development)

	assert.Equal(t, "./bootstrap.js", c.Entry)
	assert.Equal(t, "app.js", c.Output.Filename)
	assert.Equal(t, "app.wasm", c.Output.WasmModuleFilename)
	assert.Equal(t, "style.css", c.CSS.Filename)
	assert.Equal(t, 8000, c.DevServer.Port)
	assert.Equal(t, "/proj/dist", c.OutputDir())
	assert.Equal(t, "/proj/dist", c.ContentBase())
	assert.Equal(t, "/proj/dist/style.css", c.StylesheetPath())
	assert.Equal(t, []string{"/proj/static"}, c.CopySources())
	assert.Equal(t, ".", c.WasmPack.CrateDirectory)
	assert.Equal(t, "--no-typescript", c.WasmPack.ExtraArgs)
	assert.NoError(t, c.Validate())
}

func TestDefault_ModeToggles(t *testing.T) {
	tests := []struct {
		mode     envmode.Mode
		compress bool
		minimize bool
		watch    bool
	}{
		{envmode.Development, false, false, true},
		{envmode.Production, true, true, false},
		{envmode.Mode("staging"), false, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.mode.String(), func(t *testing.T) {
			c := Default("/proj", tt.mode)
			assert.Equal(t, tt.compress, c.CompressEnabled())
			assert.Equal(t, tt.minimize, c.MinimizeEnabled())
			assert.Equal(t, tt.watch, c.WatchEnabled())
		})
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	root := t.TempDir()

	c, err := Load(filepath.Join(root, "wasmdev.yaml"), root, envmode.Production)
	require.NoError(t, err)
	assert.Equal(t, Default(root, envmode.Production), c)
}

func TestLoad_Overlay(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "wasmdev.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
output:
  path: public
  webassemblyModuleFilename: game.wasm
devServer:
  port: 8100
  compress: true
copy:
  - from: ./assets
    to: public/assets
style:
  content:
    - ./src/**.rs
  whitelist: [html]
`), 0600))

	c, err := Load(path, root, envmode.Development)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(root, "public"), c.OutputDir())
	assert.Equal(t, "app.js", c.Output.Filename)
	assert.Equal(t, "game.wasm", c.Output.WasmModuleFilename)
	assert.Equal(t, 8100, c.DevServer.Port)
	assert.True(t, c.CompressEnabled(), "explicit value wins over mode")
	assert.False(t, c.MinimizeEnabled())
	assert.True(t, c.WatchEnabled())
	assert.Equal(t, []CopyRule{{From: "./assets", To: "public/assets"}}, c.Copy)
	assert.Equal(t, []string{"./src/**.rs"}, c.Style.Content)
	assert.Equal(t, []string{"html"}, c.Style.Whitelist)
}

func TestLoad_Malformed(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "wasmdev.yaml")
	require.NoError(t, os.WriteFile(path, []byte("output: [unterminated"), 0600))

	_, err := Load(path, root, envmode.Development)
	assert.Error(t, err)
}

func TestLoad_Invalid(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "wasmdev.yaml")
	require.NoError(t, os.WriteFile(path, []byte("output:\n  webassemblyModuleFilename: app.bin\ndevServer:\n  port: 70000\n"), 0600))

	_, err := Load(path, root, envmode.Development)
	require.ErrorIs(t, err, ErrInvalidConfig)
	assert.Contains(t, err.Error(), "must end in .wasm")
	assert.Contains(t, err.Error(), "out of range")
}

func TestConfig_YAML(t *testing.T) {
	out, err := Default("/proj", envmode.Development).YAML()
	require.NoError(t, err)
	assert.Contains(t, string(out), "webassemblyModuleFilename: app.wasm")
	assert.Contains(t, string(out), "port: 8000")
	assert.NotContains(t, string(out), "/proj")
}
