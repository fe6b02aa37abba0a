package bundle

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// WasmPackArgs is the argument vector for "wasm-pack". The web target is
// used so the generated module loads without a JS bundler.
func (c *Config) WasmPackArgs() []string {
	args := []string{
		"build", c.resolve(c.WasmPack.CrateDirectory),
		"--target", "web",
		"--out-dir", c.PackageDir(),
		"--out-name", c.WasmPack.OutName,
	}
	if c.MinimizeEnabled() {
		args = append(args, "--release")
	} else {
		args = append(args, "--dev")
	}
	return append(args, strings.Fields(c.WasmPack.ExtraArgs)...)
}

// PackageDir is where wasm-pack writes its output.
func (c *Config) PackageDir() string {
	return c.resolve(filepath.Join(c.WasmPack.CrateDirectory, c.WasmPack.OutDir))
}

// Artifact is a generated file and the output path it is published to.
type Artifact struct {
	Src string
	Dst string
}

// Artifacts lists the files published into the output directory after
// wasm-pack ran: the glue script and the module.
func (c *Config) Artifacts() []Artifact {
	pkg := c.PackageDir()
	out := c.OutputDir()
	return []Artifact{
		{Src: filepath.Join(pkg, c.WasmPack.OutName+".js"), Dst: filepath.Join(out, c.Output.Filename)},
		{Src: filepath.Join(pkg, c.WasmPack.OutName+"_bg.wasm"), Dst: filepath.Join(out, c.Output.WasmModuleFilename)},
	}
}

// RunWasmPack invokes wasm-pack with the configured arguments, streaming
// its output to the terminal.
func RunWasmPack(ctx context.Context, cfg *Config) error {
	//nolint:gosec // arguments come from the project file
	cmd := exec.CommandContext(ctx, "wasm-pack", cfg.WasmPackArgs()...)
	cmd.Dir = cfg.Root
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("running wasm-pack: %w", err)
	}
	return nil
}

// PublishArtifacts copies the wasm-pack outputs into the output directory.
func PublishArtifacts(cfg *Config) error {
	for _, a := range cfg.Artifacts() {
		if _, err := copyFile(a.Src, a.Dst); err != nil {
			return fmt.Errorf("publishing artifact: %w", err)
		}
	}
	return nil
}

// PublishEntry copies the entry script into the output directory. A
// project without an entry script is not an error.
func PublishEntry(cfg *Config) (bool, error) {
	if cfg.Entry == "" {
		return false, nil
	}
	src := cfg.resolve(cfg.Entry)
	if _, err := os.Stat(src); errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if _, err := copyFile(src, filepath.Join(cfg.OutputDir(), filepath.Base(cfg.Entry))); err != nil {
		return false, fmt.Errorf("publishing entry script: %w", err)
	}
	return true, nil
}
