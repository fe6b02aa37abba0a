package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/shaharia-lab/wasmdev/internal/bundle"
	"github.com/shaharia-lab/wasmdev/internal/config"
	"github.com/shaharia-lab/wasmdev/internal/envmode"
	"github.com/shaharia-lab/wasmdev/internal/logger"
)

// projectRoot returns the absolute --root directory.
func projectRoot(cmd *cobra.Command) (string, error) {
	root, _ := cmd.Flags().GetString("root")
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("resolving project root: %w", err)
	}
	return abs, nil
}

func resolveMode(cmd *cobra.Command, cfg *config.AppConfig) envmode.Mode {
	flag, _ := cmd.Flags().GetString("mode")
	return cfg.Mode(flag)
}

// loadProject reads the project file for the command's root and mode.
func loadProject(cmd *cobra.Command, cfg *config.AppConfig) (*bundle.Config, error) {
	root, err := projectRoot(cmd)
	if err != nil {
		return nil, err
	}
	project, err := bundle.Load(cfg.ProjectFilePath(root), root, resolveMode(cmd, cfg))
	if err != nil {
		return nil, fmt.Errorf("loading project: %w", err)
	}
	return project, nil
}

// newLogger returns the command logger: the rotating system log, or
// stderr with --verbose.
func newLogger(cmd *cobra.Command, cfg *config.AppConfig) (*slog.Logger, io.Closer, string, error) {
	verbose, _ := cmd.Flags().GetBool("verbose")
	if verbose {
		return logger.NewConsoleLogger(os.Stderr, cfg.SlogLevel()), noopCloser{}, "stderr", nil
	}
	log, closer, err := logger.NewSystemLogger(cfg.LogDir(), cfg.SlogLevel())
	if err != nil {
		return nil, nil, "", fmt.Errorf("initializing logger: %w", err)
	}
	return log, closer, filepath.Join(cfg.LogDir(), "system.log"), nil
}

type noopCloser struct{}

func (noopCloser) Close() error { return nil }
