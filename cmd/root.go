package cmd

import (
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/shaharia-lab/wasmdev/internal/config"
)

// SkeletonFS is set by main() before Execute() is called.
// It holds the project template written by "wasmdev init".
var SkeletonFS fs.FS

// Execute runs the root command.
func Execute() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := NewRootCmd(cfg).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// NewRootCmd assembles the command tree around cfg.
func NewRootCmd(cfg *config.AppConfig) *cobra.Command {
	root := &cobra.Command{
		Use:   "wasmdev",
		Short: "Build and serve Rust/WebAssembly web front ends",
		Long: `wasmdev builds a Rust/WebAssembly front end into a static output directory
(module, glue script, stylesheet, static assets) and serves it with the
application/wasm content type browsers need for streaming compilation.`,
		SilenceUsage: true,
	}

	root.PersistentFlags().String("root", ".", "Project root directory")
	root.PersistentFlags().String("mode", "", "Environment mode: development or production (NODE_ENV wins when set)")
	root.PersistentFlags().BoolP("verbose", "v", false, "Log to stderr instead of the log file")

	root.AddCommand(
		NewServeCmd(cfg),
		NewDevCmd(cfg),
		NewBuildCmd(cfg),
		NewExtractCmd(),
		NewConfigCmd(cfg),
		NewInitCmd(),
		NewVersionCmd(),
		NewUpdateCmd(),
	)
	return root
}
