package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/shaharia-lab/wasmdev/internal/bundle"
	"github.com/shaharia-lab/wasmdev/internal/config"
	"github.com/shaharia-lab/wasmdev/internal/devloop"
	"github.com/shaharia-lab/wasmdev/internal/metrics"
)

// NewBuildCmd returns the "build" subcommand: a one-shot build of the
// output directory.
func NewBuildCmd(cfg *config.AppConfig) *cobra.Command {
	var skipWasm bool

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build the project into its output directory",
		Long: `Compile the crate with wasm-pack, publish the module and glue script,
copy the static assets and run the style pipeline. In production mode the
stylesheet is purged of classes no template uses.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			project, err := loadProject(cmd, cfg)
			if err != nil {
				return err
			}
			log, closer, _, err := newLogger(cmd, cfg)
			if err != nil {
				return err
			}
			defer closer.Close()

			var opts []devloop.Option
			if !skipWasm {
				opts = append(opts, devloop.WithWasmCompiler(bundle.RunWasmPack))
			}
			builder, err := devloop.New(project, nil, log, metrics.New(), opts...)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if !skipWasm {
				fmt.Fprintf(out, "wasm-pack %s\n", strings.Join(project.WasmPackArgs(), " "))
			}
			report, err := builder.BuildAll(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Built %s (%s mode)\n", project.OutputDir(), project.Mode)
			fmt.Fprintf(out, "  assets:     %d files, %d bytes\n", report.Files, report.Bytes)
			fmt.Fprintf(out, "  stylesheet: %s [%s]\n", project.StylesheetPath(), strings.Join(builder.Plugins(), ", "))
			return nil
		},
	}

	cmd.Flags().BoolVar(&skipWasm, "skip-wasm", false, "Do not run wasm-pack")
	return cmd
}
