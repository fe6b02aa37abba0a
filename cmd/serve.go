package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/shaharia-lab/wasmdev/internal/build"
	"github.com/shaharia-lab/wasmdev/internal/config"
	"github.com/shaharia-lab/wasmdev/internal/metrics"
	"github.com/shaharia-lab/wasmdev/internal/server"
)

// NewServeCmd returns the "serve" subcommand: a static server rooted at a
// docroot that serves .wasm files as application/wasm.
func NewServeCmd(cfg *config.AppConfig) *cobra.Command {
	var host, docroot string
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve a directory with the wasm MIME shim",
		Long: `Serve a directory over HTTP. Requests for .wasm files are answered with
Content-Type: application/wasm and the raw module bytes; everything else
uses default static file handling.

Example:
  wasmdev serve --host localhost --port 9090 --docroot dist`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			// CLI flags override env config.
			if cmd.Flags().Changed("host") {
				cfg.Host = host
			}
			if cmd.Flags().Changed("port") {
				cfg.Port = port
			}
			if cmd.Flags().Changed("docroot") {
				cfg.DocRoot = docroot
			}
			return runServe(cmd, cfg)
		},
	}

	cmd.Flags().StringVar(&host, "host", cfg.Host, "Interface to bind (overrides WASMDEV_HOST)")
	cmd.Flags().IntVar(&port, "port", cfg.Port, "HTTP server port (overrides PORT)")
	cmd.Flags().StringVarP(&docroot, "docroot", "t", cfg.DocRoot, "Directory to serve (overrides WASMDEV_DOCROOT)")
	return cmd
}

func runServe(cmd *cobra.Command, cfg *config.AppConfig) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	docroot, err := filepath.Abs(cfg.DocRoot)
	if err != nil {
		return fmt.Errorf("resolving docroot: %w", err)
	}
	info, err := os.Stat(docroot)
	if err != nil {
		return fmt.Errorf("docroot: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("docroot %s is not a directory", docroot)
	}

	log, closer, logDest, err := newLogger(cmd, cfg)
	if err != nil {
		return err
	}
	defer closer.Close()

	srv := server.New(os.DirFS(docroot), server.Options{Host: cfg.Host, Port: cfg.Port}, log, metrics.New())

	url := "http://" + srv.Addr()
	log.Info("wasmdev serve starting",
		slog.String("addr", srv.Addr()),
		slog.String("docroot", docroot),
		slog.String("version", build.Version),
	)
	printBanner(cmd.OutOrStdout(), "wasmdev "+build.Version, [][2]string{
		{"URL", url},
		{"Root", docroot},
		{"Port", strconv.Itoa(cfg.Port)},
		{"Logs", logDest},
	})

	return srv.Run(ctx)
}
