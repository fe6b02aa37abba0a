package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"os/signal"
	"runtime"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/shaharia-lab/wasmdev/internal/build"
	"github.com/shaharia-lab/wasmdev/internal/bundle"
	"github.com/shaharia-lab/wasmdev/internal/config"
	"github.com/shaharia-lab/wasmdev/internal/devloop"
	"github.com/shaharia-lab/wasmdev/internal/eventbus"
	"github.com/shaharia-lab/wasmdev/internal/metrics"
	"github.com/shaharia-lab/wasmdev/internal/server"
	"github.com/shaharia-lab/wasmdev/internal/watch"
)

// NewDevCmd returns the "dev" subcommand: build once, then serve the
// output directory on the dev-server port and rebuild on change.
func NewDevCmd(cfg *config.AppConfig) *cobra.Command {
	var port int
	var skipWasm, noBrowser bool

	cmd := &cobra.Command{
		Use:   "dev",
		Short: "Build, watch and serve the project",
		Long: `Build the project into its output directory, serve it on the dev-server
port and, unless the mode is production, watch the sources and rebuild
what changed.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			project, err := loadProject(cmd, cfg)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("port") {
				project.DevServer.Port = port
			}
			return runDev(cmd, cfg, project, skipWasm, noBrowser)
		},
	}

	cmd.Flags().IntVar(&port, "port", bundle.DefaultDevPort, "Dev server port (overrides devServer.port)")
	cmd.Flags().BoolVar(&skipWasm, "skip-wasm", false, "Do not run wasm-pack")
	cmd.Flags().BoolVar(&noBrowser, "no-browser", false, "Do not open the browser on startup")
	return cmd
}

func runDev(cmd *cobra.Command, cfg *config.AppConfig, project *bundle.Config, skipWasm, noBrowser bool) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	log, closer, logDest, err := newLogger(cmd, cfg)
	if err != nil {
		return err
	}
	defer closer.Close()

	m := metrics.New()
	bus := eventbus.New(log, 0)
	defer bus.Close()
	bus.Subscribe(devloop.Reporter(log, m))

	var opts []devloop.Option
	if !skipWasm {
		opts = append(opts, devloop.WithWasmCompiler(bundle.RunWasmPack))
	}
	builder, err := devloop.New(project, bus, log, m, opts...)
	if err != nil {
		return err
	}

	log.Info("wasmdev dev starting",
		slog.String("root", project.Root),
		slog.String("mode", project.Mode.String()),
		slog.Any("style_plugins", builder.Plugins()),
		slog.String("version", build.Version),
	)
	if _, err := builder.BuildAll(ctx); err != nil {
		return fmt.Errorf("initial build: %w", err)
	}

	if project.WatchEnabled() {
		bus.Subscribe(builder.Listener(ctx))
		w, err := watch.New(builder.WatchDirs(), bus, log)
		if err != nil {
			return err
		}
		if err := w.Start(ctx); err != nil {
			return err
		}
		defer w.Stop()
	}

	srv := server.New(os.DirFS(project.ContentBase()), server.Options{
		Host:           cfg.Host,
		Port:           project.DevServer.Port,
		Compress:       project.CompressEnabled(),
		AllowedOrigins: []string{"http://localhost:*", "http://127.0.0.1:*"},
	}, log, m)

	url := "http://" + srv.Addr()
	printBanner(cmd.OutOrStdout(), "wasmdev "+build.Version, [][2]string{
		{"URL", url},
		{"Mode", project.Mode.String()},
		{"Output", project.OutputDir()},
		{"Watch", strconv.FormatBool(project.WatchEnabled())},
		{"Logs", logDest},
	})

	if !noBrowser {
		go openBrowser(url)
	}
	return srv.Run(ctx)
}

func openBrowser(url string) {
	time.Sleep(600 * time.Millisecond)
	ctx := context.Background()
	var c *exec.Cmd
	switch runtime.GOOS {
	case "windows":
		c = exec.CommandContext(ctx, "rundll32", "url.dll,FileProtocolHandler", url)
	case "darwin":
		c = exec.CommandContext(ctx, "open", url)
	default:
		c = exec.CommandContext(ctx, "xdg-open", url)
	}
	_ = c.Start()
}
