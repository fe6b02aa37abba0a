// Package server is the development HTTP server. Every request for a
// static file passes through the wasm MIME shim before default static
// file serving.
package server

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/shaharia-lab/wasmdev/internal/metrics"
	"github.com/shaharia-lab/wasmdev/internal/mimeshim"
)

// Options configures a Server.
type Options struct {
	Host string
	Port int
	// Compress gzips text responses and wasm modules.
	Compress bool
	// AllowedOrigins enables CORS for the listed origins when non-empty.
	AllowedOrigins []string
}

// Server serves a document root.
type Server struct {
	docroot    fs.FS
	opts       Options
	logger     *slog.Logger
	metrics    *metrics.Metrics
	handler    http.Handler
	httpServer *http.Server
}

// New creates a Server for docroot.
func New(docroot fs.FS, opts Options, logger *slog.Logger, m *metrics.Metrics) *Server {
	s := &Server{
		docroot: docroot,
		opts:    opts,
		logger:  logger,
		metrics: m,
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(s.requestLogger)
	// HEAD falls back to the GET routes, as php -S and http.FileServer do.
	r.Use(middleware.GetHead)
	if len(opts.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: opts.AllowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodHead, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type"},
			MaxAge:         300,
		}))
	}
	if opts.Compress {
		r.Use(middleware.Compress(5,
			"text/html", "text/css", "text/plain", "text/javascript",
			"application/javascript", "application/json", "image/svg+xml",
			mimeshim.WasmContentType,
		))
	}

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Method(http.MethodGet, "/metrics", m.Handler())

	static := http.FileServer(http.FS(docroot))
	r.With(mimeshim.Middleware(docroot, logger, m.WasmResponses)).Get("/*", static.ServeHTTP)

	s.handler = r
	s.httpServer = &http.Server{
		Addr:              net.JoinHostPort(opts.Host, strconv.Itoa(opts.Port)),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Addr is the listen address.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// Run starts the HTTP server and blocks until ctx is canceled.
func (s *Server) Run(ctx context.Context) error {
	lc := &net.ListenConfig{}
	ln, err := lc.Listen(ctx, "tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.httpServer.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is canceled, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.Serve(ln); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.logger.Info("shutting down server")
		return s.httpServer.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

// requestLogger is a chi middleware that logs and counts each request.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		s.metrics.Requests.WithLabelValues(r.Method, strconv.Itoa(status)).Inc()
		s.logger.Info("http request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", status),
			slog.Int("bytes", ww.BytesWritten()),
			slog.Duration("duration", time.Since(start)),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}
