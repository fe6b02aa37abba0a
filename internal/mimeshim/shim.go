// Package mimeshim serves compiled WebAssembly modules with the
// application/wasm content type and lets every other request fall
// through to default static file handling.
package mimeshim

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"path"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

// WasmContentType is the media type browsers require for streaming
// compilation of a module.
const WasmContentType = "application/wasm"

const wasmExt = ".wasm"

// ErrPartialResponse marks failures that happened after the header was
// sent; the response can no longer carry an error status.
var ErrPartialResponse = errors.New("response partially written")

// Result describes the decision taken for a request path.
type Result struct {
	// Handled is true when the shim serves the file itself.
	Handled bool
	// ContentType is the header value set for handled paths.
	ContentType string
}

// Resolve decides by extension alone. Only the final extension counts and
// the comparison is case-insensitive.
func Resolve(name string) Result {
	if strings.EqualFold(path.Ext(name), wasmExt) {
		return Result{Handled: true, ContentType: WasmContentType}
	}
	return Result{}
}

// Serve writes the file named by name when it is a wasm module. It returns
// false without touching w for any other extension. For wasm paths the
// underlying open/read failure is returned unchanged before anything is
// written, so fs.ErrNotExist stays detectable with errors.Is.
func Serve(w http.ResponseWriter, fsys fs.FS, name string) (bool, error) {
	res := Resolve(name)
	if !res.Handled {
		return false, nil
	}

	f, err := fsys.Open(fsName(name))
	if err != nil {
		return true, fmt.Errorf("opening %s: %w", name, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return true, fmt.Errorf("stat %s: %w", name, err)
	}
	if info.IsDir() {
		return true, fmt.Errorf("reading %s: %w", name, fs.ErrNotExist)
	}

	w.Header().Set("Content-Type", res.ContentType)
	w.Header().Set("Content-Length", strconv.FormatInt(info.Size(), 10))
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, f); err != nil {
		return true, fmt.Errorf("streaming %s: %w: %w", name, ErrPartialResponse, err)
	}
	return true, nil
}

// Middleware returns a chi middleware applying Serve to the request path.
// Non-wasm requests are passed to next. counter may be nil.
func Middleware(fsys fs.FS, logger *slog.Logger, counter *prometheus.CounterVec) func(http.Handler) http.Handler {
	observe := func(status int) {
		if counter != nil {
			counter.WithLabelValues(strconv.Itoa(status)).Inc()
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !Resolve(r.URL.Path).Handled {
				next.ServeHTTP(w, r)
				return
			}

			handled, err := Serve(w, fsys, r.URL.Path)
			if !handled {
				next.ServeHTTP(w, r)
				return
			}
			if err == nil {
				observe(http.StatusOK)
				return
			}

			if errors.Is(err, ErrPartialResponse) {
				logger.Warn("wasm module stream interrupted",
					slog.String("path", r.URL.Path),
					slog.String("error", err.Error()),
				)
				observe(http.StatusOK)
				return
			}

			status := http.StatusInternalServerError
			if errors.Is(err, fs.ErrNotExist) {
				status = http.StatusNotFound
			}
			logger.Warn("wasm module read failed",
				slog.String("path", r.URL.Path),
				slog.Int("status", status),
				slog.String("error", err.Error()),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)
			observe(status)
			http.Error(w, http.StatusText(status), status)
		})
	}
}

// fsName maps a URL path onto an io/fs name rooted at the docroot.
func fsName(p string) string {
	name := strings.TrimPrefix(path.Clean("/"+p), "/")
	if name == "" {
		return "."
	}
	return name
}
