package bundle

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// ErrOutsideSources is returned by CopyPath for files no copy rule covers.
var ErrOutsideSources = errors.New("path is not under a copy source")

// CopyReport summarizes a CopyAssets run.
type CopyReport struct {
	Files int
	Bytes int64
}

// CopyAssets applies every copy rule: each source directory is copied
// recursively into its destination, preserving the relative layout and
// overwriting existing files. A missing source directory is an error.
func CopyAssets(ctx context.Context, cfg *Config) (CopyReport, error) {
	var report CopyReport
	for _, rule := range cfg.Copy {
		src := cfg.resolve(rule.From)
		dst := cfg.copyTarget(rule)

		info, err := os.Stat(src)
		if err != nil {
			return report, fmt.Errorf("copy source %s: %w", rule.From, err)
		}
		if !info.IsDir() {
			return report, fmt.Errorf("copy source %s: not a directory", rule.From)
		}

		err = filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			rel, err := filepath.Rel(src, path)
			if err != nil {
				return err
			}
			target := filepath.Join(dst, rel)
			if d.IsDir() {
				return os.MkdirAll(target, 0750)
			}
			n, err := copyFile(path, target)
			if err != nil {
				return err
			}
			report.Files++
			report.Bytes += n
			return nil
		})
		if err != nil {
			return report, fmt.Errorf("copying %s to %s: %w", rule.From, dst, err)
		}
	}
	return report, nil
}

// CopyPath copies a single changed source file to where its copy rule
// places it and returns the destination.
func CopyPath(cfg *Config, path string) (string, error) {
	dst, err := Destination(cfg, path)
	if err != nil {
		return "", err
	}
	if _, err := copyFile(path, dst); err != nil {
		return "", err
	}
	return dst, nil
}

// RemovePath deletes the copied counterpart of a removed source file.
// Removing a file that was never copied is not an error.
func RemovePath(cfg *Config, path string) (string, error) {
	dst, err := Destination(cfg, path)
	if err != nil {
		return "", err
	}
	if err := os.RemoveAll(dst); err != nil {
		return "", fmt.Errorf("removing %s: %w", dst, err)
	}
	return dst, nil
}

// Destination maps a path under a copy source to its output location.
func Destination(cfg *Config, path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", path, err)
	}
	for _, rule := range cfg.Copy {
		src, err := filepath.Abs(cfg.resolve(rule.From))
		if err != nil {
			return "", fmt.Errorf("resolving %s: %w", rule.From, err)
		}
		rel, err := filepath.Rel(src, abs)
		if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			continue
		}
		return filepath.Join(cfg.copyTarget(rule), rel), nil
	}
	return "", fmt.Errorf("%s: %w", path, ErrOutsideSources)
}

func copyFile(src, dst string) (int64, error) {
	//nolint:gosec // src is a file under a configured copy source
	in, err := os.Open(src)
	if err != nil {
		return 0, fmt.Errorf("opening %s: %w", src, err)
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0750); err != nil {
		return 0, fmt.Errorf("creating directory for %s: %w", dst, err)
	}
	//nolint:gosec // dst is derived from the configured output directory
	out, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0600)
	if err != nil {
		return 0, fmt.Errorf("creating %s: %w", dst, err)
	}
	n, err := io.Copy(out, in)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return n, fmt.Errorf("writing %s: %w", dst, err)
	}
	return n, nil
}
