package style

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/gobwas/glob"
	"golang.org/x/sync/errgroup"
)

const scanWorkers = 8

// ScanContent reads every file under root matching one of globs and
// returns the extracted tokens merged with whitelist.
func ScanContent(ctx context.Context, root string, globs, whitelist []string) (TokenSet, error) {
	files, err := MatchContent(root, globs)
	if err != nil {
		return nil, err
	}

	tokens := NewTokenSet(whitelist...)
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(scanWorkers)
	for _, file := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			//nolint:gosec // paths come from walking the project root
			data, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("reading content file %s: %w", file, err)
			}
			found := Extract(string(data))

			mu.Lock()
			tokens.Add(found...)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return tokens, nil
}

// MatchContent returns the sorted, de-duplicated list of files under root
// that match any of globs. Globs are relative to root; a leading "./" is
// ignored and "*" does not cross directory separators.
func MatchContent(root string, globs []string) ([]string, error) {
	seen := make(map[string]struct{})
	for _, pattern := range globs {
		g, err := compileGlob(pattern)
		if err != nil {
			return nil, err
		}
		if err := walkPattern(root, pattern, g, seen); err != nil {
			return nil, err
		}
	}

	files := make([]string, 0, len(seen))
	for f := range seen {
		files = append(files, f)
	}
	sort.Strings(files)
	return files, nil
}

func walkPattern(root, pattern string, g glob.Glob, seen map[string]struct{}) error {
	base := filepath.Join(root, filepath.FromSlash(staticPrefix(normalizeGlob(pattern))))
	err := filepath.WalkDir(base, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		if g.Match(filepath.ToSlash(rel)) {
			seen[path] = struct{}{}
		}
		return nil
	})
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("walking %s: %w", base, err)
	}
	return nil
}

func normalizeGlob(pattern string) string {
	p := filepath.ToSlash(pattern)
	for strings.HasPrefix(p, "./") {
		p = strings.TrimPrefix(p, "./")
	}
	return p
}

// staticPrefix is the leading directory of a glob that contains no
// wildcard, so the walk can start there.
func staticPrefix(pattern string) string {
	parts := strings.Split(pattern, "/")
	var prefix []string
	for _, part := range parts[:len(parts)-1] {
		if strings.ContainsAny(part, "*?[{\\") {
			break
		}
		prefix = append(prefix, part)
	}
	if len(prefix) == 0 {
		return "."
	}
	return strings.Join(prefix, "/")
}

// ContentMatcher tells whether a file is one of the scanned templates.
type ContentMatcher struct {
	root  string
	globs []glob.Glob
	dirs  []string
}

// NewContentMatcher compiles globs relative to root.
func NewContentMatcher(root string, globs []string) (*ContentMatcher, error) {
	m := &ContentMatcher{root: root}
	seen := make(map[string]struct{})
	for _, pattern := range globs {
		g, err := compileGlob(pattern)
		if err != nil {
			return nil, err
		}
		m.globs = append(m.globs, g)
		dir := filepath.Join(root, filepath.FromSlash(staticPrefix(normalizeGlob(pattern))))
		if _, ok := seen[dir]; !ok {
			seen[dir] = struct{}{}
			m.dirs = append(m.dirs, dir)
		}
	}
	return m, nil
}

// Match reports whether path (absolute, or relative to root) matches a glob.
func (m *ContentMatcher) Match(path string) bool {
	if filepath.IsAbs(path) {
		rel, err := filepath.Rel(m.root, path)
		if err != nil {
			return false
		}
		path = rel
	}
	path = filepath.ToSlash(path)
	for _, g := range m.globs {
		if g.Match(path) {
			return true
		}
	}
	return false
}

// Dirs returns the directories that can contain matching files.
func (m *ContentMatcher) Dirs() []string {
	return m.dirs
}
