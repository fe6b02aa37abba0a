package style

import (
	"context"
	"fmt"

	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"
)

const cssMediaType = "text/css"

// MinifyStage strips whitespace and comments and shortens values.
type MinifyStage struct {
	m *minify.M
}

// NewMinifyStage returns a stage backed by the tdewolff CSS minifier.
func NewMinifyStage() *MinifyStage {
	m := minify.New()
	m.AddFunc(cssMediaType, css.Minify)
	return &MinifyStage{m: m}
}

func (s *MinifyStage) Name() string { return StageMinify }

func (s *MinifyStage) Apply(_ context.Context, src string) (string, error) {
	out, err := s.m.String(cssMediaType, src)
	if err != nil {
		return "", fmt.Errorf("%s: %w", StageMinify, err)
	}
	return out, nil
}
