package style

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtract(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    []string
	}{
		{
			name:    "empty",
			content: "",
			want:    []string{},
		},
		{
			name:    "broad then inner",
			content: `<a class="w-1.5 (x) hover:">`,
			want: []string{
				"a", "class=", "w-1.5", "(x)", "hover",
				"a", "class=", "w-1", "5", "x", "hover",
			},
		},
		{
			name:    "variants keep inner colons",
			content: `<div class="md:flex p-4">`,
			want: []string{
				"div", "class=", "md:flex", "p-4",
				"div", "class=", "md:flex", "p-4",
			},
		},
		{
			name:    "rust string literal",
			content: "html! { <p class=\"text-lg\">{ \"hi\" }</p> }",
			want: []string{
				"html!", "{", "p", "class=", "text-lg", "{", "hi", "}", "/p", "}",
				"html!", "{", "p", "class=", "text-lg", "{", "hi", "}", "/p", "}",
			},
		},
		{
			name:    "non breaking space separates tokens",
			content: "alpha\u00a0beta",
			want:    []string{"alpha", "beta", "alpha", "beta"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Extract(tt.content))
		})
	}
}

func TestTokenSet(t *testing.T) {
	s := NewTokenSet("a", "b")
	s.Add("c", "a")

	assert.Len(t, s, 3)
	assert.True(t, s.Has("c"))
	assert.False(t, s.Has("d"))
}
