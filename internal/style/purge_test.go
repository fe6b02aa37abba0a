package style

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCSS = `html { margin: 0; }
.used { color: red; }
.unused { color: blue; }
.md\:flex { display: flex; }
@media (min-width: 640px) { .gone-in-media { width: 1px; } }
@media print { .used { color: black; } }
@font-face { font-family: Inter; src: url(inter.woff2); }
a.used, a.gone { text-decoration: none; }
`

func TestPurge(t *testing.T) {
	out, err := Purge(sampleCSS, NewTokenSet("html", "a", "used", "md:flex"))
	require.NoError(t, err)

	assert.Contains(t, out, "html")
	assert.Contains(t, out, ".used")
	assert.NotContains(t, out, ".unused")
	assert.Contains(t, out, `.md\:flex`)
	assert.NotContains(t, out, "min-width: 640px")
	assert.NotContains(t, out, "gone-in-media")
	assert.Contains(t, out, "@media print")
	assert.Contains(t, out, "@font-face")
	assert.Contains(t, out, "a.used")
	assert.NotContains(t, out, "a.gone")
}

func TestPurge_TypeSelectors(t *testing.T) {
	keep := NewTokenSet(Extract(`<div class="p-4">hi</div>`)...)
	keep.Add("html", "body")

	out, err := Purge("table { border: 0; }\nbody { margin: 0; }\ndiv > p { color: red; }\n.p-4 { padding: 1rem; }\n* { box-sizing: border-box; }\n", keep)
	require.NoError(t, err)

	assert.NotContains(t, out, "table")
	assert.NotContains(t, out, "div > p")
	assert.Contains(t, out, "body")
	assert.Contains(t, out, ".p-4")
	assert.Contains(t, out, "*")
}

func TestPurge_EmptyKeepDropsEverythingButUniversal(t *testing.T) {
	out, err := Purge("body { margin: 0; }\n.x { color: red; }\n*, ::before { margin: 0; }\n", NewTokenSet())
	require.NoError(t, err)

	assert.NotContains(t, out, "body")
	assert.NotContains(t, out, ".x")
	assert.Contains(t, out, "::before")
}

func TestSelectorNames(t *testing.T) {
	tests := []struct {
		sel  string
		want []string
	}{
		{"body", []string{"body"}},
		{"*", nil},
		{"ul li:nth-child(2n+1)", []string{"ul", "li"}},
		{"a:not(.active)", []string{"a", "active"}},
		{"input[type=text]", []string{"input"}},
		{".btn", []string{"btn"}},
		{`.md\:flex:hover`, []string{"md:flex"}},
		{`.\32xl\:p-4`, []string{"2xl:p-4"}},
		{`.w-1\/2`, []string{"w-1/2"}},
		{`a[href=".x"] .y`, []string{"a", "y"}},
		{"#main > .a.b", []string{"main", "a", "b"}},
		{".btn::before", []string{"btn"}},
		{"h1+h2~h3", []string{"h1", "h2", "h3"}},
		{`x\`, []string{"x"}},
	}
	for _, tt := range tests {
		t.Run(tt.sel, func(t *testing.T) {
			assert.Equal(t, tt.want, SelectorNames(tt.sel))
		})
	}
}
