package envmode

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name string
		env  string
		flag string
		want Mode
	}{
		{"defaults to development", "", "", Development},
		{"env wins over flag", "production", "development", Production},
		{"flag used when env empty", "", "production", Production},
		{"whitespace env ignored", "  ", "production", Production},
		{"case preserved", "PRODUCTION", "", Mode("PRODUCTION")},
		{"unknown kept verbatim", "staging", "", Mode("staging")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Resolve(tt.env, tt.flag))
		})
	}
}

func TestMode_IsProduction(t *testing.T) {
	assert.True(t, Production.IsProduction())
	assert.False(t, Development.IsProduction())
	assert.False(t, Mode("staging").IsProduction())
	assert.False(t, Mode("").IsProduction())
	assert.False(t, Mode("Production").IsProduction())
	assert.False(t, Resolve("PRODUCTION", "").IsProduction())
}

func TestMode_String(t *testing.T) {
	assert.Equal(t, "development", Mode("").String())
	assert.Equal(t, "production", Production.String())
}
