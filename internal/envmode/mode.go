// Package envmode resolves the build environment mode that switches
// development-only and production-only behavior.
package envmode

import "strings"

// Mode is the build-time environment mode.
type Mode string

const (
	Development Mode = "development"
	Production  Mode = "production"
)

// Resolve picks the effective mode. The NODE_ENV value wins over the
// --mode flag, and development is used when neither is set. Unknown
// values are kept verbatim and behave as non-production; the comparison
// is case-sensitive, so "Production" is not production.
func Resolve(env, flag string) Mode {
	if v := strings.TrimSpace(env); v != "" {
		return Mode(v)
	}
	if v := strings.TrimSpace(flag); v != "" {
		return Mode(v)
	}
	return Development
}

// IsProduction reports whether production-only transforms apply.
func (m Mode) IsProduction() bool {
	return m == Production
}

func (m Mode) String() string {
	if m == "" {
		return string(Development)
	}
	return string(m)
}
