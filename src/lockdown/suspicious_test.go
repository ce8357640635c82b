package lockdown

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSuspicious(t *testing.T) {
	cases := map[string]bool{
		"^1.0.0":  true,
		"~1.0.0":  true,
		"<=1.0.0": true,
		"<1.0.0":  true,
		">=1.0.0": true,
		">1.0.0":  true,
		"1.0.x":   true,
		"1.x":     true,
		"*":       true,
		"":        true,

		"1.0.0":                     false,
		"=1.0.0":                    false,
		"latest":                    false,
		"v2.1.3":                    false,
		"git+https://x.org/a.git":   false,
		"github:user/repo#8f3c2a1":  false,
		"file:../local":             false,
		"1.0.0 - 2.0.0":             false,
		"x":                         false,
		"1.X":                       false,
		" ^1.0.0":                   false,
		"https://example.com/a.tgz": false,
	}

	for version, want := range cases {
		assert.Equal(t, want, Suspicious(version), "Suspicious(%q)", version)
	}
}
