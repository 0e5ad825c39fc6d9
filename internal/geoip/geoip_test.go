package geoip

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlag(t *testing.T) {
	cases := map[string]string{
		"HK":  "🇭🇰",
		"jp":  "🇯🇵",
		"":    "🌐",
		"USA": "🌐",
		"1A":  "🌐",
	}
	for in, want := range cases {
		assert.Equal(t, want, Flag(in), in)
	}
}

func TestOpen_Missing(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing.mmdb"))
	require.Error(t, err)
}
