package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"subprovider/internal/collectors"
)

func TestCollect(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub.txt")
	require.NoError(t, os.WriteFile(path, []byte("vless://id@a.com:443#A\n"), 0o644))

	c, err := collectors.Get("file")
	require.NoError(t, err)

	for _, u := range []string{path, "file://" + path} {
		links, err := c.Collect(context.Background(), collectors.Source{URL: u})
		require.NoError(t, err, u)
		assert.Equal(t, []string{"vless://id@a.com:443#A"}, links)
	}

	_, err = c.Collect(context.Background(), collectors.Source{URL: filepath.Join(t.TempDir(), "missing")})
	require.Error(t, err)
}
