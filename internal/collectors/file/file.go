package file

import (
	"context"
	"fmt"
	"os"
	"strings"

	"subprovider/internal/collectors"
)

// FileCollector reads a subscription body from disk. URL may be a plain
// path or a file:// URL.
type FileCollector struct{}

func (c *FileCollector) Collect(_ context.Context, src collectors.Source) ([]string, error) {
	path := strings.TrimPrefix(src.URL, "file://")
	if path == "" {
		return nil, fmt.Errorf("missing path for subscription '%s'", src.Name)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read subscription file: %w", err)
	}
	return collectors.ParseSubscription(string(b)), nil
}

func init() {
	collectors.Register("file", func() collectors.Collector {
		return &FileCollector{}
	})
}
