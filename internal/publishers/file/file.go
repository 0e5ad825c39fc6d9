package file

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"subprovider/internal/logger"
	"subprovider/internal/publishers"
)

// Publisher writes the document to params["path"], replacing it atomically.
type Publisher struct{}

func (p *Publisher) Publish(_ context.Context, doc publishers.Document, params map[string]interface{}) error {
	path := publishers.String(params, "path")
	if path == "" {
		return fmt.Errorf("file publisher requires path")
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".publish-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(publishers.Payload(doc, params)); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}

	logger.Log.Debugf("File: wrote %d bytes to %s", len(doc.Body), path)
	return nil
}

func init() {
	publishers.Register("file", func() publishers.Publisher { return &Publisher{} })
}
