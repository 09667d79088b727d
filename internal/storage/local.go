package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// LocalDir stores images under a directory on the local filesystem.
// The default uploader when no bucket is configured.
type LocalDir struct {
	root string
}

// NewLocalDir creates the root directory if needed.
func NewLocalDir(root string) (*LocalDir, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	return &LocalDir{root: root}, nil
}

// Put writes the image to root/key, creating intermediate directories.
func (l *LocalDir) Put(_ context.Context, key string, image []byte) (Object, error) {
	path := filepath.Join(l.root, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return Object{}, fmt.Errorf("create key dir: %w", err)
	}
	if err := os.WriteFile(path, image, 0o644); err != nil {
		return Object{}, fmt.Errorf("write image: %w", err)
	}
	return Object{Key: key, URL: path}, nil
}
