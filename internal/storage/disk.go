package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// DiskStore writes blobs into a single directory, which the server exposes
// statically under /uploads/.
type DiskStore struct {
	dir string
}

// NewDiskStore creates the upload directory if needed and returns a store
// over it.
func NewDiskStore(dir string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload dir: %w", err)
	}
	return &DiskStore{dir: dir}, nil
}

// Save writes the blob under "<base>-<unix-ms><ext>" and returns that name.
// The timestamp suffix keeps repeated uploads of the same filename distinct.
func (s *DiskStore) Save(filename, contentType string, r io.Reader) (string, error) {
	if MediaKind(contentType) == "" {
		return "", ErrUnsupportedMedia
	}

	ext := filepath.Ext(filename)
	base := strings.TrimSuffix(filepath.Base(filename), ext)
	name := fmt.Sprintf("%s-%d%s", base, time.Now().UnixMilli(), ext)

	f, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return "", fmt.Errorf("failed to create blob: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("failed to write blob: %w", err)
	}
	return name, nil
}
