package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// DiskStore stores uploads on the local filesystem under a base directory.
type DiskStore struct {
	baseDir string
	now     func() time.Time
}

// NewDiskStore constructs a DiskStore rooted at baseDir, creating the
// directory if needed.
func NewDiskStore(baseDir string) (*DiskStore, error) {
	if strings.TrimSpace(baseDir) == "" {
		return nil, fmt.Errorf("storage: empty base directory")
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: create base directory: %w", err)
	}
	return &DiskStore{baseDir: baseDir, now: time.Now}, nil
}

// Save writes contents to a timestamp-prefixed file and returns its path.
func (s *DiskStore) Save(originalName string, contents io.Reader) (string, error) {
	name := sanitizeFileName(originalName)
	if name == "" {
		return "", fmt.Errorf("storage: empty file name")
	}

	stored := strconv.FormatInt(s.now().UnixMilli(), 10) + "-" + name
	path := filepath.Join(s.baseDir, stored)

	out, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("storage: create file: %w", err)
	}
	if _, err := io.Copy(out, contents); err != nil {
		out.Close()
		os.Remove(path)
		return "", fmt.Errorf("storage: write file: %w", err)
	}
	if err := out.Close(); err != nil {
		return "", fmt.Errorf("storage: close file: %w", err)
	}
	return path, nil
}

// Open returns a reader for a stored path. The path must stay inside the
// base directory.
func (s *DiskStore) Open(path string) (io.ReadSeekCloser, error) {
	if !s.contains(path) {
		return nil, fmt.Errorf("storage: path outside base directory")
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("storage: open file: %w", err)
	}
	return file, nil
}

// Remove deletes a stored path.
func (s *DiskStore) Remove(path string) error {
	if !s.contains(path) {
		return fmt.Errorf("storage: path outside base directory")
	}
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("storage: remove file: %w", err)
	}
	return nil
}

func (s *DiskStore) contains(path string) bool {
	base, err := filepath.Abs(s.baseDir)
	if err != nil {
		return false
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	return abs == base || strings.HasPrefix(abs, base+string(filepath.Separator))
}

// sanitizeFileName strips directory components and characters unsafe for
// local paths.
func sanitizeFileName(name string) string {
	name = filepath.Base(strings.TrimSpace(name))
	if name == "." || name == string(filepath.Separator) {
		return ""
	}
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return strings.Trim(b.String(), ".")
}
