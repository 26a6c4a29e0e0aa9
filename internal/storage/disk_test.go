package storage

import (
	"io"
	"path/filepath"
	"strings"
	"testing"
)

func TestDiskStoreSaveAndOpen(t *testing.T) {
	store, err := NewDiskStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewDiskStore returned error: %v", err)
	}

	path, err := store.Save("report.pdf", strings.NewReader("contents"))
	if err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	if !strings.HasSuffix(path, "-report.pdf") {
		t.Fatalf("expected timestamp-prefixed name, got %q", path)
	}

	file, err := store.Open(path)
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		t.Fatalf("read stored file: %v", err)
	}
	if string(data) != "contents" {
		t.Fatalf("unexpected stored contents %q", data)
	}
}

func TestDiskStoreRemove(t *testing.T) {
	store, err := NewDiskStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewDiskStore returned error: %v", err)
	}
	path, err := store.Save("cert.png", strings.NewReader("x"))
	if err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	if err := store.Remove(path); err != nil {
		t.Fatalf("Remove returned error: %v", err)
	}
	if _, err := store.Open(path); err == nil {
		t.Fatalf("expected removed file to be gone")
	}
}

func TestDiskStoreRejectsOutsidePaths(t *testing.T) {
	store, err := NewDiskStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewDiskStore returned error: %v", err)
	}
	if _, err := store.Open("/etc/passwd"); err == nil {
		t.Fatalf("expected path outside base directory to be rejected")
	}
	if err := store.Remove(filepath.Join("..", "elsewhere")); err == nil {
		t.Fatalf("expected relative escape to be rejected")
	}
}

func TestDiskStoreSanitizesNames(t *testing.T) {
	store, err := NewDiskStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewDiskStore returned error: %v", err)
	}
	path, err := store.Save("../..//weird name!.pdf", strings.NewReader("x"))
	if err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	base := filepath.Base(path)
	if strings.ContainsAny(base, "/! ") {
		t.Fatalf("expected sanitized name, got %q", base)
	}
}
