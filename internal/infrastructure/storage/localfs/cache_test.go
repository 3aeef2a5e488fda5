package localfs

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestPutPathRoundTrip(t *testing.T) {
	cache, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	ctx := context.Background()

	path, err := cache.Put(ctx, "pdf/doc-1", []byte("%PDF-1.4 content"))
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(data) != "%PDF-1.4 content" {
		t.Errorf("unexpected content %q", data)
	}

	resolved, err := cache.Path(ctx, "pdf/doc-1")
	if err != nil {
		t.Fatalf("path: %v", err)
	}
	if resolved != path {
		t.Errorf("Path returned %q, Put returned %q", resolved, path)
	}
	if !cache.Has(ctx, "pdf/doc-1") {
		t.Errorf("Has should report the entry")
	}
}

func TestPathForMissingEntryFails(t *testing.T) {
	cache, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if _, err := cache.Path(context.Background(), "pdf/ghost"); err == nil {
		t.Errorf("expected an error for a missing entry")
	}
	if cache.Has(context.Background(), "pdf/ghost") {
		t.Errorf("Has must be false for a missing entry")
	}
}

func TestKeysAreSanitized(t *testing.T) {
	base := t.TempDir()
	cache, err := New(base)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	path, err := cache.Put(context.Background(), "audio/../../escape attempt.mp3", []byte("x"))
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	rel, err := filepath.Rel(base, path)
	if err != nil || rel == ".." || filepath.IsAbs(rel) || len(rel) >= 2 && rel[:2] == ".." {
		t.Errorf("sanitized path escaped the cache root: %q", path)
	}
}

func TestPutOverwritesExistingEntry(t *testing.T) {
	cache, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	ctx := context.Background()
	cache.Put(ctx, "pdf/doc-1", []byte("v1"))
	path, err := cache.Put(ctx, "pdf/doc-1", []byte("v2"))
	if err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	data, _ := os.ReadFile(path)
	if string(data) != "v2" {
		t.Errorf("expected overwritten content, got %q", data)
	}
}
