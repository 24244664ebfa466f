package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLocalFileStoreSave(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalFileStore(dir)
	if err != nil {
		t.Fatalf("NewLocalFileStore: %v", err)
	}

	stored, err := store.Save("Crash Report.PNG", strings.NewReader("payload"))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if stored.OriginalName != "Crash Report.PNG" {
		t.Fatalf("original name = %q", stored.OriginalName)
	}
	if !strings.HasSuffix(stored.StorageFilename, ".png") {
		t.Fatalf("stored name must keep lowercased extension, got %q", stored.StorageFilename)
	}
	if stored.StorageFilename == stored.OriginalName {
		t.Fatal("stored name must be randomized")
	}

	data, err := os.ReadFile(filepath.Join(dir, stored.StorageFilename))
	if err != nil {
		t.Fatalf("reading stored file: %v", err)
	}
	if string(data) != "payload" {
		t.Fatalf("content = %q", data)
	}
}

func TestLocalFileStoreDistinctNames(t *testing.T) {
	store, err := NewLocalFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalFileStore: %v", err)
	}
	a, err := store.Save("a.txt", strings.NewReader("one"))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	b, err := store.Save("a.txt", strings.NewReader("two"))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if a.StorageFilename == b.StorageFilename {
		t.Fatal("same upload name must not collide on disk")
	}
}
