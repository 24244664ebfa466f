package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// StoredFile is the upload middleware contract: the name the file was stored
// under plus the name the client sent.
type StoredFile struct {
	StorageFilename string
	OriginalName    string
}

// FileStore persists uploaded attachment payloads.
type FileStore interface {
	Save(originalName string, r io.Reader) (StoredFile, error)
}

// LocalFileStore writes uploads into a single directory under random names.
type LocalFileStore struct {
	dir string
}

// NewLocalFileStore ensures the upload directory exists.
func NewLocalFileStore(dir string) (*LocalFileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create uploads dir: %w", err)
	}
	return &LocalFileStore{dir: dir}, nil
}

// Save streams the payload to disk. The stored name keeps the original
// extension so downloads stay recognizable.
func (s *LocalFileStore) Save(originalName string, r io.Reader) (StoredFile, error) {
	ext := strings.ToLower(filepath.Ext(originalName))
	stored := uuid.NewString() + ext

	f, err := os.Create(filepath.Join(s.dir, stored))
	if err != nil {
		return StoredFile{}, err
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		return StoredFile{}, err
	}
	return StoredFile{StorageFilename: stored, OriginalName: filepath.Base(originalName)}, nil
}
