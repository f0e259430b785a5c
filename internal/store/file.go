package store

import (
	"os"
	"path/filepath"
)

// FileBackend keeps the snapshot in a single JSON file.
type FileBackend struct {
	path string
}

// NewFileBackend constructs a FileBackend at the given path.
func NewFileBackend(path string) *FileBackend {
	return &FileBackend{path: path}
}

func (b *FileBackend) Read() ([]byte, error) {
	return os.ReadFile(b.path)
}

// Write replaces the file through a temp file and rename so a failed
// write never leaves a half-written snapshot behind.
func (b *FileBackend) Write(data []byte) error {
	dir := filepath.Dir(b.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(b.path)+".tmp-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), b.path)
}
