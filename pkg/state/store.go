package state

import (
	"fmt"
	"os"
	"path/filepath"
)

// Store persists the application snapshot between runs.
type Store interface {
	// Save persists the given snapshot bytes.
	Save(data []byte) error

	// Load retrieves the stored snapshot, nil when none exists.
	Load() ([]byte, error)
}

// FileStore implements Store on a single JSON file. An empty path
// disables persistence entirely.
type FileStore struct {
	Path string
}

// NewFileStore creates a file-backed snapshot store.
func NewFileStore(path string) *FileStore {
	return &FileStore{Path: path}
}

// Save writes the snapshot, creating parent directories as needed.
func (s *FileStore) Save(data []byte) error {
	if s.Path == "" {
		return nil
	}

	if dir := filepath.Dir(s.Path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create directory: %w", err)
		}
	}

	if err := os.WriteFile(s.Path, data, 0644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}

// Load reads the snapshot. A missing file is not an error.
func (s *FileStore) Load() ([]byte, error) {
	if s.Path == "" {
		return nil, nil
	}

	data, err := os.ReadFile(s.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	return data, nil
}

var _ Store = (*FileStore)(nil)
