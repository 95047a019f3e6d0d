package identity

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
)

const deviceIDFile = "device_id"

// fileStore persists the device id as a plain file under the app data
// directory, mode 0600.
type fileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore returns a store writing to <dir>/device_id. The directory is
// created on first save.
func NewFileStore(dir string) Store {
	return &fileStore{path: filepath.Join(dir, deviceIDFile)}
}

func (s *fileStore) Load() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", &StorageError{Op: "load", Err: err}
	}
	id := strings.TrimSpace(string(b))
	if id == "" {
		return "", ErrNotFound
	}
	return id, nil
}

func (s *fileStore) Save(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return &StorageError{Op: "save", Err: err}
	}
	if err := os.WriteFile(s.path, []byte(id+"\n"), 0600); err != nil {
		return &StorageError{Op: "save", Err: err}
	}
	return nil
}
