package upstream

import (
	"Facely/core"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
)

// TempStore keeps fetched images as files until they are released.
type TempStore struct {
	dir   string
	mutex sync.Mutex
	live  map[core.Handle]struct{}
}

// NewTempStore uses the OS temp directory when dir is empty.
func NewTempStore(dir string) (*TempStore, error) {
	if dir == "" {
		dir = os.TempDir()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating temp dir: %w", err)
	}
	return &TempStore{
		dir:  dir,
		live: make(map[core.Handle]struct{}),
	}, nil
}

func (s *TempStore) Put(data []byte) (core.Handle, error) {
	path := filepath.Join(s.dir, uuid.NewString()+".jpg")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", fmt.Errorf("writing temp file: %w", err)
	}

	h := core.Handle(path)
	s.mutex.Lock()
	s.live[h] = struct{}{}
	s.mutex.Unlock()
	return h, nil
}

// Release removes the file behind h. Releasing an unknown or already released handle is a no-op.
func (s *TempStore) Release(h core.Handle) error {
	s.mutex.Lock()
	_, ok := s.live[h]
	delete(s.live, h)
	s.mutex.Unlock()
	if !ok {
		return nil
	}

	if err := os.Remove(string(h)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("removing temp file: %w", err)
	}
	return nil
}

// Outstanding reports how many handles are still live.
func (s *TempStore) Outstanding() int {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return len(s.live)
}
