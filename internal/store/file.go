package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// FileBackend keeps one JSON file per key in Dir. Writes go to a temp file that is
// renamed over the target, so readers never see a partial file.
type FileBackend struct {
	Dir string

	mu sync.Mutex
}

func NewFileBackend(dir string) (*FileBackend, error) {
	dir, err := ensureDir(dir)
	if err != nil {
		return nil, err
	}
	return &FileBackend{Dir: dir}, nil
}

func (f *FileBackend) path(key string) string {
	name := strings.NewReplacer("/", "_", "\\", "_").Replace(key)
	return filepath.Join(f.Dir, name+".json")
}

func (f *FileBackend) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	b, err := os.ReadFile(f.path(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return b, true, nil
}

func (f *FileBackend) Put(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	path := f.path(key)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, value, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func (f *FileBackend) Close() error { return nil }
