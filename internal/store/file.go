package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FileBackend is the session-scoped backend: a JSON file in a scratch
// directory (the temp dir by default), so data survives restarts of the
// service but not a host cleanup.
type FileBackend struct {
	mu    sync.Mutex
	path  string
	items map[string]string
	quota int
}

// NewFileBackend loads (or creates) the backing file under dir.
func NewFileBackend(dir string, quotaBytes int) (*FileBackend, error) {
	if dir == "" {
		dir = os.TempDir()
	}
	path := filepath.Join(dir, "weather-lookup-session.json")

	items := make(map[string]string)
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := json.Unmarshal(data, &items); err != nil {
			// Corrupt session file: start over rather than fail selection.
			items = make(map[string]string)
		}
	case os.IsNotExist(err):
		// fresh session
	default:
		return nil, fmt.Errorf("read session store: %w", err)
	}

	return &FileBackend{
		path:  path,
		items: items,
		quota: quotaBytes,
	}, nil
}

func (f *FileBackend) Name() string { return "session" }

func (f *FileBackend) Get(key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	v, ok := f.items[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

func (f *FileBackend) Set(key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if quotaFor(f.sizes(), key, value, f.quota) {
		return ErrQuotaExceeded
	}

	prev, had := f.items[key]
	f.items[key] = value
	if err := f.flush(); err != nil {
		if had {
			f.items[key] = prev
		} else {
			delete(f.items, key)
		}
		return err
	}
	return nil
}

func (f *FileBackend) Delete(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	delete(f.items, key)
	return f.flush()
}

func (f *FileBackend) flush() error {
	data, err := json.Marshal(f.items)
	if err != nil {
		return err
	}
	return os.WriteFile(f.path, data, 0o600)
}

func (f *FileBackend) sizes() map[string]int {
	sizes := make(map[string]int, len(f.items))
	for k, v := range f.items {
		sizes[k] = len(v)
	}
	return sizes
}
