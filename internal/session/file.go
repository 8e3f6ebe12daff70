package session

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"agentevals/internal/atomicfile"
)

// fileBackend keeps one JSON array file per session under dir.
type fileBackend struct {
	dir string
	mu  sync.Mutex
}

// NewFileStore returns a store that writes session files under dir.
func NewFileStore(dir string) (Store, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("session dir is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create session dir: %w", err)
	}
	return newStore(&fileBackend{dir: dir}), nil
}

func (f *fileBackend) path(id string) (string, error) {
	if strings.ContainsAny(id, `/\`) || strings.Contains(id, "..") {
		return "", fmt.Errorf("invalid session id %q", id)
	}
	return filepath.Join(f.dir, id+".json"), nil
}

func (f *fileBackend) create(_ context.Context, id string) error {
	path, err := f.path(id)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return atomicfile.WriteJSON(path, []Item{})
}

func (f *fileBackend) exists(_ context.Context, id string) (bool, error) {
	path, err := f.path(id)
	if err != nil {
		return false, err
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (f *fileBackend) load(_ context.Context, id string) ([]Item, error) {
	path, err := f.path(id)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.read(path)
}

func (f *fileBackend) read(path string) ([]Item, error) {
	var items []Item
	found, err := atomicfile.ReadJSON(path, &items)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrNotFound
	}
	return items, nil
}

func (f *fileBackend) append(_ context.Context, id string, items []Item) error {
	path, err := f.path(id)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	existing, err := f.read(path)
	if err != nil {
		return err
	}
	return atomicfile.WriteJSON(path, append(existing, items...))
}

func (f *fileBackend) close() error { return nil }
