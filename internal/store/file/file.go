package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/MrSnakeDoc/docs/internal/store"
)

// Backend stores the state document as a JSON file.
//
// Writes go to a temporary file that is renamed over the target, so readers
// never observe a half-written document. Updates are serialized within the
// process only; two processes sharing the file still race (last writer wins).
type Backend struct {
	path string
	mu   sync.Mutex
}

// New creates a file backend, making sure the parent directory exists.
func New(path string) (*Backend, error) {
	if path == "" {
		return nil, errors.New("data file path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	return &Backend{path: path}, nil
}

func (b *Backend) Name() string { return "file" }

// Path returns the data file location.
func (b *Backend) Path() string { return b.path }

func (b *Backend) Read(ctx context.Context) ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.readLocked()
}

func (b *Backend) Write(ctx context.Context, data []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.writeLocked(data)
}

func (b *Backend) Update(ctx context.Context, fn store.UpdateFunc) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	current, err := b.readLocked()
	found := true
	if errors.Is(err, store.ErrBlobNotFound) {
		found = false
	} else if err != nil {
		return err
	}

	next, err := fn(current, found)
	if err != nil {
		return err
	}
	if next == nil {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return b.writeLocked(next)
}

func (b *Backend) Close() error { return nil }

func (b *Backend) readLocked() ([]byte, error) {
	data, err := os.ReadFile(b.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, store.ErrBlobNotFound
		}
		return nil, fmt.Errorf("failed to read data file: %w", err)
	}
	return data, nil
}

func (b *Backend) writeLocked(data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(b.path), filepath.Base(b.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, b.path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}
