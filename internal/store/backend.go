package store

import (
	"context"
	"errors"
	"sync"
)

var (
	// ErrBlobNotFound is returned by Backend.Read when nothing has been
	// persisted yet.
	ErrBlobNotFound = errors.New("state not found")

	// ErrConflict is returned when a concurrent writer kept winning the race
	// for the blob.
	ErrConflict = errors.New("concurrent update conflict")
)

// UpdateFunc receives the current blob (found is false when none exists)
// and returns the blob to persist. A nil result means "leave it as is".
type UpdateFunc func(current []byte, found bool) ([]byte, error)

// Backend persists the state document as one opaque blob under one key.
type Backend interface {
	// Name identifies the backend in logs and status output.
	Name() string

	Read(ctx context.Context) ([]byte, error)

	// Write overwrites the blob unconditionally.
	Write(ctx context.Context, data []byte) error

	// Update runs a read-modify-write cycle. Concurrent Update calls on the
	// same backend never interleave their read and write.
	Update(ctx context.Context, fn UpdateFunc) error

	Close() error
}

// MemoryBackend keeps the blob in process memory.
type MemoryBackend struct {
	mu    sync.Mutex
	data  []byte
	found bool
}

// NewMemoryBackend creates an empty in-memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{}
}

func (m *MemoryBackend) Name() string { return "memory" }

func (m *MemoryBackend) Read(ctx context.Context) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.found {
		return nil, ErrBlobNotFound
	}
	return cloneBytes(m.data), nil
}

func (m *MemoryBackend) Write(ctx context.Context, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.data = cloneBytes(data)
	m.found = true
	return nil
}

func (m *MemoryBackend) Update(ctx context.Context, fn UpdateFunc) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	next, err := fn(cloneBytes(m.data), m.found)
	if err != nil {
		return err
	}
	if next != nil {
		m.data = cloneBytes(next)
		m.found = true
	}
	return nil
}

func (m *MemoryBackend) Close() error { return nil }

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
