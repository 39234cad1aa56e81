package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/docs/internal/store"
)

// DefaultMaxRetries bounds how often Update retries after losing a WATCH race.
const DefaultMaxRetries = 5

// Backend stores the state document as a single Redis string.
//
// Update uses WATCH/MULTI: if another writer touches the key between our GET
// and SET, the transaction aborts and the whole read-modify-write is retried
// against the fresh value.
type Backend struct {
	client     *redis.Client
	key        string
	maxRetries int
}

// NewBackend creates a Redis backend for the given storage key name.
func NewBackend(client *redis.Client, name string) *Backend {
	return &Backend{
		client:     client,
		key:        StateKey(name),
		maxRetries: DefaultMaxRetries,
	}
}

func (b *Backend) Name() string { return "redis" }

// Key returns the Redis key holding the document.
func (b *Backend) Key() string { return b.key }

func (b *Backend) Read(ctx context.Context) ([]byte, error) {
	data, err := b.client.Get(ctx, b.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, store.ErrBlobNotFound
		}
		return nil, fmt.Errorf("failed to get state: %w", err)
	}
	return data, nil
}

func (b *Backend) Write(ctx context.Context, data []byte) error {
	if err := b.client.Set(ctx, b.key, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to save state: %w", err)
	}
	return nil
}

func (b *Backend) Update(ctx context.Context, fn store.UpdateFunc) error {
	txf := func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, b.key).Bytes()
		found := true
		if errors.Is(err, redis.Nil) {
			found = false
		} else if err != nil {
			return fmt.Errorf("failed to get state: %w", err)
		}

		next, err := fn(current, found)
		if err != nil {
			return err
		}
		if next == nil {
			return nil
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, b.key, next, 0)
			return nil
		})
		return err
	}

	for attempt := 0; attempt < b.maxRetries; attempt++ {
		err := b.client.Watch(ctx, txf, b.key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return fmt.Errorf("%w: key %s after %d attempts", store.ErrConflict, b.key, b.maxRetries)
}

// Ping checks the Redis connection.
func (b *Backend) Ping(ctx context.Context) error {
	return b.client.Ping(ctx).Err()
}

func (b *Backend) Close() error {
	return b.client.Close()
}
