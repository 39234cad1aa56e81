// Package storetest holds the conformance suite every store.Backend must pass.
package storetest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/docs/internal/store"
)

// RunBackendTests exercises newBackend against the Backend contract. Each
// subtest gets a fresh, empty backend.
func RunBackendTests(t *testing.T, newBackend func(t *testing.T) store.Backend) {
	t.Helper()
	ctx := context.Background()

	t.Run("read on empty backend", func(t *testing.T) {
		b := newBackend(t)
		_, err := b.Read(ctx)
		assert.ErrorIs(t, err, store.ErrBlobNotFound)
	})

	t.Run("write then read", func(t *testing.T) {
		b := newBackend(t)
		require.NoError(t, b.Write(ctx, []byte(`{"pages":[],"categories":[]}`)))
		require.NoError(t, b.Write(ctx, []byte(`{"pages":[{"id":"1"}],"categories":[]}`)))

		got, err := b.Read(ctx)
		require.NoError(t, err)
		assert.Equal(t, `{"pages":[{"id":"1"}],"categories":[]}`, string(got))
	})

	t.Run("update sees missing blob", func(t *testing.T) {
		b := newBackend(t)
		err := b.Update(ctx, func(current []byte, found bool) ([]byte, error) {
			assert.False(t, found)
			return []byte("first"), nil
		})
		require.NoError(t, err)

		got, err := b.Read(ctx)
		require.NoError(t, err)
		assert.Equal(t, "first", string(got))
	})

	t.Run("update with nil result leaves blob", func(t *testing.T) {
		b := newBackend(t)
		require.NoError(t, b.Write(ctx, []byte("keep")))

		err := b.Update(ctx, func(current []byte, found bool) ([]byte, error) {
			assert.True(t, found)
			assert.Equal(t, "keep", string(current))
			return nil, nil
		})
		require.NoError(t, err)

		got, err := b.Read(ctx)
		require.NoError(t, err)
		assert.Equal(t, "keep", string(got))
	})

	t.Run("update error aborts write", func(t *testing.T) {
		b := newBackend(t)
		require.NoError(t, b.Write(ctx, []byte("keep")))

		boom := errors.New("boom")
		err := b.Update(ctx, func(current []byte, found bool) ([]byte, error) {
			return []byte("lost"), boom
		})
		assert.ErrorIs(t, err, boom)

		got, err := b.Read(ctx)
		require.NoError(t, err)
		assert.Equal(t, "keep", string(got))
	})

	t.Run("concurrent updates do not lose writes", func(t *testing.T) {
		b := newBackend(t)
		require.NoError(t, b.Write(ctx, []byte("0")))

		const workers = 20
		var wg sync.WaitGroup
		errs := make(chan error, workers)
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				errs <- b.Update(ctx, func(current []byte, found bool) ([]byte, error) {
					var n int
					if _, err := fmt.Sscan(string(current), &n); err != nil {
						return nil, err
					}
					return []byte(fmt.Sprint(n + 1)), nil
				})
			}()
		}
		wg.Wait()
		close(errs)

		succeeded := 0
		for err := range errs {
			if err == nil {
				succeeded++
				continue
			}
			// Optimistic backends may give up after repeated conflicts.
			require.ErrorIs(t, err, store.ErrConflict)
		}

		got, err := b.Read(ctx)
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprint(succeeded), string(got))
	})
}
