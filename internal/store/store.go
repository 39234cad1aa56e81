package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MrSnakeDoc/docs/internal/domain"
	"github.com/MrSnakeDoc/docs/internal/logger"
)

// Store is the single source of truth for pages and categories.
//
// Every mutation loads the whole document, changes it and writes it back in
// full. Callers receive a Store at construction time; nothing reaches the
// persisted blob any other way.
type Store interface {
	Load(ctx context.Context) (domain.AppState, error)
	Save(ctx context.Context, state domain.AppState) error
	UpsertPage(ctx context.Context, page domain.Page) (domain.Page, error)
	UpsertPageChecked(ctx context.Context, page domain.Page, check PageCheck) (domain.Page, error)
	DeletePage(ctx context.Context, id string) error
	UpsertCategory(ctx context.Context, category domain.Category) (domain.Category, error)
	DeleteCategory(ctx context.Context, id string) error
}

// PageCheck inspects the current document before a page is written. A
// non-nil error aborts the write and is returned to the caller.
type PageCheck func(state domain.AppState, page domain.Page) error

// SeedFunc builds the document stored on first access.
type SeedFunc func(now time.Time) domain.AppState

// DocStore implements Store on top of a Backend.
type DocStore struct {
	backend Backend
	logger  logger.Logger
	now     func() time.Time
	seed    SeedFunc
}

// Option customizes a DocStore.
type Option func(*DocStore)

// WithClock replaces time.Now for timestamp stamping.
func WithClock(now func() time.Time) Option {
	return func(s *DocStore) { s.now = now }
}

// WithSeed replaces domain.DefaultState as the first-access document.
func WithSeed(seed SeedFunc) Option {
	return func(s *DocStore) { s.seed = seed }
}

// New creates a DocStore. A nil backend gives a store that always loads an
// empty document and discards writes.
func New(backend Backend, log logger.Logger, opts ...Option) *DocStore {
	s := &DocStore{
		backend: backend,
		logger:  log,
		now:     time.Now,
		seed:    domain.DefaultState,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// BackendName reports which backend persists the document.
func (s *DocStore) BackendName() string {
	if s.backend == nil {
		return "none"
	}
	return s.backend.Name()
}

func (s *DocStore) timestamp() time.Time {
	return s.now().UTC()
}

// Load returns the persisted document, seeding it on first access.
func (s *DocStore) Load(ctx context.Context) (domain.AppState, error) {
	if s.backend == nil {
		return domain.EmptyState(), nil
	}

	data, err := s.backend.Read(ctx)
	switch {
	case err == nil:
		return domain.DecodeState(data)
	case !errors.Is(err, ErrBlobNotFound):
		return domain.AppState{}, fmt.Errorf("failed to read state from %s: %w", s.backend.Name(), err)
	}

	// Nothing stored yet. Seed inside Update so a concurrent first access
	// does not overwrite a document written in between.
	var state domain.AppState
	err = s.backend.Update(ctx, func(current []byte, found bool) ([]byte, error) {
		if found {
			decoded, err := domain.DecodeState(current)
			if err != nil {
				return nil, err
			}
			state = decoded
			return nil, nil
		}
		state = s.seed(s.timestamp())
		s.logger.Info("no stored state, seeding default document",
			logger.String("backend", s.backend.Name()),
			logger.Int("pages", len(state.Pages)),
			logger.Int("categories", len(state.Categories)))
		return domain.EncodeState(state)
	})
	if err != nil {
		return domain.AppState{}, fmt.Errorf("failed to seed state: %w", err)
	}
	return state, nil
}

// Save overwrites the whole persisted document.
func (s *DocStore) Save(ctx context.Context, state domain.AppState) error {
	if s.backend == nil {
		return nil
	}
	data, err := domain.EncodeState(state)
	if err != nil {
		return err
	}
	if err := s.backend.Write(ctx, data); err != nil {
		return fmt.Errorf("failed to save state to %s: %w", s.backend.Name(), err)
	}
	return nil
}

// Reset overwrites the document with the seed document.
func (s *DocStore) Reset(ctx context.Context) (domain.AppState, error) {
	state := s.seed(s.timestamp())
	if err := s.Save(ctx, state); err != nil {
		return domain.AppState{}, err
	}
	s.logger.Warn("state reset to seed document",
		logger.String("backend", s.BackendName()))
	return state, nil
}

// mutate applies fn to the current document and persists the result when fn
// reports a change.
func (s *DocStore) mutate(ctx context.Context, fn func(state *domain.AppState) (bool, error)) error {
	if s.backend == nil {
		state := domain.EmptyState()
		_, err := fn(&state)
		return err
	}

	return s.backend.Update(ctx, func(current []byte, found bool) ([]byte, error) {
		var state domain.AppState
		if found {
			decoded, err := domain.DecodeState(current)
			if err != nil {
				return nil, err
			}
			state = decoded
		} else {
			state = s.seed(s.timestamp())
		}

		changed, err := fn(&state)
		if err != nil {
			return nil, err
		}
		if !changed && found {
			return nil, nil
		}
		return domain.EncodeState(state)
	})
}

// UpsertPage inserts or replaces a page by id and stamps its timestamps.
func (s *DocStore) UpsertPage(ctx context.Context, page domain.Page) (domain.Page, error) {
	return s.UpsertPageChecked(ctx, page, nil)
}

// UpsertPageChecked is UpsertPage with check run against the document read
// in the same update cycle, so no concurrent write lands between the check
// and the write. A nil check accepts every page.
func (s *DocStore) UpsertPageChecked(ctx context.Context, page domain.Page, check PageCheck) (domain.Page, error) {
	var stored domain.Page
	err := s.mutate(ctx, func(state *domain.AppState) (bool, error) {
		if check != nil {
			if err := check(*state, page); err != nil {
				return false, err
			}
		}
		p, err := state.UpsertPage(page, s.timestamp())
		if err != nil {
			return false, err
		}
		stored = p
		return true, nil
	})
	if err != nil {
		return domain.Page{}, fmt.Errorf("failed to save page %q: %w", page.ID, err)
	}
	s.logger.Debug("page saved",
		logger.String("id", stored.ID),
		logger.String("slug", stored.Slug))
	return stored, nil
}

// DeletePage removes a page. Unknown ids are a no-op.
func (s *DocStore) DeletePage(ctx context.Context, id string) error {
	var removed bool
	err := s.mutate(ctx, func(state *domain.AppState) (bool, error) {
		removed = state.DeletePage(id)
		return removed, nil
	})
	if err != nil {
		return fmt.Errorf("failed to delete page %q: %w", id, err)
	}
	if removed {
		s.logger.Debug("page deleted", logger.String("id", id))
	}
	return nil
}

// UpsertCategory inserts or replaces a category by id.
func (s *DocStore) UpsertCategory(ctx context.Context, category domain.Category) (domain.Category, error) {
	var stored domain.Category
	err := s.mutate(ctx, func(state *domain.AppState) (bool, error) {
		c, err := state.UpsertCategory(category, s.timestamp())
		if err != nil {
			return false, err
		}
		stored = c
		return true, nil
	})
	if err != nil {
		return domain.Category{}, fmt.Errorf("failed to save category %q: %w", category.ID, err)
	}
	s.logger.Debug("category saved",
		logger.String("id", stored.ID),
		logger.String("slug", stored.Slug))
	return stored, nil
}

// DeleteCategory removes a category without touching the pages filed under
// it.
func (s *DocStore) DeleteCategory(ctx context.Context, id string) error {
	var removed bool
	err := s.mutate(ctx, func(state *domain.AppState) (bool, error) {
		removed = state.DeleteCategory(id)
		return removed, nil
	})
	if err != nil {
		return fmt.Errorf("failed to delete category %q: %w", id, err)
	}
	if removed {
		s.logger.Debug("category deleted", logger.String("id", id))
	}
	return nil
}

type pinger interface {
	Ping(ctx context.Context) error
}

// Ping checks that the backend is reachable. Backends without a connection
// always succeed.
func (s *DocStore) Ping(ctx context.Context) error {
	if p, ok := s.backend.(pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}

// Close releases the backend.
func (s *DocStore) Close() error {
	if s.backend == nil {
		return nil
	}
	return s.backend.Close()
}
