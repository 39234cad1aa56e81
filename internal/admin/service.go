// Package admin implements the editing operations behind the admin API.
//
// It validates and normalizes user input before handing it to the store,
// which remains the only writer of the document.
package admin

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/MrSnakeDoc/docs/internal/domain"
	"github.com/MrSnakeDoc/docs/internal/logger"
	"github.com/MrSnakeDoc/docs/internal/store"
)

// PageInput is the editable part of a page.
type PageInput struct {
	Title       string   `json:"title"`
	Slug        string   `json:"slug"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Tags        []string `json:"tags"`
	Content     string   `json:"content"`
	Icon        string   `json:"icon,omitempty"`
}

// CategoryInput is the editable part of a category.
type CategoryInput struct {
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
}

type Service struct {
	store store.Store
	log   logger.Logger
	newID func() string
}

// Option customizes a Service.
type Option func(*Service)

// WithIDGenerator replaces uuid.NewString for new page and category ids.
func WithIDGenerator(newID func() string) Option {
	return func(s *Service) { s.newID = newID }
}

func NewService(st store.Store, log logger.Logger, opts ...Option) *Service {
	s := &Service{
		store: st,
		log:   log,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ─────────────────────────────────────────────────────────────────
// Pages
// ─────────────────────────────────────────────────────────────────

// CreatePage stores a new page under a freshly generated id.
func (s *Service) CreatePage(ctx context.Context, in PageInput) (domain.Page, error) {
	return s.savePage(ctx, s.newID(), in)
}

// UpdatePage stores in at id, creating the page if id is unknown.
func (s *Service) UpdatePage(ctx context.Context, id string, in PageInput) (domain.Page, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.Page{}, fmt.Errorf("%w: page id is required", ErrInvalidInput)
	}
	return s.savePage(ctx, id, in)
}

func (s *Service) savePage(ctx context.Context, id string, in PageInput) (domain.Page, error) {
	page, err := s.pageFromInput(id, in)
	if err != nil {
		return domain.Page{}, err
	}

	stored, err := s.store.UpsertPageChecked(ctx, page, knownCategory)
	if err != nil {
		return domain.Page{}, err
	}
	s.log.Info("page saved",
		logger.String("id", stored.ID),
		logger.String("slug", stored.Slug),
		logger.String("category", stored.Category))
	return stored, nil
}

// knownCategory refuses pages filed under a category slug that does not
// exist. Uncategorized pages are accepted.
func knownCategory(state domain.AppState, page domain.Page) error {
	if page.Category == "" {
		return nil
	}
	if _, ok := state.CategoryBySlug(page.Category); !ok {
		return fmt.Errorf("%w: %q", ErrUnknownCategory, page.Category)
	}
	return nil
}

func (s *Service) pageFromInput(id string, in PageInput) (domain.Page, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return domain.Page{}, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	slug, err := resolveSlug(in.Slug, title)
	if err != nil {
		return domain.Page{}, err
	}

	return domain.Page{
		ID:          id,
		Title:       title,
		Slug:        slug,
		Description: strings.TrimSpace(in.Description),
		Category:    strings.TrimSpace(in.Category),
		Tags:        normalizeTags(in.Tags),
		Content:     in.Content,
		Icon:        strings.TrimSpace(in.Icon),
	}, nil
}

// DeletePage removes a page. Unknown ids succeed.
func (s *Service) DeletePage(ctx context.Context, id string) error {
	if err := s.store.DeletePage(ctx, id); err != nil {
		return err
	}
	s.log.Info("page deleted", logger.String("id", id))
	return nil
}

func (s *Service) GetPage(ctx context.Context, id string) (domain.Page, error) {
	state, err := s.store.Load(ctx)
	if err != nil {
		return domain.Page{}, err
	}
	page, ok := state.PageByID(id)
	if !ok {
		return domain.Page{}, fmt.Errorf("%w: page %q", ErrNotFound, id)
	}
	return page, nil
}

// ─────────────────────────────────────────────────────────────────
// Categories
// ─────────────────────────────────────────────────────────────────

func (s *Service) CreateCategory(ctx context.Context, in CategoryInput) (domain.Category, error) {
	return s.saveCategory(ctx, s.newID(), in)
}

// UpdateCategory stores in at id, creating the category if id is unknown.
// Pages keep pointing at the old slug when the slug changes.
func (s *Service) UpdateCategory(ctx context.Context, id string, in CategoryInput) (domain.Category, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.Category{}, fmt.Errorf("%w: category id is required", ErrInvalidInput)
	}
	return s.saveCategory(ctx, id, in)
}

func (s *Service) saveCategory(ctx context.Context, id string, in CategoryInput) (domain.Category, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return domain.Category{}, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	slug, err := resolveSlug(in.Slug, name)
	if err != nil {
		return domain.Category{}, err
	}

	stored, err := s.store.UpsertCategory(ctx, domain.Category{
		ID:          id,
		Name:        name,
		Slug:        slug,
		Description: strings.TrimSpace(in.Description),
	})
	if err != nil {
		return domain.Category{}, err
	}
	s.log.Info("category saved",
		logger.String("id", stored.ID),
		logger.String("slug", stored.Slug))
	return stored, nil
}

// DeleteCategory removes a category. Its pages become uncategorized.
func (s *Service) DeleteCategory(ctx context.Context, id string) error {
	if err := s.store.DeleteCategory(ctx, id); err != nil {
		return err
	}
	s.log.Info("category deleted", logger.String("id", id))
	return nil
}

func (s *Service) GetCategory(ctx context.Context, id string) (domain.Category, error) {
	state, err := s.store.Load(ctx)
	if err != nil {
		return domain.Category{}, err
	}
	c, ok := state.CategoryByID(id)
	if !ok {
		return domain.Category{}, fmt.Errorf("%w: category %q", ErrNotFound, id)
	}
	return c, nil
}

// ─────────────────────────────────────────────────────────────────
// Whole document
// ─────────────────────────────────────────────────────────────────

func (s *Service) ExportState(ctx context.Context) (domain.AppState, error) {
	return s.store.Load(ctx)
}

// ImportState replaces the stored document after checking its invariants.
// Timestamps are kept as given.
func (s *Service) ImportState(ctx context.Context, state domain.AppState) error {
	state = state.Clone()
	if err := state.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	if err := s.store.Save(ctx, state); err != nil {
		return err
	}
	s.log.Warn("state imported",
		logger.Int("pages", len(state.Pages)),
		logger.Int("categories", len(state.Categories)))
	return nil
}

// resolveSlug returns slug when set, otherwise one derived from fallback.
func resolveSlug(slug, fallback string) (string, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		slug = domain.Slugify(fallback)
	}
	if !domain.ValidSlug(slug) {
		return "", fmt.Errorf("%w: invalid slug %q", ErrInvalidInput, slug)
	}
	return slug, nil
}

// normalizeTags trims tags and drops empty and repeated ones, keeping the
// first occurrence order.
func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}
