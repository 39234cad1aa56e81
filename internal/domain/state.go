package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// AppState is the whole persisted document. It is always read and written
// wholesale.
type AppState struct {
	Pages      []Page     `json:"pages"`
	Categories []Category `json:"categories"`
}

// EmptyState returns a state with no pages and no categories. Both slices are
// non-nil so they encode as [] rather than null.
func EmptyState() AppState {
	return AppState{
		Pages:      []Page{},
		Categories: []Category{},
	}
}

const defaultPageContent = `<h1>Getting Started</h1><p>Welcome to our documentation system! This guide will help you understand how to use and navigate through our documentation.</p><h2>Features</h2><ul><li>Rich text editing</li><li>Category organization</li><li>Search functionality</li><li>Dark/light mode</li></ul>`

// DefaultState is the document created on first access when nothing has been
// persisted yet.
func DefaultState(now time.Time) AppState {
	return AppState{
		Pages: []Page{
			{
				ID:          "1",
				Title:       "Getting Started",
				Slug:        "getting-started",
				Description: "Learn how to get started with our documentation system",
				Category:    "guides",
				Tags:        []string{"beginner", "setup"},
				Content:     defaultPageContent,
				CreatedAt:   now,
				UpdatedAt:   now,
			},
		},
		Categories: []Category{
			{
				ID:          "1",
				Name:        "Guides",
				Slug:        "guides",
				Description: "Step-by-step guides and tutorials",
				CreatedAt:   now,
			},
			{
				ID:          "2",
				Name:        "API Reference",
				Slug:        "api-reference",
				Description: "Complete API documentation",
				CreatedAt:   now,
			},
		},
	}
}

// DecodeState parses a persisted document. Any malformed input is reported
// as ErrCorruptState, including JSON values other than an object.
func DecodeState(data []byte) (AppState, error) {
	if trimmed := bytes.TrimLeft(data, " \t\r\n"); len(trimmed) > 0 && trimmed[0] != '{' {
		return AppState{}, fmt.Errorf("%w: document is not a JSON object", ErrCorruptState)
	}
	var state AppState
	if err := json.Unmarshal(data, &state); err != nil {
		return AppState{}, fmt.Errorf("%w: %v", ErrCorruptState, err)
	}
	state.normalize()
	return state, nil
}

// EncodeState serializes the document in its persisted layout.
func EncodeState(state AppState) ([]byte, error) {
	state = state.Clone()
	data, err := json.Marshal(state)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal state: %w", err)
	}
	return data, nil
}

// Clone returns a deep copy that shares no slices with s.
func (s AppState) Clone() AppState {
	out := AppState{
		Pages:      make([]Page, len(s.Pages)),
		Categories: make([]Category, len(s.Categories)),
	}
	for i, p := range s.Pages {
		out.Pages[i] = p.clone()
	}
	copy(out.Categories, s.Categories)
	return out
}

func (s *AppState) normalize() {
	if s.Pages == nil {
		s.Pages = []Page{}
	}
	if s.Categories == nil {
		s.Categories = []Category{}
	}
	for i := range s.Pages {
		if s.Pages[i].Tags == nil {
			s.Pages[i].Tags = []string{}
		}
	}
}

// ─────────────────────────────────────────────────────────────────
// Lookups
// ─────────────────────────────────────────────────────────────────

// PageByID returns the page with the given id.
func (s AppState) PageByID(id string) (Page, bool) {
	if i := s.pageIndex(id); i >= 0 {
		return s.Pages[i], true
	}
	return Page{}, false
}

// PageBySlug returns the first page with the given slug.
func (s AppState) PageBySlug(slug string) (Page, bool) {
	for _, p := range s.Pages {
		if p.Slug == slug {
			return p, true
		}
	}
	return Page{}, false
}

// CategoryByID returns the category with the given id.
func (s AppState) CategoryByID(id string) (Category, bool) {
	if i := s.categoryIndex(id); i >= 0 {
		return s.Categories[i], true
	}
	return Category{}, false
}

// CategoryBySlug returns the first category with the given slug.
func (s AppState) CategoryBySlug(slug string) (Category, bool) {
	for _, c := range s.Categories {
		if c.Slug == slug {
			return c, true
		}
	}
	return Category{}, false
}

func (s AppState) pageIndex(id string) int {
	for i, p := range s.Pages {
		if p.ID == id {
			return i
		}
	}
	return -1
}

func (s AppState) categoryIndex(id string) int {
	for i, c := range s.Categories {
		if c.ID == id {
			return i
		}
	}
	return -1
}

// ─────────────────────────────────────────────────────────────────
// Mutations
// ─────────────────────────────────────────────────────────────────

// UpsertPage replaces the page with the same id in place, or appends it.
//
// On replace, CreatedAt is kept from the stored page and UpdatedAt is set to
// now. On insert both are set to now. The stored page is returned.
func (s *AppState) UpsertPage(page Page, now time.Time) (Page, error) {
	if page.ID == "" {
		return Page{}, ErrMissingID
	}
	if page.Slug == "" {
		return Page{}, ErrMissingSlug
	}
	for _, p := range s.Pages {
		if p.Slug == page.Slug && p.ID != page.ID {
			return Page{}, fmt.Errorf("%w: page %q already uses %q", ErrDuplicateSlug, p.ID, page.Slug)
		}
	}

	page = page.clone()
	if page.Tags == nil {
		page.Tags = []string{}
	}

	if i := s.pageIndex(page.ID); i >= 0 {
		page.CreatedAt = s.Pages[i].CreatedAt
		page.UpdatedAt = now
		s.Pages[i] = page
		return page.clone(), nil
	}

	page.CreatedAt = now
	page.UpdatedAt = now
	s.Pages = append(s.Pages, page)
	return page.clone(), nil
}

// DeletePage removes the page with the given id. It reports whether a page
// was removed; an unknown id is not an error.
func (s *AppState) DeletePage(id string) bool {
	kept := s.Pages[:0:0]
	for _, p := range s.Pages {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	removed := len(kept) != len(s.Pages)
	s.Pages = kept
	return removed
}

// UpsertCategory replaces the category with the same id in place, or appends
// it. CreatedAt is set on insert only.
func (s *AppState) UpsertCategory(category Category, now time.Time) (Category, error) {
	if category.ID == "" {
		return Category{}, ErrMissingID
	}
	if category.Slug == "" {
		return Category{}, ErrMissingSlug
	}
	for _, c := range s.Categories {
		if c.Slug == category.Slug && c.ID != category.ID {
			return Category{}, fmt.Errorf("%w: category %q already uses %q", ErrDuplicateSlug, c.ID, category.Slug)
		}
	}

	if i := s.categoryIndex(category.ID); i >= 0 {
		category.CreatedAt = s.Categories[i].CreatedAt
		s.Categories[i] = category
		return category, nil
	}

	category.CreatedAt = now
	s.Categories = append(s.Categories, category)
	return category, nil
}

// DeleteCategory removes the category with the given id. Pages that
// referenced its slug are left as they are and become uncategorized.
func (s *AppState) DeleteCategory(id string) bool {
	kept := s.Categories[:0:0]
	for _, c := range s.Categories {
		if c.ID != id {
			kept = append(kept, c)
		}
	}
	removed := len(kept) != len(s.Categories)
	s.Categories = kept
	return removed
}

// Validate checks the document-level invariants: ids present and unique,
// slugs present and unique, per collection.
func (s AppState) Validate() error {
	pageIDs := make(map[string]bool, len(s.Pages))
	pageSlugs := make(map[string]bool, len(s.Pages))
	for i, p := range s.Pages {
		switch {
		case p.ID == "":
			return fmt.Errorf("page #%d: %w", i, ErrMissingID)
		case p.Slug == "":
			return fmt.Errorf("page %q: %w", p.ID, ErrMissingSlug)
		case pageIDs[p.ID]:
			return fmt.Errorf("page %q: %w", p.ID, ErrDuplicateID)
		case pageSlugs[p.Slug]:
			return fmt.Errorf("page %q: %w %q", p.ID, ErrDuplicateSlug, p.Slug)
		}
		pageIDs[p.ID] = true
		pageSlugs[p.Slug] = true
	}

	catIDs := make(map[string]bool, len(s.Categories))
	catSlugs := make(map[string]bool, len(s.Categories))
	for i, c := range s.Categories {
		switch {
		case c.ID == "":
			return fmt.Errorf("category #%d: %w", i, ErrMissingID)
		case c.Slug == "":
			return fmt.Errorf("category %q: %w", c.ID, ErrMissingSlug)
		case catIDs[c.ID]:
			return fmt.Errorf("category %q: %w", c.ID, ErrDuplicateID)
		case catSlugs[c.Slug]:
			return fmt.Errorf("category %q: %w %q", c.ID, ErrDuplicateSlug, c.Slug)
		}
		catIDs[c.ID] = true
		catSlugs[c.Slug] = true
	}
	return nil
}
