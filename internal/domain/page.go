package domain

import "time"

// Page is a single documentation page.
//
// Field names and JSON tags match the persisted document layout, so blobs
// written by earlier versions of the site keep loading.
type Page struct {
	// ID is the unique identifier within AppState.Pages.
	ID string `json:"id"`

	Title string `json:"title"`

	// Slug is the routing key (/docs/{slug}). Unique among pages.
	Slug string `json:"slug"`

	Description string `json:"description"`

	// Category references Category.Slug. It may dangle, in which case the
	// page is listed as uncategorized.
	Category string `json:"category"`

	Tags []string `json:"tags"`

	// Content is opaque rich text (HTML) produced by the editor.
	Content string `json:"content"`

	// Icon is an optional icon name resolved by the UI.
	Icon string `json:"icon,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Category groups pages by slug.
type Category struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
}

func (p Page) clone() Page {
	tags := make([]string, len(p.Tags))
	copy(tags, p.Tags)
	p.Tags = tags
	return p
}

// HasTag reports whether the page carries tag (exact match).
func (p Page) HasTag(tag string) bool {
	for _, t := range p.Tags {
		if t == tag {
			return true
		}
	}
	return false
}
