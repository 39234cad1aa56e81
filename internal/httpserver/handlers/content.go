package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/docs/internal/domain"
	"github.com/MrSnakeDoc/docs/internal/httpserver/deps"
)

const (
	defaultSearchLimit = 20
	maxSearchLimit     = 100
)

type configResponse struct {
	EditMode bool `json:"editMode"`
}

// Config tells the UI whether editing controls should be shown.
func Config(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, configResponse{EditMode: d.EditMode})
	}
}

// ListPages lists pages in stored order, optionally filtered by
// ?category=<slug> and ?tag=<tag>.
func ListPages(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state, err := d.Store.Load(r.Context())
		if err != nil {
			fail(d, w, r, err)
			return
		}
		q := r.URL.Query()
		writeJSON(w, http.StatusOK, domain.FilterPages(state.Pages, q.Get("category"), q.Get("tag")))
	}
}

// PageBySlug serves one page by its routing slug.
func PageBySlug(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state, err := d.Store.Load(r.Context())
		if err != nil {
			fail(d, w, r, err)
			return
		}
		page, ok := state.PageBySlug(chi.URLParam(r, "slug"))
		if !ok {
			writeError(w, http.StatusNotFound, "page not found")
			return
		}
		writeJSON(w, http.StatusOK, page)
	}
}

// ListCategories lists categories with their page counts.
func ListCategories(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state, err := d.Store.Load(r.Context())
		if err != nil {
			fail(d, w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, domain.SummarizeCategories(state))
	}
}

// CategoryPages lists the pages filed under a category. The slug of the
// uncategorized group is not a real category, so those pages are served
// from /api/sidebar instead.
func CategoryPages(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state, err := d.Store.Load(r.Context())
		if err != nil {
			fail(d, w, r, err)
			return
		}
		category, ok := state.CategoryBySlug(chi.URLParam(r, "slug"))
		if !ok {
			writeError(w, http.StatusNotFound, "category not found")
			return
		}
		writeJSON(w, http.StatusOK, domain.PagesByCategory(state.Categories, state.Pages)[category.Slug])
	}
}

// Sidebar serves the navigation tree.
func Sidebar(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state, err := d.Store.Load(r.Context())
		if err != nil {
			fail(d, w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, domain.Sidebar(state))
	}
}

// Overview serves the dashboard figures.
func Overview(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state, err := d.Store.Load(r.Context())
		if err != nil {
			fail(d, w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, domain.Summarize(state))
	}
}

// Search ranks pages against ?q=. An empty query returns no results.
func Search(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := strings.TrimSpace(r.URL.Query().Get("q"))
		if query == "" {
			writeJSON(w, http.StatusOK, []domain.PageCandidate{})
			return
		}

		state, err := d.Store.Load(r.Context())
		if err != nil {
			fail(d, w, r, err)
			return
		}

		results := domain.RankPages(query, state.Pages)
		if limit := searchLimit(r.URL.Query().Get("limit")); len(results) > limit {
			results = results[:limit]
		}
		writeJSON(w, http.StatusOK, results)
	}
}

func searchLimit(raw string) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return defaultSearchLimit
	}
	if n > maxSearchLimit {
		return maxSearchLimit
	}
	return n
}
