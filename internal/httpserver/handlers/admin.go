package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/docs/internal/admin"
	"github.com/MrSnakeDoc/docs/internal/httpserver/deps"
)

// ─────────────────────────────────────────────────────────────────
// Pages
// ─────────────────────────────────────────────────────────────────

func AdminGetPage(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, err := d.Admin.GetPage(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			fail(d, w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, page)
	}
}

func AdminCreatePage(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in admin.PageInput
		if err := decodeJSON(r, w, &in); err != nil {
			fail(d, w, r, err)
			return
		}
		page, err := d.Admin.CreatePage(r.Context(), in)
		if err != nil {
			fail(d, w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, page)
	}
}

// AdminPutPage creates or replaces the page at {id}.
func AdminPutPage(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in admin.PageInput
		if err := decodeJSON(r, w, &in); err != nil {
			fail(d, w, r, err)
			return
		}
		page, err := d.Admin.UpdatePage(r.Context(), chi.URLParam(r, "id"), in)
		if err != nil {
			fail(d, w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, page)
	}
}

func AdminDeletePage(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := d.Admin.DeletePage(r.Context(), chi.URLParam(r, "id")); err != nil {
			fail(d, w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// ─────────────────────────────────────────────────────────────────
// Categories
// ─────────────────────────────────────────────────────────────────

func AdminGetCategory(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := d.Admin.GetCategory(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			fail(d, w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, c)
	}
}

func AdminCreateCategory(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in admin.CategoryInput
		if err := decodeJSON(r, w, &in); err != nil {
			fail(d, w, r, err)
			return
		}
		c, err := d.Admin.CreateCategory(r.Context(), in)
		if err != nil {
			fail(d, w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, c)
	}
}

// AdminPutCategory creates or replaces the category at {id}.
func AdminPutCategory(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in admin.CategoryInput
		if err := decodeJSON(r, w, &in); err != nil {
			fail(d, w, r, err)
			return
		}
		c, err := d.Admin.UpdateCategory(r.Context(), chi.URLParam(r, "id"), in)
		if err != nil {
			fail(d, w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, c)
	}
}

func AdminDeleteCategory(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := d.Admin.DeleteCategory(r.Context(), chi.URLParam(r, "id")); err != nil {
			fail(d, w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// ─────────────────────────────────────────────────────────────────
// Whole document
// ─────────────────────────────────────────────────────────────────

func AdminExportState(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state, err := d.Admin.ExportState(r.Context())
		if err != nil {
			fail(d, w, r, err)
			return
		}
		w.Header().Set("Content-Disposition", `attachment; filename="docs-app-state.json"`)
		writeJSON(w, http.StatusOK, state)
	}
}

// AdminImportState replaces the whole document with the request body.
func AdminImportState(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state, err := decodeState(r, w)
		if err != nil {
			fail(d, w, r, err)
			return
		}
		if err := d.Admin.ImportState(r.Context(), state); err != nil {
			fail(d, w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
