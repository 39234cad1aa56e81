package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/docs/internal/httpserver/deps"
	"github.com/MrSnakeDoc/docs/internal/httpserver/handlers"
)

func init() { Register("public", registerPublic) }

func registerPublic(r chi.Router, d deps.Deps) {
	r.Get("/api/config", handlers.Config(d))
	r.Get("/api/pages", handlers.ListPages(d))
	r.Get("/api/pages/{slug}", handlers.PageBySlug(d))
	r.Get("/api/categories", handlers.ListCategories(d))
	r.Get("/api/categories/{slug}/pages", handlers.CategoryPages(d))
	r.Get("/api/sidebar", handlers.Sidebar(d))
	r.Get("/api/overview", handlers.Overview(d))
	r.Get("/api/search", handlers.Search(d))
}
