package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/docs/internal/httpserver/deps"
	"github.com/MrSnakeDoc/docs/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/docs/internal/httpserver/mw"
)

func init() {
	RegisterWhen("admin", func(d deps.Deps) bool { return d.EditMode && d.Admin != nil }, registerAdmin)
}

func registerAdmin(r chi.Router, d deps.Deps) {
	r.Group(func(r chi.Router) {
		r.Use(
			mw.EnforceHost(d.AllowedHosts, d.Logger),
			mw.AllowOnlyCIDRS(d.AllowedCIDRS, d.TrustProxy, d.Logger),
			mw.RateLimit(mw.RateLimitConfig{
				Burst:             d.AdminRateBurst,
				RefillPerIPPerMin: d.AdminRatePerMin,
				MaxEntries:        10000,
				TrustProxy:        d.TrustProxy,
			}),
		)

		r.Post("/api/admin/pages", handlers.AdminCreatePage(d))
		r.Get("/api/admin/pages/{id}", handlers.AdminGetPage(d))
		r.Put("/api/admin/pages/{id}", handlers.AdminPutPage(d))
		r.Delete("/api/admin/pages/{id}", handlers.AdminDeletePage(d))

		r.Post("/api/admin/categories", handlers.AdminCreateCategory(d))
		r.Get("/api/admin/categories/{id}", handlers.AdminGetCategory(d))
		r.Put("/api/admin/categories/{id}", handlers.AdminPutCategory(d))
		r.Delete("/api/admin/categories/{id}", handlers.AdminDeleteCategory(d))

		r.Get("/api/admin/state", handlers.AdminExportState(d))
		r.Put("/api/admin/state", handlers.AdminImportState(d))
	})
}
