package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/docs/internal/httpserver/deps"
	"github.com/MrSnakeDoc/docs/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/docs/internal/httpserver/mw"
)

func init() { Register("ops", registerOps) }

func registerOps(r chi.Router, d deps.Deps) {
	r.Get("/healthz", handlers.Healthz(d))

	restricted := r.With(mw.AllowOnlyCIDRS(d.AllowedCIDRS, d.TrustProxy, d.Logger))
	restricted.Get("/readyz", handlers.Readyz(d))
	restricted.Get("/infra", handlers.Infra(d))
}
