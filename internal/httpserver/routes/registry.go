package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/docs/internal/httpserver/deps"
	"github.com/MrSnakeDoc/docs/internal/logger"
)

type (
	Registrar  func(r chi.Router, d deps.Deps)
	Middleware = func(http.Handler) http.Handler
)

type entry struct {
	name    string
	reg     Registrar
	enabled func(d deps.Deps) bool
	mws     []Middleware
}

var registry []entry

// Register a registrar with optional per-route middlewares.
func Register(name string, reg Registrar, mws ...Middleware) {
	RegisterWhen(name, nil, reg, mws...)
}

// RegisterWhen registers reg only if enabled(d) holds when the router is
// built. Routes that are skipped do not exist, so requests get a 404.
func RegisterWhen(name string, enabled func(d deps.Deps) bool, reg Registrar, mws ...Middleware) {
	registry = append(registry, entry{name: name, reg: reg, enabled: enabled, mws: mws})
}

// Called once from server.New()
func RegisterAll(r chi.Router, d deps.Deps) {
	for _, e := range registry {
		if e.enabled != nil && !e.enabled(d) {
			d.Logger.Debug("routes skipped", logger.String("group", e.name))
			continue
		}
		if len(e.mws) == 0 {
			e.reg(r, d)
		} else {
			e.reg(r.With(e.mws...), d) // apply per-route middlewares
		}
		d.Logger.Debug("routes registered", logger.String("group", e.name))
	}
}
