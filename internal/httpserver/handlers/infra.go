package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/MrSnakeDoc/docs/internal/httpserver/deps"
)

type componentStatus struct {
	OK         bool   `json:"ok"`
	Backend    string `json:"backend,omitempty"`
	Pages      *int   `json:"pages,omitempty"`
	Categories *int   `json:"categories,omitempty"`
	Mode       string `json:"mode,omitempty"`
	Error      string `json:"error,omitempty"`
}

type infraResponse struct {
	Status     string                     `json:"status"`
	Components map[string]componentStatus `json:"components"`
}

// Infra reports the state of the storage backend and the document it holds.
func Infra(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		mode := "read-only"
		if d.EditMode {
			mode = "edit"
		}

		components := map[string]componentStatus{
			"backend":  checkBackend(ctx, d),
			"document": checkDocument(ctx, d),
			"admin":    {OK: true, Mode: mode},
		}

		writeJSON(w, http.StatusOK, infraResponse{
			Status:     determineStatus(components),
			Components: components,
		})
	}
}

func determineStatus(components map[string]componentStatus) string {
	if doc, ok := components["document"]; ok && !doc.OK {
		return "critical" // nothing can be served
	}
	if backend, ok := components["backend"]; ok && !backend.OK {
		return "degraded"
	}
	return "ok"
}

func checkBackend(ctx context.Context, d deps.Deps) componentStatus {
	if d.Pinger == nil {
		return componentStatus{OK: true, Backend: d.Backend}
	}
	if err := d.Pinger.Ping(ctx); err != nil {
		return componentStatus{OK: false, Backend: d.Backend, Error: err.Error()}
	}
	return componentStatus{OK: true, Backend: d.Backend}
}

func checkDocument(ctx context.Context, d deps.Deps) componentStatus {
	state, err := d.Store.Load(ctx)
	if err != nil {
		return componentStatus{OK: false, Error: err.Error()}
	}
	pages, categories := len(state.Pages), len(state.Categories)
	return componentStatus{OK: true, Pages: &pages, Categories: &categories}
}
