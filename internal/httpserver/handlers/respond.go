package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/MrSnakeDoc/docs/internal/admin"
	"github.com/MrSnakeDoc/docs/internal/domain"
	"github.com/MrSnakeDoc/docs/internal/httpserver/deps"
	"github.com/MrSnakeDoc/docs/internal/logger"
	"github.com/MrSnakeDoc/docs/internal/store"
)

// maxBodyBytes caps request bodies. Whole-document imports are the largest.
const maxBodyBytes = 8 << 20

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// decodeJSON reads a single JSON value from the request body into v.
// Unknown fields are ignored so clients can send back what they fetched,
// ids and timestamps included.
func decodeJSON(r *http.Request, w http.ResponseWriter, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", admin.ErrInvalidInput, err)
	}
	return nil
}

// decodeState reads a whole document from the request body with the same
// rules as a persisted blob.
func decodeState(r *http.Request, w http.ResponseWriter) (domain.AppState, error) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return domain.AppState{}, fmt.Errorf("%w: %v", admin.ErrInvalidInput, err)
	}
	state, err := domain.DecodeState(data)
	if err != nil {
		return domain.AppState{}, fmt.Errorf("%w: %w", admin.ErrInvalidInput, err)
	}
	return state, nil
}

// statusFor maps service and store errors to HTTP statuses.
func statusFor(err error) int {
	switch {
	case errors.Is(err, admin.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, admin.ErrInvalidInput),
		errors.Is(err, domain.ErrMissingID),
		errors.Is(err, domain.ErrMissingSlug):
		return http.StatusBadRequest
	case errors.Is(err, admin.ErrUnknownCategory):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrDuplicateSlug),
		errors.Is(err, domain.ErrDuplicateID),
		errors.Is(err, store.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// fail logs err and writes the matching error response. Server-side
// failures are logged at error level and their details are not echoed back,
// except for corrupt state which operators need to see.
func fail(d deps.Deps, w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status < http.StatusInternalServerError {
		d.Logger.Debug("request rejected",
			logger.String("path", r.URL.Path),
			logger.Int("status", status),
			logger.Error(err))
		writeError(w, status, err.Error())
		return
	}

	d.Logger.Error("request failed",
		logger.String("path", r.URL.Path),
		logger.Error(err))
	if errors.Is(err, domain.ErrCorruptState) {
		writeError(w, status, "stored state is corrupt; reset or repair it")
		return
	}
	writeError(w, status, http.StatusText(status))
}
