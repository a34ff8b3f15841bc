package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/erazemk/zaloga/internal/model"
	"github.com/erazemk/zaloga/internal/service"
)

// jsonResponse writes a JSON response with the given status code.
func jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("error encoding response", "error", err)
		}
	}
}

// jsonError writes a JSON error response.
func jsonError(w http.ResponseWriter, status int, message string) {
	jsonResponse(w, status, map[string]string{"error": message})
}

// decodeJSON decodes a JSON request body into the given target.
func decodeJSON(r *http.Request, target any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(target)
}

// serviceError maps a service error to a JSON error response.
func serviceError(w http.ResponseWriter, err error, op string) {
	var verrs model.ValidationErrors
	switch {
	case errors.As(err, &verrs):
		jsonResponse(w, http.StatusBadRequest, map[string]any{"error": "validation failed", "fields": verrs})
	case errors.Is(err, service.ErrUnauthenticated):
		jsonError(w, http.StatusUnauthorized, "not authenticated")
	case errors.Is(err, service.ErrForbidden):
		jsonError(w, http.StatusForbidden, "insufficient permissions")
	case errors.Is(err, service.ErrNotFound):
		jsonError(w, http.StatusNotFound, "not found")
	case errors.Is(err, service.ErrSelfToggle):
		jsonError(w, http.StatusBadRequest, err.Error())
	default:
		slog.Error("request failed", "op", op, "error", err)
		jsonError(w, http.StatusInternalServerError, "internal error")
	}
}

// pathID parses a positive integer URL parameter.
func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		jsonError(w, http.StatusBadRequest, "invalid "+name)
		return 0, false
	}
	return id, true
}
