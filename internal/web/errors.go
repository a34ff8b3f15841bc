package web

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/erazemk/zaloga/internal/service"
)

// renderError renders the error page with the given status.
func (s *Server) renderError(w http.ResponseWriter, r *http.Request, status int, message string) {
	data := &struct {
		PageData
		Status  int
		Message string
	}{
		PageData: s.page(w, r, http.StatusText(status)),
		Status:   status,
		Message:  message,
	}
	s.Templates.Render(w, status, "error.html", data)
}

// handleError maps a service error to a response: login redirect, 403, 404
// or a logged 500.
func (s *Server) handleError(w http.ResponseWriter, r *http.Request, err error, op string) {
	switch {
	case errors.Is(err, service.ErrUnauthenticated):
		redirectToLogin(w, r)
	case errors.Is(err, service.ErrForbidden):
		s.renderError(w, r, http.StatusForbidden, "You do not have permission to change this.")
	case errors.Is(err, service.ErrNotFound):
		s.renderError(w, r, http.StatusNotFound, "The page you are looking for does not exist.")
	default:
		slog.Error("request failed", "op", op, "error", err)
		s.renderError(w, r, http.StatusInternalServerError, "Something went wrong. Please try again later.")
	}
}

// pathID parses a positive integer URL parameter. It renders 404 and
// returns false when the value is not a valid id.
func (s *Server) pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		s.renderError(w, r, http.StatusNotFound, "The page you are looking for does not exist.")
		return 0, false
	}
	return id, true
}
