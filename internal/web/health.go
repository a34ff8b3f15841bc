package web

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/erazemk/zaloga/internal/db"
)

// Health handles GET /health.
func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status, database, code := "healthy", "connected", http.StatusOK
	if err := db.Ping(ctx, s.DB); err != nil {
		slog.Error("health check failed", "error", err)
		status, database, code = "degraded", "unreachable", http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{
		"status":    status,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"database":  database,
	})
}
