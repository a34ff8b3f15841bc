package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/jmoiron/sqlx"

	"github.com/erazemk/zaloga/internal/service"
)

// Options configures the API router.
type Options struct {
	JWTSecret   string
	CORSOrigins []string
	PageSize    int
}

// NewRouter creates the API router with all endpoints registered under /api.
func NewRouter(db *sqlx.DB, opts Options) http.Handler {
	accounts := service.NewAccounts(db)
	authHandler := &AuthHandler{DB: db, JWTSecret: opts.JWTSecret, Accounts: accounts}
	inventoriesHandler := &InventoriesHandler{Inventories: service.NewInventories(db)}
	itemsHandler := &ItemsHandler{Items: service.NewItems(db, opts.PageSize)}
	adminHandler := &AdminHandler{Admin: service.NewAdmin(db)}

	origins := opts.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
		MaxAge:         300,
	}))
	r.Use(AuthMiddleware(opts.JWTSecret, db))

	r.Route("/api", func(r chi.Router) {
		// Public: login and reads.
		r.Post("/auth/login", authHandler.Login)
		r.Get("/inventories", inventoriesHandler.List)
		r.Get("/inventories/{id}", inventoriesHandler.Get)
		r.Get("/inventories/{id}/items", itemsHandler.List)
		r.Get("/items", itemsHandler.List)
		r.Get("/items/{id}", itemsHandler.Get)

		// Writes need a token.
		r.Group(func(r chi.Router) {
			r.Use(RequireUser)
			r.Put("/auth/password", authHandler.ChangePassword)
			r.Post("/auth/logout", authHandler.Logout)
			r.Post("/inventories", inventoriesHandler.Create)
			r.Put("/inventories/{id}", inventoriesHandler.Update)
			r.Delete("/inventories/{id}", inventoriesHandler.Delete)
			r.Post("/inventories/{id}/items", itemsHandler.Create)
			r.Put("/items/{id}", itemsHandler.Update)
			r.Delete("/items/{id}", itemsHandler.Delete)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(RequireAdmin)
			r.Get("/dashboard", adminHandler.Dashboard)
			r.Get("/users", adminHandler.Users)
			r.Post("/users/{id}/toggle-admin", adminHandler.ToggleAdmin)
		})
	})

	return r
}

// routeHasParam reports whether the matched route declares the URL parameter.
func routeHasParam(r *http.Request, name string) bool {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		return false
	}
	for _, key := range rctx.URLParams.Keys {
		if key == name {
			return true
		}
	}
	return false
}
