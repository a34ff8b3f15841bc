package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jmoiron/sqlx"

	"github.com/erazemk/zaloga/internal/service"
	webembed "github.com/erazemk/zaloga/web"
)

// Options configures the web router.
type Options struct {
	JWTSecret     string
	SecureCookies bool
	PageSize      int
}

// NewRouter creates the web page router with all page routes registered.
func NewRouter(db *sqlx.DB, opts Options) (http.Handler, error) {
	templates, err := LoadTemplates()
	if err != nil {
		return nil, err
	}

	s := &Server{
		DB:            db,
		Templates:     templates,
		JWTSecret:     opts.JWTSecret,
		SecureCookies: opts.SecureCookies,
		Inventories:   service.NewInventories(db),
		Items:         service.NewItems(db, opts.PageSize),
		Admin:         service.NewAdmin(db),
		Accounts:      service.NewAccounts(db),
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/health", s.Health)
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(webembed.StaticFS()))))

	r.Group(func(r chi.Router) {
		r.Use(s.csrf, s.loadUser)

		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, "/Inventory", http.StatusFound)
		})

		r.Route("/Account", func(r chi.Router) {
			r.Get("/Login", s.LoginPage)
			r.Post("/Login", s.LoginSubmit)
			r.Get("/Register", s.RegisterPage)
			r.Post("/Register", s.RegisterSubmit)
			r.With(s.requireUser).Post("/Logout", s.Logout)
			r.With(s.requireUser).Get("/Settings", s.SettingsPage)
			r.With(s.requireUser).Post("/Settings", s.SettingsSubmit)
		})

		r.Route("/Inventory", func(r chi.Router) {
			r.Get("/", s.InventoryIndex)
			r.Get("/Details/{id}", s.InventoryDetails)

			r.Group(func(r chi.Router) {
				r.Use(s.requireUser)
				r.Get("/Create", s.InventoryCreatePage)
				r.Post("/Create", s.InventoryCreateSubmit)
				r.Get("/Edit/{id}", s.InventoryEditPage)
				r.Post("/Edit/{id}", s.InventoryEditSubmit)
				r.Get("/Delete/{id}", s.InventoryDeletePage)
				r.Post("/Delete/{id}", s.InventoryDeleteSubmit)
			})
		})

		r.Route("/Item", func(r chi.Router) {
			r.Get("/", s.ItemIndex)
			r.Get("/Inventory/{inventoryId}", s.ItemsByInventory)
			r.Get("/Photo/{id}", s.ItemPhoto)

			r.Group(func(r chi.Router) {
				r.Use(s.requireUser)
				r.Get("/Create", s.ItemCreatePage)
				r.Post("/Create", s.ItemCreateSubmit)
				r.Get("/Edit/{id}", s.ItemEditPage)
				r.Post("/Edit/{id}", s.ItemEditSubmit)
				r.Post("/Delete/{id}", s.ItemDeleteSubmit)
				r.Post("/Photo/{id}", s.ItemPhotoSubmit)
			})
		})

		r.Route("/Admin", func(r chi.Router) {
			r.Use(s.requireAdmin)
			r.Get("/", s.AdminDashboard)
			r.Get("/Users", s.AdminUsers)
			r.Post("/Users/{id}/ToggleAdmin", s.AdminToggleAdmin)
			r.Get("/Inventories", s.AdminInventories)
			r.Post("/Inventories/{id}/Delete", s.AdminDeleteInventory)
			r.Get("/Items", s.AdminItems)
			r.Post("/Items/{id}/Delete", s.AdminDeleteItem)
			r.Get("/Content", s.AdminContent)
			r.Post("/Content", s.AdminContentSubmit)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		s.renderError(w, r, http.StatusNotFound, "The page you are looking for does not exist.")
	})

	return r, nil
}
