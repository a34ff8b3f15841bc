package web

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/erazemk/zaloga/internal/model"
	"github.com/erazemk/zaloga/internal/service"
	webembed "github.com/erazemk/zaloga/web"
)

// Templates holds parsed HTML templates.
type Templates struct {
	templates map[string]*template.Template
}

// FuncMap returns the template function map.
func FuncMap() template.FuncMap {
	return template.FuncMap{
		"date": func(t time.Time) string {
			return t.Local().Format("2006-01-02")
		},
		"datetime": func(t time.Time) string {
			return t.Local().Format("2006-01-02 15:04")
		},
		"stockClass": func(item model.Item) string {
			switch {
			case item.IsOutOfStock():
				return "stock-out"
			case item.IsLowStock():
				return "stock-low"
			default:
				return "stock-ok"
			}
		},
	}
}

var pages = []string{
	"error.html",
	"login.html",
	"register.html",
	"settings.html",
	"inventories.html",
	"inventory_detail.html",
	"inventory_form.html",
	"inventory_delete.html",
	"items.html",
	"item_form.html",
	"admin_dashboard.html",
	"admin_users.html",
	"admin_inventories.html",
	"admin_items.html",
	"admin_content.html",
}

// LoadTemplates parses all page templates with the layout.
func LoadTemplates() (*Templates, error) {
	tfs := webembed.TemplatesFS()

	layoutBytes, err := fs.ReadFile(tfs, "layout.html")
	if err != nil {
		return nil, fmt.Errorf("reading layout template: %w", err)
	}

	ts := &Templates{templates: make(map[string]*template.Template)}

	for _, page := range pages {
		pageBytes, err := fs.ReadFile(tfs, page)
		if err != nil {
			return nil, fmt.Errorf("reading template %s: %w", page, err)
		}

		tmpl := template.New(page).Funcs(FuncMap())
		tmpl, err = tmpl.Parse(string(layoutBytes))
		if err != nil {
			return nil, fmt.Errorf("parsing layout for %s: %w", page, err)
		}
		tmpl, err = tmpl.Parse(string(pageBytes))
		if err != nil {
			return nil, fmt.Errorf("parsing template %s: %w", page, err)
		}

		ts.templates[page] = tmpl
	}

	return ts, nil
}

// Render renders a page with the given status code. Output is buffered so a
// template error produces a clean 500 instead of a half-written page.
func (ts *Templates) Render(w http.ResponseWriter, status int, name string, data any) {
	tmpl, ok := ts.templates[name]
	if !ok {
		http.Error(w, "template not found", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		slog.Error("failed to render template", "template", name, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		slog.Error("failed to write page", "template", name, "error", err)
	}
}

// PageData is the base data passed to all templates.
type PageData struct {
	Title  string
	User   *model.User
	CSRF   string
	Flash  *Flash
	Error  string
	Errors model.ValidationErrors
	Text   service.SiteText
}

// CanModify reports whether the signed-in user may change a resource with
// the given creator.
func (p *PageData) CanModify(creator model.Creator) bool {
	if p.User == nil {
		return false
	}
	return model.CanModify(creator, p.User.Actor())
}

// IsAdmin reports whether the signed-in user is an administrator.
func (p *PageData) IsAdmin() bool {
	return p.User != nil && p.User.IsAdmin
}

// Server holds all dependencies for page handlers.
type Server struct {
	DB            *sqlx.DB
	Templates     *Templates
	JWTSecret     string
	SecureCookies bool

	Inventories *service.Inventories
	Items       *service.Items
	Admin       *service.Admin
	Accounts    *service.Accounts
}

// page builds the common page data for a request and consumes its flash.
func (s *Server) page(w http.ResponseWriter, r *http.Request, title string) PageData {
	text, err := s.Admin.LoadSiteText(r.Context())
	if err != nil {
		slog.Error("failed to load site text", "error", err)
	}
	return PageData{
		Title: title,
		User:  currentUser(r.Context()),
		CSRF:  csrfToken(r.Context()),
		Flash: s.popFlash(w, r),
		Text:  text,
	}
}
