package web

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/erazemk/zaloga/internal/auth"
	"github.com/erazemk/zaloga/internal/model"
	"github.com/erazemk/zaloga/internal/service"
	"github.com/erazemk/zaloga/internal/store"
)

type loginPage struct {
	PageData
	Email     string
	ReturnURL string
}

// safeReturnURL keeps redirects on this site.
func safeReturnURL(u string) string {
	if u == "" || !strings.HasPrefix(u, "/") || strings.HasPrefix(u, "//") || strings.HasPrefix(u, "/\\") {
		return "/Inventory"
	}
	return u
}

// LoginPage handles GET /Account/Login.
func (s *Server) LoginPage(w http.ResponseWriter, r *http.Request) {
	s.Templates.Render(w, http.StatusOK, "login.html", &loginPage{
		PageData:  s.page(w, r, "Log in"),
		ReturnURL: safeReturnURL(r.URL.Query().Get("returnUrl")),
	})
}

// LoginSubmit handles POST /Account/Login.
func (s *Server) LoginSubmit(w http.ResponseWriter, r *http.Request) {
	email := r.FormValue("email")
	password := r.FormValue("password")
	returnURL := safeReturnURL(r.FormValue("returnUrl"))

	fail := func(msg string) {
		data := &loginPage{PageData: s.page(w, r, "Log in"), Email: email, ReturnURL: returnURL}
		data.Error = msg
		s.Templates.Render(w, http.StatusOK, "login.html", data)
	}

	if email == "" || password == "" {
		fail("Enter your email and password.")
		return
	}

	user, err := s.Accounts.Authenticate(r.Context(), email, password)
	if errors.Is(err, service.ErrInvalidCredentials) {
		slog.Warn("failed login", "email", email, "remote", r.RemoteAddr)
		fail("Invalid email or password.")
		return
	}
	if err != nil {
		slog.Error("failed to authenticate", "error", err)
		fail("Login failed. Please try again.")
		return
	}

	if err := s.signIn(w, user); err != nil {
		slog.Error("failed to generate token", "error", err)
		fail("Login failed. Please try again.")
		return
	}

	slog.Info("user logged in", "user", user.Email)
	http.Redirect(w, r, returnURL, http.StatusSeeOther)
}

func (s *Server) signIn(w http.ResponseWriter, user *model.User) error {
	token, err := auth.GenerateToken(s.JWTSecret, user.ID, user.Email)
	if err != nil {
		return err
	}
	s.setAuthCookie(w, token)
	return nil
}

type registerPage struct {
	PageData
	Form model.Registration
}

// RegisterPage handles GET /Account/Register.
func (s *Server) RegisterPage(w http.ResponseWriter, r *http.Request) {
	s.Templates.Render(w, http.StatusOK, "register.html", &registerPage{PageData: s.page(w, r, "Register")})
}

// RegisterSubmit handles POST /Account/Register.
func (s *Server) RegisterSubmit(w http.ResponseWriter, r *http.Request) {
	reg := model.Registration{
		FirstName: r.FormValue("first_name"),
		LastName:  r.FormValue("last_name"),
		Email:     r.FormValue("email"),
		Password:  r.FormValue("password"),
	}

	if reg.Password != r.FormValue("confirm_password") {
		data := &registerPage{PageData: s.page(w, r, "Register"), Form: reg}
		data.Errors = model.ValidationErrors{"ConfirmPassword": "Passwords do not match"}
		s.Templates.Render(w, http.StatusUnprocessableEntity, "register.html", data)
		return
	}

	user, err := s.Accounts.Register(r.Context(), reg)
	var verrs model.ValidationErrors
	if errors.As(err, &verrs) {
		reg.Password = ""
		data := &registerPage{PageData: s.page(w, r, "Register"), Form: reg}
		data.Errors = verrs
		s.Templates.Render(w, http.StatusUnprocessableEntity, "register.html", data)
		return
	}
	if err != nil {
		s.handleError(w, r, err, "register")
		return
	}

	slog.Info("user registered", "user", user.Email)
	if err := s.signIn(w, user); err != nil {
		slog.Error("failed to generate token", "error", err)
		http.Redirect(w, r, "/Account/Login", http.StatusSeeOther)
		return
	}
	s.flashSuccess(w, "Welcome, "+user.FirstName+"! Your account has been created.")
	http.Redirect(w, r, "/Inventory", http.StatusSeeOther)
}

// Logout handles POST /Account/Logout. The session token is revoked so a
// copied cookie stops working too.
func (s *Server) Logout(w http.ResponseWriter, r *http.Request) {
	if claims := currentClaims(r.Context()); claims != nil && claims.ExpiresAt != nil {
		if err := store.RevokeToken(r.Context(), s.DB, claims.ID, claims.ExpiresAt.Time); err != nil {
			slog.Error("failed to revoke token", "error", err)
		}
	}
	s.clearAuthCookie(w)
	if u := currentUser(r.Context()); u != nil {
		slog.Info("user logged out", "user", u.Email)
	}
	http.Redirect(w, r, "/Inventory", http.StatusSeeOther)
}

// SettingsPage handles GET /Account/Settings.
func (s *Server) SettingsPage(w http.ResponseWriter, r *http.Request) {
	s.Templates.Render(w, http.StatusOK, "settings.html", &struct{ PageData }{s.page(w, r, "Settings")})
}

// SettingsSubmit handles POST /Account/Settings.
func (s *Server) SettingsSubmit(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r.Context())
	current := r.FormValue("current_password")
	next := r.FormValue("new_password")

	render := func(errs model.ValidationErrors) {
		data := &struct{ PageData }{s.page(w, r, "Settings")}
		data.Errors = errs
		s.Templates.Render(w, http.StatusUnprocessableEntity, "settings.html", data)
	}

	if next != r.FormValue("confirm_password") {
		render(model.ValidationErrors{"ConfirmPassword": "Passwords do not match"})
		return
	}

	err := s.Accounts.ChangePassword(r.Context(), user.Actor(), current, next)
	var verrs model.ValidationErrors
	if errors.As(err, &verrs) {
		render(verrs)
		return
	}
	if err != nil {
		s.handleError(w, r, err, "change password")
		return
	}

	slog.Info("password changed", "user", user.Email)
	s.flashSuccess(w, "Your password has been changed.")
	http.Redirect(w, r, "/Account/Settings", http.StatusSeeOther)
}
