package web

import (
	"context"
	"crypto/subtle"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/erazemk/zaloga/internal/auth"
	"github.com/erazemk/zaloga/internal/model"
	"github.com/erazemk/zaloga/internal/service"
	"github.com/erazemk/zaloga/internal/store"
)

type webContextKey string

const (
	webUserKey   webContextKey = "webuser"
	webClaimsKey webContextKey = "webclaims"
	webCSRFKey   webContextKey = "webcsrf"
)

const (
	tokenCookie = "token"
	csrfCookie  = "csrf_token"
	csrfField   = "_csrf"
	csrfHeader  = "X-CSRF-Token"
)

// loadUser resolves the session cookie to a user. Requests without a valid
// session continue anonymously. The user is read from the store on every
// request so role changes apply immediately.
func (s *Server) loadUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(tokenCookie)
		if err != nil || cookie.Value == "" {
			next.ServeHTTP(w, r)
			return
		}

		claims, err := auth.ValidateToken(s.JWTSecret, cookie.Value)
		if err != nil {
			s.clearAuthCookie(w)
			next.ServeHTTP(w, r)
			return
		}

		// A store failure leaves the cookie alone; only a revoked token or a
		// deleted account ends the session.
		revoked, err := store.IsTokenRevoked(r.Context(), s.DB, claims.ID)
		if err != nil {
			slog.Error("failed to check token revocation", "error", err)
			next.ServeHTTP(w, r)
			return
		}
		if revoked {
			s.clearAuthCookie(w)
			next.ServeHTTP(w, r)
			return
		}

		user, err := s.Accounts.User(r.Context(), claims.UserID)
		if errors.Is(err, service.ErrNotFound) {
			s.clearAuthCookie(w)
			next.ServeHTTP(w, r)
			return
		}
		if err != nil {
			slog.Error("failed to load session user", "user_id", claims.UserID, "error", err)
			next.ServeHTTP(w, r)
			return
		}

		ctx := context.WithValue(r.Context(), webUserKey, user)
		ctx = context.WithValue(ctx, webClaimsKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireUser redirects anonymous visitors to the login page.
func (s *Server) requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if currentUser(r.Context()) == nil {
			redirectToLogin(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// requireAdmin lets only administrators through.
func (s *Server) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := currentUser(r.Context())
		if user == nil {
			redirectToLogin(w, r)
			return
		}
		if !user.IsAdmin {
			s.renderError(w, r, http.StatusForbidden, "You do not have permission to access this page.")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func redirectToLogin(w http.ResponseWriter, r *http.Request) {
	target := "/Account/Login?returnUrl=" + url.QueryEscape(r.URL.RequestURI())
	if r.Method != http.MethodGet {
		target = "/Account/Login"
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// csrf implements double-submit anti-forgery tokens: every visitor gets a
// random token cookie and each POST must echo it in a form field or header.
func (s *Server) csrf(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := ""
		if c, err := r.Cookie(csrfCookie); err == nil && c.Value != "" {
			token = c.Value
		} else {
			token = uuid.NewString()
			http.SetCookie(w, &http.Cookie{
				Name:     csrfCookie,
				Value:    token,
				Path:     "/",
				HttpOnly: true,
				Secure:   s.SecureCookies,
				SameSite: http.SameSiteLaxMode,
			})
		}

		if r.Method == http.MethodPost {
			sent := r.Header.Get(csrfHeader)
			if sent == "" {
				sent = r.FormValue(csrfField)
			}
			if sent == "" || subtle.ConstantTimeCompare([]byte(sent), []byte(token)) != 1 {
				slog.Warn("csrf token mismatch", "path", r.URL.Path, "remote", r.RemoteAddr)
				http.Error(w, "invalid anti-forgery token", http.StatusForbidden)
				return
			}
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), webCSRFKey, token)))
	})
}

// LoggingMiddleware logs every HTTP request using structured logging.
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		attrs := []any{
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"duration", time.Since(start).String(),
			"remote", r.RemoteAddr,
		}
		if id := middleware.GetReqID(r.Context()); id != "" {
			attrs = append(attrs, "request_id", id)
		}
		if status >= http.StatusInternalServerError {
			slog.Error("http request", attrs...)
		} else {
			slog.Info("http request", attrs...)
		}
	})
}

func (s *Server) setAuthCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     tokenCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.SecureCookies,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(auth.TokenExpiry.Seconds()),
	})
}

// clearAuthCookie clears the authentication cookie with consistent attributes.
func (s *Server) clearAuthCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     tokenCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

// currentUser returns the signed-in user, or nil.
func currentUser(ctx context.Context) *model.User {
	u, _ := ctx.Value(webUserKey).(*model.User)
	return u
}

// currentActor returns the acting identity; anonymous when signed out.
func currentActor(ctx context.Context) model.Actor {
	if u := currentUser(ctx); u != nil {
		return u.Actor()
	}
	return model.Actor{}
}

func currentClaims(ctx context.Context) *auth.Claims {
	c, _ := ctx.Value(webClaimsKey).(*auth.Claims)
	return c
}

func csrfToken(ctx context.Context) string {
	t, _ := ctx.Value(webCSRFKey).(string)
	return t
}
