package http

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/log"
)

const (
	sessionCookieName = "fintrack_session"
	refreshCookieName = "fintrack_refresh"
)

type contextKey int

const sessionKey contextKey = iota

// session is the signed-in user resolved for the current request.
type session struct {
	User  core.User
	Token string
}

// sessionFrom returns the request's session, or false for anonymous visitors.
func sessionFrom(ctx context.Context) (session, bool) {
	sess, ok := ctx.Value(sessionKey).(session)
	return sess, ok
}

// userID is "" for anonymous visitors.
func userID(ctx context.Context) string {
	sess, _ := sessionFrom(ctx)
	return sess.User.ID
}

func skipsSession(path string) bool {
	return strings.HasPrefix(path, "/static/") ||
		strings.HasPrefix(path, "/avatars/") ||
		path == "/healthz" || path == "/readyz"
}

// withSession resolves the session cookie into the request context. When the
// access token is gone or rejected the refresh cookie is traded for a new
// session. Cookies the backend rejects are cleared and the request continues
// anonymously.
func (s *Server) withSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if skipsSession(r.URL.Path) || s.auth == nil {
			next.ServeHTTP(w, r)
			return
		}
		access, refresh := cookieValue(r, sessionCookieName), cookieValue(r, refreshCookieName)
		if access == "" && refresh == "" {
			next.ServeHTTP(w, r)
			return
		}

		ctx := r.Context()
		user, err := s.auth.CurrentUser(ctx, access)
		if errors.Is(err, core.ErrUnauthenticated) && refresh != "" {
			var sess core.Session
			sess, user, err = s.auth.Resume(ctx, refresh)
			if err == nil {
				s.setSessionCookie(w, sess)
				access = sess.AccessToken
			}
		}
		if err != nil {
			if errors.Is(err, core.ErrUnauthenticated) {
				s.clearSessionCookie(w)
			} else {
				log.FromContext(ctx).WarnContext(ctx, "Session lookup failed",
					log.FieldError, err,
					log.FieldErrorType, log.ErrorTypeAuth)
			}
			next.ServeHTTP(w, r)
			return
		}

		ctx = context.WithValue(ctx, sessionKey, session{User: user, Token: access})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func cookieValue(r *http.Request, name string) string {
	c, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return c.Value
}

// requireUser redirects anonymous visitors to the login page.
func (s *Server) requireUser(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := sessionFrom(r.Context()); !ok {
			redirect(w, r, "/login")
			return
		}
		next(w, r)
	}
}

// setSessionCookie stores both tokens. The access cookie lives as long as the
// token; the refresh cookie for core.RefreshTTL.
func (s *Server) setSessionCookie(w http.ResponseWriter, sess core.Session) {
	c := s.cookie(sessionCookieName, sess.AccessToken)
	if ttl := time.Until(sess.ExpiresAt); !sess.ExpiresAt.IsZero() && ttl > time.Second {
		c.Expires = sess.ExpiresAt
		c.MaxAge = int(ttl.Seconds())
	}
	http.SetCookie(w, c)

	if sess.RefreshToken != "" {
		rc := s.cookie(refreshCookieName, sess.RefreshToken)
		rc.MaxAge = int(core.RefreshTTL.Seconds())
		http.SetCookie(w, rc)
	}
}

func (s *Server) clearSessionCookie(w http.ResponseWriter) {
	for _, name := range []string{sessionCookieName, refreshCookieName} {
		c := s.cookie(name, "")
		c.MaxAge = -1
		http.SetCookie(w, c)
	}
}

func (s *Server) cookie(name, value string) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secureCookie,
		SameSite: http.SameSiteLaxMode,
	}
}

// redirect sends HTMX requests an HX-Redirect header and everyone else a 303.
func redirect(w http.ResponseWriter, r *http.Request, target string) {
	if isHTMX(r) {
		NewHTMXResponse().Header("HX-Redirect", target).Write(w)
		return
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}
