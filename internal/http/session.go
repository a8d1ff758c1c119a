package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"carteira/internal/auth"
	"carteira/internal/core"
	"carteira/internal/log"
)

const sessionCookie = "carteira_session"

type ctxKey int

const userKey ctxKey = iota

func withUser(ctx context.Context, u core.User) context.Context {
	return context.WithValue(ctx, userKey, u)
}

func userFrom(ctx context.Context) (core.User, bool) {
	u, ok := ctx.Value(userKey).(core.User)
	return u, ok
}

// startSession issues a token for u. With remember the cookie persists for
// RememberTTL; otherwise it is a browser-session cookie backed by a token
// valid for SessionTTL.
func (s *Server) startSession(w http.ResponseWriter, u core.User, remember bool) error {
	ttl := s.opts.SessionTTL
	if remember {
		ttl = s.opts.RememberTTL
	}
	token, expires, err := s.tokens.Issue(u, ttl)
	if err != nil {
		return err
	}
	c := &http.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.opts.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	}
	if remember {
		c.Expires = expires
		c.MaxAge = int(time.Until(expires).Seconds())
	}
	http.SetCookie(w, c)
	return nil
}

func (s *Server) endSession(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.opts.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

// sessionUser resolves the cookie to a stored user.
func (s *Server) sessionUser(r *http.Request) (core.User, error) {
	c, err := r.Cookie(sessionCookie)
	if err != nil {
		return core.User{}, auth.ErrInvalidSession
	}
	sess, err := s.tokens.Parse(c.Value)
	if err != nil {
		return core.User{}, err
	}
	return s.auth.CurrentUser(r.Context(), sess.UserID)
}

// requireUser sends anonymous visitors to the login screen and puts the
// signed-in user into the request context.
func (s *Server) requireUser(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, err := s.sessionUser(r)
		if err != nil {
			logger := log.FromContext(r.Context())
			switch {
			case errors.Is(err, auth.ErrSessionExpired):
				logger.InfoContext(r.Context(), "Session expired")
			case errors.Is(err, core.ErrNotFound):
				logger.WarnContext(r.Context(), "Session for unknown user")
			case !errors.Is(err, auth.ErrInvalidSession):
				logger.ErrorContext(r.Context(), "Session lookup failed", log.FieldError, err)
			}
			s.endSession(w)
			redirect(w, r, "/login")
			return
		}

		ctx := withUser(r.Context(), u)
		ctx = context.WithValue(ctx, log.LoggerContextKey, log.FromContext(ctx).With(log.FieldUserID, u.ID))
		next(w, r.WithContext(ctx))
	})
}

// mustUser returns the user set by requireUser.
func mustUser(r *http.Request) core.User {
	u, _ := userFrom(r.Context())
	return u
}
