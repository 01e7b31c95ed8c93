package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// DefaultCookieName is the session cookie name.
const DefaultCookieName = "vnav_session"

type ctxKey struct{}

type sessionInfo struct {
	id        string
	principal Principal
}

// FromContext returns the principal attached by Middleware.
func FromContext(ctx context.Context) (Principal, bool) {
	info, ok := ctx.Value(ctxKey{}).(*sessionInfo)
	if !ok {
		return Principal{}, false
	}
	return info.principal, true
}

// SessionIDFromContext returns the session ID attached by Middleware.
func SessionIDFromContext(ctx context.Context) (string, bool) {
	info, ok := ctx.Value(ctxKey{}).(*sessionInfo)
	if !ok {
		return "", false
	}
	return info.id, true
}

// WithPrincipal returns a context carrying p for sessionID.
func WithPrincipal(ctx context.Context, sessionID string, p Principal) context.Context {
	return context.WithValue(ctx, ctxKey{}, &sessionInfo{id: sessionID, principal: p})
}

// Middleware loads the principal named by the session cookie and attaches it
// to the request context. Requests without a valid session pass through
// anonymously; store failures are logged and treated the same way.
func Middleware(store Store, cookieName string) func(http.Handler) http.Handler {
	logger := slog.Default().With("component", "auth")
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c, err := r.Cookie(cookieName)
			if err != nil || c.Value == "" {
				next.ServeHTTP(w, r)
				return
			}

			p, err := store.Get(r.Context(), c.Value)
			switch {
			case err == nil:
				r = r.WithContext(WithPrincipal(r.Context(), c.Value, p))
			case errors.Is(err, ErrNoSession), errors.Is(err, ErrSessionExpired):
			default:
				logger.Warn("session lookup failed", "error", err)
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Login stores p under a new session ID and sets the session cookie.
func Login(ctx context.Context, w http.ResponseWriter, store Store, cookieName string, p Principal) (string, error) {
	id := uuid.NewString()
	if err := store.Put(ctx, id, p); err != nil {
		return "", err
	}
	cookie := &http.Cookie{
		Name:     cookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	if exp := p.ExpiresAt(); !exp.IsZero() {
		cookie.Expires = exp
	}
	http.SetCookie(w, cookie)
	return id, nil
}

// Logout deletes the session named by the request cookie and clears it.
func Logout(w http.ResponseWriter, r *http.Request, store Store, cookieName string) error {
	c, err := r.Cookie(cookieName)
	if err == nil && c.Value != "" {
		if err := store.Delete(r.Context(), c.Value); err != nil {
			return err
		}
	}
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
	})
	return nil
}
