package auth

import (
	"context"
	"net/http"
	"strings"
)

type accountKey struct{}

func WithAccount(ctx context.Context, acc *Account) context.Context {
	return context.WithValue(ctx, accountKey{}, acc)
}

// AccountFromContext returns the account attached by RequireAuth.
func AccountFromContext(ctx context.Context) (*Account, bool) {
	acc, ok := ctx.Value(accountKey{}).(*Account)
	return acc, ok && acc != nil
}

// RequireAuth lets a request through only if it carries a valid access token
// for an existing account. The sanitized account is put in the request
// context. Every rejection is the same 401.
func RequireAuth(next http.Handler, svc Service) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		acc, err := svc.Authenticate(r.Context(), accessToken(r))
		if err != nil {
			encodeError(w, ErrUnauthorized, nil)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithAccount(r.Context(), acc)))
	})
}

// accessToken reads the accessToken cookie, falling back to a bearer
// Authorization header.
func accessToken(r *http.Request) string {
	if c, err := r.Cookie(AccessTokenCookie); err == nil && c.Value != "" {
		return c.Value
	}
	if t, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok {
		return strings.TrimSpace(t)
	}
	return ""
}
