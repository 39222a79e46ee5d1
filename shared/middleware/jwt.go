package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/vasapolrittideah/postly-api/shared/auth"
)

type contextKey struct{}

// UserClaimsKey is the context key under which validated claims are stored.
var UserClaimsKey = contextKey{}

var errMalformedHeader = errors.New("invalid authorization header format")

// TokenAuthenticator validates bearer tokens in the scope of a request.
type TokenAuthenticator interface {
	Authenticate(ctx context.Context, token string) (*auth.Claims, error)
}

// RequireBearer rejects requests without a valid bearer token. Every failure
// gets the same 401 body so callers cannot tell a bad signature from an
// expired token or a missing header.
func RequireBearer(authenticator TokenAuthenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := extractAndValidateJWT(r, authenticator)
			if err != nil {
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("WWW-Authenticate", `Bearer realm="postly"`)
				w.WriteHeader(http.StatusUnauthorized)
				_ = json.NewEncoder(w).Encode(map[string]string{"error": auth.ErrInvalidToken.Error()})
				return
			}

			ctx := context.WithValue(r.Context(), UserClaimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalBearer stores the claims of a valid bearer token when one is sent
// and otherwise lets the request through anonymously.
func OptionalBearer(authenticator TokenAuthenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") == "" {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := extractAndValidateJWT(r, authenticator)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), UserClaimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ClaimsFromContext returns the claims stored by RequireBearer.
func ClaimsFromContext(ctx context.Context) (*auth.Claims, bool) {
	claims, ok := ctx.Value(UserClaimsKey).(*auth.Claims)
	return claims, ok
}

// UsernameFromContext returns the authenticated username, or "" when absent.
func UsernameFromContext(ctx context.Context) string {
	claims, ok := ClaimsFromContext(ctx)
	if !ok {
		return ""
	}
	return claims.Username()
}

func extractAndValidateJWT(r *http.Request, authenticator TokenAuthenticator) (*auth.Claims, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return nil, errMalformedHeader
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" || parts[1] == "" {
		return nil, errMalformedHeader
	}

	return authenticator.Authenticate(r.Context(), strings.TrimSpace(parts[1]))
}
