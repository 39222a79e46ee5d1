package middleware

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vasapolrittideah/postly-api/shared/auth"
	"github.com/vasapolrittideah/postly-api/shared/logger"
)

// jwtAuthenticator validates with a JWTAuthenticator and records the
// context it was called with.
type jwtAuthenticator struct {
	jwt     *auth.JWTAuthenticator
	lastCtx context.Context
}

func (a *jwtAuthenticator) Authenticate(ctx context.Context, token string) (*auth.Claims, error) {
	a.lastCtx = ctx
	return a.jwt.ValidateToken(token)
}

type requestKey struct{}

func TestRequireBearer(t *testing.T) {
	authenticator, err := auth.NewJWTAuthenticator(auth.Config{Secret: "test-secret"})
	require.NoError(t, err)

	valid, _, err := authenticator.GenerateToken("alice")
	require.NoError(t, err)

	expired, _, err := authenticator.
		WithClock(func() time.Time { return time.Now().Add(-2 * time.Hour) }).
		GenerateToken("alice")
	require.NoError(t, err)

	var seen string
	handler := RequireBearer(&jwtAuthenticator{jwt: authenticator})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = UsernameFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		name       string
		header     string
		wantStatus int
	}{
		{name: "valid token", header: "Bearer " + valid, wantStatus: http.StatusNoContent},
		{name: "lowercase scheme", header: "bearer " + valid, wantStatus: http.StatusNoContent},
		{name: "missing header", header: "", wantStatus: http.StatusUnauthorized},
		{name: "wrong scheme", header: "Basic " + valid, wantStatus: http.StatusUnauthorized},
		{name: "empty token", header: "Bearer ", wantStatus: http.StatusUnauthorized},
		{name: "garbage token", header: "Bearer abc.def.ghi", wantStatus: http.StatusUnauthorized},
		{name: "expired token", header: "Bearer " + expired, wantStatus: http.StatusUnauthorized},
	}

	var unauthorizedBodies []string
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = ""
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus == http.StatusNoContent {
				assert.Equal(t, "alice", seen)
				return
			}
			assert.Empty(t, seen)
			unauthorizedBodies = append(unauthorizedBodies, rec.Body.String())
		})
	}

	require.NotEmpty(t, unauthorizedBodies)
	for _, body := range unauthorizedBodies {
		assert.Equal(t, unauthorizedBodies[0], body)
	}
}

func TestRequireBearer_PassesRequestContext(t *testing.T) {
	jwtAuth, err := auth.NewJWTAuthenticator(auth.Config{Secret: "test-secret"})
	require.NoError(t, err)
	token, _, err := jwtAuth.GenerateToken("alice")
	require.NoError(t, err)

	authenticator := &jwtAuthenticator{jwt: jwtAuth}
	handler := RequireBearer(authenticator)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	ctx, cancel := context.WithCancel(context.WithValue(context.Background(), requestKey{}, "req-1"))
	req := httptest.NewRequest(http.MethodGet, "/", nil).WithContext(ctx)
	req.Header.Set("Authorization", "Bearer "+token)

	handler.ServeHTTP(httptest.NewRecorder(), req)

	require.NotNil(t, authenticator.lastCtx)
	assert.Equal(t, "req-1", authenticator.lastCtx.Value(requestKey{}))

	cancel()
	assert.ErrorIs(t, authenticator.lastCtx.Err(), context.Canceled)
}

func TestOptionalBearer(t *testing.T) {
	jwtAuth, err := auth.NewJWTAuthenticator(auth.Config{Secret: "test-secret"})
	require.NoError(t, err)
	token, _, err := jwtAuth.GenerateToken("alice")
	require.NoError(t, err)

	var seen string
	handler := OptionalBearer(&jwtAuthenticator{jwt: jwtAuth})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = UsernameFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		name     string
		header   string
		wantUser string
	}{
		{name: "valid token", header: "Bearer " + token, wantUser: "alice"},
		{name: "no header", header: ""},
		{name: "invalid token", header: "Bearer abc.def.ghi"},
		{name: "wrong scheme", header: "Basic " + token},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = "unset"
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusNoContent, rec.Code)
			assert.Equal(t, tt.wantUser, seen)
		})
	}
}

func TestUsernameFromContext_Empty(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Equal(t, "", UsernameFromContext(req.Context()))
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewWithWriter(&buf, "test", "info")

	handler := RequestLogger(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/brew", nil))

	assert.Contains(t, buf.String(), `"path":"/brew"`)
	assert.Contains(t, buf.String(), `"status":418`)
	assert.Contains(t, buf.String(), `"service":"test"`)
}
