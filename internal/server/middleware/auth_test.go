package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testTokenValidator is a test implementation of TokenValidator for unit tests.
type testTokenValidator struct {
	validTokens map[string]uuid.UUID
}

func newTestTokenValidator() *testTokenValidator {
	return &testTokenValidator{validTokens: make(map[string]uuid.UUID)}
}

func (v *testTokenValidator) addValidToken(token string, clientID uuid.UUID) {
	v.validTokens[token] = clientID
}

func (v *testTokenValidator) ValidateToken(tokenString string) (ClientIDGetter, error) {
	clientID, ok := v.validTokens[tokenString]
	if !ok {
		return nil, fmt.Errorf("invalid token")
	}
	return &testClaims{clientID: clientID}, nil
}

type testClaims struct {
	clientID uuid.UUID
}

func (c *testClaims) GetClientID() uuid.UUID {
	return c.clientID
}

func okHandler(called *bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		*called = true
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	validator := newTestTokenValidator()
	clientID := uuid.New()
	validator.addValidToken("valid-test-token-123", clientID)

	var contextClientID uuid.UUID
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := GetClientID(r)
		require.NoError(t, err)
		contextClientID = id
		w.WriteHeader(http.StatusOK)
	})

	for _, header := range []string{"Bearer valid-test-token-123", "bearer valid-test-token-123", "BEARER  valid-test-token-123 "} {
		req := httptest.NewRequest(http.MethodPost, "/api/tailor-cv", nil)
		req.Header.Set("Authorization", header)
		w := httptest.NewRecorder()

		AuthMiddleware(validator)(handler).ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code, header)
		assert.Equal(t, clientID, contextClientID)
	}
}

func TestAuthMiddleware_Rejects(t *testing.T) {
	validator := newTestTokenValidator()
	validator.addValidToken("good", uuid.New())

	tests := []struct {
		name   string
		header string
	}{
		{name: "missing header", header: ""},
		{name: "no scheme", header: "good"},
		{name: "wrong scheme", header: "Basic good"},
		{name: "empty token", header: "Bearer "},
		{name: "extra parts", header: "Bearer good extra"},
		{name: "unknown token", header: "Bearer bad"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			req := httptest.NewRequest(http.MethodPost, "/api/extract-job", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()

			AuthMiddleware(validator)(okHandler(&called)).ServeHTTP(w, req)

			assert.False(t, called, "handler should not be called")
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Equal(t, "Bearer", w.Header().Get("WWW-Authenticate"))

			var body map[string]string
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, "Unauthorized", body["error"])
		})
	}
}

func TestAuthMiddleware_OpenPaths(t *testing.T) {
	validator := newTestTokenValidator()

	called := false
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	AuthMiddleware(validator, "/health")(okHandler(&called)).ServeHTTP(w, req)
	assert.True(t, called)
	assert.Equal(t, http.StatusOK, w.Code)

	called = false
	req = httptest.NewRequest(http.MethodOptions, "/api/tailor-cv", nil)
	w = httptest.NewRecorder()
	AuthMiddleware(validator, "/health")(okHandler(&called)).ServeHTTP(w, req)
	assert.True(t, called, "preflight requests carry no credentials")
}

func TestGetClientID(t *testing.T) {
	clientID := uuid.New()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(context.WithValue(req.Context(), ClientIDKey(), clientID))
	got, err := GetClientID(req)
	require.NoError(t, err)
	assert.Equal(t, clientID, got)

	_, err = GetClientID(httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Error(t, err)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(context.WithValue(req.Context(), ClientIDKey(), "not-a-uuid"))
	_, err = GetClientID(req)
	assert.Error(t, err)
}
