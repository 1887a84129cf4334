package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"booktracker/internal/auth"
	"booktracker/internal/store/storetest"
)

func protectedProbe(t *testing.T, tokens *auth.TokenService, users *storetest.Users, header string) (*httptest.ResponseRecorder, bool) {
	t.Helper()
	reached := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, ok := auth.UserFrom(r.Context())
		require.True(t, ok, "identity missing from context")
		reached = true
		w.WriteHeader(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/api/books", nil)
	if header != "" {
		r.Header.Set("Authorization", header)
	}
	RequireAuth(tokens, users)(next).ServeHTTP(w, r)
	return w, reached
}

func message(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var resp map[string]string
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	return resp["message"]
}

func TestRequireAuth(t *testing.T) {
	tokens := auth.NewTokenService("test-secret", auth.TokenTTL)
	users := storetest.NewUsers()
	user, err := users.CreateUser(context.Background(), "A", "a@x.com", "hash")
	require.NoError(t, err)

	t.Run("missing header", func(t *testing.T) {
		w, reached := protectedProbe(t, tokens, users, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "Access token required", message(t, w))
		assert.False(t, reached)
	})

	t.Run("not a bearer header", func(t *testing.T) {
		w, reached := protectedProbe(t, tokens, users, "Basic abc123")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "Access token required", message(t, w))
		assert.False(t, reached)
	})

	t.Run("invalid token", func(t *testing.T) {
		w, reached := protectedProbe(t, tokens, users, "Bearer garbage")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "Invalid token", message(t, w))
		assert.False(t, reached)
	})

	t.Run("expired token", func(t *testing.T) {
		expired := auth.NewTokenService("test-secret", -time.Hour)
		token, err := expired.Issue(user.ID)
		require.NoError(t, err)

		w, reached := protectedProbe(t, tokens, users, "Bearer "+token)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "Token expired", message(t, w))
		assert.False(t, reached)
	})

	t.Run("deleted account with live token", func(t *testing.T) {
		ghost, err := users.CreateUser(context.Background(), "B", "b@x.com", "hash")
		require.NoError(t, err)
		token, err := tokens.Issue(ghost.ID)
		require.NoError(t, err)
		users.Delete(ghost.ID)

		w, reached := protectedProbe(t, tokens, users, "Bearer "+token)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "User not found", message(t, w))
		assert.False(t, reached)
	})

	t.Run("store failure", func(t *testing.T) {
		failing := storetest.NewUsers()
		failing.Err = errors.New("connection refused")
		token, err := tokens.Issue(user.ID)
		require.NoError(t, err)

		w, reached := protectedProbe(t, tokens, failing, "Bearer "+token)
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, "Authentication error", message(t, w))
		assert.False(t, reached)
	})

	t.Run("valid token", func(t *testing.T) {
		token, err := tokens.Issue(user.ID)
		require.NoError(t, err)

		w, reached := protectedProbe(t, tokens, users, "Bearer "+token)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.True(t, reached)
	})
}
