package middleware

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"booktracker/internal/auth"
)

// RequireAuth validates the bearer token on each request, resolves the
// user it names, and injects that user into the request context.
func RequireAuth(tokens *auth.TokenService, users auth.UserStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				deny(w, http.StatusUnauthorized, "Access token required")
				return
			}

			userID, err := tokens.Verify(token)
			if errors.Is(err, auth.ErrTokenExpired) {
				deny(w, http.StatusUnauthorized, "Token expired")
				return
			}
			if err != nil {
				deny(w, http.StatusUnauthorized, "Invalid token")
				return
			}

			user, err := users.GetUserByID(r.Context(), userID)
			if err != nil {
				log.Printf("auth lookup: %v", err)
				deny(w, http.StatusInternalServerError, "Authentication error")
				return
			}
			if user == nil {
				// Token outlived the account it was issued for.
				deny(w, http.StatusUnauthorized, "User not found")
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithUser(r.Context(), user)))
		})
	}
}

// bearerToken extracts the token from "Authorization: Bearer <token>".
func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
}

func deny(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"message": msg})
}
