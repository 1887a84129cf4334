package auth

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"golang.org/x/crypto/bcrypt"

	"booktracker/internal/models"
	"booktracker/internal/store"
)

// UserStore defines the interface for user persistence. Lookups return
// (nil, nil) when no matching user exists.
type UserStore interface {
	CreateUser(ctx context.Context, name, email, hashedPw string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}

// Handler holds auth-related HTTP handlers.
type Handler struct {
	users  UserStore
	tokens *TokenService
}

func NewHandler(users UserStore, tokens *TokenService) *Handler {
	return &Handler{users: users, tokens: tokens}
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"message": msg})
}

// Register creates a new user and issues a token for it.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Name == "" || req.Email == "" || req.Password == "" {
		writeMessage(w, http.StatusBadRequest, "All fields are required")
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("hash password: %v", err)
		writeMessage(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	user, err := h.users.CreateUser(r.Context(), req.Name, req.Email, string(hashed))
	if errors.Is(err, store.ErrEmailTaken) {
		writeMessage(w, http.StatusConflict, "User with this email already exists")
		return
	}
	if err != nil {
		log.Printf("register: %v", err)
		writeMessage(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	token, err := h.tokens.Issue(user.ID)
	if err != nil {
		log.Printf("issue token: %v", err)
		writeMessage(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "User registered successfully",
		"token":   token,
		"user":    user,
	})
}

// Login authenticates a user and issues a token.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		writeMessage(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	user, err := h.users.GetUserByEmail(r.Context(), req.Email)
	if err != nil {
		log.Printf("login lookup: %v", err)
		writeMessage(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if user == nil {
		writeMessage(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		writeMessage(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	token, err := h.tokens.Issue(user.ID)
	if err != nil {
		log.Printf("issue token: %v", err)
		writeMessage(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Login successful",
		"token":   token,
		"user":    user,
	})
}

// Me returns the currently authenticated user.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFrom(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "Access token required")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"user": user})
}
