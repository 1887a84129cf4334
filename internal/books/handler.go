package books

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"booktracker/internal/auth"
	"booktracker/internal/models"
	"booktracker/internal/store"
)

// BookStore defines the interface for book persistence. Implementations
// return store.ErrInvalidID for malformed ids and store.ErrNotFound for
// missing records.
type BookStore interface {
	Insert(ctx context.Context, book *models.Book) (*models.Book, error)
	FindByID(ctx context.Context, id string) (*models.Book, error)
	FindByOwner(ctx context.Context, owner string, f store.BookFilter, page, limit int) ([]models.Book, int64, error)
	Update(ctx context.Context, id string, p store.BookPatch) (*models.Book, error)
	Delete(ctx context.Context, id string) error
	CountByOwnerGroupedByStatus(ctx context.Context, owner string) (map[string]int64, error)
}

// Handler holds book HTTP handlers. Every operation is scoped to the
// authenticated caller's own books.
type Handler struct {
	books BookStore
}

func NewHandler(books BookStore) *Handler {
	return &Handler{books: books}
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

// Pagination summarizes one page of list results.
type Pagination struct {
	CurrentPage     int   `json:"currentPage"`
	TotalPages      int   `json:"totalPages"`
	TotalBooks      int64 `json:"totalBooks"`
	Limit           int   `json:"limit"`
	HasNextPage     bool  `json:"hasNextPage"`
	HasPreviousPage bool  `json:"hasPreviousPage"`
}

// List returns one page of the caller's books, filtered and newest first.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFrom(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "Access token required")
		return
	}

	page := intQuery(r, "page", 1)
	limit := intQuery(r, "limit", 5)
	if page < 1 {
		writeMessage(w, http.StatusBadRequest, "Page must be greater than 0")
		return
	}
	if limit < 1 || limit > 100 {
		writeMessage(w, http.StatusBadRequest, "Limit must be between 1 and 100")
		return
	}

	q := r.URL.Query()
	filter := store.BookFilter{
		Title:  q.Get("title"),
		Author: q.Get("author"),
		Tag:    q.Get("tag"),
		Status: q.Get("status"),
	}

	list, total, err := h.books.FindByOwner(r.Context(), user.ID, filter, page, limit)
	if err != nil {
		log.Printf("list books: %v", err)
		writeMessage(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if list == nil {
		list = []models.Book{}
	}

	totalPages := int((total + int64(limit) - 1) / int64(limit))
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"books": list,
		"pagination": Pagination{
			CurrentPage:     page,
			TotalPages:      totalPages,
			TotalBooks:      total,
			Limit:           limit,
			HasNextPage:     page < totalPages,
			HasPreviousPage: page > 1,
		},
	})
}

// Get returns a single book owned by the caller.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFrom(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "Access token required")
		return
	}

	book, err := h.books.FindByID(r.Context(), chi.URLParam(r, "id"))
	if !h.checkLookup(w, err) {
		return
	}
	if book.CreatedBy != user.ID {
		writeMessage(w, http.StatusForbidden, "You don't have permission to access this book")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"book": book})
}

// Create persists a new book owned by the caller.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFrom(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "Access token required")
		return
	}

	var req models.CreateBookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Title) == "" || strings.TrimSpace(req.Author) == "" {
		writeMessage(w, http.StatusBadRequest, "Title and author are required")
		return
	}

	book := &models.Book{
		Title:     req.Title,
		Author:    req.Author,
		Tags:      req.Tags,
		Status:    req.Status,
		CreatedBy: user.ID,
	}
	if book.Tags == nil {
		book.Tags = []string{}
	}
	if book.Status == "" {
		book.Status = models.StatusWantToRead
	}
	book.Normalize()
	if !h.checkValidation(w, book.Validate()) {
		return
	}

	created, err := h.books.Insert(r.Context(), book)
	if err != nil {
		log.Printf("create book: %v", err)
		writeMessage(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "Book created successfully",
		"book":    created,
	})
}

// Update changes only the supplied fields of a book owned by the caller.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFrom(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "Access token required")
		return
	}

	var req models.UpdateBookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	id := chi.URLParam(r, "id")
	book, err := h.books.FindByID(r.Context(), id)
	if !h.checkLookup(w, err) {
		return
	}
	if book.CreatedBy != user.ID {
		writeMessage(w, http.StatusForbidden, "You can only update your own books")
		return
	}

	// Validate against the record as it would look after the patch.
	merged := *book
	if req.Title != nil {
		merged.Title = *req.Title
	}
	if req.Author != nil {
		merged.Author = *req.Author
	}
	if req.Tags != nil {
		merged.Tags = *req.Tags
	}
	if req.Status != nil {
		merged.Status = *req.Status
	}
	merged.Normalize()
	if !h.checkValidation(w, merged.Validate()) {
		return
	}

	var patch store.BookPatch
	if req.Title != nil {
		patch.Title = &merged.Title
	}
	if req.Author != nil {
		patch.Author = &merged.Author
	}
	if req.Tags != nil {
		patch.Tags = &merged.Tags
	}
	if req.Status != nil {
		patch.Status = &merged.Status
	}

	updated, err := h.books.Update(r.Context(), id, patch)
	if !h.checkLookup(w, err) {
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Book updated successfully",
		"book":    updated,
	})
}

// Delete permanently removes a book owned by the caller.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFrom(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "Access token required")
		return
	}

	id := chi.URLParam(r, "id")
	book, err := h.books.FindByID(r.Context(), id)
	if !h.checkLookup(w, err) {
		return
	}
	if book.CreatedBy != user.ID {
		writeMessage(w, http.StatusForbidden, "You can only delete your own books")
		return
	}

	if err := h.books.Delete(r.Context(), id); !h.checkLookup(w, err) {
		return
	}

	writeMessage(w, http.StatusOK, "Book deleted successfully")
}

// Stats returns the caller's book counts grouped by status.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFrom(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "Access token required")
		return
	}

	counts, err := h.books.CountByOwnerGroupedByStatus(r.Context(), user.ID)
	if err != nil {
		log.Printf("book stats: %v", err)
		writeMessage(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	var total int64
	for _, n := range counts {
		total += n
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"total":        total,
		"completed":    counts[models.StatusCompleted],
		"reading":      counts[models.StatusReading],
		"want-to-read": counts[models.StatusWantToRead],
	})
}

// checkLookup maps store lookup errors to responses, reporting whether the
// caller may proceed.
func (h *Handler) checkLookup(w http.ResponseWriter, err error) bool {
	switch {
	case err == nil:
		return true
	case errors.Is(err, store.ErrInvalidID):
		writeMessage(w, http.StatusBadRequest, "Invalid book ID")
	case errors.Is(err, store.ErrNotFound):
		writeMessage(w, http.StatusNotFound, "Book not found")
	default:
		log.Printf("book lookup: %v", err)
		writeMessage(w, http.StatusInternalServerError, "Internal server error")
	}
	return false
}

// checkValidation reports field violations as a 400 with the messages
// joined, reporting whether the caller may proceed.
func (h *Handler) checkValidation(w http.ResponseWriter, err error) bool {
	if err == nil {
		return true
	}
	var verr *models.ValidationError
	if errors.As(err, &verr) {
		writeMessage(w, http.StatusBadRequest, verr.Error())
		return false
	}
	log.Printf("validate book: %v", err)
	writeMessage(w, http.StatusInternalServerError, "Internal server error")
	return false
}

// intQuery parses an integer query parameter, mirroring the lenient
// behavior clients already rely on: absent or non-numeric means default.
func intQuery(r *http.Request, key string, def int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}
