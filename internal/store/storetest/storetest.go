// Package storetest provides in-memory store implementations for tests.
package storetest

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"booktracker/internal/models"
	"booktracker/internal/store"
)

// Users is an in-memory auth.UserStore. Setting Err makes every
// operation fail with it.
type Users struct {
	mu    sync.Mutex
	users map[string]*models.User
	Err   error
}

func NewUsers() *Users {
	return &Users{users: make(map[string]*models.User)}
}

func (s *Users) CreateUser(_ context.Context, name, email, hashedPw string) (*models.User, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			return nil, store.ErrEmailTaken
		}
	}
	u := &models.User{
		ID:        uuid.NewString(),
		Name:      name,
		Email:     email,
		Password:  hashedPw,
		CreatedAt: time.Now(),
	}
	s.users[u.ID] = u
	return &models.User{ID: u.ID, Name: u.Name, Email: u.Email, CreatedAt: u.CreatedAt}, nil
}

func (s *Users) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *Users) GetUserByID(_ context.Context, id string) (*models.User, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	cp.Password = ""
	return &cp, nil
}

// Delete removes a user, for exercising stale-token behavior.
func (s *Users) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.users, id)
}

// Books is an in-memory books.BookStore with the same filter and
// pagination semantics as the Mongo store. Setting Err makes every
// operation fail with it.
type Books struct {
	mu    sync.Mutex
	books map[string]*models.Book
	seq   int
	Err   error
}

func NewBooks() *Books {
	return &Books{books: make(map[string]*models.Book)}
}

func (s *Books) Insert(_ context.Context, book *models.Book) (*models.Book, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	book.ID = primitive.NewObjectID()
	// Monotonic timestamps so creation-order sorting is deterministic.
	book.CreatedAt = time.Unix(0, int64(s.seq)).UTC()
	book.UpdatedAt = book.CreatedAt
	cp := *book
	s.books[book.ID.Hex()] = &cp
	return book, nil
}

func (s *Books) FindByID(_ context.Context, id string) (*models.Book, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	if _, err := primitive.ObjectIDFromHex(id); err != nil {
		return nil, store.ErrInvalidID
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.books[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *b
	return &cp, nil
}

func (s *Books) FindByOwner(_ context.Context, owner string, f store.BookFilter, page, limit int) ([]models.Book, int64, error) {
	if s.Err != nil {
		return nil, 0, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var matched []models.Book
	for _, b := range s.books {
		if b.CreatedBy == owner && matches(b, f) {
			matched = append(matched, *b)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := int64(len(matched))
	skip := (page - 1) * limit
	if skip >= len(matched) {
		return []models.Book{}, total, nil
	}
	end := skip + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[skip:end], total, nil
}

func (s *Books) Update(_ context.Context, id string, p store.BookPatch) (*models.Book, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	if _, err := primitive.ObjectIDFromHex(id); err != nil {
		return nil, store.ErrInvalidID
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.books[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	if p.Title != nil {
		b.Title = *p.Title
	}
	if p.Author != nil {
		b.Author = *p.Author
	}
	if p.Tags != nil {
		b.Tags = *p.Tags
	}
	if p.Status != nil {
		b.Status = *p.Status
	}
	b.UpdatedAt = time.Now().UTC()
	cp := *b
	return &cp, nil
}

func (s *Books) Delete(_ context.Context, id string) error {
	if s.Err != nil {
		return s.Err
	}
	if _, err := primitive.ObjectIDFromHex(id); err != nil {
		return store.ErrInvalidID
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.books[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.books, id)
	return nil
}

func (s *Books) CountByOwnerGroupedByStatus(_ context.Context, owner string) (map[string]int64, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	counts := make(map[string]int64)
	for _, b := range s.books {
		if b.CreatedBy == owner {
			counts[b.Status]++
		}
	}
	return counts, nil
}

func matches(b *models.Book, f store.BookFilter) bool {
	if v := strings.TrimSpace(f.Title); v != "" &&
		!strings.Contains(strings.ToLower(b.Title), strings.ToLower(v)) {
		return false
	}
	if v := strings.TrimSpace(f.Author); v != "" &&
		!strings.Contains(strings.ToLower(b.Author), strings.ToLower(v)) {
		return false
	}
	if v := strings.TrimSpace(f.Tag); v != "" {
		found := false
		for _, tag := range b.Tags {
			if strings.Contains(strings.ToLower(tag), strings.ToLower(v)) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if v := strings.TrimSpace(f.Status); v != "" && b.Status != v {
		return false
	}
	return true
}
