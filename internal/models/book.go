package models

import (
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Statuses accepted for a book.
const (
	StatusWantToRead = "want-to-read"
	StatusReading    = "reading"
	StatusCompleted  = "completed"
)

// Book is a single tracked book stored in MongoDB.
type Book struct {
	ID        primitive.ObjectID `json:"id"         bson:"_id,omitempty"`
	Title     string             `json:"title"      bson:"title"      validate:"required,max=200"`
	Author    string             `json:"author"     bson:"author"     validate:"required,max=100"`
	Tags      []string           `json:"tags"       bson:"tags"       validate:"max=10"`
	Status    string             `json:"status"     bson:"status"     validate:"required,oneof=want-to-read reading completed"`
	CreatedBy string             `json:"created_by" bson:"created_by"`
	CreatedAt time.Time          `json:"createdAt"  bson:"created_at"`
	UpdatedAt time.Time          `json:"updatedAt"  bson:"updated_at"`
}

// CreateBookRequest is the JSON body for POST /api/books.
type CreateBookRequest struct {
	Title  string   `json:"title"`
	Author string   `json:"author"`
	Tags   []string `json:"tags"`
	Status string   `json:"status"`
}

// UpdateBookRequest is the JSON body for PUT /api/books/{id}.
// Absent fields keep their current value.
type UpdateBookRequest struct {
	Title  *string   `json:"title"`
	Author *string   `json:"author"`
	Tags   *[]string `json:"tags"`
	Status *string   `json:"status"`
}

var validate = validator.New()

// bookMessages maps struct field + failed tag to the message the API reports.
var bookMessages = map[string]string{
	"Title.required":  "Book title is required",
	"Title.max":       "Title cannot exceed 200 characters",
	"Author.required": "Author is required",
	"Author.max":      "Author name cannot exceed 100 characters",
	"Tags.max":        "Cannot have more than 10 tags",
	"Status.required": "Status is required",
	"Status.oneof":    "Status must be one of: want-to-read, reading, completed",
}

// ValidationError carries every field violation found on a book.
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Messages, ", ")
}

// Normalize trims whitespace the same way the stored record does.
func (b *Book) Normalize() {
	b.Title = strings.TrimSpace(b.Title)
	b.Author = strings.TrimSpace(b.Author)
}

// Validate checks the stored-field constraints and returns a
// *ValidationError listing every violation.
func (b *Book) Validate() error {
	err := validate.Struct(b)
	if err == nil {
		return nil
	}
	var ferrs validator.ValidationErrors
	if !errors.As(err, &ferrs) {
		return err
	}
	msgs := make([]string, 0, len(ferrs))
	for _, fe := range ferrs {
		if m, ok := bookMessages[fe.StructField()+"."+fe.Tag()]; ok {
			msgs = append(msgs, m)
		} else {
			msgs = append(msgs, fe.StructField()+" is invalid")
		}
	}
	return &ValidationError{Messages: msgs}
}
