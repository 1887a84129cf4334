package models

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validBook() Book {
	return Book{
		Title:     "Dune",
		Author:    "Frank Herbert",
		Tags:      []string{"sci-fi"},
		Status:    StatusWantToRead,
		CreatedBy: "user-1",
	}
}

func TestBookValidate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		b := validBook()
		assert.NoError(t, b.Validate())
	})

	t.Run("missing title", func(t *testing.T) {
		b := validBook()
		b.Title = ""
		err := b.Validate()
		require.Error(t, err)
		assert.Equal(t, "Book title is required", err.Error())
	})

	t.Run("title too long", func(t *testing.T) {
		b := validBook()
		b.Title = strings.Repeat("x", 201)
		err := b.Validate()
		require.Error(t, err)
		assert.Equal(t, "Title cannot exceed 200 characters", err.Error())
	})

	t.Run("author too long", func(t *testing.T) {
		b := validBook()
		b.Author = strings.Repeat("x", 101)
		err := b.Validate()
		require.Error(t, err)
		assert.Equal(t, "Author name cannot exceed 100 characters", err.Error())
	})

	t.Run("too many tags", func(t *testing.T) {
		b := validBook()
		b.Tags = make([]string, 11)
		err := b.Validate()
		require.Error(t, err)
		assert.Equal(t, "Cannot have more than 10 tags", err.Error())
	})

	t.Run("ten tags allowed", func(t *testing.T) {
		b := validBook()
		b.Tags = make([]string, 10)
		assert.NoError(t, b.Validate())
	})

	t.Run("bad status", func(t *testing.T) {
		b := validBook()
		b.Status = "on-hold"
		err := b.Validate()
		require.Error(t, err)
		assert.Equal(t, "Status must be one of: want-to-read, reading, completed", err.Error())
	})

	t.Run("violations joined", func(t *testing.T) {
		b := validBook()
		b.Title = ""
		b.Status = "paused"
		err := b.Validate()
		require.Error(t, err)
		assert.Equal(t,
			"Book title is required, Status must be one of: want-to-read, reading, completed",
			err.Error())
	})

	t.Run("boundary lengths", func(t *testing.T) {
		b := validBook()
		b.Title = strings.Repeat("x", 200)
		b.Author = strings.Repeat("y", 100)
		assert.NoError(t, b.Validate())
	})
}

func TestBookNormalize(t *testing.T) {
	b := Book{Title: "  Dune ", Author: " Herbert  "}
	b.Normalize()
	assert.Equal(t, "Dune", b.Title)
	assert.Equal(t, "Herbert", b.Author)
}
