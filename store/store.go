// Package store defines the todo store interface and its implementations.
package store

import (
	"errors"
	"strings"
	"unicode/utf8"
)

// MaxTextLength is the longest todo text accepted, in characters, after trimming.
const MaxTextLength = 500

// Todo is a single todo record.
type Todo struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
}

// Store is the interface that all todo stores must implement.
// Implementations serialize mutations so concurrent callers observe
// a single linear history.
type Store interface {
	// Add validates text, appends a new uncompleted todo and returns it.
	Add(text string) (Todo, error)

	// Toggle flips the completed flag of a todo and returns the updated record.
	Toggle(id string) (Todo, error)

	// Delete removes a todo.
	Delete(id string) error

	// List returns a copy of every todo in insertion order.
	List() ([]Todo, error)
}

// ValidationError reports client-supplied text that cannot become a todo.
type ValidationError struct {
	Detail string
}

func (e *ValidationError) Error() string { return e.Detail }

// NotFoundError reports an id that matches no todo.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string { return "Todo not found" }

// Is lets errors.Is(err, ErrNotFound) match any NotFoundError.
func (e *NotFoundError) Is(target error) bool {
	_, ok := target.(*NotFoundError)
	return ok
}

var (
	ErrEmptyText   = &ValidationError{Detail: "Todo text cannot be empty"}
	ErrTextTooLong = &ValidationError{Detail: "Todo text too long (max 500 characters)"}
	ErrNotFound    = &NotFoundError{}
)

// NormalizeText trims surrounding whitespace and checks the length rules.
func NormalizeText(text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrEmptyText
	}
	if utf8.RuneCountInString(text) > MaxTextLength {
		return "", ErrTextTooLong
	}
	return text, nil
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
