// Package errors provides custom error types for book-related operations.
package errors

import "errors"

// ErrBookNotFound is returned by the store when no book has the requested ID.
var ErrBookNotFound = errors.New("book not found")

// ErrInvalidArgument reports a missing book or an unset book ID.
var ErrInvalidArgument = errors.New("ID cannot be null")

// ErrDuplicateISBN is the business error raised when the ISBN is already taken.
var ErrDuplicateISBN = &BusinessError{Message: "Duplicated ISBN"}

// BusinessError is a domain rule violation whose message is safe to show to clients.
type BusinessError struct {
	Message string
}

func (e *BusinessError) Error() string {
	return e.Message
}
