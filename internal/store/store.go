// Package store provides an interface for book storage operations.
package store

import (
	"context"

	"github.com/abgdnv/library/internal/store/db"
)

// BookStore is an interface for book storage operations.
// Every implementation enforces ISBN uniqueness itself and reports a collision
// as ErrDuplicateISBN.
type BookStore interface {
	// Create adds a new book and returns it with the store-assigned ID.
	// Returns ErrDuplicateISBN if another book already has the ISBN.
	Create(ctx context.Context, title, author, isbn string) (*db.Book, error)

	// FindByID retrieves a single book by its identifier.
	// Returns ErrBookNotFound if no book exists with the given ID.
	FindByID(ctx context.Context, id int64) (*db.Book, error)

	// Update overwrites the title and author of an existing book.
	// Returns ErrBookNotFound if no book exists with the given ID.
	Update(ctx context.Context, id int64, title, author string) (*db.Book, error)

	// DeleteByID removes a book by its ID. Removing a missing ID is not an error.
	DeleteByID(ctx context.Context, id int64) error

	// ExistsByISBN reports whether a book with the ISBN is stored.
	ExistsByISBN(ctx context.Context, isbn string) (bool, error)
}

// PingableStore is a BookStore whose backend can be health checked.
type PingableStore interface {
	BookStore
	Ping(ctx context.Context) error
}
