package store

import (
	"context"
	"errors"
	"fmt"

	berrors "github.com/abgdnv/library/internal/errors"
	"github.com/abgdnv/library/internal/store/db"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	uniqueViolationCode = "23505"
	isbnUniqueIndex     = "books_isbn_key"
)

// PgStore implements BookStore using PostgreSQL as the data store.
type PgStore struct {
	db *pgxpool.Pool
	q  *db.Queries
}

// NewPgStore creates a new instance of BookStore using a PostgreSQL connection pool.
func NewPgStore(dbp *pgxpool.Pool) *PgStore {
	return &PgStore{
		db: dbp,
		q:  db.New(dbp),
	}
}

// Create inserts a new book. The unique index on isbn turns a concurrent duplicate
// into ErrDuplicateISBN.
func (p *PgStore) Create(ctx context.Context, title, author, isbn string) (*db.Book, error) {
	book, err := p.q.CreateBook(ctx, db.CreateBookParams{
		Title:  title,
		Author: author,
		Isbn:   isbn,
	})
	if err != nil {
		if isISBNViolation(err) {
			return nil, berrors.ErrDuplicateISBN
		}
		return nil, fmt.Errorf("failed to create book: %w", err)
	}
	return &book, nil
}

// FindByID retrieves a book by its unique identifier.
// Returns ErrBookNotFound if no book exists with the given ID.
func (p *PgStore) FindByID(ctx context.Context, id int64) (*db.Book, error) {
	book, err := p.q.FindBookByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, berrors.ErrBookNotFound
		}
		return nil, fmt.Errorf("failed to find book by ID: %w", err)
	}
	return &book, nil
}

// Update overwrites title and author of an existing book.
// Returns ErrBookNotFound if no book exists with the given ID.
func (p *PgStore) Update(ctx context.Context, id int64, title, author string) (*db.Book, error) {
	book, err := p.q.UpdateBook(ctx, db.UpdateBookParams{
		ID:     id,
		Title:  title,
		Author: author,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, berrors.ErrBookNotFound
		}
		return nil, fmt.Errorf("failed to update book: %w", err)
	}
	return &book, nil
}

// DeleteByID removes a book by its unique identifier.
func (p *PgStore) DeleteByID(ctx context.Context, id int64) error {
	if _, err := p.q.DeleteBook(ctx, id); err != nil {
		return fmt.Errorf("failed to delete book by ID: %w", err)
	}
	return nil
}

// ExistsByISBN reports whether a book with the given ISBN exists.
func (p *PgStore) ExistsByISBN(ctx context.Context, isbn string) (bool, error) {
	exists, err := p.q.ExistsBookByIsbn(ctx, isbn)
	if err != nil {
		return false, fmt.Errorf("failed to check ISBN: %w", err)
	}
	return exists, nil
}

// Ping checks that the database is reachable.
func (p *PgStore) Ping(ctx context.Context) error {
	return p.db.Ping(ctx)
}

func isISBNViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) &&
		pgErr.Code == uniqueViolationCode &&
		pgErr.ConstraintName == isbnUniqueIndex
}
