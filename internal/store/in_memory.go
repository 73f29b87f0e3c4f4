package store

import (
	"context"
	"sync"
	"time"

	berrors "github.com/abgdnv/library/internal/errors"
	"github.com/abgdnv/library/internal/store/db"
)

// InMemoryStore implements BookStore using in-memory maps.
type InMemoryStore struct {
	mu     sync.RWMutex
	books  map[int64]db.Book
	isbns  map[string]int64
	nextID int64
	now    func() time.Time
}

// NewInMemoryStore creates an empty store whose IDs start at 1.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		books:  make(map[int64]db.Book),
		isbns:  make(map[string]int64),
		nextID: 1,
		now:    time.Now,
	}
}

// Create stores a new book and returns it.
func (s *InMemoryStore) Create(_ context.Context, title, author, isbn string) (*db.Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.isbns[isbn]; taken {
		return nil, berrors.ErrDuplicateISBN
	}
	now := s.now()
	book := db.Book{
		ID:        s.nextID,
		Title:     title,
		Author:    author,
		Isbn:      isbn,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.nextID++
	s.books[book.ID] = book
	s.isbns[isbn] = book.ID

	return &book, nil
}

// FindByID retrieves a book by its ID.
func (s *InMemoryStore) FindByID(_ context.Context, id int64) (*db.Book, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	book, ok := s.books[id]
	if !ok {
		return nil, berrors.ErrBookNotFound
	}
	return &book, nil
}

// Update overwrites title and author of a stored book.
func (s *InMemoryStore) Update(_ context.Context, id int64, title, author string) (*db.Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	book, ok := s.books[id]
	if !ok {
		return nil, berrors.ErrBookNotFound
	}
	book.Title = title
	book.Author = author
	book.UpdatedAt = s.now()
	s.books[id] = book

	return &book, nil
}

// DeleteByID deletes a book by its ID.
func (s *InMemoryStore) DeleteByID(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if book, exists := s.books[id]; exists {
		delete(s.isbns, book.Isbn)
		delete(s.books, id)
	}
	return nil
}

// ExistsByISBN reports whether a book with the ISBN is stored.
func (s *InMemoryStore) ExistsByISBN(_ context.Context, isbn string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.isbns[isbn]
	return ok, nil
}

// Ping always succeeds.
func (s *InMemoryStore) Ping(context.Context) error {
	return nil
}
