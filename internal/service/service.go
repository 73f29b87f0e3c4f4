// Package service provides the implementation of book-related business logic.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	berrors "github.com/abgdnv/library/internal/errors"
	"github.com/abgdnv/library/internal/events"
	"github.com/abgdnv/library/internal/store"
	"github.com/abgdnv/library/internal/store/db"
	"github.com/abgdnv/library/pkg/messaging"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
)

// BookService defines the methods for managing books.
type BookService interface {
	// Create stores a new book.
	// Returns ErrDuplicateISBN if a book with the same ISBN already exists.
	Create(ctx context.Context, book BookCreateDto) (*BookDto, error)

	// FindByID retrieves a single book. The boolean is false when no book has the ID.
	FindByID(ctx context.Context, id int64) (*BookDto, bool, error)

	// Update overwrites title and author of an existing book.
	// Returns ErrInvalidArgument if the book is nil or its ID is unset.
	Update(ctx context.Context, book *BookDto) (*BookDto, error)

	// Delete removes a book. Returns ErrInvalidArgument if the ID is unset.
	Delete(ctx context.Context, id int64) error
}

// BookDto is the wire representation of a stored book.
type BookDto struct {
	ID     int64  `json:"id"`
	Title  string `json:"title"`
	Author string `json:"author"`
	Isbn   string `json:"isbn"`
}

// BookCreateDto carries the fields accepted when creating a book.
type BookCreateDto struct {
	Title  string `json:"title" validate:"required"`
	Author string `json:"author" validate:"required"`
	Isbn   string `json:"isbn" validate:"required"`
}

// BookUpdateDto carries the fields that may change after creation.
type BookUpdateDto struct {
	Title  string `json:"title" validate:"required"`
	Author string `json:"author" validate:"required"`
}

// Service implements BookService.
type Service struct {
	store     store.BookStore
	publisher messaging.Publisher
	logger    *slog.Logger
	created   metric.Int64Counter
	updated   metric.Int64Counter
	deleted   metric.Int64Counter
}

// NewService creates a new instance of BookService.
func NewService(bookStore store.BookStore, publisher messaging.Publisher, logger *slog.Logger) *Service {
	meter := otel.Meter("book-service")
	return &Service{
		store:     bookStore,
		publisher: publisher,
		logger:    logger.With("component", "book_service"),
		created:   mustCounter(meter, "books_created", "Total number of created books"),
		updated:   mustCounter(meter, "books_updated", "Total number of updated books"),
		deleted:   mustCounter(meter, "books_deleted", "Total number of deleted books"),
	}
}

func mustCounter(meter metric.Meter, name, description string) metric.Int64Counter {
	counter, err := meter.Int64Counter(name, metric.WithDescription(description))
	if err != nil {
		panic(fmt.Sprintf("failed to create %s counter: %v", name, err))
	}
	return counter
}

// Create checks the ISBN against the store before inserting the book.
// A concurrent insert that passes the check is rejected by the store itself.
func (s *Service) Create(ctx context.Context, book BookCreateDto) (*BookDto, error) {
	exists, err := s.store.ExistsByISBN(ctx, book.Isbn)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, berrors.ErrDuplicateISBN
	}

	created, err := s.store.Create(ctx, book.Title, book.Author, book.Isbn)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.BookCreated{BookEvent: s.newEvent(ctx, created)})
	s.created.Add(ctx, 1)

	return toDto(created), nil
}

// FindByID returns the book with the given ID, or false if there is none.
func (s *Service) FindByID(ctx context.Context, id int64) (*BookDto, bool, error) {
	book, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, berrors.ErrBookNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return toDto(book), true, nil
}

// Update overwrites the title and author. ID and ISBN are never changed.
func (s *Service) Update(ctx context.Context, book *BookDto) (*BookDto, error) {
	if book == nil || book.ID <= 0 {
		return nil, berrors.ErrInvalidArgument
	}

	updated, err := s.store.Update(ctx, book.ID, book.Title, book.Author)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.BookUpdated{BookEvent: s.newEvent(ctx, updated)})
	s.updated.Add(ctx, 1)

	return toDto(updated), nil
}

// Delete removes the book without checking that it exists.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return berrors.ErrInvalidArgument
	}

	if err := s.store.DeleteByID(ctx, id); err != nil {
		return err
	}

	s.publish(ctx, events.BookDeleted{BookEvent: s.newEvent(ctx, &db.Book{ID: id})})
	s.deleted.Add(ctx, 1)

	return nil
}

func (s *Service) newEvent(ctx context.Context, book *db.Book) events.BookEvent {
	carrier := make(propagation.MapCarrier)
	otel.GetTextMapPropagator().Inject(ctx, carrier)
	return events.BookEvent{
		BookID:     book.ID,
		Title:      book.Title,
		Author:     book.Author,
		Isbn:       book.Isbn,
		OccurredAt: time.Now().UTC(),
		Carrier:    carrier,
	}
}

// publish never fails the request; the write is already committed.
func (s *Service) publish(ctx context.Context, event messaging.Event) {
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish event", "subject", event.Subject(), "error", err)
	}
}

// toDto converts a db.Book to a BookDto.
func toDto(book *db.Book) *BookDto {
	if book == nil {
		return nil
	}
	return &BookDto{
		ID:     book.ID,
		Title:  book.Title,
		Author: book.Author,
		Isbn:   book.Isbn,
	}
}
