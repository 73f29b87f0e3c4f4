// Package events defines the book domain events published to the message broker.
package events

import (
	"encoding/json"
	"time"

	"go.opentelemetry.io/otel/propagation"
)

const (
	BooksCreatedSubject = "books.created"
	BooksUpdatedSubject = "books.updated"
	BooksDeletedSubject = "books.deleted"
)

// Subjects lists every subject the book stream has to accept.
var Subjects = []string{BooksCreatedSubject, BooksUpdatedSubject, BooksDeletedSubject}

// BookEvent is the payload shared by all book events.
// Carrier holds the W3C trace context of the request that produced the event.
type BookEvent struct {
	BookID     int64                  `json:"book_id"`
	Title      string                 `json:"title,omitempty"`
	Author     string                 `json:"author,omitempty"`
	Isbn       string                 `json:"isbn,omitempty"`
	OccurredAt time.Time              `json:"occurred_at"`
	Carrier    propagation.MapCarrier `json:"carrier,omitempty"`
}

type BookCreated struct {
	BookEvent
}

func (e BookCreated) Subject() string {
	return BooksCreatedSubject
}

func (e BookCreated) Payload() ([]byte, error) {
	return json.Marshal(e)
}

type BookUpdated struct {
	BookEvent
}

func (e BookUpdated) Subject() string {
	return BooksUpdatedSubject
}

func (e BookUpdated) Payload() ([]byte, error) {
	return json.Marshal(e)
}

type BookDeleted struct {
	BookEvent
}

func (e BookDeleted) Subject() string {
	return BooksDeletedSubject
}

func (e BookDeleted) Payload() ([]byte, error) {
	return json.Marshal(e)
}
