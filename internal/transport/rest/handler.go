// Package rest provides HTTP handlers for book-related operations.
package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	berrors "github.com/abgdnv/library/internal/errors"
	"github.com/abgdnv/library/internal/service"
	"github.com/abgdnv/library/pkg/web"
	"github.com/go-chi/chi/v5"
)

const (
	basePath = "/books"
	entity   = "book"

	msgInvalidBody   = "Invalid request body"
	msgInternalError = "Internal server error"
)

type Handler struct {
	service   service.BookService
	validator *bodyValidator
	logger    *slog.Logger
}

// NewHandler creates a new instance of the book API with the provided service.
func NewHandler(service service.BookService, logger *slog.Logger) *Handler {
	v, err := newBodyValidator()
	if err != nil {
		panic(err)
	}
	return &Handler{
		service:   service,
		validator: v,
		logger:    logger.With("component", "rest"),
	}
}

// RegisterRoutes registers the HTTP routes for the book service.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route(basePath, func(r chi.Router) {
		r.Post("/", h.Create)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.FindByID)
			r.Put("/", h.Update)
			r.Delete("/", h.DeleteByID)
		})
	})

	r.Get("/healthz", h.HealthCheck)
}

// Create handles the creation of a new book.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var createDto service.BookCreateDto
	if !h.decodeAndValidate(w, r, &createDto) {
		return
	}
	h.logger.DebugContext(r.Context(), "Received request to create book", "isbn", createDto.Isbn)

	created, err := h.service.Create(r.Context(), createDto)
	if err != nil {
		h.respondServiceError(w, r, "Error creating book", err)
		return
	}
	h.logger.InfoContext(r.Context(), "Book created successfully", "ID", created.ID, "isbn", created.Isbn)
	w.Header().Set("Location", fmt.Sprintf("%s/%d", basePath, created.ID))
	web.RespondJSON(w, h.logger, http.StatusCreated, created)
}

// FindByID retrieves a book by its ID.
func (h *Handler) FindByID(w http.ResponseWriter, r *http.Request) {
	book, ok := h.lookup(w, r)
	if !ok {
		return
	}
	web.RespondJSON(w, h.logger, http.StatusOK, book)
}

// Update overlays title and author from the payload on the stored book.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	book, ok := h.lookup(w, r)
	if !ok {
		return
	}

	var updateDto service.BookUpdateDto
	if !h.decodeAndValidate(w, r, &updateDto) {
		return
	}
	book.Title = updateDto.Title
	book.Author = updateDto.Author

	updated, err := h.service.Update(r.Context(), book)
	if err != nil {
		h.respondServiceError(w, r, "Error updating book", err)
		return
	}
	h.logger.InfoContext(r.Context(), "Book updated successfully", "ID", updated.ID)
	web.RespondJSON(w, h.logger, http.StatusOK, updated)
}

// DeleteByID deletes a book by its ID.
func (h *Handler) DeleteByID(w http.ResponseWriter, r *http.Request) {
	book, ok := h.lookup(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), book.ID); err != nil {
		h.respondServiceError(w, r, "Error deleting book", err)
		return
	}
	h.logger.InfoContext(r.Context(), "Book deleted successfully", "ID", book.ID)
	w.WriteHeader(http.StatusNoContent)
}

// HealthCheck is a simple health check endpoint.
func (h *Handler) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// lookup parses {id} and loads the book. It writes the response and returns false
// when the ID is malformed, the book is missing or the service fails.
func (h *Handler) lookup(w http.ResponseWriter, r *http.Request) (*service.BookDto, bool) {
	id, ok := web.ParseID(w, r, h.logger, entity)
	if !ok {
		return nil, false
	}

	book, found, err := h.service.FindByID(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, r, "Error retrieving book", err)
		return nil, false
	}
	if !found {
		h.logger.WarnContext(r.Context(), "Book not found", "ID", id)
		w.WriteHeader(http.StatusNotFound)
		return nil, false
	}
	return book, true
}

func (h *Handler) decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.logger.WarnContext(r.Context(), "Error decoding request body", "error", err)
		web.RespondError(w, h.logger, http.StatusBadRequest, msgInvalidBody)
		return false
	}

	messages, err := h.validator.Struct(dst)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Error validating request body", "error", err)
		web.RespondError(w, h.logger, http.StatusBadRequest, msgInvalidBody)
		return false
	}
	if len(messages) > 0 {
		h.logger.WarnContext(r.Context(), "Validation errors occurred", "errors", messages)
		web.RespondErrors(w, h.logger, http.StatusBadRequest, messages...)
		return false
	}
	return true
}

// respondServiceError maps service errors to status codes. Business and
// invalid-argument errors carry client-safe messages; anything else is a 500.
func (h *Handler) respondServiceError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	var businessErr *berrors.BusinessError
	switch {
	case errors.As(err, &businessErr):
		h.logger.WarnContext(r.Context(), msg, "error", err)
		web.RespondError(w, h.logger, http.StatusBadRequest, businessErr.Message)
	case errors.Is(err, berrors.ErrInvalidArgument):
		h.logger.WarnContext(r.Context(), msg, "error", err)
		web.RespondError(w, h.logger, http.StatusBadRequest, err.Error())
	case errors.Is(err, berrors.ErrBookNotFound):
		h.logger.WarnContext(r.Context(), msg, "error", err)
		w.WriteHeader(http.StatusNotFound)
	default:
		h.logger.ErrorContext(r.Context(), msg, "error", err)
		web.RespondError(w, h.logger, http.StatusInternalServerError, msgInternalError)
	}
}
