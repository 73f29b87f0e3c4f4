package rest

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	berrors "github.com/abgdnv/library/internal/errors"
	"github.com/abgdnv/library/internal/service"
	"github.com/abgdnv/library/internal/store"
	"github.com/abgdnv/library/pkg/messaging"
	"github.com/abgdnv/library/pkg/web"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// mockBookService is a mock implementation of the BookService interface
type mockBookService struct {
	mock.Mock
}

func (m *mockBookService) Create(ctx context.Context, book service.BookCreateDto) (*service.BookDto, error) {
	args := m.Called(ctx, book)
	dto, _ := args.Get(0).(*service.BookDto)
	return dto, args.Error(1)
}

func (m *mockBookService) FindByID(ctx context.Context, id int64) (*service.BookDto, bool, error) {
	args := m.Called(ctx, id)
	dto, _ := args.Get(0).(*service.BookDto)
	return dto, args.Bool(1), args.Error(2)
}

func (m *mockBookService) Update(ctx context.Context, book *service.BookDto) (*service.BookDto, error) {
	args := m.Called(ctx, book)
	dto, _ := args.Get(0).(*service.BookDto)
	return dto, args.Error(1)
}

func (m *mockBookService) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

// toJSON is a helper function to convert a struct to JSON string
func toJSON(t *testing.T, v any) string {
	t.Helper()
	bytes, err := json.Marshal(v)
	require.NoError(t, err)
	return string(bytes)
}

func errorsJSON(t *testing.T, messages ...string) string {
	t.Helper()
	return toJSON(t, web.ErrorResponse{Errors: messages})
}

func newRouter(svc service.BookService) *chi.Mux {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	r := chi.NewRouter()
	NewHandler(svc, logger).RegisterRoutes(r)
	return r
}

func serve(r http.Handler, method, target, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

var stored = &service.BookDto{ID: 1, Title: "title1", Author: "author1", Isbn: "001"}

func Test_BookAPI_Create(t *testing.T) {
	testCases := []struct {
		name         string
		body         string
		setup        func(m *mockBookService)
		expectedCode int
		expectedBody string
		location     string
	}{
		{
			name: "Success - book created",
			body: `{"title":"title1","author":"author1","isbn":"001"}`,
			setup: func(m *mockBookService) {
				m.On("Create", mock.Anything, service.BookCreateDto{Title: "title1", Author: "author1", Isbn: "001"}).Return(stored, nil)
			},
			expectedCode: http.StatusCreated,
			expectedBody: `{"id":1,"title":"title1","author":"author1","isbn":"001"}`,
			location:     "/books/1",
		},
		{
			name:         "Error - all fields empty",
			body:         `{}`,
			expectedCode: http.StatusBadRequest,
			expectedBody: errorsJSON(t, "title must not be empty", "author must not be empty", "isbn must not be empty"),
		},
		{
			name:         "Error - isbn empty",
			body:         `{"title":"title1","author":"author1","isbn":""}`,
			expectedCode: http.StatusBadRequest,
			expectedBody: errorsJSON(t, "isbn must not be empty"),
		},
		{
			name:         "Error - malformed json",
			body:         `{"title":`,
			expectedCode: http.StatusBadRequest,
			expectedBody: errorsJSON(t, "Invalid request body"),
		},
		{
			name: "Error - duplicated isbn",
			body: `{"title":"title1","author":"author1","isbn":"001"}`,
			setup: func(m *mockBookService) {
				m.On("Create", mock.Anything, mock.Anything).Return(nil, berrors.ErrDuplicateISBN)
			},
			expectedCode: http.StatusBadRequest,
			expectedBody: errorsJSON(t, "Duplicated ISBN"),
		},
		{
			name: "Error - service failure",
			body: `{"title":"title1","author":"author1","isbn":"001"}`,
			setup: func(m *mockBookService) {
				m.On("Create", mock.Anything, mock.Anything).Return(nil, errors.New("connection refused"))
			},
			expectedCode: http.StatusInternalServerError,
			expectedBody: errorsJSON(t, "Internal server error"),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			m := new(mockBookService)
			if tc.setup != nil {
				tc.setup(m)
			}

			// when
			rr := serve(newRouter(m), http.MethodPost, "/books", tc.body)

			// then
			assert.Equal(t, tc.expectedCode, rr.Code, "status code should match")
			assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
			assert.JSONEq(t, tc.expectedBody, rr.Body.String(), "response body should match")
			assert.Equal(t, tc.location, rr.Header().Get("Location"))
			m.AssertExpectations(t)
		})
	}
}

func Test_BookAPI_FindByID(t *testing.T) {
	testCases := []struct {
		name         string
		id           string
		setup        func(m *mockBookService)
		expectedCode int
		expectedBody string
	}{
		{
			name: "Success - book found",
			id:   "1",
			setup: func(m *mockBookService) {
				m.On("FindByID", mock.Anything, int64(1)).Return(stored, true, nil)
			},
			expectedCode: http.StatusOK,
			expectedBody: `{"id":1,"title":"title1","author":"author1","isbn":"001"}`,
		},
		{
			name: "Error - book not found",
			id:   "999",
			setup: func(m *mockBookService) {
				m.On("FindByID", mock.Anything, int64(999)).Return(nil, false, nil)
			},
			expectedCode: http.StatusNotFound,
		},
		{
			name:         "Error - invalid id",
			id:           "abc",
			expectedCode: http.StatusBadRequest,
			expectedBody: errorsJSON(t, "Invalid book ID: abc"),
		},
		{
			name: "Error - service failure",
			id:   "1",
			setup: func(m *mockBookService) {
				m.On("FindByID", mock.Anything, int64(1)).Return(nil, false, errors.New("connection refused"))
			},
			expectedCode: http.StatusInternalServerError,
			expectedBody: errorsJSON(t, "Internal server error"),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			m := new(mockBookService)
			if tc.setup != nil {
				tc.setup(m)
			}

			rr := serve(newRouter(m), http.MethodGet, "/books/"+tc.id, "")

			assert.Equal(t, tc.expectedCode, rr.Code)
			if tc.expectedBody == "" {
				assert.Empty(t, rr.Body.String())
			} else {
				assert.JSONEq(t, tc.expectedBody, rr.Body.String())
			}
			m.AssertExpectations(t)
		})
	}
}

func Test_BookAPI_Update(t *testing.T) {
	testCases := []struct {
		name         string
		id           string
		body         string
		setup        func(m *mockBookService)
		expectedCode int
		expectedBody string
	}{
		{
			name: "Success - title and author overlaid, isbn kept",
			id:   "1",
			body: `{"title":"title2","author":"author2","isbn":"ignored"}`,
			setup: func(m *mockBookService) {
				m.On("FindByID", mock.Anything, int64(1)).Return(&service.BookDto{ID: 1, Title: "title1", Author: "author1", Isbn: "001"}, true, nil)
				m.On("Update", mock.Anything, &service.BookDto{ID: 1, Title: "title2", Author: "author2", Isbn: "001"}).
					Return(&service.BookDto{ID: 1, Title: "title2", Author: "author2", Isbn: "001"}, nil)
			},
			expectedCode: http.StatusOK,
			expectedBody: `{"id":1,"title":"title2","author":"author2","isbn":"001"}`,
		},
		{
			name: "Error - book not found",
			id:   "999",
			body: `{"title":"title2","author":"author2"}`,
			setup: func(m *mockBookService) {
				m.On("FindByID", mock.Anything, int64(999)).Return(nil, false, nil)
			},
			expectedCode: http.StatusNotFound,
		},
		{
			name: "Error - empty title",
			id:   "1",
			body: `{"title":"","author":"author2"}`,
			setup: func(m *mockBookService) {
				m.On("FindByID", mock.Anything, int64(1)).Return(&service.BookDto{ID: 1, Title: "title1", Author: "author1", Isbn: "001"}, true, nil)
			},
			expectedCode: http.StatusBadRequest,
			expectedBody: errorsJSON(t, "title must not be empty"),
		},
		{
			name: "Error - invalid argument",
			id:   "1",
			body: `{"title":"title2","author":"author2"}`,
			setup: func(m *mockBookService) {
				m.On("FindByID", mock.Anything, int64(1)).Return(&service.BookDto{ID: 1, Isbn: "001"}, true, nil)
				m.On("Update", mock.Anything, mock.Anything).Return(nil, berrors.ErrInvalidArgument)
			},
			expectedCode: http.StatusBadRequest,
			expectedBody: errorsJSON(t, "ID cannot be null"),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			m := new(mockBookService)
			tc.setup(m)

			rr := serve(newRouter(m), http.MethodPut, "/books/"+tc.id, tc.body)

			assert.Equal(t, tc.expectedCode, rr.Code)
			if tc.expectedBody == "" {
				assert.Empty(t, rr.Body.String())
			} else {
				assert.JSONEq(t, tc.expectedBody, rr.Body.String())
			}
			m.AssertExpectations(t)
		})
	}
}

func Test_BookAPI_DeleteByID(t *testing.T) {
	t.Run("Success - book deleted", func(t *testing.T) {
		m := new(mockBookService)
		m.On("FindByID", mock.Anything, int64(1)).Return(stored, true, nil)
		m.On("Delete", mock.Anything, int64(1)).Return(nil)

		rr := serve(newRouter(m), http.MethodDelete, "/books/1", "")

		assert.Equal(t, http.StatusNoContent, rr.Code)
		assert.Empty(t, rr.Body.String())
		m.AssertExpectations(t)
	})

	t.Run("Error - book not found", func(t *testing.T) {
		m := new(mockBookService)
		m.On("FindByID", mock.Anything, int64(999)).Return(nil, false, nil)

		rr := serve(newRouter(m), http.MethodDelete, "/books/999", "")

		assert.Equal(t, http.StatusNotFound, rr.Code)
		m.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})
}

func Test_BookAPI_HealthCheck(t *testing.T) {
	rr := serve(newRouter(new(mockBookService)), http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rr.Code)
}

// Test_BookAPI_Lifecycle drives the handler against the in-memory store.
func Test_BookAPI_Lifecycle(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	r := newRouter(service.NewService(store.NewInMemoryStore(), messaging.NoopPublisher{}, logger))

	rr := serve(r, http.MethodPost, "/books", `{"title":"title1","author":"author1","isbn":"001"}`)
	require.Equal(t, http.StatusCreated, rr.Code)
	assert.JSONEq(t, `{"id":1,"title":"title1","author":"author1","isbn":"001"}`, rr.Body.String())

	rr = serve(r, http.MethodPost, "/books", `{"title":"other","author":"other","isbn":"001"}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.JSONEq(t, `{"errors":["Duplicated ISBN"]}`, rr.Body.String())

	rr = serve(r, http.MethodGet, "/books/1", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"id":1,"title":"title1","author":"author1","isbn":"001"}`, rr.Body.String())

	rr = serve(r, http.MethodPut, "/books/1", `{"title":"title2","author":"author2"}`)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"id":1,"title":"title2","author":"author2","isbn":"001"}`, rr.Body.String())

	rr = serve(r, http.MethodDelete, "/books/1", "")
	assert.Equal(t, http.StatusNoContent, rr.Code)

	rr = serve(r, http.MethodGet, "/books/1", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}
