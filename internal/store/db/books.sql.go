package db

import (
	"context"
)

const bookColumns = `id, title, author, isbn, created_at, updated_at`

const createBook = `
INSERT INTO books (title, author, isbn)
VALUES ($1, $2, $3)
RETURNING ` + bookColumns

type CreateBookParams struct {
	Title  string
	Author string
	Isbn   string
}

func (q *Queries) CreateBook(ctx context.Context, arg CreateBookParams) (Book, error) {
	row := q.db.QueryRow(ctx, createBook, arg.Title, arg.Author, arg.Isbn)
	return scanBook(row)
}

const findBookByID = `
SELECT ` + bookColumns + `
FROM books
WHERE id = $1`

func (q *Queries) FindBookByID(ctx context.Context, id int64) (Book, error) {
	row := q.db.QueryRow(ctx, findBookByID, id)
	return scanBook(row)
}

// isbn is immutable after creation and never appears in the SET list.
const updateBook = `
UPDATE books
SET title = $2, author = $3, updated_at = now()
WHERE id = $1
RETURNING ` + bookColumns

type UpdateBookParams struct {
	ID     int64
	Title  string
	Author string
}

func (q *Queries) UpdateBook(ctx context.Context, arg UpdateBookParams) (Book, error) {
	row := q.db.QueryRow(ctx, updateBook, arg.ID, arg.Title, arg.Author)
	return scanBook(row)
}

const deleteBook = `
DELETE FROM books
WHERE id = $1`

func (q *Queries) DeleteBook(ctx context.Context, id int64) (int64, error) {
	result, err := q.db.Exec(ctx, deleteBook, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const existsBookByIsbn = `
SELECT EXISTS (SELECT 1 FROM books WHERE isbn = $1)`

func (q *Queries) ExistsBookByIsbn(ctx context.Context, isbn string) (bool, error) {
	row := q.db.QueryRow(ctx, existsBookByIsbn, isbn)
	var exists bool
	err := row.Scan(&exists)
	return exists, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBook(row rowScanner) (Book, error) {
	var i Book
	err := row.Scan(
		&i.ID,
		&i.Title,
		&i.Author,
		&i.Isbn,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}
