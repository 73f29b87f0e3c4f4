// Package db contains the row types and SQL statements for the books table.
package db

import "time"

type Book struct {
	ID        int64
	Title     string
	Author    string
	Isbn      string
	CreatedAt time.Time
	UpdatedAt time.Time
}
