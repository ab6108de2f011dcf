package services

import (
	"context"

	"github.com/mrlokans/highlights-keeper/internal/entities"
)

// BookHistory is the per-user import history an import writes to.
type BookHistory interface {
	RecordImport(userEmail, title, author string, highlightCount int) (*entities.Book, error)
	GetBook(userEmail, title string) (*entities.Book, error)
}

// ImportGate decides whether a user may add a title that is not yet in
// their history.
type ImportGate interface {
	AllowNewBook(ctx context.Context, email string) error
}

// PayloadAuditor keeps a copy of raw import payloads.
type PayloadAuditor interface {
	SaveImport(source, userEmail string, payload any) (string, error)
}

// ImportInput is one book as reported by a source, before cleaning.
type ImportInput struct {
	Title          string `json:"title"`
	Author         string `json:"author"`
	HighlightCount int    `json:"highlight_count"`
}

// ImportResult contains the outcome of a batch import.
type ImportResult struct {
	BooksProcessed int             `json:"books_processed"`
	BooksCreated   int             `json:"books_created"`
	BooksUpdated   int             `json:"books_updated"`
	BooksFailed    int             `json:"books_failed"`
	Books          []entities.Book `json:"books"`
	Failures       []ImportFailure `json:"failures,omitempty"`
}

// ImportFailure describes one book that could not be recorded.
type ImportFailure struct {
	Title string `json:"title"`
	Err   error  `json:"-"`
	Error string `json:"error"`
}
