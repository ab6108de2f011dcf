package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/mrlokans/highlights-keeper/internal/entities"
	"github.com/mrlokans/highlights-keeper/internal/utils"
)

var ErrInvalidHighlightCount = errors.New("highlight count must not be negative")

// ImportService records imported books in a user's history. Raw metadata is
// cleaned first, and titles new to the user pass through the gate.
type ImportService struct {
	history BookHistory
	gate    ImportGate
	auditor PayloadAuditor
}

// NewImportService creates a new ImportService. The gate and auditor are optional.
func NewImportService(history BookHistory, gate ImportGate, auditor PayloadAuditor) *ImportService {
	return &ImportService{
		history: history,
		gate:    gate,
		auditor: auditor,
	}
}

// Import records one book. Re-importing a title the user already has is
// never gated; its highlight count is replaced with the new value.
func (s *ImportService) Import(ctx context.Context, userEmail string, input ImportInput) (*entities.Book, error) {
	book, _, err := s.importOne(ctx, userEmail, input)
	return book, err
}

// ImportBatch imports every input, carrying on past individual failures.
// The raw payload is audited once before anything is written.
func (s *ImportService) ImportBatch(ctx context.Context, source, userEmail string, inputs []ImportInput) ImportResult {
	s.audit(source, userEmail, inputs)

	result := ImportResult{Books: []entities.Book{}}
	for _, input := range inputs {
		if ctx.Err() != nil {
			result.BooksFailed++
			result.Failures = append(result.Failures, failure(input.Title, ctx.Err()))
			continue
		}

		result.BooksProcessed++
		book, created, err := s.importOne(ctx, userEmail, input)
		if err != nil {
			result.BooksFailed++
			result.Failures = append(result.Failures, failure(input.Title, err))
			continue
		}

		if created {
			result.BooksCreated++
		} else {
			result.BooksUpdated++
		}
		result.Books = append(result.Books, *book)
	}

	log.Printf("Imported %d books for %s from %s (%d new, %d updated, %d failed)",
		result.BooksProcessed-result.BooksFailed, userEmail, source,
		result.BooksCreated, result.BooksUpdated, result.BooksFailed)

	return result
}

func (s *ImportService) importOne(ctx context.Context, userEmail string, input ImportInput) (*entities.Book, bool, error) {
	if input.HighlightCount < 0 {
		return nil, false, ErrInvalidHighlightCount
	}

	title := utils.CleanTitle(input.Title)
	author := utils.CleanAuthor(input.Author)

	existing, err := s.history.GetBook(userEmail, title)
	if err != nil {
		return nil, false, fmt.Errorf("failed to look up %q: %w", title, err)
	}

	if existing == nil && s.gate != nil {
		if err := s.gate.AllowNewBook(ctx, userEmail); err != nil {
			return nil, false, err
		}
	}

	book, err := s.history.RecordImport(userEmail, title, author, input.HighlightCount)
	if err != nil {
		return nil, false, fmt.Errorf("failed to record %q: %w", title, err)
	}

	return book, existing == nil, nil
}

func (s *ImportService) audit(source, userEmail string, payload any) {
	if s.auditor == nil {
		return
	}
	if _, err := s.auditor.SaveImport(source, userEmail, payload); err != nil {
		log.Printf("Failed to save audit file: %v", err)
	}
}

func failure(title string, err error) ImportFailure {
	return ImportFailure{Title: title, Err: err, Error: err.Error()}
}
