// Package books provides database operations for a user's import history.
//
// Each user has at most one row per title. RecordImport reads the
// (user, title) pair inside a write transaction to choose between insert and
// update; the idx_books_user_title unique index is the final arbiter, and a
// write it rejects surfaces as database.ErrConstraintViolation.
//
// # Usage
//
//	repo := books.NewRepository(db)
//	book, err := repo.RecordImport("alice@example.com", "Dune", "Frank Herbert", 5)
//	history, err := repo.ListBooks("alice@example.com")
package books

import (
	"errors"
	"sort"
	"time"

	"gorm.io/gorm"

	"github.com/mrlokans/highlights-keeper/internal/database"
	"github.com/mrlokans/highlights-keeper/internal/entities"
)

// Repository handles all book history database operations.
type Repository struct {
	db  *gorm.DB
	now func() time.Time
}

// NewRepository creates a new books repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db:  db,
		now: func() time.Time { return time.Now().UTC() },
	}
}

// RecordImport creates or refreshes the history row for (user, title).
//
// An existing row gets the supplied highlight count (replaced, not added) and
// a new LastImportedAt; its author and FirstImportedAt are kept. A missing
// row is inserted with both timestamps set to now.
func (r *Repository) RecordImport(userEmail, title, author string, highlightCount int) (*entities.Book, error) {
	email := entities.NormalizeEmail(userEmail)
	now := r.now()

	var book entities.Book
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var existing entities.Book
		err := tx.Where("user_email = ? AND title = ?", email, title).Take(&existing).Error

		switch {
		case err == nil:
			existing.HighlightCount = highlightCount
			existing.LastImportedAt = now
			if err := tx.Save(&existing).Error; err != nil {
				return err
			}
			book = existing
			return nil

		case errors.Is(err, gorm.ErrRecordNotFound):
			book = entities.Book{
				UserEmail:       email,
				Title:           title,
				Author:          author,
				HighlightCount:  highlightCount,
				FirstImportedAt: now,
				LastImportedAt:  now,
			}
			return tx.Create(&book).Error

		default:
			return err
		}
	})
	if err != nil {
		return nil, database.WrapError("record import", err)
	}

	return &book, nil
}

// GetBook retrieves the history row for (user, title). Returns nil, nil if absent.
func (r *Repository) GetBook(userEmail, title string) (*entities.Book, error) {
	var book entities.Book
	err := r.db.Where("user_email = ? AND title = ?", entities.NormalizeEmail(userEmail), title).Take(&book).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, database.WrapError("get book", err)
	}
	return &book, nil
}

// ListBooks returns every book imported by a user, most recently imported first.
func (r *Repository) ListBooks(userEmail string) ([]entities.Book, error) {
	var books []entities.Book
	err := r.db.Where("user_email = ?", entities.NormalizeEmail(userEmail)).Find(&books).Error
	if err != nil {
		return nil, database.WrapError("list books", err)
	}

	sort.SliceStable(books, func(i, j int) bool {
		return books[i].LastImportedAt.After(books[j].LastImportedAt)
	})

	return books, nil
}

// CountBooks returns the number of books imported by a user.
func (r *Repository) CountBooks(userEmail string) (int64, error) {
	var count int64
	err := r.db.Model(&entities.Book{}).
		Where("user_email = ?", entities.NormalizeEmail(userEmail)).
		Count(&count).Error
	if err != nil {
		return 0, database.WrapError("count books", err)
	}
	return count, nil
}

// RemoveBook deletes the history row for (user, title) if it exists.
// Removing a title that was never imported succeeds.
func (r *Repository) RemoveBook(userEmail, title string) error {
	err := r.db.Where("user_email = ? AND title = ?", entities.NormalizeEmail(userEmail), title).
		Delete(&entities.Book{}).Error
	return database.WrapError("remove book", err)
}
