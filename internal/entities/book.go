package entities

import "time"

// Book is one imported title in a user's history.
// At most one row exists per (UserEmail, Title), enforced by idx_books_user_title.
type Book struct {
	ID              uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserEmail       string    `gorm:"size:255;not null;index:idx_books_user_email;uniqueIndex:idx_books_user_title,priority:1" json:"user_email"`
	Title           string    `gorm:"size:512;not null;index:idx_books_title;uniqueIndex:idx_books_user_title,priority:2" json:"title"`
	Author          string    `gorm:"size:256" json:"author"`
	HighlightCount  int       `json:"highlight_count"`
	FirstImportedAt time.Time `json:"first_imported_at"`
	LastImportedAt  time.Time `json:"last_imported_at"`
}

func (Book) TableName() string {
	return "books"
}
