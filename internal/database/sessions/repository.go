// Package sessions provides database operations for login sessions.
//
// Rows are only ever removed by Delete or DeleteExpired. Readers that find an
// expired row treat it as absent and leave it in place.
package sessions

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/mrlokans/highlights-keeper/internal/database"
	"github.com/mrlokans/highlights-keeper/internal/entities"
)

// Repository handles all session database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new sessions repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// CreateSession inserts a session row. A token that already exists fails
// with database.ErrConstraintViolation.
func (r *Repository) CreateSession(session *entities.Session) error {
	if err := r.db.Create(session).Error; err != nil {
		return database.WrapError("create session", err)
	}
	return nil
}

// GetSession retrieves a session by token. Returns nil, nil if no row matches.
func (r *Repository) GetSession(token string) (*entities.Session, error) {
	var session entities.Session
	err := r.db.Where("token = ?", token).Take(&session).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, database.WrapError("get session", err)
	}
	return &session, nil
}

// DeleteSession removes a session by token. Missing tokens are not an error.
func (r *Repository) DeleteSession(token string) error {
	err := r.db.Where("token = ?", token).Delete(&entities.Session{}).Error
	return database.WrapError("delete session", err)
}

// ListSessionsForUser returns every session row owned by a user, newest first.
func (r *Repository) ListSessionsForUser(email string) ([]entities.Session, error) {
	var sessions []entities.Session
	err := r.db.Where("user_email = ?", email).Order("created_at DESC").Find(&sessions).Error
	if err != nil {
		return nil, database.WrapError("list sessions", err)
	}
	return sessions, nil
}

// DeleteExpired removes sessions whose expiry is strictly before the given instant.
func (r *Repository) DeleteExpired(before time.Time) (int64, error) {
	result := r.db.Where("expires_at < ?", before).Delete(&entities.Session{})
	if result.Error != nil {
		return 0, database.WrapError("delete expired sessions", result.Error)
	}
	return result.RowsAffected, nil
}
