package database

import (
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"
	"gorm.io/gorm"
)

var (
	// ErrNotOpen is returned when the shared handle is requested before Open.
	ErrNotOpen = errors.New("database is not open")
	// ErrStorageUnavailable covers open failures and non-constraint transaction failures.
	ErrStorageUnavailable = errors.New("storage unavailable")
	// ErrConstraintViolation is returned when a unique or primary key index rejects a write.
	ErrConstraintViolation = errors.New("constraint violation")
)

// IsConstraintViolation reports whether err came from a unique or primary key index.
func IsConstraintViolation(err error) bool {
	if errors.Is(err, ErrConstraintViolation) || errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}

// WrapError tags a storage error as ErrConstraintViolation or ErrStorageUnavailable.
// The original error stays in the chain.
func WrapError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrConstraintViolation) || errors.Is(err, ErrStorageUnavailable) || errors.Is(err, ErrNotOpen) {
		return fmt.Errorf("%s: %w", op, err)
	}
	if IsConstraintViolation(err) {
		return fmt.Errorf("%s: %w: %w", op, ErrConstraintViolation, err)
	}
	return fmt.Errorf("%s: %w: %w", op, ErrStorageUnavailable, err)
}
