package entities

import (
	"strings"
	"time"
)

// User is a registered account. The normalized email is the primary key.
type User struct {
	Email        string    `gorm:"primaryKey;size:255" json:"email"`
	DisplayName  string    `gorm:"size:255" json:"display_name"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

func (User) TableName() string {
	return "users"
}

// Identity is the public view of a user. It never carries the password hash.
type Identity struct {
	Email       string `json:"email"`
	DisplayName string `json:"name"`
}

func (u *User) Identity() *Identity {
	return &Identity{
		Email:       u.Email,
		DisplayName: u.DisplayName,
	}
}

// NormalizeEmail returns the canonical user key for an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(email)
}
