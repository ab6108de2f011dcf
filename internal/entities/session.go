package entities

import "time"

// Session is a bearer token bound to a user until ExpiresAt.
type Session struct {
	Token     string    `gorm:"primaryKey;size:64" json:"-"`
	UserEmail string    `gorm:"index:idx_sessions_user_email;size:255;not null" json:"user_email"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (Session) TableName() string {
	return "sessions"
}

// ExpiredAt reports whether the session is past its expiry at the given instant.
func (s *Session) ExpiredAt(now time.Time) bool {
	return s.ExpiresAt.Before(now)
}
