package auth

import (
	"errors"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"github.com/mrlokans/highlights-keeper/internal/database"
	"github.com/mrlokans/highlights-keeper/internal/entities"
	"github.com/mrlokans/highlights-keeper/internal/rememberme"
)

// SessionTTL is the fixed lifetime of a session, counted from creation.
const SessionTTL = 30 * 24 * time.Hour

// ErrTokenCollision is returned when a freshly generated token already exists.
var ErrTokenCollision = errors.New("session token collision")

// SessionRepository defines the session data access the service needs.
type SessionRepository interface {
	CreateSession(session *entities.Session) error
	GetSession(token string) (*entities.Session, error)
	DeleteSession(token string) error
}

// SessionService creates, resumes and ends sessions. The active token is kept
// in a rememberme.Store so it survives restarts.
type SessionService struct {
	sessions SessionRepository
	users    UserRepository
	pointer  rememberme.Store
	now      func() time.Time
	newToken func() (string, error)
}

// NewSessionService creates a session service bound to one pointer store.
func NewSessionService(sessions SessionRepository, users UserRepository, pointer rememberme.Store) *SessionService {
	return &SessionService{
		sessions: sessions,
		users:    users,
		pointer:  pointer,
		now:      func() time.Time { return time.Now().UTC() },
		newToken: GenerateSessionToken,
	}
}

// WithPointer returns a copy of the service that reads and writes the given
// pointer store instead. HTTP handlers use it to bind the service to a request.
func (s *SessionService) WithPointer(pointer rememberme.Store) *SessionService {
	clone := *s
	clone.pointer = pointer
	return &clone
}

// CreateSession starts a session for the user and makes it the remembered one,
// replacing any previously remembered token. The caller must have verified
// that the user exists.
func (s *SessionService) CreateSession(email string) (string, error) {
	token, err := s.newToken()
	if err != nil {
		return "", fmt.Errorf("failed to generate session token: %w", err)
	}

	now := s.now()
	session := &entities.Session{
		Token:     token,
		UserEmail: entities.NormalizeEmail(email),
		CreatedAt: now,
		ExpiresAt: now.Add(SessionTTL),
	}

	if err := s.sessions.CreateSession(session); err != nil {
		if errors.Is(err, database.ErrConstraintViolation) {
			return "", ErrTokenCollision
		}
		return "", fmt.Errorf("failed to create session: %w", err)
	}

	if err := s.pointer.Save(token); err != nil {
		if delErr := s.sessions.DeleteSession(token); delErr != nil {
			log.Printf("Failed to discard unsaved session: %v", delErr)
		}
		return "", err
	}

	return token, nil
}

// CurrentSession resolves the remembered token to its user.
//
// A missing pointer, a missing row, an expired row and an orphaned row all
// resolve to nil with a nil error. Missing and expired rows also clear the
// pointer; the row itself is left for the purge task.
func (s *SessionService) CurrentSession() (*entities.Identity, error) {
	token, err := s.pointer.Load()
	if err != nil {
		return nil, err
	}
	if token == "" {
		return nil, nil
	}

	session, err := s.sessions.GetSession(token)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if session == nil || session.ExpiredAt(s.now()) {
		s.forget()
		return nil, nil
	}

	user, err := s.users.GetUserByEmail(session.UserEmail)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load session owner: %w", err)
	}

	return user.Identity(), nil
}

// Logout forgets the remembered token and deletes its session row.
// It always succeeds from the caller's point of view; failures are logged.
func (s *SessionService) Logout() {
	token, err := s.pointer.Load()
	if err != nil {
		log.Printf("Failed to read session pointer on logout: %v", err)
	}

	s.forget()

	if token == "" {
		return
	}
	if err := s.sessions.DeleteSession(token); err != nil {
		log.Printf("Failed to delete session on logout: %v", err)
	}
}

func (s *SessionService) forget() {
	if err := s.pointer.Clear(); err != nil {
		log.Printf("Failed to clear session pointer: %v", err)
	}
}
