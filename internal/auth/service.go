package auth

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/mrlokans/highlights-keeper/internal/database"
	"github.com/mrlokans/highlights-keeper/internal/entities"
)

var (
	ErrDuplicateUser      = errors.New("user already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailRequired      = errors.New("email is required")
	ErrPasswordRequired   = errors.New("password is required")
)

// UserRepository defines the user data access the service needs.
type UserRepository interface {
	CreateUser(user *entities.User) error
	GetUserByEmail(email string) (*entities.User, error)
}

// Service handles registration and credential checks.
type Service struct {
	users  UserRepository
	hasher PasswordHasher
}

// NewService creates a new authentication service.
func NewService(users UserRepository, hasher PasswordHasher) *Service {
	return &Service{
		users:  users,
		hasher: hasher,
	}
}

// Register creates an account for the normalized email.
// An existing account is never overwritten: the call fails with ErrDuplicateUser.
func (s *Service) Register(email, password, displayName string) (*entities.Identity, error) {
	email = entities.NormalizeEmail(strings.TrimSpace(email))
	if email == "" {
		return nil, ErrEmailRequired
	}
	if password == "" {
		return nil, ErrPasswordRequired
	}

	// Check if user already exists
	_, err := s.users.GetUserByEmail(email)
	if err == nil {
		return nil, ErrDuplicateUser
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}

	passwordHash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &entities.User{
		Email:        email,
		DisplayName:  displayName,
		PasswordHash: passwordHash,
	}

	if err := s.users.CreateUser(user); err != nil {
		// Lost a race with a concurrent registration
		if errors.Is(err, database.ErrConstraintViolation) {
			return nil, ErrDuplicateUser
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user.Identity(), nil
}

// Login checks a password against the stored hash.
// Unknown emails fail with ErrUserNotFound, wrong passwords with ErrInvalidCredentials.
func (s *Service) Login(email, password string) (*entities.Identity, error) {
	user, err := s.GetUser(email)
	if err != nil {
		return nil, err
	}

	if err := s.hasher.Verify(password, user.PasswordHash); err != nil {
		if errors.Is(err, ErrInvalidPassword) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to verify password: %w", err)
	}

	return user.Identity(), nil
}

// GetUser retrieves an account by email, normalizing it first.
func (s *Service) GetUser(email string) (*entities.User, error) {
	user, err := s.users.GetUserByEmail(entities.NormalizeEmail(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}
