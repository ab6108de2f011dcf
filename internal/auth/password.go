package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"

	"golang.org/x/crypto/bcrypt"

	"github.com/mrlokans/highlights-keeper/internal/config"
)

// SessionTokenBytes is the amount of randomness in a session token (256 bits).
const SessionTokenBytes = 32

var (
	ErrInvalidPassword = errors.New("invalid password")
	ErrPasswordTooLong = errors.New("password exceeds maximum length of 72 bytes")
	ErrUnknownScheme   = errors.New("unknown password scheme")
)

// PasswordHasher derives and verifies stored password hashes.
// Verify returns ErrInvalidPassword on a mismatch.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) error
}

// NewPasswordHasher builds the hasher selected by AUTH_PASSWORD_SCHEME.
func NewPasswordHasher(cfg config.Auth) (PasswordHasher, error) {
	switch cfg.PasswordScheme {
	case config.PasswordSchemeSHA256, "":
		salt := cfg.PasswordSalt
		if salt == "" {
			salt = config.DefaultPasswordSalt
		}
		return NewSaltedSHA256Hasher(salt), nil
	case config.PasswordSchemeBcrypt:
		return NewBcryptHasher(cfg.BcryptCost), nil
	default:
		return nil, ErrUnknownScheme
	}
}

// SaltedSHA256Hasher hashes hex(sha256(password + salt)) with one salt shared
// by every account. It is fast and unsalted per user, so it only suits a
// local store that is not the security boundary for paid features.
type SaltedSHA256Hasher struct {
	salt string
}

func NewSaltedSHA256Hasher(salt string) *SaltedSHA256Hasher {
	return &SaltedSHA256Hasher{salt: salt}
}

func (h *SaltedSHA256Hasher) Hash(password string) (string, error) {
	sum := sha256.Sum256([]byte(password + h.salt))
	return hex.EncodeToString(sum[:]), nil
}

func (h *SaltedSHA256Hasher) Verify(password, hash string) error {
	fresh, _ := h.Hash(password)
	if subtle.ConstantTimeCompare([]byte(fresh), []byte(hash)) != 1 {
		return ErrInvalidPassword
	}
	return nil
}

// BcryptHasher stores bcrypt hashes with a per-hash salt.
type BcryptHasher struct {
	cost int
}

func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

// Hash creates a bcrypt hash of the password.
func (h *BcryptHasher) Hash(password string) (string, error) {
	// bcrypt has a 72-byte limit
	if len(password) > 72 {
		return "", ErrPasswordTooLong
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Verify compares a password with its hash.
func (h *BcryptHasher) Verify(password, hash string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrInvalidPassword
		}
		return err
	}
	return nil
}

// GenerateSessionToken creates a random 256-bit token, hex-encoded.
func GenerateSessionToken() (string, error) {
	bytes := make([]byte, SessionTokenBytes)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}

// GenerateCSRFSecret creates a random 32-byte key for CSRF token signing.
func GenerateCSRFSecret() ([]byte, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return nil, err
	}
	return bytes, nil
}
