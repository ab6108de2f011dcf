package auth

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/highlights-keeper/internal/database"
	"github.com/mrlokans/highlights-keeper/internal/entities"
	"github.com/mrlokans/highlights-keeper/internal/rememberme"
)

// Context keys for session data
const (
	ContextKeyIdentity = "auth_identity"
	ContextKeyAuthType = "auth_type" // "cookie", "bearer", or "none"
)

// AuthType indicates where the session token came from
type AuthType string

const (
	AuthTypeNone   AuthType = "none"
	AuthTypeCookie AuthType = "cookie"
	AuthTypeBearer AuthType = "bearer"
)

// Middleware resolves the caller's session for HTTP requests.
//
// Browser clients carry the remembered token in a cookie; API clients such
// as the CLI send it as a Bearer token. Either way the token goes through
// SessionService.CurrentSession, so expiry is handled in one place.
type Middleware struct {
	sessions      *SessionService
	secureCookies bool
}

// NewMiddleware creates a new session middleware.
func NewMiddleware(sessions *SessionService, secureCookies bool) *Middleware {
	return &Middleware{
		sessions:      sessions,
		secureCookies: secureCookies,
	}
}

// Sessions returns the session service bound to this request's token source.
func (m *Middleware) Sessions(c *gin.Context) *SessionService {
	return m.sessions.WithPointer(m.pointer(c))
}

func (m *Middleware) pointer(c *gin.Context) rememberme.Store {
	if token, ok := bearerToken(c); ok {
		return rememberme.NewMemoryStore(token)
	}
	return newCookiePointer(c, m.secureCookies)
}

// Handler returns a Gin middleware that attaches the current identity, if any.
// It never rejects a request for lacking a session; use RequireSession for that.
func (m *Middleware) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		authType := AuthTypeCookie
		if _, ok := bearerToken(c); ok {
			authType = AuthTypeBearer
		}

		identity, err := m.Sessions(c).CurrentSession()
		if err != nil {
			log.Printf("Failed to resolve session: %v", err)
			status := http.StatusInternalServerError
			if errors.Is(err, database.ErrStorageUnavailable) {
				status = http.StatusServiceUnavailable
			}
			c.AbortWithStatusJSON(status, gin.H{"error": "failed to resolve session"})
			return
		}

		if identity == nil {
			c.Set(ContextKeyAuthType, AuthTypeNone)
			c.Next()
			return
		}

		c.Set(ContextKeyIdentity, identity)
		c.Set(ContextKeyAuthType, authType)
		c.Next()
	}
}

// RequireSession rejects requests that Handler could not attach an identity to.
func (m *Middleware) RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		if GetIdentity(c) == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "authentication required",
			})
			return
		}
		c.Next()
	}
}

// bearerToken extracts the token from "Authorization: Bearer <token>".
func bearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", false
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

// GetIdentity retrieves the session owner from the context.
// Returns nil if the request carries no live session.
func GetIdentity(c *gin.Context) *entities.Identity {
	if v, exists := c.Get(ContextKeyIdentity); exists {
		if identity, ok := v.(*entities.Identity); ok {
			return identity
		}
	}
	return nil
}

// GetAuthType retrieves where the session token came from.
func GetAuthType(c *gin.Context) AuthType {
	if t, exists := c.Get(ContextKeyAuthType); exists {
		if authType, ok := t.(AuthType); ok {
			return authType
		}
	}
	return AuthTypeNone
}
