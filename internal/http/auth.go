package http

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/highlights-keeper/internal/auth"
)

type AuthController struct {
	service  *auth.Service
	sessions *auth.Middleware
	limiter  *auth.RateLimiter
}

func NewAuthController(service *auth.Service, sessions *auth.Middleware, limiter *auth.RateLimiter) *AuthController {
	return &AuthController{
		service:  service,
		sessions: sessions,
		limiter:  limiter,
	}
}

type credentialsRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"name"`
}

// LoginResponse carries the new session token. Cookie clients can ignore it;
// API clients send it back as a Bearer token.
type LoginResponse struct {
	Token     string `json:"token"`
	ExpiresIn int64  `json:"expires_in"`
	User      any    `json:"user"`
}

// Register creates an account. It does not start a session.
// POST /api/auth/register
func (ac *AuthController) Register(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	identity, err := ac.service.Register(req.Email, req.Password, req.DisplayName)
	if err != nil {
		respondServiceError(c, err, "register")
		return
	}

	c.JSON(http.StatusCreated, identity)
}

// Login verifies credentials and starts a session.
// POST /api/auth/login
func (ac *AuthController) Login(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	ip := c.ClientIP()
	if ac.limiter != nil {
		if allowed, retryAfter := ac.limiter.Allow(ip, req.Email); !allowed {
			c.Header("Retry-After", fmt.Sprintf("%.0f", retryAfter.Seconds()))
			c.JSON(http.StatusTooManyRequests, ErrorResponse{
				Error: "too many failed login attempts",
				Code:  "rate_limited",
			})
			return
		}
	}

	identity, err := ac.service.Login(req.Email, req.Password)
	if err != nil {
		if ac.limiter != nil && (errors.Is(err, auth.ErrInvalidCredentials) || errors.Is(err, auth.ErrUserNotFound)) {
			ac.limiter.RecordFailure(ip, req.Email)
		}
		respondServiceError(c, err, "login")
		return
	}
	if ac.limiter != nil {
		ac.limiter.RecordSuccess(ip, req.Email)
	}

	token, err := ac.sessions.Sessions(c).CreateSession(identity.Email)
	if err != nil {
		respondServiceError(c, err, "create session")
		return
	}

	c.JSON(http.StatusOK, LoginResponse{
		Token:     token,
		ExpiresIn: int64(auth.SessionTTL.Seconds()),
		User:      identity,
	})
}

// Logout ends the caller's session. It succeeds even without one.
// POST /api/auth/logout
func (ac *AuthController) Logout(c *gin.Context) {
	ac.sessions.Sessions(c).Logout()
	respondSuccess(c, "logged out", nil)
}

// Session reports who the caller is signed in as.
// GET /api/auth/session
func (ac *AuthController) Session(c *gin.Context) {
	identity := auth.GetIdentity(c)
	if identity == nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "no active session", Code: "no_session"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"user":      identity,
		"auth_type": auth.GetAuthType(c),
	})
}

// CSRFToken hands browser clients a token for the next state-changing request.
// GET /api/csrf
func (ac *AuthController) CSRFToken(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"csrf_token": auth.GetCSRFToken(c)})
}
