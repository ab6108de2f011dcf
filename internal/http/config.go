package http

import (
	"github.com/mrlokans/highlights-keeper/internal/auth"
	"github.com/mrlokans/highlights-keeper/internal/kindle"
	"github.com/mrlokans/highlights-keeper/internal/services"
	"github.com/mrlokans/highlights-keeper/internal/subscription"
)

// RouterConfig contains all dependencies needed to build the HTTP router.
type RouterConfig struct {
	// Core dependencies
	Auth        *auth.Service
	Sessions    *auth.Middleware
	RateLimiter *auth.RateLimiter
	Imports     *services.ImportService
	Books       BookStore
	Kindle      *kindle.Parser
	Upgrades    *subscription.Prompt
	Database    Pinger

	// CSRF protection is skipped when the secret is empty
	CSRFSecret    []byte
	SecureCookies bool

	// Application info
	Version string
}
