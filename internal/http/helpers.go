package http

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/highlights-keeper/internal/auth"
	"github.com/mrlokans/highlights-keeper/internal/database"
	"github.com/mrlokans/highlights-keeper/internal/services"
	"github.com/mrlokans/highlights-keeper/internal/subscription"
)

// ErrorResponse is the standard error response format for all API errors.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`    // machine-readable error code
	Details any    `json:"details,omitempty"` // additional context
}

// SuccessResponse is a standard success response with optional data.
type SuccessResponse struct {
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func respondBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: message})
}

// respondInternalError logs the error and sends a 500 without exposing it.
func respondInternalError(c *gin.Context, err error, context string) {
	log.Printf("Internal error (%s): %v", context, err)
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
}

func respondSuccess(c *gin.Context, message string, data any) {
	c.JSON(http.StatusOK, SuccessResponse{Message: message, Data: data})
}

// respondServiceError maps domain errors to status codes.
func respondServiceError(c *gin.Context, err error, context string) {
	var upgrade *subscription.UpgradeRequiredError

	switch {
	case errors.As(err, &upgrade):
		c.JSON(http.StatusPaymentRequired, ErrorResponse{
			Error:   "upgrade required",
			Code:    "upgrade_required",
			Details: upgrade,
		})
	case errors.Is(err, auth.ErrDuplicateUser):
		c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error(), Code: "duplicate_user"})
	case errors.Is(err, database.ErrConstraintViolation), errors.Is(err, auth.ErrTokenCollision):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "conflicting write, please retry", Code: "conflict"})
	case errors.Is(err, auth.ErrUserNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error(), Code: "user_not_found"})
	case errors.Is(err, auth.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: err.Error(), Code: "invalid_credentials"})
	case errors.Is(err, auth.ErrEmailRequired),
		errors.Is(err, auth.ErrPasswordRequired),
		errors.Is(err, auth.ErrPasswordTooLong),
		errors.Is(err, services.ErrInvalidHighlightCount):
		respondBadRequest(c, err.Error())
	case errors.Is(err, database.ErrStorageUnavailable), errors.Is(err, database.ErrNotOpen):
		log.Printf("Storage unavailable (%s): %v", context, err)
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "storage unavailable", Code: "storage_unavailable"})
	case errors.Is(err, subscription.ErrUnavailable):
		log.Printf("Subscription service unavailable (%s): %v", context, err)
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "subscription service unavailable", Code: "subscription_unavailable"})
	default:
		respondInternalError(c, err, context)
	}
}

// currentEmail returns the session owner's email. RequireSession guarantees
// an identity on every route that calls it.
func currentEmail(c *gin.Context) string {
	if identity := auth.GetIdentity(c); identity != nil {
		return identity.Email
	}
	return ""
}
