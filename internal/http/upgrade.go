package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/highlights-keeper/internal/subscription"
)

type UpgradeController struct {
	prompt *subscription.Prompt
}

func NewUpgradeController(prompt *subscription.Prompt) *UpgradeController {
	return &UpgradeController{prompt: prompt}
}

// Upgrade starts a checkout for the caller. A failed checkout still answers
// 200 with a message, so the client can show it and carry on.
// POST /api/upgrade
func (uc *UpgradeController) Upgrade(c *gin.Context) {
	offer := uc.prompt.Upgrade(c.Request.Context(), currentEmail(c))
	c.JSON(http.StatusOK, offer)
}
