package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/nagashima/sso-idp/internal/domain/models"
	"github.com/nagashima/sso-idp/internal/service"
)

// ConsentHandler serves the consent challenge endpoints.
type ConsentHandler struct {
	consent *service.ConsentService
	logger  *zap.Logger
}

func NewConsentHandler(consent *service.ConsentService, logger *zap.Logger) *ConsentHandler {
	return &ConsentHandler{consent: consent, logger: logger}
}

// Entry handles GET /users/consent. The automatic approval rules run first;
// only when none match does the browser get a prompt payload.
func (h *ConsentHandler) Entry(c *gin.Context) {
	challenge := c.Query("consent_challenge")
	if challenge == "" {
		respondBindError(c)
		return
	}

	outcome, err := h.consent.HandleChallenge(c.Request.Context(), challenge, c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	if outcome.RedirectTo != "" {
		c.Redirect(http.StatusFound, outcome.RedirectTo)
		return
	}
	c.JSON(http.StatusOK, outcome.Prompt)
}

// Decide handles POST /users/api/consent with the user's explicit answer.
func (h *ConsentHandler) Decide(c *gin.Context) {
	var input models.ConsentDecisionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c)
		return
	}
	input.IPAddress = c.ClientIP()
	input.UserAgent = c.Request.UserAgent()

	redirectTo, err := h.consent.Decide(c.Request.Context(), input)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"redirect_to": redirectTo})
}
