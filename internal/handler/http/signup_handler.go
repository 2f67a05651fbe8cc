package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/nagashima/sso-idp/internal/domain/interfaces"
	"github.com/nagashima/sso-idp/internal/domain/models"
	"github.com/nagashima/sso-idp/internal/service"
)

// SignupHandler serves the staged registration endpoints.
type SignupHandler struct {
	signup *service.SignupService
	tokens interfaces.TokenService
	logger *zap.Logger
}

func NewSignupHandler(signup *service.SignupService, tokens interfaces.TokenService, logger *zap.Logger) *SignupHandler {
	return &SignupHandler{signup: signup, tokens: tokens, logger: logger}
}

// Email handles POST /users/api/sign_up/email.
func (h *SignupHandler) Email(c *gin.Context) {
	var input models.SignupEmailInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c)
		return
	}

	if err := h.signup.Begin(c.Request.Context(), input); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"message": "confirmation email sent"})
}

// VerifyEmail handles GET /users/verify_email/:token, the link in the
// confirmation email. The browser is redirected into the next step of the
// flow.
func (h *SignupHandler) VerifyEmail(c *gin.Context) {
	redirectTo, err := h.signup.ConfirmEmail(c.Request.Context(), c.Param("token"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Redirect(http.StatusFound, redirectTo)
}

// Password handles POST /users/api/sign_up/password.
func (h *SignupHandler) Password(c *gin.Context) {
	var input models.SignupPasswordInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c)
		return
	}

	if err := h.signup.StagePassword(c.Request.Context(), input); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "password staged"})
}

// Profile handles POST /users/api/sign_up/profile.
func (h *SignupHandler) Profile(c *gin.Context) {
	var input models.SignupProfileInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c)
		return
	}

	if err := h.signup.StageProfile(c.Request.Context(), input); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "profile staged"})
}

// Complete handles POST /users/api/sign_up/complete.
func (h *SignupHandler) Complete(c *gin.Context) {
	var input models.SignupCompleteInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c)
		return
	}

	result, err := h.signup.Complete(c.Request.Context(), input, c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	if result.SessionToken != "" {
		setSessionCookie(c, h.tokens, result.SessionToken)
	}
	c.JSON(http.StatusOK, result)
}
