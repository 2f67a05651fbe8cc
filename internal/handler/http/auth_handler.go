package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/nagashima/sso-idp/internal/domain/interfaces"
	"github.com/nagashima/sso-idp/internal/domain/models"
	"github.com/nagashima/sso-idp/internal/service"
)

// AuthHandler serves the two-step sign-in endpoints, for both the
// first-party flow and the flow initiated by the authorization server.
type AuthHandler struct {
	signIn *service.SignInService
	tokens interfaces.TokenService
	logger *zap.Logger
}

func NewAuthHandler(signIn *service.SignInService, tokens interfaces.TokenService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{signIn: signIn, tokens: tokens, logger: logger}
}

// Entry handles GET /users/sign_in. With a login challenge the pending
// request is inspected first: a remembered subject skips the form entirely.
func (h *AuthHandler) Entry(c *gin.Context) {
	challenge := c.Query("login_challenge")
	if challenge == "" {
		c.JSON(http.StatusOK, gin.H{"login_challenge": ""})
		return
	}

	redirectTo, err := h.signIn.HandleLoginChallenge(c.Request.Context(), challenge)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if redirectTo != "" {
		c.Redirect(http.StatusFound, redirectTo)
		return
	}
	c.JSON(http.StatusOK, gin.H{"login_challenge": challenge})
}

// Authenticate handles POST /users/api/sign_in/authenticate.
func (h *AuthHandler) Authenticate(c *gin.Context) {
	var input models.AuthenticateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c)
		return
	}
	input.IPAddress = c.ClientIP()
	input.UserAgent = c.Request.UserAgent()

	result, err := h.signIn.Authenticate(c.Request.Context(), input)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Verify handles POST /users/api/sign_in/verify.
func (h *AuthHandler) Verify(c *gin.Context) {
	var input models.VerifyInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c)
		return
	}
	input.IPAddress = c.ClientIP()
	input.UserAgent = c.Request.UserAgent()

	result, err := h.signIn.Verify(c.Request.Context(), input)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	if result.SessionToken != "" {
		setSessionCookie(c, h.tokens, result.SessionToken)
	}
	c.JSON(http.StatusOK, result)
}
