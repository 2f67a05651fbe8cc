package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/nagashima/sso-idp/internal/service"
)

// LogoutHandler serves the logout challenge endpoint.
type LogoutHandler struct {
	logout *service.LogoutService
	logger *zap.Logger
}

func NewLogoutHandler(logout *service.LogoutService, logger *zap.Logger) *LogoutHandler {
	return &LogoutHandler{logout: logout, logger: logger}
}

// Entry handles GET /users/logout.
func (h *LogoutHandler) Entry(c *gin.Context) {
	challenge := c.Query("logout_challenge")
	if challenge == "" {
		respondBindError(c)
		return
	}

	redirectTo, err := h.logout.Accept(c.Request.Context(), challenge, c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Redirect(http.StatusFound, redirectTo)
}
