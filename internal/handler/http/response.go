package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	domainErrors "github.com/nagashima/sso-idp/internal/domain/errors"
	"github.com/nagashima/sso-idp/internal/domain/interfaces"
	"github.com/nagashima/sso-idp/internal/infrastructure/hydra"
)

type errorBody struct {
	Code    string              `json:"code"`
	Message string              `json:"message"`
	Fields  map[string][]string `json:"fields,omitempty"`
}

type errorResponse struct {
	Error errorBody `json:"error"`
}

// respondError maps a service error to its HTTP status. Business outcomes
// come back with their own codes and are not logged as faults; anything
// unrecognized is a 500 and is.
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	var ve *domainErrors.ValidationError
	if errors.As(err, &ve) {
		c.JSON(http.StatusUnprocessableEntity, errorResponse{Error: errorBody{
			Code:    domainErrors.CodeValidation,
			Message: "validation failed",
			Fields:  ve.Fields,
		}})
		return
	}

	var he *hydra.Error
	if errors.As(err, &he) {
		switch he.Kind {
		case hydra.KindNotFound:
			c.JSON(http.StatusNotFound, errorResponse{Error: errorBody{
				Code:    domainErrors.CodeNotFound,
				Message: "challenge not found",
			}})
		default:
			logger.Error("authorization server request failed", zap.Error(err))
			c.JSON(http.StatusBadGateway, errorResponse{Error: errorBody{
				Code:    domainErrors.CodeDelegate,
				Message: "authorization server unavailable",
			}})
		}
		return
	}

	switch {
	case errors.Is(err, domainErrors.ErrUserNotActivated):
		c.JSON(http.StatusUnauthorized, errorResponse{Error: errorBody{
			Code:    domainErrors.CodeNotActivated,
			Message: err.Error(),
		}})
	case domainErrors.IsUnauthorized(err):
		c.JSON(http.StatusUnauthorized, errorResponse{Error: errorBody{
			Code:    domainErrors.CodeUnauthorized,
			Message: rootMessage(err),
		}})
	case errors.Is(err, domainErrors.ErrAuthCodeExpired),
		errors.Is(err, domainErrors.ErrTicketExpired):
		c.JSON(http.StatusUnprocessableEntity, errorResponse{Error: errorBody{
			Code:    domainErrors.CodeExpired,
			Message: rootMessage(err),
		}})
	case errors.Is(err, domainErrors.ErrAuthCodeMismatch),
		errors.Is(err, domainErrors.ErrTicketNotConfirmed),
		errors.Is(err, domainErrors.ErrDraftIncomplete),
		errors.Is(err, domainErrors.ErrInvalidRequest):
		c.JSON(http.StatusUnprocessableEntity, errorResponse{Error: errorBody{
			Code:    domainErrors.CodeValidation,
			Message: rootMessage(err),
		}})
	case domainErrors.IsNotFound(err):
		c.JSON(http.StatusNotFound, errorResponse{Error: errorBody{
			Code:    domainErrors.CodeNotFound,
			Message: rootMessage(err),
		}})
	case domainErrors.IsConflict(err):
		c.JSON(http.StatusConflict, errorResponse{Error: errorBody{
			Code:    domainErrors.CodeConflict,
			Message: rootMessage(err),
		}})
	default:
		logger.Error("request failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, errorResponse{Error: errorBody{
			Code:    domainErrors.CodeInternal,
			Message: "internal server error",
		}})
	}
}

// rootMessage strips wrapping so clients see the sentinel text, not the
// call-site annotations.
func rootMessage(err error) string {
	for {
		unwrapped := errors.Unwrap(err)
		if unwrapped == nil {
			return err.Error()
		}
		err = unwrapped
	}
}

func respondBindError(c *gin.Context) {
	c.JSON(http.StatusBadRequest, errorResponse{Error: errorBody{
		Code:    domainErrors.CodeValidation,
		Message: "malformed request body",
	}})
}

// setSessionCookie attaches a session token to the response with the
// transport parameters derived by the token service.
func setSessionCookie(c *gin.Context, tokens interfaces.TokenService, token string) {
	secure := c.Request.TLS != nil || c.GetHeader("X-Forwarded-Proto") == "https"
	opts := tokens.SessionCookie(token, secure)
	c.SetSameSite(opts.SameSite)
	c.SetCookie(opts.Name, opts.Value, opts.MaxAge, opts.Path, opts.Domain, opts.Secure, opts.HttpOnly)
}
