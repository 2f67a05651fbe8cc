package http

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/nagashima/sso-idp/internal/config"
	"github.com/nagashima/sso-idp/internal/handler/http/middleware"
)

// Handlers bundles everything the router mounts.
type Handlers struct {
	Auth    *AuthHandler
	Signup  *SignupHandler
	Consent *ConsentHandler
	Logout  *LogoutHandler
	Health  *HealthHandler
}

// NewRouter assembles the gin engine with the shared middleware stack and
// every route this service serves.
func NewRouter(cfg config.Config, logger *zap.Logger, h Handlers) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(middleware.Recovery(logger))
	router.Use(middleware.RequestLogger(logger))
	if cfg.Metrics.Enabled {
		router.Use(middleware.Metrics())
	}

	corsConfig := cors.DefaultConfig()
	if len(cfg.Server.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.Server.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization", "X-Request-ID")
	router.Use(cors.New(corsConfig))

	router.GET("/health", h.Health.Health)
	if cfg.Metrics.Enabled {
		router.GET(cfg.Metrics.Path, gin.WrapH(promhttp.Handler()))
	}

	users := router.Group("/users")
	{
		users.GET("/sign_in", h.Auth.Entry)
		users.GET("/consent", h.Consent.Entry)
		users.GET("/logout", h.Logout.Entry)
		users.GET("/verify_email/:token", h.Signup.VerifyEmail)

		api := users.Group("/api")
		{
			api.POST("/sign_in/authenticate", h.Auth.Authenticate)
			api.POST("/sign_in/verify", h.Auth.Verify)

			// Same handlers; the sso paths are what the hosted pages
			// call when a login challenge is in play.
			api.POST("/sso/sign_in/authenticate", h.Auth.Authenticate)
			api.POST("/sso/sign_in/verify", h.Auth.Verify)

			api.POST("/sign_up/email", h.Signup.Email)
			api.POST("/sign_up/password", h.Signup.Password)
			api.POST("/sign_up/profile", h.Signup.Profile)
			api.POST("/sign_up/complete", h.Signup.Complete)

			api.POST("/consent", h.Consent.Decide)
		}
	}

	return router
}
