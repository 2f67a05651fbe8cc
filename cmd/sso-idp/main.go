package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/nagashima/sso-idp/internal/config"
	"github.com/nagashima/sso-idp/internal/domain/interfaces"
	"github.com/nagashima/sso-idp/internal/events/kafka"
	httphandler "github.com/nagashima/sso-idp/internal/handler/http"
	"github.com/nagashima/sso-idp/internal/infrastructure/cache"
	"github.com/nagashima/sso-idp/internal/infrastructure/database"
	"github.com/nagashima/sso-idp/internal/infrastructure/email"
	"github.com/nagashima/sso-idp/internal/infrastructure/geo"
	"github.com/nagashima/sso-idp/internal/infrastructure/hydra"
	"github.com/nagashima/sso-idp/internal/infrastructure/security"
	"github.com/nagashima/sso-idp/internal/service"
	"github.com/nagashima/sso-idp/internal/utils/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	log, err := logger.NewLogger(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		return fmt.Errorf("building logger: %w", err)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Database.AutoMigrate {
		if err := database.RunMigrations(cfg.Database.DSN, cfg.Database.MigrationsPath); err != nil {
			return fmt.Errorf("running migrations: %w", err)
		}
		log.Info("migrations applied")
	}

	pool, err := database.NewDBPool(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer pool.Close()

	redisClient, err := cache.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		return fmt.Errorf("connecting to redis: %w", err)
	}
	defer redisClient.Close()

	var events interfaces.EventPublisher = kafka.NoopPublisher{}
	if cfg.Kafka.Enabled {
		producer, err := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic, log)
		if err != nil {
			return fmt.Errorf("connecting to kafka: %w", err)
		}
		events = producer
	}
	defer events.Close()

	passwords, err := security.NewArgon2idPasswordService(cfg.Security.PasswordHash)
	if err != nil {
		return fmt.Errorf("building password service: %w", err)
	}
	tokens, err := security.NewJWTTokenService(cfg.JWT)
	if err != nil {
		return fmt.Errorf("building token service: %w", err)
	}

	userRepo := database.NewUserPostgresRepository(pool)
	ticketRepo := database.NewSignupTicketPostgresRepository(pool)
	partyRepo := database.NewRelyingPartyPostgresRepository(pool)
	authLogRepo := database.NewAuthLogPostgresRepository(pool)
	txManager := database.NewTxManager(pool)
	draftCache := cache.NewRedisSignupDraftCache(redisClient, cfg.Signup.DraftTTL)

	hydraClient := hydra.NewAdminClient(cfg.Hydra)
	mailer := email.NewSMTPMailer(cfg.Email, log)
	geocoder := geo.NewHTTPGeocoder(cfg.Geocoder)

	authLogSvc := service.NewAuthLogService(authLogRepo, log)
	userSvc := service.NewUserService(userRepo, passwords, geocoder, log)
	ticketSvc := service.NewSignupTicketService(ticketRepo, cfg.Signup.TicketTTL)
	signInSvc := service.NewSignInService(userRepo, passwords, tokens, mailer, hydraClient, authLogSvc, events, *cfg, log)
	signupSvc := service.NewSignupService(userRepo, ticketSvc, draftCache, userSvc, passwords, tokens, mailer, hydraClient, txManager, authLogSvc, events, *cfg, log)
	consentSvc := service.NewConsentService(userRepo, partyRepo, hydraClient, authLogSvc, events, cfg.Hydra, log)
	logoutSvc := service.NewLogoutService(hydraClient, authLogSvc)

	router := httphandler.NewRouter(*cfg, log, httphandler.Handlers{
		Auth:    httphandler.NewAuthHandler(signInSvc, tokens, log),
		Signup:  httphandler.NewSignupHandler(signupSvc, tokens, log),
		Consent: httphandler.NewConsentHandler(consentSvc, log),
		Logout:  httphandler.NewLogoutHandler(logoutSvc, log),
		Health:  httphandler.NewHealthHandler(pool, redisClient),
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server starting", zap.Int("port", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	return nil
}
