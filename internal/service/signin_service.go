package service

import (
	"context"
	"crypto/subtle"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nagashima/sso-idp/internal/config"
	domainErrors "github.com/nagashima/sso-idp/internal/domain/errors"
	"github.com/nagashima/sso-idp/internal/domain/interfaces"
	"github.com/nagashima/sso-idp/internal/domain/models"
	"github.com/nagashima/sso-idp/internal/domain/repository"
	"github.com/nagashima/sso-idp/internal/events/kafka"
	"github.com/nagashima/sso-idp/internal/infrastructure/hydra"
	"github.com/nagashima/sso-idp/internal/utils/metrics"
	"github.com/nagashima/sso-idp/internal/utils/random"
)

// SignInService orchestrates the two-step sign-in: credentials first, then
// the mailed code. Only the second step establishes a session.
type SignInService struct {
	users     repository.UserRepository
	passwords interfaces.PasswordService
	tokens    interfaces.TokenService
	mailer    interfaces.Mailer
	hydra     HydraAdmin
	authLog   *AuthLogService
	events    interfaces.EventPublisher
	validate  *validator.Validate
	cfg       config.Config
	logger    *zap.Logger

	now          func() time.Time
	generateCode func() (string, error)
}

func NewSignInService(
	users repository.UserRepository,
	passwords interfaces.PasswordService,
	tokens interfaces.TokenService,
	mailer interfaces.Mailer,
	hydraAdmin HydraAdmin,
	authLog *AuthLogService,
	events interfaces.EventPublisher,
	cfg config.Config,
	logger *zap.Logger,
) *SignInService {
	return &SignInService{
		users:        users,
		passwords:    passwords,
		tokens:       tokens,
		mailer:       mailer,
		hydra:        hydraAdmin,
		authLog:      authLog,
		events:       events,
		validate:     validator.New(),
		cfg:          cfg,
		logger:       logger,
		now:          time.Now,
		generateCode: random.NumericCode,
	}
}

// HandleLoginChallenge inspects a pending login request. When the
// authorization server already knows the subject it is accepted without a
// prompt; otherwise an empty redirect tells the caller to show the sign-in
// form.
func (s *SignInService) HandleLoginChallenge(ctx context.Context, challenge string) (string, error) {
	req, err := s.hydra.GetLoginRequest(ctx, challenge)
	if err != nil {
		return "", fmt.Errorf("fetching login request: %w", err)
	}

	if !req.Skip {
		return "", nil
	}

	redirectTo, err := s.hydra.AcceptLoginRequest(ctx, challenge, hydra.AcceptLoginParams{
		Subject:     req.Subject,
		Remember:    s.cfg.Hydra.RememberLogin,
		RememberFor: s.cfg.Hydra.RememberLoginFor,
	})
	if err != nil {
		return "", fmt.Errorf("accepting login request: %w", err)
	}
	return redirectTo, nil
}

// Authenticate checks the credentials, issues a fresh second-factor code by
// email, and returns a temp token scoped to the verification step. The code
// write is a full overwrite, so at most one code is ever live per user.
func (s *SignInService) Authenticate(ctx context.Context, input models.AuthenticateInput) (*models.AuthenticateResult, error) {
	if err := s.validate.Struct(&input); err != nil {
		return nil, asValidationError(err)
	}

	user, err := s.users.FindByEmail(ctx, input.Email)
	if err != nil {
		if domainErrors.IsNotFound(err) {
			s.recordFailure(ctx, nil, input.Email, input.IPAddress, input.UserAgent)
			return nil, domainErrors.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("looking up user: %w", err)
	}

	match, err := s.passwords.CheckPasswordHash(input.Password, user.EncryptedPassword)
	if err != nil {
		return nil, fmt.Errorf("checking password: %w", err)
	}
	if !match {
		s.recordFailure(ctx, &user.ID, input.Email, input.IPAddress, input.UserAgent)
		return nil, domainErrors.ErrInvalidCredentials
	}

	if !user.Activated() {
		return nil, domainErrors.ErrUserNotActivated
	}

	code, err := s.generateCode()
	if err != nil {
		return nil, fmt.Errorf("generating auth code: %w", err)
	}

	expiresAt := s.now().Add(s.cfg.Security.AuthCodeTTL)
	if err := s.users.SetMailAuthCode(ctx, user.ID, code, expiresAt); err != nil {
		return nil, fmt.Errorf("storing auth code: %w", err)
	}

	if err := s.mailer.SendAuthCode(ctx, user.Email, code); err != nil {
		metrics.AuthCodeEmailsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("sending auth code: %w", err)
	}
	metrics.AuthCodeEmailsTotal.WithLabelValues("sent").Inc()

	tempToken, tokenExpiresAt, err := s.tokens.IssueTempToken(user.ID.String())
	if err != nil {
		return nil, fmt.Errorf("issuing temp token: %w", err)
	}

	s.authLog.Record(ctx, &user.ID, user.Email, models.AuthEventSignInAttempt, input.IPAddress, input.UserAgent)
	metrics.SignInAttemptsTotal.WithLabelValues("success").Inc()

	return &models.AuthenticateResult{
		TempToken: tempToken,
		ExpiresAt: tokenExpiresAt,
	}, nil
}

// Verify checks the mailed code under the temp token. On success the code is
// cleared unconditionally, so a code never verifies twice. The result is a
// redirect back to the authorization server when a login challenge is
// present, otherwise a first-party session token.
func (s *SignInService) Verify(ctx context.Context, input models.VerifyInput) (*models.VerifyResult, error) {
	if err := s.validate.Struct(&input); err != nil {
		return nil, asValidationError(err)
	}

	claims, err := s.tokens.Verify(input.TempToken, interfaces.TokenPurposeTempAuth)
	if err != nil {
		return nil, err
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("parsing token subject: %w", domainErrors.ErrTokenInvalid)
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("looking up user: %w", err)
	}

	// A missing code means a prior success already consumed it; that is a
	// mismatch, not an expiry. Expiry applies only to a code still on record.
	now := s.now()
	if user.HasMailAuthCode() && user.MailAuthCodeExpired(now) {
		metrics.CodeVerificationsTotal.WithLabelValues("expired").Inc()
		return nil, domainErrors.ErrAuthCodeExpired
	}
	if !user.HasMailAuthCode() ||
		subtle.ConstantTimeCompare([]byte(*user.MailAuthenticationCode), []byte(input.Code)) != 1 {
		s.authLog.Record(ctx, &user.ID, user.Email, models.AuthEventCodeRejected, input.IPAddress, input.UserAgent)
		metrics.CodeVerificationsTotal.WithLabelValues("mismatch").Inc()
		return nil, domainErrors.ErrAuthCodeMismatch
	}

	if err := s.users.ClearMailAuthCode(ctx, user.ID); err != nil {
		return nil, fmt.Errorf("clearing auth code: %w", err)
	}
	if err := s.users.TouchSignIn(ctx, user.ID, now); err != nil {
		return nil, fmt.Errorf("updating sign-in timestamps: %w", err)
	}

	s.authLog.Record(ctx, &user.ID, user.Email, models.AuthEventCodeVerified, input.IPAddress, input.UserAgent)
	metrics.CodeVerificationsTotal.WithLabelValues("success").Inc()

	if err := s.events.Publish(ctx, kafka.EventSignInSuccess, map[string]string{
		"user_id": user.ID.String(),
	}); err != nil {
		s.logger.Warn("failed to publish sign-in event", zap.Error(err))
	}

	if input.LoginChallenge != "" {
		redirectTo, err := s.hydra.AcceptLoginRequest(ctx, input.LoginChallenge, hydra.AcceptLoginParams{
			Subject:     user.ID.String(),
			Remember:    s.cfg.Hydra.RememberLogin,
			RememberFor: s.cfg.Hydra.RememberLoginFor,
		})
		if err != nil {
			return nil, fmt.Errorf("accepting login request: %w", err)
		}
		return &models.VerifyResult{RedirectTo: redirectTo}, nil
	}

	sessionToken, expiresAt, err := s.tokens.IssueSessionToken(user.ID.String())
	if err != nil {
		return nil, fmt.Errorf("issuing session token: %w", err)
	}

	return &models.VerifyResult{
		SessionToken: sessionToken,
		ExpiresAt:    &expiresAt,
	}, nil
}

func (s *SignInService) recordFailure(ctx context.Context, userID *uuid.UUID, email, ip, ua string) {
	s.authLog.Record(ctx, userID, email, models.AuthEventSignInFailure, ip, ua)
	metrics.SignInAttemptsTotal.WithLabelValues("failure").Inc()

	if err := s.events.Publish(ctx, kafka.EventSignInFailure, map[string]string{
		"email": email,
	}); err != nil {
		s.logger.Warn("failed to publish sign-in failure event", zap.Error(err))
	}
}
