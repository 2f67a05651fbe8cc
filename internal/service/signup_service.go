package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/nagashima/sso-idp/internal/config"
	domainErrors "github.com/nagashima/sso-idp/internal/domain/errors"
	"github.com/nagashima/sso-idp/internal/domain/interfaces"
	"github.com/nagashima/sso-idp/internal/domain/models"
	"github.com/nagashima/sso-idp/internal/domain/repository"
	"github.com/nagashima/sso-idp/internal/events/kafka"
	"github.com/nagashima/sso-idp/internal/infrastructure/hydra"
	"github.com/nagashima/sso-idp/internal/utils/metrics"
)

// SignupService orchestrates staged registration: an email begins it, the
// confirmation link unlocks staging, password and profile accumulate in the
// draft cache, and completion materializes the user in one transaction.
type SignupService struct {
	users     repository.UserRepository
	tickets   *SignupTicketService
	drafts    repository.SignupDraftCache
	userSvc   *UserService
	passwords interfaces.PasswordService
	tokens    interfaces.TokenService
	mailer    interfaces.Mailer
	hydra     HydraAdmin
	tx        repository.TxManager
	authLog   *AuthLogService
	events    interfaces.EventPublisher
	validate  *validator.Validate
	cfg       config.Config
	logger    *zap.Logger
}

func NewSignupService(
	users repository.UserRepository,
	tickets *SignupTicketService,
	drafts repository.SignupDraftCache,
	userSvc *UserService,
	passwords interfaces.PasswordService,
	tokens interfaces.TokenService,
	mailer interfaces.Mailer,
	hydraAdmin HydraAdmin,
	tx repository.TxManager,
	authLog *AuthLogService,
	events interfaces.EventPublisher,
	cfg config.Config,
	logger *zap.Logger,
) *SignupService {
	return &SignupService{
		users:     users,
		tickets:   tickets,
		drafts:    drafts,
		userSvc:   userSvc,
		passwords: passwords,
		tokens:    tokens,
		mailer:    mailer,
		hydra:     hydraAdmin,
		tx:        tx,
		authLog:   authLog,
		events:    events,
		validate:  validator.New(),
		cfg:       cfg,
		logger:    logger,
	}
}

// Begin issues a ticket for the email and mails the confirmation link. An
// already-registered email is rejected up front. A login challenge, when
// present, rides along in the draft cache so completion can resume the
// authorization flow.
func (s *SignupService) Begin(ctx context.Context, input models.SignupEmailInput) error {
	if err := s.validate.Struct(&input); err != nil {
		return asValidationError(err)
	}

	exists, err := s.users.ExistsByEmail(ctx, input.Email)
	if err != nil {
		return fmt.Errorf("checking email: %w", err)
	}
	if exists {
		return domainErrors.ErrEmailExists
	}

	ticket, err := s.tickets.Issue(ctx, input.Email)
	if err != nil {
		return err
	}

	if input.LoginChallenge != "" {
		if err := s.drafts.StoreLoginChallenge(ctx, ticket.Token, input.LoginChallenge); err != nil {
			return err
		}
	}

	confirmURL := s.cfg.Server.BaseURL + "/users/verify_email/" + ticket.Token
	if err := s.mailer.SendSignupConfirmation(ctx, input.Email, confirmURL); err != nil {
		return fmt.Errorf("sending confirmation email: %w", err)
	}
	return nil
}

// ConfirmEmail stamps the ticket confirmed and returns where the browser
// continues. Repeated clicks on the link land on the same page.
func (s *SignupService) ConfirmEmail(ctx context.Context, token string) (string, error) {
	if _, err := s.tickets.Confirm(ctx, token); err != nil {
		return "", err
	}
	return s.cfg.Server.FrontendURL + "/sign_up/password?token=" + token, nil
}

// StagePassword validates the password, hashes it, and stores it in the
// draft. Nothing is written when validation fails. Restaging overwrites the
// previous value.
func (s *SignupService) StagePassword(ctx context.Context, input models.SignupPasswordInput) error {
	if err := s.validate.Struct(&input); err != nil {
		return asValidationError(err)
	}
	if strings.TrimSpace(input.Password) == "" {
		fe := domainErrors.FieldErrors{}
		fe.Add("password", "must not be only whitespace")
		return fe.AsError()
	}

	if _, err := s.tickets.Validate(ctx, input.Token); err != nil {
		return err
	}

	hash, err := s.passwords.HashPassword(input.Password)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}
	return s.drafts.StorePassword(ctx, input.Token, hash)
}

// StageProfile validates and stores the profile in the draft.
func (s *SignupService) StageProfile(ctx context.Context, input models.SignupProfileInput) error {
	if err := s.validate.Struct(&input); err != nil {
		return asValidationError(err)
	}

	if _, err := s.tickets.Validate(ctx, input.Token); err != nil {
		return err
	}

	profile := input.Profile
	profile.Normalize()

	if err := s.validate.Struct(&profile); err != nil {
		return asValidationError(err)
	}
	if err := profile.ValidateConditional(); err != nil {
		return err
	}

	return s.drafts.StoreProfile(ctx, input.Token, &profile)
}

// Complete materializes the user from the draft. The user insert and the
// ticket deletion commit together; only after the commit are the cache keys
// dropped. When the draft carries a login challenge the browser is sent back
// to the authorization server; if that delegation fails the account still
// exists, so the fallback is the ordinary sign-in page.
func (s *SignupService) Complete(ctx context.Context, input models.SignupCompleteInput, ip, userAgent string) (*models.SignupCompleteResult, error) {
	if err := s.validate.Struct(&input); err != nil {
		return nil, asValidationError(err)
	}

	ticket, err := s.tickets.Validate(ctx, input.Token)
	if err != nil {
		return nil, err
	}

	draft, err := s.drafts.ReadAll(ctx, input.Token)
	if err != nil {
		return nil, err
	}

	var user *models.User
	err = s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		created, err := s.userSvc.CreateFromDraft(txCtx, ticket.Email, draft)
		if err != nil {
			return err
		}
		user = created
		return s.tickets.Delete(txCtx, input.Token)
	})
	if err != nil {
		metrics.SignupsTotal.WithLabelValues("failure").Inc()
		return nil, err
	}

	if err := s.drafts.DeleteAll(ctx, input.Token); err != nil {
		s.logger.Warn("failed to delete signup draft", zap.Error(err))
	}

	s.authLog.Record(ctx, &user.ID, user.Email, models.AuthEventSignedUp, ip, userAgent)
	metrics.SignupsTotal.WithLabelValues("success").Inc()

	if err := s.events.Publish(ctx, kafka.EventUserRegistered, map[string]string{
		"user_id": user.ID.String(),
		"email":   user.Email,
	}); err != nil {
		s.logger.Warn("failed to publish registration event", zap.Error(err))
	}

	// The confirmed email and fresh password double as the first sign-in.
	sessionToken, sessionExpiresAt, err := s.tokens.IssueSessionToken(user.ID.String())
	if err != nil {
		return nil, fmt.Errorf("issuing session token: %w", err)
	}

	result := &models.SignupCompleteResult{
		SessionToken: sessionToken,
		ExpiresAt:    &sessionExpiresAt,
		RedirectTo:   s.cfg.Server.FrontendURL + "/sign_in",
	}

	if draft.LoginChallenge != "" {
		redirectTo, err := s.hydra.AcceptLoginRequest(ctx, draft.LoginChallenge, hydra.AcceptLoginParams{
			Subject:     user.ID.String(),
			Remember:    s.cfg.Hydra.RememberLogin,
			RememberFor: s.cfg.Hydra.RememberLoginFor,
		})
		if err != nil {
			s.logger.Warn("failed to resume authorization flow after signup",
				zap.String("user_id", user.ID.String()),
				zap.Error(err))
			return result, nil
		}
		result.RedirectTo = redirectTo
	}

	return result, nil
}

// asValidationError converts validator failures into the field-keyed form.
func asValidationError(err error) error {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return fmt.Errorf("validating input: %w", domainErrors.ErrInvalidRequest)
	}

	fe := domainErrors.FieldErrors{}
	for _, v := range verrs {
		field := strings.ToLower(v.Field())
		fe.Add(field, "failed on "+v.Tag())
	}
	return fe.AsError()
}
