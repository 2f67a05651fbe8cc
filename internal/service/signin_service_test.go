package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nagashima/sso-idp/internal/config"
	domainErrors "github.com/nagashima/sso-idp/internal/domain/errors"
	"github.com/nagashima/sso-idp/internal/domain/interfaces"
	"github.com/nagashima/sso-idp/internal/domain/models"
	"github.com/nagashima/sso-idp/internal/infrastructure/hydra"
)

type signInFixture struct {
	users   *MockUserRepository
	pass    *MockPasswordService
	tokens  *MockTokenService
	mailer  *MockMailer
	hydra   *MockHydraAdmin
	authLog *MockAuthLogRepository
	events  *MockEventPublisher
	svc     *SignInService
	now     time.Time
}

func newSignInFixture(t *testing.T) *signInFixture {
	t.Helper()

	f := &signInFixture{
		users:   new(MockUserRepository),
		pass:    new(MockPasswordService),
		tokens:  new(MockTokenService),
		mailer:  new(MockMailer),
		hydra:   new(MockHydraAdmin),
		authLog: new(MockAuthLogRepository),
		events:  new(MockEventPublisher),
		now:     time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
	}

	cfg := config.Config{}
	cfg.Security.AuthCodeTTL = 10 * time.Minute
	cfg.Hydra.RememberLogin = true
	cfg.Hydra.RememberLoginFor = 3600

	logger := zap.NewNop()
	f.svc = NewSignInService(
		f.users, f.pass, f.tokens, f.mailer, f.hydra,
		NewAuthLogService(f.authLog, logger), f.events, cfg, logger,
	)
	f.svc.now = func() time.Time { return f.now }
	f.svc.generateCode = func() (string, error) { return "482913", nil }
	return f
}

func activatedUser() *models.User {
	activated := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return &models.User{
		ID:                uuid.New(),
		Email:             "taro@example.com",
		EncryptedPassword: "$argon2id$hash",
		ActivatedAt:       &activated,
	}
}

func TestAuthenticateIssuesCodeAndTempToken(t *testing.T) {
	f := newSignInFixture(t)
	user := activatedUser()
	tokenExpiry := f.now.Add(10 * time.Minute)

	f.users.On("FindByEmail", mock.Anything, user.Email).Return(user, nil)
	f.pass.On("CheckPasswordHash", "secret", user.EncryptedPassword).Return(true, nil)
	f.users.On("SetMailAuthCode", mock.Anything, user.ID, "482913", f.now.Add(10*time.Minute)).Return(nil)
	f.mailer.On("SendAuthCode", mock.Anything, user.Email, "482913").Return(nil)
	f.tokens.On("IssueTempToken", user.ID.String()).Return("temp-token", tokenExpiry, nil)
	f.authLog.On("Create", mock.Anything, mock.Anything).Return(nil)

	result, err := f.svc.Authenticate(context.Background(), models.AuthenticateInput{
		Email:    user.Email,
		Password: "secret",
	})

	require.NoError(t, err)
	assert.Equal(t, "temp-token", result.TempToken)
	assert.Equal(t, tokenExpiry, result.ExpiresAt)
	f.users.AssertExpectations(t)
	f.mailer.AssertExpectations(t)
}

func TestAuthenticateOverwritesPreviousCode(t *testing.T) {
	f := newSignInFixture(t)
	user := activatedUser()
	oldCode := "111111"
	oldExpiry := f.now.Add(5 * time.Minute)
	user.MailAuthenticationCode = &oldCode
	user.MailAuthenticationExpiresAt = &oldExpiry

	f.users.On("FindByEmail", mock.Anything, user.Email).Return(user, nil)
	f.pass.On("CheckPasswordHash", "secret", user.EncryptedPassword).Return(true, nil)
	// The previous code is replaced wholesale, never appended to.
	f.users.On("SetMailAuthCode", mock.Anything, user.ID, "482913", f.now.Add(10*time.Minute)).Return(nil)
	f.mailer.On("SendAuthCode", mock.Anything, user.Email, "482913").Return(nil)
	f.tokens.On("IssueTempToken", user.ID.String()).Return("temp-token", f.now.Add(10*time.Minute), nil)
	f.authLog.On("Create", mock.Anything, mock.Anything).Return(nil)

	_, err := f.svc.Authenticate(context.Background(), models.AuthenticateInput{
		Email:    user.Email,
		Password: "secret",
	})

	require.NoError(t, err)
	f.users.AssertNumberOfCalls(t, "SetMailAuthCode", 1)
}

func TestAuthenticateWrongPassword(t *testing.T) {
	f := newSignInFixture(t)
	user := activatedUser()

	f.users.On("FindByEmail", mock.Anything, user.Email).Return(user, nil)
	f.pass.On("CheckPasswordHash", "wrong", user.EncryptedPassword).Return(false, nil)
	f.authLog.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.events.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	_, err := f.svc.Authenticate(context.Background(), models.AuthenticateInput{
		Email:    user.Email,
		Password: "wrong",
	})

	assert.ErrorIs(t, err, domainErrors.ErrInvalidCredentials)
	f.users.AssertNotCalled(t, "SetMailAuthCode", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	f.mailer.AssertNotCalled(t, "SendAuthCode", mock.Anything, mock.Anything, mock.Anything)
}

func TestAuthenticateUnknownEmail(t *testing.T) {
	f := newSignInFixture(t)

	f.users.On("FindByEmail", mock.Anything, "nobody@example.com").Return(nil, domainErrors.ErrUserNotFound)
	f.authLog.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.events.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	_, err := f.svc.Authenticate(context.Background(), models.AuthenticateInput{
		Email:    "nobody@example.com",
		Password: "secret",
	})

	// Unknown email and wrong password are indistinguishable to the caller.
	assert.ErrorIs(t, err, domainErrors.ErrInvalidCredentials)
}

func TestAuthenticateNotActivated(t *testing.T) {
	f := newSignInFixture(t)
	user := activatedUser()
	user.ActivatedAt = nil

	f.users.On("FindByEmail", mock.Anything, user.Email).Return(user, nil)
	f.pass.On("CheckPasswordHash", "secret", user.EncryptedPassword).Return(true, nil)

	_, err := f.svc.Authenticate(context.Background(), models.AuthenticateInput{
		Email:    user.Email,
		Password: "secret",
	})

	assert.ErrorIs(t, err, domainErrors.ErrUserNotActivated)
	f.users.AssertNotCalled(t, "SetMailAuthCode", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func verifyFixtureUser(f *signInFixture, code string, expiresAt time.Time) *models.User {
	user := activatedUser()
	user.MailAuthenticationCode = &code
	user.MailAuthenticationExpiresAt = &expiresAt
	return user
}

func TestVerifyEstablishesSession(t *testing.T) {
	f := newSignInFixture(t)
	user := verifyFixtureUser(f, "482913", f.now.Add(5*time.Minute))
	sessionExpiry := f.now.Add(24 * time.Hour)

	f.tokens.On("Verify", "temp-token", interfaces.TokenPurposeTempAuth).
		Return(&interfaces.TokenClaims{Subject: user.ID.String(), Purpose: interfaces.TokenPurposeTempAuth}, nil)
	f.users.On("FindByID", mock.Anything, user.ID).Return(user, nil)
	f.users.On("ClearMailAuthCode", mock.Anything, user.ID).Return(nil)
	f.users.On("TouchSignIn", mock.Anything, user.ID, f.now).Return(nil)
	f.tokens.On("IssueSessionToken", user.ID.String()).Return("session-token", sessionExpiry, nil)
	f.authLog.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.events.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	result, err := f.svc.Verify(context.Background(), models.VerifyInput{
		TempToken: "temp-token",
		Code:      "482913",
	})

	require.NoError(t, err)
	assert.Equal(t, "session-token", result.SessionToken)
	assert.Empty(t, result.RedirectTo)
	// The code is consumed; a second presentation finds nothing to match.
	f.users.AssertCalled(t, "ClearMailAuthCode", mock.Anything, user.ID)
}

func TestVerifyWithLoginChallengeRedirects(t *testing.T) {
	f := newSignInFixture(t)
	user := verifyFixtureUser(f, "482913", f.now.Add(5*time.Minute))

	f.tokens.On("Verify", "temp-token", interfaces.TokenPurposeTempAuth).
		Return(&interfaces.TokenClaims{Subject: user.ID.String(), Purpose: interfaces.TokenPurposeTempAuth}, nil)
	f.users.On("FindByID", mock.Anything, user.ID).Return(user, nil)
	f.users.On("ClearMailAuthCode", mock.Anything, user.ID).Return(nil)
	f.users.On("TouchSignIn", mock.Anything, user.ID, f.now).Return(nil)
	f.hydra.On("AcceptLoginRequest", mock.Anything, "chal-123", hydra.AcceptLoginParams{
		Subject:     user.ID.String(),
		Remember:    true,
		RememberFor: 3600,
	}).Return("https://auth.example.com/continue", nil)
	f.authLog.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.events.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	result, err := f.svc.Verify(context.Background(), models.VerifyInput{
		TempToken:      "temp-token",
		Code:           "482913",
		LoginChallenge: "chal-123",
	})

	require.NoError(t, err)
	assert.Equal(t, "https://auth.example.com/continue", result.RedirectTo)
	assert.Empty(t, result.SessionToken)
	f.tokens.AssertNotCalled(t, "IssueSessionToken", mock.Anything)
}

func TestVerifyCodeMismatchKeepsCode(t *testing.T) {
	f := newSignInFixture(t)
	user := verifyFixtureUser(f, "482913", f.now.Add(5*time.Minute))

	f.tokens.On("Verify", "temp-token", interfaces.TokenPurposeTempAuth).
		Return(&interfaces.TokenClaims{Subject: user.ID.String(), Purpose: interfaces.TokenPurposeTempAuth}, nil)
	f.users.On("FindByID", mock.Anything, user.ID).Return(user, nil)
	f.authLog.On("Create", mock.Anything, mock.Anything).Return(nil)

	_, err := f.svc.Verify(context.Background(), models.VerifyInput{
		TempToken: "temp-token",
		Code:      "000000",
	})

	assert.ErrorIs(t, err, domainErrors.ErrAuthCodeMismatch)
	// A typo must not burn the code; the user may retry.
	f.users.AssertNotCalled(t, "ClearMailAuthCode", mock.Anything, mock.Anything)
}

func TestVerifyCodeExpired(t *testing.T) {
	f := newSignInFixture(t)
	user := verifyFixtureUser(f, "482913", f.now.Add(-time.Minute))

	f.tokens.On("Verify", "temp-token", interfaces.TokenPurposeTempAuth).
		Return(&interfaces.TokenClaims{Subject: user.ID.String(), Purpose: interfaces.TokenPurposeTempAuth}, nil)
	f.users.On("FindByID", mock.Anything, user.ID).Return(user, nil)

	_, err := f.svc.Verify(context.Background(), models.VerifyInput{
		TempToken: "temp-token",
		Code:      "482913",
	})

	assert.ErrorIs(t, err, domainErrors.ErrAuthCodeExpired)
}

func TestVerifyConsumedCodeRejectedAsMismatch(t *testing.T) {
	f := newSignInFixture(t)
	user := activatedUser()

	f.tokens.On("Verify", "temp-token", interfaces.TokenPurposeTempAuth).
		Return(&interfaces.TokenClaims{Subject: user.ID.String(), Purpose: interfaces.TokenPurposeTempAuth}, nil)
	f.users.On("FindByID", mock.Anything, user.ID).Return(user, nil)
	f.authLog.On("Create", mock.Anything, mock.Anything).Return(nil)

	_, err := f.svc.Verify(context.Background(), models.VerifyInput{
		TempToken: "temp-token",
		Code:      "482913",
	})

	// A consumed code verifies exactly once; presenting it again is a
	// mismatch, not an expiry, since nothing is on record to expire.
	assert.ErrorIs(t, err, domainErrors.ErrAuthCodeMismatch)
	assert.NotErrorIs(t, err, domainErrors.ErrAuthCodeExpired)
	f.users.AssertNotCalled(t, "ClearMailAuthCode", mock.Anything, mock.Anything)
}

func TestAuthenticateRejectsMalformedInput(t *testing.T) {
	tests := []struct {
		name  string
		input models.AuthenticateInput
		field string
	}{
		{"empty credentials", models.AuthenticateInput{}, "email"},
		{"malformed email", models.AuthenticateInput{Email: "not-an-address", Password: "secret"}, "email"},
		{"missing password", models.AuthenticateInput{Email: "taro@example.com"}, "password"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newSignInFixture(t)

			_, err := f.svc.Authenticate(context.Background(), tt.input)

			// Malformed input is a validation failure, never an
			// authentication verdict.
			var ve *domainErrors.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Contains(t, ve.Fields, tt.field)
			assert.NotErrorIs(t, err, domainErrors.ErrInvalidCredentials)
			f.users.AssertNotCalled(t, "FindByEmail", mock.Anything, mock.Anything)
		})
	}
}

func TestVerifyRejectsMalformedCode(t *testing.T) {
	tests := []struct {
		name string
		code string
	}{
		{"empty", ""},
		{"too short", "1234"},
		{"non-numeric", "12ab56"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newSignInFixture(t)

			_, err := f.svc.Verify(context.Background(), models.VerifyInput{
				TempToken: "temp-token",
				Code:      tt.code,
			})

			var ve *domainErrors.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Contains(t, ve.Fields, "code")
			f.tokens.AssertNotCalled(t, "Verify", mock.Anything, mock.Anything)
		})
	}
}

func TestVerifyRejectsWrongPurposeToken(t *testing.T) {
	f := newSignInFixture(t)

	f.tokens.On("Verify", "session-token", interfaces.TokenPurposeTempAuth).
		Return(nil, domainErrors.ErrTokenPurposeMismatch)

	_, err := f.svc.Verify(context.Background(), models.VerifyInput{
		TempToken: "session-token",
		Code:      "482913",
	})

	assert.ErrorIs(t, err, domainErrors.ErrTokenPurposeMismatch)
	f.users.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
}

func TestHandleLoginChallengeSkip(t *testing.T) {
	f := newSignInFixture(t)

	f.hydra.On("GetLoginRequest", mock.Anything, "chal-9").Return(&hydra.LoginRequest{
		Challenge: "chal-9",
		Skip:      true,
		Subject:   "user-9",
	}, nil)
	f.hydra.On("AcceptLoginRequest", mock.Anything, "chal-9", hydra.AcceptLoginParams{
		Subject:     "user-9",
		Remember:    true,
		RememberFor: 3600,
	}).Return("https://auth.example.com/skip", nil)

	redirectTo, err := f.svc.HandleLoginChallenge(context.Background(), "chal-9")

	require.NoError(t, err)
	assert.Equal(t, "https://auth.example.com/skip", redirectTo)
}

func TestHandleLoginChallengeNoSkip(t *testing.T) {
	f := newSignInFixture(t)

	f.hydra.On("GetLoginRequest", mock.Anything, "chal-9").Return(&hydra.LoginRequest{
		Challenge: "chal-9",
	}, nil)

	redirectTo, err := f.svc.HandleLoginChallenge(context.Background(), "chal-9")

	require.NoError(t, err)
	assert.Empty(t, redirectTo)
	f.hydra.AssertNotCalled(t, "AcceptLoginRequest", mock.Anything, mock.Anything, mock.Anything)
}
