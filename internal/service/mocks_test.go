package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/nagashima/sso-idp/internal/domain/interfaces"
	"github.com/nagashima/sso-idp/internal/domain/models"
	"github.com/nagashima/sso-idp/internal/domain/repository"
	"github.com/nagashima/sso-idp/internal/infrastructure/hydra"
)

// --- Mocks ---

type MockUserRepository struct {
	mock.Mock
}

var _ repository.UserRepository = (*MockUserRepository)(nil)

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}
func (m *MockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}
func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}
func (m *MockUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}
func (m *MockUserRepository) SetMailAuthCode(ctx context.Context, id uuid.UUID, code string, expiresAt time.Time) error {
	args := m.Called(ctx, id, code, expiresAt)
	return args.Error(0)
}
func (m *MockUserRepository) ClearMailAuthCode(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
func (m *MockUserRepository) TouchSignIn(ctx context.Context, id uuid.UUID, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}

type MockSignupTicketRepository struct {
	mock.Mock
}

var _ repository.SignupTicketRepository = (*MockSignupTicketRepository)(nil)

func (m *MockSignupTicketRepository) Create(ctx context.Context, ticket *models.SignupTicket) error {
	args := m.Called(ctx, ticket)
	return args.Error(0)
}
func (m *MockSignupTicketRepository) FindByToken(ctx context.Context, token string) (*models.SignupTicket, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SignupTicket), args.Error(1)
}
func (m *MockSignupTicketRepository) Confirm(ctx context.Context, token string, at time.Time) error {
	args := m.Called(ctx, token, at)
	return args.Error(0)
}
func (m *MockSignupTicketRepository) Delete(ctx context.Context, token string) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}
func (m *MockSignupTicketRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	args := m.Called(ctx, before)
	return args.Get(0).(int64), args.Error(1)
}

type MockRelyingPartyRepository struct {
	mock.Mock
}

var _ repository.RelyingPartyRepository = (*MockRelyingPartyRepository)(nil)

func (m *MockRelyingPartyRepository) Upsert(ctx context.Context, clientID, name string) (*models.RelyingParty, error) {
	args := m.Called(ctx, clientID, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RelyingParty), args.Error(1)
}
func (m *MockRelyingPartyRepository) FindByClientID(ctx context.Context, clientID string) (*models.RelyingParty, error) {
	args := m.Called(ctx, clientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RelyingParty), args.Error(1)
}
func (m *MockRelyingPartyRepository) LinkUser(ctx context.Context, userID uuid.UUID, relyingPartyID int64) error {
	args := m.Called(ctx, userID, relyingPartyID)
	return args.Error(0)
}
func (m *MockRelyingPartyRepository) ListForUser(ctx context.Context, userID uuid.UUID) ([]*models.RelyingParty, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.RelyingParty), args.Error(1)
}

type MockAuthLogRepository struct {
	mock.Mock
}

var _ repository.AuthLogRepository = (*MockAuthLogRepository)(nil)

func (m *MockAuthLogRepository) Create(ctx context.Context, entry *models.AuthenticationLog) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}
func (m *MockAuthLogRepository) ListForUser(ctx context.Context, userID uuid.UUID, limit int) ([]*models.AuthenticationLog, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.AuthenticationLog), args.Error(1)
}

type MockPasswordService struct {
	mock.Mock
}

var _ interfaces.PasswordService = (*MockPasswordService)(nil)

func (m *MockPasswordService) HashPassword(password string) (string, error) {
	args := m.Called(password)
	return args.String(0), args.Error(1)
}
func (m *MockPasswordService) CheckPasswordHash(password, hash string) (bool, error) {
	args := m.Called(password, hash)
	return args.Bool(0), args.Error(1)
}

type MockTokenService struct {
	mock.Mock
}

var _ interfaces.TokenService = (*MockTokenService)(nil)

func (m *MockTokenService) IssueTempToken(subject string) (string, time.Time, error) {
	args := m.Called(subject)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}
func (m *MockTokenService) IssueSessionToken(subject string) (string, time.Time, error) {
	args := m.Called(subject)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}
func (m *MockTokenService) Verify(token, purpose string) (*interfaces.TokenClaims, error) {
	args := m.Called(token, purpose)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*interfaces.TokenClaims), args.Error(1)
}
func (m *MockTokenService) SessionCookie(token string, secure bool) interfaces.CookieOptions {
	args := m.Called(token, secure)
	return args.Get(0).(interfaces.CookieOptions)
}

type MockMailer struct {
	mock.Mock
}

var _ interfaces.Mailer = (*MockMailer)(nil)

func (m *MockMailer) SendAuthCode(ctx context.Context, to, code string) error {
	args := m.Called(ctx, to, code)
	return args.Error(0)
}
func (m *MockMailer) SendSignupConfirmation(ctx context.Context, to, confirmURL string) error {
	args := m.Called(ctx, to, confirmURL)
	return args.Error(0)
}

type MockGeocoder struct {
	mock.Mock
}

var _ interfaces.Geocoder = (*MockGeocoder)(nil)

func (m *MockGeocoder) Geocode(ctx context.Context, address string) (*interfaces.Coordinates, error) {
	args := m.Called(ctx, address)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*interfaces.Coordinates), args.Error(1)
}

type MockHydraAdmin struct {
	mock.Mock
}

var _ HydraAdmin = (*MockHydraAdmin)(nil)

func (m *MockHydraAdmin) GetLoginRequest(ctx context.Context, challenge string) (*hydra.LoginRequest, error) {
	args := m.Called(ctx, challenge)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*hydra.LoginRequest), args.Error(1)
}
func (m *MockHydraAdmin) AcceptLoginRequest(ctx context.Context, challenge string, params hydra.AcceptLoginParams) (string, error) {
	args := m.Called(ctx, challenge, params)
	return args.String(0), args.Error(1)
}
func (m *MockHydraAdmin) RejectLoginRequest(ctx context.Context, challenge string, params hydra.RejectParams) (string, error) {
	args := m.Called(ctx, challenge, params)
	return args.String(0), args.Error(1)
}
func (m *MockHydraAdmin) GetConsentRequest(ctx context.Context, challenge string) (*hydra.ConsentRequest, error) {
	args := m.Called(ctx, challenge)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*hydra.ConsentRequest), args.Error(1)
}
func (m *MockHydraAdmin) AcceptConsentRequest(ctx context.Context, challenge string, params hydra.AcceptConsentParams) (string, error) {
	args := m.Called(ctx, challenge, params)
	return args.String(0), args.Error(1)
}
func (m *MockHydraAdmin) RejectConsentRequest(ctx context.Context, challenge string, params hydra.RejectParams) (string, error) {
	args := m.Called(ctx, challenge, params)
	return args.String(0), args.Error(1)
}
func (m *MockHydraAdmin) GetLogoutRequest(ctx context.Context, challenge string) (*hydra.LogoutRequest, error) {
	args := m.Called(ctx, challenge)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*hydra.LogoutRequest), args.Error(1)
}
func (m *MockHydraAdmin) AcceptLogoutRequest(ctx context.Context, challenge string) (string, error) {
	args := m.Called(ctx, challenge)
	return args.String(0), args.Error(1)
}
func (m *MockHydraAdmin) RejectLogoutRequest(ctx context.Context, challenge string, params hydra.RejectParams) error {
	args := m.Called(ctx, challenge, params)
	return args.Error(0)
}

type MockEventPublisher struct {
	mock.Mock
}

var _ interfaces.EventPublisher = (*MockEventPublisher)(nil)

func (m *MockEventPublisher) Publish(ctx context.Context, eventType string, payload interface{}) error {
	args := m.Called(ctx, eventType, payload)
	return args.Error(0)
}
func (m *MockEventPublisher) Close() error {
	args := m.Called()
	return args.Error(0)
}

type MockSignupDraftCache struct {
	mock.Mock
}

var _ repository.SignupDraftCache = (*MockSignupDraftCache)(nil)

func (m *MockSignupDraftCache) StorePassword(ctx context.Context, token, encryptedPassword string) error {
	args := m.Called(ctx, token, encryptedPassword)
	return args.Error(0)
}
func (m *MockSignupDraftCache) StoreProfile(ctx context.Context, token string, profile *models.ProfileForm) error {
	args := m.Called(ctx, token, profile)
	return args.Error(0)
}
func (m *MockSignupDraftCache) StoreLoginChallenge(ctx context.Context, token, challenge string) error {
	args := m.Called(ctx, token, challenge)
	return args.Error(0)
}
func (m *MockSignupDraftCache) ReadAll(ctx context.Context, token string) (*repository.SignupDraft, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.SignupDraft), args.Error(1)
}
func (m *MockSignupDraftCache) DeleteAll(ctx context.Context, token string) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

// fakeTxManager runs the function directly; transactional behavior itself is
// exercised against a real database.
type fakeTxManager struct{}

var _ repository.TxManager = fakeTxManager{}

func (fakeTxManager) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
