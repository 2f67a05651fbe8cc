package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nagashima/sso-idp/internal/domain/interfaces"
	"github.com/nagashima/sso-idp/internal/domain/models"
	"github.com/nagashima/sso-idp/internal/domain/repository"
)

// UserService creates identity records from completed signups.
type UserService struct {
	users     repository.UserRepository
	passwords interfaces.PasswordService
	geocoder  interfaces.Geocoder
	logger    *zap.Logger

	now func() time.Time
}

func NewUserService(
	users repository.UserRepository,
	passwords interfaces.PasswordService,
	geocoder interfaces.Geocoder,
	logger *zap.Logger,
) *UserService {
	return &UserService{
		users:     users,
		passwords: passwords,
		geocoder:  geocoder,
		logger:    logger,
		now:       time.Now,
	}
}

// CreateFromDraft materializes a user from the staged signup data. The
// account is activated immediately: the email was proven by the ticket
// confirmation. Geocoding is best-effort; a failure leaves the coordinates
// empty and never blocks the registration.
func (s *UserService) CreateFromDraft(ctx context.Context, email string, draft *repository.SignupDraft) (*models.User, error) {
	now := s.now()
	activatedAt := now

	user := &models.User{
		ID:                uuid.New(),
		Email:             email,
		EncryptedPassword: draft.EncryptedPassword,
		ActivatedAt:       &activatedAt,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	draft.Profile.Apply(user)

	if coords := s.geocodeHome(ctx, user); coords != nil {
		user.HomeLatitude = &coords.Latitude
		user.HomeLongitude = &coords.Longitude
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) geocodeHome(ctx context.Context, user *models.User) *interfaces.Coordinates {
	var parts []string
	if user.HomePostalCode != nil {
		parts = append(parts, *user.HomePostalCode)
	}
	if user.HomeAddressTown != nil {
		parts = append(parts, *user.HomeAddressTown)
	}
	if user.HomeAddressLater != nil {
		parts = append(parts, *user.HomeAddressLater)
	}
	if len(parts) == 0 {
		return nil
	}

	coords, err := s.geocoder.Geocode(ctx, strings.Join(parts, " "))
	if err != nil {
		s.logger.Warn("failed to geocode home address", zap.Error(err))
		return nil
	}
	return coords
}
