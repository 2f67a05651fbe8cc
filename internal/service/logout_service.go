package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/nagashima/sso-idp/internal/domain/models"
)

// LogoutService answers logout challenges from the authorization server.
type LogoutService struct {
	hydra   HydraAdmin
	authLog *AuthLogService
}

func NewLogoutService(hydraAdmin HydraAdmin, authLog *AuthLogService) *LogoutService {
	return &LogoutService{hydra: hydraAdmin, authLog: authLog}
}

// Accept confirms the logout and returns the redirect back to the
// authorization server.
func (s *LogoutService) Accept(ctx context.Context, challenge, ip, userAgent string) (string, error) {
	req, err := s.hydra.GetLogoutRequest(ctx, challenge)
	if err != nil {
		return "", fmt.Errorf("fetching logout request: %w", err)
	}

	redirectTo, err := s.hydra.AcceptLogoutRequest(ctx, challenge)
	if err != nil {
		return "", fmt.Errorf("accepting logout request: %w", err)
	}

	if userID, err := uuid.Parse(req.Subject); err == nil {
		s.authLog.Record(ctx, &userID, "", models.AuthEventLogout, ip, userAgent)
	}

	return redirectTo, nil
}
