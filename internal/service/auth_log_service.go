package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/mssola/user_agent"
	"go.uber.org/zap"

	"github.com/nagashima/sso-idp/internal/domain/models"
	"github.com/nagashima/sso-idp/internal/domain/repository"
)

// AuthLogService records authentication activity. Writing the trail is
// best-effort: a failed insert is logged, never surfaced to the flow.
type AuthLogService struct {
	repo   repository.AuthLogRepository
	logger *zap.Logger
}

func NewAuthLogService(repo repository.AuthLogRepository, logger *zap.Logger) *AuthLogService {
	return &AuthLogService{repo: repo, logger: logger}
}

// Record parses the user agent and appends an audit entry.
func (s *AuthLogService) Record(ctx context.Context, userID *uuid.UUID, email, event, ip, rawUA string) {
	ua := user_agent.New(rawUA)
	browser, _ := ua.Browser()

	entry := &models.AuthenticationLog{
		UserID:    userID,
		Email:     email,
		Event:     event,
		IPAddress: ip,
		UserAgent: rawUA,
		Browser:   browser,
		OS:        ua.OS(),
		Mobile:    ua.Mobile(),
		CreatedAt: time.Now(),
	}

	if err := s.repo.Create(ctx, entry); err != nil {
		s.logger.Error("failed to write authentication log",
			zap.String("event", event),
			zap.Error(err))
	}
}

// History returns the most recent entries for a user.
func (s *AuthLogService) History(ctx context.Context, userID uuid.UUID, limit int) ([]*models.AuthenticationLog, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.repo.ListForUser(ctx, userID, limit)
}
