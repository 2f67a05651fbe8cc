package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/nagashima/sso-idp/internal/domain/models"
)

// AuthLogRepository is the append-only authentication audit trail.
type AuthLogRepository interface {
	Create(ctx context.Context, entry *models.AuthenticationLog) error
	ListForUser(ctx context.Context, userID uuid.UUID, limit int) ([]*models.AuthenticationLog, error)
}
