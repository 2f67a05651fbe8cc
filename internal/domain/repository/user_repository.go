package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/nagashima/sso-idp/internal/domain/models"
)

// UserRepository is the durable store of identity records.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)

	// SetMailAuthCode overwrites the stored second-factor code and its
	// expiry in one statement.
	SetMailAuthCode(ctx context.Context, id uuid.UUID, code string, expiresAt time.Time) error
	// ClearMailAuthCode nulls both code columns.
	ClearMailAuthCode(ctx context.Context, id uuid.UUID) error
	// TouchSignIn rotates current_sign_in_at into last_sign_in_at and
	// stamps the new sign-in time.
	TouchSignIn(ctx context.Context, id uuid.UUID, at time.Time) error
}
