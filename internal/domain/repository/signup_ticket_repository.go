package repository

import (
	"context"
	"time"

	"github.com/nagashima/sso-idp/internal/domain/models"
)

// SignupTicketRepository stores registration tickets.
type SignupTicketRepository interface {
	Create(ctx context.Context, ticket *models.SignupTicket) error
	FindByToken(ctx context.Context, token string) (*models.SignupTicket, error)
	// Confirm stamps confirmed_at; it is a no-op when already stamped so
	// repeated clicks on the email link stay idempotent.
	Confirm(ctx context.Context, token string, at time.Time) error
	Delete(ctx context.Context, token string) error
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}
