package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/nagashima/sso-idp/internal/domain/models"
)

// RelyingPartyRepository maintains the client directory and the links
// between users and the clients they have granted consent to.
type RelyingPartyRepository interface {
	// Upsert inserts the client or refreshes its name, returning the row
	// either way.
	Upsert(ctx context.Context, clientID, name string) (*models.RelyingParty, error)
	FindByClientID(ctx context.Context, clientID string) (*models.RelyingParty, error)
	// LinkUser records that the user granted consent to the client. The
	// link is idempotent per (user, relying party).
	LinkUser(ctx context.Context, userID uuid.UUID, relyingPartyID int64) error
	ListForUser(ctx context.Context, userID uuid.UUID) ([]*models.RelyingParty, error)
}
