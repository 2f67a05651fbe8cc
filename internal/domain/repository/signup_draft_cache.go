package repository

import (
	"context"

	"github.com/nagashima/sso-idp/internal/domain/models"
)

// SignupDraft is everything staged under a ticket before completion.
type SignupDraft struct {
	EncryptedPassword string
	Profile           *models.ProfileForm
	LoginChallenge    string
}

// SignupDraftCache holds in-progress registration data keyed by ticket
// token. Each field has its own key so steps can be staged and restaged
// independently.
type SignupDraftCache interface {
	StorePassword(ctx context.Context, token, encryptedPassword string) error
	StoreProfile(ctx context.Context, token string, profile *models.ProfileForm) error
	StoreLoginChallenge(ctx context.Context, token, challenge string) error

	// ReadAll returns the assembled draft. A missing password or profile
	// yields ErrDraftIncomplete; a missing login challenge is fine.
	ReadAll(ctx context.Context, token string) (*SignupDraft, error)

	// DeleteAll removes every key staged under the token.
	DeleteAll(ctx context.Context, token string) error
}
