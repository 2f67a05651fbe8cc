package models

import (
	"time"

	"github.com/google/uuid"
)

// RelyingParty is a directory entry for an OAuth2 client known to this
// provider, keyed by the client_id assigned by the authorization server.
type RelyingParty struct {
	ID        int64     `json:"id" db:"id"`
	ClientID  string    `json:"client_id" db:"client_id"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// UserRelyingParty links a user to a relying party the first time consent
// is granted for that client. The link is idempotent per (user, client).
type UserRelyingParty struct {
	ID             int64     `json:"id" db:"id"`
	UserID         uuid.UUID `json:"user_id" db:"user_id"`
	RelyingPartyID int64     `json:"relying_party_id" db:"relying_party_id"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}
