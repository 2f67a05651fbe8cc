package models

import (
	"time"

	"github.com/google/uuid"
)

// Authentication log event kinds.
const (
	AuthEventSignInAttempt  = "sign_in_attempt"
	AuthEventSignInSuccess  = "sign_in_success"
	AuthEventSignInFailure  = "sign_in_failure"
	AuthEventCodeVerified   = "code_verified"
	AuthEventCodeRejected   = "code_rejected"
	AuthEventSignedUp       = "signed_up"
	AuthEventConsentGranted = "consent_granted"
	AuthEventLogout         = "logout"
)

// AuthenticationLog is an append-only audit record of authentication
// activity. UserID is nil for attempts against unknown emails.
type AuthenticationLog struct {
	ID        int64      `json:"id" db:"id"`
	UserID    *uuid.UUID `json:"user_id,omitempty" db:"user_id"`
	Email     string     `json:"email" db:"email"`
	Event     string     `json:"event" db:"event"`
	IPAddress string     `json:"ip_address" db:"ip_address"`
	UserAgent string     `json:"user_agent" db:"user_agent"`
	Browser   string     `json:"browser" db:"browser"`
	OS        string     `json:"os" db:"os"`
	Mobile    bool       `json:"mobile" db:"mobile"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
}
