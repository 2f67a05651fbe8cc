package models

import "time"

// SignupTicket anchors a staged registration. It is issued when a signup
// begins, confirmed when the email link is followed, and consulted by every
// later staging step. A ticket admits staging only when it is confirmed and
// not yet expired.
type SignupTicket struct {
	ID          int64      `json:"id" db:"id"`
	Email       string     `json:"email" db:"email"`
	Token       string     `json:"token" db:"token"`
	ExpiresAt   time.Time  `json:"expires_at" db:"expires_at"`
	ConfirmedAt *time.Time `json:"confirmed_at,omitempty" db:"confirmed_at"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
}

// Confirmed reports whether the email link has been followed.
func (t *SignupTicket) Confirmed() bool { return t.ConfirmedAt != nil }

// Expired reports whether the ticket's lifetime has passed.
func (t *SignupTicket) Expired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}

// ValidForSignup reports whether the ticket may back staging or completion.
func (t *SignupTicket) ValidForSignup(now time.Time) bool {
	return t.Confirmed() && !t.Expired(now)
}
