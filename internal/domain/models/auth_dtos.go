package models

import "time"

// AuthenticateInput is the first sign-in step: credentials plus an optional
// login challenge when the flow was initiated by the authorization server.
type AuthenticateInput struct {
	Email          string `json:"email" validate:"required,email"`
	Password       string `json:"password" validate:"required"`
	LoginChallenge string `json:"login_challenge"`
	IPAddress      string `json:"-"`
	UserAgent      string `json:"-"`
}

// AuthenticateResult carries the short-lived token that authorizes the
// second step.
type AuthenticateResult struct {
	TempToken string    `json:"temp_token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// VerifyInput is the second sign-in step: the mailed code presented under
// the temp token issued by the first step.
type VerifyInput struct {
	TempToken      string `json:"temp_token" validate:"required"`
	Code           string `json:"code" validate:"required,len=6,numeric"`
	LoginChallenge string `json:"login_challenge"`
	IPAddress      string `json:"-"`
	UserAgent      string `json:"-"`
}

// VerifyResult carries either a session token for the first-party flow or a
// redirect back to the authorization server for the challenge flow.
type VerifyResult struct {
	SessionToken string     `json:"session_token,omitempty"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty"`
	RedirectTo   string     `json:"redirect_to,omitempty"`
}

// SignupEmailInput begins a staged registration.
type SignupEmailInput struct {
	Email          string `json:"email" validate:"required,email,max=255"`
	LoginChallenge string `json:"login_challenge"`
}

// SignupPasswordInput stages a password under a confirmed ticket.
type SignupPasswordInput struct {
	Token                string `json:"token" validate:"required"`
	Password             string `json:"password" validate:"required,min=8,max=128"`
	PasswordConfirmation string `json:"password_confirmation" validate:"required,eqfield=Password"`
}

// SignupProfileInput stages a profile under a confirmed ticket. The form is
// validated separately, after normalization.
type SignupProfileInput struct {
	Token   string      `json:"token" validate:"required"`
	Profile ProfileForm `json:"profile" validate:"-"`
}

// SignupCompleteInput finishes a staged registration.
type SignupCompleteInput struct {
	Token string `json:"token" validate:"required"`
}

// SignupCompleteResult carries the freshly signed-in session and where the
// browser should go next.
type SignupCompleteResult struct {
	SessionToken string     `json:"session_token"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty"`
	RedirectTo   string     `json:"redirect_to"`
}

// ConsentDecisionInput is the browser's answer to a consent prompt, or the
// initial GET carrying only the challenge.
type ConsentDecisionInput struct {
	ConsentChallenge string   `json:"consent_challenge" validate:"required"`
	GrantScopes      []string `json:"grant_scopes"`
	IPAddress        string   `json:"-"`
	UserAgent        string   `json:"-"`
}

// ConsentPrompt describes what the browser must be asked when no automatic
// rule applied.
type ConsentPrompt struct {
	ClientID        string   `json:"client_id"`
	ClientName      string   `json:"client_name"`
	RequestedScopes []string `json:"requested_scopes"`
	Subject         string   `json:"subject"`
}
