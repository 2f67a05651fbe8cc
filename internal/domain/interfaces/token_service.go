package interfaces

import (
	"net/http"
	"time"
)

// Token purposes. A token minted for one purpose is never accepted for
// another.
const (
	TokenPurposeTempAuth = "temp_auth"
	TokenPurposeSession  = "session"
)

// TokenClaims is the verified content of a token.
type TokenClaims struct {
	Subject   string
	Purpose   string
	ExpiresAt time.Time
}

// CookieOptions are the transport parameters for the session cookie.
type CookieOptions struct {
	Name     string
	Value    string
	Path     string
	Domain   string
	MaxAge   int
	Secure   bool
	HttpOnly bool
	SameSite http.SameSite
}

// TokenService mints and verifies the signed tokens used between the two
// sign-in steps and for the first-party session.
type TokenService interface {
	// IssueTempToken mints a short-lived token authorizing only the
	// second-factor verification step.
	IssueTempToken(subject string) (string, time.Time, error)

	// IssueSessionToken mints the first-party session token.
	IssueSessionToken(subject string) (string, time.Time, error)

	// Verify parses the token and checks signature, expiry, and purpose.
	Verify(token, purpose string) (*TokenClaims, error)

	// SessionCookie derives the cookie parameters carrying a session
	// token. The secure flag reflects the request transport.
	SessionCookie(token string, secure bool) CookieOptions
}
