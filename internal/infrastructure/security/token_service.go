package security

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/nagashima/sso-idp/internal/config"
	domainErrors "github.com/nagashima/sso-idp/internal/domain/errors"
	"github.com/nagashima/sso-idp/internal/domain/interfaces"
)

type tokenClaims struct {
	Purpose string `json:"purpose"`
	jwt.RegisteredClaims
}

const sessionCookieName = "_sso_idp_session"

// jwtTokenService mints HS256 tokens tagged with a purpose claim. A temp
// token can never stand in for a session token or vice versa.
type jwtTokenService struct {
	secret       []byte
	issuer       string
	tempTTL      time.Duration
	sessionTTL   time.Duration
	cookieDomain string
	cookieSecure bool
}

var _ interfaces.TokenService = (*jwtTokenService)(nil)

func NewJWTTokenService(cfg config.JWTConfig) (interfaces.TokenService, error) {
	if cfg.Secret == "" {
		return nil, errors.New("jwt secret must be configured")
	}
	return &jwtTokenService{
		secret:       []byte(cfg.Secret),
		issuer:       cfg.Issuer,
		tempTTL:      cfg.TempTokenTTL,
		sessionTTL:   cfg.SessionTokenTTL,
		cookieDomain: cfg.CookieDomain,
		cookieSecure: cfg.CookieSecure,
	}, nil
}

func (s *jwtTokenService) IssueTempToken(subject string) (string, time.Time, error) {
	return s.issue(subject, interfaces.TokenPurposeTempAuth, s.tempTTL)
}

func (s *jwtTokenService) IssueSessionToken(subject string) (string, time.Time, error) {
	return s.issue(subject, interfaces.TokenPurposeSession, s.sessionTTL)
}

// SessionCookie pairs the session token with its transport parameters. The
// cookie is always HttpOnly and SameSite=Lax; Secure follows the request
// transport but can be forced on by config.
func (s *jwtTokenService) SessionCookie(token string, secure bool) interfaces.CookieOptions {
	return interfaces.CookieOptions{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		Domain:   s.cookieDomain,
		MaxAge:   int(s.sessionTTL.Seconds()),
		Secure:   secure || s.cookieSecure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}

func (s *jwtTokenService) issue(subject, purpose string, ttl time.Duration) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(ttl)

	claims := tokenClaims{
		Purpose: purpose,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return token, expiresAt, nil
}

func (s *jwtTokenService) Verify(tokenString, purpose string) (*interfaces.TokenClaims, error) {
	var claims tokenClaims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, domainErrors.ErrTokenExpired
		}
		return nil, fmt.Errorf("parsing token: %w", domainErrors.ErrTokenInvalid)
	}
	if !token.Valid {
		return nil, domainErrors.ErrTokenInvalid
	}

	// Purpose is checked on every verification, never just at issuance.
	if claims.Purpose != purpose {
		return nil, domainErrors.ErrTokenPurposeMismatch
	}

	return &interfaces.TokenClaims{
		Subject:   claims.Subject,
		Purpose:   claims.Purpose,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}
