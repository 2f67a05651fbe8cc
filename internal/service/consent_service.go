package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nagashima/sso-idp/internal/config"
	domainErrors "github.com/nagashima/sso-idp/internal/domain/errors"
	"github.com/nagashima/sso-idp/internal/domain/interfaces"
	"github.com/nagashima/sso-idp/internal/domain/models"
	"github.com/nagashima/sso-idp/internal/domain/repository"
	"github.com/nagashima/sso-idp/internal/events/kafka"
	"github.com/nagashima/sso-idp/internal/infrastructure/hydra"
	"github.com/nagashima/sso-idp/internal/utils/metrics"
)

// ConsentOutcome is the result of handling a consent challenge: either a
// redirect (the decision was automatic) or a prompt for the browser.
type ConsentOutcome struct {
	RedirectTo string
	Prompt     *models.ConsentPrompt
}

// ConsentService decides consent requests. Automatic approval rules run in
// order; the first match wins, and only when none match is the user asked.
type ConsentService struct {
	users   repository.UserRepository
	parties repository.RelyingPartyRepository
	hydra   HydraAdmin
	authLog *AuthLogService
	events  interfaces.EventPublisher
	cfg     config.HydraConfig
	logger  *zap.Logger
}

func NewConsentService(
	users repository.UserRepository,
	parties repository.RelyingPartyRepository,
	hydraAdmin HydraAdmin,
	authLog *AuthLogService,
	events interfaces.EventPublisher,
	cfg config.HydraConfig,
	logger *zap.Logger,
) *ConsentService {
	return &ConsentService{
		users:   users,
		parties: parties,
		hydra:   hydraAdmin,
		authLog: authLog,
		events:  events,
		cfg:     cfg,
		logger:  logger,
	}
}

// HandleChallenge fetches the consent request and applies the automatic
// approval rules:
//  1. the authorization server says skip (consent already remembered)
//  2. the client is marked first_party in its metadata
//  3. the client id is on the trusted list
//  4. every requested scope is a basic scope
//
// A match accepts immediately; otherwise the caller gets a prompt.
func (s *ConsentService) HandleChallenge(ctx context.Context, challenge, ip, userAgent string) (*ConsentOutcome, error) {
	req, err := s.hydra.GetConsentRequest(ctx, challenge)
	if err != nil {
		return nil, fmt.Errorf("fetching consent request: %w", err)
	}

	if s.autoApprove(req) {
		redirectTo, err := s.accept(ctx, req, req.RequestedScope, ip, userAgent)
		if err != nil {
			return nil, err
		}
		metrics.ConsentDecisionsTotal.WithLabelValues("auto_approved").Inc()
		return &ConsentOutcome{RedirectTo: redirectTo}, nil
	}

	metrics.ConsentDecisionsTotal.WithLabelValues("prompted").Inc()
	return &ConsentOutcome{Prompt: &models.ConsentPrompt{
		ClientID:        req.Client.ClientID,
		ClientName:      req.Client.ClientName,
		RequestedScopes: req.RequestedScope,
		Subject:         req.Subject,
	}}, nil
}

// Decide applies the browser's explicit answer. An empty grant list is a
// denial.
func (s *ConsentService) Decide(ctx context.Context, input models.ConsentDecisionInput) (string, error) {
	req, err := s.hydra.GetConsentRequest(ctx, input.ConsentChallenge)
	if err != nil {
		return "", fmt.Errorf("fetching consent request: %w", err)
	}

	if len(input.GrantScopes) == 0 {
		redirectTo, err := s.hydra.RejectConsentRequest(ctx, input.ConsentChallenge, hydra.RejectParams{
			Error:            "access_denied",
			ErrorDescription: "The resource owner denied the request",
		})
		if err != nil {
			return "", fmt.Errorf("rejecting consent request: %w", err)
		}
		metrics.ConsentDecisionsTotal.WithLabelValues("denied").Inc()
		return redirectTo, nil
	}

	// Never grant more than was requested.
	granted := intersect(input.GrantScopes, req.RequestedScope)

	redirectTo, err := s.accept(ctx, req, granted, input.IPAddress, input.UserAgent)
	if err != nil {
		return "", err
	}
	metrics.ConsentDecisionsTotal.WithLabelValues("granted").Inc()
	return redirectTo, nil
}

func (s *ConsentService) autoApprove(req *hydra.ConsentRequest) bool {
	if req.Skip {
		return true
	}
	if firstParty, ok := req.Client.Metadata["first_party"].(bool); ok && firstParty {
		return true
	}
	for _, id := range s.cfg.TrustedClientIDs {
		if id == req.Client.ClientID {
			return true
		}
	}
	return subset(req.RequestedScope, s.cfg.BasicScopes)
}

func (s *ConsentService) accept(ctx context.Context, req *hydra.ConsentRequest, grantScopes []string, ip, userAgent string) (string, error) {
	userID, err := uuid.Parse(req.Subject)
	if err != nil {
		return "", fmt.Errorf("parsing consent subject: %w", domainErrors.ErrInvalidRequest)
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("looking up consent subject: %w", err)
	}

	redirectTo, err := s.hydra.AcceptConsentRequest(ctx, req.Challenge, hydra.AcceptConsentParams{
		GrantScope:  grantScopes,
		Remember:    s.cfg.RememberConsent,
		RememberFor: s.cfg.RememberLoginFor,
		Session: &hydra.ConsentSession{
			IDToken: s.BuildClaims(user, grantScopes),
		},
	})
	if err != nil {
		return "", fmt.Errorf("accepting consent request: %w", err)
	}

	// Acceptance registers the relationship: the client joins the
	// directory and the user is linked to it, idempotently.
	s.linkRelyingParty(ctx, user.ID, req.Client)

	s.authLog.Record(ctx, &user.ID, user.Email, models.AuthEventConsentGranted, ip, userAgent)

	if err := s.events.Publish(ctx, kafka.EventConsentGranted, map[string]interface{}{
		"user_id":   user.ID.String(),
		"client_id": req.Client.ClientID,
		"scopes":    grantScopes,
	}); err != nil {
		s.logger.Warn("failed to publish consent event", zap.Error(err))
	}

	return redirectTo, nil
}

// BuildClaims assembles the id_token claims released for the granted
// scopes. The subject is always present; everything else is gated on its
// scope and on the data actually existing.
func (s *ConsentService) BuildClaims(user *models.User, grantScopes []string) map[string]interface{} {
	claims := map[string]interface{}{
		"sub": user.ID.String(),
	}

	for _, scope := range grantScopes {
		switch scope {
		case "profile":
			claims["name"] = user.FullName()
			if user.BirthDate != nil {
				claims["birthdate"] = user.BirthDate.Format("2006-01-02")
			}
		case "email":
			claims["email"] = user.Email
			claims["email_verified"] = user.Activated()
		case "address":
			if addr := formatAddress(user); addr != "" {
				claims["address"] = map[string]interface{}{"formatted": addr}
			}
		case "phone":
			if user.PhoneNumber != nil {
				claims["phone_number"] = *user.PhoneNumber
			}
		}
	}
	return claims
}

// The formatted address is released only when a home locality is on record.
func formatAddress(user *models.User) string {
	if user.HomeAddressTown == nil {
		return ""
	}
	var parts []string
	if user.HomePostalCode != nil {
		parts = append(parts, *user.HomePostalCode)
	}
	parts = append(parts, *user.HomeAddressTown)
	if user.HomeAddressLater != nil {
		parts = append(parts, *user.HomeAddressLater)
	}
	return strings.Join(parts, " ")
}

func (s *ConsentService) linkRelyingParty(ctx context.Context, userID uuid.UUID, client hydra.Client) {
	name := client.ClientName
	if name == "" {
		name = client.ClientID
	}

	rp, err := s.parties.Upsert(ctx, client.ClientID, name)
	if err != nil {
		s.logger.Warn("failed to upsert relying party", zap.Error(err))
		return
	}
	if err := s.parties.LinkUser(ctx, userID, rp.ID); err != nil {
		s.logger.Warn("failed to link user to relying party", zap.Error(err))
	}
}

// RelyingPartiesForUser lists the clients the user has granted consent to.
func (s *ConsentService) RelyingPartiesForUser(ctx context.Context, userID uuid.UUID) ([]*models.RelyingParty, error) {
	return s.parties.ListForUser(ctx, userID)
}

func subset(requested, allowed []string) bool {
	if len(requested) == 0 {
		return false
	}
	allowedSet := make(map[string]struct{}, len(allowed))
	for _, a := range allowed {
		allowedSet[a] = struct{}{}
	}
	for _, r := range requested {
		if _, ok := allowedSet[r]; !ok {
			return false
		}
	}
	return true
}

func intersect(granted, requested []string) []string {
	requestedSet := make(map[string]struct{}, len(requested))
	for _, r := range requested {
		requestedSet[r] = struct{}{}
	}
	var out []string
	for _, g := range granted {
		if _, ok := requestedSet[g]; ok {
			out = append(out, g)
		}
	}
	return out
}
