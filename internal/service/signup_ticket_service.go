package service

import (
	"context"
	"fmt"
	"time"

	domainErrors "github.com/nagashima/sso-idp/internal/domain/errors"
	"github.com/nagashima/sso-idp/internal/domain/models"
	"github.com/nagashima/sso-idp/internal/domain/repository"
	"github.com/nagashima/sso-idp/internal/utils/random"
)

// ticketTokenBytes yields a 64 character hex token.
const ticketTokenBytes = 32

// SignupTicketService issues, confirms, and validates registration tickets.
type SignupTicketService struct {
	tickets repository.SignupTicketRepository
	ttl     time.Duration

	now           func() time.Time
	generateToken func() (string, error)
}

func NewSignupTicketService(tickets repository.SignupTicketRepository, ttl time.Duration) *SignupTicketService {
	return &SignupTicketService{
		tickets:       tickets,
		ttl:           ttl,
		now:           time.Now,
		generateToken: func() (string, error) { return random.HexToken(ticketTokenBytes) },
	}
}

// Issue creates a fresh unconfirmed ticket for the email.
func (s *SignupTicketService) Issue(ctx context.Context, email string) (*models.SignupTicket, error) {
	token, err := s.generateToken()
	if err != nil {
		return nil, fmt.Errorf("generating ticket token: %w", err)
	}

	now := s.now()
	ticket := &models.SignupTicket{
		Email:     email,
		Token:     token,
		ExpiresAt: now.Add(s.ttl),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, err
	}
	return ticket, nil
}

// Confirm marks the ticket confirmed. Confirming again is a no-op, so the
// email link tolerates repeated clicks. An expired ticket cannot be
// confirmed.
func (s *SignupTicketService) Confirm(ctx context.Context, token string) (*models.SignupTicket, error) {
	ticket, err := s.tickets.FindByToken(ctx, token)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if ticket.Expired(now) {
		return nil, domainErrors.ErrTicketExpired
	}
	if ticket.Confirmed() {
		return ticket, nil
	}

	if err := s.tickets.Confirm(ctx, token, now); err != nil {
		return nil, err
	}
	stamp := now
	ticket.ConfirmedAt = &stamp
	return ticket, nil
}

// Validate returns the ticket only when it admits staging: it must exist,
// be confirmed, and not be expired.
func (s *SignupTicketService) Validate(ctx context.Context, token string) (*models.SignupTicket, error) {
	ticket, err := s.tickets.FindByToken(ctx, token)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if ticket.Expired(now) {
		return nil, domainErrors.ErrTicketExpired
	}
	if !ticket.Confirmed() {
		return nil, domainErrors.ErrTicketNotConfirmed
	}
	return ticket, nil
}

// Delete removes the ticket.
func (s *SignupTicketService) Delete(ctx context.Context, token string) error {
	return s.tickets.Delete(ctx, token)
}

// PurgeExpired removes tickets whose lifetime has passed.
func (s *SignupTicketService) PurgeExpired(ctx context.Context) (int64, error) {
	return s.tickets.DeleteExpired(ctx, s.now())
}
