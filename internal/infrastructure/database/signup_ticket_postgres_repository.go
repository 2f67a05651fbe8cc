package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	domainErrors "github.com/nagashima/sso-idp/internal/domain/errors"
	"github.com/nagashima/sso-idp/internal/domain/models"
	"github.com/nagashima/sso-idp/internal/domain/repository"
)

// SignupTicketPostgresRepository is the pgx implementation of the ticket
// store.
type SignupTicketPostgresRepository struct {
	pool *pgxpool.Pool
}

var _ repository.SignupTicketRepository = (*SignupTicketPostgresRepository)(nil)

func NewSignupTicketPostgresRepository(pool *pgxpool.Pool) *SignupTicketPostgresRepository {
	return &SignupTicketPostgresRepository{pool: pool}
}

func (r *SignupTicketPostgresRepository) q(ctx context.Context) Querier {
	return QuerierFromContext(ctx, r.pool)
}

func (r *SignupTicketPostgresRepository) Create(ctx context.Context, ticket *models.SignupTicket) error {
	query := `
		INSERT INTO signup_tickets (email, token, expires_at, confirmed_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`

	err := r.q(ctx).QueryRow(ctx, query,
		ticket.Email, ticket.Token, ticket.ExpiresAt, ticket.ConfirmedAt,
		ticket.CreatedAt, ticket.UpdatedAt,
	).Scan(&ticket.ID)
	if err != nil {
		return fmt.Errorf("failed to create signup ticket: %w", err)
	}
	return nil
}

func (r *SignupTicketPostgresRepository) FindByToken(ctx context.Context, token string) (*models.SignupTicket, error) {
	query := `
		SELECT id, email, token, expires_at, confirmed_at, created_at, updated_at
		FROM signup_tickets
		WHERE token = $1`

	var t models.SignupTicket
	err := r.q(ctx).QueryRow(ctx, query, token).Scan(
		&t.ID, &t.Email, &t.Token, &t.ExpiresAt, &t.ConfirmedAt,
		&t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrTicketNotFound
		}
		return nil, fmt.Errorf("failed to find signup ticket: %w", err)
	}
	return &t, nil
}

func (r *SignupTicketPostgresRepository) Confirm(ctx context.Context, token string, at time.Time) error {
	// confirmed_at is written once; re-confirming keeps the first stamp.
	query := `
		UPDATE signup_tickets
		SET confirmed_at = COALESCE(confirmed_at, $2),
		    updated_at = NOW()
		WHERE token = $1`

	tag, err := r.q(ctx).Exec(ctx, query, token, at)
	if err != nil {
		return fmt.Errorf("failed to confirm signup ticket: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrTicketNotFound
	}
	return nil
}

func (r *SignupTicketPostgresRepository) Delete(ctx context.Context, token string) error {
	_, err := r.q(ctx).Exec(ctx, `DELETE FROM signup_tickets WHERE token = $1`, token)
	if err != nil {
		return fmt.Errorf("failed to delete signup ticket: %w", err)
	}
	return nil
}

func (r *SignupTicketPostgresRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	tag, err := r.q(ctx).Exec(ctx, `DELETE FROM signup_tickets WHERE expires_at < $1`, before)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired signup tickets: %w", err)
	}
	return tag.RowsAffected(), nil
}
