package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	domainErrors "github.com/nagashima/sso-idp/internal/domain/errors"
	"github.com/nagashima/sso-idp/internal/domain/models"
	"github.com/nagashima/sso-idp/internal/domain/repository"
)

// RelyingPartyPostgresRepository is the pgx implementation of the client
// directory.
type RelyingPartyPostgresRepository struct {
	pool *pgxpool.Pool
}

var _ repository.RelyingPartyRepository = (*RelyingPartyPostgresRepository)(nil)

func NewRelyingPartyPostgresRepository(pool *pgxpool.Pool) *RelyingPartyPostgresRepository {
	return &RelyingPartyPostgresRepository{pool: pool}
}

func (r *RelyingPartyPostgresRepository) q(ctx context.Context) Querier {
	return QuerierFromContext(ctx, r.pool)
}

func (r *RelyingPartyPostgresRepository) Upsert(ctx context.Context, clientID, name string) (*models.RelyingParty, error) {
	query := `
		INSERT INTO relying_parties (client_id, name, created_at, updated_at)
		VALUES ($1, $2, NOW(), NOW())
		ON CONFLICT (client_id) DO UPDATE
		SET name = EXCLUDED.name, updated_at = NOW()
		RETURNING id, client_id, name, created_at, updated_at`

	var rp models.RelyingParty
	err := r.q(ctx).QueryRow(ctx, query, clientID, name).Scan(
		&rp.ID, &rp.ClientID, &rp.Name, &rp.CreatedAt, &rp.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert relying party: %w", err)
	}
	return &rp, nil
}

func (r *RelyingPartyPostgresRepository) FindByClientID(ctx context.Context, clientID string) (*models.RelyingParty, error) {
	query := `
		SELECT id, client_id, name, created_at, updated_at
		FROM relying_parties
		WHERE client_id = $1`

	var rp models.RelyingParty
	err := r.q(ctx).QueryRow(ctx, query, clientID).Scan(
		&rp.ID, &rp.ClientID, &rp.Name, &rp.CreatedAt, &rp.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find relying party: %w", err)
	}
	return &rp, nil
}

func (r *RelyingPartyPostgresRepository) LinkUser(ctx context.Context, userID uuid.UUID, relyingPartyID int64) error {
	query := `
		INSERT INTO user_relying_parties (user_id, relying_party_id, created_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (user_id, relying_party_id) DO NOTHING`

	_, err := r.q(ctx).Exec(ctx, query, userID, relyingPartyID)
	if err != nil {
		return fmt.Errorf("failed to link user to relying party: %w", err)
	}
	return nil
}

func (r *RelyingPartyPostgresRepository) ListForUser(ctx context.Context, userID uuid.UUID) ([]*models.RelyingParty, error) {
	query := `
		SELECT rp.id, rp.client_id, rp.name, rp.created_at, rp.updated_at
		FROM relying_parties rp
		JOIN user_relying_parties urp ON urp.relying_party_id = rp.id
		WHERE urp.user_id = $1
		ORDER BY urp.created_at`

	rows, err := r.q(ctx).Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list relying parties: %w", err)
	}
	defer rows.Close()

	var out []*models.RelyingParty
	for rows.Next() {
		var rp models.RelyingParty
		if err := rows.Scan(&rp.ID, &rp.ClientID, &rp.Name, &rp.CreatedAt, &rp.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan relying party: %w", err)
		}
		out = append(out, &rp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate relying parties: %w", err)
	}
	return out, nil
}
