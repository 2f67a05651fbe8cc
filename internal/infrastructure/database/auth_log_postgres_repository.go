package database

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nagashima/sso-idp/internal/domain/models"
	"github.com/nagashima/sso-idp/internal/domain/repository"
)

// AuthLogPostgresRepository is the pgx implementation of the audit trail.
type AuthLogPostgresRepository struct {
	pool *pgxpool.Pool
}

var _ repository.AuthLogRepository = (*AuthLogPostgresRepository)(nil)

func NewAuthLogPostgresRepository(pool *pgxpool.Pool) *AuthLogPostgresRepository {
	return &AuthLogPostgresRepository{pool: pool}
}

func (r *AuthLogPostgresRepository) q(ctx context.Context) Querier {
	return QuerierFromContext(ctx, r.pool)
}

func (r *AuthLogPostgresRepository) Create(ctx context.Context, entry *models.AuthenticationLog) error {
	query := `
		INSERT INTO authentication_logs
			(user_id, email, event, ip_address, user_agent, browser, os, mobile, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`

	err := r.q(ctx).QueryRow(ctx, query,
		entry.UserID, entry.Email, entry.Event, entry.IPAddress,
		entry.UserAgent, entry.Browser, entry.OS, entry.Mobile, entry.CreatedAt,
	).Scan(&entry.ID)
	if err != nil {
		return fmt.Errorf("failed to create authentication log: %w", err)
	}
	return nil
}

func (r *AuthLogPostgresRepository) ListForUser(ctx context.Context, userID uuid.UUID, limit int) ([]*models.AuthenticationLog, error) {
	query := `
		SELECT id, user_id, email, event, ip_address, user_agent, browser, os, mobile, created_at
		FROM authentication_logs
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2`

	rows, err := r.q(ctx).Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list authentication logs: %w", err)
	}
	defer rows.Close()

	var out []*models.AuthenticationLog
	for rows.Next() {
		var e models.AuthenticationLog
		if err := rows.Scan(&e.ID, &e.UserID, &e.Email, &e.Event, &e.IPAddress,
			&e.UserAgent, &e.Browser, &e.OS, &e.Mobile, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan authentication log: %w", err)
		}
		out = append(out, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate authentication logs: %w", err)
	}
	return out, nil
}
