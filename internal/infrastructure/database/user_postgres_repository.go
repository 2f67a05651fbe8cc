package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	domainErrors "github.com/nagashima/sso-idp/internal/domain/errors"
	"github.com/nagashima/sso-idp/internal/domain/models"
	"github.com/nagashima/sso-idp/internal/domain/repository"
)

const userColumns = `
	id, email, encrypted_password, activated_at,
	mail_authentication_code, mail_authentication_expires_at,
	last_sign_in_at, current_sign_in_at,
	last_name, first_name, has_middle_name, middle_name,
	last_kana_name, first_kana_name,
	birth_date, gender_code, gender_text, phone_number,
	home_is_address_selected_manually, home_postal_code, home_prefecture_code,
	home_master_city_id, home_address_town, home_address_later,
	home_latitude, home_longitude,
	employment_status,
	workplace_name, workplace_phone_number, workplace_is_address_selected_manually,
	workplace_postal_code, workplace_prefecture_code, workplace_master_city_id,
	workplace_address_town, workplace_address_later,
	created_at, updated_at`

// UserPostgresRepository is the pgx implementation of the user store.
type UserPostgresRepository struct {
	pool *pgxpool.Pool
}

var _ repository.UserRepository = (*UserPostgresRepository)(nil)

func NewUserPostgresRepository(pool *pgxpool.Pool) *UserPostgresRepository {
	return &UserPostgresRepository{pool: pool}
}

func (r *UserPostgresRepository) q(ctx context.Context) Querier {
	return QuerierFromContext(ctx, r.pool)
}

func (r *UserPostgresRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (` + userColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
			$15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27,
			$28, $29, $30, $31, $32, $33, $34, $35, $36, $37)`

	_, err := r.q(ctx).Exec(ctx, query,
		user.ID, user.Email, user.EncryptedPassword, user.ActivatedAt,
		user.MailAuthenticationCode, user.MailAuthenticationExpiresAt,
		user.LastSignInAt, user.CurrentSignInAt,
		user.LastName, user.FirstName, user.HasMiddleName, user.MiddleName,
		user.LastKanaName, user.FirstKanaName,
		user.BirthDate, user.GenderCode, user.GenderText, user.PhoneNumber,
		user.HomeIsAddressSelectedManually, user.HomePostalCode, user.HomePrefectureCode,
		user.HomeMasterCityID, user.HomeAddressTown, user.HomeAddressLater,
		user.HomeLatitude, user.HomeLongitude,
		user.EmploymentStatus,
		user.WorkplaceName, user.WorkplacePhoneNumber, user.WorkplaceIsAddressSelectedManually,
		user.WorkplacePostalCode, user.WorkplacePrefectureCode, user.WorkplaceMasterCityID,
		user.WorkplaceAddressTown, user.WorkplaceAddressLater,
		user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("creating user %s: %w", user.Email, domainErrors.ErrEmailExists)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *UserPostgresRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.scanOne(r.q(ctx).QueryRow(ctx, query, id))
}

func (r *UserPostgresRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return r.scanOne(r.q(ctx).QueryRow(ctx, query, email))
}

func (r *UserPostgresRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.q(ctx).QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`, email).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check user existence: %w", err)
	}
	return exists, nil
}

func (r *UserPostgresRepository) SetMailAuthCode(ctx context.Context, id uuid.UUID, code string, expiresAt time.Time) error {
	query := `
		UPDATE users
		SET mail_authentication_code = $2,
		    mail_authentication_expires_at = $3,
		    updated_at = NOW()
		WHERE id = $1`

	tag, err := r.q(ctx).Exec(ctx, query, id, code, expiresAt)
	if err != nil {
		return fmt.Errorf("failed to set mail auth code: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrUserNotFound
	}
	return nil
}

func (r *UserPostgresRepository) ClearMailAuthCode(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE users
		SET mail_authentication_code = NULL,
		    mail_authentication_expires_at = NULL,
		    updated_at = NOW()
		WHERE id = $1`

	tag, err := r.q(ctx).Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to clear mail auth code: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrUserNotFound
	}
	return nil
}

func (r *UserPostgresRepository) TouchSignIn(ctx context.Context, id uuid.UUID, at time.Time) error {
	query := `
		UPDATE users
		SET last_sign_in_at = current_sign_in_at,
		    current_sign_in_at = $2,
		    updated_at = NOW()
		WHERE id = $1`

	tag, err := r.q(ctx).Exec(ctx, query, id, at)
	if err != nil {
		return fmt.Errorf("failed to touch sign-in timestamps: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrUserNotFound
	}
	return nil
}

func (r *UserPostgresRepository) scanOne(row pgx.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(
		&u.ID, &u.Email, &u.EncryptedPassword, &u.ActivatedAt,
		&u.MailAuthenticationCode, &u.MailAuthenticationExpiresAt,
		&u.LastSignInAt, &u.CurrentSignInAt,
		&u.LastName, &u.FirstName, &u.HasMiddleName, &u.MiddleName,
		&u.LastKanaName, &u.FirstKanaName,
		&u.BirthDate, &u.GenderCode, &u.GenderText, &u.PhoneNumber,
		&u.HomeIsAddressSelectedManually, &u.HomePostalCode, &u.HomePrefectureCode,
		&u.HomeMasterCityID, &u.HomeAddressTown, &u.HomeAddressLater,
		&u.HomeLatitude, &u.HomeLongitude,
		&u.EmploymentStatus,
		&u.WorkplaceName, &u.WorkplacePhoneNumber, &u.WorkplaceIsAddressSelectedManually,
		&u.WorkplacePostalCode, &u.WorkplacePrefectureCode, &u.WorkplaceMasterCityID,
		&u.WorkplaceAddressTown, &u.WorkplaceAddressLater,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}
	return &u, nil
}
