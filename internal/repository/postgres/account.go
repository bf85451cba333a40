package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/nkiryanov/foodreview/internal/apperrors"
	"github.com/nkiryanov/foodreview/internal/models"
)

const emailConstraint = "accounts_email_key"

type AccountRepo struct {
	DB DBTX
}

const accountColumns = `id, created_at, email, COALESCE(name, ''), password_hash, role, nationality, badge, COALESCE(photo_url, ''), refresh_token`

const createAccount = `-- name: CreateAccount
INSERT INTO accounts (id, email, name, password_hash, role, nationality, badge, photo_url, refresh_token)
VALUES ($1, $2, NULLIF($3, ''), $4, $5, $6, $7, NULLIF($8, ''), $9)
RETURNING ` + accountColumns

func (r *AccountRepo) CreateAccount(ctx context.Context, a models.Account) (models.Account, error) {
	rows, _ := r.DB.Query(ctx, createAccount,
		uuid.New(), a.Email, a.Name, a.Password, a.Role, a.Nationality, a.Badge, a.PhotoURL, a.RefreshToken,
	)
	account, err := pgx.CollectOneRow(rows, rowToAccount)

	if err != nil {
		return account, uniqueViolationOr(err)
	}

	return account, nil
}

const getAccountByEmail = `-- name: GetAccountByEmail
SELECT ` + accountColumns + ` FROM accounts
WHERE email = $1
`

func (r *AccountRepo) GetAccountByEmail(ctx context.Context, email string) (models.Account, error) {
	rows, _ := r.DB.Query(ctx, getAccountByEmail, email)
	return collectAccount(rows)
}

const getAccountByName = `-- name: GetAccountByName
SELECT ` + accountColumns + ` FROM accounts
WHERE name = $1
`

func (r *AccountRepo) GetAccountByName(ctx context.Context, name string) (models.Account, error) {
	rows, _ := r.DB.Query(ctx, getAccountByName, name)
	return collectAccount(rows)
}

const updateAccount = `-- name: UpdateAccount
UPDATE accounts
SET name = NULLIF($2, ''),
    password_hash = $3,
    role = $4,
    nationality = $5,
    badge = $6,
    photo_url = NULLIF($7, ''),
    refresh_token = $8
WHERE id = $1
RETURNING ` + accountColumns

func (r *AccountRepo) UpdateAccount(ctx context.Context, a models.Account) (models.Account, error) {
	rows, _ := r.DB.Query(ctx, updateAccount,
		a.ID, a.Name, a.Password, a.Role, a.Nationality, a.Badge, a.PhotoURL, a.RefreshToken,
	)
	account, err := collectAccount(rows)
	if err != nil && !errors.Is(err, apperrors.ErrUserNotFound) {
		return account, uniqueViolationOr(err)
	}

	return account, err
}

const setRefreshToken = `-- name: SetRefreshToken
UPDATE accounts
SET refresh_token = $2
WHERE id = $1
`

func (r *AccountRepo) SetRefreshToken(ctx context.Context, accountID uuid.UUID, token *string) error {
	tag, err := r.DB.Exec(ctx, setRefreshToken, accountID, token)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrUserNotFound
	}

	return nil
}

const countReviews = `-- name: CountReviews
SELECT count(*) FROM reviews
WHERE account_id = $1
`

func (r *AccountRepo) CountReviews(ctx context.Context, accountID uuid.UUID) (int, error) {
	var count int
	err := r.DB.QueryRow(ctx, countReviews, accountID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}

	return count, nil
}

func collectAccount(rows pgx.Rows) (models.Account, error) {
	account, err := pgx.CollectOneRow(rows, rowToAccount)

	switch {
	case err == nil:
		return account, nil
	case errors.Is(err, pgx.ErrNoRows):
		return account, apperrors.ErrUserNotFound
	default:
		return account, fmt.Errorf("db error: %w", err)
	}
}

// Map unique violations to domain errors. Any violation except the email one is the name
func uniqueViolationOr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		if pgErr.ConstraintName == emailConstraint {
			return apperrors.ErrEmailAlreadyExists
		}
		return apperrors.ErrNameAlreadyExists
	}

	return fmt.Errorf("db error: %w", err)
}

func rowToAccount(row pgx.CollectableRow) (models.Account, error) {
	var a models.Account
	err := row.Scan(
		&a.ID, &a.CreatedAt, &a.Email, &a.Name, &a.Password,
		&a.Role, &a.Nationality, &a.Badge, &a.PhotoURL, &a.RefreshToken,
	)
	return a, err
}
