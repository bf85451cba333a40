package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/nkiryanov/foodreview/internal/models"
)

// Account repository interface
type AccountRepo interface {
	// Create account. ID and CreatedAt are set by the repository.
	// Has to return apperrors.ErrEmailAlreadyExists or apperrors.ErrNameAlreadyExists on uniqueness violation
	CreateAccount(ctx context.Context, account models.Account) (models.Account, error)

	// Get account by it's email or name
	// If account not found must return apperrors.ErrUserNotFound
	GetAccountByEmail(ctx context.Context, email string) (models.Account, error)
	GetAccountByName(ctx context.Context, name string) (models.Account, error)

	// Persist every mutable field of the account (last writer wins)
	// If account not found must return apperrors.ErrUserNotFound
	// Has to return apperrors.ErrNameAlreadyExists if the new name is taken
	UpdateAccount(ctx context.Context, account models.Account) (models.Account, error)

	// Store or clear (nil) the refresh token only, other columns stay untouched
	// If account not found must return apperrors.ErrUserNotFound
	SetRefreshToken(ctx context.Context, accountID uuid.UUID, token *string) error

	// Number of reviews written by the account
	CountReviews(ctx context.Context, accountID uuid.UUID) (int, error)
}

type Storage interface {
	Account() AccountRepo

	// Run fn in a transaction. Commit if fn returns nil, rollback otherwise
	InTx(ctx context.Context, fn func(Storage) error) error
}
