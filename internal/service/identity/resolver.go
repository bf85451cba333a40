package identity

import (
	"context"
	"errors"
	"fmt"

	"github.com/nkiryanov/foodreview/internal/apperrors"
	"github.com/nkiryanov/foodreview/internal/logger"
	"github.com/nkiryanov/foodreview/internal/models"
	"github.com/nkiryanov/foodreview/internal/repository"
)

type pairIssuer interface {
	// Issue token pair and store the refresh token on the account
	IssuePair(ctx context.Context, account models.Account) (models.TokenPair, error)
}

// Resolver joins federated identities to local accounts by email
type Resolver struct {
	storage repository.Storage
	issuer  pairIssuer
	logger  logger.Logger
}

func NewResolver(storage repository.Storage, issuer pairIssuer, l logger.Logger) *Resolver {
	return &Resolver{storage: storage, issuer: issuer, logger: l}
}

// Resolve finds or creates the account for the federated identity and issues a token pair for it.
// The stored refresh token is overwritten, so any previous session can't refresh anymore.
func (r *Resolver) Resolve(ctx context.Context, provider string, attrs map[string]any) (models.Account, models.TokenPair, error) {
	info, err := NewUserInfo(provider, attrs)
	if err != nil {
		return models.Account{}, models.TokenPair{}, err
	}

	if info.Email == "" {
		return models.Account{}, models.TokenPair{}, fmt.Errorf("%w: %s returned no email", apperrors.ErrFederation, info.Provider)
	}

	// Accounts are joined by email, an unverified one could take over a password account
	if info.EmailVerified != nil && !*info.EmailVerified {
		return models.Account{}, models.TokenPair{}, fmt.Errorf("%w: %s email is not verified", apperrors.ErrFederation, info.Provider)
	}

	account, err := r.findOrCreate(ctx, info)
	if err != nil {
		return models.Account{}, models.TokenPair{}, err
	}

	pair, err := r.issuer.IssuePair(ctx, account)
	if err != nil {
		return models.Account{}, models.TokenPair{}, err
	}

	return account, pair, nil
}

func (r *Resolver) findOrCreate(ctx context.Context, info UserInfo) (models.Account, error) {
	accounts := r.storage.Account()

	account, err := accounts.GetAccountByEmail(ctx, info.Email)
	switch {
	case err == nil:
		return account, nil
	case !errors.Is(err, apperrors.ErrUserNotFound):
		return models.Account{}, err
	}

	account, err = accounts.CreateAccount(ctx, models.Account{
		Email:       info.Email,
		Name:        info.Name,
		Password:    "",
		Role:        models.RoleUser,
		Nationality: models.UnknownNationality,
		Badge:       models.InitialBadge,
	})
	switch {
	case err == nil:
		r.logger.Info("federated account created", "provider", info.Provider, "account_id", account.ID)
		return account, nil
	case errors.Is(err, apperrors.ErrEmailAlreadyExists):
		// Concurrent first sign in of the same identity
		return accounts.GetAccountByEmail(ctx, info.Email)
	case errors.Is(err, apperrors.ErrNameAlreadyExists):
		return models.Account{}, fmt.Errorf("%w: %w", apperrors.ErrFederation, err)
	default:
		return models.Account{}, err
	}
}
