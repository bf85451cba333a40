package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"

	"github.com/nkiryanov/foodreview/internal/apperrors"
	"github.com/nkiryanov/foodreview/internal/logger"
	"github.com/nkiryanov/foodreview/internal/models"
	"github.com/nkiryanov/foodreview/internal/repository"
)

// Interface to create or compare user password hashes
type PasswordHasher interface {
	// Generate Hash from password
	Hash(password string) (string, error)

	// Compare known hashedPassword and user provided password
	// Must be protected against timing attacks
	Compare(hashedPassword string, password string) error
}

type tokenCodec interface {
	IssueAccess(account models.Account) (models.IssuedToken, error)
	IssueRefresh(account models.Account) (models.IssuedToken, error)
	Validate(token string) bool
	Subject(token string) (string, error)
}

type Config struct {
	// Hasher to use during signup or login
	// BcryptHasher if not set
	Hasher PasswordHasher
}

type SignupParams struct {
	Email       string
	Password    string
	Name        string
	Nationality string
}

// AuthService runs signup, login, refresh token rotation and logout
type AuthService struct {
	codec   tokenCodec
	hasher  PasswordHasher
	storage repository.Storage
	logger  logger.Logger
}

func NewService(cfg Config, codec tokenCodec, storage repository.Storage, l logger.Logger) (*AuthService, error) {
	if cfg.Hasher == nil {
		cfg.Hasher = BcryptHasher{}
	}

	if codec == nil || storage == nil {
		return nil, errors.New("codec and storage must not be nil")
	}

	return &AuthService{
		codec:   codec,
		hasher:  cfg.Hasher,
		storage: storage,
		logger:  l,
	}, nil
}

// Signup creates a password account with the initial badge. No tokens are issued.
func (s *AuthService) Signup(ctx context.Context, p SignupParams) (models.Account, error) {
	accounts := s.storage.Account()

	if err := s.ensureAvailable(ctx, accounts.GetAccountByEmail, p.Email, apperrors.ErrEmailAlreadyExists); err != nil {
		return models.Account{}, err
	}
	if err := s.ensureAvailable(ctx, accounts.GetAccountByName, p.Name, apperrors.ErrNameAlreadyExists); err != nil {
		return models.Account{}, err
	}

	hash, err := s.hasher.Hash(p.Password)
	if err != nil {
		return models.Account{}, fmt.Errorf("can't use this as password, error=%w", err)
	}

	nationality := p.Nationality
	if nationality == "" {
		nationality = models.UnknownNationality
	}

	// Uniqueness is checked above, but a concurrent signup may still win; the repo maps it to the same errors
	account, err := accounts.CreateAccount(ctx, models.Account{
		Email:       p.Email,
		Name:        p.Name,
		Password:    hash,
		Role:        models.RoleUser,
		Nationality: nationality,
		Badge:       models.InitialBadge,
	})
	if err != nil {
		return models.Account{}, err
	}

	s.logger.Info("account signed up", "account_id", account.ID)
	return account, nil
}

// Login checks the password and issues a new token pair, replacing the stored refresh token
func (s *AuthService) Login(ctx context.Context, email string, password string) (models.TokenPair, error) {
	account, err := s.storage.Account().GetAccountByEmail(ctx, email)
	if err != nil {
		return models.TokenPair{}, err
	}

	if err := s.hasher.Compare(account.Password, password); err != nil {
		return models.TokenPair{}, apperrors.ErrInvalidPassword
	}

	return s.IssuePair(ctx, account)
}

// Refresh rotates the pair. The token must be valid and equal to the one stored on the account.
func (s *AuthService) Refresh(ctx context.Context, refresh string) (models.TokenPair, error) {
	account, err := s.accountByRefresh(ctx, refresh)
	if err != nil {
		return models.TokenPair{}, err
	}

	if account.RefreshToken == nil || subtle.ConstantTimeCompare([]byte(*account.RefreshToken), []byte(refresh)) != 1 {
		s.logger.Warn("refresh token superseded", "account_id", account.ID)
		return models.TokenPair{}, apperrors.ErrInvalidRefreshToken
	}

	return s.IssuePair(ctx, account)
}

// Logout clears the stored refresh token. Issued access tokens stay valid until they expire.
func (s *AuthService) Logout(ctx context.Context, refresh string) error {
	account, err := s.accountByRefresh(ctx, refresh)
	if err != nil {
		return err
	}

	if err := s.storage.Account().SetRefreshToken(ctx, account.ID, nil); err != nil {
		return fmt.Errorf("error while clearing refresh token. Err: %w", err)
	}

	s.logger.Info("account logged out", "account_id", account.ID)
	return nil
}

// IssuePair issues access and refresh tokens and stores the refresh one on the account
func (s *AuthService) IssuePair(ctx context.Context, account models.Account) (models.TokenPair, error) {
	access, err := s.codec.IssueAccess(account)
	if err != nil {
		return models.TokenPair{}, fmt.Errorf("token could not generated, sorry. %w", err)
	}

	refresh, err := s.codec.IssueRefresh(account)
	if err != nil {
		return models.TokenPair{}, fmt.Errorf("token could not generated, sorry. %w", err)
	}

	if err := s.storage.Account().SetRefreshToken(ctx, account.ID, &refresh.Value); err != nil {
		return models.TokenPair{}, fmt.Errorf("error while saving refresh token. Err: %w", err)
	}

	return models.TokenPair{Access: access, Refresh: refresh}, nil
}

func (s *AuthService) EmailAvailable(ctx context.Context, email string) (bool, error) {
	return available(ctx, s.storage.Account().GetAccountByEmail, email)
}

func (s *AuthService) NameAvailable(ctx context.Context, name string) (bool, error) {
	return available(ctx, s.storage.Account().GetAccountByName, name)
}

func (s *AuthService) accountByRefresh(ctx context.Context, refresh string) (models.Account, error) {
	if !s.codec.Validate(refresh) {
		return models.Account{}, apperrors.ErrInvalidRefreshToken
	}

	email, err := s.codec.Subject(refresh)
	if err != nil {
		return models.Account{}, apperrors.ErrInvalidRefreshToken
	}

	account, err := s.storage.Account().GetAccountByEmail(ctx, email)
	switch {
	case err == nil:
		return account, nil
	case errors.Is(err, apperrors.ErrUserNotFound):
		// Signed for an account that no longer exists
		return models.Account{}, apperrors.ErrInvalidRefreshToken
	default:
		return models.Account{}, err
	}
}

type lookupFunc func(ctx context.Context, key string) (models.Account, error)

func available(ctx context.Context, lookup lookupFunc, key string) (bool, error) {
	_, err := lookup(ctx, key)
	switch {
	case err == nil:
		return false, nil
	case errors.Is(err, apperrors.ErrUserNotFound):
		return true, nil
	default:
		return false, err
	}
}

func (s *AuthService) ensureAvailable(ctx context.Context, lookup lookupFunc, key string, taken error) error {
	ok, err := available(ctx, lookup, key)
	if err != nil {
		return err
	}
	if !ok {
		return taken
	}
	return nil
}
