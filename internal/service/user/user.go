package user

import (
	"context"
	"fmt"

	"github.com/nkiryanov/foodreview/internal/logger"
	"github.com/nkiryanov/foodreview/internal/models"
	"github.com/nkiryanov/foodreview/internal/repository"
)

// Profile of the account with review progress
type Profile struct {
	Account            models.Account
	ReviewCount        int
	ReviewsToNextBadge int
}

// Profile fields the member may change. Nil means unchanged.
type ProfileUpdate struct {
	Name        *string
	Nationality *string
	PhotoURL    *string
}

type UserService struct {
	storage repository.Storage
	logger  logger.Logger
}

func NewService(storage repository.Storage, l logger.Logger) *UserService {
	return &UserService{
		storage: storage,
		logger:  l,
	}
}

func (s *UserService) Profile(ctx context.Context, email string) (Profile, error) {
	accounts := s.storage.Account()

	account, err := accounts.GetAccountByEmail(ctx, email)
	if err != nil {
		return Profile{}, err
	}

	count, err := accounts.CountReviews(ctx, account.ID)
	if err != nil {
		return Profile{}, fmt.Errorf("can't count reviews. Err: %w", err)
	}

	return Profile{
		Account:            account,
		ReviewCount:        count,
		ReviewsToNextBadge: models.ReviewsToNextBadge(count),
	}, nil
}

// UpdateProfile returns apperrors.ErrNameAlreadyExists if the new name is taken
func (s *UserService) UpdateProfile(ctx context.Context, email string, upd ProfileUpdate) (models.Account, error) {
	var updated models.Account

	err := s.storage.InTx(ctx, func(tx repository.Storage) error {
		account, err := tx.Account().GetAccountByEmail(ctx, email)
		if err != nil {
			return err
		}

		setIfNotNil(&account.Name, upd.Name)
		setIfNotNil(&account.Nationality, upd.Nationality)
		setIfNotNil(&account.PhotoURL, upd.PhotoURL)

		updated, err = tx.Account().UpdateAccount(ctx, account)
		return err
	})
	if err != nil {
		return models.Account{}, err
	}

	return updated, nil
}

// RecomputeBadge sets the badge tier matching the current review count
func (s *UserService) RecomputeBadge(ctx context.Context, email string) (models.Account, error) {
	var updated models.Account

	err := s.storage.InTx(ctx, func(tx repository.Storage) error {
		account, err := tx.Account().GetAccountByEmail(ctx, email)
		if err != nil {
			return err
		}

		count, err := tx.Account().CountReviews(ctx, account.ID)
		if err != nil {
			return fmt.Errorf("can't count reviews. Err: %w", err)
		}

		badge := models.BadgeForReviewCount(count)
		if badge == account.Badge {
			updated = account
			return nil
		}

		s.logger.Info("badge changed", "account_id", account.ID, "from", account.Badge, "to", badge, "reviews", count)
		account.Badge = badge
		updated, err = tx.Account().UpdateAccount(ctx, account)
		return err
	})
	if err != nil {
		return models.Account{}, err
	}

	return updated, nil
}

func setIfNotNil(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}
