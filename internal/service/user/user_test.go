package user

import (
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nkiryanov/foodreview/internal/apperrors"
	"github.com/nkiryanov/foodreview/internal/logger"
	"github.com/nkiryanov/foodreview/internal/models"
	"github.com/nkiryanov/foodreview/internal/repository"
	"github.com/nkiryanov/foodreview/internal/repository/postgres"
	"github.com/nkiryanov/foodreview/internal/testutil"
)

func ptr(s string) *string { return &s }

func Test_UserService(t *testing.T) {
	t.Parallel()

	pg := testutil.StartPostgresContainer(t)
	t.Cleanup(pg.Terminate)

	withTx := func(dbpool *pgxpool.Pool, t *testing.T, fn func(s *UserService, storage repository.Storage, tx pgx.Tx)) {
		testutil.WithTx(dbpool, t, func(tx pgx.Tx) {
			storage := postgres.NewStorage(tx)
			fn(NewService(storage, logger.NewNoOpLogger()), storage, tx)
		})
	}

	createAccount := func(t *testing.T, storage repository.Storage, email, name string) models.Account {
		account, err := storage.Account().CreateAccount(t.Context(), models.Account{
			Email:       email,
			Name:        name,
			Role:        models.RoleUser,
			Nationality: models.UnknownNationality,
			Badge:       models.InitialBadge,
		})
		require.NoError(t, err)
		return account
	}

	t.Run("profile", func(t *testing.T) {
		withTx(pg.Pool, t, func(s *UserService, storage repository.Storage, tx pgx.Tx) {
			account := createAccount(t, storage, "a@x.com", "alice")
			testutil.CreateReviews(t, tx, account.ID, 3)

			profile, err := s.Profile(t.Context(), "a@x.com")

			require.NoError(t, err)
			assert.Equal(t, account, profile.Account)
			assert.Equal(t, 3, profile.ReviewCount)
			assert.Equal(t, 7, profile.ReviewsToNextBadge)
		})
	})

	t.Run("profile not found", func(t *testing.T) {
		withTx(pg.Pool, t, func(s *UserService, storage repository.Storage, tx pgx.Tx) {
			_, err := s.Profile(t.Context(), "nobody@x.com")

			require.ErrorIs(t, err, apperrors.ErrUserNotFound)
		})
	})

	t.Run("update profile", func(t *testing.T) {
		withTx(pg.Pool, t, func(s *UserService, storage repository.Storage, tx pgx.Tx) {
			createAccount(t, storage, "a@x.com", "alice")

			updated, err := s.UpdateProfile(t.Context(), "a@x.com", ProfileUpdate{
				Nationality: ptr("KR"),
				PhotoURL:    ptr("/profile-images/a.png"),
			})

			require.NoError(t, err)
			assert.Equal(t, "alice", updated.Name, "name should be unchanged")
			assert.Equal(t, "KR", updated.Nationality)
			assert.Equal(t, "/profile-images/a.png", updated.PhotoURL)
		})
	})

	t.Run("update profile with taken name", func(t *testing.T) {
		withTx(pg.Pool, t, func(s *UserService, storage repository.Storage, tx pgx.Tx) {
			createAccount(t, storage, "a@x.com", "alice")
			createAccount(t, storage, "b@x.com", "bob")

			_, err := s.UpdateProfile(t.Context(), "b@x.com", ProfileUpdate{Name: ptr("alice")})

			require.ErrorIs(t, err, apperrors.ErrNameAlreadyExists)
		})
	})

	t.Run("recompute badge", func(t *testing.T) {
		withTx(pg.Pool, t, func(s *UserService, storage repository.Storage, tx pgx.Tx) {
			account := createAccount(t, storage, "a@x.com", "alice")

			same, err := s.RecomputeBadge(t.Context(), "a@x.com")
			require.NoError(t, err)
			require.Equal(t, models.BadgeReview0, same.Badge)

			testutil.CreateReviews(t, tx, account.ID, 10)

			updated, err := s.RecomputeBadge(t.Context(), "a@x.com")
			require.NoError(t, err)
			require.Equal(t, models.BadgeReview10, updated.Badge)

			stored, err := storage.Account().GetAccountByEmail(t.Context(), "a@x.com")
			require.NoError(t, err)
			require.Equal(t, models.BadgeReview10, stored.Badge, "badge should be persisted")
		})
	})
}
