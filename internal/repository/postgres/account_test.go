package postgres

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nkiryanov/foodreview/internal/apperrors"
	"github.com/nkiryanov/foodreview/internal/models"
	"github.com/nkiryanov/foodreview/internal/repository"
	"github.com/nkiryanov/foodreview/internal/testutil"
)

func newAccount(email, name string) models.Account {
	return models.Account{
		Email:       email,
		Name:        name,
		Password:    "hashed-password",
		Role:        models.RoleUser,
		Nationality: models.UnknownNationality,
		Badge:       models.InitialBadge,
	}
}

func Test_AccountRepo(t *testing.T) {
	t.Parallel() // It's ok to run in parallel with other tests, but not with subtests

	pg := testutil.StartPostgresContainer(t)
	t.Cleanup(pg.Terminate)

	t.Run("create account ok", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			r := AccountRepo{DB: tx}

			account, err := r.CreateAccount(t.Context(), newAccount("a@x.com", "alice"))

			require.NoError(t, err)
			assert.NotEqual(t, uuid.Nil, account.ID)
			assert.Equal(t, "a@x.com", account.Email)
			assert.Equal(t, "alice", account.Name)
			assert.Equal(t, "hashed-password", account.Password)
			assert.Equal(t, models.RoleUser, account.Role)
			assert.Equal(t, models.BadgeReview0, account.Badge)
			assert.Nil(t, account.RefreshToken)
			assert.WithinDuration(t, time.Now(), account.CreatedAt, time.Second, "CreatedAt should be recent")
		})
	})

	t.Run("create account with empty name and password", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			r := AccountRepo{DB: tx}

			first := newAccount("first@x.com", "")
			first.Password = ""
			second := newAccount("second@x.com", "")

			created, err := r.CreateAccount(t.Context(), first)
			require.NoError(t, err)
			_, err = r.CreateAccount(t.Context(), second)
			require.NoError(t, err, "empty names must not collide")

			assert.Equal(t, "", created.Name)
			assert.Equal(t, "", created.Password)
		})
	})

	t.Run("create account duplicates", func(t *testing.T) {
		tests := []struct {
			name     string
			account  models.Account
			expected error
		}{
			{
				name:     "same email",
				account:  newAccount("taken@x.com", "other"),
				expected: apperrors.ErrEmailAlreadyExists,
			},
			{
				name:     "same name",
				account:  newAccount("other@x.com", "taken"),
				expected: apperrors.ErrNameAlreadyExists,
			},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
					r := AccountRepo{DB: tx}
					_, err := r.CreateAccount(t.Context(), newAccount("taken@x.com", "taken"))
					require.NoError(t, err)

					// Nested tx, so the failed insert doesn't abort the outer one
					nested, err := tx.Begin(t.Context())
					require.NoError(t, err)
					defer nested.Rollback(t.Context()) // nolint:errcheck

					_, err = (&AccountRepo{DB: nested}).CreateAccount(t.Context(), tt.account)

					require.ErrorIs(t, err, tt.expected)
				})
			})
		}
	})

	t.Run("get account by email and name", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			r := AccountRepo{DB: tx}
			created, err := r.CreateAccount(t.Context(), newAccount("find@x.com", "finder"))
			require.NoError(t, err)

			byEmail, err := r.GetAccountByEmail(t.Context(), "find@x.com")
			require.NoError(t, err)
			byName, err := r.GetAccountByName(t.Context(), "finder")
			require.NoError(t, err)

			assert.Equal(t, created, byEmail)
			assert.Equal(t, created, byName)
		})
	})

	t.Run("get account not found", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			r := AccountRepo{DB: tx}

			_, err := r.GetAccountByEmail(t.Context(), "nobody@x.com")
			assert.ErrorIs(t, err, apperrors.ErrUserNotFound, "should return well known error")

			_, err = r.GetAccountByName(t.Context(), "nobody")
			assert.ErrorIs(t, err, apperrors.ErrUserNotFound, "should return well known error")
		})
	})

	t.Run("update account", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			r := AccountRepo{DB: tx}
			account, err := r.CreateAccount(t.Context(), newAccount("upd@x.com", "before"))
			require.NoError(t, err)

			refresh := "refresh-token"
			account.Name = "after"
			account.Nationality = "KR"
			account.Badge = models.BadgeReview10
			account.PhotoURL = "/profile-images/1.png"
			account.RefreshToken = &refresh

			updated, err := r.UpdateAccount(t.Context(), account)
			require.NoError(t, err)
			assert.Equal(t, account, updated)

			updated.RefreshToken = nil
			cleared, err := r.UpdateAccount(t.Context(), updated)
			require.NoError(t, err)
			assert.Nil(t, cleared.RefreshToken, "refresh token should be cleared")
		})
	})

	t.Run("update account errors", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			r := AccountRepo{DB: tx}
			_, err := r.CreateAccount(t.Context(), newAccount("one@x.com", "one"))
			require.NoError(t, err)
			two, err := r.CreateAccount(t.Context(), newAccount("two@x.com", "two"))
			require.NoError(t, err)

			_, err = r.UpdateAccount(t.Context(), newAccount("ghost@x.com", "ghost"))
			require.ErrorIs(t, err, apperrors.ErrUserNotFound)

			nested, err := tx.Begin(t.Context())
			require.NoError(t, err)
			defer nested.Rollback(t.Context()) // nolint:errcheck

			two.Name = "one"
			_, err = (&AccountRepo{DB: nested}).UpdateAccount(t.Context(), two)
			require.ErrorIs(t, err, apperrors.ErrNameAlreadyExists)
		})
	})

	t.Run("set refresh token touches only the token", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			r := AccountRepo{DB: tx}
			account, err := r.CreateAccount(t.Context(), newAccount("tok@x.com", "tok"))
			require.NoError(t, err)

			// Stale copy must not matter: only id and token are sent
			account.Name = "stale"
			account.Badge = models.BadgeReview50

			refresh := "refresh-token"
			err = r.SetRefreshToken(t.Context(), account.ID, &refresh)
			require.NoError(t, err)

			stored, err := r.GetAccountByEmail(t.Context(), "tok@x.com")
			require.NoError(t, err)
			require.NotNil(t, stored.RefreshToken)
			assert.Equal(t, refresh, *stored.RefreshToken)
			assert.Equal(t, "tok", stored.Name)
			assert.Equal(t, models.InitialBadge, stored.Badge)

			err = r.SetRefreshToken(t.Context(), account.ID, nil)
			require.NoError(t, err)
			stored, err = r.GetAccountByEmail(t.Context(), "tok@x.com")
			require.NoError(t, err)
			assert.Nil(t, stored.RefreshToken, "refresh token should be cleared")

			err = r.SetRefreshToken(t.Context(), uuid.New(), &refresh)
			require.ErrorIs(t, err, apperrors.ErrUserNotFound)
		})
	})

	t.Run("count reviews", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			r := AccountRepo{DB: tx}
			account, err := r.CreateAccount(t.Context(), newAccount("reviewer@x.com", "reviewer"))
			require.NoError(t, err)

			count, err := r.CountReviews(t.Context(), account.ID)
			require.NoError(t, err)
			require.Equal(t, 0, count)

			testutil.CreateReviews(t, tx, account.ID, 3)

			count, err = r.CountReviews(t.Context(), account.ID)
			require.NoError(t, err)
			require.Equal(t, 3, count)
		})
	})
}

func Test_Storage_InTx(t *testing.T) {
	t.Parallel()

	pg := testutil.StartPostgresContainer(t)
	t.Cleanup(pg.Terminate)

	testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
		s := NewStorage(tx)

		err := s.InTx(t.Context(), func(s repository.Storage) error {
			_, err := s.Account().CreateAccount(t.Context(), newAccount("rolled@x.com", "rolled"))
			require.NoError(t, err)
			return apperrors.ErrInvalidPassword
		})
		require.ErrorIs(t, err, apperrors.ErrInvalidPassword, "error from fn should be returned")

		_, err = s.Account().GetAccountByEmail(t.Context(), "rolled@x.com")
		require.ErrorIs(t, err, apperrors.ErrUserNotFound, "tx should be rolled back")

		err = s.InTx(t.Context(), func(s repository.Storage) error {
			_, err := s.Account().CreateAccount(t.Context(), newAccount("kept@x.com", "kept"))
			return err
		})
		require.NoError(t, err)

		_, err = s.Account().GetAccountByEmail(t.Context(), "kept@x.com")
		require.NoError(t, err, "tx should be committed")
	})
}
