package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_BcryptHasher(t *testing.T) {
	t.Parallel()

	h := BcryptHasher{}

	t.Run("hash password", func(t *testing.T) {
		got, err := h.Hash("password")
		require.NoError(t, err)

		require.Len(t, got, 60, "bcrypt length is 60 letters as far as i know")
		require.Equal(t, "$2a$10$", got[:7], "bcrypt hash should have prefix '$2a$' and default cost")
	})

	t.Run("compare password ok", func(t *testing.T) {
		hash, err := h.Hash("password")
		require.NoError(t, err)

		err = h.Compare(hash, "password")

		require.NoError(t, err)
	})

	t.Run("fail compare if wrong password", func(t *testing.T) {
		hash, err := h.Hash("password")
		require.NoError(t, err)

		err = h.Compare(hash, "wrong")

		require.Error(t, err)
	})

	t.Run("fail compare without stored password", func(t *testing.T) {
		err := h.Compare("", "")

		require.ErrorIs(t, err, errNoPassword)
	})

	t.Run("long passwords are not truncated", func(t *testing.T) {
		long := strings.Repeat("a", 100)
		hash, err := h.Hash(long + "1")
		require.NoError(t, err)

		err = h.Compare(hash, long+"2")

		require.Error(t, err)
	})
}
