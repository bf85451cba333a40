package identity

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nkiryanov/foodreview/internal/apperrors"
)

func TestNewUserInfo(t *testing.T) {
	attrs := map[string]any{
		"sub":            "10769150350006150715113082367",
		"email":          " a@x.com ",
		"name":           "Alice",
		"email_verified": true,
	}

	verified := true

	t.Run("google", func(t *testing.T) {
		for _, provider := range []string{"google", "Google", "GOOGLE"} {
			info, err := NewUserInfo(provider, attrs)

			require.NoError(t, err, provider)
			require.Equal(t, UserInfo{
				Provider:      ProviderGoogle,
				ID:            "10769150350006150715113082367",
				Email:         "a@x.com",
				Name:          "Alice",
				EmailVerified: &verified,
			}, info)
		}
	})

	t.Run("missing attributes are empty", func(t *testing.T) {
		info, err := NewUserInfo("google", map[string]any{"email": 42})

		require.NoError(t, err)
		require.Equal(t, UserInfo{Provider: ProviderGoogle}, info)
	})

	t.Run("email verified claim", func(t *testing.T) {
		tests := []struct {
			name     string
			value    any
			expected *bool
		}{
			{"bool false", false, new(bool)},
			{"string true", "true", &verified},
			{"string false", "false", new(bool)},
			{"garbage", "maybe", nil},
			{"absent", nil, nil},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				info, err := NewUserInfo("google", map[string]any{"email": "a@x.com", "email_verified": tt.value})

				require.NoError(t, err)
				require.Equal(t, tt.expected, info.EmailVerified)
			})
		}
	})

	t.Run("unsupported provider", func(t *testing.T) {
		_, err := NewUserInfo("github", attrs)

		require.ErrorIs(t, err, apperrors.ErrUnsupportedProvider)
	})
}
