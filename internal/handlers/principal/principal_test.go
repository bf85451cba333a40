package principal

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/nkiryanov/foodreview/internal/models"
)

func TestPrincipal(t *testing.T) {
	account := models.Account{ID: uuid.New(), Email: "a@x.com", Name: "alice", Role: models.RoleAdmin}

	_, ok := FromContext(context.Background())
	require.False(t, ok, "anonymous context has no principal")

	ctx := New(context.Background(), FromAccount(account))
	p, ok := FromContext(ctx)

	require.True(t, ok)
	require.Equal(t, account.ID, p.AccountID)
	require.Equal(t, "a@x.com", p.Email)
	require.True(t, p.HasAuthority("ROLE_ADMIN"))
	require.False(t, p.HasAuthority("ROLE_USER"))
}
