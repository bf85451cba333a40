package principal

import (
	"context"
	"slices"

	"github.com/google/uuid"

	"github.com/nkiryanov/foodreview/internal/models"
)

// Principal is the authenticated caller of the request
type Principal struct {
	AccountID   uuid.UUID
	Email       string
	Name        string
	Role        models.Role
	Authorities []string
}

func FromAccount(a models.Account) Principal {
	return Principal{
		AccountID:   a.ID,
		Email:       a.Email,
		Name:        a.Name,
		Role:        a.Role,
		Authorities: a.Role.Authorities(),
	}
}

func (p Principal) HasAuthority(authority string) bool {
	return slices.Contains(p.Authorities, authority)
}

type ctxKey string

const principalKey ctxKey = "principal"

// Create a new context with the principal
func New(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// Extract the principal from the context. False for anonymous requests.
func FromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey).(Principal)
	return p, ok
}
