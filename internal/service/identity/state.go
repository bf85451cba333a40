package identity

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/nkiryanov/foodreview/internal/apperrors"
)

const (
	defaultStateTTL = 10 * time.Minute
	stateAudience   = "oauth2-state"
)

type stateClaims struct {
	jwt.RegisteredClaims
	Provider string `json:"provider"`
}

// StateCodec signs the OAuth2 'state' parameter, so callbacks can't be forged or replayed later
type StateCodec struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

func NewStateCodec(secret string, ttl time.Duration, now func() time.Time) (*StateCodec, error) {
	if secret == "" {
		return nil, errors.New("secret key must not be empty")
	}
	if ttl == 0 {
		ttl = defaultStateTTL
	}
	if now == nil {
		now = time.Now
	}

	return &StateCodec{key: []byte(secret), ttl: ttl, now: now}, nil
}

func (c *StateCodec) Issue(provider string) (string, error) {
	now := c.now()

	state, err := jwt.NewWithClaims(jwt.SigningMethodHS256, stateClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Audience:  jwt.ClaimStrings{stateAudience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		},
		Provider: provider,
	}).SignedString(c.key)
	if err != nil {
		return "", fmt.Errorf("error while signing oauth state. Err: %w", err)
	}

	return state, nil
}

// Verify checks the state was issued by us for the provider and is not expired
func (c *StateCodec) Verify(state string, provider string) error {
	claims := stateClaims{}
	_, err := jwt.ParseWithClaims(
		state,
		&claims,
		func(t *jwt.Token) (any, error) {
			return c.key, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(stateAudience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		return fmt.Errorf("%w: %w", apperrors.ErrOAuthState, err)
	}

	if claims.Provider != provider {
		return fmt.Errorf("%w: issued for %q", apperrors.ErrOAuthState, claims.Provider)
	}

	return nil
}
