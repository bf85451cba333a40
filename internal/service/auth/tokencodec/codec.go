package tokencodec

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/nkiryanov/foodreview/internal/logger"
	"github.com/nkiryanov/foodreview/internal/models"
)

const (
	defaultAccessTokenTTL = time.Hour
	defaultSigningMethod  = "HS256"

	// Refresh tokens live as long as access tokens unless configured otherwise
	defaultRefreshTokenTTL = defaultAccessTokenTTL
)

// Validation failure categories, logged with every rejected token
const (
	FailureEmpty       = "empty"
	FailureMalformed   = "malformed"
	FailureUnsupported = "unsupported"
	FailureSignature   = "signature"
	FailureExpired     = "expired"
	FailureClaims      = "claims"
)

type Claims struct {
	jwt.RegisteredClaims
	Role models.Role `json:"role"`
}

// Codec configuration with sensible defaults
type Config struct {
	// Secret key to sign tokens
	// Required to be set
	SecretKey string

	// JWT MAC (Message Authentication Code) algorithm
	// If not set than default is used
	Alg string

	// Access and refresh token lifetimes
	// If not set than default is used
	AccessTTL  time.Duration
	RefreshTTL time.Duration

	// Clock, time.Now if not set
	Now func() time.Time
}

// Codec issues and verifies signed tokens. It holds no mutable state and is safe for concurrent use.
type Codec struct {
	key        []byte
	alg        jwt.SigningMethod
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
	logger     logger.Logger
}

func New(cfg Config, l logger.Logger) (*Codec, error) {
	if cfg.SecretKey == "" {
		return nil, errors.New("secret key must not be empty")
	}

	if cfg.Alg == "" {
		cfg.Alg = defaultSigningMethod
	}

	alg, ok := jwt.GetSigningMethod(cfg.Alg).(*jwt.SigningMethodHMAC)
	if !ok {
		return nil, fmt.Errorf("signing method %q is not a supported HMAC method", cfg.Alg)
	}

	setDefaultDuration := func(field *time.Duration, def time.Duration) {
		if *field == 0 {
			*field = def
		}
	}
	setDefaultDuration(&cfg.AccessTTL, defaultAccessTokenTTL)
	setDefaultDuration(&cfg.RefreshTTL, defaultRefreshTokenTTL)

	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return &Codec{
		key:        []byte(cfg.SecretKey),
		alg:        alg,
		accessTTL:  cfg.AccessTTL,
		refreshTTL: cfg.RefreshTTL,
		now:        cfg.Now,
		logger:     l,
	}, nil
}

func (c *Codec) IssueAccess(account models.Account) (models.IssuedToken, error) {
	return c.issue(account, c.accessTTL)
}

func (c *Codec) IssueRefresh(account models.Account) (models.IssuedToken, error) {
	return c.issue(account, c.refreshTTL)
}

func (c *Codec) issue(account models.Account, ttl time.Duration) (models.IssuedToken, error) {
	now := c.now().Truncate(time.Second)
	expiresAt := now.Add(ttl)

	token := jwt.NewWithClaims(c.alg, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			// Random ID keeps two tokens issued within the same second distinct
			ID:        uuid.NewString(),
			Subject:   account.Email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		Role: account.Role,
	})

	value, err := token.SignedString(c.key)
	if err != nil {
		return models.IssuedToken{}, fmt.Errorf("error while signing token. Err: %w", err)
	}

	return models.IssuedToken{Value: value, ExpiresAt: expiresAt}, nil
}

// Validate reports whether the token is well formed, signed with our key and not expired.
// The reason of a rejection is logged only.
func (c *Codec) Validate(token string) bool {
	_, err := c.Parse(token)
	if err != nil {
		c.logger.Warn("token rejected", "category", failureCategory(err), "error", err.Error())
		return false
	}

	return true
}

// Parse verifies the token and returns its claims
func (c *Codec) Parse(token string) (Claims, error) {
	if token == "" {
		return Claims{}, errEmptyToken
	}

	claims := Claims{}
	_, err := jwt.ParseWithClaims(
		token,
		&claims,
		func(t *jwt.Token) (any, error) {
			if alg := t.Method.Alg(); alg != c.alg.Alg() {
				return nil, fmt.Errorf("%w: %s", errUnsupportedAlg, alg)
			}
			return c.key, nil
		},
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		return Claims{}, fmt.Errorf("error while parsing or validating token. Err: %w", err)
	}

	if claims.Subject == "" || !claims.Role.Valid() {
		return Claims{}, errBadClaims
	}

	return claims, nil
}

// Subject returns the account email the token was issued for
func (c *Codec) Subject(token string) (string, error) {
	claims, err := c.Parse(token)
	return claims.Subject, err
}

// Role returns the account role the token was issued for
func (c *Codec) Role(token string) (models.Role, error) {
	claims, err := c.Parse(token)
	return claims.Role, err
}

var (
	errEmptyToken     = errors.New("token is empty")
	errBadClaims      = errors.New("token claims are incomplete")
	errUnsupportedAlg = errors.New("signing method is not supported")
)

func failureCategory(err error) string {
	switch {
	case errors.Is(err, errEmptyToken):
		return FailureEmpty
	case errors.Is(err, errBadClaims):
		return FailureClaims
	case errors.Is(err, jwt.ErrTokenExpired):
		return FailureExpired
	case errors.Is(err, jwt.ErrTokenMalformed):
		return FailureMalformed
	case errors.Is(err, errUnsupportedAlg), errors.Is(err, jwt.ErrTokenUnverifiable):
		return FailureUnsupported
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return FailureSignature
	default:
		return FailureClaims
	}
}
