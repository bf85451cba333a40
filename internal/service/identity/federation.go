package identity

import (
	"context"
	"fmt"
	"strings"

	"github.com/nkiryanov/foodreview/internal/apperrors"
	"github.com/nkiryanov/foodreview/internal/logger"
	"github.com/nkiryanov/foodreview/internal/models"
)

// Provider of the OAuth2 authorization code flow
type Provider interface {
	Name() string

	// URL of the provider consent page
	AuthCodeURL(state string) string

	// Exchange the code and return identity attributes
	Attributes(ctx context.Context, code string) (map[string]any, error)
}

// Verifier of provider issued ID tokens
type IDTokenVerifier interface {
	Verify(ctx context.Context, credential string) (map[string]any, error)
}

type identityResolver interface {
	Resolve(ctx context.Context, provider string, attrs map[string]any) (models.Account, models.TokenPair, error)
}

type Option func(*Federation)

func WithProvider(p Provider) Option {
	return func(f *Federation) {
		f.providers[strings.ToLower(p.Name())] = p
	}
}

func WithIDTokenVerifier(provider string, v IDTokenVerifier) Option {
	return func(f *Federation) {
		f.verifiers[strings.ToLower(provider)] = v
	}
}

// Federation drives federated sign in: OAuth2 redirects and ID token sign in
type Federation struct {
	providers map[string]Provider
	verifiers map[string]IDTokenVerifier
	state     *StateCodec
	resolver  identityResolver
	logger    logger.Logger
}

func NewFederation(state *StateCodec, resolver identityResolver, l logger.Logger, opts ...Option) *Federation {
	f := &Federation{
		providers: make(map[string]Provider),
		verifiers: make(map[string]IDTokenVerifier),
		state:     state,
		resolver:  resolver,
		logger:    l,
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// AuthCodeURL returns the URL to redirect the user agent to
func (f *Federation) AuthCodeURL(provider string) (string, error) {
	p, err := f.provider(provider)
	if err != nil {
		return "", err
	}

	state, err := f.state.Issue(p.Name())
	if err != nil {
		return "", err
	}

	return p.AuthCodeURL(state), nil
}

// Complete handles the provider callback and signs the user in
func (f *Federation) Complete(ctx context.Context, provider string, code string, state string) (models.TokenPair, error) {
	p, err := f.provider(provider)
	if err != nil {
		return models.TokenPair{}, err
	}

	if err := f.state.Verify(state, p.Name()); err != nil {
		return models.TokenPair{}, err
	}

	if code == "" {
		return models.TokenPair{}, fmt.Errorf("%w: authorization code is missing", apperrors.ErrFederation)
	}

	attrs, err := p.Attributes(ctx, code)
	if err != nil {
		return models.TokenPair{}, err
	}

	return f.resolve(ctx, p.Name(), attrs)
}

// SignInWithIDToken signs the user in with an ID token obtained by the front-end
func (f *Federation) SignInWithIDToken(ctx context.Context, provider string, credential string) (models.TokenPair, error) {
	v, ok := f.verifiers[strings.ToLower(provider)]
	if !ok {
		return models.TokenPair{}, fmt.Errorf("%w: %q", apperrors.ErrUnsupportedProvider, provider)
	}

	attrs, err := v.Verify(ctx, credential)
	if err != nil {
		return models.TokenPair{}, err
	}

	return f.resolve(ctx, provider, attrs)
}

func (f *Federation) resolve(ctx context.Context, provider string, attrs map[string]any) (models.TokenPair, error) {
	account, pair, err := f.resolver.Resolve(ctx, provider, attrs)
	if err != nil {
		return models.TokenPair{}, err
	}

	f.logger.Info("federated sign in", "provider", provider, "account_id", account.ID)
	return pair, nil
}

func (f *Federation) provider(name string) (Provider, error) {
	p, ok := f.providers[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", apperrors.ErrUnsupportedProvider, name)
	}
	return p, nil
}
