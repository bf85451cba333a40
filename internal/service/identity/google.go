package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/idtoken"

	"github.com/nkiryanov/foodreview/internal/apperrors"
)

const googleUserInfoURL = "https://openidconnect.googleapis.com/v1/userinfo"

type GoogleConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string

	// Google endpoints are used if empty
	AuthURL     string
	TokenURL    string
	UserInfoURL string
}

// GoogleProvider runs the OAuth2 authorization code flow against Google
type GoogleProvider struct {
	oauth       *oauth2.Config
	userInfoURL string
}

func NewGoogleProvider(cfg GoogleConfig) *GoogleProvider {
	endpoint := google.Endpoint
	if cfg.AuthURL != "" {
		endpoint.AuthURL = cfg.AuthURL
	}
	if cfg.TokenURL != "" {
		endpoint.TokenURL = cfg.TokenURL
	}

	userInfoURL := cfg.UserInfoURL
	if userInfoURL == "" {
		userInfoURL = googleUserInfoURL
	}

	return &GoogleProvider{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Endpoint:     endpoint,
			Scopes:       []string{"openid", "email", "profile"},
		},
		userInfoURL: userInfoURL,
	}
}

func (p *GoogleProvider) Name() string {
	return ProviderGoogle
}

func (p *GoogleProvider) AuthCodeURL(state string) string {
	return p.oauth.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

// Attributes exchanges the code and returns the userinfo claims
func (p *GoogleProvider) Attributes(ctx context.Context, code string) (map[string]any, error) {
	token, err := p.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: code exchange failed: %w", apperrors.ErrFederation, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.userInfoURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := p.oauth.Client(ctx, token).Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: userinfo request failed: %w", apperrors.ErrFederation, err)
	}
	defer resp.Body.Close() // nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: userinfo responded %d: %s", apperrors.ErrFederation, resp.StatusCode, body)
	}

	var attrs map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&attrs); err != nil {
		return nil, fmt.Errorf("%w: userinfo is not json: %w", apperrors.ErrFederation, err)
	}

	return attrs, nil
}

// GoogleIDTokenVerifier validates ID tokens issued to our client, e.g. by Google Sign-In buttons
type GoogleIDTokenVerifier struct {
	ClientID string
}

func (v GoogleIDTokenVerifier) Verify(ctx context.Context, credential string) (map[string]any, error) {
	payload, err := idtoken.Validate(ctx, credential, v.ClientID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrFederation, err)
	}

	attrs := maps.Clone(payload.Claims)
	if attrs == nil {
		attrs = make(map[string]any, 1)
	}
	attrs["sub"] = payload.Subject

	return attrs, nil
}
