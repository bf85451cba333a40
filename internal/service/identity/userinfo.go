package identity

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/nkiryanov/foodreview/internal/apperrors"
)

const ProviderGoogle = "google"

// UserInfo is the identity asserted by a federated provider
type UserInfo struct {
	Provider string
	ID       string
	Email    string
	Name     string

	// Nil when the provider does not report it
	EmailVerified *bool
}

// NewUserInfo normalizes provider attributes. Only google is supported.
func NewUserInfo(provider string, attrs map[string]any) (UserInfo, error) {
	switch strings.ToLower(provider) {
	case ProviderGoogle:
		return googleUserInfo(attrs), nil
	default:
		return UserInfo{}, fmt.Errorf("%w: %q", apperrors.ErrUnsupportedProvider, provider)
	}
}

// Attributes of OpenID Connect userinfo or ID token claims
func googleUserInfo(attrs map[string]any) UserInfo {
	return UserInfo{
		Provider: ProviderGoogle,
		ID:       stringAttr(attrs, "sub"),
		Email:    stringAttr(attrs, "email"),
		Name:     stringAttr(attrs, "name"),

		EmailVerified: boolAttr(attrs, "email_verified"),
	}
}

func stringAttr(attrs map[string]any, key string) string {
	v, _ := attrs[key].(string)
	return strings.TrimSpace(v)
}

// Google sends a JSON bool, older ID tokens carry the string "true"/"false"
func boolAttr(attrs map[string]any, key string) *bool {
	switch v := attrs[key].(type) {
	case bool:
		return &v
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return nil
		}
		return &b
	default:
		return nil
	}
}
