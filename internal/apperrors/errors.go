package apperrors

import (
	"errors"
)

var (
	ErrEmailAlreadyExists = errors.New("email already exists")
	ErrNameAlreadyExists  = errors.New("name already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidPassword    = errors.New("invalid password")

	ErrInvalidRefreshToken = errors.New("invalid refresh token")

	ErrUnsupportedProvider = errors.New("unsupported identity provider")
	ErrFederation          = errors.New("federated identity rejected")
	ErrOAuthState          = errors.New("oauth state is invalid or expired")
)
