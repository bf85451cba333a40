package handlers

import (
	"errors"
	"net/http"

	"github.com/nkiryanov/foodreview/internal/apperrors"
	"github.com/nkiryanov/foodreview/internal/handlers/render"
	"github.com/nkiryanov/foodreview/internal/logger"
)

const (
	codeInvalidRequest = "INVALID_REQUEST"
	codeInternal       = "INTERNAL_ERROR"
)

// First match wins: federation failures may wrap storage errors
var domainErrors = []struct {
	err     error
	status  int
	code    string
	message string
}{
	{apperrors.ErrUnsupportedProvider, http.StatusUnauthorized, "UNSUPPORTED_PROVIDER", "Identity provider is not supported"},
	{apperrors.ErrFederation, http.StatusUnauthorized, "INVALID_GOOGLE_TOKEN", "Federated identity could not be verified"},
	{apperrors.ErrEmailAlreadyExists, http.StatusBadRequest, "EMAIL_ALREADY_EXISTS", "Email is already in use"},
	{apperrors.ErrNameAlreadyExists, http.StatusBadRequest, "NAME_ALREADY_EXISTS", "Name is already in use"},
	{apperrors.ErrUserNotFound, http.StatusNotFound, "USER_NOT_FOUND", "User not found"},
	{apperrors.ErrInvalidPassword, http.StatusBadRequest, "INVALID_PASSWORD", "Password does not match"},
	{apperrors.ErrInvalidRefreshToken, http.StatusBadRequest, "INVALID_REFRESH_TOKEN", "Refresh token is invalid"},
}

// renderError writes the domain error response; unknown errors are logged and hidden behind 500
func renderError(w http.ResponseWriter, l logger.Logger, err error) {
	for _, de := range domainErrors {
		if errors.Is(err, de.err) {
			render.Error(w, de.code, de.message, de.status)
			return
		}
	}

	l.Error("request failed", "error", err.Error())
	render.Error(w, codeInternal, "Internal server error", http.StatusInternalServerError)
}
