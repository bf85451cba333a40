package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/nkiryanov/foodreview/internal/apperrors"
	"github.com/nkiryanov/foodreview/internal/handlers/principal"
	"github.com/nkiryanov/foodreview/internal/handlers/render"
	"github.com/nkiryanov/foodreview/internal/models"
)

const bearerPrefix = "Bearer "

// Paths served to anyone, the Authorization header is not even read
var DefaultPublicPrefixes = []string{
	"/api/auth/",
	"/reviews/users/",
	"/oauth2/",
	"/login/",
}

type tokenValidator interface {
	Validate(token string) bool
	Subject(token string) (string, error)
}

type accountFinder interface {
	// Has to return apperrors.ErrUserNotFound if there is no such account
	GetAccountByEmail(ctx context.Context, email string) (models.Account, error)
}

type warnLogger interface {
	Warn(msg string, args ...any)
}

// Authenticate attaches the bearer token owner to the request context.
// Requests without bearer token pass as anonymous, requests with a bad one are rejected with 403.
func Authenticate(tokens tokenValidator, accounts accountFinder, publicPrefixes []string, l warnLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isPublic(r.URL.Path, publicPrefixes) {
				next.ServeHTTP(w, r)
				return
			}

			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, bearerPrefix) {
				next.ServeHTTP(w, r)
				return
			}

			token := strings.TrimPrefix(header, bearerPrefix)
			if !tokens.Validate(token) {
				render.AccessDenied(w, "Invalid or expired token")
				return
			}

			email, err := tokens.Subject(token)
			if err != nil {
				render.AccessDenied(w, "Invalid or expired token")
				return
			}

			account, err := accounts.GetAccountByEmail(r.Context(), email)
			switch {
			case err == nil:
			case errors.Is(err, apperrors.ErrUserNotFound):
				l.Warn("token subject has no account", "uri", r.RequestURI)
				render.AccessDenied(w, "Account not found")
				return
			default:
				l.Warn("can't load token subject", "error", err.Error())
				render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
				return
			}

			ctx := principal.New(r.Context(), principal.FromAccount(account))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func isPublic(path string, prefixes []string) bool {
	for _, prefix := range prefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}
