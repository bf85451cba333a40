package middleware

import (
	"net/http"

	"github.com/nkiryanov/foodreview/internal/handlers/principal"
	"github.com/nkiryanov/foodreview/internal/handlers/render"
	"github.com/nkiryanov/foodreview/internal/models"
)

const loginRequired = "Login required"

// RequireAuthenticated rejects anonymous requests with 403
func RequireAuthenticated(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := principal.FromContext(r.Context()); !ok {
			render.AccessDenied(w, loginRequired)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRole rejects requests of principals without the role authority
func RequireRole(role models.Role) func(http.Handler) http.Handler {
	authority := role.Authorities()[0]

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := principal.FromContext(r.Context())
			switch {
			case !ok:
				render.AccessDenied(w, loginRequired)
			case !p.HasAuthority(authority):
				render.AccessDenied(w, "Not enough permissions")
			default:
				next.ServeHTTP(w, r)
			}
		})
	}
}
