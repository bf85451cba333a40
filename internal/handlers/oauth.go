package handlers

import (
	"net/http"
	"net/url"

	"github.com/nkiryanov/foodreview/internal/handlers/render"
	"github.com/nkiryanov/foodreview/internal/logger"
	"github.com/nkiryanov/foodreview/internal/models"
)

// Front-end pages the user agent lands on after federated sign in
type loginRedirects struct {
	success string
	failure string
}

func newLoginRedirects(frontendURL string) loginRedirects {
	return loginRedirects{
		success: frontendURL + "/login/success",
		failure: frontendURL + "/login/failed",
	}
}

// Tokens travel in the query string, the front-end has to move them out of the URL
func (lr loginRedirects) successURL(pair models.TokenPair) string {
	q := url.Values{}
	q.Set("accessToken", pair.Access.Value)
	q.Set("refreshToken", pair.Refresh.Value)
	return lr.success + "?" + q.Encode()
}

func handleOAuthAuthorize(federation federationService, redirects loginRedirects, logger logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		provider := r.PathValue("provider")

		target, err := federation.AuthCodeURL(provider)
		if err != nil {
			logger.Warn("oauth2 authorization failed", "provider", provider, "error", err.Error())
			http.Redirect(w, r, redirects.failure, http.StatusFound)
			return
		}

		http.Redirect(w, r, target, http.StatusFound)
	})
}

func handleOAuthCallback(federation federationService, redirects loginRedirects, logger logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		provider := r.PathValue("provider")
		q := r.URL.Query()

		if providerErr := q.Get("error"); providerErr != "" {
			logger.Warn("oauth2 provider returned error", "provider", provider, "error", providerErr)
			http.Redirect(w, r, redirects.failure, http.StatusFound)
			return
		}

		pair, err := federation.Complete(r.Context(), provider, q.Get("code"), q.Get("state"))
		if err != nil {
			logger.Warn("oauth2 sign in failed", "provider", provider, "error", err.Error())
			http.Redirect(w, r, redirects.failure, http.StatusFound)
			return
		}

		http.Redirect(w, r, redirects.successURL(pair), http.StatusFound)
	})
}

func handleIDTokenSignIn(federation federationService, provider string, logger logger.Logger) http.Handler {
	type request struct {
		Credential string `json:"credential" validate:"required"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		pair, err := federation.SignInWithIDToken(r.Context(), provider, data.Credential)
		if err != nil {
			logger.Warn("id token sign in failed", "provider", provider, "error", err.Error())
			renderError(w, logger, err)
			return
		}

		render.JSON(w, newTokenPairResponse(pair))
	})
}
