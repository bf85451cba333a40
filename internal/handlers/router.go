package handlers

import (
	"context"
	"net/http"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	"github.com/nkiryanov/foodreview/internal/handlers/middleware"
	"github.com/nkiryanov/foodreview/internal/logger"
	"github.com/nkiryanov/foodreview/internal/models"
	"github.com/nkiryanov/foodreview/internal/service/auth"
	"github.com/nkiryanov/foodreview/internal/service/identity"
	"github.com/nkiryanov/foodreview/internal/service/user"
)

type Config struct {
	// Front-end base url, federated sign in lands on <FrontendURL>/login/success or /login/failed
	FrontendURL string

	// Origins allowed to call the api from a browser. FrontendURL if empty.
	CORSOrigins []string

	// Paths that skip authentication. middleware.DefaultPublicPrefixes if nil.
	PublicPrefixes []string
}

// chain applies middlewares in the given order: m1(m2(...(h)))
func chain(h http.Handler, mds ...func(next http.Handler) http.Handler) http.Handler {
	for i := len(mds) - 1; i >= 0; i-- {
		h = mds[i](h)
	}
	return h
}

func NewRouter(
	cfg Config,
	tokens tokenValidator,
	accounts accountFinder,
	authService authService,
	federation federationService,
	userService userService,
	logger logger.Logger,
) http.Handler {
	withAuth := func(h http.Handler) http.Handler {
		return middleware.RequireAuthenticated(h)
	}
	withAdmin := func(h http.Handler) http.Handler {
		return chain(h, middleware.RequireAuthenticated, middleware.RequireRole(models.RoleAdmin))
	}
	redirects := newLoginRedirects(cfg.FrontendURL)

	apiauth := http.NewServeMux()
	apiauth.Handle("POST /signup", handleSignup(authService, logger))
	apiauth.Handle("POST /login", handleLogin(authService, logger))
	apiauth.Handle("POST /refresh", handleTokenRefresh(authService, logger))
	apiauth.Handle("POST /logout", handleLogout(authService, logger))
	apiauth.Handle("GET /check-email", handleCheckEmail(fromQuery("email"), authService, logger))
	apiauth.Handle("POST /check-email", handleCheckEmail(fromJSON("email"), authService, logger))
	apiauth.Handle("GET /check-name", handleCheckName(fromQuery("name"), authService, logger))
	apiauth.Handle("POST /check-name", handleCheckName(fromJSON("name"), authService, logger))
	apiauth.Handle("POST /google", handleIDTokenSignIn(federation, identity.ProviderGoogle, logger))

	root := http.NewServeMux()
	root.Handle("/api/auth/", http.StripPrefix("/api/auth", apiauth))
	root.Handle("GET /oauth2/authorization/{provider}", handleOAuthAuthorize(federation, redirects, logger))
	root.Handle("GET /login/oauth2/code/{provider}", handleOAuthCallback(federation, redirects, logger))

	root.Handle("GET /api/user/me", withAuth(handleUserMe(userService, logger)))
	root.Handle("PUT /api/user/me", withAuth(handleUpdateMe(userService, logger)))
	root.Handle("GET /api/protected-endpoint", withAuth(handleProtected()))
	root.Handle("POST /api/admin/accounts/{email}/badge", withAdmin(handleRecomputeBadge(userService, logger)))

	publicPrefixes := cfg.PublicPrefixes
	if publicPrefixes == nil {
		publicPrefixes = middleware.DefaultPublicPrefixes
	}

	handler := chain(root,
		chimiddleware.RequestID,
		chimiddleware.RealIP,
		middleware.LoggerMiddleware(logger),
		chimiddleware.Recoverer,
		newCORS(cfg).Handler,
		middleware.Authenticate(tokens, accounts, publicPrefixes, logger),
	)

	return handler
}

func newCORS(cfg Config) *cors.Cors {
	origins := cfg.CORSOrigins
	if len(origins) == 0 && cfg.FrontendURL != "" {
		origins = []string{cfg.FrontendURL}
	}

	return cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Authorization"},
		AllowCredentials: true,
		MaxAge:           3600,
	})
}

type tokenValidator interface {
	Validate(token string) bool
	Subject(token string) (string, error)
}

type accountFinder interface {
	// Has to return apperrors.ErrUserNotFound if there is no such account
	GetAccountByEmail(ctx context.Context, email string) (models.Account, error)
}

type authService interface {
	// Has to return apperrors.ErrEmailAlreadyExists or apperrors.ErrNameAlreadyExists when taken
	Signup(ctx context.Context, p auth.SignupParams) (models.Account, error)

	// Has to return apperrors.ErrUserNotFound or apperrors.ErrInvalidPassword
	Login(ctx context.Context, email string, password string) (models.TokenPair, error)

	// Has to return apperrors.ErrInvalidRefreshToken if token is not the stored one
	Refresh(ctx context.Context, refresh string) (models.TokenPair, error)

	Logout(ctx context.Context, refresh string) error

	EmailAvailable(ctx context.Context, email string) (bool, error)
	NameAvailable(ctx context.Context, name string) (bool, error)
}

type federationService interface {
	// Url of the provider consent screen
	AuthCodeURL(provider string) (string, error)

	// Finish authorization code flow
	Complete(ctx context.Context, provider string, code string, state string) (models.TokenPair, error)

	SignInWithIDToken(ctx context.Context, provider string, credential string) (models.TokenPair, error)
}

type userService interface {
	Profile(ctx context.Context, email string) (user.Profile, error)
	UpdateProfile(ctx context.Context, email string, upd user.ProfileUpdate) (models.Account, error)
	RecomputeBadge(ctx context.Context, email string) (models.Account, error)
}
