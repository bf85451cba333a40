package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nkiryanov/foodreview/internal/db"
	"github.com/nkiryanov/foodreview/internal/handlers"
	"github.com/nkiryanov/foodreview/internal/logger"
	"github.com/nkiryanov/foodreview/internal/repository/postgres"
	"github.com/nkiryanov/foodreview/internal/service/auth"
	"github.com/nkiryanov/foodreview/internal/service/auth/tokencodec"
	"github.com/nkiryanov/foodreview/internal/service/identity"
	"github.com/nkiryanov/foodreview/internal/service/user"
)

const shutdownTimeout = 5 * time.Second

type ServerApp struct {
	ListenAddr string
	Handler    http.Handler

	pool   *pgxpool.Pool
	logger logger.Logger
}

func NewServerApp(ctx context.Context, c *Config) (*ServerApp, error) {
	// Initialize logger
	logger, err := logger.New(c.Environment, c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("error while initializing logger: %w", err)
	}

	// Connect to the database and run migrations
	pool, err := db.ConnectAndMigrate(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("error while connecting to db. Err: %w", err)
	}

	storage := postgres.NewStorage(pool)

	// Initialize services
	codec, err := tokencodec.New(tokencodec.Config{
		SecretKey:  c.SecretKey,
		AccessTTL:  c.AccessTTL,
		RefreshTTL: c.RefreshTTL,
	}, logger)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("error while creating token codec. Err: %w", err)
	}

	authService, err := auth.NewService(auth.Config{}, codec, storage, logger)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("error while creating auth service. Err: %w", err)
	}

	state, err := identity.NewStateCodec(c.SecretKey, 0, nil)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("error while creating oauth2 state codec. Err: %w", err)
	}

	var federationOpts []identity.Option
	if c.GoogleClientID != "" {
		federationOpts = append(federationOpts,
			identity.WithProvider(identity.NewGoogleProvider(identity.GoogleConfig{
				ClientID:     c.GoogleClientID,
				ClientSecret: c.GoogleClientSecret,
				RedirectURL:  c.GoogleRedirectURL,
			})),
			identity.WithIDTokenVerifier(identity.ProviderGoogle, identity.GoogleIDTokenVerifier{ClientID: c.GoogleClientID}),
		)
	} else {
		logger.Warn("google client id is not set, federated sign in disabled")
	}
	federation := identity.NewFederation(state, identity.NewResolver(storage, authService, logger), logger, federationOpts...)

	userService := user.NewService(storage, logger)

	mux := handlers.NewRouter(
		handlers.Config{
			FrontendURL: c.FrontendURL,
			CORSOrigins: c.CORSOrigins,
		},
		codec,
		storage.Account(),
		authService,
		federation,
		userService,
		logger,
	)

	return &ServerApp{
		ListenAddr: c.ListenAddr,
		Handler:    mux,
		pool:       pool,
		logger:     logger,
	}, nil
}

// Run starts http server and closes gracefully on context cancellation
func (s *ServerApp) Run(ctx context.Context) error {
	defer s.pool.Close()

	httpServer := &http.Server{
		Addr:              s.ListenAddr,
		Handler:           s.Handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	idleConnsClosed := make(chan struct{})
	srvCtx, srvCtxCancel := context.WithCancel(ctx)
	defer srvCtxCancel()

	go func() {
		<-srvCtx.Done()

		timeoutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := httpServer.Shutdown(timeoutCtx); errors.Is(err, context.DeadlineExceeded) {
			s.logger.Error("HTTP server shutdown timeout exceeded, forcing shutdown...")
		}
		s.logger.Info("HTTP server stopped")
		close(idleConnsClosed)
	}()

	// Listen and serve until context is cancelled; then close gracefully connections
	s.logger.Info("Starting server", "address", s.ListenAddr)
	err := httpServer.ListenAndServe()
	srvCtxCancel()
	<-idleConnsClosed

	return err
}
