package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/nkiryanov/autosave/internal/db"
	"github.com/nkiryanov/autosave/internal/handlers"
	"github.com/nkiryanov/autosave/internal/logger"
	"github.com/nkiryanov/autosave/internal/repository/postgres"
	"github.com/nkiryanov/autosave/internal/service/auth"
	"github.com/nkiryanov/autosave/internal/service/auth/tokenmanager"
	"github.com/nkiryanov/autosave/internal/service/autosave"
	"github.com/nkiryanov/autosave/internal/service/monnify"
	"github.com/nkiryanov/autosave/internal/service/savings"
	"github.com/nkiryanov/autosave/internal/service/transfer"
)

const shutdownTimeout = 5 * time.Second

type ServerApp struct {
	ListenAddr string
	Handler    http.Handler

	logger logger.Logger
	close  func()
}

func NewServerApp(ctx context.Context, c *Config) (*ServerApp, error) {
	// Initialize logger
	l, err := logger.New(c.Environment, c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("error while initializing logger: %w", err)
	}

	env, err := monnify.ParseEnvironment(c.MonnifyEnvironment, c.MonnifyAPIKey)
	if err != nil {
		return nil, err
	}

	// Connect to the database and run migrations
	pool, err := db.ConnectAndMigrate(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("error while connecting to db. Err: %w", err)
	}

	// Initialize repositories
	storage := postgres.NewStorage(pool)

	// Initialize services
	client, err := monnify.NewClient(monnify.Config{
		APIKey:      c.MonnifyAPIKey,
		SecretKey:   c.MonnifySecret,
		Environment: env,
		BaseURL:     c.MonnifyBaseURL,
		Timeout:     c.MonnifyTimeout,
	}, l)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("error while creating monnify client. Err: %w", err)
	}

	executor := transfer.NewExecutor(client, transfer.Destination{
		BankCode:      c.BankCode,
		AccountNumber: c.AccountNumber,
		SourceAccount: c.WalletAccount,
	}, l)

	autosaveService, err := autosave.NewService(autosave.Config{
		Percentage:    c.SavingsPercentage,
		LedgerEnabled: c.LedgerEnabled,
	}, storage, executor, l)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("error while creating autosave service. Err: %w", err)
	}

	var operator *handlers.OperatorAPI
	if c.OperatorEnabled() {
		tokenManager, err := tokenmanager.New(tokenmanager.Config{SecretKey: c.SecretKey})
		if err != nil {
			pool.Close()
			return nil, fmt.Errorf("error while creating token manager. Err: %w", err)
		}
		authService, err := auth.NewService(auth.Config{PasswordHash: c.OperatorPasswordHash}, tokenManager)
		if err != nil {
			pool.Close()
			return nil, fmt.Errorf("error while creating auth service. Err: %w", err)
		}

		operator = &handlers.OperatorAPI{
			Auth:    authService,
			Savings: savings.NewService(storage.Saving()),
			Events:  storage.Event(),
		}
	}

	endpoints := client.Endpoints()
	l.Info("Service configured",
		"monnify_environment", env,
		"monnify_auth_url", endpoints.Auth,
		"savings_percentage", c.SavingsPercentage,
		"ledger_enabled", c.LedgerEnabled,
		"operator_api", operator != nil,
	)

	return &ServerApp{
		ListenAddr: c.ListenAddr,
		Handler:    handlers.NewRouter(c.MonnifySecret, autosaveService, operator, l),
		logger:     l,
		close:      pool.Close,
	}, nil
}

// Run starts http server and closes gracefully on context cancellation
func (s *ServerApp) Run(ctx context.Context) error {
	defer s.close()

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

	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
