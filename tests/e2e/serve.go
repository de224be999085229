package e2e

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/nkiryanov/autosave/internal/handlers"
	"github.com/nkiryanov/autosave/internal/handlers/middleware"
	"github.com/nkiryanov/autosave/internal/logger"
	"github.com/nkiryanov/autosave/internal/repository"
	"github.com/nkiryanov/autosave/internal/repository/postgres"
	"github.com/nkiryanov/autosave/internal/service/auth"
	"github.com/nkiryanov/autosave/internal/service/auth/tokenmanager"
	"github.com/nkiryanov/autosave/internal/service/autosave"
	"github.com/nkiryanov/autosave/internal/service/monnify"
	"github.com/nkiryanov/autosave/internal/service/savings"
	"github.com/nkiryanov/autosave/internal/service/transfer"
	"github.com/nkiryanov/autosave/internal/testutil"
)

const (
	WebhookSecret    = "e2e-monnify-secret"
	OperatorPassword = "e2e-operator-password"

	DestinationBankCode = "999992"
	DestinationAccount  = "0123456789"
	SourceWalletAccount = "9876543210"
)

type Env struct {
	URL     string
	Monnify *FakeMonnify
	Storage repository.Storage
	Auth    *auth.AuthService
}

// Create db transaction and run server in with that connection (one connection cause one transaction)
// Monnify is faked with http server; its behaviour can be changed via Env.Monnify
func ServeWithTx(dbpool *pgxpool.Pool, t *testing.T, fn func(tx pgx.Tx, env Env)) {
	testutil.InTx(dbpool, t, func(tx pgx.Tx) {
		l := logger.NewNoOpLogger()
		fake := StartFakeMonnify(t)

		// Initialize repositories
		storage := postgres.NewStorage(tx)

		// Initialize services
		client, err := monnify.NewClient(monnify.Config{
			APIKey:    "MK_TEST_E2E",
			SecretKey: WebhookSecret,
			BaseURL:   fake.URL,
			Timeout:   time.Second,
		}, l)
		require.NoError(t, err, "monnify client should be created without errors")

		executor := transfer.NewExecutor(client, transfer.Destination{
			BankCode:      DestinationBankCode,
			AccountNumber: DestinationAccount,
			SourceAccount: SourceWalletAccount,
		}, l)

		autosaveService, err := autosave.NewService(autosave.Config{
			Percentage:    decimal.RequireFromString("0.20"),
			LedgerEnabled: true,
		}, storage, executor, l)
		require.NoError(t, err, "autosave service should be created without errors")

		hasher := auth.BcryptHasher{Cost: bcrypt.MinCost}
		hash, err := hasher.Hash(OperatorPassword)
		require.NoError(t, err)
		tokenManager, err := tokenmanager.New(tokenmanager.Config{SecretKey: "test-secret"})
		require.NoError(t, err, "token manager should be created without errors")
		authService, err := auth.NewService(auth.Config{PasswordHash: hash, Hasher: hasher}, tokenManager)
		require.NoError(t, err, "auth service starting error")

		// Complete all together as router
		router := handlers.NewRouter(WebhookSecret, autosaveService, &handlers.OperatorAPI{
			Auth:    authService,
			Savings: savings.NewService(storage.Saving()),
			Events:  storage.Event(),
		}, l)

		// Run http server with the router in transaction
		srv := httptest.NewServer(router)
		defer srv.Close()

		fn(tx, Env{
			URL:     srv.URL,
			Monnify: fake,
			Storage: storage,
			Auth:    authService,
		})
	})
}

// Build webhook request signed the way Monnify does
func SignedWebhook(t *testing.T, srvURL string, body string) *http.Request {
	t.Helper()

	req, err := http.NewRequest(http.MethodPost, srvURL+"/webhook", strings.NewReader(body))
	require.NoError(t, err, "failed to create request")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(middleware.SignatureHeader, middleware.Sign(WebhookSecret, []byte(body)))

	return req
}
