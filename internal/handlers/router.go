package handlers

import (
	"context"
	"net/http"

	"github.com/nkiryanov/autosave/internal/handlers/middleware"
	"github.com/nkiryanov/autosave/internal/logger"
	"github.com/nkiryanov/autosave/internal/models"
	"github.com/nkiryanov/autosave/internal/repository"
	"github.com/nkiryanov/autosave/internal/service/autosave"
)

const LivenessMessage = "Monnify Savings Bot is Running"

// chain applies middlewares in the given order: m1(m2(...(h)))
func chain(h http.Handler, mds ...func(next http.Handler) http.Handler) http.Handler {
	for i := len(mds) - 1; i >= 0; i-- {
		h = mds[i](h)
	}
	return h
}

// Operator API services; API is not mounted if nil
type OperatorAPI struct {
	Auth    authService
	Savings savingsService
	Events  eventLister
}

func NewRouter(
	webhookSecret string,
	autosaveService autosaveService,
	operator *OperatorAPI,
	logger logger.Logger,
) http.Handler {
	withSignature := middleware.SignatureMiddleware(webhookSecret, logger)

	root := http.NewServeMux()
	root.Handle("GET /{$}", handleLiveness())
	root.Handle("POST /webhook", withSignature(handleWebhook(autosaveService, logger)))

	if operator != nil {
		withAuth := middleware.AuthMiddleware(operator.Auth)

		api := http.NewServeMux()
		api.Handle("POST /operator/login", handleOperatorLogin(operator.Auth, logger))
		api.Handle("GET /savings", withAuth(handleListSavings(operator.Savings, logger)))
		api.Handle("GET /savings/total", withAuth(handleSavingsTotal(operator.Savings, logger)))
		api.Handle("GET /events", withAuth(handleListEvents(operator.Events, logger)))

		root.Handle("/api/", http.StripPrefix("/api", api))
	}

	handler := chain(root,
		middleware.LoggerMiddleware(logger),
	)

	return handler
}

func handleLiveness() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte(LivenessMessage))
	})
}

type autosaveService interface {
	// Process qualifying payment event
	// Has to return apperrors.ErrEventAlreadyProcessed if event was processed before
	// Has to return apperrors.ErrEventInvalid or apperrors.ErrEventNotQualifying for events that must be ignored
	Process(ctx context.Context, ev models.PaymentEvent) (autosave.Result, error)
}

type authService interface {
	// Has to return apperrors.ErrInvalidCredentials if password is wrong
	Login(ctx context.Context, password string) (models.IssuedToken, error)

	// Has to return apperrors.ErrInvalidToken if token is not valid
	ParseAccess(ctx context.Context, access string) (string, error)
}

type savingsService interface {
	List(ctx context.Context, limit int) ([]models.Saving, error)
	Total(ctx context.Context) (models.SavingsTotal, error)
}

type eventLister interface {
	ListEvents(ctx context.Context, opts repository.ListEventsOpts) ([]models.ProcessedEvent, error)
}
