package autosave

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/nkiryanov/autosave/internal/apperrors"
	"github.com/nkiryanov/autosave/internal/logger"
	"github.com/nkiryanov/autosave/internal/models"
	"github.com/nkiryanov/autosave/internal/repository"
	"github.com/nkiryanov/autosave/internal/service/savings"
	"github.com/nkiryanov/autosave/internal/service/split"
	"github.com/nkiryanov/autosave/internal/service/transfer"
)

type transferExecutor interface {
	Transfer(ctx context.Context, amount decimal.Decimal, reference string) models.TransferOutcome
}

type Config struct {
	// Share of every payment kept as savings, in [0, 1]
	Percentage decimal.Decimal

	// Write savings ledger entry for every processed payment
	LedgerEnabled bool
}

type Service struct {
	cfg      Config
	storage  repository.Storage
	executor transferExecutor
	logger   logger.Logger

	now func() time.Time
}

func NewService(cfg Config, storage repository.Storage, executor transferExecutor, l logger.Logger) (*Service, error) {
	if err := split.ValidatePercentage(cfg.Percentage); err != nil {
		return nil, err
	}

	return &Service{
		cfg:      cfg,
		storage:  storage,
		executor: executor,
		logger:   l.With("component", "autosave"),
		now:      time.Now,
	}, nil
}

type Result struct {
	Event   models.ProcessedEvent
	Split   split.Result
	Saving  *models.Saving // nil if ledger disabled
	Outcome models.TransferOutcome
}

// Process handles qualifying payment event
//
// Event marker and savings entry are committed together before any money moves.
// If the same event was processed before apperrors.ErrEventAlreadyProcessed is returned
// and nothing else happens. Transfer failures are not errors: check Result.Outcome.
func (s *Service) Process(ctx context.Context, ev models.PaymentEvent) (Result, error) {
	var res Result

	if !models.IsQualifyingEvent(ev.EventType) {
		return res, apperrors.ErrEventNotQualifying
	}
	if ev.Key == "" {
		return res, fmt.Errorf("%w: empty event key", apperrors.ErrEventInvalid)
	}

	parts, err := split.Split(ev.AmountPaid, s.cfg.Percentage)
	if err != nil {
		return res, fmt.Errorf("%w: %w", apperrors.ErrEventInvalid, err)
	}
	res.Split = parts

	now := s.now()
	l := s.logger.With("event_key", ev.Key)

	err = s.storage.InTx(ctx, func(storage repository.Storage) error {
		marker, err := storage.Event().CreateEvent(ctx, models.ProcessedEvent{
			Key:             ev.Key,
			EventType:       ev.EventType,
			AmountPaid:      ev.AmountPaid,
			Savings:         parts.Savings,
			Spending:        parts.Spending,
			CustomerEmail:   ev.CustomerEmail,
			ReceivedAt:      now,
			TransferOutcome: models.TransferPending,
		})
		if err != nil {
			return err
		}
		res.Event = marker

		if !s.cfg.LedgerEnabled {
			return nil
		}

		saving, err := savings.NewService(storage.Saving()).Record(ctx, parts.Savings, now, ev.Key)
		if err != nil {
			return err
		}
		res.Saving = &saving

		return nil
	})

	switch {
	case errors.Is(err, apperrors.ErrEventAlreadyProcessed):
		l.Info("Event already processed, skipping")
		return res, err
	case err != nil:
		l.Error("Failed to persist event", "error", err)
		return res, fmt.Errorf("failed to persist event: %w", err)
	}

	l.Info("Payment split", "amount_paid", ev.AmountPaid, "savings", parts.Savings, "spending", parts.Spending)

	providerRef := ev.TransactionReference
	if providerRef == "" {
		providerRef = ev.PaymentReference
	}

	res.Outcome = s.executor.Transfer(ctx, parts.Spending, transfer.Reference(providerRef, now))

	// Request context may be gone already, outcome has to be saved anyway
	saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	marker, err := s.storage.Event().SetTransferOutcome(saveCtx, ev.Key, res.Outcome.Reference, res.Outcome.Status, s.now())
	if err != nil {
		l.Error("Failed to save transfer outcome", "error", err, "outcome", res.Outcome.Status)
		return res, nil
	}
	res.Event = marker

	return res, nil
}
