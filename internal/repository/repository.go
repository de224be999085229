package repository

import (
	"context"
	"time"

	"github.com/nkiryanov/autosave/internal/models"
)

const DefaultListLimit = 100

// Savings ledger repository
type SavingRepo interface {
	// Append ledger entry
	// If entry for the same event key exists already has to return apperrors.ErrEventAlreadyProcessed
	CreateSaving(ctx context.Context, saving models.Saving) (models.Saving, error)

	// List entries, newest first
	ListSavings(ctx context.Context, opts ListSavingsOpts) ([]models.Saving, error)

	// Sum of all ledger entries in the given statuses (all statuses if empty)
	TotalSavings(ctx context.Context, statuses []string) (models.SavingsTotal, error)
}

type ListSavingsOpts struct {
	Statuses []string
	Limit    int
}

// Processed webhook events repository
type EventRepo interface {
	// Save event marker
	// If event with the key exists already has to return apperrors.ErrEventAlreadyProcessed
	CreateEvent(ctx context.Context, event models.ProcessedEvent) (models.ProcessedEvent, error)

	// Save transfer attempt result
	// If event not found must return apperrors.ErrEventNotFound
	SetTransferOutcome(ctx context.Context, key string, reference string, outcome string, processedAt time.Time) (models.ProcessedEvent, error)

	// Get event by key
	// If event not found must return apperrors.ErrEventNotFound
	GetEvent(ctx context.Context, key string) (models.ProcessedEvent, error)

	// List events, newest first
	ListEvents(ctx context.Context, opts ListEventsOpts) ([]models.ProcessedEvent, error)
}

type ListEventsOpts struct {
	Outcomes []string
	Limit    int
}

type Storage interface {
	Saving() SavingRepo
	Event() EventRepo

	// Run fn in transaction: commit if fn returns nil, rollback otherwise
	InTx(ctx context.Context, fn func(Storage) error) error
}
