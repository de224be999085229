package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/nkiryanov/autosave/internal/apperrors"
	"github.com/nkiryanov/autosave/internal/models"
	"github.com/nkiryanov/autosave/internal/repository"
)

type EventRepo struct {
	DB DBTX
}

const eventColumns = `event_key, event_type, amount_paid, savings, spending, customer_email,
	received_at, transfer_reference, transfer_outcome, processed_at`

// Insert marker; nothing returned if the key is taken
const createEvent = `-- name: CreateEvent
INSERT INTO webhook_events (event_key, event_type, amount_paid, savings, spending, customer_email, received_at, transfer_outcome)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (event_key) DO NOTHING
RETURNING ` + eventColumns

func (r *EventRepo) CreateEvent(ctx context.Context, e models.ProcessedEvent) (models.ProcessedEvent, error) {
	if e.ReceivedAt.IsZero() {
		e.ReceivedAt = time.Now()
	}
	if e.TransferOutcome == "" {
		e.TransferOutcome = models.TransferPending
	}

	rows, _ := r.DB.Query(ctx, createEvent,
		e.Key, e.EventType, e.AmountPaid, e.Savings, e.Spending, e.CustomerEmail, e.ReceivedAt, e.TransferOutcome,
	)
	event, err := pgx.CollectOneRow(rows, rowToEvent)

	switch {
	case err == nil:
		return event, nil
	case errors.Is(err, pgx.ErrNoRows):
		return event, apperrors.ErrEventAlreadyProcessed
	default:
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return event, apperrors.ErrEventAlreadyProcessed
		}
		return event, fmt.Errorf("db error: %w", err)
	}
}

const setTransferOutcome = `-- name: SetTransferOutcome
UPDATE webhook_events
SET transfer_reference = $2, transfer_outcome = $3, processed_at = $4
WHERE event_key = $1
RETURNING ` + eventColumns

func (r *EventRepo) SetTransferOutcome(ctx context.Context, key string, reference string, outcome string, processedAt time.Time) (models.ProcessedEvent, error) {
	rows, _ := r.DB.Query(ctx, setTransferOutcome, key, reference, outcome, processedAt)
	event, err := pgx.CollectOneRow(rows, rowToEvent)

	switch {
	case err == nil:
		return event, nil
	case errors.Is(err, pgx.ErrNoRows):
		return event, apperrors.ErrEventNotFound
	default:
		return event, fmt.Errorf("db error: %w", err)
	}
}

const getEvent = `-- name: GetEvent
SELECT ` + eventColumns + `
FROM webhook_events
WHERE event_key = $1
`

func (r *EventRepo) GetEvent(ctx context.Context, key string) (models.ProcessedEvent, error) {
	rows, _ := r.DB.Query(ctx, getEvent, key)
	event, err := pgx.CollectOneRow(rows, rowToEvent)

	switch {
	case err == nil:
		return event, nil
	case errors.Is(err, pgx.ErrNoRows):
		return event, apperrors.ErrEventNotFound
	default:
		return event, fmt.Errorf("db error: %w", err)
	}
}

const listEvents = `-- name: ListEvents
SELECT ` + eventColumns + `
FROM webhook_events
WHERE (cardinality($1::text[]) = 0 OR transfer_outcome = ANY($1::text[]))
ORDER BY received_at DESC
LIMIT $2
`

func (r *EventRepo) ListEvents(ctx context.Context, opts repository.ListEventsOpts) ([]models.ProcessedEvent, error) {
	outcomes := opts.Outcomes
	if outcomes == nil {
		outcomes = []string{}
	}

	rows, _ := r.DB.Query(ctx, listEvents, outcomes, limitOrDefault(opts.Limit))
	events, err := pgx.CollectRows(rows, rowToEvent)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return events, nil
}

func rowToEvent(row pgx.CollectableRow) (models.ProcessedEvent, error) {
	var e models.ProcessedEvent
	err := row.Scan(
		&e.Key, &e.EventType, &e.AmountPaid, &e.Savings, &e.Spending, &e.CustomerEmail,
		&e.ReceivedAt, &e.TransferReference, &e.TransferOutcome, &e.ProcessedAt,
	)
	return e, err
}
