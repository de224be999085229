package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/nkiryanov/autosave/internal/apperrors"
	"github.com/nkiryanov/autosave/internal/models"
	"github.com/nkiryanov/autosave/internal/repository"
)

type SavingRepo struct {
	DB DBTX
}

const createSaving = `-- name: CreateSaving
INSERT INTO savings (amount, date_saved, status, event_key)
VALUES ($1, $2, $3, $4)
RETURNING id, amount, date_saved, status, event_key, created_at
`

func (r *SavingRepo) CreateSaving(ctx context.Context, s models.Saving) (models.Saving, error) {
	if s.Status == "" {
		s.Status = models.SavingStatusLocked
	}

	rows, _ := r.DB.Query(ctx, createSaving, s.Amount, s.DateSaved, s.Status, s.EventKey)
	saving, err := pgx.CollectOneRow(rows, rowToSaving)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case pgerrcode.UniqueViolation:
				return saving, apperrors.ErrEventAlreadyProcessed
			case pgerrcode.ForeignKeyViolation:
				return saving, apperrors.ErrEventNotFound
			}
		}

		return saving, fmt.Errorf("db error: %w", err)
	}

	return saving, nil
}

const listSavings = `-- name: ListSavings
SELECT id, amount, date_saved, status, event_key, created_at
FROM savings
WHERE (cardinality($1::text[]) = 0 OR status = ANY($1::text[]))
ORDER BY created_at DESC, id DESC
LIMIT $2
`

func (r *SavingRepo) ListSavings(ctx context.Context, opts repository.ListSavingsOpts) ([]models.Saving, error) {
	statuses := opts.Statuses
	if statuses == nil {
		statuses = []string{}
	}

	rows, _ := r.DB.Query(ctx, listSavings, statuses, limitOrDefault(opts.Limit))
	savings, err := pgx.CollectRows(rows, rowToSaving)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return savings, nil
}

const totalSavings = `-- name: TotalSavings
SELECT count(*), coalesce(sum(amount), 0)
FROM savings
WHERE (cardinality($1::text[]) = 0 OR status = ANY($1::text[]))
`

func (r *SavingRepo) TotalSavings(ctx context.Context, statuses []string) (models.SavingsTotal, error) {
	if statuses == nil {
		statuses = []string{}
	}

	var total models.SavingsTotal
	err := r.DB.QueryRow(ctx, totalSavings, statuses).Scan(&total.Count, &total.Amount)
	if err != nil {
		return total, fmt.Errorf("db error: %w", err)
	}

	return total, nil
}

func rowToSaving(row pgx.CollectableRow) (models.Saving, error) {
	var s models.Saving
	err := row.Scan(&s.ID, &s.Amount, &s.DateSaved, &s.Status, &s.EventKey, &s.CreatedAt)
	return s, err
}
