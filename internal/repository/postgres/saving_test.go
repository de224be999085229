package postgres

import (
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/nkiryanov/autosave/internal/apperrors"
	"github.com/nkiryanov/autosave/internal/models"
	"github.com/nkiryanov/autosave/internal/repository"
	"github.com/nkiryanov/autosave/internal/testutil"
)

func TestSavings(t *testing.T) {
	pg := testutil.StartPostgresContainer(t)
	t.Cleanup(pg.Terminate)

	inTx := func(t *testing.T, fn func(storage repository.Storage)) {
		testutil.InTx(pg.Pool, t, func(tx pgx.Tx) {
			fn(NewStorage(tx))
		})
	}

	today := time.Date(2026, time.October, 16, 0, 0, 0, 0, time.UTC)

	t.Run("CreateSaving", func(t *testing.T) {
		t.Run("create ok", func(t *testing.T) {
			inTx(t, func(storage repository.Storage) {
				e, err := storage.Event().CreateEvent(t.Context(), newEvent("evt-1"))
				require.NoError(t, err)

				got, err := storage.Saving().CreateSaving(t.Context(), models.Saving{
					Amount:    decimal.RequireFromString("200.50"),
					DateSaved: today,
					EventKey:  &e.Key,
				})

				require.NoError(t, err, "saving has to be created ok")
				require.NotZero(t, got.ID, "id must be assigned by database")
				require.True(t, got.Amount.Equal(decimal.RequireFromString("200.50")), "amount should match")
				require.Equal(t, "2026-10-16", got.DateSaved.Format(time.DateOnly))
				require.Equal(t, models.SavingStatusLocked, got.Status, "status is LOCKED by default")
				require.NotNil(t, got.EventKey)
				require.Equal(t, "evt-1", *got.EventKey)
				require.NotZero(t, got.CreatedAt)
			})
		})

		t.Run("create without event ok", func(t *testing.T) {
			inTx(t, func(storage repository.Storage) {
				got, err := storage.Saving().CreateSaving(t.Context(), models.Saving{
					Amount:    decimal.NewFromInt(10),
					DateSaved: today,
				})

				require.NoError(t, err)
				require.Nil(t, got.EventKey)
			})
		})

		t.Run("second saving for same event fail", func(t *testing.T) {
			inTx(t, func(storage repository.Storage) {
				e, err := storage.Event().CreateEvent(t.Context(), newEvent("evt-2"))
				require.NoError(t, err)
				saving := models.Saving{Amount: decimal.NewFromInt(1), DateSaved: today, EventKey: &e.Key}

				_, err = storage.Saving().CreateSaving(t.Context(), saving)
				require.NoError(t, err)

				// Run in savepoint: failed statement aborts the whole transaction otherwise
				err = storage.InTx(t.Context(), func(s repository.Storage) error {
					_, err := s.Saving().CreateSaving(t.Context(), saving)
					return err
				})

				require.ErrorIs(t, err, apperrors.ErrEventAlreadyProcessed)
			})
		})

		t.Run("unknown event fail", func(t *testing.T) {
			inTx(t, func(storage repository.Storage) {
				key := "not-existed"

				_, err := storage.Saving().CreateSaving(t.Context(), models.Saving{
					Amount:    decimal.NewFromInt(1),
					DateSaved: today,
					EventKey:  &key,
				})

				require.ErrorIs(t, err, apperrors.ErrEventNotFound)
			})
		})

		t.Run("unknown status fail", func(t *testing.T) {
			inTx(t, func(storage repository.Storage) {
				_, err := storage.Saving().CreateSaving(t.Context(), models.Saving{
					Amount:    decimal.NewFromInt(1),
					DateSaved: today,
					Status:    "SPENT",
				})

				require.Error(t, err, "status outside of vocabulary must be rejected by db")
			})
		})
	})

	t.Run("List and Total", func(t *testing.T) {
		inTx(t, func(storage repository.Storage) {
			for _, amount := range []string{"100.10", "200.20", "0.70"} {
				_, err := storage.Saving().CreateSaving(t.Context(), models.Saving{
					Amount:    decimal.RequireFromString(amount),
					DateSaved: today,
				})
				require.NoError(t, err)
			}

			t.Run("list newest first", func(t *testing.T) {
				savings, err := storage.Saving().ListSavings(t.Context(), repository.ListSavingsOpts{})

				require.NoError(t, err)
				require.Len(t, savings, 3)
				require.True(t, savings[0].Amount.Equal(decimal.RequireFromString("0.70")), "last created goes first")
			})

			t.Run("list limit", func(t *testing.T) {
				savings, err := storage.Saving().ListSavings(t.Context(), repository.ListSavingsOpts{Limit: 2})

				require.NoError(t, err)
				require.Len(t, savings, 2)
			})

			t.Run("list by status", func(t *testing.T) {
				savings, err := storage.Saving().ListSavings(t.Context(), repository.ListSavingsOpts{
					Statuses: []string{models.SavingStatusReleased},
				})

				require.NoError(t, err)
				require.Empty(t, savings)
			})

			t.Run("total", func(t *testing.T) {
				total, err := storage.Saving().TotalSavings(t.Context(), nil)

				require.NoError(t, err)
				require.EqualValues(t, 3, total.Count)
				require.True(t, total.Amount.Equal(decimal.RequireFromString("301.00")), "total should be exact, got %s", total.Amount)
			})
		})
	})

	t.Run("InTx rollback on error", func(t *testing.T) {
		inTx(t, func(storage repository.Storage) {
			errBoom := errors.New("boom")

			err := storage.InTx(t.Context(), func(s repository.Storage) error {
				_, err := s.Saving().CreateSaving(t.Context(), models.Saving{Amount: decimal.NewFromInt(5), DateSaved: today})
				require.NoError(t, err)
				return errBoom
			})
			require.ErrorIs(t, err, errBoom)

			total, err := storage.Saving().TotalSavings(t.Context(), nil)
			require.NoError(t, err)
			require.Zero(t, total.Count, "saving must be rolled back")
		})
	})
}
