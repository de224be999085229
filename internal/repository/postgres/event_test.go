package postgres

import (
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

func newEvent(key string) models.ProcessedEvent {
	return models.ProcessedEvent{
		Key:           key,
		EventType:     models.EventSuccessfulTransaction,
		AmountPaid:    decimal.NewFromInt(1000),
		Savings:       decimal.NewFromInt(200),
		Spending:      decimal.NewFromInt(800),
		CustomerEmail: "payer@example.com",
		ReceivedAt:    time.Now().Truncate(time.Microsecond),
	}
}

func TestEvents(t *testing.T) {
	pg := testutil.StartPostgresContainer(t)
	t.Cleanup(pg.Terminate)

	inTx := func(t *testing.T, fn func(storage repository.Storage)) {
		testutil.InTx(pg.Pool, t, func(tx pgx.Tx) {
			fn(NewStorage(tx))
		})
	}

	t.Run("CreateEvent", func(t *testing.T) {
		t.Run("create ok", func(t *testing.T) {
			inTx(t, func(storage repository.Storage) {
				e := newEvent("MNFY|20|20240101|000001")

				got, err := storage.Event().CreateEvent(t.Context(), e)

				require.NoError(t, err, "event marker has to be created ok")
				require.Equal(t, e.Key, got.Key)
				require.Equal(t, e.EventType, got.EventType)
				require.True(t, got.AmountPaid.Equal(e.AmountPaid), "amount paid should match")
				require.True(t, got.Savings.Equal(e.Savings), "savings should match")
				require.True(t, got.Spending.Equal(e.Spending), "spending should match")
				require.Equal(t, models.TransferPending, got.TransferOutcome, "new marker should be pending")
				require.Empty(t, got.TransferReference)
				require.Nil(t, got.ProcessedAt, "new marker is not processed yet")
			})
		})

		t.Run("duplicate key fail", func(t *testing.T) {
			inTx(t, func(storage repository.Storage) {
				e := newEvent("MNFY|20|20240101|000002")
				_, err := storage.Event().CreateEvent(t.Context(), e)
				require.NoError(t, err)

				_, err = storage.Event().CreateEvent(t.Context(), e)

				require.Error(t, err, "second marker with the same key must fail")
				require.ErrorIs(t, err, apperrors.ErrEventAlreadyProcessed)
			})
		})
	})

	t.Run("SetTransferOutcome", func(t *testing.T) {
		t.Run("set ok", func(t *testing.T) {
			inTx(t, func(storage repository.Storage) {
				e := newEvent("MNFY|20|20240101|000003")
				_, err := storage.Event().CreateEvent(t.Context(), e)
				require.NoError(t, err)
				processedAt := time.Now().Truncate(time.Microsecond)

				got, err := storage.Event().SetTransferOutcome(t.Context(), e.Key, "AutoSave_ref", models.TransferFailed, processedAt)

				require.NoError(t, err)
				require.Equal(t, "AutoSave_ref", got.TransferReference)
				require.Equal(t, models.TransferFailed, got.TransferOutcome)
				require.NotNil(t, got.ProcessedAt)
				require.True(t, processedAt.Equal(*got.ProcessedAt), "processed at should match")

				stored, err := storage.Event().GetEvent(t.Context(), e.Key)
				require.NoError(t, err)
				require.Equal(t, models.TransferFailed, stored.TransferOutcome, "outcome should be stored")
			})
		})

		t.Run("not existed fail", func(t *testing.T) {
			inTx(t, func(storage repository.Storage) {
				_, err := storage.Event().SetTransferOutcome(t.Context(), "unknown", "ref", models.TransferSuccess, time.Now())

				require.ErrorIs(t, err, apperrors.ErrEventNotFound)
			})
		})
	})

	t.Run("GetEvent not existed", func(t *testing.T) {
		inTx(t, func(storage repository.Storage) {
			_, err := storage.Event().GetEvent(t.Context(), "unknown")

			require.ErrorIs(t, err, apperrors.ErrEventNotFound)
		})
	})

	t.Run("ListEvents", func(t *testing.T) {
		inTx(t, func(storage repository.Storage) {
			older := newEvent("older")
			older.ReceivedAt = time.Now().Add(-time.Hour)
			newer := newEvent("newer")

			_, err := storage.Event().CreateEvent(t.Context(), older)
			require.NoError(t, err)
			_, err = storage.Event().CreateEvent(t.Context(), newer)
			require.NoError(t, err)
			_, err = storage.Event().SetTransferOutcome(t.Context(), older.Key, "ref", models.TransferFailed, time.Now())
			require.NoError(t, err)

			t.Run("list all", func(t *testing.T) {
				events, err := storage.Event().ListEvents(t.Context(), repository.ListEventsOpts{})

				require.NoError(t, err)
				require.Len(t, events, 2)
				require.Equal(t, "newer", events[0].Key, "newest event goes first")
				require.Equal(t, "older", events[1].Key)
			})

			t.Run("filter by outcome", func(t *testing.T) {
				events, err := storage.Event().ListEvents(t.Context(), repository.ListEventsOpts{
					Outcomes: []string{models.TransferFailed},
				})

				require.NoError(t, err)
				require.Len(t, events, 1)
				require.Equal(t, "older", events[0].Key)
			})

			t.Run("limit", func(t *testing.T) {
				events, err := storage.Event().ListEvents(t.Context(), repository.ListEventsOpts{Limit: 1})

				require.NoError(t, err)
				require.Len(t, events, 1)
			})
		})
	})
}
