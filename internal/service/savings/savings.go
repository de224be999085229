package savings

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/nkiryanov/autosave/internal/models"
	"github.com/nkiryanov/autosave/internal/repository"
)

// SavingsService appends entries to the savings ledger and reports on it
type SavingsService struct {
	savingRepo repository.SavingRepo
}

func NewService(savingRepo repository.SavingRepo) *SavingsService {
	return &SavingsService{
		savingRepo: savingRepo,
	}
}

// Record saves locked ledger entry for the date
// Only the calendar date of the passed time is stored
func (s *SavingsService) Record(ctx context.Context, amount decimal.Decimal, date time.Time, eventKey string) (models.Saving, error) {
	saving := models.Saving{
		Amount:    amount,
		DateSaved: date,
		Status:    models.SavingStatusLocked,
	}
	if eventKey != "" {
		saving.EventKey = &eventKey
	}

	return s.savingRepo.CreateSaving(ctx, saving)
}

func (s *SavingsService) List(ctx context.Context, limit int) ([]models.Saving, error) {
	return s.savingRepo.ListSavings(ctx, repository.ListSavingsOpts{Limit: limit})
}

// Total of locked savings
func (s *SavingsService) Total(ctx context.Context) (models.SavingsTotal, error) {
	return s.savingRepo.TotalSavings(ctx, []string{models.SavingStatusLocked})
}
