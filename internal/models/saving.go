package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	SavingStatusLocked   = "LOCKED"
	SavingStatusReleased = "RELEASED"
)

// Saving is a single savings ledger entry. Never mutated after creation
type Saving struct {
	ID        int64
	Amount    decimal.Decimal
	DateSaved time.Time
	Status    string
	EventKey  *string // nil for entries created outside webhook processing
	CreatedAt time.Time
}

type SavingsTotal struct {
	Count  int64
	Amount decimal.Decimal
}
