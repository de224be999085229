package models

import (
	"github.com/shopspring/decimal"
)

const (
	TransferPending = "PENDING"
	TransferSuccess = "SUCCESS"
	TransferFailed  = "FAILED"
	TransferNoToken = "NO_TOKEN"
)

const (
	CurrencyNGN       = "NGN"
	TransferNarration = "Auto-Transfer Spending Money"
)

type TransferRequest struct {
	Amount                   decimal.Decimal
	Reference                string
	Narration                string
	DestinationBankCode      string
	DestinationAccountNumber string
	SourceAccountNumber      string
	Currency                 string
}

type TransferOutcome struct {
	Status    string
	Reference string
	Amount    decimal.Decimal

	// Failure cause, nil on success
	Err error
}

func (o TransferOutcome) Succeeded() bool {
	return o.Status == TransferSuccess
}
