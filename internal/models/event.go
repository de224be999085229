package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	EventSuccessfulTransaction             = "SUCCESSFUL_TRANSACTION"
	EventSuccessfulTransactionNotification = "SUCCESSFUL_TRANSACTION_NOTIFICATION"
)

// IsQualifyingEvent reports whether the event type triggers the auto-save flow
func IsQualifyingEvent(eventType string) bool {
	switch eventType {
	case EventSuccessfulTransaction, EventSuccessfulTransactionNotification:
		return true
	default:
		return false
	}
}

// Payment notification received from the provider
type PaymentEvent struct {
	// Deduplication key: provider transaction reference, payment reference or body hash
	Key string

	EventType            string
	TransactionReference string
	PaymentReference     string
	AmountPaid           decimal.Decimal
	CustomerEmail        string
}

// ProcessedEvent is the marker saved before any money is moved
// Its key makes duplicate deliveries of the same payment a no-op
type ProcessedEvent struct {
	Key               string
	EventType         string
	AmountPaid        decimal.Decimal
	Savings           decimal.Decimal
	Spending          decimal.Decimal
	CustomerEmail     string
	ReceivedAt        time.Time
	TransferReference string
	TransferOutcome   string
	ProcessedAt       *time.Time // nil until transfer attempt finished
}
