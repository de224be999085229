package transfer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nkiryanov/autosave/internal/logger"
	"github.com/nkiryanov/autosave/internal/models"
	"github.com/nkiryanov/autosave/internal/service/monnify"
)

const ReferencePrefix = "AutoSave_"

type tokenProvider interface {
	Authenticate(ctx context.Context) (string, error)
}

type disburser interface {
	Disburse(ctx context.Context, token string, tr models.TransferRequest) (monnify.Disbursement, error)
}

// Client is anything able to get token and send money, usually *monnify.Client
type Client interface {
	tokenProvider
	disburser
}

// Fixed transfer route: money always goes from the wallet to the one bank account
type Destination struct {
	BankCode      string
	AccountNumber string

	// Provider wallet the money is sent from
	SourceAccount string
}

type Executor struct {
	client      Client
	destination Destination
	logger      logger.Logger
}

func NewExecutor(client Client, destination Destination, l logger.Logger) *Executor {
	return &Executor{
		client:      client,
		destination: destination,
		logger:      l.With("component", "transfer"),
	}
}

// Transfer sends amount to the destination account in a single attempt
// Never returns an error: failures are reported via the outcome status
func (e *Executor) Transfer(ctx context.Context, amount decimal.Decimal, reference string) models.TransferOutcome {
	outcome := models.TransferOutcome{
		Reference: reference,
		Amount:    amount,
	}

	token, err := e.client.Authenticate(ctx)
	if err != nil {
		e.logger.Error("Transfer skipped, no access token", "reference", reference, "error", err)
		outcome.Status = models.TransferNoToken
		outcome.Err = err
		return outcome
	}

	tr := models.TransferRequest{
		Amount:                   amount,
		Reference:                reference,
		Narration:                models.TransferNarration,
		DestinationBankCode:      e.destination.BankCode,
		DestinationAccountNumber: e.destination.AccountNumber,
		SourceAccountNumber:      e.destination.SourceAccount,
		Currency:                 models.CurrencyNGN,
	}

	d, err := e.client.Disburse(ctx, token, tr)
	var mErr *monnify.Error

	switch {
	case err == nil:
		e.logger.Info("Transfer successful", "reference", reference, "amount", amount, "status", d.Status)
		outcome.Status = models.TransferSuccess

	case errors.As(err, &mErr):
		e.logger.Error("Transfer failed",
			"reference", reference,
			"amount", amount,
			"code", mErr.Code,
			"status_code", mErr.StatusCode,
			"body", mErr.Body,
		)
		outcome.Status = models.TransferFailed
		outcome.Err = err

	default:
		e.logger.Error("Transfer failed, unexpected error", "reference", reference, "amount", amount, "error", err)
		outcome.Status = models.TransferFailed
		outcome.Err = err
	}

	return outcome
}

// Reference builds transfer reference unique per payment event
// Provider references are reused so the provider itself rejects repeated transfers
func Reference(providerRef string, now time.Time) string {
	ref := sanitize(providerRef)
	if ref != "" {
		return ReferencePrefix + ref
	}
	return fmt.Sprintf("%s%d_%s", ReferencePrefix, now.Unix(), uuid.NewString()[:8])
}

// Provider references look like MNFY|20|20240101|000001
// Only letters, digits, '-' and '_' are kept in transfer references
func sanitize(ref string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		case r == '|', r == ' ', r == '/', r == '.':
			return '-'
		default:
			return -1
		}
	}, strings.TrimSpace(ref))
}
