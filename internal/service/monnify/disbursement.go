package monnify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/nkiryanov/autosave/internal/models"
)

type disbursementRequest struct {
	Amount                   json.Number `json:"amount"`
	Reference                string      `json:"reference"`
	Narration                string      `json:"narration"`
	DestinationBankCode      string      `json:"destinationBankCode"`
	DestinationAccountNumber string      `json:"destinationAccountNumber"`
	Currency                 string      `json:"currency"`
	SourceAccountNumber      string      `json:"sourceAccountNumber"`
}

type disbursementBody struct {
	Amount                 decimal.Decimal `json:"amount"`
	Reference              string          `json:"reference"`
	Status                 string          `json:"status"`
	TotalFee               decimal.Decimal `json:"totalFee"`
	DestinationAccountName string          `json:"destinationAccountName"`
	DestinationBankName    string          `json:"destinationBankName"`
}

// Provider view of accepted disbursement
type Disbursement struct {
	Reference string
	Status    string
	Message   string
}

// Disburse sends single transfer authorized by the bearer token
// Succeeds only on HTTP 200 with requestSuccessful=true
func (c *Client) Disburse(ctx context.Context, token string, tr models.TransferRequest) (Disbursement, error) {
	var d Disbursement

	if token == "" {
		return d, newError(CodeAuthFailed, 0, "", errors.New("empty access token"))
	}

	payload := disbursementRequest{
		Amount:                   json.Number(tr.Amount.StringFixed(2)),
		Reference:                tr.Reference,
		Narration:                tr.Narration,
		DestinationBankCode:      tr.DestinationBankCode,
		DestinationAccountNumber: tr.DestinationAccountNumber,
		Currency:                 tr.Currency,
		SourceAccountNumber:      tr.SourceAccountNumber,
	}

	status, raw, err := c.post(ctx, c.endpoints.Disbursement, bearerAuth(token), payload)
	if err != nil {
		c.logger.Error("Monnify disbursement connection error", "error", err, "reference", tr.Reference)
		return d, err
	}

	var resp envelope[disbursementBody]
	if err := json.Unmarshal(raw, &resp); err != nil {
		c.logger.Error("Monnify disbursement response is not valid json", "error", err, "status_code", status, "body", string(raw))
		return d, newError(CodeMalformedResponse, status, string(raw), fmt.Errorf("failed to decode response: %w", err))
	}

	fee := decimal.Zero
	d.Reference = tr.Reference
	d.Message = resp.ResponseMessage
	if resp.ResponseBody != nil {
		d.Status = resp.ResponseBody.Status
		fee = resp.ResponseBody.TotalFee
	}

	if status != http.StatusOK || !resp.RequestSuccessful {
		c.logger.Warn("Monnify disbursement rejected",
			"status_code", status,
			"reference", tr.Reference,
			"response_code", resp.ResponseCode,
			"response_message", resp.ResponseMessage,
		)
		return d, newError(CodeTransferRejected, status, string(raw), fmt.Errorf("disbursement rejected: %s", resp.ResponseMessage))
	}

	c.logger.Debug("Monnify disbursement accepted", "reference", tr.Reference, "status", d.Status, "fee", fee)
	return d, nil
}
