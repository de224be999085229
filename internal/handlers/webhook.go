package handlers

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/nkiryanov/autosave/internal/apperrors"
	"github.com/nkiryanov/autosave/internal/handlers/render"
	"github.com/nkiryanov/autosave/internal/logger"
	"github.com/nkiryanov/autosave/internal/models"
)

const (
	StatusSuccess = "success"
	StatusIgnored = "ignored"
)

type webhookResponse struct {
	Status string `json:"status"`
}

type webhookEnvelope struct {
	EventType string          `json:"eventType"`
	EventData json.RawMessage `json:"eventData"`
}

// Payment details; provider sends them either wrapped into eventData or flat
type paymentData struct {
	TransactionReference string         `json:"transactionReference"`
	PaymentReference     string         `json:"paymentReference"`
	AmountPaid           *render.Number `json:"amountPaid" validate:"required,nonnegative,kobo"`
	Customer             struct {
		Email string `json:"email"`
	} `json:"customer"`
}

// Webhook always answers 200 once the event is read, so the provider does not retry.
// The only exception is failure to persist the event: it has to be delivered again.
func handleWebhook(autosaveService autosaveService, l logger.Logger) http.Handler {
	ignored := func(w http.ResponseWriter) {
		render.JSON(w, webhookResponse{Status: StatusIgnored})
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			l.Warn("Failed to read webhook body", "error", err)
			render.ServiceError(w, "Failed to read request body", http.StatusBadRequest)
			return
		}

		var envelope webhookEnvelope
		if err := json.Unmarshal(body, &envelope); err != nil {
			l.Warn("Webhook body is not valid json", "error", err)
			ignored(w)
			return
		}

		if !models.IsQualifyingEvent(envelope.EventType) {
			l.Info("Webhook event ignored", "event_type", envelope.EventType)
			ignored(w)
			return
		}

		raw := body
		if data := bytes.TrimSpace(envelope.EventData); len(data) > 0 && !bytes.Equal(data, []byte("null")) {
			raw = data
		}

		payment, err := render.Decode[paymentData](raw)
		if err != nil {
			l.Warn("Webhook event rejected as invalid", "event_type", envelope.EventType, "error", err)
			ignored(w)
			return
		}

		ev := models.PaymentEvent{
			Key:                  eventKey(payment, body),
			EventType:            envelope.EventType,
			TransactionReference: payment.TransactionReference,
			PaymentReference:     payment.PaymentReference,
			AmountPaid:           payment.AmountPaid.Decimal,
			CustomerEmail:        payment.Customer.Email,
		}

		_, err = autosaveService.Process(r.Context(), ev)
		switch {
		case err == nil:
			render.JSON(w, webhookResponse{Status: StatusSuccess})
		case errors.Is(err, apperrors.ErrEventAlreadyProcessed):
			ignored(w)
		case errors.Is(err, apperrors.ErrEventInvalid), errors.Is(err, apperrors.ErrEventNotQualifying):
			l.Warn("Webhook event rejected", "event_key", ev.Key, "error", err)
			ignored(w)
		default:
			l.Error("Failed to process webhook event", "event_key", ev.Key, "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
	})
}

// Provider references identify the payment; raw body hash is the last resort
func eventKey(p paymentData, body []byte) string {
	switch {
	case p.TransactionReference != "":
		return p.TransactionReference
	case p.PaymentReference != "":
		return p.PaymentReference
	default:
		sum := sha256.Sum256(body)
		return "sha256:" + hex.EncodeToString(sum[:])
	}
}
