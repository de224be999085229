package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/nkiryanov/autosave/internal/apperrors"
	"github.com/nkiryanov/autosave/internal/handlers/render"
	"github.com/nkiryanov/autosave/internal/logger"
	"github.com/nkiryanov/autosave/internal/repository"
)

const maxListLimit = 1000

func money(d decimal.Decimal) json.Number {
	return json.Number(d.StringFixed(2))
}

// Read optional ?limit=N, write error and return false if it is not valid
func readLimit(w http.ResponseWriter, r *http.Request) (int, bool) {
	value := r.URL.Query().Get("limit")
	if value == "" {
		return repository.DefaultListLimit, true
	}

	limit, err := strconv.Atoi(value)
	if err != nil || limit <= 0 || limit > maxListLimit {
		render.ServiceError(w, "limit must be a number between 1 and 1000", http.StatusBadRequest)
		return 0, false
	}
	return limit, true
}

func handleOperatorLogin(authService authService, l logger.Logger) http.Handler {
	type request struct {
		Password string `json:"password" validate:"required"`
	}
	type response struct {
		Token     string    `json:"token"`
		ExpiresAt time.Time `json:"expires_at"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		token, err := authService.Login(r.Context(), data.Password)
		switch {
		case err == nil:
			render.JSON(w, response{Token: token.Value, ExpiresAt: token.ExpiresAt})
		case errors.Is(err, apperrors.ErrInvalidCredentials):
			l.Warn("Operator login failed", "remote_addr", r.RemoteAddr)
			render.ServiceError(w, "Invalid credentials", http.StatusUnauthorized)
		default:
			l.Error("Operator login error", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
	})
}

func handleListSavings(savingsService savingsService, l logger.Logger) http.Handler {
	type saving struct {
		ID        int64       `json:"id"`
		Amount    json.Number `json:"amount"`
		DateSaved string      `json:"date_saved"`
		Status    string      `json:"status"`
		EventKey  *string     `json:"event_key,omitempty"`
		CreatedAt time.Time   `json:"created_at"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		limit, ok := readLimit(w, r)
		if !ok {
			return
		}

		list, err := savingsService.List(r.Context(), limit)
		if err != nil {
			l.Error("Failed to list savings", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		res := make([]saving, 0, len(list))
		for _, s := range list {
			res = append(res, saving{
				ID:        s.ID,
				Amount:    money(s.Amount),
				DateSaved: s.DateSaved.Format(time.DateOnly),
				Status:    s.Status,
				EventKey:  s.EventKey,
				CreatedAt: s.CreatedAt,
			})
		}

		render.JSON(w, res)
	})
}

func handleSavingsTotal(savingsService savingsService, l logger.Logger) http.Handler {
	type response struct {
		Count  int64       `json:"count"`
		Amount json.Number `json:"amount"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		total, err := savingsService.Total(r.Context())
		if err != nil {
			l.Error("Failed to get savings total", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		render.JSON(w, response{Count: total.Count, Amount: money(total.Amount)})
	})
}

func handleListEvents(events eventLister, l logger.Logger) http.Handler {
	type event struct {
		Key               string      `json:"key"`
		EventType         string      `json:"event_type"`
		AmountPaid        json.Number `json:"amount_paid"`
		Savings           json.Number `json:"savings"`
		Spending          json.Number `json:"spending"`
		CustomerEmail     string      `json:"customer_email,omitempty"`
		ReceivedAt        time.Time   `json:"received_at"`
		TransferReference string      `json:"transfer_reference,omitempty"`
		TransferOutcome   string      `json:"transfer_outcome"`
		ProcessedAt       *time.Time  `json:"processed_at,omitempty"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		limit, ok := readLimit(w, r)
		if !ok {
			return
		}

		opts := repository.ListEventsOpts{Limit: limit}
		if outcome := r.URL.Query().Get("outcome"); outcome != "" {
			opts.Outcomes = []string{outcome}
		}

		list, err := events.ListEvents(r.Context(), opts)
		if err != nil {
			l.Error("Failed to list events", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		res := make([]event, 0, len(list))
		for _, e := range list {
			res = append(res, event{
				Key:               e.Key,
				EventType:         e.EventType,
				AmountPaid:        money(e.AmountPaid),
				Savings:           money(e.Savings),
				Spending:          money(e.Spending),
				CustomerEmail:     e.CustomerEmail,
				ReceivedAt:        e.ReceivedAt,
				TransferReference: e.TransferReference,
				TransferOutcome:   e.TransferOutcome,
				ProcessedAt:       e.ProcessedAt,
			})
		}

		render.JSON(w, res)
	})
}
