package middleware

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"io"
	"net/http"
	"strings"

	"github.com/nkiryanov/autosave/internal/handlers/render"
)

const (
	SignatureHeader = "monnify-signature"

	// Webhook payloads are small
	maxWebhookBodySize = 1 << 20
)

type warnLogger interface {
	Warn(msg string, args ...any)
}

// Sign returns hex encoded HMAC-SHA512 of the body keyed with the secret
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// SignatureMiddleware rejects requests which body is not signed with the secret
// Body is buffered so the next handler can read it again
func SignatureMiddleware(secret string, l warnLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBodySize))
			if err != nil {
				l.Warn("Failed to read webhook body", "error", err)
				render.ServiceError(w, "Failed to read request body", http.StatusBadRequest)
				return
			}

			got, err := hex.DecodeString(strings.TrimSpace(r.Header.Get(SignatureHeader)))
			expected, _ := hex.DecodeString(Sign(secret, body))
			if err != nil || !hmac.Equal(got, expected) {
				l.Warn("Webhook signature mismatch", "remote_addr", r.RemoteAddr)
				render.ServiceError(w, "Invalid signature", http.StatusUnauthorized)
				return
			}

			r.Body = io.NopCloser(bytes.NewReader(body))
			next.ServeHTTP(w, r)
		})
	}
}
