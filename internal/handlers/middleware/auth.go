package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/nkiryanov/autosave/internal/handlers/operatorctx"
	"github.com/nkiryanov/autosave/internal/handlers/render"
)

const bearerScheme = "Bearer "

type authService interface {
	ParseAccess(ctx context.Context, access string) (string, error)
}

// AuthMiddleware lets through only requests with valid operator bearer token
func AuthMiddleware(as authService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if len(header) <= len(bearerScheme) || !strings.EqualFold(header[:len(bearerScheme)], bearerScheme) {
				render.ServiceError(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			subject, err := as.ParseAccess(r.Context(), strings.TrimSpace(header[len(bearerScheme):]))
			if err != nil {
				render.ServiceError(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := operatorctx.New(r.Context(), subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
