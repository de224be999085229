package operatorctx

import (
	"context"
)

type ctxKey string

const operatorKey ctxKey = "operator"

// Create a new context with authenticated operator subject
func New(ctx context.Context, subject string) context.Context {
	return context.WithValue(ctx, operatorKey, subject)
}

// Extract the operator subject from the context
func FromContext(ctx context.Context) (string, bool) {
	s, ok := ctx.Value(operatorKey).(string)
	return s, ok && s != ""
}
