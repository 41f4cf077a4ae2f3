package middleware

import "context"

type contextKey string

const ctxTerminalID contextKey = "terminal_id"

func TerminalIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxTerminalID).(string); ok {
		return v
	}
	return ""
}

// WithTerminalID injects the terminal identifier into the context for
// downstream handlers.
func WithTerminalID(ctx context.Context, terminalID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxTerminalID, terminalID)
}
