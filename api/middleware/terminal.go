package middleware

import (
	"net/http"
	"strings"

	"github.com/balcaohq/balcao-backend/api/responses"
	pkgerrors "github.com/balcaohq/balcao-backend/pkg/errors"
	"github.com/balcaohq/balcao-backend/pkg/logger"
)

const terminalIDHeader = "X-Terminal-Id"

// TerminalContext resolves the calling terminal from the X-Terminal-Id header
// and makes it available to session handlers. Requests without one are
// rejected before reaching the composition engine.
func TerminalContext(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			terminalID := strings.TrimSpace(r.Header.Get(terminalIDHeader))
			if terminalID == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "X-Terminal-Id header required"))
				return
			}

			ctx := WithTerminalID(r.Context(), terminalID)
			if logg != nil {
				ctx = logg.WithTerminalID(ctx, terminalID)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
