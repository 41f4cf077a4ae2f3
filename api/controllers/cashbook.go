package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/balcaohq/balcao-backend/api/responses"
	"github.com/balcaohq/balcao-backend/api/validators"
	"github.com/balcaohq/balcao-backend/internal/cashbook"
	"github.com/balcaohq/balcao-backend/pkg/enums"
	pkgerrors "github.com/balcaohq/balcao-backend/pkg/errors"
	"github.com/balcaohq/balcao-backend/pkg/logger"
)

const dayLayout = "2006-01-02"

type cashMovementPayload struct {
	Type   string `json:"type" validate:"required"`
	Amount string `json:"amount" validate:"required"`
	Note   string `json:"note,omitempty"`
}

// CashbookRecord appends an operator movement (opening, reinforcement,
// withdrawal, closing) to the drawer ledger.
func CashbookRecord(svc cashbook.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cashbook service unavailable"))
			return
		}

		var payload cashMovementPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		movementType, err := enums.ParseCashMovementType(payload.Type)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid movement type"))
			return
		}

		amount, err := decimal.NewFromString(payload.Amount)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid amount"))
			return
		}

		movement, err := svc.Record(ctx, movementType, amount, payload.Note)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, movement)
	}
}

// CashbookListDay returns the drawer movements for one day (default today).
func CashbookListDay(svc cashbook.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cashbook service unavailable"))
			return
		}

		day, err := dayQuery(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		movements, err := svc.ListDay(ctx, day)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, movements)
	}
}

// CashbookBalance reports the running drawer balance for one day.
func CashbookBalance(svc cashbook.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cashbook service unavailable"))
			return
		}

		day, err := dayQuery(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		balance, err := svc.DayBalance(ctx, day)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{
			"day":     day.Format(dayLayout),
			"balance": balance,
		})
	}
}

func dayQuery(r *http.Request) (time.Time, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("day"))
	if raw == "" {
		return time.Now().UTC(), nil
	}
	day, err := time.Parse(dayLayout, raw)
	if err != nil {
		return time.Time{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid day, expected YYYY-MM-DD")
	}
	return day, nil
}
