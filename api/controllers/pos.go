package controllers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/balcaohq/balcao-backend/api/middleware"
	"github.com/balcaohq/balcao-backend/api/responses"
	"github.com/balcaohq/balcao-backend/api/validators"
	"github.com/balcaohq/balcao-backend/internal/pos"
	"github.com/balcaohq/balcao-backend/pkg/enums"
	pkgerrors "github.com/balcaohq/balcao-backend/pkg/errors"
	"github.com/balcaohq/balcao-backend/pkg/logger"
)

type startSessionPayload struct {
	FulfillmentType string `json:"fulfillment_type,omitempty"`
}

type addItemPayload struct {
	ItemID   string `json:"item_id" validate:"required,uuid"`
	Quantity int    `json:"quantity,omitempty" validate:"omitempty,min=1"`
}

type attachComplementPayload struct {
	ComplementID string `json:"complement_id" validate:"required,uuid"`
	Quantity     int    `json:"quantity,omitempty" validate:"omitempty,min=1"`
}

// No validate tag on quantity: zero and negative values flow through to the
// engine so the terminal sees INVALID_QUANTITY rather than a decode error.
type setQuantityPayload struct {
	Quantity int `json:"quantity"`
}

type setCustomerPayload struct {
	CustomerID *string `json:"customer_id" validate:"omitempty,uuid"`
}

type setNotePayload struct {
	Note string `json:"note"`
}

type setFulfillmentPayload struct {
	FulfillmentType string `json:"fulfillment_type" validate:"required"`
}

type selectMethodPayload struct {
	MethodID string `json:"method_id" validate:"required,uuid"`
}

type finalizePayload struct {
	AmountTendered *string `json:"amount_tendered,omitempty"`
}

// PosStartSession opens a composition session for the calling terminal.
func PosStartSession(svc pos.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "pos service unavailable"))
			return
		}

		var payload startSessionPayload
		if r.ContentLength != 0 {
			if err := validators.DecodeJSONBody(r, &payload); err != nil {
				responses.WriteError(ctx, logg, w, err)
				return
			}
		}

		fulfillment := enums.FulfillmentQuickSale
		if payload.FulfillmentType != "" {
			parsed, err := enums.ParseFulfillmentType(payload.FulfillmentType)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid fulfillment type"))
				return
			}
			fulfillment = parsed
		}

		snapshot, err := svc.StartSession(ctx, middleware.TerminalIDFromContext(ctx), fulfillment)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, snapshot)
	}
}

// PosGetSession returns the live session snapshot for the terminal.
func PosGetSession(svc pos.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "pos service unavailable"))
			return
		}

		snapshot, err := svc.GetSession(ctx, middleware.TerminalIDFromContext(ctx))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, snapshot)
	}
}

// PosAddItem adds a principal item to the cart; repeated adds merge into the
// existing line.
func PosAddItem(svc pos.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "pos service unavailable"))
			return
		}

		var payload addItemPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		itemID, err := uuid.Parse(payload.ItemID)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid item id"))
			return
		}

		qty := payload.Quantity
		if qty == 0 {
			qty = 1
		}

		snapshot, err := svc.AddItem(ctx, middleware.TerminalIDFromContext(ctx), itemID, qty)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, snapshot)
	}
}

// PosAttachComplement attaches a complement under a principal line.
func PosAttachComplement(svc pos.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "pos service unavailable"))
			return
		}

		principalID, err := pathUUID(r, "itemId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var payload attachComplementPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		complementID, err := uuid.Parse(payload.ComplementID)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid complement id"))
			return
		}

		qty := payload.Quantity
		if qty == 0 {
			qty = 1
		}

		snapshot, err := svc.AttachComplement(ctx, middleware.TerminalIDFromContext(ctx), principalID, complementID, qty)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, snapshot)
	}
}

// PosSetQuantity replaces a line's quantity and reprices its complements.
func PosSetQuantity(svc pos.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "pos service unavailable"))
			return
		}

		itemID, err := pathUUID(r, "itemId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var payload setQuantityPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		snapshot, err := svc.SetQuantity(ctx, middleware.TerminalIDFromContext(ctx), itemID, payload.Quantity)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, snapshot)
	}
}

// PosRemoveLine drops a principal line and everything attached to it.
func PosRemoveLine(svc pos.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "pos service unavailable"))
			return
		}

		itemID, err := pathUUID(r, "itemId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		snapshot, err := svc.RemoveLine(ctx, middleware.TerminalIDFromContext(ctx), itemID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, snapshot)
	}
}

// PosSetCustomer attaches a customer to the session; a null customer_id
// detaches the current one.
func PosSetCustomer(svc pos.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "pos service unavailable"))
			return
		}

		var payload setCustomerPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var customerID *uuid.UUID
		if payload.CustomerID != nil && *payload.CustomerID != "" {
			parsed, err := uuid.Parse(*payload.CustomerID)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid customer id"))
				return
			}
			customerID = &parsed
		}

		snapshot, err := svc.SetCustomer(ctx, middleware.TerminalIDFromContext(ctx), customerID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, snapshot)
	}
}

// PosSetNote replaces the free-form order note.
func PosSetNote(svc pos.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "pos service unavailable"))
			return
		}

		var payload setNotePayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		snapshot, err := svc.SetNote(ctx, middleware.TerminalIDFromContext(ctx), payload.Note)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, snapshot)
	}
}

// PosSetFulfillment switches how the order leaves the counter.
func PosSetFulfillment(svc pos.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "pos service unavailable"))
			return
		}

		var payload setFulfillmentPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		fulfillment, err := enums.ParseFulfillmentType(payload.FulfillmentType)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid fulfillment type"))
			return
		}

		snapshot, err := svc.SetFulfillment(ctx, middleware.TerminalIDFromContext(ctx), fulfillment)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, snapshot)
	}
}

// PosSettle validates the cart and freezes the amount due.
func PosSettle(svc pos.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "pos service unavailable"))
			return
		}

		amountDue, err := svc.InitiateSettlement(ctx, middleware.TerminalIDFromContext(ctx))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"amount_due": amountDue})
	}
}

// PosSelectMethod picks (or re-picks) the settlement option.
func PosSelectMethod(svc pos.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "pos service unavailable"))
			return
		}

		var payload selectMethodPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		methodID, err := uuid.Parse(payload.MethodID)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid method id"))
			return
		}

		snapshot, err := svc.SelectMethod(ctx, middleware.TerminalIDFromContext(ctx), methodID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, snapshot)
	}
}

// PosFinalize settles the session and returns the persisted order. Cash
// settlements require amount_tendered; other methods ignore it.
func PosFinalize(svc pos.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "pos service unavailable"))
			return
		}

		var payload finalizePayload
		if r.ContentLength != 0 {
			if err := validators.DecodeJSONBody(r, &payload); err != nil {
				responses.WriteError(ctx, logg, w, err)
				return
			}
		}

		var tendered *decimal.Decimal
		if payload.AmountTendered != nil && *payload.AmountTendered != "" {
			parsed, err := decimal.NewFromString(*payload.AmountTendered)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid amount tendered"))
				return
			}
			tendered = &parsed
		}

		order, err := svc.Finalize(ctx, middleware.TerminalIDFromContext(ctx), tendered)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}

// PosCancel abandons the session without writing anything.
func PosCancel(svc pos.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "pos service unavailable"))
			return
		}

		if err := svc.Cancel(ctx, middleware.TerminalIDFromContext(ctx)); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"cancelled": true})
	}
}

// PosSavePending stores the cart as a pending order, deferring settlement.
func PosSavePending(svc pos.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "pos service unavailable"))
			return
		}

		order, err := svc.SavePending(ctx, middleware.TerminalIDFromContext(ctx))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}
