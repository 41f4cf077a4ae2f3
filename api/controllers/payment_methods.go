package controllers

import (
	"net/http"

	"github.com/balcaohq/balcao-backend/api/responses"
	"github.com/balcaohq/balcao-backend/api/validators"
	"github.com/balcaohq/balcao-backend/internal/paymentmethods"
	pkgerrors "github.com/balcaohq/balcao-backend/pkg/errors"
	"github.com/balcaohq/balcao-backend/pkg/logger"
)

type paymentMethodPayload struct {
	Name     string `json:"name" validate:"required"`
	IsCash   bool   `json:"is_cash"`
	IsActive *bool  `json:"is_active,omitempty"`
}

// PaymentMethodList returns settlement options; only_active=true narrows to
// the ones currently offered.
func PaymentMethodList(svc paymentmethods.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payment methods service unavailable"))
			return
		}

		onlyActive := r.URL.Query().Get("only_active") == "true"
		methods, err := svc.List(ctx, onlyActive)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, methods)
	}
}

// PaymentMethodCreate registers a settlement option.
func PaymentMethodCreate(svc paymentmethods.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payment methods service unavailable"))
			return
		}

		var payload paymentMethodPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		method, err := svc.Create(ctx, payload.Name, payload.IsCash)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, method)
	}
}

// PaymentMethodGet returns one settlement option.
func PaymentMethodGet(svc paymentmethods.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payment methods service unavailable"))
			return
		}

		methodID, err := pathUUID(r, "methodId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		method, err := svc.Get(ctx, methodID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, method)
	}
}

// PaymentMethodUpdate renames or toggles a settlement option. Deactivating is
// the supported way to retire one; orders keep the denormalized name.
func PaymentMethodUpdate(svc paymentmethods.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payment methods service unavailable"))
			return
		}

		methodID, err := pathUUID(r, "methodId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var payload paymentMethodPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		isActive := true
		if payload.IsActive != nil {
			isActive = *payload.IsActive
		}
		method, err := svc.Update(ctx, methodID, payload.Name, payload.IsCash, isActive)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, method)
	}
}
