package controllers

import (
	"net/http"
	"strings"

	"github.com/balcaohq/balcao-backend/api/responses"
	"github.com/balcaohq/balcao-backend/api/validators"
	"github.com/balcaohq/balcao-backend/internal/customers"
	"github.com/balcaohq/balcao-backend/pkg/enums"
	pkgerrors "github.com/balcaohq/balcao-backend/pkg/errors"
	"github.com/balcaohq/balcao-backend/pkg/logger"
)

type customerPayload struct {
	PersonType string  `json:"person_type,omitempty" validate:"omitempty,oneof=individual company"`
	Name       string  `json:"name" validate:"required"`
	Document   string  `json:"document,omitempty"`
	Phone      string  `json:"phone,omitempty"`
	Street     string  `json:"street,omitempty"`
	Number     string  `json:"number,omitempty"`
	District   string  `json:"district,omitempty"`
	Complement string  `json:"complement,omitempty"`
	ZipCode    *string `json:"zip_code,omitempty"`
	City       *string `json:"city,omitempty"`
}

func (p customerPayload) toInput() customers.Input {
	return customers.Input{
		PersonType: enums.PersonType(p.PersonType),
		Name:       p.Name,
		Document:   p.Document,
		Phone:      p.Phone,
		Street:     p.Street,
		Number:     p.Number,
		District:   p.District,
		Complement: p.Complement,
		ZipCode:    p.ZipCode,
		City:       p.City,
	}
}

// CustomerList returns the directory, optionally filtered by a search term.
func CustomerList(svc customers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "customers service unavailable"))
			return
		}

		search := strings.TrimSpace(r.URL.Query().Get("search"))
		result, err := svc.List(ctx, search)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// CustomerCreate registers a new customer.
func CustomerCreate(svc customers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "customers service unavailable"))
			return
		}

		var payload customerPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		customer, err := svc.Create(ctx, payload.toInput())
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, customer)
	}
}

// CustomerGet returns one customer.
func CustomerGet(svc customers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "customers service unavailable"))
			return
		}

		customerID, err := pathUUID(r, "customerId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		customer, err := svc.Get(ctx, customerID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, customer)
	}
}

// CustomerUpdate replaces the editable fields of a customer.
func CustomerUpdate(svc customers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "customers service unavailable"))
			return
		}

		customerID, err := pathUUID(r, "customerId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var payload customerPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		customer, err := svc.Update(ctx, customerID, payload.toInput())
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, customer)
	}
}

// CustomerDelete removes a customer from the directory. Order snapshots keep
// the denormalized name.
func CustomerDelete(svc customers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "customers service unavailable"))
			return
		}

		customerID, err := pathUUID(r, "customerId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if err := svc.Delete(ctx, customerID); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"deleted": true})
	}
}
