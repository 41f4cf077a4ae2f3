package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/balcaohq/balcao-backend/api/responses"
	"github.com/balcaohq/balcao-backend/api/validators"
	"github.com/balcaohq/balcao-backend/internal/catalog"
	"github.com/balcaohq/balcao-backend/pkg/enums"
	pkgerrors "github.com/balcaohq/balcao-backend/pkg/errors"
	"github.com/balcaohq/balcao-backend/pkg/logger"
)

type itemPayload struct {
	GroupID      *string `json:"group_id,omitempty" validate:"omitempty,uuid"`
	InternalCode string  `json:"internal_code,omitempty"`
	Barcode      string  `json:"barcode,omitempty"`
	Name         string  `json:"name" validate:"required"`
	UnitPrice    string  `json:"unit_price" validate:"required"`
	CostPrice    string  `json:"cost_price,omitempty"`
	Unit         string  `json:"unit,omitempty"`
	Kind         string  `json:"kind,omitempty"`
	IsActive     *bool   `json:"is_active,omitempty"`
	ImageURL     *string `json:"image_url,omitempty"`
}

type quotaPayload struct {
	FreeLimit     int      `json:"free_limit" validate:"min=0"`
	ComplementIDs []string `json:"complement_ids" validate:"dive,uuid"`
}

type groupPayload struct {
	Name string `json:"name" validate:"required"`
}

// CatalogListItems returns catalog items, optionally filtered by group,
// search term, or the active flag.
func CatalogListItems(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		filters := catalog.ItemFilters{
			Search:     strings.TrimSpace(r.URL.Query().Get("search")),
			OnlyActive: r.URL.Query().Get("only_active") == "true",
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("group_id")); raw != "" {
			groupID, err := uuid.Parse(raw)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid group id"))
				return
			}
			filters.GroupID = &groupID
		}

		items, err := svc.ListItems(ctx, filters)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, items)
	}
}

// CatalogCreateItem registers a sellable item.
func CatalogCreateItem(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		var payload itemPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		input, err := payload.toCreateInput()
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		item, err := svc.CreateItem(ctx, input)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, item)
	}
}

// CatalogGetItem returns one item with its quota preloaded.
func CatalogGetItem(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		itemID, err := pathUUID(r, "itemId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		item, err := svc.GetItem(ctx, itemID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, item)
	}
}

// CatalogUpdateItem replaces the editable fields of an item.
func CatalogUpdateItem(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		itemID, err := pathUUID(r, "itemId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var payload itemPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		input, err := payload.toUpdateInput()
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		item, err := svc.UpdateItem(ctx, itemID, input)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, item)
	}
}

// CatalogDeactivateItem soft-deletes an item so historical orders keep their
// snapshots.
func CatalogDeactivateItem(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		itemID, err := pathUUID(r, "itemId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if err := svc.DeactivateItem(ctx, itemID); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"deactivated": true})
	}
}

// CatalogSetQuota configures the free complement allowance of a principal.
func CatalogSetQuota(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		itemID, err := pathUUID(r, "itemId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var payload quotaPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		complementIDs := make([]uuid.UUID, 0, len(payload.ComplementIDs))
		for _, raw := range payload.ComplementIDs {
			complementID, err := uuid.Parse(raw)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid complement id"))
				return
			}
			complementIDs = append(complementIDs, complementID)
		}

		quota, err := svc.SetQuota(ctx, itemID, payload.FreeLimit, complementIDs)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, quota)
	}
}

// CatalogRemoveQuota drops the quota so every complement bills at list price.
func CatalogRemoveQuota(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		itemID, err := pathUUID(r, "itemId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if err := svc.RemoveQuota(ctx, itemID); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"removed": true})
	}
}

// CatalogCreateGroup adds a display group for the counter UI.
func CatalogCreateGroup(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		var payload groupPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		group, err := svc.CreateGroup(ctx, payload.Name)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, group)
	}
}

// CatalogListGroups returns every display group.
func CatalogListGroups(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		groups, err := svc.ListGroups(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, groups)
	}
}

func (p itemPayload) toCreateInput() (catalog.CreateItemInput, error) {
	common, err := p.parse()
	if err != nil {
		return catalog.CreateItemInput{}, err
	}
	return catalog.CreateItemInput{
		GroupID:      common.groupID,
		InternalCode: p.InternalCode,
		Barcode:      p.Barcode,
		Name:         p.Name,
		UnitPrice:    common.unitPrice,
		CostPrice:    common.costPrice,
		Unit:         p.Unit,
		Kind:         common.kind,
		ImageURL:     p.ImageURL,
	}, nil
}

func (p itemPayload) toUpdateInput() (catalog.UpdateItemInput, error) {
	common, err := p.parse()
	if err != nil {
		return catalog.UpdateItemInput{}, err
	}
	kind := common.kind
	if kind == "" {
		kind = enums.ItemKindPrincipal
	}
	isActive := true
	if p.IsActive != nil {
		isActive = *p.IsActive
	}
	return catalog.UpdateItemInput{
		GroupID:      common.groupID,
		InternalCode: p.InternalCode,
		Barcode:      p.Barcode,
		Name:         p.Name,
		UnitPrice:    common.unitPrice,
		CostPrice:    common.costPrice,
		Unit:         p.Unit,
		Kind:         kind,
		IsActive:     isActive,
		ImageURL:     p.ImageURL,
	}, nil
}

type parsedItemPayload struct {
	groupID   *uuid.UUID
	unitPrice decimal.Decimal
	costPrice decimal.Decimal
	kind      enums.ItemKind
}

func (p itemPayload) parse() (parsedItemPayload, error) {
	parsed := parsedItemPayload{}

	if p.GroupID != nil && *p.GroupID != "" {
		groupID, err := uuid.Parse(*p.GroupID)
		if err != nil {
			return parsed, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid group id")
		}
		parsed.groupID = &groupID
	}

	unitPrice, err := decimal.NewFromString(p.UnitPrice)
	if err != nil {
		return parsed, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid unit price")
	}
	parsed.unitPrice = unitPrice

	if p.CostPrice != "" {
		costPrice, err := decimal.NewFromString(p.CostPrice)
		if err != nil {
			return parsed, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cost price")
		}
		parsed.costPrice = costPrice
	}

	parsed.kind = enums.ItemKind(p.Kind)
	return parsed, nil
}

func pathUUID(r *http.Request, param string) (uuid.UUID, error) {
	raw := strings.TrimSpace(chi.URLParam(r, param))
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, param+" is required")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid "+param)
	}
	return id, nil
}
