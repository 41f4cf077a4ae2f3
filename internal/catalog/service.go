package catalog

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/balcaohq/balcao-backend/internal/pos"
	"github.com/balcaohq/balcao-backend/pkg/db/models"
	"github.com/balcaohq/balcao-backend/pkg/enums"
	pkgerrors "github.com/balcaohq/balcao-backend/pkg/errors"
)

// Service manages the sellable catalog and feeds item/quota snapshots to the
// composition engine. It implements pos.CatalogLookup.
type Service interface {
	CreateItem(ctx context.Context, input CreateItemInput) (*models.Item, error)
	UpdateItem(ctx context.Context, id uuid.UUID, input UpdateItemInput) (*models.Item, error)
	DeactivateItem(ctx context.Context, id uuid.UUID) error
	GetItem(ctx context.Context, id uuid.UUID) (*models.Item, error)
	ListItems(ctx context.Context, filters ItemFilters) ([]models.Item, error)

	SetQuota(ctx context.Context, itemID uuid.UUID, freeLimit int, complementIDs []uuid.UUID) (*models.ComplementQuota, error)
	RemoveQuota(ctx context.Context, itemID uuid.UUID) error

	CreateGroup(ctx context.Context, name string) (*models.ItemGroup, error)
	ListGroups(ctx context.Context) ([]models.ItemGroup, error)

	GetSellableItem(ctx context.Context, id uuid.UUID) (pos.ItemSnapshot, error)
	GetQuotaForPrincipal(ctx context.Context, id uuid.UUID) (*pos.QuotaSnapshot, error)
}

// CreateItemInput carries the fields accepted when registering an item.
type CreateItemInput struct {
	GroupID      *uuid.UUID
	InternalCode string
	Barcode      string
	Name         string
	UnitPrice    decimal.Decimal
	CostPrice    decimal.Decimal
	Unit         string
	Kind         enums.ItemKind
	ImageURL     *string
}

// UpdateItemInput mirrors CreateItemInput plus the active flag.
type UpdateItemInput struct {
	GroupID      *uuid.UUID
	InternalCode string
	Barcode      string
	Name         string
	UnitPrice    decimal.Decimal
	CostPrice    decimal.Decimal
	Unit         string
	Kind         enums.ItemKind
	IsActive     bool
	ImageURL     *string
}

type service struct {
	repo Repository
}

// NewService builds the catalog service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) CreateItem(ctx context.Context, input CreateItemInput) (*models.Item, error) {
	if input.Name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item name required")
	}
	if input.UnitPrice.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unit price cannot be negative")
	}
	kind := input.Kind
	if kind == "" {
		kind = enums.ItemKindPrincipal
	}
	if !kind.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown item kind %q", kind))
	}
	unit := input.Unit
	if unit == "" {
		unit = "UN"
	}

	return s.repo.CreateItem(ctx, &models.Item{
		GroupID:      input.GroupID,
		InternalCode: input.InternalCode,
		Barcode:      input.Barcode,
		Name:         input.Name,
		UnitPrice:    input.UnitPrice,
		CostPrice:    input.CostPrice,
		Unit:         unit,
		Kind:         kind,
		IsActive:     true,
		ImageURL:     input.ImageURL,
	})
}

func (s *service) UpdateItem(ctx context.Context, id uuid.UUID, input UpdateItemInput) (*models.Item, error) {
	if input.Name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item name required")
	}
	if input.UnitPrice.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unit price cannot be negative")
	}
	if !input.Kind.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown item kind %q", input.Kind))
	}

	if _, err := s.GetItem(ctx, id); err != nil {
		return nil, err
	}
	return s.repo.UpdateItem(ctx, &models.Item{
		ID:           id,
		GroupID:      input.GroupID,
		InternalCode: input.InternalCode,
		Barcode:      input.Barcode,
		Name:         input.Name,
		UnitPrice:    input.UnitPrice,
		CostPrice:    input.CostPrice,
		Unit:         input.Unit,
		Kind:         input.Kind,
		IsActive:     input.IsActive,
		ImageURL:     input.ImageURL,
	})
}

func (s *service) DeactivateItem(ctx context.Context, id uuid.UUID) error {
	if _, err := s.GetItem(ctx, id); err != nil {
		return err
	}
	return s.repo.DeactivateItem(ctx, id)
}

func (s *service) GetItem(ctx context.Context, id uuid.UUID) (*models.Item, error) {
	item, err := s.repo.FindItem(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading item")
	}
	return item, nil
}

func (s *service) ListItems(ctx context.Context, filters ItemFilters) ([]models.Item, error) {
	items, err := s.repo.ListItems(ctx, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing items")
	}
	return items, nil
}

// SetQuota configures the free complement allowance of a principal item.
// Every referenced complement must exist and carry the complement kind.
func (s *service) SetQuota(ctx context.Context, itemID uuid.UUID, freeLimit int, complementIDs []uuid.UUID) (*models.ComplementQuota, error) {
	if freeLimit < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "free limit cannot be negative")
	}

	owner, err := s.GetItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if owner.Kind != enums.ItemKindPrincipal {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "only principal items carry a quota")
	}

	for _, complementID := range complementIDs {
		complement, err := s.GetItem(ctx, complementID)
		if err != nil {
			return nil, err
		}
		if complement.Kind != enums.ItemKindComplement {
			return nil, pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("item %q is not a complement", complement.Name))
		}
	}

	quota, err := s.repo.ReplaceQuota(ctx, itemID, freeLimit, complementIDs)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "replacing quota")
	}
	return quota, nil
}

func (s *service) RemoveQuota(ctx context.Context, itemID uuid.UUID) error {
	return s.repo.DeleteQuota(ctx, itemID)
}

func (s *service) CreateGroup(ctx context.Context, name string) (*models.ItemGroup, error) {
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "group name required")
	}
	return s.repo.CreateGroup(ctx, &models.ItemGroup{Name: name})
}

func (s *service) ListGroups(ctx context.Context) ([]models.ItemGroup, error) {
	return s.repo.ListGroups(ctx)
}

// GetSellableItem returns the snapshot carts capture. Missing and inactive
// items both map to ITEM_UNAVAILABLE so the engine treats them uniformly.
func (s *service) GetSellableItem(ctx context.Context, id uuid.UUID) (pos.ItemSnapshot, error) {
	item, err := s.repo.FindItem(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return pos.ItemSnapshot{}, pkgerrors.New(pkgerrors.CodeItemUnavailable, "item is not available for sale")
		}
		return pos.ItemSnapshot{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading item")
	}
	if !item.IsActive {
		return pos.ItemSnapshot{}, pkgerrors.New(pkgerrors.CodeItemUnavailable, "item is not available for sale")
	}
	return pos.ItemSnapshot{
		ItemID:    item.ID,
		Name:      item.Name,
		Unit:      item.Unit,
		UnitPrice: item.UnitPrice,
	}, nil
}

// GetQuotaForPrincipal returns the quota snapshot, or nil when the item has
// no quota configured.
func (s *service) GetQuotaForPrincipal(ctx context.Context, id uuid.UUID) (*pos.QuotaSnapshot, error) {
	quota, err := s.repo.FindQuotaByItem(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading quota")
	}

	snapshot := &pos.QuotaSnapshot{
		FreeLimit: quota.FreeLimit,
		Eligible:  make(map[uuid.UUID]struct{}, len(quota.Eligible)),
	}
	for _, eligible := range quota.Eligible {
		snapshot.Eligible[eligible.ComplementID] = struct{}{}
	}
	return snapshot, nil
}
