package catalog

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/balcaohq/balcao-backend/pkg/db/models"
)

// Repository defines persistence operations for catalog items, groups and
// complement quotas.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	CreateItem(ctx context.Context, item *models.Item) (*models.Item, error)
	UpdateItem(ctx context.Context, item *models.Item) (*models.Item, error)
	DeactivateItem(ctx context.Context, id uuid.UUID) error
	FindItem(ctx context.Context, id uuid.UUID) (*models.Item, error)
	ListItems(ctx context.Context, filters ItemFilters) ([]models.Item, error)

	ReplaceQuota(ctx context.Context, itemID uuid.UUID, freeLimit int, complementIDs []uuid.UUID) (*models.ComplementQuota, error)
	FindQuotaByItem(ctx context.Context, itemID uuid.UUID) (*models.ComplementQuota, error)
	DeleteQuota(ctx context.Context, itemID uuid.UUID) error

	CreateGroup(ctx context.Context, group *models.ItemGroup) (*models.ItemGroup, error)
	ListGroups(ctx context.Context) ([]models.ItemGroup, error)
}

// ItemFilters narrows ListItems. Zero values mean "no filter".
type ItemFilters struct {
	GroupID    *uuid.UUID
	Search     string
	OnlyActive bool
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{db: tx}
}

func (r *repository) CreateItem(ctx context.Context, item *models.Item) (*models.Item, error) {
	if err := r.db.WithContext(ctx).Create(item).Error; err != nil {
		return nil, err
	}
	return item, nil
}

func (r *repository) UpdateItem(ctx context.Context, item *models.Item) (*models.Item, error) {
	if err := r.db.WithContext(ctx).
		Model(&models.Item{}).
		Where("id = ?", item.ID).
		Updates(map[string]any{
			"group_id":      item.GroupID,
			"internal_code": item.InternalCode,
			"barcode":       item.Barcode,
			"name":          item.Name,
			"unit_price":    item.UnitPrice,
			"cost_price":    item.CostPrice,
			"unit":          item.Unit,
			"kind":          item.Kind,
			"is_active":     item.IsActive,
			"image_url":     item.ImageURL,
		}).Error; err != nil {
		return nil, err
	}
	return r.FindItem(ctx, item.ID)
}

// DeactivateItem flips is_active off instead of deleting: completed orders
// reference item ids, so rows are never removed.
func (r *repository) DeactivateItem(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.Item{}).
		Where("id = ?", id).
		Update("is_active", false).Error
}

func (r *repository) FindItem(ctx context.Context, id uuid.UUID) (*models.Item, error) {
	var item models.Item
	if err := r.db.WithContext(ctx).
		Preload("Quota.Eligible").
		First(&item, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *repository) ListItems(ctx context.Context, filters ItemFilters) ([]models.Item, error) {
	query := r.db.WithContext(ctx).Model(&models.Item{}).Preload("Quota.Eligible")
	if filters.GroupID != nil {
		query = query.Where("group_id = ?", *filters.GroupID)
	}
	if filters.Search != "" {
		like := "%" + filters.Search + "%"
		query = query.Where("name LIKE ? OR internal_code LIKE ? OR barcode LIKE ?", like, like, like)
	}
	if filters.OnlyActive {
		query = query.Where("is_active = ?", true)
	}

	var items []models.Item
	if err := query.Order("name").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// ReplaceQuota upserts the item's quota and swaps its eligibility list in one
// shot.
func (r *repository) ReplaceQuota(ctx context.Context, itemID uuid.UUID, freeLimit int, complementIDs []uuid.UUID) (*models.ComplementQuota, error) {
	tx := r.db.WithContext(ctx)

	var quota models.ComplementQuota
	err := tx.First(&quota, "item_id = ?", itemID).Error
	switch {
	case err == gorm.ErrRecordNotFound:
		quota = models.ComplementQuota{ItemID: itemID, FreeLimit: freeLimit}
		if err := tx.Create(&quota).Error; err != nil {
			return nil, err
		}
	case err != nil:
		return nil, err
	default:
		if err := tx.Model(&quota).Update("free_limit", freeLimit).Error; err != nil {
			return nil, err
		}
	}

	if err := tx.Where("quota_id = ?", quota.ID).Delete(&models.ComplementQuotaItem{}).Error; err != nil {
		return nil, err
	}
	if len(complementIDs) > 0 {
		eligible := make([]models.ComplementQuotaItem, 0, len(complementIDs))
		for _, id := range complementIDs {
			eligible = append(eligible, models.ComplementQuotaItem{QuotaID: quota.ID, ComplementID: id})
		}
		if err := tx.Create(&eligible).Error; err != nil {
			return nil, err
		}
	}
	return r.FindQuotaByItem(ctx, itemID)
}

func (r *repository) FindQuotaByItem(ctx context.Context, itemID uuid.UUID) (*models.ComplementQuota, error) {
	var quota models.ComplementQuota
	if err := r.db.WithContext(ctx).
		Preload("Eligible").
		First(&quota, "item_id = ?", itemID).Error; err != nil {
		return nil, err
	}
	return &quota, nil
}

func (r *repository) DeleteQuota(ctx context.Context, itemID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("item_id = ?", itemID).
		Delete(&models.ComplementQuota{}).Error
}

func (r *repository) CreateGroup(ctx context.Context, group *models.ItemGroup) (*models.ItemGroup, error) {
	if err := r.db.WithContext(ctx).Create(group).Error; err != nil {
		return nil, err
	}
	return group, nil
}

func (r *repository) ListGroups(ctx context.Context) ([]models.ItemGroup, error) {
	var groups []models.ItemGroup
	if err := r.db.WithContext(ctx).Order("name").Find(&groups).Error; err != nil {
		return nil, err
	}
	return groups, nil
}
