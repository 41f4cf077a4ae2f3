package cashbook

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/balcaohq/balcao-backend/pkg/db/models"
)

// Repository defines persistence operations for the cash drawer ledger.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, movement *models.CashMovement) (*models.CashMovement, error)
	ListBetween(ctx context.Context, from, to time.Time) ([]models.CashMovement, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, movement *models.CashMovement) (*models.CashMovement, error) {
	if err := r.db.WithContext(ctx).Create(movement).Error; err != nil {
		return nil, err
	}
	return movement, nil
}

func (r *repository) ListBetween(ctx context.Context, from, to time.Time) ([]models.CashMovement, error) {
	var movements []models.CashMovement
	if err := r.db.WithContext(ctx).
		Where("occurred_at >= ? AND occurred_at < ?", from, to).
		Order("occurred_at").
		Find(&movements).Error; err != nil {
		return nil, err
	}
	return movements, nil
}
