package paymentmethods

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/balcaohq/balcao-backend/pkg/db/models"
)

// Repository defines persistence operations for payment methods.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, method *models.PaymentMethod) (*models.PaymentMethod, error)
	Update(ctx context.Context, method *models.PaymentMethod) (*models.PaymentMethod, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.PaymentMethod, error)
	List(ctx context.Context, onlyActive bool) ([]models.PaymentMethod, error)
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

func (r *repository) Create(ctx context.Context, method *models.PaymentMethod) (*models.PaymentMethod, error) {
	if err := r.db.WithContext(ctx).Create(method).Error; err != nil {
		return nil, err
	}
	return method, nil
}

func (r *repository) Update(ctx context.Context, method *models.PaymentMethod) (*models.PaymentMethod, error) {
	if err := r.db.WithContext(ctx).
		Model(&models.PaymentMethod{}).
		Where("id = ?", method.ID).
		Updates(map[string]any{
			"name":      method.Name,
			"is_cash":   method.IsCash,
			"is_active": method.IsActive,
		}).Error; err != nil {
		return nil, err
	}
	return r.FindByID(ctx, method.ID)
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.PaymentMethod, error) {
	var method models.PaymentMethod
	if err := r.db.WithContext(ctx).First(&method, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &method, nil
}

func (r *repository) List(ctx context.Context, onlyActive bool) ([]models.PaymentMethod, error) {
	query := r.db.WithContext(ctx).Model(&models.PaymentMethod{})
	if onlyActive {
		query = query.Where("is_active = ?", true)
	}

	var methods []models.PaymentMethod
	if err := query.Order("name").Find(&methods).Error; err != nil {
		return nil, err
	}
	return methods, nil
}
