package customers

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/balcaohq/balcao-backend/pkg/db/models"
)

// Repository defines persistence operations for the customer directory.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, customer *models.Customer) (*models.Customer, error)
	Update(ctx context.Context, customer *models.Customer) (*models.Customer, error)
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Customer, error)
	List(ctx context.Context, search string) ([]models.Customer, error)
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

func (r *repository) Create(ctx context.Context, customer *models.Customer) (*models.Customer, error) {
	if err := r.db.WithContext(ctx).Create(customer).Error; err != nil {
		return nil, err
	}
	return customer, nil
}

func (r *repository) Update(ctx context.Context, customer *models.Customer) (*models.Customer, error) {
	if err := r.db.WithContext(ctx).
		Model(&models.Customer{}).
		Where("id = ?", customer.ID).
		Updates(map[string]any{
			"person_type": customer.PersonType,
			"name":        customer.Name,
			"document":    customer.Document,
			"phone":       customer.Phone,
			"street":      customer.Street,
			"number":      customer.Number,
			"district":    customer.District,
			"complement":  customer.Complement,
			"zip_code":    customer.ZipCode,
			"city":        customer.City,
		}).Error; err != nil {
		return nil, err
	}
	return r.FindByID(ctx, customer.ID)
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Customer{}, "id = ?", id).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Customer, error) {
	var customer models.Customer
	if err := r.db.WithContext(ctx).First(&customer, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &customer, nil
}

func (r *repository) List(ctx context.Context, search string) ([]models.Customer, error) {
	query := r.db.WithContext(ctx).Model(&models.Customer{})
	if search != "" {
		like := "%" + search + "%"
		query = query.Where("name LIKE ? OR document LIKE ? OR phone LIKE ?", like, like, like)
	}

	var customers []models.Customer
	if err := query.Order("name").Find(&customers).Error; err != nil {
		return nil, err
	}
	return customers, nil
}
