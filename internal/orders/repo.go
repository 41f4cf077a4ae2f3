package orders

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/balcaohq/balcao-backend/pkg/db/models"
	"github.com/balcaohq/balcao-backend/pkg/enums"
)

// Repository defines persistence operations for completed and pending
// orders. Create satisfies the writer contract the composition engine uses
// at settlement.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, order *models.Order) (*models.Order, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	List(ctx context.Context, filters Filters) ([]models.Order, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status enums.OrderStatus) error
	SumTotalsBetween(ctx context.Context, from, to time.Time, excludeStatuses []enums.OrderStatus) (SalesSummary, error)
}

// Filters narrows List. Zero values mean "no filter".
type Filters struct {
	Status *enums.OrderStatus
	From   *time.Time
	To     *time.Time
}

// SalesSummary aggregates order totals for a reporting window.
type SalesSummary struct {
	OrderCount int64           `json:"order_count"`
	GrossTotal string          `json:"gross_total"`
	Totals     []StatusBreakup `json:"totals"`
}

// StatusBreakup is the per-status slice of a sales summary.
type StatusBreakup struct {
	Status enums.OrderStatus `json:"status"`
	Count  int64             `json:"count"`
	Total  string            `json:"total"`
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

func (r *repository) Create(ctx context.Context, order *models.Order) (*models.Order, error) {
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		return nil, err
	}
	return order, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := r.db.WithContext(ctx).
		Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("position") }).
		Preload("Lines.Complements", func(db *gorm.DB) *gorm.DB { return db.Order("position") }).
		First(&order, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) List(ctx context.Context, filters Filters) ([]models.Order, error) {
	query := r.db.WithContext(ctx).Model(&models.Order{})
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.From != nil {
		query = query.Where("placed_at >= ?", *filters.From)
	}
	if filters.To != nil {
		query = query.Where("placed_at < ?", *filters.To)
	}

	var orders []models.Order
	if err := query.Order("placed_at DESC").Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *repository) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.OrderStatus) error {
	return r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", id).
		Update("status", status).Error
}

func (r *repository) SumTotalsBetween(ctx context.Context, from, to time.Time, excludeStatuses []enums.OrderStatus) (SalesSummary, error) {
	type row struct {
		Status enums.OrderStatus
		Count  int64
		Total  string
	}

	query := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Select("status, COUNT(*) AS count, COALESCE(SUM(total), 0) AS total").
		Where("placed_at >= ? AND placed_at < ?", from, to).
		Group("status")
	if len(excludeStatuses) > 0 {
		query = query.Where("status NOT IN ?", excludeStatuses)
	}

	var rows []row
	if err := query.Find(&rows).Error; err != nil {
		return SalesSummary{}, err
	}

	summary := SalesSummary{GrossTotal: "0"}
	gross := decimal.Zero
	for _, entry := range rows {
		total, err := decimal.NewFromString(entry.Total)
		if err != nil {
			return SalesSummary{}, err
		}
		summary.OrderCount += entry.Count
		summary.Totals = append(summary.Totals, StatusBreakup{
			Status: entry.Status,
			Count:  entry.Count,
			Total:  total.String(),
		})
		gross = gross.Add(total)
	}
	summary.GrossTotal = gross.String()
	return summary, nil
}
