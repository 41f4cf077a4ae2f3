package orders

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/balcaohq/balcao-backend/internal/pos"
	"github.com/balcaohq/balcao-backend/pkg/db/models"
	"github.com/balcaohq/balcao-backend/pkg/enums"
	pkgerrors "github.com/balcaohq/balcao-backend/pkg/errors"
)

// Service exposes the order history: listing, detail, the two follow-up
// transitions (deliver, cancel a pending order), and the daily sales report.
type Service interface {
	Get(ctx context.Context, id uuid.UUID) (*models.Order, error)
	List(ctx context.Context, filters Filters) ([]models.Order, error)
	MarkDelivered(ctx context.Context, id uuid.UUID) error
	CancelPending(ctx context.Context, id uuid.UUID) error
	DailySales(ctx context.Context, day time.Time) (SalesSummary, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading order")
	}
	return order, nil
}

func (s *service) List(ctx context.Context, filters Filters) ([]models.Order, error) {
	orders, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing orders")
	}
	return orders, nil
}

// MarkDelivered closes the delivery loop for pending and paid orders.
func (s *service) MarkDelivered(ctx context.Context, id uuid.UUID) error {
	order, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if order.Status != enums.OrderStatusPending && order.Status != enums.OrderStatusPaid {
		return pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("order in status %s cannot be delivered", order.Status))
	}
	return s.repo.UpdateStatus(ctx, id, enums.OrderStatusDelivered)
}

// CancelPending voids an order saved without settlement. Paid orders are
// immutable and never cancel.
func (s *service) CancelPending(ctx context.Context, id uuid.UUID) error {
	order, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if order.Status != enums.OrderStatusPending {
		return pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("order in status %s cannot be cancelled", order.Status))
	}
	return s.repo.UpdateStatus(ctx, id, enums.OrderStatusCancelled)
}

// DailySales aggregates the day's totals, leaving cancelled orders out.
func (s *service) DailySales(ctx context.Context, day time.Time) (SalesSummary, error) {
	from := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	to := from.AddDate(0, 0, 1)

	summary, err := s.repo.SumTotalsBetween(ctx, from, to, []enums.OrderStatus{enums.OrderStatusCancelled})
	if err != nil {
		return SalesSummary{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "aggregating daily sales")
	}
	return summary, nil
}

// Writer adapts Repository to the writer contract the composition engine
// persists settled orders through.
type Writer struct {
	repo Repository
}

func NewWriter(repo Repository) *Writer {
	return &Writer{repo: repo}
}

func (w *Writer) WithTx(tx *gorm.DB) pos.OrderWriter {
	return &Writer{repo: w.repo.WithTx(tx)}
}

func (w *Writer) Create(ctx context.Context, order *models.Order) (*models.Order, error) {
	return w.repo.Create(ctx, order)
}
