package cashbook

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/balcaohq/balcao-backend/pkg/db/models"
	"github.com/balcaohq/balcao-backend/pkg/enums"
	pkgerrors "github.com/balcaohq/balcao-backend/pkg/errors"
)

// Service appends entries to the cash drawer ledger and reports the running
// balance for a day. It implements pos.SaleLedger: settled orders land here
// as sale movements.
type Service interface {
	Record(ctx context.Context, movementType enums.CashMovementType, amount decimal.Decimal, note string) (*models.CashMovement, error)
	RecordSale(ctx context.Context, order *models.Order) error
	ListDay(ctx context.Context, day time.Time) ([]models.CashMovement, error)
	DayBalance(ctx context.Context, day time.Time) (decimal.Decimal, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cashbook repository required")
	}
	return &service{repo: repo}, nil
}

// Record appends an operator-driven movement. Sale movements only enter
// through RecordSale so they always reference an order.
func (s *service) Record(ctx context.Context, movementType enums.CashMovementType, amount decimal.Decimal, note string) (*models.CashMovement, error) {
	if !movementType.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("unknown movement type %q", movementType))
	}
	if movementType == enums.CashMovementSale {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "sale movements are recorded by settlement")
	}
	if amount.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount cannot be negative")
	}

	return s.repo.Create(ctx, &models.CashMovement{
		OccurredAt: time.Now().UTC(),
		Type:       movementType,
		Amount:     amount,
		Note:       note,
	})
}

// RecordSale writes the drawer entry for a settled order. Callers treat a
// failure here as a warning; the order stays settled either way.
func (s *service) RecordSale(ctx context.Context, order *models.Order) error {
	if order == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "order required")
	}

	orderID := order.ID
	_, err := s.repo.Create(ctx, &models.CashMovement{
		OccurredAt: order.PlacedAt,
		Type:       enums.CashMovementSale,
		Amount:     order.Total,
		Note:       "order settlement",
		OrderID:    &orderID,
	})
	return err
}

func (s *service) ListDay(ctx context.Context, day time.Time) ([]models.CashMovement, error) {
	from, to := dayBounds(day)
	movements, err := s.repo.ListBetween(ctx, from, to)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing cash movements")
	}
	return movements, nil
}

// DayBalance folds the day's movements; withdrawals subtract, everything
// else adds.
func (s *service) DayBalance(ctx context.Context, day time.Time) (decimal.Decimal, error) {
	movements, err := s.ListDay(ctx, day)
	if err != nil {
		return decimal.Zero, err
	}

	balance := decimal.Zero
	for _, movement := range movements {
		if movement.Type.Subtracts() {
			balance = balance.Sub(movement.Amount)
			continue
		}
		balance = balance.Add(movement.Amount)
	}
	return balance, nil
}

func dayBounds(day time.Time) (time.Time, time.Time) {
	from := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	return from, from.AddDate(0, 0, 1)
}
