package paymentmethods

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/balcaohq/balcao-backend/internal/pos"
	"github.com/balcaohq/balcao-backend/pkg/db/models"
	pkgerrors "github.com/balcaohq/balcao-backend/pkg/errors"
)

// Service manages settlement options and resolves active methods for the
// composition engine. It implements pos.MethodLookup.
type Service interface {
	Create(ctx context.Context, name string, isCash bool) (*models.PaymentMethod, error)
	Update(ctx context.Context, id uuid.UUID, name string, isCash, isActive bool) (*models.PaymentMethod, error)
	Get(ctx context.Context, id uuid.UUID) (*models.PaymentMethod, error)
	List(ctx context.Context, onlyActive bool) ([]models.PaymentMethod, error)

	GetActiveMethod(ctx context.Context, id uuid.UUID) (pos.MethodSnapshot, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("payment methods repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Create(ctx context.Context, name string, isCash bool) (*models.PaymentMethod, error) {
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "method name required")
	}
	return s.repo.Create(ctx, &models.PaymentMethod{
		Name:     name,
		IsCash:   isCash,
		IsActive: true,
	})
}

func (s *service) Update(ctx context.Context, id uuid.UUID, name string, isCash, isActive bool) (*models.PaymentMethod, error) {
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "method name required")
	}
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	return s.repo.Update(ctx, &models.PaymentMethod{
		ID:       id,
		Name:     name,
		IsCash:   isCash,
		IsActive: isActive,
	})
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.PaymentMethod, error) {
	method, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "payment method not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading payment method")
	}
	return method, nil
}

func (s *service) List(ctx context.Context, onlyActive bool) ([]models.PaymentMethod, error) {
	methods, err := s.repo.List(ctx, onlyActive)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing payment methods")
	}
	return methods, nil
}

// GetActiveMethod rejects inactive methods so settlement can only reference
// options currently offered at the counter.
func (s *service) GetActiveMethod(ctx context.Context, id uuid.UUID) (pos.MethodSnapshot, error) {
	method, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return pos.MethodSnapshot{}, pkgerrors.New(pkgerrors.CodePaymentMethodInactive, "payment method is inactive")
		}
		return pos.MethodSnapshot{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading payment method")
	}
	if !method.IsActive {
		return pos.MethodSnapshot{}, pkgerrors.New(pkgerrors.CodePaymentMethodInactive, "payment method is inactive")
	}
	return pos.MethodSnapshot{
		ID:     method.ID,
		Name:   method.Name,
		IsCash: method.IsCash,
	}, nil
}
