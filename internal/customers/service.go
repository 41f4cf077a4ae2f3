package customers

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/balcaohq/balcao-backend/internal/pos"
	"github.com/balcaohq/balcao-backend/pkg/db/models"
	"github.com/balcaohq/balcao-backend/pkg/enums"
	pkgerrors "github.com/balcaohq/balcao-backend/pkg/errors"
)

// Service maintains the customer directory and resolves the snapshots the
// composition engine attaches to carts. It implements pos.CustomerLookup.
type Service interface {
	Create(ctx context.Context, input Input) (*models.Customer, error)
	Update(ctx context.Context, id uuid.UUID, input Input) (*models.Customer, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Get(ctx context.Context, id uuid.UUID) (*models.Customer, error)
	List(ctx context.Context, search string) ([]models.Customer, error)

	GetCustomerSnapshot(ctx context.Context, id uuid.UUID) (pos.CustomerSnapshot, error)
}

// Input carries the editable customer fields.
type Input struct {
	PersonType enums.PersonType
	Name       string
	Document   string
	Phone      string
	Street     string
	Number     string
	District   string
	Complement string
	ZipCode    *string
	City       *string
}

type service struct {
	repo Repository
}

func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("customers repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Create(ctx context.Context, input Input) (*models.Customer, error) {
	if err := validateInput(&input); err != nil {
		return nil, err
	}
	return s.repo.Create(ctx, &models.Customer{
		PersonType: input.PersonType,
		Name:       input.Name,
		Document:   input.Document,
		Phone:      input.Phone,
		Street:     input.Street,
		Number:     input.Number,
		District:   input.District,
		Complement: input.Complement,
		ZipCode:    input.ZipCode,
		City:       input.City,
	})
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input Input) (*models.Customer, error) {
	if err := validateInput(&input); err != nil {
		return nil, err
	}
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	return s.repo.Update(ctx, &models.Customer{
		ID:         id,
		PersonType: input.PersonType,
		Name:       input.Name,
		Document:   input.Document,
		Phone:      input.Phone,
		Street:     input.Street,
		Number:     input.Number,
		District:   input.District,
		Complement: input.Complement,
		ZipCode:    input.ZipCode,
		City:       input.City,
	})
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Customer, error) {
	customer, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading customer")
	}
	return customer, nil
}

func (s *service) List(ctx context.Context, search string) ([]models.Customer, error) {
	customers, err := s.repo.List(ctx, search)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing customers")
	}
	return customers, nil
}

func (s *service) GetCustomerSnapshot(ctx context.Context, id uuid.UUID) (pos.CustomerSnapshot, error) {
	customer, err := s.Get(ctx, id)
	if err != nil {
		return pos.CustomerSnapshot{}, err
	}
	return pos.CustomerSnapshot{ID: customer.ID, Name: customer.Name}, nil
}

func validateInput(input *Input) error {
	if input.Name == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "customer name required")
	}
	if input.PersonType == "" {
		input.PersonType = enums.PersonTypeIndividual
	}
	if !input.PersonType.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("unknown person type %q", input.PersonType))
	}
	return nil
}
