package customers

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/ortnersoft/crm-backend/pkg/db"
	"github.com/ortnersoft/crm-backend/pkg/db/models"
	"github.com/ortnersoft/crm-backend/pkg/enums"
	pkgerrors "github.com/ortnersoft/crm-backend/pkg/errors"
	"github.com/ortnersoft/crm-backend/pkg/pagination"
)

type customerRepository interface {
	Create(ctx context.Context, dto CreateCustomerDTO) (*models.Customer, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Customer, error)
	List(ctx context.Context, filter ListFilter, params pagination.Params) ([]models.Customer, error)
	Update(ctx context.Context, customer *models.Customer) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type revenueSummer interface {
	SumCustomerRevenue(ctx context.Context, customerID uuid.UUID, from, to time.Time) (decimal.Decimal, error)
}

// Service exposes customer operations.
type Service interface {
	Create(ctx context.Context, input CreateCustomerDTO) (*CustomerDTO, error)
	GetByID(ctx context.Context, id uuid.UUID) (*CustomerDTO, error)
	List(ctx context.Context, filter ListFilter, params pagination.Params) ([]CustomerDTO, string, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateCustomerInput) (*CustomerDTO, error)
	Delete(ctx context.Context, actorRole enums.UserRole, id uuid.UUID) error
	RevenueBetween(ctx context.Context, id uuid.UUID, from, to time.Time) (*RevenueDTO, error)
}

// RevenueDTO reports aggregated revenue for a customer over a date range.
type RevenueDTO struct {
	CustomerID uuid.UUID       `json:"customer_id"`
	From       string          `json:"from"`
	To         string          `json:"to"`
	Revenue    decimal.Decimal `json:"revenue"`
}

type service struct {
	repo    customerRepository
	revenue revenueSummer
}

// NewService builds a customer service with the provided repositories.
func NewService(repo customerRepository, revenue revenueSummer) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("customer repository required")
	}
	if revenue == nil {
		return nil, fmt.Errorf("revenue summer required")
	}
	return &service{repo: repo, revenue: revenue}, nil
}

func (s *service) Create(ctx context.Context, input CreateCustomerDTO) (*CustomerDTO, error) {
	input.CompanyName = strings.TrimSpace(input.CompanyName)
	if input.CompanyName == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "company name is required")
	}
	if !strings.Contains(input.Email, "@") {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid email")
	}

	customer, err := s.repo.Create(ctx, input)
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "email already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create customer")
	}
	return FromModel(customer), nil
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*CustomerDTO, error) {
	customer, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load customer")
	}
	return FromModel(customer), nil
}

func (s *service) List(ctx context.Context, filter ListFilter, params pagination.Params) ([]CustomerDTO, string, error) {
	rows, err := s.repo.List(ctx, filter, params)
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list customers")
	}

	limit := pagination.NormalizeLimit(params.Limit)
	nextCursor := ""
	if len(rows) > limit {
		rows = rows[:limit]
		last := rows[len(rows)-1]
		nextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}

	dtos := make([]CustomerDTO, 0, len(rows))
	for i := range rows {
		dtos = append(dtos, *FromModel(&rows[i]))
	}
	return dtos, nextCursor, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateCustomerInput) (*CustomerDTO, error) {
	customer, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load customer")
	}

	if input.CompanyName != nil {
		customer.CompanyName = *input.CompanyName
	}
	if input.ContactName != nil {
		customer.ContactName = *input.ContactName
	}
	if input.Email != nil {
		if !strings.Contains(*input.Email, "@") {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid email")
		}
		customer.Email = *input.Email
	}
	if input.Phone != nil {
		customer.Phone = input.Phone
	}
	if input.Street != nil {
		customer.Street = input.Street
	}
	if input.PostalCode != nil {
		customer.PostalCode = input.PostalCode
	}
	if input.City != nil {
		customer.City = input.City
	}
	if input.Country != nil {
		customer.Country = input.Country
	}
	if input.Industry != nil {
		customer.Industry = input.Industry
	}
	if input.Notes != nil {
		customer.Notes = input.Notes
	}

	if err := s.repo.Update(ctx, customer); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "email already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update customer")
	}
	return FromModel(customer), nil
}

func (s *service) Delete(ctx context.Context, actorRole enums.UserRole, id uuid.UUID) error {
	if !actorRole.CanDelete() {
		return pkgerrors.New(pkgerrors.CodeForbidden, "role may not delete customers")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete customer")
	}
	return nil
}

func (s *service) RevenueBetween(ctx context.Context, id uuid.UUID, from, to time.Time) (*RevenueDTO, error) {
	if to.Before(from) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "to must not be before from")
	}

	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load customer")
	}

	revenue, err := s.revenue.SumCustomerRevenue(ctx, id, from, to)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sum customer revenue")
	}

	return &RevenueDTO{
		CustomerID: id,
		From:       from.Format("2006-01-02"),
		To:         to.Format("2006-01-02"),
		Revenue:    revenue,
	}, nil
}
